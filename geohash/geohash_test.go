package geohash_test

import (
	"encoding/json"
	"testing"

	"github.com/pilosa/brapi2isa/geohash"
)

func TestTransform(t *testing.T) {
	tests := []struct {
		name     string
		location map[string]interface{}
		exp      string
		expErr   bool
	}{
		{
			name:     "numbers",
			location: map[string]interface{}{"latitude": json.Number("57.64911"), "longitude": json.Number("10.40744")},
			exp:      "u4pruy",
		},
		{
			name:     "strings",
			location: map[string]interface{}{"latitude": "57.64911", "longitude": "10.40744"},
			exp:      "u4pruy",
		},
		{
			name:     "missing",
			location: map[string]interface{}{"latitude": 43.6},
			expErr:   true,
		},
		{
			name:     "out of range",
			location: map[string]interface{}{"latitude": 143.6, "longitude": 3.8},
			expErr:   true,
		},
	}

	tr := geohash.NewTransformer(6)
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			hash, err := tr.Transform(test.location)
			if test.expErr {
				if err == nil {
					t.Fatalf("expected error, got %s", hash)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if hash != test.exp {
				t.Fatalf("got %s, expected %s", hash, test.exp)
			}
		})
	}
}
