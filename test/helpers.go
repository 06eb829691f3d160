package test

import (
	"bytes"
	"encoding/json"
	"reflect"
	"testing"
)

// MustBe uses reflect.DeepEqual to assert that thing1 and thing2 are equal, and
// fails otherwise.
func MustBe(t *testing.T, thing1, thing2 interface{}, context ...string) {
	t.Helper()
	var ctx string
	if len(context) == 0 {
		ctx = ""
	} else {
		ctx = context[0] + ": "
	}
	if !reflect.DeepEqual(thing1, thing2) {
		t.Fatalf("%v'%#v' != '%#v'", ctx, thing1, thing2)
	}
}

// ErrNil asserts that the err is nil and fails otherwise.
func ErrNil(t *testing.T, err error, ctx string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%v: %v", ctx, err)
	}
}

// Records decodes a JSON array of objects the way the BrAPI client does,
// keeping numbers as json.Number.
func Records(t *testing.T, js string) []map[string]interface{} {
	t.Helper()
	dec := json.NewDecoder(bytes.NewBufferString(js))
	dec.UseNumber()
	recs := make([]map[string]interface{}, 0)
	if err := dec.Decode(&recs); err != nil {
		t.Fatalf("decoding records: %v", err)
	}
	return recs
}

// Record decodes a single JSON object like Records.
func Record(t *testing.T, js string) map[string]interface{} {
	t.Helper()
	return Records(t, "["+js+"]")[0]
}
