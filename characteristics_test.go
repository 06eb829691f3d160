package brapi2isa_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/pilosa/brapi2isa"
	"github.com/pilosa/brapi2isa/test"
	"github.com/pkg/errors"
)

func TestCharacterize(t *testing.T) {
	tests := []struct {
		attrs brapi2isa.Attributes
		exp   []brapi2isa.Characteristic
	}{
		{
			attrs: brapi2isa.Attributes{
				{Key: "taxonIds", Value: []interface{}{map[string]interface{}{"sourceName": "NCBI", "taxonId": "4577"}}},
			},
			exp: []brapi2isa.Characteristic{{Category: "Organism", Value: "NCBI:4577"}},
		},
		{
			attrs: brapi2isa.Attributes{
				{Key: "germplasmDbId", Value: "g1"},
				{Key: "accessionNumber", Value: "A1"},
				{Key: "genus", Value: "Zea"},
				{Key: "species", Value: "mays"},
				{Key: "subtaxa", Value: "subsp. mays"},
				{Key: "commonCropName", Value: "maize"},
				{Key: "pedigree", Value: nil},
			},
			exp: []brapi2isa.Characteristic{
				{Category: "germplasmDbId", Value: "g1"},
				{Category: "Material Source ID", Value: "A1"},
				{Category: "Genus", Value: "Zea"},
				{Category: "Species", Value: "mays"},
				{Category: "Infraspecific Name", Value: "subsp. mays"},
				{Category: "commonCropName", Value: "maize"},
				{Category: "pedigree", Value: ""},
			},
		},
		{
			attrs: brapi2isa.Attributes{
				{Key: "donors", Value: []interface{}{
					map[string]interface{}{"donorInstituteCode": "FRA001", "donorAccessionNumber": "D1"},
					map[string]interface{}{"donorInstituteCode": "FRA002"},
				}},
				{Key: "taxonIds", Value: []interface{}{}},
			},
			exp: []brapi2isa.Characteristic{{Category: "Donors", Value: "FRA001:D1;FRA002:NA"}},
		},
		{
			attrs: brapi2isa.Attributes{{Key: "donors", Value: []interface{}{}}},
			exp:   []brapi2isa.Characteristic{{Category: "Donors", Value: ""}},
		},
		{
			attrs: brapi2isa.Attributes{
				{Key: "synonyms", Value: []interface{}{"B73", "B-73"}},
				{Key: "synonyms", Value: []interface{}{"B73", "B-73"}},
				{Key: "alias", Value: "x"},
				{Key: "alias", Value: "y"},
			},
			exp: []brapi2isa.Characteristic{
				{Category: "synonyms", Value: "B73;B-73"},
				{Category: "alias", Value: "x"},
				{Category: "alias", Value: "y"},
			},
		},
		{
			attrs: brapi2isa.Attributes{{Key: "synonyms", Value: 3}},
			exp:   []brapi2isa.Characteristic{},
		},
		{
			attrs: brapi2isa.Attributes{{Key: "synonyms", Value: "B73"}, {Key: "genus", Value: "Zea"}},
			exp:   []brapi2isa.Characteristic{{Category: "Genus", Value: "Zea"}},
		},
	}

	for i, tst := range tests {
		test.MustBe(t, tst.exp, brapi2isa.Characterize(tst.attrs), fmt.Sprintf("case %d", i))
	}
}

type fetcherFunc func(ctx context.Context, id string) (brapi2isa.Attributes, error)

func (f fetcherFunc) GermplasmAttributes(ctx context.Context, id string) (brapi2isa.Attributes, error) {
	return f(ctx, id)
}

func TestCharacteristicResolver(t *testing.T) {
	r := &brapi2isa.CharacteristicResolver{
		Fetcher: fetcherFunc(func(ctx context.Context, id string) (brapi2isa.Attributes, error) {
			if id == "bad" {
				return nil, &brapi2isa.TransportError{Method: "GET", URL: "germplasm/bad", StatusCode: 404}
			}
			return brapi2isa.Attributes{{Key: "genus", Value: "Triticum"}}, nil
		}),
		Log: brapi2isa.NopLogger{},
	}
	chars, err := r.Resolve(context.Background(), "g1")
	test.ErrNil(t, err, "resolving g1")
	test.MustBe(t, []brapi2isa.Characteristic{{Category: "Genus", Value: "Triticum"}}, chars)

	_, err = r.Resolve(context.Background(), "bad")
	if !brapi2isa.IsTransportError(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if te := errors.Cause(err).(*brapi2isa.TransportError); te.StatusCode != 404 {
		t.Fatalf("unexpected status %d", te.StatusCode)
	}
}
