package brapi2isa_test

import (
	"strings"
	"testing"

	"github.com/pilosa/brapi2isa"
	"github.com/pilosa/brapi2isa/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraitDefinitionRecords(t *testing.T) {
	recs := test.Records(t, `[
	{"name": "height", "ontologyDbId": "CO_321:0000020", "ontologyName": "Plant height", "crop": "maize",
	 "growthStage": "flowering", "date": "2019-01-01",
	 "method": {"name": "ruler", "description": "measure", "formula": "", "reference": "ref"},
	 "scale": {"name": "cm", "dataType": "Numerical", "validValues": {"categories": ["1=low", "2=high"]}, "xref": "x1"},
	 "trait": {"name": "Plant height", "xref": "TO:0000207", "class": "morphological", "entity": "plant", "attribute": "height"}},
	{"name": "score"}
	]`)
	vars, err := brapi2isa.DecodeObservationVariables(recs)
	test.ErrNil(t, err, "decoding variables")

	lines := brapi2isa.TraitDefinitionRecords(vars)
	require.Len(t, lines, 3)
	header := strings.Split(lines[0], "\t")
	assert.Len(t, header, 19)
	assert.Equal(t, "Variable Name", header[0])
	assert.Equal(t, "Trait Attribute", header[18])

	first := strings.Split(lines[1], "\t")
	assert.Equal(t, []string{
		"height", "CO_321:0000020", "Plant height", "maize", "flowering", "2019-01-01",
		"ruler", "measure", "", "ref", "cm", "Numerical", "1=low;2=high", "x1",
		"Plant height", "TO:0000207", "morphological", "plant", "height",
	}, first)

	second := strings.Split(lines[2], "\t")
	assert.Len(t, second, 19)
	assert.Equal(t, "score", second[0])
	assert.Equal(t, "", second[12])
}
