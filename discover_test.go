package brapi2isa_test

import (
	"testing"

	"github.com/pilosa/brapi2isa"
	"github.com/pilosa/brapi2isa/test"
)

const plotUnits = `[
{"observationUnitDbId": "u1", "observationLevel": "plot", "observationLevels": "block:1,plot:10",
 "germplasmDbId": "g1", "germplasmName": "G1",
 "observations": [{"observationVariableName": "height", "value": 12.5, "season": "2019"}]},
{"observationUnitDbId": "u2", "observationLevel": "plot", "observationLevels": "block:1,plot:11",
 "germplasmDbId": "g2", "germplasmName": "G2",
 "observations": [{"observationVariableName": "height", "value": 13}]}
]`

func mustUnits(t *testing.T, js string) []brapi2isa.ObservationUnit {
	t.Helper()
	units, err := brapi2isa.DecodeObservationUnits(test.Records(t, js))
	test.ErrNil(t, err, "decoding units")
	return units
}

func TestDiscoverLevels(t *testing.T) {
	tests := []struct {
		name      string
		units     string
		levels    []string
		variables map[string][]string
		sublevels map[string][]string
	}{
		{
			name:      "plot",
			units:     plotUnits,
			levels:    []string{"plot"},
			variables: map[string][]string{"plot": {"height"}},
			sublevels: map[string][]string{"plot": {"block", "plot"}},
		},
		{
			name: "empty level is study",
			units: `[{"observationUnitDbId": "u1", "observationLevel": "",
				"observations": [{"observationVariableName": "yield", "value": 1}]}]`,
			levels:    []string{"study"},
			variables: map[string][]string{"study": {"yield"}},
			sublevels: map[string][]string{"study": {}},
		},
		{
			name: "unit without observations contributes nothing",
			units: `[{"observationUnitDbId": "u1", "observationLevel": "plant", "observationLevels": "plant:1", "observations": []},
				{"observationUnitDbId": "u2", "observationLevel": "plot", "observationLevels": "plot:2",
				 "observations": [{"observationVariableName": "a"}]}]`,
			levels:    []string{"plot"},
			variables: map[string][]string{"plot": {"a"}},
			sublevels: map[string][]string{"plot": {"plot"}},
		},
		{
			name: "case sensitive names and first-seen order",
			units: `[{"observationLevel": "plot", "observationLevels": "rep:1,bogus,block:2",
				"observations": [{"observationVariableName": "Height"}, {"observationVariableName": "height"}, {"observationVariableName": "Height"}]},
				{"observationLevel": "plant", "observations": [{"observationVariableName": "leaf"}]}]`,
			levels:    []string{"plot", "plant"},
			variables: map[string][]string{"plot": {"Height", "height"}, "plant": {"leaf"}},
			sublevels: map[string][]string{"plot": {"rep", "block"}, "plant": {}},
		},
	}

	for _, tst := range tests {
		t.Run(tst.name, func(t *testing.T) {
			ls := brapi2isa.DiscoverLevels(mustUnits(t, tst.units))
			test.MustBe(t, tst.levels, ls.Levels, "levels")
			for lvl, vars := range tst.variables {
				test.MustBe(t, vars, ls.VariablesOf(lvl), "variables of "+lvl)
			}
			for lvl, subs := range tst.sublevels {
				test.MustBe(t, subs, ls.SublevelsOf(lvl), "sublevels of "+lvl)
			}
		})
	}
}

func TestDiscoverLevelsIdempotent(t *testing.T) {
	units := mustUnits(t, plotUnits)
	first := brapi2isa.DiscoverLevels(units)
	second := brapi2isa.DiscoverLevels(units)
	test.MustBe(t, first.Levels, second.Levels)
	for _, lvl := range first.Levels {
		test.MustBe(t, first.VariablesOf(lvl), second.VariablesOf(lvl))
		test.MustBe(t, first.SublevelsOf(lvl), second.SublevelsOf(lvl))
	}
}

func TestParseLevelTokens(t *testing.T) {
	toks := brapi2isa.ParseLevelTokens("block: 1, plot:2,broken,:x,rep:a:b")
	test.MustBe(t, []brapi2isa.LevelToken{
		{Token: "block", Value: "1"},
		{Token: "plot", Value: "2"},
		{Token: "rep", Value: "a:b"},
	}, toks)
	if brapi2isa.ParseLevelTokens("") != nil {
		t.Fatalf("expected nil tokens for empty string")
	}
}
