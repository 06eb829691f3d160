package brapi2isa

import (
	"strings"

	"github.com/pkg/errors"
)

// TraitHeader is the header of a trait definition file.
var TraitHeader = []string{
	"Variable Name", "Variable Full Name", "Variable Description", "Crop", "Growth Stage", "Date",
	"Method", "Method Description", "Method Formula", "Method Reference",
	"Scale", "Scale Data Type", "Scale Valid Values", "Unit",
	"Trait Name", "Trait Term REF", "Trait Class", "Trait Entity", "Trait Attribute",
}

// Method is how a variable is measured.
type Method struct {
	Name        interface{} `mapstructure:"name"`
	Description interface{} `mapstructure:"description"`
	Formula     interface{} `mapstructure:"formula"`
	Reference   interface{} `mapstructure:"reference"`
}

// ValidValues constrains the values of a scale.
type ValidValues struct {
	Categories []interface{} `mapstructure:"categories"`
}

// Scale is the unit or coding in which a variable is expressed.
type Scale struct {
	Name        interface{} `mapstructure:"name"`
	DataType    interface{} `mapstructure:"dataType"`
	ValidValues ValidValues `mapstructure:"validValues"`
	Xref        interface{} `mapstructure:"xref"`
}

// Trait is the characteristic a variable observes.
type Trait struct {
	Name      interface{} `mapstructure:"name"`
	Xref      interface{} `mapstructure:"xref"`
	Class     interface{} `mapstructure:"class"`
	Entity    interface{} `mapstructure:"entity"`
	Attribute interface{} `mapstructure:"attribute"`
}

// ObservationVariable is the definition of a measured variable.
type ObservationVariable struct {
	Name         interface{} `mapstructure:"name"`
	OntologyDbID interface{} `mapstructure:"ontologyDbId"`
	OntologyName interface{} `mapstructure:"ontologyName"`
	Crop         interface{} `mapstructure:"crop"`
	GrowthStage  interface{} `mapstructure:"growthStage"`
	Date         interface{} `mapstructure:"date"`
	Method       Method      `mapstructure:"method"`
	Scale        Scale       `mapstructure:"scale"`
	Trait        Trait       `mapstructure:"trait"`
}

// DecodeObservationVariables decodes raw observation variable records.
func DecodeObservationVariables(recs []map[string]interface{}) ([]ObservationVariable, error) {
	vars := make([]ObservationVariable, len(recs))
	for i, rec := range recs {
		if err := decodeRecord(rec, &vars[i]); err != nil {
			return nil, errors.Wrapf(err, "decoding observation variable %d", i)
		}
	}
	return vars, nil
}

// Row returns the trait definition cells of v, in TraitHeader order.
func (v *ObservationVariable) Row() []string {
	cats := make([]string, len(v.Scale.ValidValues.Categories))
	for i, c := range v.Scale.ValidValues.Categories {
		cats[i] = Stringify(c)
	}
	return []string{
		Stringify(v.Name), Stringify(v.OntologyDbID), Stringify(v.OntologyName),
		Stringify(v.Crop), Stringify(v.GrowthStage), Stringify(v.Date),
		Stringify(v.Method.Name), Stringify(v.Method.Description),
		Stringify(v.Method.Formula), Stringify(v.Method.Reference),
		Stringify(v.Scale.Name), Stringify(v.Scale.DataType),
		strings.Join(cats, ";"), Stringify(v.Scale.Xref),
		Stringify(v.Trait.Name), Stringify(v.Trait.Xref), Stringify(v.Trait.Class),
		Stringify(v.Trait.Entity), Stringify(v.Trait.Attribute),
	}
}

// TraitDefinitionRecords renders the trait definition file of vars as tab
// separated lines, header first.
func TraitDefinitionRecords(vars []ObservationVariable) []string {
	lines := make([]string, 0, len(vars)+1)
	lines = append(lines, strings.Join(TraitHeader, "\t"))
	for i := range vars {
		lines = append(lines, strings.Join(vars[i].Row(), "\t"))
	}
	return lines
}
