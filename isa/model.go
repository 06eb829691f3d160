// Package isa holds a small ISA (Investigation, Study, Assay) object model
// and renders it as ISA-Tab files.
package isa

import (
	"github.com/pilosa/brapi2isa"
)

// InvestigationFileName is the name of the investigation file of every
// ISA-Tab archive.
const InvestigationFileName = "i_investigation.txt"

// Comment is a free-form named value.
type Comment struct {
	Name  string
	Value string
}

// OntologySource is a referenced ontology.
type OntologySource struct {
	Name        string
	Description string
}

// OntologyAnnotation is a term, optionally from an ontology source.
type OntologyAnnotation struct {
	Term          string
	TermSource    string
	TermAccession string
}

// Person is an investigation or study contact.
type Person struct {
	FirstName   string
	LastName    string
	Email       string
	Affiliation string
}

// Protocol is a named procedure applied by processes.
type Protocol struct {
	Name       string
	Type       string
	Parameters []string
}

// StudyFactor is an experimental factor varied across samples.
type StudyFactor struct {
	Name    string
	Type    string
	Comment string
}

// FactorValue is the value a sample takes for a study factor.
type FactorValue struct {
	Factor string
	Value  string
}

// Source is a biological source material, here a germplasm.
type Source struct {
	Name            string
	Characteristics []brapi2isa.Characteristic
}

// Sample is a material derived from a source, here an observation unit.
type Sample struct {
	Name            string
	Source          *Source
	Characteristics []brapi2isa.Characteristic
	FactorValues    []FactorValue
}

// ParameterValue is the value of a protocol parameter in a process.
type ParameterValue struct {
	Parameter string
	Value     string
}

// Process is the application of a protocol to a sample.
type Process struct {
	Name            string
	Protocol        string
	Performer       string
	Date            string
	Sample          *Sample
	ParameterValues []ParameterValue
}

// Assay groups the processes run at one observation level.
type Assay struct {
	Filename        string
	DataFile        string
	Level           string
	MeasurementType OntologyAnnotation
	TechnologyType  OntologyAnnotation
	Samples         []*Sample
	Processes       []*Process
}

// Study is one BrAPI study.
type Study struct {
	Filename          string
	Identifier        string
	Title             string
	Description       string
	Comments          []Comment
	DesignDescriptors []OntologyAnnotation
	Contacts          []Person
	Protocols         []Protocol
	Factors           []StudyFactor
	Sources           []*Source
	Samples           []*Sample
	Collections       []*Process
	Assays            []*Assay
}

// Source returns the source with the given name, or nil.
func (s *Study) Source(name string) *Source {
	for _, src := range s.Sources {
		if src.Name == name {
			return src
		}
	}
	return nil
}

// Assay returns the assay of the given observation level, or nil.
func (s *Study) Assay(level string) *Assay {
	for _, a := range s.Assays {
		if a.Level == level {
			return a
		}
	}
	return nil
}

// AddFactor adds f unless an equal factor is already there.
func (s *Study) AddFactor(f StudyFactor) {
	for _, g := range s.Factors {
		if g == f {
			return
		}
	}
	s.Factors = append(s.Factors, f)
}

// Investigation is one BrAPI trial.
type Investigation struct {
	Identifier      string
	Title           string
	Description     string
	Contacts        []Person
	Comments        []Comment
	OntologySources []OntologySource
	Studies         []*Study
}

// AddOntologySource adds o unless an equal source is already there.
func (inv *Investigation) AddOntologySource(o OntologySource) {
	for _, p := range inv.OntologySources {
		if p == o {
			return
		}
	}
	inv.OntologySources = append(inv.OntologySources, o)
}
