package convert

import (
	"context"

	"github.com/pilosa/brapi2isa"
	"github.com/pilosa/brapi2isa/isa"
	"github.com/pkg/errors"
)

// StudyFileName is the name of a study's ISA-Tab study file.
func StudyFileName(studyID string) string {
	return "s_" + studyID + ".txt"
}

// AssayFileName is the name of the ISA-Tab assay file of one observation level
// of a study.
func AssayFileName(studyID, level string) string {
	return "a_" + studyID + "_" + level + ".txt"
}

// newStudy builds the ISA study of study without its materials.
func (a *Assembler) newStudy(inv *isa.Investigation, studyID string, study *Study, levels []string) *isa.Study {
	st := &isa.Study{
		Filename:    StudyFileName(studyID),
		Identifier:  brapi2isa.OrNA(study.StudyDbID),
		Title:       study.Title(),
		Description: brapi2isa.OrNA(study.StudyDescription),
		Protocols: []isa.Protocol{
			{Name: sampleCollection, Type: sampleCollection},
			{Name: phenotyping, Type: phenotyping, Parameters: []string{seasonParameter}},
		},
		DesignDescriptors: []isa.OntologyAnnotation{{Term: brapi2isa.OrNA(study.StudyType)}},
	}
	loc := study.Location
	st.Comments = []isa.Comment{
		{Name: "Study Start Date", Value: brapi2isa.OrNA(study.StartDate)},
		{Name: "Study End Date", Value: brapi2isa.OrNA(study.EndDate)},
		{Name: "Study Experimental Site", Value: brapi2isa.OrNA(loc.Name)},
		{Name: "Study Country", Value: loc.Country()},
		{Name: "Study Latitude", Value: brapi2isa.OrNA(loc.Latitude)},
		{Name: "Study Longitude", Value: brapi2isa.OrNA(loc.Longitude)},
		{Name: "Study Altitude", Value: brapi2isa.OrNA(loc.Altitude)},
	}
	if a.Geohash != nil {
		if raw, ok := study.raw["location"].(map[string]interface{}); ok {
			if hash, err := a.Geohash.Transform(raw); err == nil {
				st.Comments = append(st.Comments, isa.Comment{Name: "Study Geohash", Value: hash})
			} else {
				a.Log.Debugf("study %s: %v", studyID, &brapi2isa.MissingFieldWarning{Field: "location", Referrer: studyID})
			}
		}
	}
	st.Comments = append(st.Comments, isa.Comment{Name: "Trait Definition File", Value: brapi2isa.TraitFileName(studyID)})
	for _, dl := range study.DataLinks {
		st.Comments = append(st.Comments,
			isa.Comment{Name: "Study Data File Link", Value: dl.URL},
			isa.Comment{Name: "Study Data File Description", Value: dl.Type},
			isa.Comment{Name: "Study Data File Version", Value: "NA"},
		)
	}
	for _, c := range study.Contacts {
		st.Contacts = append(st.Contacts, c.Person())
	}

	for _, level := range levels {
		st.Assays = append(st.Assays, &isa.Assay{
			Filename:        AssayFileName(studyID, level),
			DataFile:        brapi2isa.DataFileName(studyID, level),
			Level:           level,
			MeasurementType: isa.OntologyAnnotation{Term: phenotyping, TermSource: obi.Name},
			TechnologyType:  isa.OntologyAnnotation{Term: level + " multimodal technique", TermSource: obi.Name},
		})
		inv.AddOntologySource(obi)
	}
	return st
}

// germplasm is the part of a study germplasm record needed to build sources.
type germplasm struct {
	GermplasmDbID   string      `mapstructure:"germplasmDbId"`
	GermplasmName   string      `mapstructure:"germplasmName"`
	AccessionNumber interface{} `mapstructure:"accessionNumber"`
}

// addSources adds one source per germplasm of the study, and fills cache with
// their accession numbers.
func (a *Assembler) addSources(ctx context.Context, st *isa.Study, studyID string, cache brapi2isa.AccessionCache) error {
	recs, err := brapi2isa.Collect(a.Client.StudyGermplasm(ctx, studyID))
	if err != nil {
		return errors.Wrap(err, "getting study germplasm")
	}
	for _, m := range recs {
		g := germplasm{}
		if err := decode(m, &g); err != nil {
			return errors.Wrap(err, "decoding germplasm")
		}
		if g.GermplasmDbID != "" {
			if _, err := cache.Put(g.GermplasmDbID, brapi2isa.Stringify(g.AccessionNumber)); err != nil {
				return errors.Wrapf(err, "caching accession of %s", g.GermplasmDbID)
			}
		}
		if st.Source(g.GermplasmName) != nil {
			continue
		}
		chars, err := a.Resolver.Resolve(ctx, g.GermplasmDbID)
		if err != nil {
			return err
		}
		st.Sources = append(st.Sources, &isa.Source{Name: g.GermplasmName, Characteristics: chars})
	}
	return nil
}

// sampleCharacteristics returns the characteristics of the sample made from
// u. Positional fields are included when the server sent them.
func sampleCharacteristics(u *brapi2isa.ObservationUnit) []brapi2isa.Characteristic {
	var chars []brapi2isa.Characteristic
	for _, f := range []struct {
		category string
		value    interface{}
	}{
		{"X", u.X},
		{"Y", u.Y},
		{"Block Number", u.BlockNumber},
		{"Plot Number", u.PlotNumber},
		{"Plant Number", u.PlantNumber},
	} {
		if f.value != nil {
			chars = append(chars, brapi2isa.Characteristic{Category: f.category, Value: brapi2isa.Stringify(f.value)})
		}
	}
	return append(chars, brapi2isa.Characteristic{Category: "Observation unit type", Value: u.Level()})
}

// addSamples adds one sample per distinct observation unit name, each with
// its collection process, and one phenotyping process per unit to the assay
// of the unit's level.
func (a *Assembler) addSamples(st *isa.Study, units []brapi2isa.ObservationUnit) {
	samples := make(map[string]*isa.Sample)
	date := a.Now().Format("2006-01-02T15:04:05")
	for i := range units {
		u := &units[i]
		smp, ok := samples[u.ObservationUnitName]
		if !ok {
			src := st.Source(u.GermplasmName)
			if src == nil {
				err := &brapi2isa.MissingReferenceError{Kind: "source", ID: u.GermplasmName, Referrer: "observation unit " + u.ObservationUnitDbID}
				a.Log.Printf("skipping unit: %v", err)
				continue
			}
			smp = &isa.Sample{
				Name:            u.ObservationUnitName,
				Source:          src,
				Characteristics: sampleCharacteristics(u),
			}
			for _, t := range u.Treatments {
				if t.Factor == "" {
					continue
				}
				st.AddFactor(isa.StudyFactor{Name: t.Factor, Type: t.Factor, Comment: t.Modality})
				val := t.Modality
				if val == "" {
					val = t.Factor
				}
				smp.FactorValues = append(smp.FactorValues, isa.FactorValue{Factor: t.Factor, Value: val})
			}
			samples[u.ObservationUnitName] = smp
			st.Samples = append(st.Samples, smp)
			st.Collections = append(st.Collections, &isa.Process{
				Protocol:  sampleCollection,
				Performer: "NA",
				Date:      date,
				Sample:    smp,
			})
		}

		assay := st.Assay(u.Level())
		if assay == nil {
			continue
		}
		proc := &isa.Process{
			Name:     "assay-name_(" + u.ObservationUnitDbID + ")",
			Protocol: phenotyping,
			Sample:   smp,
		}
		seasons := brapi2isa.NewOrderedSet()
		for _, o := range u.Observations {
			if s := brapi2isa.Stringify(o.Season); s != "" {
				seasons.Add(s)
			}
		}
		for _, s := range seasons.Items() {
			proc.ParameterValues = append(proc.ParameterValues, isa.ParameterValue{Parameter: seasonParameter, Value: s})
		}
		if seasons.Len() == 0 {
			proc.ParameterValues = []isa.ParameterValue{{Parameter: seasonParameter, Value: noSeason}}
		}
		if !containsSample(assay.Samples, smp) {
			assay.Samples = append(assay.Samples, smp)
		}
		assay.Processes = append(assay.Processes, proc)
	}
}

func containsSample(samples []*isa.Sample, smp *isa.Sample) bool {
	for _, s := range samples {
		if s == smp {
			return true
		}
	}
	return false
}
