// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

package convert

import (
	"context"
	"path"
	"time"

	"github.com/pilosa/brapi2isa"
	"github.com/pilosa/brapi2isa/brapi"
	"github.com/pilosa/brapi2isa/geohash"
	"github.com/pilosa/brapi2isa/isa"
	"github.com/pkg/errors"
)

const (
	sampleCollection = "sample collection"
	phenotyping      = "phenotyping"
	seasonParameter  = "season"
	noSeason         = "none reported"
)

var obi = isa.OntologySource{Name: "OBI", Description: "Ontology for Biomedical Investigation"}

// CacheFactory opens a fresh accession cache for a study.
type CacheFactory func(studyID string) (brapi2isa.AccessionCache, error)

// Assembler turns BrAPI trials into ISA-Tab archives plus trait and data
// files, handing each file to a Sink.
type Assembler struct {
	Client   *brapi.Client
	Resolver *brapi2isa.CharacteristicResolver
	Caches   CacheFactory
	Sink     brapi2isa.Sink
	Geohash  *geohash.Transformer
	Log      brapi2isa.Logger
	Stats    brapi2isa.Statter

	// Now stamps sample collection processes.
	Now func() time.Time
}

// NewAssembler returns an Assembler reading from client and writing to sink,
// with in-memory accession caches.
func NewAssembler(client *brapi.Client, sink brapi2isa.Sink) *Assembler {
	return &Assembler{
		Client:   client,
		Resolver: &brapi2isa.CharacteristicResolver{Fetcher: client, Log: brapi2isa.NopLogger{}},
		Caches: func(string) (brapi2isa.AccessionCache, error) {
			return brapi2isa.NewMapCache(), nil
		},
		Sink:  sink,
		Log:   brapi2isa.NopLogger{},
		Stats: brapi2isa.NopStatter{},
		Now:   time.Now,
	}
}

// write hands an artifact to the sink and reports whether it was written.
// Failures are logged and do not stop the conversion.
func (a *Assembler) write(art *brapi2isa.Artifact) bool {
	if err := a.Sink.Write(art); err != nil {
		a.Log.Printf("writing %s: %v", art.Path, err)
		a.Stats.Count("convert.artifact_errors", 1, 1)
		return false
	}
	a.Stats.Count("convert.artifacts", 1, 1)
	a.Log.Debugf("wrote %s (%d lines)", art.Path, len(art.Lines))
	return true
}

// Convert converts the selected trials.
func (a *Assembler) Convert(ctx context.Context, trialIDs, studyIDs []string) error {
	trials, err := a.SelectTrials(ctx, trialIDs, studyIDs)
	if err != nil {
		return errors.Wrap(err, "selecting trials")
	}
	for _, t := range trials {
		if err := a.ConvertTrial(ctx, t); err != nil {
			return errors.Wrapf(err, "converting trial %s", t.TrialDbID)
		}
	}
	return nil
}

// ConvertTrial writes the files of every study of t, followed by the
// trial's ISA-Tab archive.
func (a *Assembler) ConvertTrial(ctx context.Context, t *Trial) error {
	dir := t.Dir()
	a.Log.Printf("converting trial %s into %s", t.TrialDbID, dir)
	a.Stats.Set("convert.trials", t.TrialDbID, 1)
	inv := &isa.Investigation{
		Identifier: t.TrialDbID,
		Title:      t.TrialName,
		Comments:   []isa.Comment{{Name: "MIAPPE version", Value: "1.1"}},
	}
	for _, c := range t.Contacts {
		inv.Contacts = append(inv.Contacts, c.Person())
	}
	for _, ref := range t.Studies {
		if !isASCII(ref.StudyDbID) {
			a.Log.Printf("skipping study %s: id contains non ASCII characters", ref.StudyDbID)
			continue
		}
		st, err := a.ConvertStudy(ctx, inv, ref.StudyDbID, dir)
		if err != nil {
			return errors.Wrapf(err, "converting study %s", ref.StudyDbID)
		}
		inv.Studies = append(inv.Studies, st)
	}
	for _, art := range isa.Dump(inv, dir) {
		a.write(art)
	}
	return nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}

// ConvertStudy builds the ISA study of studyID, adding it to inv's ontology
// sources, and writes the study's trait and data files under dir.
func (a *Assembler) ConvertStudy(ctx context.Context, inv *isa.Investigation, studyID, dir string) (*isa.Study, error) {
	a.Stats.Count("convert.studies", 1, 1)
	units, err := a.units(ctx, studyID)
	if err != nil {
		return nil, err
	}
	schema := brapi2isa.DiscoverLevels(units)
	a.Log.Debugf("study %s: %d units at levels %v", studyID, len(units), schema.Levels)
	a.Stats.Gauge("convert.levels", float64(len(schema.Levels)), 1, "study:"+studyID)

	rec, err := a.Client.Study(ctx, studyID)
	if err != nil {
		return nil, err
	}
	study, err := DecodeStudy(rec)
	if err != nil {
		return nil, err
	}
	st := a.newStudy(inv, studyID, study, schema.Levels)

	cache, err := a.Caches(studyID)
	if err != nil {
		return nil, errors.Wrap(err, "opening accession cache")
	}
	defer func() {
		if cerr := cache.Close(); cerr != nil {
			a.Log.Printf("closing accession cache of study %s: %v", studyID, cerr)
		}
	}()
	if err := a.addSources(ctx, st, studyID, cache); err != nil {
		return nil, err
	}
	a.addSamples(st, units)

	a.writeTraits(ctx, studyID, dir)
	pb := brapi2isa.NewPivotBuilder(cache)
	pb.Log, pb.Stats = a.Log, a.Stats
	// assays are in level order; those without a data file do not reference one
	for i, level := range schema.Levels {
		table, err := pb.Build(level, units, schema.VariablesOf(level), schema.SublevelsOf(level))
		if err != nil {
			a.Log.Printf("building %s table of study %s: %v", level, studyID, err)
			a.Stats.Count("convert.artifact_errors", 1, 1)
			st.Assays[i].DataFile = ""
			continue
		}
		if !a.write(&brapi2isa.Artifact{Path: path.Join(dir, brapi2isa.DataFileName(studyID, level)), Lines: table.Lines()}) {
			st.Assays[i].DataFile = ""
		}
	}
	return st, nil
}

// units materializes the observation units of a study.
func (a *Assembler) units(ctx context.Context, studyID string) ([]brapi2isa.ObservationUnit, error) {
	recs, err := brapi2isa.Collect(a.Client.ObservationUnits(ctx, studyID))
	if err != nil {
		return nil, errors.Wrap(err, "getting observation units")
	}
	return brapi2isa.DecodeObservationUnits(recs)
}

// Levels discovers the observation levels of a study.
func (a *Assembler) Levels(ctx context.Context, studyID string) (*brapi2isa.LevelSchema, error) {
	units, err := a.units(ctx, studyID)
	if err != nil {
		return nil, err
	}
	return brapi2isa.DiscoverLevels(units), nil
}

// writeTraits writes the trait definition file of a study.
func (a *Assembler) writeTraits(ctx context.Context, studyID, dir string) {
	recs, err := brapi2isa.Collect(a.Client.ObservationVariables(ctx, studyID))
	if err != nil {
		a.Log.Printf("getting observation variables of study %s: %v", studyID, err)
		a.Stats.Count("convert.artifact_errors", 1, 1)
		return
	}
	vars, err := brapi2isa.DecodeObservationVariables(recs)
	if err != nil {
		a.Log.Printf("study %s: %v", studyID, err)
		a.Stats.Count("convert.artifact_errors", 1, 1)
		return
	}
	a.write(&brapi2isa.Artifact{Path: path.Join(dir, brapi2isa.TraitFileName(studyID)), Lines: brapi2isa.TraitDefinitionRecords(vars)})
}
