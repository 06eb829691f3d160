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

package brapi2isa

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	unitColumns      = []string{"observationUnitDbId", "observationUnitXref", "X", "Y", "germplasmDbId", "germplasmName"}
	germplasmColumns = []string{"accessionNumber"}
	obsColumns       = []string{"season", "observationTimeStamp"}
)

// SublevelColumn returns the header of the column holding a sub-level token.
func SublevelColumn(token string) string {
	return "observationLevels[" + token + "]"
}

// WideTable is one row per observation of a level, with one column per
// variable of that level.
type WideTable struct {
	Level   string
	Header  []string
	Rows    [][]string
	Dropped int
}

// Lines renders the table as tab separated lines, header first.
func (t *WideTable) Lines() []string {
	lines := make([]string, 0, len(t.Rows)+1)
	lines = append(lines, strings.Join(t.Header, "\t"))
	for _, row := range t.Rows {
		lines = append(lines, strings.Join(row, "\t"))
	}
	return lines
}

// PivotBuilder turns the nested observations of units into wide tables.
type PivotBuilder struct {
	Accessions AccessionLookup
	Log        Logger
	Stats      Statter
}

// NewPivotBuilder gets a PivotBuilder which logs and counts nothing.
func NewPivotBuilder(accessions AccessionLookup) *PivotBuilder {
	return &PivotBuilder{
		Accessions: accessions,
		Log:        NopLogger{},
		Stats:      NopStatter{},
	}
}

// BuildWideTable is a convenience around NewPivotBuilder(accessions).Build.
func BuildWideTable(level string, units []ObservationUnit, variables []string, accessions AccessionLookup, sublevels []string) (*WideTable, error) {
	return NewPivotBuilder(accessions).Build(level, units, variables, sublevels)
}

// Build produces the wide table of level. The header is the sub-level
// columns, the fixed unit, germplasm and observation columns, then variables
// in the given order. Every unit whose effective level is level contributes
// one row per observation of a known variable; observations of unknown
// variables are logged and dropped. A unit referencing a germplasm without a
// cached accession aborts the table with a *MissingReferenceError.
func (p *PivotBuilder) Build(level string, units []ObservationUnit, variables, sublevels []string) (*WideTable, error) {
	header := make([]string, 0, len(sublevels)+len(unitColumns)+len(germplasmColumns)+len(obsColumns)+len(variables))
	for _, tok := range sublevels {
		header = append(header, SublevelColumn(tok))
	}
	header = append(header, unitColumns...)
	header = append(header, germplasmColumns...)
	header = append(header, obsColumns...)
	fixed := make(map[string]int, len(header))
	for i, h := range header {
		fixed[h] = i
	}
	subIdx := make(map[string]int, len(sublevels))
	for i, tok := range sublevels {
		subIdx[tok] = i
	}
	varIdx := make(map[string]int, len(variables))
	for _, v := range variables {
		if _, ok := varIdx[v]; ok {
			continue
		}
		varIdx[v] = len(header)
		header = append(header, v)
	}

	t := &WideTable{Level: level, Header: header, Rows: [][]string{}}
	for i := range units {
		u := &units[i]
		if u.Level() != level {
			continue
		}
		base, err := p.baseRow(u, len(header), fixed, subIdx)
		if err != nil {
			return nil, err
		}
		for _, obs := range u.Observations {
			row := make([]string, len(base))
			copy(row, base)
			for _, col := range obsColumns {
				var v interface{}
				if col == "season" {
					v = obs.Season
				} else {
					v = obs.ObservationTimeStamp
				}
				if !truthy(v) {
					p.Log.Debugf("%v", &MissingFieldWarning{Field: col, Referrer: "observation of unit " + u.ObservationUnitDbID})
					continue
				}
				row[fixed[col]] = Stringify(v)
			}
			idx, ok := varIdx[obs.ObservationVariableName]
			if !ok {
				p.Log.Printf("%v", &UnknownVariableWarning{Level: level, Unit: u.ObservationUnitDbID, Variable: obs.ObservationVariableName})
				p.Stats.Count("pivot.dropped", 1, 1, "level:"+level)
				t.Dropped++
				continue
			}
			row[idx] = Stringify(obs.Value)
			t.Rows = append(t.Rows, row)
		}
	}
	p.Stats.Count("pivot.rows", int64(len(t.Rows)), 1, "level:"+level)
	return t, nil
}

// baseRow fills the cells shared by every observation of u.
func (p *PivotBuilder) baseRow(u *ObservationUnit, width int, fixed, subIdx map[string]int) ([]string, error) {
	row := make([]string, width)
	for _, tok := range u.LevelTokens() {
		if i, ok := subIdx[tok.Token]; ok {
			row[i] = tok.Value
		}
	}
	row[fixed["observationUnitDbId"]] = u.ObservationUnitDbID
	row[fixed["observationUnitXref"]] = joinXrefs(u.ObservationUnitXref)
	if truthy(u.X) {
		row[fixed["X"]] = Stringify(u.X)
	}
	if truthy(u.Y) {
		row[fixed["Y"]] = Stringify(u.Y)
	}
	row[fixed["germplasmName"]] = u.GermplasmName
	if u.GermplasmDbID != "" {
		row[fixed["germplasmDbId"]] = u.GermplasmDbID
		acc, ok, err := p.Accessions.Get(u.GermplasmDbID)
		if err != nil {
			return nil, errors.Wrapf(err, "getting accession of germplasm %s", u.GermplasmDbID)
		}
		if !ok {
			return nil, &MissingReferenceError{Kind: "germplasm", ID: u.GermplasmDbID, Referrer: "observation unit " + u.ObservationUnitDbID}
		}
		row[fixed["accessionNumber"]] = acc
	}
	return row, nil
}

func joinXrefs(xrefs []Xref) string {
	pairs := make([]string, 0, len(xrefs))
	for _, x := range xrefs {
		if x.ID == "" {
			continue
		}
		pairs = append(pairs, x.Source+":"+x.ID)
	}
	return strings.Join(pairs, ";")
}
