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

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// StudyLevel is the observation level of units which do not declare one.
const StudyLevel = "study"

// Xref is an external reference of an observation unit.
type Xref struct {
	Source string `mapstructure:"source"`
	ID     string `mapstructure:"id"`
}

// Treatment is an experimental factor applied to an observation unit.
type Treatment struct {
	Factor   string `mapstructure:"factor"`
	Modality string `mapstructure:"modality"`
}

// Observation is a single measured value of one variable on one unit.
type Observation struct {
	ObservationVariableName string      `mapstructure:"observationVariableName"`
	ObservationVariableDbID string      `mapstructure:"observationVariableDbId"`
	Value                   interface{} `mapstructure:"value"`
	ObservationTimeStamp    interface{} `mapstructure:"observationTimeStamp"`
	Collector               string      `mapstructure:"collector"`
	Season                  interface{} `mapstructure:"season"`
}

// ObservationUnit is a plot, plant or other entity on which observations are
// made. Positional fields are kept as raw decoded values so that they render
// exactly as the server sent them.
type ObservationUnit struct {
	ObservationUnitDbID string        `mapstructure:"observationUnitDbId"`
	ObservationUnitName string        `mapstructure:"observationUnitName"`
	ObservationLevel    string        `mapstructure:"observationLevel"`
	ObservationLevels   string        `mapstructure:"observationLevels"`
	ObservationUnitXref []Xref        `mapstructure:"observationUnitXref"`
	X                   interface{}   `mapstructure:"X"`
	Y                   interface{}   `mapstructure:"Y"`
	BlockNumber         interface{}   `mapstructure:"blockNumber"`
	PlotNumber          interface{}   `mapstructure:"plotNumber"`
	PlantNumber         interface{}   `mapstructure:"plantNumber"`
	GermplasmDbID       string        `mapstructure:"germplasmDbId"`
	GermplasmName       string        `mapstructure:"germplasmName"`
	Treatments          []Treatment   `mapstructure:"treatments"`
	Observations        []Observation `mapstructure:"observations"`
}

// Level returns the unit's observation level, or StudyLevel if it has none.
func (u *ObservationUnit) Level() string {
	if u.ObservationLevel == "" {
		return StudyLevel
	}
	return u.ObservationLevel
}

// LevelToken is one "token:value" pair of a compound observationLevels string.
type LevelToken struct {
	Token string
	Value string
}

// LevelTokens parses the unit's observationLevels string. Pairs without a
// colon are skipped.
func (u *ObservationUnit) LevelTokens() []LevelToken {
	return ParseLevelTokens(u.ObservationLevels)
}

// ParseLevelTokens splits a compound "token:value,token:value" string.
func ParseLevelTokens(s string) []LevelToken {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	toks := make([]LevelToken, 0, len(parts))
	for _, p := range parts {
		kv := strings.SplitN(p, ":", 2)
		if len(kv) != 2 {
			continue
		}
		tok := strings.TrimSpace(kv[0])
		if tok == "" {
			continue
		}
		toks = append(toks, LevelToken{Token: tok, Value: strings.TrimSpace(kv[1])})
	}
	return toks
}

// decodeRecord decodes a JSON object into out. Weak typing lets numeric ids
// land in string fields, which servers disagree on.
func decodeRecord(rec map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return errors.Wrap(err, "getting decoder")
	}
	return dec.Decode(rec)
}

// DecodeObservationUnits decodes raw observation unit records in order.
func DecodeObservationUnits(recs []map[string]interface{}) ([]ObservationUnit, error) {
	units := make([]ObservationUnit, len(recs))
	for i, rec := range recs {
		if err := decodeRecord(rec, &units[i]); err != nil {
			return nil, errors.Wrapf(err, "decoding observation unit %d", i)
		}
	}
	return units, nil
}
