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
	"context"
	"strings"

	"github.com/pkg/errors"
)

// Attribute is one key of a germplasm record.
type Attribute struct {
	Key   string
	Value interface{}
}

// Attributes is a germplasm record with its keys in document order.
type Attributes []Attribute

// Get returns the value for key.
func (a Attributes) Get(key string) (interface{}, bool) {
	for _, at := range a {
		if at.Key == key {
			return at.Value, true
		}
	}
	return nil, false
}

// AttributeFetcher gets the full attribute record of a germplasm.
type AttributeFetcher interface {
	GermplasmAttributes(ctx context.Context, germplasmID string) (Attributes, error)
}

// Characteristic is a (category, value) pair describing a source material.
type Characteristic struct {
	Category string
	Value    string
}

// characteristicRule turns one attribute value into a characteristic. ok is
// false when the attribute yields nothing.
type characteristicRule func(value interface{}) (c Characteristic, ok bool)

func renamed(category string) characteristicRule {
	return func(value interface{}) (Characteristic, bool) {
		return Characteristic{Category: category, Value: Stringify(value)}, true
	}
}

// joinedPairs builds a rule for a list of objects, each rendered as
// "<left>:<right>" and joined with ";". Missing halves are rendered "NA".
func joinedPairs(category, left, right string, emptyOK bool) characteristicRule {
	return func(value interface{}) (Characteristic, bool) {
		items, _ := value.([]interface{})
		if len(items) == 0 && !emptyOK {
			return Characteristic{}, false
		}
		pairs := make([]string, 0, len(items))
		for _, item := range items {
			obj, _ := item.(map[string]interface{})
			pairs = append(pairs, OrNA(obj[left])+":"+OrNA(obj[right]))
		}
		return Characteristic{Category: category, Value: strings.Join(pairs, ";")}, true
	}
}

// synonyms only maps arrays. A plain string is not a synonym list.
func synonyms(value interface{}) (Characteristic, bool) {
	v, ok := value.([]interface{})
	if !ok {
		return Characteristic{}, false
	}
	names := make([]string, len(v))
	for i, n := range v {
		names[i] = Stringify(n)
	}
	return Characteristic{Category: "synonyms", Value: strings.Join(names, ";")}, true
}

var characteristicRules = map[string]characteristicRule{
	"accessionNumber": renamed("Material Source ID"),
	"commonCropName":  renamed("commonCropName"),
	"genus":           renamed("Genus"),
	"species":         renamed("Species"),
	"subtaxa":         renamed("Infraspecific Name"),
	"taxonIds":        joinedPairs("Organism", "sourceName", "taxonId", false),
	"donors":          joinedPairs("Donors", "donorInstituteCode", "donorAccessionNumber", true),
	"synonyms":        synonyms,
}

// Characterize maps germplasm attributes onto source characteristics. Output
// follows attribute order and repeated (category, value) pairs are dropped.
func Characterize(attrs Attributes) []Characteristic {
	ret := make([]Characteristic, 0, len(attrs))
	seen := make(map[Characteristic]struct{}, len(attrs))
	for _, at := range attrs {
		rule, ok := characteristicRules[at.Key]
		if !ok {
			rule = renamed(at.Key)
		}
		c, ok := rule(at.Value)
		if !ok {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		ret = append(ret, c)
	}
	return ret
}

// CharacteristicResolver fetches germplasm attributes and maps them onto
// characteristics.
type CharacteristicResolver struct {
	Fetcher AttributeFetcher
	Log     Logger
}

// Resolve returns the characteristics of the given germplasm. A fetch
// failure is returned as is, wrapped with the germplasm id.
func (r *CharacteristicResolver) Resolve(ctx context.Context, germplasmID string) ([]Characteristic, error) {
	attrs, err := r.Fetcher.GermplasmAttributes(ctx, germplasmID)
	if err != nil {
		return nil, errors.Wrapf(err, "getting attributes of germplasm %s", germplasmID)
	}
	chars := Characterize(attrs)
	if r.Log != nil {
		r.Log.Debugf("germplasm %s: %d characteristics", germplasmID, len(chars))
	}
	return chars, nil
}
