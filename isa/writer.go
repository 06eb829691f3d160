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

package isa

import (
	"path"
	"strings"

	"github.com/pilosa/brapi2isa"
)

func quote(v string) string {
	return `"` + strings.Replace(v, `"`, `""`, -1) + `"`
}

// section accumulates the lines of an investigation file.
type section []string

func (s *section) header(name string) {
	*s = append(*s, name)
}

func (s *section) row(label string, vals ...string) {
	cells := make([]string, 0, len(vals)+1)
	cells = append(cells, label)
	for _, v := range vals {
		cells = append(cells, quote(v))
	}
	*s = append(*s, strings.Join(cells, "\t"))
}

func (s *section) comments(cs []Comment) {
	for _, c := range cs {
		s.row("Comment["+c.Name+"]", c.Value)
	}
}

func (s *section) contacts(prefix string, ps []Person) {
	var last, first, email, affil []string
	for _, p := range ps {
		last = append(last, p.LastName)
		first = append(first, p.FirstName)
		email = append(email, p.Email)
		affil = append(affil, p.Affiliation)
	}
	s.row(prefix+" Person Last Name", last...)
	s.row(prefix+" Person First Name", first...)
	s.row(prefix+" Person Mid Initials")
	s.row(prefix+" Person Email", email...)
	s.row(prefix+" Person Phone")
	s.row(prefix+" Person Fax")
	s.row(prefix+" Person Address")
	s.row(prefix+" Person Affiliation", affil...)
	s.row(prefix + " Person Roles")
	s.row(prefix + " Person Roles Term Accession Number")
	s.row(prefix + " Person Roles Term Source REF")
}

// InvestigationLines renders the investigation file.
func InvestigationLines(inv *Investigation) []string {
	s := section{}
	s.header("ONTOLOGY SOURCE REFERENCE")
	var names, files, versions, descs []string
	for _, o := range inv.OntologySources {
		names = append(names, o.Name)
		files = append(files, "")
		versions = append(versions, "")
		descs = append(descs, o.Description)
	}
	s.row("Term Source Name", names...)
	s.row("Term Source File", files...)
	s.row("Term Source Version", versions...)
	s.row("Term Source Description", descs...)

	s.header("INVESTIGATION")
	s.row("Investigation Identifier", inv.Identifier)
	s.row("Investigation Title", inv.Title)
	s.row("Investigation Description", inv.Description)
	s.row("Investigation Submission Date")
	s.row("Investigation Public Release Date")
	s.comments(inv.Comments)
	s.header("INVESTIGATION PUBLICATIONS")
	s.row("Investigation PubMed ID")
	s.row("Investigation Publication DOI")
	s.row("Investigation Publication Author List")
	s.row("Investigation Publication Title")
	s.row("Investigation Publication Status")
	s.header("INVESTIGATION CONTACTS")
	s.contacts("Investigation", inv.Contacts)

	for _, st := range inv.Studies {
		s.header("STUDY")
		s.row("Study Identifier", st.Identifier)
		s.row("Study Title", st.Title)
		s.row("Study Description", st.Description)
		s.row("Study Submission Date")
		s.row("Study Public Release Date")
		s.row("Study File Name", st.Filename)
		s.comments(st.Comments)

		s.header("STUDY DESIGN DESCRIPTORS")
		var terms, accs, srcs []string
		for _, d := range st.DesignDescriptors {
			terms = append(terms, d.Term)
			accs = append(accs, d.TermAccession)
			srcs = append(srcs, d.TermSource)
		}
		s.row("Study Design Type", terms...)
		s.row("Study Design Type Term Accession Number", accs...)
		s.row("Study Design Type Term Source REF", srcs...)

		s.header("STUDY PUBLICATIONS")
		s.row("Study PubMed ID")
		s.row("Study Publication DOI")
		s.row("Study Publication Author List")
		s.row("Study Publication Title")
		s.row("Study Publication Status")

		s.header("STUDY FACTORS")
		var fnames, ftypes []string
		for _, f := range st.Factors {
			fnames = append(fnames, f.Name)
			ftypes = append(ftypes, f.Type)
		}
		s.row("Study Factor Name", fnames...)
		s.row("Study Factor Type", ftypes...)
		s.row("Study Factor Type Term Accession Number")
		s.row("Study Factor Type Term Source REF")

		s.header("STUDY ASSAYS")
		var afiles, mtypes, ttypes, tsrcs []string
		for _, a := range st.Assays {
			afiles = append(afiles, a.Filename)
			mtypes = append(mtypes, a.MeasurementType.Term)
			ttypes = append(ttypes, a.TechnologyType.Term)
			tsrcs = append(tsrcs, a.TechnologyType.TermSource)
		}
		s.row("Study Assay File Name", afiles...)
		s.row("Study Assay Measurement Type", mtypes...)
		s.row("Study Assay Technology Type", ttypes...)
		s.row("Study Assay Technology Type Term Source REF", tsrcs...)
		s.row("Study Assay Technology Platform")

		s.header("STUDY PROTOCOLS")
		var pnames, ptypes, params []string
		for _, p := range st.Protocols {
			pnames = append(pnames, p.Name)
			ptypes = append(ptypes, p.Type)
			params = append(params, strings.Join(p.Parameters, ";"))
		}
		s.row("Study Protocol Name", pnames...)
		s.row("Study Protocol Type", ptypes...)
		s.row("Study Protocol Parameters Name", params...)

		s.header("STUDY CONTACTS")
		s.contacts("Study", st.Contacts)
	}
	return s
}

// categories returns the distinct characteristic categories of cs in first
// seen order.
func categories(cs ...[]brapi2isa.Characteristic) []string {
	set := brapi2isa.NewOrderedSet()
	for _, c := range cs {
		for _, ch := range c {
			set.Add(ch.Category)
		}
	}
	return set.Items()
}

func fill(row []string, cats []string, cs []brapi2isa.Characteristic) []string {
	vals := make(map[string]string, len(cs))
	for _, c := range cs {
		if _, ok := vals[c.Category]; !ok {
			vals[c.Category] = c.Value
		}
	}
	for _, cat := range cats {
		row = append(row, vals[cat])
	}
	return row
}

// StudyLines renders the study table: one row per collected sample, from its
// source's characteristics to its own and its factor values.
func StudyLines(st *Study) []string {
	var srcChars, smpChars [][]brapi2isa.Characteristic
	factors := brapi2isa.NewOrderedSet()
	for _, src := range st.Sources {
		srcChars = append(srcChars, src.Characteristics)
	}
	for _, smp := range st.Samples {
		smpChars = append(smpChars, smp.Characteristics)
		for _, fv := range smp.FactorValues {
			factors.Add(fv.Factor)
		}
	}
	srcCats, smpCats := categories(srcChars...), categories(smpChars...)

	header := []string{"Source Name"}
	for _, c := range srcCats {
		header = append(header, "Characteristics["+c+"]")
	}
	header = append(header, "Protocol REF", "Performer", "Date", "Sample Name")
	for _, c := range smpCats {
		header = append(header, "Characteristics["+c+"]")
	}
	for _, f := range factors.Items() {
		header = append(header, "Factor Value["+f+"]")
	}

	lines := []string{strings.Join(header, "\t")}
	for _, p := range st.Collections {
		smp := p.Sample
		row := []string{smp.Source.Name}
		row = fill(row, srcCats, smp.Source.Characteristics)
		row = append(row, p.Protocol, p.Performer, p.Date, smp.Name)
		row = fill(row, smpCats, smp.Characteristics)
		fvs := make(map[string]string, len(smp.FactorValues))
		for _, fv := range smp.FactorValues {
			fvs[fv.Factor] = fv.Value
		}
		for _, f := range factors.Items() {
			row = append(row, fvs[f])
		}
		lines = append(lines, strings.Join(row, "\t"))
	}
	return lines
}

// AssayLines renders an assay table: one row per phenotyping process.
func AssayLines(a *Assay) []string {
	params := brapi2isa.NewOrderedSet()
	for _, p := range a.Processes {
		for _, pv := range p.ParameterValues {
			params.Add(pv.Parameter)
		}
	}
	header := []string{"Sample Name", "Protocol REF"}
	for _, p := range params.Items() {
		header = append(header, "Parameter Value["+p+"]")
	}
	header = append(header, "Assay Name", "Derived Data File")

	lines := []string{strings.Join(header, "\t")}
	for _, p := range a.Processes {
		row := []string{p.Sample.Name, p.Protocol}
		for _, name := range params.Items() {
			var vals []string
			for _, pv := range p.ParameterValues {
				if pv.Parameter == name {
					vals = append(vals, pv.Value)
				}
			}
			row = append(row, strings.Join(vals, ";"))
		}
		row = append(row, p.Name, a.DataFile)
		lines = append(lines, strings.Join(row, "\t"))
	}
	return lines
}

// Dump renders inv as ISA-Tab artifacts placed under dir.
func Dump(inv *Investigation, dir string) []*brapi2isa.Artifact {
	arts := []*brapi2isa.Artifact{{Path: path.Join(dir, InvestigationFileName), Lines: InvestigationLines(inv)}}
	for _, st := range inv.Studies {
		arts = append(arts, &brapi2isa.Artifact{Path: path.Join(dir, st.Filename), Lines: StudyLines(st)})
		for _, a := range st.Assays {
			arts = append(arts, &brapi2isa.Artifact{Path: path.Join(dir, a.Filename), Lines: AssayLines(a)})
		}
	}
	return arts
}
