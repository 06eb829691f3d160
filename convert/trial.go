package convert

import (
	"context"
	"strings"

	"github.com/biter777/countries"
	"github.com/mitchellh/mapstructure"
	"github.com/pilosa/brapi2isa"
	"github.com/pilosa/brapi2isa/isa"
	"github.com/pkg/errors"
)

// Contact is a trial or study contact.
type Contact struct {
	Name            string `mapstructure:"name"`
	Email           string `mapstructure:"email"`
	InstitutionName string `mapstructure:"institutionName"`
}

// Person converts c to an ISA person. BrAPI only has a full name, which is
// split on its first space.
func (c Contact) Person() isa.Person {
	parts := strings.SplitN(strings.TrimSpace(c.Name), " ", 2)
	p := isa.Person{
		FirstName:   brapi2isa.OrNA(parts[0]),
		LastName:    "NA",
		Email:       c.Email,
		Affiliation: c.InstitutionName,
	}
	if len(parts) == 2 {
		p.LastName = brapi2isa.OrNA(strings.TrimSpace(parts[1]))
	}
	return p
}

// StudyRef is the summary of a study listed in a trial.
type StudyRef struct {
	StudyDbID string `mapstructure:"studyDbId"`
	StudyName string `mapstructure:"studyName"`
}

// Trial is a BrAPI trial, which becomes an ISA investigation.
type Trial struct {
	TrialDbID string     `mapstructure:"trialDbId"`
	TrialName string     `mapstructure:"trialName"`
	Contacts  []Contact  `mapstructure:"contacts"`
	Studies   []StudyRef `mapstructure:"studies"`
}

// Dir is the directory, relative to the sink root, that a trial's files are
// written to.
func (t *Trial) Dir() string {
	name := t.TrialName
	if name == "" {
		name = t.TrialDbID
	}
	return strings.Replace(name, "/", "_", -1)
}

// Location is where a study took place.
type Location struct {
	Name        string      `mapstructure:"name"`
	CountryCode string      `mapstructure:"countryCode"`
	CountryName string      `mapstructure:"countryName"`
	Latitude    interface{} `mapstructure:"latitude"`
	Longitude   interface{} `mapstructure:"longitude"`
	Altitude    interface{} `mapstructure:"altitude"`
}

// Country returns the ISO 3166 alpha-2 code of the location's country if it
// can be determined, its name otherwise, or "NA".
func (l Location) Country() string {
	code := strings.TrimSpace(l.CountryCode)
	switch len(code) {
	case 2:
		return code
	case 3:
		if c := countries.ByName(code); c != countries.Unknown {
			return c.Alpha2()
		}
		return code
	}
	if l.CountryName != "" {
		return l.CountryName
	}
	return "NA"
}

// DataLink is a link to a file attached to a study.
type DataLink struct {
	URL  string `mapstructure:"url"`
	Type string `mapstructure:"type"`
}

// Study is the full record of a BrAPI study.
type Study struct {
	StudyDbID        string      `mapstructure:"studyDbId"`
	Name             string      `mapstructure:"name"`
	StudyName        string      `mapstructure:"studyName"`
	StudyDescription interface{} `mapstructure:"studyDescription"`
	StartDate        interface{} `mapstructure:"startDate"`
	EndDate          interface{} `mapstructure:"endDate"`
	StudyType        interface{} `mapstructure:"studyType"`
	Location         Location    `mapstructure:"location"`
	Contacts         []Contact   `mapstructure:"contacts"`
	DataLinks        []DataLink  `mapstructure:"dataLinks"`
	TrialDbID        string      `mapstructure:"trialDbId"`
	TrialDbIDs       []string    `mapstructure:"trialDbIds"`

	// raw keeps the location as sent for geohashing.
	raw map[string]interface{}
}

// Title returns the study's name, falling back to studyName and then "NA".
func (s *Study) Title() string {
	switch {
	case s.Name != "":
		return s.Name
	case s.StudyName != "":
		return s.StudyName
	}
	return "NA"
}

// TrialIDs returns the ids of the trials the study belongs to.
func (s *Study) TrialIDs() []string {
	if s.TrialDbID != "" {
		return []string{s.TrialDbID}
	}
	return s.TrialDbIDs
}

func decode(rec map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return errors.Wrap(err, "getting decoder")
	}
	return dec.Decode(rec)
}

// DecodeTrial decodes a trial record.
func DecodeTrial(rec map[string]interface{}) (*Trial, error) {
	t := &Trial{}
	if err := decode(rec, t); err != nil {
		return nil, errors.Wrap(err, "decoding trial")
	}
	return t, nil
}

// DecodeStudy decodes a study record.
func DecodeStudy(rec map[string]interface{}) (*Study, error) {
	s := &Study{raw: rec}
	if err := decode(rec, s); err != nil {
		return nil, errors.Wrap(err, "decoding study")
	}
	return s, nil
}

// emptyTrial wraps studies which belong to no trial.
func emptyTrial(studyIDs []string) *Trial {
	t := &Trial{
		TrialDbID: "trial_less_study_" + studyIDs[0],
		TrialName: "NA",
	}
	for _, id := range studyIDs {
		t.Studies = append(t.Studies, StudyRef{StudyDbID: id})
	}
	return t
}

// SelectTrials resolves the trials to convert. Explicit trial ids win. Without
// them the trials of each study are fetched, and studies belonging to no
// trial are wrapped in a single synthetic one.
func (a *Assembler) SelectTrials(ctx context.Context, trialIDs, studyIDs []string) ([]*Trial, error) {
	if len(trialIDs) == 0 {
		if len(studyIDs) == 0 {
			return nil, errors.New("no trials or studies given")
		}
		a.Log.Debugf("resolving trials of studies %s", strings.Join(studyIDs, ","))
		ids := brapi2isa.NewOrderedSet()
		for _, id := range studyIDs {
			rec, err := a.Client.Study(ctx, id)
			if err != nil {
				return nil, err
			}
			st, err := DecodeStudy(rec)
			if err != nil {
				return nil, errors.Wrapf(err, "study %s", id)
			}
			for _, tid := range st.TrialIDs() {
				ids.Add(tid)
			}
		}
		if ids.Len() == 0 {
			return []*Trial{emptyTrial(studyIDs)}, nil
		}
		trialIDs = ids.Items()
		a.Log.Debugf("studies belong to trials %s", strings.Join(trialIDs, ","))
	}
	recs, err := a.Client.Trials(ctx, trialIDs)
	if err != nil {
		return nil, err
	}
	trials := make([]*Trial, 0, len(recs))
	for _, rec := range recs {
		t, err := DecodeTrial(rec)
		if err != nil {
			return nil, err
		}
		trials = append(trials, t)
	}
	return trials, nil
}
