package convert

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pilosa/brapi2isa"
	"github.com/pilosa/brapi2isa/brapi"
	"github.com/pilosa/brapi2isa/geohash"
	"github.com/pilosa/brapi2isa/isa"
	"github.com/pilosa/brapi2isa/test"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSink struct {
	files map[string][]string
	fail  string
}

func newMemSink() *memSink {
	return &memSink{files: make(map[string][]string)}
}

func (m *memSink) Write(a *brapi2isa.Artifact) error {
	if a.Path == m.fail {
		return errors.New("disk full")
	}
	m.files[a.Path] = a.Lines
	return nil
}

func (m *memSink) Close() error { return nil }

func newAssembler(t *testing.T, srv *test.Server, sink brapi2isa.Sink) *Assembler {
	t.Helper()
	cfg := brapi.NewConfig()
	cfg.Endpoint = srv.Endpoint
	cfg.MaxRetries = 0
	client, err := brapi.NewClient(cfg, brapi.OptClientBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }))
	test.ErrNil(t, err, "getting client")
	a := NewAssembler(client, sink)
	a.Now = func() time.Time { return time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC) }
	a.Geohash = geohash.NewTransformer(6)
	return a
}

// fakeTrial serves a trial with one convertible study and one whose id is not
// ASCII. Unit u3 references a germplasm the study does not list.
func fakeTrial() *test.Server {
	srv := test.NewServer()
	srv.AddObject("trials/t1", `{"trialDbId": "t1", "trialName": "Trial One",
		"contacts": [{"name": "Ada Lovelace", "email": "ada@example.org", "institutionName": "INRA"}],
		"studies": [{"studyDbId": "s1"}, {"studyDbId": "sé"}]}`)
	srv.AddObject("studies/s1", `{"studyDbId": "s1", "studyName": "Study One", "startDate": "2019-01-01",
		"studyType": "Phenotyping", "trialDbIds": ["t1"],
		"location": {"name": "Field", "countryCode": "FRA", "latitude": 57.64911, "longitude": 10.40744},
		"dataLinks": [{"url": "http://example.org/d.zip", "type": "zip"}]}`)
	srv.AddList("studies/s1/observationunits",
		`{"observationUnitDbId": "u1", "observationUnitName": "p1", "observationLevel": "plot", "observationLevels": "block:1,plot:10",
		  "germplasmDbId": "g1", "germplasmName": "G1", "treatments": [{"factor": "watering", "modality": "dry"}],
		  "observations": [{"observationVariableName": "height", "value": 12.5, "season": "2019"}]}`,
		`{"observationUnitDbId": "u2", "observationUnitName": "p2", "observationLevel": "plot", "observationLevels": "block:1,plot:11",
		  "germplasmDbId": "g2", "germplasmName": "G2",
		  "observations": [{"observationVariableName": "height", "value": 13}]}`,
		`{"observationUnitDbId": "u3", "observationUnitName": "p3", "observationLevel": "plant",
		  "germplasmDbId": "g9", "germplasmName": "G9",
		  "observations": [{"observationVariableName": "leaf", "value": 4}]}`,
	)
	srv.AddList("studies/s1/germplasm",
		`{"germplasmDbId": "g1", "germplasmName": "G1", "accessionNumber": "A1"}`,
		`{"germplasmDbId": "g2", "germplasmName": "G2", "accessionNumber": "A2"}`,
	)
	srv.AddObject("germplasm/g1", `{"germplasmDbId": "g1", "genus": "Zea"}`)
	srv.AddObject("germplasm/g2", `{"germplasmDbId": "g2", "genus": "Zea"}`)
	srv.AddList("studies/s1/observationvariables",
		`{"observationVariableDbId": "v1", "name": "height", "trait": {"name": "Plant height"}}`)
	return srv
}

func TestConvert(t *testing.T) {
	srv := fakeTrial()
	defer srv.Close()
	sink := newMemSink()
	a := newAssembler(t, srv, sink)

	err := a.Convert(context.Background(), []string{"t1"}, nil)
	test.ErrNil(t, err, "converting")

	paths := make([]string, 0, len(sink.files))
	for p := range sink.files {
		paths = append(paths, p)
	}
	assert.ElementsMatch(t, []string{
		"Trial One/t_s1.txt",
		"Trial One/d_s1_plot.txt",
		"Trial One/i_investigation.txt",
		"Trial One/s_s1.txt",
		"Trial One/a_s1_plot.txt",
		"Trial One/a_s1_plant.txt",
	}, paths)

	data := sink.files["Trial One/d_s1_plot.txt"]
	require.Len(t, data, 3)
	assert.Equal(t, "1\t10\tu1\t\t\t\tg1\tG1\tA1\t2019\t\t12.5", data[1])
	assert.Equal(t, "1\t11\tu2\t\t\t\tg2\tG2\tA2\t\t\t13", data[2])

	traits := sink.files["Trial One/t_s1.txt"]
	require.Len(t, traits, 2)
	assert.Equal(t, strings.Join(brapi2isa.TraitHeader, "\t"), traits[0])

	test.MustBe(t, []string{
		"Source Name\tCharacteristics[germplasmDbId]\tCharacteristics[Genus]\tProtocol REF\tPerformer\tDate\tSample Name\tCharacteristics[Observation unit type]\tFactor Value[watering]",
		"G1\tg1\tZea\tsample collection\tNA\t2020-01-02T03:04:05\tp1\tplot\tdry",
		"G2\tg2\tZea\tsample collection\tNA\t2020-01-02T03:04:05\tp2\tplot\t",
	}, sink.files["Trial One/s_s1.txt"])

	test.MustBe(t, []string{
		"Sample Name\tProtocol REF\tParameter Value[season]\tAssay Name\tDerived Data File",
		"p1\tphenotyping\t2019\tassay-name_(u1)\td_s1_plot.txt",
		"p2\tphenotyping\tnone reported\tassay-name_(u2)\td_s1_plot.txt",
	}, sink.files["Trial One/a_s1_plot.txt"])
	test.MustBe(t, []string{"Sample Name\tProtocol REF\tAssay Name\tDerived Data File"}, sink.files["Trial One/a_s1_plant.txt"])

	inv := strings.Join(sink.files["Trial One/i_investigation.txt"], "\n")
	for _, want := range []string{
		"Term Source Name\t\"OBI\"",
		"Investigation Identifier\t\"t1\"",
		"Comment[MIAPPE version]\t\"1.1\"",
		"Investigation Person Last Name\t\"Lovelace\"",
		"Investigation Person First Name\t\"Ada\"",
		"Study Identifier\t\"s1\"",
		"Study Title\t\"Study One\"",
		"Comment[Study Country]\t\"FR\"",
		"Comment[Study Latitude]\t\"57.64911\"",
		"Comment[Study Altitude]\t\"NA\"",
		"Comment[Study Geohash]\t\"u4pruy\"",
		"Comment[Trait Definition File]\t\"t_s1.txt\"",
		"Comment[Study Data File Link]\t\"http://example.org/d.zip\"",
		"Study Design Type\t\"Phenotyping\"",
		"Study Assay File Name\t\"a_s1_plot.txt\"\t\"a_s1_plant.txt\"",
		"Study Assay Technology Type\t\"plot multimodal technique\"\t\"plant multimodal technique\"",
	} {
		assert.Contains(t, inv, want)
	}

	for _, r := range srv.Requests() {
		assert.NotContains(t, r.Path, "sé", "non ASCII study must not be requested")
	}
}

func TestConvertArtifactErrorsAreIsolated(t *testing.T) {
	srv := fakeTrial()
	defer srv.Close()
	sink := newMemSink()
	sink.fail = "Trial One/t_s1.txt"
	a := newAssembler(t, srv, sink)

	err := a.Convert(context.Background(), []string{"t1"}, nil)
	test.ErrNil(t, err, "converting")
	assert.NotContains(t, sink.files, "Trial One/t_s1.txt")
	assert.Contains(t, sink.files, "Trial One/d_s1_plot.txt")
	assert.Contains(t, sink.files, "Trial One/i_investigation.txt")
}

func TestConvertAssaysReferenceWrittenDataFiles(t *testing.T) {
	srv := fakeTrial()
	defer srv.Close()
	sink := newMemSink()
	sink.fail = "Trial One/d_s1_plot.txt"
	a := newAssembler(t, srv, sink)

	inv := &isa.Investigation{}
	st, err := a.ConvertStudy(context.Background(), inv, "s1", "Trial One")
	test.ErrNil(t, err, "converting study")
	require.Len(t, st.Assays, 2)
	// the plot file could not be written and the plant table could not be built
	assert.Equal(t, "", st.Assays[0].DataFile)
	assert.Equal(t, "", st.Assays[1].DataFile)

	lines := isa.AssayLines(st.Assays[0])
	require.Len(t, lines, 3)
	assert.Equal(t, "p1\tphenotyping\t2019\tassay-name_(u1)\t", lines[1])

	sink = newMemSink()
	a.Sink = sink
	st, err = a.ConvertStudy(context.Background(), inv, "s1", "Trial One")
	test.ErrNil(t, err, "converting study")
	assert.Equal(t, "d_s1_plot.txt", st.Assays[0].DataFile)
	assert.Equal(t, "", st.Assays[1].DataFile)
}

func TestConvertCoreFailurePropagates(t *testing.T) {
	srv := fakeTrial()
	defer srv.Close()
	srv.FailWith("studies/s1", 500)
	a := newAssembler(t, srv, newMemSink())

	err := a.Convert(context.Background(), []string{"t1"}, nil)
	require.Error(t, err)
	assert.True(t, brapi2isa.IsTransportError(err))
}

func TestSelectTrials(t *testing.T) {
	srv := test.NewServer()
	defer srv.Close()
	srv.AddObject("trials/t1", `{"trialDbId": "t1", "trialName": "Trial One", "studies": [{"studyDbId": "s1"}]}`)
	srv.AddObject("trials/t2", `{"trialDbId": "t2", "trialName": "Trial Two", "studies": [{"studyDbId": "s2"}]}`)
	srv.AddObject("studies/s1", `{"studyDbId": "s1", "trialDbId": "t1"}`)
	srv.AddObject("studies/s2", `{"studyDbId": "s2", "trialDbIds": ["t2", "t1"]}`)
	srv.AddObject("studies/s3", `{"studyDbId": "s3"}`)
	srv.AddObject("studies/s4", `{"studyDbId": "s4", "trialDbIds": null}`)
	a := newAssembler(t, srv, newMemSink())
	ctx := context.Background()

	trials, err := a.SelectTrials(ctx, []string{"t2"}, []string{"s1"})
	test.ErrNil(t, err, "explicit trials")
	require.Len(t, trials, 1)
	assert.Equal(t, "t2", trials[0].TrialDbID)

	trials, err = a.SelectTrials(ctx, nil, []string{"s1", "s2"})
	test.ErrNil(t, err, "trials of studies")
	require.Len(t, trials, 2)
	assert.Equal(t, "t1", trials[0].TrialDbID)
	assert.Equal(t, "t2", trials[1].TrialDbID)

	trials, err = a.SelectTrials(ctx, nil, []string{"s3", "s4"})
	test.ErrNil(t, err, "trial-less studies")
	require.Len(t, trials, 1)
	test.MustBe(t, &Trial{
		TrialDbID: "trial_less_study_s3",
		TrialName: "NA",
		Studies:   []StudyRef{{StudyDbID: "s3"}, {StudyDbID: "s4"}},
	}, trials[0])
	assert.Equal(t, "NA", trials[0].Dir())

	_, err = a.SelectTrials(ctx, nil, nil)
	require.Error(t, err)
}

func TestLevels(t *testing.T) {
	srv := fakeTrial()
	defer srv.Close()
	a := newAssembler(t, srv, newMemSink())
	schema, err := a.Levels(context.Background(), "s1")
	test.ErrNil(t, err, "discovering levels")
	test.MustBe(t, []string{"plot", "plant"}, schema.Levels)
	test.MustBe(t, []string{"leaf"}, schema.VariablesOf("plant"))
}
