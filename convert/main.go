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
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pilosa/brapi2isa"
	"github.com/pilosa/brapi2isa/aws/s3"
	"github.com/pilosa/brapi2isa/boltdb"
	"github.com/pilosa/brapi2isa/brapi"
	"github.com/pilosa/brapi2isa/file"
	"github.com/pilosa/brapi2isa/geohash"
	"github.com/pilosa/brapi2isa/kafka"
	"github.com/pilosa/brapi2isa/leveldb"
	"github.com/pilosa/brapi2isa/promstat"
	"github.com/pkg/errors"
)

// Main holds the configuration of a conversion run.
type Main struct {
	Endpoint               string   `help:"BrAPI v1 endpoint to read from."`
	Trials                 []string `help:"Comma separated trial ids to convert. Pass 'all' for every trial of the endpoint."`
	Studies                []string `help:"Comma separated study ids to convert when no trials are given."`
	PageSize               int      `help:"Number of records requested per page."`
	MaxRetries             int      `help:"Retries of requests failing with a transient status."`
	TimeoutSeconds         int      `help:"Timeout of a single request in seconds."`
	SearchObservationUnits bool     `help:"Get observation units through phenotypes-search instead of the study resource."`
	OutputDir              string   `help:"Directory files are written to. Empty disables local output."`
	Cache                  string   `help:"Accession cache: memory, bolt or leveldb."`
	CacheDir               string   `help:"Directory of bolt or leveldb caches. Defaults to a temporary directory removed after the run."`
	S3Bucket               string   `help:"Also upload files to this S3 bucket."`
	S3Prefix               string   `help:"Key prefix of uploaded files."`
	S3Region               string   `help:"AWS region of the S3 bucket."`
	KafkaHosts             []string `help:"Also publish files to Kafka through these comma separated hosts."`
	KafkaTopic             string   `help:"Kafka topic files are published to."`
	KafkaEncoding          string   `help:"Kafka message encoding: raw or avro."`
	GeohashPrecision       uint     `help:"Characters of the study location geohash. 0 disables it."`
	Pushgateway            string   `help:"Push run metrics to this Prometheus Pushgateway URL."`
	Verbose                bool     `help:"Enable debug logging."`
	LogFile                string   `help:"Also write logs to this file."`
	Config                 string   `help:"Configuration file (TOML unless its extension says otherwise) read for flags not given."`

	log      brapi2isa.Logger
	stats    brapi2isa.Statter
	closers  []io.Closer
	cleanups []string
}

// NewMain returns a new Main with default settings.
func NewMain() *Main {
	return &Main{
		Endpoint:         brapi.DefaultEndpoint,
		Trials:           []string{},
		Studies:          []string{},
		PageSize:         1000,
		MaxRetries:       5,
		TimeoutSeconds:   60,
		OutputDir:        "outputdir",
		Cache:            "memory",
		S3Region:         "us-east-1",
		KafkaTopic:       "brapi2isa",
		KafkaEncoding:    kafka.EncodingRaw,
		GeohashPrecision: 9,
		stats:            brapi2isa.NopStatter{},
	}
}

// Run converts the configured trials or studies.
func (m *Main) Run() (err error) {
	start := time.Now()
	a, err := m.setup()
	if err != nil {
		return err
	}
	defer m.teardown()
	defer m.pushOnExit("convert", &err)
	err = a.Convert(context.Background(), m.Trials, m.Studies)
	if err != nil {
		return err
	}
	m.log.Printf("done in %v", time.Since(start))
	return nil
}

// RunTraits writes only the trait definition files of the configured studies.
func (m *Main) RunTraits() (err error) {
	a, err := m.setup()
	if err != nil {
		return err
	}
	defer m.teardown()
	defer m.pushOnExit("traits", &err)
	ctx := context.Background()
	trials, err := a.SelectTrials(ctx, m.Trials, m.Studies)
	if err != nil {
		return errors.Wrap(err, "selecting trials")
	}
	for _, t := range trials {
		for _, ref := range t.Studies {
			if !isASCII(ref.StudyDbID) {
				continue
			}
			a.writeTraits(ctx, ref.StudyDbID, t.Dir())
		}
	}
	return nil
}

// RunLevels prints the observation levels of each configured study with the
// variables observed at each of them.
func (m *Main) RunLevels(out io.Writer) error {
	a, err := m.setup()
	if err != nil {
		return err
	}
	defer m.teardown()
	ctx := context.Background()
	trials, err := a.SelectTrials(ctx, m.Trials, m.Studies)
	if err != nil {
		return errors.Wrap(err, "selecting trials")
	}
	for _, t := range trials {
		for _, ref := range t.Studies {
			if !isASCII(ref.StudyDbID) {
				m.log.Printf("skipping study %s: id contains non ASCII characters", ref.StudyDbID)
				continue
			}
			schema, err := a.Levels(ctx, ref.StudyDbID)
			if err != nil {
				return errors.Wrapf(err, "discovering levels of study %s", ref.StudyDbID)
			}
			for _, level := range schema.Levels {
				fmt.Fprintf(out, "%s\t%s\t%s\n", ref.StudyDbID, level, strings.Join(schema.VariablesOf(level), ","))
			}
		}
	}
	return nil
}

func (m *Main) setup() (*Assembler, error) {
	if err := m.setupLog(); err != nil {
		return nil, err
	}
	if m.Pushgateway != "" {
		m.stats = promstat.NewStatter("brapi2isa")
	}
	cfg := brapi.NewConfig()
	cfg.Endpoint = m.Endpoint
	cfg.PageSize = m.PageSize
	cfg.MaxRetries = m.MaxRetries
	cfg.Timeout = time.Duration(m.TimeoutSeconds) * time.Second
	cfg.SearchObservationUnits = m.SearchObservationUnits
	client, err := brapi.NewClient(cfg, brapi.OptClientLogger(m.log), brapi.OptClientStatter(m.stats))
	if err != nil {
		m.teardown()
		return nil, errors.Wrap(err, "getting brapi client")
	}
	sink, err := m.sink()
	if err != nil {
		m.teardown()
		return nil, err
	}
	caches, err := m.caches()
	if err != nil {
		m.teardown()
		return nil, err
	}

	a := NewAssembler(client, sink)
	a.Resolver.Log = m.log
	a.Caches = caches
	a.Log = m.log
	a.Stats = m.stats
	if m.GeohashPrecision > 0 {
		a.Geohash = geohash.NewTransformer(m.GeohashPrecision)
	}
	return a, nil
}

func (m *Main) setupLog() error {
	var w io.Writer = os.Stderr
	if m.LogFile != "" {
		f, err := os.OpenFile(m.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return errors.Wrap(err, "opening log file")
		}
		m.closers = append(m.closers, f)
		w = io.MultiWriter(os.Stderr, f)
	}
	logger := log.New(w, "", log.LstdFlags)
	if m.Verbose {
		m.log = brapi2isa.VerboseLogger{Logger: logger}
	} else {
		m.log = brapi2isa.StdLogger{Logger: logger}
	}
	return nil
}

// sink builds the sinks the configuration asks for.
func (m *Main) sink() (brapi2isa.Sink, error) {
	var sinks brapi2isa.MultiSink
	if m.OutputDir != "" {
		fs, err := file.NewSink(file.OptSinkRoot(m.OutputDir))
		if err != nil {
			return nil, errors.Wrap(err, "getting file sink")
		}
		sinks = append(sinks, fs)
	}
	if m.S3Bucket != "" {
		ss, err := s3.NewSink(s3.OptSinkBucket(m.S3Bucket), s3.OptSinkPrefix(m.S3Prefix), s3.OptSinkRegion(m.S3Region))
		if err != nil {
			return nil, errors.Wrap(err, "getting s3 sink")
		}
		sinks = append(sinks, ss)
	}
	if len(m.KafkaHosts) > 0 {
		ks := kafka.NewSink()
		ks.Hosts = m.KafkaHosts
		ks.Topic = m.KafkaTopic
		ks.Encoding = m.KafkaEncoding
		if err := ks.Open(); err != nil {
			return nil, errors.Wrap(err, "opening kafka sink")
		}
		sinks = append(sinks, ks)
	}
	if len(sinks) == 0 {
		return nil, errors.New("no output configured")
	}
	m.closers = append(m.closers, sinks)
	return sinks, nil
}

// caches returns a factory of the configured accession cache kind.
func (m *Main) caches() (CacheFactory, error) {
	if m.Cache == "memory" || m.Cache == "" {
		return func(string) (brapi2isa.AccessionCache, error) {
			return brapi2isa.NewMapCache(), nil
		}, nil
	}
	if m.Cache != "bolt" && m.Cache != "leveldb" {
		return nil, errors.Errorf("unknown cache '%s'", m.Cache)
	}
	dir := m.CacheDir
	if dir == "" {
		tmp, err := ioutil.TempDir("", "brapi2isa")
		if err != nil {
			return nil, errors.Wrap(err, "making cache directory")
		}
		m.cleanups = append(m.cleanups, tmp)
		dir = tmp
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "making cache directory")
	}
	kind := m.Cache
	return func(studyID string) (brapi2isa.AccessionCache, error) {
		name := filepath.Join(dir, url.PathEscape(studyID))
		if kind == "bolt" {
			return boltdb.NewCache(name + ".db")
		}
		return leveldb.NewCache(name)
	}, nil
}

func (m *Main) push(job string) error {
	ps, ok := m.stats.(*promstat.Statter)
	if !ok {
		return nil
	}
	return ps.Push(m.Pushgateway, job)
}

// pushOnExit pushes the metrics of a run whether it failed or not. A push
// error is returned only when the run itself succeeded.
func (m *Main) pushOnExit(job string, err *error) {
	if *err != nil {
		m.stats.Count(job+".failures", 1, 1)
	}
	perr := m.push(job)
	if perr == nil {
		return
	}
	if *err == nil {
		*err = errors.Wrap(perr, "pushing metrics")
		return
	}
	m.log.Printf("pushing metrics: %v", perr)
}

func (m *Main) teardown() {
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil && m.log != nil {
			m.log.Printf("closing: %v", err)
		}
	}
	m.closers = nil
	for _, dir := range m.cleanups {
		if err := os.RemoveAll(dir); err != nil && m.log != nil {
			m.log.Printf("removing %s: %v", dir, err)
		}
	}
	m.cleanups = nil
}
