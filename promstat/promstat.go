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

// Package promstat implements brapi2isa.Statter on top of a Prometheus
// registry which can be pushed to a Pushgateway when a run completes.
package promstat

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/pilosa/brapi2isa"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var nameReplacer = strings.NewReplacer(".", "_", "-", "_", " ", "_")

// Statter collects stats as Prometheus metrics. Every metric has a single
// "tags" label holding the comma separated tags of the call.
type Statter struct {
	namespace string
	reg       *prometheus.Registry
	factory   promauto.Factory

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
	sets       map[string]*prometheus.GaugeVec
}

var _ brapi2isa.Statter = &Statter{}

// NewStatter returns a Statter registering metrics under namespace in a new
// registry.
func NewStatter(namespace string) *Statter {
	reg := prometheus.NewRegistry()
	return &Statter{
		namespace:  namespace,
		reg:        reg,
		factory:    promauto.With(reg),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		sets:       make(map[string]*prometheus.GaugeVec),
	}
}

// Registry returns the registry holding all collected metrics.
func (s *Statter) Registry() *prometheus.Registry { return s.reg }

func sampled(rate float64) bool {
	return rate >= 1 || rand.Float64() <= rate
}

func tagValue(tags []string) string {
	return strings.Join(tags, ",")
}

func (s *Statter) counter(name string) *prometheus.CounterVec {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[name]
	if !ok {
		c = s.factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: s.namespace,
			Name:      nameReplacer.Replace(name) + "_total",
			Help:      "Count of " + name,
		}, []string{"tags"})
		s.counters[name] = c
	}
	return c
}

func (s *Statter) gauge(name string) *prometheus.GaugeVec {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gauges[name]
	if !ok {
		g = s.factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: s.namespace,
			Name:      nameReplacer.Replace(name),
			Help:      "Last value of " + name,
		}, []string{"tags"})
		s.gauges[name] = g
	}
	return g
}

func (s *Statter) histogram(name string) *prometheus.HistogramVec {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.histograms[name]
	if !ok {
		h = s.factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: s.namespace,
			Name:      nameReplacer.Replace(name),
			Help:      "Distribution of " + name,
			Buckets:   prometheus.DefBuckets,
		}, []string{"tags"})
		s.histograms[name] = h
	}
	return h
}

// set returns the gauge of a set. Each member is one series with a "value"
// label, always at 1.
func (s *Statter) set(name string) *prometheus.GaugeVec {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.sets[name]
	if !ok {
		g = s.factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: s.namespace,
			Name:      nameReplacer.Replace(name) + "_set",
			Help:      "Members of " + name,
		}, []string{"tags", "value"})
		s.sets[name] = g
	}
	return g
}

// Count adds value to the counter called name.
func (s *Statter) Count(name string, value int64, rate float64, tags ...string) {
	if !sampled(rate) {
		return
	}
	s.counter(name).WithLabelValues(tagValue(tags)).Add(float64(value))
}

// Gauge sets the gauge called name.
func (s *Statter) Gauge(name string, value float64, rate float64, tags ...string) {
	if !sampled(rate) {
		return
	}
	s.gauge(name).WithLabelValues(tagValue(tags)).Set(value)
}

// Histogram observes value in the histogram called name.
func (s *Statter) Histogram(name string, value float64, rate float64, tags ...string) {
	if !sampled(rate) {
		return
	}
	s.histogram(name).WithLabelValues(tagValue(tags)).Observe(value)
}

// Set adds value to the set called name. The number of distinct members is
// the number of series of the set gauge.
func (s *Statter) Set(name string, value string, rate float64, tags ...string) {
	if !sampled(rate) {
		return
	}
	s.set(name).WithLabelValues(tagValue(tags), value).Set(1)
}

// Timing observes value, in seconds, in the histogram called name.
func (s *Statter) Timing(name string, value time.Duration, rate float64, tags ...string) {
	s.Histogram(name+"_seconds", value.Seconds(), rate, tags...)
}

// Push sends every collected metric to the Pushgateway at url under job.
func (s *Statter) Push(url, job string) error {
	err := push.New(url, job).Gatherer(s.reg).Push()
	return errors.Wrapf(err, "pushing metrics to %s", url)
}
