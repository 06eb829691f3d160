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

// Package kafka provides a brapi2isa.Sink which publishes artifacts to a
// Kafka topic, one message per file.
package kafka

import (
	"github.com/Shopify/sarama"
	"github.com/linkedin/goavro/v2"
	"github.com/pilosa/brapi2isa"
	"github.com/pkg/errors"
)

// Encodings supported by Sink.
const (
	EncodingRaw  = "raw"
	EncodingAvro = "avro"
)

// ArtifactSchema is the Avro schema of messages written with EncodingAvro.
const ArtifactSchema = `{
  "type": "record",
  "name": "Artifact",
  "namespace": "com.pilosa.brapi2isa",
  "fields": [
    {"name": "path", "type": "string"},
    {"name": "lines", "type": {"type": "array", "items": "string"}}
  ]
}`

// Sink writes artifacts to Kafka. Messages are keyed by artifact path.
type Sink struct {
	Hosts    []string
	Topic    string
	Encoding string

	producer sarama.SyncProducer
	codec    *goavro.Codec
}

var _ brapi2isa.Sink = &Sink{}

// NewSink gets a new Sink with default settings.
func NewSink() *Sink {
	return &Sink{
		Hosts:    []string{"localhost:9092"},
		Topic:    "brapi2isa",
		Encoding: EncodingRaw,
	}
}

// Open connects a producer to the configured hosts.
func (s *Sink) Open() error {
	conf := sarama.NewConfig()
	conf.Version = sarama.V0_10_0_0
	conf.Producer.Return.Successes = true
	conf.Producer.RequiredAcks = sarama.WaitForAll
	producer, err := sarama.NewSyncProducer(s.Hosts, conf)
	if err != nil {
		return errors.Wrap(err, "getting new producer")
	}
	return s.OpenWith(producer)
}

// OpenWith uses an existing producer, which the Sink takes ownership of.
func (s *Sink) OpenWith(producer sarama.SyncProducer) error {
	switch s.Encoding {
	case EncodingRaw:
	case EncodingAvro:
		codec, err := goavro.NewCodec(ArtifactSchema)
		if err != nil {
			return errors.Wrap(err, "parsing artifact schema")
		}
		s.codec = codec
	default:
		return errors.Errorf("unknown encoding '%s'", s.Encoding)
	}
	s.producer = producer
	return nil
}

// Encode renders an artifact as a message value.
func (s *Sink) Encode(a *brapi2isa.Artifact) ([]byte, error) {
	if s.codec == nil {
		return a.Bytes(), nil
	}
	lines := make([]interface{}, len(a.Lines))
	for i, l := range a.Lines {
		lines[i] = l
	}
	buf, err := s.codec.BinaryFromNative(nil, map[string]interface{}{
		"path":  a.Path,
		"lines": lines,
	})
	return buf, errors.Wrap(err, "avro encoding artifact")
}

// Write implements brapi2isa.Sink.
func (s *Sink) Write(a *brapi2isa.Artifact) error {
	if s.producer == nil {
		return errors.New("sink is not open")
	}
	val, err := s.Encode(a)
	if err != nil {
		return err
	}
	_, _, err = s.producer.SendMessage(&sarama.ProducerMessage{
		Topic: s.Topic,
		Key:   sarama.StringEncoder(a.Path),
		Value: sarama.ByteEncoder(val),
	})
	return errors.Wrapf(err, "sending %s", a.Path)
}

// Close implements brapi2isa.Sink.
func (s *Sink) Close() error {
	if s.producer == nil {
		return nil
	}
	return errors.Wrap(s.producer.Close(), "closing producer")
}
