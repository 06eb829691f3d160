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

// Package s3 provides a brapi2isa.Sink which uploads artifacts to an S3
// bucket.
package s3

import (
	"bytes"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/pilosa/brapi2isa"
	"github.com/pkg/errors"
)

// SinkOption is a functional option type for s3.Sink.
type SinkOption func(s *Sink)

// OptSinkBucket sets the S3 bucket for a Sink.
func OptSinkBucket(bucket string) SinkOption {
	return func(s *Sink) {
		s.bucket = bucket
	}
}

// OptSinkRegion sets the AWS region for a Sink.
func OptSinkRegion(region string) SinkOption {
	return func(s *Sink) {
		s.region = region
	}
}

// OptSinkPrefix sets a key prefix prepended to every artifact path.
func OptSinkPrefix(prefix string) SinkOption {
	return func(s *Sink) {
		s.prefix = prefix
	}
}

// OptSinkUploader sets the uploader used instead of one built from a new AWS
// session.
func OptSinkUploader(up s3manageriface.UploaderAPI) SinkOption {
	return func(s *Sink) {
		s.uploader = up
	}
}

// Sink is a brapi2isa.Sink which writes each artifact to an S3 object.
type Sink struct {
	bucket string
	prefix string
	region string

	uploader s3manageriface.UploaderAPI
}

var _ brapi2isa.Sink = &Sink{}

// NewSink returns a new Sink with the options applied.
func NewSink(opts ...SinkOption) (*Sink, error) {
	s := &Sink{
		region: "us-east-1",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bucket == "" {
		return nil, errors.New("no bucket configured")
	}
	if s.uploader == nil {
		sess, err := session.NewSession(&aws.Config{
			Region: aws.String(s.region)},
		)
		if err != nil {
			return nil, errors.Wrap(err, "getting new session")
		}
		s.uploader = s3manager.NewUploader(sess)
	}
	return s, nil
}

// Key returns the object key an artifact is stored under.
func (s *Sink) Key(a *brapi2isa.Artifact) string {
	return path.Join(s.prefix, a.Path)
}

// Write implements brapi2isa.Sink.
func (s *Sink) Write(a *brapi2isa.Artifact) error {
	key := s.Key(a)
	_, err := s.uploader.Upload(&s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(a.Bytes()),
		ContentType: aws.String("text/tab-separated-values"),
	})
	return errors.Wrapf(err, "uploading s3://%s/%s", s.bucket, key)
}

// Close implements brapi2isa.Sink. It does nothing.
func (s *Sink) Close() error { return nil }
