// Package file provides a brapi2isa.Sink which writes artifacts under a local
// directory.
package file

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pilosa/brapi2isa"
	"github.com/pkg/errors"
)

// SinkOption is a functional option for the file Sink.
type SinkOption func(s *Sink) error

// OptSinkRoot sets the directory artifacts are written under. It is created
// if it does not exist.
func OptSinkRoot(root string) SinkOption {
	return func(s *Sink) error {
		if root == "" {
			return errors.New("empty output directory")
		}
		s.root = root
		return nil
	}
}

// OptSinkPerm sets the permissions of written files.
func OptSinkPerm(perm os.FileMode) SinkOption {
	return func(s *Sink) error {
		s.perm = perm
		return nil
	}
}

// Sink is a brapi2isa.Sink which writes each artifact to a file.
type Sink struct {
	root string
	perm os.FileMode
}

var _ brapi2isa.Sink = &Sink{}

// NewSink gets a new file Sink writing under "outputdir" unless configured
// otherwise.
func NewSink(opts ...SinkOption) (*Sink, error) {
	s := &Sink{
		root: "outputdir",
		perm: 0644,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return nil, errors.Wrap(err, "making output directory")
	}
	return s, nil
}

// Root returns the directory artifacts are written under.
func (s *Sink) Root() string {
	return s.root
}

// Write implements brapi2isa.Sink, replacing any existing file.
func (s *Sink) Write(a *brapi2isa.Artifact) error {
	name := filepath.Join(s.root, filepath.FromSlash(a.Path))
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return errors.Wrapf(err, "making directory for %s", a.Path)
	}
	return errors.Wrapf(ioutil.WriteFile(name, a.Bytes(), s.perm), "writing %s", name)
}

// Close implements brapi2isa.Sink. It does nothing.
func (s *Sink) Close() error { return nil }
