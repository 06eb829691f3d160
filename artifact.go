package brapi2isa

import (
	"strings"

	"github.com/pkg/errors"
)

// Artifact is one output file: a path relative to the output root and its
// lines, without terminators.
type Artifact struct {
	Path  string
	Lines []string
}

// Bytes renders the artifact with each line terminated by "\n".
func (a *Artifact) Bytes() []byte {
	var sb strings.Builder
	for _, l := range a.Lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

// Sink is the interface for somewhere artifacts can be written to.
type Sink interface {
	Write(a *Artifact) error
	Close() error
}

// MultiSink writes every artifact to each of its sinks in turn.
type MultiSink []Sink

// Write implements Sink. It stops at the first failing sink.
func (ms MultiSink) Write(a *Artifact) error {
	for i, s := range ms {
		if err := s.Write(a); err != nil {
			return errors.Wrapf(err, "writing %s to sink %d", a.Path, i)
		}
	}
	return nil
}

// Close implements Sink, closing every sink and returning the first error.
func (ms MultiSink) Close() error {
	var first error
	for _, s := range ms {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// TraitFileName is the trait definition file of a study.
func TraitFileName(studyID string) string {
	return "t_" + studyID + ".txt"
}

// DataFileName is the wide data file of a study level.
func DataFileName(studyID, level string) string {
	return "d_" + studyID + "_" + level + ".txt"
}
