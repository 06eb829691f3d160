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
	"fmt"

	"github.com/pkg/errors"
)

// TransportError is returned when the server answers with a non-2xx status.
// It is fatal for the retrieval in progress; no partial result is kept.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// MissingReferenceError means an entity referenced another one (a germplasm,
// a source) which was never seen.
type MissingReferenceError struct {
	Kind     string
	ID       string
	Referrer string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("%s '%s' referenced by %s is unknown", e.Kind, e.ID, e.Referrer)
}

// UnknownVariableWarning is logged when an observation names a variable
// outside of its level's discovered column set. The observation is dropped.
type UnknownVariableWarning struct {
	Level    string
	Unit     string
	Variable string
}

func (w *UnknownVariableWarning) Error() string {
	return fmt.Sprintf("variable '%s' of unit %s is not a column of level '%s', dropping observation", w.Variable, w.Unit, w.Level)
}

// MissingFieldWarning is logged when an optional field is absent and a blank
// or "NA" is substituted.
type MissingFieldWarning struct {
	Field    string
	Referrer string
}

func (w *MissingFieldWarning) Error() string {
	return fmt.Sprintf("field '%s' missing from %s", w.Field, w.Referrer)
}

// IsTransportError reports whether the cause of err is a *TransportError.
func IsTransportError(err error) bool {
	_, ok := errors.Cause(err).(*TransportError)
	return ok
}

// IsMissingReference reports whether the cause of err is a
// *MissingReferenceError.
func IsMissingReference(err error) bool {
	_, ok := errors.Cause(err).(*MissingReferenceError)
	return ok
}
