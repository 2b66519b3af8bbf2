// Copyright 2020-2023 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package diag defines the loader's diagnostic vocabulary (§7 of the
// loader spec) and a thread-safe Sink that aggregates diagnostics raised
// by many goroutines during a single Load.
//
// The shape follows the teacher's reporter package: a closed set of typed
// errors that each carry a source position and implement Unwrap, rather
// than ad hoc fmt.Errorf strings.
package diag

import (
	"fmt"
	"sync"
)

// Severity distinguishes diagnostics that abort the branch that raised
// them (Error) from ones that are recorded but let resolution continue
// with a best effort (Warning). See §7's propagation column.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Positioned is implemented by every diagnostic raised by the loader; it
// mirrors the teacher's reporter.ErrorWithPos.
type Positioned interface {
	error
	Position() string
	Severity() Severity
	Unwrap() error
}

type base struct {
	pos string
	err error
	sev Severity
}

func (b base) Error() string      { return fmt.Sprintf("%s: %v", b.pos, b.err) }
func (b base) Position() string   { return b.pos }
func (b base) Severity() Severity { return b.sev }
func (b base) Unwrap() error      { return b.err }

// CircularReferenceError is raised when a TOC file is reached a second
// time on its own load chain (§7, §8 property 2).
type CircularReferenceError struct {
	base
	File  string
	Stack []string
}

// NewCircularReference builds a CircularReferenceError for file, given the
// stack of files currently in flight on this load chain (ancestors first).
func NewCircularReference(pos, file string, stack []string) CircularReferenceError {
	stackCopy := append([]string(nil), stack...)
	return CircularReferenceError{
		base:  base{pos: pos, err: fmt.Errorf("circular reference to %q via %v", file, stackCopy), sev: Error},
		File:  file,
		Stack: stackCopy,
	}
}

// InvalidTocHrefError is raised when a node's tocHref has a kind that
// cannot be a TOC include (§4.3 step 1).
type InvalidTocHrefError struct {
	base
	Href string
}

func NewInvalidTocHref(pos, href string) InvalidTocHrefError {
	return InvalidTocHrefError{
		base: base{pos: pos, err: fmt.Errorf("invalid tocHref %q: must reference a TOC file or folder", href), sev: Warning},
		Href: href,
	}
}

// InvalidTopicHrefError is raised when a node's topicHref is itself a TOC
// include (§4.3 step 2).
type InvalidTopicHrefError struct {
	base
	Href string
}

func NewInvalidTopicHref(pos, href string) InvalidTopicHrefError {
	return InvalidTopicHrefError{
		base: base{pos: pos, err: fmt.Errorf("invalid topicHref %q: must not reference a TOC", href), sev: Warning},
		Href: href,
	}
}

// FileNotFoundError is raised when RelativeFolder probing exhausts every
// candidate name without any hit; a git-commit-only hit counts as found
// and suppresses it (§4.2, §9 note 3).
type FileNotFoundError struct {
	base
	Href string
}

func NewFileNotFound(pos, href string) FileNotFoundError {
	return FileNotFoundError{
		base: base{pos: pos, err: fmt.Errorf("no TOC file found under %q", href), sev: Warning},
		Href: href,
	}
}

// MissingAttributeError is raised when a resolved node ends up with an
// empty required attribute (only "name" today, per §4.3 step 8).
type MissingAttributeError struct {
	base
	Attribute string
}

func NewMissingAttribute(pos, attribute string) MissingAttributeError {
	return MissingAttributeError{
		base:      base{pos: pos, err: fmt.Errorf("missing required attribute %q", attribute), sev: Warning},
		Attribute: attribute,
	}
}

// CollaboratorError wraps a verbatim error surfaced by an external
// collaborator (link resolver, xref resolver, content validator, ...).
// §7 says these propagate through unchanged, so this just tags the
// position and lets Unwrap expose the original.
type CollaboratorError struct {
	base
}

func NewCollaboratorError(pos string, err error) CollaboratorError {
	return CollaboratorError{base: base{pos: pos, err: err, sev: Warning}}
}

// Sink aggregates diagnostics raised by potentially many goroutines
// during one Load. It is the concrete ErrorSink implementation the
// loader itself hands to collaborators it invokes directly (e.g. the
// MonikerProvider), and the one built-in implementation of the loader's
// own ErrorSink parameter.
type Sink struct {
	mu    sync.Mutex
	items []Positioned
}

// NewSink returns a ready-to-use Sink.
func NewSink() *Sink {
	return &Sink{}
}

// Report records a diagnostic. Safe for concurrent use.
func (s *Sink) Report(d Positioned) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, d)
}

// Items returns a snapshot of everything reported so far, in report order.
func (s *Sink) Items() []Positioned {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Positioned, len(s.items))
	copy(out, s.items)
	return out
}

// HasErrors reports whether any Error-severity diagnostic was reported.
func (s *Sink) HasErrors() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.Severity() == Error {
			return true
		}
	}
	return false
}

// CountBySeverity returns the number of reported diagnostics at each
// severity, used by LoadStats (SPEC_FULL §12.2).
func (s *Sink) CountBySeverity() (warnings, errors int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.Severity() == Error {
			errors++
		} else {
			warnings++
		}
	}
	return warnings, errors
}
