package audit

import (
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/macropower/declutter/pkg/scan"
)

// Phase is the step of auditing an entry.
type Phase string

const (
	PhaseResolve Phase = "accessing path"
	PhaseBuild   Phase = "parsing yaml under path"
	PhaseScan    Phase = "checking path"
)

// Result is the outcome of auditing one entry of a document.
type Result struct {
	// Err is set if the entry could not be audited; Phase tells where.
	Err   error
	Phase Phase
	// Path as written in the document.
	Path string
	// Resolved is the canonical directory path, once resolved.
	Resolved string
	// Violations found, in discovery order. A failed scan keeps the
	// violations found before the failure.
	Violations []scan.Violation
	Duration   time.Duration
	// Clean is true if the tree was fully scanned without violations.
	Clean bool
}

// Status summarizes a set of results.
type Status int

const (
	// StatusClean means every entry was scanned and no clutter was found.
	StatusClean Status = iota
	// StatusClutterFound means at least one violation was found and no entry
	// failed.
	StatusClutterFound
	// StatusFailed means at least one entry failed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusClean:
		return "clean"
	case StatusClutterFound:
		return "clutter found"
	case StatusFailed:
		return "failed"
	}

	return "unknown"
}

// Summary aggregates the results of a run.
type Summary struct {
	Results    []*Result
	Duration   time.Duration
	Clean      int
	Failed     int
	Violations int
}

func (s *Summary) add(r *Result) {
	s.Results = append(s.Results, r)
	s.Violations += len(r.Violations)

	switch {
	case r.Err != nil:
		s.Failed++
	case r.Clean:
		s.Clean++
	}
}

// Status returns the overall status. Failures take precedence over clutter.
func (s *Summary) Status() Status {
	switch {
	case s.Failed > 0:
		return StatusFailed
	case s.Violations > 0:
		return StatusClutterFound
	}

	return StatusClean
}

// Err returns the errors of all failed entries, or nil.
func (s *Summary) Err() error {
	var merr *multierror.Error

	for _, r := range s.Results {
		if r.Err != nil {
			merr = multierror.Append(merr, &EntryError{Path: r.Path, Phase: r.Phase, Err: r.Err})
		}
	}

	return merr.ErrorOrNil()
}

// EntryError is the failure of one document entry.
type EntryError struct {
	Err   error
	Phase Phase
	Path  string
}

func (e *EntryError) Error() string {
	return "error when " + string(e.Phase) + " " + e.Path + ": " + e.Err.Error()
}

func (e *EntryError) Unwrap() error {
	return e.Err
}
