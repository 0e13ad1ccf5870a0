package models

import (
	"fmt"
	"time"
)

// Severity classifies a diagnostic
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is a single compiler message. The build core only counts them.
type Diagnostic struct {
	File     string   `json:"file,omitempty"`
	Line     int      `json:"line,omitempty"`
	Column   int      `json:"column,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// String formats the diagnostic like a compiler would.
func (d Diagnostic) String() string {
	switch {
	case d.File == "":
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	case d.Column > 0:
		return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line, d.Column, d.Severity, d.Message)
	case d.Line > 0:
		return fmt.Sprintf("%s:%d: %s: %s", d.File, d.Line, d.Severity, d.Message)
	default:
		return fmt.Sprintf("%s: %s: %s", d.File, d.Severity, d.Message)
	}
}

// CompilerResult is what a compiler hook reports for one project.
type CompilerResult struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Add appends a diagnostic
func (r *CompilerResult) Add(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
}

// ErrorCount returns the number of error diagnostics
func (r *CompilerResult) ErrorCount() int {
	return r.count(SeverityError)
}

// WarningCount returns the number of warning diagnostics
func (r *CompilerResult) WarningCount() int {
	return r.count(SeverityWarning)
}

func (r *CompilerResult) count(s Severity) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// BuildResult aggregates the outcome of building one or more projects.
type BuildResult struct {
	Errors   []Diagnostic `json:"errors"`
	Warnings []Diagnostic `json:"warnings"`

	// BuiltCount is the number of projects whose compiler hook ran
	BuiltCount int `json:"builtCount"`

	// FailedCount is 1 when the build stopped on a failing project, else 0
	FailedCount int `json:"failedCount"`

	// Cancelled is set when the build stopped because cancellation was requested
	Cancelled bool `json:"cancelled"`
}

// NewBuildResult returns an empty, successful result
func NewBuildResult() *BuildResult {
	return &BuildResult{
		Errors:   []Diagnostic{},
		Warnings: []Diagnostic{},
	}
}

// ErrorCount returns the number of errors
func (r *BuildResult) ErrorCount() int {
	return len(r.Errors)
}

// WarningCount returns the number of warnings
func (r *BuildResult) WarningCount() int {
	return len(r.Warnings)
}

// Succeeded reports whether nothing failed
func (r *BuildResult) Succeeded() bool {
	return r.FailedCount == 0 && len(r.Errors) == 0
}

// AddCompilerResult splits compiler diagnostics into errors and warnings.
func (r *BuildResult) AddCompilerResult(cr *CompilerResult) {
	if cr == nil {
		return
	}
	for _, d := range cr.Diagnostics {
		switch d.Severity {
		case SeverityError:
			r.Errors = append(r.Errors, d)
		case SeverityWarning:
			r.Warnings = append(r.Warnings, d)
		}
	}
}

// Merge appends the diagnostics and counters of other.
func (r *BuildResult) Merge(other *BuildResult) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.BuiltCount += other.BuiltCount
}

// BuildRecord is one entry of the build history.
type BuildRecord struct {
	ID            string        `json:"id"`
	Project       string        `json:"project"`
	Configuration string        `json:"configuration"`
	StartedAt     time.Time     `json:"startedAt"`
	Duration      time.Duration `json:"duration"`
	Errors        int           `json:"errors"`
	Warnings      int           `json:"warnings"`
	Succeeded     bool          `json:"succeeded"`
}
