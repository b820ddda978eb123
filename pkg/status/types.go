// Package status decodes the JSON document printed by `dcd status --json`.
package status

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Status is the state of an upload or of a single flow.
type Status string

// Known statuses.
const (
	Passed    Status = "PASSED"
	Failed    Status = "FAILED"
	Cancelled Status = "CANCELLED"
	Pending   Status = "PENDING"
	Running   Status = "RUNNING"
)

// All lists every known status in display order.
var All = []Status{Passed, Failed, Cancelled, Pending, Running}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return slices.Contains(All, s)
}

// IsTerminal reports whether no further change is expected.
func (s Status) IsTerminal() bool {
	return s == Passed || s == Failed || s == Cancelled
}

// IsFailure reports whether s should fail the workflow step.
func (s Status) IsFailure() bool {
	return s == Failed || s == Cancelled
}

// TestResult is the outcome of one flow.
type TestResult struct {
	Name       string  `json:"name"`
	Status     Status  `json:"status"`
	Duration   float64 `json:"durationSeconds,omitempty"`
	FailReason string  `json:"failReason,omitempty"`
}

// Report is the status of one upload.
type Report struct {
	Status      Status       `json:"status"`
	Tests       []TestResult `json:"tests"`
	ConsoleURL  string       `json:"consoleUrl,omitempty"`
	AppBinaryID string       `json:"appBinaryId,omitempty"`
}

// Counts tallies flows by status.
func (r *Report) Counts() map[Status]int {
	counts := make(map[Status]int, len(All))
	for _, t := range r.Tests {
		counts[t.Status]++
	}
	return counts
}

// Failures returns the flows whose status is a failure.
func (r *Report) Failures() []TestResult {
	var out []TestResult
	for _, t := range r.Tests {
		if t.Status.IsFailure() {
			out = append(out, t)
		}
	}
	return out
}

// flowResult is the shape published in the flow results output.
type flowResult struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
}

// FlowResultsJSON encodes the flows as a JSON array of {name, status}.
// An empty report encodes as [].
func (r *Report) FlowResultsJSON() (string, error) {
	flows := make([]flowResult, 0, len(r.Tests))
	for _, t := range r.Tests {
		flows = append(flows, flowResult{Name: t.Name, Status: t.Status})
	}
	data, err := json.Marshal(flows)
	if err != nil {
		return "", fmt.Errorf("encoding flow results: %w", err)
	}
	return string(data), nil
}

// Summary describes the report in one line, e.g. "FAILED: 2 of 5 flows failed".
func (r *Report) Summary() string {
	total := len(r.Tests)
	failed := len(r.Failures())
	switch {
	case total == 0:
		return string(r.Status)
	case failed > 0:
		return fmt.Sprintf("%s: %d of %d flows failed", r.Status, failed, total)
	case r.Status == Passed:
		return fmt.Sprintf("%s: %d of %d flows passed", r.Status, total, total)
	default:
		return fmt.Sprintf("%s: %d flows", r.Status, total)
	}
}
