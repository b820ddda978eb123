package render

import (
	"encoding/json"

	"github.com/devicecloud-dev/device-cloud-for-maestro/pkg/status"
)

// JSON renders reports as structured JSON for automation.
type JSON struct{}

// NewJSON creates a JSON renderer.
func NewJSON() *JSON {
	return &JSON{}
}

// jsonOutput is the top-level JSON structure.
type jsonOutput struct {
	Version     string              `json:"version"`
	Status      status.Status       `json:"status"`
	Summary     string              `json:"summary"`
	Counts      map[string]int      `json:"counts"`
	Tests       []status.TestResult `json:"tests"`
	ConsoleURL  string              `json:"consoleUrl,omitempty"`
	AppBinaryID string              `json:"appBinaryId,omitempty"`
}

// Render formats the report as indented JSON.
func (j *JSON) Render(r *status.Report) string {
	out := jsonOutput{
		Version:     "1",
		Status:      r.Status,
		Summary:     r.Summary(),
		Counts:      make(map[string]int),
		Tests:       r.Tests,
		ConsoleURL:  r.ConsoleURL,
		AppBinaryID: r.AppBinaryID,
	}
	if out.Tests == nil {
		out.Tests = []status.TestResult{}
	}
	for s, n := range r.Counts() {
		out.Counts[string(s)] = n
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		errJSON, _ := json.Marshal(map[string]string{"error": err.Error()})
		return string(errJSON)
	}
	return string(data) + "\n"
}
