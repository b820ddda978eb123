package status

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoJSON is returned when the status output contains no JSON object.
var ErrNoJSON = errors.New("no JSON object in status output")

// Parse decodes a status report from dcd output. The tool may print text
// before or after the document; the first balanced, valid JSON object is used.
func Parse(output []byte) (*Report, error) {
	doc := extractJSON(output)
	if doc == nil {
		start := bytes.IndexByte(output, '{')
		if start < 0 {
			return nil, ErrNoJSON
		}
		// Report why the candidate object does not decode.
		if err := json.Unmarshal(output[start:], &Report{}); err != nil {
			return nil, fmt.Errorf("malformed status JSON: %w", err)
		}
		return nil, ErrNoJSON
	}

	var report Report
	if err := json.Unmarshal(doc, &report); err != nil {
		return nil, fmt.Errorf("malformed status JSON: %w", err)
	}
	if !report.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q", report.Status)
	}
	for i, t := range report.Tests {
		if t.Status != "" && !t.Status.Valid() {
			return nil, fmt.Errorf("unknown status %q for flow %q", t.Status, report.Tests[i].Name)
		}
	}
	return &report, nil
}

// extractJSON returns the first balanced, valid {...} object in data, skipping
// braces inside string literals. Returns nil when there is none.
func extractJSON(data []byte) []byte {
	start := bytes.IndexByte(data, '{')
	for start >= 0 {
		if end := objectEnd(data[start:]); end > 0 && json.Valid(data[start:start+end]) {
			return data[start : start+end]
		}
		next := bytes.IndexByte(data[start+1:], '{')
		if next < 0 {
			return nil
		}
		start += next + 1
	}
	return nil
}

// objectEnd returns the length of the object starting at data[0], or -1.
func objectEnd(data []byte) int {
	depth := 0
	inString := false
	escaped := false
	for i, b := range data {
		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}
