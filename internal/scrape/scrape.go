// Package scrape recovers identifiers from the dcd CLI's human-readable output.
package scrape

import (
	"regexp"

	"github.com/charmbracelet/x/ansi"
)

// resultsURL matches the console link dcd prints for an upload, e.g.
// https://console.devicecloud.dev/results?upload=8d1c6a4e-2f0b-4c55-9a77-0e2b1d3f4c5a
var resultsURL = regexp.MustCompile(`https?://(?:[A-Za-z0-9-]+\.)*devicecloud\.dev/results\?upload=([A-Za-z0-9-]+)[^\s"'<>]*`)

// UploadID returns the upload identifier from the last results URL in output.
func UploadID(output []byte) (string, bool) {
	m := lastMatch(output)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ConsoleURL returns the last results URL in output.
func ConsoleURL(output []byte) (string, bool) {
	m := lastMatch(output)
	if m == nil {
		return "", false
	}
	return m[0], true
}

func lastMatch(output []byte) []string {
	matches := resultsURL.FindAllStringSubmatch(StripANSI(string(output)), -1)
	if len(matches) == 0 {
		return nil
	}
	return matches[len(matches)-1]
}

// StripANSI removes terminal escape sequences (colors, cursor movement,
// erase-line, OSC hyperlinks) from s.
func StripANSI(s string) string {
	return ansi.Strip(s)
}
