package inputs

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// AndroidDevices lists the accepted values of the android-device input.
var AndroidDevices = []string{
	"pixel-6",
	"pixel-6a",
	"pixel-6-pro",
	"pixel-7",
	"pixel-7-pro",
	"generic-tablet",
}

// IOSDevices lists the accepted values of the ios-device input.
var IOSDevices = []string{
	"iphone-12",
	"iphone-12-mini",
	"iphone-12-pro-max",
	"iphone-13",
	"iphone-13-mini",
	"iphone-13-pro-max",
	"iphone-14",
	"iphone-14-plus",
	"iphone-14-pro",
	"iphone-14-pro-max",
	"iphone-15",
	"iphone-15-plus",
	"iphone-15-pro",
	"iphone-15-pro-max",
	"ipad-pro-6th-gen",
}

// EnvVar is one KEY=VALUE entry of the env input.
type EnvVar struct {
	Key   string
	Value string
}

// ParseTags splits a comma separated tag list, trimming whitespace around each tag.
// Empty input yields nil; empty elements are dropped.
func ParseTags(tags string) []string {
	if strings.TrimSpace(tags) == "" {
		return nil
	}
	var out []string
	for _, tag := range strings.Split(tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// ParseList splits a value on newlines and commas. Used for inputs that accept
// either a multiline block or a comma separated list.
func ParseList(v string) []string {
	var out []string
	for _, line := range splitLines(v) {
		out = append(out, ParseTags(line)...)
	}
	return out
}

// ParseAndroidDevice validates an android-device value. Empty means unset.
func ParseAndroidDevice(device string) (string, error) {
	if device == "" {
		return "", nil
	}
	if !slices.Contains(AndroidDevices, device) {
		return "", fmt.Errorf("invalid android device: %s", device)
	}
	return device, nil
}

// ParseIOSDevice validates an ios-device value. Empty means unset.
func ParseIOSDevice(device string) (string, error) {
	if device == "" {
		return "", nil
	}
	if !slices.Contains(IOSDevices, device) {
		return "", fmt.Errorf("invalid ios device: %s", device)
	}
	return device, nil
}

// ParseEnv parses the lines of the env input. Each non-blank line must contain
// '='; the key is everything before the first '=' and the value everything after.
// A later entry for the same key replaces the earlier one in place.
func ParseEnv(lines []string) ([]EnvVar, error) {
	var out []EnvVar
	index := make(map[string]int)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid env parameter: %s", line)
		}
		if i, seen := index[key]; seen {
			out[i].Value = value
			continue
		}
		index[key] = len(out)
		out = append(out, EnvVar{Key: key, Value: value})
	}
	return out, nil
}

// ParseBool reports whether v is "true", ignoring case. Anything else is false.
func ParseBool(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}

// ParseInt parses an integer input. Empty yields 0.
func ParseInt(name, v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is not an integer", name, v)
	}
	return n, nil
}

// ParseDuration parses a duration input. Bare integers are seconds. Empty yields fallback.
func ParseDuration(name, v string, fallback time.Duration) (time.Duration, error) {
	if v == "" {
		return fallback, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is not a duration", name, v)
	}
	return d, nil
}

// splitLines splits a multiline input, trimming each line and dropping blanks.
func splitLines(v string) []string {
	var out []string
	for _, line := range strings.Split(v, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
