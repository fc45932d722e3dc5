// Package featureflags evaluates rollout flags configured as a
// comma-separated key=value list, e.g. "allow_incomplete_parent=on,new_feed=25%".
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Flag names understood by the service.
const (
	// AllowIncompleteParent lets a reply use a parent whose image is not
	// generated yet; the provider then receives an empty source image.
	AllowIncompleteParent = "allow_incomplete_parent"
)

// Set holds parsed flags as rollout percentages in [0, 100]. The zero value
// and a nil *Set have every flag off.
type Set struct {
	rules map[string]int
}

// Parse builds a Set from a config string. Malformed pairs are skipped.
// Values: on/true/1, off/false/0, or N% for a deterministic per-user rollout.
func Parse(raw string) *Set {
	rules := make(map[string]int)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		pct, ok := parsePercent(value)
		if !ok {
			continue
		}
		rules[key] = pct
	}
	return &Set{rules: rules}
}

func parsePercent(value string) (int, bool) {
	switch value {
	case "on", "true", "1":
		return 100, true
	case "off", "false", "0":
		return 0, true
	}
	n, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
	if err != nil || !strings.HasSuffix(value, "%") {
		return 0, false
	}
	return min(max(n, 0), 100), true
}

// Enabled reports whether a flag is enabled for userID. Partial rollouts
// never include the anonymous user (0).
func (s *Set) Enabled(name string, userID uint) bool {
	if s == nil {
		return false
	}
	percent, ok := s.rules[normalize(name)]
	if !ok {
		return false
	}
	switch {
	case percent <= 0:
		return false
	case percent >= 100:
		return true
	case userID == 0:
		return false
	}
	return bucket(name, userID) < percent
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + strconv.FormatUint(uint64(userID), 10)))
	return int(h.Sum32() % 100)
}
