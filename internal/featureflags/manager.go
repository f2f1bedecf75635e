// Package featureflags evaluates the FEATURE_FLAGS switches.
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"
)

const (
	// PageCache toggles the index page cache. It may be rolled out to a
	// percentage of signed-in viewers; anonymous visitors follow on/off only.
	PageCache = "page_cache"
	// Thumbnails toggles WebP thumbnail generation for uploaded images.
	// Stored images are shared by every viewer, so it is evaluated site-wide.
	Thumbnails = "thumbnails"
)

// rule is one parsed flag value. percent is 0 for off and 100 for on.
type rule struct {
	percent int
}

// Manager holds the flags parsed from a "name=value" list, where value is
// on/true/1, off/false/0 or a rollout percentage such as 25%.
// Example: "page_cache=25%,thumbnails=on"
type Manager struct {
	rules map[string]rule
}

// NewManager parses raw. Entries with an unknown value are dropped, which
// leaves the flag off.
func NewManager(raw string) *Manager {
	rules := make(map[string]rule)
	for _, entry := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		name = normalize(name)
		r, ok := parseRule(normalize(value))
		if name == "" || !ok {
			continue
		}
		rules[name] = r
	}
	return &Manager{rules: rules}
}

func parseRule(value string) (rule, bool) {
	switch value {
	case "on", "true", "1":
		return rule{percent: 100}, true
	case "off", "false", "0":
		return rule{}, true
	}
	pct, found := strings.CutSuffix(value, "%")
	if !found {
		return rule{}, false
	}
	n, err := strconv.Atoi(pct)
	if err != nil {
		return rule{}, false
	}
	return rule{percent: min(max(n, 0), 100)}, true
}

// Enabled reports whether name is on for the viewer. A partial rollout picks
// a stable bucket per (flag, user) pair; userID 0 is never in a partial rollout.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	r, ok := m.rules[normalize(name)]
	switch {
	case !ok || r.percent == 0:
		return false
	case r.percent == 100:
		return true
	case userID == 0:
		return false
	}
	return bucket(name, userID) < r.percent
}

// On evaluates a flag with no viewer, so only fully enabled flags are on.
func (m *Manager) On(name string) bool {
	return m.Enabled(name, 0)
}

// OnFunc binds On to one flag name.
func (m *Manager) OnFunc(name string) func() bool {
	return func() bool { return m.On(name) }
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + strconv.FormatUint(uint64(userID), 10)))
	return int(h.Sum32() % 100)
}
