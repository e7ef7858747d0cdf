// Package featureflags evaluates percentage-rollout feature flags.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Flags consulted by the API.
const (
	// FollowSuggestions gates GET /api/follows/suggestions. Enabled unless configured off.
	FollowSuggestions = "follow_suggestions"
	// RealtimeNotifications gates redis fan-out of persisted notifications. Enabled unless configured off.
	RealtimeNotifications = "realtime_notifications"
)

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "follow_suggestions=on,realtime_notifications=25%"
type Manager struct {
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config string.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled returns whether a flag is enabled for a given user. Unknown flags are off.
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic user rollout, e.g. 25%)
func (m *Manager) Enabled(name string, userID uint) bool {
	return m.EnabledOr(name, userID, false)
}

// EnabledOr is Enabled with an explicit result for flags that are not configured
// or carry an unparseable value.
func (m *Manager) EnabledOr(name string, userID uint, fallback bool) bool {
	if m == nil {
		return fallback
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return fallback
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return fallback
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil {
		return fallback
	}
	switch {
	case pct <= 0:
		return false
	case pct >= 100:
		return true
	case userID == 0:
		return false
	}
	return rolloutBucket(name, userID) < pct
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	if m == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Snapshot returns evaluated flag status for one user, including the
// default-on flags the API consults.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := map[string]bool{
		FollowSuggestions:     m.EnabledOr(FollowSuggestions, userID, true),
		RealtimeNotifications: m.EnabledOr(RealtimeNotifications, userID, true),
	}
	if m == nil {
		return out
	}
	for name := range m.flags {
		if _, known := out[name]; known {
			continue
		}
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), userID)))
	return int(h.Sum32() % 100)
}
