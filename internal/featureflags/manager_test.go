package featureflags

import "testing"

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	if !m.Enabled("a", 1) || !m.Enabled("c", 1) || !m.Enabled("e", 1) {
		t.Fatal("expected enabled boolean values to evaluate true")
	}
	if m.Enabled("b", 1) || m.Enabled("d", 1) || m.Enabled("f", 1) {
		t.Fatal("expected disabled boolean values to evaluate false")
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%")

	if !m.Enabled("always", 1) {
		t.Fatal("100% rollout should always be enabled")
	}
	if m.Enabled("never", 1) {
		t.Fatal("0% rollout should always be disabled")
	}

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		if got := m.Enabled("canary", 42); got != first {
			t.Fatal("rollout evaluation must be deterministic per user")
		}
	}

	if m.Enabled("canary", 0) {
		t.Fatal("percentage rollout requires non-zero userID")
	}
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,x=on, y = 20% ,z=off ")

	raw := m.Raw()
	if len(raw) != 3 {
		t.Fatalf("expected 3 parsed flags, got %d", len(raw))
	}
	if raw["x"] != "on" || raw["y"] != "20%" || raw["z"] != "off" {
		t.Fatalf("unexpected raw flags: %#v", raw)
	}

	snap := m.Snapshot(123)
	if len(snap) != 5 {
		t.Fatalf("expected snapshot size 5 (3 configured + 2 defaults), got %d", len(snap))
	}
	if !snap[FollowSuggestions] || !snap[RealtimeNotifications] {
		t.Fatal("unconfigured API flags should report enabled")
	}
}

func TestEnabledOr_DefaultOnFlags(t *testing.T) {
	unset := NewManager("")
	if !unset.EnabledOr(FollowSuggestions, 7, true) {
		t.Fatal("unconfigured flag should fall back to the default")
	}
	if unset.Enabled(FollowSuggestions, 7) {
		t.Fatal("Enabled treats unconfigured flags as off")
	}

	off := NewManager("follow_suggestions=off")
	if off.EnabledOr(FollowSuggestions, 7, true) {
		t.Fatal("explicit off must override the default")
	}

	garbage := NewManager("follow_suggestions=maybe")
	if !garbage.EnabledOr(FollowSuggestions, 7, true) {
		t.Fatal("unparseable value should fall back to the default")
	}

	var nilManager *Manager
	if !nilManager.EnabledOr(RealtimeNotifications, 1, true) || nilManager.Enabled("x", 1) {
		t.Fatal("nil manager should return the fallback")
	}
	if len(nilManager.Raw()) != 0 {
		t.Fatal("nil manager has no raw flags")
	}
}
