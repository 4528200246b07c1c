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
	m := NewManager("always=100%,never=0%,canary=25%,junk=x%")

	if !m.Enabled("always", 1) || !m.On("always") {
		t.Fatal("100% rollout should always be enabled")
	}
	if m.Enabled("never", 1) || m.Enabled("junk", 1) {
		t.Fatal("0% and malformed rollouts should be disabled")
	}

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		if got := m.Enabled("canary", 42); got != first {
			t.Fatal("rollout evaluation must be deterministic per user")
		}
	}
	if m.On("canary") {
		t.Fatal("percentage rollout requires non-zero userID")
	}
}

func TestStrictStatusTransitionsFlag(t *testing.T) {
	if NewManager("").On(StrictStatusTransitions) {
		t.Fatal("strict transitions must default to off")
	}
	if !NewManager(" Strict_Status_Transitions = ON ").On(StrictStatusTransitions) {
		t.Fatal("flag names and values should be case-insensitive")
	}

	var nilManager *Manager
	if nilManager.On(StrictStatusTransitions) {
		t.Fatal("nil manager should report flags as disabled")
	}
}

func TestNamesAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,x=on, y = 20% ,z=off ")

	names := m.Names()
	if len(names) != 3 || names[0] != "x" || names[2] != "z" {
		t.Fatalf("unexpected names: %#v", names)
	}

	snap := m.Snapshot(123)
	if len(snap) != 3 {
		t.Fatalf("expected 3 evaluated flags, got %d", len(snap))
	}
	if !snap["x"] || snap["z"] {
		t.Fatalf("unexpected snapshot: %#v", snap)
	}
}
