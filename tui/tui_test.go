package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/nmoreau/strikecore/engine"
	"github.com/nmoreau/strikecore/engine/bus"
	"github.com/nmoreau/strikecore/engine/state"
	"github.com/nmoreau/strikecore/types"
)

func TestWordWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"short", 80, "short"},
		{"hello world", 5, "hello\nworld"},
		{"hero hits goblin for 6 damage and the crowd goes quiet.", 30,
			"hero hits goblin for 6 damage\nand the crowd goes quiet."},
		{"", 80, ""},
		{"one", 80, "one"},
		{"a b c d e", 3, "a b\nc d\ne"},
	}
	for _, tt := range tests {
		got := wordWrap(tt.text, tt.width)
		if got != tt.want {
			t.Errorf("wordWrap(%q, %d) =\n  %q\nwant:\n  %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestHistory_PushAndPrev(t *testing.T) {
	h := NewHistory(5)
	h.Push("attack")
	h.Push("act fireball")
	h.Push("wait")

	prev, ok := h.Prev()
	if !ok || prev != "wait" {
		t.Errorf("expected 'wait', got %q (ok=%v)", prev, ok)
	}

	prev, ok = h.Prev()
	if !ok || prev != "act fireball" {
		t.Errorf("expected 'act fireball', got %q (ok=%v)", prev, ok)
	}

	prev, ok = h.Prev()
	if !ok || prev != "attack" {
		t.Errorf("expected 'attack', got %q (ok=%v)", prev, ok)
	}

	// At oldest, stays there.
	prev, ok = h.Prev()
	if !ok || prev != "attack" {
		t.Errorf("expected 'attack' at boundary, got %q (ok=%v)", prev, ok)
	}
}

func TestHistory_Next(t *testing.T) {
	h := NewHistory(5)
	h.Push("attack")
	h.Push("wait")

	h.Prev() // "wait"
	h.Prev() // "attack"

	next, ok := h.Next()
	if !ok || next != "wait" {
		t.Errorf("expected 'wait', got %q (ok=%v)", next, ok)
	}

	_, ok = h.Next()
	if ok {
		t.Error("expected false when past newest entry")
	}
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(5)
	_, ok := h.Prev()
	if ok {
		t.Error("expected false on empty history")
	}
	_, ok = h.Next()
	if ok {
		t.Error("expected false on empty history")
	}
}

func TestHistory_MaxSize(t *testing.T) {
	h := NewHistory(2)
	h.Push("a")
	h.Push("b")
	h.Push("c") // "a" evicted

	prev, _ := h.Prev()
	if prev != "c" {
		t.Errorf("expected 'c', got %q", prev)
	}
	prev, _ = h.Prev()
	if prev != "b" {
		t.Errorf("expected 'b', got %q", prev)
	}
	// "a" is gone.
	prev, _ = h.Prev()
	if prev != "b" {
		t.Errorf("expected 'b' at boundary, got %q", prev)
	}
}

func TestHistory_NoDuplicates(t *testing.T) {
	h := NewHistory(5)
	h.Push("wait")
	h.Push("wait") // skipped
	h.Push("wait") // skipped

	if h.size != 1 {
		t.Errorf("expected 1 entry, got %d", h.size)
	}
}

// testDefs returns minimal combat definitions for TUI testing.
func testDefs() *state.Defs {
	return &state.Defs{
		Scenario: types.ScenarioDef{Title: "Test Bout", Seed: 1},
		Actions: map[string]types.ActionDef{
			"slash": {
				ID: "slash", Name: "Slash", Kind: types.KindBasicAttack,
				Weight:  10,
				Effects: []types.Effect{{Type: "damage", Params: map[string]any{"amount": 3}}},
			},
		},
		Combatants: map[string]types.CombatantDef{
			"hero":   {ID: "hero", Stats: map[string]int{"hp": 60, "attack": 5, "defense": 2}},
			"goblin": {ID: "goblin", Stats: map[string]int{"hp": 30, "attack": 3, "defense": 1}},
		},
	}
}

func newTestModel() Model {
	defs := testDefs()
	eng := engine.New(defs, bus.Config{ThrottleMs: 1, BatchSize: 64})
	m := New(eng, defs)
	m.step = 2 * time.Millisecond
	return m
}

func TestNew_DefaultActorAndTarget(t *testing.T) {
	m := newTestModel()
	if m.actor != "goblin" {
		t.Errorf("actor = %q, want goblin (first by ID order)", m.actor)
	}
	if m.target != "hero" {
		t.Errorf("target = %q, want hero", m.target)
	}
}

func TestDispatch_ActCollectsEvents(t *testing.T) {
	m := newTestModel()
	m.actor, m.target = "hero", "goblin"

	system := m.dispatch("act slash")
	if len(system) != 0 {
		t.Errorf("unexpected system output: %v", system)
	}

	lines := m.collector.drain()
	joined := ""
	for _, l := range lines {
		joined += l.text + "\n"
	}
	if !strings.Contains(joined, "hero begins slash on goblin.") {
		t.Errorf("expected action start line, got:\n%s", joined)
	}
	if !strings.Contains(joined, "hero hits goblin") {
		t.Errorf("expected damage line, got:\n%s", joined)
	}
}

func TestDispatch_UnknownAction(t *testing.T) {
	m := newTestModel()
	system := m.dispatch("act teleport")
	if len(system) == 0 || !strings.Contains(system[0], "Unknown action") {
		t.Errorf("expected unknown action message, got %v", system)
	}
}

func TestDispatch_RunAdvancesTicks(t *testing.T) {
	m := newTestModel()
	m.dispatch("run 5")
	if m.engine.State.Tick != 5 {
		t.Errorf("Tick = %d, want 5", m.engine.State.Tick)
	}
}

func TestHandleMeta_Quit(t *testing.T) {
	m := newTestModel()

	_, quit := m.handleMeta("/quit")
	if !quit {
		t.Error("expected quit=true for /quit")
	}

	_, quit = m.handleMeta("/exit")
	if !quit {
		t.Error("expected quit=true for /exit")
	}
}

func TestHandleMeta_As(t *testing.T) {
	m := newTestModel()

	output, _ := m.handleMeta("/as hero")
	if m.actor != "hero" {
		t.Errorf("actor = %q, want hero", m.actor)
	}
	if len(output) == 0 || !strings.Contains(output[0], "Acting as hero") {
		t.Errorf("expected confirmation, got %v", output)
	}

	output, _ = m.handleMeta("/as nobody")
	if m.actor != "hero" {
		t.Error("unknown combatant must not change actor")
	}
	if len(output) == 0 || !strings.Contains(output[0], "Unknown combatant") {
		t.Errorf("expected unknown combatant message, got %v", output)
	}
}

func TestHandleMeta_Help(t *testing.T) {
	m := newTestModel()

	output, quit := m.handleMeta("/help")
	if quit {
		t.Error("help should not quit")
	}

	joined := strings.Join(output, "\n")
	for _, expected := range []string{"/as", "/target", "/quit", "attack", "chain"} {
		if !strings.Contains(joined, expected) {
			t.Errorf("expected %q in help output", expected)
		}
	}
}

func TestHandleMeta_Unknown(t *testing.T) {
	m := newTestModel()

	output, quit := m.handleMeta("/bogus")
	if quit {
		t.Error("unknown command should not quit")
	}
	if len(output) == 0 || !strings.Contains(output[0], "Unknown command") {
		t.Errorf("expected unknown command message, got %v", output)
	}
}

func TestHandleMeta_State(t *testing.T) {
	m := newTestModel()

	output, quit := m.handleMeta("/state")
	if quit {
		t.Error("state should not quit")
	}

	joined := strings.Join(output, "\n")
	if !strings.Contains(joined, "hero: hp=60") {
		t.Error("expected hero line in state output")
	}
	if !strings.Contains(joined, "Tick:") {
		t.Error("expected tick count in state output")
	}
}
