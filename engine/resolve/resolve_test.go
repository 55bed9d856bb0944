package resolve

import (
	"testing"

	"github.com/nmoreau/strikecore/engine/action"
	"github.com/nmoreau/strikecore/types"
)

func TestPriorityOf_DefaultTable(t *testing.T) {
	cases := []struct {
		kind types.ActionKind
		want int
	}{
		{types.KindSpecialAbility, 100},
		{types.KindChainAction, 75},
		{types.KindBasicAttack, 50},
		{types.KindContextual, 10},
		{types.ActionKind("taunt"), 0},
	}
	for _, tc := range cases {
		r := action.New(tc.kind, "hero", nil)
		if got := PriorityOf(r, nil); got != tc.want {
			t.Errorf("PriorityOf(%s) = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestResolve_HighestWins(t *testing.T) {
	attack := action.New(types.KindBasicAttack, "hero", nil)
	special := action.New(types.KindSpecialAbility, "mage", nil)
	ctx := action.New(types.KindContextual, "rogue", nil)

	got := Resolve([]*action.Request{attack, special, ctx}, nil)
	if got != special {
		t.Errorf("expected special ability request to win, got %v", got.Kind)
	}
}

func TestResolve_TieBreakFirstEncountered(t *testing.T) {
	a := action.New(types.KindBasicAttack, "hero", nil)
	b := action.New(types.KindBasicAttack, "goblin", nil)

	got := Resolve([]*action.Request{a, b}, nil)
	if got != a {
		t.Error("first-encountered request must win among equal priorities")
	}

	// Reversed input order flips the winner.
	got = Resolve([]*action.Request{b, a}, nil)
	if got != b {
		t.Error("first-encountered request must win among equal priorities")
	}
}

func TestResolve_UnknownKindStillWinsAlone(t *testing.T) {
	r := action.New(types.ActionKind("taunt"), "hero", nil)
	if got := Resolve([]*action.Request{r}, nil); got != r {
		t.Error("sole candidate must win even at priority 0")
	}
}

func TestResolve_Empty(t *testing.T) {
	if got := Resolve(nil, nil); got != nil {
		t.Errorf("expected nil for empty candidate set, got %v", got)
	}
}

func TestRegister_ExtendsTable(t *testing.T) {
	Register(types.ActionKind("counterspell"), 90)
	defer delete(priorities, types.ActionKind("counterspell"))

	r := action.New(types.ActionKind("counterspell"), "mage", nil)
	if got := PriorityOf(r, nil); got != 90 {
		t.Errorf("PriorityOf(counterspell) = %d, want 90", got)
	}

	attack := action.New(types.KindBasicAttack, "hero", nil)
	if got := Resolve([]*action.Request{attack, r}, nil); got != r {
		t.Error("registered kind should outrank basic attack")
	}
}
