// Package resolve implements priority arbitration for concurrently offered
// action requests.
package resolve

import (
	"github.com/nmoreau/strikecore/engine/action"
	"github.com/nmoreau/strikecore/types"
)

// priorities maps action kinds to their arbitration rank. Unknown kinds
// rank 0. Extending the system means adding entries here via Register.
var priorities = map[types.ActionKind]int{
	types.KindSpecialAbility: 100,
	types.KindChainAction:    75,
	types.KindBasicAttack:    50,
	types.KindContextual:     10,
}

// Register adds or overrides the priority for a kind. Call during setup,
// before resolution begins — the table is not guarded for concurrent writes.
func Register(kind types.ActionKind, priority int) {
	priorities[kind] = priority
}

// PriorityOf returns the arbitration priority of a request. The state
// parameter is available to contextual extensions; the default table
// ignores it.
func PriorityOf(r *action.Request, _ *types.State) int {
	return priorities[r.Kind]
}

// Resolve scans the candidates once and returns the highest-priority
// request. A later candidate replaces the running winner only when its
// priority is strictly greater, so among equal-priority candidates the
// first-encountered wins. Returns nil for an empty candidate set.
func Resolve(reqs []*action.Request, s *types.State) *action.Request {
	var winner *action.Request
	best := -1
	for _, r := range reqs {
		if p := PriorityOf(r, s); p > best {
			winner = r
			best = p
		}
	}
	return winner
}
