package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar produces a full-width inverted status line showing each
// combatant's hp, the acting combatant, and the tick count.
func (m Model) renderStatusBar() string {
	s := m.engine.State

	ids := make([]string, 0, len(s.Combatants))
	for id := range s.Combatants {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		cs := s.Combatants[id]
		part := fmt.Sprintf("%s %d", id, cs.Stats["hp"])
		if id == m.actor {
			part = "*" + part
		}
		parts = append(parts, part)
	}

	left := " " + strings.Join(parts, " | ")
	right := fmt.Sprintf("T:%d ", s.Tick)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
