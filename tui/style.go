package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nmoreau/strikecore/types"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	stylePlain = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleDamage = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true)

	styleStatus = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleEffect = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleCustom = lipgloss.NewStyle().
			Foreground(lipgloss.Color("141"))
)

// renderEventLine applies the style for an event line by its kind.
func renderEventLine(line string, kind types.EventKind) string {
	switch kind {
	case types.EventDamageDealt:
		return styleDamage.Render(line)
	case types.EventStatusChanged:
		return styleStatus.Render(line)
	case types.EventEffectApplied, types.EventEffectRemoved:
		return styleEffect.Render(line)
	case types.EventActionError:
		return styleError.Render(line)
	case types.EventCustom:
		return styleCustom.Render(line)
	default:
		return stylePlain.Render(line)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
