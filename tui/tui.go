package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nmoreau/strikecore/cli"
	"github.com/nmoreau/strikecore/engine"
	"github.com/nmoreau/strikecore/engine/action"
	"github.com/nmoreau/strikecore/engine/state"
	"github.com/nmoreau/strikecore/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     types.EventKind
	isEvent  bool
	isInput  bool // true for echoed operator input
	isSystem bool // true for system messages
}

// eventCollector buffers bus events raised during a tick so the Update
// loop can fold them into the viewport afterwards.
type eventCollector struct {
	lines []rawLine
}

func (c *eventCollector) HandleEvent(e types.CombatEvent) {
	c.lines = append(c.lines, rawLine{
		text:    cli.FormatEvent(e),
		kind:    e.Kind,
		isEvent: true,
	})
}

func (c *eventCollector) drain() []rawLine {
	out := c.lines
	c.lines = nil
	return out
}

// Model is the Bubble Tea model for the combat monitor.
type Model struct {
	engine    *engine.Engine
	defs      *state.Defs
	collector *eventCollector

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine

	actor    string
	target   string
	step     time.Duration
	width    int
	height   int
	ready    bool
	quitting bool
	lastCmd  string
}

// New creates a TUI model wired to the given engine. The model subscribes
// to every event kind the bus can broadcast.
func New(eng *engine.Engine, defs *state.Defs) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	coll := &eventCollector{}
	eng.Bus.Subscribe(coll,
		types.EventActionStarted,
		types.EventActionCompleted,
		types.EventDamageDealt,
		types.EventEffectApplied,
		types.EventEffectRemoved,
		types.EventStatusChanged,
		types.EventCustom,
		types.EventActionError,
	)

	m := Model{
		engine:    eng,
		defs:      defs,
		collector: coll,
		input:     ti,
		history:   NewHistory(100),
		step:      100 * time.Millisecond,
	}
	ids := make([]string, 0, len(defs.Combatants))
	for id := range defs.Combatants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) > 0 {
		m.actor = ids[0]
	}
	if len(ids) > 1 {
		m.target = ids[1]
	}
	return m
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, defs *state.Defs) error {
	m := New(eng, defs)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command that renders the scenario banner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.banner())
}

// bannerMsg carries the opening lines into the Update loop.
type bannerMsg []string

func (m Model) banner() tea.Cmd {
	return func() tea.Msg {
		lines := []string{m.defs.Scenario.Title}
		if m.defs.Scenario.Author != "" {
			lines[0] += " by " + m.defs.Scenario.Author
		}
		lines = append(lines, "Type /help for commands.")
		return bannerMsg(lines)
	}
}

// Update handles messages (key presses, window resize, banner).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case bannerMsg:
		for _, line := range msg {
			m.rawLines = append(m.rawLines, rawLine{text: line})
		}
		m.rawLines = append(m.rawLines, rawLine{})
		m.refreshViewport()
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	// Handle "again" / "g".
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendSystem(input, []string{"Nothing to repeat."})
			return m, nil
		}
		input = m.lastCmd
	} else {
		m.lastCmd = input
	}

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendSystem(input, output)
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	// Combat command: dispatch, then fold raised events into the viewport.
	system := m.dispatch(input)
	m = m.appendCombat(input, system)
	return m, nil
}

// dispatch parses and runs one combat command, ticking the engine as
// needed. Returns system lines for usage errors; event lines arrive via
// the collector.
func (m *Model) dispatch(input string) []string {
	parts := strings.Fields(input)
	verb := strings.ToLower(parts[0])
	args := parts[1:]

	switch verb {
	case "act", "cast", "use":
		return m.cmdAct(args)
	case "attack":
		return m.cmdAttack(args)
	case "chain":
		return m.cmdChain(args)
	case "auto":
		return m.cmdAuto(args)
	case "wait", "z":
		m.tick()
		return nil
	case "run":
		n := 1
		if len(args) > 0 {
			if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
				n = v
			}
		}
		for i := 0; i < n; i++ {
			m.tick()
		}
		return nil
	case "actions":
		return m.cmdActions()
	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", verb)}
	}
}

func (m *Model) cmdAct(args []string) []string {
	if len(args) == 0 {
		return []string{"Usage: act <action> [target]"}
	}
	actionID := args[0]
	def, ok := m.defs.Actions[actionID]
	if !ok {
		return []string{fmt.Sprintf("Unknown action: %s", actionID)}
	}
	target := m.target
	if len(args) > 1 {
		target = args[1]
	}
	r := action.New(def.Kind, m.actor, types.ActionContext{
		ActionID: actionID,
		Actor:    m.actor,
		Target:   target,
	})
	m.engine.Submit(r)
	m.tick()
	return nil
}

func (m *Model) cmdAttack(args []string) []string {
	target := m.target
	if len(args) > 0 {
		target = args[0]
	}
	var best string
	bestWeight := -1
	for id, def := range m.defs.Actions {
		if def.Kind != types.KindBasicAttack {
			continue
		}
		if def.Weight > bestWeight || (def.Weight == bestWeight && id < best) {
			best, bestWeight = id, def.Weight
		}
	}
	if best == "" {
		return []string{"No basic attack defined."}
	}
	return m.cmdAct([]string{best, target})
}

func (m *Model) cmdChain(args []string) []string {
	if len(args) == 0 {
		return []string{"Usage: chain <chain>"}
	}
	chainID := args[0]
	def, ok := m.defs.Chains[chainID]
	if !ok {
		return []string{fmt.Sprintf("Unknown chain: %s", chainID)}
	}
	owner := def.Owner
	if owner == "" {
		owner = m.actor
	}
	r := action.New(types.KindChainAction, owner, types.ChainContext{
		ChainID: chainID,
		Owner:   owner,
	})
	m.engine.Submit(r)
	span := 0
	for _, step := range def.Steps {
		span += step.DelayTicks + 1
	}
	m.tick()
	for i := 0; i < span; i++ {
		m.tick()
	}
	return nil
}

func (m *Model) cmdAuto(args []string) []string {
	actor := m.actor
	target := m.target
	if len(args) > 0 {
		actor = args[0]
	}
	if len(args) > 1 {
		target = args[1]
	}
	r := m.engine.AutoRequest(actor, target)
	if r == nil {
		return []string{fmt.Sprintf("%s has no usable action.", actor)}
	}
	m.engine.Submit(r)
	m.tick()
	return nil
}

func (m *Model) cmdActions() []string {
	ids := make([]string, 0, len(m.defs.Actions))
	for id := range m.defs.Actions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		def := m.defs.Actions[id]
		lines = append(lines, fmt.Sprintf("%-12s %s (%s)", id, def.Name, def.Kind))
	}
	return lines
}

func (m *Model) tick() {
	m.engine.Tick(m.step)
}

// appendCombat folds echoed input, collected event lines, and any system
// lines into the viewport.
func (m Model) appendCombat(input string, system []string) Model {
	m.rawLines = append(m.rawLines, rawLine{text: "> " + input, isInput: true})
	m.rawLines = append(m.rawLines, m.collector.drain()...)
	for _, line := range system {
		m.rawLines = append(m.rawLines, rawLine{text: line, isSystem: true})
	}
	m.rawLines = append(m.rawLines, rawLine{})
	m.refreshViewport()
	return m
}

func (m Model) appendSystem(input string, lines []string) Model {
	m.rawLines = append(m.rawLines, rawLine{text: "> " + input, isInput: true})
	for _, line := range lines {
		m.rawLines = append(m.rawLines, rawLine{text: line, isSystem: true})
	}
	m.rawLines = append(m.rawLines, rawLine{})
	m.refreshViewport()
	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		case rl.isEvent:
			styled = append(styled, renderEventLine(wrapped, rl.kind))
		default:
			styled = append(styled, stylePlain.Render(wrapped))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/timing":
		return m.cmdTiming(), false

	case "/as":
		if arg == "" {
			return []string{fmt.Sprintf("Acting as %s.", m.actor)}, false
		}
		if _, ok := m.defs.Combatants[arg]; !ok {
			return []string{fmt.Sprintf("Unknown combatant: %s", arg)}, false
		}
		m.actor = arg
		return []string{fmt.Sprintf("Acting as %s.", arg)}, false

	case "/target":
		if arg == "" {
			return []string{fmt.Sprintf("Targeting %s.", m.target)}, false
		}
		if _, ok := m.defs.Combatants[arg]; !ok {
			return []string{fmt.Sprintf("Unknown combatant: %s", arg)}, false
		}
		m.target = arg
		return []string{fmt.Sprintf("Targeting %s.", arg)}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System:",
		"  /as [combatant]      — Set (or show) the acting combatant",
		"  /target [combatant]  — Set (or show) the default target",
		"  /state               — Dump current combat state",
		"  /timing              — Per-kind pipeline timing stats",
		"  /quit                — Exit",
		"  /help                — Show this help",
		"",
		"Combat commands:",
		"  act <action> [target]   — Submit an action and tick",
		"  attack [target]         — Use the strongest basic attack",
		"  chain <chain>           — Start a chain and run its steps",
		"  auto [actor] [target]   — Let the AI pick an action",
		"  run <n>                 — Advance n ticks",
		"  wait (z)                — Advance one tick",
		"  actions                 — List available actions",
		"  again (g)               — Repeat your last command",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}

func (m *Model) cmdState() []string {
	s := m.engine.State
	output := []string{fmt.Sprintf("Tick: %d", s.Tick)}

	ids := make([]string, 0, len(s.Combatants))
	for id := range s.Combatants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		cs := s.Combatants[id]
		line := fmt.Sprintf("%s: hp=%d", id, cs.Stats["hp"])
		for res, v := range cs.Resources {
			line += fmt.Sprintf(" %s=%d", res, v)
		}
		for st, on := range cs.Statuses {
			if on {
				line += " [" + st + "]"
			}
		}
		output = append(output, line)
	}
	if len(s.Flags) > 0 {
		output = append(output, fmt.Sprintf("Flags: %v", s.Flags))
	}
	if len(s.Counters) > 0 {
		output = append(output, fmt.Sprintf("Counters: %v", s.Counters))
	}
	return output
}

func (m *Model) cmdTiming() []string {
	stats := m.engine.Monitor.Stats()
	if len(stats) == 0 {
		return []string{"No actions resolved yet."}
	}
	kinds := make([]string, 0, len(stats))
	for kind := range stats {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	output := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		st := stats[types.ActionKind(kind)]
		output = append(output, fmt.Sprintf("%s: count=%d mean=%s", kind, st.Count, st.Mean()))
	}
	return output
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
