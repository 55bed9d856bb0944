// Package cli provides terminal I/O, output formatting, and command
// dispatch for driving a combat simulation interactively.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nmoreau/strikecore/engine"
	"github.com/nmoreau/strikecore/engine/action"
	"github.com/nmoreau/strikecore/engine/state"
	"github.com/nmoreau/strikecore/types"
)

// CLI handles terminal interaction with the operator. It subscribes to the
// engine's event bus and renders every broadcast event as an output line.
type CLI struct {
	Engine    *engine.Engine
	Defs      *state.Defs
	In        io.Reader
	Out       io.Writer
	Actor     string        // combatant issuing commands
	Target    string        // default target for actions
	Step      time.Duration // simulated time per tick
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine. The first two combatants
// (by ID order) become the default actor and target.
func New(eng *engine.Engine, defs *state.Defs) *CLI {
	c := &CLI{
		Engine: eng,
		Defs:   defs,
		In:     os.Stdin,
		Out:    os.Stdout,
		Step:   100 * time.Millisecond,
	}
	ids := sortedCombatantIDs(defs)
	if len(ids) > 0 {
		c.Actor = ids[0]
	}
	if len(ids) > 1 {
		c.Target = ids[1]
	}
	eng.Bus.Subscribe(c,
		types.EventActionStarted,
		types.EventActionCompleted,
		types.EventDamageDealt,
		types.EventEffectApplied,
		types.EventEffectRemoved,
		types.EventStatusChanged,
		types.EventCustom,
		types.EventActionError,
	)
	return c
}

// HandleEvent renders one bus event as an output line.
func (c *CLI) HandleEvent(e types.CombatEvent) {
	c.printLine(FormatEvent(e))
}

// Run starts the command loop: prompt → input → dispatch → tick → output.
func (c *CLI) Run() {
	if c.Defs.Scenario.Title != "" {
		c.printLine(c.Defs.Scenario.Title)
		c.printLine("")
	}

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		// "again" / "g" repeats the last combat command.
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		c.dispatch(input)
	}
}

// dispatch parses and runs one combat command.
func (c *CLI) dispatch(input string) {
	parts := strings.Fields(input)
	verb := strings.ToLower(parts[0])
	args := parts[1:]

	switch verb {
	case "act", "cast", "use":
		c.cmdAct(args)
	case "attack":
		c.cmdAttack(args)
	case "chain":
		c.cmdChain(args)
	case "auto":
		c.cmdAuto(args)
	case "wait", "z":
		c.tick()
	case "run":
		c.cmdRun(args)
	case "recent":
		c.cmdRecent(args)
	case "actions":
		c.cmdActions()
	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", verb))
	}
}

func (c *CLI) cmdAct(args []string) {
	if len(args) == 0 {
		c.printSystem("Usage: act <action> [target]")
		return
	}
	actionID := args[0]
	def, ok := c.Defs.Actions[actionID]
	if !ok {
		c.printSystem(fmt.Sprintf("Unknown action: %s", actionID))
		return
	}
	target := c.Target
	if len(args) > 1 {
		target = args[1]
	}
	r := action.New(def.Kind, c.Actor, types.ActionContext{
		ActionID: actionID,
		Actor:    c.Actor,
		Target:   target,
	})
	c.Engine.Submit(r)
	c.tick()
}

// cmdAttack picks the actor's heaviest basic attack and runs it.
func (c *CLI) cmdAttack(args []string) {
	target := c.Target
	if len(args) > 0 {
		target = args[0]
	}
	var best string
	bestWeight := -1
	for id, def := range c.Defs.Actions {
		if def.Kind != types.KindBasicAttack {
			continue
		}
		if def.Weight > bestWeight || (def.Weight == bestWeight && id < best) {
			best, bestWeight = id, def.Weight
		}
	}
	if best == "" {
		c.printSystem("No basic attack defined.")
		return
	}
	c.cmdAct([]string{best, target})
}

func (c *CLI) cmdChain(args []string) {
	if len(args) == 0 {
		c.printSystem("Usage: chain <chain>")
		return
	}
	chainID := args[0]
	def, ok := c.Defs.Chains[chainID]
	if !ok {
		c.printSystem(fmt.Sprintf("Unknown chain: %s", chainID))
		return
	}
	owner := def.Owner
	if owner == "" {
		owner = c.Actor
	}
	r := action.New(types.KindChainAction, owner, types.ChainContext{
		ChainID: chainID,
		Owner:   owner,
	})
	c.Engine.Submit(r)
	// Extra ticks so the scheduled steps resolve too.
	c.tick()
	for i := 0; i < chainTickSpan(def); i++ {
		c.tick()
	}
}

func (c *CLI) cmdAuto(args []string) {
	actor := c.Actor
	target := c.Target
	if len(args) > 0 {
		actor = args[0]
	}
	if len(args) > 1 {
		target = args[1]
	}
	r := c.Engine.AutoRequest(actor, target)
	if r == nil {
		c.printSystem(fmt.Sprintf("%s has no usable action.", actor))
		return
	}
	c.Engine.Submit(r)
	c.tick()
}

func (c *CLI) cmdRun(args []string) {
	n := 1
	if len(args) > 0 {
		if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
			n = v
		}
	}
	for i := 0; i < n; i++ {
		c.tick()
	}
}

func (c *CLI) cmdRecent(args []string) {
	if len(args) == 0 {
		c.printSystem("Usage: recent <kind> [count]")
		return
	}
	count := 5
	if len(args) > 1 {
		if v, err := strconv.Atoi(args[1]); err == nil && v > 0 {
			count = v
		}
	}
	events := c.Engine.Bus.Recent(types.EventKind(args[0]), count)
	if len(events) == 0 {
		c.printSystem("No matching events.")
		return
	}
	for _, e := range events {
		c.printLine(FormatEvent(e))
	}
}

func (c *CLI) cmdActions() {
	for _, id := range sortedActionIDs(c.Defs) {
		def := c.Defs.Actions[id]
		line := fmt.Sprintf("  %-12s %s (%s)", id, def.Name, def.Kind)
		if def.Cooldown > 0 {
			line += fmt.Sprintf(" cooldown=%d", def.Cooldown)
		}
		for res, amt := range def.Cost {
			line += fmt.Sprintf(" %s=%d", res, amt)
		}
		c.printLine(line)
	}
}

// tick advances the simulation one step and returns 1 if an action ran.
func (c *CLI) tick() int {
	winner, ok := c.Engine.Tick(c.Step)
	if c.Trace && winner != nil {
		c.printSystem(fmt.Sprintf("[trace] %s %s ok=%v", winner.Kind, winner.ID(), ok))
	}
	if winner != nil && ok {
		return 1
	}
	return 0
}

// handleMeta dispatches meta-commands. Returns true if the loop should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/as":
		if arg == "" {
			c.printSystem(fmt.Sprintf("Acting as %s.", c.Actor))
		} else if _, ok := c.Defs.Combatants[arg]; !ok {
			c.printSystem(fmt.Sprintf("Unknown combatant: %s", arg))
		} else {
			c.Actor = arg
			c.printSystem(fmt.Sprintf("Acting as %s.", arg))
		}

	case "/target":
		if arg == "" {
			c.printSystem(fmt.Sprintf("Targeting %s.", c.Target))
		} else if _, ok := c.Defs.Combatants[arg]; !ok {
			c.printSystem(fmt.Sprintf("Unknown combatant: %s", arg))
		} else {
			c.Target = arg
			c.printSystem(fmt.Sprintf("Targeting %s.", arg))
		}

	case "/timing":
		c.cmdTiming()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /as [combatant]      — Set (or show) the acting combatant",
		"  /target [combatant]  — Set (or show) the default target",
		"  /state               — Dump current combat state",
		"  /timing              — Per-kind pipeline timing stats",
		"  /trace               — Toggle debug trace output",
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
		"  recent <kind> [count]   — Show recent events of a kind",
		"  actions                 — List available actions",
		"  again (g)               — Repeat your last command",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	s := c.Engine.State
	c.printSystem(fmt.Sprintf("Tick: %d", s.Tick))
	for _, id := range sortedCombatantIDs(c.Defs) {
		cs, ok := s.Combatants[id]
		if !ok {
			continue
		}
		line := fmt.Sprintf("%s: hp=%d", id, cs.Stats["hp"])
		for res, v := range cs.Resources {
			line += fmt.Sprintf(" %s=%d", res, v)
		}
		for st, on := range cs.Statuses {
			if on {
				line += " [" + st + "]"
			}
		}
		c.printSystem(line)
	}
	if len(s.Flags) > 0 {
		c.printSystem(fmt.Sprintf("Flags: %v", s.Flags))
	}
	if len(s.Counters) > 0 {
		c.printSystem(fmt.Sprintf("Counters: %v", s.Counters))
	}
}

func (c *CLI) cmdTiming() {
	stats := c.Engine.Monitor.Stats()
	if len(stats) == 0 {
		c.printSystem("No actions resolved yet.")
		return
	}
	for kind, st := range stats {
		c.printSystem(fmt.Sprintf("%s: count=%d mean=%s", kind, st.Count, st.Mean()))
	}
}

// chainTickSpan is the number of extra ticks a chain needs after its start
// tick for every scheduled step to come due.
func chainTickSpan(def types.ChainDef) int {
	span := 0
	for _, step := range def.Steps {
		span += step.DelayTicks + 1
	}
	return span
}

func sortedCombatantIDs(defs *state.Defs) []string {
	ids := make([]string, 0, len(defs.Combatants))
	for id := range defs.Combatants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedActionIDs(defs *state.Defs) []string {
	ids := make([]string, 0, len(defs.Actions))
	for id := range defs.Actions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
