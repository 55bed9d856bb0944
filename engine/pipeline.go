// Package engine wires priority arbitration, the three-stage resolution
// pipeline, and the combat event bus into a per-tick simulation loop.
package engine

import (
	"fmt"

	"github.com/nmoreau/strikecore/engine/action"
	"github.com/nmoreau/strikecore/engine/stage"
	"github.com/nmoreau/strikecore/types"
)

// Monitor times pipeline runs. Spans are keyed so overlapping runs for
// different requests stay distinct.
type Monitor interface {
	StartTiming(key string)
	StopTiming(key string, kind types.ActionKind)
}

// Reporter receives pipeline diagnostics.
type Reporter interface {
	Report(kind, actor, message string, r *action.Request)
}

// Pipeline orchestrates the three injected stage strategies around one
// request: pre-check, execute, post-react.
type Pipeline struct {
	check    stage.Checker
	exec     stage.Executor
	react    stage.Reactor
	monitor  Monitor
	reporter Reporter
}

// NewPipeline builds a pipeline from stage strategies. A nil monitor or
// reporter is replaced with a no-op.
func NewPipeline(check stage.Checker, exec stage.Executor, react stage.Reactor, m Monitor, rep Reporter) *Pipeline {
	if m == nil {
		m = nopMonitor{}
	}
	if rep == nil {
		rep = nopReporter{}
	}
	return &Pipeline{check: check, exec: exec, react: react, monitor: m, reporter: rep}
}

// Run resolves one request. The timing span opens before pre-check and is
// closed by a deferred stop, so a panic inside execute or post-react still
// ends the span before propagating to the caller. A pre-check rejection is
// reported as a state_conflict diagnostic and aborts before any mutation;
// execute and post-react are not invoked on that path.
//
// Run never checks the request's cancellation flag itself — stages that
// perform irreversible work own that discipline.
func (p *Pipeline) Run(r *action.Request, s *types.State) bool {
	key := fmt.Sprintf("%s:%s", r.Kind, r.ID())
	p.monitor.StartTiming(key)
	defer p.monitor.StopTiming(key, r.Kind)

	if !p.check.Check(r, s) {
		p.reporter.Report("state_conflict", r.Source, "pre-check rejected request", r)
		return false
	}

	defer func() {
		if v := recover(); v != nil {
			p.reporter.Report("action_fault", r.Source, fmt.Sprint(v), r)
			panic(v)
		}
	}()

	p.exec.Execute(r, s)
	p.react.React(r, s)
	return true
}

type nopMonitor struct{}

func (nopMonitor) StartTiming(string)                  {}
func (nopMonitor) StopTiming(string, types.ActionKind) {}

type nopReporter struct{}

func (nopReporter) Report(string, string, string, *action.Request) {}
