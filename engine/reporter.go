package engine

import (
	"log"

	"github.com/nmoreau/strikecore/engine/action"
	"github.com/nmoreau/strikecore/engine/bus"
	"github.com/nmoreau/strikecore/types"
)

// BusReporter publishes diagnostics as immediate action_error events, so
// UI and analytics subscribers see rejections the same way they see hits.
type BusReporter struct {
	Bus *bus.Bus
}

func (r BusReporter) Report(kind, actor, message string, req *action.Request) {
	payload := map[string]any{"diagnostic": kind, "message": message}
	if req != nil {
		payload["request_id"] = req.ID()
		payload["action_kind"] = string(req.Kind)
	}
	r.Bus.Raise(types.EventActionError, actor, "", payload, true)
}

// LogReporter writes diagnostics to a standard logger. Useful for headless
// drivers that have no bus subscriber watching errors.
type LogReporter struct {
	Logger *log.Logger
}

func (r LogReporter) Report(kind, actor, message string, req *action.Request) {
	id := ""
	if req != nil {
		id = req.ID()
	}
	r.Logger.Printf("%s actor=%s req=%s: %s", kind, actor, id, message)
}

// MultiReporter fans a diagnostic out to several reporters in order.
type MultiReporter []Reporter

func (m MultiReporter) Report(kind, actor, message string, req *action.Request) {
	for _, r := range m {
		r.Report(kind, actor, message, req)
	}
}
