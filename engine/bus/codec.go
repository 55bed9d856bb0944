package bus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nmoreau/strikecore/types"
)

// WireVersion tags the serialized event schema. Decoders reject frames
// carrying an unknown version instead of guessing.
const WireVersion = 1

// wireEvent is the explicit versioned wire form of a combat event.
// Payload values survive as JSON types: numbers come back as float64.
type wireEvent struct {
	Version   int            `json:"v"`
	Kind      string         `json:"kind"`
	Actor     string         `json:"actor,omitempty"`
	Target    string         `json:"target,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"ts"`
}

// Encode serializes an event for network replication.
func Encode(e types.CombatEvent) ([]byte, error) {
	return json.Marshal(wireEvent{
		Version:   WireVersion,
		Kind:      string(e.Kind),
		Actor:     e.Actor,
		Target:    e.Target,
		Payload:   e.Payload,
		Timestamp: e.Timestamp,
	})
}

// Decode deserializes a wire frame produced by Encode. Kind, actor, target,
// payload and timestamp round-trip; the version tag must match.
func Decode(data []byte) (types.CombatEvent, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return types.CombatEvent{}, fmt.Errorf("decoding combat event: %w", err)
	}
	if w.Version != WireVersion {
		return types.CombatEvent{}, fmt.Errorf("unsupported combat event version %d", w.Version)
	}
	if w.Kind == "" {
		return types.CombatEvent{}, fmt.Errorf("combat event missing kind")
	}
	return types.CombatEvent{
		Kind:      types.EventKind(w.Kind),
		Actor:     w.Actor,
		Target:    w.Target,
		Payload:   w.Payload,
		Timestamp: w.Timestamp,
	}, nil
}
