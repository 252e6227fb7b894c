package fanout

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charleschow/possession-sim/internal/events"
)

// Envelope is the wire format for events sent over the viewer WebSocket.
type Envelope struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	SweepID   string          `json:"sweep_id,omitempty"`
	Timestamp time.Time       `json:"ts"`
	Payload   json.RawMessage `json:"payload"`
}

// MarshalEvent serializes an Event into a JSON-encoded Envelope.
func MarshalEvent(evt events.Event) ([]byte, error) {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	env := Envelope{
		Type:      string(evt.Type),
		ID:        evt.ID,
		SweepID:   evt.SweepID,
		Timestamp: evt.Timestamp,
		Payload:   payload,
	}
	return json.Marshal(env)
}

// UnmarshalEvent deserializes a JSON Envelope back into a typed Event.
func UnmarshalEvent(data []byte) (events.Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return events.Event{}, fmt.Errorf("unmarshal envelope: %w", err)
	}

	evt := events.Event{
		ID:        env.ID,
		Type:      events.EventType(env.Type),
		SweepID:   env.SweepID,
		Timestamp: env.Timestamp,
	}

	var err error
	switch evt.Type {
	case events.EventSweepStarted:
		evt.Payload, err = decode[events.SweepStarted](env.Payload)
	case events.EventCellResolved:
		evt.Payload, err = decode[events.CellResolved](env.Payload)
	case events.EventSweepFinished:
		evt.Payload, err = decode[events.SweepFinished](env.Payload)
	case events.EventKick:
		evt.Payload, err = decode[events.KickResolved](env.Payload)
	default:
		return evt, fmt.Errorf("unknown event type: %s", env.Type)
	}
	if err != nil {
		return evt, fmt.Errorf("unmarshal %s: %w", env.Type, err)
	}
	return evt, nil
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	err := json.Unmarshal(raw, &v)
	return v, err
}
