package events

import "encoding/json"

// Event name constants
const (
	DisplayUpdate = "display.update"
	SessionClear  = "session.clear"
)

// Event is a generic SSE event from daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// DisplayUpdateEvent is the typed payload for display.update.
type DisplayUpdateEvent struct {
	Display  string `json:"display"`
	Operator string `json:"operator,omitempty"`
	Selected string `json:"selected,omitempty"`
	Error    bool   `json:"error,omitempty"`
	Ts       int64  `json:"ts"`
}

// SessionClearEvent is the typed payload for session.clear.
type SessionClearEvent struct {
	Reason string `json:"reason"`
	Ts     int64  `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// It ignores the event name and simply unmarshals Data into T. If Data is empty,
// it returns the zero value of T with a nil error.
//
// Example:
//
//	payload, err := events.DecodeAs[events.DisplayUpdateEvent](ev)
//	if err != nil { /* handle */ }
//	fmt.Println(payload.Display, payload.Operator)
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
