package websocket

import "encoding/json"

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventSnapshot Event = "snapshot"
	EventUpdate   Event = "update"
	EventPing     Event = "ping"
	EventError    Event = "error"
)

// SnapshotResponse carries the initial state pushed right after upgrade:
// the test header and every session currently live on it.
type SnapshotResponse struct {
	Event    Event       `json:"event"`
	Test     interface{} `json:"test"`
	Sessions interface{} `json:"sessions"`
}

// UpdateResponse forwards one monitor event from the Redis channel.
// Data is the raw published JSON, passed through untouched.
type UpdateResponse struct {
	Event Event           `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type PingResponse struct {
	Event Event `json:"event"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}
