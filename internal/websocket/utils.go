package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds a single frame write; a stalled admin socket must not
// block the monitor loop.
const writeWait = 10 * time.Second

// WriteTyped marshals a typed frame and sends it with a write deadline.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

// WriteError sends an error frame. The caller decides whether to close.
func WriteError(conn *websocket.Conn, msg string) error {
	return WriteTyped(conn, ErrorResponse{Event: EventError, Error: msg})
}
