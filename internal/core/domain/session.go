package domain

import (
	"time"
)

type SessionID string

// SessionInfo identifies one client connection. Inbound packets are
// session-addressed, never resolved through the stream registry.
type SessionInfo struct {
	ID          SessionID
	RemoteAddr  string
	ConnectedAt time.Time
}
