package session

import "encoding/json"

// Message is the frame sent to watch clients.
type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const (
	// Connection
	TypeWelcome = "welcome"

	// Document sync: sent after every successful edit
	TypeDocSync = "doc.sync"
)

// WelcomePayload is sent once when a watcher connects.
type WelcomePayload struct {
	WatcherID string `json:"watcherId"`
	ClientID  string `json:"clientId"`
	Tree      string `json:"tree"`
}

// DocSyncPayload carries the textual tree dump after an edit.
type DocSyncPayload struct {
	Tree  string `json:"tree"`
	Empty bool   `json:"empty"`
}
