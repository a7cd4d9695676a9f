package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 4 * 1024
)

// Watcher is a read-only websocket client receiving tree dumps after
// every edit to its session.
type Watcher struct {
	session *Session
	conn    *websocket.Conn
	send    chan []byte

	ID       string
	ClientID string
}

func NewWatcher(session *Session, conn *websocket.Conn, watcherID, clientID string) *Watcher {
	return &Watcher{
		session:  session,
		conn:     conn,
		send:     make(chan []byte, 64),
		ID:       watcherID,
		ClientID: clientID,
	}
}

// ReadPump drains the connection until it closes. Watchers never submit
// edits, so inbound frames are discarded; reading is still required to
// process control frames and observe disconnects.
func (w *Watcher) ReadPump(ctx context.Context) {
	defer func() {
		w.session.RemoveWatcher(w.ID)
		w.conn.Close(websocket.StatusNormalClosure, "")
	}()

	w.conn.SetReadLimit(maxMsgSize)

	for {
		if _, _, err := w.conn.Read(ctx); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("watcher read error", "error", err, "watcher", w.ID)
			return
		}
	}
}

// WritePump flushes queued messages and keeps the connection alive with
// pings.
func (w *Watcher) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		w.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-w.send:
			if !ok {
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := w.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("watcher write error", "error", err, "watcher", w.ID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := w.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// Send queues a message without blocking; slow consumers drop frames
// rather than stalling the editing session.
func (w *Watcher) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal watch message", "error", err)
		return
	}

	select {
	case w.send <- data:
	default:
		slog.Warn("watcher send buffer full, dropping message", "watcher", w.ID)
	}
}
