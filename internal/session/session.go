// Package session hosts editing sessions. Each session exclusively owns
// one document and serializes all access to it: the scene graph and its
// history stay single-threaded, the session is the one logical owner.
package session

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sketchd/sketchd/internal/document"
	"github.com/sketchd/sketchd/internal/shape"
)

// Session binds a document to its watchers.
type Session struct {
	ID             string
	Name           string
	PassphraseHash []byte
	CreatedAt      time.Time

	mu       sync.Mutex
	doc      *document.Document
	seq      int64
	watchers map[string]*Watcher
	closed   bool
}

func newSession(id, name string, passphraseHash []byte, doc *document.Document) *Session {
	return &Session{
		ID:             id,
		Name:           name,
		PassphraseHash: passphraseHash,
		CreatedAt:      time.Now().UTC(),
		doc:            doc,
		watchers:       make(map[string]*Watcher),
	}
}

// AddShape builds a shape from its spec and appends it to the document.
func (s *Session) AddShape(spec document.ShapeSpec) (shape.Shape, error) {
	built, err := document.BuildShape(spec)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.AddObject(built)
	s.bumpAndNotifyLocked()
	return built, nil
}

// RemoveLast removes the topmost shape.
func (s *Session) RemoveLast() (shape.Shape, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed, err := s.doc.RemoveLast()
	if err != nil {
		return nil, err
	}
	s.bumpAndNotifyLocked()
	return removed, nil
}

// Undo reverses the most recent edit. An empty undo stack surfaces as the
// history sentinel error; no notification is sent in that case.
func (s *Session) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.doc.Undo(); err != nil {
		return err
	}
	s.bumpAndNotifyLocked()
	return nil
}

// Redo re-applies the most recently undone edit.
func (s *Session) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.doc.Redo(); err != nil {
		return err
	}
	s.bumpAndNotifyLocked()
	return nil
}

// Tree returns the textual tree dump, the current edit seq, and whether
// the document is empty.
func (s *Session) Tree() (tree string, seq int64, empty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.treeLocked(), s.seq, s.doc.Len() == 0
}

// FindAt hit-tests the document at the given point, returning the deepest
// matching shape or nil.
func (s *Session) FindAt(x, y int) shape.Shape {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.FindObjectAt(x, y)
}

// AddWatcher registers a watcher and sends it the current tree. The
// welcome frame goes out under the session lock so a concurrent Close
// cannot close the watcher's send channel in between. A closed session
// rejects the watcher and closes its channel so its pumps exit.
func (s *Session) AddWatcher(w *Watcher) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		close(w.send)
		return
	}

	s.watchers[w.ID] = w

	payload, _ := json.Marshal(WelcomePayload{WatcherID: w.ID, ClientID: w.ClientID, Tree: s.treeLocked()})
	w.Send(&Message{Type: TypeWelcome, SessionID: s.ID, Payload: payload})

	slog.Info("watcher joined", "watcher", w.ID, "client", w.ClientID, "session", s.ID)
}

// RemoveWatcher unregisters a watcher and closes its send channel.
func (s *Session) RemoveWatcher(watcherID string) {
	s.mu.Lock()
	w, ok := s.watchers[watcherID]
	if ok {
		delete(s.watchers, watcherID)
		close(w.send)
	}
	s.mu.Unlock()

	if ok {
		slog.Info("watcher left", "watcher", watcherID, "client", w.ClientID, "session", s.ID)
	}
}

// Close disconnects all watchers. Further edits still succeed but notify
// no one.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, w := range s.watchers {
		delete(s.watchers, id)
		close(w.send)
	}
}

func (s *Session) treeLocked() string {
	var b strings.Builder
	s.doc.Print(&b)
	return b.String()
}

// bumpAndNotifyLocked advances the edit seq and broadcasts the new tree
// to all watchers. Caller must hold s.mu.
func (s *Session) bumpAndNotifyLocked() {
	s.seq++

	if len(s.watchers) == 0 {
		return
	}

	payload, err := json.Marshal(DocSyncPayload{
		Tree:  s.treeLocked(),
		Empty: s.doc.Len() == 0,
	})
	if err != nil {
		slog.Error("marshal doc sync", "error", err)
		return
	}

	msg := &Message{Type: TypeDocSync, SessionID: s.ID, Seq: s.seq, Payload: payload}
	for _, w := range s.watchers {
		w.Send(msg)
	}
}
