// Package api exposes the editing operations of a session document over
// HTTP. It is a thin surface: all scene-graph and history semantics live
// in the document core.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sketchd/sketchd/internal/auth"
	"github.com/sketchd/sketchd/internal/document"
	"github.com/sketchd/sketchd/internal/history"
	"github.com/sketchd/sketchd/internal/session"
	"github.com/sketchd/sketchd/internal/shape"
)

type Handler struct {
	sessions *session.Manager
	auth     *auth.Service
}

func NewHandler(sessions *session.Manager, authSvc *auth.Service) *Handler {
	return &Handler{sessions: sessions, auth: authSvc}
}

type createSessionRequest struct {
	Name       string `json:"name"`
	Passphrase string `json:"passphrase"`
	Sample     bool   `json:"sample"`
}

type createSessionResponse struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
}

type tokenRequest struct {
	Passphrase string `json:"passphrase"`
}

// CreateSession opens a new editing session and returns its access token.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	hash, err := h.auth.HashPassphrase(req.Passphrase)
	if err != nil {
		slog.Error("hash passphrase failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	sess, err := h.sessions.Create(req.Name, hash, req.Sample)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	token, err := h.auth.IssueToken(sess.ID)
	if err != nil {
		slog.Error("issue token failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, createSessionResponse{SessionID: sess.ID, Token: token})
}

// IssueToken re-issues an access token for a passphrase-protected
// session. This is how an owner resumes a session after losing the token.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	sess, err := h.sessions.Get(sessionID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.auth.CheckPassphrase(sess.PassphraseHash, req.Passphrase); err != nil {
		handleServiceError(w, err)
		return
	}

	token, err := h.auth.IssueToken(sess.ID)
	if err != nil {
		slog.Error("issue token failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// DeleteSession closes a session and disconnects its watchers.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.authorizedSession(w, r)
	if !ok {
		return
	}

	if err := h.sessions.Delete(sess.ID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetTree returns the textual tree dump of the session's document.
func (h *Handler) GetTree(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.authorizedSession(w, r)
	if !ok {
		return
	}

	tree, seq, empty := sess.Tree()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tree":  tree,
		"seq":   seq,
		"empty": empty,
	})
}

// AddShape validates a shape spec and appends the built shape to the
// document.
func (h *Handler) AddShape(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.authorizedSession(w, r)
	if !ok {
		return
	}

	var spec document.ShapeSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	added, err := sess.AddShape(spec)
	if err != nil {
		// Construction-time validation failure: rejected at the boundary.
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":   added.ID(),
		"line": shape.DrawLine(added),
	})
}

// RemoveLast removes the topmost shape of the document.
func (h *Handler) RemoveLast(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.authorizedSession(w, r)
	if !ok {
		return
	}

	removed, err := sess.RemoveLast()
	if err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": removed.ID()})
}

// Undo reverses the most recent edit. An empty history is a no-op with a
// reason, never a hard failure.
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.authorizedSession(w, r)
	if !ok {
		return
	}

	if err := sess.Undo(); err != nil {
		if errors.Is(err, history.ErrNothingToUndo) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "noop", "reason": "nothing to undo"})
			return
		}
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Redo re-applies the most recently undone edit.
func (h *Handler) Redo(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.authorizedSession(w, r)
	if !ok {
		return
	}

	if err := sess.Redo(); err != nil {
		if errors.Is(err, history.ErrNothingToRedo) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "noop", "reason": "nothing to redo"})
			return
		}
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Hit performs a hit test at the query point, given in the document
// frame. A miss is a valid negative result, reported as found=false.
func (h *Handler) Hit(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.authorizedSession(w, r)
	if !ok {
		return
	}

	x, errX := strconv.Atoi(r.URL.Query().Get("x"))
	y, errY := strconv.Atoi(r.URL.Query().Get("y"))
	if errX != nil || errY != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "x and y must be integers"})
		return
	}

	found := sess.FindAt(x, y)
	if found == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"found": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"found": true,
		"id":    found.ID(),
		"line":  shape.DrawLine(found),
	})
}

// authorizedSession resolves the path session and checks it against the
// session granted by the bearer token.
func (h *Handler) authorizedSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sessionID := mux.Vars(r)["sessionId"]

	if granted := auth.SessionIDFromContext(r.Context()); granted != sessionID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "token does not grant access to this session"})
		return nil, false
	}

	sess, err := h.sessions.Get(sessionID)
	if err != nil {
		handleServiceError(w, err)
		return nil, false
	}

	return sess, true
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
	case errors.Is(err, session.ErrSessionLimit):
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "session limit reached"})
	case errors.Is(err, auth.ErrInvalidPassphrase), errors.Is(err, auth.ErrNoPassphrase):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid passphrase"})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
