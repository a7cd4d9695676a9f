// Package export serves the textual tree dump as a downloadable file.
// The dump is the document's only serialization and is write-only: there
// is no parser on the way back in.
package export

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/sketchd/sketchd/internal/auth"
	"github.com/sketchd/sketchd/internal/session"
)

type Handler struct {
	sessions *session.Manager
}

func NewHandler(sessions *session.Manager) *Handler {
	return &Handler{sessions: sessions}
}

// ExportTree handles GET /api/sessions/{sessionId}/export.
func (h *Handler) ExportTree(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	if granted := auth.SessionIDFromContext(r.Context()); granted != sessionID {
		http.Error(w, "token does not grant access to this session", http.StatusForbidden)
		return
	}

	sess, err := h.sessions.Get(sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	tree, _, _ := sess.Tree()

	name := sanitizeName(sess.Name)
	if name == "" {
		name = "scene"
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".txt"))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(tree))
}

func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	return b.String()
}
