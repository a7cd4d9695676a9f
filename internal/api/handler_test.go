package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchd/sketchd/internal/auth"
	"github.com/sketchd/sketchd/internal/session"
)

func newTestRouter(t *testing.T) (*mux.Router, *session.Manager, *auth.Service) {
	t.Helper()

	sessions := session.NewManager(0)
	authService := auth.NewService("test-secret")
	h := NewHandler(sessions, authService)

	r := mux.NewRouter()
	r.HandleFunc("/sessions", h.CreateSession).Methods("POST")
	r.HandleFunc("/sessions/{sessionId}/token", h.IssueToken).Methods("POST")

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(authService.Middleware)
	apiRouter.HandleFunc("/sessions/{sessionId}", h.DeleteSession).Methods("DELETE")
	apiRouter.HandleFunc("/sessions/{sessionId}/tree", h.GetTree).Methods("GET")
	apiRouter.HandleFunc("/sessions/{sessionId}/shapes", h.AddShape).Methods("POST")
	apiRouter.HandleFunc("/sessions/{sessionId}/shapes/last", h.RemoveLast).Methods("DELETE")
	apiRouter.HandleFunc("/sessions/{sessionId}/undo", h.Undo).Methods("POST")
	apiRouter.HandleFunc("/sessions/{sessionId}/redo", h.Redo).Methods("POST")
	apiRouter.HandleFunc("/sessions/{sessionId}/hit", h.Hit).Methods("GET")

	return r, sessions, authService
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	} else {
		buf.WriteString("{}")
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func createSession(t *testing.T, r http.Handler, body interface{}) (sessionID, token string) {
	t.Helper()
	rec, resp := doJSON(t, r, "POST", "/sessions", "", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	return resp["sessionId"].(string), resp["token"].(string)
}

func TestCreateSessionAndTree(t *testing.T) {
	r, _, _ := newTestRouter(t)

	sessionID, token := createSession(t, r, map[string]interface{}{"name": "scratch"})
	require.NotEmpty(t, sessionID)
	require.NotEmpty(t, token)

	rec, resp := doJSON(t, r, "GET", "/api/sessions/"+sessionID+"/tree", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[empty]\n", resp["tree"])
	assert.Equal(t, true, resp["empty"])
}

func TestAddShapeAndHit(t *testing.T) {
	r, _, _ := newTestRouter(t)
	sessionID, token := createSession(t, r, map[string]interface{}{"name": "edit"})

	rec, resp := doJSON(t, r, "POST", "/api/sessions/"+sessionID+"/shapes", token, map[string]interface{}{
		"type": "circle", "x": 10, "y": 10, "r": 5,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Circle (10, 10) R=5", resp["line"])
	circleID := resp["id"].(string)

	rec, resp = doJSON(t, r, "GET", "/api/sessions/"+sessionID+"/hit?x=10&y=10", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, resp["found"])
	assert.Equal(t, circleID, resp["id"])

	rec, resp = doJSON(t, r, "GET", "/api/sessions/"+sessionID+"/hit?x=99&y=99", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, "a miss is not an error")
	assert.Equal(t, false, resp["found"])
}

func TestAddShapeValidation(t *testing.T) {
	r, _, _ := newTestRouter(t)
	sessionID, token := createSession(t, r, map[string]interface{}{"name": "bad"})

	rec, resp := doJSON(t, r, "POST", "/api/sessions/"+sessionID+"/shapes", token, map[string]interface{}{
		"type": "circle", "x": 0, "y": 0, "r": -1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp["error"], "radius must be positive")
}

func TestGroupHitResolvesDeepest(t *testing.T) {
	r, _, _ := newTestRouter(t)
	sessionID, token := createSession(t, r, map[string]interface{}{"name": "group"})

	rec, _ := doJSON(t, r, "POST", "/api/sessions/"+sessionID+"/shapes", token, map[string]interface{}{
		"type": "group", "x": 2, "y": 2,
		"children": []map[string]interface{}{
			{"type": "rectangle", "x": 3, "y": 4, "width": 2, "height": 3},
			{"type": "circle", "x": 1, "y": 5, "r": 2},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp := doJSON(t, r, "GET", "/api/sessions/"+sessionID+"/hit?x=5&y=6", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, resp["found"])
	assert.Equal(t, "Rectangle (3, 4) 2*3", resp["line"])
}

func TestUndoRedoFlow(t *testing.T) {
	r, _, _ := newTestRouter(t)
	sessionID, token := createSession(t, r, map[string]interface{}{"name": "history"})

	base := "/api/sessions/" + sessionID

	rec, resp := doJSON(t, r, "POST", base+"/undo", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "noop", resp["status"])
	assert.Equal(t, "nothing to undo", resp["reason"])

	rec, _ = doJSON(t, r, "POST", base+"/shapes", token, map[string]interface{}{
		"type": "rectangle", "x": 0, "y": 0, "width": 2, "height": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp = doJSON(t, r, "POST", base+"/undo", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", resp["status"])

	rec, resp = doJSON(t, r, "GET", base+"/tree", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, resp["empty"])

	rec, resp = doJSON(t, r, "POST", base+"/redo", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", resp["status"])

	rec, resp = doJSON(t, r, "POST", base+"/redo", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "noop", resp["status"])
	assert.Equal(t, "nothing to redo", resp["reason"])
}

func TestRemoveLastEmptyConflicts(t *testing.T) {
	r, _, _ := newTestRouter(t)
	sessionID, token := createSession(t, r, map[string]interface{}{"name": "empty"})

	rec, _ := doJSON(t, r, "DELETE", "/api/sessions/"+sessionID+"/shapes/last", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	r, _, _ := newTestRouter(t)
	sessionID, token := createSession(t, r, map[string]interface{}{"name": "auth"})

	// No token
	rec, _ := doJSON(t, r, "GET", "/api/sessions/"+sessionID+"/tree", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Token for a different session
	otherID, otherToken := createSession(t, r, map[string]interface{}{"name": "other"})
	require.NotEqual(t, sessionID, otherID)

	rec, _ = doJSON(t, r, "GET", "/api/sessions/"+sessionID+"/tree", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = doJSON(t, r, "GET", "/api/sessions/"+sessionID+"/tree", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPassphraseTokenReissue(t *testing.T) {
	r, _, _ := newTestRouter(t)
	sessionID, _ := createSession(t, r, map[string]interface{}{"name": "locked", "passphrase": "hunter2"})

	rec, resp := doJSON(t, r, "POST", "/sessions/"+sessionID+"/token", "", map[string]interface{}{
		"passphrase": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, resp = doJSON(t, r, "POST", "/sessions/"+sessionID+"/token", "", map[string]interface{}{
		"passphrase": "hunter2",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	newToken := resp["token"].(string)

	rec, _ = doJSON(t, r, "GET", "/api/sessions/"+sessionID+"/tree", newToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenReissueWithoutPassphrase(t *testing.T) {
	r, _, _ := newTestRouter(t)
	sessionID, _ := createSession(t, r, map[string]interface{}{"name": "open"})

	rec, _ := doJSON(t, r, "POST", "/sessions/"+sessionID+"/token", "", map[string]interface{}{
		"passphrase": "anything",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "unprotected sessions cannot be resumed")
}

func TestDeleteSession(t *testing.T) {
	r, sessions, _ := newTestRouter(t)
	sessionID, token := createSession(t, r, map[string]interface{}{"name": "gone"})

	rec, _ := doJSON(t, r, "DELETE", "/api/sessions/"+sessionID, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, sessions.Count())

	rec, _ = doJSON(t, r, "GET", "/api/sessions/"+sessionID+"/tree", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSampleSessionTree(t *testing.T) {
	r, _, _ := newTestRouter(t)
	sessionID, token := createSession(t, r, map[string]interface{}{"name": "demo", "sample": true})

	rec, resp := doJSON(t, r, "GET", "/api/sessions/"+sessionID+"/tree", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, resp["tree"], "Group (2, 2)")
	assert.Equal(t, false, resp["empty"])
}

func TestHitRequiresIntegerCoords(t *testing.T) {
	r, _, _ := newTestRouter(t)
	sessionID, token := createSession(t, r, map[string]interface{}{"name": "coords"})

	rec, _ := doJSON(t, r, "GET", "/api/sessions/"+sessionID+"/hit?x=abc&y=1", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
