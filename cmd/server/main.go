package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/sketchd/sketchd/internal/api"
	"github.com/sketchd/sketchd/internal/auth"
	"github.com/sketchd/sketchd/internal/config"
	"github.com/sketchd/sketchd/internal/export"
	mw "github.com/sketchd/sketchd/internal/middleware"
	"github.com/sketchd/sketchd/internal/session"
	"github.com/sketchd/sketchd/internal/typeid"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	allowedOrigins := strings.Split(cfg.AllowedOrigins, ",")

	sessions := session.NewManager(cfg.MaxSessions)
	authService := auth.NewService(cfg.JWTSecret)

	apiHandler := api.NewHandler(sessions, authService)
	exportHandler := export.NewHandler(sessions)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(allowedOrigins))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Session bootstrap (public: creating a session is how you get a token)
	r.HandleFunc("/sessions", apiHandler.CreateSession).Methods("POST", "OPTIONS")
	r.HandleFunc("/sessions/{sessionId}/token", apiHandler.IssueToken).Methods("POST", "OPTIONS")

	// Protected editing API
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(authService.Middleware)

	apiRouter.HandleFunc("/sessions/{sessionId}", apiHandler.DeleteSession).Methods("DELETE")
	apiRouter.HandleFunc("/sessions/{sessionId}/tree", apiHandler.GetTree).Methods("GET")
	apiRouter.HandleFunc("/sessions/{sessionId}/shapes", apiHandler.AddShape).Methods("POST")
	apiRouter.HandleFunc("/sessions/{sessionId}/shapes/last", apiHandler.RemoveLast).Methods("DELETE")
	apiRouter.HandleFunc("/sessions/{sessionId}/undo", apiHandler.Undo).Methods("POST")
	apiRouter.HandleFunc("/sessions/{sessionId}/redo", apiHandler.Redo).Methods("POST")
	apiRouter.HandleFunc("/sessions/{sessionId}/hit", apiHandler.Hit).Methods("GET")
	apiRouter.HandleFunc("/sessions/{sessionId}/export", exportHandler.ExportTree).Methods("GET")

	// WebSocket watch endpoint (token via query param)
	r.HandleFunc("/ws/sessions/{sessionId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, sessions, authService, allowedOrigins)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Disconnect watchers before closing the listener
		sessions.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, sessions *session.Manager, authSvc *auth.Service, allowedOrigins []string) {
	vars := mux.Vars(r)
	sessionID := vars["sessionId"]

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	granted, err := authSvc.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if granted != sessionID {
		http.Error(w, "token does not grant access to this session", http.StatusForbidden)
		return
	}

	sess, err := sessions.Get(sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	patterns := make([]string, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		patterns = append(patterns, strings.TrimPrefix(strings.TrimPrefix(origin, "http://"), "https://"))
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: patterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	watcher := session.NewWatcher(sess, conn, typeid.NewWatcherID(), uuid.New().String())
	sess.AddWatcher(watcher)

	ctx := r.Context()
	go watcher.WritePump(ctx)
	watcher.ReadPump(ctx)
}
