package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"timeturner/internal/api"
	"timeturner/internal/config"
	"timeturner/internal/control"
	"timeturner/internal/logging"
)

type apiServer struct {
	bind   string
	token  string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		token:  strings.TrimSpace(cfg.Paths.APIToken),
		logger: logger,
		daemon: d,
	}

	srv.server = &http.Server{
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", authMiddleware(s.token, s.handleStatus))
	mux.HandleFunc("/api/sync", authMiddleware(s.token, s.handleSync))
	mux.HandleFunc("/api/nudge", authMiddleware(s.token, s.handleNudge))
	mux.HandleFunc("/api/config", authMiddleware(s.token, s.handleConfig))
	mux.HandleFunc("/api/logs", authMiddleware(s.token, s.handleLogs))
	mux.HandleFunc("/api/history", authMiddleware(s.token, s.handleHistory))
	mux.HandleFunc("/api/ws", s.handleWebsocket)
	return mux
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", slog.String("error", err.Error()))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", slog.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.Status(r.Context()))
}

func (s *apiServer) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := s.daemon.Sync(r.Context()); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, control.ErrNoLock) {
			status = http.StatusConflict
		}
		s.writeJSON(w, status, api.SyncResponse{Applied: false, Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, api.SyncResponse{Applied: true})
}

func (s *apiServer) handleNudge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.NudgeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid nudge request")
			return
		}
	}
	amount := req.AmountMS
	if amount == 0 {
		amount = s.daemon.Config().Snapshot().Sync.DefaultNudgeMS
	}
	if err := s.daemon.Nudge(r.Context(), amount); err != nil {
		s.writeJSON(w, http.StatusInternalServerError, api.NudgeResponse{
			Applied:  false,
			AmountMS: amount,
			Error:    err.Error(),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, api.NudgeResponse{Applied: true, AmountMS: amount})
}

func (s *apiServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	store := s.daemon.Config()
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, api.FromConfig(store.Snapshot()))
	case http.MethodPost, http.MethodPut:
		var payload api.ConfigPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid config payload")
			return
		}
		current := store.Snapshot()
		updated := payload.ApplyTo(current)
		if err := updated.Validate(); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if path := store.Path(); path != "" {
			if err := updated.Save(path); err != nil {
				s.writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
		}
		store.Replace(updated)
		s.log().Info("configuration updated via api",
			logging.Bool("offset_active", updated.TimeturnerOffset().Active()),
			logging.Bool("auto_sync", updated.Sync.AutoSyncEnabled),
		)

		// Activating an offset is an explicit request to turn time; apply it
		// right away instead of waiting for the debounce loop.
		if updated.TimeturnerOffset().Active() && !current.TimeturnerOffset().Active() {
			if err := s.daemon.Sync(r.Context()); err != nil {
				s.log().Warn("offset activation sync failed", logging.Error(err))
			}
		}
		s.writeJSON(w, http.StatusOK, api.FromConfig(updated))
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	hub := s.daemon.LogStream()
	if hub == nil {
		s.writeJSON(w, http.StatusOK, api.LogStreamResponse{Events: nil, Next: 0})
		return
	}

	query := r.URL.Query()
	since, _ := strconv.ParseUint(query.Get("since"), 10, 64)
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 {
		limit = 200
	}
	follow := query.Get("follow") == "1" || strings.EqualFold(query.Get("follow"), "true")
	tail := query.Get("tail") == "1" || strings.EqualFold(query.Get("tail"), "true")

	var (
		events []api.LogEvent
		next   uint64
	)
	if tail && since == 0 && !follow {
		raw, cursor := hub.Tail(limit)
		events = api.FromLogEvents(raw)
		next = cursor
	} else {
		raw, cursor, err := hub.Fetch(r.Context(), since, limit, follow)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		events = api.FromLogEvents(raw)
		next = cursor
	}

	component := strings.TrimSpace(query.Get("component"))
	if component != "" {
		filtered := events[:0]
		for _, evt := range events {
			if strings.EqualFold(component, evt.Component) {
				filtered = append(filtered, evt)
			}
		}
		events = filtered
	}

	s.writeJSON(w, http.StatusOK, api.LogStreamResponse{Events: events, Next: next})
}

func (s *apiServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.daemon.History(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.HistoryResponse{Entries: api.FromEntries(entries)})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String("component", "api-server"))
	}
	return logging.NewNop()
}
