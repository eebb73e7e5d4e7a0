// Package server exposes the HTTP API: starting tests, polling their
// status, fetching the final report, and a websocket stream of live
// progress.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/kaanbobac/digital-tester-twin/internal/logger"
	"github.com/kaanbobac/digital-tester-twin/internal/report"
	"github.com/kaanbobac/digital-tester-twin/internal/session"
	"github.com/kaanbobac/digital-tester-twin/pkg/audit"
)

// livePushInterval is how often the websocket stream sends a snapshot.
const livePushInterval = 500 * time.Millisecond

// Server routes API requests to a shared auditor and session store.
type Server struct {
	auditor  *audit.Auditor
	store    *session.Store
	log      *logger.Logger
	mux      *http.ServeMux
	upgrader websocket.Upgrader
}

// New builds the API server around an auditor.
func New(a *audit.Auditor, log *logger.Logger) *Server {
	s := &Server{
		auditor: a,
		store:   a.Store(),
		log:     log.WithComponent("server"),
		mux:     http.NewServeMux(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The API is same-deployment only; no cross-origin callers.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.mux.HandleFunc("POST /api/tests", s.handleCreate)
	s.mux.HandleFunc("GET /api/tests/{id}", s.handleStatus)
	s.mux.HandleFunc("GET /api/tests/{id}/report", s.handleReport)
	s.mux.HandleFunc("GET /api/tests/{id}/live", s.handleLive)
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe runs the server until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Infof("listening on %s", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

type createRequest struct {
	URL string `json:"url"`
}

type createResponse struct {
	TestID string `json:"testId"`
	Status string `json:"status"`
}

type statusResponse struct {
	TestID      string           `json:"testId"`
	Status      session.Status   `json:"status"`
	Progress    int              `json:"progress"`
	PagesFound  int              `json:"pagesFound"`
	CurrentPage string           `json:"currentPage"`
	Message     string           `json:"message,omitempty"`
	Actions     []session.Action `json:"actions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	target := strings.TrimSpace(req.URL)
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		s.writeError(w, http.StatusBadRequest, "url must be an absolute http or https address")
		return
	}

	testID := "test_" + uuid.NewString()
	s.store.Create(testID, target)
	go s.auditor.Run(context.Background(), testID, target)

	s.log.WithSession(testID).Infof("test started for %s", target)
	s.writeJSON(w, http.StatusAccepted, createResponse{TestID: testID, Status: "started"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "test not found")
		return
	}
	s.writeJSON(w, http.StatusOK, snapshotStatus(snap))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "test not found")
		return
	}
	rep, err := report.Build(snap)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "report not ready")
		return
	}
	s.writeJSON(w, http.StatusOK, rep)
}

// handleLive streams status snapshots over a websocket until the test
// reaches a terminal state.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	testID := r.PathValue("id")
	if _, ok := s.store.Get(testID); !ok {
		s.writeError(w, http.StatusNotFound, "test not found")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(livePushInterval)
	defer ticker.Stop()

	for {
		snap, ok := s.store.Get(testID)
		if !ok {
			return
		}
		if err := conn.WriteJSON(snapshotStatus(snap)); err != nil {
			return
		}
		if snap.Status == session.StatusComplete || snap.Status == session.StatusError {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(snap.Status))
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return
		}
		select {
		case <-ticker.C:
		case <-r.Context().Done():
			return
		}
	}
}

func snapshotStatus(snap *session.Session) statusResponse {
	actions := snap.Actions
	if actions == nil {
		actions = []session.Action{}
	}
	return statusResponse{
		TestID:      snap.TestID,
		Status:      snap.Status,
		Progress:    snap.Progress,
		PagesFound:  snap.PagesFound,
		CurrentPage: snap.CurrentPage,
		Message:     snap.Message,
		Actions:     actions,
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("response encoding failed")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}
