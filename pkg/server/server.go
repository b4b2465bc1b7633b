package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/elonfeng/repradar/internal/store"
	"github.com/elonfeng/repradar/pkg/report"
)

// Server provides the HTTP API.
type Server struct {
	tracker *report.Tracker
	store   *store.SQLiteStore
	port    int
}

// New creates a new HTTP server.
func New(tracker *report.Tracker, s *store.SQLiteStore, port int) *Server {
	if port == 0 {
		port = 8080
	}
	return &Server{
		tracker: tracker,
		store:   s,
		port:    port,
	}
}

// Handler returns the API routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/track", s.handleTrack)
	mux.HandleFunc("/api/v1/report", s.handleReport)
	mux.HandleFunc("/api/v1/keywords", s.handleKeywords)
	mux.HandleFunc("/api/v1/history", s.handleHistory)
	mux.HandleFunc("/api/v1/sentiment", s.handleSentiment)
	mux.HandleFunc("/api/v1/control", s.handleControl)
	return mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.port)
	fmt.Printf("repradar server listening on %s\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var body struct {
		Keyword string `json:"keyword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Keyword == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "keyword is required"})
		return
	}

	// A failed refresh leaves the stored report exactly as it was.
	rep, err := s.tracker.Refresh(r.Context(), body.Keyword)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "keyword is required"})
		return
	}

	rep, err := s.tracker.Report(r.Context(), keyword)
	if err != nil {
		writeReportError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	keywords, err := s.store.ListKeywords(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  keywords,
		"count": len(keywords),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "keyword is required"})
		return
	}

	var since time.Time
	if v := r.URL.Query().Get("since"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			since = t
		}
	}

	snaps, err := s.store.GetScoreHistory(r.Context(), keyword, since)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  snaps,
		"count": len(snaps),
	})
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var body struct {
		Keyword   string `json:"keyword"`
		ID        string `json:"id"`
		Sentiment string `json:"sentiment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Keyword == "" || body.ID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "keyword and id are required"})
		return
	}

	sentiment, err := report.ParseSentiment(body.Sentiment)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rep, err := s.tracker.UpdateSentiment(r.Context(), body.Keyword, body.ID, sentiment)
	if err != nil {
		writeReportError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var body struct {
		Keyword string `json:"keyword"`
		ID      string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Keyword == "" || body.ID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "keyword and id are required"})
		return
	}

	rep, err := s.tracker.ToggleControl(r.Context(), body.Keyword, body.ID)
	if err != nil {
		writeReportError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

func writeReportError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, report.ErrNotFound) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
