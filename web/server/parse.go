package server

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/df07/pbrt-scene/config"
	"github.com/df07/pbrt-scene/diag"
	"github.com/df07/pbrt-scene/preview"
	"github.com/df07/pbrt-scene/scene"
)

// sceneName labels diagnostics of posted scenes
const sceneName = "scene.pbrt"

// ParseSession holds the latest parse of a client
type ParseSession struct {
	ID          string         `json:"id"`
	Status      string         `json:"status"`
	Summary     *scene.Summary `json:"summary,omitempty"`
	Diagnostics []diag.Entry   `json:"diagnostics"`
	Error       string         `json:"error,omitempty"`
	Parses      int            `json:"parses"`
	Updated     time.Time      `json:"updated"`

	options *scene.RenderOptions
}

// ParseOptions are the per request converter settings
type ParseOptions struct {
	DirHierarchy bool     `json:"dir_hierarchy,omitempty"`
	SwapAxis     []string `json:"swap_axis,omitempty"`
	AutoFlat     bool     `json:"auto_flat,omitempty"`
	AutoEdge     float64  `json:"auto_edge,omitempty"`
	NoConvert    bool     `json:"no_convert,omitempty"`
	MaxRepeats   int      `json:"max_repeats,omitempty"`
}

// config overlays o on the default configuration
func (o ParseOptions) config() (config.Config, error) {
	cfg := config.Default()
	cfg.DirHierarchy = o.DirHierarchy
	cfg.SwapAxis = o.SwapAxis
	cfg.AutoFlat = o.AutoFlat
	cfg.NoConvert = o.NoConvert
	if o.AutoEdge != 0 {
		cfg.AutoEdge = o.AutoEdge
	}
	if o.MaxRepeats != 0 {
		cfg.MaxRepeats = o.MaxRepeats
	}
	return cfg, cfg.Validate()
}

// ParseRequest represents a parse request
type ParseRequest struct {
	SessionID string       `json:"session_id,omitempty"`
	Scene     string       `json:"scene"`
	Options   ParseOptions `json:"options"`
}

// ParseResponse represents the result of a parse
type ParseResponse struct {
	SessionID   string         `json:"session_id"`
	Status      string         `json:"status"`
	Summary     *scene.Summary `json:"summary,omitempty"`
	Diagnostics []diag.Entry   `json:"diagnostics"`
	Error       string         `json:"error,omitempty"`
}

// generateSessionID creates a new random session ID
func generateSessionID() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return fmt.Sprintf("%x", bytes)
}

// getOrCreateSession gets an existing session or creates a new one
func (s *Server) getOrCreateSession(sessionID string) *ParseSession {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if sessionID == "" {
		sessionID = generateSessionID()
	}

	session, exists := s.sessions[sessionID]
	if !exists {
		session = &ParseSession{
			ID:          sessionID,
			Status:      "new",
			Diagnostics: []diag.Entry{},
			Updated:     time.Now(),
		}
		s.sessions[sessionID] = session
	}

	return session
}

// getSession returns a copy of the session so it can be read without the lock
func (s *Server) getSession(sessionID string) (ParseSession, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return ParseSession{}, false
	}
	return *session, true
}

// runParse parses text for a session, streams the diagnostics to its SSE
// clients and stores the result
func (s *Server) runParse(session *ParseSession, text string, cfg config.Config) ParseResponse {
	sessionID := session.ID
	opts := append(cfg.SinkOptions(), diag.WithPlainText(), diag.WithOnReport(func(e diag.Entry) {
		s.broadcastToSession(sessionID, toSSE(DiagnosticEvent{Entry: e}))
	}))
	sink := diag.NewSink(io.Discard, opts...)

	env := cfg.Env(sink)
	if s.root == "" {
		env.DisableInclude = true
	} else {
		env.IncludeRoot = s.root
	}

	st, err := scene.ParseText(text, sceneName, s.root, env)
	ro := st.Options()
	if err == nil {
		cfg.Convert(ro, sink)
	}
	summary := scene.Summarize(ro)

	response := ParseResponse{
		SessionID:   sessionID,
		Status:      "ok",
		Summary:     &summary,
		Diagnostics: sink.Entries(),
	}
	if response.Diagnostics == nil {
		response.Diagnostics = []diag.Entry{}
	}
	if sink.HasErrors() {
		response.Status = "errors"
	}
	if err != nil {
		response.Error = err.Error()
	}

	s.mutex.Lock()
	session.Status = response.Status
	session.Summary = response.Summary
	session.Diagnostics = response.Diagnostics
	session.Error = response.Error
	session.Parses++
	session.Updated = time.Now()
	session.options = ro
	s.mutex.Unlock()

	s.broadcastToSession(sessionID, toSSE(SummaryEvent{Summary: summary}))
	if err != nil {
		s.broadcastToSession(sessionID, toSSE(NewErrorEvent(err)))
	}
	s.broadcastToSession(sessionID, toSSE(NewCompleteEvent(sink.Count(diag.LevelError))))

	log.Printf("Parsed scene for session %s - %d shapes, %d errors",
		sessionID, len(ro.Shapes), sink.Count(diag.LevelError))
	return response
}

// writeJSON writes a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handleParse parses a posted scene
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ParseResponse{Status: "error", Error: "Method not allowed"})
		return
	}

	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ParseResponse{Status: "error", Error: "Invalid JSON"})
		return
	}

	if req.Scene == "" {
		writeJSON(w, http.StatusBadRequest, ParseResponse{Status: "error", Error: "Scene cannot be empty"})
		return
	}

	cfg, err := req.Options.config()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ParseResponse{Status: "error", Error: err.Error()})
		return
	}

	session := s.getOrCreateSession(req.SessionID)
	writeJSON(w, http.StatusOK, s.runParse(session, req.Scene, cfg))
}

// handleScene returns the latest parse of a session
func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, ParseResponse{Status: "error", Error: "Method not allowed"})
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, ParseResponse{Status: "error", Error: "Session ID required"})
		return
	}

	session, exists := s.getSession(sessionID)
	if !exists {
		writeJSON(w, http.StatusNotFound, ParseResponse{SessionID: sessionID, Status: "error", Error: "Session not found"})
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handlePreview renders the latest parse of a session to PNG
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, ParseResponse{Status: "error", Error: "Session ID required"})
		return
	}

	session, exists := s.getSession(sessionID)
	if !exists || session.options == nil {
		writeJSON(w, http.StatusNotFound, ParseResponse{SessionID: sessionID, Status: "error", Error: "No parsed scene for session"})
		return
	}

	opts := preview.DefaultOptions(config.Default().PreviewWidth)
	if width := r.URL.Query().Get("width"); width != "" {
		n, err := strconv.Atoi(width)
		if err != nil || n <= 0 || n > 2048 {
			writeJSON(w, http.StatusBadRequest, ParseResponse{SessionID: sessionID, Status: "error", Error: "Invalid width"})
			return
		}
		opts.Width = n
	}

	var buf bytes.Buffer
	if err := preview.WritePNG(&buf, session.options, opts); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, preview.ErrNothingToDraw) {
			status = http.StatusUnprocessableEntity
		} else {
			log.Printf("Failed to render preview for session %s: %v", sessionID, err)
		}
		writeJSON(w, status, ParseResponse{SessionID: sessionID, Status: "error", Error: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
