package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

const redSphere = `LookAt 0 0 -5  0 0 0  0 1 0
Camera "perspective" "float fov" [45]
WorldBegin
Material "matte" "rgb Kd" [1 0 0]
Shape "sphere" "float radius" [1]
LightSource "point" "point from" [0 4 0]
WorldEnd
`

func postParse(t *testing.T, handler http.Handler, body interface{}) (*httptest.ResponseRecorder, gjson.Result) {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/parse", bytes.NewReader(data))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w, gjson.Parse(w.Body.String())
}

func TestHealth(t *testing.T) {
	s := NewServer(8080, "")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if got := gjson.Get(w.Body.String(), "status").String(); got != "ok" {
		t.Errorf("Expected status ok, got %q", got)
	}
}

func TestParse(t *testing.T) {
	s := NewServer(8080, "")
	w, res := postParse(t, s.Handler(), ParseRequest{Scene: redSphere})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if res.Get("session_id").String() == "" {
		t.Errorf("Expected a session ID")
	}
	if got := res.Get("status").String(); got != "ok" {
		t.Errorf("Expected status ok, got %q", got)
	}
	if got := res.Get("summary.shapes.#").Int(); got != 1 {
		t.Errorf("Expected 1 shape, got %d", got)
	}
	if got := res.Get("summary.shapes.0.material").String(); got != "matte" {
		t.Errorf("Expected matte material, got %q", got)
	}
	if got := res.Get("summary.lights.0.kind").String(); got != "point" {
		t.Errorf("Expected point light, got %q", got)
	}
	if !res.Get("diagnostics").IsArray() {
		t.Errorf("Expected diagnostics array, got %s", res.Get("diagnostics").Raw)
	}
}

func TestParseReportsDiagnostics(t *testing.T) {
	s := NewServer(8080, "")
	scene := "WorldBegin\nShape \"spheer\"\nMaterial \"plastik\"\nShape \"sphere\"\nWorldEnd\n"
	_, res := postParse(t, s.Handler(), ParseRequest{Scene: scene})

	if got := res.Get("status").String(); got != "errors" {
		t.Errorf("Expected status errors, got %q", got)
	}
	messages := res.Get("diagnostics.#.message").Array()
	if len(messages) != 2 {
		t.Fatalf("Expected 2 diagnostics, got %d", len(messages))
	}
	if !strings.Contains(messages[0].String(), `did you mean "sphere"`) {
		t.Errorf("Expected a shape suggestion, got %q", messages[0].String())
	}
	if !strings.Contains(messages[1].String(), `did you mean "plastic"`) {
		t.Errorf("Expected a material suggestion, got %q", messages[1].String())
	}
	if got := res.Get("summary.shapes.0.material").String(); got != "matte" {
		t.Errorf("Expected matte fallback, got %q", got)
	}
	if got := res.Get("diagnostics.0.level").String(); got != "ERROR" {
		t.Errorf("Expected level ERROR, got %q", got)
	}
}

func TestParseRequestErrors(t *testing.T) {
	s := NewServer(8080, "")
	tests := []struct {
		name     string
		method   string
		body     string
		status   int
		expected string
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed, "Method not allowed"},
		{"bad json", http.MethodPost, "{", http.StatusBadRequest, "Invalid JSON"},
		{"empty scene", http.MethodPost, `{"scene": ""}`, http.StatusBadRequest, "Scene cannot be empty"},
		{"bad options", http.MethodPost, `{"scene": "WorldBegin", "options": {"swap_axis": ["x"]}}`, http.StatusBadRequest, "swap_axis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/parse", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
			if got := gjson.Get(w.Body.String(), "error").String(); !strings.Contains(got, tt.expected) {
				t.Errorf("Expected error containing %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestParseOptions(t *testing.T) {
	s := NewServer(8080, "")
	_, res := postParse(t, s.Handler(), ParseRequest{
		Scene:   redSphere,
		Options: ParseOptions{SwapAxis: []string{"y", "z"}},
	})

	if got := res.Get("summary.lights.0.position.2").Float(); got != 4 {
		t.Errorf("Expected swapped light z=4, got %g", got)
	}
	if got := res.Get(`diagnostics.#(message=="swapping axis").level`).String(); got != "INFO" {
		t.Errorf("Expected swapping axis info, got %q", got)
	}
}

func TestIncludeDisabledWithoutRoot(t *testing.T) {
	s := NewServer(8080, "")
	_, res := postParse(t, s.Handler(), ParseRequest{Scene: "Include \"other.pbrt\"\nWorldBegin\nWorldEnd\n"})

	if got := res.Get("status").String(); got != "errors" {
		t.Errorf("Expected status errors, got %q", got)
	}
	if got := res.Get("diagnostics.0.message").String(); !strings.Contains(got, "Include is disabled") {
		t.Errorf("Expected Include to be refused, got %q", got)
	}
}

func TestIncludeUnderRoot(t *testing.T) {
	root := t.TempDir()
	geometry := "Shape \"sphere\"\n"
	if err := os.WriteFile(filepath.Join(root, "geometry.pbrt"), []byte(geometry), 0o644); err != nil {
		t.Fatalf("Failed to write include: %v", err)
	}

	s := NewServer(8080, root)
	_, res := postParse(t, s.Handler(), ParseRequest{Scene: "WorldBegin\nInclude \"geometry.pbrt\"\nWorldEnd\n"})

	if got := res.Get("status").String(); got != "ok" {
		t.Errorf("Expected status ok, got %q: %s", got, res.Get("diagnostics").Raw)
	}
	if got := res.Get("summary.shapes.#").Int(); got != 1 {
		t.Errorf("Expected included sphere, got %d shapes", got)
	}

	_, res = postParse(t, s.Handler(), ParseRequest{Scene: "WorldBegin\nInclude \"../escape.pbrt\"\nWorldEnd\n"})
	if got := res.Get("diagnostics.0.message").String(); !strings.Contains(got, "outside of scene root") {
		t.Errorf("Expected escape to be refused, got %q", got)
	}
}

func TestSceneEndpoint(t *testing.T) {
	s := NewServer(8080, "")
	handler := s.Handler()
	_, res := postParse(t, handler, ParseRequest{Scene: redSphere})
	sessionID := res.Get("session_id").String()

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"missing id", "", http.StatusBadRequest},
		{"unknown id", "?session_id=nope", http.StatusNotFound},
		{"known id", "?session_id=" + sessionID, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/scene"+tt.query, nil))
			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
		})
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/scene?session_id="+sessionID, nil))
	body := w.Body.String()
	if got := gjson.Get(body, "parses").Int(); got != 1 {
		t.Errorf("Expected 1 parse, got %d", got)
	}
	if got := gjson.Get(body, "summary.camera.position.2").Float(); got != -5 {
		t.Errorf("Expected camera z=-5, got %g", got)
	}
}

func TestSessionReuse(t *testing.T) {
	s := NewServer(8080, "")
	handler := s.Handler()
	_, first := postParse(t, handler, ParseRequest{Scene: redSphere})
	sessionID := first.Get("session_id").String()

	_, second := postParse(t, handler, ParseRequest{SessionID: sessionID, Scene: "WorldBegin\nWorldEnd\n"})
	if got := second.Get("session_id").String(); got != sessionID {
		t.Errorf("Expected session %s, got %s", sessionID, got)
	}

	session, ok := s.getSession(sessionID)
	if !ok {
		t.Fatal("Expected session to exist")
	}
	if session.Parses != 2 {
		t.Errorf("Expected 2 parses, got %d", session.Parses)
	}
	if len(session.Summary.Shapes) != 0 {
		t.Errorf("Expected latest parse to replace the summary, got %d shapes", len(session.Summary.Shapes))
	}
}

func TestPreview(t *testing.T) {
	s := NewServer(8080, "")
	handler := s.Handler()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/preview?session_id=nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}

	_, res := postParse(t, handler, ParseRequest{Scene: "WorldBegin\nWorldEnd\n"})
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/preview?session_id="+res.Get("session_id").String(), nil))
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422 for empty scene, got %d", w.Code)
	}

	if testing.Short() {
		return
	}
	_, res = postParse(t, handler, ParseRequest{Scene: redSphere})
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/preview?width=16&session_id="+res.Get("session_id").String(), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("Expected image/png, got %q", got)
	}
	if _, err := png.Decode(w.Body); err != nil {
		t.Errorf("Expected a PNG body, got %v", err)
	}
}

// readEvent returns the JSON payload of the next SSE data line
func readEvent(t *testing.T, r *bufio.Reader) gjson.Result {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("Failed to read SSE stream: %v", err)
		}
		if data, ok := strings.CutPrefix(strings.TrimSpace(line), "data: "); ok {
			return gjson.Parse(data)
		}
	}
}

func TestStream(t *testing.T) {
	s := NewServer(8080, "")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	_, res := postParse(t, s.Handler(), ParseRequest{Scene: "WorldBegin\nWorldEnd\n"})
	sessionID := res.Get("session_id").String()

	resp, err := http.Get(ts.URL + "/api/stream?session_id=" + sessionID)
	if err != nil {
		t.Fatalf("Failed to open stream: %v", err)
	}
	defer resp.Body.Close()
	reader := bufio.NewReader(resp.Body)

	if got := readEvent(t, reader).Get("type").String(); got != "connection_state" {
		t.Fatalf("Expected connection_state first, got %q", got)
	}

	body, _ := json.Marshal(ParseRequest{SessionID: sessionID, Scene: "WorldBegin\nShape \"cone\"\nWorldEnd\n"})
	post, err := http.Post(ts.URL+"/api/parse", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to post scene: %v", err)
	}
	io.Copy(io.Discard, post.Body)
	post.Body.Close()

	var types []string
	done := time.After(5 * time.Second)
	for len(types) == 0 || types[len(types)-1] != "complete" {
		select {
		case <-done:
			t.Fatalf("Timed out waiting for complete, got %v", types)
		default:
		}
		event := readEvent(t, reader)
		types = append(types, event.Get("type").String())
		if event.Get("type").String() == "diagnostic" {
			if got := event.Get("data.entry.message").String(); !strings.Contains(got, "cone not yet implemented") {
				t.Errorf("Expected cone warning, got %q", got)
			}
		}
	}

	expected := []string{"diagnostic", "summary", "complete"}
	if strings.Join(types, ",") != strings.Join(expected, ",") {
		t.Errorf("Expected events %v, got %v", expected, types)
	}
}

func TestStreamUnknownSession(t *testing.T) {
	s := NewServer(8080, "")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stream?session_id=nope", nil))

	data := strings.TrimPrefix(strings.TrimSpace(w.Body.String()), "data: ")
	if got := gjson.Get(data, "type").String(); got != "error" {
		t.Errorf("Expected error event, got %q", got)
	}
	if got := gjson.Get(data, "data").String(); got != "Session not found" {
		t.Errorf("Expected 'Session not found', got %q", got)
	}
}

func TestWebSocket(t *testing.T) {
	s := NewServer(8080, "")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/parse"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	defer conn.Close()

	tests := []struct {
		name    string
		message string
		status  string
		shapes  int64
	}{
		{"raw text", redSphere, "ok", 1},
		{"json request", `{"scene": "WorldBegin\nShape \"sphere\"\nShape \"sphere\"\nWorldEnd\n"}`, "ok", 2},
		{"bad options", `{"scene": "WorldBegin", "options": {"max_repeats": -1}}`, "error", 0},
		{"errors", "WorldBegin\nShape \"spheer\"\nWorldEnd\n", "errors", 0},
	}

	var sessionID string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.message)); err != nil {
				t.Fatalf("Failed to write message: %v", err)
			}
			_, msg, err := conn.ReadMessage()
			if err != nil {
				t.Fatalf("Failed to read message: %v", err)
			}
			res := gjson.ParseBytes(msg)
			if got := res.Get("status").String(); got != tt.status {
				t.Errorf("Expected status %q, got %q: %s", tt.status, got, msg)
			}
			if got := res.Get("summary.shapes.#").Int(); got != tt.shapes {
				t.Errorf("Expected %d shapes, got %d", tt.shapes, got)
			}
			if sessionID == "" {
				sessionID = res.Get("session_id").String()
			} else if got := res.Get("session_id").String(); got != sessionID {
				t.Errorf("Expected one session per connection, got %s and %s", sessionID, got)
			}
		})
	}
}

func TestDecodeMessage(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected string
		wantErr  bool
	}{
		{"plain text", "WorldBegin", "WorldBegin", false},
		{"json object", `{"scene": "WorldEnd"}`, "WorldEnd", false},
		{"json without scene", `{"other": 1}`, `{"other": 1}`, false},
		{"bad scene type", `{"scene": 5}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := decodeMessage([]byte(tt.message))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if !tt.wantErr && req.Scene != tt.expected {
				t.Errorf("Expected scene %q, got %q", tt.expected, req.Scene)
			}
		})
	}
}
