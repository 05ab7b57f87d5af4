package server

import (
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Server serves scene parsing over HTTP
type Server struct {
	port        int
	// root is the directory posted scenes may Include from. Empty disables
	// Include.
	root        string
	sessions    map[string]*ParseSession
	sseClients  map[string]map[chan SSEEvent]bool // sessionID -> clients
	mutex       sync.RWMutex
	clientMutex sync.RWMutex
	upgrader    websocket.Upgrader
}

// NewServer creates a new web server
func NewServer(port int, root string) *Server {
	return &Server{
		port:       port,
		root:       root,
		sessions:   make(map[string]*ParseSession),
		sseClients: make(map[string]map[chan SSEEvent]bool),
	}
}

// Handler returns the routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/parse", s.handleParse)
	mux.HandleFunc("/api/scene", s.handleScene)
	mux.HandleFunc("/api/stream", s.handleStream)
	mux.HandleFunc("/api/preview", s.handlePreview)
	mux.HandleFunc("/ws/parse", s.handleWebSocket)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting server on %s", addr)
	if s.root == "" {
		log.Printf("Include is disabled for posted scenes")
	} else {
		log.Printf("Include resolves under %s", s.root)
	}
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok", "service": "pbrt-scene"}`))
}
