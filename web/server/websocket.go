package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

// decodeMessage reads a websocket message. A JSON object with a "scene"
// field is a ParseRequest; anything else is scene text.
func decodeMessage(msg []byte) (ParseRequest, error) {
	if gjson.ValidBytes(msg) && gjson.GetBytes(msg, "scene").Exists() {
		var req ParseRequest
		err := json.Unmarshal(msg, &req)
		return req, err
	}
	return ParseRequest{Scene: string(msg)}, nil
}

// handleWebSocket parses every text message of a connection and answers
// with a ParseResponse. All messages share one session.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session := s.getOrCreateSession(r.URL.Query().Get("session_id"))

	for {
		typ, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Websocket for session %s closed: %v", session.ID, err)
			}
			return
		}
		if typ != websocket.TextMessage {
			continue
		}

		response := s.parseMessage(session, msg)
		if err := conn.WriteJSON(response); err != nil {
			log.Printf("Websocket write for session %s failed: %v", session.ID, err)
			return
		}
	}
}

func (s *Server) parseMessage(session *ParseSession, msg []byte) ParseResponse {
	req, err := decodeMessage(msg)
	if err != nil {
		return ParseResponse{SessionID: session.ID, Status: "error", Error: "Invalid JSON"}
	}
	if req.Scene == "" {
		return ParseResponse{SessionID: session.ID, Status: "error", Error: "Scene cannot be empty"}
	}
	cfg, err := req.Options.config()
	if err != nil {
		return ParseResponse{SessionID: session.ID, Status: "error", Error: err.Error()}
	}
	return s.runParse(session, req.Scene, cfg)
}
