package relay

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	apperrors "github.com/chronica-rpg/chronica/internal/errors"
	"github.com/chronica-rpg/chronica/internal/uuid"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// session is one connected participant
type session struct {
	id   string
	conn *websocket.Conn
	gm   bool

	// websocket writes are not concurrency safe
	writeMu sync.Mutex
}

func (s *session) send(msg *wireMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(msg); err != nil {
		log.Printf("ws: write error id=%s: %v", s.id, err)
	}
}

// Hub accepts participant connections, feeds their intents to the authority
// dispatcher and broadcasts applied changes back out.
type Hub struct {
	dispatcher *Dispatcher
	gmToken    string
	uuidGen    uuid.Generator

	mu       sync.RWMutex
	sessions map[string]*session
}

// HubConfig holds configuration for the hub
type HubConfig struct {
	Dispatcher    *Dispatcher
	GMToken       string
	UUIDGenerator uuid.Generator
}

// NewHub creates a relay hub
func NewHub(cfg *HubConfig) *Hub {
	if cfg.Dispatcher == nil {
		panic("dispatcher is required")
	}
	if cfg.GMToken == "" {
		panic("GM token is required")
	}
	if cfg.UUIDGenerator == nil {
		cfg.UUIDGenerator = uuid.NewGoogleUUIDGenerator()
	}
	return &Hub{
		dispatcher: cfg.Dispatcher,
		gmToken:    cfg.GMToken,
		uuidGen:    cfg.UUIDGenerator,
		sessions:   make(map[string]*session),
	}
}

// Routes registers the relay endpoints
func (h *Hub) Routes(r *mux.Router) {
	r.HandleFunc("/ws", h.serveWS)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s := &session{
		id:   h.uuidGen.New(),
		conn: conn,
		gm:   r.URL.Query().Get("token") == h.gmToken,
	}

	h.mu.Lock()
	h.sessions[s.id] = s
	h.mu.Unlock()
	log.Printf("ws: connect id=%s gm=%v from=%s", s.id, s.gm, r.RemoteAddr)

	if frame, err := wireFrame(msgYou, map[string]any{"id": s.id, "gm": s.gm}); err == nil {
		s.send(frame)
	}

	go h.readLoop(s)
}

func (h *Hub) readLoop(s *session) {
	defer func() {
		_ = s.conn.Close()
		h.mu.Lock()
		delete(h.sessions, s.id)
		h.mu.Unlock()
		log.Printf("ws: closed id=%s", s.id)
	}()

	for {
		var in wireMessage
		if err := s.conn.ReadJSON(&in); err != nil {
			return
		}
		if in.Type != msgIntent {
			continue
		}

		var intent Intent
		if err := json.Unmarshal(in.Data, &intent); err != nil {
			h.sendError(s, "malformed intent")
			continue
		}
		intent.SenderID = s.id

		if err := h.dispatcher.Apply(context.Background(), &intent); err != nil {
			if apperrors.IsRejection(err) {
				h.sendError(s, err.Error())
				continue
			}
			log.Printf("ws: intent %s from %s failed: %v", intent.Action, s.id, err)
			h.sendError(s, "intent could not be applied")
			continue
		}

		h.Broadcast(msgUpdate, intent)
	}
}

func (h *Hub) sendError(s *session, message string) {
	if frame, err := wireFrame(msgError, map[string]string{"message": message}); err == nil {
		s.send(frame)
	}
}

// Broadcast sends a frame to every connected participant
func (h *Hub) Broadcast(msgType string, data any) {
	frame, err := wireFrame(msgType, data)
	if err != nil {
		log.Printf("ws: broadcast marshal failed: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.sessions {
		s.send(frame)
	}
}

// BroadcastLog sends a narration line to every participant
func (h *Hub) BroadcastLog(entry string) {
	h.Broadcast(msgLog, entry)
}
