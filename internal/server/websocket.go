// Package server exposes the match engine to renderers over WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/elementarclash/clash-server-go/internal/config"
	"github.com/elementarclash/clash-server-go/internal/game"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendBuffer     = 256
	maxMessageSize = 64 * 1024
)

// Client is one renderer connection. It follows at most one match.
type Client struct {
	conn *websocket.Conn
	send chan []byte

	mu      sync.Mutex
	matchID string
}

func (c *Client) match() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.matchID
}

func (c *Client) follow(matchID string) {
	c.mu.Lock()
	c.matchID = matchID
	c.mu.Unlock()
}

type outbound struct {
	matchID string
	payload []byte
}

// Hub tracks connected clients and fans engine notifications out to the
// clients following each match.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *zap.Logger
}

func newHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug("client registered", zap.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Debug("client unregistered", zap.Int("clients", len(h.clients)))
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				if client.match() != msg.matchID {
					continue
				}
				select {
				case client.send <- msg.payload:
				default:
					h.logger.Warn("dropping slow client", zap.String("match_id", msg.matchID))
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

func (h *Hub) publish(matchID string, msg ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode push", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- outbound{matchID: matchID, payload: payload}:
	case <-h.done:
	}
}

func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// WebSocketServer serves the renderer protocol on top of a game engine.
type WebSocketServer struct {
	cfg      config.WebSocketConfig
	engine   *game.Engine
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWebSocketServer wires the hub to the engine's notifications.
func NewWebSocketServer(cfg config.WebSocketConfig, engine *game.Engine, logger *zap.Logger) *WebSocketServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Path == "" {
		cfg.Path = "/ws"
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	s := &WebSocketServer{
		cfg:    cfg,
		engine: engine,
		hub:    newHub(logger.Named("hub")),
		logger: logger,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     s.checkOrigin,
	}
	engine.SetNotificationHandler(s.onNotification)
	return s
}

// checkOrigin accepts every origin unless an allow list is configured.
func (s *WebSocketServer) checkOrigin(r *http.Request) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range s.cfg.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

func (s *WebSocketServer) onNotification(n game.Notification) {
	switch n.Type {
	case game.NotificationStateChanged, game.NotificationMatchCreated:
		s.hub.publish(n.MatchID, ServerMessage{Type: PushState, MatchID: n.MatchID, Data: n.Data["view"]})
	case game.NotificationMatchEvent:
		s.hub.publish(n.MatchID, ServerMessage{Type: PushEvent, MatchID: n.MatchID, Data: n.Data["event"]})
	case game.NotificationMatchOver:
		s.hub.publish(n.MatchID, ServerMessage{Type: PushMatchOver, MatchID: n.MatchID, Data: n.Data})
	}
}

// Handler returns the HTTP handler serving the WebSocket endpoint.
func (s *WebSocketServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, s.serveWS)
	return mux
}

// Start runs the hub until ctx is cancelled. Handler needs a started hub.
func (s *WebSocketServer) Start(ctx context.Context) {
	go s.hub.run(ctx)
}

// Run starts the hub and serves until ctx is cancelled.
func (s *WebSocketServer) Run(ctx context.Context) error {
	s.Start(ctx)

	srv := &http.Server{Addr: s.cfg.Address, Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting WebSocket server",
			zap.String("address", s.cfg.Address),
			zap.String("path", s.cfg.Path))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *WebSocketServer) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := &Client{conn: conn, send: make(chan []byte, sendBuffer)}
	if !s.hub.add(client) {
		conn.Close()
		return
	}

	go s.writePump(client)
	go s.readPump(client)
}

func (s *WebSocketServer) readPump(c *Client) {
	defer func() {
		s.hub.remove(c)
		c.conn.Close()
	}()

	pongWait := 2 * s.cfg.PingInterval
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket closed", zap.Error(err))
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			s.reply(c, ServerMessage{Type: PushError, Data: errorData{Error: "malformed message"}})
			continue
		}
		s.handleMessage(c, msg)
	}
}

func (s *WebSocketServer) writePump(c *Client) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// reply sends msg to c only. A full buffer drops the message; the client
// can ask for the state again.
func (s *WebSocketServer) reply(c *Client, msg ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("failed to encode reply", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	defer func() {
		// send is closed once the hub drops the client.
		_ = recover()
	}()
	select {
	case c.send <- payload:
	default:
		s.logger.Warn("reply dropped", zap.String("type", msg.Type))
	}
}
