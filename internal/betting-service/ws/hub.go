package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/sim-betting-service/pkg/contracts/events"
)

const writeWait = 5 * time.Second

// conn serializa escritas; o gorilla não aceita writers concorrentes
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, b)
}

// Hub gerencia as conexões WebSocket por usuário
// subs: mapeia userID para o conjunto de conexões abertas
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger
	mu       sync.RWMutex
	subs     map[string]map[*conn]struct{}
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(log *zap.Logger, allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		log:      log,
		subs:     make(map[string]map[*conn]struct{}),
	}
}

// Serve mantém a conexão do usuário aberta até o cliente desconectar
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &conn{ws: ws}
	h.add(userID, c)
	defer func() {
		h.remove(userID, c)
		_ = ws.Close()
	}()

	for {
		var msg ClientMsg
		if err := ws.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type == "ping" {
			_ = c.write([]byte(`{"type":"pong"}`))
		}
	}
}

func (h *Hub) add(userID string, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[userID]; !ok {
		h.subs[userID] = make(map[*conn]struct{})
	}
	h.subs[userID][c] = struct{}{}
}

func (h *Hub) remove(userID string, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, userID)
		}
	}
}

// Connections conta as conexões abertas de um usuário
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// Broadcast envia a atualização para todas as conexões do dono da aposta
func (h *Hub) Broadcast(upd events.BetUpdate) {
	h.mu.RLock()
	conns := make([]*conn, 0, len(h.subs[upd.UserID]))
	for c := range h.subs[upd.UserID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	if len(conns) == 0 {
		return
	}

	b, err := json.Marshal(upd)
	if err != nil {
		h.log.Warn("ws marshal failed", zap.Error(err))
		return
	}
	for _, c := range conns {
		if err := c.write(b); err != nil {
			h.log.Debug("ws write failed", zap.String("user_id", upd.UserID), zap.Error(err))
			_ = c.ws.Close() // o loop de leitura remove a conexão
		}
	}
}
