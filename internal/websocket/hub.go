package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"fitai-backend/internal/middleware"
)

const (
	maxFrameBytes = 1 << 20
	writeWait     = 10 * time.Second
)

// Processor turns one raw chat request into a status and body.
type Processor interface {
	Process(ctx context.Context, body []byte, requestID string) (int, interface{})
}

// Limiter charges one chat request to a client key.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// Reply is written for every frame received.
type Reply struct {
	Status    int         `json:"status"`
	Body      interface{} `json:"body"`
	RequestID string      `json:"request_id"`
}

type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID]*websocket.Conn
	processor   Processor
	limiter     Limiter
	upgrader    websocket.Upgrader
	log         *slog.Logger
	closed      bool

	// ctx is cancelled by Close and parents every in-flight request.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a hub. Every frame is charged to limiter, which may be nil.
// An empty origins list accepts any origin.
func NewHub(processor Processor, limiter Limiter, origins []string, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		connections: make(map[uuid.UUID]*websocket.Conn),
		processor:   processor,
		limiter:     limiter,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(origins),
	}
	return h
}

func checkOrigin(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			allowed[o] = true
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return len(allowed) == 0 || origin == "" || allowed[origin]
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := middleware.ClientIP(r)
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	id := uuid.New()
	if !h.registerConnection(id, conn) {
		conn.Close()
		return
	}

	go func() {
		defer h.unregisterConnection(id, conn)
		h.serve(conn, clientIP)
	}()
}

// serve answers frames in order, one reply per frame. A request in flight is
// cancelled when the client goes away or the hub closes.
func (h *Hub) serve(conn *websocket.Conn, clientIP string) {
	ctx, cancel := context.WithCancel(h.ctx)
	defer cancel()

	conn.SetReadLimit(maxFrameBytes)
	frames := make(chan []byte)
	go func() {
		defer close(frames)
		defer cancel()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					h.log.Warn("websocket read failed", "error", err)
				}
				return
			}
			select {
			case frames <- data:
			case <-ctx.Done():
				return
			}
		}
	}()

	for data := range frames {
		requestID := uuid.NewString()
		status, body := h.handle(ctx, clientIP, data, requestID)
		if ctx.Err() != nil {
			return
		}

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(Reply{Status: status, Body: body, RequestID: requestID}); err != nil {
			h.log.Warn("websocket write failed", "error", err)
			return
		}
	}
}

func (h *Hub) handle(ctx context.Context, clientIP string, data []byte, requestID string) (int, interface{}) {
	if h.limiter != nil && !h.limiter.Allow(ctx, clientIP) {
		return http.StatusTooManyRequests, middleware.RateLimitedResponse(requestID)
	}
	return h.processor.Process(ctx, data, requestID)
}

func (h *Hub) registerConnection(id uuid.UUID, conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.connections[id] = conn
	h.log.Info("websocket connected", "conn", id, "total", len(h.connections))
	return true
}

func (h *Hub) unregisterConnection(id uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()
	if _, ok := h.connections[id]; ok {
		delete(h.connections, id)
		h.log.Info("websocket disconnected", "conn", id)
	}
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Close sends a going-away frame to every connection and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	h.cancel()
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for id, conn := range h.connections {
		conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		conn.Close()
		delete(h.connections, id)
	}
}
