package notify

import (
	"context"
	"net/http"
	"sync"
	"time"

	"BetHub/logger"
	"BetHub/service/natsx"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	midsec "BetHub/middleware/security"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// connHub 在线连接表：uid → 连接集合（同一用户允许多端）
type connHub struct {
	mu    sync.RWMutex
	conns map[string]map[*websocket.Conn]struct{}
}

var hub = &connHub{conns: make(map[string]map[*websocket.Conn]struct{})}

func (h *connHub) add(uid string, c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[uid] == nil {
		h.conns[uid] = make(map[*websocket.Conn]struct{})
	}
	h.conns[uid][c] = struct{}{}
}

func (h *connHub) remove(uid string, c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns[uid], c)
	if len(h.conns[uid]) == 0 {
		delete(h.conns, uid)
	}
}

func (h *connHub) push(uid string, data []byte) {
	h.mu.RLock()
	targets := make([]*websocket.Conn, 0, len(h.conns[uid]))
	for c := range h.conns[uid] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	for _, c := range targets {
		_ = c.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.Warnf("push notification failed, user=%s: %v", uid, err)
		}
	}
}

// StartFanoutBridge 订阅扇出主题并转推给在线连接。
// NATS 未启动时订阅失败只降级，客户端仍可轮询 /api/notifications。
func StartFanoutBridge() {
	err := natsx.Subscribe(natsx.BizNotify, func(ctx context.Context, msg natsx.NatsxMessage) error {
		if uid := msg.Header["recipient"]; uid != "" {
			hub.push(uid, msg.Data)
		}
		return nil
	})
	if err != nil {
		logger.Warnf("notification bridge disabled: %v", err)
	}
}

// HandlerStream 通知长连接：挂上 hub，等对端断开
func HandlerStream(c *gin.Context) {
	uid, ok := midsec.CurrentUserID(c)
	if !ok {
		c.Status(http.StatusUnauthorized)
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Errorf("upgrade failed: %v", err)
		return
	}
	hub.add(uid, conn)
	defer func() {
		hub.remove(uid, conn)
		_ = conn.Close()
	}()

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	done := make(chan struct{})
	go func() {
		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()
		for {
			select {
			case <-done:
				return
			case <-ping.C:
				_ = conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second))
			}
		}
	}()
	defer close(done)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
