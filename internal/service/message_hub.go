package service

import (
	"context"
	"edunest_backend/internal/repository"
	"edunest_backend/pkg/logger"
	"edunest_backend/pkg/monitoring"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	shardCount     = 32
	onlineTTL      = 2 * time.Minute // 在线状态过期时间

	hubChannel = "edunest:messages"
)

// 推送给客户端的事件类型
const (
	EventNewMessage = "NEW_MESSAGE"
	EventTyping     = "TYPING"
	EventRead       = "MESSAGES_READ"
)

var messagePool = sync.Pool{
	New: func() interface{} {
		return &WSMessage{}
	},
}

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type Client struct {
	Hub     *MessageHub
	Conn    *websocket.Conn
	Send    chan []byte
	UserID  uint
	Limiter *rate.Limiter
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.ctx.Done():
		}
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Error("WebSocket unexpected close", zap.Error(err), zap.Uint("userId", c.UserID))
			}
			break
		}

		if !c.Limiter.Allow() {
			continue
		}

		wsMsg := messagePool.Get().(*WSMessage)
		wsMsg.Type, wsMsg.Data = "", nil
		if err := json.Unmarshal(message, wsMsg); err != nil {
			messagePool.Put(wsMsg)
			continue
		}

		monitoring.MessageCounter.WithLabelValues(wsMsg.Type, "in").Inc()

		// 客户端只允许发瞬时事件，消息本身走 REST 接口落库
		if wsMsg.Type == EventTyping {
			c.Hub.forwardTyping(c.UserID, wsMsg.Data)
		}
		messagePool.Put(wsMsg)
	}
}

// forwardTyping 把 {"userId": 对方} 转发成 {"userId": 自己}
func (h *MessageHub) forwardTyping(senderID uint, data interface{}) {
	payload, ok := data.(map[string]interface{})
	if !ok {
		return
	}
	target, ok := payload["userId"].(float64)
	if !ok || target <= 0 || uint(target) == senderID {
		return
	}
	h.PushToUsers([]uint{uint(target)}, WSMessage{
		Type: EventTyping,
		Data: map[string]interface{}{"userId": senderID},
	})
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 每条事件单独一帧，客户端逐帧解析 JSON
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// 同一用户可以有多个连接（多个标签页）
type shard struct {
	clients map[uint]map[*Client]struct{}
	mu      sync.RWMutex
}

// MessageHub 按用户推送实时事件；配置了 Redis 时通过 pub/sub 跨实例分发
type MessageHub struct {
	shards     [shardCount]*shard
	register   chan *Client
	unregister chan *Client
	Redis      *redis.Client
	Presence   *repository.SessionRepository
	upgrader   websocket.Upgrader
	ctx        context.Context
	cancel     context.CancelFunc
	stopOnce   sync.Once
}

// NewMessageHub rdb 为 nil 时只在本地投递；allowOrigin 为 nil 时不校验 Origin
func NewMessageHub(rdb *redis.Client, presence *repository.SessionRepository, allowOrigin func(origin string) bool) *MessageHub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &MessageHub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		Redis:      rdb,
		Presence:   presence,
		ctx:        ctx,
		cancel:     cancel,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowOrigin == nil || allowOrigin(origin)
		},
	}
	for i := 0; i < shardCount; i++ {
		h.shards[i] = &shard{
			clients: make(map[uint]map[*Client]struct{}),
		}
	}
	return h
}

func (h *MessageHub) getShard(userID uint) *shard {
	return h.shards[userID%shardCount]
}

type PubSubMessage struct {
	TargetUsers []uint          `json:"targetUsers"`
	Payload     json.RawMessage `json:"payload"`
}

func (h *MessageHub) subscribe() {
	pubsub := h.Redis.Subscribe(h.ctx, hubChannel)
	go func() {
		<-h.ctx.Done()
		pubsub.Close()
	}()
	go func() {
		for msg := range pubsub.Channel() {
			var psMsg PubSubMessage
			if err := json.Unmarshal([]byte(msg.Payload), &psMsg); err != nil {
				logger.Log.Error("PubSub unmarshal error", zap.Error(err))
				continue
			}
			h.pushToLocalRawUsers(psMsg.TargetUsers, psMsg.Payload)
		}
	}()
}

// Run 管理连接注册/注销和在线状态，Stop 后退出
func (h *MessageHub) Run() {
	if h.Redis != nil {
		h.subscribe()
	}

	// 批量写在线状态
	ticker := time.NewTicker(500 * time.Millisecond)
	heartbeatTicker := time.NewTicker(time.Minute)
	defer func() {
		ticker.Stop()
		heartbeatTicker.Stop()
	}()

	var online, offline []uint

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			s := h.getShard(client.UserID)
			s.mu.Lock()
			conns, ok := s.clients[client.UserID]
			if !ok {
				conns = make(map[*Client]struct{})
				s.clients[client.UserID] = conns
			}
			conns[client] = struct{}{}
			s.mu.Unlock()
			online = append(online, client.UserID)
			monitoring.WSClients.Inc()

		case client := <-h.unregister:
			s := h.getShard(client.UserID)
			s.mu.Lock()
			if conns, ok := s.clients[client.UserID]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					close(client.Send)
					monitoring.WSClients.Dec()
				}
				if len(conns) == 0 {
					delete(s.clients, client.UserID)
					offline = append(offline, client.UserID)
				}
			}
			s.mu.Unlock()

		case <-heartbeatTicker.C:
			h.refreshOnlineStatus()

		case <-ticker.C:
			if len(online) == 0 && len(offline) == 0 {
				continue
			}
			if h.Presence != nil {
				if err := h.Presence.UpdatePresence(h.ctx, online, offline, onlineTTL); err != nil {
					logger.Log.Error("Redis presence update error", zap.Error(err))
				}
			}
			online, offline = online[:0], offline[:0]
		}
	}
}

func (h *MessageHub) localUserIDs() []uint {
	var ids []uint
	for i := 0; i < shardCount; i++ {
		s := h.shards[i]
		s.mu.RLock()
		for userID := range s.clients {
			ids = append(ids, userID)
		}
		s.mu.RUnlock()
	}
	return ids
}

// refreshOnlineStatus 续期本实例所有在线用户
func (h *MessageHub) refreshOnlineStatus() {
	if h.Presence == nil {
		return
	}
	ids := h.localUserIDs()
	if err := h.Presence.RefreshPresence(h.ctx, ids, onlineTTL); err != nil {
		logger.Log.Error("Redis presence refresh error", zap.Error(err))
		return
	}
	if len(ids) > 0 {
		logger.Log.Debug("Refreshed online status", zap.Int("count", len(ids)))
	}
}

// Stop 关闭所有连接并清理在线状态
func (h *MessageHub) Stop() {
	h.stopOnce.Do(func() {
		logger.Log.Info("MessageHub stopping: clearing online status and closing connections...")

		var userIDs []uint
		closed := 0
		for i := 0; i < shardCount; i++ {
			s := h.shards[i]
			s.mu.Lock()
			for userID, conns := range s.clients {
				userIDs = append(userIDs, userID)
				for client := range conns {
					close(client.Send)
					closed++
				}
				delete(s.clients, userID)
			}
			s.mu.Unlock()
		}

		if h.Presence != nil && len(userIDs) > 0 {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := h.Presence.UpdatePresence(ctx, nil, userIDs, 0); err != nil {
				logger.Log.Error("Redis presence cleanup error", zap.Error(err))
			}
			cancel()
		}

		h.cancel()
		monitoring.WSClients.Set(0)
		logger.Log.Info("MessageHub stopped", zap.Int("closedConnections", closed))
	})
}

// PushToUsers 推送事件；有 Redis 时经由 pub/sub 让所有实例投递
func (h *MessageHub) PushToUsers(userIDs []uint, msg WSMessage) {
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		logger.Log.Error("Failed to encode ws message", zap.Error(err))
		return
	}
	monitoring.MessageCounter.WithLabelValues(msg.Type, "out").Inc()

	if h.Redis == nil {
		h.pushToLocalRawUsers(userIDs, msgBytes)
		return
	}

	payload, _ := json.Marshal(PubSubMessage{TargetUsers: userIDs, Payload: msgBytes})
	if err := h.Redis.Publish(h.ctx, hubChannel, payload).Err(); err != nil {
		logger.Log.Warn("Redis publish failed, delivering locally", zap.Error(err))
		h.pushToLocalRawUsers(userIDs, msgBytes)
	}
}

// pushToLocalRawUsers 发送队列满的连接直接丢弃该事件
func (h *MessageHub) pushToLocalRawUsers(userIDs []uint, payload []byte) {
	for _, id := range userIDs {
		s := h.getShard(id)
		s.mu.RLock()
		for client := range s.clients[id] {
			select {
			case client.Send <- payload:
			default:
			}
		}
		s.mu.RUnlock()
	}
}

func (h *MessageHub) IsUserOnline(userID uint) bool {
	s := h.getShard(userID)
	s.mu.RLock()
	_, ok := s.clients[userID]
	s.mu.RUnlock()
	if ok {
		return true
	}

	// 多实例部署时查 Redis
	if h.Presence == nil {
		return false
	}
	online, err := h.Presence.IsOnline(h.ctx, userID)
	return err == nil && online
}

func ServeWs(hub *MessageHub, w http.ResponseWriter, r *http.Request, userID uint) {
	conn, err := hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.Error(err), zap.Uint("userId", userID))
		return
	}
	client := &Client{
		Hub:     hub,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		UserID:  userID,
		Limiter: rate.NewLimiter(rate.Limit(10), 20),
	}

	select {
	case hub.register <- client:
	case <-hub.ctx.Done():
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
