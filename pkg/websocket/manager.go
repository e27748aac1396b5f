package websocket

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client 代表一个WebSocket连接的用户
// 每个连接维护自己的订阅表，连接断开时统一取消
// Send通道从不关闭：转发协程可能仍持有它，写协程通过 Done 退出
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	mu   sync.Mutex
	subs map[string]func() // 订阅key -> 取消函数

	done     chan struct{}
	stopOnce sync.Once
}

// NewClient 创建客户端连接
func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		subs:   make(map[string]func()),
		done:   make(chan struct{}),
	}
}

// Stop 通知写协程退出，可重复调用
func (c *Client) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
}

// Done 连接终止信号
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// AddSub 登记一个订阅；同key重复订阅时先取消旧的
func (c *Client) AddSub(key string, cancel func()) {
	c.mu.Lock()
	old, ok := c.subs[key]
	c.subs[key] = cancel
	c.mu.Unlock()
	if ok {
		old()
	}
}

// RemoveSub 取消并移除一个订阅
func (c *Client) RemoveSub(key string) {
	c.mu.Lock()
	cancel, ok := c.subs[key]
	delete(c.subs, key)
	c.mu.Unlock()
	if ok {
		cancel()
	}
}

// CancelAll 取消全部订阅（连接断开时调用）
func (c *Client) CancelAll() {
	c.mu.Lock()
	cancels := make([]func(), 0, len(c.subs))
	for _, cancel := range c.subs {
		cancels = append(cancels, cancel)
	}
	c.subs = make(map[string]func())
	c.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

// Manager 管理所有在线用户的WebSocket连接
type Manager struct {
	clients map[string]*Client
	lock    sync.RWMutex
}

var manager = &Manager{
	clients: make(map[string]*Client),
}

// GetManager 获取全局WebSocket管理器
func GetManager() *Manager {
	return manager
}

// AddClient 添加新连接；同一用户重复连接时踢掉旧连接
func (m *Manager) AddClient(userID string, client *Client) {
	m.lock.Lock()
	old, ok := m.clients[userID]
	m.clients[userID] = client
	m.lock.Unlock()
	if ok {
		old.Stop()
		old.CancelAll()
		_ = old.Conn.Close()
	}
}

// RemoveClient 移除连接
// 不关闭Send：转发协程可能还在写入，由订阅取消让其自然退出
func (m *Manager) RemoveClient(userID string, client *Client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	// 只移除自己，避免误删重连后的新连接
	if c, ok := m.clients[userID]; ok && c == client {
		delete(m.clients, userID)
	}
}

// IsOnline 判断用户是否在线
func (m *Manager) IsOnline(userID string) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, ok := m.clients[userID]
	return ok
}
