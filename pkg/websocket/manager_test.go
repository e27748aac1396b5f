package websocket

import (
	"testing"
	"time"
)

func TestDisconnectWhileForwarding(t *testing.T) {
	client := NewClient("race-user", nil)
	GetManager().AddClient(client.UserID, client)

	ch := make(chan []string)
	canceled := make(chan struct{})
	forward(client, StreamWall, "other", func() { close(canceled) }, ch)

	// 订阅侧持续推送快照，同时走断开清理路径
	pushed := make(chan struct{})
	go func() {
		defer close(pushed)
		for i := 0; i < 1000; i++ {
			ch <- []string{"snapshot"}
		}
		close(ch)
	}()

	client.Stop()
	client.CancelAll()
	GetManager().RemoveClient(client.UserID, client)

	// 移除后转发协程继续写入不得panic，缓冲满则丢弃
	select {
	case <-pushed:
	case <-time.After(2 * time.Second):
		t.Fatalf("转发协程被阻塞")
	}
	select {
	case <-canceled:
	case <-time.After(2 * time.Second):
		t.Fatalf("断开时应取消订阅")
	}
	if GetManager().IsOnline(client.UserID) {
		t.Fatalf("移除后用户不应在线")
	}
}

func TestClientStopIdempotent(t *testing.T) {
	client := NewClient("stop-user", nil)

	client.Stop()
	client.Stop() // 重复调用不应panic

	select {
	case <-client.Done():
	default:
		t.Fatalf("Stop后Done应已关闭")
	}
}

func TestRemoveClientKeepsNewerConnection(t *testing.T) {
	first := NewClient("reconnect-user", nil)
	GetManager().AddClient(first.UserID, first)

	second := NewClient("reconnect-user", nil)
	m := GetManager()
	m.lock.Lock()
	m.clients[second.UserID] = second
	m.lock.Unlock()

	// 旧连接的延迟清理不得移除重连后的新连接
	GetManager().RemoveClient(first.UserID, first)
	if !GetManager().IsOnline(second.UserID) {
		t.Fatalf("旧连接清理不应下线新连接")
	}
	GetManager().RemoveClient(second.UserID, second)
}
