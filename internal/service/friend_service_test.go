package service

import (
	"context"
	"errors"
	"testing"

	"social-system/internal/model"
	"social-system/pkg/store"
)

func TestSendRequestCreatesSingleDocument(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req, err := env.friends.SendRequest(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("发送请求失败: %v", err)
	}
	if req.Status != model.RequestPending {
		t.Fatalf("新请求状态应为 pending，实际 %s", req.Status)
	}
	if got := env.countDocs(t, store.ColFriendRequests); got != 1 {
		t.Fatalf("应恰好创建1条请求文档，实际 %d", got)
	}
}

func TestSendRequestToSelfFails(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.friends.SendRequest(context.Background(), "alice", "alice")
	if !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("期望 ErrInvalidOperation，实际 %v", err)
	}
	if got := env.countDocs(t, store.ColFriendRequests); got != 0 {
		t.Fatalf("自己加自己不应创建任何文档，实际 %d", got)
	}
}

func TestDuplicateRequestEitherDirection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.friends.SendRequest(ctx, "alice", "bob"); err != nil {
		t.Fatalf("首次请求失败: %v", err)
	}

	// 同方向重复
	if _, err := env.friends.SendRequest(ctx, "alice", "bob"); !errors.Is(err, ErrDuplicateRequest) {
		t.Fatalf("同方向重复应返回 ErrDuplicateRequest，实际 %v", err)
	}
	// 反方向重复
	if _, err := env.friends.SendRequest(ctx, "bob", "alice"); !errors.Is(err, ErrDuplicateRequest) {
		t.Fatalf("反方向重复应返回 ErrDuplicateRequest，实际 %v", err)
	}
	if got := env.countDocs(t, store.ColFriendRequests); got != 1 {
		t.Fatalf("重复请求不应创建第2条文档，实际 %d", got)
	}
}

func TestAcceptEstablishesFriendship(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req, err := env.friends.SendRequest(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("发送请求失败: %v", err)
	}

	friendship, err := env.friends.Accept(ctx, req.ID, "bob")
	if err != nil {
		t.Fatalf("接受请求失败: %v", err)
	}
	if friendship.ID != model.FriendshipID("bob", "alice") {
		t.Fatalf("好友关系ID应与顺序无关，实际 %s", friendship.ID)
	}
	if got := env.countDocs(t, store.ColFriendships); got != 1 {
		t.Fatalf("应恰好存在1条好友关系，实际 %d", got)
	}

	// 双方列表都能看到对方（包括请求发起方）
	aliceFriends, err := env.friends.ListFriends(ctx, "alice")
	if err != nil {
		t.Fatalf("查询好友列表失败: %v", err)
	}
	if len(aliceFriends) != 1 || aliceFriends[0].ID != "bob" {
		t.Fatalf("alice 的好友列表应包含 bob，实际 %+v", aliceFriends)
	}
	bobFriends, err := env.friends.ListFriends(ctx, "bob")
	if err != nil {
		t.Fatalf("查询好友列表失败: %v", err)
	}
	if len(bobFriends) != 1 || bobFriends[0].ID != "alice" {
		t.Fatalf("bob 的好友列表应包含 alice，实际 %+v", bobFriends)
	}
}

func TestFriendshipUniqueRegardlessOfOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.friends.Establish(ctx, "alice", "bob"); err != nil {
		t.Fatalf("建立好友关系失败: %v", err)
	}
	if _, err := env.friends.Establish(ctx, "bob", "alice"); err != nil {
		t.Fatalf("反序建立好友关系失败: %v", err)
	}
	if got := env.countDocs(t, store.ColFriendships); got != 1 {
		t.Fatalf("无序对重复建立应落在同一文档，实际 %d 条", got)
	}
}

func TestAcceptOnlyByReceiver(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req, _ := env.friends.SendRequest(ctx, "alice", "bob")

	// 发送方不能替接收方接受
	if _, err := env.friends.Accept(ctx, req.ID, "alice"); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("发送方接受应返回 ErrInvalidOperation，实际 %v", err)
	}
	// 无关用户同样不行
	if _, err := env.friends.Accept(ctx, req.ID, "carol"); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("无关用户接受应返回 ErrInvalidOperation，实际 %v", err)
	}
}

func TestTerminalRequestCannotTransition(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req, _ := env.friends.SendRequest(ctx, "alice", "bob")
	if _, err := env.friends.Accept(ctx, req.ID, "bob"); err != nil {
		t.Fatalf("首次接受失败: %v", err)
	}

	// 终态后再接受/拒绝都失败
	if _, err := env.friends.Accept(ctx, req.ID, "bob"); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("终态再接受应返回 ErrInvalidOperation，实际 %v", err)
	}
	if err := env.friends.Reject(ctx, req.ID, "bob"); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("终态再拒绝应返回 ErrInvalidOperation，实际 %v", err)
	}
}

func TestRejectedRequestDoesNotBlockNewRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req, _ := env.friends.SendRequest(ctx, "alice", "bob")
	if err := env.friends.Reject(ctx, req.ID, "bob"); err != nil {
		t.Fatalf("拒绝失败: %v", err)
	}

	// 被拒绝后可以重新发起
	if _, err := env.friends.SendRequest(ctx, "alice", "bob"); err != nil {
		t.Fatalf("拒绝后重新发起应成功，实际 %v", err)
	}
	if got := env.countDocs(t, store.ColFriendships); got != 0 {
		t.Fatalf("拒绝不应建立好友关系，实际 %d 条", got)
	}
}

func TestAlreadyFriendsBlocksRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.friends.Establish(ctx, "alice", "bob"); err != nil {
		t.Fatalf("建立好友关系失败: %v", err)
	}
	if _, err := env.friends.SendRequest(ctx, "bob", "alice"); !errors.Is(err, ErrAlreadyFriends) {
		t.Fatalf("已是好友应返回 ErrAlreadyFriends，实际 %v", err)
	}
}

func TestIncomingRequestsResolveSenderName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProfile(t, "alice", "Alice")

	req, _ := env.friends.SendRequest(ctx, "alice", "bob")
	// carol 没有资料，名字退化为占位
	env.friends.SendRequest(ctx, "carol", "bob")

	incoming, err := env.friends.IncomingRequests(ctx, "bob")
	if err != nil {
		t.Fatalf("查询待处理请求失败: %v", err)
	}
	if len(incoming) != 2 {
		t.Fatalf("应有2条待处理请求，实际 %d", len(incoming))
	}

	names := map[string]string{}
	for _, entry := range incoming {
		names[entry.From] = entry.FromName
	}
	if names["alice"] != "Alice" {
		t.Fatalf("alice 的名字应解析为 Alice，实际 %q", names["alice"])
	}
	if names["carol"] != placeholderName {
		t.Fatalf("无资料的发送方应退化为占位名，实际 %q", names["carol"])
	}
	_ = req
}

func TestWatchIncomingDeliversUpdates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ch, cancel, err := env.friends.WatchIncoming(ctx, "bob")
	if err != nil {
		t.Fatalf("订阅失败: %v", err)
	}
	defer cancel()

	// 初始快照为空
	recvUntil(t, ch, func(entries []RequestEntry) bool { return len(entries) == 0 })

	if _, err := env.friends.SendRequest(ctx, "alice", "bob"); err != nil {
		t.Fatalf("发送请求失败: %v", err)
	}
	got := recvUntil(t, ch, func(entries []RequestEntry) bool { return len(entries) == 1 })
	if got[0].From != "alice" {
		t.Fatalf("推送的请求发送方应为 alice，实际 %+v", got[0])
	}
}
