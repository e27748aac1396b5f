package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"social-system/pkg/store"
)

func TestCreateAndGet(t *testing.T) {
	st := New()
	ctx := context.Background()

	id, err := st.Create(ctx, "things", store.Document{"name": "a"})
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if id == "" {
		t.Fatalf("创建应分配ID")
	}

	doc, err := st.Get(ctx, "things", id)
	if err != nil {
		t.Fatalf("点读失败: %v", err)
	}
	if doc.Data["name"] != "a" {
		t.Fatalf("读回数据不符: %+v", doc.Data)
	}

	if _, err := st.Get(ctx, "things", "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("不存在的文档应返回 ErrNotFound，实际 %v", err)
	}
}

func TestUpdatePartial(t *testing.T) {
	st := New()
	ctx := context.Background()

	id, _ := st.Create(ctx, "things", store.Document{"a": 1, "b": 2})
	if err := st.Update(ctx, "things", id, store.Document{"b": 3}); err != nil {
		t.Fatalf("更新失败: %v", err)
	}

	doc, _ := st.Get(ctx, "things", id)
	if doc.Data["a"] != 1 || doc.Data["b"] != 3 {
		t.Fatalf("局部更新结果不符: %+v", doc.Data)
	}

	if err := st.Update(ctx, "things", "missing", store.Document{"a": 1}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("更新不存在的文档应返回 ErrNotFound，实际 %v", err)
	}
}

func TestQueryFilters(t *testing.T) {
	st := New()
	ctx := context.Background()

	st.Create(ctx, "reqs", store.Document{"from": "a", "to": "b", "status": "pending"})
	st.Create(ctx, "reqs", store.Document{"from": "a", "to": "c", "status": "accepted"})
	st.Create(ctx, "reqs", store.Document{"from": "d", "to": "b", "status": "pending"})

	// 等值过滤 AND 组合
	got, err := st.Query(ctx, "reqs", []store.Filter{
		store.Eq("to", "b"),
		store.Eq("status", "pending"),
	})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("应命中2条，实际 %d", len(got))
	}

	// in 过滤
	got, _ = st.Query(ctx, "reqs", []store.Filter{
		store.In("status", "accepted", "rejected"),
	})
	if len(got) != 1 {
		t.Fatalf("in 过滤应命中1条，实际 %d", len(got))
	}
}

func TestQueryArrayContains(t *testing.T) {
	st := New()
	ctx := context.Background()

	st.Create(ctx, "friendships", store.Document{"members": []interface{}{"a", "b"}})
	st.Create(ctx, "friendships", store.Document{"members": []interface{}{"b", "c"}})

	got, err := st.Query(ctx, "friendships", []store.Filter{
		store.ArrayContains("members", "a"),
	})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("array-contains 应命中1条，实际 %d", len(got))
	}
}

func TestQueryOnSliceFieldDoesNotPanic(t *testing.T) {
	st := New()
	ctx := context.Background()

	st.Create(ctx, "things", store.Document{"tags": []interface{}{"x", "y"}})

	// 等值过滤命中不可比较类型的字段时不得panic
	got, err := st.Query(ctx, "things", []store.Filter{store.Eq("tags", "x")})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("标量与切片不应判等，实际命中 %d", len(got))
	}

	got, _ = st.Query(ctx, "things", []store.Filter{
		store.In("tags", "x", "y"),
	})
	if len(got) != 0 {
		t.Fatalf("in 过滤遇到切片字段不应命中，实际 %d", len(got))
	}
}

func TestServerTimestampMonotonic(t *testing.T) {
	st := New()
	ctx := context.Background()

	var previous time.Time
	for i := 0; i < 10; i++ {
		id, _ := st.Create(ctx, "posts", store.Document{"created_at": store.ServerTimestamp})
		doc, _ := st.Get(ctx, "posts", id)
		ts, ok := doc.Data["created_at"].(time.Time)
		if !ok {
			t.Fatalf("占位符应替换为时间戳，实际 %T", doc.Data["created_at"])
		}
		if !ts.After(previous) {
			t.Fatalf("时间戳应严格递增: %v <= %v", ts, previous)
		}
		previous = ts
	}
}

func TestGetReturnsCopy(t *testing.T) {
	st := New()
	ctx := context.Background()

	id, _ := st.Create(ctx, "things", store.Document{"tags": []interface{}{"x"}})
	doc, _ := st.Get(ctx, "things", id)

	// 篡改读出的数据不应影响存储内容
	doc.Data["tags"].([]interface{})[0] = "hacked"
	again, _ := st.Get(ctx, "things", id)
	if again.Data["tags"].([]interface{})[0] != "x" {
		t.Fatalf("点读应返回深拷贝")
	}
}

func TestSubscribePushesInitialAndUpdates(t *testing.T) {
	st := New()
	ctx := context.Background()

	st.Create(ctx, "posts", store.Document{"author_id": "a", "n": 1})

	sub, err := st.Subscribe(ctx, "posts", []store.Filter{store.Eq("author_id", "a")})
	if err != nil {
		t.Fatalf("订阅失败: %v", err)
	}
	defer sub.Cancel()

	// 先收到当前结果集
	snapshot := recvSnapshot(t, sub)
	if len(snapshot) != 1 {
		t.Fatalf("初始快照应有1条，实际 %d", len(snapshot))
	}

	// 集合变更后推送新结果集（不匹配过滤条件的写入也触发重算）
	st.Create(ctx, "posts", store.Document{"author_id": "a", "n": 2})
	deadline := time.After(2 * time.Second)
	for {
		snapshot = recvSnapshot(t, sub)
		if len(snapshot) == 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("等待更新推送超时")
		default:
		}
	}

	// 其他作者的写入不进入本订阅的结果集
	st.Create(ctx, "posts", store.Document{"author_id": "b", "n": 3})
	snapshot = recvSnapshot(t, sub)
	if len(snapshot) != 2 {
		t.Fatalf("过滤后的快照应仍为2条，实际 %d", len(snapshot))
	}
}

func TestSubscribeDuringConcurrentWrites(t *testing.T) {
	st := New()
	ctx := context.Background()

	// 订阅建立与写入并发进行，初始快照在订阅登记的同一临界区内推送
	writes := make(chan struct{})
	go func() {
		defer close(writes)
		for i := 0; i < 50; i++ {
			st.Create(ctx, "posts", store.Document{"n": i})
		}
	}()

	sub, err := st.Subscribe(ctx, "posts", nil)
	if err != nil {
		t.Fatalf("订阅失败: %v", err)
	}
	defer sub.Cancel()

	<-writes
	st.Create(ctx, "posts", store.Document{"n": 50})

	// 收敛后最终快照必须等于全量，不得停留在过期的初始快照
	deadline := time.After(2 * time.Second)
	lastLen := -1
	for {
		select {
		case snapshot, open := <-sub.C():
			if !open {
				t.Fatalf("订阅通道被提前关闭")
			}
			lastLen = len(snapshot)
			if lastLen == 51 {
				return
			}
		case <-deadline:
			t.Fatalf("快照未收敛到全量，最后 %d 条", lastLen)
		}
	}
}

func TestCancelClosesChannel(t *testing.T) {
	st := New()
	ctx := context.Background()

	sub, err := st.Subscribe(ctx, "posts", nil)
	if err != nil {
		t.Fatalf("订阅失败: %v", err)
	}

	sub.Cancel()
	// 重复取消不应panic
	sub.Cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, open := <-sub.C():
			if !open {
				return
			}
		case <-deadline:
			t.Fatalf("取消后通道应关闭")
		}
	}
}

func recvSnapshot(t *testing.T, sub *store.Subscription) store.Snapshot {
	t.Helper()
	select {
	case snapshot, open := <-sub.C():
		if !open {
			t.Fatalf("订阅通道被提前关闭")
		}
		return snapshot
	case <-time.After(2 * time.Second):
		t.Fatalf("等待快照超时")
		return nil
	}
}
