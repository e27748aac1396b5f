package memstore

import (
	"context"
	"sync"
	"time"

	"social-system/pkg/store"

	"github.com/google/uuid"
)

// Store 内存版文档存储
// 实现 store.Store 全部契约，用于单元测试与本地运行
// 订阅推送与真实存储一致：先推当前结果集，之后集合内任何变更都重算并推送
type Store struct {
	mu     sync.RWMutex
	cols   map[string]map[string]store.Document
	subs   map[*subscriber]struct{}
	lastTs time.Time
}

type subscriber struct {
	collection string
	filters    []store.Filter
	sub        *store.Subscription
}

// New 创建内存存储
func New() *Store {
	return &Store{
		cols: make(map[string]map[string]store.Document),
		subs: make(map[*subscriber]struct{}),
	}
}

// Create 创建文档并分配ID
func (s *Store) Create(ctx context.Context, collection string, doc store.Document) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

// Set 按指定ID写入文档（整体覆盖）
func (s *Store) Set(ctx context.Context, collection, id string, doc store.Document) error {
	s.mu.Lock()
	col, ok := s.cols[collection]
	if !ok {
		col = make(map[string]store.Document)
		s.cols[collection] = col
	}
	col[id] = s.materialize(doc)
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

// Update 局部更新文档字段
func (s *Store) Update(ctx context.Context, collection, id string, fields store.Document) error {
	s.mu.Lock()
	col, ok := s.cols[collection]
	if !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	doc, ok := col[id]
	if !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	for k, v := range s.materialize(fields) {
		doc[k] = v
	}
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

// Get 点读文档
func (s *Store) Get(ctx context.Context, collection, id string) (store.Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if col, ok := s.cols[collection]; ok {
		if doc, ok := col[id]; ok {
			return store.Doc{ID: id, Data: copyDoc(doc)}, nil
		}
	}
	return store.Doc{}, store.ErrNotFound
}

// Delete 删除文档
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	if col, ok := s.cols[collection]; ok {
		delete(col, id)
	}
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

// Query 按过滤条件查询
func (s *Store) Query(ctx context.Context, collection string, filters []store.Filter) (store.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryLocked(collection, filters), nil
}

// Subscribe 建立实时订阅
func (s *Store) Subscribe(ctx context.Context, collection string, filters []store.Filter) (*store.Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	ch := make(chan store.Snapshot, 4)
	sub := store.NewSubscription(ch, cancel)

	entry := &subscriber{collection: collection, filters: filters, sub: sub}

	s.mu.Lock()
	s.subs[entry] = struct{}{}
	// 持锁推送初始快照，保证排在任何后续变更的推送之前（Push不阻塞）
	sub.Push(s.queryLocked(collection, filters))
	s.mu.Unlock()

	// 取消后从订阅表摘除并关闭通道
	go func() {
		select {
		case <-subCtx.Done():
		case <-sub.Done():
		}
		sub.Cancel()
		s.mu.Lock()
		delete(s.subs, entry)
		s.mu.Unlock()
		sub.Close()
	}()

	return sub, nil
}

// queryLocked 持锁状态下执行查询
func (s *Store) queryLocked(collection string, filters []store.Filter) store.Snapshot {
	snapshot := store.Snapshot{}
	col, ok := s.cols[collection]
	if !ok {
		return snapshot
	}
	for id, doc := range col {
		if store.Matches(doc, filters) {
			snapshot = append(snapshot, store.Doc{ID: id, Data: copyDoc(doc)})
		}
	}
	return snapshot
}

// notify 集合变更后向相关订阅推送最新结果集
func (s *Store) notify(collection string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for entry := range s.subs {
		if entry.collection != collection {
			continue
		}
		entry.sub.Push(s.queryLocked(collection, entry.filters))
	}
}

// materialize 替换服务端时间戳占位符并深拷贝写入数据
// 时钟保证单调递增，使同集合内按时间排序稳定
func (s *Store) materialize(doc store.Document) store.Document {
	out := make(store.Document, len(doc))
	for k, v := range doc {
		if v == store.ServerTimestamp {
			out[k] = s.nextTimestamp()
			continue
		}
		out[k] = copyValue(v)
	}
	return out
}

func (s *Store) nextTimestamp() time.Time {
	now := time.Now()
	if !now.After(s.lastTs) {
		now = s.lastTs.Add(time.Microsecond)
	}
	s.lastTs = now
	return now
}

func copyDoc(doc store.Document) store.Document {
	out := make(store.Document, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case store.Document:
		return copyDoc(val)
	case map[string]interface{}:
		return copyDoc(store.Document(val))
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}
