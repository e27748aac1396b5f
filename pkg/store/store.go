package store

import (
	"context"
	"errors"
	"reflect"
	"sync"
)

// 集合路径常量（全部业务集合在此统一命名）
const (
	ColAccounts         = "accounts"
	ColUsers            = "users"
	ColFriendRequests   = "friendRequests"
	ColFriendships      = "friendships"
	ColWallPosts        = "wallPosts"
	ColChats            = "chats"
	ColRatings          = "ratings"
	ColBrandSuggestions = "brandSuggestions"
	ColApprovedBrands   = "approvedBrands"
)

// 过滤操作符
const (
	OpEqual         = "=="             // 字段等于
	OpIn            = "in"             // 字段在给定集合内
	OpArrayContains = "array-contains" // 数组字段包含指定元素
)

// ErrNotFound 文档不存在
var ErrNotFound = errors.New("store: document not found")

// serverTimestamp ServerTimestamp 的内部哨兵类型
type serverTimestamp struct{}

// ServerTimestamp 服务端时间戳占位符
// 写入时由存储实现替换为存储侧时钟，避免客户端时钟偏差造成乱序
var ServerTimestamp = serverTimestamp{}

// Document 一条待写入的文档数据
type Document map[string]interface{}

// Doc 一条已存储的文档（ID + 数据）
type Doc struct {
	ID   string
	Data Document
}

// Snapshot 一次查询/订阅推送的完整结果集
type Snapshot []Doc

// Filter 字段过滤条件
// Op 取值见 OpEqual / OpIn / OpArrayContains
type Filter struct {
	Field string
	Op    string
	Value interface{}
}

// Eq 构造等值过滤条件
func Eq(field string, value interface{}) Filter {
	return Filter{Field: field, Op: OpEqual, Value: value}
}

// In 构造集合包含过滤条件
func In(field string, values ...interface{}) Filter {
	return Filter{Field: field, Op: OpIn, Value: values}
}

// ArrayContains 构造数组包含过滤条件
func ArrayContains(field string, value interface{}) Filter {
	return Filter{Field: field, Op: OpArrayContains, Value: value}
}

// Store 文档数据库的窄接口
// 提供点读、过滤查询、单文档原子写入与推送式实时订阅
// 不提供多文档事务；跨文档的不变量由调用方先查后写（尽力而为）
type Store interface {
	// Create 创建一条文档，返回存储分配的ID
	Create(ctx context.Context, collection string, doc Document) (string, error)

	// Set 以调用方指定的ID写入文档（已存在则整体覆盖）
	Set(ctx context.Context, collection, id string, doc Document) error

	// Update 局部更新文档字段
	Update(ctx context.Context, collection, id string, fields Document) error

	// Get 点读一条文档，不存在返回 ErrNotFound
	Get(ctx context.Context, collection, id string) (Doc, error)

	// Delete 删除一条文档（不存在不报错）
	Delete(ctx context.Context, collection, id string) error

	// Query 按过滤条件查询（多个条件为 AND 关系）
	Query(ctx context.Context, collection string, filters []Filter) (Snapshot, error)

	// Subscribe 建立实时订阅：先推送当前结果集，之后每次变更推送最新结果集
	// 订阅方必须在视图销毁时调用 Cancel 释放资源
	Subscribe(ctx context.Context, collection string, filters []Filter) (*Subscription, error)
}

// Subscription 一条实时订阅
// 消费方从 C() 读取快照直到通道关闭；Cancel 幂等
type Subscription struct {
	ch     chan Snapshot
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewSubscription 创建订阅对象（供 Store 实现使用）
func NewSubscription(ch chan Snapshot, cancel context.CancelFunc) *Subscription {
	return &Subscription{ch: ch, cancel: cancel, done: make(chan struct{})}
}

// C 返回快照通道
func (s *Subscription) C() <-chan Snapshot {
	return s.ch
}

// Cancel 取消订阅并释放资源，可重复调用
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		close(s.done)
		s.cancel()
	})
}

// Done 订阅取消信号（供 Store 实现的推送协程使用）
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Push 尝试向订阅方推送一次快照
// 消费方未及时读取时丢弃旧快照只保留最新一份，避免推送协程阻塞
func (s *Subscription) Push(snap Snapshot) {
	select {
	case <-s.done:
		return
	default:
	}
	for {
		select {
		case s.ch <- snap:
			return
		case <-s.done:
			return
		default:
			// 通道已满：丢弃积压的旧快照
			select {
			case <-s.ch:
			default:
			}
		}
	}
}

// Close 关闭快照通道（订阅终止后由实现方调用）
func (s *Subscription) Close() {
	close(s.ch)
}

// Matches 判断文档是否满足全部过滤条件（内存实现与客户端兜底过滤共用）
func Matches(doc Document, filters []Filter) bool {
	for _, f := range filters {
		if !matchOne(doc, f) {
			return false
		}
	}
	return true
}

func matchOne(doc Document, f Filter) bool {
	value, ok := doc[f.Field]
	if !ok {
		return false
	}
	switch f.Op {
	case OpEqual:
		return equalValues(value, f.Value)
	case OpIn:
		candidates, ok := f.Value.([]interface{})
		if !ok {
			return false
		}
		for _, c := range candidates {
			if equalValues(value, c) {
				return true
			}
		}
		return false
	case OpArrayContains:
		items, ok := value.([]interface{})
		if !ok {
			// 兼容字符串切片存储
			if ss, ok2 := value.([]string); ok2 {
				for _, s := range ss {
					if s == f.Value {
						return true
					}
				}
			}
			return false
		}
		for _, item := range items {
			if item == f.Value {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// equalValues 文档字段的安全等值比较
// 字段可能存着切片/映射等不可比较类型，直接 == 会panic
func equalValues(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == b
	}
	if reflect.TypeOf(a).Comparable() && reflect.TypeOf(b).Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
