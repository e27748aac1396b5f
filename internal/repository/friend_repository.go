package repository

import (
	"context"
	"errors"

	"social-system/internal/model"
	"social-system/pkg/store"
)

// FriendRepository 好友请求与好友关系仓储
type FriendRepository struct {
	store store.Store
}

// NewFriendRepository 创建FriendRepository实例
func NewFriendRepository(s store.Store) *FriendRepository {
	return &FriendRepository{store: s}
}

// CreateRequest 创建好友请求
func (r *FriendRepository) CreateRequest(ctx context.Context, req *model.FriendRequest) (string, error) {
	return r.store.Create(ctx, store.ColFriendRequests, req.ToDocument())
}

// GetRequest 按ID读取好友请求
func (r *FriendRepository) GetRequest(ctx context.Context, id string) (*model.FriendRequest, error) {
	doc, err := r.store.Get(ctx, store.ColFriendRequests, id)
	if err != nil {
		return nil, err
	}
	return model.DecodeFriendRequest(doc)
}

// UpdateRequestStatus 更新请求状态
func (r *FriendRepository) UpdateRequestStatus(ctx context.Context, id, status string) error {
	return r.store.Update(ctx, store.ColFriendRequests, id, store.Document{"status": status})
}

// PendingBetween 查询指定有序 (from,to) 的 pending 请求
func (r *FriendRepository) PendingBetween(ctx context.Context, from, to string) ([]*model.FriendRequest, error) {
	snapshot, err := r.store.Query(ctx, store.ColFriendRequests, []store.Filter{
		store.Eq("from", from),
		store.Eq("to", to),
		store.Eq("status", model.RequestPending),
	})
	if err != nil {
		return nil, err
	}
	return decodeRequests(snapshot)
}

// PendingTo 查询发给指定用户的全部 pending 请求
func (r *FriendRepository) PendingTo(ctx context.Context, to string) ([]*model.FriendRequest, error) {
	snapshot, err := r.store.Query(ctx, store.ColFriendRequests, pendingToFilters(to))
	if err != nil {
		return nil, err
	}
	return decodeRequests(snapshot)
}

// SubscribePendingTo 订阅发给指定用户的 pending 请求
func (r *FriendRepository) SubscribePendingTo(ctx context.Context, to string) (*store.Subscription, error) {
	return r.store.Subscribe(ctx, store.ColFriendRequests, pendingToFilters(to))
}

func pendingToFilters(to string) []store.Filter {
	return []store.Filter{
		store.Eq("to", to),
		store.Eq("status", model.RequestPending),
	}
}

func decodeRequests(snapshot store.Snapshot) ([]*model.FriendRequest, error) {
	requests := make([]*model.FriendRequest, 0, len(snapshot))
	for _, doc := range snapshot {
		req, err := model.DecodeFriendRequest(doc)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// SetFriendship 以规范ID写入好友关系（重复写入覆盖同一文档，天然幂等）
func (r *FriendRepository) SetFriendship(ctx context.Context, f *model.Friendship) error {
	return r.store.Set(ctx, store.ColFriendships, f.ID, f.ToDocument())
}

// GetFriendship 按规范ID读取好友关系
func (r *FriendRepository) GetFriendship(ctx context.Context, id string) (*model.Friendship, error) {
	doc, err := r.store.Get(ctx, store.ColFriendships, id)
	if err != nil {
		return nil, err
	}
	return model.DecodeFriendship(doc)
}

// HasFriendship 两人之间是否已存在好友关系
func (r *FriendRepository) HasFriendship(ctx context.Context, idA, idB string) (bool, error) {
	_, err := r.GetFriendship(ctx, model.FriendshipID(idA, idB))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// FriendshipsOf 查询包含指定成员的全部好友关系
func (r *FriendRepository) FriendshipsOf(ctx context.Context, id string) ([]*model.Friendship, error) {
	snapshot, err := r.store.Query(ctx, store.ColFriendships, []store.Filter{
		store.ArrayContains("members", id),
	})
	if err != nil {
		return nil, err
	}
	friendships := make([]*model.Friendship, 0, len(snapshot))
	for _, doc := range snapshot {
		f, err := model.DecodeFriendship(doc)
		if err != nil {
			return nil, err
		}
		friendships = append(friendships, f)
	}
	return friendships, nil
}

// SubscribeFriendshipsOf 订阅包含指定成员的好友关系
func (r *FriendRepository) SubscribeFriendshipsOf(ctx context.Context, id string) (*store.Subscription, error) {
	return r.store.Subscribe(ctx, store.ColFriendships, []store.Filter{
		store.ArrayContains("members", id),
	})
}
