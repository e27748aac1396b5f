package repository

import (
	"context"
	"errors"

	"social-system/internal/model"
	"social-system/pkg/store"
)

// ProfileRepository 用户资料仓储
type ProfileRepository struct {
	store store.Store
}

// NewProfileRepository 创建ProfileRepository实例
func NewProfileRepository(s store.Store) *ProfileRepository {
	return &ProfileRepository{store: s}
}

// Get 按身份ID读取资料，不存在返回 store.ErrNotFound
func (r *ProfileRepository) Get(ctx context.Context, id string) (*model.Profile, error) {
	doc, err := r.store.Get(ctx, store.ColUsers, id)
	if err != nil {
		return nil, err
	}
	return model.DecodeProfile(doc)
}

// Exists 资料是否已存在
func (r *ProfileRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.store.Get(ctx, store.ColUsers, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Create 以身份ID为文档ID写入新资料
func (r *ProfileRepository) Create(ctx context.Context, id string, profile *model.Profile) error {
	return r.store.Set(ctx, store.ColUsers, id, profile.ToDocument())
}

// Update 局部更新资料字段（仅限资料所有者调用路径）
func (r *ProfileRepository) Update(ctx context.Context, id string, fields store.Document) error {
	return r.store.Update(ctx, store.ColUsers, id, fields)
}

// All 列出全部资料（好友搜索面）
func (r *ProfileRepository) All(ctx context.Context) ([]*model.Profile, error) {
	snapshot, err := r.store.Query(ctx, store.ColUsers, nil)
	if err != nil {
		return nil, err
	}
	profiles := make([]*model.Profile, 0, len(snapshot))
	for _, doc := range snapshot {
		p, err := model.DecodeProfile(doc)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// SubscribeAll 订阅整个资料集合（资料实时视图在上层按ID过滤）
func (r *ProfileRepository) SubscribeAll(ctx context.Context) (*store.Subscription, error) {
	return r.store.Subscribe(ctx, store.ColUsers, nil)
}
