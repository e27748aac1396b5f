package repository

import (
	"context"

	"social-system/internal/model"
	"social-system/pkg/store"
)

// WallRepository 留言墙仓储
type WallRepository struct {
	store store.Store
}

// NewWallRepository 创建WallRepository实例
func NewWallRepository(s store.Store) *WallRepository {
	return &WallRepository{store: s}
}

// CreatePost 创建帖子
func (r *WallRepository) CreatePost(ctx context.Context, post *model.WallPost) (string, error) {
	return r.store.Create(ctx, store.ColWallPosts, post.ToDocument())
}

// PostsBy 查询指定作者的全部帖子（排序在服务层做，存储不假设支持复合排序）
func (r *WallRepository) PostsBy(ctx context.Context, authorID string) ([]*model.WallPost, error) {
	snapshot, err := r.store.Query(ctx, store.ColWallPosts, []store.Filter{
		store.Eq("author_id", authorID),
	})
	if err != nil {
		return nil, err
	}
	posts := make([]*model.WallPost, 0, len(snapshot))
	for _, doc := range snapshot {
		p, err := model.DecodeWallPost(doc)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// SubscribePostsBy 订阅指定作者的帖子
func (r *WallRepository) SubscribePostsBy(ctx context.Context, authorID string) (*store.Subscription, error) {
	return r.store.Subscribe(ctx, store.ColWallPosts, []store.Filter{
		store.Eq("author_id", authorID),
	})
}
