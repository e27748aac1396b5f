package service

import (
	"context"
	"sort"
	"strings"

	"social-system/internal/model"
	"social-system/internal/repository"
)

// WallService 留言墙
type WallService struct {
	wall *repository.WallRepository
}

// NewWallService 创建WallService实例
func NewWallService(wall *repository.WallRepository) *WallService {
	return &WallService{wall: wall}
}

// AddPost 发布帖子
// 去空白后为空返回 ErrEmptyContent；可见性只接受 public/private
// 作者展示名创建时冗余写入，之后不随改名同步（读性能优先的取舍）
func (s *WallService) AddPost(ctx context.Context, authorID, authorName, content, visibility string) (*model.WallPost, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if authorID == "" {
		return nil, ErrInvalidOperation
	}
	switch visibility {
	case model.VisibilityPublic, model.VisibilityPrivate:
	default:
		return nil, ErrInvalidOperation
	}

	post := &model.WallPost{
		AuthorID:   authorID,
		AuthorName: authorName,
		Content:    content,
		Visibility: visibility,
	}
	id, err := s.wall.CreatePost(ctx, post)
	if err != nil {
		return nil, err
	}
	post.ID = id
	return post, nil
}

// ListPosts 查询指定作者的帖子，按创建时间降序
// 非本人浏览时过滤掉 private 帖子，本人总能看到自己全部帖子
func (s *WallService) ListPosts(ctx context.Context, ownerID, viewerID string) ([]*model.WallPost, error) {
	posts, err := s.wall.PostsBy(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return scopePosts(posts, ownerID, viewerID), nil
}

// WatchPosts 订阅指定作者的帖子实时流（同样做浏览者可见性过滤）
// 返回的取消函数必须在视图销毁时调用
func (s *WallService) WatchPosts(ctx context.Context, ownerID, viewerID string) (<-chan []*model.WallPost, func(), error) {
	sub, err := s.wall.SubscribePostsBy(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan []*model.WallPost, 1)
	go func() {
		defer close(out)
		for snapshot := range sub.C() {
			posts := make([]*model.WallPost, 0, len(snapshot))
			for _, doc := range snapshot {
				if p, err := model.DecodeWallPost(doc); err == nil {
					posts = append(posts, p)
				}
			}
			deliverLatest(out, scopePosts(posts, ownerID, viewerID), sub.Done())
		}
	}()
	return out, sub.Cancel, nil
}

// scopePosts 浏览者可见性过滤 + 降序排序（排序在客户端做，
// 不假设存储支持带辅助索引的复合排序）
func scopePosts(posts []*model.WallPost, ownerID, viewerID string) []*model.WallPost {
	visible := make([]*model.WallPost, 0, len(posts))
	for _, p := range posts {
		if p.Visibility == model.VisibilityPrivate && viewerID != ownerID {
			continue
		}
		visible = append(visible, p)
	}
	sort.Slice(visible, func(i, j int) bool {
		return visible[i].CreatedAt.After(visible[j].CreatedAt)
	})
	return visible
}
