package service

import (
	"context"
	"errors"
	"testing"

	"social-system/internal/model"
	"social-system/pkg/store"
)

func TestAddPostRejectsEmptyContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, content := range []string{"", "   ", "\n\t"} {
		if _, err := env.wall.AddPost(ctx, "alice", "Alice", content, model.VisibilityPublic); !errors.Is(err, ErrEmptyContent) {
			t.Fatalf("内容 %q 应返回 ErrEmptyContent，实际 %v", content, err)
		}
	}
	if got := env.countDocs(t, store.ColWallPosts); got != 0 {
		t.Fatalf("空内容不应创建文档，实际 %d", got)
	}
}

func TestAddPostRejectsUnknownVisibility(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.wall.AddPost(context.Background(), "alice", "Alice", "hello", "friends-only")
	if !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("非法可见性应返回 ErrInvalidOperation，实际 %v", err)
	}
}

func TestListPostsVisibilityScoping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.wall.AddPost(ctx, "alice", "Alice", "公开帖", model.VisibilityPublic); err != nil {
		t.Fatalf("发布公开帖失败: %v", err)
	}
	if _, err := env.wall.AddPost(ctx, "alice", "Alice", "私密帖", model.VisibilityPrivate); err != nil {
		t.Fatalf("发布私密帖失败: %v", err)
	}

	// 本人能看到全部
	own, err := env.wall.ListPosts(ctx, "alice", "alice")
	if err != nil {
		t.Fatalf("本人查询失败: %v", err)
	}
	if len(own) != 2 {
		t.Fatalf("本人应看到2条，实际 %d", len(own))
	}

	// 他人只能看到公开帖
	others, err := env.wall.ListPosts(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("他人查询失败: %v", err)
	}
	if len(others) != 1 || others[0].Content != "公开帖" {
		t.Fatalf("他人应只看到公开帖，实际 %+v", others)
	}
}

func TestListPostsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.wall.AddPost(ctx, "alice", "Alice", "第一条", model.VisibilityPublic)
	env.wall.AddPost(ctx, "alice", "Alice", "第二条", model.VisibilityPublic)
	env.wall.AddPost(ctx, "alice", "Alice", "第三条", model.VisibilityPublic)

	posts, err := env.wall.ListPosts(ctx, "alice", "alice")
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("应有3条帖子，实际 %d", len(posts))
	}
	if posts[0].Content != "第三条" || posts[2].Content != "第一条" {
		t.Fatalf("帖子应按创建时间降序，实际 %s / %s / %s",
			posts[0].Content, posts[1].Content, posts[2].Content)
	}
}

func TestWatchPostsScopesPrivateForViewer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ch, cancel, err := env.wall.WatchPosts(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("订阅失败: %v", err)
	}
	defer cancel()

	env.wall.AddPost(ctx, "alice", "Alice", "公开帖", model.VisibilityPublic)
	env.wall.AddPost(ctx, "alice", "Alice", "私密帖", model.VisibilityPrivate)

	got := recvUntil(t, ch, func(posts []*model.WallPost) bool {
		return len(posts) == 1 && posts[0].Content == "公开帖"
	})
	if got[0].Visibility != model.VisibilityPublic {
		t.Fatalf("推送给他人的帖子应为公开帖，实际 %+v", got[0])
	}
}
