package service

import (
	"context"
	"errors"
	"testing"

	"social-system/pkg/store"
)

func TestRateGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.ratings.Rate(ctx, "alice", "alice", 3, ""); !errors.Is(err, ErrSelfRating) {
		t.Fatalf("自评应返回 ErrSelfRating，实际 %v", err)
	}
	if _, err := env.ratings.Rate(ctx, "alice", "bob", 0, ""); !errors.Is(err, ErrInvalidScore) {
		t.Fatalf("分值0应返回 ErrInvalidScore，实际 %v", err)
	}
	if _, err := env.ratings.Rate(ctx, "alice", "bob", 6, ""); !errors.Is(err, ErrInvalidScore) {
		t.Fatalf("分值6应返回 ErrInvalidScore，实际 %v", err)
	}
	if got := env.countDocs(t, store.ColRatings); got != 0 {
		t.Fatalf("被拒绝的评分不应创建文档，实际 %d", got)
	}
}

func TestDuplicateRatingRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.ratings.Rate(ctx, "alice", "bob", 4, "不错"); err != nil {
		t.Fatalf("首次评分失败: %v", err)
	}
	if _, err := env.ratings.Rate(ctx, "alice", "bob", 5, "改主意了"); !errors.Is(err, ErrDuplicateRating) {
		t.Fatalf("重复评分应返回 ErrDuplicateRating，实际 %v", err)
	}

	// 聚合结果维持首次评分
	summary, err := env.ratings.Aggregate(ctx, "bob")
	if err != nil {
		t.Fatalf("聚合失败: %v", err)
	}
	if summary.Count != 1 || summary.Average != 4.0 {
		t.Fatalf("聚合应为 count=1 average=4.0，实际 %+v", summary)
	}
}

func TestAggregateRounding(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// 3+4+4 = 11, 11/3 = 3.666... -> 3.7
	env.ratings.Rate(ctx, "alice", "dave", 3, "")
	env.ratings.Rate(ctx, "bob", "dave", 4, "")
	env.ratings.Rate(ctx, "carol", "dave", 4, "")

	summary, err := env.ratings.Aggregate(ctx, "dave")
	if err != nil {
		t.Fatalf("聚合失败: %v", err)
	}
	if summary.Count != 3 {
		t.Fatalf("应有3条评分，实际 %d", summary.Count)
	}
	if summary.Average != 3.7 {
		t.Fatalf("平均分应四舍五入到3.7，实际 %v", summary.Average)
	}
}

func TestAggregateEmpty(t *testing.T) {
	env := newTestEnv(t)

	summary, err := env.ratings.Aggregate(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("空聚合失败: %v", err)
	}
	if summary.Count != 0 || summary.Average != 0 {
		t.Fatalf("无评分时应为 count=0 average=0，实际 %+v", summary)
	}
}

func TestReverseRatingAllowed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// 双向评分互不影响
	if _, err := env.ratings.Rate(ctx, "alice", "bob", 5, ""); err != nil {
		t.Fatalf("正向评分失败: %v", err)
	}
	if _, err := env.ratings.Rate(ctx, "bob", "alice", 2, ""); err != nil {
		t.Fatalf("反向评分失败: %v", err)
	}

	aliceSummary, _ := env.ratings.Aggregate(ctx, "alice")
	bobSummary, _ := env.ratings.Aggregate(ctx, "bob")
	if aliceSummary.Average != 2.0 || bobSummary.Average != 5.0 {
		t.Fatalf("双向聚合互不影响，实际 alice=%v bob=%v", aliceSummary.Average, bobSummary.Average)
	}
}

func TestHasRated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rated, err := env.ratings.HasRated(ctx, "alice", "bob")
	if err != nil || rated {
		t.Fatalf("未评分时应为 false，实际 %v / %v", rated, err)
	}

	env.ratings.Rate(ctx, "alice", "bob", 4, "")
	rated, err = env.ratings.HasRated(ctx, "alice", "bob")
	if err != nil || !rated {
		t.Fatalf("已评分时应为 true，实际 %v / %v", rated, err)
	}
}

func TestWatchTargetPushesView(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ch, cancel, err := env.ratings.WatchTarget(ctx, "bob")
	if err != nil {
		t.Fatalf("订阅失败: %v", err)
	}
	defer cancel()

	env.ratings.Rate(ctx, "alice", "bob", 4, "")
	env.ratings.Rate(ctx, "carol", "bob", 5, "")

	got := recvUntil(t, ch, func(view *RatingView) bool { return view.Summary.Count == 2 })
	if got.Summary.Average != 4.5 {
		t.Fatalf("推送的聚合平均分应为4.5，实际 %v", got.Summary.Average)
	}
}
