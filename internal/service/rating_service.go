package service

import (
	"context"
	"math"
	"sort"

	"social-system/internal/model"
	"social-system/internal/repository"
	"social-system/pkg/redis"
)

// RatingService 用户互评
// 聚合结果走Redis短期缓存，Redis不可用时直接回源聚合
type RatingService struct {
	ratings *repository.RatingRepository
}

// NewRatingService 创建RatingService实例
func NewRatingService(ratings *repository.RatingRepository) *RatingService {
	return &RatingService{ratings: ratings}
}

// RatingView 某用户评分页的完整视图（评分列表 + 聚合结果）
type RatingView struct {
	Ratings []*model.Rating     `json:"ratings"`
	Summary model.RatingSummary `json:"summary"`
}

// Rate 给用户评分
// 自评返回 ErrSelfRating；分值超出 [1,5] 返回 ErrInvalidScore；
// 同一 (rater,target) 已有评分返回 ErrDuplicateRating
// 查重与写入之间无原子性，并发重复提交可能都通过（已知竞态窗口）
func (s *RatingService) Rate(ctx context.Context, raterID, targetID string, score int, comment string) (*model.Rating, error) {
	if raterID == "" || targetID == "" {
		return nil, ErrInvalidOperation
	}
	if raterID == targetID {
		return nil, ErrSelfRating
	}
	if score < model.MinScore || score > model.MaxScore {
		return nil, ErrInvalidScore
	}

	existing, err := s.ratings.ByRaterTarget(ctx, raterID, targetID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrDuplicateRating
	}

	rating := &model.Rating{
		RaterID:  raterID,
		TargetID: targetID,
		Score:    score,
		Comment:  comment,
	}
	id, err := s.ratings.Create(ctx, rating)
	if err != nil {
		return nil, err
	}
	rating.ID = id

	// 写入成功后失效聚合缓存，失败不影响主流程
	if redis.GetClient() != nil {
		_ = redis.InvalidateRatingSummary(targetID)
	}
	return rating, nil
}

// HasRated 指定 (rater,target) 是否已有评分
func (s *RatingService) HasRated(ctx context.Context, raterID, targetID string) (bool, error) {
	existing, err := s.ratings.ByRaterTarget(ctx, raterID, targetID)
	if err != nil {
		return false, err
	}
	return len(existing) > 0, nil
}

// View 查询某用户的评分页视图
func (s *RatingService) View(ctx context.Context, targetID string) (*RatingView, error) {
	ratings, err := s.ratings.ByTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	view := buildView(targetID, ratings)
	cacheSummary(targetID, view.Summary)
	return view, nil
}

// Aggregate 查询某用户的评分聚合结果（优先命中缓存）
func (s *RatingService) Aggregate(ctx context.Context, targetID string) (model.RatingSummary, error) {
	if redis.GetClient() != nil {
		if cached, err := redis.GetRatingSummary(targetID); err == nil && cached != nil {
			return model.RatingSummary{
				TargetID: cached.TargetID,
				Count:    cached.Count,
				Average:  cached.Average,
			}, nil
		}
	}

	ratings, err := s.ratings.ByTarget(ctx, targetID)
	if err != nil {
		return model.RatingSummary{}, err
	}
	summary := Summarize(targetID, ratings)
	cacheSummary(targetID, summary)
	return summary, nil
}

// WatchTarget 订阅某用户的评分实时视图
// 返回的取消函数必须在视图销毁时调用
func (s *RatingService) WatchTarget(ctx context.Context, targetID string) (<-chan *RatingView, func(), error) {
	sub, err := s.ratings.SubscribeByTarget(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan *RatingView, 1)
	go func() {
		defer close(out)
		for snapshot := range sub.C() {
			ratings := make([]*model.Rating, 0, len(snapshot))
			for _, doc := range snapshot {
				if rating, err := model.DecodeRating(doc); err == nil {
					ratings = append(ratings, rating)
				}
			}
			deliverLatest(out, buildView(targetID, ratings), sub.Done())
		}
	}()
	return out, sub.Cancel, nil
}

// Summarize 计算评分聚合：条数与平均分（四舍五入到1位小数）
// 无评分时平均分为0且序列化时省略，前端显示“暂无评分”
func Summarize(targetID string, ratings []*model.Rating) model.RatingSummary {
	summary := model.RatingSummary{TargetID: targetID, Count: len(ratings)}
	if len(ratings) == 0 {
		return summary
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Score
	}
	summary.Average = math.Round(float64(sum)/float64(len(ratings))*10) / 10
	return summary
}

// buildView 组装评分视图，评分按创建时间降序
func buildView(targetID string, ratings []*model.Rating) *RatingView {
	sorted := make([]*model.Rating, len(ratings))
	copy(sorted, ratings)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return &RatingView{Ratings: sorted, Summary: Summarize(targetID, sorted)}
}

func cacheSummary(targetID string, summary model.RatingSummary) {
	if redis.GetClient() == nil {
		return
	}
	_ = redis.SetRatingSummary(targetID, redis.CachedRatingSummary{
		TargetID: summary.TargetID,
		Count:    summary.Count,
		Average:  summary.Average,
	})
}
