package repository

import (
	"context"

	"social-system/internal/model"
	"social-system/pkg/store"
)

// RatingRepository 评分仓储
type RatingRepository struct {
	store store.Store
}

// NewRatingRepository 创建RatingRepository实例
func NewRatingRepository(s store.Store) *RatingRepository {
	return &RatingRepository{store: s}
}

// Create 写入一条评分
func (r *RatingRepository) Create(ctx context.Context, rating *model.Rating) (string, error) {
	return r.store.Create(ctx, store.ColRatings, rating.ToDocument())
}

// ByRaterTarget 查询指定 (rater,target) 的评分（写前查重）
func (r *RatingRepository) ByRaterTarget(ctx context.Context, raterID, targetID string) ([]*model.Rating, error) {
	snapshot, err := r.store.Query(ctx, store.ColRatings, []store.Filter{
		store.Eq("rater_id", raterID),
		store.Eq("target_id", targetID),
	})
	if err != nil {
		return nil, err
	}
	return decodeRatings(snapshot)
}

// ByTarget 查询指定被评人的全部评分
func (r *RatingRepository) ByTarget(ctx context.Context, targetID string) ([]*model.Rating, error) {
	snapshot, err := r.store.Query(ctx, store.ColRatings, targetFilters(targetID))
	if err != nil {
		return nil, err
	}
	return decodeRatings(snapshot)
}

// SubscribeByTarget 订阅指定被评人的评分
func (r *RatingRepository) SubscribeByTarget(ctx context.Context, targetID string) (*store.Subscription, error) {
	return r.store.Subscribe(ctx, store.ColRatings, targetFilters(targetID))
}

func targetFilters(targetID string) []store.Filter {
	return []store.Filter{store.Eq("target_id", targetID)}
}

func decodeRatings(snapshot store.Snapshot) ([]*model.Rating, error) {
	ratings := make([]*model.Rating, 0, len(snapshot))
	for _, doc := range snapshot {
		rating, err := model.DecodeRating(doc)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	return ratings, nil
}
