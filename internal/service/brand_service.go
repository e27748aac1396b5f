package service

import (
	"context"
	"strings"

	"social-system/internal/model"
	"social-system/internal/repository"
)

// BrandService 品牌建议审核流
type BrandService struct {
	brands *repository.BrandRepository
}

// NewBrandService 创建BrandService实例
func NewBrandService(brands *repository.BrandRepository) *BrandService {
	return &BrandService{brands: brands}
}

// Suggest 提交品牌建议
func (s *BrandService) Suggest(ctx context.Context, suggesterID, country, brand, category string) (*model.BrandSuggestion, error) {
	brand = strings.TrimSpace(brand)
	category = strings.TrimSpace(category)
	if brand == "" || category == "" {
		return nil, ErrInvalidOperation
	}

	suggestion := &model.BrandSuggestion{
		Country:     strings.TrimSpace(country),
		Brand:       brand,
		Category:    category,
		SuggestedBy: suggesterID,
	}
	id, err := s.brands.CreateSuggestion(ctx, suggestion)
	if err != nil {
		return nil, err
	}
	suggestion.ID = id
	return suggestion, nil
}

// Approve 批准建议：整体搬入已批准集合并删除原建议
// 搬运与删除是两次独立写入，中间崩溃会留下两边各一份的重复（已知限制）
func (s *BrandService) Approve(ctx context.Context, suggestionID string) (*model.BrandSuggestion, error) {
	suggestion, err := s.brands.GetSuggestion(ctx, suggestionID)
	if err != nil {
		return nil, err
	}
	if err := s.brands.Approve(ctx, suggestion); err != nil {
		return nil, err
	}
	return suggestion, nil
}

// Remove 驳回并删除建议
func (s *BrandService) Remove(ctx context.Context, suggestionID string) error {
	return s.brands.DeleteSuggestion(ctx, suggestionID)
}

// Pending 列出待审建议
func (s *BrandService) Pending(ctx context.Context) ([]*model.BrandSuggestion, error) {
	return s.brands.ListSuggestions(ctx)
}

// Approved 列出已批准品牌
func (s *BrandService) Approved(ctx context.Context) ([]*model.BrandSuggestion, error) {
	return s.brands.ListApproved(ctx)
}
