package repository

import (
	"context"

	"social-system/internal/model"
	"social-system/pkg/store"
)

// BrandRepository 品牌建议仓储
type BrandRepository struct {
	store store.Store
}

// NewBrandRepository 创建BrandRepository实例
func NewBrandRepository(s store.Store) *BrandRepository {
	return &BrandRepository{store: s}
}

// CreateSuggestion 创建品牌建议
func (r *BrandRepository) CreateSuggestion(ctx context.Context, b *model.BrandSuggestion) (string, error) {
	return r.store.Create(ctx, store.ColBrandSuggestions, b.ToDocument())
}

// GetSuggestion 按ID读取品牌建议
func (r *BrandRepository) GetSuggestion(ctx context.Context, id string) (*model.BrandSuggestion, error) {
	doc, err := r.store.Get(ctx, store.ColBrandSuggestions, id)
	if err != nil {
		return nil, err
	}
	return model.DecodeBrandSuggestion(doc)
}

// ListSuggestions 列出全部待审建议
func (r *BrandRepository) ListSuggestions(ctx context.Context) ([]*model.BrandSuggestion, error) {
	return r.list(ctx, store.ColBrandSuggestions)
}

// ListApproved 列出全部已批准品牌
func (r *BrandRepository) ListApproved(ctx context.Context) ([]*model.BrandSuggestion, error) {
	return r.list(ctx, store.ColApprovedBrands)
}

// Approve 把建议搬入已批准集合并删除原文档
// 两次写入之间没有事务保证，与整库的先查后写策略一致
func (r *BrandRepository) Approve(ctx context.Context, b *model.BrandSuggestion) error {
	if err := r.store.Set(ctx, store.ColApprovedBrands, b.ID, b.ApprovedDocument()); err != nil {
		return err
	}
	return r.store.Delete(ctx, store.ColBrandSuggestions, b.ID)
}

// DeleteSuggestion 删除建议
func (r *BrandRepository) DeleteSuggestion(ctx context.Context, id string) error {
	return r.store.Delete(ctx, store.ColBrandSuggestions, id)
}

func (r *BrandRepository) list(ctx context.Context, collection string) ([]*model.BrandSuggestion, error) {
	snapshot, err := r.store.Query(ctx, collection, nil)
	if err != nil {
		return nil, err
	}
	brands := make([]*model.BrandSuggestion, 0, len(snapshot))
	for _, doc := range snapshot {
		b, err := model.DecodeBrandSuggestion(doc)
		if err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	return brands, nil
}
