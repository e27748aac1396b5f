package model

import (
	"errors"
	"time"

	"social-system/pkg/store"
)

// BrandSuggestion 品牌建议文档
// 用户提交进 brandSuggestions，管理员批准后整体搬入 approvedBrands 并删除原文档
type BrandSuggestion struct {
	ID          string    `doc:"-" json:"id"`
	Country     string    `doc:"country" json:"country"`
	Brand       string    `doc:"brand" json:"brand"`
	Category    string    `doc:"category" json:"category"`
	SuggestedBy string    `doc:"suggested_by" json:"suggested_by"`
	CreatedAt   time.Time `doc:"created_at" json:"created_at"`
}

// ToDocument 转换为存储文档
func (b *BrandSuggestion) ToDocument() store.Document {
	return store.Document{
		"country":      b.Country,
		"brand":        b.Brand,
		"category":     b.Category,
		"suggested_by": b.SuggestedBy,
		"created_at":   store.ServerTimestamp,
	}
}

// ApprovedDocument 批准时搬运到 approvedBrands 的文档（保留原创建时间）
func (b *BrandSuggestion) ApprovedDocument() store.Document {
	return store.Document{
		"country":      b.Country,
		"brand":        b.Brand,
		"category":     b.Category,
		"suggested_by": b.SuggestedBy,
		"created_at":   b.CreatedAt,
	}
}

// DecodeBrandSuggestion 从存储文档解码品牌建议
func DecodeBrandSuggestion(doc store.Doc) (*BrandSuggestion, error) {
	var b BrandSuggestion
	if err := decode(doc.Data, &b); err != nil {
		return nil, err
	}
	b.ID = doc.ID
	if b.Brand == "" || b.Category == "" {
		return nil, errors.New("品牌建议缺少必要字段")
	}
	return &b, nil
}
