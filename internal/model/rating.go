package model

import (
	"errors"
	"time"

	"social-system/pkg/store"
)

// 评分区间
const (
	MinScore = 1
	MaxScore = 5
)

// Rating 同伴评分文档
// 同一有序 (rater,target) 至多一条，写入后不可更新
type Rating struct {
	ID        string    `doc:"-" json:"id"`
	RaterID   string    `doc:"rater_id" json:"rater_id"`
	TargetID  string    `doc:"target_id" json:"target_id"`
	Score     int       `doc:"score" json:"score"`
	Comment   string    `doc:"comment" json:"comment"`
	CreatedAt time.Time `doc:"created_at" json:"created_at"`
}

// ToDocument 转换为存储文档
func (r *Rating) ToDocument() store.Document {
	return store.Document{
		"rater_id":   r.RaterID,
		"target_id":  r.TargetID,
		"score":      r.Score,
		"comment":    r.Comment,
		"created_at": store.ServerTimestamp,
	}
}

// DecodeRating 从存储文档解码评分
func DecodeRating(doc store.Doc) (*Rating, error) {
	var r Rating
	if err := decode(doc.Data, &r); err != nil {
		return nil, err
	}
	r.ID = doc.ID
	if r.RaterID == "" || r.TargetID == "" {
		return nil, errors.New("评分缺少参与方")
	}
	if r.Score < MinScore || r.Score > MaxScore {
		return nil, errors.New("评分分值越界")
	}
	return &r, nil
}

// RatingSummary 评分聚合结果
// Average 仅在 Count > 0 时有效，保留一位小数
type RatingSummary struct {
	TargetID string  `json:"target_id"`
	Count    int     `json:"count"`
	Average  float64 `json:"average,omitempty"`
}
