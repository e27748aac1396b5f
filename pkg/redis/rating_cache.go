package redis

import (
	"encoding/json"
	"fmt"
	"time"
)

// 评分聚合缓存相关常量
const (
	RatingSummaryKeyPrefix = "social:rating:summary:" // 评分聚合缓存key前缀
	RatingSummaryTTL       = 5 * time.Minute          // 聚合结果缓存时间
)

// CachedRatingSummary 缓存中的评分聚合结果
type CachedRatingSummary struct {
	TargetID string  `json:"target_id"`
	Count    int     `json:"count"`
	Average  float64 `json:"average"`
}

// SetRatingSummary 缓存某用户的评分聚合结果
func SetRatingSummary(targetID string, summary CachedRatingSummary) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("序列化评分聚合失败: %w", err)
	}

	err = Set(RatingSummaryKeyPrefix+targetID, data, RatingSummaryTTL)
	if err != nil {
		return fmt.Errorf("缓存评分聚合失败: %w", err)
	}

	return nil
}

// GetRatingSummary 读取缓存的评分聚合结果
// 缓存未命中返回 (nil, nil)，调用方需回源重新聚合
func GetRatingSummary(targetID string) (*CachedRatingSummary, error) {
	if client == nil {
		return nil, fmt.Errorf("redis客户端未初始化")
	}

	data, err := Get(RatingSummaryKeyPrefix + targetID)
	if err != nil {
		if err.Error() == "redis: nil" {
			return nil, nil
		}
		return nil, fmt.Errorf("读取评分聚合缓存失败: %w", err)
	}

	var summary CachedRatingSummary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, fmt.Errorf("反序列化评分聚合失败: %w", err)
	}

	return &summary, nil
}

// InvalidateRatingSummary 新评分写入后失效聚合缓存
func InvalidateRatingSummary(targetID string) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	return Del(RatingSummaryKeyPrefix + targetID)
}
