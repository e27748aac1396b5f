package model

import (
	"fmt"

	"social-system/pkg/store"

	"github.com/mitchellh/mapstructure"
)

// decode 把存储层文档解码为带类型的实体记录
// 字段类型不匹配立即失败，不做鸭子类型容忍
func decode(data store.Document, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "doc",
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(map[string]interface{}(data)); err != nil {
		return fmt.Errorf("文档解码失败: %w", err)
	}
	return nil
}
