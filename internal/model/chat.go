package model

import (
	"errors"
	"sort"
	"strings"
	"time"

	"social-system/pkg/store"
)

// ChatMessage 私聊消息文档
// 频道ID由无序参与方对确定性推导，双方各自都能寻址到同一频道
// 时间戳由存储侧分配，排序权威不在客户端时钟
type ChatMessage struct {
	ID           string    `doc:"-" json:"id"`
	ChannelID    string    `doc:"channel_id" json:"channel_id"`
	SenderID     string    `doc:"sender_id" json:"sender_id"`
	SenderName   string    `doc:"sender_name" json:"sender_name"`
	ReceiverID   string    `doc:"receiver_id" json:"receiver_id"`
	ReceiverName string    `doc:"receiver_name" json:"receiver_name"`
	Message      string    `doc:"message" json:"message"`
	CreatedAt    time.Time `doc:"created_at" json:"created_at"`
}

// ChannelID 计算频道ID：两个参与方ID字典序排序后下划线拼接
// 对任意 a、b 满足 ChannelID(a,b) == ChannelID(b,a)
func ChannelID(idA, idB string) string {
	pair := []string{idA, idB}
	sort.Strings(pair)
	return strings.Join(pair, "_")
}

// Between 消息是否恰好属于指定的参与方对
// 订阅按成员查询后需用它做客户端兜底过滤，避免其他频道消息串入会话
func (m *ChatMessage) Between(idA, idB string) bool {
	return (m.SenderID == idA && m.ReceiverID == idB) ||
		(m.SenderID == idB && m.ReceiverID == idA)
}

// ToDocument 转换为存储文档
func (m *ChatMessage) ToDocument() store.Document {
	return store.Document{
		"channel_id":    m.ChannelID,
		"sender_id":     m.SenderID,
		"sender_name":   m.SenderName,
		"receiver_id":   m.ReceiverID,
		"receiver_name": m.ReceiverName,
		"message":       m.Message,
		"created_at":    store.ServerTimestamp,
	}
}

// DecodeChatMessage 从存储文档解码消息
func DecodeChatMessage(doc store.Doc) (*ChatMessage, error) {
	var m ChatMessage
	if err := decode(doc.Data, &m); err != nil {
		return nil, err
	}
	m.ID = doc.ID
	if m.ChannelID == "" || m.SenderID == "" || m.ReceiverID == "" || m.Message == "" {
		return nil, errors.New("消息缺少必要字段")
	}
	return &m, nil
}
