package repository

import (
	"context"

	"social-system/internal/model"
	"social-system/pkg/store"
)

// ChatRepository 私聊消息仓储
type ChatRepository struct {
	store store.Store
}

// NewChatRepository 创建ChatRepository实例
func NewChatRepository(s store.Store) *ChatRepository {
	return &ChatRepository{store: s}
}

// CreateMessage 追加一条消息
func (r *ChatRepository) CreateMessage(ctx context.Context, msg *model.ChatMessage) (string, error) {
	return r.store.Create(ctx, store.ColChats, msg.ToDocument())
}

// ByChannel 查询指定频道的全部消息
func (r *ChatRepository) ByChannel(ctx context.Context, channelID string) ([]*model.ChatMessage, error) {
	snapshot, err := r.store.Query(ctx, store.ColChats, channelFilters(channelID))
	if err != nil {
		return nil, err
	}
	messages := make([]*model.ChatMessage, 0, len(snapshot))
	for _, doc := range snapshot {
		m, err := model.DecodeChatMessage(doc)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// SubscribeChannel 订阅指定频道的消息
func (r *ChatRepository) SubscribeChannel(ctx context.Context, channelID string) (*store.Subscription, error) {
	return r.store.Subscribe(ctx, store.ColChats, channelFilters(channelID))
}

func channelFilters(channelID string) []store.Filter {
	return []store.Filter{store.Eq("channel_id", channelID)}
}
