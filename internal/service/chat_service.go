package service

import (
	"context"
	"sort"
	"strings"

	"social-system/internal/model"
	"social-system/internal/repository"
)

// ChatService 私聊频道
// 频道由无序参与方对寻址，任一方发起都落在同一逻辑频道
type ChatService struct {
	chats *repository.ChatRepository
}

// NewChatService 创建ChatService实例
func NewChatService(chats *repository.ChatRepository) *ChatService {
	return &ChatService{chats: chats}
}

// Send 发送消息
// 空白消息返回 ErrEmptyMessage；时间戳由存储侧分配
// 发送方与接收方的展示名在创建时冗余写入，之后不随改名同步
func (s *ChatService) Send(ctx context.Context, senderID, senderName, receiverID, receiverName, text string) (*model.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	if senderID == "" || receiverID == "" || senderID == receiverID {
		return nil, ErrInvalidOperation
	}

	msg := &model.ChatMessage{
		ChannelID:    model.ChannelID(senderID, receiverID),
		SenderID:     senderID,
		SenderName:   senderName,
		ReceiverID:   receiverID,
		ReceiverName: receiverName,
		Message:      text,
	}
	id, err := s.chats.CreateMessage(ctx, msg)
	if err != nil {
		return nil, err
	}
	msg.ID = id
	return msg, nil
}

// History 查询两人会话的全部消息，按创建时间升序
func (s *ChatService) History(ctx context.Context, idA, idB string) ([]*model.ChatMessage, error) {
	messages, err := s.chats.ByChannel(ctx, model.ChannelID(idA, idB))
	if err != nil {
		return nil, err
	}
	return filterAndSort(messages, idA, idB), nil
}

// WatchChannel 订阅两人会话的消息实时流
// 返回的取消函数必须在视图销毁时调用
func (s *ChatService) WatchChannel(ctx context.Context, idA, idB string) (<-chan []*model.ChatMessage, func(), error) {
	sub, err := s.chats.SubscribeChannel(ctx, model.ChannelID(idA, idB))
	if err != nil {
		return nil, nil, err
	}

	out := make(chan []*model.ChatMessage, 1)
	go func() {
		defer close(out)
		for snapshot := range sub.C() {
			messages := make([]*model.ChatMessage, 0, len(snapshot))
			for _, doc := range snapshot {
				if m, err := model.DecodeChatMessage(doc); err == nil {
					messages = append(messages, m)
				}
			}
			deliverLatest(out, filterAndSort(messages, idA, idB), sub.Done())
		}
	}()
	return out, sub.Cancel, nil
}

// filterAndSort 客户端兜底过滤 + 升序排序
// 即使查询按频道ID过滤，仍强制校验消息属于这对参与方，
// 其他频道的消息绝不允许串入当前会话
func filterAndSort(messages []*model.ChatMessage, idA, idB string) []*model.ChatMessage {
	filtered := make([]*model.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.Between(idA, idB) {
			filtered = append(filtered, m)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})
	return filtered
}
