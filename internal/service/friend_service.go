package service

import (
	"context"
	"errors"
	"sort"

	"social-system/internal/model"
	"social-system/internal/repository"
	"social-system/pkg/store"
)

// 无法解析对方资料时的占位展示名
const placeholderName = "Unknown User"

// FriendService 好友请求状态机与好友关系注册表
// 请求状态只有 pending -> accepted / pending -> rejected 两条迁移路径，
// 终态不可再迁移；好友关系以规范ID保证无序对唯一
type FriendService struct {
	friends  *repository.FriendRepository
	profiles *repository.ProfileRepository
}

// NewFriendService 创建FriendService实例
func NewFriendService(friends *repository.FriendRepository, profiles *repository.ProfileRepository) *FriendService {
	return &FriendService{friends: friends, profiles: profiles}
}

// RequestEntry 待处理请求的展示视图（含解析后的发送方名字）
type RequestEntry struct {
	ID       string `json:"id"`
	From     string `json:"from"`
	FromName string `json:"from_name"`
}

// FriendEntry 好友列表条目（含解析后的资料摘要）
type FriendEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// SendRequest 发送好友请求
// 自己加自己返回 ErrInvalidOperation；任一方向已有 pending 请求返回
// ErrDuplicateRequest；已是好友返回 ErrAlreadyFriends
// 成功时恰好新建一条文档，不触碰其他文档
func (s *FriendService) SendRequest(ctx context.Context, from, to string) (*model.FriendRequest, error) {
	if from == "" || to == "" || from == to {
		return nil, ErrInvalidOperation
	}

	// 先查后写：两个方向的 pending 请求都算重复
	for _, pair := range [][2]string{{from, to}, {to, from}} {
		pending, err := s.friends.PendingBetween(ctx, pair[0], pair[1])
		if err != nil {
			return nil, err
		}
		if len(pending) > 0 {
			return nil, ErrDuplicateRequest
		}
	}

	exists, err := s.friends.HasFriendship(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyFriends
	}

	req := &model.FriendRequest{From: from, To: to, Status: model.RequestPending}
	id, err := s.friends.CreateRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	req.ID = id
	return req, nil
}

// Accept 接受好友请求并建立好友关系
// 仅接收方可操作；终态请求再操作返回 ErrInvalidOperation
// 状态更新与建立好友关系是两次独立写入，中间崩溃会留下已接受但无
// 好友关系的请求（存储无多文档事务，此缺口为已知限制）
func (s *FriendService) Accept(ctx context.Context, requestID, actorID string) (*model.Friendship, error) {
	req, err := s.guardTransition(ctx, requestID, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.friends.UpdateRequestStatus(ctx, requestID, model.RequestAccepted); err != nil {
		return nil, err
	}
	return s.Establish(ctx, req.From, req.To)
}

// Reject 拒绝好友请求
func (s *FriendService) Reject(ctx context.Context, requestID, actorID string) error {
	if _, err := s.guardTransition(ctx, requestID, actorID); err != nil {
		return err
	}
	return s.friends.UpdateRequestStatus(ctx, requestID, model.RequestRejected)
}

// guardTransition 状态迁移前置校验：请求存在、操作者为接收方、仍处 pending
func (s *FriendService) guardTransition(ctx context.Context, requestID, actorID string) (*model.FriendRequest, error) {
	req, err := s.friends.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.To != actorID || req.Terminal() {
		return nil, ErrInvalidOperation
	}
	return req, nil
}

// Establish 建立好友关系
// 规范ID使同一无序对的重复建立覆盖同一文档，天然幂等
func (s *FriendService) Establish(ctx context.Context, idA, idB string) (*model.Friendship, error) {
	members := []string{idA, idB}
	sort.Strings(members)
	f := &model.Friendship{
		ID:      model.FriendshipID(idA, idB),
		Members: members,
	}
	if err := s.friends.SetFriendship(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// IncomingRequests 查询发给指定用户的待处理请求（解析发送方名字）
func (s *FriendService) IncomingRequests(ctx context.Context, userID string) ([]RequestEntry, error) {
	pending, err := s.friends.PendingTo(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.requestEntries(ctx, pending), nil
}

// ListFriends 查询好友列表（解析对方资料摘要）
func (s *FriendService) ListFriends(ctx context.Context, userID string) ([]FriendEntry, error) {
	friendships, err := s.friends.FriendshipsOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.friendEntries(ctx, userID, friendships), nil
}

// WatchIncoming 订阅待处理请求实时流
// 返回的取消函数必须在视图销毁时调用
func (s *FriendService) WatchIncoming(ctx context.Context, userID string) (<-chan []RequestEntry, func(), error) {
	sub, err := s.friends.SubscribePendingTo(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan []RequestEntry, 1)
	go func() {
		defer close(out)
		for snapshot := range sub.C() {
			pending := make([]*model.FriendRequest, 0, len(snapshot))
			for _, doc := range snapshot {
				// 坏文档跳过，实时视图不因单条脏数据中断
				if req, err := model.DecodeFriendRequest(doc); err == nil {
					pending = append(pending, req)
				}
			}
			deliverLatest(out, s.requestEntries(ctx, pending), sub.Done())
		}
	}()
	return out, sub.Cancel, nil
}

// WatchFriends 订阅好友列表实时流
func (s *FriendService) WatchFriends(ctx context.Context, userID string) (<-chan []FriendEntry, func(), error) {
	sub, err := s.friends.SubscribeFriendshipsOf(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan []FriendEntry, 1)
	go func() {
		defer close(out)
		for snapshot := range sub.C() {
			friendships := make([]*model.Friendship, 0, len(snapshot))
			for _, doc := range snapshot {
				if f, err := model.DecodeFriendship(doc); err == nil {
					friendships = append(friendships, f)
				}
			}
			deliverLatest(out, s.friendEntries(ctx, userID, friendships), sub.Done())
		}
	}()
	return out, sub.Cancel, nil
}

// requestEntries 为请求解析发送方展示名，解析失败退化为占位名
func (s *FriendService) requestEntries(ctx context.Context, pending []*model.FriendRequest) []RequestEntry {
	entries := make([]RequestEntry, 0, len(pending))
	for _, req := range pending {
		name := placeholderName
		if p, err := s.profiles.Get(ctx, req.From); err == nil {
			name = p.DisplayName()
		}
		entries = append(entries, RequestEntry{ID: req.ID, From: req.From, FromName: name})
	}
	return entries
}

// friendEntries 为好友关系解析对方资料，资料缺失退化为占位条目而非报错
func (s *FriendService) friendEntries(ctx context.Context, userID string, friendships []*model.Friendship) []FriendEntry {
	entries := make([]FriendEntry, 0, len(friendships))
	for _, f := range friendships {
		otherID := f.Other(userID)
		if otherID == "" {
			continue
		}
		entry := FriendEntry{ID: otherID, Name: placeholderName}
		if p, err := s.profiles.Get(ctx, otherID); err == nil {
			entry.Name = p.DisplayName()
			entry.AvatarURL = p.AvatarURL
		} else if !errors.Is(err, store.ErrNotFound) {
			// 存储故障同样退化为占位显示，列表本身不失败
			entry.Name = placeholderName
		}
		entries = append(entries, entry)
	}
	return entries
}

// deliverLatest 向消费方投递最新一份结果
// 消费方未及时读取时先丢弃积压的旧结果，保证始终拿到最新快照
func deliverLatest[T any](out chan T, latest T, done <-chan struct{}) {
	for {
		select {
		case out <- latest:
			return
		case <-done:
			return
		default:
			select {
			case <-out:
			default:
			}
		}
	}
}
