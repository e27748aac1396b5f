package model

import (
	"errors"
	"sort"
	"strings"
	"time"

	"social-system/pkg/store"
)

// 好友请求状态
// pending 为唯一非终态；accepted/rejected 不可再迁移
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// FriendRequest 好友请求文档
// 同一有序 (from,to) 至多存在一条 pending 请求
type FriendRequest struct {
	ID        string    `doc:"-" json:"id"`
	From      string    `doc:"from" json:"from"`
	To        string    `doc:"to" json:"to"`
	Status    string    `doc:"status" json:"status"`
	CreatedAt time.Time `doc:"created_at" json:"created_at"`
}

// Terminal 请求是否已处于终态
func (r *FriendRequest) Terminal() bool {
	return r.Status != RequestPending
}

// ToDocument 转换为存储文档
func (r *FriendRequest) ToDocument() store.Document {
	return store.Document{
		"from":       r.From,
		"to":         r.To,
		"status":     r.Status,
		"created_at": store.ServerTimestamp,
	}
}

// DecodeFriendRequest 从存储文档解码好友请求
func DecodeFriendRequest(doc store.Doc) (*FriendRequest, error) {
	var r FriendRequest
	if err := decode(doc.Data, &r); err != nil {
		return nil, err
	}
	r.ID = doc.ID
	if r.From == "" || r.To == "" {
		return nil, errors.New("好友请求缺少参与方")
	}
	switch r.Status {
	case RequestPending, RequestAccepted, RequestRejected:
	default:
		return nil, errors.New("好友请求状态非法: " + r.Status)
	}
	return &r, nil
}

// Friendship 已确认的好友关系文档
// 文档ID为两个成员ID排序后拼接，保证无序对唯一
// 建立后不再修改
type Friendship struct {
	ID            string    `doc:"-" json:"id"`
	Members       []string  `doc:"members" json:"members"`
	EstablishedAt time.Time `doc:"established_at" json:"established_at"`
}

// FriendshipID 计算规范好友关系ID（与参数顺序无关）
func FriendshipID(idA, idB string) string {
	pair := []string{idA, idB}
	sort.Strings(pair)
	return strings.Join(pair, "_")
}

// Other 返回另一位成员的ID
func (f *Friendship) Other(id string) string {
	for _, m := range f.Members {
		if m != id {
			return m
		}
	}
	return ""
}

// ToDocument 转换为存储文档
func (f *Friendship) ToDocument() store.Document {
	members := make([]interface{}, len(f.Members))
	for i, m := range f.Members {
		members[i] = m
	}
	return store.Document{
		"members":        members,
		"established_at": store.ServerTimestamp,
	}
}

// DecodeFriendship 从存储文档解码好友关系
func DecodeFriendship(doc store.Doc) (*Friendship, error) {
	var f Friendship
	if err := decode(doc.Data, &f); err != nil {
		return nil, err
	}
	f.ID = doc.ID
	if len(f.Members) != 2 {
		return nil, errors.New("好友关系成员数非法")
	}
	return &f, nil
}
