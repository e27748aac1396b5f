package model

import (
	"errors"
	"time"

	"social-system/pkg/store"
)

// 帖子可见性
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// WallPost 留言墙帖子文档
// 作者名在创建时冗余写入（读性能换一致性），之后不随改名同步
// 帖子创建后不可编辑，可见性固定
type WallPost struct {
	ID         string    `doc:"-" json:"id"`
	AuthorID   string    `doc:"author_id" json:"author_id"`
	AuthorName string    `doc:"author_name" json:"author_name"`
	Content    string    `doc:"content" json:"content"`
	Visibility string    `doc:"visibility" json:"visibility"`
	CreatedAt  time.Time `doc:"created_at" json:"created_at"`
}

// ToDocument 转换为存储文档
func (p *WallPost) ToDocument() store.Document {
	return store.Document{
		"author_id":   p.AuthorID,
		"author_name": p.AuthorName,
		"content":     p.Content,
		"visibility":  p.Visibility,
		"created_at":  store.ServerTimestamp,
	}
}

// DecodeWallPost 从存储文档解码帖子
func DecodeWallPost(doc store.Doc) (*WallPost, error) {
	var p WallPost
	if err := decode(doc.Data, &p); err != nil {
		return nil, err
	}
	p.ID = doc.ID
	if p.AuthorID == "" || p.Content == "" {
		return nil, errors.New("帖子缺少必要字段")
	}
	switch p.Visibility {
	case VisibilityPublic, VisibilityPrivate:
	default:
		return nil, errors.New("帖子可见性非法: " + p.Visibility)
	}
	return &p, nil
}
