package model

import (
	"errors"
	"time"

	"social-system/pkg/store"
)

// Account 账号文档（身份提供方的本地实现）
// 匿名账号没有邮箱和密码哈希
type Account struct {
	ID           string    `doc:"-" json:"id"`
	Email        string    `doc:"email" json:"email"`
	Username     string    `doc:"username" json:"username"`
	DisplayName  string    `doc:"display_name" json:"display_name"`
	PasswordHash string    `doc:"password_hash" json:"-"`
	IsAnonymous  bool      `doc:"is_anonymous" json:"is_anonymous"`
	CreatedAt    time.Time `doc:"created_at" json:"created_at"`
}

// Identity 会话身份：账号经认证后对外暴露的窄视图
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// Identity 导出会话身份
func (a *Account) Identity() Identity {
	return Identity{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		IsAnonymous: a.IsAnonymous,
	}
}

// ToDocument 转换为存储文档
func (a *Account) ToDocument() store.Document {
	return store.Document{
		"email":         a.Email,
		"username":      a.Username,
		"display_name":  a.DisplayName,
		"password_hash": a.PasswordHash,
		"is_anonymous":  a.IsAnonymous,
		"created_at":    store.ServerTimestamp,
	}
}

// DecodeAccount 从存储文档解码账号
func DecodeAccount(doc store.Doc) (*Account, error) {
	var a Account
	if err := decode(doc.Data, &a); err != nil {
		return nil, err
	}
	a.ID = doc.ID
	if !a.IsAnonymous && a.Username == "" && a.Email == "" {
		return nil, errors.New("账号缺少标识字段")
	}
	return &a, nil
}
