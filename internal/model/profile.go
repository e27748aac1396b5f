package model

import (
	"errors"
	"time"

	"social-system/pkg/store"
)

// SocialMedia 社交链接
type SocialMedia struct {
	LinkedIn string `doc:"linkedin" json:"linkedin"`
	Twitter  string `doc:"twitter" json:"twitter"`
	GitHub   string `doc:"github" json:"github"`
}

// Profile 用户资料文档
// 每个身份恰好一份资料，首次会话时惰性创建，仅本人可修改
// ID 即身份ID（users集合的文档ID）
type Profile struct {
	ID           string      `doc:"-" json:"id"`
	Email        string      `doc:"email" json:"email"`
	Name         string      `doc:"name" json:"name"`
	Surname      string      `doc:"surname" json:"surname"`
	Phone        string      `doc:"phone" json:"phone"`
	DOB          string      `doc:"dob" json:"dob"`
	Interests    string      `doc:"interests" json:"interests"`
	Bio          string      `doc:"bio" json:"bio"`
	AvatarURL    string      `doc:"profile_pic_url" json:"profile_pic_url"`
	SocialMedia  SocialMedia `doc:"social_media" json:"social_media"`
	IsPublicWall bool        `doc:"is_public_wall" json:"is_public_wall"`
	CreatedAt    time.Time   `doc:"created_at" json:"created_at"`
}

// DisplayName 展示名：资料名优先，其次邮箱
func (p *Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Email
}

// ToDocument 转换为存储文档（创建时使用，时间戳由存储分配）
func (p *Profile) ToDocument() store.Document {
	return store.Document{
		"email":           p.Email,
		"name":            p.Name,
		"surname":         p.Surname,
		"phone":           p.Phone,
		"dob":             p.DOB,
		"interests":       p.Interests,
		"bio":             p.Bio,
		"profile_pic_url": p.AvatarURL,
		"social_media": map[string]interface{}{
			"linkedin": p.SocialMedia.LinkedIn,
			"twitter":  p.SocialMedia.Twitter,
			"github":   p.SocialMedia.GitHub,
		},
		"is_public_wall": p.IsPublicWall,
		"created_at":     store.ServerTimestamp,
	}
}

// DecodeProfile 从存储文档解码资料记录
func DecodeProfile(doc store.Doc) (*Profile, error) {
	var p Profile
	if err := decode(doc.Data, &p); err != nil {
		return nil, err
	}
	p.ID = doc.ID
	// 早期文档可能没有该字段，缺失按公开处理
	if _, ok := doc.Data["is_public_wall"]; !ok {
		p.IsPublicWall = true
	}
	if p.Email == "" && p.Name == "" {
		return nil, errors.New("资料文档缺少身份字段")
	}
	return &p, nil
}
