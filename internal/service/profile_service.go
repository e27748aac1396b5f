package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"social-system/internal/model"
	"social-system/internal/repository"
	"social-system/pkg/storage"
	"social-system/pkg/store"
)

// ProfileService 用户资料
// 资料在首次会话时惰性创建，之后仅资料所有者可修改
type ProfileService struct {
	profiles *repository.ProfileRepository
	files    storage.Storage
}

// NewProfileService 创建ProfileService实例
func NewProfileService(profiles *repository.ProfileRepository, files storage.Storage) *ProfileService {
	return &ProfileService{profiles: profiles, files: files}
}

// ProfileUpdate 资料局部更新（nil字段不更新）
type ProfileUpdate struct {
	Name         *string            `json:"name"`
	Surname      *string            `json:"surname"`
	Phone        *string            `json:"phone"`
	DOB          *string            `json:"dob"`
	Interests    *string            `json:"interests"`
	Bio          *string            `json:"bio"`
	SocialMedia  *model.SocialMedia `json:"social_media"`
	IsPublicWall *bool              `json:"is_public_wall"`
}

// EnsureProfile 确保身份对应的资料存在（会话建立时调用）
// 已存在直接返回，不覆盖已有资料；不存在则用身份信息创建骨架资料
func (s *ProfileService) EnsureProfile(ctx context.Context, identity model.Identity) (*model.Profile, error) {
	existing, err := s.profiles.Get(ctx, identity.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	profile := &model.Profile{
		ID:           identity.ID,
		Email:        identity.Email,
		Name:         identity.DisplayName,
		IsPublicWall: true, // 留言墙默认公开
	}
	// 先查后写：并发首次会话可能互相覆盖，但骨架内容一致，结果无害
	if err := s.profiles.Create(ctx, identity.ID, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Get 读取资料
func (s *ProfileService) Get(ctx context.Context, id string) (*model.Profile, error) {
	return s.profiles.Get(ctx, id)
}

// Update 更新资料（仅所有者调用路径）
func (s *ProfileService) Update(ctx context.Context, ownerID, actorID string, update ProfileUpdate) error {
	if actorID != ownerID {
		return ErrInvalidOperation
	}

	fields := store.Document{}
	setIf(fields, "name", update.Name)
	setIf(fields, "surname", update.Surname)
	setIf(fields, "phone", update.Phone)
	setIf(fields, "dob", update.DOB)
	setIf(fields, "interests", update.Interests)
	setIf(fields, "bio", update.Bio)
	if update.SocialMedia != nil {
		fields["social_media"] = map[string]interface{}{
			"linkedin": update.SocialMedia.LinkedIn,
			"twitter":  update.SocialMedia.Twitter,
			"github":   update.SocialMedia.GitHub,
		}
	}
	if update.IsPublicWall != nil {
		fields["is_public_wall"] = *update.IsPublicWall
	}
	if len(fields) == 0 {
		return nil
	}
	return s.profiles.Update(ctx, ownerID, fields)
}

// UploadAvatar 上传头像并把URL写回资料
func (s *ProfileService) UploadAvatar(ctx context.Context, ownerID, actorID, filename string, content io.Reader) (string, error) {
	if actorID != ownerID {
		return "", ErrInvalidOperation
	}

	url, err := s.files.Upload(ctx, "avatars", filename, content)
	if err != nil {
		return "", err
	}
	if err := s.profiles.Update(ctx, ownerID, store.Document{"profile_pic_url": url}); err != nil {
		return "", err
	}
	return url, nil
}

// Search 按名字或邮箱子串搜索用户（好友搜索面）
// 过滤在客户端做，存储契约不提供子串匹配
func (s *ProfileService) Search(ctx context.Context, query string, excludeID string) ([]*model.Profile, error) {
	all, err := s.profiles.All(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	matched := make([]*model.Profile, 0, len(all))
	for _, p := range all {
		if p.ID == excludeID {
			continue
		}
		if query == "" ||
			strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.Surname), query) ||
			strings.Contains(strings.ToLower(p.Email), query) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// WatchProfile 订阅单个资料的实时变化
// 存储契约不支持按文档ID订阅，订阅整个集合后在客户端按ID过滤
func (s *ProfileService) WatchProfile(ctx context.Context, id string) (<-chan *model.Profile, func(), error) {
	sub, err := s.profiles.SubscribeAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan *model.Profile, 1)
	go func() {
		defer close(out)
		for snapshot := range sub.C() {
			for _, doc := range snapshot {
				if doc.ID != id {
					continue
				}
				if p, err := model.DecodeProfile(doc); err == nil {
					deliverLatest(out, p, sub.Done())
				}
				break
			}
		}
	}()
	return out, sub.Cancel, nil
}

func setIf(fields store.Document, key string, value *string) {
	if value != nil {
		fields[key] = *value
	}
}
