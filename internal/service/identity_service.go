package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"social-system/internal/model"
	"social-system/internal/repository"
	"social-system/pkg/jwt"
	"social-system/pkg/password"
	"social-system/pkg/store"

	"github.com/google/uuid"
)

// 身份认证错误
var (
	ErrIdentifierTaken    = errors.New("username or email already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// IdentityService 身份提供方的本地实现
// 支持注册/登录/匿名会话三种入口，会话建立时惰性创建用户资料，
// 对外只暴露经认证的窄身份视图和访问令牌
type IdentityService struct {
	accounts   *repository.AccountRepository
	profiles   *ProfileService
	jwtService *jwt.JWTService
}

// NewIdentityService 创建IdentityService实例
func NewIdentityService(accounts *repository.AccountRepository, profiles *ProfileService, jwtService *jwt.JWTService) *IdentityService {
	return &IdentityService{accounts: accounts, profiles: profiles, jwtService: jwtService}
}

// Register 注册账号并建立会话
// 用户名或邮箱已被占用返回 ErrIdentifierTaken
// 占用检查与写入之间无原子性，与整库的先查后写策略一致
func (s *IdentityService) Register(ctx context.Context, username, email, plainPassword string) (model.Identity, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || plainPassword == "" {
		return model.Identity{}, "", ErrInvalidOperation
	}
	if err := password.Validate(plainPassword); err != nil {
		return model.Identity{}, "", ErrWeakPassword
	}

	for _, identifier := range []string{username, email} {
		if identifier == "" {
			continue
		}
		taken, err := s.accounts.ExistsByIdentifier(ctx, identifier)
		if err != nil {
			return model.Identity{}, "", err
		}
		if taken {
			return model.Identity{}, "", ErrIdentifierTaken
		}
	}

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return model.Identity{}, "", err
	}

	account := &model.Account{
		Email:        email,
		Username:     username,
		DisplayName:  username,
		PasswordHash: hash,
	}
	id, err := s.accounts.Create(ctx, account)
	if err != nil {
		return model.Identity{}, "", err
	}
	account.ID = id

	return s.openSession(ctx, account)
}

// Login 用户名或邮箱登录
// 账号不存在与密码错误统一返回 ErrInvalidCredentials，不泄露账号存在性
func (s *IdentityService) Login(ctx context.Context, identifier, plainPassword string) (model.Identity, string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || plainPassword == "" {
		return model.Identity{}, "", ErrInvalidOperation
	}

	account, err := s.accounts.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Identity{}, "", ErrInvalidCredentials
		}
		return model.Identity{}, "", err
	}
	if account.IsAnonymous || !password.Verify(plainPassword, account.PasswordHash) {
		return model.Identity{}, "", ErrInvalidCredentials
	}

	return s.openSession(ctx, account)
}

// Anonymous 建立匿名会话
// 每次调用创建一个全新的匿名账号，匿名身份之间互不关联
// ID在本地预生成，使访客展示名能随文档一起写入
func (s *IdentityService) Anonymous(ctx context.Context) (model.Identity, string, error) {
	id := uuid.NewString()
	account := &model.Account{
		ID:          id,
		DisplayName: fmt.Sprintf("Guest-%s", shortID(id)),
		IsAnonymous: true,
	}
	if err := s.accounts.Set(ctx, id, account); err != nil {
		return model.Identity{}, "", err
	}

	return s.openSession(ctx, account)
}

// openSession 会话建立的公共路径：惰性创建资料 + 签发令牌
func (s *IdentityService) openSession(ctx context.Context, account *model.Account) (model.Identity, string, error) {
	identity := account.Identity()

	if _, err := s.profiles.EnsureProfile(ctx, identity); err != nil {
		return model.Identity{}, "", err
	}

	token, err := s.jwtService.GenerateToken(identity.ID, map[string]interface{}{
		"name":      identity.DisplayName,
		"anonymous": identity.IsAnonymous,
	})
	if err != nil {
		return model.Identity{}, "", err
	}
	return identity, token, nil
}

// shortID 匿名展示名用的ID短后缀
func shortID(id string) string {
	if len(id) <= 6 {
		return id
	}
	return id[len(id)-6:]
}
