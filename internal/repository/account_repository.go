package repository

import (
	"context"

	"social-system/internal/model"
	"social-system/pkg/store"
)

// AccountRepository 账号仓储
type AccountRepository struct {
	store store.Store
}

// NewAccountRepository 创建AccountRepository实例
func NewAccountRepository(s store.Store) *AccountRepository {
	return &AccountRepository{store: s}
}

// Create 创建账号
func (r *AccountRepository) Create(ctx context.Context, account *model.Account) (string, error) {
	return r.store.Create(ctx, store.ColAccounts, account.ToDocument())
}

// Set 以调用方指定的ID写入账号
func (r *AccountRepository) Set(ctx context.Context, id string, account *model.Account) error {
	return r.store.Set(ctx, store.ColAccounts, id, account.ToDocument())
}

// GetByID 按ID读取账号
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*model.Account, error) {
	doc, err := r.store.Get(ctx, store.ColAccounts, id)
	if err != nil {
		return nil, err
	}
	return model.DecodeAccount(doc)
}

// FindByIdentifier 按用户名或邮箱查找账号，找不到返回 store.ErrNotFound
func (r *AccountRepository) FindByIdentifier(ctx context.Context, identifier string) (*model.Account, error) {
	for _, field := range []string{"username", "email"} {
		snapshot, err := r.store.Query(ctx, store.ColAccounts, []store.Filter{
			store.Eq(field, identifier),
		})
		if err != nil {
			return nil, err
		}
		if len(snapshot) > 0 {
			return model.DecodeAccount(snapshot[0])
		}
	}
	return nil, store.ErrNotFound
}

// ExistsByIdentifier 用户名或邮箱是否已被占用
func (r *AccountRepository) ExistsByIdentifier(ctx context.Context, identifier string) (bool, error) {
	_, err := r.FindByIdentifier(ctx, identifier)
	if err != nil {
		if err == store.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
