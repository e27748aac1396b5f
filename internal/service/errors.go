package service

import "errors"

// 校验类错误：写入前本地检出，同步返回给调用方，不重试
var (
	ErrInvalidOperation = errors.New("invalid operation")
	ErrEmptyContent     = errors.New("post content is empty")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrInvalidScore     = errors.New("score must be between 1 and 5")
	ErrSelfRating       = errors.New("cannot rate yourself")
	ErrWeakPassword     = errors.New("password is too short")
)

// 冲突类错误：写前存在性查询检出，作为被拒绝的操作返回，不自动重试
// 查与写之间没有跨客户端原子性，属尽力而为的查重（已知竞态窗口）
var (
	ErrDuplicateRequest = errors.New("friend request already exists")
	ErrAlreadyFriends   = errors.New("already friends")
	ErrDuplicateRating  = errors.New("already rated this user")
)

// IsValidation 是否为校验类错误
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidOperation) ||
		errors.Is(err, ErrEmptyContent) ||
		errors.Is(err, ErrEmptyMessage) ||
		errors.Is(err, ErrInvalidScore) ||
		errors.Is(err, ErrSelfRating) ||
		errors.Is(err, ErrWeakPassword)
}

// IsConflict 是否为冲突类错误
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateRequest) ||
		errors.Is(err, ErrAlreadyFriends) ||
		errors.Is(err, ErrDuplicateRating) ||
		errors.Is(err, ErrIdentifierTaken)
}
