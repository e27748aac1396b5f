package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"social-system/config"

	"github.com/google/uuid"
)

// Storage 二进制对象存储（头像等用户上传文件）
// 上传返回可直接放进 <img src> 的公网URL
type Storage interface {
	Upload(ctx context.Context, dir, filename string, content io.Reader) (string, error)
}

// Local 本地磁盘存储实现
type Local struct {
	rootDir string
	baseURL string
}

// NewLocal 创建本地存储实例
func NewLocal(cfg config.StorageConfig) (*Local, error) {
	if err := os.MkdirAll(cfg.RootDir, 0755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %w", err)
	}
	return &Local{
		rootDir: cfg.RootDir,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// Upload 保存文件并返回访问URL
// 文件名加随机前缀，同名上传互不覆盖
func (l *Local) Upload(ctx context.Context, dir, filename string, content io.Reader) (string, error) {
	// 丢弃调用方路径，防止目录穿越
	filename = filepath.Base(filename)
	stored := uuid.NewString() + "_" + filename

	targetDir := filepath.Join(l.rootDir, dir)
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return "", fmt.Errorf("创建存储子目录失败: %w", err)
	}

	f, err := os.Create(filepath.Join(targetDir, stored))
	if err != nil {
		return "", fmt.Errorf("创建存储文件失败: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		return "", fmt.Errorf("写入存储文件失败: %w", err)
	}

	return l.baseURL + "/" + path.Join(dir, stored), nil
}

// RootDir 本地存储根目录（静态文件路由挂载用）
func (l *Local) RootDir() string {
	return l.rootDir
}
