package service

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"social-system/internal/model"
	"social-system/internal/repository"
	"social-system/pkg/store/memstore"
)

// fakeStorage 测试用对象存储：不落盘，只返回可预测的URL
type fakeStorage struct {
	uploads int
}

func (f *fakeStorage) Upload(ctx context.Context, dir, filename string, content io.Reader) (string, error) {
	f.uploads++
	_, _ = io.Copy(io.Discard, content)
	return fmt.Sprintf("/static/uploads/%s/%d_%s", dir, f.uploads, filename), nil
}

// testEnv 全套服务跑在内存存储上
type testEnv struct {
	store    *memstore.Store
	files    *fakeStorage
	profiles *ProfileService
	friends  *FriendService
	wall     *WallService
	chat     *ChatService
	ratings  *RatingService
	brands   *BrandService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := memstore.New()
	files := &fakeStorage{}

	profileRepo := repository.NewProfileRepository(st)
	profiles := NewProfileService(profileRepo, files)

	return &testEnv{
		store:    st,
		files:    files,
		profiles: profiles,
		friends:  NewFriendService(repository.NewFriendRepository(st), profileRepo),
		wall:     NewWallService(repository.NewWallRepository(st)),
		chat:     NewChatService(repository.NewChatRepository(st)),
		ratings:  NewRatingService(repository.NewRatingRepository(st)),
		brands:   NewBrandService(repository.NewBrandRepository(st)),
	}
}

// addProfile 直接写入一份资料
func (e *testEnv) addProfile(t *testing.T, id, name string) {
	t.Helper()
	p := &model.Profile{ID: id, Email: id + "@example.com", Name: name}
	if err := e.profiles.profiles.Create(context.Background(), id, p); err != nil {
		t.Fatalf("创建测试资料失败: %v", err)
	}
}

// countDocs 统计集合文档数
func (e *testEnv) countDocs(t *testing.T, collection string) int {
	t.Helper()
	snapshot, err := e.store.Query(context.Background(), collection, nil)
	if err != nil {
		t.Fatalf("查询集合 %s 失败: %v", collection, err)
	}
	return len(snapshot)
}

// recvUntil 在超时内从订阅通道读帧，直到断言函数满足
func recvUntil[T any](t *testing.T, ch <-chan T, ok func(T) bool) T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case v, open := <-ch:
			if !open {
				t.Fatalf("订阅通道被提前关闭")
			}
			if ok(v) {
				return v
			}
		case <-deadline:
			t.Fatalf("等待订阅推送超时")
		}
	}
}
