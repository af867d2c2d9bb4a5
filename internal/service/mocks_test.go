package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"app/internal/media"
	"app/internal/model"
	"app/internal/repository"
	"app/internal/transform"
)

// mockUserRepo implements repository.UserRepository with per-method hooks.
type mockUserRepo struct {
	createUserFunc       func(ctx context.Context, u *model.User) error
	getUserByClerkIDFunc func(ctx context.Context, clerkID string) (*model.User, error)
	getUserByIDFunc      func(ctx context.Context, id string) (*model.User, error)
	updateUserFunc       func(ctx context.Context, clerkID string, profile model.UserProfile) (*model.User, error)
	deleteUserFunc       func(ctx context.Context, clerkID string) (*model.User, error)
	addCreditsFunc       func(ctx context.Context, userID string, delta int) (*model.User, error)
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u *model.User) error {
	if m.createUserFunc != nil {
		return m.createUserFunc(ctx, u)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepo) GetUserByClerkID(ctx context.Context, clerkID string) (*model.User, error) {
	if m.getUserByClerkIDFunc != nil {
		return m.getUserByClerkIDFunc(ctx, clerkID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if m.getUserByIDFunc != nil {
		return m.getUserByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepo) UpdateUser(ctx context.Context, clerkID string, profile model.UserProfile) (*model.User, error) {
	if m.updateUserFunc != nil {
		return m.updateUserFunc(ctx, clerkID, profile)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepo) DeleteUser(ctx context.Context, clerkID string) (*model.User, error) {
	if m.deleteUserFunc != nil {
		return m.deleteUserFunc(ctx, clerkID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepo) AddCredits(ctx context.Context, userID string, delta int) (*model.User, error) {
	if m.addCreditsFunc != nil {
		return m.addCreditsFunc(ctx, userID, delta)
	}
	return nil, errors.New("not implemented")
}

// mockImageRepo implements repository.ImageRepository with per-method hooks.
type mockImageRepo struct {
	createImageFunc  func(ctx context.Context, img *model.Image) error
	updateImageFunc  func(ctx context.Context, img *model.Image) error
	getImageByIDFunc func(ctx context.Context, id string) (*model.Image, error)
	deleteImageFunc  func(ctx context.Context, id string) error
	listImagesFunc   func(ctx context.Context, filter repository.ImageFilter, limit, offset int) ([]model.Image, error)
	countImagesFunc  func(ctx context.Context, filter repository.ImageFilter) (int, error)
}

func (m *mockImageRepo) CreateImage(ctx context.Context, img *model.Image) error {
	if m.createImageFunc != nil {
		return m.createImageFunc(ctx, img)
	}
	return errors.New("not implemented")
}

func (m *mockImageRepo) UpdateImage(ctx context.Context, img *model.Image) error {
	if m.updateImageFunc != nil {
		return m.updateImageFunc(ctx, img)
	}
	return errors.New("not implemented")
}

func (m *mockImageRepo) GetImageByID(ctx context.Context, id string) (*model.Image, error) {
	if m.getImageByIDFunc != nil {
		return m.getImageByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockImageRepo) DeleteImage(ctx context.Context, id string) error {
	if m.deleteImageFunc != nil {
		return m.deleteImageFunc(ctx, id)
	}
	return errors.New("not implemented")
}

func (m *mockImageRepo) ListImages(ctx context.Context, filter repository.ImageFilter, limit, offset int) ([]model.Image, error) {
	if m.listImagesFunc != nil {
		return m.listImagesFunc(ctx, filter, limit, offset)
	}
	return nil, errors.New("not implemented")
}

func (m *mockImageRepo) CountImages(ctx context.Context, filter repository.ImageFilter) (int, error) {
	if m.countImagesFunc != nil {
		return m.countImagesFunc(ctx, filter)
	}
	return 0, errors.New("not implemented")
}

// mockMedia implements media.Service with per-method hooks.
type mockMedia struct {
	uploadFunc            func(ctx context.Context, file io.Reader, filename string) (*media.Asset, error)
	searchPublicIDsFunc   func(ctx context.Context, query string) ([]string, error)
	transformationURLFunc func(publicID string, width, height int, cfg transform.Config) (string, error)
}

func (m *mockMedia) Upload(ctx context.Context, file io.Reader, filename string) (*media.Asset, error) {
	if m.uploadFunc != nil {
		return m.uploadFunc(ctx, file, filename)
	}
	return nil, errors.New("not implemented")
}

func (m *mockMedia) SearchPublicIDs(ctx context.Context, query string) ([]string, error) {
	if m.searchPublicIDsFunc != nil {
		return m.searchPublicIDsFunc(ctx, query)
	}
	return nil, errors.New("not implemented")
}

func (m *mockMedia) TransformationURL(publicID string, width, height int, cfg transform.Config) (string, error) {
	if m.transformationURLFunc != nil {
		return m.transformationURLFunc(publicID, width, height, cfg)
	}
	return "https://res.example.com/" + publicID, nil
}

// memCache is an in-memory cache.PageCache recording invalidated prefixes.
type memCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated []string
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.entries[key]; ok {
		return v, nil
	}
	return nil, errors.New("cache miss")
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, prefix)
	for k := range c.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.entries, k)
		}
	}
	return nil
}
