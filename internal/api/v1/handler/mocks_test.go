package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	"app/internal/media"
	"app/internal/middleware"
	"app/internal/model"
	"app/internal/service"
	"app/internal/transform"
)

// mockUserService implements service.UserService with per-method hooks.
type mockUserService struct {
	getOrCreateFunc   func(ctx context.Context, clerkID string, profile model.UserProfile) (*model.User, error)
	getByClerkIDFunc  func(ctx context.Context, clerkID string) (*model.User, error)
	getByIDFunc       func(ctx context.Context, userID string) (*model.User, error)
	updateProfileFunc func(ctx context.Context, clerkID string, profile model.UserProfile) (*model.User, error)
	deleteFunc        func(ctx context.Context, clerkID string) (*model.User, error)
	debitFunc         func(ctx context.Context, userID string, delta int) (*model.User, error)
}

func (m *mockUserService) GetOrCreate(ctx context.Context, clerkID string, profile model.UserProfile) (*model.User, error) {
	if m.getOrCreateFunc != nil {
		return m.getOrCreateFunc(ctx, clerkID, profile)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserService) GetByClerkID(ctx context.Context, clerkID string) (*model.User, error) {
	if m.getByClerkIDFunc != nil {
		return m.getByClerkIDFunc(ctx, clerkID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserService) GetByID(ctx context.Context, userID string) (*model.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, userID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserService) UpdateProfile(ctx context.Context, clerkID string, profile model.UserProfile) (*model.User, error) {
	if m.updateProfileFunc != nil {
		return m.updateProfileFunc(ctx, clerkID, profile)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserService) Delete(ctx context.Context, clerkID string) (*model.User, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, clerkID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserService) Debit(ctx context.Context, userID string, delta int) (*model.User, error) {
	if m.debitFunc != nil {
		return m.debitFunc(ctx, userID, delta)
	}
	return nil, errors.New("not implemented")
}

// mockImageService implements service.ImageService with per-method hooks.
type mockImageService struct {
	createFunc  func(ctx context.Context, img *model.Image, userID string) (*model.Image, error)
	updateFunc  func(ctx context.Context, img *model.Image, userID string) (*model.Image, error)
	getByIDFunc func(ctx context.Context, id string) (*model.Image, error)
	deleteFunc  func(ctx context.Context, id string) error
	listFunc    func(ctx context.Context, opts service.ListOptions) (*service.ListResult, error)
}

func (m *mockImageService) Create(ctx context.Context, img *model.Image, userID string) (*model.Image, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, img, userID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockImageService) Update(ctx context.Context, img *model.Image, userID string) (*model.Image, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, img, userID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockImageService) GetByID(ctx context.Context, id string) (*model.Image, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockImageService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return errors.New("not implemented")
}

func (m *mockImageService) List(ctx context.Context, opts service.ListOptions) (*service.ListResult, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, opts)
	}
	return nil, errors.New("not implemented")
}

// mockTransformationService implements service.TransformationService with
// per-method hooks.
type mockTransformationService struct {
	startFunc    func(ctx context.Context, userID string, in service.StartInput) (*service.EditSession, error)
	getFunc      func(ctx context.Context, userID, sessionID string) (*service.EditSession, error)
	setFieldFunc func(ctx context.Context, userID, sessionID, field, value string) (*service.EditSession, error)
	applyFunc    func(ctx context.Context, userID, sessionID string) (*service.EditSession, *model.User, error)
	resetFunc    func(ctx context.Context, userID, sessionID string) (*service.EditSession, error)
	saveFunc     func(ctx context.Context, userID, sessionID string, in service.SaveInput) (*model.Image, error)
}

func (m *mockTransformationService) Start(ctx context.Context, userID string, in service.StartInput) (*service.EditSession, error) {
	if m.startFunc != nil {
		return m.startFunc(ctx, userID, in)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTransformationService) Get(ctx context.Context, userID, sessionID string) (*service.EditSession, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, userID, sessionID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTransformationService) SetField(ctx context.Context, userID, sessionID, field, value string) (*service.EditSession, error) {
	if m.setFieldFunc != nil {
		return m.setFieldFunc(ctx, userID, sessionID, field, value)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTransformationService) Apply(ctx context.Context, userID, sessionID string) (*service.EditSession, *model.User, error) {
	if m.applyFunc != nil {
		return m.applyFunc(ctx, userID, sessionID)
	}
	return nil, nil, errors.New("not implemented")
}

func (m *mockTransformationService) Reset(ctx context.Context, userID, sessionID string) (*service.EditSession, error) {
	if m.resetFunc != nil {
		return m.resetFunc(ctx, userID, sessionID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTransformationService) Save(ctx context.Context, userID, sessionID string, in service.SaveInput) (*model.Image, error) {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, userID, sessionID, in)
	}
	return nil, errors.New("not implemented")
}

// mockMediaService implements media.Service with per-method hooks.
type mockMediaService struct {
	uploadFunc            func(ctx context.Context, file io.Reader, filename string) (*media.Asset, error)
	searchPublicIDsFunc   func(ctx context.Context, query string) ([]string, error)
	transformationURLFunc func(publicID string, width, height int, cfg transform.Config) (string, error)
}

func (m *mockMediaService) Upload(ctx context.Context, file io.Reader, filename string) (*media.Asset, error) {
	if m.uploadFunc != nil {
		return m.uploadFunc(ctx, file, filename)
	}
	return nil, errors.New("not implemented")
}

func (m *mockMediaService) SearchPublicIDs(ctx context.Context, query string) ([]string, error) {
	if m.searchPublicIDsFunc != nil {
		return m.searchPublicIDsFunc(ctx, query)
	}
	return nil, errors.New("not implemented")
}

func (m *mockMediaService) TransformationURL(publicID string, width, height int, cfg transform.Config) (string, error) {
	if m.transformationURLFunc != nil {
		return m.transformationURLFunc(publicID, width, height, cfg)
	}
	return "https://res.example.com/" + publicID, nil
}

// authed stamps the request context the way the auth middleware would.
func authed(r *http.Request, clerkID string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserContextKey, clerkID)
	return r.WithContext(ctx)
}

func doRequest(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}
