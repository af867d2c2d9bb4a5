package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"app/internal/cache"
	"app/internal/media"
	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

// ListOptions narrows and pages an image listing. AuthorID empty means all
// users. Page is 1-based; values below 1 are clamped to 1.
type ListOptions struct {
	AuthorID    string
	Page        int
	PageSize    int
	SearchQuery string
}

// ListResult is one page of images plus the totals the pager needs.
type ListResult struct {
	Data       []model.Image `json:"data"`
	Total      int           `json:"total"`
	TotalPages int           `json:"total_pages"`
	// SavedImages is the overall number of stored images, regardless of
	// filter. Only populated for the unfiltered listing.
	SavedImages int `json:"saved_images,omitempty"`
}

type ImageService interface {
	// Create inserts an image owned by userID; ErrUserNotFound when the
	// author does not exist.
	Create(ctx context.Context, img *model.Image, userID string) (*model.Image, error)
	// Update replaces the stored fields; ErrUnauthorized when userID is
	// not the stored author.
	Update(ctx context.Context, img *model.Image, userID string) (*model.Image, error)
	GetByID(ctx context.Context, id string) (*model.Image, error)
	// Delete removes by id without an ownership check, matching the
	// long-standing behavior callers rely on.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
}

type imageService struct {
	repo      repository.ImageRepository
	userRepo  repository.UserRepository
	media     media.Service
	pageCache cache.PageCache
	cacheTTL  time.Duration
	logger    zerolog.Logger
}

func NewImageService(
	repo repository.ImageRepository,
	userRepo repository.UserRepository,
	mediaSvc media.Service,
	pageCache cache.PageCache,
	ttl time.Duration,
	logger zerolog.Logger,
) ImageService {
	return &imageService{
		repo:      repo,
		userRepo:  userRepo,
		media:     mediaSvc,
		pageCache: pageCache,
		cacheTTL:  ttl,
		logger:    logger.With().Str("service", "ImageService").Logger(),
	}
}

func (s *imageService) Create(ctx context.Context, img *model.Image, userID string) (*model.Image, error) {
	author, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, ErrUserNotFound
	}

	img.AuthorID = author.ID
	if err := s.repo.CreateImage(ctx, img); err != nil {
		return nil, err
	}
	img.Author = author
	s.invalidatePages(ctx, author.ID)
	return img, nil
}

func (s *imageService) Update(ctx context.Context, img *model.Image, userID string) (*model.Image, error) {
	stored, err := s.repo.GetImageByID(ctx, img.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrImageNotFound
	}
	if stored.AuthorID != userID {
		return nil, ErrUnauthorized
	}

	img.AuthorID = stored.AuthorID
	if err := s.repo.UpdateImage(ctx, img); err != nil {
		return nil, err
	}
	img.Author = stored.Author
	img.CreatedAt = stored.CreatedAt
	s.invalidatePages(ctx, stored.AuthorID)
	return img, nil
}

func (s *imageService) GetByID(ctx context.Context, id string) (*model.Image, error) {
	img, err := s.repo.GetImageByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, ErrImageNotFound
	}
	return img, nil
}

func (s *imageService) Delete(ctx context.Context, id string) error {
	img, err := s.repo.GetImageByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteImage(ctx, id); err != nil {
		return err
	}
	if img != nil {
		s.invalidatePages(ctx, img.AuthorID)
	}
	return nil
}

func (s *imageService) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = 9
	}

	key := listCacheKey(opts)
	if raw, err := s.pageCache.Get(ctx, key); err == nil {
		var cached ListResult
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	filter := repository.ImageFilter{AuthorID: opts.AuthorID}
	if opts.SearchQuery != "" {
		ids, err := s.media.SearchPublicIDs(ctx, opts.SearchQuery)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			// Nothing matched upstream: an empty page, not an error.
			return &ListResult{Data: []model.Image{}, Total: 0, TotalPages: 0}, nil
		}
		filter.PublicIDs = ids
	}

	offset := (opts.Page - 1) * opts.PageSize
	images, err := s.repo.ListImages(ctx, filter, opts.PageSize, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountImages(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := &ListResult{
		Data:       images,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(opts.PageSize))),
	}
	if result.Data == nil {
		result.Data = []model.Image{}
	}
	if opts.AuthorID == "" {
		saved, err := s.repo.CountImages(ctx, repository.ImageFilter{})
		if err != nil {
			return nil, err
		}
		result.SavedImages = saved
	}

	if raw, err := json.Marshal(result); err == nil {
		if err := s.pageCache.Set(ctx, key, raw, s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to cache list page")
		}
	}
	return result, nil
}

// invalidatePages drops cached list pages affected by a mutation: the
// global listing and the author's own. A failed invalidation is logged and
// otherwise ignored; the TTL bounds staleness.
func (s *imageService) invalidatePages(ctx context.Context, authorID string) {
	if err := s.pageCache.InvalidatePrefix(ctx, "images:all:"); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to invalidate global image pages")
	}
	if err := s.pageCache.InvalidatePrefix(ctx, "images:user:"+authorID+":"); err != nil {
		s.logger.Warn().Err(err).Str("author", authorID).Msg("Failed to invalidate user image pages")
	}
}

func listCacheKey(opts ListOptions) string {
	scope := "all"
	if opts.AuthorID != "" {
		scope = "user:" + opts.AuthorID
	}
	qhash := ""
	if opts.SearchQuery != "" {
		sum := sha1.Sum([]byte(opts.SearchQuery))
		qhash = hex.EncodeToString(sum[:8])
	}
	return fmt.Sprintf("images:%s:p%d:s%d:q%s", scope, opts.Page, opts.PageSize, qhash)
}
