package service

import (
	"context"
	"sync"
	"time"

	"app/internal/media"
	"app/internal/model"
	"app/internal/transform"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EditSession is one user's in-progress transformation flow: the state
// machine plus the asset it operates on and, for the update flow, the image
// row it will overwrite on save.
type EditSession struct {
	ID        string
	UserID    string
	ImageID   string
	PublicID  string
	Width     int
	Height    int
	SecureURL string

	Session *transform.Session

	createdAt time.Time
}

// SaveInput carries the form fields submitted with a save.
type SaveInput struct {
	Title       string
	AspectRatio string
	Prompt      string
	Color       string
}

// StartInput describes the asset an editing session operates on. ImageID is
// set when editing an already-saved image; its stored config becomes the
// session's persisted baseline.
type StartInput struct {
	Type      transform.Type
	ImageID   string
	PublicID  string
	Width     int
	Height    int
	SecureURL string
}

// TransformationService owns editing sessions and coordinates the apply
// (config merge + credit debit) and save (image persistence) flows.
type TransformationService interface {
	Start(ctx context.Context, userID string, in StartInput) (*EditSession, error)
	Get(ctx context.Context, userID, sessionID string) (*EditSession, error)
	SetField(ctx context.Context, userID, sessionID, field, value string) (*EditSession, error)
	// Apply merges pending edits into the applied config and debits the
	// fee. The merge is kept even when the debit fails; the two
	// operations are not transactionally coupled.
	Apply(ctx context.Context, userID, sessionID string) (*EditSession, *model.User, error)
	Reset(ctx context.Context, userID, sessionID string) (*EditSession, error)
	// Save persists the applied config as an Image row (create or, when
	// the session was started from an existing image, update).
	Save(ctx context.Context, userID, sessionID string, in SaveInput) (*model.Image, error)
}

type transformationService struct {
	users    UserService
	images   ImageService
	media    media.Service
	fee      int
	debounce time.Duration
	ttl      time.Duration
	logger   zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*EditSession
}

func NewTransformationService(
	users UserService,
	images ImageService,
	mediaSvc media.Service,
	creditFee int,
	debounce, sessionTTL time.Duration,
	logger zerolog.Logger,
) TransformationService {
	return &transformationService{
		users:    users,
		images:   images,
		media:    mediaSvc,
		fee:      creditFee,
		debounce: debounce,
		ttl:      sessionTTL,
		logger:   logger.With().Str("service", "TransformationService").Logger(),
		sessions: map[string]*EditSession{},
	}
}

func (s *transformationService) Start(ctx context.Context, userID string, in StartInput) (*EditSession, error) {
	persisted := transform.Config{}
	if in.ImageID != "" {
		img, err := s.images.GetByID(ctx, in.ImageID)
		if err != nil {
			return nil, err
		}
		if img.AuthorID != userID {
			return nil, ErrUnauthorized
		}
		persisted = img.Config
		if in.PublicID == "" {
			in.PublicID = img.PublicID
			in.Width = img.Width
			in.Height = img.Height
			in.SecureURL = img.SecureURL
		}
	}

	es := &EditSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		ImageID:   in.ImageID,
		PublicID:  in.PublicID,
		Width:     in.Width,
		Height:    in.Height,
		SecureURL: in.SecureURL,
		Session:   transform.NewSession(in.Type, persisted, s.debounce),
		createdAt: time.Now(),
	}

	s.mu.Lock()
	s.expireLocked()
	s.sessions[es.ID] = es
	s.mu.Unlock()

	return es, nil
}

func (s *transformationService) Get(ctx context.Context, userID, sessionID string) (*EditSession, error) {
	return s.lookup(userID, sessionID)
}

func (s *transformationService) SetField(ctx context.Context, userID, sessionID, field, value string) (*EditSession, error) {
	es, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := es.Session.SetField(field, value); err != nil {
		return nil, err
	}
	return es, nil
}

func (s *transformationService) Apply(ctx context.Context, userID, sessionID string) (*EditSession, *model.User, error) {
	es, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, nil, err
	}

	// Sufficiency gate before spending. The debit itself enforces
	// nothing, so a concurrent apply can still drive the balance
	// negative between this read and the update.
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user.CreditBalance < s.fee {
		return nil, nil, ErrInsufficientCredits
	}

	var updated *model.User
	applyErr := es.Session.Apply(func(cfg transform.Config) error {
		u, err := s.users.Debit(ctx, userID, -s.fee)
		if err != nil {
			return err
		}
		updated = u
		return nil
	})
	if applyErr != nil {
		s.logger.Warn().Err(applyErr).Str("session_id", sessionID).Msg("Apply completed with error")
		return es, updated, applyErr
	}
	return es, updated, nil
}

func (s *transformationService) Reset(ctx context.Context, userID, sessionID string) (*EditSession, error) {
	es, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	es.Session.Reset()
	return es, nil
}

func (s *transformationService) Save(ctx context.Context, userID, sessionID string, in SaveInput) (*model.Image, error) {
	es, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}

	var saved *model.Image
	persistErr := es.Session.Save(func(cfg transform.Config) error {
		transformationURL, err := s.media.TransformationURL(es.PublicID, es.Width, es.Height, cfg)
		if err != nil {
			return err
		}

		img := &model.Image{
			ID:                 es.ImageID,
			Title:              in.Title,
			TransformationType: es.Session.Type(),
			PublicID:           es.PublicID,
			Width:              es.Width,
			Height:             es.Height,
			Config:             cfg,
			SecureURL:          es.SecureURL,
			TransformationURL:  transformationURL,
			AspectRatio:        in.AspectRatio,
			Prompt:             in.Prompt,
			Color:              in.Color,
		}

		if es.ImageID == "" {
			created, err := s.images.Create(ctx, img, userID)
			if err != nil {
				return err
			}
			es.ImageID = created.ID
			saved = created
			return nil
		}

		updated, err := s.images.Update(ctx, img, userID)
		if err != nil {
			return err
		}
		saved = updated
		return nil
	})
	if persistErr != nil {
		return nil, persistErr
	}
	return saved, nil
}

func (s *transformationService) lookup(userID, sessionID string) (*EditSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	es, ok := s.sessions[sessionID]
	if !ok || es.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return es, nil
}

// expireLocked drops sessions past their TTL. Caller holds mu.
func (s *transformationService) expireLocked() {
	cutoff := time.Now().Add(-s.ttl)
	for id, es := range s.sessions {
		if es.createdAt.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
