package service

import (
	"context"
	"errors"
	"fmt"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrImageNotFound       = errors.New("image not found")
	ErrUnauthorized        = errors.New("not the owner of this image")
	ErrInsufficientCredits = errors.New("insufficient credit balance")
	ErrSessionNotFound     = errors.New("editing session not found")
)

// UserService is the identity bridge and credit ledger: it maps the
// identity provider's subject to a local row, provisions one on first
// sight, and adjusts the credit balance.
type UserService interface {
	// GetOrCreate provisions a user for the subject id if none exists.
	// Idempotent, including under concurrent calls: losing the insert
	// race falls back to re-reading the winner's row.
	GetOrCreate(ctx context.Context, clerkID string, profile model.UserProfile) (*model.User, error)
	GetByClerkID(ctx context.Context, clerkID string) (*model.User, error)
	GetByID(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, clerkID string, profile model.UserProfile) (*model.User, error)
	// Delete removes the user. Images are intentionally left behind.
	Delete(ctx context.Context, clerkID string) (*model.User, error)
	// Debit atomically adjusts the balance by delta (negative to spend)
	// and returns the updated user. It enforces no overdraft protection;
	// sufficiency checks are the caller's concern.
	Debit(ctx context.Context, userID string, delta int) (*model.User, error)
}

type userService struct {
	repo            repository.UserRepository
	startingCredits int
	logger          zerolog.Logger
}

func NewUserService(repo repository.UserRepository, startingCredits int, logger zerolog.Logger) UserService {
	return &userService{
		repo:            repo,
		startingCredits: startingCredits,
		logger:          logger.With().Str("service", "UserService").Logger(),
	}
}

func (s *userService) GetOrCreate(ctx context.Context, clerkID string, profile model.UserProfile) (*model.User, error) {
	existing, err := s.repo.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	u := &model.User{
		ClerkID:       clerkID,
		Email:         profile.Email,
		Username:      profile.Username,
		FirstName:     profile.FirstName,
		LastName:      profile.LastName,
		Photo:         profile.Photo,
		CreditBalance: s.startingCredits,
	}
	err = s.repo.CreateUser(ctx, u)
	if err == nil {
		s.logger.Info().Str("clerk_id", clerkID).Str("user_id", u.ID).Msg("Provisioned new user")
		return u, nil
	}
	if !errors.Is(err, repository.ErrDuplicateClerkID) {
		return nil, err
	}

	// Lost the provisioning race: the unique constraint tells us someone
	// else created the row, so return theirs.
	winner, err := s.repo.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		return nil, fmt.Errorf("user vanished after duplicate-key conflict for clerk id %s", clerkID)
	}
	return winner, nil
}

func (s *userService) GetByClerkID(ctx context.Context, clerkID string) (*model.User, error) {
	u, err := s.repo.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *userService) UpdateProfile(ctx context.Context, clerkID string, profile model.UserProfile) (*model.User, error) {
	u, err := s.repo.UpdateUser(ctx, clerkID, profile)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *userService) Delete(ctx context.Context, clerkID string) (*model.User, error) {
	u, err := s.repo.DeleteUser(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	s.logger.Info().Str("clerk_id", clerkID).Msg("Deleted user account")
	return u, nil
}

func (s *userService) Debit(ctx context.Context, userID string, delta int) (*model.User, error) {
	u, err := s.repo.AddCredits(ctx, userID, delta)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
