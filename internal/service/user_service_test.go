package service

import (
	"context"
	"sync"
	"testing"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	profile := model.UserProfile{
		Email:     "ada@example.com",
		Username:  "ada",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}

	t.Run("ReturnsExistingUser", func(t *testing.T) {
		existing := &model.User{ID: "u1", ClerkID: "clerk_1", CreditBalance: 4}
		repo := &mockUserRepo{
			getUserByClerkIDFunc: func(ctx context.Context, clerkID string) (*model.User, error) {
				assert.Equal(t, "clerk_1", clerkID)
				return existing, nil
			},
			createUserFunc: func(ctx context.Context, u *model.User) error {
				t.Fatal("create must not be called when the user exists")
				return nil
			},
		}
		svc := NewUserService(repo, 10, zerolog.Nop())

		got, err := svc.GetOrCreate(ctx, "clerk_1", profile)
		require.NoError(t, err)
		assert.Same(t, existing, got)
	})

	t.Run("ProvisionsWithStartingCredits", func(t *testing.T) {
		repo := &mockUserRepo{
			getUserByClerkIDFunc: func(ctx context.Context, clerkID string) (*model.User, error) {
				return nil, nil
			},
			createUserFunc: func(ctx context.Context, u *model.User) error {
				u.ID = "u2"
				return nil
			},
		}
		svc := NewUserService(repo, 10, zerolog.Nop())

		got, err := svc.GetOrCreate(ctx, "clerk_2", profile)
		require.NoError(t, err)
		assert.Equal(t, "u2", got.ID)
		assert.Equal(t, "clerk_2", got.ClerkID)
		assert.Equal(t, "ada@example.com", got.Email)
		assert.Equal(t, 10, got.CreditBalance)
	})

	t.Run("LostRaceReturnsWinner", func(t *testing.T) {
		winner := &model.User{ID: "u3", ClerkID: "clerk_3"}
		calls := 0
		repo := &mockUserRepo{
			getUserByClerkIDFunc: func(ctx context.Context, clerkID string) (*model.User, error) {
				calls++
				if calls == 1 {
					// Not there yet when we first look.
					return nil, nil
				}
				return winner, nil
			},
			createUserFunc: func(ctx context.Context, u *model.User) error {
				return repository.ErrDuplicateClerkID
			},
		}
		svc := NewUserService(repo, 10, zerolog.Nop())

		got, err := svc.GetOrCreate(ctx, "clerk_3", profile)
		require.NoError(t, err)
		assert.Same(t, winner, got)
		assert.Equal(t, 2, calls)
	})

	t.Run("IdempotentUnderConcurrency", func(t *testing.T) {
		var mu sync.Mutex
		var stored *model.User
		repo := &mockUserRepo{
			getUserByClerkIDFunc: func(ctx context.Context, clerkID string) (*model.User, error) {
				mu.Lock()
				defer mu.Unlock()
				return stored, nil
			},
			createUserFunc: func(ctx context.Context, u *model.User) error {
				mu.Lock()
				defer mu.Unlock()
				if stored != nil {
					return repository.ErrDuplicateClerkID
				}
				u.ID = "u4"
				stored = u
				return nil
			},
		}
		svc := NewUserService(repo, 10, zerolog.Nop())

		const callers = 8
		results := make([]*model.User, callers)
		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				u, err := svc.GetOrCreate(ctx, "clerk_4", profile)
				assert.NoError(t, err)
				results[i] = u
			}(i)
		}
		wg.Wait()

		for _, u := range results {
			require.NotNil(t, u)
			assert.Equal(t, "u4", u.ID)
		}
	})
}

func TestUserService_GetByClerkID(t *testing.T) {
	ctx := context.Background()

	t.Run("NotFound", func(t *testing.T) {
		repo := &mockUserRepo{
			getUserByClerkIDFunc: func(ctx context.Context, clerkID string) (*model.User, error) {
				return nil, nil
			},
		}
		svc := NewUserService(repo, 10, zerolog.Nop())

		_, err := svc.GetByClerkID(ctx, "clerk_missing")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserService_Debit(t *testing.T) {
	ctx := context.Background()

	t.Run("PassesDeltaThrough", func(t *testing.T) {
		repo := &mockUserRepo{
			addCreditsFunc: func(ctx context.Context, userID string, delta int) (*model.User, error) {
				assert.Equal(t, "u1", userID)
				assert.Equal(t, -1, delta)
				return &model.User{ID: userID, CreditBalance: 9}, nil
			},
		}
		svc := NewUserService(repo, 10, zerolog.Nop())

		u, err := svc.Debit(ctx, "u1", -1)
		require.NoError(t, err)
		assert.Equal(t, 9, u.CreditBalance)
	})

	t.Run("NoOverdraftGuard", func(t *testing.T) {
		balance := 1
		repo := &mockUserRepo{
			addCreditsFunc: func(ctx context.Context, userID string, delta int) (*model.User, error) {
				balance += delta
				return &model.User{ID: userID, CreditBalance: balance}, nil
			},
		}
		svc := NewUserService(repo, 10, zerolog.Nop())

		_, err := svc.Debit(ctx, "u1", -1)
		require.NoError(t, err)
		u, err := svc.Debit(ctx, "u1", -1)
		require.NoError(t, err)
		assert.Equal(t, -1, u.CreditBalance)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		repo := &mockUserRepo{
			addCreditsFunc: func(ctx context.Context, userID string, delta int) (*model.User, error) {
				return nil, nil
			},
		}
		svc := NewUserService(repo, 10, zerolog.Nop())

		_, err := svc.Debit(ctx, "nope", -1)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("ConcurrentDebitsAllLand", func(t *testing.T) {
		var mu sync.Mutex
		balance := 100
		repo := &mockUserRepo{
			addCreditsFunc: func(ctx context.Context, userID string, delta int) (*model.User, error) {
				mu.Lock()
				defer mu.Unlock()
				balance += delta
				return &model.User{ID: userID, CreditBalance: balance}, nil
			},
		}
		svc := NewUserService(repo, 10, zerolog.Nop())

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Debit(ctx, "u1", -1)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
		assert.Equal(t, 80, balance)
	})
}
