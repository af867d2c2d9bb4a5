package repository

import (
	"context"
	"errors"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateClerkID is returned when an insert loses the provisioning
// race; the unique constraint on clerk_id is the source of truth.
var ErrDuplicateClerkID = errors.New("clerk id already exists")

const pgUniqueViolation = "23505"

type UserRepository interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByClerkID(ctx context.Context, clerkID string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdateUser(ctx context.Context, clerkID string, profile model.UserProfile) (*model.User, error)
	DeleteUser(ctx context.Context, clerkID string) (*model.User, error)
	// AddCredits atomically adjusts the balance by delta (negative for a
	// debit) and returns the updated user. No overdraft check here.
	AddCredits(ctx context.Context, userID string, delta int) (*model.User, error)
}

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepo{pool: pool}
}

const userColumns = `id, clerk_id, email, username, first_name, last_name, photo, credit_balance, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.ClerkID, &u.Email, &u.Username, &u.FirstName,
		&u.LastName, &u.Photo, &u.CreditBalance, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) CreateUser(ctx context.Context, u *model.User) error {
	query := `INSERT INTO users (clerk_id, email, username, first_name, last_name, photo, credit_balance)
              VALUES ($1, $2, $3, $4, $5, $6, $7)
              RETURNING ` + userColumns
	created, err := scanUser(r.pool.QueryRow(ctx, query,
		u.ClerkID, u.Email, u.Username, u.FirstName, u.LastName, u.Photo, u.CreditBalance))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateClerkID
		}
		return fmt.Errorf("creating user: %w", err)
	}
	*u = *created
	return nil
}

func (r *userRepo) GetUserByClerkID(ctx context.Context, clerkID string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE clerk_id = $1`
	u, err := scanUser(r.pool.QueryRow(ctx, query, clerkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying user by clerk id: %w", err)
	}
	return u, nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying user by id: %w", err)
	}
	return u, nil
}

func (r *userRepo) UpdateUser(ctx context.Context, clerkID string, profile model.UserProfile) (*model.User, error) {
	query := `UPDATE users
              SET email = $2, username = $3, first_name = $4, last_name = $5, photo = $6, updated_at = now()
              WHERE clerk_id = $1
              RETURNING ` + userColumns
	u, err := scanUser(r.pool.QueryRow(ctx, query,
		clerkID, profile.Email, profile.Username, profile.FirstName, profile.LastName, profile.Photo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("updating user %s: %w", clerkID, err)
	}
	return u, nil
}

func (r *userRepo) DeleteUser(ctx context.Context, clerkID string) (*model.User, error) {
	query := `DELETE FROM users WHERE clerk_id = $1 RETURNING ` + userColumns
	u, err := scanUser(r.pool.QueryRow(ctx, query, clerkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("deleting user %s: %w", clerkID, err)
	}
	return u, nil
}

func (r *userRepo) AddCredits(ctx context.Context, userID string, delta int) (*model.User, error) {
	query := `UPDATE users
              SET credit_balance = credit_balance + $2, updated_at = now()
              WHERE id = $1
              RETURNING ` + userColumns
	u, err := scanUser(r.pool.QueryRow(ctx, query, userID, delta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("adjusting credits for user %s: %w", userID, err)
	}
	return u, nil
}
