package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"app/internal/model"
	"app/internal/transform"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ImageFilter narrows a listing. AuthorID limits rows to one owner;
// PublicIDs, when non-nil, limits rows to the given asset identifiers.
type ImageFilter struct {
	AuthorID  string
	PublicIDs []string
}

type ImageRepository interface {
	CreateImage(ctx context.Context, img *model.Image) error
	UpdateImage(ctx context.Context, img *model.Image) error
	// GetImageByID returns the image with its author joined, or nil when
	// no row matches.
	GetImageByID(ctx context.Context, id string) (*model.Image, error)
	DeleteImage(ctx context.Context, id string) error
	ListImages(ctx context.Context, filter ImageFilter, limit, offset int) ([]model.Image, error)
	CountImages(ctx context.Context, filter ImageFilter) (int, error)
}

type imageRepo struct {
	pool *pgxpool.Pool
}

func NewImageRepo(pool *pgxpool.Pool) ImageRepository {
	return &imageRepo{pool: pool}
}

const imageColumns = `i.id, i.title, i.author, i.transformation_type, i.public_id, i.width, i.height,
	i.config, i.secure_url, i.transformation_url, i.aspect_ratio, i.prompt, i.color, i.created_at, i.updated_at`

const authorColumns = `u.id, u.clerk_id, u.email, u.username, u.first_name, u.last_name, u.photo, u.credit_balance, u.created_at, u.updated_at`

// nullableAuthor receives the left-joined user columns; every field is nil
// for an image whose author account was deleted.
type nullableAuthor struct {
	ID            *string
	ClerkID       *string
	Email         *string
	Username      *string
	FirstName     *string
	LastName      *string
	Photo         *string
	CreditBalance *int
	CreatedAt     *time.Time
	UpdatedAt     *time.Time
}

func (a *nullableAuthor) user() *model.User {
	if a.ID == nil {
		return nil
	}
	return &model.User{
		ID:            *a.ID,
		ClerkID:       *a.ClerkID,
		Email:         *a.Email,
		Username:      *a.Username,
		FirstName:     *a.FirstName,
		LastName:      *a.LastName,
		Photo:         *a.Photo,
		CreditBalance: *a.CreditBalance,
		CreatedAt:     *a.CreatedAt,
		UpdatedAt:     *a.UpdatedAt,
	}
}

func scanImage(row pgx.Row, withAuthor bool) (*model.Image, error) {
	var (
		img    model.Image
		cfgRaw []byte
		dest   []any
	)
	dest = append(dest,
		&img.ID, &img.Title, &img.AuthorID, &img.TransformationType, &img.PublicID,
		&img.Width, &img.Height, &cfgRaw, &img.SecureURL, &img.TransformationURL,
		&img.AspectRatio, &img.Prompt, &img.Color, &img.CreatedAt, &img.UpdatedAt)

	var author nullableAuthor
	if withAuthor {
		dest = append(dest,
			&author.ID, &author.ClerkID, &author.Email, &author.Username,
			&author.FirstName, &author.LastName, &author.Photo,
			&author.CreditBalance, &author.CreatedAt, &author.UpdatedAt)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if len(cfgRaw) > 0 {
		if err := json.Unmarshal(cfgRaw, &img.Config); err != nil {
			return nil, fmt.Errorf("decoding image config: %w", err)
		}
	}
	if withAuthor {
		img.Author = author.user()
	}
	return &img, nil
}

func encodeConfig(cfg transform.Config) ([]byte, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding image config: %w", err)
	}
	return raw, nil
}

func (r *imageRepo) CreateImage(ctx context.Context, img *model.Image) error {
	cfgRaw, err := encodeConfig(img.Config)
	if err != nil {
		return err
	}
	query := `INSERT INTO images
	          (title, author, transformation_type, public_id, width, height, config,
	           secure_url, transformation_url, aspect_ratio, prompt, color)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING id, created_at, updated_at`
	err = r.pool.QueryRow(ctx, query,
		img.Title, img.AuthorID, img.TransformationType, img.PublicID, img.Width, img.Height,
		cfgRaw, img.SecureURL, img.TransformationURL, img.AspectRatio, img.Prompt, img.Color,
	).Scan(&img.ID, &img.CreatedAt, &img.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating image: %w", err)
	}
	return nil
}

func (r *imageRepo) UpdateImage(ctx context.Context, img *model.Image) error {
	cfgRaw, err := encodeConfig(img.Config)
	if err != nil {
		return err
	}
	query := `UPDATE images
	          SET title = $2, transformation_type = $3, public_id = $4, width = $5, height = $6,
	              config = $7, secure_url = $8, transformation_url = $9, aspect_ratio = $10,
	              prompt = $11, color = $12, updated_at = now()
	          WHERE id = $1
	          RETURNING updated_at`
	err = r.pool.QueryRow(ctx, query,
		img.ID, img.Title, img.TransformationType, img.PublicID, img.Width, img.Height,
		cfgRaw, img.SecureURL, img.TransformationURL, img.AspectRatio, img.Prompt, img.Color,
	).Scan(&img.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating image %s: %w", img.ID, err)
	}
	return nil
}

func (r *imageRepo) GetImageByID(ctx context.Context, id string) (*model.Image, error) {
	query := `SELECT ` + imageColumns + `, ` + authorColumns + `
	          FROM images i
	          LEFT JOIN users u ON u.id = i.author
	          WHERE i.id = $1`
	img, err := scanImage(r.pool.QueryRow(ctx, query, id), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying image %s: %w", id, err)
	}
	return img, nil
}

// DeleteImage removes the row unconditionally; callers decide whether an
// ownership check applies.
func (r *imageRepo) DeleteImage(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM images WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting image %s: %w", id, err)
	}
	return nil
}

func buildImageWhere(filter ImageFilter, args *[]any) string {
	var clauses []string
	if filter.AuthorID != "" {
		*args = append(*args, filter.AuthorID)
		clauses = append(clauses, fmt.Sprintf("i.author = $%d", len(*args)))
	}
	if filter.PublicIDs != nil {
		*args = append(*args, filter.PublicIDs)
		clauses = append(clauses, fmt.Sprintf("i.public_id = ANY($%d)", len(*args)))
	}
	if len(clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(clauses, " AND ")
}

func (r *imageRepo) ListImages(ctx context.Context, filter ImageFilter, limit, offset int) ([]model.Image, error) {
	var args []any
	where := buildImageWhere(filter, &args)

	args = append(args, limit)
	limitPos := len(args)
	args = append(args, offset)
	offsetPos := len(args)

	query := `SELECT ` + imageColumns + `, ` + authorColumns + `
	          FROM images i
	          LEFT JOIN users u ON u.id = i.author` + where + `
	          ORDER BY i.updated_at DESC
	          LIMIT $` + fmt.Sprint(limitPos) + ` OFFSET $` + fmt.Sprint(offsetPos)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying images: %w", err)
	}
	defer rows.Close()

	var images []model.Image
	for rows.Next() {
		img, err := scanImage(rows, true)
		if err != nil {
			return nil, fmt.Errorf("scanning image row: %w", err)
		}
		images = append(images, *img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating image rows: %w", err)
	}
	return images, nil
}

func (r *imageRepo) CountImages(ctx context.Context, filter ImageFilter) (int, error) {
	var args []any
	where := buildImageWhere(filter, &args)

	var count int
	query := `SELECT COUNT(*) FROM images i` + where
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting images: %w", err)
	}
	return count, nil
}
