package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"app/internal/transform"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/admin/search"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ErrUpstream marks any failure of the media provider so handlers can
// surface it as a retryable upstream error instead of conflating it with a
// local not-found.
var ErrUpstream = errors.New("media service unavailable")

// Asset is the metadata the provider returns for an uploaded image.
type Asset struct {
	PublicID  string
	Width     int
	Height    int
	SecureURL string
}

// Service is the slice of the media provider this application uses: upload,
// folder-scoped search, and derived transformation URLs.
type Service interface {
	Upload(ctx context.Context, file io.Reader, filename string) (*Asset, error)
	// SearchPublicIDs resolves the asset identifiers matching the query
	// inside the configured folder.
	SearchPublicIDs(ctx context.Context, query string) ([]string, error)
	TransformationURL(publicID string, width, height int, cfg transform.Config) (string, error)
}

type cloudinaryService struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinary builds a Service from a cloudinary:// credentials URL.
func NewCloudinary(cloudinaryURL, folder string) (Service, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("initializing cloudinary client: %w", err)
	}
	return &cloudinaryService{cld: cld, folder: folder}, nil
}

func (s *cloudinaryService) Upload(ctx context.Context, file io.Reader, filename string) (*Asset, error) {
	resp, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:           s.folder,
		FilenameOverride: filename,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: upload: %v", ErrUpstream, err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("%w: upload: %s", ErrUpstream, resp.Error.Message)
	}
	return &Asset{
		PublicID:  resp.PublicID,
		Width:     resp.Width,
		Height:    resp.Height,
		SecureURL: resp.SecureURL,
	}, nil
}

func (s *cloudinaryService) SearchPublicIDs(ctx context.Context, query string) ([]string, error) {
	expression := fmt.Sprintf("folder=%s", s.folder)
	if query != "" {
		expression += " AND " + query
	}

	result, err := s.cld.Admin.Search(ctx, search.Query{
		Expression: expression,
		MaxResults: 500,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", ErrUpstream, err)
	}

	ids := make([]string, 0, len(result.Assets))
	for _, asset := range result.Assets {
		ids = append(ids, asset.PublicID)
	}
	return ids, nil
}

// TransformationURL renders the applied configuration into a delivery URL.
func (s *cloudinaryService) TransformationURL(publicID string, width, height int, cfg transform.Config) (string, error) {
	img, err := s.cld.Image(publicID)
	if err != nil {
		return "", fmt.Errorf("%w: building asset: %v", ErrUpstream, err)
	}
	img.Transformation = BuildTransformation(width, height, cfg)
	url, err := img.String()
	if err != nil {
		return "", fmt.Errorf("%w: building url: %v", ErrUpstream, err)
	}
	return url, nil
}

// BuildTransformation translates a config into the provider's URL
// transformation syntax.
func BuildTransformation(width, height int, cfg transform.Config) string {
	var parts []string

	if cfg.Restore != nil && cfg.Restore.Enabled {
		parts = append(parts, "e_gen_restore")
	}
	if cfg.RemoveBackground != nil && cfg.RemoveBackground.Enabled {
		parts = append(parts, "e_background_removal")
	}
	if f := cfg.Fill; f != nil {
		fill := "b_gen_fill,c_pad"
		if f.AspectRatio != "" {
			fill += ",ar_" + f.AspectRatio
		}
		if f.Width > 0 {
			fill += fmt.Sprintf(",w_%d", f.Width)
		}
		if f.Height > 0 {
			fill += fmt.Sprintf(",h_%d", f.Height)
		}
		parts = append(parts, fill)
	}
	if r := cfg.Remove; r != nil && r.Prompt != "" {
		effect := fmt.Sprintf("e_gen_remove:prompt_(%s)", escapePrompt(r.Prompt))
		if r.Multiple {
			effect += ";multiple_true"
		}
		if r.RemoveShadow {
			effect += ";remove-shadow_true"
		}
		parts = append(parts, effect)
	}
	if r := cfg.Recolor; r != nil && r.Prompt != "" {
		effect := fmt.Sprintf("e_gen_recolor:prompt_(%s)", escapePrompt(r.Prompt))
		if r.To != "" {
			effect += ";to-color_" + escapePrompt(r.To)
		}
		if r.Multiple {
			effect += ";multiple_true"
		}
		parts = append(parts, effect)
	}

	if cfg.Fill == nil && width > 0 && height > 0 {
		parts = append(parts, fmt.Sprintf("w_%d,h_%d", width, height))
	}

	return strings.Join(parts, "/")
}

func escapePrompt(p string) string {
	return strings.ReplaceAll(strings.TrimSpace(p), " ", "%20")
}
