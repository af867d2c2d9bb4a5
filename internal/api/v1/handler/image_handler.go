package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/model"
	"app/internal/service"
	"app/internal/transform"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type ImageHandler struct {
	imageService service.ImageService
	userService  service.UserService
	validate     *validator.Validate
	pageSize     int
	logger       zerolog.Logger
}

func NewImageHandler(imageService service.ImageService, userService service.UserService, v *validator.Validate, pageSize int, logger zerolog.Logger) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		userService:  userService,
		validate:     v,
		pageSize:     pageSize,
		logger:       logger.With().Str("handler", "ImageHandler").Logger(),
	}
}

// RegisterRoutes mounts v1 image routes.
func (h *ImageHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/images", authMw(http.HandlerFunc(h.handleImages)))
	mux.Handle("/images/", authMw(http.HandlerFunc(h.handleImageByID)))
}

func (h *ImageHandler) handleImages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listImages(w, r)
	case http.MethodPost:
		h.createImage(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *ImageHandler) handleImageByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/images/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getImage(w, r, id)
	case http.MethodPut:
		h.updateImage(w, r, id)
	case http.MethodDelete:
		h.deleteImage(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// listImages pages through every user's images, optionally narrowed by the
// media provider's search index.
func (h *ImageHandler) listImages(w http.ResponseWriter, r *http.Request) {
	result, err := h.imageService.List(r.Context(), service.ListOptions{
		Page:        parsePage(r),
		PageSize:    h.pageSize,
		SearchQuery: r.URL.Query().Get("query"),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListResponse(result))
}

func (h *ImageHandler) getImage(w http.ResponseWriter, r *http.Request, id string) {
	img, err := h.imageService.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewImageResponse(img))
}

func (h *ImageHandler) createImage(w http.ResponseWriter, r *http.Request) {
	user, req, ok := h.decodeUpsert(w, r)
	if !ok {
		return
	}

	img, err := h.imageService.Create(r.Context(), h.toModel(req, ""), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.NewImageResponse(img))
}

func (h *ImageHandler) updateImage(w http.ResponseWriter, r *http.Request, id string) {
	user, req, ok := h.decodeUpsert(w, r)
	if !ok {
		return
	}

	img, err := h.imageService.Update(r.Context(), h.toModel(req, id), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewImageResponse(img))
}

// deleteImage removes by id. There is deliberately no ownership check here;
// see the image service.
func (h *ImageHandler) deleteImage(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.imageService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeUpsert resolves the caller and decodes+validates the payload shared
// by create and update.
func (h *ImageHandler) decodeUpsert(w http.ResponseWriter, r *http.Request) (*model.User, *dto.ImageUpsertDTO, bool) {
	clerkID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || clerkID == "" {
		writeError(w, http.StatusUnauthorized, "user ID not found in context")
		return nil, nil, false
	}

	user, err := h.userService.GetByClerkID(r.Context(), clerkID)
	if err != nil {
		writeServiceError(w, err)
		return nil, nil, false
	}

	var req dto.ImageUpsertDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return nil, nil, false
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return nil, nil, false
	}
	if _, err := transform.ParseType(req.TransformationType); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, nil, false
	}

	return user, &req, true
}

func (h *ImageHandler) toModel(req *dto.ImageUpsertDTO, id string) *model.Image {
	t, _ := transform.ParseType(req.TransformationType)
	return &model.Image{
		ID:                 id,
		Title:              req.Title,
		TransformationType: t,
		PublicID:           req.PublicID,
		Width:              req.Width,
		Height:             req.Height,
		Config:             req.Config,
		SecureURL:          req.SecureURL,
		TransformationURL:  req.TransformationURL,
		AspectRatio:        req.AspectRatio,
		Prompt:             req.Prompt,
		Color:              req.Color,
	}
}
