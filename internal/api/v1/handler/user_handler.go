package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/model"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type UserHandler struct {
	userService  service.UserService
	imageService service.ImageService
	validate     *validator.Validate
	pageSize     int
	logger       zerolog.Logger
}

func NewUserHandler(userService service.UserService, imageService service.ImageService, v *validator.Validate, pageSize int, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		userService:  userService,
		imageService: imageService,
		validate:     v,
		pageSize:     pageSize,
		logger:       logger.With().Str("handler", "UserHandler").Logger(),
	}
}

// RegisterRoutes mounts v1 user routes.
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/users/me", authMw(http.HandlerFunc(h.handleUsers)))
	mux.Handle("/users/me/images", authMw(http.HandlerFunc(h.getUserImages)))
}

func (h *UserHandler) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.provisionUser(w, r)
	case http.MethodGet:
		h.getUser(w, r)
	case http.MethodPut:
		h.updateUser(w, r)
	case http.MethodDelete:
		h.deleteUser(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// provisionUser is the get-or-create entry point: the first authenticated
// request after sign-up lands here, and repeats are harmless.
func (h *UserHandler) provisionUser(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || clerkID == "" {
		writeError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	var req dto.UserProvisionDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	user, err := h.userService.GetOrCreate(r.Context(), clerkID, model.UserProfile{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Photo:     req.Photo,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewUserResponse(user))
}

func (h *UserHandler) getUser(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || clerkID == "" {
		writeError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	user, err := h.userService.GetByClerkID(r.Context(), clerkID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewUserResponse(user))
}

func (h *UserHandler) updateUser(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || clerkID == "" {
		writeError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	var req dto.UserProvisionDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), clerkID, model.UserProfile{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Photo:     req.Photo,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewUserResponse(user))
}

func (h *UserHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || clerkID == "" {
		writeError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	user, err := h.userService.Delete(r.Context(), clerkID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewUserResponse(user))
}

// getUserImages lists the caller's own images, paged and optionally search
// filtered.
func (h *UserHandler) getUserImages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	clerkID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || clerkID == "" {
		writeError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	user, err := h.userService.GetByClerkID(r.Context(), clerkID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result, err := h.imageService.List(r.Context(), service.ListOptions{
		AuthorID:    user.ID,
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

func parsePage(r *http.Request) int {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil && p > 0 {
			page = p
		}
	}
	return page
}

func toListResponse(result *service.ListResult) dto.ImageListResponseDTO {
	resp := dto.ImageListResponseDTO{
		Data:        make([]dto.ImageResponseDTO, 0, len(result.Data)),
		Total:       result.Total,
		TotalPages:  result.TotalPages,
		SavedImages: result.SavedImages,
	}
	for i := range result.Data {
		resp.Data = append(resp.Data, dto.NewImageResponse(&result.Data[i]))
	}
	return resp
}
