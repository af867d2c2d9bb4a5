package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"app/internal/api/v1/dto"
	"app/internal/media"
	"app/internal/middleware"
	"app/internal/service"
	"app/internal/transform"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// maxUploadBytes bounds multipart uploads forwarded to the media provider.
const maxUploadBytes = 32 << 20

type TransformationHandler struct {
	transformations service.TransformationService
	userService     service.UserService
	media           media.Service
	validate        *validator.Validate
	logger          zerolog.Logger
}

func NewTransformationHandler(
	transformations service.TransformationService,
	userService service.UserService,
	mediaSvc media.Service,
	v *validator.Validate,
	logger zerolog.Logger,
) *TransformationHandler {
	return &TransformationHandler{
		transformations: transformations,
		userService:     userService,
		media:           mediaSvc,
		validate:        v,
		logger:          logger.With().Str("handler", "TransformationHandler").Logger(),
	}
}

// RegisterRoutes mounts v1 transformation-session and upload routes.
func (h *TransformationHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/uploads", authMw(http.HandlerFunc(h.upload)))
	mux.Handle("/transformations", authMw(http.HandlerFunc(h.startSession)))
	mux.Handle("/transformations/", authMw(http.HandlerFunc(h.handleSession)))
}

// upload forwards a multipart file to the media provider and returns the
// asset metadata the editing flow needs.
func (h *TransformationHandler) upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if _, ok := h.caller(w, r); !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart payload: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	asset, err := h.media.Upload(r.Context(), file, header.Filename)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.UploadResponseDTO{
		PublicID:  asset.PublicID,
		Width:     asset.Width,
		Height:    asset.Height,
		SecureURL: asset.SecureURL,
	})
}

func (h *TransformationHandler) startSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	user, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req dto.TransformationStartDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}
	t, err := transform.ParseType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	es, err := h.transformations.Start(r.Context(), user, service.StartInput{
		Type:      t,
		ImageID:   req.ImageID,
		PublicID:  req.PublicID,
		Width:     req.Width,
		Height:    req.Height,
		SecureURL: req.SecureURL,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.NewSessionResponse(es, nil))
}

func (h *TransformationHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	user, ok := h.caller(w, r)
	if !ok {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/transformations/")
	parts := strings.Split(rest, "/")
	sessionID := parts[0]
	if sessionID == "" {
		http.NotFound(w, r)
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.getSession(w, r, user, sessionID)
	case len(parts) == 1 && r.Method == http.MethodPatch:
		h.setField(w, r, user, sessionID)
	case len(parts) == 2 && parts[1] == "apply" && r.Method == http.MethodPost:
		h.apply(w, r, user, sessionID)
	case len(parts) == 2 && parts[1] == "reset" && r.Method == http.MethodPost:
		h.reset(w, r, user, sessionID)
	case len(parts) == 2 && parts[1] == "save" && r.Method == http.MethodPost:
		h.save(w, r, user, sessionID)
	default:
		http.NotFound(w, r)
	}
}

func (h *TransformationHandler) getSession(w http.ResponseWriter, r *http.Request, user, sessionID string) {
	es, err := h.transformations.Get(r.Context(), user, sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewSessionResponse(es, nil))
}

func (h *TransformationHandler) setField(w http.ResponseWriter, r *http.Request, user, sessionID string) {
	var req dto.TransformationFieldDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	es, err := h.transformations.SetField(r.Context(), user, sessionID, req.Field, req.Value)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewSessionResponse(es, nil))
}

func (h *TransformationHandler) apply(w http.ResponseWriter, r *http.Request, user, sessionID string) {
	es, debited, err := h.transformations.Apply(r.Context(), user, sessionID)
	if err != nil {
		// The merge may have landed even though the debit failed; the
		// client is told to retry rather than silently losing the
		// error.
		writeServiceError(w, err)
		return
	}

	var balance *int
	if debited != nil {
		balance = &debited.CreditBalance
	}
	writeJSON(w, http.StatusOK, dto.NewSessionResponse(es, balance))
}

func (h *TransformationHandler) reset(w http.ResponseWriter, r *http.Request, user, sessionID string) {
	es, err := h.transformations.Reset(r.Context(), user, sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewSessionResponse(es, nil))
}

func (h *TransformationHandler) save(w http.ResponseWriter, r *http.Request, user, sessionID string) {
	var req dto.TransformationSaveDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	img, err := h.transformations.Save(r.Context(), user, sessionID, service.SaveInput{
		Title:       req.Title,
		AspectRatio: req.AspectRatio,
		Prompt:      req.Prompt,
		Color:       req.Color,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewImageResponse(img))
}

// caller resolves the authenticated subject to the local user id,
// provisioning having happened at sign-in via POST /users/me.
func (h *TransformationHandler) caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	clerkID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || clerkID == "" {
		writeError(w, http.StatusUnauthorized, "user ID not found in context")
		return "", false
	}
	user, err := h.userService.GetByClerkID(r.Context(), clerkID)
	if err != nil {
		writeServiceError(w, err)
		return "", false
	}
	return user.ID, true
}
