package handler

import (
	"log/slog"
	"net/http"

	"belongings/internal/config"
	invSvc "belongings/internal/domain/services/inventory"
	"belongings/internal/httputil"
)

// PhotoHandler handles item photo uploads
type PhotoHandler struct {
	photoService invSvc.PhotoService
	logger       *slog.Logger
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService invSvc.PhotoService, logger *slog.Logger) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
		logger:       logger,
	}
}

// UploadPhoto stores the multipart "file" field and attaches it to the item
// POST /api/items/{id}/photos
func (h *PhotoHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	part, err := formFile(w, r, "file", config.MaxPhotoUploadBytes)
	if err != nil {
		handleError(w, err)
		return
	}
	defer part.Close()

	photo, err := h.photoService.UploadPhoto(r.Context(), userID, r.PathValue("id"), &invSvc.PhotoUpload{
		Filename: part.FileName(),
		Body:     part,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, photo)
}

// ListPhotos lists the item's photos with presigned URLs
// GET /api/items/{id}/photos
func (h *PhotoHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	photos, err := h.photoService.ListPhotos(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, photos)
}

// DeletePhoto removes a photo
// DELETE /api/items/{id}/photos/{photoID}
func (h *PhotoHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.photoService.DeletePhoto(r.Context(), userID, r.PathValue("id"), r.PathValue("photoID")); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}
