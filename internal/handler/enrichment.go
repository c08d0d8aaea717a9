package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"belongings/internal/config"
	"belongings/internal/domain"
	aiSvc "belongings/internal/domain/services/enrichment"
	"belongings/internal/httputil"
)

// EnrichmentHandler serves the AI recognition and price endpoints
type EnrichmentHandler struct {
	service aiSvc.Service
	logger  *slog.Logger
}

// NewEnrichmentHandler creates a new enrichment handler
func NewEnrichmentHandler(service aiSvc.Service, logger *slog.Logger) *EnrichmentHandler {
	return &EnrichmentHandler{
		service: service,
		logger:  logger,
	}
}

type recognizeRequest struct {
	PhotoID string `json:"photo_id"`
}

// Recognize identifies an item from a stored photo ({"photo_id"}) or an
// uploaded multipart "file"
// POST /api/ai/recognize
func (h *EnrichmentHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		part, err := formFile(w, r, "file", config.MaxPhotoUploadBytes)
		if err != nil {
			handleError(w, err)
			return
		}
		defer part.Close()

		image, err := io.ReadAll(io.LimitReader(part, config.MaxPhotoUploadBytes+1))
		if err != nil {
			handleError(w, err)
			return
		}
		if len(image) > config.MaxPhotoUploadBytes {
			handleError(w, domain.ErrTooLarge)
			return
		}

		rec, err := h.service.RecognizeImage(r.Context(), userID, image)
		if err != nil {
			handleError(w, err)
			return
		}
		httputil.RespondJSON(w, http.StatusOK, rec)
		return
	}

	var req recognizeRequest
	if !parseBody(w, r, &req) {
		return
	}
	if req.PhotoID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "photo_id or a multipart file is required")
		return
	}

	rec, err := h.service.RecognizePhoto(r.Context(), userID, req.PhotoID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, rec)
}

// ResearchPrice estimates the value of an item ({"item_id"}) or a described one
// POST /api/ai/price
func (h *EnrichmentHandler) ResearchPrice(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req aiSvc.PriceRequest
	if !parseBody(w, r, &req) {
		return
	}

	est, err := h.service.ResearchPrice(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, est)
}

// EnrichItem runs recognition and/or price research and fills in the item
// POST /api/items/{id}/enrich
func (h *EnrichmentHandler) EnrichItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	// the body is optional; an empty one runs both enrichers
	var req aiSvc.EnrichRequest
	if r.ContentLength != 0 {
		if !parseBody(w, r, &req) {
			return
		}
	}

	result, err := h.service.EnrichItem(r.Context(), userID, r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
