package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"belongings/internal/domain/models/inventory"
	invSvc "belongings/internal/domain/services/inventory"
	"belongings/internal/httputil"
)

// ItemHandler handles item HTTP requests
type ItemHandler struct {
	itemService invSvc.ItemService
	logger      *slog.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(itemService invSvc.ItemService, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{
		itemService: itemService,
		logger:      logger,
	}
}

// ListItems returns one page of items
// GET /api/items?folder_id=&unfiled=&q=&category=&tag=&sort=&order=&limit=&offset=
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit, err := httputil.QueryInt(r, "limit", 0)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := httputil.QueryInt(r, "offset", 0)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	opts := &inventory.ItemListOptions{
		UserID:    userID,
		FolderID:  httputil.QueryString(r, "folder_id"),
		Unfiled:   httputil.QueryBool(r, "unfiled"),
		Query:     q.Get("q"),
		Category:  q.Get("category"),
		Tag:       q.Get("tag"),
		Sort:      inventory.ItemSort(q.Get("sort")),
		Ascending: strings.EqualFold(q.Get("order"), "asc"),
		Limit:     limit,
		Offset:    offset,
	}

	page, err := h.itemService.ListItems(r.Context(), opts)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}

// CreateItem creates a new item
// POST /api/items
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req invSvc.CreateItemRequest
	if !parseBody(w, r, &req) {
		return
	}

	item, err := h.itemService.CreateItem(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, item)
}

// GetItem retrieves an item
// GET /api/items/{id}
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	item, err := h.itemService.GetItem(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, item)
}

// UpdateItem applies a partial update; folder_id null unfiles the item
// PATCH /api/items/{id}
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req invSvc.UpdateItemRequest
	if !parseBody(w, r, &req) {
		return
	}

	item, err := h.itemService.UpdateItem(r.Context(), userID, r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, item)
}

// DeleteItem deletes an item and its photos
// DELETE /api/items/{id}
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.itemService.DeleteItem(r.Context(), userID, r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}
