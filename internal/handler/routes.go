package handler

import (
	"net/http"
)

// Handlers bundles every HTTP handler the API serves.
type Handlers struct {
	Health     *HealthHandler
	Folders    *FolderHandler
	Items      *ItemHandler
	Photos     *PhotoHandler
	Enrichment *EnrichmentHandler
	Events     *EventsHandler
	Metrics    http.Handler
}

// Register adds every route to mux (Go 1.22+ method and wildcard patterns).
// aiLimit wraps the AI endpoints; nil leaves them unlimited.
func (h *Handlers) Register(mux *http.ServeMux, aiLimit func(http.Handler) http.Handler) {
	if aiLimit == nil {
		aiLimit = func(next http.Handler) http.Handler { return next }
	}

	// Health and metrics (public)
	mux.HandleFunc("GET /health", h.Health.Health)
	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.Metrics)
	}

	// Folder routes
	mux.HandleFunc("GET /api/folders", h.Folders.ListFolders)
	mux.HandleFunc("GET /api/folders/tree", h.Folders.GetTree)
	mux.HandleFunc("POST /api/folders", h.Folders.CreateFolder)
	mux.HandleFunc("GET /api/folders/{id}", h.Folders.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", h.Folders.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", h.Folders.DeleteFolder)

	// Item routes
	mux.HandleFunc("GET /api/items", h.Items.ListItems)
	mux.HandleFunc("POST /api/items", h.Items.CreateItem)
	mux.HandleFunc("GET /api/items/{id}", h.Items.GetItem)
	mux.HandleFunc("PATCH /api/items/{id}", h.Items.UpdateItem)
	mux.HandleFunc("DELETE /api/items/{id}", h.Items.DeleteItem)

	// Photo routes
	mux.HandleFunc("GET /api/items/{id}/photos", h.Photos.ListPhotos)
	mux.HandleFunc("POST /api/items/{id}/photos", h.Photos.UploadPhoto)
	mux.HandleFunc("DELETE /api/items/{id}/photos/{photoID}", h.Photos.DeletePhoto)

	// AI routes (rate limited per user)
	mux.Handle("POST /api/ai/recognize", aiLimit(http.HandlerFunc(h.Enrichment.Recognize)))
	mux.Handle("POST /api/ai/price", aiLimit(http.HandlerFunc(h.Enrichment.ResearchPrice)))
	mux.Handle("POST /api/items/{id}/enrich", aiLimit(http.HandlerFunc(h.Enrichment.EnrichItem)))

	// Change events (SSE)
	mux.HandleFunc("GET /api/events", h.Events.Stream)
}
