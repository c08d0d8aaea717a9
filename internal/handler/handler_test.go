package handler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"belongings/internal/domain"
	"belongings/internal/domain/models/inventory"
	"belongings/internal/events"
	"belongings/internal/handler/sse"
)

type testServer struct {
	folders    *stubFolders
	items      *stubItems
	photos     *stubPhotos
	enrichment *stubEnrichment
	hub        *events.Hub
	handler    http.Handler
}

func newTestServer() *testServer {
	parent := "a"
	ts := &testServer{
		folders: &stubFolders{folders: map[string]*inventory.Folder{
			"a": {ID: "a", Name: "Garage", Depth: 1},
			"b": {ID: "b", Name: "Shelf", ParentID: &parent, Depth: 2},
		}},
		items:      &stubItems{},
		photos:     &stubPhotos{},
		enrichment: &stubEnrichment{recognition: &inventory.Recognition{Name: "Lamp", Tags: []string{}}},
		hub:        events.NewHub(discardLogger()),
	}

	logger := discardLogger()
	h := &Handlers{
		Health:     NewHealthHandler(nil),
		Folders:    NewFolderHandler(ts.folders, logger),
		Items:      NewItemHandler(ts.items, logger),
		Photos:     NewPhotoHandler(ts.photos, logger),
		Enrichment: NewEnrichmentHandler(ts.enrichment, logger),
		Events:     NewEventsHandler(ts.hub, &sse.Config{KeepAliveInterval: time.Hour, RetryInterval: time.Second}, logger),
	}
	mux := http.NewServeMux()
	h.Register(mux, nil)
	ts.handler = asUser(mux)
	return ts
}

func (ts *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func TestMoveFolderRejections(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{
			name:   "cycle",
			err:    &domain.ConflictError{Message: "cannot move a folder into its own subfolder", ResourceType: "folder", ResourceID: "a", Reason: "cycle"},
			status: http.StatusConflict,
			reason: "cycle",
		},
		{
			name:   "stale target",
			err:    &domain.ConflictError{Message: "folder no longer exists", ResourceType: "folder", ResourceID: "a", Reason: "unknown"},
			status: http.StatusConflict,
			reason: "unknown",
		},
		{
			name:   "self",
			err:    &domain.ValidationError{Message: "a folder cannot be its own parent"},
			status: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer()
			ts.folders.updateErr = tt.err

			rec := ts.do(http.MethodPatch, "/api/folders/a", `{"parent_id":"b"}`)
			require.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

			body := decode(t, rec)
			assert.Equal(t, tt.err.Error(), body["detail"])
			if tt.reason != "" {
				assert.Equal(t, tt.reason, body["reason"])
				assert.Equal(t, "a", body["resource_id"])
			}
		})
	}
}

func TestUpdateFolderParentTriState(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPatch, "/api/folders/b", `{"parent_id":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ts.folders.lastReq.ParentID.Present)
	assert.Nil(t, ts.folders.lastReq.ParentID.Value)

	rec = ts.do(http.MethodPatch, "/api/folders/b", `{"name":"Top shelf"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, ts.folders.lastReq.ParentID.Present)

	rec = ts.do(http.MethodPatch, "/api/folders/b", `{"parent_id":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateFolderDuplicateReturnsExisting(t *testing.T) {
	ts := newTestServer()
	ts.folders.createErr = &domain.ConflictError{
		Message: "exists", ResourceType: "folder", ResourceID: "b", Reason: domain.ReasonDuplicate,
	}

	rec := ts.do(http.MethodPost, "/api/folders", `{"name":"shelf","parent_id":"a"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "b", decode(t, rec)["id"])
}

func TestCreateFolder(t *testing.T) {
	ts := newTestServer()
	rec := ts.do(http.MethodPost, "/api/folders", `{"name":"Attic"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Attic", decode(t, rec)["name"])
}

func TestDeleteFolder(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodDelete, "/api/folders/a?recursive=true", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, ts.folders.recursive)

	ts.folders.deleteErr = &domain.ConflictError{Message: "folder 'Garage' is not empty", Reason: "not_empty"}
	rec = ts.do(http.MethodDelete, "/api/folders/a", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "not_empty", decode(t, rec)["reason"])
	assert.False(t, ts.folders.recursive)
}

func TestGetFolderNotFound(t *testing.T) {
	ts := newTestServer()
	rec := ts.do(http.MethodGet, "/api/folders/zzz", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListItemsQuery(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodGet, "/api/items?folder_id=a&q=red+bike&tag=outdoor&sort=name&order=asc&limit=10&offset=20", "")
	require.Equal(t, http.StatusOK, rec.Code)

	opts := ts.items.lastOpts
	require.NotNil(t, opts.FolderID)
	assert.Equal(t, "a", *opts.FolderID)
	assert.Equal(t, "red bike", opts.Query)
	assert.Equal(t, "outdoor", opts.Tag)
	assert.Equal(t, inventory.SortName, opts.Sort)
	assert.True(t, opts.Ascending)
	assert.Equal(t, 10, opts.Limit)
	assert.Equal(t, 20, opts.Offset)
	assert.Equal(t, testUser, opts.UserID)

	body := decode(t, rec)
	assert.Equal(t, false, body["has_more"])

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/items?limit=ten", "").Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/items?limit=500", "").Code)
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("caption", "ignored"))
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadPhoto(t *testing.T) {
	ts := newTestServer()
	body, contentType := multipartBody(t, "file", "lamp.png", []byte("png-bytes"))

	req := httptest.NewRequest(http.MethodPost, "/api/items/item-1/photos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, []byte("png-bytes"), ts.photos.uploaded)
	assert.Equal(t, "lamp.png", ts.photos.filename)
	assert.Equal(t, "item-1", decode(t, rec)["item_id"])
}

func TestUploadPhotoRequiresFileField(t *testing.T) {
	ts := newTestServer()
	body, contentType := multipartBody(t, "image", "lamp.png", []byte("png-bytes"))

	req := httptest.NewRequest(http.MethodPost, "/api/items/item-1/photos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/api/items/item-1/photos", `{"file":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecognize(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/api/ai/recognize", `{"photo_id":"p-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p-1", ts.enrichment.photoID)
	assert.Equal(t, "Lamp", decode(t, rec)["name"])

	body, contentType := multipartBody(t, "file", "x.png", []byte("image"))
	req := httptest.NewRequest(http.MethodPost, "/api/ai/recognize", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []byte("image"), ts.enrichment.image)

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/ai/recognize", `{}`).Code)
}

func TestEnrichmentErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: recognize is not configured", domain.ErrUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("%w: anthropic: overloaded", domain.ErrUpstream), http.StatusBadGateway},
		{domain.ErrRateLimited, http.StatusTooManyRequests},
		{fmt.Errorf("%w: text/plain is not an image", domain.ErrUnsupported), http.StatusUnsupportedMediaType},
		{fmt.Errorf("%w: file exceeds 10 MiB", domain.ErrTooLarge), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			ts := newTestServer()
			ts.enrichment.err = tt.err
			rec := ts.do(http.MethodPost, "/api/ai/price", `{"name":"Lamp"}`)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestEnrichItemOptionalBody(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/api/items/item-9/enrich", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, ts.enrichment.enrichReq.Recognize)

	rec = ts.do(http.MethodPost, "/api/items/item-9/enrich", `{"recognize":false,"overwrite":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, ts.enrichment.enrichReq.Recognize)
	assert.False(t, *ts.enrichment.enrichReq.Recognize)
	assert.True(t, ts.enrichment.enrichReq.Overwrite)
}

func TestEventStream(t *testing.T) {
	ts := newTestServer()
	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// the handler subscribes before answering, so this publish is delivered
	ts.hub.Publish(inventory.Event{Type: inventory.EventFolderUpdated, UserID: testUser, ResourceID: "a", Action: "moved"})

	scanner := bufio.NewScanner(resp.Body)
	var eventName, data string
	for scanner.Scan() {
		line := scanner.Text()
		if v, ok := strings.CutPrefix(line, "event: "); ok {
			eventName = v
		}
		if v, ok := strings.CutPrefix(line, "data: "); ok {
			data = v
		}
		if line == "" && eventName != "" {
			break
		}
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, inventory.EventFolderUpdated, eventName)
	assert.Contains(t, data, `"action":"moved"`)
}

func TestHealth(t *testing.T) {
	ts := newTestServer()
	rec := ts.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}
