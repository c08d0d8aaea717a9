package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"belongings/internal/domain/models/inventory"
)

func TestListFolders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/folders", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"id":"a","name":"Garage","parent_id":null,"item_count":2,"child_count":1,"depth":1}]`))
	}))
	defer srv.Close()

	folders, err := New(srv.URL+"/", "tok").ListFolders(context.Background())
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, 2, folders[0].ItemCount)
	assert.Nil(t, folders[0].ParentID)
}

func TestMoveFolderSendsExplicitNull(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/folders/b", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"b","name":"Shelf","parent_id":null,"depth":1}`))
	}))
	defer srv.Close()

	folder, err := New(srv.URL, "tok").MoveFolder(context.Background(), "b", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, folder.Depth)

	v, present := got["parent_id"]
	assert.True(t, present, "parent_id must be sent so the server moves to root")
	assert.Nil(t, v)
}

func TestAPIErrorFromProblem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"type":"x","title":"Conflict","status":409,"detail":"cannot move a folder into its own subfolder","reason":"cycle"}`))
	}))
	defer srv.Close()

	parent := "c"
	_, err := New(srv.URL, "tok").MoveFolder(context.Background(), "a", &parent)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "cannot move a folder into its own subfolder", apiErr.Message)
	assert.Equal(t, "cycle", apiErr.Reason)
}

func TestAPIErrorPlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").ListFolders(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "gateway down", apiErr.Message)
}

func TestTransportErrorIsNotAPIError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, "tok").ListFolders(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestListItemsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "a", q.Get("folder_id"))
		assert.Equal(t, "lamp", q.Get("q"))
		assert.Equal(t, "asc", q.Get("order"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.False(t, q.Has("offset"))
		_, _ = w.Write([]byte(`{"items":[{"id":"i","name":"Lamp"}],"total_count":1,"has_more":false,"offset":0,"limit":10}`))
	}))
	defer srv.Close()

	page, err := New(srv.URL, "tok").ListItems(context.Background(), ItemQuery{FolderID: "a", Query: "lamp", Ascending: true, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Lamp", page.Items[0].Name)
}

func TestEventStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "retry: 3000\n\n: keepalive\n\n")
		_, _ = io.WriteString(w, "id: 1\nevent: folder-updated\ndata: {\"type\":\"folder-updated\",\"resource_id\":\"a\",\"action\":\"moved\"}\n\n")
		_, _ = io.WriteString(w, "event: item-updated\ndata: {\"resource_id\":\"i\"}\n\n")
	}))
	defer srv.Close()

	stream, err := New(srv.URL, "tok").Events(context.Background())
	require.NoError(t, err)
	defer stream.Close()

	ev, err := stream.Next()
	require.NoError(t, err)
	assert.Equal(t, inventory.EventFolderUpdated, ev.Type)
	assert.Equal(t, "moved", ev.Action)

	ev, err = stream.Next()
	require.NoError(t, err)
	assert.Equal(t, inventory.EventItemUpdated, ev.Type, "type falls back to the event name")

	_, err = stream.Next()
	assert.ErrorIs(t, err, io.EOF)
}
