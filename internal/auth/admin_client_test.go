package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminClientEnsureUser(t *testing.T) {
	var created int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		assert.Equal(t, "service-key", r.Header.Get("apikey"))

		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"users":[{"id":"u-1","email":"Existing@example.com"}]}`))
		case http.MethodPost:
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, true, body["email_confirm"])
			created++
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"u-2","email":"new@example.com"}`))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer srv.Close()

	c := NewAdminClient(srv.URL+"/", "service-key")

	id, err := c.EnsureUser(context.Background(), "existing@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u-1", id)
	assert.Zero(t, created)

	id, err = c.EnsureUser(context.Background(), "new@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u-2", id)
	assert.Equal(t, 1, created)
}

func TestAdminClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewAdminClient(srv.URL, "bad").FindUserID(context.Background(), "a@example.com")
	assert.ErrorContains(t, err, "status 401")

	assert.Error(t, NewAdminClient(srv.URL, "bad").DeleteUser(context.Background(), "a@example.com"))
}
