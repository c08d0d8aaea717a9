// Package client is a Go wrapper around the belongings HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"belongings/internal/domain/models/inventory"
)

// DefaultTimeout bounds ordinary requests. The event stream has no timeout.
const DefaultTimeout = 30 * time.Second

// APIError is a request the backend answered with a non-2xx status.
type APIError struct {
	Status  int
	Message string
	// Reason is the machine-readable cause of a 409, e.g. "cycle" or "depth"
	Reason string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// Client calls the API as one user.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	streamHTTP *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the client used for ordinary requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for baseURL authenticating with the bearer token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		streamHTTP: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListFolders returns the user's flat folder list with counts and depth.
func (c *Client) ListFolders(ctx context.Context) ([]inventory.Folder, error) {
	var folders []inventory.Folder
	if err := c.do(ctx, http.MethodGet, "/api/folders", nil, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// GetTree returns the nested folder forest.
func (c *Client) GetTree(ctx context.Context) (*inventory.FolderTree, error) {
	var tree inventory.FolderTree
	if err := c.do(ctx, http.MethodGet, "/api/folders/tree", nil, &tree); err != nil {
		return nil, err
	}
	return &tree, nil
}

// MoveFolder changes a folder's parent. A nil parentID moves it to the root.
func (c *Client) MoveFolder(ctx context.Context, folderID string, parentID *string) (*inventory.Folder, error) {
	// parent_id must always be present: null means root, absent means unchanged
	body := map[string]*string{"parent_id": parentID}
	var folder inventory.Folder
	if err := c.do(ctx, http.MethodPatch, "/api/folders/"+url.PathEscape(folderID), body, &folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

// ItemQuery filters ListItems. Zero values are omitted.
type ItemQuery struct {
	FolderID  string
	Unfiled   bool
	Query     string
	Category  string
	Tag       string
	Sort      string
	Ascending bool
	Limit     int
	Offset    int
}

func (q ItemQuery) values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("folder_id", q.FolderID)
	set("q", q.Query)
	set("category", q.Category)
	set("tag", q.Tag)
	set("sort", q.Sort)
	if q.Unfiled {
		v.Set("unfiled", "true")
	}
	if q.Ascending {
		v.Set("order", "asc")
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

// ListItems returns one page of items.
func (c *Client) ListItems(ctx context.Context, q ItemQuery) (*inventory.ItemPage, error) {
	path := "/api/items"
	if enc := q.values().Encode(); enc != "" {
		path += "?" + enc
	}
	var page inventory.ItemPage
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload interface{}) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, dest interface{}) error {
	req, err := c.newRequest(ctx, method, path, payload)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// decodeAPIError reads a problem+json body, falling back to the status text.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
		Reason string `json:"reason"`
	}
	if json.Unmarshal(data, &problem) == nil {
		switch {
		case problem.Detail != "":
			apiErr.Message = problem.Detail
		case problem.Title != "":
			apiErr.Message = problem.Title
		}
		apiErr.Reason = problem.Reason
	} else if text := strings.TrimSpace(string(data)); text != "" {
		apiErr.Message = text
	}
	return apiErr
}
