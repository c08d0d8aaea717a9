package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"belongings/internal/domain/models/inventory"
)

// EventStream reads change events from GET /api/events.
type EventStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

// Events opens the user's event stream. Cancel ctx or call Close to end it.
func (c *Client) Events(ctx context.Context) (*EventStream, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/events", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamHTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open event stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	return &EventStream{body: resp.Body, scanner: scanner}, nil
}

// Next blocks until the next event. It returns io.EOF when the server ends
// the stream.
func (s *EventStream) Next() (inventory.Event, error) {
	var name string
	var data strings.Builder

	for s.scanner.Scan() {
		line := s.scanner.Text()
		switch {
		case line == "":
			if data.Len() == 0 {
				// keep-alive, retry or id-only frame
				name = ""
				continue
			}
			var event inventory.Event
			if err := json.Unmarshal([]byte(data.String()), &event); err != nil {
				return inventory.Event{}, fmt.Errorf("decode event: %w", err)
			}
			if event.Type == "" {
				event.Type = name
			}
			return event, nil
		case strings.HasPrefix(line, ":"):
			// comment
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := s.scanner.Err(); err != nil {
		return inventory.Event{}, err
	}
	return inventory.Event{}, io.EOF
}

// Close ends the stream.
func (s *EventStream) Close() error {
	return s.body.Close()
}
