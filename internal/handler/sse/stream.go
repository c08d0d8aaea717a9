package sse

import (
	"context"
	"time"
)

// Config holds the timing of an event stream.
type Config struct {
	// KeepAliveInterval is how often a comment line is sent so proxies do not
	// close an idle stream. 15s suits most load balancers.
	KeepAliveInterval time.Duration

	// RetryInterval is sent once as the retry: field; browsers wait this long
	// before reconnecting.
	RetryInterval time.Duration
}

// DefaultConfig returns the default stream timing.
func DefaultConfig() *Config {
	return &Config{
		KeepAliveInterval: 15 * time.Second,
		RetryInterval:     3 * time.Second,
	}
}

// KeepAliveWriter writes a keep-alive frame.
type KeepAliveWriter interface {
	WriteKeepAlive() error
}

// KeepAlive pings w every interval until ctx ends. The first failed write is
// delivered on the returned channel, which is closed when the loop exits.
func KeepAlive(ctx context.Context, w KeepAliveWriter, interval time.Duration) <-chan error {
	failed := make(chan error, 1)
	go func() {
		defer close(failed)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := w.WriteKeepAlive(); err != nil {
					failed <- err
					return
				}
			}
		}
	}()
	return failed
}
