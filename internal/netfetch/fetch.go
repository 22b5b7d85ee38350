package netfetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const userAgent = "vidgrab/1.0"

// Fetcher downloads single files over HTTP with bounded retry. Each attempt
// restarts from byte zero; there is no partial resume.
type Fetcher struct {
	Client  *http.Client
	Backoff time.Duration
	Logger  *log.Logger
}

// New returns a fetcher with the default client and a 2 second backoff
// between attempts.
func New(logger *log.Logger) *Fetcher {
	return &Fetcher{
		Client:  http.DefaultClient,
		Backoff: 2 * time.Second,
		Logger:  logger,
	}
}

// Fetch streams the response body for url into dest, overwriting any prior
// content. It tries at most maxAttempts times, waiting the configured
// backoff between failures, and reports only success or failure; attempt
// errors are logged, not propagated. dest is only ever replaced by a fully
// streamed body; failed attempts leave it untouched.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string, maxAttempts int) bool {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := f.fetchOnce(ctx, url, dest)
		if err == nil {
			return true
		}

		f.logf("fetch attempt %d/%d failed for %s: %v", attempt, maxAttempts, url, err)
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			f.logf("fetch cancelled for %s: %v", url, ctx.Err())
			return false
		case <-time.After(f.backoff()):
		}
	}
	return false
}

func (f *Fetcher) fetchOnce(ctx context.Context, url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("prepare destination dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client().Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request %s: unexpected status %s", url, resp.Status)
	}

	// Stream into a temp file beside dest and rename only once the body
	// completed. A broken attempt must not leave residue at dest: later
	// presence probes would mistake it for an installed tool.
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".part-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", dest, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	written, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if written == 0 {
		return fmt.Errorf("empty response body from %s", url)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("move %s into place: %w", dest, err)
	}
	return nil
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

func (f *Fetcher) backoff() time.Duration {
	if f.Backoff > 0 {
		return f.Backoff
	}
	return 2 * time.Second
}

func (f *Fetcher) logf(format string, args ...any) {
	if f.Logger != nil {
		f.Logger.Printf(format, args...)
	}
}
