package netfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestFetcher() *Fetcher {
	f := New(nil)
	f.Backoff = time.Millisecond
	return f
}

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "vidgrab/1.0" {
			t.Errorf("expected vidgrab user agent, got %q", got)
		}
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	if !newTestFetcher().Fetch(context.Background(), server.URL, dest, 3) {
		t.Fatal("expected fetch to succeed")
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("expected payload, got %q", data)
	}
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	if !newTestFetcher().Fetch(context.Background(), server.URL, dest, 3) {
		t.Fatal("expected fetch to succeed on the third attempt")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestFetchExhaustsAttempts(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	if newTestFetcher().Fetch(context.Background(), server.URL, dest, 4) {
		t.Fatal("expected fetch to fail")
	}
	if attempts != 4 {
		t.Fatalf("expected exactly 4 attempts, got %d", attempts)
	}
}

func TestFetchTreatsAttemptFloorAsOne(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	if newTestFetcher().Fetch(context.Background(), server.URL, dest, 0) {
		t.Fatal("expected fetch to fail")
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", attempts)
	}
}

func TestFetchRejectsEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	if newTestFetcher().Fetch(context.Background(), server.URL, dest, 1) {
		t.Fatal("expected zero-byte response to count as failure")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("expected no file at dest after empty body, stat err=%v", err)
	}
}

// A connection dropped mid-body must not leave a partial file behind: the
// destination path doubles as the installed-tool presence probe.
func TestFetchTruncatedBodyLeavesNoFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "100")
		w.Write([]byte("short"))
		conn, _, err := w.(http.Hijacker).Hijack()
		if err != nil {
			t.Errorf("hijack: %v", err)
			return
		}
		conn.Close()
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	if newTestFetcher().Fetch(context.Background(), server.URL, dest, 2) {
		t.Fatal("expected truncated downloads to fail")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("expected no file at dest after truncated download, stat err=%v", err)
	}
	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(dest), "*.part-*"))
	if err != nil {
		t.Fatalf("glob temp files: %v", err)
	}
	if len(leftovers) != 0 {
		t.Fatalf("expected temp files removed, found %v", leftovers)
	}
}

func TestFetchFailureKeepsExistingFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	if err := os.WriteFile(dest, []byte("known good"), 0o644); err != nil {
		t.Fatalf("seed destination: %v", err)
	}

	if newTestFetcher().Fetch(context.Background(), server.URL, dest, 2) {
		t.Fatal("expected fetch to fail")
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(data) != "known good" {
		t.Fatalf("expected prior content preserved, got %q", data)
	}
}

func TestFetchOverwritesPriorContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("new"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	if err := os.WriteFile(dest, []byte("old stale content"), 0o644); err != nil {
		t.Fatalf("seed destination: %v", err)
	}

	if !newTestFetcher().Fetch(context.Background(), server.URL, dest, 1) {
		t.Fatal("expected fetch to succeed")
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(data) != "new" {
		t.Fatalf("expected stale content replaced, got %q", data)
	}
}
