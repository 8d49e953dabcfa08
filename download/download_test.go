package download

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func fetchCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestFetchReplacesMissingFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "contestcheck/test" {
			t.Errorf("user agent = %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("ETag", `"a1"`)
		_, _ = w.Write([]byte("<plist/>"))
	}))
	t.Cleanup(srv.Close)

	dest := filepath.Join(t.TempDir(), "cty", "cty.plist")
	f := &Fetcher{UserAgent: "contestcheck/test", Timeout: 5 * time.Second}
	res, err := f.Fetch(fetchCtx(t), srv.URL, dest, Options{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Outcome != Replaced || res.Bytes != 8 {
		t.Fatalf("unexpected result %+v", res)
	}
	if data, err := os.ReadFile(dest); err != nil || string(data) != "<plist/>" {
		t.Fatalf("destination = %q (%v)", data, err)
	}
	st, ok := ReadState(Sidecar(dest))
	if !ok || st.ETag != `"a1"` || st.Hash == "" || st.ReplacedAt.IsZero() || st.Source != srv.URL {
		t.Fatalf("sidecar = %+v (ok %v)", st, ok)
	}
	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(dest), ".cty.plist-*"))
	if len(leftovers) != 0 {
		t.Fatalf("staged files left behind: %v", leftovers)
	}
}

func TestFetchConditionalRequest(t *testing.T) {
	var full int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"a1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		atomic.AddInt32(&full, 1)
		w.Header().Set("ETag", `"a1"`)
		_, _ = w.Write([]byte("body"))
	}))
	t.Cleanup(srv.Close)

	dest := filepath.Join(t.TempDir(), "cty.plist")
	f := &Fetcher{}
	first, err := f.Fetch(fetchCtx(t), srv.URL, dest, Options{})
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := f.Fetch(fetchCtx(t), srv.URL, dest, Options{})
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if second.Outcome != Unchanged {
		t.Fatalf("expected unchanged, got %s", second.Outcome)
	}
	if !second.State.ReplacedAt.Equal(first.State.ReplacedAt) {
		t.Fatalf("ReplacedAt moved on a 304")
	}
	if _, err := f.Fetch(fetchCtx(t), srv.URL, dest, Options{Force: true}); err != nil {
		t.Fatalf("forced fetch: %v", err)
	}
	if got := atomic.LoadInt32(&full); got != 2 {
		t.Fatalf("full responses = %d, want 2", got)
	}
}

func TestFetchIdenticalBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("same bytes"))
	}))
	t.Cleanup(srv.Close)

	dest := filepath.Join(t.TempDir(), "cty.plist")
	f := &Fetcher{}
	if _, err := f.Fetch(fetchCtx(t), srv.URL, dest, Options{}); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	res, err := f.Fetch(fetchCtx(t), srv.URL, dest, Options{})
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if res.Outcome != Identical {
		t.Fatalf("expected identical, got %s", res.Outcome)
	}
}

func TestFetchValidationKeepsCurrentFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not a plist"))
	}))
	t.Cleanup(srv.Close)

	dest := filepath.Join(t.TempDir(), "cty.plist")
	if err := os.WriteFile(dest, []byte("current"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	f := &Fetcher{}
	_, err := f.Fetch(fetchCtx(t), srv.URL, dest, Options{
		Force:    true,
		Validate: func(string) error { return errors.New("bad plist") },
	})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if data, _ := os.ReadFile(dest); string(data) != "current" {
		t.Fatalf("destination replaced: %q", data)
	}
}

func TestFetchErrors(t *testing.T) {
	f := &Fetcher{}
	if _, err := f.Fetch(fetchCtx(t), "", "x", Options{}); err == nil {
		t.Fatalf("expected error without URL")
	}
	if _, err := f.Fetch(fetchCtx(t), "http://127.0.0.1/", " ", Options{}); err == nil {
		t.Fatalf("expected error without destination")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty" {
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	dir := t.TempDir()
	if _, err := f.Fetch(fetchCtx(t), srv.URL+"/missing", filepath.Join(dir, "a"), Options{}); err == nil {
		t.Fatalf("expected error for 404")
	}
	if _, err := f.Fetch(fetchCtx(t), srv.URL+"/empty", filepath.Join(dir, "b"), Options{}); err == nil {
		t.Fatalf("expected error for empty body")
	}
	if _, err := os.Stat(filepath.Join(dir, "b")); !os.IsNotExist(err) {
		t.Fatalf("empty body should not create the destination")
	}
}
