// Package download keeps a local copy of a remote reference file (the
// cty.plist prefix list) current. Requests are conditional, the body is
// staged next to the destination and only committed when it differs from
// the current copy and passes validation.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/zeebo/xxh3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SidecarSuffix is appended to the destination to name its state file.
const SidecarSuffix = ".fetch.json"

// Outcome of one fetch.
type Outcome string

const (
	Replaced  Outcome = "replaced"
	Unchanged Outcome = "unchanged"
	// Identical means the server sent a body equal to the local copy.
	Identical Outcome = "identical"
)

// State is what the sidecar remembers between fetches.
type State struct {
	Source       string    `json:"source"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	Hash         string    `json:"xxh3,omitempty"`
	Bytes        int64     `json:"bytes,omitempty"`
	ReplacedAt   time.Time `json:"replaced_at,omitempty"`
	CheckedAt    time.Time `json:"checked_at"`
}

// Fetcher fetches files over HTTP. The zero value uses
// http.DefaultClient and no timeout.
type Fetcher struct {
	Client    *http.Client
	Timeout   time.Duration
	UserAgent string
	Logf      func(string, ...any)
}

// Options tune one fetch.
type Options struct {
	// Force skips the conditional headers and the identical-body check.
	Force bool
	// Validate vets the staged file; an error leaves the destination as is.
	Validate func(path string) error
}

// Result reports one fetch.
type Result struct {
	Outcome Outcome
	State   State
	Bytes   int64
}

// Sidecar returns the state file path for dest.
func Sidecar(dest string) string {
	return dest + SidecarSuffix
}

// Purpose: Bring dest up to date with url.
// Key aspects: A missing destination always forces a full fetch; otherwise
// the sidecar's validators make the request conditional.
// Upstream: root program cty refresh.
// Downstream: net/http, stage, commit.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string, opts Options) (Result, error) {
	url, dest = strings.TrimSpace(url), strings.TrimSpace(dest)
	switch {
	case url == "":
		return Result{}, errors.New("download: no URL")
	case dest == "":
		return Result{}, errors.New("download: no destination")
	}

	prev, havePrev := ReadState(Sidecar(dest))
	if _, err := os.Stat(dest); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Result{}, fmt.Errorf("download: %w", err)
		}
		opts.Force = true
	}

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("download: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	if havePrev && !opts.Force {
		setConditional(req.Header, prev)
	}

	resp, err := f.client().Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("download: %s: %w", url, err)
	}
	defer resp.Body.Close()

	state := prev
	state.Source = url
	state.CheckedAt = time.Now().UTC()
	if v := strings.TrimSpace(resp.Header.Get("ETag")); v != "" {
		state.ETag = v
	}
	if v := strings.TrimSpace(resp.Header.Get("Last-Modified")); v != "" {
		state.LastModified = v
	}

	switch {
	case resp.StatusCode == http.StatusNotModified:
		f.saveState(dest, state)
		return Result{Outcome: Unchanged, State: state}, nil
	case resp.StatusCode/100 != 2:
		return Result{}, fmt.Errorf("download: %s: %s", url, resp.Status)
	}

	staged, hash, n, err := stage(dest, resp.Body)
	if err != nil {
		return Result{}, err
	}
	defer os.Remove(staged)

	if !opts.Force && havePrev && prev.Hash == hash {
		f.saveState(dest, state)
		return Result{Outcome: Identical, State: state, Bytes: n}, nil
	}
	if opts.Validate != nil {
		if err := opts.Validate(staged); err != nil {
			return Result{}, fmt.Errorf("download: rejected %s: %w", url, err)
		}
	}
	if err := os.Rename(staged, dest); err != nil {
		return Result{}, fmt.Errorf("download: %w", err)
	}
	state.Hash = hash
	state.Bytes = n
	state.ReplacedAt = state.CheckedAt
	f.saveState(dest, state)
	return Result{Outcome: Replaced, State: state, Bytes: n}, nil
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

func (f *Fetcher) saveState(dest string, st State) {
	if err := WriteState(Sidecar(dest), st); err != nil && f.Logf != nil {
		f.Logf("Download: %v", err)
	}
}

func setConditional(h http.Header, st State) {
	if st.ETag != "" {
		h.Set("If-None-Match", st.ETag)
	}
	if st.LastModified != "" {
		h.Set("If-Modified-Since", st.LastModified)
	}
}

// stage copies body into a temp file beside dest and returns its path,
// xxh3 hash and size. An empty body is an error.
func stage(dest string, body io.Reader) (string, string, int64, error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", 0, fmt.Errorf("download: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+"-*")
	if err != nil {
		return "", "", 0, fmt.Errorf("download: %w", err)
	}
	h := xxh3.New()
	n, copyErr := io.Copy(io.MultiWriter(tmp, h), body)
	closeErr := tmp.Close()
	switch {
	case copyErr != nil:
		os.Remove(tmp.Name())
		return "", "", 0, fmt.Errorf("download: reading body: %w", copyErr)
	case closeErr != nil:
		os.Remove(tmp.Name())
		return "", "", 0, fmt.Errorf("download: %w", closeErr)
	case n == 0:
		os.Remove(tmp.Name())
		return "", "", 0, errors.New("download: empty body")
	}
	return tmp.Name(), strconv.FormatUint(h.Sum64(), 16), n, nil
}

// ReadState loads a sidecar; ok is false when it is missing or unreadable.
func ReadState(path string) (State, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}, false
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, false
	}
	return st, true
}

// WriteState stores a sidecar.
func WriteState(path string, st State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
