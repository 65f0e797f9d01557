// Package backend is the HTTP client for the checker service: it starts analysis runs and delivers their NDJSON streams line by line.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/codalotl/checkdeck/internal/q/jsonl"
	"github.com/codalotl/checkdeck/internal/simplelogger"
)

// DefaultBaseURL is where a locally launched checker service listens.
const DefaultBaseURL = "http://127.0.0.1:8765"

// runIDHeader carries the server-assigned run id on an accepted run, used for best-effort cancellation.
const runIDHeader = "X-Checkdeck-Run-Id"

type apiError struct {
	Error string `json:"error"`
}

// Client calls the checker service. Plain API calls get a request timeout; run streams use a separate client with none, since a stream lives as long as
// its run.
type Client struct {
	baseURL string
	http    *http.Client
	stream  *http.Client
}

// NewClient returns a client for the service at baseURL. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		stream:  &http.Client{},
	}
}

// Request describes one analysis run.
type Request struct {
	Session string   `json:"session"`
	Root    string   `json:"root"`
	Tools   []string `json:"tools,omitempty"` // nil means every enabled tool
}

// Line is one framed line of a run stream. A terminal transport failure arrives as the final Line with Err set; cancellation and clean EOF just close the
// channel.
type Line struct {
	Text string
	Err  error
}

// Stream is one run's NDJSON response feed.
type Stream struct {
	lines      chan Line
	cancel     context.CancelFunc
	cancelOnce sync.Once
	runID      string
	client     *Client
}

// Lines returns the channel of framed stream lines. It closes when the stream ends, fails, or is cancelled.
func (s *Stream) Lines() <-chan Line {
	return s.lines
}

// RunID returns the server-assigned run id, or "" if the server sent none.
func (s *Stream) RunID() string {
	return s.runID
}

// Cancel stops line delivery and, when the server assigned a run id, asks it to abort the run. Safe to call more than once.
func (s *Stream) Cancel() {
	s.cancelOnce.Do(func() {
		s.cancel()
		if s.runID != "" {
			go s.client.cancelRun(s.runID)
		}
	})
}

// Close releases the stream's connection without telling the server anything. Use after the stream delivered its final message; Cancel is for abandoning a
// run that may still be executing.
func (s *Stream) Close() {
	s.cancelOnce.Do(s.cancel)
}

func (c *Client) cancelRun(runID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/runs/"+url.PathEscape(runID)+"/cancel", nil, nil); err != nil {
		simplelogger.Log("backend: cancel run %s: %v", runID, err)
	}
}

// Start begins an analysis run. The returned stream delivers the backend's NDJSON response incrementally; interpreting the lines is the caller's business.
// ctx governs the whole stream: cancelling it (or calling Cancel) ends delivery without an error line.
func (c *Client) Start(ctx context.Context, req Request) (*Stream, error) {
	blob, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal run request: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/runs", bytes.NewReader(blob))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build run request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.stream.Do(httpReq)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("start run: %w", err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		cancel()

		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && strings.TrimSpace(apiErr.Error) != "" {
			return nil, fmt.Errorf("start run: %s", apiErr.Error)
		}
		return nil, fmt.Errorf("start run: status %d", resp.StatusCode)
	}

	s := &Stream{
		lines:  make(chan Line, 16),
		cancel: cancel,
		runID:  resp.Header.Get(runIDHeader),
		client: c,
	}
	go s.pump(ctx, resp.Body)
	return s, nil
}

// pump reads body chunks, frames them into lines, and feeds the channel until EOF, error, or cancellation.
func (s *Stream) pump(ctx context.Context, body io.ReadCloser) {
	defer close(s.lines)
	defer body.Close()

	deliver := func(line Line) bool {
		select {
		case s.lines <- line:
			return true
		case <-ctx.Done():
			return false
		}
	}

	var framer jsonl.Framer
	buf := make([]byte, 32*1024)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			for _, text := range framer.Feed(buf[:n]) {
				if !deliver(Line{Text: text}) {
					return
				}
			}
		}
		if err == nil {
			continue
		}

		if tail, ok := framer.Flush(); ok {
			if !deliver(Line{Text: tail}) {
				return
			}
		}
		if err != io.EOF && ctx.Err() == nil {
			deliver(Line{Err: fmt.Errorf("stream read: %w", err)})
		}
		return
	}
}

// Info is the health endpoint's payload.
type Info struct {
	OK      bool   `json:"ok"`
	TempDir string `json:"temp_dir"`
	Version string `json:"version"`
}

// Health checks the service and returns its self-reported info.
func (c *Client) Health(ctx context.Context) (Info, error) {
	var info Info
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/health", nil, &info); err != nil {
		return Info{}, err
	}
	if !info.OK {
		return info, errors.New("service reports unhealthy")
	}
	return info, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		blob, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request payload: %w", err)
		}
		body = bytes.NewReader(blob)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		blob, _ := io.ReadAll(resp.Body)
		var apiErr apiError
		if json.Unmarshal(blob, &apiErr) == nil && strings.TrimSpace(apiErr.Error) != "" {
			return fmt.Errorf("api %s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("api %s %s failed with status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
