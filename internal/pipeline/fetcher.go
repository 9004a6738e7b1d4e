package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/ppiankov/rainier/internal/util"
)

// ErrTooLarge is returned when a remote document exceeds the size limit
var ErrTooLarge = errors.New("document exceeds size limit")

const fetchAttempts = 3

// fetchSleepFunc is replaced in tests
var fetchSleepFunc = time.Sleep

// Fetcher downloads contract documents from URLs
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

// NewFetcher creates a fetcher; maxBytes <= 0 disables the size limit.
// Proxies come from the environment.
func NewFetcher(timeout time.Duration, maxBytes int64) *Fetcher {
	client := util.NewHTTPClient(timeout, "", "", "")
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 3 {
			return fmt.Errorf("stopped after 3 redirects")
		}
		return nil
	}

	return &Fetcher{
		httpClient: client,
		userAgent:  "rainier/0.1 (+https://github.com/ppiankov/rainier)",
		maxBytes:   maxBytes,
	}
}

// FetchResult contains the downloaded document
type FetchResult struct {
	Filename    string
	ContentType string
	Content     []byte
	FinalURL    string
}

// Fetch downloads the document at rawURL
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/pdf,text/html;q=0.9,text/plain;q=0.8,*/*;q=0.5")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	var body io.Reader = resp.Body
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	content, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if f.maxBytes > 0 && int64(len(content)) > f.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.maxBytes)
	}

	finalURL := resp.Request.URL.String()

	return &FetchResult{
		Filename:    filenameFor(finalURL, resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
		Content:     content,
		FinalURL:    finalURL,
	}, nil
}

// FetchWithRetry retries transient failures with linear backoff
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var lastErr error
	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryableFetchError(err) || attempt == fetchAttempts || ctx.Err() != nil {
			break
		}
		fetchSleepFunc(time.Duration(attempt) * time.Second)
	}
	return nil, lastErr
}

// isRetryableFetchError reports whether a fetch error is worth retrying:
// 5xx and 429 responses, and transport failures
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()

	if strings.HasPrefix(msg, "unexpected status: ") {
		code := strings.TrimPrefix(msg, "unexpected status: ")
		return strings.HasPrefix(code, "5") || strings.HasPrefix(code, "429")
	}
	return strings.HasPrefix(msg, "fetch: ")
}

// filenameFor prefers the Content-Disposition filename, then the last URL
// path segment
func filenameFor(rawURL, disposition string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil && params["filename"] != "" {
			return path.Base(params["filename"])
		}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "document"
	}

	name := path.Base(strings.Trim(parsed.Path, "/"))
	if name == "." || name == "" {
		return parsed.Host
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}
