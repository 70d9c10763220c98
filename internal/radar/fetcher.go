package radar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/trogers1052/opportunity-radar/internal/models"
)

// Fetcher retrieves the full opportunity list
type Fetcher interface {
	Fetch(ctx context.Context) ([]models.OpportunityRecord, error)
	Source() string
}

// NewFetcher picks a FileFetcher for file:// sources and an HTTPFetcher otherwise
func NewFetcher(source string, timeout time.Duration) (Fetcher, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("invalid source url %q: %w", source, err)
	}

	switch u.Scheme {
	case "file":
		path := u.Path
		if u.Host != "" && u.Host != "localhost" {
			path = u.Host + path
		}
		return NewFileFetcher(path), nil
	case "http", "https":
		return NewHTTPFetcher(source, timeout), nil
	}
	return nil, fmt.Errorf("unsupported source scheme %q", u.Scheme)
}

// HTTPFetcher loads the snapshot from an HTTP endpoint, bypassing caches
type HTTPFetcher struct {
	url    string
	client *http.Client
	now    func() time.Time
}

// NewHTTPFetcher creates a fetcher for url
func NewHTTPFetcher(url string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		url:    url,
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}
}

// Source returns the configured endpoint
func (f *HTTPFetcher) Source() string {
	return f.url
}

// Fetch issues GET <url>?<unix millis>. Any non-2xx status or undecodable body is an error.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]models.OpportunityRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.requestURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return decodeRecords(resp.Body)
}

func (f *HTTPFetcher) requestURL() string {
	sep := "?"
	if strings.Contains(f.url, "?") {
		sep = "&"
	}
	return f.url + sep + strconv.FormatInt(f.now().UnixMilli(), 10)
}

// FileFetcher reads the snapshot file written by the offline generator
type FileFetcher struct {
	path string
}

// NewFileFetcher creates a fetcher for a local JSON file
func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{path: path}
}

// Source returns the file path as a file:// URL
func (f *FileFetcher) Source() string {
	return "file://" + f.path
}

// Fetch reads and decodes the file on every call
func (f *FileFetcher) Fetch(ctx context.Context) ([]models.OpportunityRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer file.Close()

	return decodeRecords(file)
}

func decodeRecords(r io.Reader) ([]models.OpportunityRecord, error) {
	var records []models.OpportunityRecord
	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode opportunities: %w", err)
	}
	// the body must be exactly one JSON document
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("failed to decode opportunities: trailing data after document")
	}
	if records == nil {
		records = []models.OpportunityRecord{}
	}
	return records, nil
}
