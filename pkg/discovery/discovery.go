// Package discovery runs one last page discovery: it builds the HTTP client,
// batch fetcher and searcher from Options, runs the search once and reports the
// last populated page together with the elapsed wall-clock time.
package discovery

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/lastpage/pkg/client"
	"github.com/Sternrassler/lastpage/pkg/pagination"
	"github.com/Sternrassler/lastpage/pkg/store"
)

// DefaultUserAgent is sent when Options.UserAgent is empty.
const DefaultUserAgent = "lastpage/0.1.0"

// Recorder persists the result of a run.
type Recorder interface {
	Record(ctx context.Context, rec store.Record) error
}

// Options configures one discovery run.
type Options struct {
	// BaseURL is the collection URL page indices are appended to (required)
	BaseURL string

	// PageSuffix is appended after the page index
	PageSuffix string

	// Search holds the boundary search parameters
	Search pagination.SearchConfig

	// Timeout per probe
	Timeout time.Duration

	// UserAgent sent with every probe
	UserAgent string

	// Recorder stores the result when set
	Recorder Recorder

	// Fetcher overrides the HTTP client (for testing)
	Fetcher pagination.PageFetcher
}

// DefaultOptions returns the default options for baseURL.
func DefaultOptions(baseURL string) Options {
	return Options{
		BaseURL:   baseURL,
		Search:    pagination.DefaultSearchConfig(),
		Timeout:   15 * time.Second,
		UserAgent: DefaultUserAgent,
	}
}

// Result is the outcome of a run.
type Result struct {
	BaseURL        string    `json:"base_url"`
	LastPage       int       `json:"last_page"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	Scopes         int       `json:"scopes"`
	Batches        int       `json:"batches"`
	FinishedAt     time.Time `json:"finished_at"`
}

// Validate checks opts before any request is made.
func (opts Options) Validate() error {
	if opts.BaseURL == "" {
		return &pagination.ConfigError{Field: "base_url", Reason: "is required"}
	}
	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return &pagination.ConfigError{Field: "base_url", Reason: err.Error(), Value: opts.BaseURL}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &pagination.ConfigError{Field: "base_url", Reason: "scheme must be http or https", Value: opts.BaseURL}
	}
	if u.Host == "" {
		return &pagination.ConfigError{Field: "base_url", Reason: "host is required", Value: opts.BaseURL}
	}
	if opts.Timeout < 0 {
		return &pagination.ConfigError{Field: "timeout", Reason: "must be >= 0", Value: opts.Timeout}
	}
	if err := opts.Search.Validate(); err != nil {
		return err
	}
	if _, err := pagination.NewWindow(opts.Search.InitialFirstPage, opts.Search.InitialFirstPage+opts.Search.ScopeSize); err != nil {
		return err
	}
	return nil
}

// Run performs one discovery. Only configuration errors, cancellation and an
// exceeded scope bound fail a run; probe failures never do.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := log.With().Str("component", "discovery").Str("base_url", opts.BaseURL).Logger()

	fetcher := opts.Fetcher
	if fetcher == nil {
		userAgent := opts.UserAgent
		if userAgent == "" {
			userAgent = DefaultUserAgent
		}
		c, err := client.New(client.DefaultConfig(userAgent))
		if err != nil {
			return nil, fmt.Errorf("create client: %w", err)
		}
		defer c.Close()
		fetcher = c
	}

	batchFetcher := pagination.NewBatchFetcher(fetcher, pagination.Config{
		BaseURL:    opts.BaseURL,
		PageSuffix: opts.PageSuffix,
		Timeout:    opts.Timeout,
	})

	searcher, err := pagination.NewSearcher(batchFetcher, opts.Search)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	found, err := searcher.Search(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover last page of %s: %w", opts.BaseURL, err)
	}
	elapsed := time.Since(start)

	result := &Result{
		BaseURL:        opts.BaseURL,
		LastPage:       found.LastPage,
		ElapsedSeconds: elapsed.Seconds(),
		Scopes:         found.Scopes,
		Batches:        found.Batches,
		FinishedAt:     time.Now().UTC(),
	}

	if opts.Recorder != nil {
		if err := opts.Recorder.Record(ctx, store.Record{
			BaseURL:        result.BaseURL,
			LastPage:       result.LastPage,
			ElapsedSeconds: result.ElapsedSeconds,
			Scopes:         result.Scopes,
			Batches:        result.Batches,
			FinishedAt:     result.FinishedAt,
		}); err != nil {
			logger.Warn().Err(err).Int("last_page", result.LastPage).Msg("Failed to record result")
		}
	}

	logger.Info().
		Int("last_page", result.LastPage).
		Float64("elapsed_seconds", result.ElapsedSeconds).
		Msg("Discovery complete")

	return result, nil
}
