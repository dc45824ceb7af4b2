package pagination

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds batch fetcher configuration
type Config struct {
	// BaseURL is the collection URL the page index is appended to
	BaseURL string
	// PageSuffix is appended after the page index (e.g. "/")
	PageSuffix string
	// Timeout per page fetch. A probe that times out counts as empty.
	Timeout time.Duration
}

// DefaultConfig returns the default configuration for baseURL
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: 15 * time.Second,
	}
}

// PageFetcher is the HTTP fetch capability the batch fetcher probes pages with.
type PageFetcher interface {
	// FetchPage fetches url and returns the HTTP status and the body length in bytes.
	// A transport failure is reported as an error.
	FetchPage(ctx context.Context, url string) (status int, bodyLength int, err error)
}

// ProbeResult is the classified outcome of fetching one page.
// ContentSize is 0 for an empty body, a non-200 status or a failed fetch.
type ProbeResult struct {
	Index       int
	ContentSize int
}

// ProbeBatch holds the results of one batch in ascending index order.
type ProbeBatch []ProbeResult

// BatchFetcher probes every sampled page of a window concurrently.
type BatchFetcher struct {
	fetcher PageFetcher
	config  Config
	logger  zerolog.Logger
}

// NewBatchFetcher creates a new batch fetcher
func NewBatchFetcher(fetcher PageFetcher, config Config) *BatchFetcher {
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	return &BatchFetcher{
		fetcher: fetcher,
		config:  config,
		logger:  log.With().Str("component", "pagination").Logger(),
	}
}

// PageURL returns the URL of page index.
func (bf *BatchFetcher) PageURL(index int) string {
	return bf.config.BaseURL + strconv.Itoa(index) + bf.config.PageSuffix
}

// FetchBatch fetches every index of window concurrently and returns once all of
// them have completed. Results keep the window's ascending index order.
func (bf *BatchFetcher) FetchBatch(ctx context.Context, window SearchWindow) ProbeBatch {
	start := time.Now()
	indices := window.Indices()
	batch := make(ProbeBatch, len(indices))

	var wg sync.WaitGroup
	for i, index := range indices {
		wg.Add(1)
		go func(slot, index int) {
			defer wg.Done()
			batch[slot] = ProbeResult{
				Index:       index,
				ContentSize: bf.probe(ctx, index),
			}
		}(i, index)
	}
	wg.Wait()

	BatchesTotal.Inc()
	BatchDuration.Observe(time.Since(start).Seconds())

	bf.logger.Info().
		Int("start", window.Start).
		Int("end", window.End).
		Int("step", window.Step).
		Int("probes", len(batch)).
		Dur("duration", time.Since(start)).
		Msg("Probe batch complete")

	return batch
}

// probe fetches one page and reduces the response to its content size.
func (bf *BatchFetcher) probe(ctx context.Context, index int) int {
	pageCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
	defer cancel()

	url := bf.PageURL(index)
	status, length, err := bf.fetcher.FetchPage(pageCtx, url)
	if err != nil {
		bf.logger.Debug().
			Err(err).
			Int("page", index).
			Msg("Page probe failed, counting as empty")
		return 0
	}

	bf.logger.Debug().
		Int("page", index).
		Int("status", status).
		Int("content_size", length).
		Msg("Page probed")

	if status != http.StatusOK {
		return 0
	}
	return length
}
