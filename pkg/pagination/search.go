package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SearchConfig holds boundary search configuration.
type SearchConfig struct {
	// InitialFirstPage is the first page index of the collection.
	InitialFirstPage int

	// ScopeSize is the number of indices searched before advancing to the next scope.
	ScopeSize int

	// PopulatedPageThreshold is the body size in bytes a page must exceed to count
	// as populated. Smaller non-empty bodies are template pages.
	PopulatedPageThreshold int

	// MaxScopes bounds the number of scopes searched (0 = unbounded).
	MaxScopes int
}

// DefaultSearchConfig returns the default search configuration.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		InitialFirstPage:       1,
		ScopeSize:              200,
		PopulatedPageThreshold: 89000,
		MaxScopes:              0,
	}
}

// Validate checks the configuration invariants.
func (c SearchConfig) Validate() error {
	if c.ScopeSize < 1 {
		return &ConfigError{Field: "scope_size", Reason: "must be >= 1", Value: c.ScopeSize}
	}
	if c.PopulatedPageThreshold < 0 {
		return &ConfigError{Field: "populated_page_threshold", Reason: "must be >= 0", Value: c.PopulatedPageThreshold}
	}
	if c.MaxScopes < 0 {
		return &ConfigError{Field: "max_scopes", Reason: "must be >= 0", Value: c.MaxScopes}
	}
	return nil
}

// BatchExecutor fetches one probe batch per window.
type BatchExecutor interface {
	FetchBatch(ctx context.Context, window SearchWindow) ProbeBatch
}

// Transition is the next step of the search after a batch has been classified.
type Transition int

const (
	// TransitionNarrow probes the window between floor and ceiling next.
	TransitionNarrow Transition = iota

	// TransitionFound means floor and ceiling are adjacent and the floor is the result.
	TransitionFound

	// TransitionScopeExhausted means the scope held no empty page.
	TransitionScopeExhausted
)

// String returns the transition name.
func (t Transition) String() string {
	switch t {
	case TransitionNarrow:
		return "narrow"
	case TransitionFound:
		return "found"
	case TransitionScopeExhausted:
		return "scope_exhausted"
	default:
		return "unknown"
	}
}

// Classification is the floor/ceiling pair derived from one batch.
type Classification struct {
	// Floor is the highest populated index seen, or the previous floor.
	Floor int

	// Confirmed reports whether Floor has been observed above the threshold.
	Confirmed bool

	// Ceiling is the first template page after the populated region.
	// Only meaningful when HasCeiling is true.
	Ceiling    int
	HasCeiling bool
}

// Classify scans batch in ascending order starting from the given floor.
// Empty results are skipped. Results above threshold raise the floor. The first
// non-empty result at or below threshold that follows a confirmed populated page
// becomes the ceiling and ends the scan.
func Classify(batch ProbeBatch, floor int, confirmed bool, threshold int) Classification {
	c := Classification{Floor: floor, Confirmed: confirmed}
	for _, result := range batch {
		switch {
		case result.ContentSize == 0:
			continue
		case result.ContentSize > threshold:
			if result.Index >= c.Floor {
				c.Floor = result.Index
			}
			c.Confirmed = true
		case c.Confirmed && result.Index > c.Floor:
			c.Ceiling = result.Index
			c.HasCeiling = true
			return c
		}
	}
	return c
}

// SearchState is the running state of one discovery run.
type SearchState struct {
	// FloorIndex is the highest populated index found so far.
	FloorIndex int

	// Confirmed reports whether FloorIndex was observed above the threshold.
	Confirmed bool

	// CeilingIndex is the lowest template page above the floor in the current scope.
	CeilingIndex int
	HasCeiling   bool

	// OriginOffset is the lower bound of the current scope.
	OriginOffset int

	// Scopes is the number of scopes entered, Batches the number of batches probed.
	Scopes  int
	Batches int
}

// NewSearchState returns the initial state for cfg.
func NewSearchState(cfg SearchConfig) *SearchState {
	return &SearchState{
		FloorIndex:   cfg.InitialFirstPage,
		OriginOffset: cfg.InitialFirstPage,
		Scopes:       1,
	}
}

// Apply folds a classification into the state and returns the next transition.
// A classification without a ceiling keeps the ceiling of the previous batch.
func (s *SearchState) Apply(c Classification) Transition {
	s.FloorIndex = c.Floor
	s.Confirmed = c.Confirmed
	if c.HasCeiling {
		s.CeilingIndex = c.Ceiling
		s.HasCeiling = true
	}

	switch {
	case !s.HasCeiling:
		return TransitionScopeExhausted
	case s.CeilingIndex-s.FloorIndex == 1:
		return TransitionFound
	default:
		return TransitionNarrow
	}
}

// AdvanceScope moves the origin to the next scope.
func (s *SearchState) AdvanceScope(scopeSize int) {
	s.OriginOffset += scopeSize
	s.HasCeiling = false
	s.CeilingIndex = 0
	s.Scopes++
}

// ScopeWindow returns the window covering the current scope.
func (s *SearchState) ScopeWindow(scopeSize int) (SearchWindow, error) {
	return NewWindow(s.OriginOffset, s.OriginOffset+scopeSize)
}

// NarrowWindow returns the window between the current floor and ceiling.
func (s *SearchState) NarrowWindow() (SearchWindow, error) {
	return NewWindow(s.FloorIndex, s.CeilingIndex)
}

// SearchResult is the outcome of a completed search.
type SearchResult struct {
	LastPage int
	Scopes   int
	Batches  int
	Duration time.Duration
}

// Searcher drives batches until the populated/empty boundary is isolated.
// Every search owns its own state, so one Searcher can serve concurrent runs.
type Searcher struct {
	executor BatchExecutor
	config   SearchConfig
	logger   zerolog.Logger
}

// NewSearcher creates a searcher. An invalid configuration returns a *ConfigError.
func NewSearcher(executor BatchExecutor, cfg SearchConfig) (*Searcher, error) {
	if executor == nil {
		return nil, fmt.Errorf("batch executor is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Searcher{
		executor: executor,
		config:   cfg,
		logger:   log.With().Str("component", "pagination").Logger(),
	}, nil
}

// FindLastPopulatedIndex returns the index of the last populated page.
func (s *Searcher) FindLastPopulatedIndex(ctx context.Context) (int, error) {
	result, err := s.Search(ctx)
	if err != nil {
		return 0, err
	}
	return result.LastPage, nil
}

// Search runs the boundary search to completion.
// It only fails on a degenerate window, context cancellation or, when
// MaxScopes is set, after that many scopes without an empty page.
func (s *Searcher) Search(ctx context.Context) (*SearchResult, error) {
	start := time.Now()
	state := NewSearchState(s.config)

	window, err := state.ScopeWindow(s.config.ScopeSize)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("first_page", s.config.InitialFirstPage).
		Int("scope_size", s.config.ScopeSize).
		Int("threshold", s.config.PopulatedPageThreshold).
		Msg("Starting last page search")

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("search cancelled after %d batches: %w", state.Batches, err)
		}

		batch := s.executor.FetchBatch(ctx, window)
		state.Batches++
		s.observe(batch)

		c := Classify(batch, state.FloorIndex, state.Confirmed, s.config.PopulatedPageThreshold)
		transition := state.Apply(c)

		s.logger.Debug().
			Int("floor", state.FloorIndex).
			Int("ceiling", state.CeilingIndex).
			Bool("has_ceiling", state.HasCeiling).
			Str("transition", transition.String()).
			Msg("Batch classified")

		switch transition {
		case TransitionFound:
			elapsed := time.Since(start)
			DiscoveryDuration.Observe(elapsed.Seconds())
			s.logger.Info().
				Int("last_page", state.FloorIndex).
				Int("scopes", state.Scopes).
				Int("batches", state.Batches).
				Dur("duration", elapsed).
				Msg("Last page found")
			return &SearchResult{
				LastPage: state.FloorIndex,
				Scopes:   state.Scopes,
				Batches:  state.Batches,
				Duration: elapsed,
			}, nil

		case TransitionNarrow:
			window, err = state.NarrowWindow()

		case TransitionScopeExhausted:
			if s.config.MaxScopes > 0 && state.Scopes >= s.config.MaxScopes {
				return nil, fmt.Errorf("%w: %d scopes of %d pages from page %d",
					ErrMaxScopesExceeded, state.Scopes, s.config.ScopeSize, s.config.InitialFirstPage)
			}
			state.AdvanceScope(s.config.ScopeSize)
			ScopeAdvancesTotal.Inc()
			s.logger.Warn().
				Int("origin_offset", state.OriginOffset).
				Int("floor", state.FloorIndex).
				Int("scopes", state.Scopes).
				Msg("No empty page in scope, advancing")
			window, err = state.ScopeWindow(s.config.ScopeSize)
		}
		if err != nil {
			return nil, err
		}
	}
}

// observe records probe outcomes for one batch.
func (s *Searcher) observe(batch ProbeBatch) {
	for _, result := range batch {
		switch {
		case result.ContentSize == 0:
			ProbesTotal.WithLabelValues(OutcomeEmpty).Inc()
		case result.ContentSize > s.config.PopulatedPageThreshold:
			ProbesTotal.WithLabelValues(OutcomePopulated).Inc()
		default:
			ProbesTotal.WithLabelValues(OutcomeTemplate).Inc()
		}
	}
}
