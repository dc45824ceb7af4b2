package discovery

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/lastpage/internal/testutil"
	"github.com/Sternrassler/lastpage/pkg/pagination"
	"github.com/Sternrassler/lastpage/pkg/store"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

type memoryRecorder struct {
	mu      sync.Mutex
	records []store.Record
	err     error
}

func (r *memoryRecorder) Record(ctx context.Context, rec store.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, rec)
	return nil
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions("http://example.com/")

	if opts.BaseURL != "http://example.com/" {
		t.Errorf("BaseURL = %q", opts.BaseURL)
	}
	if opts.Search != pagination.DefaultSearchConfig() {
		t.Errorf("Search = %+v, want defaults", opts.Search)
	}
	if opts.UserAgent != DefaultUserAgent {
		t.Errorf("UserAgent = %q, want %q", opts.UserAgent, DefaultUserAgent)
	}
}

func TestRun_PopulatedPrefix(t *testing.T) {
	provider := testutil.NewMockProvider(
		testutil.PageRange{First: 1, Last: 57, Size: 90000},
		testutil.PageRange{First: 58, Last: 400, Size: 500},
	)
	defer provider.Close()

	result, err := Run(context.Background(), DefaultOptions(provider.BaseURL()))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.LastPage != 57 {
		t.Errorf("LastPage = %d, want 57", result.LastPage)
	}
	if result.ElapsedSeconds <= 0 {
		t.Errorf("ElapsedSeconds = %v, want > 0", result.ElapsedSeconds)
	}
	if result.Scopes != 1 {
		t.Errorf("Scopes = %d, want 1", result.Scopes)
	}
	if provider.RequestCount() != 22 {
		t.Errorf("RequestCount = %d, want 22 (10 + 10 + 2)", provider.RequestCount())
	}
}

func TestRun_BoundaryBeyondFirstScope(t *testing.T) {
	provider := testutil.NewMockProvider(
		testutil.PageRange{First: 1, Last: 250, Size: 90000},
		testutil.PageRange{First: 251, Last: 300, Size: 500},
	)
	defer provider.Close()

	result, err := Run(context.Background(), DefaultOptions(provider.BaseURL()))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.LastPage != 250 {
		t.Errorf("LastPage = %d, want 250", result.LastPage)
	}
	if result.Scopes != 2 {
		t.Errorf("Scopes = %d, want 2", result.Scopes)
	}
	if provider.PageRequests(201) != 1 {
		t.Errorf("page 201 requested %d times, second scope should start there", provider.PageRequests(201))
	}
}

func TestRun_ServerErrorTreatedAsEmpty(t *testing.T) {
	provider := testutil.NewMockProvider(
		testutil.PageRange{First: 0, Last: 31, Size: 90000},
		testutil.PageRange{First: 32, Last: 500, Size: 500},
	)
	defer provider.Close()
	provider.SetStatus(30, http.StatusInternalServerError)

	opts := DefaultOptions(provider.BaseURL())
	opts.Search.InitialFirstPage = 0

	result, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.LastPage != 31 {
		t.Errorf("LastPage = %d, want 31", result.LastPage)
	}
	if provider.PageRequests(30) == 0 {
		t.Error("page 30 should have been probed")
	}
}

func TestRun_PageSuffix(t *testing.T) {
	provider := testutil.NewMockProvider(
		testutil.PageRange{First: 1, Last: 12, Size: 90000},
		testutil.PageRange{First: 13, Last: 300, Size: 500},
	)
	defer provider.Close()
	provider.SetSuffix("/")

	opts := DefaultOptions(provider.BaseURL())
	opts.PageSuffix = "/"

	result, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.LastPage != 12 {
		t.Errorf("LastPage = %d, want 12", result.LastPage)
	}
}

func TestRun_Idempotent(t *testing.T) {
	provider := testutil.NewMockProvider(
		testutil.PageRange{First: 1, Last: 143, Size: 92000},
		testutil.PageRange{First: 144, Last: 600, Size: 1500},
	)
	defer provider.Close()

	first, err := Run(context.Background(), DefaultOptions(provider.BaseURL()))
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	second, err := Run(context.Background(), DefaultOptions(provider.BaseURL()))
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if first.LastPage != 143 || second.LastPage != 143 {
		t.Errorf("LastPage = %d and %d, want 143", first.LastPage, second.LastPage)
	}
	if first.Batches != second.Batches {
		t.Errorf("Batches differ: %d vs %d", first.Batches, second.Batches)
	}
}

func TestRun_ConcurrentRuns(t *testing.T) {
	providers := []*testutil.MockProvider{
		testutil.NewMockProvider(testutil.PageRange{First: 1, Last: 20, Size: 90000}, testutil.PageRange{First: 21, Last: 300, Size: 500}),
		testutil.NewMockProvider(testutil.PageRange{First: 1, Last: 220, Size: 90000}, testutil.PageRange{First: 221, Last: 500, Size: 500}),
	}
	want := []int{20, 220}

	var wg sync.WaitGroup
	got := make([]int, len(providers))
	errs := make([]error, len(providers))
	for i, p := range providers {
		defer p.Close()
		wg.Add(1)
		go func(i int, p *testutil.MockProvider) {
			defer wg.Done()
			result, err := Run(context.Background(), DefaultOptions(p.BaseURL()))
			if err != nil {
				errs[i] = err
				return
			}
			got[i] = result.LastPage
		}(i, p)
	}
	wg.Wait()

	for i := range providers {
		if errs[i] != nil {
			t.Errorf("run %d error = %v", i, errs[i])
		}
		if got[i] != want[i] {
			t.Errorf("run %d LastPage = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestRun_ConfigErrorsBeforeAnyRequest(t *testing.T) {
	provider := testutil.NewMockProvider(testutil.PageRange{First: 1, Last: 10, Size: 90000})
	defer provider.Close()

	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"empty base url", func(o *Options) { o.BaseURL = "" }},
		{"relative base url", func(o *Options) { o.BaseURL = "/pages/" }},
		{"unsupported scheme", func(o *Options) { o.BaseURL = "ftp://example.com/" }},
		{"zero scope", func(o *Options) { o.Search.ScopeSize = 0 }},
		{"negative threshold", func(o *Options) { o.Search.PopulatedPageThreshold = -1 }},
		{"negative timeout", func(o *Options) { o.Timeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions(provider.BaseURL())
			tt.mutate(&opts)

			_, err := Run(context.Background(), opts)
			if err == nil {
				t.Fatal("Run() should fail")
			}
			if !pagination.IsConfigError(err) {
				t.Errorf("Run() error = %v, want *ConfigError", err)
			}
		})
	}

	if provider.RequestCount() != 0 {
		t.Errorf("RequestCount = %d, want 0", provider.RequestCount())
	}
}

func TestRun_RecordsResult(t *testing.T) {
	provider := testutil.NewMockProvider(
		testutil.PageRange{First: 1, Last: 77, Size: 90000},
		testutil.PageRange{First: 78, Last: 300, Size: 500},
	)
	defer provider.Close()

	recorder := &memoryRecorder{}
	opts := DefaultOptions(provider.BaseURL())
	opts.Recorder = recorder

	result, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(recorder.records) != 1 {
		t.Fatalf("recorded %d results, want 1", len(recorder.records))
	}
	rec := recorder.records[0]
	if rec.LastPage != 77 || rec.BaseURL != provider.BaseURL() {
		t.Errorf("record = %+v, want last page 77 for %s", rec, provider.BaseURL())
	}
	if !rec.FinishedAt.Equal(result.FinishedAt) {
		t.Errorf("FinishedAt = %v, want %v", rec.FinishedAt, result.FinishedAt)
	}
}

func TestRun_RecorderFailureIsNotFatal(t *testing.T) {
	provider := testutil.NewMockProvider(
		testutil.PageRange{First: 1, Last: 5, Size: 90000},
		testutil.PageRange{First: 6, Last: 300, Size: 500},
	)
	defer provider.Close()

	opts := DefaultOptions(provider.BaseURL())
	opts.Recorder = &memoryRecorder{err: errors.New("redis down")}

	result, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.LastPage != 5 {
		t.Errorf("LastPage = %d, want 5", result.LastPage)
	}
}

func TestRun_MaxScopes(t *testing.T) {
	provider := testutil.NewMockProvider(testutil.PageRange{First: 1, Last: 100000, Size: 90000})
	defer provider.Close()

	opts := DefaultOptions(provider.BaseURL())
	opts.Search.MaxScopes = 2

	_, err := Run(context.Background(), opts)
	if !errors.Is(err, pagination.ErrMaxScopesExceeded) {
		t.Fatalf("Run() error = %v, want ErrMaxScopesExceeded", err)
	}
	if provider.RequestCount() != 20 {
		t.Errorf("RequestCount = %d, want 20", provider.RequestCount())
	}
}

func TestRun_Cancelled(t *testing.T) {
	provider := testutil.NewMockProvider(testutil.PageRange{First: 1, Last: 100000, Size: 90000})
	defer provider.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err := Run(ctx, DefaultOptions(provider.BaseURL()))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v, want context.DeadlineExceeded", err)
	}
}
