// Package testutil provides testing utilities for last page discovery.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// PageRange assigns a body size to the pages First..Last (inclusive).
type PageRange struct {
	First int
	Last  int
	Size  int
}

// MockProvider is a configurable fake paginated provider for testing.
// Page index N is served at "/N" followed by the configured suffix. Pages that are not
// covered by any range return 404.
type MockProvider struct {
	server *httptest.Server
	mu     sync.RWMutex
	suffix string
	ranges []PageRange
	status map[int]int
	delay  map[int]time.Duration

	requests map[int]int
	total    int
}

// NewMockProvider creates a new mock provider serving the given page ranges.
func NewMockProvider(ranges ...PageRange) *MockProvider {
	mock := &MockProvider{
		ranges:   ranges,
		status:   make(map[int]int),
		delay:    make(map[int]time.Duration),
		requests: make(map[int]int),
	}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// BaseURL returns the URL page indices are appended to.
func (m *MockProvider) BaseURL() string {
	return m.server.URL + "/"
}

// Close shuts down the mock server.
func (m *MockProvider) Close() {
	m.server.Close()
}

// SetSuffix sets the suffix expected after the page index (e.g. "/").
func (m *MockProvider) SetSuffix(suffix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suffix = suffix
}

// SetStatus makes page index answer with status and an error body.
func (m *MockProvider) SetStatus(index, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status[index] = status
}

// SetDelay delays the response for page index.
func (m *MockProvider) SetDelay(index int, delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay[index] = delay
}

// RequestCount returns the total number of requests served.
func (m *MockProvider) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.total
}

// PageRequests returns how often page index was requested.
func (m *MockProvider) PageRequests(index int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests[index]
}

// SizeOf returns the body size configured for page index, or -1 when uncovered.
func (m *MockProvider) SizeOf(index int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sizeOf(index)
}

func (m *MockProvider) sizeOf(index int) int {
	for _, r := range m.ranges {
		if index >= r.First && index <= r.Last {
			return r.Size
		}
	}
	return -1
}

func (m *MockProvider) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	path := strings.TrimPrefix(r.URL.Path, "/")
	if m.suffix != "" {
		path = strings.TrimSuffix(path, m.suffix)
	}
	index, err := strconv.Atoi(path)
	if err != nil {
		m.total++
		m.mu.Unlock()
		http.NotFound(w, r)
		return
	}
	m.total++
	m.requests[index]++
	status, hasStatus := m.status[index]
	delay := m.delay[index]
	size := m.sizeOf(index)
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if hasStatus {
		http.Error(w, http.StatusText(status), status)
		return
	}
	if size < 0 {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(size))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(strings.Repeat("x", size)))
}
