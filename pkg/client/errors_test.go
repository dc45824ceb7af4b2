package client

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestFetchError_Error(t *testing.T) {
	tests := []struct {
		name     string
		fetchErr *FetchError
		expected string
	}{
		{
			name: "network error",
			fetchErr: &FetchError{
				URL:        "http://example.com/5",
				ErrorClass: ErrorClassNetwork,
				Message:    "request failed",
				Err:        errors.New("connection refused"),
			},
			expected: "network error fetching http://example.com/5: request failed: connection refused",
		},
		{
			name: "error with status",
			fetchErr: &FetchError{
				URL:        "http://example.com/5",
				StatusCode: 200,
				ErrorClass: ErrorClassNetwork,
				Message:    "read body",
				Err:        io.ErrUnexpectedEOF,
			},
			expected: "network error fetching http://example.com/5 (status 200): read body: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fetchErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFetchError_Unwrap(t *testing.T) {
	fetchErr := &FetchError{
		URL:        "http://example.com/1",
		ErrorClass: ErrorClassNetwork,
		Message:    "request failed",
		Err:        io.EOF,
	}

	if !errors.Is(fetchErr, io.EOF) {
		t.Error("errors.Is should find the wrapped error")
	}
}

func TestClassOf(t *testing.T) {
	wrapped := fmt.Errorf("probe: %w", &FetchError{ErrorClass: ErrorClassServer, Err: io.EOF})

	if got := ClassOf(wrapped); got != ErrorClassServer {
		t.Errorf("ClassOf(wrapped) = %q, want %q", got, ErrorClassServer)
	}
	if got := ClassOf(errors.New("plain")); got != "" {
		t.Errorf("ClassOf(plain) = %q, want empty", got)
	}
	if got := ClassOf(nil); got != "" {
		t.Errorf("ClassOf(nil) = %q, want empty", got)
	}
}
