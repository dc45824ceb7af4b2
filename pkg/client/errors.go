package client

import (
	"errors"
	"fmt"
)

// FetchError describes a page fetch that did not produce a complete response.
type FetchError struct {
	URL        string
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error fetching %s (status %d): %s: %v",
			e.ErrorClass, e.URL, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error fetching %s: %s: %v",
		e.ErrorClass, e.URL, e.Message, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// ClassOf returns the error class of err, or "" when err is not a *FetchError.
func ClassOf(err error) ErrorClass {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.ErrorClass
	}
	return ""
}
