package store

import "time"

// Record is the stored outcome of one discovery run.
type Record struct {
	// BaseURL is the collection URL page indices were appended to
	BaseURL string `json:"base_url"`

	// LastPage is the index of the last populated page
	LastPage int `json:"last_page"`

	// ElapsedSeconds is the wall-clock duration of the run
	ElapsedSeconds float64 `json:"elapsed_seconds"`

	// Scopes and Batches count the search effort
	Scopes  int `json:"scopes"`
	Batches int `json:"batches"`

	// FinishedAt is when the run completed
	FinishedAt time.Time `json:"finished_at"`
}

// Age returns how long ago the record was written.
// Returns 0 for a record without a finish time.
func (r *Record) Age() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return time.Since(r.FinishedAt)
}
