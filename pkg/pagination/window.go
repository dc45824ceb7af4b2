package pagination

// samplesPerWindow is the number of evenly spaced samples a window aims for.
const samplesPerWindow = 10

// SearchWindow is the half-open index range [Start, End) probed by one batch,
// sampled every Step indices.
type SearchWindow struct {
	Start int
	End   int
	Step  int
}

// NewWindow builds the window [start, end) with the derived step.
// A degenerate range returns a *ConfigError.
func NewWindow(start, end int) (SearchWindow, error) {
	if start >= end {
		return SearchWindow{}, &ConfigError{
			Field:  "window",
			Reason: "start must be lower than end",
			Value:  [2]int{start, end},
		}
	}
	return SearchWindow{Start: start, End: end, Step: deriveStep(start, end)}, nil
}

// deriveStep returns max(1, (end-start)/10).
func deriveStep(start, end int) int {
	step := (end - start) / samplesPerWindow
	if step < 1 {
		return 1
	}
	return step
}

// Indices returns the sampled indices Start, Start+Step, ... below End.
func (w SearchWindow) Indices() []int {
	if w.Step < 1 || w.Start >= w.End {
		return nil
	}
	indices := make([]int, 0, (w.End-w.Start+w.Step-1)/w.Step)
	for i := w.Start; i < w.End; i += w.Step {
		indices = append(indices, i)
	}
	return indices
}

// Size returns the width of the window.
func (w SearchWindow) Size() int {
	return w.End - w.Start
}
