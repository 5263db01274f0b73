package models

import "time"

// Tally counts payload outcomes for one kind of output.
type Tally struct {
	OK      int
	Skipped int
	Failed  int
	// Planned counts payloads a dry run would have written.
	Planned int
}

// Total is the number of payloads considered.
func (t Tally) Total() int {
	return t.OK + t.Skipped + t.Failed + t.Planned
}

// Add returns the field-wise sum of t and o.
func (t Tally) Add(o Tally) Tally {
	return Tally{
		OK:      t.OK + o.OK,
		Skipped: t.Skipped + o.Skipped,
		Failed:  t.Failed + o.Failed,
		Planned: t.Planned + o.Planned,
	}
}

// RunResult holds the overall result of a conversion run.
type RunResult struct {
	StartTime time.Time
	EndTime   time.Time

	Items        int
	Posts        int
	DroppedPosts int

	Markdown  Tally
	Images    Tally
	Processed int

	ErrorsByType map[string]int
	FailedPaths  []string
}

// Duration is the wall time of the run.
func (r *RunResult) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}
