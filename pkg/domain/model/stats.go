package model

import "time"

// RunStats summarizes the durations of a set of runs. Min and Max are nil
// exactly when Count is zero.
type RunStats struct {
	Count int
	Total time.Duration
	Min   *time.Duration
	Max   *time.Duration
}

// Add folds one run duration into the stats.
func (s *RunStats) Add(d time.Duration) {
	s.Count++
	s.Total += d
	if s.Min == nil || d < *s.Min {
		s.Min = &d
	}
	if s.Max == nil || d > *s.Max {
		s.Max = &d
	}
}

// WorkflowStats is the outcome of one statistics pipeline. Err is set when
// the pipeline failed, in which case Stats is incomplete and must not be
// counted.
type WorkflowStats struct {
	Workflow *Workflow
	Stats    RunStats
	Err      error
}

type StatsSummary struct {
	Workflows int
	Failed    int
	Total     time.Duration
}
