// Package stats summarizes the total durations of repeated runs.
package stats

import (
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
)

// Summary contains order statistics in milliseconds.
type Summary struct {
	Runs   int
	Min    float64
	Median float64
	P90    float64
	Max    float64
}

// Summarize computes the summary of totals.
func Summarize(totals []time.Duration) (*Summary, error) {
	data := make(stats.Float64Data, 0, len(totals))
	for _, total := range totals {
		data = append(data, float64(total)/float64(time.Millisecond))
	}
	minimum, err := stats.Min(data)
	if err != nil {
		return nil, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return nil, err
	}
	p90, err := stats.Percentile(data, 90)
	if err != nil {
		return nil, err
	}
	maximum, err := stats.Max(data)
	if err != nil {
		return nil, err
	}
	return &Summary{Runs: len(totals), Min: minimum, Median: median, P90: p90, Max: maximum}, nil
}

// String returns a single line summary.
func (s *Summary) String() string {
	return fmt.Sprintf("repeat: runs=%d min=%.1fms median=%.1fms p90=%.1fms max=%.1fms",
		s.Runs, s.Min, s.Median, s.P90, s.Max)
}

// Pretty returns the REPEAT section of the pretty output.
func (s *Summary) Pretty() string {
	return fmt.Sprintf("\nREPEAT (%d runs)\n  min:    %8.1f ms\n  median: %8.1f ms\n  p90:    %8.1f ms\n  max:    %8.1f ms\n",
		s.Runs, s.Min, s.Median, s.P90, s.Max)
}
