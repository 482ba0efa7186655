// Package profiler - wall time tracking for the sequential stages of a
// conversion.
package profiler

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Stage is the timing of one completed stage.
type Stage struct {
	// Name of the stage, e.g. "decode".
	Name string
	// Duration is the wall time the stage took.
	Duration time.Duration
}

// Stages records stage timings in completion order. The zero value is ready
// to use.
type Stages struct {
	mu     sync.Mutex
	stages []Stage
}

// Start begins timing a stage.
//
// Arguments:
// - name: The name of the stage to track
//
// Returns:
// - A function to call when the stage completes
func (s *Stages) Start(name string) func() {
	start := time.Now()
	return func() {
		s.record(name, time.Since(start))
	}
}

func (s *Stages) record(name string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages = append(s.stages, Stage{Name: name, Duration: d})
}

// List returns a copy of the recorded stages.
func (s *Stages) List() []Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Stage(nil), s.stages...)
}

// Total returns the sum of all recorded stage durations.
func (s *Stages) Total() time.Duration {
	var total time.Duration
	for _, st := range s.List() {
		total += st.Duration
	}
	return total
}

// LogValue renders the stages as a log group of name=duration pairs.
func (s *Stages) LogValue() slog.Value {
	list := s.List()
	attrs := make([]slog.Attr, len(list))
	for i, st := range list {
		attrs[i] = slog.Duration(st.Name, st.Duration)
	}
	return slog.GroupValue(attrs...)
}

// FormatBytes formats byte counts in human-readable format.
func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
