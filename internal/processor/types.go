package processor

import (
	"log/slog"
	"runtime"
	"time"

	"squash/pkg/assetkind"
)

// Options configures a Run.
type Options struct {
	// Threads is the width of the worker pool shared by all categories.
	Threads int
	// Transformers binds each category with tasks to its optimizer.
	Transformers map[assetkind.Category]Transformer
	Logger       *slog.Logger
}

// DefaultThreads leaves one logical CPU free for the rest of the system.
func DefaultThreads() int {
	return max(runtime.NumCPU()-1, 1)
}

type job struct {
	path     string
	category assetkind.Category
	engine   Engine
	counters *Counters
	done     func()
}

// CategorySummary is the final state of one category's pipeline.
type CategorySummary struct {
	Category   assetkind.Category
	Discovered int
	Snapshot
}

// Summary is produced once every pipeline has joined.
type Summary struct {
	Categories []CategorySummary
	Elapsed    time.Duration
}

// Category returns the summary for c, if c had any tasks.
func (s Summary) Category(c assetkind.Category) (CategorySummary, bool) {
	for _, cs := range s.Categories {
		if cs.Category == c {
			return cs, true
		}
	}
	return CategorySummary{}, false
}
