// Package ledger maintains the durable, mergeable record of remediation
// progress across runs.
package ledger

import (
	"time"
)

// historyDateFormat is the timestamp format for history entries.
const historyDateFormat = time.RFC3339

// Bucket holds per-module remediation totals.
type Bucket struct {
	Total int `json:"total"`
	Fixed int `json:"fixed"`
}

// Entry is one dated history record summarizing a run.
type Entry struct {
	Date       string `json:"date"`
	FilesFixed int    `json:"files_fixed"`
	Notes      string `json:"notes,omitempty"`
}

// Document is the persisted ledger structure.
type Document struct {
	TotalFiles int               `json:"total_files"`
	FixedFiles int               `json:"fixed_files"`
	PerModule  map[string]Bucket `json:"per_module"`
	History    []Entry           `json:"history"`
}

// NewDocument returns an empty, initialized ledger document.
func NewDocument() *Document {
	return &Document{PerModule: map[string]Bucket{}, History: []Entry{}}
}

// RunSummary is the input to a ledger merge: what this run scanned and what
// it resolved.
type RunSummary struct {
	// Date stamps the history entry. Zero means now.
	Date time.Time
	// SuppressedByModule is the current scanner output per module, counted
	// before this run's fixes were applied.
	SuppressedByModule map[string]int
	// ResolvedByModule counts this run's newly resolved files per module.
	ResolvedByModule map[string]int
	// Notes annotates the history entry.
	Notes string
}

// Merge folds a run into the document. Fixed counts accumulate; totals are
// recomputed from the current scan so stale counts from prior runs never
// accumulate. Re-running on an already-fixed tree adds zero everywhere.
func (d *Document) Merge(run RunSummary) {
	if d.PerModule == nil {
		d.PerModule = map[string]Bucket{}
	}

	resolvedTotal := 0

	for module, resolved := range run.ResolvedByModule {
		bucket := d.PerModule[module]
		bucket.Fixed += resolved
		d.PerModule[module] = bucket

		resolvedTotal += resolved
	}

	// A module's total is what is still suppressed plus everything ever
	// fixed in it, so fixed can never exceed total.
	for module, suppressed := range run.SuppressedByModule {
		bucket := d.PerModule[module]
		bucket.Total = suppressed - run.ResolvedByModule[module] + bucket.Fixed
		d.PerModule[module] = bucket
	}

	for module, bucket := range d.PerModule {
		if _, scanned := run.SuppressedByModule[module]; !scanned {
			bucket.Total = bucket.Fixed
			d.PerModule[module] = bucket
		}
	}

	d.FixedFiles += resolvedTotal

	d.TotalFiles = 0
	for _, bucket := range d.PerModule {
		d.TotalFiles += bucket.Total
	}

	date := run.Date
	if date.IsZero() {
		date = time.Now()
	}

	d.History = append(d.History, Entry{
		Date:       date.Format(historyDateFormat),
		FilesFixed: resolvedTotal,
		Notes:      run.Notes,
	})
}

// Remaining returns the count of files still suppressed.
func (d *Document) Remaining() int {
	remaining := d.TotalFiles - d.FixedFiles
	if remaining < 0 {
		return 0
	}

	return remaining
}
