// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for the meshconv pipeline:
// source sets, output mappings, and conversion reports.
package types

import (
	"fmt"
	"sort"
)

// SourceSet is the deduplicated universe of mesh files selected for one run.
// Paths are stored as resolved absolute strings; a file reachable through two
// different roots counts once. The set is built once per run and never
// mutated afterwards.
type SourceSet struct {
	paths map[string]struct{}
}

// NewSourceSet returns an empty source set.
func NewSourceSet() *SourceSet {
	return &SourceSet{paths: make(map[string]struct{})}
}

// Add inserts a resolved path. Adding a path twice is a no-op.
func (s *SourceSet) Add(path string) {
	s.paths[path] = struct{}{}
}

// Contains reports whether path is in the set.
func (s *SourceSet) Contains(path string) bool {
	_, ok := s.paths[path]
	return ok
}

// Len returns the number of distinct sources.
func (s *SourceSet) Len() int {
	return len(s.paths)
}

// Sorted returns the sources in lexicographic order. Iteration order of the
// underlying map is unspecified, so every consumer that needs a stable
// within-run order goes through this.
func (s *SourceSet) Sorted() []string {
	out := make([]string, 0, len(s.paths))
	for p := range s.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// OutputMapping assigns each source exactly one destination path. It is
// computed fully before any conversion begins; a dry run stops here.
type OutputMapping map[string]string

// Sources returns the mapped sources in lexicographic order.
func (m OutputMapping) Sources() []string {
	out := make([]string, 0, len(m))
	for src := range m {
		out = append(out, src)
	}
	sort.Strings(out)
	return out
}

// Validate checks that all destination paths are pairwise distinct. Two
// sources sharing an output would silently overwrite each other, so this is
// verified before a mapping is handed to the batch loop.
func (m OutputMapping) Validate() error {
	seen := make(map[string]string, len(m))
	for src, dst := range m {
		if prev, ok := seen[dst]; ok {
			first, second := prev, src
			if second < first {
				first, second = second, first
			}
			return fmt.Errorf("output path %s assigned to both %s and %s", dst, first, second)
		}
		seen[dst] = src
	}
	return nil
}

// Status classifies the outcome of one source's trip through the batch loop.
type Status string

const (
	// StatusPlanned marks a dry-run entry: the mapping was computed but no
	// conversion was attempted.
	StatusPlanned Status = "planned"

	// StatusConverted marks a successful import and export.
	StatusConverted Status = "converted"

	// StatusSkipped marks a source left alone because its output already
	// exists and the source is unchanged since it was last converted.
	StatusSkipped Status = "skipped"

	// StatusImportFailed marks a source the engine could not load; no scene
	// was available so nothing was written.
	StatusImportFailed Status = "import_failed"

	// StatusExportFailed marks a source that loaded but could not be written
	// to its destination.
	StatusExportFailed Status = "export_failed"
)

// Failed reports whether the status records a conversion failure.
func (s Status) Failed() bool {
	return s == StatusImportFailed || s == StatusExportFailed
}

// Outcome records what happened to one source.
type Outcome struct {
	Source string `json:"source" yaml:"source"`
	Output string `json:"output" yaml:"output"`
	Status Status `json:"status" yaml:"status"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report accumulates per-source outcomes across a batch run. It is created
// empty, appended to as the loop progresses, and never discarded when an
// individual source fails.
type Report struct {
	Outcomes []Outcome

	Converted int
	Skipped   int
	Failed    int
}

// Record appends an outcome and updates the counters.
func (r *Report) Record(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch {
	case o.Status == StatusConverted:
		r.Converted++
	case o.Status == StatusSkipped:
		r.Skipped++
	case o.Status.Failed():
		r.Failed++
	}
}

// Total returns the number of sources processed.
func (r Report) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any source failed conversion.
func (r Report) HasFailures() bool {
	return r.Failed > 0
}

// Failures returns the outcomes that recorded a failure, in processing order.
func (r Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status.Failed() {
			out = append(out, o)
		}
	}
	return out
}
