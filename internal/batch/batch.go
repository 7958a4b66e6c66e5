// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch runs the conversion loop: each source is pushed through the
// engine one at a time, and failures are recorded against their source
// without stopping the batch.
package batch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/open-rmf/meshconv/internal/engine"
	"github.com/open-rmf/meshconv/pkg/types"
)

// Skipper decides whether a source's conversion can be skipped because its
// output is already up to date. The history store implements this.
type Skipper interface {
	ShouldSkip(source, output string) bool
}

// Options tunes the batch loop.
type Options struct {
	// Skip, when non-nil, is consulted before each conversion.
	Skip Skipper
}

// Run converts every source in mapping through eng, in sorted source order,
// printing per-file status to w. The engine session is reset before each
// source. A failed import or export is recorded and the loop moves on; the
// accumulated report is always returned in full.
func Run(mapping types.OutputMapping, eng engine.Engine, opts Options, w io.Writer) types.Report {
	sources := mapping.Sources()
	total := len(sources)

	var report types.Report
	for i, src := range sources {
		dst := mapping[src]
		fmt.Fprintf(w, "%d/%d: %s\n", i+1, total, src)

		if opts.Skip != nil && opts.Skip.ShouldSkip(src, dst) {
			fmt.Fprintf(w, "skipped: %s (up to date)\n", dst)
			report.Record(types.Outcome{Source: src, Output: dst, Status: types.StatusSkipped})
			continue
		}

		report.Record(convertOne(src, dst, eng, w))
	}

	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		report.Converted, report.Skipped, report.Failed, report.Total())
	return report
}

// convertOne resets the session, imports src, and exports it to dst.
func convertOne(src, dst string, eng engine.Engine, w io.Writer) types.Outcome {
	if err := eng.Reset(); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", src, err)
		return types.Outcome{
			Source: src, Output: dst,
			Status: types.StatusImportFailed,
			Error:  fmt.Sprintf("resetting scene: %v", err),
		}
	}

	if err := eng.Import(src, engine.ObjImport); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", src, err)
		return types.Outcome{
			Source: src, Output: dst,
			Status: types.StatusImportFailed,
			Error:  err.Error(),
		}
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", src, err)
		return types.Outcome{
			Source: src, Output: dst,
			Status: types.StatusExportFailed,
			Error:  fmt.Sprintf("creating output directory: %v", err),
		}
	}

	if err := eng.Export(dst, engine.GLBExport); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", src, err)
		return types.Outcome{
			Source: src, Output: dst,
			Status: types.StatusExportFailed,
			Error:  err.Error(),
		}
	}

	fmt.Fprintf(w, "converted: %s\n", dst)
	return types.Outcome{Source: src, Output: dst, Status: types.StatusConverted}
}

// PrintFailures lists every failed source and its error text, one block per
// file, matching the end-of-run error listing users see after a batch.
func PrintFailures(report types.Report, w io.Writer) {
	failures := report.Failures()
	if len(failures) == 0 {
		return
	}
	fmt.Fprintln(w, "Errors were encountered while running:")
	for _, f := range failures {
		fmt.Fprintf(w, "%s:\n%s\n\n", f.Source, f.Error)
	}
}
