// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/open-rmf/meshconv/internal/batch"
	"github.com/open-rmf/meshconv/internal/collect"
	"github.com/open-rmf/meshconv/internal/engine"
	"github.com/open-rmf/meshconv/internal/history"
	"github.com/open-rmf/meshconv/internal/resolve"
	"github.com/open-rmf/meshconv/pkg/types"
)

// detectEngine is swapped by tests to observe engine construction; a dry run
// must never reach it.
var detectEngine = engine.Detect

// runConvert is the root command body: collect, resolve, then either print
// the plan (dry run) or run the batch. Collection and resolution errors are
// fatal; per-file conversion failures are reported but still exit 0.
func runConvert(cmd *cobra.Command, args []string) error {
	recursive, _ := cmd.Flags().GetBool("recursive")
	outDir, _ := cmd.Flags().GetString("out-dir")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	manifestPath, _ := cmd.Flags().GetString("manifest")
	skipConverted, _ := cmd.Flags().GetBool("skip-converted")

	out := cmd.OutOrStdout()
	errw := cmd.ErrOrStderr()
	cfg := loadConfig(cmd)

	sources, err := collect.Collect(args, recursive, cfg.Convert.SourceExtension, errw)
	if err != nil {
		return err
	}

	mapping, err := resolveMapping(sources, outDir, cfg.Convert.TargetExtension, errw)
	if err != nil {
		return err
	}

	if dryRun {
		for _, src := range mapping.Sources() {
			fmt.Fprintf(out, "%s\n -> %s\n", src, mapping[src])
		}
		if manifestPath != "" {
			return batch.WriteManifest(manifestPath, batch.NewPlanManifest(outDir, mapping))
		}
		return nil
	}

	eng, err := detectEngine(cfg.Engine)
	if err != nil {
		return err
	}
	defer eng.Close()

	// History is best-effort: a broken store must not block conversions.
	var store *history.Store
	if store, err = history.NewStore(cfg.History); err != nil {
		fmt.Fprintf(errw, "warning: conversion history unavailable: %v\n", err)
		store = nil
	} else {
		defer store.Close()
	}

	opts := batch.Options{}
	if skipConverted && store != nil {
		opts.Skip = store
	}

	startedAt := time.Now()
	fmt.Fprintln(out, "Converting meshes...")
	report := batch.Run(mapping, eng, opts, out)

	runID := ""
	if store != nil {
		if runID, err = store.RecordRun(report, outDir, startedAt); err != nil {
			fmt.Fprintf(errw, "warning: recording run: %v\n", err)
		}
	}

	if manifestPath != "" {
		if err := batch.WriteManifest(manifestPath, batch.NewManifest(runID, outDir, report)); err != nil {
			fmt.Fprintf(errw, "warning: writing manifest: %v\n", err)
		}
	}

	batch.PrintFailures(report, out)
	return nil
}

// resolveMapping computes the output mapping. When disambiguation fails it
// prints the colliding group to errw and returns a terse error, so the
// detail appears once rather than again through the CLI's error path.
func resolveMapping(sources *types.SourceSet, outDir, targetExt string, errw io.Writer) (types.OutputMapping, error) {
	mapping, err := resolve.Resolve(sources, outDir, targetExt)
	if err != nil {
		var ue *resolve.UnresolvableError
		if errors.As(err, &ue) {
			fmt.Fprintln(errw, "Unable to infer unique output names for conversion of these paths:")
			for _, src := range ue.Sources {
				fmt.Fprintf(errw, "  %s\n", src)
			}
			return nil, fmt.Errorf("%d source(s) could not be assigned unique output names", len(ue.Sources))
		}
		return nil, err
	}
	return mapping, nil
}
