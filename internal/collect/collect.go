// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collect walks user-supplied files and directories and builds the
// set of mesh sources for one conversion run.
package collect

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/open-rmf/meshconv/pkg/types"
)

// NotFoundError reports a user-supplied root that does not exist. Root
// resolution is strict: a dangling root aborts collection rather than being
// silently skipped.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("path does not exist: %s", e.Path)
}

// Collect resolves each root and gathers mesh sources into a SourceSet.
//
// A root naming a file is added unconditionally, whatever its extension: the
// user asked for it by name. A root naming a directory contributes its direct
// children that carry ext; subdirectories are entered only when recursive is
// set. Sources are deduplicated by resolved absolute path, so a file
// reachable through two roots counts once.
//
// Scan progress is written to w; it is diagnostic output, not part of the
// result.
func Collect(roots []string, recursive bool, ext string, w io.Writer) (*types.SourceSet, error) {
	set := types.NewSourceSet()

	for _, root := range roots {
		resolved, info, err := resolveStrict(root)
		if err != nil {
			return nil, err
		}

		if info.IsDir() {
			fmt.Fprintf(w, "scanning directory %s\n", resolved)
			if err := scanDir(resolved, recursive, ext, set, w); err != nil {
				return nil, err
			}
			continue
		}
		set.Add(resolved)
	}

	return set, nil
}

// resolveStrict turns a root into an absolute, symlink-resolved path,
// failing with NotFoundError when the path does not exist.
func resolveStrict(path string) (string, os.FileInfo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, &NotFoundError{Path: path}
		}
		return "", nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, &NotFoundError{Path: path}
		}
		return "", nil, fmt.Errorf("inspecting %s: %w", path, err)
	}
	return resolved, info, nil
}

// scanDir adds dir's matching children to set, recursing when asked.
// Symlinked children are classified by their target, matching how the
// roots themselves are treated.
func scanDir(dir string, recursive bool, ext string, set *types.SourceSet, w io.Writer) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		child := filepath.Join(dir, entry.Name())
		resolved, info, err := resolveStrict(child)
		if err != nil {
			// A child deleted mid-scan or a dangling symlink is not a
			// user error; note it and move on.
			fmt.Fprintf(w, "warning: skipping %s: %v\n", child, err)
			continue
		}

		if info.IsDir() {
			if recursive {
				fmt.Fprintf(w, "scanning directory %s\n", resolved)
				if err := scanDir(resolved, recursive, ext, set, w); err != nil {
					return err
				}
			}
			continue
		}

		if filepath.Ext(resolved) == ext {
			set.Add(resolved)
		}
	}
	return nil
}
