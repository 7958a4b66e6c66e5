// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve assigns every collected source a unique destination path.
// With no shared output directory the assignment is trivial; with one, source
// files sharing a base name would collide and are told apart by pulling in
// trailing path components until their candidate outputs differ.
package resolve

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/open-rmf/meshconv/pkg/types"
)

// UnresolvableError reports a group of sources whose outputs still collide
// after every member's full path depth has been tried. It aborts the run
// before any conversion starts.
type UnresolvableError struct {
	Sources []string
}

func (e *UnresolvableError) Error() string {
	return fmt.Sprintf("unable to infer unique output names for: %s",
		strings.Join(e.Sources, ", "))
}

// Resolve computes the output mapping for sources.
//
// When outDir is empty each output sits next to its source with the extension
// swapped to targetExt; sources with matching base names live in different
// directories, so only same-directory stem clashes can collide. When outDir
// is set, a source whose base name is unique maps to
// outDir/<name>; sources sharing a base name form a duplicate group and go
// through depth disambiguation.
//
// The returned mapping covers every source exactly once with pairwise
// distinct values; that is verified before returning.
func Resolve(sources *types.SourceSet, outDir, targetExt string) (types.OutputMapping, error) {
	paths := sources.Sorted()
	mapping := make(types.OutputMapping, len(paths))

	if outDir == "" {
		for _, p := range paths {
			mapping[p] = replaceExt(p, targetExt)
		}
		// Distinct sources normally differ in directory, but explicitly
		// named files bypass the extension filter, so /a/m.obj and
		// /a/m.fbx would both land on /a/m.glb.
		if err := mapping.Validate(); err != nil {
			return nil, fmt.Errorf("resolving output paths: %w", err)
		}
		return mapping, nil
	}

	groups := make(map[string][]string)
	for _, p := range paths {
		groups[stem(p)] = append(groups[stem(p)], p)
	}

	for _, group := range groups {
		if len(group) == 1 {
			p := group[0]
			mapping[p] = filepath.Join(outDir, replaceExt(filepath.Base(p), targetExt))
			continue
		}
		resolved, err := disambiguate(group, outDir, targetExt)
		if err != nil {
			return nil, err
		}
		for p, out := range resolved {
			mapping[p] = out
		}
	}

	// Groups are keyed by base name and every candidate keeps its group's
	// base name as the final path component, so outputs from different
	// groups cannot coincide. The check stays as a guard on that reasoning.
	if err := mapping.Validate(); err != nil {
		return nil, fmt.Errorf("resolving output paths: %w", err)
	}
	return mapping, nil
}

// disambiguate assigns each member of a duplicate group an output built from
// its trailing path components. Depth starts at two components (directory
// plus file name) and grows until all candidates differ. A member whose full
// path is shorter than the current depth keeps its bare file name: it has
// nothing further to contribute and is settled at its maximum depth. When the
// deepest member is exhausted and candidates still coincide, the group cannot
// be told apart and the whole run must abort.
func disambiguate(group []string, outDir, targetExt string) (map[string]string, error) {
	maxDepth := 0
	for _, p := range group {
		if n := len(components(p)); n > maxDepth {
			maxDepth = n
		}
	}

	colliding := append([]string(nil), group...)
	for depth := 2; depth <= maxDepth; depth++ {
		candidates := make(map[string]string, len(group))
		byOutput := make(map[string][]string, len(group))

		for _, p := range group {
			parts := components(p)
			var cand string
			if len(parts) < depth {
				cand = replaceExt(filepath.Base(p), targetExt)
			} else {
				cand = replaceExt(filepath.Join(parts[len(parts)-depth:]...), targetExt)
			}
			out := filepath.Join(outDir, cand)
			candidates[p] = out
			byOutput[out] = append(byOutput[out], p)
		}

		colliding = colliding[:0]
		for _, srcs := range byOutput {
			if len(srcs) > 1 {
				colliding = append(colliding, srcs...)
			}
		}
		if len(colliding) == 0 {
			return candidates, nil
		}
	}

	sort.Strings(colliding)
	return nil, &UnresolvableError{Sources: colliding}
}

// components splits a path into its parts, keeping the root as the first
// element for absolute paths ("/a/b.obj" -> ["/", "a", "b.obj"]).
func components(p string) []string {
	vol := filepath.VolumeName(p)
	rest := p[len(vol):]

	var parts []string
	if strings.HasPrefix(rest, string(filepath.Separator)) {
		parts = append(parts, vol+string(filepath.Separator))
	} else if vol != "" {
		parts = append(parts, vol)
	}
	for _, part := range strings.Split(rest, string(filepath.Separator)) {
		if part != "" && part != "." {
			parts = append(parts, part)
		}
	}
	return parts
}

// stem returns the base file name with its extension stripped.
func stem(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// replaceExt swaps p's extension for ext.
func replaceExt(p, ext string) string {
	return strings.TrimSuffix(p, filepath.Ext(p)) + ext
}
