// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/open-rmf/meshconv/pkg/types"
)

// Manifest is the on-disk record of one run: the planned mapping and, unless
// the run was a dry run, each file's outcome. It can be fed to downstream
// tooling or kept as an audit trail.
type Manifest struct {
	RunID     string          `yaml:"run_id,omitempty"`
	CreatedAt time.Time       `yaml:"created_at"`
	DryRun    bool            `yaml:"dry_run"`
	OutDir    string          `yaml:"out_dir,omitempty"`
	Files     []types.Outcome `yaml:"files"`
	Summary   Summary         `yaml:"summary"`
}

// Summary stores the run counters.
type Summary struct {
	Converted int `yaml:"converted"`
	Skipped   int `yaml:"skipped"`
	Failed    int `yaml:"failed"`
	Total     int `yaml:"total"`
}

// NewManifest builds a manifest from a completed run's report.
func NewManifest(runID, outDir string, report types.Report) Manifest {
	return Manifest{
		RunID:     runID,
		CreatedAt: time.Now().UTC(),
		OutDir:    outDir,
		Files:     report.Outcomes,
		Summary: Summary{
			Converted: report.Converted,
			Skipped:   report.Skipped,
			Failed:    report.Failed,
			Total:     report.Total(),
		},
	}
}

// NewPlanManifest builds a dry-run manifest from a mapping: every file is
// recorded as planned, nothing was attempted.
func NewPlanManifest(outDir string, mapping types.OutputMapping) Manifest {
	m := Manifest{
		CreatedAt: time.Now().UTC(),
		DryRun:    true,
		OutDir:    outDir,
	}
	for _, src := range mapping.Sources() {
		m.Files = append(m.Files, types.Outcome{
			Source: src,
			Output: mapping[src],
			Status: types.StatusPlanned,
		})
	}
	m.Summary.Total = len(m.Files)
	return m
}

// WriteManifest saves the manifest to a YAML file.
func WriteManifest(path string, m Manifest) error {
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadManifest loads a previously written manifest from disk.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}
