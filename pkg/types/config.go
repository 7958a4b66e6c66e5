// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// EngineConfig holds settings for the external conversion engine.
type EngineConfig struct {
	// Binary is the conversion engine executable (default "blender").
	// May be a bare name resolved on PATH or an absolute path.
	Binary string `json:"binary" yaml:"binary"`
}

// ConvertConfig holds settings for collection and output-path resolution.
type ConvertConfig struct {
	// SourceExtension selects which directory children are collected
	// (default ".obj"). Explicitly named file arguments bypass this filter.
	SourceExtension string `json:"source_extension" yaml:"source_extension"`

	// TargetExtension is the extension of converted outputs (default ".glb").
	TargetExtension string `json:"target_extension" yaml:"target_extension"`
}

// HistoryConfig holds settings for the conversion history store.
type HistoryConfig struct {
	// DBDir is the directory holding the history SQLite database
	// (default ".meshconv").
	DBDir string `json:"db_dir" yaml:"db_dir"`
}

// Config groups all settings for the meshconv CLI.
type Config struct {
	Engine  EngineConfig  `json:"engine" yaml:"engine"`
	Convert ConvertConfig `json:"convert" yaml:"convert"`
	History HistoryConfig `json:"history" yaml:"history"`
}

// Default values applied when the config file and flags leave a field unset.
const (
	DefaultEngineBinary    = "blender"
	DefaultSourceExtension = ".obj"
	DefaultTargetExtension = ".glb"
	DefaultHistoryDBDir    = ".meshconv"
)

// ApplyDefaults fills unset fields with the package defaults.
func (c *Config) ApplyDefaults() {
	if c.Engine.Binary == "" {
		c.Engine.Binary = DefaultEngineBinary
	}
	if c.Convert.SourceExtension == "" {
		c.Convert.SourceExtension = DefaultSourceExtension
	}
	if c.Convert.TargetExtension == "" {
		c.Convert.TargetExtension = DefaultTargetExtension
	}
	if c.History.DBDir == "" {
		c.History.DBDir = DefaultHistoryDBDir
	}
}
