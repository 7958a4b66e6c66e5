// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the meshconv CLI: it discovers mesh
// files across the given files and directories, assigns each a unique output
// path, and batch-converts them through a headless Blender.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/open-rmf/meshconv/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command; it performs the conversion itself rather than
// delegating to a subcommand, so `meshconv a.obj models/` just works.
var rootCmd = &cobra.Command{
	Use:   "meshconv [files-or-directories...]",
	Short: "Batch-convert Wavefront OBJ meshes to binary glTF",
	Long: `meshconv converts OBJ mesh files to GLB. Name individual .obj files or
directories to search for them in; each conversion runs through a headless
Blender with fixed axis settings (OBJ: Y forward, Z up; GLB: Z up).

Without --out-dir, each output is written next to its source. With --out-dir,
all outputs share one directory and sources with identical file names are
told apart by including trailing path components in the output name.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./meshconv.yaml or ~/.config/meshconv/config.yaml)")

	rootCmd.Flags().BoolP("recursive", "R", false, "traverse directories recursively")
	rootCmd.Flags().StringP("out-dir", "o", "", "write all outputs under this directory instead of next to each source")
	rootCmd.Flags().BoolP("dry-run", "d", false, "print the planned source -> output mapping and exit without converting")
	rootCmd.Flags().String("manifest", "", "write the run's mapping and outcomes to this YAML file")
	rootCmd.Flags().Bool("skip-converted", false, "skip sources whose output exists and whose file is unchanged since the last run")
	rootCmd.Flags().String("engine-binary", "", "conversion engine executable (default \"blender\")")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("meshconv")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "meshconv"))
		}
	}

	viper.SetEnvPrefix("MESHCONV")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig merges the config file, environment, and flags into one Config.
func loadConfig(cmd *cobra.Command) types.Config {
	var cfg types.Config
	cfg.Engine.Binary = viper.GetString("engine.binary")
	cfg.Convert.SourceExtension = viper.GetString("convert.source_extension")
	cfg.Convert.TargetExtension = viper.GetString("convert.target_extension")
	cfg.History.DBDir = viper.GetString("history.db_dir")

	if bin, _ := cmd.Flags().GetString("engine-binary"); bin != "" {
		cfg.Engine.Binary = bin
	}
	cfg.ApplyDefaults()
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
