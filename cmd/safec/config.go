package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"safec/internal/project"
)

// cliManifest is the safec.toml of the current invocation; nil when absent.
var cliManifest *project.Manifest

// loadManifest reads --config when given, otherwise searches upwards from
// the first argument (or the working directory).
func loadManifest(cmd *cobra.Command, args []string) (*project.Manifest, error) {
	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if configPath != "" {
		cfg, err := project.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		abs, err := filepath.Abs(configPath)
		if err != nil {
			abs = configPath
		}
		return &project.Manifest{Path: abs, Root: filepath.Dir(abs), Config: cfg}, nil
	}

	start := "."
	if len(args) > 0 {
		start = args[0]
		if st, err := os.Stat(start); err != nil || !st.IsDir() {
			start = filepath.Dir(start)
		}
	}
	manifest, _, err := project.LoadManifest(start)
	if err != nil {
		return nil, err
	}
	return manifest, nil
}
