package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"safec/internal/driver"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the safec output cache",
	Long:  "Remove every cached compilation result used by `safec build --cache`.",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func runClean(cmd *cobra.Command, _ []string) error {
	cache, err := driver.OpenDiskCache("safec")
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to clear %q: %w", cache.Dir(), err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", cache.Dir())
	return err
}
