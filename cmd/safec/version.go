package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"safec/internal/version"
)

type versionPayload struct {
	Tool       string `json:"tool"`
	Version    string `json:"version"`
	GitCommit  string `json:"git_commit,omitempty"`
	GitMessage string `json:"git_message,omitempty"`
	BuildDate  string `json:"build_date,omitempty"`
}

var (
	versionFormat string
	versionFull   bool
)

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().BoolVar(&versionFull, "full", false, "print build metadata, using \"unknown\" for missing fields")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show safec version and build metadata",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		switch strings.ToLower(versionFormat) {
		case "json":
			return renderVersionJSON(cmd.OutOrStdout(), versionFull)
		case "pretty":
			colorValue, err := cmd.Root().PersistentFlags().GetString("color")
			if err != nil {
				return err
			}
			mode, err := readSwitch("color", colorValue)
			if err != nil {
				return err
			}
			renderVersionPretty(cmd.OutOrStdout(), mode.enabledFor(os.Stdout), versionFull)
			return nil
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
		}
	},
}

func renderVersionPretty(out io.Writer, colored, full bool) {
	fmt.Fprint(out, version.Long(colored))
	if !full {
		return
	}
	if version.GitCommit == "" {
		fmt.Fprintln(out, "commit: unknown")
	}
	if version.GitMessage == "" {
		fmt.Fprintln(out, "message: unknown")
	}
	if version.BuildDate == "" {
		fmt.Fprintln(out, "built: unknown")
	}
}

func renderVersionJSON(out io.Writer, full bool) error {
	payload := versionPayload{
		Tool:       "safec",
		Version:    strings.TrimSpace(version.Version),
		GitCommit:  strings.TrimSpace(version.GitCommit),
		GitMessage: strings.TrimSpace(version.GitMessage),
		BuildDate:  strings.TrimSpace(version.BuildDate),
	}
	if full {
		payload.GitCommit = valueOrUnknown(payload.GitCommit)
		payload.GitMessage = valueOrUnknown(payload.GitMessage)
		payload.BuildDate = valueOrUnknown(payload.BuildDate)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
