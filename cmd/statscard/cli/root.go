// Package cli implements the statscard command surface: generating the
// stat cards and configuring the tool.
package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

const longHelp = `

Getting Started:
  Run 'statscard setup' to configure your account and templates, set
  STATSCARD_TOKEN to a GitHub access token, then run
  'statscard generate' to update your stat cards.

`

const accessibilityHelp = `
Environment Variables:
  ACCESSIBLE    Set to any value (e.g., ACCESSIBLE=1) to enable accessibility
                mode. This uses simpler text prompts instead of interactive
                TUI elements, which works better with screen readers.
`

// Version information (can be set at build time)
var (
	Version = "dev"
	Commit  = "unknown"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statscard",
		Short: "GitHub profile statistics generator",
		Long:  "Generates contribution statistics cards for a GitHub profile" + longHelp + accessibilityHelp,
		// Let main.go handle error printing to avoid duplication
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newSetupCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("statscard %s (%s)\n", Version, Commit)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
