// Package main implements the unitc CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"unitc/internal/version"
)

// errBuildFailed is returned when a build reported at least one error. The
// diagnostics themselves are already printed.
var errBuildFailed = errors.New("build failed")

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "unitc",
		Short:         "Two-pass JVM compilation driver",
		Long:          `unitc compiles the production and test sources of a project and maps every emitted class file back to its source file`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := cmd.Flags().GetString("color")
			if err != nil {
				return err
			}
			return applyColorMode(mode)
		},
	}

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to keep (0 = unlimited)")
	rootCmd.PersistentFlags().String("trace", "", "write trace events to file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	rootCmd.PersistentFlags().String("ui", "auto", "progress UI (auto|on|off)")

	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newMapCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// main builds the command tree and executes it. Any error exits with status 1.
func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errBuildFailed) {
			fmt.Fprintf(os.Stderr, "unitc: %v\n", err)
		}
		os.Exit(1)
	}
}

func applyColorMode(value string) error {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		color.NoColor = !isTerminal(os.Stdout) || os.Getenv("NO_COLOR") != ""
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
	return nil
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
