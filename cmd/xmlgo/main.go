//go:build !ios && !android && (amd64 || arm64)

// Command xmlgo validates, queries and canonicalizes XML documents with
// libxml2.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/obinnaokechukwu/xmlgo"
)

var rootCmd = &cobra.Command{
	Use:               "xmlgo",
	Short:             "XML validation, XPath and canonicalization with libxml2",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
		return writeDiagnostics(cmd)
	},
}

func init() {
	rootCmd.Version = version

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(xpathCmd)
	rootCmd.AddCommand(c14nCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to an xmlgo TOML config")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("diagnostics", "", "print a wrapper leak report on exit (text|json|msgpack)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errSilentFailure) {
			fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		}
		os.Exit(1)
	}
}

// setup loads configuration, installs it and resolves color output.
func setup(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()

	cfg := &xmlgo.Config{}
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := xmlgo.LoadConfig(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	format, _ := flags.GetString("diagnostics")
	if format != "" {
		if _, err := reportWriter(format); err != nil {
			return err
		}
		cfg.Diagnostics.Enabled = true
		cfg.Diagnostics.CallerStats = true
	}
	if err := cfg.Apply(); err != nil {
		return err
	}

	colorFlag, _ := flags.GetString("color")
	switch colorFlag {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("unknown --color value %q (want auto|on|off)", colorFlag)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
