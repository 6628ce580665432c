//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/obinnaokechukwu/xmlgo"
)

// version can be overridden at build time via -ldflags.
var version = "0.1.0-dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print xmlgo and libxml2 versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "xmlgo   %s\n", okLabel.Sprint(version))
		if err := xmlgo.Init(); err != nil {
			if path, ferr := xmlgo.FindLibrary(); ferr == nil {
				fmt.Fprintf(out, "libxml2 %s (%s)\n", failLabel.Sprint("cannot load"), path)
			} else {
				fmt.Fprintf(out, "libxml2 %s\n", failLabel.Sprint("not found"))
			}
			return err
		}
		fmt.Fprintf(out, "libxml2 %s (%s)\n", okLabel.Sprint(xmlgo.Version()), xmlgo.LibraryPath())
		return nil
	},
}
