//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/obinnaokechukwu/xmlgo/diagnostics"
	"github.com/obinnaokechukwu/xmlgo/libxml"
)

// errSilentFailure makes the process exit non-zero after the command has
// already printed why.
var errSilentFailure = errors.New("failed")

var (
	okLabel   = color.New(color.FgGreen, color.Bold)
	failLabel = color.New(color.FgRed, color.Bold)
	warnLabel = color.New(color.FgYellow)
	dimLabel  = color.New(color.Faint)
)

// printRecords writes one line per diagnostic, colored by severity.
func printRecords(w io.Writer, recs []libxml.Record) {
	for _, r := range recs {
		label := failLabel
		if r.Level == libxml.LevelWarning {
			label = warnLabel
		}
		loc := ""
		if r.Line > 0 {
			loc = dimLabel.Sprintf("%d:%d ", r.Line, r.Column)
		}
		fmt.Fprintf(w, "  %s%s %s\n", loc, label.Sprint(r.Level), trimNewline(r.Message))
	}
}

// printFailure writes err, expanding structured diagnostics.
func printFailure(w io.Writer, name string, err error) {
	fmt.Fprintf(w, "%s %s\n", failLabel.Sprint("FAIL"), name)
	if recs := libxml.Records(err); len(recs) > 0 {
		printRecords(w, recs)
		return
	}
	fmt.Fprintf(w, "  %s\n", err)
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

type reportFunc func(diagnostics.Report, io.Writer) error

func reportWriter(format string) (reportFunc, error) {
	switch format {
	case "text":
		return diagnostics.Report.WriteText, nil
	case "json":
		return diagnostics.Report.WriteJSON, nil
	case "msgpack":
		return diagnostics.Report.WriteMsgpack, nil
	default:
		return nil, fmt.Errorf("unknown --diagnostics format %q (want text|json|msgpack)", format)
	}
}

// writeDiagnostics prints the leak report requested with --diagnostics.
// Unclosed wrappers are collected first so they show up as leaks.
func writeDiagnostics(cmd *cobra.Command) error {
	format, _ := cmd.Root().PersistentFlags().GetString("diagnostics")
	if format == "" {
		return nil
	}
	write, err := reportWriter(format)
	if err != nil {
		return err
	}
	runtime.GC()
	runtime.GC()
	return write(diagnostics.Snapshot(), cmd.ErrOrStderr())
}
