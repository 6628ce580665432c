//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/obinnaokechukwu/xmlgo"
)

var validateCmd = &cobra.Command{
	Use:   "validate [flags] <file.xml>...",
	Short: "Check well-formedness and validate against an XML Schema or DTD",
	Long: `Parse each file and, when --schema or --dtd is given, validate it.
Without either flag, files with a DOCTYPE are validated against their own DTD.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().String("schema", "", "XML Schema (.xsd) to validate against")
	validateCmd.Flags().String("dtd", "", "external DTD to validate against")
	validateCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	validateCmd.Flags().Bool("xinclude", false, "process XInclude before validating")
	validateCmd.Flags().Bool("net", false, "allow network access while parsing")
}

// validator checks one parsed document.
type validator func(*xmlgo.Document) error

func runValidate(cmd *cobra.Command, args []string) error {
	schemaPath, _ := cmd.Flags().GetString("schema")
	dtdPath, _ := cmd.Flags().GetString("dtd")
	jobs, _ := cmd.Flags().GetInt("jobs")
	xinclude, _ := cmd.Flags().GetBool("xinclude")
	allowNet, _ := cmd.Flags().GetBool("net")

	if schemaPath != "" && dtdPath != "" {
		return fmt.Errorf("--schema and --dtd cannot be used together")
	}

	check, cleanup, err := buildValidator(schemaPath, dtdPath)
	if err != nil {
		printFailure(cmd.ErrOrStderr(), "schema", err)
		return errSilentFailure
	}
	defer cleanup()

	opts := &xmlgo.ParseOptions{}
	if !allowNet {
		opts.Flags |= xmlgo.ParseNoNet
	}
	if xinclude {
		opts.Flags |= xmlgo.ParseXInclude | xmlgo.ParseNoXIncNode
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Each worker writes only its own slot.
	results := make([]error, len(args))

	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(min(jobs, len(args)))
	for i, path := range args {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = validateFile(path, opts, xinclude, check)
			return nil
		})
	}
	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for i, path := range args {
		if results[i] != nil {
			failed++
			printFailure(out, path, results[i])
			continue
		}
		fmt.Fprintf(out, "%s %s\n", okLabel.Sprint("ok"), path)
	}
	if failed > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d files failed\n", failed, len(args))
		return errSilentFailure
	}
	return nil
}

func buildValidator(schemaPath, dtdPath string) (validator, func(), error) {
	switch {
	case schemaPath != "":
		schema, err := xmlgo.CompileSchemaFile(schemaPath)
		if err != nil {
			return nil, nil, err
		}
		return schema.Validate, func() { schema.Close() }, nil

	case dtdPath != "":
		dtd, err := xmlgo.ParseDTDFile(dtdPath)
		if err != nil {
			return nil, nil, err
		}
		return func(doc *xmlgo.Document) error {
			return doc.ValidateDTD(dtd)
		}, func() { dtd.Close() }, nil

	default:
		return func(doc *xmlgo.Document) error {
			if doc.InternalSubset() == nil {
				return nil
			}
			return doc.ValidateDTD(nil)
		}, func() {}, nil
	}
}

func validateFile(path string, opts *xmlgo.ParseOptions, xinclude bool, check validator) error {
	doc, err := xmlgo.ParseFile(path, opts)
	if err != nil {
		return err
	}
	defer doc.Close()

	if xinclude {
		if _, err := doc.ProcessXInclude(); err != nil {
			return err
		}
	}
	return check(doc)
}
