//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/obinnaokechukwu/xmlgo"
)

var xpathCmd = &cobra.Command{
	Use:   "xpath [flags] <expr> <file.xml>",
	Short: "Evaluate an XPath expression against a document",
	Args:  cobra.ExactArgs(2),
	RunE:  runXPath,
}

func init() {
	xpathCmd.Flags().StringSlice("ns", nil, "namespace binding prefix=uri (repeatable)")
	xpathCmd.Flags().Bool("first", false, "print only the first selected node")
}

func runXPath(cmd *cobra.Command, args []string) error {
	expr, path := args[0], args[1]
	bindings, _ := cmd.Flags().GetStringSlice("ns")
	first, _ := cmd.Flags().GetBool("first")

	ns, err := parseNamespaces(bindings)
	if err != nil {
		return err
	}

	doc, err := xmlgo.ParseFile(path, &xmlgo.ParseOptions{Flags: xmlgo.ParseNoNet})
	if err != nil {
		printFailure(cmd.ErrOrStderr(), path, err)
		return errSilentFailure
	}
	defer doc.Close()

	res, err := doc.Evaluate(expr, ns)
	if err != nil {
		printFailure(cmd.ErrOrStderr(), expr, err)
		return errSilentFailure
	}
	if first && len(res.Nodes) > 1 {
		res.Nodes = res.Nodes[:1]
	}
	printResult(cmd.OutOrStdout(), res)
	return nil
}

// parseNamespaces turns prefix=uri bindings into a namespace map.
func parseNamespaces(bindings []string) (xmlgo.Namespaces, error) {
	if len(bindings) == 0 {
		return nil, nil
	}
	ns := make(xmlgo.Namespaces, len(bindings))
	for _, b := range bindings {
		prefix, uri, ok := strings.Cut(b, "=")
		if !ok || prefix == "" || uri == "" {
			return nil, fmt.Errorf("invalid namespace binding %q (want prefix=uri)", b)
		}
		ns[prefix] = uri
	}
	return ns, nil
}

func printResult(w io.Writer, res xmlgo.XPathResult) {
	switch res.Kind {
	case xmlgo.XPathNodeSet:
		for _, n := range res.Nodes {
			switch n.Type() {
			case xmlgo.ElementNode:
				fmt.Fprintf(w, "%s\t%s\n", dimLabel.Sprintf("%d:<%s>", n.Line(), n.Name()), n.Content())
			case xmlgo.AttributeNode:
				fmt.Fprintf(w, "%s\t%s\n", dimLabel.Sprintf("@%s", n.Name()), n.Content())
			default:
				fmt.Fprintln(w, n.Content())
			}
		}
	case xmlgo.XPathBoolean:
		fmt.Fprintln(w, strconv.FormatBool(res.Bool))
	case xmlgo.XPathNumber:
		fmt.Fprintln(w, strconv.FormatFloat(res.Number, 'g', -1, 64))
	case xmlgo.XPathString:
		fmt.Fprintln(w, res.String)
	}
}
