package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kbukum/apiwrap/version"
)

func (a *app) newResourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "resources",
		Aliases: []string{"ls"},
		Short:   "List the resources of the API",
		Args:    cobra.NoArgs,
		PreRunE: a.load,
		RunE: func(*cobra.Command, []string) error {
			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			mapping := a.cfg.API.Resources
			for _, name := range mapping.Names() {
				res := mapping[name]
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, res.Path, res.Docs)
			}
			return w.Flush()
		},
	}
}

func (a *app) newDocCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "doc <resource>",
		Short:   "Show the documentation of a resource",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.load,
		RunE: func(_ *cobra.Command, args []string) error {
			res, err := a.client.Attr(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, res.Doc())
			return err
		},
	}
}

func newVersionCmd(out io.Writer) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			info := version.Get()
			if !asJSON {
				_, err := fmt.Fprintln(out, info.String())
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
