package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Finnson11-star/pdf-translator/internal/translator"
)

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the suggested target languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tLANGUAGE")
			for _, l := range translator.SupportedLanguages {
				fmt.Fprintf(w, "%s\t%s\n", l.Code, l.Name)
			}
			return w.Flush()
		},
	}
}
