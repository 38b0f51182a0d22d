package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type memberRow struct {
	Name  string `json:"name" yaml:"name"`
	Type  string `json:"type" yaml:"type"`
	Scope string `json:"scope" yaml:"scope"`
	Field bool   `json:"field" yaml:"field"`
}

func newMembersCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "members ROOT",
		Short: "List every member of a type with its evaluated type",
		Example: `  typeconv members -f decls.yaml BoundInt
  typeconv members --pkg ./model 'Page[Order]' -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.load(cmd)
			if err != nil {
				return err
			}
			d, err := s.descriptor(args[0])
			if err != nil {
				return err
			}
			class, err := s.eval.EvaluateClass(d)
			if err != nil {
				return err
			}

			rows := make([]memberRow, len(class.Members))
			short := make([]string, len(class.Members))
			for i, m := range class.Members {
				rows[i] = memberRow{Name: m.Name, Type: m.Type.String(), Scope: m.Scope.String(), Field: m.Field}
				short[i] = m.Scope.Short()
			}

			return write(cmd.OutOrStdout(), root.output, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "MEMBER\tTYPE\tDECLARED IN")
				for i, r := range rows {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, r.Type, short[i])
				}
				return tw.Flush()
			}, rows)
		},
	}
}
