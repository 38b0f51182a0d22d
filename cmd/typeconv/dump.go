package main

import (
	"io"

	"github.com/spf13/cobra"

	"typeconv/internal/declfile"
)

func newDumpCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Write the loaded declarations as a declaration file",
		Long:  `Write the loaded declarations in the YAML declaration file format. Loading Go packages and dumping them gives a file to edit and feed back with -f.`,
		Example: `  typeconv dump --pkg ./model > model.yaml
  typeconv dump -f decls.yaml -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := root.load(cmd)
			if err != nil {
				return err
			}
			f := declfile.FromSpecs(s.pkg, s.specs)

			format := root.output
			if format == "text" {
				format = "yaml"
			}
			return write(cmd.OutOrStdout(), format, func(io.Writer) error { return nil }, f)
		},
	}
}
