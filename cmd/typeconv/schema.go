package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"typeconv/internal/convert"
)

type schemaOptions struct {
	jsonSchema bool
}

func newSchemaCmd(root *rootOptions) *cobra.Command {
	opts := &schemaOptions{}

	cmd := &cobra.Command{
		Use:   "schema TYPE",
		Short: "Show the structured schema a type converts to",
		Example: `  typeconv schema -f decls.yaml Palette
  typeconv schema -f decls.yaml Palette -o json
  typeconv schema -f decls.yaml Palette -o yaml --json-schema`,
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
			c, err := s.builder.ConverterFor(d, convert.MemberMetadata{})
			if err != nil {
				return err
			}

			for _, diag := range s.builder.Diagnostics().All() {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", diag.String())
			}

			return writeSchema(cmd.OutOrStdout(), root.output, c, opts.jsonSchema)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonSchema, "json-schema", false, "Render as JSON Schema instead of the schema tree")

	return cmd
}

func writeSchema(w io.Writer, format string, c *convert.Converter, asJSONSchema bool) error {
	if format == "text" && !asJSONSchema {
		suffix := ""
		if c.Lossy() {
			suffix = " (lossy)"
		}
		_, err := fmt.Fprintf(w, "%s%s\n", c.Schema(), suffix)
		return err
	}

	var (
		data []byte
		err  error
	)
	if asJSONSchema {
		data, err = json.MarshalIndent(convert.JSONSchema(c.Schema()), "", "  ")
	} else {
		data, err = json.MarshalIndent(c.Schema(), "", "  ")
	}
	if err != nil {
		return err
	}

	if format == "yaml" {
		return jsonToYAML(w, data)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
