// Package main provides the CLI entrypoint for typeconv.
//
// typeconv evaluates generic member types and derives structured schemas
// from class declarations read from a YAML file or from Go packages:
//
//	typeconv eval -f decls.yaml --root Int --member Thing
//	typeconv members -f decls.yaml Int
//	typeconv schema --pkg ./model Order -o json
//	typeconv dump --pkg ./model > decls.yaml
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	root := newRootCmd()
	root.SetArgs(args)

	return root.ExecuteContext(ctx)
}
