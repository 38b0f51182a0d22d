package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"typeconv/internal/typelib"
)

type evalOptions struct {
	root   string
	member string
	expr   string
	scope  string
}

type evalResult struct {
	Root   string `json:"root" yaml:"root"`
	Member string `json:"member,omitempty" yaml:"member,omitempty"`
	Expr   string `json:"expr,omitempty" yaml:"expr,omitempty"`
	Scope  string `json:"scope" yaml:"scope"`
	Type   string `json:"type" yaml:"type"`
}

func newEvalCmd(root *rootOptions) *cobra.Command {
	opts := &evalOptions{}

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate a member type or a type expression against a root type",
		Example: `  # Type of member Thing as seen from Int
  typeconv eval -f decls.yaml --root Int --member Thing

  # Expression T of class Super, seen from Bound[Integer]
  typeconv eval -f decls.yaml --root 'Bound[Integer]' --expr T --scope Super`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := root.load(cmd)
			if err != nil {
				return err
			}
			res, err := runEval(s, opts)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), root.output, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, res.Type)
				return err
			}, res)
		},
	}

	cmd.Flags().StringVar(&opts.root, "root", "", "Root type, e.g. Bound[Integer]")
	cmd.Flags().StringVar(&opts.member, "member", "", "Member to evaluate")
	cmd.Flags().StringVar(&opts.expr, "expr", "", "Type expression to evaluate")
	cmd.Flags().StringVar(&opts.scope, "scope", "", "Class declaring --expr (default: the root class)")
	_ = cmd.MarkFlagRequired("root")
	cmd.MarkFlagsMutuallyExclusive("member", "expr")

	return cmd
}

func runEval(s *session, opts *evalOptions) (*evalResult, error) {
	root, err := s.descriptor(opts.root)
	if err != nil {
		return nil, fmt.Errorf("--root: %w", err)
	}

	if opts.member != "" {
		m, err := s.eval.Member(root, opts.member)
		if err != nil {
			return nil, err
		}
		return &evalResult{Root: root.String(), Member: m.Name, Scope: m.Scope.String(), Type: m.Type.String()}, nil
	}

	if opts.expr == "" {
		return nil, errors.New("one of --member or --expr is required")
	}

	scope, _ := typelib.IDOf(root)
	if opts.scope != "" {
		scope = s.classID(opts.scope)
	}
	decl, err := s.eval.Declarations().Of(scope)
	if err != nil {
		return nil, err
	}

	params := make([]string, decl.NumTypeParams())
	for i := range params {
		params[i] = decl.TypeParam(i).Name
	}
	e, err := typelib.ParseExprIn(opts.expr, params)
	if err != nil {
		return nil, fmt.Errorf("--expr: %w", err)
	}

	d, err := s.eval.Evaluate(root, typelib.Qualify(e, s.local), scope)
	if err != nil {
		return nil, err
	}

	return &evalResult{Root: root.String(), Expr: e.String(), Scope: scope.String(), Type: d.String()}, nil
}
