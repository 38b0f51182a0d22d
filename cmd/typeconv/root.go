package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"typeconv/internal/analyze"
	"typeconv/internal/convert"
	"typeconv/internal/declfile"
	"typeconv/internal/discover"
	"typeconv/internal/typelib"
)

type rootOptions struct {
	file     string   // YAML declaration file
	pkgs     []string // Go package patterns
	dir      string   // directory the patterns resolve from
	output   string   // output format: text, json, yaml
	logLevel string

	level slog.LevelVar
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "typeconv",
		Short:         "Evaluate generic member types and derive structured schemas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := opts.level.UnmarshalText([]byte(opts.logLevel)); err != nil {
				return fmt.Errorf("invalid --log-level %q: %w", opts.logLevel, err)
			}
			switch opts.output {
			case "text", "json", "yaml":
				return nil
			default:
				return fmt.Errorf("invalid output format %q (text, json, yaml)", opts.output)
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.file, "file", "f", "", "YAML declaration file")
	flags.StringSliceVar(&opts.pkgs, "pkg", nil, "Go package patterns to load instead of a declaration file")
	flags.StringVar(&opts.dir, "dir", "", "Directory Go package patterns resolve from")
	flags.StringVarP(&opts.output, "output", "o", "text", "Output format (text, json, yaml)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newEvalCmd(opts),
		newMembersCmd(opts),
		newSchemaCmd(opts),
		newDumpCmd(opts),
	)

	return cmd
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: &o.level}))
}

// session is what every command works on: the loaded declarations and the
// evaluator and builder over them.
type session struct {
	specs   []*typelib.ClassSpec
	pkg     string                    // package of bare names, if any
	local   map[string]typelib.TypeID // unambiguous bare names
	eval    *typelib.Evaluator
	builder *convert.Builder
}

func (o *rootOptions) load(cmd *cobra.Command) (*session, error) {
	var (
		specs []*typelib.ClassSpec
		pkg   string
	)

	switch {
	case o.file != "" && len(o.pkgs) > 0:
		return nil, errors.New("--file and --pkg are mutually exclusive")

	case o.file != "":
		f, err := declfile.LoadFile(o.file)
		if err != nil {
			return nil, err
		}
		list, err := declfile.ToSpecs(f)
		if err != nil {
			return nil, err
		}
		for i := range list {
			specs = append(specs, &list[i])
		}
		pkg = f.Package

	case len(o.pkgs) > 0:
		graph, err := analyze.NewAnalyzer().LoadPackages(o.dir, o.pkgs...)
		if err != nil {
			return nil, err
		}
		for _, id := range graph.IDs() {
			specs = append(specs, graph.Get(id))
		}
		if len(graph.Packages) == 1 {
			for path := range graph.Packages {
				pkg = path
			}
		}

	default:
		return nil, errors.New("either --file or --pkg is required")
	}

	u := typelib.NewUniverse()
	for _, spec := range specs {
		if err := u.Define(*spec); err != nil {
			return nil, err
		}
	}

	logger := o.logger(cmd)
	decls := typelib.NewDeclarations(u)
	eval := typelib.NewEvaluator(decls, typelib.WithLogger(logger))

	return &session{
		specs:   specs,
		pkg:     pkg,
		local:   bareNames(specs),
		eval:    eval,
		builder: convert.NewBuilder(eval, convert.WithDiscoverer(discover.NewDeclared(decls)), convert.WithLogger(logger)),
	}, nil
}

// bareNames maps class names to identities when only one package declares them.
func bareNames(specs []*typelib.ClassSpec) map[string]typelib.TypeID {
	local := make(map[string]typelib.TypeID, len(specs))
	clash := make(map[string]bool)
	for _, spec := range specs {
		if _, ok := local[spec.ID.Name]; ok {
			clash[spec.ID.Name] = true
		}
		local[spec.ID.Name] = spec.ID
	}
	for name := range clash {
		delete(local, name)
	}

	return local
}

// descriptor parses a closed type written by the user.
func (s *session) descriptor(text string) (typelib.Descriptor, error) {
	e, err := typelib.ParseExpr(text)
	if err != nil {
		return nil, err
	}

	return typelib.DescriptorOf(typelib.Qualify(e, s.local))
}

// classID resolves a class name written by the user.
func (s *session) classID(text string) typelib.TypeID {
	if id, ok := s.local[text]; ok && !strings.Contains(text, ".") {
		return id
	}

	return typelib.ParseTypeID(text)
}
