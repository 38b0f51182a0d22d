package convert

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"typeconv/internal/diagnostic"
	"typeconv/internal/match"
	"typeconv/internal/typelib"
)

// Builder classifies evaluated descriptors and builds their converters.
//
// Converters are cached per descriptor for the lifetime of the Builder.
// Failures are not cached.
type Builder struct {
	eval   *typelib.Evaluator
	disc   Discoverer
	logger *slog.Logger
	cache  sync.Map // descriptor cache key -> *Converter
	group  singleflight.Group

	mu    sync.Mutex
	diags diagnostic.Diagnostics
	noted map[string]bool // code|type|member of recorded diagnostics
}

// Option configures a Builder.
type Option func(*Builder)

// WithDiscoverer sets the collaborator that recognizes records.
// Without one, classes that are neither scalars, enumerations nor
// containers take the textual fallback.
func WithDiscoverer(d Discoverer) Option {
	return func(b *Builder) {
		b.disc = d
	}
}

// WithLogger sets the logger used for cache tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a Builder that evaluates member and element types with eval.
func NewBuilder(eval *typelib.Evaluator, opts ...Option) *Builder {
	b := &Builder{eval: eval}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}

	return b
}

// Evaluator returns the evaluator the Builder resolves types with.
func (b *Builder) Evaluator() *typelib.Evaluator {
	return b.eval
}

// Diagnostics returns a snapshot of the warnings raised so far. A lossy
// type is reported once for every member it was requested for.
func (b *Builder) Diagnostics() *diagnostic.Diagnostics {
	b.mu.Lock()
	defer b.mu.Unlock()

	snapshot := b.diags.Clone()
	return &snapshot
}

func (b *Builder) record(notes []diagnostic.Diagnostic) {
	if len(notes) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.noted == nil {
		b.noted = make(map[string]bool)
	}
	for _, n := range notes {
		key := n.Code + "|" + n.Type + "|" + n.Member
		if b.noted[key] {
			continue
		}
		b.noted[key] = true
		b.diags.Add(n)
	}
}

// reuse records the notes a cached converter owes its new use.
func (b *Builder) reuse(c *Converter, meta MemberMetadata) {
	if c.lossy && meta.Name != "" {
		b.record([]diagnostic.Diagnostic{lossyNote(c.typ, meta)})
	}
}

func cacheKey(d typelib.Descriptor) string {
	return d.Kind().String() + ":" + d.Key()
}

// ConverterFor returns the converter of d, a closed descriptor.
// meta says where d is used; it only shows up in diagnostics.
func (b *Builder) ConverterFor(d typelib.Descriptor, meta MemberMetadata) (*Converter, error) {
	if d == nil {
		return nil, &typelib.UnresolvableTypeError{Expr: "<nil>", Reason: "missing descriptor"}
	}

	key := cacheKey(d)
	if cached, ok := b.cache.Load(key); ok {
		b.logger.Debug("converter cache hit", slog.String("type", d.String()))
		b.reuse(cached.(*Converter), meta)
		return cached.(*Converter), nil
	}
	b.logger.Debug("converter cache miss", slog.String("type", d.String()))

	v, err, _ := b.group.Do(key, func() (any, error) {
		return b.newRequest().build(d, meta)
	})
	if err != nil {
		return nil, err
	}

	return v.(*Converter), nil
}

// ConverterForMember evaluates member name of root and returns its converter.
func (b *Builder) ConverterForMember(root typelib.Descriptor, name string) (*Converter, error) {
	m, err := b.eval.Member(root, name)
	if err != nil {
		b.unknownMember(root, name)
		return nil, err
	}

	return b.ConverterFor(m.Type, MemberMetadata{Owner: root.String(), Name: name})
}

// unknownMember records a warning when root declares no member called name,
// naming the closest declared member if there is one.
func (b *Builder) unknownMember(root typelib.Descriptor, name string) {
	id, ok := typelib.IDOf(root)
	if !ok {
		return
	}
	line, err := b.eval.Declarations().Lineage(id)
	if err != nil {
		return
	}

	var names []string
	for _, decl := range line {
		for _, m := range decl.Members() {
			if m.Name == name {
				return
			}
			names = append(names, m.Name)
		}
	}

	d := diagnostic.Diagnostic{
		Severity: diagnostic.DiagnosticWarning,
		Code:     diagnostic.CodeUnknownMember,
		Message:  "no member named " + name,
		Type:     root.String(),
		Member:   name,
	}
	if s, ok := match.Suggest(name, names, match.DefaultThreshold); ok {
		d.Suggestions = []string{s}
	}
	b.record([]diagnostic.Diagnostic{d})
}

// request is one ConverterFor call. building holds the descriptors whose
// converter is under construction, so self-containing records are reported
// instead of recursed into.
type request struct {
	b        *Builder
	building map[string]bool
}

func (b *Builder) newRequest() *request {
	return &request{b: b, building: make(map[string]bool)}
}

func (r *request) build(d typelib.Descriptor, meta MemberMetadata) (*Converter, error) {
	key := cacheKey(d)
	if cached, ok := r.b.cache.Load(key); ok {
		r.b.reuse(cached.(*Converter), meta)
		return cached.(*Converter), nil
	}

	if r.building[key] {
		return nil, &typelib.UnresolvableTypeError{Root: d, Expr: d.String(), Reason: "schema of " + d.String() + " contains itself"}
	}
	r.building[key] = true
	defer delete(r.building, key)

	c, err := r.classify(d, meta)
	if err != nil {
		return nil, err
	}

	actual, loaded := r.b.cache.LoadOrStore(key, c)
	if loaded {
		r.b.reuse(actual.(*Converter), meta)
	} else {
		r.b.record(c.notes)
	}

	return actual.(*Converter), nil
}

// classify picks the first matching shape: primitive, scalar class,
// enumeration, array, container, record, and finally the textual fallback.
func (r *request) classify(d typelib.Descriptor, meta MemberMetadata) (*Converter, error) {
	switch d := d.(type) {
	case *typelib.Primitive:
		return primitiveConverter(d), nil

	case *typelib.ArrayOf:
		var inner typelib.Descriptor = d
		dim := 0
		for {
			a, ok := inner.(*typelib.ArrayOf)
			if !ok {
				break
			}
			inner, dim = a.Element, dim+1
		}

		ic, err := r.build(inner, meta)
		if err != nil {
			return nil, err
		}
		return arrayConverter(d, ic, dim), nil

	case *typelib.Named, *typelib.Parameterized:
		return r.classConverter(d, meta)

	default:
		return nil, &typelib.UnresolvableTypeError{Root: d, Expr: d.String(), Reason: "not a closed type"}
	}
}

func (r *request) classConverter(d typelib.Descriptor, meta MemberMetadata) (*Converter, error) {
	id, _ := typelib.IDOf(d)
	decl, err := r.b.eval.Declarations().Of(id)
	if err != nil {
		return nil, err
	}

	if k, ok := scalarClasses[id]; ok {
		return scalarConverter(d, k, decl.Native()), nil
	}

	if decl.Kind() == typelib.ClassKindEnum {
		return enumConverter(d, decl), nil
	}

	c, ok, err := r.containerOf(d, decl)
	if err != nil {
		return nil, err
	}
	if ok {
		return r.collectionConverter(d, decl, c, meta)
	}

	if r.b.disc != nil {
		rec, err := r.b.disc.Discover(d, decl)
		if err != nil {
			return nil, fmt.Errorf("discover %s: %w", d, err)
		}
		if rec != nil {
			return r.compositeConverter(d, decl, rec)
		}
	}

	return fallbackConverter(d, decl.Native(), meta), nil
}

// containerOf finds the container d is or inherits from, with its element
// types evaluated against d.
func (r *request) containerOf(d typelib.Descriptor, decl *typelib.Declaration) (container, bool, error) {
	if isContainer(decl.ID()) {
		args := make([]typelib.Descriptor, decl.NumTypeParams())
		for i, p := range decl.TypeParams() {
			a, err := r.b.eval.Evaluate(d, typelib.Var(p.Name), decl.ID())
			if err != nil {
				return container{}, false, err
			}
			args[i] = a
		}
		return container{ID: decl.ID(), Args: args}, true, nil
	}

	ancestors, err := r.b.eval.Ancestors(d)
	if err != nil {
		return container{}, false, err
	}
	for _, a := range ancestors {
		if id, _ := typelib.IDOf(a); isContainer(id) {
			return container{ID: id, Args: typelib.ArgsOf(a)}, true, nil
		}
	}

	return container{}, false, nil
}

func (r *request) collectionConverter(d typelib.Descriptor, decl *typelib.Declaration, c container, meta MemberMetadata) (*Converter, error) {
	if c.isMap() {
		key, err := r.build(c.Args[0], meta)
		if err != nil {
			return nil, err
		}
		value, err := r.build(c.Args[1], meta)
		if err != nil {
			return nil, err
		}
		return mapConverter(d, c, key, value, decl.Native()), nil
	}

	elem, err := r.build(c.Args[0], meta)
	if err != nil {
		return nil, err
	}
	return sequenceConverter(d, c, elem, decl.Native()), nil
}

type compositeItem struct {
	attr Attribute
	conv *Converter
}

func (r *request) compositeConverter(d typelib.Descriptor, decl *typelib.Declaration, rec *Record) (*Converter, error) {
	items := make([]compositeItem, 0, len(rec.Attributes))
	seen := make(map[string]bool, len(rec.Attributes))

	for _, attr := range rec.Attributes {
		if seen[attr.Name] {
			return nil, fmt.Errorf("record %s: duplicate attribute %q", d, attr.Name)
		}
		seen[attr.Name] = true

		t, err := r.b.eval.Evaluate(d, attr.Type, attr.Scope)
		if err != nil {
			return nil, err
		}
		conv, err := r.build(t, MemberMetadata{Owner: d.String(), Name: attr.Name, Description: attr.Description})
		if err != nil {
			return nil, err
		}
		items = append(items, compositeItem{attr: attr, conv: conv})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].attr.Name < items[j].attr.Name })

	schema := &CompositeSchema{Type: decl.ID(), Description: rec.Description, Items: make([]Item, len(items))}
	for i, it := range items {
		schema.Items[i] = Item{Name: it.attr.Name, Description: it.attr.Description, Schema: it.conv.Schema()}
	}

	c := &Converter{
		typ:    d,
		schema: schema,
		native: decl.Native(),
		to: func(v any) (any, error) {
			if isNil(v) {
				return nil, nil
			}

			out := NewCompositeValue(schema)
			for _, it := range items {
				nv, err := it.attr.Get(v)
				if err != nil {
					return nil, &ConversionError{Type: d, Value: v, Reason: "read " + it.attr.Name, Err: err}
				}
				sv, err := it.conv.ToStructured(nv)
				if err != nil {
					return nil, fmt.Errorf("%s.%s: %w", d, it.attr.Name, err)
				}
				out.Values[it.attr.Name] = sv
			}
			return out, nil
		},
		from: func(v any) (any, error) {
			if v == nil {
				return nilOf(decl.Native()), nil
			}
			if rec.Construct == nil {
				return nil, &UnsupportedOperationError{Type: d, Op: "rebuild", Reason: "no construction strategy"}
			}

			values, err := compositeValues(d, v)
			if err != nil {
				return nil, err
			}

			natives := make(map[string]any, len(items))
			for _, it := range items {
				sv, ok := values[it.attr.Name]
				if !ok {
					return nil, &ConversionError{Type: d, Value: v, Reason: "missing item " + it.attr.Name}
				}
				nv, err := it.conv.FromStructured(sv)
				if err != nil {
					return nil, fmt.Errorf("%s.%s: %w", d, it.attr.Name, err)
				}
				natives[it.attr.Name] = nv
			}

			out, err := rec.Construct(natives)
			if err != nil {
				return nil, &ConversionError{Type: d, Value: v, Reason: "construct", Err: err}
			}
			return out, nil
		},
	}

	if rec.Construct == nil {
		c.notes = append(c.notes, diagnostic.Diagnostic{
			Severity: diagnostic.DiagnosticInfo,
			Code:     diagnostic.CodeNoReconstruct,
			Message:  "structured values cannot be converted back",
			Type:     d.String(),
		})
	}

	return c, nil
}

func compositeValues(d typelib.Descriptor, v any) (map[string]any, error) {
	switch v := v.(type) {
	case *CompositeValue:
		return v.Values, nil
	case map[string]any:
		return v, nil
	default:
		return nil, &ConversionError{Type: d, Value: v, Reason: "expected a composite value"}
	}
}
