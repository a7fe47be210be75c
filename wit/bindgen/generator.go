// Package bindgen implements the core of a C binding generator for
// component-model style WIT interfaces: it lowers a resolved [wit.Resolve]
// into a header and an implementation source file per interface, following
// the canonical ABI. The actual instruction-by-instruction lifting and
// lowering traversal is supplied by an external [ABIWalker]; this package
// owns naming, type emission, destructor synthesis, return-shape
// classification, and the statement-building [Visitor] that turns ABI
// instructions into C source text.
package bindgen

import (
	"fmt"

	"github.com/bytecodealliance/wit-bindgen-c/internal/gen"
	"github.com/bytecodealliance/wit-bindgen-c/wit"
)

// typeFragment is a named C typedef under construction: its emitted body
// text, the destructor (if the type owns anything), and the set of other
// emitted type names its body mentions, used to topologically order the
// header in dependency order.
type typeFragment struct {
	name           string
	typedef        string // the "typedef ..." statement body, no trailing newline
	destructorDecl string // "" if the type does not own anything
	destructorDef  string
	mentions       []string
	docs           string
}

// funcFragment is one function's emitted pieces, filed under its owning
// interface in call order.
type funcFragment struct {
	header string // the public signature declaration, with doc comment
	impl   string // the trampoline declaration/definition plus body
}

// Generator holds all state for emitting one WIT interface in one
// direction.
type Generator struct {
	res       *wit.Resolve
	iface     *wit.Interface
	ifaceName string // kebab-case interface identifier, e.g. "my-math"
	prefix    string // snake_case symbol-name prefix, e.g. "my_math"
	ns        string // SHOUTY_SNAKE_CASE macro-name prefix, e.g. "MY_MATH"
	direction wit.Direction
	walker    ABIWalker

	file *gen.File

	types       map[string]*typeFragment // keyed by typeName(t)
	typeOrder   []string                 // discovery order, input to the topological sort
	publicAnon  map[string]bool
	privateAnon map[string]bool

	funcs []funcFragment

	returnAreaSize  uintptr
	returnAreaAlign uintptr
	needsString     bool
	linkRefEmitted  bool

	err error
}

// NewGenerator returns a Generator for iface, emitting code for direction,
// driven by walker. iface must belong to res.
func NewGenerator(res *wit.Resolve, iface *wit.Interface, direction wit.Direction, walker ABIWalker) *Generator {
	name := ""
	if iface.Name != nil {
		name = *iface.Name
	}
	g := &Generator{
		res:         res,
		iface:       iface,
		ifaceName:   kebab(name),
		prefix:      snake(name),
		ns:          shoutySnake(name),
		direction:   direction,
		walker:      walker,
		file:        gen.NewFile(),
		types:       make(map[string]*typeFragment),
		publicAnon:  make(map[string]bool),
		privateAnon: make(map[string]bool),
	}
	return g
}

// fail records the first fatal error encountered during generation.
// Subsequent calls are no-ops once an error is recorded.
func (g *Generator) fail(format string, args ...any) {
	if g.err == nil {
		g.err = fmt.Errorf(format, args...)
	}
}

// reserve declares name in the file scope, failing generation if it
// collides with an already-declared identifier.
func (g *Generator) reserve(name string) {
	if !g.file.Scope.Reserve(name) {
		g.fail("bindgen: name collision on %q", name)
	}
}

// Preprocess records the generation direction on the interface. It builds no
// size/align table: sizes and alignments are computed from the IR on demand
// (see SizeAlign). It must be called once before any type or function pass.
func (g *Generator) Preprocess() {
	g.iface.Direction = g.direction
}

// Finish drains all deferred anonymous-type work, emits every typedef in
// topological order with its destructor, emits the string-helper runtime
// if referenced, emits the static return area if this is an export
// interface that needs one, and returns the header and implementation
// source text. It returns an error if any fatal condition was recorded
// during generation.
func (g *Generator) Finish() (header, impl []byte, err error) {
	if g.err != nil {
		return nil, nil, g.err
	}
	order, err := g.topoOrder()
	if err != nil {
		return nil, nil, err
	}

	// A type is private iff it was only ever reached from an
	// implementation-only context: everything else — named types and
	// anonymous types promoted to public — is written into the header,
	// with its destructor declaration; a private type's whole fragment,
	// destructor included, is written straight into the implementation.
	for _, name := range order {
		frag := g.types[name]
		if g.privateAnon[name] && !g.publicAnon[name] {
			g.file.Impl.P(frag.typedef)
			if frag.destructorDef != "" {
				g.file.Impl.P(frag.destructorDef)
			}
			g.file.Impl.P()
			continue
		}
		if frag.docs != "" {
			g.file.Header.P(frag.docs)
		}
		g.file.Header.P(frag.typedef)
		if frag.destructorDecl != "" {
			g.file.Header.P(frag.destructorDecl)
		}
		g.file.Header.P()
		if frag.destructorDef != "" {
			g.file.Impl.P(frag.destructorDef)
			g.file.Impl.P()
		}
	}

	if g.needsString {
		g.emitStringHelpers()
	}

	for _, ff := range g.funcs {
		g.file.Header.P(ff.header)
		g.file.Impl.P(ff.impl)
	}

	if g.direction == wit.Exported && g.returnAreaSize > 0 {
		g.file.Impl.Printf("static __attribute__((aligned(%d))) uint8_t RET_AREA[%d];\n\n",
			g.returnAreaAlign, g.returnAreaSize)
	}

	headerText := g.wrapHeader(g.file.Header.String())
	implText := g.wrapImpl(g.file.Impl.String())
	return []byte(headerText), []byte(implText), nil
}

// topoOrder returns type names in an order consistent with the "mentions"
// relation: every name appears after every name it mentions.
func (g *Generator) topoOrder() ([]string, error) {
	const (
		white = iota
		gray
		black
	)
	state := make(map[string]int, len(g.typeOrder))
	var order []string
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("bindgen: cycle detected in type %q", name)
		}
		state[name] = gray
		frag, ok := g.types[name]
		if !ok {
			return fmt.Errorf("bindgen: reference to unemitted type %q", name)
		}
		for _, m := range frag.mentions {
			if err := visit(m); err != nil {
				return err
			}
		}
		state[name] = black
		order = append(order, name)
		return nil
	}
	// Visiting in discovery order, rather than e.g. sorted by name, is what
	// makes the output a pure function of the IR.
	for _, name := range g.typeOrder {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}
