package bindgen

import (
	"fmt"
	"strings"

	"github.com/bytecodealliance/wit-bindgen-c/wit"
)

// primitiveCType returns the C typedef name for a primitive WIT type, or
// ("", false) if t is not primitive.
func primitiveCType(t wit.Type) (string, bool) {
	switch t.(type) {
	case *wit.Bool:
		return "bool", true
	case *wit.S8:
		return "int8_t", true
	case *wit.U8:
		return "uint8_t", true
	case *wit.S16:
		return "int16_t", true
	case *wit.U16:
		return "uint16_t", true
	case *wit.S32:
		return "int32_t", true
	case *wit.U32:
		return "uint32_t", true
	case *wit.S64:
		return "int64_t", true
	case *wit.U64:
		return "uint64_t", true
	case *wit.F32:
		return "float", true
	case *wit.F64:
		return "double", true
	case *wit.Char:
		return "uint32_t", true
	default:
		return "", false
	}
}

// typeRef returns the C expression naming t as it should appear in a field,
// parameter, or local declaration. Referencing an anonymous structural type
// queues it for emission (promoting it to public if public is set) the
// first time it is seen; repeat references are free.
func (g *Generator) typeRef(t wit.Type, public bool) string {
	if _, ok := t.(*wit.String); ok {
		g.needsString = true
		return g.prefix + "_string_t"
	}
	if ct, ok := primitiveCType(t); ok {
		return ct
	}
	if isAnonymous(t) {
		name := typeName(t)
		g.ensureAnonymous(t, name, public)
		return fmt.Sprintf("%s_%s_t", g.prefix, name)
	}
	td := t.(*wit.TypeDef)
	return fmt.Sprintf("%s_%s_t", g.prefix, snake(*td.Name))
}

// mentionOf returns the types-map key t's typedef fragment must be emitted
// after, or ("", false) if t has no declared fragment (a primitive or the
// built-in string type, neither of which is subject to topological
// ordering).
func (g *Generator) mentionOf(t wit.Type) (string, bool) {
	if _, ok := t.(*wit.String); ok {
		return "", false
	}
	if _, ok := primitiveCType(t); ok {
		return "", false
	}
	return typeName(t), true
}

// addMention resolves t's C type reference and, if t has a declared
// fragment, records it once in *mentions.
func (g *Generator) addMention(t wit.Type, public bool, mentions *[]string) string {
	ref := g.typeRef(t, public)
	if m, ok := g.mentionOf(t); ok {
		appendUniqueInto(mentions, m)
	}
	return ref
}

func appendUniqueInto(list *[]string, s string) {
	for _, existing := range *list {
		if existing == s {
			return
		}
	}
	*list = append(*list, s)
}

// freeFnFor returns the name of the destructor that releases a value of
// type t. It is only called for types where ownsAnything(t) holds, for
// which a destructor is always synthesized.
func (g *Generator) freeFnFor(t wit.Type) string {
	if _, ok := t.(*wit.String); ok {
		return g.prefix + "_string_free"
	}
	return fmt.Sprintf("%s_%s_free", g.prefix, typeName(t))
}

// anonymousKind extracts the structural TypeDefKind for t, unwrapping a
// nameless TypeDef if present.
func anonymousKind(t wit.Type) wit.TypeDefKind {
	if td, ok := t.(*wit.TypeDef); ok {
		return td.Kind
	}
	return t
}

// ensureAnonymous registers the anonymous type t under name, building its
// fragment on first reference, then applies the public/private promotion
// rule: once a name enters publicAnon it never leaves, and a name only
// enters privateAnon if it has never been reached publicly.
func (g *Generator) ensureAnonymous(t wit.Type, name string, public bool) {
	if _, exists := g.types[name]; !exists {
		frag := g.buildTypeFragment(name, anonymousKind(t), "")
		g.types[name] = frag
		g.typeOrder = append(g.typeOrder, name)
	}
	if public {
		g.publicAnon[name] = true
		delete(g.privateAnon, name)
	} else if !g.publicAnon[name] {
		g.privateAnon[name] = true
	}
}

// emitNamedType builds and registers the fragment for a user-declared type.
// It is idempotent: re-emitting the same TypeDef is a no-op.
func (g *Generator) emitNamedType(td *wit.TypeDef) {
	if td.Name == nil {
		g.fail("bindgen: encountered an unnamed top-level type")
		return
	}
	name := snake(*td.Name)
	if _, exists := g.types[name]; exists {
		return
	}
	frag := g.buildTypeFragment(name, td.Kind, td.Docs.Contents)
	g.types[name] = frag
	g.typeOrder = append(g.typeOrder, name)
}

// buildTypeFragment renders the typedef body and, where applicable, the
// destructor for a type named name with the given structural kind.
func (g *Generator) buildTypeFragment(name string, kind wit.TypeDefKind, docs string) *typeFragment {
	var mentions []string
	typedef := g.buildTypedefBody(name, kind, &mentions)
	decl, def, hasDtor := g.destructorFor(name, kind)
	frag := &typeFragment{
		name:     name,
		typedef:  typedef,
		mentions: mentions,
		docs:     formatDocComment(docs),
	}
	if hasDtor {
		frag.destructorDecl = decl
		frag.destructorDef = def
	}
	return frag
}

func (g *Generator) buildTypedefBody(name string, kind wit.TypeDefKind, mentions *[]string) string {
	switch k := kind.(type) {
	case *wit.TypeDef:
		return g.buildAlias(name, k, mentions)
	case *wit.Record:
		return g.buildRecord(name, k, mentions)
	case *wit.Tuple:
		return g.buildTuple(name, k, mentions)
	case *wit.Flags:
		return g.buildFlags(name, k)
	case *wit.Enum:
		return g.buildEnum(name, k)
	case *wit.Variant:
		return g.buildVariant(name, k, mentions)
	case *wit.Union:
		return g.buildUnion(name, k, mentions)
	case *wit.Option:
		return g.buildOption(name, k, mentions)
	case *wit.Result:
		return g.buildResult(name, k, mentions)
	case *wit.List:
		return g.buildList(name, k, mentions)
	case *wit.Future, *wit.Stream:
		g.fail("bindgen: future and stream types are not supported (%q)", name)
		return fmt.Sprintf("typedef uint8_t %s_%s_t;", g.prefix, name)
	default:
		g.fail("bindgen: unsupported type kind for %q", name)
		return fmt.Sprintf("typedef uint8_t %s_%s_t;", g.prefix, name)
	}
}

func (g *Generator) buildAlias(name string, aliased wit.Type, mentions *[]string) string {
	ct := g.addMention(aliased, true, mentions)
	return fmt.Sprintf("typedef %s %s_%s_t;", ct, g.prefix, name)
}

func (g *Generator) buildRecord(name string, kind *wit.Record, mentions *[]string) string {
	var b strings.Builder
	b.WriteString("typedef struct {\n")
	for _, f := range kind.Fields {
		ct := g.addMention(f.Type, true, mentions)
		fmt.Fprintf(&b, "\t%s %s;\n", ct, snake(f.Name))
	}
	fmt.Fprintf(&b, "} %s_%s_t;", g.prefix, name)
	return b.String()
}

func (g *Generator) buildTuple(name string, kind *wit.Tuple, mentions *[]string) string {
	var b strings.Builder
	b.WriteString("typedef struct {\n")
	for i, t := range kind.Types {
		ct := g.addMention(t, true, mentions)
		fmt.Fprintf(&b, "\t%s f%d;\n", ct, i)
	}
	fmt.Fprintf(&b, "} %s_%s_t;", g.prefix, name)
	return b.String()
}

func (g *Generator) buildFlags(name string, kind *wit.Flags) string {
	repr := flagsRepr(len(kind.Flags))
	lines := []string{fmt.Sprintf("typedef %s %s_%s_t;", repr, g.prefix, name)}
	for i, fl := range kind.Flags {
		lines = append(lines, fmt.Sprintf("#define %s_%s_%s (1 << %d)", g.ns, shoutySnake(name), shoutySnake(fl.Name), i))
	}
	return strings.Join(lines, "\n")
}

func (g *Generator) buildEnum(name string, kind *wit.Enum) string {
	repr := discriminantRepr(len(kind.Cases))
	lines := []string{fmt.Sprintf("typedef %s %s_%s_t;", repr, g.prefix, name)}
	for i, c := range kind.Cases {
		lines = append(lines, fmt.Sprintf("#define %s_%s_%s %d", g.ns, shoutySnake(name), shoutySnake(c.Name), i))
	}
	return strings.Join(lines, "\n")
}

func (g *Generator) buildVariant(name string, kind *wit.Variant, mentions *[]string) string {
	discRepr := discriminantRepr(len(kind.Cases))
	hasPayload := false
	for _, c := range kind.Cases {
		if c.Type != nil && !isEmptyType(c.Type) {
			hasPayload = true
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "typedef struct {\n\t%s tag;\n", discRepr)
	if hasPayload {
		b.WriteString("\tunion {\n")
		for _, c := range kind.Cases {
			if c.Type == nil || isEmptyType(c.Type) {
				continue
			}
			ct := g.addMention(c.Type, true, mentions)
			fmt.Fprintf(&b, "\t\t%s %s;\n", ct, snake(c.Name))
		}
		b.WriteString("\t} val;\n")
	}
	fmt.Fprintf(&b, "} %s_%s_t;", g.prefix, name)
	for i, c := range kind.Cases {
		fmt.Fprintf(&b, "\n#define %s_%s_%s %d", g.ns, shoutySnake(name), shoutySnake(c.Name), i)
	}
	return b.String()
}

func (g *Generator) buildUnion(name string, kind *wit.Union, mentions *[]string) string {
	discRepr := discriminantRepr(len(kind.Types))
	var b strings.Builder
	fmt.Fprintf(&b, "typedef struct {\n\t%s tag;\n\tunion {\n", discRepr)
	for i, t := range kind.Types {
		ct := g.addMention(t, true, mentions)
		fmt.Fprintf(&b, "\t\t%s f%d;\n", ct, i)
	}
	b.WriteString("\t} val;\n")
	fmt.Fprintf(&b, "} %s_%s_t;", g.prefix, name)
	return b.String()
}

func (g *Generator) buildOption(name string, kind *wit.Option, mentions *[]string) string {
	var b strings.Builder
	b.WriteString("typedef struct {\n\tbool is_some;\n")
	if !isEmptyType(kind.Type) {
		ct := g.addMention(kind.Type, true, mentions)
		fmt.Fprintf(&b, "\t%s val;\n", ct)
	}
	fmt.Fprintf(&b, "} %s_%s_t;", g.prefix, name)
	return b.String()
}

func (g *Generator) buildResult(name string, kind *wit.Result, mentions *[]string) string {
	okEmpty := kind.OK == nil || isEmptyType(kind.OK)
	errEmpty := kind.Err == nil || isEmptyType(kind.Err)
	var b strings.Builder
	b.WriteString("typedef struct {\n\tbool is_err;\n")
	if !okEmpty || !errEmpty {
		b.WriteString("\tunion {\n")
		if !okEmpty {
			ct := g.addMention(kind.OK, true, mentions)
			fmt.Fprintf(&b, "\t\t%s ok;\n", ct)
		}
		if !errEmpty {
			ct := g.addMention(kind.Err, true, mentions)
			fmt.Fprintf(&b, "\t\t%s err;\n", ct)
		}
		b.WriteString("\t} val;\n")
	}
	fmt.Fprintf(&b, "} %s_%s_t;", g.prefix, name)
	return b.String()
}

func (g *Generator) buildList(name string, kind *wit.List, mentions *[]string) string {
	ct := g.addMention(kind.Type, true, mentions)
	return fmt.Sprintf("typedef struct {\n\t%s *ptr;\n\tsize_t len;\n} %s_%s_t;", ct, g.prefix, name)
}

// destructorFor returns the declaration and definition of the free
// function for a type named name with the given kind, or ok=false if the
// type never owns anything and no destructor is emitted.
func (g *Generator) destructorFor(name string, kind wit.TypeDefKind) (decl, def string, ok bool) {
	ctype := fmt.Sprintf("%s_%s_t", g.prefix, name)
	fn := fmt.Sprintf("%s_%s_free", g.prefix, name)

	switch k := kind.(type) {
	case *wit.TypeDef:
		aliased := wit.Type(k)
		if !ownsAnything(aliased) {
			return "", "", false
		}
		decl = fmt.Sprintf("void %s(%s *ptr);", fn, ctype)
		def = fmt.Sprintf("void %s(%s *ptr) {\n\t%s((%s *)ptr);\n}", fn, ctype, g.freeFnFor(aliased), g.typeRef(aliased, false))
		return decl, def, true

	case *wit.Enum, *wit.Flags:
		return "", "", false

	case *wit.Record:
		var owning []wit.Field
		for _, f := range k.Fields {
			if ownsAnything(f.Type) {
				owning = append(owning, f)
			}
		}
		if len(owning) == 0 {
			return "", "", false
		}
		var b strings.Builder
		fmt.Fprintf(&b, "void %s(%s *ptr) {\n", fn, ctype)
		for _, f := range owning {
			fmt.Fprintf(&b, "\t%s(&ptr->%s);\n", g.freeFnFor(f.Type), snake(f.Name))
		}
		b.WriteString("}")
		return fmt.Sprintf("void %s(%s *ptr);", fn, ctype), b.String(), true

	case *wit.Tuple:
		var owning []int
		for i, t := range k.Types {
			if ownsAnything(t) {
				owning = append(owning, i)
			}
		}
		if len(owning) == 0 {
			return "", "", false
		}
		var b strings.Builder
		fmt.Fprintf(&b, "void %s(%s *ptr) {\n", fn, ctype)
		for _, i := range owning {
			fmt.Fprintf(&b, "\t%s(&ptr->f%d);\n", g.freeFnFor(k.Types[i]), i)
		}
		b.WriteString("}")
		return fmt.Sprintf("void %s(%s *ptr);", fn, ctype), b.String(), true

	case *wit.List:
		var b strings.Builder
		fmt.Fprintf(&b, "void %s(%s *ptr) {\n", fn, ctype)
		if ownsAnything(k.Type) {
			fmt.Fprintf(&b, "\tfor (size_t i = 0; i < ptr->len; i++) {\n\t\t%s(&ptr->ptr[i]);\n\t}\n", g.freeFnFor(k.Type))
		}
		b.WriteString("\tif (ptr->len > 0) {\n\t\tfree(ptr->ptr);\n\t}\n}")
		return fmt.Sprintf("void %s(%s *ptr);", fn, ctype), b.String(), true

	case *wit.Variant:
		var owning []wit.Case
		for _, c := range k.Cases {
			if c.Type != nil && ownsAnything(c.Type) {
				owning = append(owning, c)
			}
		}
		if len(owning) == 0 {
			return "", "", false
		}
		var b strings.Builder
		fmt.Fprintf(&b, "void %s(%s *ptr) {\n\tswitch (ptr->tag) {\n", fn, ctype)
		for _, c := range owning {
			fmt.Fprintf(&b, "\tcase %s_%s_%s:\n\t\t%s(&ptr->val.%s);\n\t\tbreak;\n",
				g.ns, shoutySnake(name), shoutySnake(c.Name), g.freeFnFor(c.Type), snake(c.Name))
		}
		b.WriteString("\tdefault:\n\t\tbreak;\n\t}\n}")
		return fmt.Sprintf("void %s(%s *ptr);", fn, ctype), b.String(), true

	case *wit.Union:
		var owning []int
		for i, t := range k.Types {
			if ownsAnything(t) {
				owning = append(owning, i)
			}
		}
		if len(owning) == 0 {
			return "", "", false
		}
		var b strings.Builder
		fmt.Fprintf(&b, "void %s(%s *ptr) {\n\tswitch (ptr->tag) {\n", fn, ctype)
		for _, i := range owning {
			fmt.Fprintf(&b, "\tcase %d:\n\t\t%s(&ptr->val.f%d);\n\t\tbreak;\n", i, g.freeFnFor(k.Types[i]), i)
		}
		b.WriteString("\tdefault:\n\t\tbreak;\n\t}\n}")
		return fmt.Sprintf("void %s(%s *ptr);", fn, ctype), b.String(), true

	case *wit.Option:
		if !ownsAnything(k.Type) {
			return "", "", false
		}
		def = fmt.Sprintf("void %s(%s *ptr) {\n\tif (ptr->is_some) {\n\t\t%s(&ptr->val);\n\t}\n}", fn, ctype, g.freeFnFor(k.Type))
		return fmt.Sprintf("void %s(%s *ptr);", fn, ctype), def, true

	case *wit.Result:
		okOwns := k.OK != nil && ownsAnything(k.OK)
		errOwns := k.Err != nil && ownsAnything(k.Err)
		if !okOwns && !errOwns {
			return "", "", false
		}
		var b strings.Builder
		fmt.Fprintf(&b, "void %s(%s *ptr) {\n\tif (!ptr->is_err) {\n", fn, ctype)
		if okOwns {
			fmt.Fprintf(&b, "\t\t%s(&ptr->val.ok);\n", g.freeFnFor(k.OK))
		}
		b.WriteString("\t} else {\n")
		if errOwns {
			fmt.Fprintf(&b, "\t\t%s(&ptr->val.err);\n", g.freeFnFor(k.Err))
		}
		b.WriteString("\t}\n}")
		return fmt.Sprintf("void %s(%s *ptr);", fn, ctype), b.String(), true

	default:
		return "", "", false
	}
}

// emitStringHelpers appends the <iface>_string_t runtime (declarations
// into the header, definitions into the implementation) emitted iff any
// emitted entity references the built-in string type.
func (g *Generator) emitStringHelpers() {
	p := g.prefix
	g.file.Header.P(fmt.Sprintf("typedef struct {\n\tchar *ptr;\n\tsize_t len;\n} %s_string_t;", p))
	g.file.Header.P(fmt.Sprintf("void %s_string_set(%s_string_t *ret, const char *s);", p, p))
	g.file.Header.P(fmt.Sprintf("void %s_string_dup(%s_string_t *ret, const char *s);", p, p))
	g.file.Header.P(fmt.Sprintf("void %s_string_free(%s_string_t *ret);", p, p))
	g.file.Header.P()

	g.file.Impl.P(fmt.Sprintf(`void %s_string_set(%s_string_t *ret, const char *s) {
	ret->ptr = (char *)s;
	ret->len = strlen(s);
}`, p, p))
	g.file.Impl.P(fmt.Sprintf(`void %s_string_dup(%s_string_t *ret, const char *s) {
	ret->len = strlen(s);
	ret->ptr = (char *)cabi_realloc(NULL, 0, 1, ret->len);
	memcpy(ret->ptr, s, ret->len);
}`, p, p))
	g.file.Impl.P(fmt.Sprintf(`void %s_string_free(%s_string_t *ret) {
	if (ret->len > 0) {
		free(ret->ptr);
	}
	ret->ptr = NULL;
	ret->len = 0;
}`, p, p))
	g.file.Impl.P()
}
