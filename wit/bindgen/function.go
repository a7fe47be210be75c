package bindgen

import (
	"fmt"
	"strings"

	"github.com/bytecodealliance/wit-bindgen-c/wit"
)

// ReturnKind classifies how a function's results are conveyed across its
// public signature.
type ReturnKind int

const (
	ReturnVoid ReturnKind = iota
	ReturnScalar
	ReturnOptionBool
	ReturnResultEnum
	ReturnOutPointer
)

// ReturnShape is the outcome of classifying a function's Results.
type ReturnShape struct {
	Kind ReturnKind

	// ScalarType is T for ReturnScalar, the payload type U for
	// ReturnOptionBool, and the ok type U for ReturnResultEnum (nil if
	// the ok side carries no payload).
	ScalarType wit.Type

	// ErrType and MaxErr are set for ReturnResultEnum: the enum type E
	// returned as the scalar, and its case count K.
	ErrType wit.Type
	MaxErr  int

	// ResultTypes holds, in order, the type of each out-pointer
	// parameter for ReturnOutPointer.
	ResultTypes []wit.Type
}

// classifyReturn dispatches on the number of a function's results: zero is
// void, two or more are always conveyed through out-pointers, and one
// result is classified further by returnSingle.
func classifyReturn(f *wit.Function) ReturnShape {
	switch n := len(f.Results); {
	case n == 0:
		return ReturnShape{Kind: ReturnVoid}
	case n == 1:
		return returnSingle(f.Results[0].Type)
	default:
		types := make([]wit.Type, n)
		for i, r := range f.Results {
			types[i] = r.Type
		}
		return ReturnShape{Kind: ReturnOutPointer, ResultTypes: types}
	}
}

// returnSingle classifies a single result type: primitives, enums, and
// flags return by value; option<U> returns a bool discriminant with U
// always written through an out-pointer; result<_, E> where E is an enum
// returns E by value, with the ok payload (if any) written through an
// out-pointer and the error side conveyed by E's own discriminant (always
// distinct from the ok sentinel, since that sentinel lies outside E's
// range); everything else crosses by out-pointer.
func returnSingle(t wit.Type) ReturnShape {
	switch kind := rootKind(t).(type) {
	case *wit.Bool, *wit.S8, *wit.U8, *wit.S16, *wit.U16, *wit.S32, *wit.U32,
		*wit.S64, *wit.U64, *wit.F32, *wit.F64, *wit.Char, *wit.Enum, *wit.Flags:
		return ReturnShape{Kind: ReturnScalar, ScalarType: t}
	case *wit.Option:
		return ReturnShape{Kind: ReturnOptionBool, ScalarType: kind.Type}
	case *wit.Result:
		if e, k := enumOf(kind.Err); e != nil {
			shape := ReturnShape{Kind: ReturnResultEnum, ErrType: kind.Err, MaxErr: k}
			if kind.OK != nil && !isEmptyType(kind.OK) {
				shape.ScalarType = kind.OK
			}
			return shape
		}
		return ReturnShape{Kind: ReturnOutPointer, ResultTypes: []wit.Type{t}}
	default:
		return ReturnShape{Kind: ReturnOutPointer, ResultTypes: []wit.Type{t}}
	}
}

// enumOf reports whether t (dealiased) is an enum, and if so its case count.
func enumOf(t wit.Type) (*wit.Enum, int) {
	if t == nil {
		return nil, 0
	}
	if e, ok := rootKind(t).(*wit.Enum); ok {
		return e, len(e.Cases)
	}
	return nil, 0
}

// sizeAlign returns the canonical-ABI byte size and alignment of t, read
// directly off the IR rather than recomputed: every concrete [wit.Type]
// already implements [wit.ABI].
func sizeAlign(t wit.Type) (size, align uintptr) {
	if a, ok := t.(wit.ABI); ok {
		return a.Size(), a.Align()
	}
	return 0, 1
}

// coreTypeOf returns the single core scalar type a public parameter or
// scalar return of type t occupies on the canonical-ABI boundary: CoreI32
// for every by-pointer (linear-memory address) type, and the natural core
// type for each scalar representation otherwise.
func coreTypeOf(t wit.Type) CoreType {
	if isArgByPointer(t) {
		return CoreI32
	}
	switch kind := rootKind(t).(type) {
	case *wit.S64, *wit.U64:
		return CoreI64
	case *wit.F32:
		return CoreF32
	case *wit.F64:
		return CoreF64
	case *wit.Flags:
		if flagsRepr(len(kind.Flags)) == "uint64_t" {
			return CoreI64
		}
		return CoreI32
	default:
		return CoreI32
	}
}

// outPointerSlotCount returns how many trailing out-pointer slots shape
// requires, on both the ergonomic signature and the canonical-ABI
// trampoline.
func outPointerSlotCount(shape ReturnShape) int {
	switch shape.Kind {
	case ReturnOptionBool:
		return 1
	case ReturnResultEnum:
		if shape.ScalarType != nil {
			return 1
		}
		return 0
	case ReturnOutPointer:
		return len(shape.ResultTypes)
	default:
		return 0
	}
}

// outPointerArgNames returns the ergonomic names ("ret0", "ret1", ...) of
// shape's trailing out-pointer parameters, matching outPointerParams.
func (g *Generator) outPointerArgNames(shape ReturnShape) []string {
	names := make([]string, outPointerSlotCount(shape))
	for i := range names {
		names[i] = fmt.Sprintf("ret%d", i)
	}
	return names
}

// outPointerParams returns the out-pointer parameter declarations shape
// requires, in order.
func (g *Generator) outPointerParams(shape ReturnShape) []string {
	switch shape.Kind {
	case ReturnOptionBool:
		return []string{fmt.Sprintf("%s *ret0", g.typeRef(shape.ScalarType, true))}
	case ReturnResultEnum:
		if shape.ScalarType != nil {
			return []string{fmt.Sprintf("%s *ret0", g.typeRef(shape.ScalarType, true))}
		}
		return nil
	case ReturnOutPointer:
		params := make([]string, len(shape.ResultTypes))
		for i, t := range shape.ResultTypes {
			params[i] = fmt.Sprintf("%s *ret%d", g.typeRef(t, true), i)
		}
		return params
	default:
		return nil
	}
}

// printSig renders the public, ergonomic declaration for f under the given
// symbol name and return shape: the scalar return type (or void), the
// function name, each parameter by value or by pointer per
// isArgByPointer, and trailing out-pointer parameters. An empty parameter
// list is printed as the single token "void".
func (g *Generator) printSig(symbol string, f *wit.Function, shape ReturnShape) string {
	retType := "void"
	switch shape.Kind {
	case ReturnScalar:
		retType = g.typeRef(shape.ScalarType, true)
	case ReturnOptionBool:
		retType = "bool"
	case ReturnResultEnum:
		retType = g.typeRef(shape.ErrType, true)
	}

	var params []string
	for _, p := range f.Params {
		ct := g.typeRef(p.Type, true)
		name := snake(p.Name)
		if isArgByPointer(p.Type) {
			params = append(params, fmt.Sprintf("%s *%s", ct, name))
		} else {
			params = append(params, fmt.Sprintf("%s %s", ct, name))
		}
	}
	params = append(params, g.outPointerParams(shape)...)

	paramList := "void"
	if len(params) > 0 {
		paramList = strings.Join(params, ", ")
	}
	return fmt.Sprintf("%s %s(%s);", retType, symbol, paramList)
}

// trampolineSymbol names the private canonical-ABI entry point backing f.
func (g *Generator) trampolineSymbol(f *wit.Function) string {
	return fmt.Sprintf("%s_%s_wasm", g.prefix, snake(f.BaseName()))
}

// trampolineSig computes the canonical-ABI parameter and (at most one)
// result core types for f under shape: each public parameter flattened to
// its full canonical-ABI scalar sequence (see coreTypesOf), plus an
// out-pointer slot per out-pointer the ergonomic signature declares.
func (g *Generator) trampolineSig(f *wit.Function, shape ReturnShape) (params []CoreType, result *CoreType) {
	for _, p := range f.Params {
		params = append(params, coreTypesOf(p.Type)...)
	}
	switch shape.Kind {
	case ReturnOptionBool:
		params = append(params, CoreI32)
		ct := CoreI32
		result = &ct
	case ReturnResultEnum:
		if shape.ScalarType != nil {
			params = append(params, CoreI32)
		}
		ct := coreTypeOf(shape.ErrType)
		result = &ct
	case ReturnOutPointer:
		for range shape.ResultTypes {
			params = append(params, CoreI32)
		}
	case ReturnScalar:
		ct := coreTypeOf(shape.ScalarType)
		result = &ct
	}
	return params, result
}

func coreParamList(params []CoreType) string {
	if len(params) == 0 {
		return "void"
	}
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.String()
	}
	return strings.Join(names, ", ")
}

// importTrampolineDecl renders the forward declaration of the host-provided
// canonical-ABI function an import calls.
func (g *Generator) importTrampolineDecl(symbol string, f *wit.Function, shape ReturnShape) string {
	params, result := g.trampolineSig(f, shape)
	retType := "void"
	if result != nil {
		retType = result.String()
	}
	return fmt.Sprintf(
		"__attribute__((import_module(\"%s\"), import_name(\"%s\")))\n%s %s(%s);",
		g.ifaceName, f.BaseName(), retType, symbol, coreParamList(params),
	)
}

// exportTrampolineSig renders the attributed signature line of the
// canonical-ABI function a host calls to invoke an exported function.
func (g *Generator) exportTrampolineSig(symbol string, f *wit.Function, shape ReturnShape) string {
	params, result := g.trampolineSig(f, shape)
	retType := "void"
	if result != nil {
		retType = result.String()
	}
	return fmt.Sprintf(
		"__attribute__((export_name(\"%s\")))\n%s %s(%s)",
		f.BaseName(), retType, symbol, coreParamList(params),
	)
}

// EmitFunction renders f's public signature and canonical-ABI trampoline
// and files the resulting fragment under the interface's function list.
// The trampoline body is produced by driving the external ABI walker with
// a fresh [FunctionBindgen]: lower for an import's arguments or an
// export's results, lift otherwise.
func (g *Generator) EmitFunction(f *wit.Function) {
	shape := classifyReturn(f)
	baseSymbol := fmt.Sprintf("%s_%s", g.prefix, snake(f.BaseName()))
	g.reserve(baseSymbol)

	sig := g.printSig(baseSymbol, f, shape)
	header := sig
	if doc := formatDocComment(f.Docs.Contents); doc != "" {
		header = doc + header
	}

	bindgen := newFunctionBindgen(g, f, shape)
	lower := g.direction == wit.Imported
	if err := g.walker.Walk(g.direction, lower, f, bindgen); err != nil {
		g.fail("bindgen: %s: %v", f.Name, err)
		return
	}

	body := bindgen.buf().String()
	if !g.linkRefEmitted {
		body = fmt.Sprintf("(void)%s;\n%s", g.linkingSymbol(), body)
		g.linkRefEmitted = true
	}

	var impl strings.Builder
	if g.direction == wit.Imported {
		impl.WriteString(g.importTrampolineDecl(g.trampolineSymbol(f), f, shape))
		impl.WriteString("\n\n")
		impl.WriteString(strings.TrimSuffix(sig, ";"))
		impl.WriteString(" {\n")
		impl.WriteString(indent(body))
		impl.WriteString("}")
	} else {
		impl.WriteString(g.exportTrampolineSig(g.trampolineSymbol(f), f, shape))
		impl.WriteString(" {\n")
		impl.WriteString(indent(body))
		impl.WriteString("}")
	}

	g.funcs = append(g.funcs, funcFragment{header: header, impl: impl.String()})
}

func indent(body string) string {
	trimmed := strings.TrimRight(body, "\n")
	if trimmed == "" {
		return ""
	}
	lines := strings.Split(trimmed, "\n")
	var b strings.Builder
	for _, l := range lines {
		if l == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString("\t")
		b.WriteString(l)
		b.WriteString("\n")
	}
	return b.String()
}
