package bindgen

import (
	"fmt"
	"strings"

	"github.com/bytecodealliance/wit-bindgen-c/internal/gen"
	"github.com/bytecodealliance/wit-bindgen-c/wit"
)

// FunctionBindgen is the concrete [Visitor] driven by an [ABIWalker] while
// emitting one function's body. It owns the block-scoping stack PushBlock
// and FinishBlock bracket, a function-local name scope for fresh locals,
// and the pending variant/option/result payload-name stack VariantPayloadName
// allocates from.
//
// GetArg is contextual: on the lower side of an import (building the
// ergonomic wrapper) it names that function's own parameters, including
// its trailing out-pointer parameters; on the lift side of an export
// (building the canonical-ABI trampoline) it names the trampoline's own
// flat core-scalar parameters instead. Either way args holds exactly the
// identifiers in scope for the function currently being built.
type FunctionBindgen struct {
	g     *Generator
	f     *wit.Function
	shape ReturnShape

	scope gen.Scope
	stack []*strings.Builder

	args         []string
	payloadNames []string

	retOffset uintptr
}

func newFunctionBindgen(g *Generator, f *wit.Function, shape ReturnShape) *FunctionBindgen {
	root := &strings.Builder{}
	w := &FunctionBindgen{
		g:     g,
		f:     f,
		shape: shape,
		scope: gen.NewScope(g.file.Scope),
		stack: []*strings.Builder{root},
	}
	if g.direction == wit.Imported {
		for _, p := range f.Params {
			w.args = append(w.args, snake(p.Name))
		}
		w.args = append(w.args, g.outPointerArgNames(shape)...)
	} else {
		n := outPointerSlotCount(shape)
		for _, p := range f.Params {
			n += len(coreTypesOf(p.Type))
		}
		for i := 0; i < n; i++ {
			w.args = append(w.args, fmt.Sprintf("a%d", i))
		}
	}
	for _, name := range w.args {
		w.scope.Reserve(name)
	}
	return w
}

// buf is the finished root statement buffer, populated once every block
// PushBlock opened has been closed by a matching FinishBlock.
func (w *FunctionBindgen) buf() *strings.Builder { return w.stack[0] }

func (w *FunctionBindgen) cur() *strings.Builder { return w.stack[len(w.stack)-1] }

func (w *FunctionBindgen) emit(format string, args ...any) {
	fmt.Fprintf(w.cur(), format, args...)
	w.cur().WriteByte('\n')
}

func (w *FunctionBindgen) fresh(prefix string) string { return w.scope.Fresh(prefix) }

func (w *FunctionBindgen) PushBlock() {
	w.stack = append(w.stack, &strings.Builder{})
}

func (w *FunctionBindgen) FinishBlock(results []string) Block {
	n := len(w.stack) - 1
	b := w.stack[n]
	w.stack = w.stack[:n]
	return Block{Body: b.String(), Results: results}
}

func alignUp(v, align uintptr) uintptr {
	if align == 0 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

// ReturnPointer requests storage for a composite value crossing the ABI
// boundary by address: a slot in the interface-wide static return area on
// the export side (the area a trampoline def writes into and the host
// reads after the call returns), or a stack-local buffer on the import
// side (the area the wrapper reads from immediately after the call, since
// nothing outlives the call on that side).
func (w *FunctionBindgen) ReturnPointer(size, align uintptr) string {
	if w.g.direction == wit.Exported {
		offset := alignUp(w.retOffset, align)
		w.retOffset = offset + size
		if w.retOffset > w.g.returnAreaSize {
			w.g.returnAreaSize = w.retOffset
		}
		if align > w.g.returnAreaAlign {
			w.g.returnAreaAlign = align
		}
		return fmt.Sprintf("((int32_t)(uintptr_t)&RET_AREA[%d])", offset)
	}
	name := w.fresh("ret_area")
	w.emit("uint8_t %s[%d] __attribute__((aligned(%d)));", name, size, align)
	return fmt.Sprintf("((int32_t)(uintptr_t)%s)", name)
}

// IsListCanonical reports whether a list's element type has memory layout
// bit-identical to its C representation, the precondition for the
// ListCanonLower/Lift and StringLower/Lift instructions.
func (w *FunctionBindgen) IsListCanonical(t wit.Type) bool {
	elem := t
	if l, ok := rootKind(t).(*wit.List); ok {
		elem = l.Type
	}
	switch rootKind(elem).(type) {
	case *wit.Bool, *wit.S8, *wit.U8, *wit.S16, *wit.U16, *wit.S32, *wit.U32,
		*wit.S64, *wit.U64, *wit.F32, *wit.F64:
		return true
	default:
		return false
	}
}

// SizeAlign returns the canonical-ABI byte size and alignment of t.
func (w *FunctionBindgen) SizeAlign(t wit.Type) (size, align uintptr) {
	return sizeAlign(t)
}

// CType returns the C type reference for t, promoting an anonymous
// structural type to private emission on first reference (the ABI
// boundary is always an implementation-only context).
func (w *FunctionBindgen) CType(t wit.Type) string {
	return w.g.typeRef(t, false)
}

func zeroLiteral(ct CoreType) string {
	switch ct {
	case CoreF32, CoreF64:
		return "0.0"
	default:
		return "0"
	}
}

func freeFnForCType(ctype string) string {
	if strings.HasSuffix(ctype, "_t") {
		return strings.TrimSuffix(ctype, "_t") + "_free"
	}
	return ctype + "_free"
}

// Emit turns one instruction from the canonical-ABI instruction stream
// into C statements (appended to the current block) and/or operand
// expressions.
func (w *FunctionBindgen) Emit(inst Instruction, operands []string) []string {
	switch in := inst.(type) {
	case GetArg:
		return []string{w.args[in.N]}

	case I32Const:
		return []string{fmt.Sprintf("%d", in.Value)}

	case ConstZero:
		out := make([]string, len(in.Types))
		for i, ct := range in.Types {
			out[i] = zeroLiteral(ct)
		}
		return out

	case NumericConvert:
		return []string{fmt.Sprintf("(%s)(%s)", in.CType, operands[0])}

	case Bitcast:
		return w.bitcast(in, operands)

	case RecordLower:
		out := make([]string, len(in.Fields))
		for i, name := range in.Fields {
			out[i] = fmt.Sprintf("(%s)->%s", operands[0], snake(name))
		}
		return out

	case RecordLift:
		return []string{w.braceLiteral(in.CType, in.Fields, operands)}

	case TupleLower:
		out := make([]string, in.N)
		for i := range out {
			out[i] = fmt.Sprintf("(%s)->f%d", operands[0], i)
		}
		return out

	case TupleLift:
		fields := make([]string, in.N)
		for i := range fields {
			fields[i] = fmt.Sprintf("f%d", i)
		}
		return []string{w.braceLiteral(in.CType, fields, operands)}

	case FlagsLower:
		return w.flagsLower(in, operands)

	case FlagsLift:
		return []string{w.flagsLift(in, operands)}

	case VariantPayloadName:
		name := w.fresh("payload")
		w.payloadNames = append(w.payloadNames, name)
		return []string{"(*" + name + ")"}

	case VariantLower:
		return w.variantLower(in, operands)

	case VariantLift:
		return []string{w.variantLift(in, operands)}

	case UnionLower:
		return w.unionLower(in, operands)

	case UnionLift:
		return []string{w.unionLift(in, operands)}

	case OptionLower:
		return w.optionLower(in, operands)

	case OptionLift:
		return []string{w.optionLift(in, operands)}

	case ResultLower:
		return w.resultLower(in, operands)

	case ResultLift:
		return []string{w.resultLift(in, operands)}

	case EnumLower:
		return []string{fmt.Sprintf("(int32_t)(%s)", operands[0])}

	case EnumLift:
		return []string{fmt.Sprintf("(%s)(%s)", in.CType, operands[0])}

	case ListCanonLower:
		return []string{
			fmt.Sprintf("(int32_t)(uintptr_t)(%s)->ptr", operands[0]),
			fmt.Sprintf("(int32_t)(%s)->len", operands[0]),
		}

	case StringLower:
		return []string{
			fmt.Sprintf("(int32_t)(uintptr_t)(%s)->ptr", operands[0]),
			fmt.Sprintf("(int32_t)(%s)->len", operands[0]),
		}

	case ListCanonLift:
		return []string{fmt.Sprintf("(%s){.ptr = (%s *)(uintptr_t)(%s), .len = (size_t)(%s)}",
			in.CType, in.ElemCType, operands[0], operands[1])}

	case StringLift:
		return []string{fmt.Sprintf("(%s){.ptr = (char *)(uintptr_t)(%s), .len = (size_t)(%s)}",
			in.CType, operands[0], operands[1])}

	case ListLift:
		return w.listLift(in, operands)

	case ListLower:
		return w.listLower(in, operands)

	case IterElem:
		return []string{"e"}

	case IterBasePointer:
		return []string{"base"}

	case CallWasm:
		return w.callWasm(in, operands)

	case CallInterface:
		return w.callInterface(in, operands)

	case Return:
		w.emitReturn(in, operands)
		return nil

	case Load:
		signed := ""
		if in.Signed {
			signed = "(int32_t)"
		}
		return []string{fmt.Sprintf("%s(*(%s *)((uintptr_t)(%s) + %d))", signed, in.CType, operands[0], in.Offset)}

	case Store:
		w.emit("*(%s *)((uintptr_t)(%s) + %d) = %s;", in.CType, operands[0], in.Offset, operands[1])
		return nil

	case GuestDeallocate:
		w.emit("%s((%s *)(uintptr_t)(%s));", freeFnForCType(in.CType), in.CType, operands[0])
		return nil

	case ReturnPointer:
		return []string{w.ReturnPointer(in.Size, in.Align)}

	case Blit:
		w.emit("*(%s *)(uintptr_t)(%s) = *(%s *)(uintptr_t)(%s);", in.CType, operands[0], in.CType, operands[1])
		return nil

	default:
		w.g.fail("bindgen: %s: unhandled instruction %T", w.f.Name, inst)
		return nil
	}
}

func (w *FunctionBindgen) braceLiteral(ctype string, fields, operands []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(%s){", ctype)
	for i, name := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, ".%s = %s", name, operands[i])
	}
	b.WriteString("}")
	return b.String()
}

func (w *FunctionBindgen) bitcast(in Bitcast, operands []string) []string {
	if len(in.From) != len(in.To) {
		w.g.fail("bindgen: %s: bitcast arity mismatch (%d -> %d)", w.f.Name, len(in.From), len(in.To))
		return make([]string, len(in.To))
	}
	out := make([]string, len(in.To))
	for i, to := range in.To {
		from := in.From[i]
		if from == to {
			out[i] = operands[i]
			continue
		}
		out[i] = fmt.Sprintf("((union { %s _a; %s _b; }){._a = %s})._b", from.String(), to.String(), operands[i])
	}
	return out
}

func (w *FunctionBindgen) flagsLower(in FlagsLower, operands []string) []string {
	lanes := (in.Width + 31) / 32
	if lanes <= 1 {
		return []string{fmt.Sprintf("(int32_t)(%s)", operands[0])}
	}
	out := make([]string, lanes)
	for i := 0; i < lanes; i++ {
		out[i] = fmt.Sprintf("(int32_t)((%s) >> %d)", operands[0], 32*i)
	}
	return out
}

func (w *FunctionBindgen) flagsLift(in FlagsLift, operands []string) string {
	lanes := (in.Width + 31) / 32
	if lanes <= 1 {
		return fmt.Sprintf("(uint32_t)(%s)", operands[0])
	}
	var b strings.Builder
	for i, op := range operands {
		if i > 0 {
			b.WriteString(" | ")
		}
		fmt.Fprintf(&b, "((uint64_t)(uint32_t)(%s) << %d)", op, 32*i)
	}
	return b.String()
}

func (w *FunctionBindgen) variantLower(in VariantLower, operands []string) []string {
	out := make([]string, len(in.ResultTypes))
	for i, ct := range in.ResultTypes {
		out[i] = w.fresh("lower")
		w.emit("%s %s;", ct.String(), out[i])
	}
	w.emit("switch ((%s)->tag) {", operands[0])
	for i, c := range in.Cases {
		w.emit("case %d: {", i)
		if c.HasPayload && in.PayloadVars[i] != "" {
			w.emit("%s *%s = &(%s)->val.%s;", c.PayloadCType, in.PayloadVars[i], operands[0], snake(c.Name))
		}
		block := in.Blocks[i]
		w.cur().WriteString(block.Body)
		for j, res := range block.Results {
			w.emit("%s = %s;", out[j], res)
		}
		w.emit("break;")
		w.emit("}")
	}
	w.emit("default: break;")
	w.emit("}")
	return out
}

func (w *FunctionBindgen) variantLift(in VariantLift, operands []string) string {
	name := w.fresh("variant")
	w.emit("%s %s;", in.CType, name)
	w.emit("%s.tag = (%s)(%s);", name, discriminantRepr(len(in.Cases)), operands[0])
	w.emit("switch (%s.tag) {", name)
	for i, c := range in.Cases {
		w.emit("case %d: {", i)
		block := in.Blocks[i]
		w.cur().WriteString(block.Body)
		if c.HasPayload && len(block.Results) > 0 {
			w.emit("%s.val.%s = %s;", name, snake(c.Name), block.Results[0])
		}
		w.emit("break;")
		w.emit("}")
	}
	w.emit("}")
	return name
}

func (w *FunctionBindgen) unionLower(in UnionLower, operands []string) []string {
	out := make([]string, len(in.ResultTypes))
	for i, ct := range in.ResultTypes {
		out[i] = w.fresh("lower")
		w.emit("%s %s;", ct.String(), out[i])
	}
	w.emit("switch ((%s)->tag) {", operands[0])
	for i, c := range in.Cases {
		w.emit("case %d: {", i)
		if c.HasPayload && in.PayloadVars[i] != "" {
			w.emit("%s *%s = &(%s)->val.%s;", c.PayloadCType, in.PayloadVars[i], operands[0], c.Name)
		}
		block := in.Blocks[i]
		w.cur().WriteString(block.Body)
		for j, res := range block.Results {
			w.emit("%s = %s;", out[j], res)
		}
		w.emit("break;")
		w.emit("}")
	}
	w.emit("default: break;")
	w.emit("}")
	return out
}

func (w *FunctionBindgen) unionLift(in UnionLift, operands []string) string {
	name := w.fresh("union")
	w.emit("%s %s;", in.CType, name)
	w.emit("%s.tag = (%s)(%s);", name, discriminantRepr(len(in.Cases)), operands[0])
	w.emit("switch (%s.tag) {", name)
	for i, c := range in.Cases {
		w.emit("case %d: {", i)
		block := in.Blocks[i]
		w.cur().WriteString(block.Body)
		if c.HasPayload && len(block.Results) > 0 {
			w.emit("%s.val.%s = %s;", name, c.Name, block.Results[0])
		}
		w.emit("break;")
		w.emit("}")
	}
	w.emit("}")
	return name
}

func (w *FunctionBindgen) optionLower(in OptionLower, operands []string) []string {
	out := make([]string, len(in.ResultTypes))
	for i, ct := range in.ResultTypes {
		out[i] = w.fresh("lower")
		w.emit("%s %s;", ct.String(), out[i])
	}
	w.emit("if ((%s)->is_some) {", operands[0])
	if in.PayloadVar != "" {
		w.emit("%s *%s = &(%s)->val;", in.PayloadCType, in.PayloadVar, operands[0])
	}
	w.cur().WriteString(in.SomeBlock.Body)
	for j, res := range in.SomeBlock.Results {
		w.emit("%s = %s;", out[j], res)
	}
	w.emit("} else {")
	w.cur().WriteString(in.NoneBlock.Body)
	for j, res := range in.NoneBlock.Results {
		w.emit("%s = %s;", out[j], res)
	}
	w.emit("}")
	return out
}

func (w *FunctionBindgen) optionLift(in OptionLift, operands []string) string {
	name := w.fresh("option")
	w.emit("%s %s;", in.CType, name)
	w.emit("%s.is_some = (bool)(%s);", name, operands[0])
	w.emit("if (%s.is_some) {", name)
	w.cur().WriteString(in.SomeBlock.Body)
	if len(in.SomeBlock.Results) > 0 && in.PayloadCType != "" {
		w.emit("%s.val = %s;", name, in.SomeBlock.Results[0])
	}
	w.emit("}")
	return name
}

func (w *FunctionBindgen) resultLower(in ResultLower, operands []string) []string {
	out := make([]string, len(in.ResultTypes))
	for i, ct := range in.ResultTypes {
		out[i] = w.fresh("lower")
		w.emit("%s %s;", ct.String(), out[i])
	}
	w.emit("if (!(%s)->is_err) {", operands[0])
	if in.OkVar != "" {
		w.emit("%s *%s = &(%s)->val.ok;", in.OkCType, in.OkVar, operands[0])
	}
	w.cur().WriteString(in.OkBlock.Body)
	for j, res := range in.OkBlock.Results {
		w.emit("%s = %s;", out[j], res)
	}
	w.emit("} else {")
	if in.ErrVar != "" {
		w.emit("%s *%s = &(%s)->val.err;", in.ErrCType, in.ErrVar, operands[0])
	}
	w.cur().WriteString(in.ErrBlock.Body)
	for j, res := range in.ErrBlock.Results {
		w.emit("%s = %s;", out[j], res)
	}
	w.emit("}")
	return out
}

func (w *FunctionBindgen) resultLift(in ResultLift, operands []string) string {
	name := w.fresh("result")
	w.emit("%s %s;", in.CType, name)
	w.emit("%s.is_err = (bool)(%s);", name, operands[0])
	w.emit("if (!%s.is_err) {", name)
	w.cur().WriteString(in.OkBlock.Body)
	if len(in.OkBlock.Results) > 0 && in.OkCType != "" {
		w.emit("%s.val.ok = %s;", name, in.OkBlock.Results[0])
	}
	w.emit("} else {")
	w.cur().WriteString(in.ErrBlock.Body)
	if len(in.ErrBlock.Results) > 0 && in.ErrCType != "" {
		w.emit("%s.val.err = %s;", name, in.ErrBlock.Results[0])
	}
	w.emit("}")
	return name
}

// listLift shares ListCanonLift's direct ptr/len pass-through: a list's
// backing buffer is laid out identically to the canonical-ABI wire
// representation on the wasm32 target this generator assumes (natural
// field alignment, 4-byte pointers), so no per-element re-serialization is
// required regardless of the element type.
func (w *FunctionBindgen) listLift(in ListLift, operands []string) []string {
	return []string{fmt.Sprintf("(%s){.ptr = (%s *)(uintptr_t)(%s), .len = (size_t)(%s)}",
		in.CType, in.ElemCType, operands[0], operands[1])}
}

func (w *FunctionBindgen) listLower(in ListLower, operands []string) []string {
	return []string{
		fmt.Sprintf("(int32_t)(uintptr_t)(%s)->ptr", operands[0]),
		fmt.Sprintf("(int32_t)(%s)->len", operands[0]),
	}
}

func (w *FunctionBindgen) callWasm(in CallWasm, operands []string) []string {
	symbol := in.Symbol
	if symbol == "" {
		symbol = w.g.trampolineSymbol(w.f)
	}
	call := fmt.Sprintf("%s(%s)", symbol, strings.Join(operands, ", "))
	if in.ResultType == nil {
		w.emit("%s;", call)
		return nil
	}
	name := w.fresh("ret")
	w.emit("%s %s = %s;", in.ResultType.String(), name, call)
	return []string{name}
}

func (w *FunctionBindgen) callInterface(in CallInterface, operands []string) []string {
	symbol := fmt.Sprintf("%s_%s", w.g.prefix, snake(in.Func.BaseName()))
	call := fmt.Sprintf("%s(%s)", symbol, strings.Join(operands, ", "))
	switch w.shape.Kind {
	case ReturnVoid, ReturnOutPointer:
		w.emit("%s;", call)
		return nil
	default:
		name := w.fresh("result")
		retType := "void"
		switch w.shape.Kind {
		case ReturnScalar:
			retType = w.g.typeRef(w.shape.ScalarType, false)
		case ReturnOptionBool:
			retType = "bool"
		case ReturnResultEnum:
			retType = w.g.typeRef(w.shape.ErrType, false)
		}
		w.emit("%s %s = %s;", retType, name, call)
		return []string{name}
	}
}

func (w *FunctionBindgen) emitReturn(in Return, operands []string) {
	switch in.Shape.Kind {
	case ReturnVoid, ReturnOutPointer:
		return
	default:
		if len(operands) > 0 {
			w.emit("return %s;", operands[0])
		}
	}
}
