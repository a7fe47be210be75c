package bindgen

import "github.com/bytecodealliance/wit-bindgen-c/wit"

// Instruction is one step of the canonical-ABI lift/lower instruction
// stream. The core does not decide which instructions to emit for a
// given type and direction — that traversal is the external ABI walker's
// job — it only knows how to turn each instruction into C statements
// and/or operand expressions, via [Visitor.Emit].
type Instruction interface{ isInstruction() }

type instr struct{}

func (instr) isInstruction() {}

// GetArg pushes the name of the n-th public function parameter.
type GetArg struct {
	instr
	N int
}

// I32Const pushes a literal 32-bit integer constant.
type I32Const struct {
	instr
	Value int32
}

// ConstZero pushes one zero literal per entry in Types (the flattened
// canonical-ABI core types expected at this position).
type ConstZero struct {
	instr
	Types []CoreType
}

// CoreType is a flattened canonical-ABI scalar type.
type CoreType int

const (
	CoreI32 CoreType = iota
	CoreI64
	CoreF32
	CoreF64
)

func (t CoreType) String() string {
	switch t {
	case CoreI64:
		return "int64_t"
	case CoreF32:
		return "float"
	case CoreF64:
		return "double"
	default:
		return "int32_t"
	}
}

// NumericConvert pops one operand and pushes a cast expression converting
// between a flattened core type and a fixed-width C integer/float type
// (the "U8FromI32", "I32FromU8", ... family).
type NumericConvert struct {
	instr
	CType string // the narrow/target C type, e.g. "uint8_t" or "int32_t"
}

// Bitcast pops one operand per entry in From and pushes one union-punning
// or widening-cast expression per entry in To.
type Bitcast struct {
	instr
	From, To []CoreType
}

// RecordLower pops one operand (the record value) and pushes one field
// accessor expression per field, in declaration order.
type RecordLower struct {
	instr
	Fields []string // field names, in declaration order
}

// RecordLift pops len(Fields) operands and pushes one compound-literal
// expression constructing a value of CType.
type RecordLift struct {
	instr
	CType  string
	Fields []string
}

// TupleLower pops one operand and pushes N field accessor expressions f0..fN-1.
type TupleLower struct {
	instr
	N int
}

// TupleLift pops N operands and pushes one compound-literal expression.
type TupleLift struct {
	instr
	CType string
	N     int
}

// FlagsLower pops one operand and pushes ⌈Width/32⌉ lane expressions.
type FlagsLower struct {
	instr
	Width int
}

// FlagsLift pops ⌈Width/32⌉ operands and pushes one reassembled expression.
type FlagsLift struct {
	instr
	Width int
}

// VariantPayloadName allocates a fresh local name bound to the case
// payload address and pushes its dereferenced-pointer expression. The
// allocated name is consumed by the next VariantLower, UnionLower,
// OptionLower, or ResultLower.
type VariantPayloadName struct{ instr }

// CaseArm describes one case of a Variant, Union, Option, or Result for
// the purposes of VariantLower/Lift and friends.
type CaseArm struct {
	Name         string
	HasPayload   bool
	PayloadCType string
}

// VariantLower pops one operand (the discriminated value) and len(Blocks)
// finished blocks (one per case, in case order; see the block-scoping
// discipline) plus one payload name per case with a payload, and pushes
// one result expression per entry in ResultTypes.
type VariantLower struct {
	instr
	CType       string
	Cases       []CaseArm
	Blocks      []Block
	PayloadVars []string // parallel to Cases; "" where the case has no payload
	ResultTypes []CoreType
}

// VariantLift pops one discriminant operand and one payload operand per
// case with a payload (supplied via Blocks, one per case), and pushes one
// constructed value expression.
type VariantLift struct {
	instr
	CType  string
	Cases  []CaseArm
	Blocks []Block
}

// UnionLower is VariantLower specialized to positional (f0, f1, ...) cases,
// all of which carry a payload.
type UnionLower struct {
	instr
	CType       string
	Cases       []CaseArm
	Blocks      []Block
	PayloadVars []string
	ResultTypes []CoreType
}

// UnionLift is VariantLift specialized to positional cases.
type UnionLift struct {
	instr
	CType  string
	Cases  []CaseArm
	Blocks []Block
}

// OptionLower pops one operand, a "some" payload name, and two blocks
// (none-arm, some-arm, in that order), and pushes the arms' joined result
// expressions.
type OptionLower struct {
	instr
	CType        string
	PayloadCType string
	PayloadVar   string
	NoneBlock    Block
	SomeBlock    Block
	ResultTypes  []CoreType
}

// OptionLift pops a discriminant operand and a payload operand (from
// SomeBlock) and pushes one constructed value expression.
type OptionLift struct {
	instr
	CType        string
	PayloadCType string
	SomeBlock    Block
}

// ResultLower is OptionLower's two-sided counterpart: ok-arm and err-arm.
type ResultLower struct {
	instr
	CType       string
	OkCType     string // "" if the ok case carries no payload
	ErrCType    string // "" if the err case carries no payload
	OkVar       string
	ErrVar      string
	OkBlock     Block
	ErrBlock    Block
	ResultTypes []CoreType
}

// ResultLift is OptionLift's two-sided counterpart.
type ResultLift struct {
	instr
	CType    string
	OkCType  string
	ErrCType string
	OkBlock  Block
	ErrBlock Block
}

// EnumLower pops one operand and pushes an (int32_t) cast expression.
type EnumLower struct{ instr }

// EnumLift pops one operand and pushes a cast-to-CType expression.
type EnumLift struct {
	instr
	CType string
}

// ListCanonLower pops one operand (a list/string value) and pushes
// (int32_t)ptr and (int32_t)len. Valid only when ElemCType has canonical
// memory representation (queried via [Visitor.IsListCanonical]).
type ListCanonLower struct {
	instr
	ElemCType string
}

// StringLower is ListCanonLower specialized to the built-in string type.
type StringLower struct{ instr }

// ListCanonLift pops a pointer operand and a length operand and pushes one
// list compound-literal expression.
type ListCanonLift struct {
	instr
	CType     string
	ElemCType string
}

// StringLift is ListCanonLift specialized to the built-in string type.
type StringLift struct {
	instr
	CType string
}

// ListLift is the non-canonical counterpart of ListCanonLift.
type ListLift struct {
	instr
	CType     string
	ElemCType string
}

// ListLower is the non-canonical counterpart of ListCanonLower; it takes
// the list operand and pushes (int32_t)ptr and (int32_t)len. Block is not
// read and no block is popped: the list's backing buffer is passed through
// without per-element lowering.
type ListLower struct {
	instr
	ElemCType string
	Block     Block
}

// IterElem pushes the literal "e", substituted by the enclosing loop.
type IterElem struct{ instr }

// IterBasePointer pushes the literal "base", substituted by the enclosing loop.
type IterBasePointer struct{ instr }

// CallWasm pops len(ParamTypes) operands and pushes zero or one result
// expression (the trampoline's canonical-ABI return), naming a fresh local
// to hold it.
type CallWasm struct {
	instr
	Symbol      string
	ParamTypes  []CoreType
	ResultType  *CoreType // nil if the trampoline returns void
}

// CallInterface pops the function's operands and, on the export side,
// pushes the result(s) of calling the user-provided high-level function,
// packaged for return.
type CallInterface struct {
	instr
	Func *wit.Function
}

// Return routes pending operands into the function's declared return
// shape and emits the corresponding return/out-pointer statements.
type Return struct {
	instr
	Shape ReturnShape
}

// Load emits *(CType*)(ptr+Offset), optionally widened to int32_t when
// Signed is set and the load is narrower than 32 bits (signed-narrow
// loads return an int32).
type Load struct {
	instr
	Offset uint32
	CType  string
	Signed bool
}

// Store emits *(CType*)(ptr+Offset) = value.
type Store struct {
	instr
	Offset uint32
	CType  string
}

// GuestDeallocate frees a value after post-return processing, per
// the same rules as a destructor body for CType.
type GuestDeallocate struct {
	instr
	CType string
}

// ReturnPointer requests Size bytes at Align alignment and pushes its
// address: a stack allocation on imports, or a reservation against the
// interface-wide static return area on exports.
type ReturnPointer struct {
	instr
	Size, Align uintptr
}

// Blit pops a destination address operand and a source address operand and
// emits an unconditional *(CType*)dst = *(CType*)src copy. It exists for
// the import wrapper's ReturnOptionBool/ReturnResultEnum payload: the
// host-provided trampoline writes the payload into a transient
// ReturnPointer buffer, and that buffer must be copied into the caller's
// own out-pointer regardless of which arm the call took.
type Blit struct {
	instr
	CType string
}

// Block is a bracketed fragment of statements produced during a variant,
// option, or result arm, or an iteration body. Body
// holds the C statements; Results holds the operand expressions the arm
// yields to the instruction that consumes it.
type Block struct {
	Body    string
	Results []string
}
