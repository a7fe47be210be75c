package bindgen

import "github.com/bytecodealliance/wit-bindgen-c/wit"

// Visitor is the contract the external ABI walker drives: for a given
// function and direction, the walker calls Emit once per instruction in
// the canonical-ABI instruction stream, threading a stack of pending
// operand expressions that the walker itself owns (it pops the operands
// an instruction needs and pushes whatever the instruction returns).
//
// PushBlock/FinishBlock bracket a variant arm, option arm, result arm, or
// loop body; ReturnPointer, IsListCanonical, and SizeAlign expose
// generator-owned state the walker needs to decide which instructions to
// emit.
type Visitor interface {
	// Emit converts one instruction into zero or more C statements,
	// appended to the current block, and returns the operand expressions
	// the instruction pushes (possibly empty).
	Emit(inst Instruction, operands []string) (results []string)

	// PushBlock starts a new nested statement block, saving the current
	// one to be restored by the matching FinishBlock.
	PushBlock()

	// FinishBlock ends the most recently pushed block not yet finished,
	// restores the previous block as current, and returns its body along
	// with the given result expressions.
	FinishBlock(results []string) Block

	// ReturnPointer requests size bytes at the given alignment and
	// returns an expression for its address.
	ReturnPointer(size, align uintptr) string

	// IsListCanonical reports whether t has canonical (bit-identical to
	// its C representation) memory layout, making ListCanonLower/Lift
	// and StringLower/Lift applicable instead of the non-canonical
	// ListLower/Lift path.
	IsListCanonical(t wit.Type) bool

	// SizeAlign returns the canonical-ABI byte size and alignment of t.
	SizeAlign(t wit.Type) (size, align uintptr)

	// CType returns the C type reference for t, as it would appear in a
	// cast or declaration (registering t for emission if it is an
	// anonymous structural type the walker has not referenced before).
	CType(t wit.Type) string
}

// ABIWalker delivers the canonical-ABI instruction stream for one
// function and direction to v. It is an external collaborator: the
// core depends only on this contract, not on any particular traversal
// algorithm. lower is true for an imported function, where the walker
// builds the whole wrapper (lowering its arguments, calling the host, and
// lifting its result); it is false for an exported function, where the
// walker builds the whole trampoline (lifting its arguments, calling the
// user function, and lowering its result).
type ABIWalker interface {
	Walk(dir wit.Direction, lower bool, f *wit.Function, v Visitor) error
}
