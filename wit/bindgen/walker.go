package bindgen

import (
	"fmt"

	"github.com/bytecodealliance/wit-bindgen-c/wit"
)

// PointerWalker is the default [ABIWalker]. It drives a [Visitor] through
// the genuine canonical-ABI instruction stream on both sides of a call:
// each ergonomic parameter (by pointer for a composite, by value
// otherwise, per isArgByPointer) is decomposed into its full flattened
// core-scalar sequence via [lowerFlat]/[liftFlat], which in turn drive the
// record/variant/list Lower and Lift instructions [Visitor] implements.
// Results too large to fit the single-scalar canonical-ABI return
// convention keep crossing through a caller-supplied out-pointer address
// (itself one core scalar), matching how every component-model trampoline
// signature handles a multi-value or oversized result.
type PointerWalker struct{}

// Walk implements [ABIWalker].
func (PointerWalker) Walk(dir wit.Direction, lower bool, f *wit.Function, v Visitor) error {
	shape := classifyReturn(f)
	if lower {
		return walkLower(f, shape, v)
	}
	return walkLift(f, shape, v)
}

// walkLower builds the ergonomic wrapper an import calls: it lowers each
// ergonomic argument to its canonical-ABI flat scalars, calls the
// host-provided trampoline, and lifts its single scalar result (if any)
// back into the ergonomic return.
func walkLower(f *wit.Function, shape ReturnShape, v Visitor) error {
	var wasmArgs []string
	var paramTypes []CoreType
	for i, p := range f.Params {
		arg := v.Emit(GetArg{N: i}, nil)[0]
		wasmArgs = append(wasmArgs, lowerFlat(v, p.Type, arg)...)
		paramTypes = append(paramTypes, coreTypesOf(p.Type)...)
	}

	var retArea string
	var retCType string
	switch shape.Kind {
	case ReturnOptionBool:
		retCType = v.CType(shape.ScalarType)
		size, align := v.SizeAlign(shape.ScalarType)
		retArea = v.Emit(ReturnPointer{Size: size, Align: align}, nil)[0]
		wasmArgs = append(wasmArgs, retArea)
		paramTypes = append(paramTypes, CoreI32)
	case ReturnResultEnum:
		if shape.ScalarType != nil {
			retCType = v.CType(shape.ScalarType)
			size, align := v.SizeAlign(shape.ScalarType)
			retArea = v.Emit(ReturnPointer{Size: size, Align: align}, nil)[0]
			wasmArgs = append(wasmArgs, retArea)
			paramTypes = append(paramTypes, CoreI32)
		}
	case ReturnOutPointer:
		n := len(f.Params)
		for i := range shape.ResultTypes {
			ptr := v.Emit(GetArg{N: n + i}, nil)[0]
			wasmArgs = append(wasmArgs, fmt.Sprintf("(int32_t)(uintptr_t)(%s)", ptr))
			paramTypes = append(paramTypes, CoreI32)
		}
	}

	var resultType *CoreType
	switch shape.Kind {
	case ReturnScalar:
		ct := coreTypeOf(shape.ScalarType)
		resultType = &ct
	case ReturnOptionBool:
		ct := CoreI32
		resultType = &ct
	case ReturnResultEnum:
		ct := coreTypeOf(shape.ErrType)
		resultType = &ct
	}

	results := v.Emit(CallWasm{ParamTypes: paramTypes, ResultType: resultType}, wasmArgs)

	// The host trampoline writes an option/result payload into retArea
	// regardless of which arm ran; blit it into the ergonomic out-pointer
	// unconditionally so ret0 is always initialized (never left undefined
	// on the arm that carries no payload).
	if retArea != "" {
		ret0 := v.Emit(GetArg{N: len(f.Params)}, nil)[0]
		v.Emit(Blit{CType: retCType}, []string{ret0, retArea})
	}

	var retOperand []string
	switch shape.Kind {
	case ReturnScalar:
		retOperand = []string{fmt.Sprintf("(%s)(%s)", v.CType(shape.ScalarType), results[0])}
	case ReturnOptionBool:
		retOperand = []string{fmt.Sprintf("(bool)(%s)", results[0])}
	case ReturnResultEnum:
		retOperand = []string{fmt.Sprintf("(%s)(%s)", v.CType(shape.ErrType), results[0])}
	}
	v.Emit(Return{Shape: shape}, retOperand)
	return nil
}

// walkLift builds the canonical-ABI trampoline an export defines: it lifts
// each parameter's flat core scalars into its ergonomic representation,
// calls the user-supplied interface function, and lowers its result back
// onto the trampoline's own canonical-ABI return.
func walkLift(f *wit.Function, shape ReturnShape, v Visitor) error {
	var ifaceArgs []string
	pos := 0
	for _, p := range f.Params {
		width := len(coreTypesOf(p.Type))
		scalars := make([]string, width)
		for i := 0; i < width; i++ {
			scalars[i] = v.Emit(GetArg{N: pos}, nil)[0]
			pos++
		}
		off := 0
		ifaceArgs = append(ifaceArgs, liftFlat(v, p.Type, scalars, &off))
	}

	switch shape.Kind {
	case ReturnOptionBool, ReturnResultEnum:
		if outPointerSlotCount(shape) == 1 {
			ptr := v.Emit(GetArg{N: pos}, nil)[0]
			ct := "uint8_t"
			if shape.ScalarType != nil {
				ct = v.CType(shape.ScalarType)
			}
			ifaceArgs = append(ifaceArgs, fmt.Sprintf("(%s *)(uintptr_t)(%s)", ct, ptr))
		}
	case ReturnOutPointer:
		for i, t := range shape.ResultTypes {
			ptr := v.Emit(GetArg{N: pos + i}, nil)[0]
			ifaceArgs = append(ifaceArgs, fmt.Sprintf("(%s *)(uintptr_t)(%s)", v.CType(t), ptr))
		}
	}

	results := v.Emit(CallInterface{Func: f}, ifaceArgs)

	var retOperand []string
	switch shape.Kind {
	case ReturnScalar:
		retOperand = []string{fmt.Sprintf("(%s)(%s)", coreTypeOf(shape.ScalarType).String(), results[0])}
	case ReturnOptionBool:
		retOperand = []string{fmt.Sprintf("(int32_t)(%s)", results[0])}
	case ReturnResultEnum:
		retOperand = []string{fmt.Sprintf("(%s)(%s)", coreTypeOf(shape.ErrType).String(), results[0])}
	}
	v.Emit(Return{Shape: shape}, retOperand)
	return nil
}
