package bindgen

import (
	"fmt"
	"strings"

	"github.com/bytecodealliance/wit-bindgen-c/wit"
)

// coreTypesOf returns the canonical-ABI flattened core scalar sequence for
// t. It reuses wit.Type.Flat, the IR's own recursive, join-aware
// flattening (record/tuple fields concatenate; variant/union/option/result
// prefix a discriminant and join differently-shaped case payloads via the
// same rule the IR already applies in Variant.Flat), rather than
// re-deriving flattening or join rules in this package.
func coreTypesOf(t wit.Type) []CoreType {
	flat := t.Flat()
	out := make([]CoreType, len(flat))
	for i, ft := range flat {
		out[i] = coreTypeFromFlat(ft)
	}
	return out
}

func coreTypeFromFlat(ft wit.Type) CoreType {
	switch ft.(type) {
	case wit.U64, wit.S64:
		return CoreI64
	case wit.F32:
		return CoreF32
	case wit.F64:
		return CoreF64
	default:
		// U32 and every Pointer (list/string backing address) are one i32.
		return CoreI32
	}
}

// lowerFlat recursively lowers the value of type t denoted by expr into its
// canonical-ABI flat scalar expressions. expr follows the same by-value-
// or-by-pointer representation as isArgByPointer(t): a pointer expression
// when isArgByPointer(t), the bare value expression otherwise — exactly
// how a parameter, and every field or case payload reached while
// recursing, is already held in this generator's C representation.
func lowerFlat(v Visitor, t wit.Type, expr string) []string {
	switch k := rootKind(t).(type) {
	case *wit.String:
		return v.Emit(StringLower{}, []string{expr})

	case *wit.List:
		elemCType := v.CType(k.Type)
		if v.IsListCanonical(t) {
			return v.Emit(ListCanonLower{ElemCType: elemCType}, []string{expr})
		}
		return v.Emit(ListLower{ElemCType: elemCType}, []string{expr})

	case *wit.Record:
		names := make([]string, len(k.Fields))
		for i, f := range k.Fields {
			names[i] = f.Name
		}
		accessors := v.Emit(RecordLower{Fields: names}, []string{expr})
		var out []string
		for i, f := range k.Fields {
			out = append(out, lowerFlat(v, f.Type, addressIfByPointer(f.Type, accessors[i]))...)
		}
		return out

	case *wit.Tuple:
		accessors := v.Emit(TupleLower{N: len(k.Types)}, []string{expr})
		var out []string
		for i, et := range k.Types {
			out = append(out, lowerFlat(v, et, addressIfByPointer(et, accessors[i]))...)
		}
		return out

	case *wit.Flags:
		return v.Emit(FlagsLower{Width: len(k.Flags)}, []string{expr})

	case *wit.Enum:
		return v.Emit(EnumLower{}, []string{expr})

	case *wit.Variant:
		disc := fmt.Sprintf("(int32_t)((%s)->tag)", expr)
		payload := lowerCases(v, t, variantCaseInfos(k.Cases), expr, false)
		return append([]string{disc}, payload...)

	case *wit.Union:
		disc := fmt.Sprintf("(int32_t)((%s)->tag)", expr)
		payload := lowerCases(v, t, unionCaseInfos(k.Types), expr, true)
		return append([]string{disc}, payload...)

	case *wit.Option:
		disc := fmt.Sprintf("(int32_t)((%s)->is_some)", expr)
		payload := lowerOption(v, t, k, expr)
		return append([]string{disc}, payload...)

	case *wit.Result:
		disc := fmt.Sprintf("(int32_t)((%s)->is_err)", expr)
		payload := lowerResult(v, t, k, expr)
		return append([]string{disc}, payload...)

	default:
		// Primitive leaf: bool/s8/u8/s16/u16/s32/u32/s64/u64/f32/f64/char.
		return []string{fmt.Sprintf("(%s)(%s)", coreTypesOf(t)[0].String(), expr)}
	}
}

// addressIfByPointer wraps a field or element accessor expression (always
// a value form, e.g. "(ptr)->name") in an address-of when its own type
// crosses by pointer: struct-member accessor expressions are always
// addressable lvalues in C, so &(...) is always valid here.
func addressIfByPointer(t wit.Type, expr string) string {
	if isArgByPointer(t) {
		return "&(" + expr + ")"
	}
	return expr
}

// caseInfo is the shared shape lowerCases/liftCases drive a variant or
// union's cases through, independent of whether they're named (variant) or
// positional (union).
type caseInfo struct {
	name string
	typ  wit.Type
}

func variantCaseInfos(cases []wit.Case) []caseInfo {
	out := make([]caseInfo, len(cases))
	for i, c := range cases {
		out[i] = caseInfo{name: c.Name, typ: c.Type}
	}
	return out
}

func unionCaseInfos(types []wit.Type) []caseInfo {
	out := make([]caseInfo, len(types))
	for i, t := range types {
		out[i] = caseInfo{name: fmt.Sprintf("f%d", i), typ: t}
	}
	return out
}

// payloadName strips the "(*name)" wrapper VariantPayloadName pushes down
// to the bare identifier, the form a case's binding statement declares.
func payloadName(expr string) string {
	s := strings.TrimPrefix(expr, "(*")
	return strings.TrimSuffix(s, ")")
}

// payloadExprFor adapts VariantPayloadName's dereferenced-pointer push
// ("(*name)") to whichever representation lowerFlat expects for t: the
// bare pointer name itself when t is by-pointer (so a nested
// RecordLower/TupleLower/VariantLower access can apply "->" to it), the
// dereferenced value unchanged otherwise.
func payloadExprFor(t wit.Type, payloadExpr string) string {
	if isArgByPointer(t) {
		return payloadName(payloadExpr)
	}
	return payloadExpr
}

func ctypeOf(v Visitor, t wit.Type) string {
	if t == nil || isEmptyType(t) {
		return ""
	}
	return v.CType(t)
}

// lowerCases drives VariantLower/UnionLower and returns only the joined
// payload scalars (the discriminant is lowerFlat's concern, not this
// instruction's). The joined per-slot result types come straight off t's
// own Flat() with the tag slot dropped, so no case-width reconciliation is
// recomputed here — it reuses the same join wit.Variant.Flat already
// performs.
func lowerCases(v Visitor, t wit.Type, cases []caseInfo, expr string, positional bool) []string {
	resultTypes := coreTypesOf(t)[1:]
	arms := make([]CaseArm, len(cases))
	blocks := make([]Block, len(cases))
	payloadVars := make([]string, len(cases))

	for i, c := range cases {
		v.PushBlock()
		var scalars []string
		var raw []CoreType
		if c.typ != nil && !isEmptyType(c.typ) {
			payloadExpr := v.Emit(VariantPayloadName{}, nil)[0]
			payloadVars[i] = payloadName(payloadExpr)
			scalars = lowerFlat(v, c.typ, payloadExprFor(c.typ, payloadExpr))
			raw = coreTypesOf(c.typ)
		}
		blocks[i] = v.FinishBlock(padJoin(v, scalars, raw, resultTypes))
		arms[i] = CaseArm{Name: c.name, HasPayload: c.typ != nil && !isEmptyType(c.typ), PayloadCType: ctypeOf(v, c.typ)}
	}

	ctype := v.CType(t)
	if positional {
		return v.Emit(UnionLower{CType: ctype, Cases: arms, Blocks: blocks, PayloadVars: payloadVars, ResultTypes: resultTypes}, []string{expr})
	}
	return v.Emit(VariantLower{CType: ctype, Cases: arms, Blocks: blocks, PayloadVars: payloadVars, ResultTypes: resultTypes}, []string{expr})
}

// padJoin reconciles a case's own raw flat scalars (width len(scalars), of
// type raw) up to the shared joined width of resultTypes: identical slots
// pass through, slots whose core type differs bitcast, and slots this case
// doesn't reach at all (no payload, or a narrower payload) are filled with
// ConstZero.
func padJoin(v Visitor, scalars []string, raw, joined []CoreType) []string {
	out := make([]string, len(joined))
	for i := range joined {
		switch {
		case i < len(scalars) && raw[i] == joined[i]:
			out[i] = scalars[i]
		case i < len(scalars):
			out[i] = v.Emit(Bitcast{From: []CoreType{raw[i]}, To: []CoreType{joined[i]}}, []string{scalars[i]})[0]
		default:
			out[i] = v.Emit(ConstZero{Types: []CoreType{joined[i]}}, nil)[0]
		}
	}
	return out
}

// bitcastDown is padJoin's inverse: narrows joined-width scalars back to a
// case's own raw flat types before lifting its payload.
func bitcastDown(v Visitor, joinedScalars []string, joined, raw []CoreType) []string {
	out := make([]string, len(raw))
	for i := range raw {
		if raw[i] == joined[i] {
			out[i] = joinedScalars[i]
		} else {
			out[i] = v.Emit(Bitcast{From: []CoreType{joined[i]}, To: []CoreType{raw[i]}}, []string{joinedScalars[i]})[0]
		}
	}
	return out
}

// lowerOption returns option<T>'s joined payload scalars (the "some"
// discriminant bit is lowerFlat's concern). The none arm contributes
// nothing and is padded to the same width with zeros, matching §4.3's
// "written even on the none branch" convention for the decomposed case too.
func lowerOption(v Visitor, t wit.Type, k *wit.Option, expr string) []string {
	resultTypes := coreTypesOf(t)[1:]

	v.PushBlock()
	noneBlock := v.FinishBlock(padJoin(v, nil, nil, resultTypes))

	v.PushBlock()
	var someScalars []string
	var someVar string
	if !isEmptyType(k.Type) {
		payloadExpr := v.Emit(VariantPayloadName{}, nil)[0]
		someVar = payloadName(payloadExpr)
		someScalars = lowerFlat(v, k.Type, payloadExprFor(k.Type, payloadExpr))
	}
	someBlock := v.FinishBlock(padJoin(v, someScalars, coreTypesOf(k.Type), resultTypes))

	return v.Emit(OptionLower{
		CType:        v.CType(t),
		PayloadCType: ctypeOf(v, k.Type),
		PayloadVar:   someVar,
		NoneBlock:    noneBlock,
		SomeBlock:    someBlock,
		ResultTypes:  resultTypes,
	}, []string{expr})
}

// lowerResult returns result<OK, Err>'s joined payload scalars (the
// is_err discriminant bit is lowerFlat's concern).
func lowerResult(v Visitor, t wit.Type, k *wit.Result, expr string) []string {
	resultTypes := coreTypesOf(t)[1:]
	okEmpty := k.OK == nil || isEmptyType(k.OK)
	errEmpty := k.Err == nil || isEmptyType(k.Err)

	var okVar string
	v.PushBlock()
	var okScalars []string
	var okRaw []CoreType
	if !okEmpty {
		payloadExpr := v.Emit(VariantPayloadName{}, nil)[0]
		okVar = payloadName(payloadExpr)
		okScalars = lowerFlat(v, k.OK, payloadExprFor(k.OK, payloadExpr))
		okRaw = coreTypesOf(k.OK)
	}
	okBlock := v.FinishBlock(padJoin(v, okScalars, okRaw, resultTypes))

	var errVar string
	v.PushBlock()
	var errScalars []string
	var errRaw []CoreType
	if !errEmpty {
		payloadExpr := v.Emit(VariantPayloadName{}, nil)[0]
		errVar = payloadName(payloadExpr)
		errScalars = lowerFlat(v, k.Err, payloadExprFor(k.Err, payloadExpr))
		errRaw = coreTypesOf(k.Err)
	}
	errBlock := v.FinishBlock(padJoin(v, errScalars, errRaw, resultTypes))

	return v.Emit(ResultLower{
		CType:       v.CType(t),
		OkCType:     ctypeOf(v, k.OK),
		ErrCType:    ctypeOf(v, k.Err),
		OkVar:       okVar,
		ErrVar:      errVar,
		OkBlock:     okBlock,
		ErrBlock:    errBlock,
		ResultTypes: resultTypes,
	}, []string{expr})
}

// liftFlat consumes scalars[*pos:] according to type t's canonical-ABI
// flattening, advancing pos, and returns a single value expression of
// type t (a compound literal for record/tuple/string/list, or a fresh
// local's name for variant/union/option/result).
func liftFlat(v Visitor, t wit.Type, scalars []string, pos *int) string {
	switch k := rootKind(t).(type) {
	case *wit.String:
		ptr, ln := scalars[*pos], scalars[*pos+1]
		*pos += 2
		return v.Emit(StringLift{CType: v.CType(t)}, []string{ptr, ln})[0]

	case *wit.List:
		ptr, ln := scalars[*pos], scalars[*pos+1]
		*pos += 2
		elemCType := v.CType(k.Type)
		if v.IsListCanonical(t) {
			return v.Emit(ListCanonLift{CType: v.CType(t), ElemCType: elemCType}, []string{ptr, ln})[0]
		}
		return v.Emit(ListLift{CType: v.CType(t), ElemCType: elemCType}, []string{ptr, ln})[0]

	case *wit.Record:
		vals := make([]string, len(k.Fields))
		names := make([]string, len(k.Fields))
		for i, f := range k.Fields {
			vals[i] = liftFlat(v, f.Type, scalars, pos)
			names[i] = f.Name
		}
		return v.Emit(RecordLift{CType: v.CType(t), Fields: names}, vals)[0]

	case *wit.Tuple:
		vals := make([]string, len(k.Types))
		for i, et := range k.Types {
			vals[i] = liftFlat(v, et, scalars, pos)
		}
		return v.Emit(TupleLift{CType: v.CType(t), N: len(k.Types)}, vals)[0]

	case *wit.Flags:
		lanes := (len(k.Flags) + 31) / 32
		ops := scalars[*pos : *pos+lanes]
		*pos += lanes
		return v.Emit(FlagsLift{Width: len(k.Flags)}, ops)[0]

	case *wit.Enum:
		s := scalars[*pos]
		*pos++
		return v.Emit(EnumLift{CType: v.CType(t)}, []string{s})[0]

	case *wit.Variant:
		return liftCases(v, t, variantCaseInfos(k.Cases), scalars, pos, false)

	case *wit.Union:
		return liftCases(v, t, unionCaseInfos(k.Types), scalars, pos, true)

	case *wit.Option:
		return liftOption(v, t, k, scalars, pos)

	case *wit.Result:
		return liftResult(v, t, k, scalars, pos)

	default:
		s := scalars[*pos]
		*pos++
		return fmt.Sprintf("(%s)(%s)", v.CType(t), s)
	}
}

// liftCases drives VariantLift/UnionLift: it consumes one discriminant
// scalar plus the joined payload width (from t's own Flat()), then for
// each case narrows the joined scalars back to that case's own raw flat
// types before recursively lifting.
func liftCases(v Visitor, t wit.Type, cases []caseInfo, scalars []string, pos *int, positional bool) string {
	disc := scalars[*pos]
	*pos++
	joined := coreTypesOf(t)[1:]
	payload := scalars[*pos : *pos+len(joined)]
	*pos += len(joined)

	arms := make([]CaseArm, len(cases))
	blocks := make([]Block, len(cases))
	for i, c := range cases {
		v.PushBlock()
		var result string
		if c.typ != nil && !isEmptyType(c.typ) {
			raw := coreTypesOf(c.typ)
			local := bitcastDown(v, payload, joined, raw)
			p := 0
			result = liftFlat(v, c.typ, local, &p)
		}
		var results []string
		if result != "" {
			results = []string{result}
		}
		blocks[i] = v.FinishBlock(results)
		arms[i] = CaseArm{Name: c.name, HasPayload: c.typ != nil && !isEmptyType(c.typ), PayloadCType: ctypeOf(v, c.typ)}
	}

	ctype := v.CType(t)
	if positional {
		return v.Emit(UnionLift{CType: ctype, Cases: arms, Blocks: blocks}, []string{disc})[0]
	}
	return v.Emit(VariantLift{CType: ctype, Cases: arms, Blocks: blocks}, []string{disc})[0]
}

func liftOption(v Visitor, t wit.Type, k *wit.Option, scalars []string, pos *int) string {
	disc := scalars[*pos]
	*pos++
	joined := coreTypesOf(t)[1:]
	payload := scalars[*pos : *pos+len(joined)]
	*pos += len(joined)

	v.PushBlock()
	raw := coreTypesOf(k.Type)
	local := bitcastDown(v, payload, joined, raw)
	p := 0
	val := liftFlat(v, k.Type, local, &p)
	someBlock := v.FinishBlock([]string{val})

	return v.Emit(OptionLift{CType: v.CType(t), PayloadCType: ctypeOf(v, k.Type), SomeBlock: someBlock}, []string{disc})[0]
}

func liftResult(v Visitor, t wit.Type, k *wit.Result, scalars []string, pos *int) string {
	disc := scalars[*pos]
	*pos++
	joined := coreTypesOf(t)[1:]
	payload := scalars[*pos : *pos+len(joined)]
	*pos += len(joined)

	okEmpty := k.OK == nil || isEmptyType(k.OK)
	errEmpty := k.Err == nil || isEmptyType(k.Err)

	v.PushBlock()
	var okVal string
	if !okEmpty {
		raw := coreTypesOf(k.OK)
		local := bitcastDown(v, payload, joined, raw)
		p := 0
		okVal = liftFlat(v, k.OK, local, &p)
	}
	var okResults []string
	if okVal != "" {
		okResults = []string{okVal}
	}
	okBlock := v.FinishBlock(okResults)

	v.PushBlock()
	var errVal string
	if !errEmpty {
		raw := coreTypesOf(k.Err)
		local := bitcastDown(v, payload, joined, raw)
		p := 0
		errVal = liftFlat(v, k.Err, local, &p)
	}
	var errResults []string
	if errVal != "" {
		errResults = []string{errVal}
	}
	errBlock := v.FinishBlock(errResults)

	return v.Emit(ResultLift{
		CType:    v.CType(t),
		OkCType:  ctypeOf(v, k.OK),
		ErrCType: ctypeOf(v, k.Err),
		OkBlock:  okBlock,
		ErrBlock: errBlock,
	}, []string{disc})[0]
}
