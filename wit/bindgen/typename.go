package bindgen

import (
	"strconv"
	"strings"

	"github.com/bytecodealliance/wit-bindgen-c/wit"
)

// typeName returns the deterministic, structure-derived name fragment for
// t. For a named TypeDef it is the TypeDef's own (snake_case) name; for a
// primitive it is one of the short forms; for every anonymous structural
// kind it is built recursively from its component type names. Calling it
// twice on IR with the same shape always returns the same string.
func typeName(t wit.Type) string {
	if td, ok := t.(*wit.TypeDef); ok {
		if td.Name != nil {
			return snake(*td.Name)
		}
		return typeDefKindName(td.Kind)
	}
	return typeDefKindName(t)
}

func typeDefKindName(k wit.TypeDefKind) string {
	switch k := k.(type) {
	case *wit.Bool:
		return "bool"
	case *wit.S8:
		return "s8"
	case *wit.U8:
		return "u8"
	case *wit.S16:
		return "s16"
	case *wit.U16:
		return "u16"
	case *wit.S32:
		return "s32"
	case *wit.U32:
		return "u32"
	case *wit.S64:
		return "s64"
	case *wit.U64:
		return "u64"
	case *wit.F32:
		return "f32"
	case *wit.F64:
		return "f64"
	case *wit.Char:
		return "char32"
	case *wit.String:
		return "string"
	case *wit.TypeDef:
		return typeName(k)
	case *wit.Option:
		return "option_" + typeName(k.Type)
	case *wit.Result:
		return "result_" + typeOrVoid(k.OK) + "_" + typeOrVoid(k.Err)
	case *wit.Tuple:
		parts := make([]string, 0, len(k.Types)+1)
		parts = append(parts, "tuple"+strconv.Itoa(len(k.Types)))
		for _, et := range k.Types {
			parts = append(parts, typeName(et))
		}
		return strings.Join(parts, "_")
	case *wit.List:
		return "list_" + typeName(k.Type)
	case *wit.Future:
		return "future_" + typeOrVoid(k.Type)
	case *wit.Stream:
		return "stream_" + typeOrVoid(k.Element) + "_" + typeOrVoid(k.End)
	case *wit.Record, *wit.Flags, *wit.Enum, *wit.Variant, *wit.Union:
		panic("bindgen: anonymous record/flags/enum/variant/union has no synthesized name rule")
	default:
		panic("bindgen: unsupported type kind in typeName")
	}
}

func typeOrVoid(t wit.Type) string {
	if t == nil {
		return "void"
	}
	return typeName(t)
}

// isAnonymous reports whether t must be reached through a synthesized name
// rather than through a user-declared identifier: either a bare structural
// kind used inline, or a TypeDef with no Name.
func isAnonymous(t wit.Type) bool {
	if td, ok := t.(*wit.TypeDef); ok {
		return td.Name == nil
	}
	switch t.(type) {
	case *wit.Option, *wit.Result, *wit.Tuple, *wit.List, *wit.Future, *wit.Stream:
		return true
	default:
		return false // primitives and named TypeDefs never need monomorphization
	}
}
