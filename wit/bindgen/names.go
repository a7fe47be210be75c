package bindgen

import (
	"strings"
	"unicode"

	"github.com/bytecodealliance/wit-bindgen-c/wit"
)

// words splits name on anything that isn't a letter or digit, lowercasing
// the result, mirroring how identifiers are tokenized across snake, shouty
// snake, and kebab case.
func words(name string) []string {
	return strings.FieldsFunc(strings.ToLower(name), notLetterDigit)
}

func notLetterDigit(c rune) bool {
	return !unicode.IsLetter(c) && !unicode.IsDigit(c)
}

// snake returns the snake_case rendering of a WIT name.
func snake(name string) string {
	return strings.Join(words(name), "_")
}

// shoutySnake returns the SHOUTY_SNAKE_CASE rendering of a WIT name.
func shoutySnake(name string) string {
	return strings.ToUpper(snake(name))
}

// kebab returns the kebab-case rendering of a WIT name.
func kebab(name string) string {
	return strings.Join(words(name), "-")
}

// intRepr returns the C integer typedef name for an unsigned width in
// {8, 16, 32, 64} bits.
func intRepr(width int) string {
	switch {
	case width <= 8:
		return "uint8_t"
	case width <= 16:
		return "uint16_t"
	case width <= 32:
		return "uint32_t"
	default:
		return "uint64_t"
	}
}

// flagsRepr returns the C integer typedef name wide enough to hold n flag
// bits. It panics if n exceeds 64: a flags set that wide is a design error
// that must be caught before code is emitted.
func flagsRepr(n int) string {
	switch {
	case n <= 8:
		return "uint8_t"
	case n <= 16:
		return "uint16_t"
	case n <= 32:
		return "uint32_t"
	case n <= 64:
		return "uint64_t"
	default:
		panic("bindgen: flags type has more than 64 flags")
	}
}

// discriminantRepr returns the smallest unsigned C integer type whose range
// covers n distinct case values.
func discriminantRepr(n int) string {
	switch {
	case n <= 1<<8:
		return "uint8_t"
	case n <= 1<<16:
		return "uint16_t"
	default:
		return "uint32_t"
	}
}

// rootKind follows type aliases transitively and returns the underlying
// [wit.TypeDefKind]: either a *wit.TypeDef's dealiased Kind, or t itself
// when t is a primitive (every [wit.Type] is also a TypeDefKind).
func rootKind(t wit.Type) wit.TypeDefKind {
	if td, ok := t.(*wit.TypeDef); ok {
		return td.Root().Kind
	}
	return t
}

// isArgByPointer reports whether values of type t cross a function boundary
// by pointer rather than by value. It is the single source of truth for
// signature printing and for matching parameter passing between caller and
// callee.
func isArgByPointer(t wit.Type) bool {
	switch rootKind(t).(type) {
	case *wit.String, *wit.List, *wit.Tuple, *wit.Record,
		*wit.Variant, *wit.Union, *wit.Option, *wit.Result:
		return true
	default:
		return false
	}
}

// ownsAnything reports whether a value of type t can hold a heap
// allocation that must eventually be released. Aliases are
// transparent; enums, flags, and primitives never own; every other
// structural kind owns iff any contained component owns.
func ownsAnything(t wit.Type) bool {
	switch kind := rootKind(t).(type) {
	case *wit.String, *wit.List:
		return true
	case *wit.Record:
		for _, f := range kind.Fields {
			if ownsAnything(f.Type) {
				return true
			}
		}
		return false
	case *wit.Tuple:
		for _, et := range kind.Types {
			if ownsAnything(et) {
				return true
			}
		}
		return false
	case *wit.Variant:
		for _, c := range kind.Cases {
			if c.Type != nil && ownsAnything(c.Type) {
				return true
			}
		}
		return false
	case *wit.Union:
		for _, ut := range kind.Types {
			if ownsAnything(ut) {
				return true
			}
		}
		return false
	case *wit.Option:
		return ownsAnything(kind.Type)
	case *wit.Result:
		if kind.OK != nil && ownsAnything(kind.OK) {
			return true
		}
		if kind.Err != nil && ownsAnything(kind.Err) {
			return true
		}
		return false
	default:
		return false
	}
}

// isEmptyType reports whether t is an "empty type" for payload-suppression
// purposes: a record with zero fields, a tuple with zero elements,
// or a (possibly nested) alias of one.
func isEmptyType(t wit.Type) bool {
	switch kind := rootKind(t).(type) {
	case *wit.Record:
		return len(kind.Fields) == 0
	case *wit.Tuple:
		return len(kind.Types) == 0
	default:
		return false
	}
}
