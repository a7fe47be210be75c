package gen

import (
	"bytes"
	"fmt"

	"github.com/bytecodealliance/wit-bindgen-c/internal/stringio"
)

// Buffer is a growable fragment of generated C source. Buffers are used
// both for the two top-level sinks (a File's header and implementation)
// and for throwaway fragments assembled independently of their final
// placement (a typedef body, a destructor, a block of statements) before
// being spliced into a File.
type Buffer struct {
	bytes.Buffer
}

// P writes each of strs to b, in order, followed by a newline. Called with
// no arguments, it writes a blank line; this mirrors the common
// code-generator idiom of using P() between fragments as a paragraph break.
func (b *Buffer) P(strs ...string) {
	stringio.Write(b, strs...)
	b.WriteByte('\n')
}

// Printf writes a formatted string to b without a trailing newline.
func (b *Buffer) Printf(format string, args ...any) {
	fmt.Fprintf(b, format, args...)
}

// File holds the two buffers under construction for a single IR interface:
// the public header and the private implementation. SwapHeader implements
// the buffer-swapping pattern used by nested type printing: printing a type
// reference from an implementation-only context temporarily redirects
// Header so that newly-discovered anonymous types are classified private
// rather than public.
type File struct {
	// Header accumulates the text of the ".h" artifact.
	Header Buffer

	// Impl accumulates the text of the ".c" artifact.
	Impl Buffer

	// Scope is the file-wide identifier namespace (type and function names).
	Scope Scope
}

// NewFile returns an empty File with a fresh top-level Scope.
func NewFile() *File {
	return &File{Scope: NewScope(nil)}
}

// SwapHeader replaces f.Header with buf and returns the previous value.
// Callers must restore it themselves (typically via defer, calling
// SwapHeader again with the returned value) even on an error path, so a
// failure during nested printing never leaves f.Header in the swapped
// state.
func (f *File) SwapHeader(buf Buffer) Buffer {
	prev := f.Header
	f.Header = buf
	return prev
}
