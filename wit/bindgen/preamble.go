package bindgen

import (
	"fmt"

	"github.com/bytecodealliance/wit-bindgen-c/wit"
)

// linkingSymbol returns the weak-reference symbol name the implementation
// must mention once to force linkage of the component-type-object
// collaborator's output.
func (g *Generator) linkingSymbol() string {
	dir := "import"
	if g.direction == wit.Exported {
		dir = "export"
	}
	return fmt.Sprintf("__component_type_%s_%s", dir, g.prefix)
}

// wrapHeader wraps body in the include-guard and extern-"C" preamble and
// trailer.
func (g *Generator) wrapHeader(body string) string {
	return fmt.Sprintf(`#ifndef __BINDINGS_%s_H
#define __BINDINGS_%s_H
#ifdef __cplusplus
extern "C" {
#endif

#include <stdint.h>
#include <stdbool.h>

%s
#ifdef __cplusplus
}
#endif
#endif
`, g.ns, g.ns, body)
}

// wrapImpl wraps body in the implementation preamble,
// including the weak cabi_realloc definition. It additionally includes
// <string.h> when the string helpers (which call strlen/memcpy) are
// present.
func (g *Generator) wrapImpl(body string) string {
	extra := ""
	if g.needsString {
		extra = "#include <string.h>\n"
	}
	return fmt.Sprintf(`#include <stdlib.h>
%s#include <%s.h>
extern void %s(void);

__attribute__((weak, export_name("cabi_realloc")))
void *cabi_realloc(void *ptr, size_t orig_size, size_t orig_align, size_t new_size) {
	(void)orig_size;
	(void)orig_align;
	if (new_size == 0) {
		return (void *)orig_align;
	}
	void *ret = realloc(ptr, new_size);
	if (!ret) {
		abort();
	}
	return ret;
}

%s`, extra, g.ifaceName, g.linkingSymbol(), body)
}
