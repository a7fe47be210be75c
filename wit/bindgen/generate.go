package bindgen

import "github.com/bytecodealliance/wit-bindgen-c/wit"

// Generate produces the header and implementation source for iface in the
// given direction: an imported interface gets an ergonomic wrapper around
// a host-provided canonical-ABI function per operation; an exported
// interface gets a canonical-ABI trampoline per operation that calls a
// user-implemented function of the declared public signature.
func Generate(res *wit.Resolve, iface *wit.Interface, direction wit.Direction) (header, impl []byte, err error) {
	g := NewGenerator(res, iface, direction, PointerWalker{})
	g.Preprocess()

	iface.TypeDefs.All()(func(_ string, td *wit.TypeDef) bool {
		g.emitNamedType(td)
		return true
	})
	iface.Functions.All()(func(_ string, fn *wit.Function) bool {
		g.EmitFunction(fn)
		return true
	})

	return g.Finish()
}
