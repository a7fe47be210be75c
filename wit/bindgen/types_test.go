package bindgen

import (
	"strings"
	"testing"

	"github.com/bytecodealliance/wit-bindgen-c/wit"
)

func newTestGenerator(name string) *Generator {
	n := name
	iface := &wit.Interface{Name: &n}
	return NewGenerator(&wit.Resolve{}, iface, wit.Imported, PointerWalker{})
}

func TestPrimitiveCType(t *testing.T) {
	tests := []struct {
		t    wit.Type
		want string
	}{
		{&wit.Bool{}, "bool"},
		{&wit.U8{}, "uint8_t"},
		{&wit.S64{}, "int64_t"},
		{&wit.F32{}, "float"},
		{&wit.Char{}, "uint32_t"},
	}
	for _, tt := range tests {
		got, ok := primitiveCType(tt.t)
		if !ok || got != tt.want {
			t.Errorf("primitiveCType(%T) = (%q, %v), want (%q, true)", tt.t, got, ok, tt.want)
		}
	}
}

func TestTypeRefString(t *testing.T) {
	g := newTestGenerator("my-math")
	if got := g.typeRef(&wit.String{}, true); got != "my_math_string_t" {
		t.Errorf("typeRef(string) = %q", got)
	}
	if !g.needsString {
		t.Error("typeRef(string) did not set needsString")
	}
}

func TestBuildEnum(t *testing.T) {
	g := newTestGenerator("my-math")
	kind := &wit.Enum{Cases: []wit.EnumCase{{Name: "divide-by-zero"}, {Name: "overflow"}}}
	got := g.buildEnum("errno", kind)
	want := "typedef uint8_t my_math_errno_t;\n" +
		"#define MY_MATH_ERRNO_DIVIDE_BY_ZERO 0\n" +
		"#define MY_MATH_ERRNO_OVERFLOW 1"
	if got != want {
		t.Errorf("buildEnum:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestBuildFlags(t *testing.T) {
	g := newTestGenerator("my-math")
	kind := &wit.Flags{Flags: []wit.Flag{{Name: "read"}, {Name: "write"}}}
	got := g.buildFlags("perm", kind)
	if !strings.Contains(got, "typedef uint8_t my_math_perm_t;") {
		t.Errorf("buildFlags missing typedef: %q", got)
	}
	if !strings.Contains(got, "#define MY_MATH_PERM_READ (1 << 0)") {
		t.Errorf("buildFlags missing READ bit: %q", got)
	}
	if !strings.Contains(got, "#define MY_MATH_PERM_WRITE (1 << 1)") {
		t.Errorf("buildFlags missing WRITE bit: %q", got)
	}
}

func TestDestructorForRecordOwningString(t *testing.T) {
	g := newTestGenerator("my-math")
	kind := &wit.Record{Fields: []wit.Field{
		{Name: "name", Type: &wit.String{}},
		{Name: "count", Type: &wit.U32{}},
	}}
	decl, def, ok := g.destructorFor("person", kind)
	if !ok {
		t.Fatal("expected a destructor for a record owning a string field")
	}
	if !strings.Contains(decl, "my_math_person_free") {
		t.Errorf("decl missing free symbol: %q", decl)
	}
	if !strings.Contains(def, "my_math_string_free(&ptr->name);") {
		t.Errorf("def missing field free call: %q", def)
	}
	if strings.Contains(def, "count") {
		t.Errorf("def should not free the non-owning count field: %q", def)
	}
}

func TestDestructorForEnumIsNone(t *testing.T) {
	g := newTestGenerator("my-math")
	_, _, ok := g.destructorFor("errno", &wit.Enum{Cases: []wit.EnumCase{{Name: "a"}}})
	if ok {
		t.Error("enum should never own a destructor")
	}
}

func TestDestructorForListAlwaysOwns(t *testing.T) {
	g := newTestGenerator("my-math")
	_, def, ok := g.destructorFor("ids", &wit.List{Type: &wit.U32{}})
	if !ok {
		t.Fatal("a list always owns its backing buffer")
	}
	if !strings.Contains(def, "free(ptr->ptr);") {
		t.Errorf("def missing buffer free: %q", def)
	}
}
