package bindgen

import (
	"testing"

	"github.com/bytecodealliance/wit-bindgen-c/wit"
)

func TestClassifyReturnVoid(t *testing.T) {
	f := &wit.Function{Name: "log"}
	shape := classifyReturn(f)
	if shape.Kind != ReturnVoid {
		t.Fatalf("Kind = %v, want ReturnVoid", shape.Kind)
	}
}

func TestClassifyReturnScalar(t *testing.T) {
	f := &wit.Function{Name: "add", Results: []wit.Param{{Type: &wit.S32{}}}}
	shape := classifyReturn(f)
	if shape.Kind != ReturnScalar {
		t.Fatalf("Kind = %v, want ReturnScalar", shape.Kind)
	}
}

func TestClassifyReturnOutPointerMulti(t *testing.T) {
	f := &wit.Function{Name: "divmod", Results: []wit.Param{
		{Type: &wit.S32{}}, {Type: &wit.S32{}},
	}}
	shape := classifyReturn(f)
	if shape.Kind != ReturnOutPointer {
		t.Fatalf("Kind = %v, want ReturnOutPointer", shape.Kind)
	}
	if len(shape.ResultTypes) != 2 {
		t.Fatalf("ResultTypes = %d entries, want 2", len(shape.ResultTypes))
	}
}

func TestClassifyReturnOptionBool(t *testing.T) {
	f := &wit.Function{Name: "find", Results: []wit.Param{
		{Type: &wit.Option{Type: &wit.U32{}}},
	}}
	shape := classifyReturn(f)
	if shape.Kind != ReturnOptionBool {
		t.Fatalf("Kind = %v, want ReturnOptionBool", shape.Kind)
	}
	if _, ok := shape.ScalarType.(*wit.U32); !ok {
		t.Fatalf("ScalarType = %T, want *wit.U32", shape.ScalarType)
	}
}

func TestClassifyReturnResultEnum(t *testing.T) {
	errno := &wit.Enum{Cases: []wit.EnumCase{{Name: "divide-by-zero"}, {Name: "overflow"}}}
	f := &wit.Function{Name: "divide", Results: []wit.Param{
		{Type: &wit.Result{OK: &wit.S32{}, Err: errno}},
	}}
	shape := classifyReturn(f)
	if shape.Kind != ReturnResultEnum {
		t.Fatalf("Kind = %v, want ReturnResultEnum", shape.Kind)
	}
	if shape.MaxErr != 2 {
		t.Fatalf("MaxErr = %d, want 2", shape.MaxErr)
	}
	if _, ok := shape.ScalarType.(*wit.S32); !ok {
		t.Fatalf("ScalarType = %T, want *wit.S32", shape.ScalarType)
	}
}

func TestClassifyReturnResultNonEnumErrIsOutPointer(t *testing.T) {
	f := &wit.Function{Name: "parse", Results: []wit.Param{
		{Type: &wit.Result{OK: &wit.S32{}, Err: &wit.String{}}},
	}}
	shape := classifyReturn(f)
	if shape.Kind != ReturnOutPointer {
		t.Fatalf("Kind = %v, want ReturnOutPointer", shape.Kind)
	}
}

func TestCoreTypeOf(t *testing.T) {
	tests := []struct {
		name string
		t    wit.Type
		want CoreType
	}{
		{"s32", &wit.S32{}, CoreI32},
		{"s64", &wit.S64{}, CoreI64},
		{"f32", &wit.F32{}, CoreF32},
		{"f64", &wit.F64{}, CoreF64},
		{"string", &wit.String{}, CoreI32},
		{"record", &wit.Record{}, CoreI32},
	}
	for _, tt := range tests {
		if got := coreTypeOf(tt.t); got != tt.want {
			t.Errorf("coreTypeOf(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
