package bindgen

import "testing"

func TestSnake(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"my-math", "my_math"},
		{"fast-api", "fast_api"},
		{"Errno", "errno"},
		{"divide-by-zero", "divide_by_zero"},
	}
	for _, tt := range tests {
		if got := snake(tt.name); got != tt.want {
			t.Errorf("snake(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestShoutySnake(t *testing.T) {
	if got := shoutySnake("divide-by-zero"); got != "DIVIDE_BY_ZERO" {
		t.Errorf("shoutySnake(divide-by-zero) = %q", got)
	}
}

func TestKebab(t *testing.T) {
	if got := kebab("my_math"); got != "my-math" {
		t.Errorf("kebab(my_math) = %q", got)
	}
}

func TestDiscriminantRepr(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "uint8_t"},
		{2, "uint8_t"},
		{256, "uint8_t"},
		{257, "uint16_t"},
		{1 << 16, "uint16_t"},
		{1<<16 + 1, "uint32_t"},
	}
	for _, tt := range tests {
		if got := discriminantRepr(tt.n); got != tt.want {
			t.Errorf("discriminantRepr(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFlagsRepr(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "uint8_t"},
		{8, "uint8_t"},
		{9, "uint16_t"},
		{32, "uint32_t"},
		{33, "uint64_t"},
		{64, "uint64_t"},
	}
	for _, tt := range tests {
		if got := flagsRepr(tt.n); got != tt.want {
			t.Errorf("flagsRepr(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFlagsReprPanicsOver64(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("flagsRepr(65): expected panic")
		}
	}()
	flagsRepr(65)
}
