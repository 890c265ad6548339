package codegen

import "testing"

func TestEscapeIdent(t *testing.T) {
	reserved := wordSet("new", "in")
	tests := []struct{ in, want string }{
		{"f", "f"},
		{"a_b", "a__b"},
		{"f$int_float", "f_sint__float"},
		{"g.1$int", "g_d1_sint"},
		{"new", "new_k"},
		{"new_k", "new__k"},
		{"in", "in_k"},
	}
	for _, tt := range tests {
		if got := escapeIdent(tt.in, reserved); got != tt.want {
			t.Errorf("escapeIdent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatReal(t *testing.T) {
	tests := map[float64]string{
		1:      "1.0",
		0.5:    "0.5",
		-3:     "-3.0",
		1e21:   "1e+21",
		123.25: "123.25",
	}
	for v, want := range tests {
		if got := formatReal(v); got != want {
			t.Errorf("formatReal(%v) = %q, want %q", v, got, want)
		}
	}
}
