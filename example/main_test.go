package main

import "testing"

func TestFormatKeyCode(t *testing.T) {
	tests := []struct {
		code uint64
		want string
	}{
		{0xCC55463930DBE1AB, "0xcc55463930dbe1ab"},
		{0x0123456789ABCDEF, "0x0123456789abcdef"},
		{1, "0x0000000000000001"},
	}
	for _, tt := range tests {
		if got := formatKeyCode(tt.code); got != tt.want {
			t.Errorf("formatKeyCode(%#x) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
