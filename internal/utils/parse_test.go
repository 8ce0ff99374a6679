package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		in   string
		def  int
		want int
	}{
		{"42", 0, 42},
		{"", 10, 10},
		{"x", 5, 5},
		{"-7", 0, -7},
		{"3.14", 9, 9},
		{" 42", 9, 9}, // strconv.Atoi rejects surrounding spaces
	}
	for _, tc := range cases {
		if got := AtoiDefault(tc.in, tc.def); got != tc.want {
			t.Errorf("AtoiDefault(%q, %d) = %d; want %d", tc.in, tc.def, got, tc.want)
		}
	}
}

func TestClampInt(t *testing.T) {
	if got := ClampInt(5, 1, 10); got != 5 {
		t.Errorf("in-range clamp = %d; want 5", got)
	}
	if got := ClampInt(0, 1, 10); got != 1 {
		t.Errorf("low clamp = %d; want 1", got)
	}
	if got := ClampInt(99, 1, 10); got != 10 {
		t.Errorf("high clamp = %d; want 10", got)
	}
}
