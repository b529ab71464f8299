package gitx

import "testing"

func TestLooksLikeHash(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"abc1234", true},
		{"ABC1234", true},
		{"deadbeefdeadbeefdeadbeefdeadbeefdeadbeef", true},
		{"abc123", false},
		{"not-a-hash", false},
		{"", false},
		{"gggggggg", false},
	}
	for _, tt := range tests {
		if got := LooksLikeHash(tt.in); got != tt.want {
			t.Errorf("LooksLikeHash(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
