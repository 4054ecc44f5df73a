package units

import "testing"

func TestHumanSize(t *testing.T) {
	tests := []struct {
		size float64
		want string
	}{
		{0, "0B"},
		{512, "512B"},
		{1024, "1.02kB"},
		{GB, "1GB"},
		{2.5 * MB, "2.5MB"},
		{1234 * GB, "1.23TB"},
	}
	for _, tt := range tests {
		if got := HumanSize(tt.size); got != tt.want {
			t.Errorf("HumanSize(%v) = %q, want %q", tt.size, got, tt.want)
		}
	}
}
