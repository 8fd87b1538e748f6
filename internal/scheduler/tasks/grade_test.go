package tasks

import "testing"

func TestGradeCron(t *testing.T) {
	tests := []struct {
		lead int
		want string
	}{
		{5, "25,55 * * * *"},
		{0, "0,30 * * * *"},
		{10, "20,50 * * * *"},
		{29, "1,31 * * * *"},
		{-1, "25,55 * * * *"},
		{30, "25,55 * * * *"},
	}
	for _, tt := range tests {
		if got := gradeCron(tt.lead); got != tt.want {
			t.Errorf("gradeCron(%d) = %q, want %q", tt.lead, got, tt.want)
		}
	}
}
