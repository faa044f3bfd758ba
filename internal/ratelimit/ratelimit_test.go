package ratelimit

import "testing"

func TestToInt64(t *testing.T) {
	tests := []struct {
		in      any
		want    int64
		wantErr bool
	}{
		{in: int64(3), want: 3},
		{in: 4, want: 4},
		{in: "5", want: 5},
		{in: "five", wantErr: true},
		{in: 1.5, wantErr: true},
	}

	for _, tt := range tests {
		got, err := toInt64(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("toInt64(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("toInt64(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNew_Defaults(t *testing.T) {
	l := New(nil, 0, 0, "")
	if l.limit != 10 || l.window.Seconds() != 60 || l.prefix != "rl" {
		t.Fatalf("defaults = %d %s %q", l.limit, l.window, l.prefix)
	}
}
