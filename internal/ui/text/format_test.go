package text

import (
	"testing"
	"time"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{-time.Second, "0ms"},
		{850 * time.Millisecond, "850ms"},
		{4200 * time.Millisecond, "4.2s"},
		{3*time.Minute + 5*time.Second, "3m05s"},
		{72 * time.Minute, "1h12m"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.d); got != tt.want {
			t.Errorf("FormatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatExit(t *testing.T) {
	if got := FormatExit(0); got != "exit 0" {
		t.Errorf("FormatExit(0) = %q", got)
	}
	if got := FormatExit(127); got != "exit 127" {
		t.Errorf("FormatExit(127) = %q", got)
	}
	if got := FormatExit(-9); got != "killed (signal 9)" {
		t.Errorf("FormatExit(-9) = %q", got)
	}
}
