package format

import (
	"testing"
	"time"
)

func TestHumanNumber(t *testing.T) {
	cases := []struct {
		input    int
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.00K"},
		{1234, "1.23K"},
		{12345, "12.3K"},
		{512000, "512K"},
		{1000000, "1.00M"},
		{100000000, "100M"},
		{3000000000, "3.00B"},
	}

	for _, tt := range cases {
		t.Run(tt.expected, func(t *testing.T) {
			if got := HumanNumber(tt.input); got != tt.expected {
				t.Errorf("HumanNumber(%d) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestHumanBytes(t *testing.T) {
	cases := []struct {
		input    int64
		expected string
	}{
		{0, "0 B"},
		{999, "999 B"},
		{1000, "1.0 KB"},
		{1500000, "1.5 MB"},
		{100000000, "100.0 MB"},
		{2000000000, "2.0 GB"},
	}

	for _, tt := range cases {
		t.Run(tt.expected, func(t *testing.T) {
			if got := HumanBytes(tt.input); got != tt.expected {
				t.Errorf("HumanBytes(%d) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRatio(t *testing.T) {
	if got := Ratio(11, 5); got != "2.20X" {
		t.Errorf("Ratio(11, 5) = %q", got)
	}

	if got := Ratio(10, 0); got != "n/a" {
		t.Errorf("Ratio(10, 0) = %q", got)
	}
}

func TestElapsed(t *testing.T) {
	cases := []struct {
		input    time.Duration
		expected string
	}{
		{1234567 * time.Microsecond, "1.235s"},
		{90*time.Second + 400*time.Millisecond, "1m30s"},
		{2*time.Hour + 5*time.Minute, "2h5m"},
		{200 * time.Hour, "99h+"},
	}

	for _, tt := range cases {
		t.Run(tt.expected, func(t *testing.T) {
			if got := Elapsed(tt.input); got != tt.expected {
				t.Errorf("Elapsed(%v) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
