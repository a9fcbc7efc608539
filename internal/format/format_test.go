package format

import (
	"errors"
	"math"
	"testing"
)

func TestNumber(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "-"},
		{"-", "-"},
		{"abc", "abc"},
		{"1234567", "1,234,567"},
		{"1234.5", "1,234.5"},
		{"0.12345", "0.123"},
		{"-98765.4321", "-98,765.432"},
		{"100", "100"},
		{"12345678901234567", "12,345,678,901,234,567"},
		{"-12345678901234567.5", "-12,345,678,901,234,567.5"},
		{"9223372036854775.807", "9,223,372,036,854,775.807"},
	}
	for _, tt := range tests {
		if got := Number(tt.in); got != tt.want {
			t.Errorf("Number(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "-"},
		{"-", "-"},
		{"n/a", "n/a"},
		{"1.5", "1.50%"},
		{"-0.236", "-0.24%"},
	}
	for _, tt := range tests {
		if got := Percent(tt.in); got != tt.want {
			t.Errorf("Percent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDate(t *testing.T) {
	if got := Date("20250301"); got != "2025.03.01" {
		t.Errorf("Date = %q", got)
	}
	if got := Date("2025-03"); got != "2025-03" {
		t.Errorf("Date short = %q", got)
	}
}

func TestDateTime(t *testing.T) {
	if got := DateTime("2025-03-01T06:04:05Z"); got != "2025. 03. 01. 오후 03:04:05" {
		t.Errorf("DateTime = %q", got)
	}
	if got := DateTime("2025-03-01T15:30:00Z"); got != "2025. 03. 02. 오전 12:30:00" {
		t.Errorf("DateTime midnight = %q", got)
	}
	if got := DateTime("yesterday"); got != "yesterday" {
		t.Errorf("DateTime invalid = %q", got)
	}
}

func TestWonAndParseAmount(t *testing.T) {
	if got := Won(12345678); got != "12,345,678원" {
		t.Errorf("Won = %q", got)
	}
	if got := Won(-500); got != "-500원" {
		t.Errorf("Won negative = %q", got)
	}
	n, err := ParseAmount("12,000,000원")
	if err != nil || n != 12000000 {
		t.Errorf("ParseAmount = %d, %v", n, err)
	}
	if _, err := ParseAmount("없음"); !errors.Is(err, ErrNoAmount) {
		t.Errorf("ParseAmount without digits err = %v, want ErrNoAmount", err)
	}
	if n, err := ParseAmount("9,223,372,036,854,775,807"); err != nil || n != math.MaxInt64 {
		t.Errorf("ParseAmount(max) = %d, %v", n, err)
	}
	if _, err := ParseAmount("10000000000000000000"); !errors.Is(err, ErrAmountRange) {
		t.Errorf("ParseAmount overflow err = %v, want ErrAmountRange", err)
	}
}

func TestChange(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
	}{
		{"1.2", Up},
		{"-0.5", Down},
		{"0", Flat},
		{"", Flat},
	}
	for _, tt := range tests {
		if got := Change(tt.in); got != tt.want {
			t.Errorf("Change(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFloat(t *testing.T) {
	if got := Float(1234567.5); got != "1,234,567.5" {
		t.Errorf("Float = %q", got)
	}
	if got := FloatPtr(nil); got != "-" {
		t.Errorf("FloatPtr(nil) = %q", got)
	}
	v := 3.25
	if got := FloatPtr(&v); got != "3.25" {
		t.Errorf("FloatPtr = %q", got)
	}
}
