package money

import (
	"fmt"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func TestMinorToMajor_NilPropagates(t *testing.T) {
	if got := MinorToMajor(nil); got != nil {
		t.Fatalf("expected nil, got %s", got)
	}
	if got := FormatMajor(MinorToMajor(nil)); got != Placeholder {
		t.Fatalf("expected placeholder, got %q", got)
	}
}

func TestMinorToMajor_Examples(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{4990, "49.90"},
		{0, "0.00"},
		{1, "0.01"},
		{500, "5.00"},
		{123456789, "1234567.89"},
	}
	for _, tc := range cases {
		got := FormatMajor(MinorToMajor(int64Ptr(tc.cents)))
		if got != tc.want {
			t.Fatalf("cents=%d: expected %q, got %q", tc.cents, tc.want, got)
		}
	}
}

func TestMinorToMajor_RoundTripsTwoDecimals(t *testing.T) {
	for cents := int64(0); cents < 20000; cents += 7 {
		want := fmt.Sprintf("%d.%02d", cents/100, cents%100)
		if got := FormatMajor(MinorToMajor(int64Ptr(cents))); got != want {
			t.Fatalf("cents=%d: expected %q, got %q", cents, want, got)
		}
		if back := MajorToMinor(*MinorToMajor(int64Ptr(cents))); back != cents {
			t.Fatalf("cents=%d: round trip gave %d", cents, back)
		}
	}
}

func TestZeroIsNotAbsent(t *testing.T) {
	zero := MinorUnits(0)
	if zero.IsAbsent() {
		t.Fatalf("zero must not be absent")
	}
	if zero.String() != "0.00" {
		t.Fatalf("expected 0.00, got %q", zero.String())
	}
	if !None().IsAbsent() {
		t.Fatalf("None must be absent")
	}
}

func TestFromFloat_RejectsNaN(t *testing.T) {
	if !FromFloat(math.NaN()).IsAbsent() {
		t.Fatalf("NaN must be absent")
	}
	if !FromFloat(math.Inf(1)).IsAbsent() {
		t.Fatalf("Inf must be absent")
	}
	if got := FromFloat(49.9).String(); got != "49.90" {
		t.Fatalf("expected 49.90, got %q", got)
	}
}

func TestMajorToMinor_Rounds(t *testing.T) {
	if got := MajorToMinor(decimal.RequireFromString("49.905")); got != 4991 {
		t.Fatalf("expected 4991, got %d", got)
	}
	if got := MajorToMinor(decimal.RequireFromString("0.01")); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestFormat_Currency(t *testing.T) {
	if got := Format("chf", MinorUnits(4990)); got != "CHF 49.90" {
		t.Fatalf("unexpected %q", got)
	}
	if got := Format("chf", None()); got != Placeholder {
		t.Fatalf("unexpected %q", got)
	}
	if got := Format("", MajorUnits(decimal.NewFromInt(3))); got != "3.00" {
		t.Fatalf("unexpected %q", got)
	}
}
