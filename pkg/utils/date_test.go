package utils

import (
	"testing"
	"time"
)

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2023-05-01", "2023-05-01"},                // already API format
		{" 2023-05-01 ", "2023-05-01"},              // surrounding whitespace
		{"2023-05-01T10:00:00Z", "2023-05-01"},      // RFC3339 UTC
		{"2023-05-01T10:00:00.123Z", "2023-05-01"},  // RFC3339 with fraction
		{"2023-05-01T23:30:00-05:00", "2023-05-01"}, // offset keeps written day
		{"2023-05-01T08:15:00", "2023-05-01"},       // local datetime
		{"2023-05-01 08:15:00", "2023-05-01"},       // space separated
		{"01.05.2023", "2023-05-01"},                // german notation
	}

	for i, c := range cases {
		got, err := NormalizeDate(c.in)
		if err != nil {
			t.Fatalf("case %d: NormalizeDate(%q) error = %v", i, c.in, err)
		}
		if got != c.want {
			t.Fatalf("case %d: NormalizeDate(%q) = %q, want %q", i, c.in, got, c.want)
		}
	}
}

func TestNormalizeDate_Rejects(t *testing.T) {
	for _, in := range []string{"", "   ", "tomorrow", "2023/05/01", "2023-13-01"} {
		if got, err := NormalizeDate(in); err == nil {
			t.Fatalf("NormalizeDate(%q) = %q, expected error", in, got)
		}
	}
}

func TestDateOf_TruncatesTime(t *testing.T) {
	ts := time.Date(2023, 5, 1, 23, 59, 59, 999, time.FixedZone("CEST", 2*60*60))
	if got := DateOf(ts); got != "2023-05-01" {
		t.Fatalf("DateOf() = %q, want 2023-05-01", got)
	}
}

func TestFormatDateForDisplay(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "Kein Datum"},
		{"2024-02-15", "15.02.2024"},
		{"invalid", "invalid"},
	}
	for i, c := range cases {
		if got := FormatDateForDisplay(c.in); got != c.want {
			t.Fatalf("case %d: FormatDateForDisplay(%q) = %q, want %q", i, c.in, got, c.want)
		}
	}
}
