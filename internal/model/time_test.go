package model

import (
	"testing"
	"time"
)

func TestTimestamp_FixedWidthFraction(t *testing.T) {
	// ナノ秒がゼロでも小数部9桁を維持する
	ts := Timestamp(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	want := "2026-03-01T12:00:00.000000000Z"
	if ts != want {
		t.Errorf("Timestamp = %q, want %q", ts, want)
	}
}

func TestTimestamp_LexicalOrderMatchesChronological(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 500_000_000, time.UTC)
	times := []time.Time{
		base,
		base.Add(time.Nanosecond),
		base.Add(time.Millisecond),
		base.Add(time.Second),
		base.Add(time.Hour),
	}

	for i := 1; i < len(times); i++ {
		earlier := Timestamp(times[i-1])
		later := Timestamp(times[i])
		if !(earlier < later) {
			t.Errorf("lexical order broken: %q should sort before %q", earlier, later)
		}
	}
}

func TestParseTimestamp_RoundTrip(t *testing.T) {
	orig := time.Date(2026, 3, 1, 12, 34, 56, 789_000_000, time.UTC)

	parsed, err := ParseTimestamp(Timestamp(orig))
	if err != nil {
		t.Fatalf("ParseTimestamp() error = %v", err)
	}
	if !parsed.Equal(orig) {
		t.Errorf("round trip = %v, want %v", parsed, orig)
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	if _, err := ParseTimestamp("2026/03/01"); err == nil {
		t.Error("ParseTimestamp should reject malformed input")
	}
}
