package sensortower

import (
	"testing"
	"time"
)

func TestCurrentWindow(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC)
	w := CurrentWindow(now)

	tests := []struct {
		name string
		got  time.Time
		want string
	}{
		{"End", w.End, "2026-08-28"},
		{"Start", w.Start, "2026-07-30"},
		{"PrevEnd", w.PrevEnd, "2026-07-29"},
		{"PrevStart", w.PrevStart, "2026-06-30"},
	}
	for _, tt := range tests {
		if got := tt.got.Format(DateFormat); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}

	if w.Days() != 30 {
		t.Errorf("Days(): got %d, want 30", w.Days())
	}
}

func TestWindowPeriodsAreAdjacent(t *testing.T) {
	w := CurrentWindow(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))

	if !w.PrevEnd.AddDate(0, 0, 1).Equal(w.Start) {
		t.Errorf("previous period should end the day before the current one starts: prev end %s, start %s",
			w.PrevEnd.Format(DateFormat), w.Start.Format(DateFormat))
	}
	if got := int(w.PrevEnd.Sub(w.PrevStart).Hours()/24) + 1; got != 30 {
		t.Errorf("previous period length: got %d days, want 30", got)
	}
}
