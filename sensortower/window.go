package sensortower

import "time"

// DateFormat is the calendar-date layout used in API parameters and row
// date columns.
const DateFormat = "2006-01-02"

const (
	// windowDays is the length of the ranking window.
	windowDays = 30

	// dataDelayDays accounts for the provider publishing estimates roughly
	// three days behind real time.
	dataDelayDays = 3
)

// Window is the trailing date range a ranking is aggregated over, plus the
// equally sized period immediately before it (used by the provider to compute
// deltas and percent changes).
type Window struct {
	Start     time.Time
	End       time.Time
	PrevStart time.Time
	PrevEnd   time.Time
}

// CurrentWindow returns the 30-day window ending at the latest date with
// available data (now minus the provider's data delay).
func CurrentWindow(now time.Time) Window {
	end := now.UTC().AddDate(0, 0, -dataDelayDays)
	start := end.AddDate(0, 0, -(windowDays - 1))
	prevEnd := end.AddDate(0, 0, -windowDays)
	prevStart := prevEnd.AddDate(0, 0, -(windowDays - 1))
	return Window{Start: start, End: end, PrevStart: prevStart, PrevEnd: prevEnd}
}

// Days returns the window length in days.
func (w Window) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}
