package aggregation

import (
	"time"
)

// WindowKind selects the calendar span of a Window
type WindowKind string

const (
	WindowAll        WindowKind = "all"
	WindowDaily      WindowKind = "daily"
	WindowWeekly     WindowKind = "weekly" // Monday to Sunday
	WindowMonthly    WindowKind = "monthly"
	WindowYearToDate WindowKind = "ytd"
)

// ParseWindowKind validates a window name. An empty name is WindowAll.
func ParseWindowKind(s string) (WindowKind, bool) {
	switch k := WindowKind(s); k {
	case "":
		return WindowAll, true
	case WindowAll, WindowDaily, WindowWeekly, WindowMonthly, WindowYearToDate:
		return k, true
	}
	return "", false
}

// Window is a span of days ending at or containing Anchor
type Window struct {
	Kind   WindowKind
	Anchor time.Time
}

const isoDate = "2006-01-02"

// Range returns the first and last day of the window, inclusive
func (w Window) Range() (start, end time.Time) {
	a := time.Date(w.Anchor.Year(), w.Anchor.Month(), w.Anchor.Day(), 0, 0, 0, 0, time.UTC)

	switch w.Kind {
	case WindowDaily:
		return a, a
	case WindowWeekly:
		offset := (int(a.Weekday()) + 6) % 7
		start = a.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 6)
	case WindowMonthly:
		start = time.Date(a.Year(), a.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, -1)
	case WindowYearToDate:
		return time.Date(a.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), a
	}
	return time.Time{}, time.Time{}
}

// Contains reports whether an ISO date falls inside the window
func (w Window) Contains(date string) bool {
	if w.Kind == WindowAll || w.Kind == "" {
		return true
	}
	d, err := time.Parse(isoDate, date)
	if err != nil {
		return false
	}
	start, end := w.Range()
	return !d.Before(start) && !d.After(end)
}

// String renders the window for cache keys and logs
func (w Window) String() string {
	if w.Kind == WindowAll || w.Kind == "" {
		return string(WindowAll)
	}
	return string(w.Kind) + "@" + w.Anchor.Format(isoDate)
}

// FilterWindow narrows every line to the days inside w. Line totals are
// scaled by the share of the line's quantity sold inside the window, so a
// line with no sales in the window is kept with zero totals.
func FilterWindow(lines []Line, w Window) []Line {
	out := make([]Line, len(lines))
	if w.Kind == WindowAll || w.Kind == "" {
		copy(out, lines)
		return out
	}

	for i, l := range lines {
		daily := make(map[string]float64)
		var qty float64
		for d, q := range l.DailyQuantity {
			if w.Contains(d) {
				daily[d] = q
				qty += q
			}
		}

		var f float64
		if l.TotalQuantity != 0 {
			f = qty / l.TotalQuantity
		}

		nl := l
		nl.DailyQuantity = daily
		nl.TotalQuantity = qty
		nl.TotalSales = l.TotalSales * f
		nl.TotalTagPrice = l.TotalTagPrice * f
		nl.NormalQuantity = l.NormalQuantity * f
		nl.NormalSales = l.NormalSales * f
		nl.NormalTagPrice = l.NormalTagPrice * f
		nl.ReturnQuantity = l.ReturnQuantity * f
		nl.ReturnSales = l.ReturnSales * f
		nl.ReturnTagPrice = l.ReturnTagPrice * f
		out[i] = nl
	}
	return out
}
