// Package sheet resolves logical sheet concepts to the sheet names found in
// a workbook. Exports are hand-edited, so the same content shows up under
// several names ("월별목표", "Monthly", "monthly target" ...).
package sheet

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrSheetNotFound is returned when no sheet matches a concept and the
// concept has no fallback.
var ErrSheetNotFound = errors.New("sheet not found")

// Concept is a logical category of sheet content
type Concept string

const (
	MonthlyTarget    Concept = "monthly_target"
	WeeklySales      Concept = "weekly_sales"
	Summary          Concept = "summary"
	StorePerformance Concept = "store_performance"
	StoreArea        Concept = "store_area"
	WeeklyMeeting    Concept = "weekly_meeting"
	SalesReport      Concept = "sales_report"
)

// Fallback decides what happens when neither pass matches
type Fallback int

const (
	// FallbackNone reports ErrSheetNotFound.
	FallbackNone Fallback = iota
	// FallbackFirstSheet resolves to the first sheet in workbook order.
	FallbackFirstSheet
)

// Aliases lists the names a concept is known by
type Aliases struct {
	Exact      []string
	Substrings []string
	Fallback   Fallback
}

// DefaultAliases is the alias table for the workbook exports in use.
// Entries are data; add a name here rather than special-casing a caller.
var DefaultAliases = map[Concept]Aliases{
	MonthlyTarget: {
		Exact:      []string{"월별목표", "월별", "Monthly", "monthly", "Monthly Target"},
		Substrings: []string{"월별", "목표", "Monthly"},
		Fallback:   FallbackFirstSheet,
	},
	WeeklySales: {
		Exact:      []string{"주차별매출", "주차별", "Weekly", "weekly", "Week"},
		Substrings: []string{"주차", "Weekly", "Week"},
	},
	Summary: {
		Exact:      []string{"요약", "Summary", "summary", "總結"},
		Substrings: []string{"요약", "Summary"},
		Fallback:   FallbackFirstSheet,
	},
	StorePerformance: {
		Exact:      []string{"11월실적", "11월 실적", "November", "november"},
		Substrings: []string{"11월"},
	},
	StoreArea: {
		Exact:      []string{"상권구분", "매장상권", "Store Area"},
		Substrings: []string{"상권"},
	},
	WeeklyMeeting: {
		Exact: []string{"주간회의"},
	},
	SalesReport: {
		Exact:    []string{"report"},
		Fallback: FallbackFirstSheet,
	},
}

// Locator finds the sheet for a concept
type Locator struct {
	aliases map[Concept]Aliases
}

// NewLocator creates a locator over the given alias table. A nil table
// uses DefaultAliases.
func NewLocator(aliases map[Concept]Aliases) *Locator {
	if aliases == nil {
		aliases = DefaultAliases
	}
	return &Locator{aliases: aliases}
}

// Locate returns the sheet for concept using the concept's configured fallback.
func (l *Locator) Locate(sheetNames []string, concept Concept) (string, error) {
	return l.LocateWithFallback(sheetNames, concept, l.aliases[concept].Fallback)
}

// LocateWithFallback tries exact aliases, then substrings, then the fallback.
// Within a pass the first sheet in workbook order wins.
func (l *Locator) LocateWithFallback(sheetNames []string, concept Concept, fallback Fallback) (string, error) {
	a, ok := l.aliases[concept]
	if !ok {
		return "", fmt.Errorf("%w: unknown concept %q", ErrSheetNotFound, concept)
	}

	for _, name := range sheetNames {
		for _, alias := range a.Exact {
			if equalAlias(name, alias) {
				return name, nil
			}
		}
	}

	for _, name := range sheetNames {
		for _, sub := range a.Substrings {
			if containsAlias(name, sub) {
				return name, nil
			}
		}
	}

	if fallback == FallbackFirstSheet && len(sheetNames) > 0 {
		return sheetNames[0], nil
	}

	return "", fmt.Errorf("%w: %s", ErrSheetNotFound, concept)
}

// Locate resolves concept against DefaultAliases.
func Locate(sheetNames []string, concept Concept) (string, error) {
	return defaultLocator.Locate(sheetNames, concept)
}

var defaultLocator = NewLocator(nil)

// Latin aliases compare case-insensitively, everything else as written.
func equalAlias(name, alias string) bool {
	name = strings.TrimSpace(name)
	if isLatin(alias) {
		return strings.EqualFold(name, alias)
	}
	return name == alias
}

func containsAlias(name, alias string) bool {
	if isLatin(alias) {
		return strings.Contains(strings.ToLower(name), strings.ToLower(alias))
	}
	return strings.Contains(name, alias)
}

func isLatin(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
