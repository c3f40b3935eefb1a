package store

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DefaultThreshold is the minimum similarity for a fuzzy area match
const DefaultThreshold = 80

// Resolution is the outcome of resolving a store name against the area map
type Resolution struct {
	Area    string `json:"area"`
	Matched string `json:"matched"` // the area-map store name that was used
	Score   int    `json:"score"`   // 100 for exact matches
}

// Resolver maps store names to trade areas. Names that are not in the map
// verbatim are matched after normalization and then by similarity.
type Resolver struct {
	areas      map[string]string
	normalized map[string]string // normalized name -> area-map name
	names      []string          // normalized names, sorted
	threshold  int
}

// NewResolver builds a resolver over a store name -> area map. A threshold
// of zero uses DefaultThreshold.
func NewResolver(areas map[string]string, threshold int) *Resolver {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	r := &Resolver{
		areas:      make(map[string]string, len(areas)),
		normalized: make(map[string]string, len(areas)),
		threshold:  threshold,
	}
	for name, area := range areas {
		r.areas[name] = area
		n := normalize(name)
		if prev, ok := r.normalized[n]; !ok || name < prev {
			r.normalized[n] = name
		}
	}
	r.names = make([]string, 0, len(r.normalized))
	for n := range r.normalized {
		r.names = append(r.names, n)
	}
	sort.Strings(r.names)
	return r
}

// Len returns the number of stores in the area map
func (r *Resolver) Len() int {
	return len(r.areas)
}

// Resolve finds the area for a store name
func (r *Resolver) Resolve(name string) (Resolution, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Resolution{}, false
	}

	if area, ok := r.areas[name]; ok {
		return Resolution{Area: area, Matched: name, Score: 100}, true
	}

	n := normalize(name)
	if orig, ok := r.normalized[n]; ok {
		return Resolution{Area: r.areas[orig], Matched: orig, Score: 100}, true
	}

	best, bestScore := "", r.threshold-1
	for _, candidate := range r.names {
		if s := similarity(n, candidate); s > bestScore {
			best, bestScore = candidate, s
		}
	}
	if best == "" {
		return Resolution{}, false
	}

	orig := r.normalized[best]
	return Resolution{Area: r.areas[orig], Matched: orig, Score: bestScore}, true
}

// normalize drops whitespace and folds latin case
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		if unicode.IsSpace(c) {
			continue
		}
		b.WriteRune(unicode.ToUpper(c))
	}
	return b.String()
}

// similarity scores two normalized names from 0 to 100
func similarity(a, b string) int {
	if a == b {
		return 100
	}

	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}
	short, long := min(la, lb), max(la, lb)

	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 75 + 25*short/long
	}

	score := 100 * (long - fuzzy.LevenshteinDistance(a, b)) / long

	// every character of the shorter name appears in order in the longer one
	if fuzzy.Match(shorter(a, b), longer(a, b)) {
		score = max(score, 50+25*short/long)
	}
	return score
}

func shorter(a, b string) string {
	if utf8.RuneCountInString(a) <= utf8.RuneCountInString(b) {
		return a
	}
	return b
}

func longer(a, b string) string {
	if utf8.RuneCountInString(a) > utf8.RuneCountInString(b) {
		return a
	}
	return b
}
