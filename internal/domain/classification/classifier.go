// Package classification derives store type, department brand, region and
// the online flag from a store name.
package classification

import (
	"log/slog"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// StoreInfo is everything derivable from a store name
type StoreInfo struct {
	Type     StoreType `json:"type"`
	Brand    *string   `json:"brand,omitempty"` // department stores only
	Region   string    `json:"region"`
	IsOnline bool      `json:"isOnline"`
}

// BrandName returns the brand or "" when there is none
func (s StoreInfo) BrandName() string {
	if s.Brand == nil {
		return ""
	}
	return *s.Brand
}

// table is one rule table compiled into a single Aho-Corasick automaton.
// Every token maps back to the index of the first rule that lists it.
type table struct {
	matcher *ahocorasick.Matcher
	ruleOf  []int
	rules   []Rule
}

func compile(rules []Rule) *table {
	t := &table{rules: rules}

	seen := make(map[string]struct{})
	var patterns [][]byte
	for i, r := range rules {
		for _, tok := range r.Tokens {
			if tok == "" {
				continue
			}
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			patterns = append(patterns, []byte(tok))
			t.ruleOf = append(t.ruleOf, i)
		}
	}

	if len(patterns) > 0 {
		t.matcher = ahocorasick.NewMatcher(patterns)
	}
	return t
}

// match returns the value of the earliest rule in table order whose token
// occurs in name.
func (t *table) match(name string) (string, bool) {
	if t.matcher == nil {
		return "", false
	}

	best := -1
	for _, idx := range t.matcher.MatchThreadSafe([]byte(name)) {
		if idx < 0 || idx >= len(t.ruleOf) {
			continue
		}
		if r := t.ruleOf[idx]; best < 0 || r < best {
			best = r
		}
	}
	if best < 0 {
		return "", false
	}
	return t.rules[best].Value, true
}

// Classifier matches store names against compiled rule tables. It is safe
// for concurrent use.
type Classifier struct {
	types   *table
	brands  *table
	regions *table
	online  *table
	logger  *slog.Logger
}

// NewClassifier compiles the given rules
func NewClassifier(rules Rules, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		types:   compile(rules.Type),
		brands:  compile(rules.Brand),
		regions: compile(rules.Region),
		online:  compile([]Rule{{Tokens: rules.Online, Value: "online"}}),
		logger:  logger,
	}
}

// Classify derives the store info for a name. Names no rule recognizes land
// in the default buckets.
func (c *Classifier) Classify(name string) StoreInfo {
	info := StoreInfo{Type: TypeOther, Region: RegionOther}

	if v, ok := c.types.match(name); ok {
		info.Type = StoreType(v)
	}

	if info.Type == TypeDepartment {
		if v, ok := c.brands.match(name); ok {
			brand := v
			info.Brand = &brand
		}
	}

	region, ok := c.regions.match(name)
	if ok {
		info.Region = region
	}

	_, info.IsOnline = c.online.match(name)

	if info.Type == TypeOther || !ok {
		c.logger.Debug("store name partially classified",
			slog.String("store", name),
			slog.String("type", string(info.Type)),
			slog.String("region", info.Region),
		)
	}

	return info
}

// ClassifyAll classifies each distinct name once
func (c *Classifier) ClassifyAll(names []string) map[string]StoreInfo {
	out := make(map[string]StoreInfo, len(names))
	for _, n := range names {
		if _, ok := out[n]; ok {
			continue
		}
		out[n] = c.Classify(n)
	}
	return out
}

var defaultClassifier = sync.OnceValue(func() *Classifier {
	return NewClassifier(DefaultRules, slog.Default())
})

// Classify classifies a name with the default rules
func Classify(name string) StoreInfo {
	return defaultClassifier().Classify(name)
}
