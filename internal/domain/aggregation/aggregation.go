// Package aggregation groups classified sales lines into buckets with
// shares and ranks. It has no calendar logic of its own; callers narrow the
// lines to a time window with FilterWindow first.
package aggregation

import (
	"sort"

	"github.com/FACorreiaa/sales-dashboard/internal/domain/classification"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/parser"
)

// Line is a sales line with its store classification
type Line struct {
	parser.SalesLine
	Store classification.StoreInfo
}

// Classify attaches store info to each sales line
func Classify(c *classification.Classifier, lines []parser.SalesLine) []Line {
	names := make([]string, len(lines))
	for i, l := range lines {
		names[i] = l.StoreName
	}
	infos := c.ClassifyAll(names)

	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = Line{SalesLine: l, Store: infos[l.StoreName]}
	}
	return out
}

// Dimension is a grouping key
type Dimension string

const (
	DimensionStore   Dimension = "store"
	DimensionType    Dimension = "type"
	DimensionBrand   Dimension = "brand"
	DimensionRegion  Dimension = "region"
	DimensionItem    Dimension = "item"
	DimensionSeason  Dimension = "season"
	DimensionProduct Dimension = "product"
	DimensionChannel Dimension = "channel"
)

// Dimensions lists every dimension Aggregate accepts
var Dimensions = []Dimension{
	DimensionStore, DimensionType, DimensionBrand, DimensionRegion,
	DimensionItem, DimensionSeason, DimensionProduct,
}

// ParseDimension validates a dimension name
func ParseDimension(s string) (Dimension, bool) {
	for _, d := range Dimensions {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}

// Bucket is one group of an aggregation pass. Share is a percentage of the
// pass's grand total and is only set once every line has been accumulated.
type Bucket struct {
	Dimension        Dimension `json:"dimension" csv:"dimension"`
	Key              string    `json:"key" csv:"key"`
	Label            string    `json:"label" csv:"label"`
	Sales            float64   `json:"sales" csv:"sales"`
	Quantity         float64   `json:"quantity" csv:"quantity"`
	MemberCount      int       `json:"memberCount" csv:"member_count"` // distinct stores
	Share            float64   `json:"share" csv:"share"`
	Rank             int       `json:"rank" csv:"rank"`
	AveragePerMember float64   `json:"averagePerMember" csv:"average_per_member"`

	// store dimension only
	StoreType   string `json:"storeType,omitempty" csv:"-"`
	StoreBrand  string `json:"storeBrand,omitempty" csv:"-"`
	StoreRegion string `json:"storeRegion,omitempty" csv:"-"`
}

type accumulator struct {
	bucket  *Bucket
	members map[string]struct{}
}

// key returns the bucket key and label of a line for dim. ok is false when
// the line does not belong to any bucket of the dimension.
func key(l Line, dim Dimension) (k, label string, ok bool) {
	switch dim {
	case DimensionStore:
		return l.StoreCode, l.StoreName, true
	case DimensionType:
		return string(l.Store.Type), classification.TypeLabel(l.Store.Type), true
	case DimensionBrand:
		if l.Store.Type != classification.TypeDepartment || l.Store.Brand == nil {
			return "", "", false
		}
		return *l.Store.Brand, *l.Store.Brand, true
	case DimensionRegion:
		r := l.Store.Region
		if r == "" {
			r = classification.RegionOther
		}
		return r, r, true
	case DimensionItem:
		return l.Item, l.Item, true
	case DimensionSeason:
		return l.Season, l.Season, true
	case DimensionProduct:
		return l.ProductCode, l.ProductName, true
	case DimensionChannel:
		if l.Store.IsOnline {
			return "online", "온라인", true
		}
		return "offline", "오프라인", true
	}
	return "", "", false
}

// Aggregate groups lines along dim in a single pass, then computes shares
// against the total sales of every line, then ranks by sales descending.
// Ties keep first-seen order.
//
// The brand dimension only holds department stores with a brand, so its
// shares may sum to less than 100.
func Aggregate(lines []Line, dim Dimension) []Bucket {
	var total float64
	order := make([]*accumulator, 0)
	byKey := make(map[string]*accumulator)

	for _, l := range lines {
		total += l.TotalSales

		k, label, ok := key(l, dim)
		if !ok {
			continue
		}

		acc, exists := byKey[k]
		if !exists {
			acc = &accumulator{
				bucket:  &Bucket{Dimension: dim, Key: k, Label: label},
				members: make(map[string]struct{}),
			}
			if dim == DimensionStore {
				acc.bucket.StoreType = classification.TypeLabel(l.Store.Type)
				acc.bucket.StoreBrand = l.Store.BrandName()
				acc.bucket.StoreRegion = l.Store.Region
			}
			byKey[k] = acc
			order = append(order, acc)
		}

		acc.bucket.Sales += l.TotalSales
		acc.bucket.Quantity += l.TotalQuantity
		acc.members[l.StoreCode] = struct{}{}
	}

	buckets := make([]Bucket, len(order))
	for i, acc := range order {
		b := *acc.bucket
		b.MemberCount = len(acc.members)
		if total != 0 {
			b.Share = b.Sales / total * 100
		}
		if b.MemberCount > 0 {
			b.AveragePerMember = b.Sales / float64(b.MemberCount)
		}
		buckets[i] = b
	}

	rank(buckets)
	return buckets
}

func rank(buckets []Bucket) {
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Sales > buckets[j].Sales
	})
	for i := range buckets {
		buckets[i].Rank = i + 1
	}
}

// TopN returns the first n buckets of a fully ranked set. n <= 0 returns
// all of them.
func TopN(buckets []Bucket, n int) []Bucket {
	if n <= 0 || n > len(buckets) {
		n = len(buckets)
	}
	out := make([]Bucket, n)
	copy(out, buckets[:n])
	return out
}

// Split is the online/offline breakdown
type Split struct {
	Online  Bucket `json:"online"`
	Offline Bucket `json:"offline"`
}

// OnlineOffline splits sales by the store online flag. Both sides are
// always present.
func OnlineOffline(lines []Line) Split {
	split := Split{
		Online:  Bucket{Dimension: DimensionChannel, Key: "online", Label: "온라인"},
		Offline: Bucket{Dimension: DimensionChannel, Key: "offline", Label: "오프라인"},
	}
	for _, b := range Aggregate(lines, DimensionChannel) {
		if b.Key == "online" {
			split.Online = b
		} else {
			split.Offline = b
		}
	}
	return split
}
