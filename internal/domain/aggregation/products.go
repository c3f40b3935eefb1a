package aggregation

import "sort"

// ProductStat is the total of one product across every store
type ProductStat struct {
	ProductCode string  `json:"productCode" csv:"product_code"`
	ProductName string  `json:"productName" csv:"product_name"`
	Item        string  `json:"item" csv:"item"`
	Season      string  `json:"season" csv:"season"`
	Quantity    float64 `json:"quantity" csv:"quantity"`
	Sales       float64 `json:"sales" csv:"sales"`
	StoreCount  int     `json:"storeCount" csv:"store_count"`
}

// Products totals lines by product code in first-seen order. Name, item and
// season come from the first line of each product.
func Products(lines []Line) []ProductStat {
	out := make([]ProductStat, 0)
	idx := make(map[string]int)
	stores := make([]map[string]struct{}, 0)

	for _, l := range lines {
		i, ok := idx[l.ProductCode]
		if !ok {
			i = len(out)
			idx[l.ProductCode] = i
			out = append(out, ProductStat{
				ProductCode: l.ProductCode,
				ProductName: l.ProductName,
				Item:        l.Item,
				Season:      l.Season,
			})
			stores = append(stores, make(map[string]struct{}))
		}
		out[i].Quantity += l.TotalQuantity
		out[i].Sales += l.TotalSales
		stores[i][l.StoreCode] = struct{}{}
	}

	for i := range out {
		out[i].StoreCount = len(stores[i])
	}
	return out
}

// BestSellers returns the n products with the highest quantity. n <= 0
// returns every product.
func BestSellers(lines []Line, n int) []ProductStat {
	products := Products(lines)
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Quantity > products[j].Quantity
	})
	return limit(products, n)
}

// WorstSellers returns the n products with the lowest quantity. Products
// that sold nothing are included.
func WorstSellers(lines []Line, n int) []ProductStat {
	products := Products(lines)
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Quantity < products[j].Quantity
	})
	return limit(products, n)
}

func limit(products []ProductStat, n int) []ProductStat {
	if n > 0 && n < len(products) {
		return products[:n]
	}
	return products
}
