package catalog

import (
	"encoding/json"
	"sort"
)

const (
	minScore = 1.0
	maxScore = 10.0
)

// Score is a product's popularity relative to the rest of the catalog.
// It encodes to JSON as the pair [name, score].
type Score struct {
	Name  string
	Score float64
}

func (s Score) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{s.Name, s.Score})
}

// ComputeScores min-max scales product_sales into [1, 10] and returns the
// scores highest first. Equal scores keep the input order. When every product
// has the same sales, all of them score 10.
func ComputeScores(products []*Product) ([]Score, error) {
	if len(products) == 0 {
		return nil, ErrEmpty
	}

	minSales, maxSales := products[0].ProductSales, products[0].ProductSales
	for _, p := range products[1:] {
		if p.ProductSales < minSales {
			minSales = p.ProductSales
		}
		if p.ProductSales > maxSales {
			maxSales = p.ProductSales
		}
	}

	scores := make([]Score, len(products))
	for i, p := range products {
		score := maxScore
		if maxSales != minSales {
			score = minScore + float64(p.ProductSales-minSales)*(maxScore-minScore)/float64(maxSales-minSales)
		}
		scores[i] = Score{Name: p.Name, Score: score}
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	return scores, nil
}
