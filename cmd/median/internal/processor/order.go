package processor

import (
	"cmp"
	"slices"

	"github.com/shubham-shewale/price-median/pkg/models"
)

// Order sorts observations in place by receive timestamp, then by price.
// The sort is stable, so fully equal observations keep their input order.
func Order(obs []models.Observation) {
	slices.SortStableFunc(obs, func(a, b models.Observation) int {
		if c := cmp.Compare(a.ReceiveTS, b.ReceiveTS); c != 0 {
			return c
		}
		return a.Price.Cmp(b.Price)
	})
}
