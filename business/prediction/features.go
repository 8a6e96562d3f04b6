package prediction

import (
	"timele/domain"
)

type featureAgg struct {
	orderCount int
	reorderSum int
}

// BuildFeatures computes one FeatureVector per candidate product from the
// user's order history. When universe is empty the candidate universe is
// every product the user has ever purchased; an explicit universe bounds
// the candidates instead.
//
// Featurization never fails: sparse or empty histories simply produce fewer
// (or zero) vectors, which downstream reads as "go rule-based".
func BuildFeatures(userID uint, history []domain.HistoricalBasket, universe []uint64) []domain.FeatureVector {
	if len(history) == 0 {
		return nil
	}

	explicit := len(universe) > 0

	aggs := make(map[uint64]*featureAgg)
	order := make([]uint64, 0, len(universe))

	for _, pid := range universe {
		if _, ok := aggs[pid]; ok {
			continue
		}
		aggs[pid] = &featureAgg{}
		order = append(order, pid)
	}

	for _, basket := range history {
		// a product counts once per basket even if the row is duplicated
		seen := make(map[uint64]bool, len(basket.Items))
		for _, item := range basket.Items {
			agg, ok := aggs[item.ProductID]
			if !ok {
				if explicit {
					continue
				}
				agg = &featureAgg{}
				aggs[item.ProductID] = agg
				order = append(order, item.ProductID)
			}
			if !seen[item.ProductID] {
				agg.orderCount++
				seen[item.ProductID] = true
			}
			if item.Reordered {
				agg.reorderSum++
			}
		}
	}

	out := make([]domain.FeatureVector, 0, len(order))
	for _, pid := range order {
		agg := aggs[pid]
		rate := 0.0
		if agg.orderCount > 0 {
			rate = float64(agg.reorderSum) / float64(agg.orderCount)
		}
		// duplicated reorder rows can push the ratio past 1; keep it in range
		if rate < 0 {
			rate = 0
		} else if rate > 1 {
			rate = 1
		}

		out = append(out, domain.FeatureVector{
			UserID:      userID,
			ProductID:   pid,
			OrderCount:  agg.orderCount,
			ReorderSum:  agg.reorderSum,
			ReorderRate: rate,
		})
	}

	return out
}
