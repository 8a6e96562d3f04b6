package prediction

import (
	"timele/domain"
)

// DefaultLadder is the probability ladder the stage-2 artifact was trained
// against. Changing it requires retraining both stages.
var DefaultLadder = []float64{0.2, 0.3, 0.4}

// BuildThresholdBaskets filters stage-1 scores into one candidate basket per
// ladder rung. Inclusion is strict probability > threshold; a score exactly
// equal to the threshold stays out. Empty rungs get zeroed meta stats so the
// stage-2 input vector keeps its shape.
func BuildThresholdBaskets(scores []domain.CandidateScore, ladder []float64) []domain.ThresholdBasket {
	baskets := make([]domain.ThresholdBasket, 0, len(ladder))

	for _, tau := range ladder {
		ids := make([]uint64, 0, len(scores))
		sum := 0.0
		maxP := 0.0
		minP := 0.0

		for _, sc := range scores {
			if sc.Probability > tau {
				if len(ids) == 0 {
					maxP = sc.Probability
					minP = sc.Probability
				} else {
					if sc.Probability > maxP {
						maxP = sc.Probability
					}
					if sc.Probability < minP {
						minP = sc.Probability
					}
				}
				ids = append(ids, sc.ProductID)
				sum += sc.Probability
			}
		}

		meta := domain.BasketMeta{}
		if len(ids) > 0 {
			meta = domain.BasketMeta{
				Mean: sum / float64(len(ids)),
				Max:  maxP,
				Min:  minP,
			}
		}

		baskets = append(baskets, domain.ThresholdBasket{
			Threshold:  tau,
			ProductIDs: ids,
			Meta:       meta,
		})
	}

	return baskets
}

// FlattenMeta concatenates each rung's (mean, max, min) triple in ladder
// order. This layout is a frozen contract with the stage-2 artifact.
func FlattenMeta(baskets []domain.ThresholdBasket) []float64 {
	out := make([]float64, 0, 3*len(baskets))
	for _, b := range baskets {
		out = append(out, b.Meta.Mean, b.Meta.Max, b.Meta.Min)
	}
	return out
}

func allEmpty(baskets []domain.ThresholdBasket) bool {
	for _, b := range baskets {
		if len(b.ProductIDs) > 0 {
			return false
		}
	}
	return true
}

// clampIndex guards against a stage-2 artifact trained on a different
// ladder size.
func clampIndex(idx, n int) int {
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}
