package prediction

import (
	"timele/domain"
)

const (
	maxDecayScore = 0.9
	minDecayScore = 0.1
	neutralScore  = 0.5
)

// ToScored converts a rank-ordered id list (as produced by the ML tier,
// which carries no native scores) into a paginated, catalog-enriched page.
//
// Scores decay linearly over the ORIGINAL pre-pagination list: rank 0 gets
// 0.9, the last rank gets 0.1, a single-item list gets 0.9. Products missing
// from the catalog keep their slot with a neutral 0.5 so rank integrity
// survives partial enrichment.
func ToScored(productIDs []uint64, limit, offset int, catalog map[uint64]domain.Product) []domain.ScoredPrediction {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	total := len(productIDs)
	if offset >= total {
		return []domain.ScoredPrediction{}
	}

	end := offset + limit
	if end > total {
		end = total
	}

	out := make([]domain.ScoredPrediction, 0, end-offset)
	for i := offset; i < end; i++ {
		pid := productIDs[i]

		p, ok := catalog[pid]
		if !ok {
			out = append(out, domain.ScoredPrediction{
				ProductID: pid,
				Score:     neutralScore,
			})
			continue
		}

		out = append(out, domain.ScoredPrediction{
			ProductID:   pid,
			ProductName: p.ProductName,
			Score:       decayScore(i, total),
		})
	}

	return out
}

// decayScore interpolates [0.9, 0.1] over absolute rank in a list of the
// given total length.
func decayScore(rank, total int) float64 {
	if total <= 1 {
		return maxDecayScore
	}

	s := maxDecayScore - (float64(rank)/float64(total-1))*(maxDecayScore-minDecayScore)

	return clampScore(s, minDecayScore, maxDecayScore)
}

func clampScore(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
