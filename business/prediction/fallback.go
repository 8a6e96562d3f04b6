package prediction

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"

	"timele/domain"
)

const (
	fallbackDeptCount  = 3
	fallbackPopularMax = 50

	deptScoreMin = 0.1
	deptScoreMax = 1.0

	// lower-confidence bands signal a weaker basis to downstream consumers
	popularScoreMin = 0.2
	popularScoreMax = 0.7

	exhaustedScoreMin = 0.3
	exhaustedScoreMax = 0.7

	deptJitterSpan = 0.25
)

// FallbackRecommender is the rule-based tier used when the learned pipeline
// is unavailable or under-confident. It holds no state: every call derives
// its ordering from the history snapshot and per-user seeded jitter, so
// repeated calls for the same user are identical.
type FallbackRecommender struct{}

func NewFallbackRecommender() *FallbackRecommender {
	return &FallbackRecommender{}
}

type fallbackScored struct {
	product domain.Product
	score   float64
}

// Recommend builds a rule-based basket: unpurchased products from the
// user's top departments, scored by department share plus deterministic
// jitter. Users without history get popular products instead, and an
// unavailable catalog yields an empty basket rather than an error.
//
// The returned basket carries the full ranked id list; the scored slice is
// the offset/limit page of it.
func (f *FallbackRecommender) Recommend(
	userID uint,
	history []domain.HistoricalBasket,
	catalog []domain.Product,
	limit int,
	offset int,
) (domain.PredictedBasket, []domain.ScoredPrediction, int) {

	basket := domain.PredictedBasket{
		UserID:     userID,
		ProductIDs: []uint64{},
		Source:     domain.SourceRuleBased,
	}

	if len(catalog) == 0 {
		return basket, []domain.ScoredPrediction{}, 0
	}

	var scored []fallbackScored
	if len(history) == 0 {
		scored = f.popularProducts(userID, catalog, popularScoreMin, popularScoreMax)
	} else {
		scored = f.departmentProducts(userID, history, catalog)
		if len(scored) == 0 {
			// the user already bought everything their departments offer
			scored = f.popularProducts(userID, catalog, exhaustedScoreMin, exhaustedScoreMax)
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score == scored[j].score {
			return scored[i].product.ID < scored[j].product.ID
		}
		return scored[i].score > scored[j].score
	})

	total := len(scored)

	ids := make([]uint64, 0, total)
	for _, sc := range scored {
		ids = append(ids, sc.product.ID)
	}
	basket.ProductIDs = ids

	page := paginateScored(scored, limit, offset)

	out := make([]domain.ScoredPrediction, 0, len(page))
	for _, sc := range page {
		out = append(out, domain.ScoredPrediction{
			ProductID:   sc.product.ID,
			ProductName: sc.product.ProductName,
			Score:       sc.score,
		})
	}

	return basket, out, total
}

// departmentProducts scores catalog products the user has not yet bought
// from their top departments by purchase frequency.
func (f *FallbackRecommender) departmentProducts(
	userID uint,
	history []domain.HistoricalBasket,
	catalog []domain.Product,
) []fallbackScored {

	byID := make(map[uint64]domain.Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}

	purchased := make(map[uint64]bool)
	deptCount := make(map[uint64]int)
	totalPurchases := 0

	for _, b := range history {
		for _, item := range b.Items {
			purchased[item.ProductID] = true
			p, ok := byID[item.ProductID]
			if !ok {
				continue
			}
			deptCount[p.DepartmentID]++
			totalPurchases++
		}
	}

	if totalPurchases == 0 {
		return nil
	}

	topDepts := topDepartments(deptCount, fallbackDeptCount)

	share := make(map[uint64]float64, len(topDepts))
	for _, dept := range topDepts {
		share[dept] = float64(deptCount[dept]) / float64(totalPurchases)
	}

	scored := make([]fallbackScored, 0, len(catalog))
	for _, p := range catalog {
		deptShare, ok := share[p.DepartmentID]
		if !ok || purchased[p.ID] {
			continue
		}

		rng := rand.New(rand.NewSource(pairSeed(userID, p.ID)))
		score := clampScore(deptShare+rng.Float64()*deptJitterSpan, deptScoreMin, deptScoreMax)

		scored = append(scored, fallbackScored{product: p, score: score})
	}

	return scored
}

// popularProducts takes the first N catalog products in catalog order with
// uniform scores in [lo, hi], jittered by a PRNG seeded from the user alone.
func (f *FallbackRecommender) popularProducts(
	userID uint,
	catalog []domain.Product,
	lo float64,
	hi float64,
) []fallbackScored {

	n := len(catalog)
	if n > fallbackPopularMax {
		n = fallbackPopularMax
	}

	rng := rand.New(rand.NewSource(userSeed(userID)))

	scored := make([]fallbackScored, 0, n)
	for _, p := range catalog[:n] {
		score := clampScore(lo+rng.Float64()*(hi-lo), lo, hi)
		scored = append(scored, fallbackScored{product: p, score: score})
	}

	return scored
}

func topDepartments(deptCount map[uint64]int, n int) []uint64 {
	depts := make([]uint64, 0, len(deptCount))
	for dept := range deptCount {
		depts = append(depts, dept)
	}

	sort.Slice(depts, func(i, j int) bool {
		if deptCount[depts[i]] == deptCount[depts[j]] {
			return depts[i] < depts[j]
		}
		return deptCount[depts[i]] > deptCount[depts[j]]
	})

	if len(depts) > n {
		depts = depts[:n]
	}
	return depts
}

func paginateScored(scored []fallbackScored, limit, offset int) []fallbackScored {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	if offset >= len(scored) {
		return nil
	}
	end := offset + limit
	if end > len(scored) {
		end = len(scored)
	}
	return scored[offset:end]
}

// pairSeed hashes (user, product) into a stable PRNG seed so jitter is
// reproducible across calls.
func pairSeed(userID uint, productID uint64) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("user:%d|prod:%d", userID, productID)))
	return int64(h.Sum64())
}

func userSeed(userID uint) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("user:%d", userID)))
	return int64(h.Sum64())
}
