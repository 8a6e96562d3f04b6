package prediction

import (
	"reflect"
	"testing"

	"timele/domain"
)

func fallbackCatalog() []domain.Product {
	return []domain.Product{
		{ID: 1, ProductName: "banana", DepartmentID: 1},
		{ID: 2, ProductName: "apple", DepartmentID: 1},
		{ID: 3, ProductName: "milk", DepartmentID: 2},
		{ID: 4, ProductName: "yogurt", DepartmentID: 2},
		{ID: 5, ProductName: "bread", DepartmentID: 3},
		{ID: 6, ProductName: "bagel", DepartmentID: 3},
		{ID: 7, ProductName: "soap", DepartmentID: 4},
	}
}

func fallbackHistory() []domain.HistoricalBasket {
	return []domain.HistoricalBasket{
		{
			OrderNumber: 1,
			Items: []domain.BasketItem{
				{ProductID: 1}, {ProductID: 3},
			},
		},
		{
			OrderNumber: 2,
			Items: []domain.BasketItem{
				{ProductID: 1, Reordered: true}, {ProductID: 5},
			},
		},
	}
}

func TestFallback_Deterministic(t *testing.T) {
	f := NewFallbackRecommender()

	basket1, preds1, total1 := f.Recommend(42, fallbackHistory(), fallbackCatalog(), 10, 0)
	basket2, preds2, total2 := f.Recommend(42, fallbackHistory(), fallbackCatalog(), 10, 0)

	if !reflect.DeepEqual(basket1.ProductIDs, basket2.ProductIDs) {
		t.Errorf("ordering must be reproducible: %v vs %v", basket1.ProductIDs, basket2.ProductIDs)
	}
	if !reflect.DeepEqual(preds1, preds2) {
		t.Errorf("scores must be reproducible: %v vs %v", preds1, preds2)
	}
	if total1 != total2 {
		t.Errorf("totals differ: %d vs %d", total1, total2)
	}
}

func TestFallback_DepartmentPath(t *testing.T) {
	f := NewFallbackRecommender()

	basket, preds, total := f.Recommend(42, fallbackHistory(), fallbackCatalog(), 10, 0)

	if basket.Source != domain.SourceRuleBased {
		t.Fatalf("source = %v, want rule_based", basket.Source)
	}
	if total == 0 {
		t.Fatal("expected candidates from purchased departments")
	}

	purchased := map[uint64]bool{1: true, 3: true, 5: true}
	for _, p := range preds {
		if purchased[p.ProductID] {
			t.Errorf("already-purchased product %d must not be recommended", p.ProductID)
		}
		if p.ProductID == 7 {
			t.Errorf("product from an unvisited department must not appear")
		}
		if p.Score < 0.1 || p.Score > 1.0 {
			t.Errorf("department-path score %v outside [0.1, 1.0]", p.Score)
		}
		if p.ProductName == "" {
			t.Errorf("product %d missing catalog name", p.ProductID)
		}
	}

	for i := 1; i < len(preds); i++ {
		if preds[i].Score > preds[i-1].Score {
			t.Errorf("fallback output must be sorted by score desc")
		}
	}
}

func TestFallback_NoHistoryPopularBand(t *testing.T) {
	f := NewFallbackRecommender()

	basket, preds, total := f.Recommend(9, nil, fallbackCatalog(), 10, 0)

	if basket.Source != domain.SourceRuleBased {
		t.Fatalf("source = %v, want rule_based", basket.Source)
	}
	if total != len(fallbackCatalog()) {
		t.Errorf("popular path should cover the catalog head, total=%d", total)
	}
	for _, p := range preds {
		if p.Score < 0.2 || p.Score > 0.7 {
			t.Errorf("no-history score %v outside [0.2, 0.7]", p.Score)
		}
	}
}

func TestFallback_ExhaustedDepartmentsBand(t *testing.T) {
	f := NewFallbackRecommender()

	// the user has bought every product of every department they shop in
	catalog := []domain.Product{
		{ID: 1, ProductName: "banana", DepartmentID: 1},
		{ID: 2, ProductName: "milk", DepartmentID: 2},
	}
	history := []domain.HistoricalBasket{
		{OrderNumber: 1, Items: []domain.BasketItem{{ProductID: 1}, {ProductID: 2}}},
	}

	_, preds, total := f.Recommend(5, history, catalog, 10, 0)
	if total == 0 {
		t.Fatal("exhausted departments must fall back to popular products, not empty")
	}
	for _, p := range preds {
		if p.Score < 0.3 || p.Score > 0.7 {
			t.Errorf("exhausted-path score %v outside [0.3, 0.7]", p.Score)
		}
	}
}

func TestFallback_EmptyCatalog(t *testing.T) {
	f := NewFallbackRecommender()

	basket, preds, total := f.Recommend(1, fallbackHistory(), nil, 10, 0)

	if basket.Source != domain.SourceRuleBased {
		t.Errorf("source must still be set on the empty basket")
	}
	if len(basket.ProductIDs) != 0 || len(preds) != 0 || total != 0 {
		t.Errorf("empty catalog must yield an empty, well-formed basket")
	}
}

func TestFallback_Pagination(t *testing.T) {
	f := NewFallbackRecommender()

	basket, page, total := f.Recommend(42, nil, fallbackCatalog(), 2, 3)

	if total != len(fallbackCatalog()) {
		t.Errorf("total must be pre-pagination size, got %d", total)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 rows for limit=2, got %d", len(page))
	}
	if page[0].ProductID != basket.ProductIDs[3] || page[1].ProductID != basket.ProductIDs[4] {
		t.Errorf("page must match the ranked list slice: page=%v ranked=%v", page, basket.ProductIDs)
	}

	_, empty, _ := f.Recommend(42, nil, fallbackCatalog(), 5, 100)
	if len(empty) != 0 {
		t.Errorf("offset past the end must yield an empty page")
	}
}
