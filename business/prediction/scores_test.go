package prediction

import (
	"math"
	"testing"

	"timele/domain"
)

func testCatalog(ids ...uint64) map[uint64]domain.Product {
	m := make(map[uint64]domain.Product, len(ids))
	for _, id := range ids {
		m[id] = domain.Product{ID: id, ProductName: "p"}
	}
	return m
}

func TestToScored_DecayEndpoints(t *testing.T) {
	ids := []uint64{10, 20, 30, 40, 50}
	catalog := testCatalog(ids...)

	out := ToScored(ids, len(ids), 0, catalog)
	if len(out) != len(ids) {
		t.Fatalf("expected %d rows, got %d", len(ids), len(out))
	}

	if math.Abs(out[0].Score-0.9) > 1e-9 {
		t.Errorf("first rank score = %v, want 0.9", out[0].Score)
	}
	if math.Abs(out[len(out)-1].Score-0.1) > 1e-9 {
		t.Errorf("last rank score = %v, want 0.1", out[len(out)-1].Score)
	}

	for i := 1; i < len(out); i++ {
		if out[i].Score > out[i-1].Score {
			t.Errorf("scores must be non-increasing: rank %d (%v) > rank %d (%v)",
				i, out[i].Score, i-1, out[i-1].Score)
		}
	}
}

func TestToScored_SingleItem(t *testing.T) {
	out := ToScored([]uint64{7}, 10, 0, testCatalog(7))
	if len(out) != 1 {
		t.Fatalf("expected 1 row, got %d", len(out))
	}
	if out[0].Score != 0.9 {
		t.Errorf("single item score = %v, want 0.9", out[0].Score)
	}
}

func TestToScored_Pagination(t *testing.T) {
	ids := []uint64{1, 2, 3, 4, 5, 6, 7}
	catalog := testCatalog(ids...)

	cases := []struct {
		limit, offset, wantLen int
		wantFirst              uint64
	}{
		{3, 0, 3, 1},
		{3, 3, 3, 4},
		{3, 6, 1, 7},
		{3, 7, 0, 0},
		{3, 100, 0, 0},
		{100, 2, 5, 3},
	}

	for _, c := range cases {
		out := ToScored(ids, c.limit, c.offset, catalog)
		if len(out) != c.wantLen {
			t.Errorf("limit=%d offset=%d: got %d rows, want %d", c.limit, c.offset, len(out), c.wantLen)
			continue
		}
		if c.wantLen > 0 && out[0].ProductID != c.wantFirst {
			t.Errorf("limit=%d offset=%d: first id = %d, want %d", c.limit, c.offset, out[0].ProductID, c.wantFirst)
		}
	}
}

func TestToScored_DecayUsesPrePaginationRank(t *testing.T) {
	ids := []uint64{1, 2, 3, 4, 5}
	catalog := testCatalog(ids...)

	full := ToScored(ids, len(ids), 0, catalog)
	page := ToScored(ids, 2, 2, catalog)

	if page[0].Score != full[2].Score || page[1].Score != full[3].Score {
		t.Errorf("paginated scores must match absolute ranks: page=%v full=%v", page, full)
	}
}

func TestToScored_UnknownProductKeepsSlot(t *testing.T) {
	ids := []uint64{1, 999, 3}
	catalog := testCatalog(1, 3)

	out := ToScored(ids, 3, 0, catalog)
	if len(out) != 3 {
		t.Fatalf("unknown product must not be dropped, got %d rows", len(out))
	}

	if out[1].ProductID != 999 || out[1].Score != 0.5 || out[1].ProductName != "" {
		t.Errorf("unknown product slot = %+v, want neutral 0.5 with empty name", out[1])
	}
}
