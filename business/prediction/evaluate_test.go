package prediction

import (
	"math"
	"testing"
)

func idSet(ids ...uint64) map[uint64]struct{} {
	s := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func TestEvaluate_BothEmpty(t *testing.T) {
	res := Evaluate(idSet(), idSet())

	if res.Precision != 0 || res.Recall != 0 || res.F1 != 0 {
		t.Errorf("empty sets must yield zero metrics, got %+v", res)
	}
	if math.IsNaN(res.Precision) || math.IsNaN(res.Recall) || math.IsNaN(res.F1) {
		t.Error("metrics must never be NaN")
	}
}

func TestEvaluate_PartialOverlap(t *testing.T) {
	res := Evaluate(idSet(1, 2, 3), idSet(2, 3, 4))

	want := 2.0 / 3.0
	if math.Abs(res.Precision-want) > 1e-12 {
		t.Errorf("precision = %v, want %v", res.Precision, want)
	}
	if math.Abs(res.Recall-want) > 1e-12 {
		t.Errorf("recall = %v, want %v", res.Recall, want)
	}
	if math.Abs(res.F1-want) > 1e-12 {
		t.Errorf("f1 = %v, want %v", res.F1, want)
	}
	if res.Hits != 2 {
		t.Errorf("hits = %d, want 2", res.Hits)
	}
}

func TestEvaluate_EmptyPrediction(t *testing.T) {
	res := Evaluate(idSet(), idSet(1, 2))

	if res.Precision != 0 || res.Recall != 0 || res.F1 != 0 {
		t.Errorf("empty prediction must yield zeros, got %+v", res)
	}
	if res.TruthCount != 2 {
		t.Errorf("truth count = %d, want 2", res.TruthCount)
	}
}

func TestEvaluate_PerfectPrediction(t *testing.T) {
	res := Evaluate(idSet(1, 2), idSet(1, 2))

	if res.Precision != 1 || res.Recall != 1 || res.F1 != 1 {
		t.Errorf("perfect overlap must score 1.0 across the board, got %+v", res)
	}
}
