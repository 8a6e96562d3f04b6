package prediction

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"timele/domain"
)

// stage1FeatureDim is the column count the stage-1 artifact was trained on:
// order_count, reorder_sum, reorder_rate, in that order.
const stage1FeatureDim = 3

// TreeNode is one node of a boosted regression tree as dumped into the JSON
// artifact. Internal nodes route x[Feature] < Threshold to Left, otherwise
// Right; leaves carry Value.
type TreeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Value     float64   `json:"value"`
	Leaf      bool      `json:"leaf"`
	Left      *TreeNode `json:"left,omitempty"`
	Right     *TreeNode `json:"right,omitempty"`
}

func (n *TreeNode) eval(x []float64) float64 {
	cur := n
	for cur != nil && !cur.Leaf {
		if cur.Feature < 0 || cur.Feature >= len(x) {
			return 0
		}
		if x[cur.Feature] < cur.Threshold {
			if cur.Left == nil {
				break
			}
			cur = cur.Left
		} else {
			if cur.Right == nil {
				break
			}
			cur = cur.Right
		}
	}
	if cur == nil {
		return 0
	}
	return cur.Value
}

// Stage1Model is the binary reorder-probability classifier.
type Stage1Model struct {
	Version     string      `json:"version"`
	NumFeatures int         `json:"num_features"`
	BaseScore   float64     `json:"base_score"`
	Trees       []*TreeNode `json:"trees"`
}

// Score maps feature vectors to positive-class probabilities. It fails
// closed: a shape mismatch or a panic inside the tree walk yields an error
// and no scores, and the caller is expected to fall back.
func (m *Stage1Model) Score(features []domain.FeatureVector) (scores []domain.CandidateScore, err error) {
	if m == nil || len(m.Trees) == 0 {
		return nil, errors.New("stage-1 model not loaded")
	}
	if m.NumFeatures != stage1FeatureDim {
		return nil, fmt.Errorf("stage-1 artifact expects %d features, pipeline provides %d", m.NumFeatures, stage1FeatureDim)
	}

	defer func() {
		if r := recover(); r != nil {
			scores = nil
			err = fmt.Errorf("stage-1 scoring panic: %v", r)
		}
	}()

	out := make([]domain.CandidateScore, 0, len(features))
	for _, fv := range features {
		// column order is frozen at training time
		x := []float64{float64(fv.OrderCount), float64(fv.ReorderSum), fv.ReorderRate}

		margin := m.BaseScore
		for _, t := range m.Trees {
			margin += t.eval(x)
		}

		out = append(out, domain.CandidateScore{
			ProductID:   fv.ProductID,
			Probability: sigmoid(margin),
		})
	}

	return out, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// Stage2Model picks a ladder index from the flattened meta-feature vector.
// Trees are grouped per class; the argmax of the per-class margins wins.
type Stage2Model struct {
	Version     string        `json:"version"`
	NumFeatures int           `json:"num_features"`
	NumClasses  int           `json:"num_classes"`
	Trees       [][]*TreeNode `json:"trees"`
}

func (m *Stage2Model) Select(meta []float64) (idx int, err error) {
	if m == nil || m.NumClasses <= 0 || len(m.Trees) == 0 {
		return 0, errors.New("stage-2 model not loaded")
	}
	if m.NumFeatures != len(meta) {
		return 0, fmt.Errorf("stage-2 artifact expects %d meta features, got %d", m.NumFeatures, len(meta))
	}

	defer func() {
		if r := recover(); r != nil {
			idx = 0
			err = fmt.Errorf("stage-2 selection panic: %v", r)
		}
	}()

	best := 0
	bestScore := math.Inf(-1)
	for c := 0; c < m.NumClasses && c < len(m.Trees); c++ {
		s := 0.0
		for _, t := range m.Trees[c] {
			s += t.eval(meta)
		}
		if s > bestScore {
			bestScore = s
			best = c
		}
	}

	return best, nil
}

// ModelArtifacts bundles both stages as loaded from disk. Instances are
// immutable once installed in the registry.
type ModelArtifacts struct {
	Stage1   *Stage1Model
	Stage2   *Stage2Model
	Version  string
	LoadedAt time.Time
}

// LoadArtifacts reads stage1.json and stage2.json from dir and validates
// their shapes before anything is exposed to callers.
func LoadArtifacts(dir string) (*ModelArtifacts, error) {
	stage1 := &Stage1Model{}
	if err := readJSON(filepath.Join(dir, "stage1.json"), stage1); err != nil {
		return nil, fmt.Errorf("load stage-1 artifact: %w", err)
	}
	if stage1.NumFeatures != stage1FeatureDim {
		return nil, fmt.Errorf("stage-1 artifact has %d features, want %d", stage1.NumFeatures, stage1FeatureDim)
	}
	if len(stage1.Trees) == 0 {
		return nil, errors.New("stage-1 artifact has no trees")
	}

	stage2 := &Stage2Model{}
	if err := readJSON(filepath.Join(dir, "stage2.json"), stage2); err != nil {
		return nil, fmt.Errorf("load stage-2 artifact: %w", err)
	}
	if stage2.NumClasses <= 0 || len(stage2.Trees) == 0 {
		return nil, errors.New("stage-2 artifact has no classes")
	}
	if stage2.NumFeatures <= 0 {
		return nil, errors.New("stage-2 artifact has no feature shape")
	}

	return &ModelArtifacts{
		Stage1:   stage1,
		Stage2:   stage2,
		Version:  fmt.Sprintf("%s+%s", stage1.Version, stage2.Version),
		LoadedAt: time.Now(),
	}, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
