package domain

import (
	"time"

	"gorm.io/datatypes"
)

// PredictionSource tells the caller which tier produced a basket, so
// confidence provenance is always explicit.
type PredictionSource string

const (
	SourceML        PredictionSource = "ml"
	SourceRuleBased PredictionSource = "rule_based"
)

type BasketItem struct {
	ProductID uint64 `json:"product_id"`
	Reordered bool   `json:"reordered"`
}

// HistoricalBasket is one past order of a user, as read from the order
// history tables. Immutable once recorded.
type HistoricalBasket struct {
	UserID      uint         `json:"user_id"`
	OrderNumber int          `json:"order_number"`
	Items       []BasketItem `json:"items"`
}

// FeatureVector holds the per (user, product) features the stage-1 model
// was trained on. Recomputed per request, never persisted.
type FeatureVector struct {
	UserID      uint    `json:"user_id"`
	ProductID   uint64  `json:"product_id"`
	OrderCount  int     `json:"order_count"`
	ReorderSum  int     `json:"reorder_sum"`
	ReorderRate float64 `json:"reorder_rate"`
}

type CandidateScore struct {
	ProductID   uint64  `json:"product_id"`
	Probability float64 `json:"probability"`
}

type BasketMeta struct {
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
	Min  float64 `json:"min"`
}

// ThresholdBasket is the candidate basket at one rung of the probability
// ladder, plus the summary stats fed to the stage-2 selector.
type ThresholdBasket struct {
	Threshold  float64    `json:"threshold"`
	ProductIDs []uint64   `json:"product_ids"`
	Meta       BasketMeta `json:"meta"`
}

type PredictedBasket struct {
	UserID     uint             `json:"user_id"`
	ProductIDs []uint64         `json:"product_ids"`
	Source     PredictionSource `json:"source"`
}

type ScoredPrediction struct {
	ProductID   uint64  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Score       float64 `json:"score"`
}

type PredictionResponse struct {
	Predictions []ScoredPrediction `json:"predictions"`
	Total       int                `json:"total"`
	Source      PredictionSource   `json:"source"`
}

type EvaluationResult struct {
	UserID         uint    `json:"user_id"`
	PredictedCount int     `json:"predicted_count"`
	TruthCount     int     `json:"truth_count"`
	Hits           int     `json:"hits"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	F1             float64 `json:"f1"`
}

type BatchEvaluation struct {
	SampleSize    int     `json:"sample_size"`
	Evaluated     int     `json:"evaluated"`
	Skipped       int     `json:"skipped"`
	MeanPrecision float64 `json:"mean_precision"`
	MeanRecall    float64 `json:"mean_recall"`
	MeanF1        float64 `json:"mean_f1"`
}

// PredictionEvent is the served-prediction log row kept for offline
// analysis and future retraining.
type PredictionEvent struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    uint              `gorm:"column:user_id;not null" json:"user_id"`
	Source    string            `gorm:"column:source;not null" json:"source"`
	Total     int               `gorm:"column:total;not null" json:"total"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	Context   datatypes.JSONMap `gorm:"column:context;type:jsonb" json:"context"`
}

func (PredictionEvent) TableName() string {
	return "prediction_events"
}
