package prediction

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"timele/domain"
	"timele/pkg/logger"
)

var ErrInsufficientHistory = errors.New("not enough order history to evaluate")

const (
	minEvalSampleSize = 1
	maxEvalSampleSize = 1000
)

// Evaluate computes set-overlap metrics between a predicted basket and a
// held-out ground-truth basket. Empty sets yield zeros, never NaN.
func Evaluate(predicted, truth map[uint64]struct{}) domain.EvaluationResult {
	hits := 0
	for pid := range predicted {
		if _, ok := truth[pid]; ok {
			hits++
		}
	}

	precision := 0.0
	if len(predicted) > 0 {
		precision = float64(hits) / float64(len(predicted))
	}

	recall := 0.0
	if len(truth) > 0 {
		recall = float64(hits) / float64(len(truth))
	}

	f1 := 0.0
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	return domain.EvaluationResult{
		PredictedCount: len(predicted),
		TruthCount:     len(truth),
		Hits:           hits,
		Precision:      precision,
		Recall:         recall,
		F1:             f1,
	}
}

// EvaluateUser holds out the user's most recent basket as ground truth,
// predicts from the earlier baskets with the same pipeline Predict uses,
// and compares.
func (s *PredictionService) EvaluateUser(ctx context.Context, userID uint) (domain.EvaluationResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.EvaluationResult{}, fmt.Errorf("context error: %w", err)
	}

	history, err := s.historyRepo.GetOrderHistory(ctx, userID)
	if err != nil {
		return domain.EvaluationResult{}, fmt.Errorf("load order history: %w", err)
	}
	if len(history) < 2 {
		return domain.EvaluationResult{}, ErrInsufficientHistory
	}

	sort.Slice(history, func(i, j int) bool {
		return history[i].OrderNumber < history[j].OrderNumber
	})

	heldOut := history[len(history)-1]
	train := history[:len(history)-1]

	basket, ok := s.mlBasket(ctx, userID, train)
	if !ok {
		catalog, err := s.catalogRepo.FindAll(ctx)
		if err != nil {
			catalog = nil
		}
		basket, _, _ = s.fallback.Recommend(userID, train, catalog, defaultPredictLimit, 0)
	}

	predicted := make(map[uint64]struct{}, len(basket.ProductIDs))
	for _, pid := range basket.ProductIDs {
		predicted[pid] = struct{}{}
	}

	truth := make(map[uint64]struct{}, len(heldOut.Items))
	for _, item := range heldOut.Items {
		truth[item.ProductID] = struct{}{}
	}

	result := Evaluate(predicted, truth)
	result.UserID = userID

	logger.Debug("basket_evaluate",
		"trace_id", TraceIDFromContext(ctx),
		"user_id", userID,
		"source", basket.Source,
		"precision", result.Precision,
		"recall", result.Recall,
		"f1", result.F1,
	)

	return result, nil
}

// EvaluateBatch evaluates a bounded sample of users with enough history and
// aggregates mean precision/recall/F1. Users that cannot be evaluated are
// counted as skipped, not treated as failures.
func (s *PredictionService) EvaluateBatch(ctx context.Context, sampleSize int) (domain.BatchEvaluation, error) {
	if err := ctx.Err(); err != nil {
		return domain.BatchEvaluation{}, fmt.Errorf("context error: %w", err)
	}

	if sampleSize < minEvalSampleSize {
		sampleSize = minEvalSampleSize
	}
	if sampleSize > maxEvalSampleSize {
		sampleSize = maxEvalSampleSize
	}

	userIDs, err := s.historyRepo.SampleUserIDs(ctx, sampleSize)
	if err != nil {
		return domain.BatchEvaluation{}, fmt.Errorf("sample users: %w", err)
	}

	out := domain.BatchEvaluation{SampleSize: sampleSize}

	var sumPrecision, sumRecall, sumF1 float64
	for _, uid := range userIDs {
		res, err := s.EvaluateUser(ctx, uid)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return domain.BatchEvaluation{}, err
			}
			out.Skipped++
			continue
		}

		out.Evaluated++
		sumPrecision += res.Precision
		sumRecall += res.Recall
		sumF1 += res.F1
	}

	if out.Evaluated > 0 {
		n := float64(out.Evaluated)
		out.MeanPrecision = sumPrecision / n
		out.MeanRecall = sumRecall / n
		out.MeanF1 = sumF1 / n
	}

	return out, nil
}
