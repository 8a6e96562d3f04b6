package prediction

import (
	"context"
	"fmt"
	"sort"
	"time"

	"timele/domain"
	"timele/pkg/logger"

	"gorm.io/datatypes"
)

const defaultPredictLimit = 10

// ---- Repository interfaces ----

type OrderHistoryRepository interface {
	GetOrderHistory(ctx context.Context, userID uint) ([]domain.HistoricalBasket, error)
	SampleUserIDs(ctx context.Context, limit int) ([]uint, error)
}

type CatalogRepository interface {
	FindAll(ctx context.Context) ([]domain.Product, error)
}

type PredictionEventRepository interface {
	SaveEvent(ctx context.Context, event domain.PredictionEvent) error
}

// ResponseCache is an optional short-TTL cache for full predict responses.
// Get returns (nil, nil) on a miss.
type ResponseCache interface {
	GetPrediction(ctx context.Context, key string) (*domain.PredictionResponse, error)
	SetPrediction(ctx context.Context, key string, resp domain.PredictionResponse) error
}

// ---- Usecase / Service ----

// PredictionService runs the basket-prediction pipeline: feature
// aggregation, stage-1 scoring, threshold baskets, stage-2 selection, with
// the rule-based recommender as the degradation tier. The pipeline itself is
// stateless per request; the only shared state is the read-only model
// registry.
type PredictionService struct {
	historyRepo OrderHistoryRepository
	catalogRepo CatalogRepository
	eventRepo   PredictionEventRepository
	cache       ResponseCache
	registry    *ModelRegistry
	fallback    *FallbackRecommender
	ladder      []float64
}

func NewPredictionService(
	historyRepo OrderHistoryRepository,
	catalogRepo CatalogRepository,
	eventRepo PredictionEventRepository,
	cache ResponseCache,
	registry *ModelRegistry,
	ladder []float64,
) *PredictionService {
	if len(ladder) == 0 {
		ladder = DefaultLadder
	}

	// the ladder is fixed at construction time and must ascend
	fixed := make([]float64, len(ladder))
	copy(fixed, ladder)
	sort.Float64s(fixed)

	return &PredictionService{
		historyRepo: historyRepo,
		catalogRepo: catalogRepo,
		eventRepo:   eventRepo,
		cache:       cache,
		registry:    registry,
		fallback:    NewFallbackRecommender(),
		ladder:      fixed,
	}
}

// Predict returns a paginated, scored basket for the user. Degradation is
// tiered: ML -> rule-based -> empty-but-valid response; no internal failure
// surfaces to the caller.
func (s *PredictionService) Predict(
	ctx context.Context,
	userID uint,
	limit int,
	offset int,
	useML bool,
) (domain.PredictionResponse, error) {

	if err := ctx.Err(); err != nil {
		return domain.PredictionResponse{}, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = defaultPredictLimit
	}
	if offset < 0 {
		offset = 0
	}

	start := time.Now()
	tid := TraceIDFromContext(ctx)

	cacheKey := fmt.Sprintf("predict:user:%d:l=%d:o=%d:ml=%t", userID, limit, offset, useML)
	if s.cache != nil {
		if cached, err := s.cache.GetPrediction(ctx, cacheKey); err == nil && cached != nil {
			return *cached, nil
		}
	}

	history, err := s.historyRepo.GetOrderHistory(ctx, userID)
	if err != nil {
		// degraded: the rule-based tier runs on an empty snapshot
		logger.Warn("basket_history_unavailable",
			"trace_id", tid,
			"user_id", userID,
			"error", err,
		)
		history = nil
	}

	catalog, err := s.catalogRepo.FindAll(ctx)
	if err != nil {
		logger.Warn("basket_catalog_unavailable",
			"trace_id", tid,
			"user_id", userID,
			"error", err,
		)
		catalog = nil
	}

	var resp domain.PredictionResponse
	served := false

	if useML {
		if basket, ok := s.mlBasket(ctx, userID, history); ok {
			preds := ToScored(basket.ProductIDs, limit, offset, productIndex(catalog))
			resp = domain.PredictionResponse{
				Predictions: preds,
				Total:       len(basket.ProductIDs),
				Source:      domain.SourceML,
			}
			served = true
		}
	}

	if !served {
		basket, preds, total := s.fallback.Recommend(userID, history, catalog, limit, offset)
		resp = domain.PredictionResponse{
			Predictions: preds,
			Total:       total,
			Source:      basket.Source,
		}
	}

	s.logServed(ctx, userID, limit, offset, resp)

	PredictRequestsTotal.WithLabelValues(string(resp.Source)).Inc()
	PredictLatency.Observe(time.Since(start).Seconds())

	if s.cache != nil {
		if err := s.cache.SetPrediction(ctx, cacheKey, resp); err != nil {
			logger.Debug("basket_cache_write_failed", "trace_id", tid, "error", err)
		}
	}

	return resp, nil
}

// mlBasket runs features -> stage-1 -> threshold ladder -> stage-2. Every
// degradation condition returns ok=false so the caller substitutes the
// rule-based tier; nothing here panics or errors outward.
func (s *PredictionService) mlBasket(
	ctx context.Context,
	userID uint,
	history []domain.HistoricalBasket,
) (domain.PredictedBasket, bool) {

	tid := TraceIDFromContext(ctx)

	arts := s.registry.Current()
	if arts == nil {
		FallbackTotal.WithLabelValues("model_unavailable").Inc()
		return domain.PredictedBasket{}, false
	}

	feats := BuildFeatures(userID, history, nil)
	if len(feats) == 0 {
		FallbackTotal.WithLabelValues("no_history").Inc()
		return domain.PredictedBasket{}, false
	}

	scores, err := arts.Stage1.Score(feats)
	if err != nil || len(scores) == 0 {
		logger.Warn("basket_stage1_failed",
			"trace_id", tid,
			"user_id", userID,
			"error", err,
		)
		FallbackTotal.WithLabelValues("stage1_failed").Inc()
		return domain.PredictedBasket{}, false
	}

	baskets := BuildThresholdBaskets(scores, s.ladder)
	if allEmpty(baskets) {
		FallbackTotal.WithLabelValues("no_candidates").Inc()
		return domain.PredictedBasket{}, false
	}

	idx, err := arts.Stage2.Select(FlattenMeta(baskets))
	if err != nil {
		logger.Warn("basket_stage2_failed",
			"trace_id", tid,
			"user_id", userID,
			"error", err,
		)
		FallbackTotal.WithLabelValues("stage2_failed").Inc()
		return domain.PredictedBasket{}, false
	}
	idx = clampIndex(idx, len(baskets))

	ids := baskets[idx].ProductIDs
	if len(ids) == 0 {
		FallbackTotal.WithLabelValues("empty_selection").Inc()
		return domain.PredictedBasket{}, false
	}

	logger.Debug("basket_predict_ml",
		"trace_id", tid,
		"user_id", userID,
		"model_version", arts.Version,
		"threshold", baskets[idx].Threshold,
		"candidates", len(scores),
		"selected", len(ids),
	)

	return domain.PredictedBasket{
		UserID:     userID,
		ProductIDs: ids,
		Source:     domain.SourceML,
	}, true
}

// logServed persists the served prediction for offline analysis. Failures
// are logged, never propagated.
func (s *PredictionService) logServed(
	ctx context.Context,
	userID uint,
	limit int,
	offset int,
	resp domain.PredictionResponse,
) {
	if s.eventRepo == nil {
		return
	}

	ids := make([]uint64, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		ids = append(ids, p.ProductID)
	}

	event := domain.PredictionEvent{
		UserID: userID,
		Source: string(resp.Source),
		Total:  resp.Total,
		Context: datatypes.JSONMap{
			"product_ids": ids,
			"limit":       limit,
			"offset":      offset,
		},
	}

	if err := s.eventRepo.SaveEvent(ctx, event); err != nil {
		logger.Warn("basket_event_log_failed",
			"trace_id", TraceIDFromContext(ctx),
			"user_id", userID,
			"error", err,
		)
	}
}

func productIndex(catalog []domain.Product) map[uint64]domain.Product {
	idx := make(map[uint64]domain.Product, len(catalog))
	for _, p := range catalog {
		idx[p.ID] = p
	}
	return idx
}
