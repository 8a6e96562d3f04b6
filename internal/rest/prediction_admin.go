package rest

import (
	"context"
	"net/http"
	"time"

	"timele/business/prediction"
	"timele/domain"
	"timele/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	PredictionAdminHandler struct {
		validate  *validator.Validate
		registry  *prediction.ModelRegistry
		modelDir  string
		evaluator BatchEvaluator
	}

	BatchEvaluator interface {
		EvaluateBatch(ctx context.Context, sampleSize int) (domain.BatchEvaluation, error)
	}

	BatchEvaluationQuery struct {
		SampleSize int `query:"sample_size" validate:"required,gte=1,lte=1000"`
	}

	ModelStatus struct {
		Loaded   bool      `json:"loaded"`
		Version  string    `json:"version,omitempty"`
		LoadedAt time.Time `json:"loaded_at,omitempty"`
	}
)

func NewPredictionAdminHandler(registry *prediction.ModelRegistry, modelDir string, evaluator BatchEvaluator) *PredictionAdminHandler {
	return &PredictionAdminHandler{
		validate:  validator.New(),
		registry:  registry,
		modelDir:  modelDir,
		evaluator: evaluator,
	}
}

// GET /api/v1/admin/models
func (h *PredictionAdminHandler) GetModels(c echo.Context) error {
	arts := h.registry.Current()
	if arts == nil {
		return c.JSON(http.StatusOK, fres.Response.StatusOK(ModelStatus{Loaded: false}))
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(ModelStatus{
		Loaded:   true,
		Version:  arts.Version,
		LoadedAt: arts.LoadedAt,
	}))
}

// POST /api/v1/admin/models/reload
func (h *PredictionAdminHandler) ReloadModels(c echo.Context) error {
	arts, err := h.registry.LoadFrom(h.modelDir)
	if err != nil {
		logger.Error("model_reload_failed", "dir", h.modelDir, "error", err)
		return c.JSON(http.StatusUnprocessableEntity, ResponseError{Message: err.Error()})
	}

	logger.Info("model_reload_ok", "dir", h.modelDir, "version", arts.Version)

	return c.JSON(http.StatusOK, fres.Response.StatusOK(ModelStatus{
		Loaded:   true,
		Version:  arts.Version,
		LoadedAt: arts.LoadedAt,
	}))
}

// POST /api/v1/admin/evaluation?sample_size=100
func (h *PredictionAdminHandler) EvaluateBatch(c echo.Context) error {
	var q BatchEvaluationQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	result, err := h.evaluator.EvaluateBatch(c.Request().Context(), q.SampleSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}
