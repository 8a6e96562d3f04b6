package rest

import (
	"context"
	"net/http"

	"timele/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	PredictionHandler struct {
		validate          *validator.Validate
		predictionService PredictionService
	}

	PredictionService interface {
		Predict(ctx context.Context, userID uint, limit, offset int, useML bool) (domain.PredictionResponse, error)
		EvaluateUser(ctx context.Context, userID uint) (domain.EvaluationResult, error)
	}

	PredictQuery struct {
		Limit  int   `query:"limit" validate:"omitempty,gte=0"`
		Offset int   `query:"offset" validate:"omitempty,gte=0"`
		UseML  *bool `query:"use_ml"`
	}

	ResponseError struct {
		Message string `json:"message"`
	}
)

func NewPredictionHandler(svc PredictionService) *PredictionHandler {
	return &PredictionHandler{
		validate:          validator.New(),
		predictionService: svc,
	}
}

// GET /api/v1/predictions?limit=10&offset=0&use_ml=true
func (h *PredictionHandler) Predict(c echo.Context) error {
	uidVal := c.Get("user_id")
	userID, ok := uidVal.(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var q PredictQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	useML := true
	if q.UseML != nil {
		useML = *q.UseML
	}

	resp, err := h.predictionService.Predict(c.Request().Context(), userID, q.Limit, q.Offset, useML)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(resp))
}

// GET /api/v1/predictions/evaluation
func (h *PredictionHandler) Evaluate(c echo.Context) error {
	uidVal := c.Get("user_id")
	userID, ok := uidVal.(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	result, err := h.predictionService.EvaluateUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}
