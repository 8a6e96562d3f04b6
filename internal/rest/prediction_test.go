package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"timele/domain"

	"github.com/labstack/echo/v4"
)

type fakePredictionService struct {
	resp    domain.PredictionResponse
	evalRes domain.EvaluationResult
	err     error

	gotUserID uint
	gotLimit  int
	gotOffset int
	gotUseML  bool
}

func (f *fakePredictionService) Predict(_ context.Context, userID uint, limit, offset int, useML bool) (domain.PredictionResponse, error) {
	f.gotUserID = userID
	f.gotLimit = limit
	f.gotOffset = offset
	f.gotUseML = useML
	return f.resp, f.err
}

func (f *fakePredictionService) EvaluateUser(_ context.Context, userID uint) (domain.EvaluationResult, error) {
	f.gotUserID = userID
	return f.evalRes, f.err
}

func newPredictContext(target string, userID any) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != nil {
		c.Set("user_id", userID)
	}
	return c, rec
}

func TestPredictHandler(t *testing.T) {
	svc := &fakePredictionService{
		resp: domain.PredictionResponse{
			Predictions: []domain.ScoredPrediction{{ProductID: 1, ProductName: "banana", Score: 0.9}},
			Total:       1,
			Source:      domain.SourceML,
		},
	}
	h := NewPredictionHandler(svc)

	c, rec := newPredictContext("/api/v1/predictions?limit=5&offset=2&use_ml=false", uint(7))
	if err := h.Predict(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.gotUserID != 7 || svc.gotLimit != 5 || svc.gotOffset != 2 || svc.gotUseML != false {
		t.Errorf("query not passed through: user=%d limit=%d offset=%d use_ml=%t",
			svc.gotUserID, svc.gotLimit, svc.gotOffset, svc.gotUseML)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"banana"`) || !strings.Contains(body, `"ml"`) {
		t.Errorf("response body missing prediction payload: %s", body)
	}
}

func TestPredictHandler_DefaultsUseML(t *testing.T) {
	svc := &fakePredictionService{}
	h := NewPredictionHandler(svc)

	c, _ := newPredictContext("/api/v1/predictions", uint(7))
	if err := h.Predict(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !svc.gotUseML {
		t.Error("use_ml must default to true when omitted")
	}
}

func TestPredictHandler_MissingUser(t *testing.T) {
	h := NewPredictionHandler(&fakePredictionService{})

	c, rec := newPredictContext("/api/v1/predictions", nil)
	if err := h.Predict(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestPredictHandler_InvalidQuery(t *testing.T) {
	h := NewPredictionHandler(&fakePredictionService{})

	c, rec := newPredictContext("/api/v1/predictions?limit=-3", uint(7))
	if err := h.Predict(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestEvaluateHandler_ServiceError(t *testing.T) {
	h := NewPredictionHandler(&fakePredictionService{err: errors.New("not enough order history")})

	c, rec := newPredictContext("/api/v1/predictions/evaluation", uint(7))
	if err := h.Evaluate(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}
