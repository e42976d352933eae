package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"homeMatch/business/recommend"
	"homeMatch/domain"
	"homeMatch/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
)

type (
	RecommendHandler struct {
		validate *validator.Validate
		service  RecommendService
		feedback FeedbackService
	}

	RecommendService interface {
		Recommend(ctx context.Context, req recommend.Request) (domain.RecommendationResult, error)
		DebugRecommend(ctx context.Context, req recommend.Request) ([]domain.DebugCandidate, error)
	}

	FeedbackService interface {
		Ingest(ctx context.Context, event domain.InteractionEvent) error
	}

	RecommendQuery struct {
		Type    string `query:"type" validate:"omitempty,oneof=hybrid collaborative content-based contextual cold-start"`
		N       int    `query:"n"`
		Region  string `query:"region"`
		Exclude string `query:"exclude"`

		RecentTypes     string `query:"recent_types"`
		RecentLocations string `query:"recent_locations"`
		TimeOfDay       string `query:"time_of_day"`
		Device          string `query:"device"`
	}

	FeedbackRequest struct {
		EventID    string         `json:"event_id"`
		PropertyID uint64         `json:"property_id" validate:"required"`
		EventType  string         `json:"event_type" validate:"required,oneof=view save contact hide rating"`
		Strength   float64        `json:"strength" validate:"omitempty,gte=-1,lte=1"`
		Context    map[string]any `json:"context"`
	}
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

func NewRecommendHandler(svc RecommendService, fb FeedbackService) *RecommendHandler {
	return &RecommendHandler{
		validate: validator.New(),
		service:  svc,
		feedback: fb,
	}
}

// GET /api/v1/recommendations?type=hybrid&n=10&region=downtown
func (h *RecommendHandler) Recommend(c echo.Context) error {
	uidVal := c.Get("user_id")
	userID, ok := uidVal.(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var q RecommendQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	req, err := queryToRequest(userID, q)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	start := time.Now()
	result, err := h.service.Recommend(c.Request().Context(), req)
	metrics.RecommendDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}

// POST /api/v1/recommendations/feedback
func (h *RecommendHandler) Feedback(c echo.Context) error {
	uidVal := c.Get("user_id")
	userID, ok := uidVal.(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req FeedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	event := domain.InteractionEvent{
		EventID:    req.EventID,
		UserID:     userID,
		PropertyID: req.PropertyID,
		EventType:  req.EventType,
		Strength:   req.Strength,
		Context:    datatypes.JSONMap(req.Context),
	}

	if err := h.feedback.Ingest(c.Request().Context(), event); err != nil {
		return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated("feedback recorded"))
}

// GET /api/v1/recommendations/debug?type=hybrid&n=10
func (h *RecommendHandler) DebugRecommend(c echo.Context) error {
	uidVal := c.Get("user_id")
	userID, ok := uidVal.(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var q RecommendQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	req, err := queryToRequest(userID, q)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	candidates, err := h.service.DebugRecommend(c.Request().Context(), req)
	if err != nil {
		return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(candidates))
}

func queryToRequest(userID uint, q RecommendQuery) (recommend.Request, error) {
	req := recommend.Request{
		UserID:      userID,
		RequestType: q.Type,
		MaxResults:  q.N,
		Region:      q.Region,
		Session: recommend.SessionContext{
			RecentTypes:     splitCSV(q.RecentTypes),
			RecentLocations: splitCSV(q.RecentLocations),
			TimeOfDay:       q.TimeOfDay,
			Device:          q.Device,
		},
	}

	for _, part := range splitCSV(q.Exclude) {
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return recommend.Request{}, errors.New("invalid exclude id: " + part)
		}
		req.Exclude = append(req.Exclude, id)
	}

	return req, nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// statusFor maps the engine's error taxonomy onto HTTP codes.
// ErrInsufficientData only escapes the engine when the cold-start fallback
// is exhausted too, so it reports the same way as scorer exhaustion.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientData),
		errors.Is(err, domain.ErrUpstreamUnavailable),
		errors.Is(err, domain.ErrNoScorerAvailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrScorerTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
