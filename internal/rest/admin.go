package rest

import (
	"context"
	"net/http"
	"strconv"

	"homeMatch/business/recommend"
	"homeMatch/domain"

	"github.com/labstack/echo/v4"
)

// OnboardingStore is the write side of the signup questionnaire.
type OnboardingStore interface {
	GetPreferences(ctx context.Context, userID uint) (map[string]float64, bool, error)
	SavePreferences(ctx context.Context, userID uint, prefs map[string]float64) error
}

type EngineAdminHandler struct {
	cfgRepo    recommend.ConfigRepository
	onboarding OnboardingStore
}

func NewEngineAdminHandler(
	cfgRepo recommend.ConfigRepository,
	onboarding OnboardingStore,
) *EngineAdminHandler {
	return &EngineAdminHandler{
		cfgRepo:    cfgRepo,
		onboarding: onboarding,
	}
}

// GET /api/v1/admin/engine/config?type=hybrid&variant=control
func (h *EngineAdminHandler) GetConfig(c echo.Context) error {
	ctx := c.Request().Context()
	requestType := c.QueryParam("type")
	variant := c.QueryParam("variant")

	if requestType == "" || variant == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "type and variant are required",
		})
	}

	cfg, ok, err := h.cfgRepo.GetConfig(ctx, requestType, variant)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
		})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "config not found",
		})
	}

	return c.JSON(http.StatusOK, cfg)
}

// PUT /api/v1/admin/engine/config
// body: EngineConfig JSON
func (h *EngineAdminHandler) UpsertConfig(c echo.Context) error {
	ctx := c.Request().Context()

	var body domain.EngineConfig
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "invalid body: " + err.Error(),
		})
	}
	if body.RequestType == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "request_type is required",
		})
	}
	if body.Variant == "" {
		body.Variant = "control"
	}

	if err := h.cfgRepo.UpsertConfig(ctx, body); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "ok",
	})
}

// GET /api/v1/admin/engine/onboarding?user_id=123
func (h *EngineAdminHandler) GetOnboarding(c echo.Context) error {
	ctx := c.Request().Context()
	userIDStr := c.QueryParam("user_id")
	if userIDStr == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "user_id is required",
		})
	}
	userID64, err := strconv.ParseUint(userIDStr, 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "invalid user_id",
		})
	}
	userID := uint(userID64)

	prefs, ok, err := h.onboarding.GetPreferences(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
		})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "onboarding preferences not found",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user_id":     userID,
		"preferences": prefs,
	})
}

// PUT /api/v1/admin/engine/onboarding
// body: { "user_id": 123, "preferences": { "location:downtown": 0.8 } }
type upsertOnboardingRequest struct {
	UserID      uint               `json:"user_id"`
	Preferences map[string]float64 `json:"preferences"`
}

func (h *EngineAdminHandler) UpsertOnboarding(c echo.Context) error {
	ctx := c.Request().Context()

	var body upsertOnboardingRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "invalid body: " + err.Error(),
		})
	}
	if body.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "user_id is required",
		})
	}
	if len(body.Preferences) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "preferences are required",
		})
	}

	if err := h.onboarding.SavePreferences(ctx, body.UserID, body.Preferences); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "ok",
	})
}
