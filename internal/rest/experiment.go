package rest

import (
	"context"
	"net/http"

	"homeMatch/domain"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type ExperimentAllocator interface {
	Assign(ctx context.Context, experiment string, userID uint) (domain.ExperimentAssignment, error)
}

type ExperimentHandler struct {
	allocator ExperimentAllocator
}

func NewExperimentHandler(allocator ExperimentAllocator) *ExperimentHandler {
	return &ExperimentHandler{allocator: allocator}
}

// GET /api/v1/experiments/assignment?experiment=engine-policy
func (h *ExperimentHandler) GetAssignment(c echo.Context) error {
	uidVal := c.Get("user_id")
	userID, ok := uidVal.(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	experiment := c.QueryParam("experiment")
	if experiment == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "experiment is required"})
	}

	assignment, err := h.allocator.Assign(c.Request().Context(), experiment, userID)
	if err != nil {
		return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(assignment))
}
