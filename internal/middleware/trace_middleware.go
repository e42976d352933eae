package middleware

import (
	"context"

	"homeMatch/business/recommend"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TraceMiddleware propagates X-Request-ID (or a fresh uuid) into the
// request context so service-layer logs can be correlated.
func TraceMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			traceID := c.Request().Header.Get(echo.HeaderXRequestID)
			if traceID == "" {
				traceID = uuid.NewString()
			}

			ctx := context.WithValue(c.Request().Context(), recommend.TraceIDKey, traceID)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set(echo.HeaderXRequestID, traceID)

			return next(c)
		}
	}
}
