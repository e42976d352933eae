package feedback

import (
	"context"

	"homeMatch/business/recommend"
)

func traceID(ctx context.Context) string {
	return recommend.TraceIDFromContext(ctx)
}
