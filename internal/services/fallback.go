package services

import (
	"context"
	"log/slog"
)

// withFallback runs the primary backend call and, when it fails for any
// reason, logs a warning and runs the secondary exactly once. There is no
// circuit breaker and no error classification here: a 4xx from the primary
// falls back just like a network failure. The auth service filters its
// identity rejections before reaching for this helper.
func withFallback[T any](ctx context.Context, logger *slog.Logger, op string, primary, secondary func(context.Context) (T, error)) (T, error) {
	result, err := primary(ctx)
	if err == nil {
		return result, nil
	}
	logger.Warn("primary backend failed, falling back to secondary", "op", op, "error", err)
	return secondary(ctx)
}

// withFallbackErr is withFallback for operations without a result.
func withFallbackErr(ctx context.Context, logger *slog.Logger, op string, primary, secondary func(context.Context) error) error {
	_, err := withFallback(ctx, logger, op,
		func(ctx context.Context) (struct{}, error) { return struct{}{}, primary(ctx) },
		func(ctx context.Context) (struct{}, error) { return struct{}{}, secondary(ctx) },
	)
	return err
}
