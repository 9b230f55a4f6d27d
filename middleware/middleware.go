package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentq/agentq/types"
)

// Handler mirrors the executor contract so middleware can wrap any agent.
type Handler func(ctx context.Context, input map[string]any) (*types.Result, error)

// Middleware decorates a Handler.
type Middleware func(next Handler) Handler

// Chain composes middlewares so the first argument runs outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(final Handler) Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// Logging reports start, duration and outcome of each execution.
func Logging(logger zerolog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, input map[string]any) (*types.Result, error) {
			start := time.Now()
			logger.Debug().Int("fields", len(input)).Msg("execution started")

			result, err := next(ctx, input)

			elapsed := time.Since(start)
			switch {
			case err != nil:
				logger.Error().Err(err).Dur("elapsed", elapsed).Msg("execution failed")
			case result != nil && result.Status == types.ResultError:
				logger.Warn().Str("error", result.ErrorMessage).Dur("elapsed", elapsed).Msg("execution returned error result")
			default:
				logger.Debug().Dur("elapsed", elapsed).Msg("execution finished")
			}
			return result, err
		}
	}
}

// Recovery converts a panic in the wrapped handler into an error return.
func Recovery() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, input map[string]any) (result *types.Result, err error) {
			defer func() {
				if rec := recover(); rec != nil {
					result = nil
					err = fmt.Errorf("%w: panic: %v", types.ErrExecutionFailed, rec)
				}
			}()
			return next(ctx, input)
		}
	}
}

// Deadline attaches a timeout to the execution context. The scheduling
// core itself never cancels a running task; executors that want the
// advisory task timeout honored opt in through this middleware and must
// observe ctx themselves.
func Deadline(d time.Duration) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, input map[string]any) (*types.Result, error) {
			if d <= 0 {
				return next(ctx, input)
			}
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(ctx, input)
		}
	}
}
