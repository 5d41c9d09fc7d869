package middleware

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// Described is implemented by request messages that can summarize themselves for the log,
// e.g. a Dispatch request naming its action.
type Described interface {
	LogAttrs() []any
}

// LoggingInterceptor returns a Connect interceptor that logs every RPC call with its
// procedure, session, duration and outcome. Server-side failures log at ERROR, caller
// mistakes at WARN and successes at INFO.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()

			resp, err := next(ctx, req)

			attrs := []any{
				"procedure", req.Spec().Procedure,
				"session_id", GetSessionID(ctx), // empty if anonymous
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if d, ok := req.Any().(Described); ok {
				attrs = append(attrs, d.LogAttrs()...)
			}

			if err == nil {
				slog.Info("RPC ok", attrs...)
				return resp, nil
			}

			code := connect.CodeOf(err)
			attrs = append(attrs, "code", code, "error", errorMessage(err))
			switch code {
			case connect.CodeInternal, connect.CodeUnknown, connect.CodeDataLoss, connect.CodeUnavailable:
				slog.Error("RPC error", attrs...)
			default:
				slog.Warn("RPC error", attrs...)
			}
			return resp, err
		}
	}
}

func errorMessage(err error) string {
	if connectErr, ok := err.(*connect.Error); ok {
		return connectErr.Message()
	}
	return err.Error()
}
