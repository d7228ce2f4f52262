package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/bordertrade/internal/metrics"
)

// LoggingInterceptor logs one line per RPC and counts it by procedure and
// code. Client mistakes log at warn, everything else that fails at error.
// m may be nil.
func LoggingInterceptor(m *metrics.Metrics) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			procedure := req.Spec().Procedure
			code, level := rpcOutcome(err)
			attrs := []any{
				"procedure", procedure,
				"code", code,
				"user_id", GetUserID(ctx), // empty before RequireAuth ran
				"role", GetRole(ctx),
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if err != nil {
				attrs = append(attrs, "error", err)
			}
			slog.Log(ctx, level, "RPC finished", attrs...)

			if m != nil {
				m.RPCRequests.WithLabelValues(procedure, code).Inc()
			}
			return resp, err
		}
	}
}

func rpcOutcome(err error) (string, slog.Level) {
	if err == nil {
		return "ok", slog.LevelInfo
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		return connect.CodeUnknown.String(), slog.LevelError
	}
	switch connectErr.Code() {
	case connect.CodeInvalidArgument, connect.CodeNotFound, connect.CodeAlreadyExists,
		connect.CodeFailedPrecondition, connect.CodeUnauthenticated, connect.CodePermissionDenied:
		return connectErr.Code().String(), slog.LevelWarn
	default:
		return connectErr.Code().String(), slog.LevelError
	}
}
