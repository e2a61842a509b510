package compendium

import (
	"context"
	"fmt"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// InterceptorLogger adapts a zap logger to the grpc middleware logger
func InterceptorLogger(l *zap.Logger) grpc_logging.Logger {
	return grpc_logging.LoggerFunc(func(_ context.Context, lvl grpc_logging.Level, msg string, fields ...any) {
		zf := make([]zap.Field, 0, len(fields)/2)
		for i := 0; i+1 < len(fields); i += 2 {
			zf = append(zf, zap.Any(fmt.Sprint(fields[i]), fields[i+1]))
		}
		logger := l.WithOptions(zap.AddCallerSkip(1))
		switch lvl {
		case grpc_logging.LevelDebug:
			logger.Debug(msg, zf...)
		case grpc_logging.LevelInfo:
			logger.Info(msg, zf...)
		case grpc_logging.LevelWarn:
			logger.Warn(msg, zf...)
		default:
			logger.Error(msg, zf...)
		}
	})
}

// NewGRPCServer builds a server with logging and panic recovery, registers
// srv with the health and reflection services, and marks it serving
func NewGRPCServer(srv Server, logger *zap.Logger) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = zap.NewNop()
	}
	recoverPanic := grpc_recovery.WithRecoveryHandler(func(p any) error {
		logger.Error("recovered from panic", zap.Any("panic", p))
		return status.Error(codes.Internal, "internal error")
	})

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(InterceptorLogger(logger)),
			grpc_recovery.UnaryServerInterceptor(recoverPanic),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(InterceptorLogger(logger)),
			grpc_recovery.StreamServerInterceptor(recoverPanic),
		),
	)
	RegisterServer(s, srv)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(s)
	return s, healthServer
}
