package logger

import (
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapgrpc"
	"google.golang.org/grpc/grpclog"
)

// RedirectGRPC routes grpc-go's internal logs through the global logger at level and above.
// Call it once before any gRPC client or server is created.
func RedirectGRPC(level zapcore.Level) {
	grpclog.SetLoggerV2(NewGRPCLogger(level))
}

// NewGRPCLogger returns a grpclog.LoggerV2 backed by the global logger,
// filtered independently of the global level.
//
//nolint:ireturn,nolintlint // grpclog expects the interface.
func NewGRPCLogger(level zapcore.Level) grpclog.LoggerV2 {
	return zapgrpc.NewLogger(Logger().Desugar().Named("grpc").WithOptions(WithLevel(level)))
}
