package supervisor

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/particle-injector/internal/domain/pulse"
	"github.com/oshokin/particle-injector/internal/logger"
)

// Service abstracts the run operations the transport layer depends on.
type Service interface {
	Status() *pulse.Progress
	RequestStop()
}

// Server implements the Supervisor gRPC API.
type Server struct {
	// service provides the run being supervised.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// GetStatus returns the current progress snapshot.
func (s *Server) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.status(ctx)
}

// Stop requests a cooperative stop and returns the snapshot at the time of the request.
func (s *Server) Stop(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	s.service.RequestStop()

	logger.Info(ctx, "Stop requested over gRPC")

	return s.status(ctx)
}

func (s *Server) status(ctx context.Context) (*structpb.Struct, error) {
	progress := s.service.Status()
	if progress == nil {
		return nil, status.Error(codes.Unavailable, "no run in progress")
	}

	result, err := ProgressToStruct(progress)
	if err != nil {
		logger.ErrorKV(ctx, "Failed to encode status", "error", err)

		return nil, status.Error(codes.Internal, "unable to encode status")
	}

	return result, nil
}
