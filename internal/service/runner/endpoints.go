package runner

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"google.golang.org/grpc"

	"github.com/oshokin/particle-injector/internal/api/grpc/supervisor"
	"github.com/oshokin/particle-injector/internal/api/http/monitor"
	"github.com/oshokin/particle-injector/internal/config"
	"github.com/oshokin/particle-injector/internal/logger"
)

// stopFunc shuts an endpoint down and blocks until it has stopped.
type stopFunc func()

// startEndpoints starts the gRPC supervisor and HTTP monitor that are configured.
// The returned function stops every started endpoint.
func startEndpoints(ctx context.Context, cfg config.Supervisor, svc supervisor.Service) (stopFunc, error) {
	var stops []stopFunc

	stopAll := func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
	}

	if cfg.GRPCAddress != "" {
		stop, err := startGRPC(ctx, cfg.GRPCAddress, svc)
		if err != nil {
			return nil, err
		}

		stops = append(stops, stop)
	}

	if cfg.HTTPAddress != "" {
		stop, err := startHTTP(ctx, cfg.HTTPAddress, cfg.Timeout, svc)
		if err != nil {
			stopAll()

			return nil, err
		}

		stops = append(stops, stop)
	}

	return stopAll, nil
}

func startGRPC(ctx context.Context, address string, svc supervisor.Service) (stopFunc, error) {
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", address, err)
	}

	grpcServer := grpc.NewServer()
	supervisor.RegisterSupervisorServer(grpcServer, supervisor.NewServer(svc))

	logger.InfoKV(ctx, "Supervisor listening", "grpc_address", lis.Addr().String())

	// done is closed once Serve has returned.
	done := make(chan struct{})

	go func() {
		defer close(done)

		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.ErrorKV(ctx, "Supervisor stopped unexpectedly", "error", err)
		}
	}()

	return func() {
		logger.Info(ctx, "Shutting down gRPC supervisor")
		grpcServer.GracefulStop()
		<-done
	}, nil
}

func startHTTP(ctx context.Context, address string, timeout time.Duration, svc supervisor.Service) (stopFunc, error) {
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", address, err)
	}

	srv := &http.Server{
		Handler:           monitor.New(svc),
		ReadHeaderTimeout: timeout,
	}

	logger.InfoKV(ctx, "Monitor listening", "http_address", lis.Addr().String())

	done := make(chan struct{})

	go func() {
		defer close(done)

		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorKV(ctx, "Monitor stopped unexpectedly", "error", err)
		}
	}()

	return func() {
		logger.Info(ctx, "Shutting down HTTP monitor")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WarnKV(ctx, "Monitor shutdown", "error", err)
		}

		<-done
	}, nil
}
