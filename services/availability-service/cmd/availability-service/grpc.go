package main

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/md-rashed-zaman/freeslots/libs/grpcx"
	"github.com/md-rashed-zaman/freeslots/libs/runtime"
	"google.golang.org/grpc"
)

const healthServiceName = "freeslots.availability.v1"

// startGRPC serves grpc.health.v1 on addr and keeps its status in step with the
// readiness checks until ctx is done.
func startGRPC(ctx context.Context, addr string, checks []runtime.ReadyCheck, logger *slog.Logger) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := grpcx.NewServer(grpc.ChainUnaryInterceptor(grpcx.UnaryServerLoggingInterceptor(logger)))

	go func() {
		if err := srv.Run(ctx, lis, logger); err != nil {
			logger.Error("grpc server error", "err", err)
		}
	}()
	go watchReadiness(ctx, srv, checks, 10*time.Second, logger)
	return nil
}

func watchReadiness(ctx context.Context, srv *grpcx.Server, checks []runtime.ReadyCheck, every time.Duration, logger *slog.Logger) {
	serving := false
	update := func() {
		report := runtime.RunReadyChecks(ctx, checks...)
		ok := report.Status == "ok"
		if ok != serving {
			logger.Info("grpc health changed", "serving", ok, "checks", report.Checks)
		}
		serving = ok
		srv.SetServing(ok, healthServiceName)
	}

	update()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			update()
		}
	}
}
