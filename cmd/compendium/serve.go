package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc/health/grpc_health_v1"

	compendiumsvc "github.com/KirkDiggler/rpg-compendium/internal/handlers/compendium"
)

var (
	grpcPort int
	noCache  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC compendium server",
	Long:  `Serve compendium.v1.CompendiumService with health checks and reflection.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&grpcPort, "port", 0, "gRPC server port (overrides COMPENDIUM_GRPC_PORT)")
	serveCmd.Flags().BoolVar(&noCache, "no-cache", false, "Read entities straight from SQLite instead of through Redis")
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			logger.Info("received shutdown signal, gracefully stopping")
			cancel()
		case <-ctx.Done():
		}
	}()

	a, err := openApp(ctx, openOptions{redis: !noCache})
	if err != nil {
		return err
	}
	defer a.close()

	handlerCfg := &compendiumsvc.HandlerConfig{Store: a.store, Logger: logger}
	if a.cache != nil {
		handlerCfg.Entities = a.cache
	}
	handler, err := compendiumsvc.NewHandler(handlerCfg)
	if err != nil {
		return fmt.Errorf("failed to create compendium handler: %w", err)
	}

	port := cfg.GRPCPort
	if grpcPort != 0 {
		port = grpcPort
	}
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	srv, health := compendiumsvc.NewGRPCServer(handler, logger)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("gRPC server starting", zap.Int("port", port))
		if err := srv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("failed to serve: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		health.Shutdown()
		logger.Info("shutting down gRPC server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("graceful shutdown timeout exceeded, forcing stop")
			srv.Stop()
		case <-stopped:
			logger.Info("server stopped gracefully")
		}
		return nil
	case err := <-errChan:
		health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		return err
	}
}
