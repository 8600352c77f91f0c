package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/heysubinoy/localkv/api/rpc"
	"github.com/heysubinoy/localkv/internal/api"
	"github.com/heysubinoy/localkv/internal/logging"
	"github.com/heysubinoy/localkv/internal/node"
	"github.com/heysubinoy/localkv/internal/store"
	"github.com/heysubinoy/localkv/internal/sweeper"
	"github.com/heysubinoy/localkv/pkg/config"
	"github.com/heysubinoy/localkv/pkg/kv"
	"github.com/heysubinoy/localkv/pkg/localstore"
	"google.golang.org/grpc"
)

// backend is an opened kv.Backend plus what it takes to shut it down.
type backend struct {
	kv.Backend
	cluster api.Joiner
	close   func() error
}

func openBackend(cfg *config.Config, logger hclog.Logger) (*backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return &backend{
			Backend: store.NewMemStore(store.WithQuota(cfg.QuotaBytes)),
			close:   func() error { return nil },
		}, nil

	case config.BackendBolt:
		s, err := store.OpenBolt(cfg.DataPath)
		if err != nil {
			return nil, err
		}
		return &backend{Backend: s, close: s.Close}, nil

	case config.BackendSQLite:
		s, err := store.OpenSQLite(cfg.DataPath)
		if err != nil {
			return nil, err
		}
		return &backend{Backend: s, close: s.Close}, nil

	case config.BackendRedis:
		s, err := store.OpenRedis(store.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return &backend{Backend: s, close: s.Close}, nil

	case config.BackendRaft:
		fsm := store.NewRaftStore(store.NewMemStore(store.WithQuota(cfg.QuotaBytes)))
		n, err := node.Start(node.Options{
			NodeID:    cfg.NodeID,
			RaftAddr:  cfg.RaftAddr,
			DataDir:   cfg.RaftData,
			Bootstrap: cfg.RaftLeader,
			Logger:    logger,
		}, fsm)
		if err != nil {
			return nil, err
		}
		fsm.SetRaft(n.Raft)
		return &backend{Backend: fsm, cluster: n, close: n.Shutdown}, nil

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogJSON, nil).With("node", cfg.NodeID)

	b, err := openBackend(cfg, logger)
	if err != nil {
		logger.Error("failed to open backend", "backend", cfg.Backend, "error", err)
		os.Exit(1)
	}
	logger.Info("backend ready", "backend", cfg.Backend, "path", cfg.DataPath)

	metrics := store.NewInstrumentedStore(b)
	s := localstore.New(metrics, localstore.WithLogger(logger.Named("store")))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweeper.Run(ctx, s, cfg.SweepInterval, logger.Named("sweeper"))

	// gRPC
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen", "addr", cfg.GRPCAddr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(api.LoggingInterceptor(logger.Named("grpc"))))
	rpc.RegisterStoreServer(grpcServer, api.NewGRPCServer(s))
	go func() {
		logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server stopped", "error", err)
			stop()
		}
	}()

	// HTTP
	srv := api.NewServer(s, logger.Named("http"))
	srv.Metrics = metrics
	srv.Cluster = b.cluster
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown", "error", err)
	}
	grpcServer.GracefulStop()

	if err := b.close(); err != nil {
		logger.Warn("closing backend", "error", err)
	}
}
