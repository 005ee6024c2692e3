package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"market-breadth/src/config"
	"market-breadth/src/logger"
	"market-breadth/src/models"
	"market-breadth/src/pipeline"
	"market-breadth/src/poller"
	"market-breadth/src/server"
	"market-breadth/src/sinks"
)

// -----------------------------------------------------------------------------

func main() {
	// 1. Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	once := flag.Bool("once", false, "collect one snapshot, print it as JSON and exit")
	flag.Parse()

	// 2. Load config
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf.MConfig, conf.Name)
	defer appLogger.Sync()

	if *once {
		code := runOnce(conf, appLogger)
		appLogger.Sync()
		os.Exit(code)
	}

	// 4. Storage
	store, err := setupStore(conf.MConfig, appLogger)
	if err != nil {
		appLogger.Critical("Failed to init storage: %v", err)
	}
	defer store.Close()

	// 5. Network, source and collector
	source := setupSource(conf.MConfig)
	collector := setupCollector(conf.MConfig, source)

	// 6. Live series, preloaded with today's history
	live := setupLiveSeries(conf.MConfig, store, appLogger)

	// 7. HTTP + WebSocket server
	srv := server.NewAPIServer(conf.MConfig, store, live, logger.NewLogger(conf.MConfig, "APIServer"))
	srv.Quotes = source

	// 8. Sinks
	sinkList := sinks.FromConfig(conf.Sinks, logger.NewLogger(conf.MConfig, "Sinks"))

	// 9. Poller and gRPC control
	breadthPoller := poller.NewPoller(conf.MConfig, collector, logger.NewLogger(conf.MConfig, "Poller"))
	srv.Stats = breadthPoller

	grpcServer, err := startGRPC(conf, *configPath, breadthPoller, live, appLogger)
	if err != nil {
		appLogger.Critical("%v", err)
	}
	startHTTP(srv, appLogger)

	// 10. Dispatch loop
	dispatcher := &pipeline.Dispatcher{
		Store:     store,
		Live:      live,
		Exchanger: srv,
		Sinks:     sinkList,
		Logger:    logger.NewLogger(conf.MConfig, "Dispatcher"),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	snapshots := make(chan models.MBreadthSnapshot, 16)

	if err := breadthPoller.Start(ctx, snapshots, &wg); err != nil {
		appLogger.Critical("Failed to start poller: %v", err)
	}

	dispatchDone := make(chan struct{})
	go func() {
		dispatcher.Run(ctx, snapshots)
		close(dispatchDone)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Received %v, shutting down...", sig)

	cancel()
	wg.Wait()
	<-dispatchDone

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if err := srv.Stop(); err != nil {
		appLogger.Warning("Server shutdown: %v", err)
	}
	dispatcher.Close()
	appLogger.Info("Shutdown complete.")
}

// -----------------------------------------------------------------------------

// runOnce collects a single snapshot and prints it; it returns the exit code.
func runOnce(conf *config.Config, appLogger *logger.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := setupCollector(conf.MConfig, setupSource(conf.MConfig))
	snap, err := collector.CollectSnapshot(ctx)
	if err != nil {
		appLogger.Error("Collection failed: %v", err)
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		appLogger.Error("Encoding failed: %v", err)
		return 1
	}
	return 0
}
