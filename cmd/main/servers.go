package main

import (
	"fmt"
	"net"

	"market-breadth/src/config"
	"market-breadth/src/grpc_control"
	"market-breadth/src/logger"
	"market-breadth/src/poller"
	"market-breadth/src/server"
	"market-breadth/src/utils"

	"google.golang.org/grpc"
)

// -----------------------------------------------------------------------------

// startHTTP runs the REST/WebSocket server in the background.
func startHTTP(srv *server.APIServer, appLogger *logger.Logger) {
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()
}

// -----------------------------------------------------------------------------

// startGRPC serves the control plane; it returns nil when grpc_port is 0.
func startGRPC(conf *config.Config, configPath string, p *poller.Poller, live *utils.LiveSeries, appLogger *logger.Logger) (*grpc.Server, error) {
	if conf.GrpcPort == 0 {
		appLogger.Info("gRPC control disabled")
		return nil, nil
	}

	addr := fmt.Sprintf("%s:%d", conf.GrpcHost, conf.GrpcPort)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for gRPC on %s: %w", addr, err)
	}

	svc := grpc_control.NewControlService(conf, configPath, p, live, logger.NewLogger(conf.MConfig, "ControlService"))
	grpcServer, _ := grpc_control.NewServer(svc)

	go func() {
		appLogger.Info("Starting gRPC Control Server on %s", addr)
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Error("gRPC server failed: %v", err)
		}
	}()
	return grpcServer, nil
}
