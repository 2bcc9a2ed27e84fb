package main

import (
	"context"
	"fmt"
	"net"
	"sync"

	"econ-dashboard/src/logger"
)

const defaultGrpcPort = 50051

// -----------------------------------------------------------------------------

// startServers launches the HTTP server, the gRPC control server and the
// refresh scheduler. The scheduler stops with ctx; servers are stopped by main.
func startServers(ctx context.Context, app *application, wg *sync.WaitGroup, appLogger *logger.Logger) {

	// 1. Dashboard HTTP + WebSocket server
	go func() {
		if err := app.server.Start(); err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
	}()

	// 2. gRPC Control Server
	port := app.config.GrpcPort
	if port == 0 {
		port = defaultGrpcPort
	}
	host := app.config.GrpcHost
	if host == "" {
		host = "127.0.0.1"
	}
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		appLogger.Critical("failed to listen for gRPC: %v", err)
	}
	go func() {
		appLogger.Info("Starting gRPC Control Server on %s", lis.Addr())
		if err := app.grpc.Serve(lis); err != nil {
			appLogger.Error("gRPC server stopped: %v", err)
		}
	}()

	// 3. Daily refresh
	if app.scheduler != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.scheduler.Run(ctx)
		}()
	}
}
