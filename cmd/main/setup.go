package main

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"econ-dashboard/src/cache"
	"econ-dashboard/src/config"
	"econ-dashboard/src/dashboard"
	"econ-dashboard/src/data_source/fred"
	pb "econ-dashboard/src/grpc_control"
	"econ-dashboard/src/interfaces"
	"econ-dashboard/src/logger"
	"econ-dashboard/src/models"
	"econ-dashboard/src/network"
	"econ-dashboard/src/registry"
	"econ-dashboard/src/server"
	"econ-dashboard/src/storage"
	"econ-dashboard/src/utils"
)

// application holds every long-lived component.
type application struct {
	config    *config.Config
	store     interfaces.ISeriesStore
	network   *network.AsyncNetworkManager
	cache     *cache.SeriesCache
	registry  *registry.Registry
	server    *server.DashboardServer
	grpc      *grpc.Server
	scheduler *utils.RefreshScheduler
}

// -----------------------------------------------------------------------------

// bootstrap wires config -> store -> network -> origin -> cache -> registry ->
// assembler -> servers, giving each component its own named logger.
func bootstrap(cfg *config.Config, appLogger *logger.Logger) (*application, error) {
	store, err := setupDatabase(cfg.MConfig, appLogger)
	if err != nil {
		return nil, err
	}

	networkManager, origin := setupOrigin(cfg.MConfig)
	if cfg.Origin.APIKey == "" {
		appLogger.Warning("No %s set, remote indicators will be unavailable", config.APIKeyEnvVar)
	}

	seriesCache := cache.NewSeriesCache(origin, store, cfg.CacheTTL(), cfg.Cache.ConcurrentRequests,
		logger.NewLogger(cfg.MConfig, "SeriesCache"))

	reg, err := registry.NewRegistry(cfg.Storage.CustomDir, logger.NewLogger(cfg.MConfig, "Registry"))
	if err != nil {
		networkManager.Close()
		store.Close()
		return nil, fmt.Errorf("open custom dataset dir: %w", err)
	}

	assembler := dashboard.NewAssembler(cfg.MConfig, seriesCache, reg, logger.NewLogger(cfg.MConfig, "Assembler"))

	srv := server.NewDashboardServer(cfg.MConfig, assembler, reg, seriesCache, origin,
		logger.NewLogger(cfg.MConfig, "DashboardServer"))
	reg.SetBroadcaster(srv)
	seriesCache.SetBroadcaster(srv)

	controlService := pb.NewControlService(seriesCache, reg, logger.NewLogger(cfg.MConfig, "ControlService"))

	app := &application{
		config:   cfg,
		store:    store,
		network:  networkManager,
		cache:    seriesCache,
		registry: reg,
		server:   srv,
		grpc:     pb.NewServer(controlService),
	}
	if cfg.Refresh.Enabled {
		app.scheduler = utils.NewRefreshScheduler(cfg.Refresh, seriesCache, reg.BuiltinIDs(),
			logger.NewLogger(cfg.MConfig, "RefreshScheduler"))
	}

	appLogger.Info("Initialization complete: %d indicators, %s cache, origin %s",
		len(reg.List()), cfg.Storage.DBType, origin.Name())
	return app, nil
}

// -----------------------------------------------------------------------------

// setupDatabase initializes the persistent cache tier based on config
func setupDatabase(cfg *models.MConfig, appLogger *logger.Logger) (interfaces.ISeriesStore, error) {
	store, err := storage.NewSeriesStore(cfg, logger.NewLogger(cfg, "SeriesStore"))
	if err != nil {
		return nil, fmt.Errorf("init %s store: %w", cfg.Storage.DBType, err)
	}
	if err := store.Initialize(context.Background()); err != nil {
		return nil, fmt.Errorf("migrate %s store: %w", cfg.Storage.DBType, err)
	}
	appLogger.Info("Persistent cache tier: %s", cfg.Storage.DBType)
	return store, nil
}

// -----------------------------------------------------------------------------

// setupOrigin initializes the network manager and the remote statistics API
func setupOrigin(cfg *models.MConfig) (*network.AsyncNetworkManager, interfaces.ISeriesOrigin) {
	networkManager := network.NewAsyncNetworkManager(cfg, logger.NewLogger(cfg, "NetworkManager"))
	return networkManager, fred.NewFredSource(cfg.Origin, networkManager, logger.NewLogger(cfg, "FredSource"))
}

// -----------------------------------------------------------------------------

func (app *application) close() {
	if app == nil {
		return
	}
	app.network.Close()
	if err := app.store.Close(); err != nil {
		fmt.Printf("close store: %v\n", err)
	}
}
