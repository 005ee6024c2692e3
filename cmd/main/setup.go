package main

import (
	"time"

	"market-breadth/src/aggregator"
	"market-breadth/src/data_source/tencent"
	"market-breadth/src/interfaces"
	"market-breadth/src/logger"
	"market-breadth/src/models"
	"market-breadth/src/network"
	"market-breadth/src/storage"
	"market-breadth/src/utils"
)

// -----------------------------------------------------------------------------

// setupStore opens the snapshot store selected by storage.db_type.
func setupStore(config *models.MConfig, appLogger *logger.Logger) (interfaces.ISnapshotStore, error) {
	store, err := storage.NewStore(config, logger.NewLogger(config, "Storage"))
	if err != nil {
		return nil, err
	}
	if err := store.Initialize(); err != nil {
		return nil, err
	}
	appLogger.Info("Storage backend: %s", config.Storage.DBType)
	return store, nil
}

// -----------------------------------------------------------------------------

// setupSource builds the network manager and the quote source on top of it.
func setupSource(config *models.MConfig) *tencent.TencentQuoteSource {
	networkManager := network.NewAsyncNetworkManager(config, logger.NewLogger(config, "NetworkManager"))
	return tencent.NewTencentQuoteSource(config, networkManager, logger.NewLogger(config, "TencentSource"))
}

// -----------------------------------------------------------------------------

func setupCollector(config *models.MConfig, source interfaces.IQuoteSource) *aggregator.Collector {
	collector := aggregator.NewCollector(config, source, logger.NewLogger(config, "Collector"))
	collector.LogUniverse()
	return collector
}

// -----------------------------------------------------------------------------

// setupLiveSeries preloads today's stored snapshots into the live view.
func setupLiveSeries(config *models.MConfig, store interfaces.ISnapshotStore, appLogger *logger.Logger) *utils.LiveSeries {
	live := utils.NewLiveSeries(config.Poller.LivePoints)

	start, end := storage.TodayRange(time.Now())
	history, err := store.QueryRange(start, end)
	if err != nil {
		appLogger.Warning("Could not preload today's snapshots: %v", err)
		return live
	}
	live.Load(history)
	appLogger.Info("Live series preloaded with %d of %d snapshots", live.Len(), len(history))
	return live
}
