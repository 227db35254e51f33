package main

import (
	"github.com/NiftyBay/market-engine/internal/config"
	"github.com/NiftyBay/market-engine/internal/config/di"
	"github.com/NiftyBay/market-engine/internal/daemon"
	"go.uber.org/zap"
)

func main() {
	config.Init("marketd")

	container, err := di.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}

	// registers the lifecycle event listeners
	container.GetMarketActionIndexer()

	daemon.NewDaemon(container.GetElastic(), container.GetApiServer()).Execute()
}
