package di

import (
	"github.com/NiftyBay/market-engine/internal/api"
	"github.com/NiftyBay/market-engine/internal/custody"
	"github.com/NiftyBay/market-engine/internal/elastic_search"
	"github.com/NiftyBay/market-engine/internal/engine"
	"github.com/NiftyBay/market-engine/internal/indexer"
	"github.com/NiftyBay/market-engine/internal/ledger"
	"github.com/NiftyBay/market-engine/internal/messenger"
	"github.com/NiftyBay/market-engine/internal/repository"
	"github.com/sarulabs/di/v2"
)

type Container struct {
	ctn di.Container
}

func NewContainer() (*Container, error) {
	builder, err := di.NewBuilder()
	if err != nil {
		return nil, err
	}

	if err := builder.Add(Definitions...); err != nil {
		return nil, err
	}

	return &Container{ctn: builder.Build()}, nil
}

func (c *Container) GetElastic() elastic_search.Index {
	return c.ctn.Get("elastic").(elastic_search.Index)
}

func (c *Container) GetMessenger() messenger.MessageService {
	// nil when no queue is configured
	messageService, _ := c.ctn.Get("messenger").(messenger.MessageService)

	return messageService
}

func (c *Container) GetTokenContract() custody.TokenContract {
	return c.ctn.Get("token").(custody.TokenContract)
}

func (c *Container) GetLedger() ledger.FundLedger {
	return c.ctn.Get("ledger").(ledger.FundLedger)
}

func (c *Container) GetEngine() engine.SettlementEngine {
	return c.ctn.Get("engine").(engine.SettlementEngine)
}

func (c *Container) GetMarketActionRepo() repository.MarketActionRepository {
	return c.ctn.Get("action.repo").(repository.MarketActionRepository)
}

func (c *Container) GetMarketActionIndexer() indexer.MarketActionIndexer {
	return c.ctn.Get("action.indexer").(indexer.MarketActionIndexer)
}

func (c *Container) GetApiServer() api.Server {
	return c.ctn.Get("api.server").(api.Server)
}
