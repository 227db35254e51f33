package di

import (
	"time"

	"github.com/NiftyBay/market-engine/internal/api"
	"github.com/NiftyBay/market-engine/internal/config"
	"github.com/NiftyBay/market-engine/internal/custody"
	"github.com/NiftyBay/market-engine/internal/elastic_search"
	"github.com/NiftyBay/market-engine/internal/engine"
	"github.com/NiftyBay/market-engine/internal/feeconfig"
	"github.com/NiftyBay/market-engine/internal/indexer"
	"github.com/NiftyBay/market-engine/internal/ledger"
	"github.com/NiftyBay/market-engine/internal/messenger"
	"github.com/NiftyBay/market-engine/internal/payment"
	"github.com/NiftyBay/market-engine/internal/registry"
	"github.com/NiftyBay/market-engine/internal/repository"
	"github.com/patrickmn/go-cache"
	"github.com/sarulabs/di/v2"
	"go.uber.org/zap"
)

var Definitions = []di.Def{
	{
		Name: "cache",
		Build: func(ctn di.Container) (interface{}, error) {
			return cache.New(5*time.Minute, 10*time.Minute), nil
		},
	},
	{
		Name: "elastic",
		Build: func(ctn di.Container) (interface{}, error) {
			elastic, err := elastic_search.New()
			if err != nil {
				zap.L().With(zap.Error(err)).Fatal("Failed to start ES")
			}

			return elastic, nil
		},
	},
	{
		Name: "messenger",
		Build: func(ctn di.Container) (interface{}, error) {
			if config.Get().Aws.QueueName == "" {
				zap.L().Warn("No queue configured, notifications disabled")
				return (messenger.MessageService)(nil), nil
			}

			return messenger.NewMessenger()
		},
	},
	{
		Name: "token",
		Build: func(ctn di.Container) (interface{}, error) {
			rpc := config.Get().TokenRpc
			if rpc.Url == "" {
				zap.L().Warn("No token rpc configured, using in-memory token contract")
				return (custody.TokenContract)(custody.NewMemoryTokenContract()), nil
			}

			return custody.NewClient(rpc.Url, rpc.Timeout, rpc.Debug)
		},
	},
	{
		Name: "registry",
		Build: func(ctn di.Container) (interface{}, error) {
			return registry.NewItemRegistry(), nil
		},
	},
	{
		Name: "fees",
		Build: func(ctn di.Container) (interface{}, error) {
			return feeconfig.NewStore(), nil
		},
	},
	{
		Name: "ledger",
		Build: func(ctn di.Container) (interface{}, error) {
			return ledger.NewFundLedger(), nil
		},
	},
	{
		Name: "custody.adapter",
		Build: func(ctn di.Container) (interface{}, error) {
			token := ctn.Get("token").(custody.TokenContract)

			if config.Get().CustodyMode == config.CustodySellerHeld {
				return custody.NewSellerHeldAdapter(token), nil
			}

			return custody.NewEscrowAdapter(token, config.Get().EngineAddress), nil
		},
	},
	{
		Name: "payment.splitter",
		Build: func(ctn di.Container) (interface{}, error) {
			funds := ctn.Get("ledger").(ledger.FundLedger)
			defaultFee := payment.DefaultFeeMode(config.Get().DefaultFee)

			if config.Get().FeeMode == config.FeeBuffered {
				return payment.NewBufferedSplitter(funds, config.Get().EngineAddress, defaultFee), nil
			}

			return payment.NewDirectSplitter(funds, config.Get().EngineAddress, defaultFee), nil
		},
	},
	{
		Name: "engine",
		Build: func(ctn di.Container) (interface{}, error) {
			return engine.NewSettlementEngine(
				ctn.Get("registry").(registry.ItemRegistry),
				ctn.Get("fees").(feeconfig.Store),
				ctn.Get("ledger").(ledger.FundLedger),
				ctn.Get("custody.adapter").(custody.Adapter),
				ctn.Get("payment.splitter").(payment.Splitter),
				ctn.Get("token").(custody.TokenContract),
				ctn.Get("cache").(*cache.Cache),
				config.Get().Owner,
				config.Get().EngineAddress,
			), nil
		},
	},
	{
		Name: "action.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewMarketActionRepository(ctn.Get("elastic").(elastic_search.Index)), nil
		},
	},
	{
		Name: "action.indexer",
		Build: func(ctn di.Container) (interface{}, error) {
			messageService, _ := ctn.Get("messenger").(messenger.MessageService)

			return indexer.NewMarketActionIndexer(
				ctn.Get("elastic").(elastic_search.Index),
				messageService,
			), nil
		},
	},
	{
		Name: "api.server",
		Build: func(ctn di.Container) (interface{}, error) {
			return api.NewServer(
				ctn.Get("engine").(engine.SettlementEngine),
				ctn.Get("action.repo").(repository.MarketActionRepository),
			), nil
		},
	},
}
