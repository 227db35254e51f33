package main

import (
	"fmt"
	"os"

	"github.com/NiftyBay/market-engine/internal/config"
	"github.com/NiftyBay/market-engine/internal/config/di"
	"github.com/NiftyBay/market-engine/internal/entity"
	"github.com/NiftyBay/market-engine/internal/messenger"
	"github.com/NiftyBay/market-engine/internal/repository"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var (
	container        *di.Container
	actionRepo       repository.MarketActionRepository
	messengerService messenger.MessageService
)

func main() {
	config.Init("cli")

	var err error
	container, err = di.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}

	actionRepo = container.GetMarketActionRepo()
	messengerService = container.GetMessenger()

	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name:   "actions",
				Usage:  "List recent market actions",
				Action: listActions,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "contract", Value: "", Usage: "Filter by collection contract"},
					&cli.IntFlag{Name: "size", Value: 20, Usage: "Page size"},
					&cli.IntFlag{Name: "page", Value: 1, Usage: "Page number"},
				},
			},
			{
				Name:   "item",
				Usage:  "Show the action history for a single market item",
				Action: itemActions,
				Flags: []cli.Flag{
					&cli.Uint64Flag{Name: "id", Required: true, Usage: "Market item id"},
				},
			},
			{
				Name:   "lastSale",
				Usage:  "Show the latest sale of a token",
				Action: lastSale,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "contract", Required: true, Usage: "Collection contract"},
					&cli.Uint64Flag{Name: "token", Required: true, Usage: "Token id"},
				},
			},
			{
				Name:   "queueSize",
				Usage:  "Show the pending message count on the listing queues",
				Action: queueSize,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start CLI")
	}
}

func listActions(c *cli.Context) error {
	size := c.Int("size")
	page := c.Int("page")
	contract := c.String("contract")

	var actions []entity.MarketAction
	var total int64
	var err error

	if contract != "" {
		actions, total, err = actionRepo.GetActionsByContract(contract, size, (page-1)*size)
	} else {
		actions, total, err = actionRepo.GetActions(size, (page-1)*size)
	}
	if err != nil {
		return err
	}

	fmt.Printf("%d actions\n", total)
	for _, action := range actions {
		printAction(action)
	}

	return nil
}

func itemActions(c *cli.Context) error {
	actions, err := actionRepo.GetActionsByItem(c.Uint64("id"))
	if err != nil {
		return err
	}

	for _, action := range actions {
		printAction(action)
	}

	return nil
}

func lastSale(c *cli.Context) error {
	action, err := actionRepo.GetLatestSale(c.String("contract"), c.Uint64("token"))
	if err != nil {
		return err
	}

	printAction(*action)

	return nil
}

func queueSize(c *cli.Context) error {
	if messengerService == nil {
		return fmt.Errorf("no queue configured")
	}

	for _, item := range []messenger.Item{messenger.ListingCreated, messenger.ListingSold, messenger.ListingCancelled} {
		size, err := messengerService.GetQueueSize(item)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d\n", item, *size)
	}

	return nil
}

func printAction(action entity.MarketAction) {
	fmt.Printf("[%s] item=%d contract=%s token=%d %s seller=%s buyer=%s cost=%s fee=%s royalty=%s\n",
		action.CreatedAt.Format("2006-01-02 15:04:05"),
		action.ItemId,
		action.Contract,
		action.TokenId,
		action.Action,
		action.Seller,
		action.Buyer,
		action.Cost,
		action.Fee,
		action.Royalty,
	)
}
