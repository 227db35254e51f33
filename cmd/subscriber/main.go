package main

import (
	"encoding/json"

	"github.com/NiftyBay/market-engine/internal/config"
	"github.com/NiftyBay/market-engine/internal/config/di"
	"github.com/NiftyBay/market-engine/internal/messenger"
	"github.com/aws/aws-sdk-go/service/sqs"
	"go.uber.org/zap"
)

var messageService messenger.MessageService

func main() {
	config.Init("subscriber")

	container, err := di.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}

	messageService = container.GetMessenger()
	if messageService == nil {
		zap.L().Fatal("No queue configured")
	}

	go poll(messenger.ListingCreated)
	go poll(messenger.ListingSold)
	go poll(messenger.ListingCancelled)

	select {}
}

func poll(item messenger.Item) {
	zap.L().With(zap.String("item", string(item))).Info("Subscribing to queue")

	messages := make(chan *sqs.Message, 10)
	go messageService.PollMessages(item, messages)

	for message := range messages {
		var data messenger.MarketItem
		if err := json.Unmarshal([]byte(*message.Body), &data); err != nil {
			zap.L().With(zap.Error(err)).Error("Failed to read message")
			continue
		}

		zap.L().With(
			zap.String("item", string(item)),
			zap.Uint64("itemId", data.ItemId),
			zap.String("contract", data.Contract),
			zap.Uint64("tokenId", data.TokenId),
		).Info("Market notification received")

		if err := messageService.DeleteMessage(item, message); err != nil {
			zap.L().With(zap.Error(err)).Error("Failed to delete message")
		}
	}
}
