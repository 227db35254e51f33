package indexer

import (
	"encoding/json"

	"github.com/NiftyBay/market-engine/internal/elastic_search"
	"github.com/NiftyBay/market-engine/internal/entity"
	"github.com/NiftyBay/market-engine/internal/event"
	"github.com/NiftyBay/market-engine/internal/factory"
	"github.com/NiftyBay/market-engine/internal/messenger"
	"go.uber.org/zap"
)

// MarketActionIndexer listens for listing lifecycle notifications and records
// each one as a market action, plus a message on the matching queue.
type MarketActionIndexer interface {
	IndexCreated(msg interface{})
	IndexSold(msg interface{})
	IndexCancelled(msg interface{})
}

type marketActionIndexer struct {
	elastic        elastic_search.Index
	messageService messenger.MessageService
}

func NewMarketActionIndexer(elastic elastic_search.Index, messageService messenger.MessageService) MarketActionIndexer {
	i := marketActionIndexer{elastic, messageService}

	event.AddEventListener(event.ListingCreatedEvent, i.IndexCreated)
	event.AddEventListener(event.ListingSoldEvent, i.IndexSold)
	event.AddEventListener(event.ListingCancelledEvent, i.IndexCancelled)

	return i
}

func (i marketActionIndexer) IndexCreated(msg interface{}) {
	notification := msg.(entity.CreatedNotification)

	action := factory.CreateListingAction(notification)
	i.elastic.AddIndexRequest(elastic_search.MarketActionIndex.Get(), action, elastic_search.MarketListing)

	i.publish(messenger.ListingCreated, notification.Listing)
}

func (i marketActionIndexer) IndexSold(msg interface{}) {
	notification := msg.(entity.SoldNotification)

	action := factory.CreateSaleAction(notification)
	i.elastic.AddIndexRequest(elastic_search.MarketActionIndex.Get(), action, elastic_search.MarketSale)

	i.publish(messenger.ListingSold, notification.Listing)
}

func (i marketActionIndexer) IndexCancelled(msg interface{}) {
	notification := msg.(entity.CancelledNotification)

	action := factory.CreateDelistingAction(notification)
	i.elastic.AddIndexRequest(elastic_search.MarketActionIndex.Get(), action, elastic_search.MarketDelisting)

	i.publish(messenger.ListingCancelled, notification.Listing)
}

func (i marketActionIndexer) publish(item messenger.Item, listing entity.Listing) {
	if i.messageService == nil {
		return
	}

	msgJson, _ := json.Marshal(messenger.MarketItem{
		ItemId:   listing.Id,
		Contract: listing.Contract,
		TokenId:  listing.TokenId,
	})

	if err := i.messageService.SendMessage(item, msgJson); err != nil {
		zap.L().With(zap.Error(err), zap.Uint64("itemId", listing.Id)).
			Error("MarketActionIndexer: Failed to queue notification")
	}
}
