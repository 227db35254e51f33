package factory

import (
	"github.com/NiftyBay/market-engine/internal/entity"
)

func CreateListingAction(n entity.CreatedNotification) entity.MarketAction {
	return entity.MarketAction{
		ItemId:    n.Listing.Id,
		Contract:  n.Listing.Contract,
		TokenId:   n.Listing.TokenId,
		Action:    entity.ListingAction,
		Seller:    n.Listing.Seller,
		Cost:      n.Listing.Price.String(),
		CreatedAt: n.Listing.CreatedAt,
	}
}

func CreateSaleAction(n entity.SoldNotification) entity.MarketAction {
	return entity.MarketAction{
		ItemId:    n.Listing.Id,
		Contract:  n.Listing.Contract,
		TokenId:   n.Listing.TokenId,
		Action:    entity.SaleAction,
		Seller:    n.Listing.Seller,
		Buyer:     n.Listing.Owner,
		Cost:      n.Listing.Price.String(),
		Fee:       n.MarketFee.String(),
		Royalty:   n.Royalty.String(),
		CreatedAt: n.Listing.ResolvedAt,
	}
}

func CreateDelistingAction(n entity.CancelledNotification) entity.MarketAction {
	return entity.MarketAction{
		ItemId:    n.Listing.Id,
		Contract:  n.Listing.Contract,
		TokenId:   n.Listing.TokenId,
		Action:    entity.DelistingAction,
		Seller:    n.Listing.Seller,
		Cost:      n.Listing.Price.String(),
		CreatedAt: n.Listing.ResolvedAt,
	}
}
