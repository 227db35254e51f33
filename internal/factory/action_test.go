package factory

import (
	"math/big"
	"testing"
	"time"

	"github.com/NiftyBay/market-engine/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestCreateSaleAction(t *testing.T) {
	resolved := time.Now()
	notification := entity.SoldNotification{
		Listing: entity.Listing{
			Id:         4,
			Contract:   "0xcontract",
			TokenId:    9,
			Seller:     "0xseller",
			Owner:      "0xbuyer",
			Price:      big.NewInt(100),
			ResolvedAt: resolved,
		},
		SellerProceeds: big.NewInt(93),
		Royalty:        big.NewInt(5),
		MarketFee:      big.NewInt(2),
	}

	action := CreateSaleAction(notification)
	assert.Equal(t, entity.SaleAction, action.Action)
	assert.Equal(t, "0xbuyer", action.Buyer)
	assert.Equal(t, "100", action.Cost)
	assert.Equal(t, "2", action.Fee)
	assert.Equal(t, "5", action.Royalty)
	assert.Equal(t, resolved, action.CreatedAt)
}

func TestCreateListingAction(t *testing.T) {
	created := time.Now()
	notification := entity.CreatedNotification{
		Listing: entity.Listing{
			Id:        1,
			Contract:  "0xcontract",
			TokenId:   9,
			Seller:    "0xseller",
			Price:     big.NewInt(100),
			CreatedAt: created,
		},
	}

	action := CreateListingAction(notification)
	assert.Equal(t, entity.ListingAction, action.Action)
	assert.Equal(t, "", action.Buyer)
	assert.Equal(t, "100", action.Cost)
	assert.Equal(t, created, action.CreatedAt)
}

func TestActionSlugsDifferPerAction(t *testing.T) {
	listing := entity.Listing{Id: 1, Contract: "0xcontract", TokenId: 9, Price: big.NewInt(100)}

	created := CreateListingAction(entity.CreatedNotification{Listing: listing})
	delisted := CreateDelistingAction(entity.CancelledNotification{Listing: listing})

	assert.NotEqual(t, created.Slug(), delisted.Slug())
}
