package registry

import (
	"math/big"
	"testing"

	"github.com/NiftyBay/market-engine/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestItemRegistry_Create(t *testing.T) {
	r := NewItemRegistry()

	listing, err := r.Create("0xcontract", 7, big.NewInt(100), "0xseller")
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), listing.Id)
	assert.Equal(t, entity.StatusActive, listing.Status)
	assert.Equal(t, "", listing.Owner)
	assert.False(t, listing.Settled)

	second, err := r.Create("0xcontract", 8, big.NewInt(50), "0xseller")
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), second.Id)
	assert.Equal(t, uint64(3), r.NextItemId())
}

func TestItemRegistry_CreateRejectsZeroPrice(t *testing.T) {
	r := NewItemRegistry()

	_, err := r.Create("0xcontract", 7, big.NewInt(0), "0xseller")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = r.Create("0xcontract", 7, nil, "0xseller")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = r.Create("0xcontract", 7, big.NewInt(-5), "0xseller")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestItemRegistry_PriceIsCopied(t *testing.T) {
	r := NewItemRegistry()

	price := big.NewInt(100)
	listing, err := r.Create("0xcontract", 7, price, "0xseller")
	assert.NoError(t, err)

	price.SetInt64(1)

	stored, err := r.Get(listing.Id)
	assert.NoError(t, err)
	assert.Equal(t, "100", stored.Price.String())
}

func TestItemRegistry_GetUnknownItem(t *testing.T) {
	r := NewItemRegistry()

	_, err := r.Get(42)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestItemRegistry_MarkSold(t *testing.T) {
	r := NewItemRegistry()
	listing, _ := r.Create("0xcontract", 7, big.NewInt(100), "0xseller")

	sold, err := r.MarkSold(listing.Id, "0xbuyer")
	assert.NoError(t, err)
	assert.Equal(t, entity.StatusSold, sold.Status)
	assert.Equal(t, "0xbuyer", sold.Owner)
	assert.True(t, sold.Settled)
	assert.Equal(t, uint64(1), r.SoldCount())

	_, err = r.MarkSold(listing.Id, "0xother")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = r.MarkCancelled(listing.Id)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestItemRegistry_MarkCancelled(t *testing.T) {
	r := NewItemRegistry()
	listing, _ := r.Create("0xcontract", 7, big.NewInt(100), "0xseller")

	cancelled, err := r.MarkCancelled(listing.Id)
	assert.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, cancelled.Status)
	assert.False(t, cancelled.Settled)

	_, err = r.MarkSold(listing.Id, "0xbuyer")
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, uint64(0), r.SoldCount())
}

func TestItemRegistry_Query(t *testing.T) {
	r := NewItemRegistry()
	r.Create("0xcontract", 1, big.NewInt(10), "0xalice")
	r.Create("0xcontract", 2, big.NewInt(20), "0xbob")
	r.Create("0xcontract", 3, big.NewInt(30), "0xalice")
	r.MarkSold(1, "0xbuyer")

	all := r.Query(Filter{})
	assert.Len(t, all, 3)
	assert.Equal(t, uint64(1), all[0].Id)
	assert.Equal(t, uint64(3), all[2].Id)

	active := r.Query(Filter{Status: entity.StatusActive})
	assert.Len(t, active, 2)

	alice := r.Query(Filter{Seller: "0xalice", Status: entity.StatusActive})
	assert.Len(t, alice, 1)
	assert.Equal(t, uint64(3), alice[0].Id)
}

func TestItemRegistry_Revert(t *testing.T) {
	r := NewItemRegistry()
	listing, _ := r.Create("0xcontract", 7, big.NewInt(100), "0xseller")

	snapshot, _ := r.Get(listing.Id)
	r.MarkSold(listing.Id, "0xbuyer")
	assert.Equal(t, uint64(1), r.SoldCount())

	r.Revert(snapshot)

	restored, err := r.Get(listing.Id)
	assert.NoError(t, err)
	assert.Equal(t, entity.StatusActive, restored.Status)
	assert.Equal(t, "", restored.Owner)
	assert.Equal(t, uint64(0), r.SoldCount())

	// the item is purchasable again once reverted
	_, err = r.MarkSold(listing.Id, "0xbuyer")
	assert.NoError(t, err)
}
