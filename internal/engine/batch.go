package engine

import (
	"fmt"
	"math/big"

	"github.com/NiftyBay/market-engine/internal/entity"
	"github.com/NiftyBay/market-engine/internal/event"
	"github.com/NiftyBay/market-engine/internal/payment"
	"go.uber.org/zap"
)

// settledItem records one completed purchase inside a batch so the batch can
// be unwound if a later item fails.
type settledItem struct {
	before entity.Listing
	sold   entity.Listing
	result payment.Result
}

// PurchaseMany settles an ordered list of (collection, itemId) pairs against
// a single total payment, consuming each listing's price from the total in
// order. The batch is all-or-nothing: any failure reverses every prior
// settlement in the same call and the total payment ends up untouched.
func (e *settlementEngine) PurchaseMany(buyer string, contracts []string, itemIds []uint64, totalPayment *big.Int) ([]entity.Listing, error) {
	if err := e.guard.enter(); err != nil {
		return nil, err
	}
	defer e.guard.exit()

	if len(itemIds) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrInvalidInput)
	}
	if len(contracts) != len(itemIds) {
		return nil, fmt.Errorf("%w: %d collections for %d items", ErrInvalidInput, len(contracts), len(itemIds))
	}
	if totalPayment == nil || totalPayment.Sign() == -1 {
		return nil, fmt.Errorf("%w: missing payment", ErrInvalidInput)
	}

	remaining := new(big.Int).Set(totalPayment)
	journal := make([]settledItem, 0, len(itemIds))

	for i, itemId := range itemIds {
		listing, err := e.registry.Get(itemId)
		if err != nil {
			e.unwind(buyer, journal)
			return nil, err
		}

		pay := listing.Price
		if listing.Status == entity.StatusActive && remaining.Cmp(listing.Price) == -1 {
			// the remaining value cannot cover this item
			e.unwind(buyer, journal)
			return nil, payment.ErrWrongPaymentAmount
		}

		before := listing
		sold, result, err := e.settleOne(buyer, contracts[i], itemId, pay)
		if err != nil {
			e.unwind(buyer, journal)
			return nil, err
		}

		remaining.Sub(remaining, pay)
		journal = append(journal, settledItem{before: before, sold: sold, result: result})
	}

	if remaining.Sign() != 0 {
		// leftover value means the caller mispriced the batch
		e.unwind(buyer, journal)
		return nil, payment.ErrWrongPaymentAmount
	}

	listings := make([]entity.Listing, 0, len(journal))
	for _, item := range journal {
		listings = append(listings, item.sold)

		event.EmitEvent(event.ListingSoldEvent, entity.SoldNotification{
			Listing:        item.sold,
			SellerProceeds: item.result.SellerProceeds,
			Royalty:        item.result.Royalty,
			MarketFee:      item.result.MarketFee,
		})
	}

	zap.L().With(
		zap.Int("items", len(listings)),
		zap.String("buyer", buyer),
		zap.String("total", totalPayment.String()),
	).Info("Engine: Batch settled")

	return listings, nil
}

// unwind reverses completed batch purchases newest-first: registry state,
// disbursed funds, then custody.
func (e *settlementEngine) unwind(buyer string, journal []settledItem) {
	for i := len(journal) - 1; i >= 0; i-- {
		item := journal[i]

		e.registry.Revert(item.before)
		e.reverseSettlement(buyer, item.before, item.result)
	}

	if len(journal) > 0 {
		zap.L().With(zap.Int("items", len(journal)), zap.String("buyer", buyer)).
			Warn("Engine: Batch failed, prior settlements reversed")
	}
}
