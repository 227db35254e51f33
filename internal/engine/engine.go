package engine

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/NiftyBay/market-engine/internal/custody"
	"github.com/NiftyBay/market-engine/internal/dev"
	"github.com/NiftyBay/market-engine/internal/entity"
	"github.com/NiftyBay/market-engine/internal/event"
	"github.com/NiftyBay/market-engine/internal/feeconfig"
	"github.com/NiftyBay/market-engine/internal/ledger"
	"github.com/NiftyBay/market-engine/internal/payment"
	"github.com/NiftyBay/market-engine/internal/registry"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("caller not authorized")
)

// SettlementEngine orchestrates the listing lifecycle: registration, atomic
// purchase settlement, cancellation, and the privileged operations. Every
// state-mutating entry point is wrapped by the reentrancy guard.
type SettlementEngine interface {
	CreateListing(seller, contract string, tokenId uint64, price *big.Int) (entity.Listing, error)
	Purchase(buyer, contract string, itemId uint64, payment *big.Int) (entity.Listing, error)
	PurchaseMany(buyer string, contracts []string, itemIds []uint64, totalPayment *big.Int) ([]entity.Listing, error)
	Cancel(caller string, itemId uint64) (entity.Listing, error)
	ForceCancel(caller string, itemId uint64) (entity.Listing, error)

	SetFeePolicy(caller, contract, royaltyAccount string, royaltyBps, marketBps uint16) error
	Withdraw(caller string) (*big.Int, error)

	GetListing(itemId uint64) (entity.Listing, error)
	FetchMarketItems(seller string, status entity.Status) []entity.Listing
	Deposit(account string, amount *big.Int)
	BalanceOf(account string) *big.Int
}

type settlementEngine struct {
	guard         reentrancyGuard
	registry      registry.ItemRegistry
	fees          feeconfig.Store
	funds         ledger.FundLedger
	adapter       custody.Adapter
	splitter      payment.Splitter
	token         custody.TokenContract
	contractCache *cache.Cache
	owner         string
	engineAddress string
}

func NewSettlementEngine(
	itemRegistry registry.ItemRegistry,
	fees feeconfig.Store,
	funds ledger.FundLedger,
	adapter custody.Adapter,
	splitter payment.Splitter,
	token custody.TokenContract,
	contractCache *cache.Cache,
	owner string,
	engineAddress string,
) SettlementEngine {
	return &settlementEngine{
		registry:      itemRegistry,
		fees:          fees,
		funds:         funds,
		adapter:       adapter,
		splitter:      splitter,
		token:         token,
		contractCache: contractCache,
		owner:         owner,
		engineAddress: engineAddress,
	}
}

func (e *settlementEngine) CreateListing(seller, contract string, tokenId uint64, price *big.Int) (entity.Listing, error) {
	if err := e.guard.enter(); err != nil {
		return entity.Listing{}, err
	}
	defer e.guard.exit()

	if price == nil || price.Sign() != 1 {
		return entity.Listing{}, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	if seller == "" {
		return entity.Listing{}, fmt.Errorf("%w: missing seller", ErrInvalidInput)
	}
	if err := e.verifyContract(contract); err != nil {
		return entity.Listing{}, err
	}

	if err := e.adapter.List(contract, tokenId, seller); err != nil {
		return entity.Listing{}, err
	}

	listing, err := e.registry.Create(contract, tokenId, price, seller)
	if err != nil {
		// inputs were pre-validated, so this is unexpected; hand the token back
		if releaseErr := e.adapter.Release(contract, tokenId, seller); releaseErr != nil {
			e.reportCompensationFailure("CreateListing", releaseErr, map[string]interface{}{
				"contract": contract,
				"tokenId":  tokenId,
				"seller":   seller,
			})
		}
		return entity.Listing{}, err
	}

	event.EmitEvent(event.ListingCreatedEvent, entity.CreatedNotification{Listing: listing})

	return listing, nil
}

func (e *settlementEngine) Purchase(buyer, contract string, itemId uint64, pay *big.Int) (entity.Listing, error) {
	if err := e.guard.enter(); err != nil {
		return entity.Listing{}, err
	}
	defer e.guard.exit()

	sold, result, err := e.settleOne(buyer, contract, itemId, pay)
	if err != nil {
		return entity.Listing{}, err
	}

	event.EmitEvent(event.ListingSoldEvent, entity.SoldNotification{
		Listing:        sold,
		SellerProceeds: result.SellerProceeds,
		Royalty:        result.Royalty,
		MarketFee:      result.MarketFee,
	})

	return sold, nil
}

// settleOne runs a single purchase with the guard already held. On success
// the listing is Sold; on failure no state change is observable. No
// notification is emitted so that batch callers can defer emission until the
// whole batch commits.
func (e *settlementEngine) settleOne(buyer, contract string, itemId uint64, pay *big.Int) (entity.Listing, payment.Result, error) {
	if buyer == "" {
		return entity.Listing{}, payment.Result{}, fmt.Errorf("%w: missing buyer", ErrInvalidInput)
	}
	if err := e.verifyContract(contract); err != nil {
		return entity.Listing{}, payment.Result{}, err
	}

	listing, err := e.registry.Get(itemId)
	if err != nil {
		return entity.Listing{}, payment.Result{}, err
	}
	if listing.Contract != contract {
		return entity.Listing{}, payment.Result{}, fmt.Errorf("%w: item %d does not belong to %s", ErrInvalidInput, itemId, contract)
	}
	if listing.Status != entity.StatusActive {
		return entity.Listing{}, payment.Result{}, registry.ErrInvalidState
	}
	if pay == nil || pay.Cmp(listing.Price) != 0 {
		return entity.Listing{}, payment.Result{}, payment.ErrWrongPaymentAmount
	}

	if err := e.adapter.Settle(contract, listing.TokenId, listing.Seller, buyer); err != nil {
		return entity.Listing{}, payment.Result{}, err
	}

	policy := e.fees.GetPolicy(contract)
	result, err := e.splitter.Settle(listing, buyer, pay, policy)
	if err != nil {
		// the token moved but payment did not: undo the custody transfer
		if revErr := e.adapter.Reverse(contract, listing.TokenId, listing.Seller, buyer); revErr != nil {
			e.reportCompensationFailure("Purchase", revErr, map[string]interface{}{
				"itemId":  itemId,
				"tokenId": listing.TokenId,
				"buyer":   buyer,
			})
		}
		return entity.Listing{}, payment.Result{}, err
	}

	sold, err := e.registry.MarkSold(itemId, buyer)
	if err != nil {
		// cannot happen while the guard holds, but never leave value behind
		e.reverseSettlement(buyer, listing, result)
		return entity.Listing{}, payment.Result{}, err
	}

	zap.L().With(
		zap.Uint64("itemId", itemId),
		zap.Uint64("tokenId", listing.TokenId),
		zap.String("seller", listing.Seller),
		zap.String("buyer", buyer),
		zap.String("price", listing.Price.String()),
		zap.String("royalty", result.Royalty.String()),
		zap.String("fee", result.MarketFee.String()),
	).Info("Engine: Item sold")

	return sold, result, nil
}

// reverseSettlement unwinds a fully settled purchase: funds go back to the
// buyer and custody returns to its pre-sale holder.
func (e *settlementEngine) reverseSettlement(buyer string, before entity.Listing, result payment.Result) {
	e.funds.ReverseTransfer(buyer, before.Seller, result.SellerProceeds)
	e.funds.ReverseTransfer(buyer, result.RoyaltyRecipient, result.Royalty)
	e.funds.ReverseTransfer(buyer, result.FeeRecipient, result.MarketFee)

	if err := e.adapter.Reverse(before.Contract, before.TokenId, before.Seller, buyer); err != nil {
		e.reportCompensationFailure("reverseSettlement", err, map[string]interface{}{
			"itemId":  before.Id,
			"tokenId": before.TokenId,
			"buyer":   buyer,
		})
	}
}

func (e *settlementEngine) Cancel(caller string, itemId uint64) (entity.Listing, error) {
	if err := e.guard.enter(); err != nil {
		return entity.Listing{}, err
	}
	defer e.guard.exit()

	listing, err := e.registry.Get(itemId)
	if err != nil {
		return entity.Listing{}, err
	}
	if caller != listing.Seller {
		return entity.Listing{}, ErrUnauthorized
	}

	return e.cancel(listing)
}

func (e *settlementEngine) ForceCancel(caller string, itemId uint64) (entity.Listing, error) {
	if err := e.guard.enter(); err != nil {
		return entity.Listing{}, err
	}
	defer e.guard.exit()

	if caller != e.owner {
		return entity.Listing{}, ErrUnauthorized
	}

	listing, err := e.registry.Get(itemId)
	if err != nil {
		return entity.Listing{}, err
	}

	return e.cancel(listing)
}

func (e *settlementEngine) cancel(listing entity.Listing) (entity.Listing, error) {
	if listing.Status != entity.StatusActive {
		return entity.Listing{}, registry.ErrInvalidState
	}

	if err := e.adapter.Release(listing.Contract, listing.TokenId, listing.Seller); err != nil {
		return entity.Listing{}, err
	}

	cancelled, err := e.registry.MarkCancelled(listing.Id)
	if err != nil {
		return entity.Listing{}, err
	}

	zap.L().With(
		zap.Uint64("itemId", listing.Id),
		zap.Uint64("tokenId", listing.TokenId),
		zap.String("seller", listing.Seller),
	).Info("Engine: Listing cancelled")

	event.EmitEvent(event.ListingCancelledEvent, entity.CancelledNotification{Listing: cancelled})

	return cancelled, nil
}

func (e *settlementEngine) GetListing(itemId uint64) (entity.Listing, error) {
	return e.registry.Get(itemId)
}

func (e *settlementEngine) FetchMarketItems(seller string, status entity.Status) []entity.Listing {
	return e.registry.Query(registry.Filter{Seller: seller, Status: status})
}

func (e *settlementEngine) Deposit(account string, amount *big.Int) {
	e.funds.Deposit(account, amount)
}

func (e *settlementEngine) BalanceOf(account string) *big.Int {
	return e.funds.BalanceOf(account)
}

// verifyContract checks that the collection address refers to deployed
// contract code. Results are cached, the check is on every hot path.
func (e *settlementEngine) verifyContract(addr string) error {
	if addr == "" {
		return fmt.Errorf("%w: missing contract address", ErrInvalidInput)
	}

	if _, found := e.contractCache.Get(addr); found {
		return nil
	}

	ok, err := e.token.IsContract(addr)
	if err != nil {
		return fmt.Errorf("%w: contract lookup failed: %s", ErrInvalidInput, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s is not a contract", ErrInvalidInput, addr)
	}

	e.contractCache.Set(addr, true, cache.DefaultExpiration)

	return nil
}

func (e *settlementEngine) reportCompensationFailure(name string, err error, extra map[string]interface{}) {
	report := dev.NewError("engine", name, err, extra)
	zap.L().With(
		zap.String("component", report.Component),
		zap.String("name", report.Name),
		zap.Any("extra", report.Extra),
		zap.Time("time", report.Time),
		zap.Error(err),
	).Error("Engine: Compensation failed, manual intervention required")
}
