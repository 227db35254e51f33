package registry

import (
	"errors"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/NiftyBay/market-engine/internal/entity"
	"go.uber.org/zap"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrInvalidState = errors.New("item not in active state")
	ErrInvalidInput = errors.New("invalid listing input")
)

type Filter struct {
	Seller string
	Status entity.Status
}

// ItemRegistry is the single writer of listing records. Item ids are
// allocated monotonically from 1 and never reused.
type ItemRegistry interface {
	Create(contract string, tokenId uint64, price *big.Int, seller string) (entity.Listing, error)
	Get(itemId uint64) (entity.Listing, error)
	MarkSold(itemId uint64, buyer string) (entity.Listing, error)
	MarkCancelled(itemId uint64) (entity.Listing, error)
	Query(filter Filter) []entity.Listing

	NextItemId() uint64
	SoldCount() uint64

	// Revert writes a previously read listing snapshot back, undoing a
	// lifecycle transition applied in a batch that later failed.
	Revert(listing entity.Listing)
}

type itemRegistry struct {
	mu         sync.RWMutex
	items      map[uint64]entity.Listing
	nextItemId uint64
	soldCount  uint64
}

func NewItemRegistry() ItemRegistry {
	return &itemRegistry{
		items:      make(map[uint64]entity.Listing),
		nextItemId: 1,
	}
}

func (r *itemRegistry) Create(contract string, tokenId uint64, price *big.Int, seller string) (entity.Listing, error) {
	if price == nil || price.Sign() != 1 {
		return entity.Listing{}, ErrInvalidInput
	}
	if contract == "" || seller == "" {
		return entity.Listing{}, ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	listing := entity.Listing{
		Id:        r.nextItemId,
		Status:    entity.StatusActive,
		Contract:  contract,
		TokenId:   tokenId,
		Seller:    seller,
		Price:     new(big.Int).Set(price),
		CreatedAt: time.Now(),
	}

	r.items[listing.Id] = listing
	r.nextItemId++

	zap.L().With(
		zap.Uint64("itemId", listing.Id),
		zap.String("contract", contract),
		zap.Uint64("tokenId", tokenId),
		zap.String("seller", seller),
		zap.String("price", price.String()),
	).Info("Registry: Listing created")

	return listing, nil
}

func (r *itemRegistry) Get(itemId uint64) (entity.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.items[itemId]
	if !ok {
		return entity.Listing{}, ErrItemNotFound
	}

	return listing, nil
}

func (r *itemRegistry) MarkSold(itemId uint64, buyer string) (entity.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.items[itemId]
	if !ok {
		return entity.Listing{}, ErrItemNotFound
	}
	if listing.Status != entity.StatusActive {
		return entity.Listing{}, ErrInvalidState
	}

	listing.Status = entity.StatusSold
	listing.Owner = buyer
	listing.Settled = true
	listing.ResolvedAt = time.Now()

	r.items[itemId] = listing
	r.soldCount++

	return listing, nil
}

func (r *itemRegistry) MarkCancelled(itemId uint64) (entity.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.items[itemId]
	if !ok {
		return entity.Listing{}, ErrItemNotFound
	}
	if listing.Status != entity.StatusActive {
		return entity.Listing{}, ErrInvalidState
	}

	listing.Status = entity.StatusCancelled
	listing.ResolvedAt = time.Now()

	r.items[itemId] = listing

	return listing, nil
}

func (r *itemRegistry) Query(filter Filter) []entity.Listing {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listings := make([]entity.Listing, 0)
	for _, listing := range r.items {
		if filter.Seller != "" && listing.Seller != filter.Seller {
			continue
		}
		if filter.Status != "" && listing.Status != filter.Status {
			continue
		}
		listings = append(listings, listing)
	}

	sort.Slice(listings, func(i, j int) bool {
		return listings[i].Id < listings[j].Id
	})

	return listings
}

func (r *itemRegistry) NextItemId() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.nextItemId
}

func (r *itemRegistry) SoldCount() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.soldCount
}

func (r *itemRegistry) Revert(listing entity.Listing) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[listing.Id]
	if !ok {
		return
	}
	if current.Status == entity.StatusSold && listing.Status != entity.StatusSold {
		r.soldCount--
	}

	r.items[listing.Id] = listing

	zap.L().With(zap.Uint64("itemId", listing.Id)).Warn("Registry: Listing reverted")
}
