package feeconfig

import (
	"errors"
	"sync"

	"github.com/NiftyBay/market-engine/internal/entity"
	"go.uber.org/zap"
)

var ErrInvalidRates = errors.New("royalty and market rates exceed 10000 bps")

// Store holds the per-collection fee policy. Policies are written whole;
// a partial update is not possible.
type Store interface {
	SetPolicy(contract, royaltyAccount string, royaltyBps, marketBps uint16) error
	GetPolicy(contract string) entity.FeePolicy
}

type store struct {
	mu       sync.RWMutex
	policies map[string]entity.FeePolicy
}

func NewStore() Store {
	return &store{policies: make(map[string]entity.FeePolicy)}
}

func (s *store) SetPolicy(contract, royaltyAccount string, royaltyBps, marketBps uint16) error {
	if uint32(royaltyBps)+uint32(marketBps) > uint32(entity.MaxBps) {
		return ErrInvalidRates
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.policies[contract] = entity.FeePolicy{
		Contract:       contract,
		RoyaltyAccount: royaltyAccount,
		RoyaltyBps:     royaltyBps,
		MarketBps:      marketBps,
	}

	zap.L().With(
		zap.String("contract", contract),
		zap.String("royaltyAccount", royaltyAccount),
		zap.Uint16("royaltyBps", royaltyBps),
		zap.Uint16("marketBps", marketBps),
	).Info("FeeConfig: Policy set")

	return nil
}

// GetPolicy returns the configured policy, or the zero policy when the
// collection has never been configured.
func (s *store) GetPolicy(contract string) entity.FeePolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()

	policy, ok := s.policies[contract]
	if !ok {
		return entity.FeePolicy{Contract: contract}
	}

	return policy
}
