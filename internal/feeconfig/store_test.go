package feeconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_SetPolicy(t *testing.T) {
	s := NewStore()

	err := s.SetPolicy("0xcontract", "0xroyalty", 500, 250)
	assert.NoError(t, err)

	policy := s.GetPolicy("0xcontract")
	assert.Equal(t, "0xroyalty", policy.RoyaltyAccount)
	assert.Equal(t, uint16(500), policy.RoyaltyBps)
	assert.Equal(t, uint16(250), policy.MarketBps)
}

func TestStore_SetPolicyRejectsRateSum(t *testing.T) {
	s := NewStore()

	err := s.SetPolicy("0xcontract", "0xroyalty", 6000, 4001)
	assert.ErrorIs(t, err, ErrInvalidRates)

	// boundary is inclusive
	err = s.SetPolicy("0xcontract", "0xroyalty", 6000, 4000)
	assert.NoError(t, err)
}

func TestStore_SetPolicyOverwritesWhole(t *testing.T) {
	s := NewStore()

	s.SetPolicy("0xcontract", "0xroyalty", 500, 250)
	s.SetPolicy("0xcontract", "0xother", 100, 0)

	policy := s.GetPolicy("0xcontract")
	assert.Equal(t, "0xother", policy.RoyaltyAccount)
	assert.Equal(t, uint16(100), policy.RoyaltyBps)
	assert.Equal(t, uint16(0), policy.MarketBps)
}

func TestStore_GetPolicyDefault(t *testing.T) {
	s := NewStore()

	policy := s.GetPolicy("0xunknown")
	assert.True(t, policy.Zero())
	assert.Equal(t, "0xunknown", policy.Contract)
}
