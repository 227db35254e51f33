package payment

import (
	"errors"
	"math/big"
	"testing"

	"github.com/NiftyBay/market-engine/internal/entity"
	"github.com/NiftyBay/market-engine/internal/ledger"
	"github.com/stretchr/testify/assert"
)

const engineAddr = "0xengine"

func listing(price int64) entity.Listing {
	return entity.Listing{
		Id:       1,
		Status:   entity.StatusActive,
		Contract: "0xcontract",
		TokenId:  7,
		Seller:   "0xseller",
		Price:    big.NewInt(price),
	}
}

func policy(royaltyBps, marketBps uint16) entity.FeePolicy {
	return entity.FeePolicy{
		Contract:       "0xcontract",
		RoyaltyAccount: "0xroyalty",
		RoyaltyBps:     royaltyBps,
		MarketBps:      marketBps,
	}
}

func TestSplit(t *testing.T) {
	result := Split(big.NewInt(100), policy(500, 250))

	assert.Equal(t, "5", result.Royalty.String())
	assert.Equal(t, "2", result.MarketFee.String())
	assert.Equal(t, "93", result.SellerProceeds.String())

	// shares always sum back to the price despite truncation
	sum := new(big.Int).Add(result.Royalty, result.MarketFee)
	sum.Add(sum, result.SellerProceeds)
	assert.Equal(t, "100", sum.String())
}

func TestSplit_ZeroPolicy(t *testing.T) {
	result := Split(big.NewInt(100), entity.FeePolicy{})

	assert.Equal(t, "0", result.Royalty.String())
	assert.Equal(t, "0", result.MarketFee.String())
	assert.Equal(t, "100", result.SellerProceeds.String())
}

func TestDirectSplitter_Settle(t *testing.T) {
	funds := ledger.NewFundLedger()
	funds.Deposit("0xbuyer", big.NewInt(100))

	s := NewDirectSplitter(funds, engineAddr, DefaultFeeSkip)

	result, err := s.Settle(listing(100), "0xbuyer", big.NewInt(100), policy(500, 250))
	assert.NoError(t, err)
	assert.Equal(t, "93", result.SellerProceeds.String())

	assert.Equal(t, "0", funds.BalanceOf("0xbuyer").String())
	assert.Equal(t, "93", funds.BalanceOf("0xseller").String())
	assert.Equal(t, "5", funds.BalanceOf("0xroyalty").String())
	assert.Equal(t, "2", funds.BalanceOf(engineAddr).String())
}

func TestDirectSplitter_WrongPayment(t *testing.T) {
	funds := ledger.NewFundLedger()
	funds.Deposit("0xbuyer", big.NewInt(500))

	s := NewDirectSplitter(funds, engineAddr, DefaultFeeSkip)

	_, err := s.Settle(listing(100), "0xbuyer", big.NewInt(99), policy(500, 250))
	assert.ErrorIs(t, err, ErrWrongPaymentAmount)

	_, err = s.Settle(listing(100), "0xbuyer", big.NewInt(101), policy(500, 250))
	assert.ErrorIs(t, err, ErrWrongPaymentAmount)

	_, err = s.Settle(listing(100), "0xbuyer", nil, policy(500, 250))
	assert.ErrorIs(t, err, ErrWrongPaymentAmount)

	assert.Equal(t, "500", funds.BalanceOf("0xbuyer").String())
}

func TestDirectSplitter_RollbackOnRecipientRejection(t *testing.T) {
	funds := ledger.NewFundLedger()
	funds.Deposit("0xbuyer", big.NewInt(100))
	funds.SetReceiveHook("0xroyalty", func(from string, amount *big.Int) error {
		return errors.New("revert")
	})

	s := NewDirectSplitter(funds, engineAddr, DefaultFeeSkip)

	_, err := s.Settle(listing(100), "0xbuyer", big.NewInt(100), policy(500, 250))
	assert.ErrorIs(t, err, ErrTransferFailed)

	// no partial disbursement is observable
	assert.Equal(t, "100", funds.BalanceOf("0xbuyer").String())
	assert.Equal(t, "0", funds.BalanceOf("0xseller").String())
	assert.Equal(t, "0", funds.BalanceOf("0xroyalty").String())
	assert.Equal(t, "0", funds.BalanceOf(engineAddr).String())
}

func TestDirectSplitter_InsufficientBuyerFunds(t *testing.T) {
	funds := ledger.NewFundLedger()
	funds.Deposit("0xbuyer", big.NewInt(10))

	s := NewDirectSplitter(funds, engineAddr, DefaultFeeSkip)

	_, err := s.Settle(listing(100), "0xbuyer", big.NewInt(100), policy(500, 250))
	assert.ErrorIs(t, err, ErrTransferFailed)
	assert.Equal(t, "10", funds.BalanceOf("0xbuyer").String())
}

func TestDirectSplitter_NoRoyaltyAccountSkip(t *testing.T) {
	funds := ledger.NewFundLedger()
	funds.Deposit("0xbuyer", big.NewInt(100))

	s := NewDirectSplitter(funds, engineAddr, DefaultFeeSkip)

	p := policy(500, 250)
	p.RoyaltyAccount = ""

	_, err := s.Settle(listing(100), "0xbuyer", big.NewInt(100), p)
	assert.NoError(t, err)

	// royalty tranche stays with the engine rather than vanishing
	assert.Equal(t, "7", funds.BalanceOf(engineAddr).String())
	assert.Equal(t, "93", funds.BalanceOf("0xseller").String())
}

func TestDirectSplitter_NoRoyaltyAccountSink(t *testing.T) {
	funds := ledger.NewFundLedger()
	funds.Deposit("0xbuyer", big.NewInt(100))

	s := NewDirectSplitter(funds, engineAddr, DefaultFeeSink)

	p := policy(500, 250)
	p.RoyaltyAccount = ""

	_, err := s.Settle(listing(100), "0xbuyer", big.NewInt(100), p)
	assert.NoError(t, err)

	assert.Equal(t, "5", funds.BalanceOf(NullAddress).String())
	assert.Equal(t, "2", funds.BalanceOf(engineAddr).String())
}

type ackReceiver struct {
	stages []ledger.Stage
	err    error
}

func (r *ackReceiver) ShareReceived(stage ledger.Stage) error {
	if r.err != nil {
		return r.err
	}
	r.stages = append(r.stages, stage)
	return nil
}

func TestBufferedSplitter_Settle(t *testing.T) {
	funds := ledger.NewFundLedger()
	funds.Deposit("0xbuyer", big.NewInt(100))

	receiver := &ackReceiver{}
	funds.SetShareReceiver("0xroyalty", receiver)

	s := NewBufferedSplitter(funds, engineAddr, DefaultFeeSkip)

	result, err := s.Settle(listing(100), "0xbuyer", big.NewInt(100), policy(500, 250))
	assert.NoError(t, err)
	assert.Equal(t, "93", result.SellerProceeds.String())

	// both tranches land on the royalty account, acknowledged per stage
	assert.Equal(t, "7", funds.BalanceOf("0xroyalty").String())
	assert.Equal(t, "0", funds.BalanceOf(engineAddr).String())
	assert.Equal(t, []ledger.Stage{ledger.StageRoyalty, ledger.StageFee}, receiver.stages)
}

func TestBufferedSplitter_MissingAcknowledgment(t *testing.T) {
	funds := ledger.NewFundLedger()
	funds.Deposit("0xbuyer", big.NewInt(100))

	s := NewBufferedSplitter(funds, engineAddr, DefaultFeeSkip)

	// no ShareReceiver registered for the royalty account
	_, err := s.Settle(listing(100), "0xbuyer", big.NewInt(100), policy(500, 250))
	assert.ErrorIs(t, err, ErrTransferFailed)
	assert.Equal(t, "100", funds.BalanceOf("0xbuyer").String())
	assert.Equal(t, "0", funds.BalanceOf("0xseller").String())
}

func TestBufferedSplitter_RejectedAcknowledgment(t *testing.T) {
	funds := ledger.NewFundLedger()
	funds.Deposit("0xbuyer", big.NewInt(100))
	funds.SetShareReceiver("0xroyalty", &ackReceiver{err: errors.New("not now")})

	s := NewBufferedSplitter(funds, engineAddr, DefaultFeeSkip)

	_, err := s.Settle(listing(100), "0xbuyer", big.NewInt(100), policy(500, 250))
	assert.ErrorIs(t, err, ErrTransferFailed)
	assert.Equal(t, "100", funds.BalanceOf("0xbuyer").String())
	assert.Equal(t, "0", funds.BalanceOf("0xroyalty").String())
}
