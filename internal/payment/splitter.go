package payment

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/NiftyBay/market-engine/internal/entity"
	"github.com/NiftyBay/market-engine/internal/ledger"
	"go.uber.org/zap"
)

var (
	ErrWrongPaymentAmount = errors.New("payment does not match listing price")
	ErrTransferFailed     = errors.New("fund disbursement failed")
)

// NullAddress is the sink for royalty tranches when no royalty account is
// configured and the engine runs in sink mode.
const NullAddress = "0x0000000000000000000000000000000000000000"

// DefaultFeeMode controls what happens to a royalty tranche when the policy
// names no royalty account: retain it in the engine balance or burn it into
// the null address.
type DefaultFeeMode string

const (
	DefaultFeeSkip DefaultFeeMode = "skip"
	DefaultFeeSink DefaultFeeMode = "sink"
)

type Result struct {
	SellerProceeds *big.Int
	Royalty        *big.Int
	MarketFee      *big.Int

	// resolved destinations of the royalty and fee tranches, recorded so a
	// failed batch can reverse the exact transfers that were made
	RoyaltyRecipient string
	FeeRecipient     string
}

// Splitter executes the three-way disbursement for a single sale. Either all
// transfers land or none do; the caller sees no partial state.
type Splitter interface {
	Settle(listing entity.Listing, buyer string, payment *big.Int, policy entity.FeePolicy) (Result, error)
}

// Split computes the fee breakdown for a price under a policy. Shares round
// down; the seller takes the remainder, so the three parts always sum to the
// price exactly.
func Split(price *big.Int, policy entity.FeePolicy) Result {
	royalty := tranche(price, policy.RoyaltyBps)
	fee := tranche(price, policy.MarketBps)

	proceeds := new(big.Int).Set(price)
	proceeds.Sub(proceeds, royalty)
	proceeds.Sub(proceeds, fee)

	return Result{SellerProceeds: proceeds, Royalty: royalty, MarketFee: fee}
}

func tranche(price *big.Int, bps uint16) *big.Int {
	share := new(big.Int).Mul(price, big.NewInt(int64(bps)))

	return share.Div(share, big.NewInt(int64(entity.MaxBps)))
}

// NewDirectSplitter pays the seller and royalty account and retains the
// marketplace fee in the engine balance for later administrator withdrawal.
func NewDirectSplitter(funds ledger.FundLedger, engineAddress string, defaultFee DefaultFeeMode) Splitter {
	return directSplitter{disburser{funds, engineAddress, defaultFee}}
}

// NewBufferedSplitter forwards both fee tranches to the royalty account,
// which must acknowledge each tranche via its ShareReceived hook.
func NewBufferedSplitter(funds ledger.FundLedger, engineAddress string, defaultFee DefaultFeeMode) Splitter {
	return bufferedSplitter{disburser{funds, engineAddress, defaultFee}}
}

type disburser struct {
	funds         ledger.FundLedger
	engineAddress string
	defaultFee    DefaultFeeMode
}

// royaltyRecipient resolves where a royalty tranche goes when the policy
// names no account.
func (d disburser) royaltyRecipient(policy entity.FeePolicy) string {
	if policy.RoyaltyAccount != "" {
		return policy.RoyaltyAccount
	}
	if d.defaultFee == DefaultFeeSink {
		return NullAddress
	}

	return d.engineAddress
}

// transferAll applies the transfers in order. On any failure the completed
// ones are reversed before the error is returned, so payment state never
// leaks out of a failed settlement.
func (d disburser) transferAll(from string, transfers []transfer) error {
	done := make([]transfer, 0, len(transfers))

	for _, t := range transfers {
		if err := d.funds.Transfer(from, t.to, t.amount); err != nil {
			for i := len(done) - 1; i >= 0; i-- {
				d.funds.ReverseTransfer(from, done[i].to, done[i].amount)
			}

			zap.L().With(
				zap.String("from", from),
				zap.String("to", t.to),
				zap.String("amount", t.amount.String()),
				zap.Error(err),
			).Warn("Payment: Disbursement failed, reversing")

			return fmt.Errorf("%w: %s", ErrTransferFailed, err)
		}
		done = append(done, t)
	}

	return nil
}

type transfer struct {
	to     string
	amount *big.Int
}

type directSplitter struct {
	disburser
}

func (s directSplitter) Settle(listing entity.Listing, buyer string, payment *big.Int, policy entity.FeePolicy) (Result, error) {
	if payment == nil || payment.Cmp(listing.Price) != 0 {
		return Result{}, ErrWrongPaymentAmount
	}

	result := Split(listing.Price, policy)
	result.RoyaltyRecipient = s.royaltyRecipient(policy)
	result.FeeRecipient = s.engineAddress

	err := s.transferAll(buyer, []transfer{
		{listing.Seller, result.SellerProceeds},
		{result.RoyaltyRecipient, result.Royalty},
		{result.FeeRecipient, result.MarketFee},
	})
	if err != nil {
		return Result{}, err
	}

	return result, nil
}

type bufferedSplitter struct {
	disburser
}

func (s bufferedSplitter) Settle(listing entity.Listing, buyer string, payment *big.Int, policy entity.FeePolicy) (Result, error) {
	if payment == nil || payment.Cmp(listing.Price) != 0 {
		return Result{}, ErrWrongPaymentAmount
	}

	result := Split(listing.Price, policy)
	result.RoyaltyRecipient = s.royaltyRecipient(policy)
	result.FeeRecipient = result.RoyaltyRecipient
	if policy.RoyaltyAccount == "" {
		// without a configured royalty account there is nobody to buffer
		// through, the fee falls back to the engine balance
		result.FeeRecipient = s.engineAddress
	}

	transfers := []transfer{
		{listing.Seller, result.SellerProceeds},
		{result.RoyaltyRecipient, result.Royalty},
		{result.FeeRecipient, result.MarketFee},
	}
	if err := s.transferAll(buyer, transfers); err != nil {
		return Result{}, err
	}

	if policy.RoyaltyAccount != "" {
		if err := s.acknowledge(policy.RoyaltyAccount, result); err != nil {
			for i := len(transfers) - 1; i >= 0; i-- {
				s.funds.ReverseTransfer(buyer, transfers[i].to, transfers[i].amount)
			}
			return Result{}, err
		}
	}

	return result, nil
}

// acknowledge requires the royalty contract to confirm receipt of each
// tranche it was sent.
func (s bufferedSplitter) acknowledge(account string, result Result) error {
	receiver := s.funds.GetShareReceiver(account)
	if receiver == nil {
		return fmt.Errorf("%w: royalty account %s does not accept shares", ErrTransferFailed, account)
	}

	if result.Royalty.Sign() == 1 {
		if err := receiver.ShareReceived(ledger.StageRoyalty); err != nil {
			return fmt.Errorf("%w: royalty not acknowledged: %s", ErrTransferFailed, err)
		}
	}
	if result.MarketFee.Sign() == 1 {
		if err := receiver.ShareReceived(ledger.StageFee); err != nil {
			return fmt.Errorf("%w: fee not acknowledged: %s", ErrTransferFailed, err)
		}
	}

	return nil
}
