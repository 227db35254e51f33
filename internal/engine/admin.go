package engine

import (
	"fmt"
	"math/big"

	"github.com/NiftyBay/market-engine/internal/ledger"
	"github.com/NiftyBay/market-engine/internal/payment"
	"go.uber.org/zap"
)

// SetFeePolicy installs the fee policy for a collection. Owner only.
func (e *settlementEngine) SetFeePolicy(caller, contract, royaltyAccount string, royaltyBps, marketBps uint16) error {
	if err := e.guard.enter(); err != nil {
		return err
	}
	defer e.guard.exit()

	if caller != e.owner {
		return ErrUnauthorized
	}
	if err := e.verifyContract(contract); err != nil {
		return err
	}

	return e.fees.SetPolicy(contract, royaltyAccount, royaltyBps, marketBps)
}

// Withdraw drains the engine-held marketplace fee balance to the owner
// account. Owner only.
func (e *settlementEngine) Withdraw(caller string) (*big.Int, error) {
	if err := e.guard.enter(); err != nil {
		return nil, err
	}
	defer e.guard.exit()

	if caller != e.owner {
		return nil, ErrUnauthorized
	}

	balance := e.funds.BalanceOf(e.engineAddress)
	if balance.Sign() != 1 {
		return big.NewInt(0), nil
	}

	if err := e.funds.Transfer(e.engineAddress, e.owner, balance); err != nil {
		if err == ledger.ErrTransferRejected {
			return nil, fmt.Errorf("%w: owner account rejected the withdrawal", payment.ErrTransferFailed)
		}
		return nil, fmt.Errorf("%w: %s", payment.ErrTransferFailed, err)
	}

	zap.L().With(
		zap.String("owner", e.owner),
		zap.String("amount", balance.String()),
	).Info("Engine: Fees withdrawn")

	return balance, nil
}
