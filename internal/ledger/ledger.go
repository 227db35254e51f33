package ledger

import (
	"errors"
	"math/big"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrTransferRejected  = errors.New("transfer rejected by recipient")
	ErrInvalidAmount     = errors.New("invalid transfer amount")
)

// ReceiveHook is untrusted code attached to an account that runs whenever the
// account is credited. It may attempt to call back into the engine.
type ReceiveHook func(from string, amount *big.Int) error

// Stage identifies the tranche being acknowledged by a buffered fee recipient.
type Stage string

const (
	StageRoyalty Stage = "royalty"
	StageFee     Stage = "fee"
)

// ShareReceiver must be implemented by the royalty account for the buffered
// fee variant. The recipient acknowledges each tranche separately.
type ShareReceiver interface {
	ShareReceived(stage Stage) error
}

// FundLedger is the engine-owned balance bank. Accounts are created on first
// use. All disbursement during settlement moves through Transfer so that a
// failed settlement can be unwound exactly.
type FundLedger interface {
	Deposit(account string, amount *big.Int)
	BalanceOf(account string) *big.Int
	Transfer(from, to string, amount *big.Int) error

	// ReverseTransfer returns funds moved by an earlier Transfer in the same
	// invocation. Recipient hooks do not run on the way back.
	ReverseTransfer(from, to string, amount *big.Int)

	SetReceiveHook(account string, hook ReceiveHook)
	SetShareReceiver(account string, receiver ShareReceiver)
	GetShareReceiver(account string) ShareReceiver
}

type fundLedger struct {
	mu        sync.RWMutex
	balances  map[string]*big.Int
	hooks     map[string]ReceiveHook
	receivers map[string]ShareReceiver
}

func NewFundLedger() FundLedger {
	return &fundLedger{
		balances:  make(map[string]*big.Int),
		hooks:     make(map[string]ReceiveHook),
		receivers: make(map[string]ShareReceiver),
	}
}

func (l *fundLedger) Deposit(account string, amount *big.Int) {
	if amount == nil || amount.Sign() != 1 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.credit(account, amount)

	zap.L().With(
		zap.String("account", account),
		zap.String("amount", amount.String()),
	).Debug("Ledger: Deposit")
}

func (l *fundLedger) BalanceOf(account string) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	balance, ok := l.balances[account]
	if !ok {
		return big.NewInt(0)
	}

	return new(big.Int).Set(balance)
}

func (l *fundLedger) Transfer(from, to string, amount *big.Int) error {
	if amount == nil || amount.Sign() == -1 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}

	l.mu.Lock()
	balance, ok := l.balances[from]
	if !ok || balance.Cmp(amount) == -1 {
		l.mu.Unlock()
		return ErrInsufficientFunds
	}
	balance.Sub(balance, amount)
	l.credit(to, amount)
	hook := l.hooks[to]
	l.mu.Unlock()

	// The hook is untrusted and must run outside the ledger lock. A rejection
	// puts the funds back where they came from.
	if hook != nil {
		if err := hook(from, amount); err != nil {
			l.ReverseTransfer(from, to, amount)
			zap.L().With(
				zap.String("from", from),
				zap.String("to", to),
				zap.String("amount", amount.String()),
				zap.Error(err),
			).Warn("Ledger: Transfer rejected by recipient")

			return ErrTransferRejected
		}
	}

	zap.L().With(
		zap.String("from", from),
		zap.String("to", to),
		zap.String("amount", amount.String()),
	).Debug("Ledger: Transfer")

	return nil
}

func (l *fundLedger) ReverseTransfer(from, to string, amount *big.Int) {
	if amount == nil || amount.Sign() != 1 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[to]
	if !ok {
		return
	}
	balance.Sub(balance, amount)
	l.credit(from, amount)
}

func (l *fundLedger) SetReceiveHook(account string, hook ReceiveHook) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.hooks[account] = hook
}

func (l *fundLedger) SetShareReceiver(account string, receiver ShareReceiver) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.receivers[account] = receiver
}

func (l *fundLedger) GetShareReceiver(account string) ShareReceiver {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.receivers[account]
}

func (l *fundLedger) credit(account string, amount *big.Int) {
	balance, ok := l.balances[account]
	if !ok {
		balance = big.NewInt(0)
		l.balances[account] = balance
	}
	balance.Add(balance, amount)
}
