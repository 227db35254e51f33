package custody

import (
	"fmt"

	"go.uber.org/zap"
)

// Adapter moves a token between seller, engine, and buyer custody around the
// listing lifecycle. Which account actually holds the token while a listing
// is active depends on the configured strategy.
type Adapter interface {
	// List takes whatever custody the strategy requires at listing time.
	List(contract string, tokenId uint64, seller string) error

	// Settle moves the token to the buyer as part of a purchase.
	Settle(contract string, tokenId uint64, seller, buyer string) error

	// Release returns the token to the seller on cancellation.
	Release(contract string, tokenId uint64, seller string) error

	// Reverse undoes a Settle within a failed batch.
	Reverse(contract string, tokenId uint64, seller, buyer string) error
}

// NewEscrowAdapter escrows the token with the engine from listing time until
// sale or cancellation.
func NewEscrowAdapter(token TokenContract, engineAddress string) Adapter {
	return escrowAdapter{token, engineAddress}
}

// NewSellerHeldAdapter leaves the token with the seller until the sale
// settles.
func NewSellerHeldAdapter(token TokenContract) Adapter {
	return sellerHeldAdapter{token}
}

type escrowAdapter struct {
	token         TokenContract
	engineAddress string
}

func (a escrowAdapter) List(contract string, tokenId uint64, seller string) error {
	if err := a.requireOwner(contract, tokenId, seller); err != nil {
		return err
	}

	return a.transfer(contract, seller, a.engineAddress, tokenId)
}

func (a escrowAdapter) Settle(contract string, tokenId uint64, seller, buyer string) error {
	if err := a.requireOwner(contract, tokenId, a.engineAddress); err != nil {
		return err
	}

	return a.transfer(contract, a.engineAddress, buyer, tokenId)
}

func (a escrowAdapter) Release(contract string, tokenId uint64, seller string) error {
	if err := a.requireOwner(contract, tokenId, a.engineAddress); err != nil {
		return err
	}

	return a.transfer(contract, a.engineAddress, seller, tokenId)
}

func (a escrowAdapter) Reverse(contract string, tokenId uint64, seller, buyer string) error {
	return a.transfer(contract, buyer, a.engineAddress, tokenId)
}

func (a escrowAdapter) requireOwner(contract string, tokenId uint64, expected string) error {
	owner, err := a.token.OwnerOf(contract, tokenId)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrCustodyTransferFailed, err)
	}
	if owner != expected {
		if expected == a.engineAddress {
			return ErrNotCustodian
		}
		return fmt.Errorf("%w: %s does not own token %d", ErrCustodyTransferFailed, expected, tokenId)
	}

	return nil
}

func (a escrowAdapter) transfer(contract, from, to string, tokenId uint64) error {
	if err := a.token.TransferFrom(contract, from, to, tokenId); err != nil {
		zap.L().With(
			zap.String("contract", contract),
			zap.Uint64("tokenId", tokenId),
			zap.String("from", from),
			zap.String("to", to),
			zap.Error(err),
		).Error("Custody: Transfer failed")

		return fmt.Errorf("%w: %s", ErrCustodyTransferFailed, err)
	}

	return nil
}

type sellerHeldAdapter struct {
	token TokenContract
}

func (a sellerHeldAdapter) List(contract string, tokenId uint64, seller string) error {
	owner, err := a.token.OwnerOf(contract, tokenId)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrCustodyTransferFailed, err)
	}
	if owner != seller {
		return fmt.Errorf("%w: %s does not own token %d", ErrCustodyTransferFailed, seller, tokenId)
	}

	return nil
}

func (a sellerHeldAdapter) Settle(contract string, tokenId uint64, seller, buyer string) error {
	owner, err := a.token.OwnerOf(contract, tokenId)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrCustodyTransferFailed, err)
	}
	if owner != seller {
		// the seller moved or lost the token after listing
		return fmt.Errorf("%w: seller no longer owns token %d", ErrCustodyTransferFailed, tokenId)
	}

	if err := a.token.TransferFrom(contract, seller, buyer, tokenId); err != nil {
		return fmt.Errorf("%w: %s", ErrCustodyTransferFailed, err)
	}

	return nil
}

func (a sellerHeldAdapter) Release(contract string, tokenId uint64, seller string) error {
	// nothing to return, the seller held the token throughout
	return nil
}

func (a sellerHeldAdapter) Reverse(contract string, tokenId uint64, seller, buyer string) error {
	if err := a.token.TransferFrom(contract, buyer, seller, tokenId); err != nil {
		return fmt.Errorf("%w: %s", ErrCustodyTransferFailed, err)
	}

	return nil
}
