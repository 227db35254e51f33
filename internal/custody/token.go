package custody

import "errors"

var (
	ErrCustodyTransferFailed = errors.New("custody transfer failed")
	ErrNotCustodian          = errors.New("engine is not the token custodian")
)

// TokenContract is the boundary to the external non-fungible token contract.
// Every call may execute arbitrary contract logic and must be treated as
// capable of failing or re-entering the engine.
type TokenContract interface {
	IsContract(addr string) (bool, error)
	OwnerOf(contract string, tokenId uint64) (string, error)
	TransferFrom(contract, from, to string, tokenId uint64) error
}
