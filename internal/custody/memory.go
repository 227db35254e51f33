package custody

import (
	"errors"
	"fmt"
	"sync"
)

// TransferHook is run before a MemoryTokenContract transfer is applied.
// Returning an error makes the transfer revert, mimicking contract logic.
type TransferHook func(contract, from, to string, tokenId uint64) error

// MemoryTokenContract is an in-process token contract used by tests and the
// local development mode. Hooks allow a test to behave like a malicious or
// broken contract.
type MemoryTokenContract struct {
	mu        sync.RWMutex
	contracts map[string]bool
	owners    map[string]string
	hook      TransferHook
}

func NewMemoryTokenContract() *MemoryTokenContract {
	return &MemoryTokenContract{
		contracts: make(map[string]bool),
		owners:    make(map[string]string),
	}
}

func (m *MemoryTokenContract) RegisterContract(addr string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.contracts[addr] = true
}

func (m *MemoryTokenContract) Mint(contract string, tokenId uint64, owner string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.contracts[contract] = true
	m.owners[tokenKey(contract, tokenId)] = owner
}

func (m *MemoryTokenContract) SetTransferHook(hook TransferHook) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hook = hook
}

func (m *MemoryTokenContract) IsContract(addr string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.contracts[addr], nil
}

func (m *MemoryTokenContract) OwnerOf(contract string, tokenId uint64) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	owner, ok := m.owners[tokenKey(contract, tokenId)]
	if !ok {
		return "", errors.New("token does not exist")
	}

	return owner, nil
}

func (m *MemoryTokenContract) TransferFrom(contract, from, to string, tokenId uint64) error {
	m.mu.RLock()
	owner, ok := m.owners[tokenKey(contract, tokenId)]
	hook := m.hook
	m.mu.RUnlock()

	if !ok {
		return errors.New("token does not exist")
	}
	if owner != from {
		return fmt.Errorf("caller %s is not the token owner", from)
	}

	// hook runs unlocked so it can call back into anything, like real
	// contract code would
	if hook != nil {
		if err := hook(contract, from, to, tokenId); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.owners[tokenKey(contract, tokenId)] = to
	m.mu.Unlock()

	return nil
}

func tokenKey(contract string, tokenId uint64) string {
	return fmt.Sprintf("%s-%d", contract, tokenId)
}
