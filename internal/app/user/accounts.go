/*
Package user models authenticated users.

This file defines AccountStore and its in-memory implementation.
*/
package user

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// AccountStore persists rank and ban state across restarts.
type AccountStore interface {
	// Account returns the stored account, or a default one (DefaultRank, not banned) when absent.
	Account(ctx context.Context, id uuid.UUID) (Account, error)

	// SaveAccount inserts or replaces the account.
	SaveAccount(ctx context.Context, a Account) error
}

// MemoryAccounts is an in-process AccountStore used when no database is configured.
type MemoryAccounts struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]Account
}

// NewMemoryAccounts returns a store seeded with the given accounts.
func NewMemoryAccounts(seed ...Account) *MemoryAccounts {
	m := &MemoryAccounts{accounts: make(map[uuid.UUID]Account, len(seed))}
	for _, a := range seed {
		m.accounts[a.ID] = a
	}
	return m
}

// Account implements AccountStore.
func (m *MemoryAccounts) Account(_ context.Context, id uuid.UUID) (Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if a, ok := m.accounts[id]; ok {
		return a, nil
	}

	return Account{ID: id, Rank: DefaultRank}, nil
}

// SaveAccount implements AccountStore.
func (m *MemoryAccounts) SaveAccount(_ context.Context, a Account) error {
	if a.Rank == "" {
		a.Rank = DefaultRank
	}

	m.mu.Lock()
	m.accounts[a.ID] = a
	m.mu.Unlock()

	return nil
}

var _ AccountStore = (*MemoryAccounts)(nil)
