/*
Package db manages the PostgreSQL connection pool and migrations.

This file implements the accounts table store.
*/
package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"moonhub/internal/app/user"
)

// Accounts is the PostgreSQL user.AccountStore.
type Accounts struct {
	pool *pgxpool.Pool
}

// NewAccounts returns an account store on pool.
func NewAccounts(pool *pgxpool.Pool) *Accounts {
	return &Accounts{pool: pool}
}

const selectAccount = `
SELECT username, rank, banned
FROM accounts
WHERE id = $1::uuid`

const upsertAccount = `
INSERT INTO accounts (id, username, rank, banned, updated_at)
VALUES ($1::uuid, $2, $3, $4, NOW())
ON CONFLICT (id) DO UPDATE
SET username = EXCLUDED.username,
    rank = EXCLUDED.rank,
    banned = EXCLUDED.banned,
    updated_at = NOW()`

// Account implements user.AccountStore.
func (a *Accounts) Account(ctx context.Context, id uuid.UUID) (user.Account, error) {
	acc := user.Account{ID: id}

	err := a.pool.QueryRow(ctx, selectAccount, id.String()).Scan(&acc.Username, &acc.Rank, &acc.Banned)
	if err != nil {
		if IsNoRows(err) {
			return user.Account{ID: id, Rank: user.DefaultRank}, nil
		}
		if IsUndefinedTable(err) {
			return user.Account{}, fmt.Errorf("accounts table missing, run migrations: %w", err)
		}
		return user.Account{}, fmt.Errorf("failed to load account %s: %w", id, err)
	}

	return acc, nil
}

// SaveAccount implements user.AccountStore.
func (a *Accounts) SaveAccount(ctx context.Context, acc user.Account) error {
	if acc.Rank == "" {
		acc.Rank = user.DefaultRank
	}

	if _, err := a.pool.Exec(ctx, upsertAccount, acc.ID.String(), acc.Username, acc.Rank, acc.Banned); err != nil {
		return fmt.Errorf("failed to save account %s: %w", acc.ID, err)
	}

	return nil
}

var _ user.AccountStore = (*Accounts)(nil)
