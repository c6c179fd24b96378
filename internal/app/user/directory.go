/*
Package user models authenticated users.

This file defines Directory, the in-memory index of users by id and by token.
*/
package user

import (
	"sync"

	"github.com/google/uuid"
)

// Directory resolves tokens and user ids to user records.
// Lookups share a read lock; writes hold the write lock only for the map swap.
type Directory struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]User
	byToken map[string]uuid.UUID
}

// NewDirectory returns an empty Directory.
func NewDirectory() *Directory {
	return &Directory{
		byID:    make(map[uuid.UUID]User),
		byToken: make(map[string]uuid.UUID),
	}
}

// ResolveByToken returns the user owning token.
func (d *Directory) ResolveByToken(token string) (User, error) {
	if token == "" {
		return User{}, ErrNotFound
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byToken[token]
	if !ok {
		return User{}, ErrNotFound
	}

	return d.byID[id], nil
}

// ResolveByID returns the user with id.
func (d *Directory) ResolveByID(id uuid.UUID) (User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}

	return u, nil
}

// Upsert stores u, replacing any record with the same id.
// The record's previous token stops resolving.
func (d *Directory) Upsert(u User) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if previous, ok := d.byID[u.ID]; ok && previous.Token != "" && previous.Token != u.Token {
		delete(d.byToken, previous.Token)
	}

	if u.Token != "" {
		if owner, ok := d.byToken[u.Token]; ok && owner != u.ID {
			// The token moved to another user; the old owner keeps its record without a token.
			stale := d.byID[owner]
			stale.Token = ""
			d.byID[owner] = stale
		}
		d.byToken[u.Token] = u.ID
	}

	d.byID[u.ID] = u
}

// Update applies fn to the record with id atomically and returns the result.
// fn must not change ID or Token.
func (d *Directory) Update(id uuid.UUID, fn func(*User)) (User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}

	fn(&u)
	u.ID = id
	u.Token = d.byID[id].Token
	d.byID[id] = u

	return u, nil
}

// Revoke drops token; the user record stays.
func (d *Directory) Revoke(token string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	id, ok := d.byToken[token]
	if !ok {
		return false
	}

	delete(d.byToken, token)
	u := d.byID[id]
	u.Token = ""
	d.byID[id] = u

	return true
}

// Len returns the number of known users.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byID)
}
