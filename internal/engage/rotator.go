// internal/engage/rotator.go
package engage

import (
	"sync"

	"github.com/hcastellani/roost-cli/api/schemas"
)

// Rotator hands out accounts round-robin so batch work spreads evenly across
// every validated session. Safe for concurrent use.
type Rotator struct {
	mu       sync.Mutex
	accounts []schemas.Session
	next     int
}

// NewRotator creates a rotator over the given accounts.
func NewRotator(accounts []schemas.Session) *Rotator {
	return &Rotator{accounts: accounts}
}

// Len returns the number of accounts in rotation.
func (r *Rotator) Len() int {
	return len(r.accounts)
}

// Next returns the next account in rotation. The boolean is false when the
// rotator is empty.
func (r *Rotator) Next() (schemas.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.accounts) == 0 {
		return schemas.Session{}, false
	}
	account := r.accounts[r.next]
	r.next = (r.next + 1) % len(r.accounts)
	return account, true
}
