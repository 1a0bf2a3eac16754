// Package payment is the funds boundary. The engine pulls stakes in,
// holds them implicitly, and pushes payouts out through a Transferrer;
// balances and approvals live behind the interface, never in the
// engine.
package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/xraph/market/types"
)

var (
	// ErrInsufficientFunds means a pull failed: the payer lacks
	// balance or has not approved the protocol for the amount.
	ErrInsufficientFunds = errors.New("payment: insufficient funds or approval")

	// ErrPushFailed means an outbound payout failed at the token.
	ErrPushFailed = errors.New("payment: push failed")
)

// Transferrer moves funds between external parties and the protocol's
// implicit treasury. Every call is atomic: it fully succeeds or leaves
// balances unchanged.
type Transferrer interface {
	// Pull debits from into protocol custody. Requires prior approval
	// by from for at least the amount.
	Pull(ctx context.Context, token types.Address, from types.Address, amount int64) error

	// Push credits to out of protocol custody.
	Push(ctx context.Context, token types.Address, to types.Address, amount int64) error
}

type balanceKey struct {
	token  types.Address
	holder types.Address
}

// Bank is an in-memory Transferrer with per-token balances and
// allowances. The protocol treasury is a distinguished internal
// holder. Safe for concurrent use.
type Bank struct {
	mu         sync.RWMutex
	protocol   types.Address
	balances   map[balanceKey]int64
	allowances map[balanceKey]int64
}

// NewBank creates a bank whose treasury is the given protocol address.
func NewBank(protocol types.Address) *Bank {
	return &Bank{
		protocol:   protocol,
		balances:   make(map[balanceKey]int64),
		allowances: make(map[balanceKey]int64),
	}
}

// Mint credits a holder. Test and bootstrap helper.
func (b *Bank) Mint(token, holder types.Address, amount int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[balanceKey{token, holder}] += amount
}

// Approve lets holder authorize the protocol to pull up to amount.
func (b *Bank) Approve(token, holder types.Address, amount int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allowances[balanceKey{token, holder}] = amount
}

// BalanceOf reports a holder's balance in a token.
func (b *Bank) BalanceOf(token, holder types.Address) int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balances[balanceKey{token, holder}]
}

// TreasuryBalance reports the protocol's held balance in a token.
func (b *Bank) TreasuryBalance(token types.Address) int64 {
	return b.BalanceOf(token, b.protocol)
}

// Pull implements Transferrer.
func (b *Bank) Pull(ctx context.Context, token types.Address, from types.Address, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: negative amount %d", ErrInsufficientFunds, amount)
	}
	if amount == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	key := balanceKey{token, from}
	if b.allowances[key] < amount {
		return fmt.Errorf("%w: %s approved %d of %d", ErrInsufficientFunds, from, b.allowances[key], amount)
	}
	if b.balances[key] < amount {
		return fmt.Errorf("%w: %s holds %d of %d", ErrInsufficientFunds, from, b.balances[key], amount)
	}
	b.allowances[key] -= amount
	b.balances[key] -= amount
	b.balances[balanceKey{token, b.protocol}] += amount
	return nil
}

// Push implements Transferrer.
func (b *Bank) Push(ctx context.Context, token types.Address, to types.Address, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: negative amount %d", ErrPushFailed, amount)
	}
	if amount == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	treasury := balanceKey{token, b.protocol}
	if b.balances[treasury] < amount {
		return fmt.Errorf("%w: treasury holds %d of %d", ErrPushFailed, b.balances[treasury], amount)
	}
	b.balances[treasury] -= amount
	b.balances[balanceKey{token, to}] += amount
	return nil
}
