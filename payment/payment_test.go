package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/market/types"
)

var (
	token    = types.Address("00000000000000000000000000000000000000e0")
	payer    = types.Address("0000000000000000000000000000000000000001")
	payee    = types.Address("0000000000000000000000000000000000000002")
	treasury = types.Address("00000000000000000000000000000000000000ff")
)

func TestPullRequiresApprovalAndBalance(t *testing.T) {
	ctx := context.Background()
	b := NewBank(treasury)
	b.Mint(token, payer, 1000)

	if err := b.Pull(ctx, token, payer, 500); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("Pull without approval error = %v, want ErrInsufficientFunds", err)
	}

	b.Approve(token, payer, 500)
	if err := b.Pull(ctx, token, payer, 500); err != nil {
		t.Fatalf("Pull error = %v", err)
	}
	if got := b.BalanceOf(token, payer); got != 500 {
		t.Errorf("payer balance = %d, want 500", got)
	}
	if got := b.TreasuryBalance(token); got != 500 {
		t.Errorf("treasury balance = %d, want 500", got)
	}

	// Allowance consumed.
	if err := b.Pull(ctx, token, payer, 1); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("Pull after allowance spent error = %v, want ErrInsufficientFunds", err)
	}

	b.Approve(token, payer, 1000)
	if err := b.Pull(ctx, token, payer, 600); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("Pull over balance error = %v, want ErrInsufficientFunds", err)
	}
	if got := b.BalanceOf(token, payer); got != 500 {
		t.Errorf("payer balance after rejected pull = %d, want 500", got)
	}
}

func TestPushFromTreasury(t *testing.T) {
	ctx := context.Background()
	b := NewBank(treasury)
	b.Mint(token, treasury, 300)

	if err := b.Push(ctx, token, payee, 400); !errors.Is(err, ErrPushFailed) {
		t.Fatalf("Push over treasury error = %v, want ErrPushFailed", err)
	}
	if err := b.Push(ctx, token, payee, 300); err != nil {
		t.Fatalf("Push error = %v", err)
	}
	if got := b.BalanceOf(token, payee); got != 300 {
		t.Errorf("payee balance = %d, want 300", got)
	}
	if got := b.TreasuryBalance(token); got != 0 {
		t.Errorf("treasury balance = %d, want 0", got)
	}
}

func TestZeroAmountIsNoop(t *testing.T) {
	ctx := context.Background()
	b := NewBank(treasury)
	if err := b.Pull(ctx, token, payer, 0); err != nil {
		t.Errorf("Pull(0) error = %v", err)
	}
	if err := b.Push(ctx, token, payee, 0); err != nil {
		t.Errorf("Push(0) error = %v", err)
	}
}
