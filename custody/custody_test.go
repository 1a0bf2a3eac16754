package custody

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/market/types"
)

var (
	testContract = types.Address("00000000000000000000000000000000000000aa")
	alice        = types.Address("0000000000000000000000000000000000000001")
	bob          = types.Address("0000000000000000000000000000000000000002")
	protocol     = types.Address("00000000000000000000000000000000000000ff")
)

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewSingleUnitAdapter())

	if _, err := reg.Resolve(StandardSingleUnit); err != nil {
		t.Fatalf("Resolve(single_unit) error = %v", err)
	}
	if _, err := reg.Resolve(StandardMultiUnit); !errors.Is(err, ErrUnknownStandard) {
		t.Errorf("Resolve(multi_unit) error = %v, want ErrUnknownStandard", err)
	}
	if got := len(reg.Standards()); got != 1 {
		t.Errorf("Standards() len = %d, want 1", got)
	}
}

func TestSingleUnitExclusivity(t *testing.T) {
	ctx := context.Background()
	a := NewSingleUnitAdapter()
	asset := Asset{Contract: testContract, UnitID: 7, UnitCount: 1}

	a.Mint(testContract, 7, alice)

	if err := a.Register(ctx, asset, alice); err != nil {
		t.Fatalf("Register(alice) error = %v", err)
	}
	if err := a.Register(ctx, asset, bob); !errors.Is(err, ErrTransferRejected) {
		t.Errorf("Register(bob) error = %v, want ErrTransferRejected", err)
	}

	if err := a.Transfer(ctx, asset, alice, bob); err != nil {
		t.Fatalf("Transfer(alice->bob) error = %v", err)
	}

	// Exactly one holder at all times.
	for _, tc := range []struct {
		holder types.Address
		want   uint64
	}{{alice, 0}, {bob, 1}} {
		got, err := a.HolderOf(ctx, asset, tc.holder)
		if err != nil {
			t.Fatalf("HolderOf(%s) error = %v", tc.holder, err)
		}
		if got != tc.want {
			t.Errorf("HolderOf(%s) = %d, want %d", tc.holder, got, tc.want)
		}
	}

	// Alice no longer holds it, so she cannot move it again.
	if err := a.Transfer(ctx, asset, alice, bob); !errors.Is(err, ErrTransferRejected) {
		t.Errorf("Transfer from non-holder error = %v, want ErrTransferRejected", err)
	}
}

func TestSingleUnitOperatorApproval(t *testing.T) {
	a := NewSingleUnitAdapter()
	asset := Asset{Contract: testContract, UnitID: 1, UnitCount: 1}
	a.Mint(testContract, 1, alice)

	ctx := WithOperator(context.Background(), protocol)

	if err := a.Transfer(ctx, asset, alice, bob); !errors.Is(err, ErrTransferRejected) {
		t.Fatalf("Transfer without approval error = %v, want ErrTransferRejected", err)
	}
	if got, _ := a.HolderOf(ctx, asset, alice); got != 1 {
		t.Errorf("holder changed on rejected transfer")
	}

	a.SetApproval(alice, protocol, true)
	if err := a.Transfer(ctx, asset, alice, bob); err != nil {
		t.Fatalf("Transfer with approval error = %v", err)
	}

	a.SetApproval(bob, protocol, false)
	if err := a.Transfer(ctx, asset, bob, alice); !errors.Is(err, ErrTransferRejected) {
		t.Errorf("Transfer after revocation error = %v, want ErrTransferRejected", err)
	}
}

func TestMultiUnitBalances(t *testing.T) {
	ctx := context.Background()
	a := NewMultiUnitAdapter()
	asset := Asset{Contract: testContract, UnitID: 3, UnitCount: 10}

	a.Mint(testContract, 3, alice, 25)

	if err := a.Register(ctx, asset, alice); err != nil {
		t.Fatalf("Register error = %v", err)
	}

	if err := a.Transfer(ctx, asset, alice, bob); err != nil {
		t.Fatalf("Transfer error = %v", err)
	}
	if got, _ := a.HolderOf(ctx, asset, alice); got != 15 {
		t.Errorf("alice balance = %d, want 15", got)
	}
	if got, _ := a.HolderOf(ctx, asset, bob); got != 10 {
		t.Errorf("bob balance = %d, want 10", got)
	}

	// Second transfer would overdraw: nothing moves.
	big := Asset{Contract: testContract, UnitID: 3, UnitCount: 16}
	if err := a.Transfer(ctx, big, alice, bob); !errors.Is(err, ErrTransferRejected) {
		t.Fatalf("overdraw error = %v, want ErrTransferRejected", err)
	}
	if got, _ := a.HolderOf(ctx, asset, alice); got != 15 {
		t.Errorf("alice balance after rejected transfer = %d, want 15", got)
	}
	if got, _ := a.HolderOf(ctx, asset, bob); got != 10 {
		t.Errorf("bob balance after rejected transfer = %d, want 10", got)
	}
}

func TestMultiUnitOperatorApproval(t *testing.T) {
	a := NewMultiUnitAdapter()
	asset := Asset{Contract: testContract, UnitID: 9, UnitCount: 5}
	a.Mint(testContract, 9, alice, 5)

	ctx := WithOperator(context.Background(), protocol)
	if err := a.Transfer(ctx, asset, alice, bob); !errors.Is(err, ErrTransferRejected) {
		t.Fatalf("Transfer without approval error = %v, want ErrTransferRejected", err)
	}

	a.SetApproval(alice, protocol, true)
	if err := a.Transfer(ctx, asset, alice, bob); err != nil {
		t.Fatalf("Transfer with approval error = %v", err)
	}
}
