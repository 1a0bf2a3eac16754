package market

import "github.com/xraph/market/types"

// Re-export common types for convenience so users don't have to import types package.

// Address is re-exported from types package.
type Address = types.Address

// Amount is re-exported from types package.
type Amount = types.Amount

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export Address and Amount constructors
var (
	ParseAddress         = types.ParseAddress
	AddressFromBytes     = types.AddressFromBytes
	AddressFromPublicKey = types.AddressFromPublicKey
	NewAmount            = types.NewAmount
	ZeroAmount           = types.ZeroAmount
	SumAmounts           = types.SumAmounts
)

// ZeroAddress is re-exported from types package.
const ZeroAddress = types.ZeroAddress

// Re-export Entity constructor
var NewEntity = types.NewEntity
