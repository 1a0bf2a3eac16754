package types

import (
	"encoding/json"
	"fmt"
)

// Amount represents funds of a single payment token in the token's
// smallest unit. All arithmetic is integer-only, never floating point.
//
// Unlike a currency-coded money type, amounts here are keyed by the
// address of the token contract they are denominated in, because every
// listing picks its own payment token.
type Amount struct {
	Value int64   `json:"value"`
	Token Address `json:"token"`
}

// NewAmount creates an Amount of value units of the given token.
func NewAmount(token Address, value int64) Amount {
	return Amount{Value: value, Token: token}
}

// ZeroAmount returns a zero Amount of the given token.
func ZeroAmount(token Address) Amount { return Amount{Value: 0, Token: token} }

// Arithmetic operations

// Add adds two Amounts. Panics if tokens don't match.
func (a Amount) Add(other Amount) Amount {
	a.assertSameToken(other)
	return Amount{Value: a.Value + other.Value, Token: a.Token}
}

// Subtract subtracts another Amount. Panics if tokens don't match.
func (a Amount) Subtract(other Amount) Amount {
	a.assertSameToken(other)
	return Amount{Value: a.Value - other.Value, Token: a.Token}
}

// Multiply multiplies the Amount by a scalar.
func (a Amount) Multiply(n int64) Amount {
	return Amount{Value: a.Value * n, Token: a.Token}
}

// Divide divides the Amount by a divisor, truncating toward zero.
func (a Amount) Divide(divisor int64) Amount {
	if divisor == 0 {
		panic("amount: division by zero")
	}
	return Amount{Value: a.Value / divisor, Token: a.Token}
}

// Clamp returns the Amount limited from above by ceiling.
func (a Amount) Clamp(ceiling Amount) Amount {
	a.assertSameToken(ceiling)
	if a.Value > ceiling.Value {
		return ceiling
	}
	return a
}

// Comparison methods

// IsZero returns true if the value is zero.
func (a Amount) IsZero() bool { return a.Value == 0 }

// IsPositive returns true if the value is greater than zero.
func (a Amount) IsPositive() bool { return a.Value > 0 }

// IsNegative returns true if the value is less than zero.
func (a Amount) IsNegative() bool { return a.Value < 0 }

// Equal returns true if both value and token match.
func (a Amount) Equal(other Amount) bool {
	return a.Value == other.Value && a.Token == other.Token
}

// LessThan returns true if this Amount is less than other. Panics if
// tokens don't match.
func (a Amount) LessThan(other Amount) bool {
	a.assertSameToken(other)
	return a.Value < other.Value
}

// GreaterThan returns true if this Amount is greater than other. Panics
// if tokens don't match.
func (a Amount) GreaterThan(other Amount) bool {
	a.assertSameToken(other)
	return a.Value > other.Value
}

// String returns "value@token" for logs and errors.
func (a Amount) String() string {
	return fmt.Sprintf("%d@%s", a.Value, a.Token)
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Value int64   `json:"value"`
		Token Address `json:"token"`
	}{Value: a.Value, Token: a.Token})
}

// SumAmounts adds multiple Amounts. All must share one token.
func SumAmounts(values ...Amount) Amount {
	if len(values) == 0 {
		return Amount{}
	}
	result := values[0]
	for i := 1; i < len(values); i++ {
		result = result.Add(values[i])
	}
	return result
}

// assertSameToken panics if tokens don't match.
func (a Amount) assertSameToken(other Amount) {
	if a.Token != other.Token {
		panic(fmt.Sprintf("amount: token mismatch: %s != %s", a.Token, other.Token))
	}
}
