package types

import "testing"

const tok Address = "00112233445566778899aabbccddeeff00112233"
const tok2 Address = "ffeeddccbbaa99887766554433221100ffeeddcc"

func TestAmountArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Amount
		expected Amount
	}{
		{"Add", func() Amount { return NewAmount(tok, 100).Add(NewAmount(tok, 200)) }, NewAmount(tok, 300)},
		{"Subtract", func() Amount { return NewAmount(tok, 500).Subtract(NewAmount(tok, 200)) }, NewAmount(tok, 300)},
		{"Multiply", func() Amount { return NewAmount(tok, 100).Multiply(3) }, NewAmount(tok, 300)},
		{"Divide truncates", func() Amount { return NewAmount(tok, 7).Divide(2) }, NewAmount(tok, 3)},
		{"Clamp above", func() Amount { return NewAmount(tok, 500).Clamp(NewAmount(tok, 300)) }, NewAmount(tok, 300)},
		{"Clamp below", func() Amount { return NewAmount(tok, 100).Clamp(NewAmount(tok, 300)) }, NewAmount(tok, 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.op()
			if !result.Equal(tt.expected) {
				t.Errorf("got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestAmountTokenMismatch(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for token mismatch")
		}
	}()
	_ = NewAmount(tok, 100).Add(NewAmount(tok2, 100))
}

func TestAmountPredicates(t *testing.T) {
	tests := []struct {
		name       string
		amount     Amount
		isZero     bool
		isPositive bool
		isNegative bool
	}{
		{"Zero", ZeroAmount(tok), true, false, false},
		{"Positive", NewAmount(tok, 100), false, true, false},
		{"Negative", NewAmount(tok, -100), false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.amount.IsZero(); got != tt.isZero {
				t.Errorf("IsZero: got %v, want %v", got, tt.isZero)
			}
			if got := tt.amount.IsPositive(); got != tt.isPositive {
				t.Errorf("IsPositive: got %v, want %v", got, tt.isPositive)
			}
			if got := tt.amount.IsNegative(); got != tt.isNegative {
				t.Errorf("IsNegative: got %v, want %v", got, tt.isNegative)
			}
		})
	}
}

func TestSumAmounts(t *testing.T) {
	got := SumAmounts(NewAmount(tok, 100), NewAmount(tok, 200), NewAmount(tok, 300))
	if !got.Equal(NewAmount(tok, 600)) {
		t.Errorf("SumAmounts: got %v, want 600@%s", got, tok)
	}
}
