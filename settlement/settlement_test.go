package settlement

import "testing"

func TestComputeSplits(t *testing.T) {
	tests := []struct {
		name  string
		terms Terms
		want  Split
	}{
		{
			// One day of a 100000-second listing at rate 1, no guarantor:
			// 5% of cost to the protocol, refund back to the occupant.
			name: "no guarantor partial",
			terms: Terms{
				RatePerSecond:   1,
				MaxDuration:     100000,
				Elapsed:         86400,
				ProtocolFeeRate: 20,
				OccupantStake:   100000,
			},
			want: Split{OwnerPayout: 82080, OccupantPayout: 13600, GuarantorPayout: 0, ProtocolFee: 4320},
		},
		{
			name: "guarantor untapped earns bonus",
			terms: Terms{
				RatePerSecond:    1,
				MaxDuration:      200000,
				Elapsed:          86400,
				ProtocolFeeRate:  20,
				OccupantStake:    150000,
				GuarantorStake:   50000,
				GuarantorFeeRate: 20,
			},
			want: Split{OwnerPayout: 82080, OccupantPayout: 61100, GuarantorPayout: 52500, ProtocolFee: 4320},
		},
		{
			name: "guarantor tapped forfeits bonus",
			terms: Terms{
				RatePerSecond:    1,
				MaxDuration:      200000,
				Elapsed:          172800,
				ProtocolFeeRate:  20,
				OccupantStake:    150000,
				GuarantorStake:   50000,
				GuarantorFeeRate: 20,
			},
			want: Split{OwnerPayout: 164160, OccupantPayout: 0, GuarantorPayout: 27200, ProtocolFee: 8640},
		},
		{
			name: "full duration collapses refund",
			terms: Terms{
				RatePerSecond:   1,
				MaxDuration:     100000,
				Elapsed:         100000,
				ProtocolFeeRate: 20,
				OccupantStake:   100000,
			},
			want: Split{OwnerPayout: 95000, OccupantPayout: 0, GuarantorPayout: 0, ProtocolFee: 5000},
		},
		{
			name: "zero elapsed refunds everything",
			terms: Terms{
				RatePerSecond:   3,
				MaxDuration:     1000,
				Elapsed:         0,
				ProtocolFeeRate: 20,
				OccupantStake:   3000,
			},
			want: Split{OwnerPayout: 0, OccupantPayout: 3000, GuarantorPayout: 0, ProtocolFee: 0},
		},
		{
			name: "cost exactly at occupant stake boundary",
			terms: Terms{
				RatePerSecond:    1,
				MaxDuration:      200000,
				Elapsed:          150000,
				ProtocolFeeRate:  20,
				OccupantStake:    150000,
				GuarantorStake:   50000,
				GuarantorFeeRate: 20,
			},
			// remainder 0, bonus clamps to 0: guarantor gets principal back only.
			want: Split{OwnerPayout: 142500, OccupantPayout: 0, GuarantorPayout: 50000, ProtocolFee: 7500},
		},
		{
			name: "guarantor fully consumed",
			terms: Terms{
				RatePerSecond:    1,
				MaxDuration:      200000,
				Elapsed:          200000,
				ProtocolFeeRate:  20,
				OccupantStake:    150000,
				GuarantorStake:   50000,
				GuarantorFeeRate: 20,
			},
			want: Split{OwnerPayout: 190000, OccupantPayout: 0, GuarantorPayout: 0, ProtocolFee: 10000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.terms)
			if err != nil {
				t.Fatalf("Compute error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Compute:\n got %+v\nwant %+v", got, tt.want)
			}
			if got.Total() != tt.terms.TotalPrice() {
				t.Errorf("conservation: outputs sum to %d, want %d", got.Total(), tt.terms.TotalPrice())
			}
		})
	}
}

// TestComputeConservation sweeps a grid of elapsed times and fee rates
// and checks that every split conserves the total price exactly and
// never produces a negative payout, including where integer division
// truncates.
func TestComputeConservation(t *testing.T) {
	rates := []int64{1, 3, 7, 1000}
	feeRates := []int64{0, 1, 19, 20, 33, 399, 400}
	stakesSplits := []float64{0, 0.25, 0.5, 0.75}

	for _, rate := range rates {
		maxDuration := int64(99991) // prime-ish to force truncation
		total := rate * maxDuration
		for _, feeRate := range feeRates {
			for _, gShare := range stakesSplits {
				gStake := int64(float64(total) * gShare)
				oStake := total - gStake
				for elapsed := int64(0); elapsed <= maxDuration; elapsed += maxDuration / 13 {
					terms := Terms{
						RatePerSecond:    rate,
						MaxDuration:      maxDuration,
						Elapsed:          elapsed,
						ProtocolFeeRate:  feeRate,
						OccupantStake:    oStake,
						GuarantorStake:   gStake,
						GuarantorFeeRate: feeRate,
					}
					got, err := Compute(terms)
					if err != nil {
						t.Fatalf("Compute(%+v) error: %v", terms, err)
					}
					if got.Total() != total {
						t.Fatalf("Compute(%+v): outputs sum to %d, want %d", terms, got.Total(), total)
					}
					if got.OwnerPayout < 0 || got.OccupantPayout < 0 || got.GuarantorPayout < 0 || got.ProtocolFee < 0 {
						t.Fatalf("Compute(%+v): negative payout in %+v", terms, got)
					}
				}
			}
		}
	}
}

func TestComputeRejectsBadTerms(t *testing.T) {
	valid := Terms{
		RatePerSecond:   1,
		MaxDuration:     1000,
		Elapsed:         500,
		ProtocolFeeRate: 20,
		OccupantStake:   1000,
	}

	tests := []struct {
		name   string
		mutate func(*Terms)
	}{
		{"zero rate", func(tr *Terms) { tr.RatePerSecond = 0 }},
		{"negative rate", func(tr *Terms) { tr.RatePerSecond = -1 }},
		{"zero duration", func(tr *Terms) { tr.MaxDuration = 0 }},
		{"negative elapsed", func(tr *Terms) { tr.Elapsed = -1 }},
		{"elapsed past max", func(tr *Terms) { tr.Elapsed = 1001 }},
		{"fee rate over denominator", func(tr *Terms) { tr.ProtocolFeeRate = 401 }},
		{"underfunded stakes", func(tr *Terms) { tr.OccupantStake = 999 }},
		{"overfunded stakes", func(tr *Terms) { tr.GuarantorStake = 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := valid
			tt.mutate(&terms)
			if _, err := Compute(terms); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func BenchmarkCompute(b *testing.B) {
	terms := Terms{
		RatePerSecond:    1,
		MaxDuration:      200000,
		Elapsed:          86400,
		ProtocolFeeRate:  20,
		OccupantStake:    150000,
		GuarantorStake:   50000,
		GuarantorFeeRate: 20,
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Compute(terms)
	}
}
