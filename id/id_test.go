package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/market/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"OccupancyID", id.NewOccupancyID, "occ_"},
		{"SettlementID", id.NewSettlementID, "stl_"},
		{"EventID", id.NewEventID, "evt_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	i := id.New(id.PrefixOccupancy)
	if i.IsNil() {
		t.Fatal("expected non-nil ID")
	}
	if i.Prefix() != id.PrefixOccupancy {
		t.Errorf("expected prefix %q, got %q", id.PrefixOccupancy, i.Prefix())
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"OccupancyID", id.NewOccupancyID, id.ParseOccupancyID},
		{"SettlementID", id.NewSettlementID, id.ParseSettlementID},
		{"EventID", id.NewEventID, id.ParseEventID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := tt.newFn()
			parsed, err := tt.parseFn(orig.String())
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			if parsed.String() != orig.String() {
				t.Errorf("round trip: got %q, want %q", parsed.String(), orig.String())
			}
		})
	}
}

func TestParseWithPrefixMismatch(t *testing.T) {
	occ := id.NewOccupancyID()
	if _, err := id.ParseSettlementID(occ.String()); err == nil {
		t.Error("expected error parsing occupancy ID as settlement ID")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"Empty", ""},
		{"Garbage", "not a typeid"},
		{"NoSuffix", "occ_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := id.Parse(tt.in); err == nil {
				t.Errorf("expected error parsing %q", tt.in)
			}
		})
	}
}

func TestNilID(t *testing.T) {
	var i id.ID
	if !i.IsNil() {
		t.Error("zero value should be nil")
	}
	if i.String() != "" {
		t.Errorf("nil ID String: got %q, want empty", i.String())
	}

	v, err := i.Value()
	if err != nil {
		t.Fatalf("Value error: %v", err)
	}
	if v != nil {
		t.Errorf("nil ID Value: got %v, want nil", v)
	}
}

func TestTextRoundTrip(t *testing.T) {
	orig := id.NewEventID()
	data, err := orig.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText error: %v", err)
	}

	var parsed id.ID
	if err := parsed.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText error: %v", err)
	}
	if parsed.String() != orig.String() {
		t.Errorf("round trip: got %q, want %q", parsed.String(), orig.String())
	}
}

func TestScan(t *testing.T) {
	orig := id.NewSettlementID()

	var fromString id.ID
	if err := fromString.Scan(orig.String()); err != nil {
		t.Fatalf("Scan string error: %v", err)
	}
	if fromString.String() != orig.String() {
		t.Errorf("Scan string: got %q, want %q", fromString.String(), orig.String())
	}

	var fromBytes id.ID
	if err := fromBytes.Scan([]byte(orig.String())); err != nil {
		t.Fatalf("Scan bytes error: %v", err)
	}
	if fromBytes.String() != orig.String() {
		t.Errorf("Scan bytes: got %q, want %q", fromBytes.String(), orig.String())
	}

	var fromNil id.ID
	if err := fromNil.Scan(nil); err != nil {
		t.Fatalf("Scan nil error: %v", err)
	}
	if !fromNil.IsNil() {
		t.Error("Scan nil should produce nil ID")
	}

	var fromInt id.ID
	if err := fromInt.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
}
