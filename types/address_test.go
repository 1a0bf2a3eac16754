package types

import (
	"crypto/ed25519"
	"testing"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Address
		wantErr bool
	}{
		{"lowercase", "00112233445566778899aabbccddeeff00112233", "00112233445566778899aabbccddeeff00112233", false},
		{"uppercase normalized", "00112233445566778899AABBCCDDEEFF00112233", "00112233445566778899aabbccddeeff00112233", false},
		{"0x prefix stripped", "0x00112233445566778899aabbccddeeff00112233", "00112233445566778899aabbccddeeff00112233", false},
		{"too short", "0011", "", true},
		{"not hex", "zz112233445566778899aabbccddeeff00112233", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddress(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAddressFromPublicKey(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}

	addr := AddressFromPublicKey(pub)
	if len(addr) != AddressLength*2 {
		t.Fatalf("address length: got %d, want %d", len(addr), AddressLength*2)
	}
	if addr != AddressFromPublicKey(pub) {
		t.Error("address derivation is not deterministic")
	}

	pub2, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	if addr == AddressFromPublicKey(pub2) {
		t.Error("distinct keys produced the same address")
	}
}

func TestAddressBytesRoundTrip(t *testing.T) {
	raw := make([]byte, AddressLength)
	for i := range raw {
		raw[i] = byte(i)
	}
	addr, err := AddressFromBytes(raw)
	if err != nil {
		t.Fatal(err)
	}
	got := addr.Bytes()
	if len(got) != AddressLength {
		t.Fatalf("Bytes length: got %d, want %d", len(got), AddressLength)
	}
	for i := range raw {
		if got[i] != raw[i] {
			t.Fatalf("byte %d: got %x, want %x", i, got[i], raw[i])
		}
	}
}
