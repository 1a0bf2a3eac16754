// Package types provides common types used across Market.
package types

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressLength is the byte length of an account address.
const AddressLength = 20

// Address identifies an account: an asset owner, an occupant, a
// guarantor, a token contract, or the protocol treasury. It is the
// lowercase hex encoding of 20 bytes, without a prefix.
type Address string

// ZeroAddress is the empty account, used where a field is optional
// (e.g. an occupancy without a guarantor).
const ZeroAddress Address = ""

// AddressFromBytes builds an Address from exactly 20 bytes.
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != AddressLength {
		return ZeroAddress, fmt.Errorf("types: address must be %d bytes, got %d", AddressLength, len(b))
	}
	return Address(hex.EncodeToString(b)), nil
}

// AddressFromPublicKey derives the account address of an Ed25519 key:
// the trailing 20 bytes of the SHA-256 hash of the raw public key.
func AddressFromPublicKey(pub ed25519.PublicKey) Address {
	sum := sha256.Sum256(pub)
	return Address(hex.EncodeToString(sum[len(sum)-AddressLength:]))
}

// ParseAddress validates and normalizes a hex address string.
func ParseAddress(s string) (Address, error) {
	s = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	b, err := hex.DecodeString(s)
	if err != nil {
		return ZeroAddress, fmt.Errorf("types: parse address %q: %w", s, err)
	}
	return AddressFromBytes(b)
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool { return a == ZeroAddress }

// Bytes returns the decoded address bytes, or nil for the zero address.
func (a Address) Bytes() []byte {
	if a.IsZero() {
		return nil
	}
	b, err := hex.DecodeString(string(a))
	if err != nil {
		return nil
	}
	return b
}

// String implements fmt.Stringer.
func (a Address) String() string { return string(a) }
