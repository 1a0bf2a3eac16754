// Package consent verifies that a guarantor authorized co-funding a
// specific occupancy. Consent is a signature over a structured request
// bound to a domain separator and a single-use nonce, produced
// off-channel and presented by the occupant.
package consent

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/xraph/market/types"
)

var (
	// ErrInvalidSignature means the signature does not verify, or the
	// signing key does not belong to the claimed guarantor.
	ErrInvalidSignature = errors.New("consent: invalid guarantor signature")
)

// Domain separates signatures between protocol deployments. Two
// deployments with different domains never accept each other's
// consents.
type Domain struct {
	Name     string `env:"CONSENT_DOMAIN_NAME" envDefault:"market"`
	Version  string `env:"CONSENT_DOMAIN_VERSION" envDefault:"1"`
	ChainID  uint64 `env:"CONSENT_DOMAIN_CHAIN_ID" envDefault:"1"`
	Contract string `env:"CONSENT_DOMAIN_CONTRACT"`
}

// Separator is the hash of the domain parameters, mixed into every
// request digest.
func (d Domain) Separator() [32]byte {
	h := sha256.New()
	h.Write([]byte("market.consent.domain\x00"))
	writeString(h, d.Name)
	writeString(h, d.Version)
	writeUint64(h, d.ChainID)
	writeString(h, d.Contract)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Request is the exact content a guarantor signs. Every field binds
// the consent: a different listing, occupant, stake, fee rate, or
// nonce produces a different digest.
type Request struct {
	ListingID        uint64
	Occupant         types.Address
	GuarantorStake   int64
	GuarantorFeeRate int64
	Nonce            uint64
}

// Digest computes the signed message for a request under a domain.
func Digest(domain Domain, req Request) [32]byte {
	sep := domain.Separator()
	h := sha256.New()
	h.Write([]byte("market.consent.request\x00"))
	h.Write(sep[:])
	writeUint64(h, req.ListingID)
	writeString(h, string(req.Occupant))
	writeUint64(h, uint64(req.GuarantorStake))
	writeUint64(h, uint64(req.GuarantorFeeRate))
	writeUint64(h, req.Nonce)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Signature carries the signing key alongside the signature bytes.
// Ed25519 cannot recover the signer from a signature, so the key
// travels with it and the verifier checks the key derives the claimed
// guarantor address.
type Signature struct {
	PublicKey ed25519.PublicKey
	Bytes     []byte
}

// Sign produces a guarantor's consent over a request. Helper for
// clients and tests.
func Sign(domain Domain, req Request, key ed25519.PrivateKey) Signature {
	digest := Digest(domain, req)
	return Signature{
		PublicKey: key.Public().(ed25519.PublicKey),
		Bytes:     ed25519.Sign(key, digest[:]),
	}
}

// Verifier checks that a signature is the guarantor's consent to a
// request. Implementations must bind the signer identity to the
// guarantor address, not merely check signature validity.
type Verifier interface {
	Verify(domain Domain, req Request, guarantor types.Address, sig Signature) error
}

// TypedDataVerifier verifies digest signatures. The zero value is
// ready to use.
type TypedDataVerifier struct{}

// NewTypedDataVerifier creates the default verifier.
func NewTypedDataVerifier() *TypedDataVerifier { return &TypedDataVerifier{} }

// Verify implements Verifier.
func (v *TypedDataVerifier) Verify(domain Domain, req Request, guarantor types.Address, sig Signature) error {
	if len(sig.PublicKey) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: bad public key length %d", ErrInvalidSignature, len(sig.PublicKey))
	}
	digest := Digest(domain, req)
	if !ed25519.Verify(sig.PublicKey, digest[:], sig.Bytes) {
		return fmt.Errorf("%w: signature does not verify", ErrInvalidSignature)
	}
	if types.AddressFromPublicKey(sig.PublicKey) != guarantor {
		return fmt.Errorf("%w: signer is not guarantor %s", ErrInvalidSignature, guarantor)
	}
	return nil
}

func writeString(h interface{ Write([]byte) (int, error) }, s string) {
	writeUint64(h, uint64(len(s)))
	h.Write([]byte(s))
}

func writeUint64(h interface{ Write([]byte) (int, error) }, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	h.Write(buf[:])
}
