package consent

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	"github.com/xraph/market/types"
)

func testDomain() Domain {
	return Domain{Name: "market", Version: "1", ChainID: 31337, Contract: "00000000000000000000000000000000000000cc"}
}

func testKey(t *testing.T) (ed25519.PrivateKey, types.Address) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey error = %v", err)
	}
	return priv, types.AddressFromPublicKey(pub)
}

func TestVerifyAcceptsSignedRequest(t *testing.T) {
	priv, guarantor := testKey(t)
	domain := testDomain()
	req := Request{ListingID: 4, Occupant: "0000000000000000000000000000000000000001", GuarantorStake: 50000, GuarantorFeeRate: 20, Nonce: 1}

	sig := Sign(domain, req, priv)
	v := NewTypedDataVerifier()
	if err := v.Verify(domain, req, guarantor, sig); err != nil {
		t.Fatalf("Verify error = %v", err)
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	priv, guarantor := testKey(t)
	otherPriv, other := testKey(t)
	domain := testDomain()
	req := Request{ListingID: 4, Occupant: "0000000000000000000000000000000000000001", GuarantorStake: 50000, GuarantorFeeRate: 20, Nonce: 1}
	sig := Sign(domain, req, priv)
	v := NewTypedDataVerifier()

	tests := []struct {
		name      string
		req       Request
		guarantor types.Address
		sig       Signature
	}{
		{"different listing", Request{ListingID: 5, Occupant: req.Occupant, GuarantorStake: 50000, GuarantorFeeRate: 20, Nonce: 1}, guarantor, sig},
		{"different occupant", Request{ListingID: 4, Occupant: "0000000000000000000000000000000000000002", GuarantorStake: 50000, GuarantorFeeRate: 20, Nonce: 1}, guarantor, sig},
		{"different stake", Request{ListingID: 4, Occupant: req.Occupant, GuarantorStake: 60000, GuarantorFeeRate: 20, Nonce: 1}, guarantor, sig},
		{"different fee rate", Request{ListingID: 4, Occupant: req.Occupant, GuarantorStake: 50000, GuarantorFeeRate: 40, Nonce: 1}, guarantor, sig},
		{"different nonce", Request{ListingID: 4, Occupant: req.Occupant, GuarantorStake: 50000, GuarantorFeeRate: 20, Nonce: 2}, guarantor, sig},
		{"wrong signer", req, guarantor, Sign(domain, req, otherPriv)},
		{"claimed guarantor mismatch", req, other, sig},
		{"truncated signature", req, guarantor, Signature{PublicKey: sig.PublicKey, Bytes: sig.Bytes[:16]}},
		{"bad public key", req, guarantor, Signature{PublicKey: sig.PublicKey[:8], Bytes: sig.Bytes}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := v.Verify(domain, tt.req, tt.guarantor, tt.sig); !errors.Is(err, ErrInvalidSignature) {
				t.Errorf("Verify error = %v, want ErrInvalidSignature", err)
			}
		})
	}
}

func TestVerifyRejectsForeignDomain(t *testing.T) {
	priv, guarantor := testKey(t)
	req := Request{ListingID: 1, Occupant: "0000000000000000000000000000000000000001", Nonce: 1}

	sig := Sign(testDomain(), req, priv)
	other := testDomain()
	other.ChainID = 1

	v := NewTypedDataVerifier()
	if err := v.Verify(other, req, guarantor, sig); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("Verify with other domain error = %v, want ErrInvalidSignature", err)
	}
}

func TestGrantRoundTrip(t *testing.T) {
	priv, guarantor := testKey(t)
	domain := testDomain()
	req := Request{ListingID: 9, Occupant: "0000000000000000000000000000000000000001", GuarantorStake: 1000, GuarantorFeeRate: 10, Nonce: 7}

	token, err := IssueGrant(domain, req, priv, time.Minute)
	if err != nil {
		t.Fatalf("IssueGrant error = %v", err)
	}

	v := NewGrantVerifier()
	if err := v.VerifyGrant(domain, req, guarantor, token); err != nil {
		t.Fatalf("Verify error = %v", err)
	}

	// Same token against a different request fails.
	bad := req
	bad.GuarantorStake = 2000
	if err := v.VerifyGrant(domain, bad, guarantor, token); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("Verify mismatched request error = %v, want ErrInvalidSignature", err)
	}

	// And against a different domain.
	other := domain
	other.Name = "elsewhere"
	if err := v.VerifyGrant(other, req, guarantor, token); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("Verify foreign domain error = %v, want ErrInvalidSignature", err)
	}
}

func TestGrantSignatureSatisfiesVerifier(t *testing.T) {
	priv, guarantor := testKey(t)
	domain := testDomain()
	req := Request{ListingID: 4, Occupant: "0000000000000000000000000000000000000001", GuarantorStake: 500, Nonce: 11}

	token, err := IssueGrant(domain, req, priv, time.Minute)
	if err != nil {
		t.Fatalf("IssueGrant error = %v", err)
	}

	var v Verifier = NewGrantVerifier()
	if err := v.Verify(domain, req, guarantor, GrantSignature(token)); err != nil {
		t.Fatalf("Verify error = %v", err)
	}
	if err := v.Verify(domain, req, guarantor, GrantSignature("not.a.token")); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("Verify garbage token error = %v, want ErrInvalidSignature", err)
	}
}

func TestGrantExpiry(t *testing.T) {
	priv, guarantor := testKey(t)
	domain := testDomain()
	req := Request{ListingID: 2, Occupant: "0000000000000000000000000000000000000001", Nonce: 3}

	token, err := IssueGrant(domain, req, priv, -time.Minute)
	if err != nil {
		t.Fatalf("IssueGrant error = %v", err)
	}
	if err := NewGrantVerifier().VerifyGrant(domain, req, guarantor, token); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("Verify expired grant error = %v, want ErrInvalidSignature", err)
	}
}

func TestDigestDeterminism(t *testing.T) {
	domain := testDomain()
	req := Request{ListingID: 1, Occupant: "0000000000000000000000000000000000000001", GuarantorStake: 5, GuarantorFeeRate: 2, Nonce: 9}
	if Digest(domain, req) != Digest(domain, req) {
		t.Error("identical requests produced different digests")
	}
	req2 := req
	req2.Nonce++
	if Digest(domain, req) == Digest(domain, req2) {
		t.Error("different nonces produced the same digest")
	}
}
