package consent

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/xraph/market/types"
)

// GrantClaims is the JWT form of a consent request. Grants suit
// off-channel handoff: the guarantor issues a compact token, the
// occupant relays it, and the token carries its own expiry so stale
// consents age out without touching the nonce ledger.
type GrantClaims struct {
	ListingID        uint64 `json:"lid"`
	Occupant         string `json:"occ"`
	GuarantorStake   int64  `json:"gst"`
	GuarantorFeeRate int64  `json:"gfr"`
	Nonce            uint64 `json:"nce"`
	PublicKey        string `json:"pub"`
	jwt.RegisteredClaims
}

// IssueGrant signs a consent request as a JWT. The token audience is
// the domain separator, valid for ttl from now.
func IssueGrant(domain Domain, req Request, key ed25519.PrivateKey, ttl time.Duration) (string, error) {
	sep := domain.Separator()
	now := time.Now()
	claims := GrantClaims{
		ListingID:        req.ListingID,
		Occupant:         string(req.Occupant),
		GuarantorStake:   req.GuarantorStake,
		GuarantorFeeRate: req.GuarantorFeeRate,
		Nonce:            req.Nonce,
		PublicKey:        hex.EncodeToString(key.Public().(ed25519.PublicKey)),
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{hex.EncodeToString(sep[:])},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(key)
}

// GrantVerifier validates consent grants. The zero value is ready to
// use. It implements Verifier, with the grant token carried in the
// signature bytes (see GrantSignature), so an engine can swap it in
// wherever a digest verifier is expected.
type GrantVerifier struct{}

var _ Verifier = (*GrantVerifier)(nil)

// NewGrantVerifier creates the default grant verifier.
func NewGrantVerifier() *GrantVerifier { return &GrantVerifier{} }

// GrantSignature wraps a grant token for engines that consume
// Signature values.
func GrantSignature(token string) Signature {
	return Signature{Bytes: []byte(token)}
}

// Verify implements Verifier. The signature bytes carry the encoded
// grant token.
func (v *GrantVerifier) Verify(domain Domain, req Request, guarantor types.Address, sig Signature) error {
	return v.VerifyGrant(domain, req, guarantor, string(sig.Bytes))
}

// VerifyGrant checks a grant token against the expected request and
// guarantor. The signing key is read from the token's claims and then
// bound to the guarantor address, so a valid token signed by anyone
// else still fails.
func (v *GrantVerifier) VerifyGrant(domain Domain, req Request, guarantor types.Address, token string) error {
	sep := domain.Separator()
	claims := &GrantClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		c, ok := t.Claims.(*GrantClaims)
		if !ok {
			return nil, fmt.Errorf("unexpected claims type %T", t.Claims)
		}
		raw, err := hex.DecodeString(c.PublicKey)
		if err != nil || len(raw) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("bad public key claim")
		}
		return ed25519.PublicKey(raw), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithAudience(hex.EncodeToString(sep[:])),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if !parsed.Valid {
		return fmt.Errorf("%w: token not valid", ErrInvalidSignature)
	}

	if claims.ListingID != req.ListingID ||
		claims.Occupant != string(req.Occupant) ||
		claims.GuarantorStake != req.GuarantorStake ||
		claims.GuarantorFeeRate != req.GuarantorFeeRate ||
		claims.Nonce != req.Nonce {
		return fmt.Errorf("%w: grant does not match request", ErrInvalidSignature)
	}

	raw, err := hex.DecodeString(claims.PublicKey)
	if err != nil {
		return fmt.Errorf("%w: bad public key claim", ErrInvalidSignature)
	}
	if types.AddressFromPublicKey(ed25519.PublicKey(raw)) != guarantor {
		return fmt.Errorf("%w: signer is not guarantor %s", ErrInvalidSignature, guarantor)
	}
	return nil
}
