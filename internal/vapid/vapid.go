// Package vapid builds the signed authorization a push service requires
// before it accepts a delivery (Voluntary Application Server Identification,
// RFC 8292). One short-lived ES256 assertion is minted per outbound push.
package vapid

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how far in the future the exp claim is set. RFC 8292 caps it
// at 24 hours; we use half of that.
const TokenTTL = 12 * time.Hour

// ErrKeyFormat is returned when the configured key material is not the raw
// base64url encoding of a P-256 key pair: a 32-byte private scalar and a
// 65-byte uncompressed public point (0x04 followed by X and Y). Compressed
// points are rejected, not coerced.
var ErrKeyFormat = errors.New("vapid: key is not an uncompressed P-256 key")

// Keys holds the process-wide VAPID key pair. It is loaded once at startup
// and read-only afterwards, so it is safe for concurrent use.
type Keys struct {
	private   *ecdsa.PrivateKey
	publicB64 string
}

// PublicKey returns the base64url uncompressed public point, the value
// clients pass as applicationServerKey and the k= header parameter.
func (k Keys) PublicKey() string {
	return k.publicB64
}

// LoadKeys decodes a key pair from the base64url (unpadded) encodings that
// GenerateKeys emits and deployments carry in VAPID_PRIVATE_KEY /
// VAPID_PUBLIC_KEY.
func LoadKeys(privB64, pubB64 string) (Keys, error) {
	pub, err := base64.RawURLEncoding.DecodeString(pubB64)
	if err != nil {
		return Keys{}, fmt.Errorf("vapid: decode public key: %w", err)
	}
	if len(pub) != 65 || pub[0] != 0x04 {
		return Keys{}, ErrKeyFormat
	}

	priv, err := base64.RawURLEncoding.DecodeString(privB64)
	if err != nil {
		return Keys{}, fmt.Errorf("vapid: decode private key: %w", err)
	}
	if len(priv) != 32 {
		return Keys{}, ErrKeyFormat
	}

	curve := elliptic.P256()
	d := new(big.Int).SetBytes(priv)
	x, y := curve.ScalarBaseMult(priv)

	// The supplied public key must be the point the scalar generates,
	// otherwise push services will reject every signature we produce.
	if x.Cmp(new(big.Int).SetBytes(pub[1:33])) != 0 || y.Cmp(new(big.Int).SetBytes(pub[33:])) != 0 {
		return Keys{}, errors.New("vapid: public key does not match private key")
	}

	key := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: curve, X: x, Y: y},
		D:         d,
	}
	return Keys{private: key, publicB64: pubB64}, nil
}

// GenerateKeys creates a fresh VAPID key pair, for first boot and tests.
// Returns (private, public) in the same base64url encoding LoadKeys reads.
func GenerateKeys() (string, string, error) {
	return webpush.GenerateVAPIDKeys()
}

// Signer mints per-send authorizations from the process key pair and a
// contact subject (mailto: or https: URL).
type Signer struct {
	keys    Keys
	subject string
}

func NewSigner(keys Keys, subject string) *Signer {
	return &Signer{keys: keys, subject: subject}
}

// PublicKey returns the base64url public key of the signing pair.
func (s *Signer) PublicKey() string {
	return s.keys.PublicKey()
}

// Sign returns a compact ES256 JWT with aud set to the push service origin,
// sub to the contact subject and exp to now+12h. Pure computation, no I/O.
func (s *Signer) Sign(audience string) (string, error) {
	if audience == "" {
		return "", errors.New("vapid: empty audience")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"aud": audience,
		"sub": s.subject,
		"exp": time.Now().Add(TokenTTL).Unix(),
	})
	return token.SignedString(s.keys.private)
}

// AuthorizationHeader returns the full Authorization header value for a
// push to the given audience: "vapid t=<jwt>, k=<public key>".
func (s *Signer) AuthorizationHeader(audience string) (string, error) {
	token, err := s.Sign(audience)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("vapid t=%s, k=%s", token, s.keys.PublicKey()), nil
}

// Audience derives the aud claim from a subscription endpoint: the scheme
// and host only, never the full URL.
func Audience(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("vapid: parse endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("vapid: endpoint %q has no origin", endpoint)
	}
	return u.Scheme + "://" + u.Host, nil
}
