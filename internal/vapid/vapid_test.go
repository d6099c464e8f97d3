package vapid

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/base64"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func generateTestSigner(t *testing.T) (*Signer, string) {
	t.Helper()

	priv, pub, err := GenerateKeys()
	if err != nil {
		t.Fatalf("GenerateKeys() error = %v", err)
	}
	keys, err := LoadKeys(priv, pub)
	if err != nil {
		t.Fatalf("LoadKeys() error = %v", err)
	}
	return NewSigner(keys, "mailto:push@sahaplatform.example"), pub
}

func publicKeyFromB64(t *testing.T, pubB64 string) *ecdsa.PublicKey {
	t.Helper()

	raw, err := base64.RawURLEncoding.DecodeString(pubB64)
	if err != nil {
		t.Fatalf("decode public key: %v", err)
	}
	return &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(raw[1:33]),
		Y:     new(big.Int).SetBytes(raw[33:]),
	}
}

func TestLoadKeysRoundTrip(t *testing.T) {
	priv, pub, err := GenerateKeys()
	if err != nil {
		t.Fatalf("GenerateKeys() error = %v", err)
	}

	keys, err := LoadKeys(priv, pub)
	if err != nil {
		t.Fatalf("LoadKeys() error = %v", err)
	}
	if keys.PublicKey() != pub {
		t.Errorf("PublicKey() = %q, want %q", keys.PublicKey(), pub)
	}
}

func TestLoadKeysRejectsBadPublicKeys(t *testing.T) {
	priv, _, err := GenerateKeys()
	if err != nil {
		t.Fatalf("GenerateKeys() error = %v", err)
	}

	compressed := make([]byte, 33)
	compressed[0] = 0x02
	short := make([]byte, 64)
	short[0] = 0x04
	wrongPrefix := make([]byte, 65)
	wrongPrefix[0] = 0x05

	tests := []struct {
		name   string
		pubB64 string
	}{
		{"compressed point", base64.RawURLEncoding.EncodeToString(compressed)},
		{"wrong length", base64.RawURLEncoding.EncodeToString(short)},
		{"wrong leading byte", base64.RawURLEncoding.EncodeToString(wrongPrefix)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadKeys(priv, tt.pubB64)
			if !errors.Is(err, ErrKeyFormat) {
				t.Errorf("LoadKeys() error = %v, want ErrKeyFormat", err)
			}
		})
	}
}

func TestLoadKeysRejectsShortPrivateKey(t *testing.T) {
	_, pub, err := GenerateKeys()
	if err != nil {
		t.Fatalf("GenerateKeys() error = %v", err)
	}

	shortPriv := base64.RawURLEncoding.EncodeToString(make([]byte, 16))
	if _, err := LoadKeys(shortPriv, pub); !errors.Is(err, ErrKeyFormat) {
		t.Errorf("LoadKeys() error = %v, want ErrKeyFormat", err)
	}
}

func TestLoadKeysRejectsMismatchedPair(t *testing.T) {
	priv1, _, err := GenerateKeys()
	if err != nil {
		t.Fatalf("GenerateKeys() error = %v", err)
	}
	_, pub2, err := GenerateKeys()
	if err != nil {
		t.Fatalf("GenerateKeys() error = %v", err)
	}

	if _, err := LoadKeys(priv1, pub2); err == nil {
		t.Error("LoadKeys() with mismatched pair: want error, got nil")
	}
}

func TestSignVerifiesAndExpiresInTwelveHours(t *testing.T) {
	signer, pub := generateTestSigner(t)

	before := time.Now()
	token, err := signer.Sign("https://push.example.com")
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	after := time.Now()

	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (any, error) {
		if tok.Method.Alg() != jwt.SigningMethodES256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return publicKeyFromB64(t, pub), nil
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !parsed.Valid {
		t.Fatal("token did not verify against the public key")
	}

	claims := parsed.Claims.(jwt.MapClaims)
	if aud, _ := claims["aud"].(string); aud != "https://push.example.com" {
		t.Errorf("aud = %q, want %q", aud, "https://push.example.com")
	}
	if sub, _ := claims["sub"].(string); sub != "mailto:push@sahaplatform.example" {
		t.Errorf("sub = %q, want %q", sub, "mailto:push@sahaplatform.example")
	}

	exp := time.Unix(int64(claims["exp"].(float64)), 0)
	if exp.Before(before.Add(TokenTTL - time.Minute)) || exp.After(after.Add(TokenTTL + time.Minute)) {
		t.Errorf("exp = %v, want about %v after signing", exp, TokenTTL)
	}
}

func TestSignRejectsEmptyAudience(t *testing.T) {
	signer, _ := generateTestSigner(t)

	if _, err := signer.Sign(""); err == nil {
		t.Error("Sign(\"\"): want error, got nil")
	}
}

func TestAuthorizationHeaderShape(t *testing.T) {
	signer, pub := generateTestSigner(t)

	header, err := signer.AuthorizationHeader("https://push.example.com")
	if err != nil {
		t.Fatalf("AuthorizationHeader() error = %v", err)
	}
	if !strings.HasPrefix(header, "vapid t=") {
		t.Errorf("header = %q, want prefix %q", header, "vapid t=")
	}
	if !strings.HasSuffix(header, ", k="+pub) {
		t.Errorf("header = %q, want suffix %q", header, ", k="+pub)
	}
}

func TestAudience(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		want     string
		wantErr  bool
	}{
		{
			name:     "strips path and query",
			endpoint: "https://fcm.googleapis.com/fcm/send/abc123?x=1",
			want:     "https://fcm.googleapis.com",
		},
		{
			name:     "keeps explicit port",
			endpoint: "http://127.0.0.1:8080/push/v1/xyz",
			want:     "http://127.0.0.1:8080",
		},
		{
			name:     "rejects missing scheme",
			endpoint: "fcm.googleapis.com/fcm/send/abc123",
			wantErr:  true,
		},
		{
			name:     "rejects empty",
			endpoint: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Audience(tt.endpoint)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Audience(%q): want error, got %q", tt.endpoint, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Audience(%q) error = %v", tt.endpoint, err)
			}
			if got != tt.want {
				t.Errorf("Audience(%q) = %q, want %q", tt.endpoint, got, tt.want)
			}
		})
	}
}
