package apple

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	appleIssuer  = "https://appleid.apple.com"
	appleKeysURL = "https://appleid.apple.com/auth/keys"
)

type Claims struct {
	Sub           string
	Email         string
	EmailVerified bool
	Nonce         string
}

// VerifyIDToken validates signature and standard claims against Apple's
// JWKS, then checks issuer and audience.
func VerifyIDToken(ctx context.Context, idToken, clientID string) (*Claims, error) {
	keyset, err := jwk.Fetch(ctx, appleKeysURL)
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}

	t, err := jwt.ParseString(idToken, jwt.WithKeySet(keyset), jwt.WithValidate(true))
	if err != nil {
		return nil, fmt.Errorf("parse/validate id_token: %w", err)
	}

	if t.Issuer() != appleIssuer {
		return nil, fmt.Errorf("invalid issuer")
	}

	found := false
	for _, aud := range t.Audience() {
		if aud == clientID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("invalid audience")
	}

	email, _ := t.Get("email")
	ev, _ := t.Get("email_verified")
	nonce, _ := t.Get("nonce")

	return &Claims{
		Sub:           t.Subject(),
		Email:         str(email),
		EmailVerified: boolVal(ev),
		Nonce:         str(nonce),
	}, nil
}

// NonceDigest computes the value Apple embeds in the token when the client
// supplied a raw nonce at sign-in: hex(SHA-256(nonce)).
func NonceDigest(rawNonce string) string {
	sum := sha256.Sum256([]byte(rawNonce))
	return hex.EncodeToString(sum[:])
}

func str(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func boolVal(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	if s, ok := v.(string); ok {
		return s == "true"
	}
	return false
}
