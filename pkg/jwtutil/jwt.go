package jwtutil

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims binds a session token to an account. Email is present only on
// tokens minted by password and OTP flows.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Issuer mints and validates HS256 session tokens. Two lifetimes are
// configured independently: SessionTTL for password/OTP sign-in (zero means
// the token carries no expiry) and SocialTTL for federated sign-in.
type Issuer struct {
	secret     []byte
	issuer     string
	SessionTTL time.Duration
	SocialTTL  time.Duration
}

func NewIssuer(secret []byte, issuer string, sessionTTL, socialTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     secret,
		issuer:     issuer,
		SessionTTL: sessionTTL,
		SocialTTL:  socialTTL,
	}
}

// SessionToken issues a token for password- and OTP-based sign-in.
func (i *Issuer) SessionToken(accountID, email string) (string, error) {
	return i.sign(accountID, email, i.SessionTTL)
}

// SocialToken issues a short-lived token for federated sign-in.
func (i *Issuer) SocialToken(accountID string) (string, error) {
	return i.sign(accountID, "", i.SocialTTL)
}

func (i *Issuer) sign(accountID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  accountID,
			Issuer:   i.issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Parse validates a token and returns its claims.
func (i *Issuer) Parse(tokenStr string) (*Claims, error) {
	claims := new(Claims)
	parser := jwt.NewParser(
		jwt.WithIssuer(i.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)

	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
