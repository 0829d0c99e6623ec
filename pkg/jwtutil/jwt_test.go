package jwtutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenWithoutTTLNeverExpires(t *testing.T) {
	i := NewIssuer([]byte("secret"), "identity-service", 0, 15*time.Minute)

	token, err := i.SessionToken("1001", "ada@example.com")
	require.NoError(t, err)

	claims, err := i.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "1001", claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Nil(t, claims.ExpiresAt)
}

func TestSocialTokenCarriesExpiryAndNoEmail(t *testing.T) {
	i := NewIssuer([]byte("secret"), "identity-service", 0, 15*time.Minute)

	token, err := i.SocialToken("1001")
	require.NoError(t, err)

	claims, err := i.Parse(token)
	require.NoError(t, err)
	assert.Empty(t, claims.Email)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseRejectsForeignSecret(t *testing.T) {
	mint := NewIssuer([]byte("secret-a"), "identity-service", 0, 15*time.Minute)
	check := NewIssuer([]byte("secret-b"), "identity-service", 0, 15*time.Minute)

	token, err := mint.SessionToken("1001", "")
	require.NoError(t, err)

	_, err = check.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	mint := NewIssuer([]byte("secret"), "other-service", 0, 15*time.Minute)
	check := NewIssuer([]byte("secret"), "identity-service", 0, 15*time.Minute)

	token, err := mint.SessionToken("1001", "")
	require.NoError(t, err)

	_, err = check.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	i := NewIssuer([]byte("secret"), "identity-service", time.Nanosecond, 0)

	token, err := i.SessionToken("1001", "")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	_, err = i.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
