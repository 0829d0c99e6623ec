package google

import (
	"context"

	"google.golang.org/api/idtoken"
)

type User struct {
	Sub           string // Google unique user ID
	Email         string
	EmailVerified bool
	FirstName     string
	LastName      string
}

// VerifyIDToken validates a Google-issued ID token (signature, issuer,
// audience, expiry) and extracts the identity claims.
func VerifyIDToken(ctx context.Context, token, clientID string) (*User, error) {
	payload, err := idtoken.Validate(ctx, token, clientID)
	if err != nil {
		return nil, err
	}

	email, _ := payload.Claims["email"].(string)
	verified, _ := payload.Claims["email_verified"].(bool)
	firstName, _ := payload.Claims["given_name"].(string)
	lastName, _ := payload.Claims["family_name"].(string)
	sub, _ := payload.Claims["sub"].(string)

	return &User{
		Sub:           sub,
		Email:         email,
		EmailVerified: verified,
		FirstName:     firstName,
		LastName:      lastName,
	}, nil
}
