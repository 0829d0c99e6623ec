package usecase

import (
	"context"
	"fmt"

	"identity-service/internal/domain"
	"identity-service/internal/service/apple"
	"identity-service/pkg/xerrors"
)

// SignInWithGoogle verifies a Google ID token and resolves it to a local
// account, creating one on first contact.
func (uc *AuthUsecase) SignInWithGoogle(ctx context.Context, idToken, deviceID string) (*AuthResult, error) {
	gu, err := uc.verifyGoogle(ctx, idToken, uc.googleClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrInvalidProviderToken, err)
	}

	var verifiedEmail *string
	if gu.EmailVerified && gu.Email != "" {
		verifiedEmail = &gu.Email
	}

	acct, err := uc.resolveFederated(ctx, domain.ProviderGoogle, gu.Sub, verifiedEmail, gu.FirstName, gu.LastName)
	if err != nil {
		return nil, err
	}
	return uc.finishFederated(ctx, acct, deviceID)
}

// SignInWithApple verifies an Apple identity token, checks the nonce binding
// against the raw nonce the client used, and resolves the local account.
func (uc *AuthUsecase) SignInWithApple(ctx context.Context, identityToken, rawNonce, deviceID string) (*AuthResult, error) {
	claims, err := uc.verifyApple(ctx, identityToken, uc.appleBundleID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrInvalidProviderToken, err)
	}
	if claims.Nonce != apple.NonceDigest(rawNonce) {
		return nil, xerrors.ErrNonceMismatch
	}

	var verifiedEmail *string
	if claims.EmailVerified && claims.Email != "" {
		verifiedEmail = &claims.Email
	}

	acct, err := uc.resolveFederated(ctx, domain.ProviderApple, claims.Sub, verifiedEmail, "", "")
	if err != nil {
		return nil, err
	}
	return uc.finishFederated(ctx, acct, deviceID)
}

// resolveFederated maps a provider identity to a local account:
//
//  1. an existing (provider, uid) link wins;
//  2. otherwise a verified provider email is matched against local accounts
//     and the identity is linked to the match;
//  3. otherwise a new verified account is created. Without a verified email
//     the account starts with no email at all.
//
// An unverified provider email is never used for matching or stored.
func (uc *AuthUsecase) resolveFederated(ctx context.Context, provider, uid string, verifiedEmail *string, firstName, lastName string) (*domain.Account, error) {
	acct, err := uc.accounts.FindByProviderUID(ctx, provider, uid)
	if err == nil {
		return acct, nil
	}
	if !notFound(err) {
		return nil, err
	}

	if verifiedEmail != nil {
		acct, err = uc.accounts.GetByEmail(ctx, *verifiedEmail)
		if err == nil {
			if err := uc.link(ctx, acct.ID, provider, uid, verifiedEmail); err != nil {
				return nil, err
			}
			return acct, nil
		}
		if !notFound(err) {
			return nil, err
		}
	}

	acct = &domain.Account{
		ID:         uc.sf.Generate(),
		FirstName:  firstName,
		LastName:   lastName,
		Email:      verifiedEmail,
		IsVerified: true,
	}
	if err := uc.accounts.Create(ctx, acct); err != nil {
		return nil, err
	}
	if err := uc.link(ctx, acct.ID, provider, uid, verifiedEmail); err != nil {
		return nil, err
	}
	return acct, nil
}

func (uc *AuthUsecase) link(ctx context.Context, accountID, provider, uid string, email *string) error {
	li := &domain.LinkedIdentity{
		ID:             uc.sf.Generate(),
		AccountID:      accountID,
		Provider:       provider,
		ProviderUserID: uid,
		EmailAtLink:    email,
		LinkedAt:       uc.now(),
	}
	return uc.accounts.LinkIdentity(ctx, li)
}

func (uc *AuthUsecase) finishFederated(ctx context.Context, acct *domain.Account, deviceID string) (*AuthResult, error) {
	uc.rememberDevice(ctx, acct.ID, deviceID)
	if err := uc.accounts.TouchLastLogin(ctx, acct.ID); err != nil {
		logf("failed to stamp last login for account %s: %v", acct.ID, err)
	}

	token, err := uc.issuer.SocialToken(acct.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Account: acct}, nil
}
