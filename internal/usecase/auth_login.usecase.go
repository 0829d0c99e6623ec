package usecase

import (
	"context"

	"identity-service/internal/domain"
	"identity-service/pkg/utils"
	"identity-service/pkg/xerrors"
)

// LoginWithPassword authenticates a verified account by mobile and password.
// Unknown accounts, unverified accounts and wrong passwords all collapse to
// the same credential error.
func (uc *AuthUsecase) LoginWithPassword(ctx context.Context, mobile, password, deviceID string) (*AuthResult, error) {
	mobile = utils.NormalizeMobile(mobile)
	acct, err := uc.accounts.GetByMobile(ctx, mobile)
	if notFound(err) {
		return nil, xerrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !acct.IsVerified || acct.PasswordHash == nil {
		return nil, xerrors.ErrInvalidCredentials
	}
	if !utils.CheckPassword(*acct.PasswordHash, password) {
		return nil, xerrors.ErrInvalidCredentials
	}

	uc.rememberDevice(ctx, acct.ID, deviceID)
	if err := uc.accounts.TouchLastLogin(ctx, acct.ID); err != nil {
		logf("failed to stamp last login for account %s: %v", acct.ID, err)
	}

	return uc.sessionFor(acct)
}

// StartLoginOTP begins a passwordless login over SMS.
func (uc *AuthUsecase) StartLoginOTP(ctx context.Context, mobile string) error {
	mobile, _, err := uc.verifiedByMobile(ctx, mobile)
	if err != nil {
		return err
	}
	return uc.gateway.StartSMS(ctx, mobile)
}

// StartLoginOTPEmail begins a passwordless login over the account's email.
func (uc *AuthUsecase) StartLoginOTPEmail(ctx context.Context, mobile string) error {
	_, acct, err := uc.verifiedByMobile(ctx, mobile)
	if err != nil {
		return err
	}
	if acct.Email == nil || *acct.Email == "" {
		return xerrors.ErrChannelUnavailable
	}
	return uc.gateway.StartEmail(ctx, *acct.Email)
}

// VerifyLoginOTP completes a passwordless login.
func (uc *AuthUsecase) VerifyLoginOTP(ctx context.Context, mobile, code, deviceID string) (*AuthResult, error) {
	mobile, acct, err := uc.verifiedByMobile(ctx, mobile)
	if err != nil {
		return nil, err
	}

	ok, err := uc.checkCodeWithFallback(ctx, mobile, acct.Email, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, xerrors.ErrInvalidOTP
	}

	uc.rememberDevice(ctx, acct.ID, deviceID)
	if err := uc.accounts.TouchLastLogin(ctx, acct.ID); err != nil {
		logf("failed to stamp last login for account %s: %v", acct.ID, err)
	}

	return uc.sessionFor(acct)
}

// verifiedByMobile loads an account by mobile and requires it to be verified.
// Unverified accounts look the same as missing ones.
func (uc *AuthUsecase) verifiedByMobile(ctx context.Context, mobile string) (string, *domain.Account, error) {
	normalized := utils.NormalizeMobile(mobile)
	acct, err := uc.accounts.GetByMobile(ctx, normalized)
	if err != nil {
		return "", nil, err
	}
	if !acct.IsVerified {
		return "", nil, xerrors.ErrAccountNotFound
	}
	return normalized, acct, nil
}
