package usecase

import (
	"context"

	"identity-service/internal/domain"
	"identity-service/pkg/utils"
	"identity-service/pkg/xerrors"
)

type SignupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Mobile    string `json:"mobile"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// StartSignup stages an unverified account and kicks off SMS verification.
// A verified account already holding the email or mobile blocks the signup;
// an unverified one is overwritten in place so the user can retry with
// corrected details.
func (uc *AuthUsecase) StartSignup(ctx context.Context, req SignupRequest) error {
	mobile := utils.NormalizeMobile(req.Mobile)
	if !utils.ValidateMobile(mobile) {
		return xerrors.ErrInvalidMobileFormat
	}
	if !utils.ValidateEmail(req.Email) {
		return xerrors.ErrInvalidEmailFormat
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return err
	}

	var staged *domain.Account

	byEmail, err := uc.accounts.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		if byEmail.IsVerified {
			return xerrors.ErrEmailAlreadyInUse
		}
		staged = byEmail
	case !notFound(err):
		return err
	}

	byMobile, err := uc.accounts.GetByMobile(ctx, mobile)
	switch {
	case err == nil:
		if byMobile.IsVerified {
			return xerrors.ErrMobileAlreadyInUse
		}
		if staged == nil {
			staged = byMobile
		} else if staged.ID != byMobile.ID {
			// Email and mobile are staged on two different stubs.
			return xerrors.ErrMobileAlreadyInUse
		}
	case !notFound(err):
		return err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return err
	}

	if staged != nil {
		staged.FirstName = req.FirstName
		staged.LastName = req.LastName
		staged.Mobile = &mobile
		staged.Email = &req.Email
		staged.PasswordHash = &hash
		if err := uc.accounts.UpdateSignupProfile(ctx, staged); err != nil {
			return err
		}
	} else {
		acct := &domain.Account{
			ID:           uc.sf.Generate(),
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Mobile:       &mobile,
			Email:        &req.Email,
			PasswordHash: &hash,
		}
		if err := uc.accounts.Create(ctx, acct); err != nil {
			return err
		}
	}

	return uc.gateway.StartSMS(ctx, mobile)
}

// SendSignupEmailOTP starts an email verification for a staged signup, used
// when the SMS channel is not reaching the user.
func (uc *AuthUsecase) SendSignupEmailOTP(ctx context.Context, mobile string) error {
	mobile = utils.NormalizeMobile(mobile)
	acct, err := uc.accounts.GetByMobile(ctx, mobile)
	if err != nil {
		return err
	}
	if acct.Email == nil || *acct.Email == "" {
		return xerrors.ErrChannelUnavailable
	}
	return uc.gateway.StartEmail(ctx, *acct.Email)
}

// VerifySignup confirms the one-time code, activates the account and opens a
// session. The welcome mail goes out in the background; its failure never
// blocks the signup.
func (uc *AuthUsecase) VerifySignup(ctx context.Context, mobile, code, deviceID string) (*AuthResult, error) {
	mobile = utils.NormalizeMobile(mobile)
	acct, err := uc.accounts.GetByMobile(ctx, mobile)
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

	if err := uc.accounts.MarkVerified(ctx, acct.ID); err != nil {
		return nil, err
	}
	acct.IsVerified = true

	uc.rememberDevice(ctx, acct.ID, deviceID)

	if uc.mailer != nil && acct.Email != nil {
		to, first, last := *acct.Email, acct.FirstName, acct.LastName
		go func() {
			if err := uc.mailer.SendWelcome(context.Background(), to, first, last); err != nil {
				logf("welcome mail to %s failed: %v", to, err)
			}
		}()
	}

	return uc.sessionFor(acct)
}

// CheckEmailAvailable reports whether the email is free for a new signup.
func (uc *AuthUsecase) CheckEmailAvailable(ctx context.Context, email string) (bool, error) {
	if !utils.ValidateEmail(email) {
		return false, xerrors.ErrInvalidEmailFormat
	}
	acct, err := uc.accounts.GetByEmail(ctx, email)
	if notFound(err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return !acct.IsVerified, nil
}

// CheckMobileAvailable reports whether the mobile is free for a new signup.
func (uc *AuthUsecase) CheckMobileAvailable(ctx context.Context, mobile string) (bool, error) {
	mobile = utils.NormalizeMobile(mobile)
	if !utils.ValidateMobile(mobile) {
		return false, xerrors.ErrInvalidMobileFormat
	}
	acct, err := uc.accounts.GetByMobile(ctx, mobile)
	if notFound(err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return !acct.IsVerified, nil
}
