package usecase

import (
	"context"

	"identity-service/internal/domain"
	"identity-service/pkg/utils"
	"identity-service/pkg/xerrors"
)

// ChangePassword replaces the password of a signed-in account after
// re-checking the current one.
func (uc *AuthUsecase) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	if err := utils.ValidatePassword(newPassword); err != nil {
		return err
	}

	acct, err := uc.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if acct.PasswordHash == nil || !utils.CheckPassword(*acct.PasswordHash, currentPassword) {
		return xerrors.ErrInvalidCredentials
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return uc.accounts.UpdatePassword(ctx, accountID, hash)
}

// RegisterPushToken stores or refreshes the push token of a device.
func (uc *AuthUsecase) RegisterPushToken(ctx context.Context, accountID, deviceID, pushToken string) error {
	if _, err := uc.accounts.GetByID(ctx, accountID); err != nil {
		return err
	}
	return uc.accounts.UpsertDevice(ctx, &domain.Device{
		AccountID: accountID,
		DeviceID:  deviceID,
		PushToken: &pushToken,
	})
}

// ListDevices returns the devices seen for the account, newest login first.
func (uc *AuthUsecase) ListDevices(ctx context.Context, accountID string) ([]*domain.Device, error) {
	return uc.accounts.ListDevices(ctx, accountID)
}

// DeleteAccount removes the account and all dependent records.
func (uc *AuthUsecase) DeleteAccount(ctx context.Context, accountID string) error {
	return uc.accounts.DeleteAccount(ctx, accountID)
}
