package usecase

import (
	"context"
	"errors"
	"time"

	"identity-service/internal/domain"
	"identity-service/pkg/id"
	"identity-service/pkg/utils"
	"identity-service/pkg/xerrors"
)

// TicketGrant is handed to the client after OTP verification. ExpiresIn is
// the effective remaining lifetime in seconds.
type TicketGrant struct {
	ResetTicket string `json:"resetTicket"`
	ExpiresIn   int    `json:"expiresIn"`
}

// StartReset begins a password reset by sending an OTP over the requested
// channel. Any reset tickets left over from a previous episode are discarded
// so the new OTP is the only way forward.
func (uc *AuthUsecase) StartReset(ctx context.Context, mobile, channel string) error {
	mobile, acct, err := uc.verifiedByMobile(ctx, mobile)
	if err != nil {
		return err
	}

	if err := uc.tickets.DeleteForAccount(ctx, acct.ID, domain.PurposePasswordReset); err != nil {
		return err
	}

	if channel == "email" {
		if acct.Email == nil || *acct.Email == "" {
			return xerrors.ErrChannelUnavailable
		}
		return uc.gateway.StartEmail(ctx, *acct.Email)
	}
	return uc.gateway.StartSMS(ctx, mobile)
}

// VerifyResetOTP exchanges a reset OTP for a single-use reset ticket.
//
// If an active ticket already exists for the account, it is rotated instead:
// a fresh ticket ID is issued, the rotation expiry is pushed out, and the
// absolute expiry of the episode is carried over unchanged. Rotation replaces
// the old ticket, so only the newest ID is ever valid.
func (uc *AuthUsecase) VerifyResetOTP(ctx context.Context, mobile, code string) (*TicketGrant, error) {
	mobile, acct, err := uc.verifiedByMobile(ctx, mobile)
	if err != nil {
		return nil, err
	}

	now := uc.now()

	active, err := uc.tickets.FindActive(ctx, acct.ID, domain.PurposePasswordReset)
	switch {
	case err == nil:
		return uc.rotateTicket(ctx, acct.ID, active, now)
	case !errors.Is(err, xerrors.ErrTicketNotFound):
		return nil, err
	}

	ok, err := uc.checkCodeWithFallback(ctx, mobile, acct.Email, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, xerrors.ErrInvalidOTP
	}

	ticketID, err := id.NewResetTicketID()
	if err != nil {
		return nil, err
	}
	absolute := now.Add(uc.absoluteWindow)
	rotation := now.Add(uc.ticketTTL)
	if rotation.After(absolute) {
		rotation = absolute
	}
	t := &domain.ResetTicket{
		TicketID:          ticketID,
		AccountID:         acct.ID,
		Purpose:           domain.PurposePasswordReset,
		RotationExpiresAt: rotation,
		AbsoluteExpiresAt: absolute,
		CreatedAt:         now,
	}
	if err := uc.tickets.Replace(ctx, t); err != nil {
		return nil, err
	}
	return &TicketGrant{ResetTicket: t.TicketID, ExpiresIn: t.SecondsLeft(now)}, nil
}

func (uc *AuthUsecase) rotateTicket(ctx context.Context, accountID string, prev *domain.ResetTicket, now time.Time) (*TicketGrant, error) {
	rotation := now.Add(uc.ticketTTL)
	if rotation.After(prev.AbsoluteExpiresAt) {
		rotation = prev.AbsoluteExpiresAt
	}
	ticketID, err := id.NewResetTicketID()
	if err != nil {
		return nil, err
	}
	t := &domain.ResetTicket{
		TicketID:          ticketID,
		AccountID:         accountID,
		Purpose:           domain.PurposePasswordReset,
		RotationExpiresAt: rotation,
		AbsoluteExpiresAt: prev.AbsoluteExpiresAt,
		CreatedAt:         now,
	}
	if err := uc.tickets.Replace(ctx, t); err != nil {
		return nil, err
	}
	return &TicketGrant{ResetTicket: t.TicketID, ExpiresIn: t.SecondsLeft(now)}, nil
}

// ResetPassword redeems a reset ticket and installs the new password. The
// ticket is burned whether or not it was the newest one; any unused siblings
// for the account are purged in the same transaction.
func (uc *AuthUsecase) ResetPassword(ctx context.Context, ticketID, newPassword string) error {
	if err := utils.ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return uc.tickets.Consume(ctx, ticketID, hash)
}
