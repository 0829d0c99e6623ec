package domain

import "time"

const PurposePasswordReset = "reset_password"

// ResetTicket authorizes exactly one password change. RotationExpiresAt is
// the renewable per-instance expiry; AbsoluteExpiresAt is fixed at the first
// issuance of the episode and is never extended by rotation.
type ResetTicket struct {
	TicketID          string    `json:"-"`
	AccountID         string    `json:"account_id"`
	Purpose           string    `json:"purpose"`
	Used              bool      `json:"used"`
	RotationExpiresAt time.Time `json:"rotation_expires_at"`
	AbsoluteExpiresAt time.Time `json:"absolute_expires_at"`
	CreatedAt         time.Time `json:"created_at"`
}

// EffectiveExpiresAt is min(rotation, absolute).
func (t *ResetTicket) EffectiveExpiresAt() time.Time {
	if t.AbsoluteExpiresAt.Before(t.RotationExpiresAt) {
		return t.AbsoluteExpiresAt
	}
	return t.RotationExpiresAt
}

// ExpiredAt reports whether the ticket is past its effective expiry.
// Expiry is evaluated lazily at lookup time; there is no background sweep.
func (t *ResetTicket) ExpiredAt(now time.Time) bool {
	return !now.Before(t.EffectiveExpiresAt())
}

// SecondsLeft returns the remaining lifetime in whole seconds, never negative.
func (t *ResetTicket) SecondsLeft(now time.Time) int {
	d := t.EffectiveExpiresAt().Sub(now)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}
