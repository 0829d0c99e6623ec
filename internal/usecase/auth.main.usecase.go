package usecase

import (
	"context"
	"errors"
	"time"

	"identity-service/internal/config"
	"identity-service/internal/domain"
	"identity-service/internal/service/apple"
	"identity-service/internal/service/google"
	"identity-service/internal/service/verify"
	"identity-service/pkg/id"
	"identity-service/pkg/jwtutil"
	"identity-service/pkg/xerrors"
)

// AccountStore is the persistence surface the auth flows need.
type AccountStore interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByMobile(ctx context.Context, mobile string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByProviderUID(ctx context.Context, provider, providerUID string) (*domain.Account, error)
	Create(ctx context.Context, acct *domain.Account) error
	UpdateSignupProfile(ctx context.Context, acct *domain.Account) error
	MarkVerified(ctx context.Context, accountID string) error
	UpdatePassword(ctx context.Context, accountID, passwordHash string) error
	TouchLastLogin(ctx context.Context, accountID string) error
	UpsertDevice(ctx context.Context, dev *domain.Device) error
	ListDevices(ctx context.Context, accountID string) ([]*domain.Device, error)
	LinkIdentity(ctx context.Context, li *domain.LinkedIdentity) error
	DeleteAccount(ctx context.Context, accountID string) error
}

// TicketStore manages password reset tickets.
type TicketStore interface {
	FindActive(ctx context.Context, accountID, purpose string) (*domain.ResetTicket, error)
	DeleteForAccount(ctx context.Context, accountID, purpose string) error
	Replace(ctx context.Context, t *domain.ResetTicket) error
	Consume(ctx context.Context, ticketID, passwordHash string) error
}

// VerifyGateway starts and checks one-time codes on the delivery provider.
type VerifyGateway interface {
	StartSMS(ctx context.Context, mobile string) error
	StartEmail(ctx context.Context, email string) error
	CheckSMS(ctx context.Context, mobile, code string) (verify.Outcome, error)
	CheckEmail(ctx context.Context, email, code string) (verify.Outcome, error)
}

// Mailer delivers transactional mail. Delivery failures are logged, never surfaced.
type Mailer interface {
	SendWelcome(ctx context.Context, to, firstName, lastName string) error
}

type AuthUsecase struct {
	accounts AccountStore
	tickets  TicketStore
	gateway  VerifyGateway
	mailer   Mailer
	issuer   *jwtutil.Issuer
	sf       *id.Snowflake

	ticketTTL      time.Duration
	absoluteWindow time.Duration
	googleClientID string
	appleBundleID  string

	// Provider token verification, injectable for tests.
	verifyGoogle func(ctx context.Context, idToken, audience string) (*google.User, error)
	verifyApple  func(ctx context.Context, identityToken, audience string) (*apple.Claims, error)

	now func() time.Time
}

func NewAuthUsecase(
	accounts AccountStore,
	tickets TicketStore,
	gateway VerifyGateway,
	mailer Mailer,
	issuer *jwtutil.Issuer,
	sf *id.Snowflake,
	cfg *config.AppConfig,
) *AuthUsecase {
	return &AuthUsecase{
		accounts:       accounts,
		tickets:        tickets,
		gateway:        gateway,
		mailer:         mailer,
		issuer:         issuer,
		sf:             sf,
		ticketTTL:      cfg.TicketTTL,
		absoluteWindow: cfg.AbsoluteWindow,
		googleClientID: cfg.GoogleClientID,
		appleBundleID:  cfg.AppleBundleID,
		verifyGoogle:   google.VerifyIDToken,
		verifyApple:    apple.VerifyIDToken,
		now:            time.Now,
	}
}

// AuthResult is what every successful authentication flow hands back.
type AuthResult struct {
	Token   string          `json:"token"`
	Account *domain.Account `json:"user"`
}

// checkCodeWithFallback verifies a one-time code against the SMS channel
// first. If the provider reports no pending SMS verification, the same code
// is retried against the email channel. A plain wrong code never falls back.
func (uc *AuthUsecase) checkCodeWithFallback(ctx context.Context, mobile string, email *string, code string) (bool, error) {
	if mobile != "" {
		outcome, err := uc.gateway.CheckSMS(ctx, mobile, code)
		if err != nil {
			return false, err
		}
		switch outcome {
		case verify.OutcomeOK:
			return true, nil
		case verify.OutcomeWrongCode:
			return false, nil
		}
	}
	if email == nil || *email == "" {
		return false, nil
	}
	outcome, err := uc.gateway.CheckEmail(ctx, *email, code)
	if err != nil {
		return false, err
	}
	return outcome == verify.OutcomeOK, nil
}

func (uc *AuthUsecase) rememberDevice(ctx context.Context, accountID, deviceID string) {
	if deviceID == "" {
		return
	}
	dev := &domain.Device{
		AccountID: accountID,
		DeviceID:  deviceID,
	}
	if err := uc.accounts.UpsertDevice(ctx, dev); err != nil {
		logf("failed to record device %s for account %s: %v", deviceID, accountID, err)
	}
}

func (uc *AuthUsecase) sessionFor(acct *domain.Account) (*AuthResult, error) {
	email := ""
	if acct.Email != nil {
		email = *acct.Email
	}
	token, err := uc.issuer.SessionToken(acct.ID, email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Account: acct}, nil
}

func notFound(err error) bool {
	return errors.Is(err, xerrors.ErrAccountNotFound)
}
