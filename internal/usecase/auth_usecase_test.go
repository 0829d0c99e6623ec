package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"identity-service/internal/config"
	"identity-service/internal/domain"
	"identity-service/internal/service/apple"
	"identity-service/internal/service/google"
	"identity-service/internal/service/verify"
	"identity-service/pkg/id"
	"identity-service/pkg/jwtutil"
	"identity-service/pkg/utils"
	"identity-service/pkg/xerrors"
)

// ---- fakes ----

type fakeAccounts struct {
	accounts map[string]*domain.Account
	links    []*domain.LinkedIdentity
	devices  map[string]*domain.Device
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{
		accounts: map[string]*domain.Account{},
		devices:  map[string]*domain.Device{},
	}
}

func (f *fakeAccounts) GetByID(_ context.Context, id string) (*domain.Account, error) {
	if a, ok := f.accounts[id]; ok {
		return a, nil
	}
	return nil, xerrors.ErrAccountNotFound
}

func (f *fakeAccounts) GetByMobile(_ context.Context, mobile string) (*domain.Account, error) {
	for _, a := range f.accounts {
		if a.Mobile != nil && *a.Mobile == mobile {
			return a, nil
		}
	}
	return nil, xerrors.ErrAccountNotFound
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, a := range f.accounts {
		if a.Email != nil && *a.Email == email {
			return a, nil
		}
	}
	return nil, xerrors.ErrAccountNotFound
}

func (f *fakeAccounts) FindByProviderUID(_ context.Context, provider, uid string) (*domain.Account, error) {
	for _, li := range f.links {
		if li.Provider == provider && li.ProviderUserID == uid {
			return f.accounts[li.AccountID], nil
		}
	}
	return nil, xerrors.ErrAccountNotFound
}

func (f *fakeAccounts) Create(_ context.Context, a *domain.Account) error {
	f.accounts[a.ID] = a
	return nil
}

func (f *fakeAccounts) UpdateSignupProfile(_ context.Context, a *domain.Account) error {
	f.accounts[a.ID] = a
	return nil
}

func (f *fakeAccounts) MarkVerified(_ context.Context, id string) error {
	a, ok := f.accounts[id]
	if !ok {
		return xerrors.ErrAccountNotFound
	}
	a.IsVerified = true
	return nil
}

func (f *fakeAccounts) TouchLastLogin(_ context.Context, id string) error {
	a, ok := f.accounts[id]
	if !ok {
		return xerrors.ErrAccountNotFound
	}
	now := time.Now()
	a.LastLoginAt = &now
	return nil
}

func (f *fakeAccounts) UpdatePassword(_ context.Context, id, hash string) error {
	a, ok := f.accounts[id]
	if !ok {
		return xerrors.ErrAccountNotFound
	}
	a.PasswordHash = &hash
	return nil
}

func (f *fakeAccounts) UpsertDevice(_ context.Context, d *domain.Device) error {
	f.devices[d.AccountID+"/"+d.DeviceID] = d
	return nil
}

func (f *fakeAccounts) ListDevices(_ context.Context, accountID string) ([]*domain.Device, error) {
	var out []*domain.Device
	for _, d := range f.devices {
		if d.AccountID == accountID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeAccounts) DeleteAccount(_ context.Context, id string) error {
	if _, ok := f.accounts[id]; !ok {
		return xerrors.ErrAccountNotFound
	}
	delete(f.accounts, id)
	for key, d := range f.devices {
		if d.AccountID == id {
			delete(f.devices, key)
		}
	}
	return nil
}

func (f *fakeAccounts) LinkIdentity(_ context.Context, li *domain.LinkedIdentity) error {
	for _, existing := range f.links {
		if existing.Provider == li.Provider && existing.ProviderUserID == li.ProviderUserID {
			return nil
		}
	}
	f.links = append(f.links, li)
	return nil
}

type fakeTickets struct {
	tickets      map[string]*domain.ResetTicket
	consumedHash string
	clock        func() time.Time
}

func newFakeTickets(clock func() time.Time) *fakeTickets {
	return &fakeTickets{tickets: map[string]*domain.ResetTicket{}, clock: clock}
}

func (f *fakeTickets) FindActive(_ context.Context, accountID, purpose string) (*domain.ResetTicket, error) {
	now := f.clock()
	for _, t := range f.tickets {
		if t.AccountID == accountID && t.Purpose == purpose && !t.Used && !t.ExpiredAt(now) {
			return t, nil
		}
	}
	return nil, xerrors.ErrTicketNotFound
}

func (f *fakeTickets) DeleteForAccount(_ context.Context, accountID, purpose string) error {
	for id, t := range f.tickets {
		if t.AccountID == accountID && t.Purpose == purpose {
			delete(f.tickets, id)
		}
	}
	return nil
}

func (f *fakeTickets) Replace(_ context.Context, t *domain.ResetTicket) error {
	for id, old := range f.tickets {
		if old.AccountID == t.AccountID && old.Purpose == t.Purpose {
			delete(f.tickets, id)
		}
	}
	f.tickets[t.TicketID] = t
	return nil
}

func (f *fakeTickets) Consume(_ context.Context, ticketID, passwordHash string) error {
	t, ok := f.tickets[ticketID]
	if !ok {
		return xerrors.ErrTicketNotFound
	}
	if t.Used {
		return xerrors.ErrTicketAlreadyUsed
	}
	if t.ExpiredAt(f.clock()) {
		return xerrors.ErrTicketExpired
	}
	t.Used = true
	f.consumedHash = passwordHash
	for id, other := range f.tickets {
		if id != ticketID && other.AccountID == t.AccountID && !other.Used {
			delete(f.tickets, id)
		}
	}
	return nil
}

type fakeGateway struct {
	smsOutcome   verify.Outcome
	emailOutcome verify.Outcome
	smsErr       error
	emailErr     error

	smsStarted   []string
	emailStarted []string
	smsChecks    int
	emailChecks  int
}

func (f *fakeGateway) StartSMS(_ context.Context, mobile string) error {
	f.smsStarted = append(f.smsStarted, mobile)
	return f.smsErr
}

func (f *fakeGateway) StartEmail(_ context.Context, email string) error {
	f.emailStarted = append(f.emailStarted, email)
	return f.emailErr
}

func (f *fakeGateway) CheckSMS(_ context.Context, _, _ string) (verify.Outcome, error) {
	f.smsChecks++
	return f.smsOutcome, f.smsErr
}

func (f *fakeGateway) CheckEmail(_ context.Context, _, _ string) (verify.Outcome, error) {
	f.emailChecks++
	return f.emailOutcome, f.emailErr
}

// ---- harness ----

type harness struct {
	uc       *AuthUsecase
	accounts *fakeAccounts
	tickets  *fakeTickets
	gateway  *fakeGateway
	nowAt    *time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	accounts := newFakeAccounts()
	tickets := newFakeTickets(func() time.Time { return now })
	gateway := &fakeGateway{smsOutcome: verify.OutcomeOK, emailOutcome: verify.OutcomeOK}

	sf, err := id.NewSnowflake(1)
	require.NoError(t, err)

	issuer := jwtutil.NewIssuer([]byte("test-secret"), "identity-service", 0, 15*time.Minute)
	cfg := &config.AppConfig{
		TicketTTL:      15 * time.Minute,
		AbsoluteWindow: 30 * time.Minute,
		GoogleClientID: "google-client",
		AppleBundleID:  "app.bundle",
	}

	uc := NewAuthUsecase(accounts, tickets, gateway, nil, issuer, sf, cfg)

	h := &harness{uc: uc, accounts: accounts, tickets: tickets, gateway: gateway, nowAt: &now}
	uc.now = func() time.Time { return *h.nowAt }
	tickets.clock = uc.now
	return h
}

func (h *harness) advance(d time.Duration) {
	*h.nowAt = h.nowAt.Add(d)
}

func (h *harness) seedVerified(mobile, email, password string) *domain.Account {
	hash, _ := utils.HashPassword(password)
	a := &domain.Account{
		ID:           "1001",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Mobile:       &mobile,
		Email:        &email,
		PasswordHash: &hash,
		IsVerified:   true,
	}
	h.accounts.accounts[a.ID] = a
	return a
}

// ---- signup ----

func TestStartSignupNewAccount(t *testing.T) {
	h := newHarness(t)

	err := h.uc.StartSignup(context.Background(), SignupRequest{
		FirstName: "Ada", LastName: "Lovelace",
		Mobile: "+15550001111", Email: "ada@example.com", Password: "sekret123",
	})
	require.NoError(t, err)

	acct, err := h.accounts.GetByMobile(context.Background(), "+15550001111")
	require.NoError(t, err)
	assert.False(t, acct.IsVerified)
	assert.Equal(t, []string{"+15550001111"}, h.gateway.smsStarted)
}

func TestStartSignupRejectsVerifiedEmail(t *testing.T) {
	h := newHarness(t)
	h.seedVerified("+15550001111", "ada@example.com", "sekret123")

	err := h.uc.StartSignup(context.Background(), SignupRequest{
		FirstName: "Eve", LastName: "Crypt",
		Mobile: "+15550002222", Email: "ada@example.com", Password: "sekret123",
	})
	assert.ErrorIs(t, err, xerrors.ErrEmailAlreadyInUse)
}

func TestStartSignupRestagesUnverified(t *testing.T) {
	h := newHarness(t)

	req := SignupRequest{
		FirstName: "Ada", LastName: "Lovelace",
		Mobile: "+15550001111", Email: "ada@example.com", Password: "sekret123",
	}
	require.NoError(t, h.uc.StartSignup(context.Background(), req))

	// Retry with a corrected name reuses the staged account.
	req.FirstName = "Adelaide"
	require.NoError(t, h.uc.StartSignup(context.Background(), req))

	assert.Len(t, h.accounts.accounts, 1)
	acct, _ := h.accounts.GetByMobile(context.Background(), "+15550001111")
	assert.Equal(t, "Adelaide", acct.FirstName)
}

func TestStartSignupValidation(t *testing.T) {
	h := newHarness(t)
	base := SignupRequest{
		FirstName: "Ada", LastName: "Lovelace",
		Mobile: "+15550001111", Email: "ada@example.com", Password: "sekret123",
	}

	bad := base
	bad.Email = "not-an-email"
	assert.ErrorIs(t, h.uc.StartSignup(context.Background(), bad), xerrors.ErrInvalidEmailFormat)

	bad = base
	bad.Mobile = "12"
	assert.ErrorIs(t, h.uc.StartSignup(context.Background(), bad), xerrors.ErrInvalidMobileFormat)

	bad = base
	bad.Password = "short"
	assert.ErrorIs(t, h.uc.StartSignup(context.Background(), bad), xerrors.ErrWeakPassword)
}

func TestVerifySignupActivatesAndIssuesSession(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.uc.StartSignup(context.Background(), SignupRequest{
		FirstName: "Ada", LastName: "Lovelace",
		Mobile: "+15550001111", Email: "ada@example.com", Password: "sekret123",
	}))

	result, err := h.uc.VerifySignup(context.Background(), "+15550001111", "483920", "device-1")
	require.NoError(t, err)
	assert.True(t, result.Account.IsVerified)
	assert.NotEmpty(t, result.Token)
	assert.Contains(t, h.accounts.devices, result.Account.ID+"/device-1")
}

func TestVerifySignupWrongCodeNoFallback(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.uc.StartSignup(context.Background(), SignupRequest{
		FirstName: "Ada", LastName: "Lovelace",
		Mobile: "+15550001111", Email: "ada@example.com", Password: "sekret123",
	}))

	h.gateway.smsOutcome = verify.OutcomeWrongCode
	_, err := h.uc.VerifySignup(context.Background(), "+15550001111", "000000", "")
	assert.ErrorIs(t, err, xerrors.ErrInvalidOTP)
	assert.Equal(t, 0, h.gateway.emailChecks)
}

func TestVerifySignupFallsBackWhenNoPendingSMS(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.uc.StartSignup(context.Background(), SignupRequest{
		FirstName: "Ada", LastName: "Lovelace",
		Mobile: "+15550001111", Email: "ada@example.com", Password: "sekret123",
	}))

	h.gateway.smsOutcome = verify.OutcomeNotPending
	h.gateway.emailOutcome = verify.OutcomeOK

	result, err := h.uc.VerifySignup(context.Background(), "+15550001111", "483920", "")
	require.NoError(t, err)
	assert.True(t, result.Account.IsVerified)
	assert.Equal(t, 1, h.gateway.emailChecks)
}

// ---- login ----

func TestLoginWithPassword(t *testing.T) {
	h := newHarness(t)
	h.seedVerified("+15550001111", "ada@example.com", "sekret123")

	result, err := h.uc.LoginWithPassword(context.Background(), "+15550001111", "sekret123", "device-1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.NotNil(t, result.Account.LastLoginAt)
}

func TestLoginWithWrongPassword(t *testing.T) {
	h := newHarness(t)
	h.seedVerified("+15550001111", "ada@example.com", "sekret123")

	_, err := h.uc.LoginWithPassword(context.Background(), "+15550001111", "wrongpass1", "")
	assert.ErrorIs(t, err, xerrors.ErrInvalidCredentials)
}

func TestLoginUnknownAndUnverifiedLookSame(t *testing.T) {
	h := newHarness(t)
	acct := h.seedVerified("+15550001111", "ada@example.com", "sekret123")
	acct.IsVerified = false

	_, err := h.uc.LoginWithPassword(context.Background(), "+15550001111", "sekret123", "")
	unknownErr := func() error {
		_, e := h.uc.LoginWithPassword(context.Background(), "+15559999999", "sekret123", "")
		return e
	}()
	assert.ErrorIs(t, err, xerrors.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownErr, xerrors.ErrInvalidCredentials)
}

func TestVerifyLoginOTP(t *testing.T) {
	h := newHarness(t)
	h.seedVerified("+15550001111", "ada@example.com", "sekret123")

	require.NoError(t, h.uc.StartLoginOTP(context.Background(), "+15550001111"))
	result, err := h.uc.VerifyLoginOTP(context.Background(), "+15550001111", "483920", "device-1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
}

func TestStartLoginOTPUnverifiedAccount(t *testing.T) {
	h := newHarness(t)
	acct := h.seedVerified("+15550001111", "ada@example.com", "sekret123")
	acct.IsVerified = false

	err := h.uc.StartLoginOTP(context.Background(), "+15550001111")
	assert.ErrorIs(t, err, xerrors.ErrAccountNotFound)
}

// ---- password reset ----

func TestVerifyResetOTPIssuesTicket(t *testing.T) {
	h := newHarness(t)
	h.seedVerified("+15550001111", "ada@example.com", "sekret123")

	require.NoError(t, h.uc.StartReset(context.Background(), "+15550001111", "sms"))

	grant, err := h.uc.VerifyResetOTP(context.Background(), "+15550001111", "483920")
	require.NoError(t, err)
	assert.Len(t, grant.ResetTicket, 64)
	assert.Equal(t, 15*60, grant.ExpiresIn)
}

func TestVerifyResetOTPClampsTTLToAbsoluteWindow(t *testing.T) {
	h := newHarness(t)
	h.seedVerified("+15550001111", "ada@example.com", "sekret123")

	// A rotation TTL longer than the absolute window must not push the
	// first ticket past the episode boundary.
	h.uc.ticketTTL = time.Hour
	h.uc.absoluteWindow = 30 * time.Minute

	grant, err := h.uc.VerifyResetOTP(context.Background(), "+15550001111", "483920")
	require.NoError(t, err)
	assert.Equal(t, 30*60, grant.ExpiresIn)

	stored := h.tickets.tickets[grant.ResetTicket]
	require.NotNil(t, stored)
	assert.False(t, stored.RotationExpiresAt.After(stored.AbsoluteExpiresAt))
	assert.Equal(t, stored.AbsoluteExpiresAt, stored.RotationExpiresAt)
}

func TestVerifyResetOTPRotationPreservesAbsoluteExpiry(t *testing.T) {
	h := newHarness(t)
	h.seedVerified("+15550001111", "ada@example.com", "sekret123")

	first, err := h.uc.VerifyResetOTP(context.Background(), "+15550001111", "483920")
	require.NoError(t, err)

	h.gateway.smsOutcome = verify.OutcomeWrongCode // rotation must not consult the gateway

	// First rotation is still inside both windows, so the full TTL applies.
	h.advance(10 * time.Minute)
	second, err := h.uc.VerifyResetOTP(context.Background(), "+15550001111", "ignored")
	require.NoError(t, err)
	assert.NotEqual(t, first.ResetTicket, second.ResetTicket)
	assert.Equal(t, 15*60, second.ExpiresIn)

	// 20 minutes into the episode only 10 minutes of the absolute window
	// remain; rotation clamps to it instead of granting a fresh TTL.
	h.advance(10 * time.Minute)
	third, err := h.uc.VerifyResetOTP(context.Background(), "+15550001111", "ignored")
	require.NoError(t, err)
	assert.Equal(t, 10*60, third.ExpiresIn)

	// Replaced tickets are gone.
	err = h.uc.ResetPassword(context.Background(), first.ResetTicket, "newpass123")
	assert.Error(t, err)
	err = h.uc.ResetPassword(context.Background(), second.ResetTicket, "newpass123")
	assert.Error(t, err)
}

func TestVerifyResetOTPAfterAbsoluteWindowRequiresFreshOTP(t *testing.T) {
	h := newHarness(t)
	h.seedVerified("+15550001111", "ada@example.com", "sekret123")

	_, err := h.uc.VerifyResetOTP(context.Background(), "+15550001111", "483920")
	require.NoError(t, err)

	h.advance(31 * time.Minute)
	h.gateway.smsOutcome = verify.OutcomeWrongCode

	_, err = h.uc.VerifyResetOTP(context.Background(), "+15550001111", "000000")
	assert.ErrorIs(t, err, xerrors.ErrInvalidOTP)
}

func TestResetPasswordConsumesTicketOnce(t *testing.T) {
	h := newHarness(t)
	h.seedVerified("+15550001111", "ada@example.com", "sekret123")

	grant, err := h.uc.VerifyResetOTP(context.Background(), "+15550001111", "483920")
	require.NoError(t, err)

	require.NoError(t, h.uc.ResetPassword(context.Background(), grant.ResetTicket, "newpass123"))
	assert.NotEmpty(t, h.tickets.consumedHash)

	err = h.uc.ResetPassword(context.Background(), grant.ResetTicket, "newpass456")
	assert.ErrorIs(t, err, xerrors.ErrTicketAlreadyUsed)
}

func TestResetPasswordRejectsWeakPassword(t *testing.T) {
	h := newHarness(t)
	err := h.uc.ResetPassword(context.Background(), "whatever", "short")
	assert.ErrorIs(t, err, xerrors.ErrWeakPassword)
}

func TestResetPasswordExpiredTicket(t *testing.T) {
	h := newHarness(t)
	h.seedVerified("+15550001111", "ada@example.com", "sekret123")

	grant, err := h.uc.VerifyResetOTP(context.Background(), "+15550001111", "483920")
	require.NoError(t, err)

	h.advance(16 * time.Minute)
	err = h.uc.ResetPassword(context.Background(), grant.ResetTicket, "newpass123")
	assert.ErrorIs(t, err, xerrors.ErrTicketExpired)
}

// ---- account management ----

func TestChangePassword(t *testing.T) {
	h := newHarness(t)
	acct := h.seedVerified("+15550001111", "ada@example.com", "sekret123")

	err := h.uc.ChangePassword(context.Background(), acct.ID, "wrongpass1", "newpass123")
	assert.ErrorIs(t, err, xerrors.ErrInvalidCredentials)

	require.NoError(t, h.uc.ChangePassword(context.Background(), acct.ID, "sekret123", "newpass123"))
	assert.True(t, utils.CheckPassword(*acct.PasswordHash, "newpass123"))
}

func TestRegisterPushToken(t *testing.T) {
	h := newHarness(t)
	acct := h.seedVerified("+15550001111", "ada@example.com", "sekret123")

	require.NoError(t, h.uc.RegisterPushToken(context.Background(), acct.ID, "device-1", "tok-abc"))
	devices, err := h.uc.ListDevices(context.Background(), acct.ID)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	require.NotNil(t, devices[0].PushToken)
	assert.Equal(t, "tok-abc", *devices[0].PushToken)
}

func TestDeleteAccount(t *testing.T) {
	h := newHarness(t)
	acct := h.seedVerified("+15550001111", "ada@example.com", "sekret123")
	require.NoError(t, h.uc.RegisterPushToken(context.Background(), acct.ID, "device-1", "tok"))

	require.NoError(t, h.uc.DeleteAccount(context.Background(), acct.ID))
	_, err := h.accounts.GetByID(context.Background(), acct.ID)
	assert.ErrorIs(t, err, xerrors.ErrAccountNotFound)
	assert.Empty(t, h.accounts.devices)
}

// ---- federated sign-in ----

func googleStub(u *google.User, err error) func(context.Context, string, string) (*google.User, error) {
	return func(context.Context, string, string) (*google.User, error) { return u, err }
}

func appleStub(c *apple.Claims, err error) func(context.Context, string, string) (*apple.Claims, error) {
	return func(context.Context, string, string) (*apple.Claims, error) { return c, err }
}

func TestGoogleSignInCreatesVerifiedAccount(t *testing.T) {
	h := newHarness(t)
	h.uc.verifyGoogle = googleStub(&google.User{
		Sub: "g-123", Email: "ada@example.com", EmailVerified: true,
		FirstName: "Ada", LastName: "Lovelace",
	}, nil)

	result, err := h.uc.SignInWithGoogle(context.Background(), "token", "device-1")
	require.NoError(t, err)
	assert.True(t, result.Account.IsVerified)
	require.NotNil(t, result.Account.Email)
	assert.Equal(t, "ada@example.com", *result.Account.Email)
	assert.Len(t, h.accounts.links, 1)
}

func TestGoogleSignInIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.uc.verifyGoogle = googleStub(&google.User{
		Sub: "g-123", Email: "ada@example.com", EmailVerified: true,
	}, nil)

	first, err := h.uc.SignInWithGoogle(context.Background(), "token", "")
	require.NoError(t, err)
	second, err := h.uc.SignInWithGoogle(context.Background(), "token", "")
	require.NoError(t, err)

	assert.Equal(t, first.Account.ID, second.Account.ID)
	assert.Len(t, h.accounts.accounts, 1)
	assert.Len(t, h.accounts.links, 1)
}

func TestGoogleSignInLinksExistingAccountByVerifiedEmail(t *testing.T) {
	h := newHarness(t)
	existing := h.seedVerified("+15550001111", "ada@example.com", "sekret123")

	h.uc.verifyGoogle = googleStub(&google.User{
		Sub: "g-123", Email: "ada@example.com", EmailVerified: true,
	}, nil)

	result, err := h.uc.SignInWithGoogle(context.Background(), "token", "")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, result.Account.ID)
	assert.Len(t, h.accounts.links, 1)
}

func TestGoogleSignInIgnoresUnverifiedEmail(t *testing.T) {
	h := newHarness(t)
	h.seedVerified("+15550001111", "ada@example.com", "sekret123")

	h.uc.verifyGoogle = googleStub(&google.User{
		Sub: "g-456", Email: "ada@example.com", EmailVerified: false,
	}, nil)

	result, err := h.uc.SignInWithGoogle(context.Background(), "token", "")
	require.NoError(t, err)

	// The unverified claim must not link to the existing account.
	assert.NotEqual(t, "1001", result.Account.ID)
	assert.Nil(t, result.Account.Email)
}

func TestGoogleSignInRejectsBadToken(t *testing.T) {
	h := newHarness(t)
	h.uc.verifyGoogle = googleStub(nil, errors.New("signature mismatch"))

	_, err := h.uc.SignInWithGoogle(context.Background(), "token", "")
	assert.ErrorIs(t, err, xerrors.ErrInvalidProviderToken)
}

func TestAppleSignInChecksNonce(t *testing.T) {
	h := newHarness(t)
	h.uc.verifyApple = appleStub(&apple.Claims{
		Sub: "a-123", Nonce: apple.NonceDigest("client-nonce"),
	}, nil)

	result, err := h.uc.SignInWithApple(context.Background(), "token", "client-nonce", "")
	require.NoError(t, err)
	assert.True(t, result.Account.IsVerified)
	assert.Nil(t, result.Account.Email)

	_, err = h.uc.SignInWithApple(context.Background(), "token", "other-nonce", "")
	assert.ErrorIs(t, err, xerrors.ErrNonceMismatch)
}

func TestAppleSignInHiddenEmailStaysHiddenOnReturn(t *testing.T) {
	h := newHarness(t)
	h.uc.verifyApple = appleStub(&apple.Claims{
		Sub: "a-123", Nonce: apple.NonceDigest("n"),
	}, nil)

	first, err := h.uc.SignInWithApple(context.Background(), "token", "n", "")
	require.NoError(t, err)

	second, err := h.uc.SignInWithApple(context.Background(), "token", "n", "")
	require.NoError(t, err)
	assert.Equal(t, first.Account.ID, second.Account.ID)
}
