package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"identity-service/internal/domain"
	"identity-service/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, first_name, last_name, mobile, email, password_hash, is_verified, last_login_at, created_at, updated_at`

// ============================================
// SCAN HELPERS
// ============================================

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	var accountID int64
	err := row.Scan(
		&accountID,
		&a.FirstName,
		&a.LastName,
		&a.Mobile,
		&a.Email,
		&a.PasswordHash,
		&a.IsVerified,
		&a.LastLoginAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	a.ID = strconv.FormatInt(accountID, 10)
	return &a, nil
}

// mapUniqueViolation translates a 23505 into the matching domain conflict.
func mapUniqueViolation(err error) error {
	if !xerrors.IsUniqueViolation(err) {
		return err
	}
	switch c := xerrors.ConstraintName(err); {
	case strings.Contains(c, "email"):
		return xerrors.ErrEmailAlreadyInUse
	case strings.Contains(c, "mobile"):
		return xerrors.ErrMobileAlreadyInUse
	default:
		return xerrors.ErrInvalidRequest
	}
}

// ============================================
// LOOKUPS
// ============================================

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	accountID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, xerrors.ErrAccountNotFound
	}
	return retryRead(ctx, func(ctx context.Context) (*domain.Account, error) {
		row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id=$1`, accountID)
		return scanAccount(row)
	})
}

func (r *AccountRepository) GetByMobile(ctx context.Context, mobile string) (*domain.Account, error) {
	return retryRead(ctx, func(ctx context.Context) (*domain.Account, error) {
		row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE mobile=$1`, mobile)
		return scanAccount(row)
	})
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return retryRead(ctx, func(ctx context.Context) (*domain.Account, error) {
		row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email=$1`, email)
		return scanAccount(row)
	})
}

// FindByProviderUID resolves an account through its linked federated identity.
func (r *AccountRepository) FindByProviderUID(ctx context.Context, provider, providerUserID string) (*domain.Account, error) {
	return retryRead(ctx, func(ctx context.Context) (*domain.Account, error) {
		row := r.db.QueryRow(ctx, `
			SELECT a.id, a.first_name, a.last_name, a.mobile, a.email, a.password_hash,
			       a.is_verified, a.last_login_at, a.created_at, a.updated_at
			FROM accounts a
			JOIN linked_identities li ON li.account_id = a.id
			WHERE li.provider=$1 AND li.provider_user_id=$2
		`, provider, providerUserID)
		return scanAccount(row)
	})
}

// ============================================
// MUTATIONS
// ============================================

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	accountID, err := strconv.ParseInt(a.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid account id: %w", err)
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO accounts (id, first_name, last_name, mobile, email, password_hash, is_verified)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at
	`, accountID, a.FirstName, a.LastName, a.Mobile, a.Email, a.PasswordHash, a.IsVerified).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

// UpdateSignupProfile re-stages an unverified account with fresh signup data.
// Verified accounts are never overwritten through this path.
func (r *AccountRepository) UpdateSignupProfile(ctx context.Context, a *domain.Account) error {
	accountID, err := strconv.ParseInt(a.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid account id: %w", err)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET first_name=$2, last_name=$3, mobile=$4, email=$5, password_hash=$6,
		    is_verified=FALSE, updated_at=NOW()
		WHERE id=$1 AND is_verified=FALSE
	`, accountID, a.FirstName, a.LastName, a.Mobile, a.Email, a.PasswordHash)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) MarkVerified(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE accounts SET is_verified=TRUE, updated_at=NOW() WHERE id=$1`, id)
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx, `UPDATE accounts SET password_hash=$2, updated_at=NOW() WHERE id=$1`, id, passwordHash)
}

func (r *AccountRepository) TouchLastLogin(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE accounts SET last_login_at=NOW(), updated_at=NOW() WHERE id=$1`, id)
}

func (r *AccountRepository) exec(ctx context.Context, query, id string, args ...any) error {
	accountID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return xerrors.ErrAccountNotFound
	}
	tag, err := r.db.Exec(ctx, query, append([]any{accountID}, args...)...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrAccountNotFound
	}
	return nil
}

// UpsertDevice inserts or refreshes one device row. The conditional update
// keys on (account_id, device_id), so concurrent logins from the same device
// cannot produce duplicates or lost updates.
func (r *AccountRepository) UpsertDevice(ctx context.Context, d *domain.Device) error {
	accountID, err := strconv.ParseInt(d.AccountID, 10, 64)
	if err != nil {
		return xerrors.ErrAccountNotFound
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO account_devices (account_id, device_id, push_token, last_login_at)
		VALUES ($1,$2,$3,NOW())
		ON CONFLICT (account_id, device_id)
		DO UPDATE SET push_token=COALESCE(EXCLUDED.push_token, account_devices.push_token),
		              last_login_at=NOW()
	`, accountID, d.DeviceID, d.PushToken)
	return err
}

func (r *AccountRepository) ListDevices(ctx context.Context, accountID string) ([]*domain.Device, error) {
	id, err := strconv.ParseInt(accountID, 10, 64)
	if err != nil {
		return nil, xerrors.ErrAccountNotFound
	}

	rows, err := r.db.Query(ctx, `
		SELECT account_id, device_id, push_token, last_login_at
		FROM account_devices WHERE account_id=$1
		ORDER BY last_login_at DESC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []*domain.Device
	for rows.Next() {
		var d domain.Device
		var accID int64
		if err := rows.Scan(&accID, &d.DeviceID, &d.PushToken, &d.LastLoginAt); err != nil {
			return nil, err
		}
		d.AccountID = strconv.FormatInt(accID, 10)
		devices = append(devices, &d)
	}
	return devices, rows.Err()
}

// LinkIdentity attaches a federated identity to an account. Linking an
// already-linked pair is a no-op; the same pair linked to a different
// account surfaces as a conflict.
func (r *AccountRepository) LinkIdentity(ctx context.Context, li *domain.LinkedIdentity) error {
	linkID, err := strconv.ParseInt(li.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid identity id: %w", err)
	}
	accountID, err := strconv.ParseInt(li.AccountID, 10, 64)
	if err != nil {
		return xerrors.ErrAccountNotFound
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO linked_identities (id, account_id, provider, provider_user_id, email_at_link)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (provider, provider_user_id) DO NOTHING
	`, linkID, accountID, li.Provider, li.ProviderUserID, li.EmailAtLink)
	return err
}

// ============================================
// ACCOUNT CLOSURE
// ============================================

// DeleteAccount removes the account and every dependent row in one
// transaction, so a partial failure leaves the store untouched. Cloud-asset
// cleanup is the caller's concern and is reported separately.
func (r *AccountRepository) DeleteAccount(ctx context.Context, id string) error {
	accountID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return xerrors.ErrAccountNotFound
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, q := range []string{
		`DELETE FROM reset_tickets WHERE account_id=$1`,
		`DELETE FROM linked_identities WHERE account_id=$1`,
		`DELETE FROM account_devices WHERE account_id=$1`,
	} {
		if _, err := tx.Exec(ctx, q, accountID); err != nil {
			return err
		}
	}

	tag, err := tx.Exec(ctx, `DELETE FROM accounts WHERE id=$1`, accountID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrAccountNotFound
	}

	return tx.Commit(ctx)
}
