package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"identity-service/internal/domain"
	"identity-service/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository struct {
	db *pgxpool.Pool
}

func NewTicketRepository(db *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = `ticket_id, account_id, purpose, used, rotation_expires_at, absolute_expires_at, created_at`

func scanTicket(row pgx.Row) (*domain.ResetTicket, error) {
	var t domain.ResetTicket
	var accountID int64
	err := row.Scan(
		&t.TicketID,
		&accountID,
		&t.Purpose,
		&t.Used,
		&t.RotationExpiresAt,
		&t.AbsoluteExpiresAt,
		&t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	t.AccountID = strconv.FormatInt(accountID, 10)
	return &t, nil
}

// FindActive returns the unused, unexpired ticket for (account, purpose),
// or ErrTicketNotFound when none exists. Expired rows are simply skipped;
// Replace cleans them up on the next issuance.
func (r *TicketRepository) FindActive(ctx context.Context, accountID, purpose string) (*domain.ResetTicket, error) {
	id, err := strconv.ParseInt(accountID, 10, 64)
	if err != nil {
		return nil, xerrors.ErrTicketNotFound
	}

	return retryRead(ctx, func(ctx context.Context) (*domain.ResetTicket, error) {
		row := r.db.QueryRow(ctx, `
			SELECT `+ticketColumns+` FROM reset_tickets
			WHERE account_id=$1 AND purpose=$2 AND used=FALSE
			  AND rotation_expires_at > NOW() AND absolute_expires_at > NOW()
			ORDER BY created_at DESC
			LIMIT 1
		`, id, purpose)
		return scanTicket(row)
	})
}

// DeleteForAccount removes every ticket for (account, purpose). Used as
// defensive cleanup when a reset flow starts over.
func (r *TicketRepository) DeleteForAccount(ctx context.Context, accountID, purpose string) error {
	id, err := strconv.ParseInt(accountID, 10, 64)
	if err != nil {
		return xerrors.ErrTicketNotFound
	}
	_, err = r.db.Exec(ctx, `DELETE FROM reset_tickets WHERE account_id=$1 AND purpose=$2`, id, purpose)
	return err
}

// Replace deletes every ticket for (account, purpose) and inserts the new
// one in a single transaction, so a concurrent Consume observes either the
// old ticket set or the new one, never a gap in between.
func (r *TicketRepository) Replace(ctx context.Context, t *domain.ResetTicket) error {
	accountID, err := strconv.ParseInt(t.AccountID, 10, 64)
	if err != nil {
		return xerrors.ErrAccountNotFound
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM reset_tickets WHERE account_id=$1 AND purpose=$2`,
		accountID, t.Purpose); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO reset_tickets (ticket_id, account_id, purpose, used, rotation_expires_at, absolute_expires_at)
		VALUES ($1,$2,$3,FALSE,$4,$5)
	`, t.TicketID, accountID, t.Purpose, t.RotationExpiresAt, t.AbsoluteExpiresAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Consume marks the ticket used, applies the new password hash to the
// owning account, and purges every other unused sibling for the same
// (account, purpose), all in one transaction. A ticket that was already
// used, or vanished under a concurrent rotation, fails the whole unit.
func (r *TicketRepository) Consume(ctx context.Context, ticketID, passwordHash string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	t, err := scanTicket(tx.QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM reset_tickets WHERE ticket_id=$1 FOR UPDATE`, ticketID))
	if err != nil {
		return err
	}
	if t.Used {
		return xerrors.ErrTicketAlreadyUsed
	}
	if t.ExpiredAt(time.Now()) {
		return xerrors.ErrTicketExpired
	}

	accountID, err := strconv.ParseInt(t.AccountID, 10, 64)
	if err != nil {
		return xerrors.ErrAccountNotFound
	}

	tag, err := tx.Exec(ctx,
		`UPDATE accounts SET password_hash=$2, updated_at=NOW() WHERE id=$1`,
		accountID, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrAccountNotFound
	}

	if _, err := tx.Exec(ctx,
		`UPDATE reset_tickets SET used=TRUE WHERE ticket_id=$1`, t.TicketID); err != nil {
		return err
	}

	// Siblings issued before a rotation must not remain replayable.
	if _, err := tx.Exec(ctx, `
		DELETE FROM reset_tickets
		WHERE account_id=$1 AND purpose=$2 AND used=FALSE AND ticket_id<>$3
	`, accountID, t.Purpose, t.TicketID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
