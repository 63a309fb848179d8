package users

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/arkade-01/p2pbot/internal/logger"
	"log/slog"
)

const selectUser = `
SELECT telegram_id,
       COALESCE(bank_name, '')        AS bank_name,
       COALESCE(account_name, '')     AS account_name,
       COALESCE(account_number, '')   AS account_number,
       COALESCE(institution_code, '') AS institution_code,
       COALESCE(wallet_address, '')   AS wallet_address,
       trade_volume,
       trade_count
  FROM users
 WHERE telegram_id = $1`

// Repository persists user profiles in Postgres.
type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps the given database handle.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// GetOrCreate returns the profile for a Telegram user, inserting an empty
// profile on first reference.
func (r *Repository) GetOrCreate(ctx context.Context, telegramID int64) (*User, error) {
	start := time.Now()
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO users (telegram_id) VALUES ($1) ON CONFLICT (telegram_id) DO NOTHING`,
		telegramID,
	); err != nil {
		return nil, fmt.Errorf("users: create: %w", err)
	}

	var u User
	if err := r.db.GetContext(ctx, &u, selectUser, telegramID); err != nil {
		return nil, fmt.Errorf("users: get: %w", err)
	}

	logger.DB.Debug("user loaded",
		slog.String("event", "users.get_or_create"),
		slog.Int64("user_id", telegramID),
		slog.Duration("duration", logger.Took(start)),
	)
	return &u, nil
}

// UpsertPayoutAccount stores verified payout details, creating the profile if absent.
func (r *Repository) UpsertPayoutAccount(ctx context.Context, telegramID int64, acc PayoutAccount) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (telegram_id, bank_name, account_name, account_number, institution_code, updated_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (telegram_id) DO UPDATE
   SET bank_name        = EXCLUDED.bank_name,
       account_name     = EXCLUDED.account_name,
       account_number   = EXCLUDED.account_number,
       institution_code = EXCLUDED.institution_code,
       updated_at       = now()`,
		telegramID, acc.BankName, acc.AccountName, acc.AccountNumber, acc.InstitutionCode,
	)
	if err != nil {
		return fmt.Errorf("users: upsert payout account: %w", err)
	}
	logger.DB.Info("payout account saved",
		slog.String("event", "users.upsert_account"),
		slog.Int64("user_id", telegramID),
		slog.String("institution", acc.InstitutionCode),
	)
	return nil
}

// ClearPayoutAccount removes stored payout details from the profile.
func (r *Repository) ClearPayoutAccount(ctx context.Context, telegramID int64) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE users
   SET bank_name = NULL, account_name = NULL, account_number = NULL,
       institution_code = NULL, updated_at = now()
 WHERE telegram_id = $1`,
		telegramID,
	)
	if err != nil {
		return fmt.Errorf("users: clear payout account: %w", err)
	}
	return nil
}

// IncrementTradeStats atomically bumps cumulative volume and trade count.
func (r *Repository) IncrementTradeStats(ctx context.Context, telegramID int64, volume decimal.Decimal, trades int64) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE users
   SET trade_volume = trade_volume + $2,
       trade_count  = trade_count + $3,
       updated_at   = now()
 WHERE telegram_id = $1`,
		telegramID, volume, trades,
	)
	if err != nil {
		return fmt.Errorf("users: increment trade stats: %w", err)
	}
	logger.DB.Debug("trade stats updated",
		slog.String("event", "users.increment_stats"),
		slog.Int64("user_id", telegramID),
		slog.String("volume_delta", volume.String()),
		slog.Int64("trades_delta", trades),
	)
	return nil
}
