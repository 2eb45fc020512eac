package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/slipsafe/slipsafe/internal/common"
	"github.com/slipsafe/slipsafe/internal/entity"
)

// sqliteRuleRepository backs the batch/offline CLIs. Same contract as the
// Postgres store, but a single local file (or :memory:).
type sqliteRuleRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLiteRules opens (and migrates) a local SQLite rule store. Pass
// ":memory:" for throwaway runs.
func OpenSQLiteRules(ctx context.Context, path string, logger *slog.Logger) (RuleRepository, *sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, common.WrapError(err, "open sqlite rule store")
	}
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS merchant_rules (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			merchant_name TEXT NOT NULL,
			return_policy_days INTEGER NOT NULL DEFAULT 0,
			warranty_months INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE (user_id, merchant_name)
		)`); err != nil {
		_ = db.Close()
		return nil, nil, common.WrapError(err, "migrate sqlite rule store")
	}
	return &sqliteRuleRepository{db: db, logger: logger}, db, nil
}

func (r *sqliteRuleRepository) Lookup(ctx context.Context, userID uuid.UUID, merchantName string) (*entity.MerchantRule, error) {
	normalized := NormalizeMerchant(merchantName)
	if normalized == "" {
		return nil, nil
	}

	var (
		rule                      entity.MerchantRule
		id, uid, created, updated string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, merchant_name, return_policy_days, warranty_months, created_at, updated_at
		FROM merchant_rules
		WHERE user_id = ? AND merchant_name = ?`,
		userID.String(), normalized,
	).Scan(&id, &uid, &rule.MerchantName, &rule.ReturnPolicyDays, &rule.WarrantyMonths, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("rule lookup failed", "user_id", userID, "merchant", normalized, "error", err)
		return nil, err
	}

	rule.ID, _ = uuid.Parse(id)
	rule.UserID, _ = uuid.Parse(uid)
	rule.CreatedAt, _ = time.Parse(time.RFC3339, created)
	rule.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &rule, nil
}

func (r *sqliteRuleRepository) Upsert(ctx context.Context, rule *entity.MerchantRule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	rule.MerchantName = NormalizeMerchant(rule.MerchantName)
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO merchant_rules (id, user_id, merchant_name, return_policy_days, warranty_months, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, merchant_name) DO UPDATE SET
			return_policy_days = excluded.return_policy_days,
			warranty_months = excluded.warranty_months,
			updated_at = excluded.updated_at`,
		rule.ID.String(), rule.UserID.String(), rule.MerchantName,
		rule.ReturnPolicyDays, rule.WarrantyMonths, now, now)
	if err != nil {
		r.logger.Error("rule upsert failed", "user_id", rule.UserID, "merchant", rule.MerchantName, "error", err)
	}
	return err
}

func (r *sqliteRuleRepository) List(ctx context.Context, userID uuid.UUID) ([]*entity.MerchantRule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, merchant_name, return_policy_days, warranty_months, created_at, updated_at
		FROM merchant_rules
		WHERE user_id = ?
		ORDER BY merchant_name`, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*entity.MerchantRule
	for rows.Next() {
		var (
			rule                      entity.MerchantRule
			id, uid, created, updated string
		)
		if err := rows.Scan(&id, &uid, &rule.MerchantName, &rule.ReturnPolicyDays, &rule.WarrantyMonths, &created, &updated); err != nil {
			return nil, err
		}
		rule.ID, _ = uuid.Parse(id)
		rule.UserID, _ = uuid.Parse(uid)
		rule.CreatedAt, _ = time.Parse(time.RFC3339, created)
		rule.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		rules = append(rules, &rule)
	}
	return rules, rows.Err()
}

func (r *sqliteRuleRepository) Delete(ctx context.Context, userID uuid.UUID, merchantName string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM merchant_rules WHERE user_id = ? AND merchant_name = ?`,
		userID.String(), NormalizeMerchant(merchantName))
	return err
}
