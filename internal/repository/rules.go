package repository

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slipsafe/slipsafe/internal/entity"
)

// RuleRepository stores per-user merchant rules used as deadline fallbacks.
// Lookup returns (nil, nil) when no rule matches.
type RuleRepository interface {
	Lookup(ctx context.Context, userID uuid.UUID, merchantName string) (*entity.MerchantRule, error)
	Upsert(ctx context.Context, rule *entity.MerchantRule) error
	List(ctx context.Context, userID uuid.UUID) ([]*entity.MerchantRule, error)
	Delete(ctx context.Context, userID uuid.UUID, merchantName string) error
}

var reSpaces = regexp.MustCompile(`\s+`)

// NormalizeMerchant makes merchant names comparable across receipts:
// upper-cased, whitespace collapsed, trimmed.
func NormalizeMerchant(name string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(strings.ToUpper(name), " "))
}

type pgRuleRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewRuleRepository(pool *pgxpool.Pool, logger *slog.Logger) RuleRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &pgRuleRepository{pool: pool, logger: logger}
}

// EnsureRuleSchema creates the merchant_rules table when missing.
func EnsureRuleSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS merchant_rules (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			merchant_name TEXT NOT NULL,
			return_policy_days INT NOT NULL DEFAULT 0,
			warranty_months INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_id, merchant_name)
		)`)
	return err
}

func (r *pgRuleRepository) Lookup(ctx context.Context, userID uuid.UUID, merchantName string) (*entity.MerchantRule, error) {
	normalized := NormalizeMerchant(merchantName)
	if normalized == "" {
		return nil, nil
	}

	var rule entity.MerchantRule
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, merchant_name, return_policy_days, warranty_months, created_at, updated_at
		FROM merchant_rules
		WHERE user_id = $1 AND merchant_name = $2`,
		userID, normalized,
	).Scan(&rule.ID, &rule.UserID, &rule.MerchantName, &rule.ReturnPolicyDays, &rule.WarrantyMonths, &rule.CreatedAt, &rule.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("rule lookup failed", "user_id", userID, "merchant", normalized, "error", err)
		return nil, err
	}
	return &rule, nil
}

func (r *pgRuleRepository) Upsert(ctx context.Context, rule *entity.MerchantRule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	rule.MerchantName = NormalizeMerchant(rule.MerchantName)

	_, err := r.pool.Exec(ctx, `
		INSERT INTO merchant_rules (id, user_id, merchant_name, return_policy_days, warranty_months)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, merchant_name) DO UPDATE SET
			return_policy_days = EXCLUDED.return_policy_days,
			warranty_months = EXCLUDED.warranty_months,
			updated_at = now()`,
		rule.ID, rule.UserID, rule.MerchantName, rule.ReturnPolicyDays, rule.WarrantyMonths)
	if err != nil {
		r.logger.Error("rule upsert failed", "user_id", rule.UserID, "merchant", rule.MerchantName, "error", err)
	}
	return err
}

func (r *pgRuleRepository) List(ctx context.Context, userID uuid.UUID) ([]*entity.MerchantRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, merchant_name, return_policy_days, warranty_months, created_at, updated_at
		FROM merchant_rules
		WHERE user_id = $1
		ORDER BY merchant_name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*entity.MerchantRule
	for rows.Next() {
		var rule entity.MerchantRule
		if err := rows.Scan(&rule.ID, &rule.UserID, &rule.MerchantName, &rule.ReturnPolicyDays, &rule.WarrantyMonths, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, &rule)
	}
	return rules, rows.Err()
}

func (r *pgRuleRepository) Delete(ctx context.Context, userID uuid.UUID, merchantName string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM merchant_rules WHERE user_id = $1 AND merchant_name = $2`,
		userID, NormalizeMerchant(merchantName))
	return err
}
