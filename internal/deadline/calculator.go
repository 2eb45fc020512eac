// Package deadline turns a purchase date and a normalized policy into the
// concrete return-by and warranty-end dates, falling back to per-merchant
// rules when the receipt itself is silent.
package deadline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/slipsafe/slipsafe/constants"
	"github.com/slipsafe/slipsafe/internal/entity"
)

// RuleLookup resolves a merchant rule for (user, merchant name). A nil rule
// with nil error means no rule exists.
type RuleLookup interface {
	Lookup(ctx context.Context, userID uuid.UUID, merchantName string) (*entity.MerchantRule, error)
}

type Calculator struct {
	rules  RuleLookup
	logger *slog.Logger
}

func NewCalculator(rules RuleLookup, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{rules: rules, logger: logger}
}

// Compute derives deadlines from the purchase date and policy, consulting
// the merchant rule only when the receipt stated no explicit value.
//
// A refund type of "none" (or an explicit 0-day policy) is terminal: the
// return deadline stays nil and no rule is ever consulted for it. When
// neither the receipt nor a rule supplies a value, the deadline is nil,
// never an invented default.
//
// The policy's source is stamped merchant_default when a rule filled either
// value in.
func (c *Calculator) Compute(ctx context.Context, userID uuid.UUID, purchaseDate time.Time, policy *entity.PolicyInfo, merchantName string) (entity.Deadlines, error) {
	var d entity.Deadlines

	needReturnRule := !policy.ReturnsBarred() &&
		(policy.ReturnPolicyDays == nil || *policy.ReturnPolicyDays <= 0)
	needWarrantyRule := policy.WarrantyMonths == nil || *policy.WarrantyMonths <= 0

	var rule *entity.MerchantRule
	if (needReturnRule || needWarrantyRule) && c.rules != nil && merchantName != "" {
		var err error
		rule, err = c.rules.Lookup(ctx, userID, merchantName)
		if err != nil {
			return d, err
		}
	}

	switch {
	case policy.ReturnsBarred():
		// Terminal: returns unconditionally barred.
	case policy.ReturnPolicyDays != nil && *policy.ReturnPolicyDays > 0:
		t := purchaseDate.AddDate(0, 0, *policy.ReturnPolicyDays)
		d.ReturnBy = &t
	case rule != nil && rule.ReturnPolicyDays > 0:
		t := purchaseDate.AddDate(0, 0, rule.ReturnPolicyDays)
		d.ReturnBy = &t
		policy.ReturnPolicyDays = intPtr(rule.ReturnPolicyDays)
		policy.PolicySource = constants.PolicySourceMerchantDefault
		c.logger.Debug("deadline.return.merchant_default",
			"merchant", merchantName, "days", rule.ReturnPolicyDays)
	}

	// Warranty uses calendar-month addition and its own fallback chain,
	// independent of the return outcome.
	switch {
	case policy.WarrantyMonths != nil && *policy.WarrantyMonths > 0:
		t := purchaseDate.AddDate(0, *policy.WarrantyMonths, 0)
		d.WarrantyEnds = &t
	case rule != nil && rule.WarrantyMonths > 0:
		t := purchaseDate.AddDate(0, rule.WarrantyMonths, 0)
		d.WarrantyEnds = &t
		policy.WarrantyMonths = intPtr(rule.WarrantyMonths)
		policy.PolicySource = constants.PolicySourceMerchantDefault
		c.logger.Debug("deadline.warranty.merchant_default",
			"merchant", merchantName, "months", rule.WarrantyMonths)
	}

	return d, nil
}

func intPtr(n int) *int { return &n }
