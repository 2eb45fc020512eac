package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Chain is the explicit two-step fallback: try the primary supplier, and on
// failure or empty text try the secondary. Each step is single-shot; a
// fallback result feeds a fresh, independent pipeline run downstream.
type Chain struct {
	primary   TextSupplier
	secondary TextSupplier
	logger    *slog.Logger
}

func NewChain(primary, secondary TextSupplier, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{primary: primary, secondary: secondary, logger: logger}
}

func (c *Chain) Supply(ctx context.Context, in Input) (SupplyResult, error) {
	if c.primary == nil && c.secondary == nil {
		return SupplyResult{}, fmt.Errorf("chain: no suppliers configured")
	}

	var firstErr error
	if c.primary != nil {
		res, err := c.primary.Supply(ctx, in)
		if err == nil && strings.TrimSpace(res.Text) != "" {
			return res, nil
		}
		firstErr = err
		c.logger.Warn("provider.chain.primary_failed",
			"error", err, "empty", err == nil)
	}

	if c.secondary != nil {
		res, err := c.secondary.Supply(ctx, in)
		if err == nil && strings.TrimSpace(res.Text) != "" {
			if firstErr != nil {
				res.Warnings = append(res.Warnings, fmt.Sprintf("primary supplier failed: %v", firstErr))
			}
			return res, nil
		}
		if err != nil {
			if firstErr != nil {
				return SupplyResult{}, fmt.Errorf("chain: primary: %v; secondary: %w", firstErr, err)
			}
			return SupplyResult{}, fmt.Errorf("chain: secondary: %w", err)
		}
	}

	if firstErr != nil {
		return SupplyResult{}, fmt.Errorf("chain: primary: %w", firstErr)
	}
	return SupplyResult{}, fmt.Errorf("chain: all suppliers returned empty text")
}
