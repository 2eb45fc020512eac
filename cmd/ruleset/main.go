// ruleset manages per-user merchant rules: the fallback return windows and
// warranty lengths used when a receipt states no policy of its own.
//
// Usage:
//
//	ruleset add --user <uuid> --merchant "NAME" [--return-days N] [--warranty-months N]
//	ruleset list --user <uuid>
//	ruleset delete --user <uuid> --merchant "NAME"
//
// Rules live in Postgres when DB_URL is set, otherwise in the local SQLite
// store at RULES_SQLITE_PATH.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/slipsafe/slipsafe/internal/common"
	"github.com/slipsafe/slipsafe/internal/entity"
	repo "github.com/slipsafe/slipsafe/internal/repository"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	if len(os.Args) < 2 {
		log.Fatal("usage: ruleset <add|list|delete> [flags]")
	}
	cmd := os.Args[1]

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	var (
		user           = fs.String("user", "", "user UUID (required)")
		merchant       = fs.String("merchant", "", "merchant name")
		returnDays     = fs.Int("return-days", 0, "fallback return window in days")
		warrantyMonths = fs.Int("warranty-months", 0, "fallback warranty length in months")
	)
	if err := fs.Parse(os.Args[2:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}

	ctx := context.Background()
	cfg := common.LoadConfig()

	rules, cleanup, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatalf("open rule store: %v", err)
	}
	defer cleanup()

	switch cmd {
	case "add":
		v := common.NewValidator().
			Field("user", *user, common.Required, common.UUID).
			Field("merchant", *merchant, common.Required).
			Field("return-days", *returnDays, common.NonNegativeInt).
			Field("warranty-months", *warrantyMonths, common.NonNegativeInt)
		if err := common.ValidateAndReturnError(v); err != nil {
			log.Fatalf("invalid arguments: %v", err)
		}
		userID, _ := uuid.Parse(*user)
		rule := &entity.MerchantRule{
			UserID:           userID,
			MerchantName:     *merchant,
			ReturnPolicyDays: *returnDays,
			WarrantyMonths:   *warrantyMonths,
		}
		if err := rules.Upsert(ctx, rule); err != nil {
			log.Fatalf("upsert rule: %v", err)
		}
		log.Infow("rule saved",
			"merchant", rule.MerchantName,
			"return_days", rule.ReturnPolicyDays,
			"warranty_months", rule.WarrantyMonths)

	case "list":
		v := common.NewValidator().Field("user", *user, common.Required, common.UUID)
		if err := common.ValidateAndReturnError(v); err != nil {
			log.Fatalf("invalid arguments: %v", err)
		}
		userID, _ := uuid.Parse(*user)
		all, err := rules.List(ctx, userID)
		if err != nil {
			log.Fatalf("list rules: %v", err)
		}
		if len(all) == 0 {
			fmt.Println("no rules")
			return
		}
		fmt.Printf("%-40s %12s %16s\n", "MERCHANT", "RETURN DAYS", "WARRANTY MONTHS")
		for _, r := range all {
			fmt.Printf("%-40s %12d %16d\n", r.MerchantName, r.ReturnPolicyDays, r.WarrantyMonths)
		}

	case "delete":
		v := common.NewValidator().
			Field("user", *user, common.Required, common.UUID).
			Field("merchant", *merchant, common.Required)
		if err := common.ValidateAndReturnError(v); err != nil {
			log.Fatalf("invalid arguments: %v", err)
		}
		userID, _ := uuid.Parse(*user)
		existing, err := rules.Lookup(ctx, userID, *merchant)
		if err != nil {
			log.Fatalf("delete rule: %v", err)
		}
		if existing == nil {
			log.Fatalf("delete rule: %v",
				common.NotFoundError(fmt.Sprintf("no rule for merchant %q", repo.NormalizeMerchant(*merchant))))
		}
		if err := rules.Delete(ctx, userID, *merchant); err != nil {
			log.Fatalf("delete rule: %v", err)
		}
		log.Infow("rule deleted", "merchant", repo.NormalizeMerchant(*merchant))

	default:
		log.Fatalf("unknown command %q (want add, list or delete)", cmd)
	}
}

// openStore picks Postgres when DB_URL is set, SQLite otherwise.
func openStore(ctx context.Context, cfg *common.Config, log *zap.SugaredLogger) (repo.RuleRepository, func(), error) {
	slogger := slog.Default()

	if cfg.Database.DSN != "" {
		pool, err := repo.Open(ctx, repo.Config{
			DSN:              cfg.Database.DSN,
			MaxConns:         cfg.Database.MaxConns,
			MinConns:         cfg.Database.MinConns,
			MaxConnLifetime:  cfg.Database.MaxConnLifetime,
			MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
			DialTimeout:      cfg.Database.DialTimeout,
			StatementTimeout: cfg.Database.StatementTimeout,
		}, slogger)
		if err != nil {
			return nil, nil, err
		}
		if err := repo.HealthCheck(ctx, pool, cfg.Database.DialTimeout, slogger); err != nil {
			pool.Close()
			return nil, nil, err
		}
		if err := repo.EnsureRuleSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Infow("using Postgres rule store")
		return repo.NewRuleRepository(pool, slogger), pool.Close, nil
	}

	rules, db, err := repo.OpenSQLiteRules(ctx, cfg.Rules.SQLitePath, slogger)
	if err != nil {
		return nil, nil, err
	}
	log.Infow("using SQLite rule store", "path", cfg.Rules.SQLitePath)
	return rules, func() { _ = db.Close() }, nil
}
