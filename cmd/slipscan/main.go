package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/slipsafe/slipsafe/constants"
	"github.com/slipsafe/slipsafe/internal/common"
	"github.com/slipsafe/slipsafe/internal/deadline"
	"github.com/slipsafe/slipsafe/internal/extract"
	"github.com/slipsafe/slipsafe/internal/process"
	"github.com/slipsafe/slipsafe/internal/provider"
	repo "github.com/slipsafe/slipsafe/internal/repository"
)

func main() {
	_ = godotenv.Load()

	var (
		file  = flag.String("file", "", "receipt file to scan (.txt for plain text, image otherwise); omit to read text from stdin")
		rules = flag.String("rules", "", "path to SQLite merchant-rule store (optional)")
		user  = flag.String("user", "", "user UUID owning the merchant rules (optional)")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	ctx, cancel := common.WithTimeout(context.Background(), cfg.Provider.Timeout)
	defer cancel()
	ctx = common.WithRequestID(ctx, uuid.NewString())

	in, err := readInput(*file)
	if err != nil {
		logger.Error("read input", "error", err)
		os.Exit(1)
	}

	supplier, closeFn, err := buildSupplier(ctx, cfg, in, logger)
	if err != nil {
		logger.Error("configure supplier", "error", err)
		os.Exit(1)
	}
	if closeFn != nil {
		defer closeFn()
	}

	userID := uuid.Nil
	if *user != "" {
		userID, err = uuid.Parse(*user)
		if err != nil {
			logger.Error("invalid user id (must be UUID)", "arg", *user, "error", err)
			os.Exit(2)
		}
	}

	var calc *deadline.Calculator
	if *rules != "" {
		ruleRepo, db, err := repo.OpenSQLiteRules(ctx, *rules, logger)
		if err != nil {
			logger.Error("open rule store", "path", *rules, "error", err)
			os.Exit(1)
		}
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logger.Error("close rule store", "error", cerr)
			}
		}()
		calc = deadline.NewCalculator(ruleRepo, logger)
	} else {
		calc = deadline.NewCalculator(nil, logger)
	}

	processor := process.NewProcessor(logger, supplier, extract.NewPipeline(logger), calc)
	record, err := processor.Process(ctx, userID, in)
	if err != nil {
		logger.Error("processing failed", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
	if record.Receipt.Err != nil {
		os.Exit(3)
	}
}

// readInput loads the receipt as plain text or image bytes.
func readInput(path string) (provider.Input, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return provider.Input{}, fmt.Errorf("read stdin: %w", err)
		}
		return provider.Input{Text: string(data)}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return provider.Input{}, err
	}
	ext := filepath.Ext(path)
	if constants.IsTextExt(ext) {
		return provider.Input{Text: string(data)}, nil
	}
	if !constants.IsImageExt(ext) {
		return provider.Input{}, fmt.Errorf("unsupported file type %q", ext)
	}
	return provider.Input{ImageData: data, ContentType: constants.NormalizeExt(ext)}, nil
}

// buildSupplier prefers the vision model when a key is configured and the
// input is an image, with local OCR as fallback.
func buildSupplier(ctx context.Context, cfg *common.Config, in provider.Input, logger *slog.Logger) (provider.TextSupplier, func(), error) {
	tess := provider.NewTesseract(provider.TesseractConfig{
		Tesseract: cfg.Provider.Tesseract,
		Lang:      cfg.Provider.Lang,
		PSM:       cfg.Provider.TesseractPSM,
		CacheDir:  cfg.Provider.CacheDir,
	}, logger)

	if in.Text != "" || cfg.Provider.GeminiAPIKey == "" {
		return tess, nil, nil
	}

	gem, err := provider.NewGemini(ctx, provider.GeminiConfig{
		APIKey: cfg.Provider.GeminiAPIKey,
		Model:  cfg.Provider.GeminiModel,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if cerr := gem.Close(); cerr != nil {
			logger.Error("close vision client", "error", cerr)
		}
	}
	return provider.NewChain(gem, tess, logger), closeFn, nil
}
