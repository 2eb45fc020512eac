package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/slipsafe/slipsafe/constants"
	"github.com/slipsafe/slipsafe/internal/common"
	"github.com/slipsafe/slipsafe/internal/deadline"
	"github.com/slipsafe/slipsafe/internal/entity"
	"github.com/slipsafe/slipsafe/internal/export"
	"github.com/slipsafe/slipsafe/internal/extract"
	"github.com/slipsafe/slipsafe/internal/process"
	"github.com/slipsafe/slipsafe/internal/provider"
	repo "github.com/slipsafe/slipsafe/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	_ = godotenv.Load()

	var (
		dir   = flag.String("dir", "", "directory of receipt files to process (required)")
		out   = flag.String("out", "", "output XLSX file path (defaults to <dir>/../purchases.xlsx)")
		inmem = flag.Bool("inmem", false, "use an in-memory merchant-rule store")
		user  = flag.String("user", "", "user UUID owning the merchant rules (optional)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "purchases.xlsx")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	userID := uuid.Nil
	if *user == "" && cfg.Extraction.DefaultUserID != "" {
		*user = cfg.Extraction.DefaultUserID
	}
	if *user != "" {
		parsed, err := uuid.Parse(*user)
		if err != nil {
			printError("Error: invalid --user UUID: %v\n", err)
			os.Exit(1)
		}
		userID = parsed
	}

	rulePath := cfg.Rules.SQLitePath
	if *inmem {
		rulePath = ":memory:"
	}
	ruleRepo, db, err := repo.OpenSQLiteRules(ctx, rulePath, logger)
	if err != nil {
		logger.Error("failed to open rule store", "path", rulePath, "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("close rule store", "error", cerr)
		}
	}()

	supplier, closeFn, err := buildSupplier(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to configure supplier", "error", err)
		os.Exit(1)
	}
	if closeFn != nil {
		defer closeFn()
	}

	processor := process.NewProcessor(logger, supplier, extract.NewPipeline(logger),
		deadline.NewCalculator(ruleRepo, logger))

	files, err := matchFiles(*dir)
	if err != nil {
		logger.Error("failed to scan directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	logger.Info("starting batch", "dir", *dir, "files", len(files))

	var (
		records  []*entity.PurchaseRecord
		failures int
	)
	for _, path := range files {
		in, err := loadInput(path)
		if err != nil {
			logger.Error("failed to read file", "path", path, "error", err)
			failures++
			continue
		}
		ctx := common.WithRequestID(ctx, uuid.NewString())
		record, err := processor.Process(ctx, userID, in)
		if err != nil {
			logger.Error("failed to process file", "path", path, "error", err)
			failures++
			continue
		}
		if record.Receipt.Err != nil {
			logger.Warn("extraction incomplete",
				"path", path,
				"code", record.Receipt.Err.Code,
				"missing", record.Receipt.Err.MissingFields)
		}
		records = append(records, record)
	}

	exportService := export.NewService(logger)
	xlsxBytes, err := exportService.PurchasesXLSX(records)
	if err != nil {
		logger.Error("failed to export purchases", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	logger.Info("batch processing complete",
		"files_scanned", len(files),
		"records", len(records),
		"failures", failures,
		"output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files scanned: %d\n", len(files))
	fmt.Printf("- Records exported: %d\n", len(records))
	fmt.Printf("- Failures: %d\n", failures)
	fmt.Printf("- Output: %s\n", *out)
}

// matchFiles returns the supported receipt files under dir, sorted for
// deterministic output ordering.
func matchFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if constants.IsTextExt(ext) || constants.IsImageExt(ext) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func loadInput(path string) (provider.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return provider.Input{}, err
	}
	ext := filepath.Ext(path)
	if constants.IsTextExt(ext) {
		return provider.Input{Text: string(data)}, nil
	}
	return provider.Input{ImageData: data, ContentType: constants.NormalizeExt(ext)}, nil
}

func buildSupplier(ctx context.Context, cfg *common.Config, logger *slog.Logger) (provider.TextSupplier, func(), error) {
	tess := provider.NewTesseract(provider.TesseractConfig{
		Tesseract: cfg.Provider.Tesseract,
		Lang:      cfg.Provider.Lang,
		PSM:       cfg.Provider.TesseractPSM,
		CacheDir:  cfg.Provider.CacheDir,
	}, logger)

	if cfg.Provider.GeminiAPIKey == "" {
		logger.Warn("vision API key not configured, image files use local OCR only")
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
