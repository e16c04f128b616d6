// cmd/orderclean/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/storeops/order-quality/pkg/cleaner"
	"github.com/storeops/order-quality/pkg/config"
	"github.com/storeops/order-quality/pkg/connector"
	"github.com/storeops/order-quality/pkg/report"
	"github.com/storeops/order-quality/pkg/store"
)

func main() {
	check := flag.String("check", "report", "check to run: report, duplicates, incomplete or types")
	apply := flag.Bool("apply", false, "apply remediation instead of a dry run")
	verify := flag.Bool("verify", false, "verify references and duplicate groups after the pass")
	flag.Parse()

	if err := run(*check, *apply, *verify); err != nil {
		fmt.Fprintln(os.Stderr, "orderclean:", err)
		os.Exit(1)
	}
}

func run(check string, apply, verify bool) error {
	// .env is optional; real deployments use environment variables
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx := context.Background()

	conn, err := connector.NewPostgresConnector(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Validate(ctx); err != nil {
		return err
	}

	orderStore, err := store.NewPostgresStore(conn.DB(), logger.Named("store"))
	if err != nil {
		return err
	}

	engine, err := cleaner.NewOrdersCleaner(orderStore, cfg.IdentityKey, logger.Named("cleaner"))
	if err != nil {
		return err
	}

	var output any
	switch check {
	case "report":
		if apply {
			return fmt.Errorf("-apply is not valid for the %s check", check)
		}
		reporter, err := report.NewReporter(orderStore, engine, logger.Named("reporter"))
		if err != nil {
			return err
		}
		output, err = reporter.GenerateReport(ctx)
		if err != nil {
			return err
		}

	case "duplicates":
		output, err = engine.RunDuplicateCheck(ctx, apply)
		if err != nil {
			return err
		}

	case "incomplete":
		output, err = engine.RunIncompleteCheck(ctx, apply)
		if err != nil {
			return err
		}

	case "types":
		if apply {
			return fmt.Errorf("-apply is not valid for the %s check", check)
		}
		output, err = engine.RunTypeValidation(ctx)
		if err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown check %q", check)
	}

	if err := printJSON(output); err != nil {
		return err
	}

	if verify {
		verifier, err := cleaner.NewVerifier(orderStore, cfg.IdentityKey, logger.Named("verifier"))
		if err != nil {
			return err
		}
		verification, err := verifier.VerifyRemediation(ctx)
		if err != nil {
			return err
		}
		if err := printJSON(verification); err != nil {
			return err
		}
	}

	return nil
}

func printJSON(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.LogFormat == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
