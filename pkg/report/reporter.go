// pkg/report/reporter.go
package report

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/storeops/order-quality/pkg/model"
	"github.com/storeops/order-quality/pkg/store"
)

// Engine is the subset of the cleaning engine the reporter needs. The
// analyze variants are pure classification over a snapshot; the
// reporter never remediates.
type Engine interface {
	AnalyzeDuplicates(records []model.OrderRecord) *model.CleaningResult
	AnalyzeCompleteness(records []model.OrderRecord) *model.CleaningResult
	AnalyzeTypes(records []model.OrderRecord) *model.CleaningResult
}

// Reporter composes the three check kinds into one quality report
type Reporter struct {
	store  store.OrderStore
	engine Engine
	logger *zap.Logger
}

// NewReporter creates a Reporter
func NewReporter(s store.OrderStore, engine Engine, logger *zap.Logger) (*Reporter, error) {
	if s == nil {
		return nil, errors.New("order store cannot be nil")
	}
	if engine == nil {
		return nil, errors.New("cleaning engine cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Reporter{
		store:  s,
		engine: engine,
		logger: logger,
	}, nil
}

// GenerateReport fetches one snapshot and classifies it under all three
// check kinds, so every finding in the report refers to the same set of
// records. The report fails if any check reported errors. A failed
// fetch aborts the whole report; no partial report is returned.
func (r *Reporter) GenerateReport(ctx context.Context) (*model.QualityReport, error) {
	records, err := r.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	results := []*model.CleaningResult{
		r.engine.AnalyzeDuplicates(records),
		r.engine.AnalyzeCompleteness(records),
		r.engine.AnalyzeTypes(records),
	}

	report := &model.QualityReport{
		TotalRecords: len(records),
		GeneratedAt:  time.Now().UTC(),
	}

	for _, result := range results {
		report.Errors += result.Errors
		report.Warnings += result.Warnings
		report.CleaningSummary = append(report.CleaningSummary, result.CleaningSummary...)
	}
	report.Passed = report.Errors == 0

	r.logger.Info("Generated quality report",
		zap.Int("totalRecords", report.TotalRecords),
		zap.Int("errors", report.Errors),
		zap.Int("warnings", report.Warnings),
		zap.Bool("passed", report.Passed))

	return report, nil
}
