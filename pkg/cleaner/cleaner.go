// pkg/cleaner/cleaner.go
package cleaner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storeops/order-quality/pkg/model"
	"github.com/storeops/order-quality/pkg/rules"
	"github.com/storeops/order-quality/pkg/store"
)

// OrdersCleaner runs quality checks over the orders relation and
// optionally remediates findings inside a single transaction.
type OrdersCleaner struct {
	store       store.OrderStore
	identityKey []string
	logger      *zap.Logger
}

// NewOrdersCleaner creates an OrdersCleaner. An empty identity key falls
// back to the default duplicate-grouping key.
func NewOrdersCleaner(s store.OrderStore, identityKey []string, logger *zap.Logger) (*OrdersCleaner, error) {
	if s == nil {
		return nil, errors.New("order store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if len(identityKey) == 0 {
		identityKey = rules.DefaultIdentityKey
	}

	return &OrdersCleaner{
		store:       s,
		identityKey: identityKey,
		logger:      logger,
	}, nil
}

// RunDuplicateCheck partitions the orders relation by identity key and
// classifies each group of size > 1. In dry-run mode the result counts
// the records that would be removed. With remediate set, every foreign
// reference to a dropped order is rewritten to the retained order before
// the dropped rows are deleted, all inside one transaction.
func (c *OrdersCleaner) RunDuplicateCheck(ctx context.Context, remediate bool) (*model.CleaningResult, error) {
	records, err := c.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	result, ops := c.analyzeDuplicates(records, remediate)

	if remediate && len(ops) > 0 {
		if err := c.store.ExecuteInTransaction(ctx, ops); err != nil {
			return nil, err
		}
		c.logger.Info("Removed duplicate orders",
			zap.String("passID", result.PassID),
			zap.Int("removed", result.CleanedRecords))
	}

	return c.finalize(result), nil
}

// AnalyzeDuplicates classifies a snapshot for duplicates without
// touching the store. The reporter uses the analyze variants so all
// three check kinds see one and the same snapshot.
func (c *OrdersCleaner) AnalyzeDuplicates(records []model.OrderRecord) *model.CleaningResult {
	result, _ := c.analyzeDuplicates(records, false)
	return c.finalize(result)
}

func (c *OrdersCleaner) analyzeDuplicates(records []model.OrderRecord, remediate bool) (*model.CleaningResult, []store.WriteOp) {
	result := c.newResult(model.CheckDuplicates, remediate, len(records))

	groups := rules.GroupByIdentityKey(records, c.identityKey)

	// Deterministic pass order: groups sorted by their retained order id
	classified := make([]rules.DuplicateGroup, 0, len(groups))
	for _, group := range groups {
		if dup, ok := rules.ClassifyDuplicates(group); ok {
			classified = append(classified, dup)
		}
	}
	sort.Slice(classified, func(i, j int) bool {
		return classified[i].Keep.OrderID < classified[j].Keep.OrderID
	})

	var ops []store.WriteOp
	for _, dup := range classified {
		dropIDs := make([]string, 0, len(dup.Drop))
		for _, rec := range dup.Drop {
			dropIDs = append(dropIDs, fmt.Sprintf("%d", rec.OrderID))
			// References are remapped before the delete so a failure
			// between the two can never leave a dangling reference.
			ops = append(ops, store.RewriteReferences(rec.OrderID, dup.Keep.OrderID))
		}
		for _, rec := range dup.Drop {
			ops = append(ops, store.DeleteOrder(rec.OrderID))
		}

		result.CleanedRecords += len(dup.Drop)
		result.Warnings += len(dup.Drop)
		result.CleaningSummary = append(result.CleaningSummary, fmt.Sprintf(
			"duplicate group %s: keeping order %d, dropping %d order(s) [%s]",
			c.identityKeyLabel(dup.Keep), dup.Keep.OrderID, len(dup.Drop),
			strings.Join(dropIDs, ", ")))
	}

	return result, ops
}

// RunIncompleteCheck classifies every record for missing fields. Missing
// critical fields are errors and are never remediated; missing
// defaultable numeric fields are warnings and are zero-filled when
// remediating. Other missing fields are reported as warnings only.
func (c *OrdersCleaner) RunIncompleteCheck(ctx context.Context, remediate bool) (*model.CleaningResult, error) {
	records, err := c.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	result, ops := c.analyzeCompleteness(records, remediate)

	if remediate && len(ops) > 0 {
		if err := c.store.ExecuteInTransaction(ctx, ops); err != nil {
			return nil, err
		}
		c.logger.Info("Zero-filled incomplete orders",
			zap.String("passID", result.PassID),
			zap.Int("filled", result.CleanedRecords))
	}

	return c.finalize(result), nil
}

// AnalyzeCompleteness classifies a snapshot for missing fields without
// touching the store
func (c *OrdersCleaner) AnalyzeCompleteness(records []model.OrderRecord) *model.CleaningResult {
	result, _ := c.analyzeCompleteness(records, false)
	return c.finalize(result)
}

func (c *OrdersCleaner) analyzeCompleteness(records []model.OrderRecord, remediate bool) (*model.CleaningResult, []store.WriteOp) {
	result := c.newResult(model.CheckIncomplete, remediate, len(records))

	var ops []store.WriteOp
	for _, rec := range records {
		completeness := rules.ClassifyCompleteness(rec)
		if completeness.Complete() {
			continue
		}

		if len(completeness.MissingCritical) > 0 {
			result.Errors += len(completeness.MissingCritical)
			result.CleaningSummary = append(result.CleaningSummary, fmt.Sprintf(
				"order %d: missing critical field(s) %s (not remediated)",
				rec.OrderID, strings.Join(completeness.MissingCritical, ", ")))
		}

		if len(completeness.MissingDefaultable) > 0 {
			result.Warnings += len(completeness.MissingDefaultable)
			if remediate {
				ops = append(ops, store.FillDefaults(rec.OrderID, completeness.MissingDefaultable))
				result.CleanedRecords++
				result.CleaningSummary = append(result.CleaningSummary, fmt.Sprintf(
					"order %d: zero-filled %s",
					rec.OrderID, strings.Join(completeness.MissingDefaultable, ", ")))
			} else {
				result.CleaningSummary = append(result.CleaningSummary, fmt.Sprintf(
					"order %d: missing defaultable field(s) %s",
					rec.OrderID, strings.Join(completeness.MissingDefaultable, ", ")))
			}
		}

		if len(completeness.MissingOther) > 0 {
			result.Warnings += len(completeness.MissingOther)
			result.CleaningSummary = append(result.CleaningSummary, fmt.Sprintf(
				"order %d: missing optional field(s) %s",
				rec.OrderID, strings.Join(completeness.MissingOther, ", ")))
		}
	}

	return result, ops
}

// RunTypeValidation validates every record against the declared field
// kinds. It is strictly read-only: repairing a malformed value risks
// silent data corruption, so violations are only reported.
func (c *OrdersCleaner) RunTypeValidation(ctx context.Context) (*model.CleaningResult, error) {
	records, err := c.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	return c.AnalyzeTypes(records), nil
}

// AnalyzeTypes classifies a snapshot for type violations
func (c *OrdersCleaner) AnalyzeTypes(records []model.OrderRecord) *model.CleaningResult {
	result := c.newResult(model.CheckTypes, false, len(records))

	for _, rec := range records {
		for _, typeErr := range rules.ClassifyTypes(rec) {
			result.Errors++
			result.CleaningSummary = append(result.CleaningSummary,
				fmt.Sprintf("order %d: %s", rec.OrderID, typeErr.String()))
		}
	}

	return c.finalize(result)
}

// IdentityKey returns the configured duplicate-grouping fields
func (c *OrdersCleaner) IdentityKey() []string {
	key := make([]string, len(c.identityKey))
	copy(key, c.identityKey)
	return key
}

func (c *OrdersCleaner) newResult(check model.CheckKind, remediated bool, total int) *model.CleaningResult {
	return &model.CleaningResult{
		PassID:       uuid.New().String(),
		Check:        check,
		Remediated:   remediated,
		TotalRecords: total,
		StartedAt:    time.Now().UTC(),
	}
}

func (c *OrdersCleaner) finalize(result *model.CleaningResult) *model.CleaningResult {
	result.Duration = time.Since(result.StartedAt)
	c.logger.Debug("Completed cleaning pass",
		zap.String("passID", result.PassID),
		zap.String("check", string(result.Check)),
		zap.Bool("remediated", result.Remediated),
		zap.Int("totalRecords", result.TotalRecords),
		zap.Int("cleanedRecords", result.CleanedRecords),
		zap.Int("errors", result.Errors),
		zap.Int("warnings", result.Warnings))
	return result
}

// identityKeyLabel renders a group's identity key for summaries
func (c *OrdersCleaner) identityKeyLabel(rec model.OrderRecord) string {
	parts := make([]string, 0, len(c.identityKey))
	for _, field := range c.identityKey {
		value := "?"
		if key, ok := rules.IdentityKey(rec, []string{field}); ok {
			value = key
		}
		parts = append(parts, fmt.Sprintf("%s=%s", field, value))
	}
	return strings.Join(parts, ", ")
}
