// pkg/cleaner/verifier.go
package cleaner

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/storeops/order-quality/pkg/rules"
	"github.com/storeops/order-quality/pkg/store"
)

// VerificationReport contains the results of a post-remediation check
type VerificationReport struct {
	VerifiedAt         time.Time `json:"verified_at"`
	OrderCount         int       `json:"order_count"`
	ReferenceCount     int       `json:"reference_count"`
	DanglingReferences []int64   `json:"dangling_references"` // item_ids pointing at missing orders
	RemainingGroups    int       `json:"remaining_groups"`    // identity-key groups still duplicated
	Clean              bool      `json:"clean"`
}

// Verifier checks the orders relation after a duplicate remediation
// pass: every reference must resolve and no duplicate group may remain.
type Verifier struct {
	store       store.OrderStore
	identityKey []string
	logger      *zap.Logger
}

// NewVerifier creates a new verifier
func NewVerifier(s store.OrderStore, identityKey []string, logger *zap.Logger) (*Verifier, error) {
	if s == nil {
		return nil, errors.New("order store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if len(identityKey) == 0 {
		identityKey = rules.DefaultIdentityKey
	}

	return &Verifier{
		store:       s,
		identityKey: identityKey,
		logger:      logger,
	}, nil
}

// VerifyRemediation fetches a fresh snapshot and reports any dangling
// references or remaining duplicate groups. Read-only.
func (v *Verifier) VerifyRemediation(ctx context.Context) (*VerificationReport, error) {
	records, err := v.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	refs, err := v.store.FetchReferences(ctx)
	if err != nil {
		return nil, err
	}

	report := &VerificationReport{
		VerifiedAt:     time.Now().UTC(),
		OrderCount:     len(records),
		ReferenceCount: len(refs),
	}

	known := make(map[int64]bool, len(records))
	for _, rec := range records {
		known[rec.OrderID] = true
	}
	for _, ref := range refs {
		if !known[ref.OrderID] {
			report.DanglingReferences = append(report.DanglingReferences, ref.ItemID)
		}
	}

	for _, group := range rules.GroupByIdentityKey(records, v.identityKey) {
		if len(group) > 1 {
			report.RemainingGroups++
		}
	}

	report.Clean = len(report.DanglingReferences) == 0 && report.RemainingGroups == 0

	if report.Clean {
		v.logger.Info("Remediation verification passed",
			zap.Int("orders", report.OrderCount),
			zap.Int("references", report.ReferenceCount))
	} else {
		v.logger.Warn("Remediation verification found issues",
			zap.Int("danglingReferences", len(report.DanglingReferences)),
			zap.Int("remainingGroups", report.RemainingGroups))
	}

	return report, nil
}
