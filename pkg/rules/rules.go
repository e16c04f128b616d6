// pkg/rules/rules.go
package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/storeops/order-quality/pkg/model"
)

// DefaultIdentityKey is the identity key used when none is configured.
// The demonstrated business rule treats orders with the same customer
// name as duplicates; this should be confirmed before changing it.
var DefaultIdentityKey = []string{"customer_name"}

// DuplicateGroup is the classification of a set of records sharing an
// identity key: one canonical record to keep, the rest to drop.
type DuplicateGroup struct {
	Keep model.OrderRecord
	Drop []model.OrderRecord
}

// ClassifyDuplicates classifies a group of records sharing an identity
// key. The record with the smallest order_id is retained; the remainder
// are drop candidates ordered ascending by order_id. Groups with fewer
// than two records yield no classification.
func ClassifyDuplicates(group []model.OrderRecord) (DuplicateGroup, bool) {
	if len(group) < 2 {
		return DuplicateGroup{}, false
	}

	sorted := make([]model.OrderRecord, len(group))
	copy(sorted, group)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].OrderID < sorted[j].OrderID
	})

	return DuplicateGroup{
		Keep: sorted[0],
		Drop: sorted[1:],
	}, true
}

// IdentityKey derives the identity key of a record from the configured
// key fields. Returns false if any key field is missing: a record
// without its identity cannot participate in duplicate grouping, and
// its absence is the completeness check's finding, not this one's.
func IdentityKey(rec model.OrderRecord, fields []string) (string, bool) {
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		value, ok := fieldText(rec, field)
		if !ok {
			return "", false
		}
		parts = append(parts, strings.ToLower(value))
	}
	return strings.Join(parts, "\x1f"), true
}

// GroupByIdentityKey partitions records by identity key. Records missing
// any key field are excluded from every group.
func GroupByIdentityKey(records []model.OrderRecord, fields []string) map[string][]model.OrderRecord {
	groups := make(map[string][]model.OrderRecord)
	for _, rec := range records {
		key, ok := IdentityKey(rec, fields)
		if !ok {
			continue
		}
		groups[key] = append(groups[key], rec)
	}
	return groups
}

// CompletenessResult classifies the missing fields of one record
type CompletenessResult struct {
	MissingCritical    []string // identity-bearing, never defaulted
	MissingDefaultable []string // numeric, safe to zero-fill
	MissingOther       []string // optional text, reported only
}

// Complete reports whether no field was missing
func (r CompletenessResult) Complete() bool {
	return len(r.MissingCritical) == 0 &&
		len(r.MissingDefaultable) == 0 &&
		len(r.MissingOther) == 0
}

// ClassifyCompleteness checks every declared field of a record for
// presence. A field is missing if null or whitespace-only; numeric
// fields are missing when null.
func ClassifyCompleteness(rec model.OrderRecord) CompletenessResult {
	var result CompletenessResult

	for _, field := range model.OrderFields() {
		if fieldPresent(rec, field) {
			continue
		}
		switch {
		case field.Critical:
			result.MissingCritical = append(result.MissingCritical, field.Name)
		case field.Defaultable:
			result.MissingDefaultable = append(result.MissingDefaultable, field.Name)
		default:
			result.MissingOther = append(result.MissingOther, field.Name)
		}
	}

	return result
}

// TypeError describes one type-rule violation on a record
type TypeError struct {
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Observed string `json:"observed"`
}

func (e TypeError) String() string {
	return fmt.Sprintf("%s: expected %s, got %q", e.Field, e.Expected, e.Observed)
}

// ClassifyTypes validates every present field of a record against its
// declared kind. Missing fields are the completeness check's concern and
// produce no type error here. A record violating several rules is
// reported under each of them.
func ClassifyTypes(rec model.OrderRecord) []TypeError {
	var typeErrors []TypeError

	if status, ok := model.TextValue(rec.Status); ok {
		if !model.ValidStatuses[strings.ToLower(status)] {
			typeErrors = append(typeErrors, TypeError{
				Field:    "status",
				Expected: "one of pending|processing|shipped|delivered|cancelled",
				Observed: status,
			})
		}
	}

	if raw, ok := model.TextValue(rec.OrderDate); ok {
		if _, err := parseDate(raw); err != nil {
			typeErrors = append(typeErrors, TypeError{
				Field:    "order_date",
				Expected: "calendar date",
				Observed: raw,
			})
		}
	}

	if rec.Quantity.Valid && rec.Quantity.Int64 < 0 {
		typeErrors = append(typeErrors, TypeError{
			Field:    "quantity",
			Expected: "non-negative integer",
			Observed: fmt.Sprintf("%d", rec.Quantity.Int64),
		})
	}

	for _, check := range []struct {
		name  string
		value decimal.NullDecimal
		scale int32
	}{
		{"subtotal_amount", rec.SubtotalAmount, 2},
		{"tax_rate", rec.TaxRate, 4},
		{"shipping_cost", rec.ShippingCost, 2},
	} {
		if !check.value.Valid {
			continue
		}
		if err := checkDecimal(check.value.Decimal, check.scale); err != nil {
			typeErrors = append(typeErrors, TypeError{
				Field:    check.name,
				Expected: fmt.Sprintf("non-negative decimal with at most %d fractional digits", check.scale),
				Observed: check.value.Decimal.String(),
			})
		}
	}

	return typeErrors
}

// fieldPresent reports whether a declared field has a value on a record
func fieldPresent(rec model.OrderRecord, field model.Field) bool {
	switch field.Name {
	case "status":
		_, ok := model.TextValue(rec.Status)
		return ok
	case "customer_name":
		_, ok := model.TextValue(rec.CustomerName)
		return ok
	case "order_date":
		_, ok := model.TextValue(rec.OrderDate)
		return ok
	case "quantity":
		return rec.Quantity.Valid
	case "subtotal_amount":
		return rec.SubtotalAmount.Valid
	case "tax_rate":
		return rec.TaxRate.Valid
	case "shipping_cost":
		return rec.ShippingCost.Valid
	case "category":
		_, ok := model.TextValue(rec.Category)
		return ok
	case "subcategory":
		_, ok := model.TextValue(rec.Subcategory)
		return ok
	default:
		return true
	}
}

// fieldText returns the text representation of a field used in identity
// keys. Only text-kind fields participate in identity keys today.
func fieldText(rec model.OrderRecord, name string) (string, bool) {
	switch strings.ToLower(name) {
	case "customer_name":
		return model.TextValue(rec.CustomerName)
	case "category":
		return model.TextValue(rec.Category)
	case "subcategory":
		return model.TextValue(rec.Subcategory)
	case "status":
		return model.TextValue(rec.Status)
	case "order_date":
		return model.TextValue(rec.OrderDate)
	default:
		return "", false
	}
}
