// pkg/model/fields.go
package model

import "strings"

// FieldKind describes the logical type a column must validate against
type FieldKind string

const (
	KindText    FieldKind = "text"
	KindDate    FieldKind = "date"
	KindInteger FieldKind = "integer"
	KindDecimal FieldKind = "decimal"
	KindStatus  FieldKind = "status"
)

// Field is the declared quality contract for one column of the orders
// relation. Critical fields carry identity and must never be fabricated;
// Defaultable fields may be zero-filled during remediation.
type Field struct {
	Name        string    // Column name
	Kind        FieldKind // Logical type to validate against
	Scale       int32     // Max fractional digits for decimal fields
	Critical    bool      // Missing value is an error, never remediated
	Defaultable bool      // Missing value may be zero-filled
}

// orderFields declares the quality contract for every column of the
// orders relation except the primary key. Order matters: findings are
// reported in this order.
var orderFields = []Field{
	{Name: "status", Kind: KindStatus},
	{Name: "customer_name", Kind: KindText, Critical: true},
	{Name: "order_date", Kind: KindDate, Critical: true},
	{Name: "quantity", Kind: KindInteger, Defaultable: true},
	{Name: "subtotal_amount", Kind: KindDecimal, Scale: 2, Defaultable: true},
	{Name: "tax_rate", Kind: KindDecimal, Scale: 4, Defaultable: true},
	{Name: "shipping_cost", Kind: KindDecimal, Scale: 2, Defaultable: true},
	{Name: "category", Kind: KindText},
	{Name: "subcategory", Kind: KindText},
}

// OrderFields returns the declared field contract for the orders relation
func OrderFields() []Field {
	fields := make([]Field, len(orderFields))
	copy(fields, orderFields)
	return fields
}

// FieldByName returns a copy of the declared field with the given name
// (case-insensitive). Returns nil if the column is not declared.
func FieldByName(name string) *Field {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, f := range orderFields {
		if f.Name == normalized {
			field := f
			return &field
		}
	}
	return nil
}
