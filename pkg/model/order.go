// pkg/model/order.go
package model

import (
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"
)

// Order statuses allowed in the orders table
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// ValidStatuses is the fixed set of allowed order statuses
var ValidStatuses = map[string]bool{
	StatusPending:    true,
	StatusProcessing: true,
	StatusShipped:    true,
	StatusDelivered:  true,
	StatusCancelled:  true,
}

// OrderRecord is one row of the orders relation as stored, before any
// quality rules have been applied. Nullable columns keep their raw
// representation so the rule set can distinguish missing from malformed.
type OrderRecord struct {
	OrderID        int64               `db:"order_id" json:"order_id"`
	Status         sql.NullString      `db:"status" json:"status"`
	CustomerName   sql.NullString      `db:"customer_name" json:"customer_name"`
	OrderDate      sql.NullString      `db:"order_date" json:"order_date"`
	Quantity       sql.NullInt64       `db:"quantity" json:"quantity"`
	SubtotalAmount decimal.NullDecimal `db:"subtotal_amount" json:"subtotal_amount"`
	TaxRate        decimal.NullDecimal `db:"tax_rate" json:"tax_rate"`
	ShippingCost   decimal.NullDecimal `db:"shipping_cost" json:"shipping_cost"`
	Category       sql.NullString      `db:"category" json:"category"`
	Subcategory    sql.NullString      `db:"subcategory" json:"subcategory"`
}

// OrderReference is a row of the order_items relation that points at an
// order. Only the reference itself matters to the cleaning engine.
type OrderReference struct {
	ItemID  int64 `db:"item_id" json:"item_id"`
	OrderID int64 `db:"order_id" json:"order_id"`
}

// TextValue returns the trimmed value of a nullable text column and
// whether it is present. Whitespace-only values count as missing.
func TextValue(v sql.NullString) (string, bool) {
	if !v.Valid {
		return "", false
	}
	trimmed := strings.TrimSpace(v.String)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}
