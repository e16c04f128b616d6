// pkg/store/store.go
package store

import (
	"context"
	"fmt"

	"github.com/storeops/order-quality/pkg/model"
)

// OpKind identifies a logical write operation on the orders relation
type OpKind string

const (
	// OpRewriteReferences repoints every order_items reference from one
	// order to another. Must precede the delete of the old order.
	OpRewriteReferences OpKind = "rewrite_references"
	// OpDeleteOrder removes one order row
	OpDeleteOrder OpKind = "delete_order"
	// OpFillDefaults zero-fills the named numeric fields of one order,
	// touching only fields that are currently null
	OpFillDefaults OpKind = "fill_defaults"
)

// WriteOp is one logical write operation. The engine describes
// remediation as a sequence of these; the store translates them to SQL
// inside a single transaction and never hands a live connection back.
type WriteOp struct {
	Kind       OpKind
	OrderID    int64
	NewOrderID int64    // target order for OpRewriteReferences
	Fields     []string // declared defaultable fields for OpFillDefaults
}

// RewriteReferences builds an op repointing references from one order id
// to another
func RewriteReferences(from, to int64) WriteOp {
	return WriteOp{Kind: OpRewriteReferences, OrderID: from, NewOrderID: to}
}

// DeleteOrder builds an op deleting one order row
func DeleteOrder(orderID int64) WriteOp {
	return WriteOp{Kind: OpDeleteOrder, OrderID: orderID}
}

// FillDefaults builds an op zero-filling the named null fields of one
// order
func FillDefaults(orderID int64, fields []string) WriteOp {
	return WriteOp{Kind: OpFillDefaults, OrderID: orderID, Fields: fields}
}

func (op WriteOp) String() string {
	switch op.Kind {
	case OpRewriteReferences:
		return fmt.Sprintf("rewrite references %d -> %d", op.OrderID, op.NewOrderID)
	case OpDeleteOrder:
		return fmt.Sprintf("delete order %d", op.OrderID)
	case OpFillDefaults:
		return fmt.Sprintf("fill defaults on order %d: %v", op.OrderID, op.Fields)
	default:
		return fmt.Sprintf("unknown op %q", string(op.Kind))
	}
}

// OrderStore is the record accessor for the orders relation. Reads
// return detached snapshots; writes happen only through
// ExecuteInTransaction as one atomic unit.
type OrderStore interface {
	// FetchAll returns every order row as a consistent snapshot
	FetchAll(ctx context.Context) ([]model.OrderRecord, error)

	// FetchReferences returns every order_items reference row
	FetchReferences(ctx context.Context) ([]model.OrderReference, error)

	// ExecuteInTransaction applies the given write operations atomically.
	// Either all operations commit or none do. Failures are reported as
	// *StorageError, or *ConflictError when a concurrent pass collided.
	ExecuteInTransaction(ctx context.Context, ops []WriteOp) error
}
