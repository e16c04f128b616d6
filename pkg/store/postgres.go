// pkg/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/storeops/order-quality/pkg/model"
)

const (
	ordersTable     = "orders"
	referencesTable = "order_items"

	defaultQueryTimeout = 30 * time.Second
	defaultTxTimeout    = 60 * time.Second
)

// PostgresStore implements OrderStore against PostgreSQL
type PostgresStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPostgresStore creates a PostgresStore
func NewPostgresStore(db *sqlx.DB, logger *zap.Logger) (*PostgresStore, error) {
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &PostgresStore{
		db:     db,
		logger: logger,
	}, nil
}

// FetchAll returns every order row ordered by primary key
func (s *PostgresStore) FetchAll(ctx context.Context) ([]model.OrderRecord, error) {
	queryCtx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT order_id, status, customer_name, order_date::text AS order_date,
		       quantity, subtotal_amount, tax_rate, shipping_cost,
		       category, subcategory
		FROM %s
		ORDER BY order_id`, ordersTable)

	var records []model.OrderRecord
	if err := s.db.SelectContext(queryCtx, &records, query); err != nil {
		return nil, classifyError("fetch orders", err)
	}

	s.logger.Debug("Fetched order snapshot", zap.Int("count", len(records)))
	return records, nil
}

// FetchReferences returns every order_items reference row
func (s *PostgresStore) FetchReferences(ctx context.Context) ([]model.OrderReference, error) {
	queryCtx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT item_id, order_id
		FROM %s
		ORDER BY item_id`, referencesTable)

	var refs []model.OrderReference
	if err := s.db.SelectContext(queryCtx, &refs, query); err != nil {
		return nil, classifyError("fetch references", err)
	}

	return refs, nil
}

// ExecuteInTransaction applies the write operations as one atomic unit.
// The transaction runs serializable so that concurrent remediation
// passes over overlapping rows collide instead of losing updates.
func (s *PostgresStore) ExecuteInTransaction(ctx context.Context, ops []WriteOp) error {
	if len(ops) == 0 {
		return nil
	}

	txCtx, cancel := context.WithTimeout(ctx, defaultTxTimeout)
	defer cancel()

	tx, err := s.db.BeginTxx(txCtx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return classifyError("begin transaction", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.NamedError("cause", err))
			}
		}
	}()

	for _, op := range ops {
		if err = s.applyOp(txCtx, tx, op); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return classifyError("commit transaction", err)
	}

	s.logger.Info("Applied write operations", zap.Int("count", len(ops)))
	return nil
}

// applyOp translates one logical write operation to SQL
func (s *PostgresStore) applyOp(ctx context.Context, tx *sqlx.Tx, op WriteOp) error {
	switch op.Kind {
	case OpRewriteReferences:
		query := fmt.Sprintf(
			"UPDATE %s SET order_id = $1 WHERE order_id = $2", referencesTable)
		if _, err := tx.ExecContext(ctx, query, op.NewOrderID, op.OrderID); err != nil {
			return classifyError(op.String(), err)
		}
		return nil

	case OpDeleteOrder:
		query := fmt.Sprintf(
			"DELETE FROM %s WHERE order_id = $1", ordersTable)
		if _, err := tx.ExecContext(ctx, query, op.OrderID); err != nil {
			return classifyError(op.String(), err)
		}
		return nil

	case OpFillDefaults:
		for _, name := range op.Fields {
			field := model.FieldByName(name)
			if field == nil || !field.Defaultable {
				return &StorageError{
					Op:  op.String(),
					Err: fmt.Errorf("field %q is not defaultable", name),
				}
			}
			// Guarded by IS NULL so re-running a pass never overwrites
			// a value written since the snapshot was taken.
			query := fmt.Sprintf(
				"UPDATE %s SET %s = 0 WHERE order_id = $1 AND %s IS NULL",
				ordersTable, field.Name, field.Name)
			if _, err := tx.ExecContext(ctx, query, op.OrderID); err != nil {
				return classifyError(op.String(), err)
			}
		}
		return nil

	default:
		return &StorageError{
			Op:  "apply operation",
			Err: fmt.Errorf("unknown operation kind %q", string(op.Kind)),
		}
	}
}
