// pkg/store/postgres_test.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var orderColumns = []string{
	"order_id", "status", "customer_name", "order_date", "quantity",
	"subtotal_amount", "tax_rate", "shipping_cost", "category", "subcategory",
}

// newMockStore creates a PostgresStore backed by a mocked SQL connection
func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	s, err := NewPostgresStore(sqlx.NewDb(mockDB, "postgres"), zap.NewNop())
	require.NoError(t, err)

	return s, mock, mockDB
}

func TestPostgresStore_FetchAll(t *testing.T) {
	t.Run("scans rows including nulls", func(t *testing.T) {
		s, mock, mockDB := newMockStore(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows(orderColumns).
			AddRow(1, "pending", "Alice", "2024-03-15", 2, "19.99", "0.0825", "5.00", "Electronics", "Audio").
			AddRow(5, nil, nil, nil, nil, nil, nil, nil, nil, nil)

		mock.ExpectQuery(`SELECT order_id, status, customer_name`).
			WillReturnRows(rows)

		records, err := s.FetchAll(context.Background())

		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, int64(1), records[0].OrderID)
		assert.Equal(t, "Alice", records[0].CustomerName.String)
		assert.Equal(t, "19.99", records[0].SubtotalAmount.Decimal.String())
		assert.Equal(t, int64(5), records[1].OrderID)
		assert.False(t, records[1].CustomerName.Valid)
		assert.False(t, records[1].Quantity.Valid)
		assert.False(t, records[1].TaxRate.Valid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps driver failures as storage errors", func(t *testing.T) {
		s, mock, mockDB := newMockStore(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT order_id`).
			WillReturnError(errors.New("connection refused"))

		records, err := s.FetchAll(context.Background())

		assert.Nil(t, records)
		var storageErr *StorageError
		require.ErrorAs(t, err, &storageErr)
		assert.Equal(t, "fetch orders", storageErr.Op)
	})
}

func TestPostgresStore_FetchReferences(t *testing.T) {
	s, mock, mockDB := newMockStore(t)
	defer mockDB.Close()

	rows := sqlmock.NewRows([]string{"item_id", "order_id"}).
		AddRow(100, 1).
		AddRow(101, 5)

	mock.ExpectQuery(`SELECT item_id, order_id`).WillReturnRows(rows)

	refs, err := s.FetchReferences(context.Background())

	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, int64(100), refs[0].ItemID)
	assert.Equal(t, int64(5), refs[1].OrderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ExecuteInTransaction(t *testing.T) {
	t.Run("commits rewrite, delete and fill as one unit", func(t *testing.T) {
		s, mock, mockDB := newMockStore(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE order_items SET order_id = \$1 WHERE order_id = \$2`).
			WithArgs(int64(1), int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM orders WHERE order_id = \$1`).
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE orders SET quantity = 0 WHERE order_id = \$1 AND quantity IS NULL`).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := s.ExecuteInTransaction(context.Background(), []WriteOp{
			RewriteReferences(5, 1),
			DeleteOrder(5),
			FillDefaults(7, []string{"quantity"}),
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		s, mock, mockDB := newMockStore(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE order_items`).
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := s.ExecuteInTransaction(context.Background(), []WriteOp{
			RewriteReferences(5, 1),
			DeleteOrder(5),
		})

		var storageErr *StorageError
		require.ErrorAs(t, err, &storageErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps serialization failures to conflicts", func(t *testing.T) {
		s, mock, mockDB := newMockStore(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM orders`).
			WillReturnError(&pq.Error{Code: "40001"})
		mock.ExpectRollback()

		err := s.ExecuteInTransaction(context.Background(), []WriteOp{
			DeleteOrder(5),
		})

		assert.True(t, IsConflict(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects fills on non-defaultable fields", func(t *testing.T) {
		s, mock, mockDB := newMockStore(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := s.ExecuteInTransaction(context.Background(), []WriteOp{
			FillDefaults(7, []string{"customer_name"}),
		})

		var storageErr *StorageError
		require.ErrorAs(t, err, &storageErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no transaction for an empty op list", func(t *testing.T) {
		s, mock, mockDB := newMockStore(t)
		defer mockDB.Close()

		err := s.ExecuteInTransaction(context.Background(), nil)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIsConflict(t *testing.T) {
	assert.True(t, IsConflict(&ConflictError{Op: "commit"}))
	assert.False(t, IsConflict(&StorageError{Op: "fetch"}))
	assert.False(t, IsConflict(nil))
}
