// pkg/model/fields_test.go
package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldByName(t *testing.T) {
	t.Run("finds declared fields case-insensitively", func(t *testing.T) {
		f := FieldByName("  Customer_Name ")
		require.NotNil(t, f)
		assert.Equal(t, "customer_name", f.Name)
		assert.True(t, f.Critical)
	})

	t.Run("returns nil for undeclared columns", func(t *testing.T) {
		assert.Nil(t, FieldByName("order_id"))
		assert.Nil(t, FieldByName("no_such_column"))
	})

	t.Run("mutating the result leaves the contract untouched", func(t *testing.T) {
		f := FieldByName("customer_name")
		require.NotNil(t, f)
		f.Critical = false
		f.Defaultable = true

		again := FieldByName("customer_name")
		require.NotNil(t, again)
		assert.True(t, again.Critical)
		assert.False(t, again.Defaultable)
	})
}

func TestOrderFields(t *testing.T) {
	t.Run("mutating the returned slice leaves the contract untouched", func(t *testing.T) {
		fields := OrderFields()
		require.NotEmpty(t, fields)
		fields[0].Name = "mutated"

		assert.Equal(t, "status", OrderFields()[0].Name)
	})
}
