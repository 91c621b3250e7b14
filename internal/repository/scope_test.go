package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSortOrder(t *testing.T) {
	assert.Equal(t, SortOrderAsc, ParseSortOrder("asc"))
	assert.Equal(t, SortOrderAsc, ParseSortOrder("ASC"))
	assert.Equal(t, SortOrderDesc, ParseSortOrder("desc"))
	assert.Equal(t, SortOrderDesc, ParseSortOrder(""))
	assert.Equal(t, SortOrderDesc, ParseSortOrder("sideways"))
}

func TestBuildOrderClause(t *testing.T) {
	fieldMap := map[string]string{
		"createdAt": "created_at",
		"totalCost": "total_cost",
	}

	t.Run("mapped field", func(t *testing.T) {
		clause := BuildOrderClause(SortConfig{Field: "totalCost", Order: SortOrderAsc}, fieldMap, "created_at")
		assert.Equal(t, "total_cost ASC", clause)
	})

	t.Run("unknown field falls back to default column", func(t *testing.T) {
		clause := BuildOrderClause(SortConfig{Field: "evil; DROP TABLE quotes", Order: SortOrderDesc}, fieldMap, "created_at")
		assert.Equal(t, "created_at DESC", clause)
	})

	t.Run("default config", func(t *testing.T) {
		clause := BuildOrderClause(DefaultSortConfig(), fieldMap, "created_at")
		assert.Equal(t, "created_at DESC", clause)
	})
}
