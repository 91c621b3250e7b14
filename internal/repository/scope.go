package repository

import (
	"context"
	"strings"

	"github.com/wanderly/agency-api/internal/auth"
	"gorm.io/gorm"
)

// MaxPageSize is the maximum allowed page size for paginated queries
const MaxPageSize = 200

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// SortConfig holds sorting configuration for list queries
type SortConfig struct {
	Field string
	Order SortOrder
}

// DefaultSortConfig returns a default sort configuration (created_at DESC)
func DefaultSortConfig() SortConfig {
	return SortConfig{
		Field: "createdAt",
		Order: SortOrderDesc,
	}
}

// ParseSortOrder parses a string into SortOrder, defaulting to desc
func ParseSortOrder(s string) SortOrder {
	if strings.ToLower(s) == "asc" {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// BuildOrderClause builds the ORDER BY clause from a whitelist of API field
// names to database columns. Unknown fields fall back to the default column.
func BuildOrderClause(config SortConfig, fieldMap map[string]string, defaultColumn string) string {
	column, ok := fieldMap[config.Field]
	if !ok {
		column = defaultColumn
	}

	order := "DESC"
	if config.Order == SortOrderAsc {
		order = "ASC"
	}

	return column + " " + order
}

// ApplyAgencyFilter scopes a query to the authenticated user's agency.
// Every aggregate carries agency_id; queries without a user context (jobs,
// migrations) are returned unchanged and must filter explicitly.
func ApplyAgencyFilter(ctx context.Context, query *gorm.DB) *gorm.DB {
	agencyID := auth.GetAgencyFilter(ctx)
	if agencyID != nil {
		return query.Where("agency_id = ?", *agencyID)
	}
	return query
}

// ApplyAgencyFilterWithAlias scopes using a table alias, for joined queries
func ApplyAgencyFilterWithAlias(ctx context.Context, query *gorm.DB, tableAlias string) *gorm.DB {
	agencyID := auth.GetAgencyFilter(ctx)
	if agencyID != nil {
		return query.Where(tableAlias+".agency_id = ?", *agencyID)
	}
	return query
}
