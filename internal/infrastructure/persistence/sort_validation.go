package persistence

import (
	"fmt"
	"strings"

	"github.com/parklot/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed
// fields. Returns the defaultField if the input is invalid, empty, or not in
// the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// applySortAndPaginate applies validated ordering and page windowing to a
// query. defaultOrder is used verbatim when the filter names no column.
func applySortAndPaginate(query *gorm.DB, filter shared.Filter, allowedFields map[string]bool, defaultOrder string) *gorm.DB {
	if filter.OrderBy != "" {
		field := ValidateSortField(filter.OrderBy, allowedFields, "created_at")
		query = query.Order(fmt.Sprintf("%s %s", field, ValidateSortOrder(filter.OrderDir)))
	} else {
		query = query.Order(defaultOrder)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}

// SpotSortFields contains allowed sort fields for parking spots
var SpotSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"floor":       true,
	"number":      true,
	"hourly_rate": true,
}

// BookingSortFields contains allowed sort fields for bookings
var BookingSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"start_time": true,
	"end_time":   true,
	"status":     true,
	"amount":     true,
}
