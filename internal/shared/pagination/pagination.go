// Package pagination holds the page math shared by list endpoints.
package pagination

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// PageCount returns ceil(total/limit), and 0 for an empty or degenerate input.
func PageCount(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Offset converts a 1-based page to a row offset.
func Offset(page, limit int) int {
	return (page - 1) * limit
}
