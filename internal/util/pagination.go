package util

import "math"

// DefaultPageSize matches the storefront's items-per-page.
const DefaultPageSize = 4

const maxPageSize = 100

// MaxPage keeps (page-1)*size within int for any accepted size.
const MaxPage = math.MaxInt / maxPageSize

// Calculate normalizes page (1-based) and size and returns the row offset.
func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if size <= 0 || size > maxPageSize {
		size = DefaultPageSize
	}
	from = (page - 1) * size
	return from, size
}

// Pages is the number of pages needed for total rows.
func Pages(total int64, size int) int64 {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + int64(size) - 1) / int64(size)
}
