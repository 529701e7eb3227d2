package option

import (
	"fmt"
	"strings"
	"time"

	"github.com/inkhaus/studio/pkg/db/pagination"
	"gorm.io/gorm"
)

// QueryOption mutates a gorm statement before execution.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type optionFunc func(db *gorm.DB) *gorm.DB

func (f optionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// ApplyPagination applies offset pagination to the statement.
func ApplyPagination(p pagination.Pagination) QueryOption {
	p = p.Normalize()
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.Limit)
	})
}

// QuerySortBy describes a requested ordering with an allowlist of sortable
// columns. Requests outside the allowlist fall back to the default.
type QuerySortBy struct {
	Field   string
	Desc    bool
	Allow   map[string]bool
	Default string
}

// WithSortBy applies ordering to the statement.
func WithSortBy(sort QuerySortBy) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		field := strings.TrimSpace(sort.Field)
		if field == "" || (sort.Allow != nil && !sort.Allow[field]) {
			field = sort.Default
		}
		if field == "" {
			return db
		}
		direction := "asc"
		if sort.Desc {
			direction = "desc"
		}
		return db.Order(fmt.Sprintf("%s %s", field, direction))
	})
}

// WithTimeRange bounds a timestamp column; nil endpoints are open.
func WithTimeRange(column string, from, to *time.Time) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if from != nil {
			db = db.Where(fmt.Sprintf("%s >= ?", column), *from)
		}
		if to != nil {
			db = db.Where(fmt.Sprintf("%s <= ?", column), *to)
		}
		return db
	})
}

// WithEquals constrains a column to an exact value. Unlike struct
// conditions this keeps zero values (false, 0, "") in the query.
func WithEquals(column string, value any) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(fmt.Sprintf("%s = ?", column), value)
	})
}

// WithIn constrains a column to a value set; empty sets are a no-op.
func WithIn(column string, values []string) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if len(values) == 0 {
			return db
		}
		return db.Where(fmt.Sprintf("%s IN ?", column), values)
	})
}
