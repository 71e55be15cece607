// Package option applies query modifiers to gorm statements.
package option

import (
	"gorm.io/gorm"

	"github.com/casalunahms/casaluna/pkg/db/pagination"
)

type Option interface {
	Apply(*gorm.DB) *gorm.DB
}

type paginationOption struct {
	page pagination.Pagination
}

func (o paginationOption) Apply(q *gorm.DB) *gorm.DB {
	return q.Limit(o.page.Limit()).Offset(o.page.Offset())
}

func ApplyPagination(page pagination.Pagination) Option {
	return paginationOption{page: page}
}
