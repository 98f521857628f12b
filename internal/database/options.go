package database

import (
	"gorm.io/gorm"

	"github.com/helixml/moviesearch/domain/repository"
)

// ApplyOptions adds the WHERE, ORDER BY and LIMIT clauses described by
// options to a GORM session.
func ApplyOptions(db *gorm.DB, options ...repository.Option) *gorm.DB {
	q := repository.Build(options...)
	db = Where(db, "", q)
	for _, o := range q.Orders() {
		db = db.Order(o.Clause())
	}
	if q.Limit() > 0 {
		db = db.Limit(q.Limit())
	}
	return db
}

// ApplyConditions adds only the WHERE clauses, for COUNT queries.
func ApplyConditions(db *gorm.DB, options ...repository.Option) *gorm.DB {
	return Where(db, "", repository.Build(options...))
}

// Where adds the conditions of q, qualified with alias when the query
// joins several tables.
func Where(db *gorm.DB, alias string, q repository.Query) *gorm.DB {
	for _, c := range q.Conditions() {
		db = db.Where(c.Clause(alias), c.Value())
	}
	return db
}
