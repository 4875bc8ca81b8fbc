// Package query assembles parameterized Spanner SELECT statements. Builders
// are immutable; every method returns a copy.
package query

import (
	"fmt"
	"slices"
	"strings"

	"cloud.google.com/go/spanner"
)

type Direction int

const (
	Asc Direction = iota
	Desc
)

type order struct {
	column string
	dir    Direction
}

type Builder struct {
	table   string
	columns []string
	where   []Condition
	orders  []order
	limit   int64
	offset  int64
}

func From(table string) *Builder {
	return &Builder{table: table}
}

// Select appends columns. Without any, the statement selects *.
func (b *Builder) Select(columns ...string) *Builder {
	c := b.clone()
	c.columns = append(c.columns, columns...)
	return c
}

// Where adds a predicate; predicates are joined with AND.
func (b *Builder) Where(cond Condition) *Builder {
	c := b.clone()
	c.where = append(c.where, cond)
	return c
}

// OrderBy adds a sort key after any existing ones.
func (b *Builder) OrderBy(column string, dir Direction) *Builder {
	c := b.clone()
	c.orders = append(c.orders, order{column: column, dir: dir})
	return c
}

func (b *Builder) Limit(n int64) *Builder {
	c := b.clone()
	c.limit = n
	return c
}

func (b *Builder) Offset(n int64) *Builder {
	c := b.clone()
	c.offset = n
	return c
}

// Count keeps the table and predicates and drops columns, ordering and
// pagination.
func (b *Builder) Count() *Builder {
	c := b.clone()
	c.columns = []string{"COUNT(*)"}
	c.orders = nil
	c.limit, c.offset = 0, 0
	return c
}

func (b *Builder) Build() spanner.Statement {
	var sql strings.Builder
	params := make(map[string]any)

	sql.WriteString("SELECT ")
	if len(b.columns) == 0 {
		sql.WriteString("*")
	} else {
		sql.WriteString(strings.Join(b.columns, ", "))
	}
	sql.WriteString(" FROM ")
	sql.WriteString(b.table)

	if len(b.where) > 0 {
		parts := make([]string, 0, len(b.where))
		for _, cond := range b.where {
			fragment, bound := cond.SQL(len(params))
			parts = append(parts, fragment)
			for k, v := range bound {
				params[k] = v
			}
		}
		sql.WriteString(" WHERE ")
		sql.WriteString(strings.Join(parts, " AND "))
	}

	if len(b.orders) > 0 {
		keys := make([]string, 0, len(b.orders))
		for _, o := range b.orders {
			dir := "ASC"
			if o.dir == Desc {
				dir = "DESC"
			}
			keys = append(keys, o.column+" "+dir)
		}
		sql.WriteString(" ORDER BY ")
		sql.WriteString(strings.Join(keys, ", "))
	}

	if b.limit > 0 {
		sql.WriteString(" LIMIT @limit")
		params["limit"] = b.limit
	}
	if b.offset > 0 {
		sql.WriteString(" OFFSET @offset")
		params["offset"] = b.offset
	}

	return spanner.Statement{SQL: sql.String(), Params: params}
}

func (b *Builder) clone() *Builder {
	c := *b
	c.columns = slices.Clone(b.columns)
	c.where = slices.Clone(b.where)
	c.orders = slices.Clone(b.orders)
	return &c
}

func (b *Builder) String() string {
	stmt := b.Build()
	return fmt.Sprintf("SQL: %s\nParams: %v", stmt.SQL, stmt.Params)
}
