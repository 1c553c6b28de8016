// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package query assembles SQL text from declarative fragments.

The [Builder] never executes anything and never touches the network. Every
method appends a fragment to an internal buffer and returns the same builder,
so calls can be chained. [Builder.Build] returns the literal concatenation of
the fragments in the order they were appended.

# Security

The builder performs NO escaping and NO validation of anything embedded in
fragment text. Table names, column lists and the strings handed to
[Builder.Condition] are copied verbatim. Callers must only pass trusted
constants there. Every value that originates from a request must go through
[Builder.Bind], which records the value as a bound argument and returns the
positional placeholder ($1, $2, ...) to embed instead.

	b := query.New()
	b.From("users", "id, name").Where().Condition("email = " + b.Bind(email))
	rows, err := pool.Query(ctx, b.Build(), b.Args()...)
*/
package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Builder is a single-use SQL fragment accumulator.
//
// It is not safe for concurrent use and is meant to live for exactly one
// query build.
type Builder struct {
	sql  strings.Builder
	args []any
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{}
}

// # Statement heads

// Raw appends text exactly as given.
func (b *Builder) Raw(fragment string) *Builder {
	b.sql.WriteString(fragment)
	return b
}

// From appends "SELECT <columns> FROM <table>".
func (b *Builder) From(table, columns string) *Builder {
	b.sql.WriteString("SELECT " + columns + " FROM " + table)
	return b
}

// FromNested appends "SELECT <columns> FROM (<subquery>) AS <alias>".
//
// Arguments bound on the subquery are carried over, and its placeholders are
// renumbered to follow the arguments already bound on b.
func (b *Builder) FromNested(subquery *Builder, columns, alias string) *Builder {
	inner := renumber(subquery.Build(), len(b.args))
	b.args = append(b.args, subquery.args...)
	b.sql.WriteString("SELECT " + columns + " FROM (" + inner + ") AS " + alias)
	return b
}

// Insert appends "INSERT INTO <table> (<columns>) VALUES (<values>)".
func (b *Builder) Insert(table, columns, values string) *Builder {
	b.sql.WriteString("INSERT INTO " + table + " (" + columns + ") VALUES (" + values + ")")
	return b
}

// Update appends "UPDATE <table> SET <assignments>".
func (b *Builder) Update(table, assignments string) *Builder {
	b.sql.WriteString("UPDATE " + table + " SET " + assignments)
	return b
}

// Delete appends "DELETE FROM <table>".
func (b *Builder) Delete(table string) *Builder {
	b.sql.WriteString("DELETE FROM " + table)
	return b
}

// # Predicates

// Where appends " WHERE ".
func (b *Builder) Where() *Builder {
	b.sql.WriteString(" WHERE ")
	return b
}

// Condition appends a predicate verbatim.
func (b *Builder) Condition(expr string) *Builder {
	b.sql.WriteString(expr)
	return b
}

// And appends " AND ".
func (b *Builder) And() *Builder {
	b.sql.WriteString(" AND ")
	return b
}

// Or appends " OR ".
func (b *Builder) Or() *Builder {
	b.sql.WriteString(" OR ")
	return b
}

// AndCondition appends "(<left> AND <right>)".
func (b *Builder) AndCondition(left, right string) *Builder {
	b.sql.WriteString("(" + left + " AND " + right + ")")
	return b
}

// OrCondition appends "(<left> OR <right>)".
func (b *Builder) OrCondition(left, right string) *Builder {
	b.sql.WriteString("(" + left + " OR " + right + ")")
	return b
}

// InCondition appends "<column> IN (<values>)".
func (b *Builder) InCondition(column, values string) *Builder {
	b.sql.WriteString(column + " IN (" + values + ")")
	return b
}

// # Clauses

// Join appends " <kind> JOIN <table> ON <on>".
func (b *Builder) Join(kind, table, on string) *Builder {
	b.sql.WriteString(" " + kind + " JOIN " + table + " ON " + on)
	return b
}

// GroupBy appends " GROUP BY <columns>".
func (b *Builder) GroupBy(columns string) *Builder {
	b.sql.WriteString(" GROUP BY " + columns)
	return b
}

// OrderBy appends " ORDER BY <columns> <direction>".
//
// Calling it twice produces two ORDER BY keywords. Use [Builder.ThenBy] for
// secondary sort keys.
func (b *Builder) OrderBy(columns, direction string) *Builder {
	b.sql.WriteString(" ORDER BY " + columns + " " + direction)
	return b
}

// ThenBy appends ", <column> <direction>" after a previous [Builder.OrderBy].
func (b *Builder) ThenBy(column, direction string) *Builder {
	b.sql.WriteString(", " + column + " " + direction)
	return b
}

// Limit appends " LIMIT <n>".
func (b *Builder) Limit(n int) *Builder {
	b.sql.WriteString(" LIMIT " + strconv.Itoa(n))
	return b
}

// Offset appends " OFFSET <n>".
func (b *Builder) Offset(n int) *Builder {
	b.sql.WriteString(" OFFSET " + strconv.Itoa(n))
	return b
}

// Returning appends " RETURNING <columns>".
func (b *Builder) Returning(columns string) *Builder {
	b.sql.WriteString(" RETURNING " + columns)
	return b
}

// # Bound arguments

// Bind records value as the next positional argument and returns its
// placeholder. The value itself never appears in the SQL text.
func (b *Builder) Bind(value any) string {
	b.args = append(b.args, value)
	return "$" + strconv.Itoa(len(b.args))
}

// BindList binds every value and returns the comma separated placeholders,
// ready for [Builder.InCondition].
func (b *Builder) BindList(values ...any) string {
	placeholders := make([]string, 0, len(values))
	for _, value := range values {
		placeholders = append(placeholders, b.Bind(value))
	}
	return strings.Join(placeholders, ", ")
}

// # Output

// Build returns the accumulated SQL text. An untouched builder yields "".
func (b *Builder) Build() string {
	return b.sql.String()
}

// Args returns the bound arguments in placeholder order.
func (b *Builder) Args() []any {
	return b.args
}

// String implements [fmt.Stringer].
func (b *Builder) String() string {
	return b.Build()
}

// renumber shifts every $n placeholder in sql by offset.
func renumber(sql string, offset int) string {
	if offset == 0 {
		return sql
	}

	var out strings.Builder
	for i := 0; i < len(sql); i++ {
		if sql[i] != '$' {
			out.WriteByte(sql[i])
			continue
		}

		j := i + 1
		for j < len(sql) && sql[j] >= '0' && sql[j] <= '9' {
			j++
		}
		if j == i+1 {
			out.WriteByte('$')
			continue
		}

		n, _ := strconv.Atoi(sql[i+1 : j])
		fmt.Fprintf(&out, "$%d", n+offset)
		i = j - 1
	}
	return out.String()
}
