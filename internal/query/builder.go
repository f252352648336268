package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Builder accumulates clauses for a single-table statement and renders them
// to positional-arg SQL for pgx. It never executes anything itself.
//
// Raw fragments (WhereRaw, join conditions) use `?` placeholders; they are
// rewritten to `$n` at render time so fragments can be written without
// knowing their final argument position.
type Builder struct {
	table   string
	selects []string
	joins   []string
	wheres  []whereClause
	orders  []Order
	limit   *int
	offset  *int
}

type whereClause struct {
	// Either column (equality against a single arg) or raw with embedded `?`.
	column string
	raw    string
	args   []any
}

// Order is one sort criterion; earlier entries take priority.
type Order struct {
	Column    string
	Ascending bool
}

func New(table string) *Builder {
	return &Builder{table: table}
}

func (b *Builder) Table() string {
	return b.table
}

// Select replaces the select list. Entries are trusted expressions supplied
// by resource configuration, never request input.
func (b *Builder) Select(exprs ...string) *Builder {
	b.selects = exprs
	return b
}

// Where adds an equality constraint on a column.
func (b *Builder) Where(column string, value any) *Builder {
	b.wheres = append(b.wheres, whereClause{column: column, args: []any{value}})
	return b
}

// WhereRaw adds a raw condition with `?` placeholders for its args.
func (b *Builder) WhereRaw(cond string, args ...any) *Builder {
	b.wheres = append(b.wheres, whereClause{raw: cond, args: args})
	return b
}

func (b *Builder) Join(table, on string) *Builder {
	b.joins = append(b.joins, "JOIN "+table+" ON "+on)
	return b
}

func (b *Builder) LeftJoin(table, on string) *Builder {
	b.joins = append(b.joins, "LEFT JOIN "+table+" ON "+on)
	return b
}

func (b *Builder) OrderBy(column string, ascending bool) *Builder {
	b.orders = append(b.orders, Order{Column: column, Ascending: ascending})
	return b
}

func (b *Builder) Limit(n int) *Builder {
	b.limit = &n
	return b
}

func (b *Builder) Offset(n int) *Builder {
	b.offset = &n
	return b
}

// Modify applies fn to the builder when fn is non-nil. Callers hand the
// builder to resource modifiers through this hook.
func (b *Builder) Modify(fn func(*Builder) *Builder) *Builder {
	if fn == nil {
		return b
	}
	return fn(b)
}

// SelectSQL renders the accumulated clauses as a SELECT statement.
func (b *Builder) SelectSQL() (string, []any) {
	var sb strings.Builder
	var args []any

	sb.WriteString("SELECT ")

	if len(b.selects) == 0 {
		sb.WriteString(b.table + ".*")
	} else {
		sb.WriteString(strings.Join(b.selects, ", "))
	}

	sb.WriteString(" FROM " + b.table)

	for _, j := range b.joins {
		sb.WriteString(" " + j)
	}

	args = b.renderWheres(&sb, args)

	if len(b.orders) > 0 {
		parts := make([]string, 0, len(b.orders))

		for _, o := range b.orders {
			dir := "ASC"
			if !o.Ascending {
				dir = "DESC"
			}
			parts = append(parts, o.Column+" "+dir)
		}

		sb.WriteString(" ORDER BY " + strings.Join(parts, ", "))
	}

	if b.limit != nil {
		args = append(args, *b.limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}

	if b.offset != nil {
		args = append(args, *b.offset)
		sb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))
	}

	return sb.String(), args
}

// InsertSQL renders an INSERT from a payload map, returning the given column.
// Payload keys come from request bodies, so they are always quoted; a key
// that is not a real column surfaces as an undefined-column error from the
// store rather than injected SQL.
func (b *Builder) InsertSQL(payload map[string]any, returning string) (string, []any) {
	keys := sortedKeys(payload)

	cols := make([]string, 0, len(keys))
	marks := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))

	for i, k := range keys {
		cols = append(cols, quoteIdent(k))
		marks = append(marks, fmt.Sprintf("$%d", i+1))
		args = append(args, payload[k])
	}

	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		b.table,
		strings.Join(cols, ", "),
		strings.Join(marks, ", "),
		quoteIdent(returning),
	)

	return sql, args
}

// UpdateSQL renders an UPDATE ... SET from a payload map plus the
// accumulated where clauses.
func (b *Builder) UpdateSQL(payload map[string]any) (string, []any) {
	keys := sortedKeys(payload)

	sets := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))

	for i, k := range keys {
		sets = append(sets, fmt.Sprintf("%s = $%d", quoteIdent(k), i+1))
		args = append(args, payload[k])
	}

	var sb strings.Builder
	sb.WriteString("UPDATE " + b.table + " SET " + strings.Join(sets, ", "))

	args = b.renderWheres(&sb, args)

	return sb.String(), args
}

// DeleteSQL renders a DELETE with the accumulated where clauses.
func (b *Builder) DeleteSQL() (string, []any) {
	var sb strings.Builder
	var args []any

	sb.WriteString("DELETE FROM " + b.table)
	args = b.renderWheres(&sb, args)

	return sb.String(), args
}

func (b *Builder) renderWheres(sb *strings.Builder, args []any) []any {
	if len(b.wheres) == 0 {
		return args
	}

	conds := make([]string, 0, len(b.wheres))

	for _, w := range b.wheres {
		if w.raw != "" {
			cond := w.raw

			for _, a := range w.args {
				args = append(args, a)
				cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(args)), 1)
			}

			conds = append(conds, "("+cond+")")
			continue
		}

		args = append(args, w.args[0])
		conds = append(conds, fmt.Sprintf("%s = $%d", w.column, len(args)))
	}

	sb.WriteString(" WHERE " + strings.Join(conds, " AND "))

	return args
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
