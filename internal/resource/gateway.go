package resource

import (
	"context"
	"fmt"
	"strings"

	"github.com/stockhubapp/stockhub/internal/query"
)

// Row is a schema-less table row. The engine has no compile-time schema;
// column names come from resource configuration and the store itself.
type Row = map[string]any

// OrgColumn is the tenant ownership column every scoped table carries.
const OrgColumn = "organization_id"

// Runner executes rendered SQL. The gateway never touches a connection
// directly, which keeps it testable against a fake.
type Runner interface {
	Select(ctx context.Context, sql string, args ...any) ([]Row, error)
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
}

// Gateway provides the table-agnostic CRUD primitives with tenant scoping.
// When a non-empty organization id is supplied, the equality constraint is
// added before any caller modifier runs, so a modifier can narrow but never
// widen the tenant boundary.
type Gateway struct {
	db Runner
}

func NewGateway(db Runner) *Gateway {
	return &Gateway{db: db}
}

// ListQuery carries the per-request knobs for GetAll.
type ListQuery struct {
	OrgID         string
	Modifier      func(*query.Builder) *query.Builder
	Sort          []query.Order
	Search        string
	SearchColumns []string
	Window        *Window
}

// GetAll returns the ordered row sequence for a table. Each returned row is
// annotated with its zero-based position under "sortIndex"; the annotation
// is never persisted.
func (g *Gateway) GetAll(ctx context.Context, table string, lq ListQuery) ([]Row, error) {
	b := query.New(table)

	if lq.OrgID != "" {
		b = b.Where(table+"."+OrgColumn, lq.OrgID)
	}

	if lq.Search != "" && len(lq.SearchColumns) > 0 {
		b = b.WhereRaw(searchCondition(lq.SearchColumns), searchArgs(lq.Search, len(lq.SearchColumns))...)
	}

	b = b.Modify(lq.Modifier)

	for _, o := range lq.Sort {
		b = b.OrderBy(o.Column, o.Ascending)
	}

	b = lq.Window.Apply(b)

	sql, args := b.SelectSQL()

	rows, err := g.db.Select(ctx, sql, args...)

	if err != nil {
		return nil, err
	}

	for i, r := range rows {
		r["sortIndex"] = i
	}

	return rows, nil
}

// Get returns the single row addressed by column=value, or ErrNotFound.
func (g *Gateway) Get(ctx context.Context, table, column string, value any, orgID string, modifier func(*query.Builder) *query.Builder) (Row, error) {
	b := query.New(table).Where(table+"."+column, value)

	if orgID != "" {
		b = b.Where(table+"."+OrgColumn, orgID)
	}

	b = b.Modify(modifier)

	sql, args := b.SelectSQL()

	rows, err := g.db.Select(ctx, sql, args...)

	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	return rows[0], nil
}

// WriteOptions carries the optional hooks for Create and Update. Modify
// shapes the mutation query, ResModify shapes the re-fetch of the mutated
// row.
type WriteOptions struct {
	Modify    func(*query.Builder) *query.Builder
	ResModify func(*query.Builder) *query.Builder
	OrgID     string
}

// Create inserts the payload, then re-fetches the created row by its
// returned identifying value so the caller gets the full entity including
// store-assigned columns.
func (g *Gateway) Create(ctx context.Context, table, column string, payload Row, opts WriteOptions) (Row, error) {
	b := query.New(table).Modify(opts.Modify)

	sql, args := b.InsertSQL(payload, column)

	rows, err := g.db.Select(ctx, sql, args...)

	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("insert into %s returned no identifying value", table)
	}

	return g.Get(ctx, table, column, rows[0][column], opts.OrgID, opts.ResModify)
}

// Update mutates the addressed row and re-fetches it. Zero rows affected is
// not an error here; the re-fetch reports ErrNotFound when nothing matches.
func (g *Gateway) Update(ctx context.Context, table, column string, value any, payload Row, opts WriteOptions) (Row, error) {
	b := query.New(table).Where(table+"."+column, value)

	if opts.OrgID != "" {
		b = b.Where(table+"."+OrgColumn, opts.OrgID)
	}

	b = b.Modify(opts.Modify)

	sql, args := b.UpdateSQL(payload)

	if _, err := g.db.Exec(ctx, sql, args...); err != nil {
		return nil, err
	}

	return g.Get(ctx, table, column, value, opts.OrgID, opts.ResModify)
}

// Delete removes the addressed row and reports how many rows went away, so
// the caller can tell a first-time delete from an idempotent no-op.
func (g *Gateway) Delete(ctx context.Context, table, column string, value any, orgID string, modifier func(*query.Builder) *query.Builder) (int64, error) {
	b := query.New(table).Where(table+"."+column, value)

	if orgID != "" {
		b = b.Where(table+"."+OrgColumn, orgID)
	}

	b = b.Modify(modifier)

	sql, args := b.DeleteSQL()

	return g.db.Exec(ctx, sql, args...)
}

func searchCondition(columns []string) string {
	conds := make([]string, 0, len(columns))

	for _, c := range columns {
		conds = append(conds, c+"::text ILIKE ?")
	}

	return strings.Join(conds, " OR ")
}

func searchArgs(search string, n int) []any {
	pattern := "%" + search + "%"

	args := make([]any, n)
	for i := range args {
		args[i] = pattern
	}

	return args
}
