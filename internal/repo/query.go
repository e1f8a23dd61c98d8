package repo

import (
	"context"
	"database/sql"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
)

// querier runs builder output against a connection or transaction.
type querier struct {
	conn    dialect.ExecQuerier
	dialect string
}

func (q querier) builder() *entsql.DialectBuilder { return entsql.Dialect(q.dialect) }

func (q querier) selectFrom(table string, columns []string) *entsql.Selector {
	return q.builder().Select(columns...).From(entsql.Table(table))
}

type statement interface {
	Query() (string, []any)
}

// exec runs a statement and returns the affected row count.
func (q querier) exec(ctx context.Context, st statement) (int64, error) {
	query, args := st.Query()
	var res entsql.Result
	if err := q.conn.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// all scans every row into the slice pointed to by v.
func (q querier) all(ctx context.Context, st statement, v any) error {
	query, args := st.Query()
	rows := &entsql.Rows{}
	if err := q.conn.Query(ctx, query, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	return entsql.ScanSlice(rows, v)
}

// first returns the first row of st, or sql.ErrNoRows.
func first[T any](ctx context.Context, q querier, st statement) (*T, error) {
	var out []*T
	if err := q.all(ctx, st, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, sql.ErrNoRows
	}
	return out[0], nil
}

func columnNames(cols []*schema.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// nullable turns a nil pointer into a NULL argument and dereferences the rest.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
