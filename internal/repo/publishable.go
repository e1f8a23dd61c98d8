package repo

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

type idRow struct {
	ID uuid.UUID `json:"id"`
}

// publish sets published_at only on drafts. It reports whether this call
// published the row; a missing row is a NotFoundError for label.
func publish(ctx context.Context, q querier, table, label string, id uuid.UUID, at time.Time) (bool, error) {
	upd := q.builder().Update(table).
		Set("published_at", Timestamp(at)).
		Where(entsql.And(entsql.EQ("id", id), entsql.IsNull("published_at")))
	n, err := q.exec(ctx, upd)
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	sel := q.selectFrom(table, []string{"id"}).Where(entsql.EQ("id", id))
	if _, err := first[idRow](ctx, q, sel); err != nil {
		return false, classify(label, err)
	}
	return false, nil
}
