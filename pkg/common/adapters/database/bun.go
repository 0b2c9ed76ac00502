package database

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/Warky-Devs/backoffice/pkg/common"
)

// BunStore adapts Bun to the search engine's RecordStore. It has no snapshot
// read, so the page and the total are two separate queries.
type BunStore[T any] struct {
	db        bun.IDB
	columns   Columns
	fold      string
	relations []string
}

// NewBunStore creates a store for model T. relations are joined onto each
// record, e.g. "User".
func NewBunStore[T any](db bun.IDB, columns Columns, relations ...string) *BunStore[T] {
	return &BunStore[T]{db: db, columns: columns, fold: bunFold(db), relations: relations}
}

func (b *BunStore[T]) Find(ctx context.Context, query common.Query) ([]T, error) {
	records := make([]T, 0, query.Window.Limit)
	q := b.db.NewSelect().Model(&records)
	for _, relation := range b.relations {
		q = q.Relation(relation)
	}

	q, err := bunFiltered(q, b.columns, b.fold, query.Predicates)
	if err != nil {
		return nil, err
	}
	if q, err = bunOrdered(q, b.columns, query.Sort); err != nil {
		return nil, err
	}

	if err := q.Offset(query.Window.Offset).Limit(query.Window.Limit).Scan(ctx); err != nil {
		return nil, errors.Wrap(err, "bun find")
	}
	return records, nil
}

func (b *BunStore[T]) Count(ctx context.Context, predicates []common.Predicate) (int64, error) {
	q, err := bunFiltered(b.db.NewSelect().Model((*T)(nil)), b.columns, b.fold, predicates)
	if err != nil {
		return 0, err
	}
	total, err := q.Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "bun count")
	}
	return int64(total), nil
}

// BunLookup resolves reference filters against a related model
type BunLookup struct {
	db      bun.IDB
	model   interface{}
	columns Columns
	fold    string
	idField string
}

// NewBunLookup creates a lookup over model, e.g. (*models.User)(nil).
func NewBunLookup(db bun.IDB, model interface{}, columns Columns, idField string) *BunLookup {
	return &BunLookup{db: db, model: model, columns: columns, fold: bunFold(db), idField: idField}
}

func (l *BunLookup) ResolveID(ctx context.Context, predicate common.Predicate) (string, bool, error) {
	idCol, err := l.columns.Resolve(l.idField)
	if err != nil {
		return "", false, err
	}

	q := l.db.NewSelect().Model(l.model).ColumnExpr("?TableAlias.?", bun.Ident(idCol))
	if q, err = bunFiltered(q, l.columns, l.fold, []common.Predicate{predicate}); err != nil {
		return "", false, err
	}
	if q, err = bunOrdered(q, l.columns, firstMatchOrder(l.columns, l.idField)); err != nil {
		return "", false, err
	}

	var id string
	if err := q.Limit(1).Scan(ctx, &id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, "bun resolve id")
	}
	return id, true, nil
}

func bunFold(db bun.IDB) string {
	return foldFunc(db.Dialect().Name() == dialect.SQLite)
}

func bunFiltered(q *bun.SelectQuery, columns Columns, fold string, predicates []common.Predicate) (*bun.SelectQuery, error) {
	for _, p := range predicates {
		col, err := columns.Resolve(p.Field)
		if err != nil {
			return nil, err
		}
		ident := bun.Ident(col)

		switch p.Kind {
		case common.KindExact:
			q = q.Where("?TableAlias.? = ?", ident, p.Value)
		case common.KindSubstring:
			q = q.Where(fold+"(?TableAlias.?) LIKE ? ESCAPE '"+likeEscape+"'", ident, containsPattern(p.Pattern))
		case common.KindRange:
			if p.Lower != nil {
				q = q.Where("?TableAlias.? >= ?", ident, p.Lower)
			}
			if p.Upper != nil {
				q = q.Where("?TableAlias.? <= ?", ident, p.Upper)
			}
		default:
			return nil, errors.Errorf("unsupported predicate kind %s", p.Kind)
		}
	}
	return q, nil
}

func bunOrdered(q *bun.SelectQuery, columns Columns, sorts []common.SortSpec) (*bun.SelectQuery, error) {
	for _, s := range sorts {
		col, err := columns.Resolve(s.Field)
		if err != nil {
			return nil, err
		}
		if s.Desc() {
			q = q.OrderExpr("?TableAlias.? DESC", bun.Ident(col))
		} else {
			q = q.OrderExpr("?TableAlias.? ASC", bun.Ident(col))
		}
	}
	return q, nil
}
