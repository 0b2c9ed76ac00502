package database

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Warky-Devs/backoffice/pkg/common"
)

// GormStore adapts GORM to the search engine's RecordStore
type GormStore[T any] struct {
	db       *gorm.DB
	columns  Columns
	fold     string
	preloads []string
}

// NewGormStore creates a store for model T. preloads are relation field names
// loaded alongside each record, e.g. "User".
func NewGormStore[T any](db *gorm.DB, columns Columns, preloads ...string) *GormStore[T] {
	return &GormStore[T]{db: db, columns: columns, fold: gormFold(db), preloads: preloads}
}

func (g *GormStore[T]) Find(ctx context.Context, query common.Query) ([]T, error) {
	return g.find(g.db.WithContext(ctx), query)
}

func (g *GormStore[T]) Count(ctx context.Context, predicates []common.Predicate) (int64, error) {
	return g.count(g.db.WithContext(ctx), predicates)
}

// FindAndCount reads the page and the total inside one transaction
func (g *GormStore[T]) FindAndCount(ctx context.Context, query common.Query) ([]T, int64, error) {
	var (
		records []T
		total   int64
	)
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if records, err = g.find(tx, query); err != nil {
			return err
		}
		total, err = g.count(tx, query.Predicates)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (g *GormStore[T]) find(db *gorm.DB, query common.Query) ([]T, error) {
	q, err := gormFiltered(db.Model(new(T)), g.columns, g.fold, query.Predicates)
	if err != nil {
		return nil, err
	}
	if q, err = gormOrdered(q, g.columns, query.Sort); err != nil {
		return nil, err
	}
	for _, relation := range g.preloads {
		q = q.Preload(relation)
	}

	records := make([]T, 0, query.Window.Limit)
	if err := q.Offset(query.Window.Offset).Limit(query.Window.Limit).Find(&records).Error; err != nil {
		return nil, errors.Wrap(err, "gorm find")
	}
	return records, nil
}

func (g *GormStore[T]) count(db *gorm.DB, predicates []common.Predicate) (int64, error) {
	q, err := gormFiltered(db.Model(new(T)), g.columns, g.fold, predicates)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, errors.Wrap(err, "gorm count")
	}
	return total, nil
}

// GormLookup resolves reference filters against a related model
type GormLookup struct {
	db      *gorm.DB
	model   interface{}
	columns Columns
	fold    string
	idField string
}

// NewGormLookup creates a lookup over model, e.g. &models.User{}.
func NewGormLookup(db *gorm.DB, model interface{}, columns Columns, idField string) *GormLookup {
	return &GormLookup{db: db, model: model, columns: columns, fold: gormFold(db), idField: idField}
}

func (l *GormLookup) ResolveID(ctx context.Context, predicate common.Predicate) (string, bool, error) {
	idCol, err := l.columns.Resolve(l.idField)
	if err != nil {
		return "", false, err
	}

	q, err := gormFiltered(l.db.WithContext(ctx).Model(l.model), l.columns, l.fold, []common.Predicate{predicate})
	if err != nil {
		return "", false, err
	}
	if q, err = gormOrdered(q, l.columns, firstMatchOrder(l.columns, l.idField)); err != nil {
		return "", false, err
	}

	var ids []string
	if err := q.Limit(1).Pluck(idCol, &ids).Error; err != nil {
		return "", false, errors.Wrap(err, "gorm resolve id")
	}
	if len(ids) == 0 {
		return "", false, nil
	}
	return ids[0], true, nil
}

func gormFold(db *gorm.DB) string {
	return foldFunc(db.Dialector != nil && db.Dialector.Name() == "sqlite")
}

func gormFiltered(q *gorm.DB, columns Columns, fold string, predicates []common.Predicate) (*gorm.DB, error) {
	for _, p := range predicates {
		exprs, err := gormPredicate(p, columns, fold)
		if err != nil {
			return nil, err
		}
		for _, expr := range exprs {
			q = q.Where(expr)
		}
	}
	return q, nil
}

func gormPredicate(p common.Predicate, columns Columns, fold string) ([]clause.Expression, error) {
	col, err := columns.Resolve(p.Field)
	if err != nil {
		return nil, err
	}
	column := clause.Column{Name: col}

	switch p.Kind {
	case common.KindExact:
		return []clause.Expression{clause.Eq{Column: column, Value: p.Value}}, nil
	case common.KindSubstring:
		return []clause.Expression{clause.Expr{
			SQL:  fold + "(?) LIKE ? ESCAPE '" + likeEscape + "'",
			Vars: []interface{}{column, containsPattern(p.Pattern)},
		}}, nil
	case common.KindRange:
		exprs := make([]clause.Expression, 0, 2)
		if p.Lower != nil {
			exprs = append(exprs, clause.Gte{Column: column, Value: p.Lower})
		}
		if p.Upper != nil {
			exprs = append(exprs, clause.Lte{Column: column, Value: p.Upper})
		}
		return exprs, nil
	default:
		return nil, errors.Errorf("unsupported predicate kind %s", p.Kind)
	}
}

func gormOrdered(q *gorm.DB, columns Columns, sorts []common.SortSpec) (*gorm.DB, error) {
	for _, s := range sorts {
		col, err := columns.Resolve(s.Field)
		if err != nil {
			return nil, err
		}
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: s.Desc()})
	}
	return q, nil
}
