package database

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/Warky-Devs/backoffice/pkg/common"
)

// pgQuerier is satisfied by *pgxpool.Pool and pgx.Tx
type pgQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgSource describes where a PgStore reads from. Columns map fields to
// qualified column expressions valid in From, e.g. "o.order_number".
type PgSource struct {
	From    string
	Select  []string
	Columns Columns
}

// PgStore runs squirrel-built SQL over a pgx pool
type PgStore[T any] struct {
	pool   *pgxpool.Pool
	source PgSource
	rowTo  pgx.RowToFunc[T]
}

func NewPgStore[T any](pool *pgxpool.Pool, source PgSource, rowTo pgx.RowToFunc[T]) *PgStore[T] {
	return &PgStore[T]{pool: pool, source: source, rowTo: rowTo}
}

func (s *PgStore[T]) Find(ctx context.Context, query common.Query) ([]T, error) {
	return s.find(ctx, s.pool, query)
}

func (s *PgStore[T]) Count(ctx context.Context, predicates []common.Predicate) (int64, error) {
	return s.count(ctx, s.pool, predicates)
}

// FindAndCount reads the page and the total from one repeatable-read snapshot
func (s *PgStore[T]) FindAndCount(ctx context.Context, query common.Query) ([]T, int64, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, 0, errors.Wrap(err, "pg begin snapshot")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	records, err := s.find(ctx, tx, query)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.count(ctx, tx, query.Predicates)
	if err != nil {
		return nil, 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, 0, errors.Wrap(err, "pg commit snapshot")
	}
	return records, total, nil
}

func (s *PgStore[T]) find(ctx context.Context, db pgQuerier, query common.Query) ([]T, error) {
	sqlStr, args, err := s.FindSQL(query)
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, errors.Wrap(err, "pg find")
	}
	records, err := pgx.CollectRows(rows, s.rowTo)
	if err != nil {
		return nil, errors.Wrap(err, "pg scan")
	}
	if records == nil {
		records = make([]T, 0)
	}
	return records, nil
}

func (s *PgStore[T]) count(ctx context.Context, db pgQuerier, predicates []common.Predicate) (int64, error) {
	sqlStr, args, err := s.CountSQL(predicates)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := db.QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, errors.Wrap(err, "pg count")
	}
	return total, nil
}

// FindSQL renders the windowed select for query
func (s *PgStore[T]) FindSQL(query common.Query) (string, []interface{}, error) {
	sb := squirrel.Select(s.source.Select...).From(s.source.From).PlaceholderFormat(squirrel.Dollar)
	sb, err := pgFiltered(sb, s.source.Columns, query.Predicates)
	if err != nil {
		return "", nil, err
	}
	if sb, err = pgOrdered(sb, s.source.Columns, query.Sort); err != nil {
		return "", nil, err
	}
	sb = sb.Offset(uint64(query.Window.Offset)).Limit(uint64(query.Window.Limit))
	return sb.ToSql()
}

// CountSQL renders the count over the same predicates as FindSQL
func (s *PgStore[T]) CountSQL(predicates []common.Predicate) (string, []interface{}, error) {
	sb := squirrel.Select("COUNT(*)").From(s.source.From).PlaceholderFormat(squirrel.Dollar)
	sb, err := pgFiltered(sb, s.source.Columns, predicates)
	if err != nil {
		return "", nil, err
	}
	return sb.ToSql()
}

// PgLookup resolves reference filters against a related table
type PgLookup struct {
	pool    *pgxpool.Pool
	table   string
	columns Columns
	idField string
}

func NewPgLookup(pool *pgxpool.Pool, table string, columns Columns, idField string) *PgLookup {
	return &PgLookup{pool: pool, table: table, columns: columns, idField: idField}
}

func (l *PgLookup) ResolveID(ctx context.Context, predicate common.Predicate) (string, bool, error) {
	sqlStr, args, err := l.SQL(predicate)
	if err != nil {
		return "", false, err
	}
	var id string
	if err := l.pool.QueryRow(ctx, sqlStr, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, "pg resolve id")
	}
	return id, true, nil
}

// SQL renders the first-match query for predicate
func (l *PgLookup) SQL(predicate common.Predicate) (string, []interface{}, error) {
	idCol, err := l.columns.Resolve(l.idField)
	if err != nil {
		return "", nil, err
	}
	sb := squirrel.Select(idCol).From(l.table).PlaceholderFormat(squirrel.Dollar)
	if sb, err = pgFiltered(sb, l.columns, []common.Predicate{predicate}); err != nil {
		return "", nil, err
	}
	if sb, err = pgOrdered(sb, l.columns, firstMatchOrder(l.columns, l.idField)); err != nil {
		return "", nil, err
	}
	return sb.Limit(1).ToSql()
}

func pgFiltered(sb squirrel.SelectBuilder, columns Columns, predicates []common.Predicate) (squirrel.SelectBuilder, error) {
	for _, p := range predicates {
		col, err := columns.Resolve(p.Field)
		if err != nil {
			return sb, err
		}
		switch p.Kind {
		case common.KindExact:
			sb = sb.Where(squirrel.Eq{col: p.Value})
		case common.KindSubstring:
			sb = sb.Where(squirrel.Expr(fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '%s'", col, likeEscape), containsPattern(p.Pattern)))
		case common.KindRange:
			if p.Lower != nil {
				sb = sb.Where(squirrel.GtOrEq{col: p.Lower})
			}
			if p.Upper != nil {
				sb = sb.Where(squirrel.LtOrEq{col: p.Upper})
			}
		default:
			return sb, errors.Errorf("unsupported predicate kind %s", p.Kind)
		}
	}
	return sb, nil
}

func pgOrdered(sb squirrel.SelectBuilder, columns Columns, sorts []common.SortSpec) (squirrel.SelectBuilder, error) {
	for _, s := range sorts {
		col, err := columns.Resolve(s.Field)
		if err != nil {
			return sb, err
		}
		if s.Desc() {
			sb = sb.OrderBy(col + " DESC")
		} else {
			sb = sb.OrderBy(col + " ASC")
		}
	}
	return sb, nil
}
