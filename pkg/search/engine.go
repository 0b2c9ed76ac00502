package search

import (
	"context"
	"time"

	"github.com/Warky-Devs/backoffice/pkg/common"
	"github.com/pkg/errors"
)

// Outcome classifies a finished search for observers
type Outcome string

const (
	OutcomeOK         Outcome = "ok"
	OutcomeNoRefMatch Outcome = "no_reference_match"
	OutcomeRejected   Outcome = "rejected"
	OutcomeError      Outcome = "error"
)

// Observer is notified once per Search call
type Observer interface {
	ObserveSearch(collection string, outcome Outcome, elapsed time.Duration)
}

type options struct {
	callTimeout time.Duration
	location    *time.Location
	maxLimit    int
	observer    Observer
}

type Option func(*options)

// WithCallTimeout bounds every individual store or lookup call.
func WithCallTimeout(d time.Duration) Option {
	return func(o *options) { o.callTimeout = d }
}

// WithLocation sets the time zone calendar dates are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.location = loc }
}

// WithMaxLimit caps the page size. Zero leaves it unbounded.
func WithMaxLimit(n int) Option {
	return func(o *options) { o.maxLimit = n }
}

func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// Plan is a compiled request, ready to execute
type Plan struct {
	Predicates []common.Predicate
	Sort       []common.SortSpec
	Page       PageRequest
	// NoMatch is set when a reference filter resolved to nothing. The store
	// must not be queried.
	NoMatch bool
}

func (p Plan) Query() common.Query {
	return common.Query{
		Predicates: p.Predicates,
		Sort:       p.Sort,
		Window:     p.Page.Window(),
	}
}

// Engine searches one collection
type Engine[T any] struct {
	schema  Schema
	store   common.RecordStore[T]
	fields  FieldFilterBuilder
	refs    ReferenceResolver
	dates   DateRangeCombinator
	sorts   SortSpecResolver
	options options
}

// NewEngine wires a schema to its store. lookups is keyed by collection name
// and must cover every reference rule of the schema.
func NewEngine[T any](schema Schema, store common.RecordStore[T], lookups map[string]common.ReferenceLookup, opts ...Option) (*Engine[T], error) {
	if store == nil {
		return nil, errors.New("search: nil store")
	}

	o := options{location: time.UTC}
	for _, opt := range opts {
		opt(&o)
	}
	if o.location == nil {
		o.location = time.UTC
	}

	for _, rule := range schema.References {
		if _, ok := lookups[rule.Collection]; !ok {
			return nil, errors.Wrapf(ErrMissingLookup, "%s needs %s", schema.Collection, rule.Collection)
		}
	}

	return &Engine[T]{
		schema: schema,
		store:  store,
		fields: FieldFilterBuilder{Rules: schema.Fields},
		refs: ReferenceResolver{
			Rules:   schema.References,
			Lookups: lookups,
			Timeout: o.callTimeout,
		},
		dates: DateRangeCombinator{Field: schema.DateField, Location: o.location},
		sorts: SortSpecResolver{
			Sortable: schema.Sortable,
			Default:  schema.DefaultSort,
			IDField:  schema.IDField,
		},
		options: o,
	}, nil
}

func (e *Engine[T]) Schema() Schema {
	return e.schema
}

// Plan compiles params without touching the record store. Reference filters
// are resolved here, so it may call lookups.
func (e *Engine[T]) Plan(ctx context.Context, params Params) (Plan, error) {
	plan := Plan{Page: ParsePage(params, e.options.maxLimit)}

	sorts, err := e.sorts.Resolve(params)
	if err != nil {
		return plan, err
	}
	plan.Sort = sorts

	plan.Predicates = e.fields.Build(params)

	refs, resolved, err := e.refs.Resolve(ctx, params)
	if err != nil {
		return plan, err
	}
	if !resolved {
		plan.NoMatch = true
		plan.Predicates = nil
		return plan, nil
	}
	plan.Predicates = append(plan.Predicates, refs...)

	if e.schema.DateField != "" {
		if dateRange, ok := e.dates.Combine(params); ok {
			plan.Predicates = append(plan.Predicates, dateRange)
		}
	}

	return plan, nil
}

// Search runs the full pipeline and returns one page of records.
func (e *Engine[T]) Search(ctx context.Context, params Params) (result common.Result[T], err error) {
	start := time.Now()
	outcome := OutcomeOK
	defer func() {
		if e.options.observer != nil {
			e.options.observer.ObserveSearch(e.schema.Collection, outcome, time.Since(start))
		}
	}()

	plan, err := e.Plan(ctx, params)
	if err != nil {
		outcome = OutcomeError
		if errors.Is(err, ErrInvalidSort) {
			outcome = OutcomeRejected
		}
		return result, err
	}
	if plan.NoMatch {
		outcome = OutcomeNoRefMatch
		return common.EmptyResult[T](plan.Page.Page, plan.Page.Limit), nil
	}

	records, total, err := e.execute(ctx, plan.Query())
	if err != nil {
		outcome = OutcomeError
		return result, err
	}
	return assemble(records, total, plan.Page), nil
}

// execute fetches the window and the total. Stores that support it answer
// both from one read; otherwise the count is a second round-trip and may
// disagree with the page if a write lands in between.
func (e *Engine[T]) execute(ctx context.Context, query common.Query) ([]T, int64, error) {
	if snap, ok := e.store.(common.SnapshotStore[T]); ok {
		callCtx, cancel := withTimeout(ctx, e.options.callTimeout)
		defer cancel()
		records, total, err := snap.FindAndCount(callCtx, query)
		if err != nil {
			return nil, 0, storageFailure("find and count "+e.schema.Collection, err)
		}
		return records, total, nil
	}

	findCtx, cancelFind := withTimeout(ctx, e.options.callTimeout)
	records, err := e.store.Find(findCtx, query)
	cancelFind()
	if err != nil {
		return nil, 0, storageFailure("find "+e.schema.Collection, err)
	}

	countCtx, cancelCount := withTimeout(ctx, e.options.callTimeout)
	total, err := e.store.Count(countCtx, query.Predicates)
	cancelCount()
	if err != nil {
		return nil, 0, storageFailure("count "+e.schema.Collection, err)
	}
	return records, total, nil
}

func assemble[T any](records []T, total int64, page PageRequest) common.Result[T] {
	if records == nil {
		records = make([]T, 0)
	}
	return common.Result[T]{
		Records: records,
		Pagination: common.Pagination{
			TotalRecord: total,
			Limit:       page.Limit,
			Page:        page.Page,
		},
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
