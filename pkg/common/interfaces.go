package common

import "context"

// RecordStore is the storage collaborator the search engine runs against.
// Find and Count must apply the same predicate semantics so that a page and
// its total agree.
type RecordStore[T any] interface {
	Find(ctx context.Context, query Query) ([]T, error)
	Count(ctx context.Context, predicates []Predicate) (int64, error)
}

// SnapshotStore is implemented by stores that can return a page and its total
// from one consistent read.
type SnapshotStore[T any] interface {
	RecordStore[T]
	FindAndCount(ctx context.Context, query Query) ([]T, int64, error)
}

// ReferenceLookup finds the first document of a related collection matching a
// predicate and returns its id.
type ReferenceLookup interface {
	ResolveID(ctx context.Context, predicate Predicate) (id string, found bool, err error)
}
