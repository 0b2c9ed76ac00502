package search

import (
	"context"
	"time"

	"github.com/Warky-Devs/backoffice/pkg/common"
)

// ReferenceResolver rewrites filters on related collections into exact
// foreign-key predicates.
type ReferenceResolver struct {
	Rules   []ReferenceRule
	Lookups map[string]common.ReferenceLookup
	Timeout time.Duration
}

// Resolve returns one predicate per present reference filter. resolved is
// false when any filter matched no related document; the caller must then
// return an empty result instead of querying without the filter.
func (r ReferenceResolver) Resolve(ctx context.Context, params Params) (predicates []common.Predicate, resolved bool, err error) {
	for _, rule := range r.Rules {
		value, ok := params.lookup(rule.Keys...)
		if !ok {
			continue
		}

		lookup, ok := r.Lookups[rule.Collection]
		if !ok {
			return nil, false, ErrMissingLookup
		}

		callCtx, cancel := withTimeout(ctx, r.Timeout)
		id, found, err := lookup.ResolveID(callCtx, common.Substring(rule.RemoteField, value))
		cancel()
		if err != nil {
			return nil, false, storageFailure("resolve "+rule.Collection+"."+rule.RemoteField, err)
		}
		if !found {
			return nil, false, nil
		}
		predicates = append(predicates, common.Exact(rule.LocalField, id))
	}
	return predicates, true, nil
}
