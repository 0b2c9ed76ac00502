package search

import (
	"slices"
	"strings"

	"github.com/Warky-Devs/backoffice/pkg/common"
)

// SortSpecResolver maps sortBy/sortDirection to an ordering. The id field is
// appended as a tiebreak so equal keys still page deterministically.
type SortSpecResolver struct {
	Sortable []string
	Default  common.SortSpec
	IDField  string
}

func (r SortSpecResolver) Resolve(params Params) ([]common.SortSpec, error) {
	spec := r.Default

	if field, ok := params.lookup("sortBy", "sort_by"); ok {
		if field != r.IDField && !slices.Contains(r.Sortable, field) {
			return nil, &SortFieldError{Field: field, Allowed: r.Sortable}
		}
		spec.Field = field
	}

	if direction, ok := params.lookup("sortDirection", "sort_type"); ok {
		if strings.EqualFold(direction, string(common.Ascending)) {
			spec.Direction = common.Ascending
		} else {
			spec.Direction = common.Descending
		}
	}

	specs := []common.SortSpec{spec}
	if r.IDField != "" && spec.Field != r.IDField {
		specs = append(specs, common.SortSpec{Field: r.IDField, Direction: spec.Direction})
	}
	return specs, nil
}
