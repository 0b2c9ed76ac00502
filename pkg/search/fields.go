package search

import "github.com/Warky-Devs/backoffice/pkg/common"

// FieldFilterBuilder turns recognized request keys into direct field
// predicates. Absent or blank keys produce nothing.
type FieldFilterBuilder struct {
	Rules []FieldRule
}

func (b FieldFilterBuilder) Build(params Params) []common.Predicate {
	predicates := make([]common.Predicate, 0, len(b.Rules))
	for _, rule := range b.Rules {
		value, ok := params.lookup(rule.Keys...)
		if !ok {
			continue
		}
		predicates = append(predicates, rule.predicate(value))
	}
	return predicates
}
