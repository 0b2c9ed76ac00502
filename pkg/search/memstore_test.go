package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Warky-Devs/backoffice/pkg/common"
)

type doc map[string]interface{}

// memStore evaluates predicates over documents kept in memory
type memStore struct {
	docs       []doc
	findCalls  int
	countCalls int
	err        error
	lastQuery  common.Query
	deadlines  []bool
}

func (m *memStore) Find(ctx context.Context, query common.Query) ([]doc, error) {
	m.findCalls++
	m.lastQuery = query
	_, hasDeadline := ctx.Deadline()
	m.deadlines = append(m.deadlines, hasDeadline)
	if m.err != nil {
		return nil, m.err
	}

	matched := m.filter(query.Predicates)
	sort.SliceStable(matched, func(i, j int) bool {
		for _, s := range query.Sort {
			c := compare(matched[i][s.Field], matched[j][s.Field])
			if c == 0 {
				continue
			}
			if s.Desc() {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	if query.Window.Offset >= len(matched) {
		return nil, nil
	}
	end := query.Window.Offset + query.Window.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[query.Window.Offset:end], nil
}

func (m *memStore) Count(ctx context.Context, predicates []common.Predicate) (int64, error) {
	m.countCalls++
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.filter(predicates))), nil
}

func (m *memStore) filter(predicates []common.Predicate) []doc {
	out := make([]doc, 0, len(m.docs))
	for _, d := range m.docs {
		if matches(d, predicates) {
			out = append(out, d)
		}
	}
	return out
}

func (m *memStore) ResolveID(ctx context.Context, predicate common.Predicate) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	for _, d := range m.docs {
		if matches(d, []common.Predicate{predicate}) {
			return d[FieldID].(string), true, nil
		}
	}
	return "", false, nil
}

// snapStore answers fetch and count together
type snapStore struct {
	memStore
	snapshots int
}

func (s *snapStore) FindAndCount(ctx context.Context, query common.Query) ([]doc, int64, error) {
	s.snapshots++
	records, err := s.memStore.Find(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.memStore.Count(ctx, query.Predicates)
	return records, total, err
}

func matches(d doc, predicates []common.Predicate) bool {
	for _, p := range predicates {
		value := d[p.Field]
		switch p.Kind {
		case common.KindExact:
			if fmt.Sprint(value) != fmt.Sprint(p.Value) {
				return false
			}
		case common.KindSubstring:
			s, _ := value.(string)
			if !strings.Contains(strings.ToLower(s), strings.ToLower(p.Pattern)) {
				return false
			}
		case common.KindRange:
			if p.Lower != nil && compare(value, p.Lower) < 0 {
				return false
			}
			if p.Upper != nil && compare(value, p.Upper) > 0 {
				return false
			}
		}
	}
	return true
}

func compare(a, b interface{}) int {
	switch av := a.(type) {
	case time.Time:
		return av.Compare(b.(time.Time))
	case int:
		bv := b.(int)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	default:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}
