package common

import "fmt"

// PredicateKind tags the variant held by a Predicate
type PredicateKind int

const (
	// KindExact matches a field equal to Value.
	KindExact PredicateKind = iota
	// KindSubstring matches a field containing Pattern, ignoring case.
	KindSubstring
	// KindRange matches a field between Lower and Upper, both inclusive. A nil
	// bound is open.
	KindRange
)

func (k PredicateKind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindSubstring:
		return "substring"
	case KindRange:
		return "range"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Predicate is a boolean condition over one document field. Field uses dotted
// path addressing for nested sub-documents, e.g. "shippingInfor.phone".
type Predicate struct {
	Kind  PredicateKind
	Field string

	Value interface{}

	Pattern         string
	CaseInsensitive bool

	Lower interface{}
	Upper interface{}
}

func Exact(field string, value interface{}) Predicate {
	return Predicate{Kind: KindExact, Field: field, Value: value}
}

func Substring(field, pattern string) Predicate {
	return Predicate{Kind: KindSubstring, Field: field, Pattern: pattern, CaseInsensitive: true}
}

func Range(field string, lower, upper interface{}) Predicate {
	return Predicate{Kind: KindRange, Field: field, Lower: lower, Upper: upper}
}

func (p Predicate) String() string {
	switch p.Kind {
	case KindExact:
		return fmt.Sprintf("%s = %v", p.Field, p.Value)
	case KindSubstring:
		return fmt.Sprintf("%s ~* %q", p.Field, p.Pattern)
	case KindRange:
		return fmt.Sprintf("%s in [%v, %v]", p.Field, p.Lower, p.Upper)
	default:
		return fmt.Sprintf("%s %s", p.Field, p.Kind)
	}
}

type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// SortSpec orders results by one field
type SortSpec struct {
	Field     string
	Direction SortDirection
}

func (s SortSpec) Desc() bool {
	return s.Direction == Descending
}

// Window is the offset+limit slice of an ordered result set for one page
type Window struct {
	Offset int
	Limit  int
}

// Query is everything a store needs to fetch one page of records
type Query struct {
	Predicates []Predicate
	Sort       []SortSpec
	Window     Window
}
