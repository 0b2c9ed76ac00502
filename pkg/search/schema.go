package search

import "github.com/Warky-Devs/backoffice/pkg/common"

// Document field paths shared by the schemas and the stores' column maps.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"

	FieldOrderNumber       = "orderNumber"
	FieldShippingPhone     = "shippingInfor.phone"
	FieldShippingRecipient = "shippingInfor.recipientName"
	FieldOrderUser         = "user"
	FieldStatus            = "status"
	FieldPaymentStatus     = "paymentStatus"
	FieldTotalAmount       = "totalAmount"

	FieldEmail    = "email"
	FieldFullName = "fullName"
	FieldRole     = "role"
)

// Collection names used to key reference lookups
const (
	CollectionOrders = "orders"
	CollectionUsers  = "users"
)

type MatchKind int

const (
	MatchSubstring MatchKind = iota
	MatchExact
)

// FieldRule maps request keys to a predicate on a direct field. The first key
// is canonical, the rest are accepted aliases.
type FieldRule struct {
	Keys  []string
	Field string
	Match MatchKind
}

func (r FieldRule) predicate(value string) common.Predicate {
	if r.Match == MatchExact {
		return common.Exact(r.Field, value)
	}
	return common.Substring(r.Field, value)
}

// ReferenceRule is a filter on a related collection's field that must be
// resolved to an id before it can constrain LocalField.
type ReferenceRule struct {
	Keys        []string
	Collection  string
	RemoteField string
	LocalField  string
}

// Schema is the declarative description of what a collection can be
// searched and sorted by.
type Schema struct {
	Collection  string
	IDField     string
	DateField   string
	Fields      []FieldRule
	References  []ReferenceRule
	Sortable    []string
	DefaultSort common.SortSpec
}

var OrderSchema = Schema{
	Collection: CollectionOrders,
	IDField:    FieldID,
	DateField:  FieldCreatedAt,
	Fields: []FieldRule{
		{Keys: []string{"orderNumber"}, Field: FieldOrderNumber, Match: MatchSubstring},
		{Keys: []string{"shippingPhone", FieldShippingPhone}, Field: FieldShippingPhone, Match: MatchSubstring},
		{Keys: []string{"shippingRecipientName", FieldShippingRecipient}, Field: FieldShippingRecipient, Match: MatchSubstring},
		{Keys: []string{"status"}, Field: FieldStatus, Match: MatchExact},
		{Keys: []string{"paymentStatus"}, Field: FieldPaymentStatus, Match: MatchExact},
	},
	References: []ReferenceRule{
		{Keys: []string{"customerEmail", "email"}, Collection: CollectionUsers, RemoteField: FieldEmail, LocalField: FieldOrderUser},
	},
	Sortable: []string{
		FieldCreatedAt, FieldUpdatedAt, FieldOrderNumber, FieldTotalAmount,
		FieldStatus, FieldPaymentStatus, FieldShippingRecipient,
	},
	DefaultSort: common.SortSpec{Field: FieldCreatedAt, Direction: common.Descending},
}

var UserSchema = Schema{
	Collection: CollectionUsers,
	IDField:    FieldID,
	DateField:  FieldCreatedAt,
	Fields: []FieldRule{
		{Keys: []string{"email"}, Field: FieldEmail, Match: MatchSubstring},
		{Keys: []string{"fullName"}, Field: FieldFullName, Match: MatchSubstring},
		{Keys: []string{"role"}, Field: FieldRole, Match: MatchExact},
	},
	Sortable:    []string{FieldCreatedAt, FieldUpdatedAt, FieldEmail, FieldFullName},
	DefaultSort: common.SortSpec{Field: FieldCreatedAt, Direction: common.Descending},
}
