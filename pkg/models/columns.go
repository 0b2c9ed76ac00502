package models

import (
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Warky-Devs/backoffice/pkg/common/adapters/database"
	"github.com/Warky-Devs/backoffice/pkg/search"
)

// UserColumns maps searchable user fields to the users table
var UserColumns = database.Columns{
	search.FieldID:        "id",
	search.FieldEmail:     "email",
	search.FieldFullName:  "full_name",
	search.FieldRole:      "role",
	search.FieldCreatedAt: "created_at",
	search.FieldUpdatedAt: "updated_at",
}

// OrderColumns maps searchable order fields to the orders table
var OrderColumns = database.Columns{
	search.FieldID:                "id",
	search.FieldOrderNumber:       "order_number",
	search.FieldShippingPhone:     "shipping_phone",
	search.FieldShippingRecipient: "shipping_recipient_name",
	search.FieldOrderUser:         "user_id",
	search.FieldStatus:            "status",
	search.FieldPaymentStatus:     "payment_status",
	search.FieldTotalAmount:       "total_amount",
	search.FieldCreatedAt:         "created_at",
	search.FieldUpdatedAt:         "updated_at",
}

func qualify(alias string, columns database.Columns) database.Columns {
	out := make(database.Columns, len(columns))
	for field, col := range columns {
		out[field] = alias + "." + col
	}
	return out
}

var userSelect = []string{"u.id", "u.full_name", "u.email", "u.phone", "u.role", "u.created_at", "u.updated_at"}

// UserPgSource reads users directly
var UserPgSource = database.PgSource{
	From:    "users AS u",
	Select:  userSelect,
	Columns: qualify("u", UserColumns),
}

// OrderPgSource reads orders with their customer joined in
var OrderPgSource = database.PgSource{
	From: "orders AS o LEFT JOIN users AS u ON u.id = o.user_id",
	Select: append([]string{
		"o.id", "o.order_number", "o.user_id", "o.total_amount", "o.shipping_fee", "o.tax", "o.discount",
		"o.payment_method", "o.payment_status", "o.status", "o.notes",
		"o.shipping_recipient_name", "o.shipping_phone", "o.shipping_address",
		"o.created_at", "o.updated_at",
	}, userSelect...),
	Columns: qualify("o", OrderColumns),
}

// ScanUser reads a row shaped by UserPgSource.Select
func ScanUser(row pgx.CollectableRow) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// ScanOrder reads a row shaped by OrderPgSource.Select. The customer columns
// are null when the user no longer exists.
func ScanOrder(row pgx.CollectableRow) (Order, error) {
	var (
		o                                    Order
		userID, fullName, email, phone, role *string
		userCreatedAt, userUpdatedAt         *time.Time
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.TotalAmount, &o.ShippingFee, &o.Tax, &o.Discount,
		&o.PaymentMethod, &o.PaymentStatus, &o.Status, &o.Notes,
		&o.ShippingInfo.RecipientName, &o.ShippingInfo.Phone, &o.ShippingInfo.Address,
		&o.CreatedAt, &o.UpdatedAt,
		&userID, &fullName, &email, &phone, &role, &userCreatedAt, &userUpdatedAt,
	)
	if err != nil {
		return o, err
	}
	if userID != nil {
		o.User = &User{
			ID:        *userID,
			FullName:  deref(fullName),
			Email:     deref(email),
			Phone:     deref(phone),
			Role:      deref(role),
			CreatedAt: derefTime(userCreatedAt),
			UpdatedAt: derefTime(userUpdatedAt),
		}
	}
	return o, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
