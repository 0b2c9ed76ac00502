package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"gorm.io/gorm"
)

// Order statuses
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderShipping  = "shipping"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// Payment statuses
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

// ShippingInfo is stored inline on the order with a shipping_ column prefix
type ShippingInfo struct {
	RecipientName string `json:"recipientName" bun:"recipient_name"`
	Phone         string `json:"phone" bun:"phone"`
	Address       string `json:"address" bun:"address"`
}

type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o" gorm:"-" json:"-"`

	ID            string       `json:"id" gorm:"primaryKey;type:string" bun:"id,pk"`
	OrderNumber   string       `json:"orderNumber" gorm:"uniqueIndex" bun:"order_number,unique"`
	UserID        string       `json:"userId" gorm:"type:string;index" bun:"user_id"`
	User          *User        `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID" bun:"rel:belongs-to,join:user_id=id"`
	TotalAmount   float64      `json:"totalAmount" bun:"total_amount"`
	ShippingFee   float64      `json:"shippingFee" bun:"shipping_fee"`
	Tax           float64      `json:"tax" bun:"tax"`
	Discount      float64      `json:"discount" bun:"discount"`
	PaymentMethod string       `json:"paymentMethod" bun:"payment_method"`
	PaymentStatus string       `json:"paymentStatus" gorm:"index" bun:"payment_status"`
	Status        string       `json:"status" gorm:"index" bun:"status"`
	Notes         string       `json:"notes" bun:"notes"`
	ShippingInfo  ShippingInfo `json:"shippingInfor" gorm:"embedded;embeddedPrefix:shipping_" bun:"embed:shipping_"`
	CreatedAt     time.Time    `json:"createdAt" gorm:"index" bun:"created_at,nullzero,notnull"`
	UpdatedAt     time.Time    `json:"updatedAt" bun:"updated_at,nullzero,notnull"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	o.prepare()
	return nil
}

var _ bun.BeforeAppendModelHook = (*Order)(nil)

func (o *Order) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		o.prepare()
	}
	return nil
}

func (o *Order) prepare() {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}
	// sqlite compares stored times as text
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	if o.OrderNumber == "" {
		o.OrderNumber = GenerateOrderNumber(o.CreatedAt)
	}
	if o.Status == "" {
		o.Status = OrderPending
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = PaymentPending
	}
}
