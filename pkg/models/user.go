package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"gorm.io/gorm"
)

// User is a back-office customer account. Orders reference it by ID.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u" gorm:"-" json:"-"`

	ID        string    `json:"id" gorm:"primaryKey;type:string" bun:"id,pk"`
	FullName  string    `json:"fullName" bun:"full_name"`
	Email     string    `json:"email" gorm:"uniqueIndex" bun:"email,unique"`
	Phone     string    `json:"phone" bun:"phone"`
	Role      string    `json:"role" bun:"role"`
	CreatedAt time.Time `json:"createdAt" gorm:"index" bun:"created_at,nullzero,notnull"`
	UpdatedAt time.Time `json:"updatedAt" bun:"updated_at,nullzero,notnull"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.prepare()
	return nil
}

var _ bun.BeforeAppendModelHook = (*User)(nil)

func (u *User) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		u.prepare()
	}
	return nil
}

func (u *User) prepare() {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}
	// sqlite compares stored times as text
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
}
