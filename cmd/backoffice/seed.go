package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"gorm.io/gorm"

	"github.com/Warky-Devs/backoffice/pkg/logger"
	"github.com/Warky-Devs/backoffice/pkg/models"
)

var (
	seedStatuses        = []string{models.OrderPending, models.OrderConfirmed, models.OrderShipping, models.OrderDelivered, models.OrderCancelled}
	seedPaymentStatuses = []string{models.PaymentPending, models.PaymentPaid, models.PaymentFailed, models.PaymentRefunded}
	seedPaymentMethods  = []string{"cod", "card", "bank_transfer"}
)

func seedCmd() *cobra.Command {
	var users, ordersPerUser int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo users and orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			b, err := openBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			u, o := demoData(users, ordersPerUser, time.Now().UTC())
			if err := b.seed(cmd.Context(), u, o); err != nil {
				return err
			}
			logger.Info("Seeded %d users and %d orders", len(u), len(o))
			return nil
		},
	}
	cmd.Flags().IntVar(&users, "users", 20, "number of demo users")
	cmd.Flags().IntVar(&ordersPerUser, "orders", 5, "orders per demo user")
	return cmd
}

// demoData builds users and their orders spread over the 30 days before now
func demoData(userCount, ordersPerUser int, now time.Time) ([]models.User, []models.Order) {
	users := make([]models.User, 0, userCount)
	orders := make([]models.Order, 0, userCount*ordersPerUser)
	for i := 0; i < userCount; i++ {
		created := now.Add(-time.Duration(30*24-i) * time.Hour)
		user := models.User{
			ID:        uuid.NewString(),
			FullName:  fmt.Sprintf("Demo Customer %02d", i+1),
			Email:     fmt.Sprintf("customer%02d@example.com", i+1),
			Phone:     fmt.Sprintf("09%08d", rand.IntN(1e8)),
			Role:      "customer",
			CreatedAt: created,
			UpdatedAt: created,
		}
		users = append(users, user)

		for j := 0; j < ordersPerUser; j++ {
			// distinct seconds keep generated order numbers unique
			seq := (i*ordersPerUser + j) % 3600
			placed := created.Add(time.Duration(rand.IntN(29*24)) * time.Hour).Add(time.Duration(seq) * time.Second)
			amount := float64(50+rand.IntN(950)) * 1000
			orders = append(orders, models.Order{
				ID:            uuid.NewString(),
				OrderNumber:   models.GenerateOrderNumber(placed),
				UserID:        user.ID,
				TotalAmount:   amount + 30000,
				ShippingFee:   30000,
				PaymentMethod: seedPaymentMethods[rand.IntN(len(seedPaymentMethods))],
				PaymentStatus: seedPaymentStatuses[rand.IntN(len(seedPaymentStatuses))],
				Status:        seedStatuses[rand.IntN(len(seedStatuses))],
				ShippingInfo: models.ShippingInfo{
					RecipientName: user.FullName,
					Phone:         user.Phone,
					Address:       fmt.Sprintf("%d Demo Street", j+1),
				},
				CreatedAt: placed,
				UpdatedAt: placed,
			})
		}
	}
	return users, orders
}

func (b *backend) seed(ctx context.Context, users []models.User, orders []models.Order) error {
	switch {
	case b.gorm != nil:
		return b.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.CreateInBatches(&users, 100).Error; err != nil {
				return errors.Wrap(err, "seed users")
			}
			return errors.Wrap(tx.CreateInBatches(&orders, 100).Error, "seed orders")
		})
	case b.bun != nil:
		return b.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewInsert().Model(&users).Exec(ctx); err != nil {
				return errors.Wrap(err, "seed users")
			}
			_, err := tx.NewInsert().Model(&orders).Exec(ctx)
			return errors.Wrap(err, "seed orders")
		})
	case b.pool != nil:
		return b.seedPostgres(ctx, users, orders)
	default:
		return errors.New("no store open")
	}
}

const seedBatch = 500

func (b *backend) seedPostgres(ctx context.Context, users []models.User, orders []models.Order) error {
	var inserts []squirrel.InsertBuilder
	for start := 0; start < len(users); start += seedBatch {
		q := squirrel.Insert("users").
			Columns("id", "full_name", "email", "phone", "role", "created_at", "updated_at").
			PlaceholderFormat(squirrel.Dollar)
		for _, u := range users[start:min(start+seedBatch, len(users))] {
			q = q.Values(u.ID, u.FullName, u.Email, u.Phone, u.Role, u.CreatedAt, u.UpdatedAt)
		}
		inserts = append(inserts, q)
	}
	for start := 0; start < len(orders); start += seedBatch {
		q := squirrel.Insert("orders").
			Columns("id", "order_number", "user_id", "total_amount", "shipping_fee", "tax", "discount",
				"payment_method", "payment_status", "status", "notes",
				"shipping_recipient_name", "shipping_phone", "shipping_address", "created_at", "updated_at").
			PlaceholderFormat(squirrel.Dollar)
		for _, o := range orders[start:min(start+seedBatch, len(orders))] {
			q = q.Values(o.ID, o.OrderNumber, o.UserID, o.TotalAmount, o.ShippingFee, o.Tax, o.Discount,
				o.PaymentMethod, o.PaymentStatus, o.Status, o.Notes,
				o.ShippingInfo.RecipientName, o.ShippingInfo.Phone, o.ShippingInfo.Address, o.CreatedAt, o.UpdatedAt)
		}
		inserts = append(inserts, q)
	}

	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "seed begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, insert := range inserts {
		sqlStr, args, err := insert.ToSql()
		if err != nil {
			return errors.Wrap(err, "seed build insert")
		}
		if _, err := tx.Exec(ctx, sqlStr, args...); err != nil {
			return errors.Wrap(err, "seed insert")
		}
	}
	return errors.Wrap(tx.Commit(ctx), "seed commit")
}
