package database_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Warky-Devs/backoffice/pkg/common"
	"github.com/Warky-Devs/backoffice/pkg/common/adapters/database"
	"github.com/Warky-Devs/backoffice/pkg/models"
)

var testSource = database.PgSource{
	From:   "orders AS o",
	Select: []string{"o.id", "o.order_number"},
	Columns: database.Columns{
		"id":          "o.id",
		"orderNumber": "o.order_number",
		"status":      "o.status",
		"user":        "o.user_id",
		"createdAt":   "o.created_at",
	},
}

func TestPgStoreFindSQL(t *testing.T) {
	store := database.NewPgStore[models.Order](nil, testSource, models.ScanOrder)
	lower := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	upper := time.Date(2024, 1, 1, 23, 59, 59, 999e6, time.UTC)

	sql, args, err := store.FindSQL(common.Query{
		Predicates: []common.Predicate{
			common.Substring("orderNumber", "Ord_1"),
			common.Exact("status", "pending"),
			common.Range("createdAt", lower, upper),
		},
		Sort: []common.SortSpec{
			{Field: "createdAt", Direction: common.Descending},
			{Field: "id", Direction: common.Descending},
		},
		Window: common.Window{Offset: 20, Limit: 10},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT o.id, o.order_number FROM orders AS o"+
			" WHERE LOWER(o.order_number) LIKE $1 ESCAPE '!' AND o.status = $2 AND o.created_at >= $3 AND o.created_at <= $4"+
			" ORDER BY o.created_at DESC, o.id DESC LIMIT 10 OFFSET 20",
		sql)
	assert.Equal(t, []interface{}{"%ord!_1%", "pending", lower, upper}, args)
}

func TestPgStoreCountSQL(t *testing.T) {
	store := database.NewPgStore[models.Order](nil, testSource, models.ScanOrder)

	sql, args, err := store.CountSQL([]common.Predicate{common.Exact("user", "u1")})
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM orders AS o WHERE o.user_id = $1", sql)
	assert.Equal(t, []interface{}{"u1"}, args)

	sql, args, err = store.CountSQL(nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM orders AS o", sql)
	assert.Empty(t, args)
}

func TestPgStoreUnknownField(t *testing.T) {
	store := database.NewPgStore[models.Order](nil, testSource, models.ScanOrder)

	_, _, err := store.FindSQL(common.Query{Sort: []common.SortSpec{{Field: "password"}}, Window: common.Window{Limit: 1}})
	assert.Error(t, err)
	_, _, err = store.CountSQL([]common.Predicate{common.Exact("password", "x")})
	assert.Error(t, err)
}

func TestPgLookupSQL(t *testing.T) {
	lookup := database.NewPgLookup(nil, "users", models.UserColumns, "id")

	sql, args, err := lookup.SQL(common.Substring("email", "Alice@"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM users WHERE LOWER(email) LIKE $1 ESCAPE '!' ORDER BY created_at ASC, id ASC LIMIT 1", sql)
	assert.Equal(t, []interface{}{"%alice@%"}, args)
}
