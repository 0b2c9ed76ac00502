package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Warky-Devs/backoffice/pkg/common"
	"github.com/Warky-Devs/backoffice/pkg/models"
	"github.com/Warky-Devs/backoffice/pkg/search"
)

func at(d, h, m, s, ms int) time.Time {
	return time.Date(2024, 1, d, h, m, s, ms*int(time.Millisecond), time.UTC)
}

func seedUsers() []models.User {
	return []models.User{
		{ID: "u1", FullName: "Alice Nguyen", Email: "alice@example.com", Role: "customer", CreatedAt: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "u2", FullName: "Bob Tran", Email: "bob@example.com", Role: "customer", CreatedAt: time.Date(2023, 12, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "u3", FullName: "Alice Older", Email: "alice@example.org", Role: "admin", CreatedAt: time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func seedOrders() []models.Order {
	return []models.Order{
		{ID: "o1", OrderNumber: "ORD-2024-000123", UserID: "u1", TotalAmount: 100, Status: models.OrderPending, PaymentStatus: models.PaymentPaid,
			ShippingInfo: models.ShippingInfo{RecipientName: "Nguyen Van A", Phone: "0901234567"}, CreatedAt: at(1, 8, 0, 0, 0)},
		{ID: "o2", OrderNumber: "ORD-2024-000124", UserID: "u2", TotalAmount: 250, Status: models.OrderShipping, PaymentStatus: models.PaymentPending,
			ShippingInfo: models.ShippingInfo{RecipientName: "Tran Thi B", Phone: "0907654321"}, CreatedAt: at(1, 23, 59, 59, 998)},
		{ID: "o3", OrderNumber: "ORD-2024-000255", UserID: "u1", TotalAmount: 75, Status: models.OrderDelivered, PaymentStatus: models.PaymentPaid,
			ShippingInfo: models.ShippingInfo{RecipientName: "nguyen van c", Phone: "0911111111"}, CreatedAt: at(2, 0, 0, 0, 0)},
		{ID: "o4", OrderNumber: "ORD-2024-100_50", UserID: "u2", TotalAmount: 300, Status: models.OrderCancelled, PaymentStatus: models.PaymentRefunded,
			ShippingInfo: models.ShippingInfo{RecipientName: "NGUYỄN VĂN Ý", Phone: "0922222222"}, CreatedAt: at(3, 12, 0, 0, 0)},
		{ID: "o5", OrderNumber: "ORD-2024-000355", UserID: "u2", TotalAmount: 50, Status: models.OrderPending, PaymentStatus: models.PaymentPending,
			ShippingInfo: models.ShippingInfo{RecipientName: "Pham E", Phone: "0933333333"}, CreatedAt: at(4, 12, 0, 0, 0)},
	}
}

func orderIDs(records []models.Order) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

var oldestFirst = []common.SortSpec{
	{Field: "createdAt", Direction: common.Ascending},
	{Field: "id", Direction: common.Ascending},
}

func all(predicates ...common.Predicate) common.Query {
	return common.Query{Predicates: predicates, Sort: oldestFirst, Window: common.Window{Limit: 100}}
}

// testOrderStore runs the behaviour every RecordStore backend must share
// against the seeded orders.
func testOrderStore(t *testing.T, store common.RecordStore[models.Order]) {
	ctx := context.Background()

	t.Run("substring ignores case", func(t *testing.T) {
		records, err := store.Find(ctx, all(common.Substring("shippingInfor.recipientName", "NGUYEN VAN")))
		require.NoError(t, err)
		assert.Equal(t, []string{"o1", "o3"}, orderIDs(records))
	})

	t.Run("substring folds non-ascii case", func(t *testing.T) {
		for _, pattern := range []string{"nguyễn", "NGUYỄN", "Nguyễn Văn ý"} {
			records, err := store.Find(ctx, all(common.Substring("shippingInfor.recipientName", pattern)))
			require.NoError(t, err)
			assert.Equal(t, []string{"o4"}, orderIDs(records), pattern)
		}
	})

	t.Run("substring wildcards are literal", func(t *testing.T) {
		records, err := store.Find(ctx, all(common.Substring("orderNumber", "100_5")))
		require.NoError(t, err)
		assert.Equal(t, []string{"o4"}, orderIDs(records))

		records, err = store.Find(ctx, all(common.Substring("orderNumber", "%")))
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("exact", func(t *testing.T) {
		records, err := store.Find(ctx, all(common.Exact("status", models.OrderPending)))
		require.NoError(t, err)
		assert.Equal(t, []string{"o1", "o5"}, orderIDs(records))
	})

	t.Run("range is inclusive", func(t *testing.T) {
		day := common.Range("createdAt", at(1, 0, 0, 0, 0), at(1, 23, 59, 59, 999))
		records, err := store.Find(ctx, all(day))
		require.NoError(t, err)
		assert.Equal(t, []string{"o1", "o2"}, orderIDs(records))

		records, err = store.Find(ctx, all(common.Range("createdAt", at(3, 0, 0, 0, 0), nil)))
		require.NoError(t, err)
		assert.Equal(t, []string{"o4", "o5"}, orderIDs(records))
	})

	t.Run("calendar day outside utc", func(t *testing.T) {
		ict := time.FixedZone("ICT", 7*60*60)
		day, ok := search.DateRangeCombinator{Field: "createdAt", Location: ict}.Combine(search.Params{
			"startDate": "2024-01-02",
			"endDate":   "2024-01-02",
		})
		require.True(t, ok)

		// 2024-01-02 in ICT runs from 01-01 17:00Z to 01-02 16:59:59.999Z
		records, err := store.Find(ctx, all(day))
		require.NoError(t, err)
		assert.Equal(t, []string{"o2", "o3"}, orderIDs(records))
	})

	t.Run("sort and window", func(t *testing.T) {
		records, err := store.Find(ctx, common.Query{
			Sort: []common.SortSpec{
				{Field: "createdAt", Direction: common.Descending},
				{Field: "id", Direction: common.Descending},
			},
			Window: common.Window{Offset: 1, Limit: 2},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"o4", "o3"}, orderIDs(records))

		records, err = store.Find(ctx, common.Query{Sort: oldestFirst, Window: common.Window{Offset: 10, Limit: 2}})
		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	})

	t.Run("count", func(t *testing.T) {
		total, err := store.Count(ctx, []common.Predicate{common.Exact("user", "u2")})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)

		total, err = store.Count(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
	})

	t.Run("loads customer", func(t *testing.T) {
		records, err := store.Find(ctx, all(common.Substring("orderNumber", "000123")))
		require.NoError(t, err)
		require.Len(t, records, 1)
		require.NotNil(t, records[0].User)
		assert.Equal(t, "alice@example.com", records[0].User.Email)
		assert.Equal(t, "0901234567", records[0].ShippingInfo.Phone)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := store.Find(ctx, all(common.Exact("password", "x")))
		assert.ErrorContains(t, err, `no column mapped for field "password"`)
	})

	if snap, ok := store.(common.SnapshotStore[models.Order]); ok {
		t.Run("find and count", func(t *testing.T) {
			records, total, err := snap.FindAndCount(ctx, common.Query{
				Predicates: []common.Predicate{common.Exact("user", "u2")},
				Sort:       oldestFirst,
				Window:     common.Window{Limit: 2},
			})
			require.NoError(t, err)
			assert.Equal(t, int64(3), total)
			assert.Equal(t, []string{"o2", "o4"}, orderIDs(records))
		})
	}
}

func testUserLookup(t *testing.T, lookup common.ReferenceLookup) {
	ctx := context.Background()

	id, found, err := lookup.ResolveID(ctx, common.Substring("email", "ALICE@example"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "u3", id, "oldest match wins")

	id, found, err = lookup.ResolveID(ctx, common.Substring("email", "alice@example.com"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "u1", id)

	id, found, err = lookup.ResolveID(ctx, common.Substring("email", "carol"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, id)
}
