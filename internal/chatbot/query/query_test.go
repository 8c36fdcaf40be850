package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-chatbot/internal/chatbot/daterange"
	"shop-chatbot/internal/chatbot/extract"
	"shop-chatbot/internal/models"
)

var (
	customer = models.CallerIdentity{Role: models.RoleCustomer, UserID: 42}
	admin    = models.CallerIdentity{Role: models.RoleAdmin, UserID: 1}
	testNow  = time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)
)

func specFor(text string) *extract.FilterSpec {
	return &extract.FilterSpec{
		Date:  daterange.Resolve(text, testNow),
		Limit: extract.DefaultLimit,
	}
}

// The owner-equality clause is always the first predicate for customers
// and never present for admins.
func TestScopingInvariant(t *testing.T) {
	spec := specFor("how many shipped orders this month")
	spec.Status = "shipped"
	spec.Ops.Count = true

	t.Run("customer owner clause first", func(t *testing.T) {
		req := OrdersCount(spec, customer)
		require.NotEmpty(t, req.Predicates)
		assert.Equal(t, "user_id = ?", req.Predicates[0].Expr)
		assert.Equal(t, []interface{}{int64(42)}, req.Predicates[0].Args)
	})

	t.Run("admin has no owner clause", func(t *testing.T) {
		req := OrdersCount(spec, admin)
		for _, p := range req.Predicates {
			assert.NotEqual(t, "user_id = ?", p.Expr)
		}
	})

	t.Run("order lookup scopes before order number", func(t *testing.T) {
		req := OrderByNumber(customer, "ORD-2025-0001")
		require.Len(t, req.Predicates, 2)
		assert.Equal(t, "o.user_id = ?", req.Predicates[0].Expr)
		assert.Equal(t, "o.order_number = ?", req.Predicates[1].Expr)
	})

	t.Run("admin order lookup by number only", func(t *testing.T) {
		req := OrderByNumber(admin, "ORD-2025-0001")
		require.Len(t, req.Predicates, 1)
		assert.Equal(t, "o.order_number = ?", req.Predicates[0].Expr)
	})
}

func TestOrdersPredicateOrder(t *testing.T) {
	spec := specFor("how many shipped orders this month")
	spec.Status = "shipped"

	req := OrdersCount(spec, customer)
	require.Len(t, req.Predicates, 3)
	assert.Equal(t, "user_id = ?", req.Predicates[0].Expr)
	assert.Equal(t, "status = ?", req.Predicates[1].Expr)
	assert.Contains(t, req.Predicates[2].Expr, "date_trunc('month', created_at)")
}

func TestOrdersCount_StatusFilteredTotalIsCount(t *testing.T) {
	// "total shipped orders" carries a sum marker but must count.
	spec := specFor("total shipped orders")
	spec.Status = "shipped"
	spec.Ops.Sum = true

	req := OrdersCount(spec, admin)
	assert.Equal(t, []string{"COUNT(*) AS count"}, req.Columns)
	require.Len(t, req.Predicates, 1)
	assert.Equal(t, "status = ?", req.Predicates[0].Expr)
	assert.Equal(t, []interface{}{"shipped"}, req.Predicates[0].Args)
}

func TestOrdersCount_AdminThisMonth(t *testing.T) {
	spec := specFor("how many orders this month")
	spec.Ops.Count = true

	req := OrdersCount(spec, admin)
	require.Len(t, req.Predicates, 1)
	assert.Contains(t, req.Predicates[0].Expr, "date_trunc('month', created_at) = date_trunc('month', now())")
	assert.Empty(t, req.Predicates[0].Args)
}

func TestOrdersExtreme(t *testing.T) {
	spec := specFor("highest order value")

	highest := OrdersExtreme(spec, customer, true)
	assert.Equal(t, []string{"total_amount DESC"}, highest.OrderBy)
	assert.Equal(t, 1, highest.Limit)

	lowest := OrdersExtreme(spec, customer, false)
	assert.Equal(t, []string{"total_amount ASC"}, lowest.OrderBy)
}

func TestMostOrdered(t *testing.T) {
	spec := specFor("most ordered products last month")

	req := MostOrdered(spec)
	assert.Equal(t, "order_items oi", req.Target)
	assert.Contains(t, req.Columns, "SUM(oi.quantity) AS total_ordered")
	assert.Contains(t, req.Columns, "SUM(oi.subtotal) AS total_revenue")
	assert.Equal(t, []string{"p.id", "p.name"}, req.GroupBy)
	assert.Equal(t, []string{"total_ordered DESC"}, req.OrderBy)
	assert.Equal(t, extract.DefaultLimit, req.Limit)

	// The date predicate addresses the parent order through its alias.
	require.Len(t, req.Predicates, 1)
	assert.Contains(t, req.Predicates[0].Expr, "o.created_at")
	assert.Contains(t, req.Predicates[0].Expr, "interval '1 month'")
}

func TestMostOrdered_TopN(t *testing.T) {
	spec := specFor("top 3 most ordered products")
	spec.Limit = 3
	assert.Equal(t, 3, MostOrdered(spec).Limit)
}

func TestProductsPredicates(t *testing.T) {
	spec := specFor("how many products in electronics below 5000")
	spec.ProductStatus = "active"
	spec.Category = &extract.Category{ID: 7, Name: "Electronics"}
	spec.Price = &extract.PriceBound{Max: 5000, Mode: "below"}

	req := ProductsCount(spec)
	require.Len(t, req.Predicates, 3)
	assert.Equal(t, "status = ?", req.Predicates[0].Expr)
	assert.Equal(t, "category_id = ?", req.Predicates[1].Expr)
	assert.Equal(t, "price < ?", req.Predicates[2].Expr)
	assert.Equal(t, []interface{}{5000.0}, req.Predicates[2].Args)
}

func TestProductsCount_ShowAllDropsStatus(t *testing.T) {
	spec := specFor("how many total products")
	spec.ShowAll = true
	spec.ProductStatus = ""

	req := ProductsCount(spec)
	assert.Empty(t, req.Predicates)
}

func TestProductsPriceBetween(t *testing.T) {
	spec := specFor("products between 1000 and 5000")
	spec.ProductStatus = "active"
	spec.Price = &extract.PriceBound{Min: 1000, Max: 5000, Mode: "between"}

	req := ProductsCount(spec)
	require.Len(t, req.Predicates, 2)
	assert.Equal(t, "price BETWEEN ? AND ?", req.Predicates[1].Expr)
	assert.Equal(t, []interface{}{1000.0, 5000.0}, req.Predicates[1].Args)
}

func TestCartQueries(t *testing.T) {
	count := CartCount(42)
	assert.Equal(t, "cart", count.Target)
	assert.Equal(t, "user_id = ?", count.Predicates[0].Expr)

	value := CartValue(42)
	assert.Equal(t, "cart c", value.Target)
	assert.Contains(t, value.Columns[0], "p.price * c.quantity")
	assert.Equal(t, "c.user_id = ?", value.Predicates[0].Expr)
}

func TestRevenue(t *testing.T) {
	bound := daterange.Resolve("revenue this year", testNow)
	req := Revenue(bound)

	require.Len(t, req.Predicates, 2)
	assert.Equal(t, "payment_status = 'paid'", req.Predicates[0].Expr)
	assert.Contains(t, req.Predicates[1].Expr, "date_part('year', created_at)")
}

func TestSpending_DateParamsBindAfterOwner(t *testing.T) {
	bound := daterange.Resolve("spent between january and march", testNow)
	req := Spending(42, bound)

	require.Len(t, req.Predicates, 2)
	assert.Equal(t, []interface{}{int64(42)}, req.Predicates[0].Args)
	assert.Equal(t, []interface{}{"2025-01-01", "2025-03-31"}, req.Predicates[1].Args)
}

func TestOrderByNumber_Columns(t *testing.T) {
	req := OrderByNumber(customer, "ORD-1")
	assert.Contains(t, req.Columns, "d.status AS delivery_status")
	assert.Contains(t, req.Joins[0], "LEFT JOIN deliveries d")
}

func TestLatestOrder(t *testing.T) {
	req := LatestOrder(42)
	assert.Equal(t, []string{"o.created_at DESC"}, req.OrderBy)
	assert.Equal(t, 1, req.Limit)
}

func TestCategoryListing(t *testing.T) {
	req := CategoryListing()
	assert.Contains(t, req.Joins[0], "p.status = 'active'")
	assert.Equal(t, []string{"c.id", "c.name"}, req.GroupBy)
}

func TestCustomersCount(t *testing.T) {
	req := CustomersCount()
	assert.Equal(t, "users", req.Target)
	assert.Equal(t, "role = 'customer'", req.Predicates[0].Expr)
}
