package chatbot

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-chatbot/internal/chatbot/extract"
	"shop-chatbot/internal/common/errors"
	"shop-chatbot/internal/common/logger"
	"shop-chatbot/internal/models"
)

var (
	anonymous = models.CallerIdentity{Role: models.RoleAnonymous}
	customer  = models.CallerIdentity{Role: models.RoleCustomer, UserID: 42}
	admin     = models.CallerIdentity{Role: models.RoleAdmin, UserID: 1}

	testNow = time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)
)

// fakeStore records every QueryRequest and answers from a handler func.
type fakeStore struct {
	requests []models.QueryRequest
	handle   func(req models.QueryRequest) (models.QueryResult, error)
}

func (f *fakeStore) Execute(ctx context.Context, req models.QueryRequest) (models.QueryResult, error) {
	f.requests = append(f.requests, req)
	if f.handle == nil {
		return models.QueryResult{}, nil
	}
	return f.handle(req)
}

type fakeCatalog struct{}

func (fakeCatalog) Categories(ctx context.Context) ([]extract.Category, error) {
	return []extract.Category{{ID: 1, Name: "Electronics"}}, nil
}

func (fakeCatalog) Products(ctx context.Context) ([]extract.Product, error) {
	return []extract.Product{{ID: 10, Name: "Gaming Laptop"}}, nil
}

func (fakeCatalog) CategoryByFragment(ctx context.Context, fragment string) (*extract.Category, error) {
	if strings.Contains("electronics", fragment) {
		return &extract.Category{ID: 1, Name: "Electronics"}, nil
	}
	return nil, nil
}

func (fakeCatalog) ProductByFragment(ctx context.Context, fragment string) (*extract.Product, error) {
	if strings.Contains("gaming laptop", fragment) {
		return &extract.Product{ID: 10, Name: "Gaming Laptop"}, nil
	}
	return nil, nil
}

func singleRow(row models.Row) func(models.QueryRequest) (models.QueryResult, error) {
	return func(models.QueryRequest) (models.QueryResult, error) {
		return models.QueryResult{Rows: []models.Row{row}}, nil
	}
}

func newTestEngine(t *testing.T, store *fakeStore) *Engine {
	return NewEngine(store, fakeCatalog{}, logger.NewTestLogger(t),
		WithClock(func() time.Time { return testNow }),
		WithGreetingPicker(func(n int) int { return 0 }),
	)
}

func TestAnswer_EmptyMessage(t *testing.T) {
	engine := newTestEngine(t, &fakeStore{})

	for _, in := range []string{"", "   ", "\t\n"} {
		reply, err := engine.Answer(context.Background(), in, customer)
		require.NoError(t, err)
		assert.False(t, reply.Success)
		assert.Equal(t, "No message provided", reply.Message)
	}
}

func TestAnswer_OrderStatusByNumber(t *testing.T) {
	store := &fakeStore{handle: singleRow(models.Row{
		"id":             int64(7),
		"order_number":   "ORD-2025-0001",
		"status":         "shipped",
		"total_amount":   4500.0,
		"payment_status": "paid",
		"created_at":     time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC),
	})}
	engine := newTestEngine(t, store)

	reply, err := engine.Answer(context.Background(), "what is the status of ORD-2025-0001", customer)
	require.NoError(t, err)
	assert.True(t, reply.Success)
	assert.Equal(t, models.ReplyOrderStatus, reply.Type)
	assert.Contains(t, reply.Message, "ORD-2025-0001")
	assert.Contains(t, reply.Message, "Status:")
	assert.Contains(t, reply.Message, "Amount:")

	// Customer scoping comes before the order-number predicate.
	require.Len(t, store.requests, 1)
	preds := store.requests[0].Predicates
	require.Len(t, preds, 2)
	assert.Equal(t, "o.user_id = ?", preds[0].Expr)
	assert.Equal(t, "o.order_number = ?", preds[1].Expr)
	assert.Equal(t, []interface{}{"ORD-2025-0001"}, preds[1].Args)
}

func TestAnswer_OrderStatus_NotFound(t *testing.T) {
	engine := newTestEngine(t, &fakeStore{})

	reply, err := engine.Answer(context.Background(), "status of ORD-404", customer)
	require.NoError(t, err)
	assert.Equal(t, models.ReplyError, reply.Type)
	assert.Contains(t, reply.Message, "couldn't find an order")
}

func TestAnswer_OrderStatus_AnonymousLoginPrompt(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(t, store)

	reply, err := engine.Answer(context.Background(), "where is my order", anonymous)
	require.NoError(t, err)
	assert.Contains(t, reply.Message, "Please login to check your order status")
	assert.Empty(t, store.requests)
}

func TestAnswer_OrderItems(t *testing.T) {
	store := &fakeStore{handle: func(req models.QueryRequest) (models.QueryResult, error) {
		if strings.HasPrefix(req.Target, "order_items") {
			return models.QueryResult{Rows: []models.Row{
				{"product_name": "Gaming Laptop", "quantity": int64(1), "price": 250000.0, "subtotal": 250000.0},
			}}, nil
		}
		return models.QueryResult{Rows: []models.Row{{
			"id": int64(7), "order_number": "ORD-9", "total_amount": 250000.0,
			"status": "pending", "payment_status": "pending",
		}}}, nil
	}}
	engine := newTestEngine(t, store)

	reply, err := engine.Answer(context.Background(), "items of ORD-9", customer)
	require.NoError(t, err)
	assert.Contains(t, reply.Message, "Items in Order ORD-9:")
	assert.Contains(t, reply.Message, "1. Gaming Laptop")
	assert.Contains(t, reply.Message, "Total: LKR 250,000.00")
}

func TestAnswer_ProductSearchFallsBackToCategoryListing(t *testing.T) {
	store := &fakeStore{handle: func(req models.QueryRequest) (models.QueryResult, error) {
		return models.QueryResult{Rows: []models.Row{
			{"name": "Electronics", "product_count": int64(12)},
			{"name": "Clothing", "product_count": int64(7)},
		}}, nil
	}}
	engine := newTestEngine(t, store)

	reply, err := engine.Answer(context.Background(), "show me products", customer)
	require.NoError(t, err)
	assert.Equal(t, models.ReplyProductList, reply.Type)
	assert.Contains(t, reply.Message, "Our Product Categories:")
	assert.Contains(t, reply.Message, "• Electronics (12 products)")

	require.Len(t, store.requests, 1)
	assert.Equal(t, "categories c", store.requests[0].Target)
}

func TestAnswer_ProductSearchJoinsAllKeywords(t *testing.T) {
	store := &fakeStore{handle: singleRow(models.Row{
		"name": "Coffee Maker", "price": 9500.0, "stock_quantity": int64(3),
		"category_name": "Home & Kitchen",
	})}
	engine := newTestEngine(t, store)

	reply, err := engine.Answer(context.Background(), "find a coffee maker", customer)
	require.NoError(t, err)
	assert.Equal(t, models.ReplyProductSearch, reply.Type)
	assert.Contains(t, reply.Message, "Coffee Maker")

	require.Len(t, store.requests, 1)
	req := store.requests[0]
	assert.Equal(t, []interface{}{"%coffee%maker%", "%coffee%maker%"}, req.Predicates[0].Args)
	assert.Equal(t, extract.DefaultLimit, req.Limit)
}

func TestAnswer_ProductSearchNoMatches(t *testing.T) {
	engine := newTestEngine(t, &fakeStore{})

	reply, err := engine.Answer(context.Background(), "find a laptop", customer)
	require.NoError(t, err)
	assert.Contains(t, reply.Message, "couldn't find products matching your search")
}

func TestAnswer_DefaultLimitOption(t *testing.T) {
	store := &fakeStore{handle: singleRow(models.Row{
		"name": "Laptop", "total_ordered": int64(2), "total_revenue": 400.0,
	})}
	engine := NewEngine(store, fakeCatalog{}, logger.NewTestLogger(t),
		WithClock(func() time.Time { return testNow }),
		WithDefaultLimit(3),
	)

	_, err := engine.Answer(context.Background(), "most ordered products", customer)
	require.NoError(t, err)
	require.Len(t, store.requests, 1)
	assert.Equal(t, 3, store.requests[0].Limit)
}

func TestAnswer_AdminOrdersThisMonth(t *testing.T) {
	store := &fakeStore{handle: singleRow(models.Row{"count": int64(12)})}
	engine := newTestEngine(t, store)

	reply, err := engine.Answer(context.Background(), "how many orders this month", admin)
	require.NoError(t, err)
	assert.Equal(t, "There are 12 orders this month in the system.", reply.Message)
	assert.Equal(t, models.ReplyQuantitative, reply.Type)

	require.Len(t, store.requests, 1)
	req := store.requests[0]
	assert.Equal(t, []string{"COUNT(*) AS count"}, req.Columns)
	require.Len(t, req.Predicates, 1)
	assert.Contains(t, req.Predicates[0].Expr, "date_trunc('month', created_at) = date_trunc('month', now())")
}

func TestAnswer_CustomerShippedOrdersTotalIsCount(t *testing.T) {
	store := &fakeStore{handle: singleRow(models.Row{"count": int64(3)})}
	engine := newTestEngine(t, store)

	reply, err := engine.Answer(context.Background(), "total shipped orders", customer)
	require.NoError(t, err)
	assert.Equal(t, "You have 3 shipped orders.", reply.Message)

	require.Len(t, store.requests, 1)
	req := store.requests[0]
	assert.Equal(t, []string{"COUNT(*) AS count"}, req.Columns)
	assert.Equal(t, "user_id = ?", req.Predicates[0].Expr)
	assert.Equal(t, "status = ?", req.Predicates[1].Expr)
}

func TestAnswer_AnonymousOrdersAggregate(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(t, store)

	reply, err := engine.Answer(context.Background(), "how many orders do i have", anonymous)
	require.NoError(t, err)
	assert.Contains(t, reply.Message, "Please login to check your order information.")
	assert.Empty(t, store.requests)
}

func TestAnswer_MostOrderedLastMonth(t *testing.T) {
	store := &fakeStore{handle: func(req models.QueryRequest) (models.QueryResult, error) {
		return models.QueryResult{Rows: []models.Row{
			{"name": "Laptop", "total_ordered": int64(42), "total_revenue": 84000.0},
			{"name": "Phone", "total_ordered": int64(17), "total_revenue": 34000.0},
		}}, nil
	}}
	engine := newTestEngine(t, store)

	reply, err := engine.Answer(context.Background(), "most ordered products last month", customer)
	require.NoError(t, err)
	assert.Contains(t, reply.Message, "Most Ordered Products last month:")
	assert.Contains(t, reply.Message, "1. Laptop")
	assert.Contains(t, reply.Message, "Quantity: 42")
	assert.Contains(t, reply.Message, "Revenue: LKR 84,000.00")

	require.Len(t, store.requests, 1)
	req := store.requests[0]
	assert.Contains(t, req.Columns, "SUM(oi.quantity) AS total_ordered")
	assert.Equal(t, extract.DefaultLimit, req.Limit)
	require.Len(t, req.Predicates, 1)
	assert.Contains(t, req.Predicates[0].Expr, "o.created_at")
}

func TestAnswer_Spending(t *testing.T) {
	store := &fakeStore{handle: singleRow(models.Row{"total": 1200.0})}
	engine := newTestEngine(t, store)

	reply, err := engine.Answer(context.Background(), "how much have i spent", customer)
	require.NoError(t, err)
	assert.Equal(t, "You have spent a total of LKR 1,200.00.", reply.Message)
}

func TestAnswer_CartCount(t *testing.T) {
	store := &fakeStore{handle: func(req models.QueryRequest) (models.QueryResult, error) {
		if strings.Contains(req.Columns[0], "COUNT") {
			return models.QueryResult{Rows: []models.Row{{"count": int64(3)}}}, nil
		}
		return models.QueryResult{Rows: []models.Row{{"total_qty": int64(5)}}}, nil
	}}
	engine := newTestEngine(t, store)

	reply, err := engine.Answer(context.Background(), "how many in my cart", customer)
	require.NoError(t, err)
	assert.Equal(t, "You have 3 items in your cart with a total quantity of 5.", reply.Message)
}

func TestAnswer_CartRequiresLogin(t *testing.T) {
	engine := newTestEngine(t, &fakeStore{})

	reply, err := engine.Answer(context.Background(), "how many in my cart", anonymous)
	require.NoError(t, err)
	assert.Equal(t, "Please login to check your cart.", reply.Message)
}

func TestAnswer_ProductStock(t *testing.T) {
	store := &fakeStore{handle: singleRow(models.Row{
		"name": "Gaming Laptop", "stock_quantity": int64(4), "status": "active",
	})}
	engine := newTestEngine(t, store)

	reply, err := engine.Answer(context.Background(), "is the laptop available", customer)
	require.NoError(t, err)
	assert.Equal(t, "Gaming Laptop has 4 units in stock.", reply.Message)
}

func TestAnswer_RevenueAdmin(t *testing.T) {
	store := &fakeStore{handle: singleRow(models.Row{"total": 50000.0})}
	engine := newTestEngine(t, store)

	reply, err := engine.Answer(context.Background(), "total revenue this month", admin)
	require.NoError(t, err)
	assert.Equal(t, "Total revenue from all paid orders this month is LKR 50,000.00.", reply.Message)

	req := store.requests[0]
	assert.Equal(t, "payment_status = 'paid'", req.Predicates[0].Expr)
}

func TestAnswer_AdminCustomersCount(t *testing.T) {
	store := &fakeStore{handle: singleRow(models.Row{"count": int64(9)})}
	engine := newTestEngine(t, store)

	reply, err := engine.Answer(context.Background(), "how many customers are registered", admin)
	require.NoError(t, err)
	assert.Equal(t, "There are 9 customers registered in the system.", reply.Message)
}

func TestAnswer_QuantitativeFallback(t *testing.T) {
	engine := newTestEngine(t, &fakeStore{})

	reply, err := engine.Answer(context.Background(), "how many", customer)
	require.NoError(t, err)
	assert.Equal(t, models.ReplyInfo, reply.Type)
	assert.Contains(t, reply.Message, "Please specify what you'd like to know about.")
}

func TestAnswer_Greeting(t *testing.T) {
	engine := newTestEngine(t, &fakeStore{})

	reply, err := engine.Answer(context.Background(), "hello", customer)
	require.NoError(t, err)
	assert.Equal(t, models.ReplyGreeting, reply.Type)
	assert.Contains(t, reply.Message, "Hello! How can I help you today?")
	assert.Contains(t, reply.Message, "• Order status")
}

func TestAnswer_General(t *testing.T) {
	engine := newTestEngine(t, &fakeStore{})

	reply, err := engine.Answer(context.Background(), "Tell me a joke", customer)
	require.NoError(t, err)
	assert.Equal(t, models.ReplyGeneral, reply.Type)
	assert.Contains(t, reply.Message, `I understand you're asking about: "Tell me a joke"`)
}

func TestAnswer_StoreFailurePropagates(t *testing.T) {
	store := &fakeStore{handle: func(models.QueryRequest) (models.QueryResult, error) {
		return models.QueryResult{}, errors.NewQueryExecutionFailedError(assert.AnError)
	}}
	engine := newTestEngine(t, store)

	_, err := engine.Answer(context.Background(), "how many orders this month", admin)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeQueryExecutionFailed, errors.CodeOf(err))
}
