// Package chatbot wires classification, extraction, query synthesis and
// response rendering into the answer pipeline. The engine is stateless
// between requests; identity and time are threaded in explicitly.
package chatbot

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"shop-chatbot/internal/chatbot/extract"
	"shop-chatbot/internal/chatbot/intent"
	"shop-chatbot/internal/chatbot/patterns"
	"shop-chatbot/internal/chatbot/query"
	"shop-chatbot/internal/chatbot/respond"
	"shop-chatbot/internal/common/errors"
	"shop-chatbot/internal/common/logger"
	"shop-chatbot/internal/common/metrics"
	"shop-chatbot/internal/common/observability"
	"shop-chatbot/internal/models"
)

// Store executes one structured read query against the data layer.
type Store interface {
	Execute(ctx context.Context, req models.QueryRequest) (models.QueryResult, error)
}

// Engine answers chat messages. Construct with NewEngine.
type Engine struct {
	store        Store
	extractor    *extract.Extractor
	log          logger.Logger
	tracer       *observability.Tracing
	defaultLimit int

	// now and pick are injectable for deterministic tests.
	now  func() time.Time
	pick func(n int) int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock fixes the reference time used for date-range resolution.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithGreetingPicker fixes the greeting variant selection.
func WithGreetingPicker(pick func(n int) int) Option {
	return func(e *Engine) { e.pick = pick }
}

// WithTracing attaches span creation around each answered message.
func WithTracing(t *observability.Tracing) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithDefaultLimit overrides the listing row cap used when the message
// carries no "top N" phrase.
func WithDefaultLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.defaultLimit = n
		}
	}
}

func NewEngine(store Store, catalog extract.Catalog, log logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:        store,
		log:          log,
		defaultLimit: extract.DefaultLimit,
		now:          time.Now,
		pick:         rand.Intn,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.extractor = extract.New(catalog, log, e.defaultLimit)
	return e
}

// Answer runs the full pipeline for one message. A nil error with a
// failed reply means the input was rejected (empty message); a non-nil
// error means data access failed and the transport should surface a
// server error.
func (e *Engine) Answer(ctx context.Context, message string, caller models.CallerIdentity) (*models.Reply, error) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return models.FailureReply("No message provided"), nil
	}

	normalized := strings.ToLower(trimmed)
	classified := intent.Classify(normalized)

	if e.tracer != nil {
		spanCtx, span := e.tracer.StartSpan(ctx, "chatbot.answer",
			attribute.String("chat.intent", string(classified)))
		defer span.End()
		ctx = spanCtx
	}

	start := time.Now()
	metrics.ChatRequestsTotal.WithLabelValues(string(classified)).Inc()
	defer func() {
		metrics.ChatRequestDuration.WithLabelValues(string(classified)).Observe(time.Since(start).Seconds())
	}()

	reply, err := e.dispatch(ctx, classified, normalized, trimmed, caller)
	if err != nil {
		metrics.ChatRequestsFailed.WithLabelValues(string(classified), string(errors.CodeOf(err))).Inc()
		e.log.Error("answer failed", map[string]interface{}{
			"intent": string(classified),
			"error":  err.Error(),
		})
		return nil, err
	}
	return reply, nil
}

func (e *Engine) dispatch(ctx context.Context, classified intent.Intent, normalized, original string, caller models.CallerIdentity) (*models.Reply, error) {
	switch classified {
	case intent.OrderStatus:
		return e.handleOrderStatus(ctx, normalized, caller)
	case intent.OrderHistory:
		return e.handleOrderHistory(ctx, caller)
	case intent.ProductSearch:
		return e.handleProductSearch(ctx, normalized)
	case intent.ReturnPolicy:
		return models.InfoReply(respond.ReturnPolicy(), models.ReplyReturnPolicy), nil
	case intent.Shipping:
		return e.handleShipping(ctx, caller)
	case intent.Payment:
		return models.InfoReply(respond.PaymentMethods(), models.ReplyPayment), nil
	case intent.Greeting:
		return models.InfoReply(respond.Greeting(e.pick(respond.GreetingCount), caller.Role), models.ReplyGreeting), nil
	case intent.Help:
		return models.InfoReply(respond.Help(caller.Role), models.ReplyHelp), nil
	case intent.Quantitative:
		return e.handleQuantitative(ctx, normalized, caller)
	default:
		return models.InfoReply(respond.General(original), models.ReplyGeneral), nil
	}
}

const orderNotFound = "I couldn't find an order with that number. Please check your order number and try again."

func (e *Engine) handleOrderStatus(ctx context.Context, normalized string, caller models.CallerIdentity) (*models.Reply, error) {
	if !caller.IsLoggedIn() && !caller.IsAdmin() {
		return models.InfoReply("Please login to check your order status. You can login from the top menu.", models.ReplyInfo), nil
	}

	if ref := extract.OrderReference(normalized); ref != "" {
		orderNumber := strings.ToUpper(ref)
		res, err := e.store.Execute(ctx, query.OrderByNumber(caller, orderNumber))
		if err != nil {
			return nil, err
		}
		if res.Empty() {
			return models.InfoReply(orderNotFound, models.ReplyError), nil
		}
		order := res.First()

		if patterns.ItemsOfOrder.MatchString(normalized) || patterns.ItemsOfOrderAlt.MatchString(normalized) {
			items, err := e.store.Execute(ctx, query.OrderItems(order.Int("id")))
			if err != nil {
				return nil, err
			}
			msg := respond.OrderItems(order.String("order_number"), items.Rows, order.Float("total_amount"))
			return models.InfoReply(msg, models.ReplyOrderStatus), nil
		}

		return models.InfoReply(respond.OrderStatus(order, false), models.ReplyOrderStatus), nil
	}

	// No order reference: fall back to the caller's latest order.
	res, err := e.store.Execute(ctx, query.LatestOrder(caller.UserID))
	if err != nil {
		return nil, err
	}
	if res.Empty() {
		return models.InfoReply("You don't have any orders yet. Browse our products to place your first order!", models.ReplyInfo), nil
	}
	return models.InfoReply(respond.OrderStatus(res.First(), true), models.ReplyOrderStatus), nil
}

func (e *Engine) handleOrderHistory(ctx context.Context, caller models.CallerIdentity) (*models.Reply, error) {
	if !caller.IsLoggedIn() && !caller.IsAdmin() {
		return models.InfoReply("Please login to view your order history.", models.ReplyInfo), nil
	}

	res, err := e.store.Execute(ctx, query.OrderHistoryTotals(caller.UserID))
	if err != nil {
		return nil, err
	}
	row := res.First()
	if row.Int("total") == 0 {
		return models.InfoReply("You haven't placed any orders yet. Start shopping to see your order history!", models.ReplyInfo), nil
	}
	return models.InfoReply(respond.OrderHistory(row.Int("total"), row.Float("total_spent")), models.ReplyOrderHistory), nil
}

// handleProductSearch searches by the known product keywords; without
// any, it falls back to the category overview. Multiple keywords narrow
// the match ("coffee maker" searches %coffee%maker%).
func (e *Engine) handleProductSearch(ctx context.Context, normalized string) (*models.Reply, error) {
	terms := patterns.SearchKeywords.FindAllString(normalized, -1)
	if len(terms) == 0 {
		res, err := e.store.Execute(ctx, query.CategoryListing())
		if err != nil {
			return nil, err
		}
		return models.InfoReply(respond.CategoryList(res.Rows), models.ReplyProductList), nil
	}

	res, err := e.store.Execute(ctx, query.ProductSearch("%"+strings.Join(terms, "%")+"%", e.defaultLimit))
	if err != nil {
		return nil, err
	}
	if res.Empty() {
		return models.InfoReply("I couldn't find products matching your search. Try browsing our product categories!", models.ReplyInfo), nil
	}
	return models.InfoReply(respond.ProductSearch(res.Rows), models.ReplyProductSearch), nil
}

func (e *Engine) handleShipping(ctx context.Context, caller models.CallerIdentity) (*models.Reply, error) {
	if caller.IsLoggedIn() {
		res, err := e.store.Execute(ctx, query.LatestOrder(caller.UserID))
		if err != nil {
			return nil, err
		}
		if !res.Empty() {
			return models.InfoReply(respond.ShippingInfo(res.First()), models.ReplyShipping), nil
		}
	}
	return models.InfoReply(respond.ShippingPolicy(), models.ReplyShipping), nil
}

// handleQuantitative walks the target ladder in fixed order: most-ordered
// ranking, admin system-wide aggregates, orders, products, cart, stock,
// categories, revenue, spending, then the capability fallback. Within a
// rung, operation precedence is count, average, sum, then max/min.
func (e *Engine) handleQuantitative(ctx context.Context, normalized string, caller models.CallerIdentity) (*models.Reply, error) {
	spec, err := e.extractor.Extract(ctx, normalized, e.now())
	if err != nil {
		return nil, err
	}
	period := spec.Date.Descriptor

	if spec.Targets.MostOrdered && (spec.Targets.Orders || spec.Targets.Products || spec.Targets.Items) {
		res, err := e.store.Execute(ctx, query.MostOrdered(spec))
		if err != nil {
			return nil, err
		}
		return models.InfoReply(respond.MostOrdered(res.Rows, period), models.ReplyQuantitative), nil
	}

	if caller.IsAdmin() {
		if reply, handled, err := e.adminAggregates(ctx, spec, period); handled || err != nil {
			return reply, err
		}
	}

	hasOp := spec.Ops.Count || spec.Ops.Sum || spec.Ops.Average || spec.Ops.Max || spec.Ops.Min
	if spec.Targets.Orders && (hasOp || spec.Status != "" || spec.PaymentStatus != "") {
		return e.ordersAggregate(ctx, spec, period, caller)
	}

	if spec.Targets.Products && (spec.Ops.Count || spec.Ops.Sum || spec.Ops.Average) {
		if reply, handled, err := e.productsAggregate(ctx, spec, normalized); handled || err != nil {
			return reply, err
		}
	}

	if spec.Targets.Cart && (spec.Ops.Count || spec.Ops.Sum) {
		return e.cartAggregate(ctx, spec, caller)
	}

	if spec.Targets.Stock || spec.Targets.StockCount {
		if reply, handled, err := e.stockAggregate(ctx, spec); handled || err != nil {
			return reply, err
		}
	}

	if spec.Targets.Categories && spec.Ops.Count {
		row, err := e.executeOne(ctx, query.CategoriesCount())
		if err != nil {
			return nil, err
		}
		return models.InfoReply(respond.CategoriesCount(row.Int("count")), models.ReplyQuantitative), nil
	}

	if spec.Targets.Revenue {
		row, err := e.executeOne(ctx, query.Revenue(spec.Date))
		if err != nil {
			return nil, err
		}
		return models.InfoReply(respond.Revenue(row.Float("total"), period, caller.IsAdmin()), models.ReplyQuantitative), nil
	}

	if spec.Targets.Spending && !spec.Targets.Orders {
		if !caller.IsLoggedIn() {
			return models.InfoReply("Please login to check your spending information.", models.ReplyInfo), nil
		}
		row, err := e.executeOne(ctx, query.Spending(caller.UserID, spec.Date))
		if err != nil {
			return nil, err
		}
		return models.InfoReply(respond.Spending(row.Float("total"), period), models.ReplyQuantitative), nil
	}

	return models.InfoReply(respond.QuantitativeHelp(), models.ReplyInfo), nil
}

// adminAggregates covers the system-wide questions only admins may ask:
// registered customers, all-orders counts and averages. These are checked
// before the generic orders rung so "total orders" keeps its system-wide
// phrasing for admins.
func (e *Engine) adminAggregates(ctx context.Context, spec *extract.FilterSpec, period string) (*models.Reply, bool, error) {
	if spec.Targets.Customers && spec.Ops.Count {
		row, err := e.executeOne(ctx, query.CustomersCount())
		if err != nil {
			return nil, true, err
		}
		return models.InfoReply(respond.CustomersCount(row.Int("count")), models.ReplyQuantitative), true, nil
	}

	if spec.Targets.AllOrders && spec.Ops.Count {
		row, err := e.executeOne(ctx, query.AllOrdersCount(spec.Date))
		if err != nil {
			return nil, true, err
		}
		return models.InfoReply(respond.AllOrdersCount(row.Int("count"), period), models.ReplyQuantitative), true, nil
	}

	if spec.Targets.AllOrders && spec.Ops.Average {
		row, err := e.executeOne(ctx, query.AllOrdersAverage(spec.Date))
		if err != nil {
			return nil, true, err
		}
		return models.InfoReply(respond.AllOrdersAverage(row.Float("avg_amount"), row.Int("count"), period), models.ReplyQuantitative), true, nil
	}

	return nil, false, nil
}

func (e *Engine) ordersAggregate(ctx context.Context, spec *extract.FilterSpec, period string, caller models.CallerIdentity) (*models.Reply, error) {
	if !caller.IsLoggedIn() && !caller.IsAdmin() {
		return models.InfoReply("Please login to check your order information.", models.ReplyInfo), nil
	}
	admin := caller.IsAdmin()

	// A status-filtered "total" is a count, not a sum.
	isCount := spec.Ops.Count ||
		(spec.Ops.Sum && (spec.Status != "" || spec.PaymentStatus != "")) ||
		(!spec.Ops.Sum && !spec.Ops.Average && !spec.Ops.Max && !spec.Ops.Min)

	switch {
	case isCount:
		row, err := e.executeOne(ctx, query.OrdersCount(spec, caller))
		if err != nil {
			return nil, err
		}
		statusText := spec.Status
		if statusText == "" && spec.PaymentStatus != "" {
			statusText = spec.PaymentStatus
		}
		return models.InfoReply(respond.OrdersCount(row.Int("count"), statusText, period, admin), models.ReplyQuantitative), nil

	case spec.Ops.Average:
		row, err := e.executeOne(ctx, query.OrdersAverage(spec, caller))
		if err != nil {
			return nil, err
		}
		return models.InfoReply(respond.OrdersAverage(row.Float("avg_amount"), row.Int("count"), period, admin), models.ReplyQuantitative), nil

	case spec.Ops.Sum:
		row, err := e.executeOne(ctx, query.OrdersSum(spec, caller))
		if err != nil {
			return nil, err
		}
		return models.InfoReply(respond.OrdersSum(row.Float("total"), period, admin), models.ReplyQuantitative), nil

	default: // max or min
		res, err := e.store.Execute(ctx, query.OrdersExtreme(spec, caller, spec.Ops.Max))
		if err != nil {
			return nil, err
		}
		if res.Empty() {
			return models.InfoReply("No orders found"+period+".", models.ReplyInfo), nil
		}
		return models.InfoReply(respond.OrdersExtreme(res.First(), period, spec.Ops.Max), models.ReplyQuantitative), nil
	}
}

func (e *Engine) productsAggregate(ctx context.Context, spec *extract.FilterSpec, normalized string) (*models.Reply, bool, error) {
	categoryName := ""
	if spec.Category != nil {
		categoryName = spec.Category.Name
	}

	switch {
	case spec.Ops.Count:
		row, err := e.executeOne(ctx, query.ProductsCount(spec))
		if err != nil {
			return nil, true, err
		}
		count := row.Int("count")

		if spec.ShowAll && spec.Category == nil && spec.Price == nil {
			activeRow, err := e.executeOne(ctx, query.ActiveProductsCount())
			if err != nil {
				return nil, true, err
			}
			return models.InfoReply(respond.ProductsBreakdown(count, activeRow.Int("count")), models.ReplyQuantitative), true, nil
		}
		if spec.ShowAll {
			return models.InfoReply(respond.ProductsCountAll(count, categoryName, spec.Price), models.ReplyQuantitative), true, nil
		}
		return models.InfoReply(respond.ProductsCount(count, spec.ProductStatus, categoryName, spec.Price), models.ReplyQuantitative), true, nil

	case spec.Ops.Average:
		row, err := e.executeOne(ctx, query.ProductsAveragePrice(spec))
		if err != nil {
			return nil, true, err
		}
		return models.InfoReply(respond.ProductsAveragePrice(row.Float("avg_price"), spec.ProductStatus, categoryName, spec.Price), models.ReplyQuantitative), true, nil

	case spec.Ops.Sum && patterns.ProductValue.MatchString(normalized):
		row, err := e.executeOne(ctx, query.ProductsValue(spec))
		if err != nil {
			return nil, true, err
		}
		return models.InfoReply(respond.ProductsValue(row.Float("total_value"), spec.ProductStatus, categoryName, spec.Price), models.ReplyQuantitative), true, nil
	}

	return nil, false, nil
}

func (e *Engine) cartAggregate(ctx context.Context, spec *extract.FilterSpec, caller models.CallerIdentity) (*models.Reply, error) {
	if !caller.IsLoggedIn() {
		return models.InfoReply("Please login to check your cart.", models.ReplyInfo), nil
	}

	if spec.Ops.Count {
		countRow, err := e.executeOne(ctx, query.CartCount(caller.UserID))
		if err != nil {
			return nil, err
		}
		qtyRow, err := e.executeOne(ctx, query.CartQuantity(caller.UserID))
		if err != nil {
			return nil, err
		}
		return models.InfoReply(respond.CartCount(countRow.Int("count"), qtyRow.Int("total_qty")), models.ReplyQuantitative), nil
	}

	row, err := e.executeOne(ctx, query.CartValue(caller.UserID))
	if err != nil {
		return nil, err
	}
	return models.InfoReply(respond.CartValue(row.Float("total")), models.ReplyQuantitative), nil
}

func (e *Engine) stockAggregate(ctx context.Context, spec *extract.FilterSpec) (*models.Reply, bool, error) {
	if spec.Product != nil {
		res, err := e.store.Execute(ctx, query.ProductStock(spec.Product.ID))
		if err != nil {
			return nil, true, err
		}
		if !res.Empty() {
			row := res.First()
			msg := respond.ProductStock(row.String("name"), row.Int("stock_quantity"), row.String("status"))
			return models.InfoReply(msg, models.ReplyQuantitative), true, nil
		}
	}

	if spec.Targets.Stock && spec.Targets.Products {
		row, err := e.executeOne(ctx, query.TotalActiveStock())
		if err != nil {
			return nil, true, err
		}
		return models.InfoReply(respond.TotalStock(row.Int("total_stock")), models.ReplyQuantitative), true, nil
	}

	return nil, false, nil
}

func (e *Engine) executeOne(ctx context.Context, req models.QueryRequest) (models.Row, error) {
	res, err := e.store.Execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.First(), nil
}
