// Package query assembles parameterized QueryRequest values from extracted
// filters and caller identity. Predicate order is significant for
// positional parameter binding and is fixed everywhere: owner clause,
// status, payment status, category, price, date.
package query

import (
	"shop-chatbot/internal/chatbot/daterange"
	"shop-chatbot/internal/chatbot/extract"
	"shop-chatbot/internal/models"
)

// ownerPredicate returns the owner-equality clause for customers. Admins
// see all rows, so no clause is injected for them.
func ownerPredicate(caller models.CallerIdentity, column string) (models.Predicate, bool) {
	if caller.IsAdmin() || caller.UserID == 0 {
		return models.Predicate{}, false
	}
	return models.Predicate{Expr: column + " = ?", Args: []interface{}{caller.UserID}}, true
}

func appendPrice(preds []models.Predicate, price *extract.PriceBound) []models.Predicate {
	if price == nil {
		return preds
	}
	switch price.Mode {
	case "below":
		preds = append(preds, models.Predicate{Expr: "price < ?", Args: []interface{}{price.Max}})
	case "above":
		preds = append(preds, models.Predicate{Expr: "price > ?", Args: []interface{}{price.Min}})
	case "between":
		preds = append(preds, models.Predicate{Expr: "price BETWEEN ? AND ?", Args: []interface{}{price.Min, price.Max}})
	}
	return preds
}

func appendDate(preds []models.Predicate, bound daterange.Bound) []models.Predicate {
	if bound.Empty() {
		return preds
	}
	// All bound params belong to the joined condition templates; attach
	// them to the first so binding order is preserved.
	for i, cond := range bound.Conditions {
		p := models.Predicate{Expr: cond}
		if i == 0 {
			p.Args = bound.Params
		}
		preds = append(preds, p)
	}
	return preds
}

// OrderByNumber finds one order (with delivery info) by its order number,
// scoped to the caller for customers.
func OrderByNumber(caller models.CallerIdentity, orderNumber string) models.QueryRequest {
	var preds []models.Predicate
	if owner, ok := ownerPredicate(caller, "o.user_id"); ok {
		preds = append(preds, owner)
	}
	preds = append(preds, models.Predicate{Expr: "o.order_number = ?", Args: []interface{}{orderNumber}})

	return models.QueryRequest{
		Target: "orders o",
		Columns: []string{
			"o.id", "o.order_number", "o.total_amount", "o.status", "o.payment_status", "o.created_at",
			"d.status AS delivery_status", "d.tracking_number", "d.estimated_delivery_date",
		},
		Joins:      []string{"LEFT JOIN deliveries d ON o.id = d.order_id"},
		Predicates: preds,
	}
}

// OrderItems lists the line items of one order.
func OrderItems(orderID int64) models.QueryRequest {
	return models.QueryRequest{
		Target:  "order_items oi",
		Columns: []string{"oi.quantity", "oi.price", "oi.subtotal", "p.name AS product_name"},
		Joins:   []string{"JOIN products p ON oi.product_id = p.id"},
		Predicates: []models.Predicate{
			{Expr: "oi.order_id = ?", Args: []interface{}{orderID}},
		},
		OrderBy: []string{"oi.id"},
	}
}

// LatestOrder fetches the caller's most recent order with delivery info.
func LatestOrder(userID int64) models.QueryRequest {
	return models.QueryRequest{
		Target: "orders o",
		Columns: []string{
			"o.id", "o.order_number", "o.total_amount", "o.status", "o.payment_status", "o.created_at",
			"d.status AS delivery_status", "d.tracking_number", "d.estimated_delivery_date",
		},
		Joins: []string{"LEFT JOIN deliveries d ON o.id = d.order_id"},
		Predicates: []models.Predicate{
			{Expr: "o.user_id = ?", Args: []interface{}{userID}},
		},
		OrderBy: []string{"o.created_at DESC"},
		Limit:   1,
	}
}

// OrderHistoryTotals aggregates the caller's order count and spend.
func OrderHistoryTotals(userID int64) models.QueryRequest {
	return models.QueryRequest{
		Target:  "orders",
		Columns: []string{"COUNT(*) AS total", "SUM(total_amount) AS total_spent"},
		Predicates: []models.Predicate{
			{Expr: "user_id = ?", Args: []interface{}{userID}},
		},
	}
}

// CategoryListing lists all categories with their active product counts.
func CategoryListing() models.QueryRequest {
	return models.QueryRequest{
		Target:  "categories c",
		Columns: []string{"c.name", "COUNT(p.id) AS product_count"},
		Joins:   []string{"LEFT JOIN products p ON c.id = p.category_id AND p.status = 'active'"},
		GroupBy: []string{"c.id", "c.name"},
		OrderBy: []string{"c.name"},
	}
}

// ProductSearch searches active products by name or description.
func ProductSearch(likePattern string, limit int) models.QueryRequest {
	return models.QueryRequest{
		Target:  "products p",
		Columns: []string{"p.name", "p.price", "p.stock_quantity", "c.name AS category_name"},
		Joins:   []string{"LEFT JOIN categories c ON p.category_id = c.id"},
		Predicates: []models.Predicate{
			{Expr: "(p.name ILIKE ? OR p.description ILIKE ?)", Args: []interface{}{likePattern, likePattern}},
			{Expr: "p.status = 'active'"},
		},
		Limit: limit,
	}
}

// MostOrdered ranks products by total ordered quantity, optionally scoped
// to the resolved date range on the parent order.
func MostOrdered(spec *extract.FilterSpec) models.QueryRequest {
	var preds []models.Predicate
	preds = appendDate(preds, spec.Date.ForAlias("o"))

	return models.QueryRequest{
		Target:  "order_items oi",
		Columns: []string{"p.name", "SUM(oi.quantity) AS total_ordered", "SUM(oi.subtotal) AS total_revenue"},
		Joins: []string{
			"JOIN products p ON oi.product_id = p.id",
			"JOIN orders o ON oi.order_id = o.id",
		},
		Predicates: preds,
		GroupBy:    []string{"p.id", "p.name"},
		OrderBy:    []string{"total_ordered DESC"},
		Limit:      spec.Limit,
	}
}

// ordersPredicates builds the shared orders WHERE list in binding order.
func ordersPredicates(spec *extract.FilterSpec, caller models.CallerIdentity) []models.Predicate {
	var preds []models.Predicate
	if owner, ok := ownerPredicate(caller, "user_id"); ok {
		preds = append(preds, owner)
	}
	if spec.Status != "" {
		preds = append(preds, models.Predicate{Expr: "status = ?", Args: []interface{}{spec.Status}})
	}
	if spec.PaymentStatus != "" {
		preds = append(preds, models.Predicate{Expr: "payment_status = ?", Args: []interface{}{spec.PaymentStatus}})
	}
	return appendDate(preds, spec.Date)
}

// OrdersCount counts orders with the extracted status and date filters.
func OrdersCount(spec *extract.FilterSpec, caller models.CallerIdentity) models.QueryRequest {
	return models.QueryRequest{
		Target:     "orders",
		Columns:    []string{"COUNT(*) AS count"},
		Predicates: ordersPredicates(spec, caller),
	}
}

// OrdersSum totals order amounts with the extracted filters.
func OrdersSum(spec *extract.FilterSpec, caller models.CallerIdentity) models.QueryRequest {
	return models.QueryRequest{
		Target:     "orders",
		Columns:    []string{"SUM(total_amount) AS total"},
		Predicates: ordersPredicates(spec, caller),
	}
}

// OrdersAverage computes the average order amount with the extracted filters.
func OrdersAverage(spec *extract.FilterSpec, caller models.CallerIdentity) models.QueryRequest {
	return models.QueryRequest{
		Target:     "orders",
		Columns:    []string{"AVG(total_amount) AS avg_amount", "COUNT(*) AS count"},
		Predicates: ordersPredicates(spec, caller),
	}
}

// OrdersExtreme fetches the highest (or lowest) valued order.
func OrdersExtreme(spec *extract.FilterSpec, caller models.CallerIdentity, highest bool) models.QueryRequest {
	direction := "ASC"
	if highest {
		direction = "DESC"
	}
	return models.QueryRequest{
		Target:     "orders",
		Columns:    []string{"total_amount", "order_number", "created_at"},
		Predicates: ordersPredicates(spec, caller),
		OrderBy:    []string{"total_amount " + direction},
		Limit:      1,
	}
}

// productsPredicates builds the shared products WHERE list in binding
// order. includeStatus drops the status clause for "all products" counts.
func productsPredicates(spec *extract.FilterSpec, includeStatus bool) []models.Predicate {
	var preds []models.Predicate
	if includeStatus && spec.ProductStatus != "" && !spec.ShowAll {
		preds = append(preds, models.Predicate{Expr: "status = ?", Args: []interface{}{spec.ProductStatus}})
	}
	if spec.Category != nil {
		preds = append(preds, models.Predicate{Expr: "category_id = ?", Args: []interface{}{spec.Category.ID}})
	}
	return appendPrice(preds, spec.Price)
}

// ProductsCount counts products with the extracted status, category and
// price filters.
func ProductsCount(spec *extract.FilterSpec) models.QueryRequest {
	return models.QueryRequest{
		Target:     "products",
		Columns:    []string{"COUNT(*) AS count"},
		Predicates: productsPredicates(spec, true),
	}
}

// ActiveProductsCount counts active products only, for the "all products"
// breakdown reply.
func ActiveProductsCount() models.QueryRequest {
	return models.QueryRequest{
		Target:  "products",
		Columns: []string{"COUNT(*) AS count"},
		Predicates: []models.Predicate{
			{Expr: "status = 'active'"},
		},
	}
}

// ProductsValue totals price times stock for the filtered products.
func ProductsValue(spec *extract.FilterSpec) models.QueryRequest {
	return models.QueryRequest{
		Target:     "products",
		Columns:    []string{"SUM(price * stock_quantity) AS total_value"},
		Predicates: productsPredicates(spec, true),
	}
}

// ProductsAveragePrice averages the price of the filtered products.
func ProductsAveragePrice(spec *extract.FilterSpec) models.QueryRequest {
	return models.QueryRequest{
		Target:     "products",
		Columns:    []string{"AVG(price) AS avg_price"},
		Predicates: productsPredicates(spec, true),
	}
}

// CartCount counts the caller's cart lines.
func CartCount(userID int64) models.QueryRequest {
	return models.QueryRequest{
		Target:  "cart",
		Columns: []string{"COUNT(*) AS count"},
		Predicates: []models.Predicate{
			{Expr: "user_id = ?", Args: []interface{}{userID}},
		},
	}
}

// CartQuantity totals the caller's cart quantities.
func CartQuantity(userID int64) models.QueryRequest {
	return models.QueryRequest{
		Target:  "cart",
		Columns: []string{"SUM(quantity) AS total_qty"},
		Predicates: []models.Predicate{
			{Expr: "user_id = ?", Args: []interface{}{userID}},
		},
	}
}

// CartValue totals the caller's cart by live product prices.
func CartValue(userID int64) models.QueryRequest {
	return models.QueryRequest{
		Target:  "cart c",
		Columns: []string{"SUM(p.price * c.quantity) AS total"},
		Joins:   []string{"JOIN products p ON c.product_id = p.id"},
		Predicates: []models.Predicate{
			{Expr: "c.user_id = ?", Args: []interface{}{userID}},
		},
	}
}

// ProductStock fetches stock for one resolved product.
func ProductStock(productID int64) models.QueryRequest {
	return models.QueryRequest{
		Target:  "products",
		Columns: []string{"name", "stock_quantity", "status"},
		Predicates: []models.Predicate{
			{Expr: "id = ?", Args: []interface{}{productID}},
		},
	}
}

// TotalActiveStock totals stock across all active products.
func TotalActiveStock() models.QueryRequest {
	return models.QueryRequest{
		Target:  "products",
		Columns: []string{"SUM(stock_quantity) AS total_stock"},
		Predicates: []models.Predicate{
			{Expr: "status = 'active'"},
		},
	}
}

// CategoriesCount counts all categories.
func CategoriesCount() models.QueryRequest {
	return models.QueryRequest{
		Target:  "categories",
		Columns: []string{"COUNT(*) AS count"},
	}
}

// Revenue totals paid orders, optionally date-scoped.
func Revenue(bound daterange.Bound) models.QueryRequest {
	preds := []models.Predicate{
		{Expr: "payment_status = 'paid'"},
	}
	preds = appendDate(preds, bound)

	return models.QueryRequest{
		Target:     "orders",
		Columns:    []string{"SUM(total_amount) AS total"},
		Predicates: preds,
	}
}

// Spending totals the caller's own orders, optionally date-scoped.
func Spending(userID int64, bound daterange.Bound) models.QueryRequest {
	preds := []models.Predicate{
		{Expr: "user_id = ?", Args: []interface{}{userID}},
	}
	preds = appendDate(preds, bound)

	return models.QueryRequest{
		Target:     "orders",
		Columns:    []string{"SUM(total_amount) AS total"},
		Predicates: preds,
	}
}

// CustomersCount counts registered customer accounts.
func CustomersCount() models.QueryRequest {
	return models.QueryRequest{
		Target:  "users",
		Columns: []string{"COUNT(*) AS count"},
		Predicates: []models.Predicate{
			{Expr: "role = 'customer'"},
		},
	}
}

// AllOrdersCount counts every order in the system, optionally date-scoped.
func AllOrdersCount(bound daterange.Bound) models.QueryRequest {
	var preds []models.Predicate
	preds = appendDate(preds, bound)
	return models.QueryRequest{
		Target:     "orders",
		Columns:    []string{"COUNT(*) AS count"},
		Predicates: preds,
	}
}

// AllOrdersAverage averages every order in the system, optionally
// date-scoped.
func AllOrdersAverage(bound daterange.Bound) models.QueryRequest {
	var preds []models.Predicate
	preds = appendDate(preds, bound)
	return models.QueryRequest{
		Target:     "orders",
		Columns:    []string{"AVG(total_amount) AS avg_amount", "COUNT(*) AS count"},
		Predicates: preds,
	}
}
