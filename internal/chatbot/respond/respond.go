// Package respond renders query results into deterministic
// natural-language reply text. Templates are keyed by intent and result
// shape; amounts are currency-formatted with two decimals and thousands
// separators; a period descriptor suffix reflects the resolved date scope.
package respond

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"shop-chatbot/internal/chatbot/extract"
	"shop-chatbot/internal/models"
)

// Currency is the display currency code for all amounts.
const Currency = "LKR"

// Money renders an amount as "LKR 1,234.56".
func Money(v float64) string {
	return Currency + " " + humanize.FormatFloat("#,###.##", v)
}

func plural(n int64, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}

func titleFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatDate(row models.Row, key string) string {
	if t, ok := row[key].(time.Time); ok {
		return t.Format("Jan 02, 2006")
	}
	if s := row.String(key); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.Format("Jan 02, 2006")
		}
		if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
			return t.Format("Jan 02, 2006")
		}
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t.Format("Jan 02, 2006")
		}
		return s
	}
	return ""
}

func formatDateTime(row models.Row, key string) string {
	if t, ok := row[key].(time.Time); ok {
		return t.Format("Jan 02, 2006 15:04")
	}
	if s := row.String(key); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.Format("Jan 02, 2006 15:04")
		}
		if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
			return t.Format("Jan 02, 2006 15:04")
		}
		return s
	}
	return ""
}

// OrderStatus renders the single-order status reply.
func OrderStatus(order models.Row, latest bool) string {
	var b strings.Builder
	if latest {
		fmt.Fprintf(&b, "Your latest order %s:\n\n", order.String("order_number"))
	} else {
		fmt.Fprintf(&b, "Order Status for %s:\n\n", order.String("order_number"))
	}
	fmt.Fprintf(&b, "Status: %s\n", titleFirst(order.String("status")))
	fmt.Fprintf(&b, "Amount: %s\n", Money(order.Float("total_amount")))
	if !latest {
		fmt.Fprintf(&b, "Payment: %s\n", titleFirst(order.String("payment_status")))
	}

	if ds := order.String("delivery_status"); ds != "" {
		fmt.Fprintf(&b, "Delivery: %s\n", titleFirst(strings.ReplaceAll(ds, "_", " ")))
		if tn := order.String("tracking_number"); tn != "" {
			fmt.Fprintf(&b, "Tracking: %s\n", tn)
		}
		if ed := formatDate(order, "estimated_delivery_date"); ed != "" {
			fmt.Fprintf(&b, "Estimated Delivery: %s\n", ed)
		}
	}

	if !latest {
		fmt.Fprintf(&b, "\nOrdered on: %s", formatDateTime(order, "created_at"))
	}
	return b.String()
}

// OrderItems renders the itemized listing for one order.
func OrderItems(orderNumber string, items []models.Row, totalAmount float64) string {
	if len(items) == 0 {
		return fmt.Sprintf("No items found for order %s.", orderNumber)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Items in Order %s:\n\n", orderNumber)
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item.String("product_name"))
		fmt.Fprintf(&b, "   Quantity: %d\n", item.Int("quantity"))
		fmt.Fprintf(&b, "   Price: %s\n", Money(item.Float("price")))
		fmt.Fprintf(&b, "   Subtotal: %s\n\n", Money(item.Float("subtotal")))
	}
	fmt.Fprintf(&b, "Total: %s", Money(totalAmount))
	return b.String()
}

// OrderHistory renders the caller's order history summary.
func OrderHistory(total int64, totalSpent float64) string {
	var b strings.Builder
	b.WriteString("Your Order History:\n\n")
	fmt.Fprintf(&b, "Total Orders: %d\n", total)
	fmt.Fprintf(&b, "Total Spent: %s\n\n", Money(totalSpent))
	b.WriteString("You can view all your orders in the 'My Orders' section from the menu.")
	return b.String()
}

// CategoryList renders the category overview with product counts.
func CategoryList(rows []models.Row) string {
	var b strings.Builder
	b.WriteString("Our Product Categories:\n\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "• %s (%d products)\n", row.String("name"), row.Int("product_count"))
	}
	b.WriteString("\nYou can browse all products or search for specific items!")
	return b.String()
}

// ProductSearch renders matched products.
func ProductSearch(rows []models.Row) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d product(s):\n\n", len(rows))
	for _, p := range rows {
		fmt.Fprintf(&b, "%s\n", p.String("name"))
		fmt.Fprintf(&b, "   Price: %s\n", Money(p.Float("price")))
		fmt.Fprintf(&b, "   Category: %s\n", p.String("category_name"))
		stock := "Out of Stock"
		if p.Int("stock_quantity") > 0 {
			stock = "In Stock"
		}
		fmt.Fprintf(&b, "   Stock: %s\n\n", stock)
	}
	b.WriteString("Visit our Products page to see more details and add to cart!")
	return b.String()
}

// ReturnPolicy is the static return policy reply.
func ReturnPolicy() string {
	return "Return Policy:\n\n" +
		"• 30-day return policy on all products\n" +
		"• Items must be in original condition\n" +
		"• Original packaging required\n" +
		"• Proof of purchase needed\n" +
		"• Refunds processed within 5-7 business days\n\n" +
		"For detailed information, visit our Return Policy page."
}

// PaymentMethods is the static payment methods reply.
func PaymentMethods() string {
	return "Payment Methods:\n\n" +
		"• Credit Card\n" +
		"• Debit Card\n" +
		"• PayPal\n" +
		"• Cash on Delivery (where available)\n\n" +
		"All payments are secure and encrypted."
}

// ShippingPolicy is the static reply for callers without order context.
func ShippingPolicy() string {
	return "Standard shipping takes 5-7 business days. Express shipping options available at checkout."
}

// ShippingInfo renders delivery details for the caller's latest order.
func ShippingInfo(order models.Row) string {
	var b strings.Builder
	b.WriteString("Shipping Information:\n\n")
	if ds := order.String("delivery_status"); ds != "" {
		fmt.Fprintf(&b, "Latest Order: %s\n", order.String("order_number"))
		fmt.Fprintf(&b, "Status: %s\n", titleFirst(strings.ReplaceAll(ds, "_", " ")))
		if tn := order.String("tracking_number"); tn != "" {
			fmt.Fprintf(&b, "Tracking: %s\n", tn)
		}
		if ed := formatDate(order, "estimated_delivery_date"); ed != "" {
			fmt.Fprintf(&b, "Estimated: %s\n", ed)
		}
	} else {
		b.WriteString("Standard shipping: 5-7 business days\n")
		b.WriteString("Express shipping available at checkout")
	}
	return b.String()
}

// greetingLines are the randomized greeting openers. The picker index is
// injected so tests can fix the choice.
var greetingLines = []string{
	"Hello! How can I help you today?",
	"Hi there! What can I assist you with?",
	"Welcome! I'm here to help with your questions.",
}

// GreetingCount is the number of greeting variants, for picker bounds.
const GreetingCount = 3

// Greeting renders a greeting with a role-specific capability suffix.
func Greeting(pick int, role models.Role) string {
	line := greetingLines[pick%len(greetingLines)]
	switch role {
	case models.RoleAdmin:
		return line + "\n\nAs an admin, I can help you with order management, product information, and system queries."
	case models.RoleCustomer:
		return line + "\n\nI can help you with:\n• Order status\n• Product information\n• Returns & shipping\n• Payment questions"
	default:
		return line + "\n\nI can help you with product information, shipping details, and more!"
	}
}

// Help renders the role-specific capability list.
func Help(role models.Role) string {
	var b strings.Builder
	b.WriteString("I can help you with:\n\n")
	switch role {
	case models.RoleCustomer:
		b.WriteString("• Check order status\n")
		b.WriteString("• View order history\n")
		b.WriteString("• Search products\n")
		b.WriteString("• Return policy\n")
		b.WriteString("• Shipping information\n")
		b.WriteString("• Payment methods\n")
		b.WriteString("• Quantitative queries (how many orders, how much spent, average order value, date ranges, most ordered items, etc.)\n")
	case models.RoleAdmin:
		b.WriteString("• Order management queries\n")
		b.WriteString("• Product information\n")
		b.WriteString("• Delivery status\n")
		b.WriteString("• User information\n")
		b.WriteString("• Quantitative queries (how many customers, total orders, revenue, etc.)\n")
	default:
		b.WriteString("• Product information\n")
		b.WriteString("• Return policy\n")
		b.WriteString("• Shipping details\n")
		b.WriteString("• Payment methods\n")
		b.WriteString("• Quantitative queries (how many products, count, etc.)\n")
	}
	b.WriteString("\nJust ask me anything!")
	return b.String()
}

// MostOrdered renders the ranked product listing.
func MostOrdered(rows []models.Row, period string) string {
	if len(rows) == 0 {
		return "No orders found" + period + "."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Most Ordered Products%s:\n\n", period)
	for i, row := range rows {
		fmt.Fprintf(&b, "%d. %s\n", i+1, row.String("name"))
		fmt.Fprintf(&b, "   Quantity: %d\n", row.Int("total_ordered"))
		fmt.Fprintf(&b, "   Revenue: %s\n\n", Money(row.Float("total_revenue")))
	}
	return b.String()
}

// OrdersCount renders order counts; admins see system-wide phrasing.
func OrdersCount(count int64, statusText, period string, admin bool) string {
	prefix := statusText
	if prefix != "" {
		prefix += " "
	}
	noun := plural(count, "order", "orders")
	if admin {
		return fmt.Sprintf("There are %d %s%s%s in the system.", count, prefix, noun, period)
	}
	return fmt.Sprintf("You have %d %s%s%s.", count, prefix, noun, period)
}

// OrdersSum renders order totals.
func OrdersSum(total float64, period string, admin bool) string {
	if admin {
		return fmt.Sprintf("Total revenue%s is %s.", period, Money(total))
	}
	return fmt.Sprintf("You have spent a total of %s%s on all your orders.", Money(total), period)
}

// OrdersAverage renders the average order value, or the no-orders reply.
func OrdersAverage(avg float64, count int64, period string, admin bool) string {
	if count == 0 {
		return "No orders found" + period + " to calculate an average."
	}
	if admin {
		return fmt.Sprintf("The average order value%s is %s.", period, Money(avg))
	}
	return fmt.Sprintf("Your average order value%s is %s.", period, Money(avg))
}

// OrdersExtreme renders the highest/lowest order value reply.
func OrdersExtreme(order models.Row, period string, highest bool) string {
	comparison := "lowest"
	if highest {
		comparison = "highest"
	}
	return fmt.Sprintf("The %s order value%s is %s (Order: %s).",
		comparison, period, Money(order.Float("total_amount")), order.String("order_number"))
}

// filterParts describes category and price constraints for product replies.
func filterParts(category string, price *extract.PriceBound, inThe bool) string {
	var parts []string
	if category != "" {
		if inThe {
			parts = append(parts, "in the "+category+" category")
		} else {
			parts = append(parts, "in "+category)
		}
	}
	if price != nil {
		switch price.Mode {
		case "below":
			parts = append(parts, "below "+Money(price.Max))
		case "above":
			parts = append(parts, "above "+Money(price.Min))
		case "between":
			parts = append(parts, "between "+Money(price.Min)+" and "+Money(price.Max))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " and ")
}

// ProductsBreakdown renders the total/active/inactive product breakdown.
func ProductsBreakdown(total, active int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "We have %d total %s in our store:\n", total, plural(total, "product", "products"))
	fmt.Fprintf(&b, "• Active: %d\n", active)
	fmt.Fprintf(&b, "• Inactive: %d", total-active)
	return b.String()
}

// ProductsCountAll renders the filtered all-products count.
func ProductsCountAll(count int64, category string, price *extract.PriceBound) string {
	return fmt.Sprintf("We have %d total %s%s.", count, plural(count, "product", "products"), filterParts(category, price, true))
}

// ProductsCount renders the status-scoped product count.
func ProductsCount(count int64, status, category string, price *extract.PriceBound) string {
	statusText := "active"
	if status == "inactive" {
		statusText = "inactive"
	}
	noun := plural(count, "product", "products")
	if category != "" || price != nil {
		return fmt.Sprintf("We have %d %s %s%s.", count, statusText, noun, filterParts(category, price, true))
	}
	return fmt.Sprintf("We have %d %s %s in our store.", count, statusText, noun)
}

// ProductsValue renders the total stock value of the filtered products.
func ProductsValue(total float64, status, category string, price *extract.PriceBound) string {
	statusText := "active"
	if status == "inactive" {
		statusText = "inactive"
	}
	return fmt.Sprintf("The total value of all %s products%s in stock is %s.",
		statusText, filterParts(category, price, false), Money(total))
}

// ProductsAveragePrice renders the average price of the filtered products.
func ProductsAveragePrice(avg float64, status, category string, price *extract.PriceBound) string {
	statusText := "active"
	if status == "inactive" {
		statusText = "inactive"
	}
	return fmt.Sprintf("The average %s product price%s is %s.",
		statusText, filterParts(category, price, false), Money(avg))
}

// CartCount renders the cart size reply.
func CartCount(count, totalQty int64) string {
	if count == 0 {
		return "Your cart is empty. You have 0 items."
	}
	return fmt.Sprintf("You have %d %s in your cart with a total quantity of %d.",
		count, plural(count, "item", "items"), totalQty)
}

// CartValue renders the cart value reply.
func CartValue(total float64) string {
	if total <= 0 {
		return "Your cart is empty. Total value is " + Money(0) + "."
	}
	return fmt.Sprintf("The total value of items in your cart is %s.", Money(total))
}

// ProductStock renders stock for one product.
func ProductStock(name string, qty int64, status string) string {
	var msg string
	if qty > 0 {
		msg = fmt.Sprintf("%s has %d %s in stock.", name, qty, plural(qty, "unit", "units"))
	} else {
		msg = fmt.Sprintf("%s is currently out of stock.", name)
	}
	if status == "inactive" {
		msg += " (Product is inactive)"
	}
	return msg
}

// TotalStock renders the aggregate active-stock reply.
func TotalStock(total int64) string {
	return fmt.Sprintf("Total stock available for all active products: %d units.", total)
}

// CategoriesCount renders the category count reply.
func CategoriesCount(count int64) string {
	return fmt.Sprintf("We have %d categor%s.", count, plural(count, "y", "ies"))
}

// Revenue renders the paid-orders revenue reply.
func Revenue(total float64, period string, admin bool) string {
	if admin {
		return fmt.Sprintf("Total revenue from all paid orders%s is %s.", period, Money(total))
	}
	return fmt.Sprintf("Total revenue%s is %s.", period, Money(total))
}

// Spending renders the caller's own spending reply.
func Spending(total float64, period string) string {
	return fmt.Sprintf("You have spent a total of %s%s.", Money(total), period)
}

// CustomersCount renders the registered-customers reply.
func CustomersCount(count int64) string {
	return fmt.Sprintf("There are %d %s registered in the system.", count, plural(count, "customer", "customers"))
}

// AllOrdersCount renders the system-wide order count reply.
func AllOrdersCount(count int64, period string) string {
	return fmt.Sprintf("There are %d total %s%s in the system.", count, plural(count, "order", "orders"), period)
}

// AllOrdersAverage renders the system-wide average order value reply.
func AllOrdersAverage(avg float64, count int64, period string) string {
	if count == 0 {
		return "There are no orders in the system yet."
	}
	return fmt.Sprintf("The average order value across all orders%s is %s.", period, Money(avg))
}

// QuantitativeHelp is the fallback reply for unclear quantitative
// questions.
func QuantitativeHelp() string {
	return "I can help you with quantitative queries about:\n" +
		"• How many orders (this month, last month, between dates)\n" +
		"• How much you've spent (with date ranges)\n" +
		"• Average order value\n" +
		"• Total orders this month/year\n" +
		"• Orders between January and March\n" +
		"• Most ordered items / Top products\n" +
		"• Highest/Lowest order values\n" +
		"• Number of products\n" +
		"• Cart items count\n" +
		"• Number of categories\n\n" +
		"Examples:\n" +
		"• 'Total orders this month'\n" +
		"• 'Orders between January and March'\n" +
		"• 'Average order value this year'\n\n" +
		"Please specify what you'd like to know about."
}

// General echoes the question and lists capabilities.
func General(message string) string {
	return "I understand you're asking about: \"" + message + "\"\n\n" +
		"I can help you with:\n" +
		"• Order status and tracking\n" +
		"• Product information\n" +
		"• Return policy\n" +
		"• Shipping information\n" +
		"• Payment methods\n" +
		"• Quantitative queries (how many, how much, count, sum, average, date ranges, most ordered items)\n\n" +
		"Could you rephrase your question or ask about one of these topics?"
}
