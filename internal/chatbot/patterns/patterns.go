// Package patterns holds the fixed lexical pattern groups the pipeline
// matches against normalized (lowercased, trimmed) text. Every group is
// boundary-anchored so "order" never matches inside "disorder". Pure data,
// no behavior beyond compiled-regexp lookups.
package patterns

import "regexp"

// Intent markers, in classifier priority order.
var (
	OrderID        = regexp.MustCompile(`\b(ord-[\w-]+)\b`)
	OrderMarkers   = regexp.MustCompile(`\b(order|status|track|tracking|where is my order|order number|items of|items in)\b`)
	HistoryMarkers = regexp.MustCompile(`\b(my orders|order history|past orders|previous orders)\b`)

	// Checked before generic product-search vocabulary so "show most
	// ordered products" is never classified as a product listing.
	QuantPriority = regexp.MustCompile(`\b(most ordered|top ordered|best selling|popular|frequently ordered|revenue|sales|income|between|stock|available|availability)\b`)
	FromToSpan    = regexp.MustCompile(`\bfrom\b.*\bto\b`)
	QuantGeneric  = regexp.MustCompile(`\b(how many|how much|count|sum|total|average|avg|number of|quantity of|this month|last month|this year|last year)\b`)

	ProductMarkers = regexp.MustCompile(`\b(product|products|item|items|show|search|find|buy|purchase|price|cost)\b`)
	OrderContext   = regexp.MustCompile(`\b(ord-|order|items of|items in)\b`)

	ReturnMarkers   = regexp.MustCompile(`\b(return|refund|exchange|send back|return policy)\b`)
	ShippingMarkers = regexp.MustCompile(`\b(shipping|delivery|deliver|ship|when will|arrive|estimated)\b`)

	PaymentMarkers = regexp.MustCompile(`\b(payment|pay|payment method|credit card|debit)\b`)
	// "total paid orders" must stay quantitative, not payment info.
	PaymentQuantOrders = regexp.MustCompile(`\b(total|count|how many|how much)\b.*\b(order|orders)\b`)

	GreetingMarkers = regexp.MustCompile(`\b(hi|hello|hey|greetings|good morning|good afternoon|good evening)\b`)
	HelpMarkers     = regexp.MustCompile(`\b(help|support|assist|what can you do|how can you help)\b`)
)

// Operation markers.
var (
	OpCount   = regexp.MustCompile(`\b(how many|count|number of|quantity of)\b`)
	OpSum     = regexp.MustCompile(`\b(how much|sum|total|spent|spending)\b`)
	OpAverage = regexp.MustCompile(`\b(average|avg|mean)\b`)
	OpMax     = regexp.MustCompile(`\b(max|maximum|highest|most|top|best)\b`)
	OpMin     = regexp.MustCompile(`\b(min|minimum|lowest|least)\b`)
)

// Entity-target markers.
var (
	EntityOrders      = regexp.MustCompile(`\b(order|orders)\b`)
	EntityProducts    = regexp.MustCompile(`\b(product|products|item|items)\b`)
	EntityItems       = regexp.MustCompile(`\b(item|items)\b`)
	EntityCart        = regexp.MustCompile(`\b(cart|items in cart|cart items)\b`)
	EntityCategories  = regexp.MustCompile(`\b(categor\w*|categories)\b`)
	EntityCustomers   = regexp.MustCompile(`\b(customer|customers|user|users)\b`)
	EntitySpending    = regexp.MustCompile(`\b(spent|spending|total spent|money spent|amount spent)\b`)
	EntityMostOrdered = regexp.MustCompile(`\b(most ordered|top ordered|best selling|popular|frequently ordered)\b`)
	EntityStock       = regexp.MustCompile(`\b(stock|available|availability|quantity|in stock|out of stock)\b`)
	EntityRevenue     = regexp.MustCompile(`\b(revenue|total revenue|sales|total sales|income)\b`)
	EntityAllOrders   = regexp.MustCompile(`\b(all orders|total orders|all order)\b`)
	StockAggregate    = regexp.MustCompile(`\b(how many|count)\b.*\b(stock|available|availability)\b`)
)

// Order status vocabulary, canonical value by marker. Checked in fixed
// order; "paid" applies only when no order status matched.
var StatusMarkers = []struct {
	Pattern *regexp.Regexp
	Status  string
}{
	{regexp.MustCompile(`\b(shipped|ship)\b`), "shipped"},
	{regexp.MustCompile(`\b(pending|waiting)\b`), "pending"},
	{regexp.MustCompile(`\b(delivered|delivery)\b`), "delivered"},
	{regexp.MustCompile(`\b(processing|process)\b`), "processing"},
	{regexp.MustCompile(`\b(cancelled|canceled|cancel)\b`), "cancelled"},
	{regexp.MustCompile(`\b(returned|return)\b`), "returned"},
}

var PaidMarker = regexp.MustCompile(`\b(paid|payment)\b`)

// Product status vocabulary.
var (
	ProductInactive = regexp.MustCompile(`\b(inactive|disabled|unavailable)\b`)
	ProductActive   = regexp.MustCompile(`\b(active|available)\b`)
	ShowAllProducts = regexp.MustCompile(`\b(all|total)\s+products?\b`)
)

// Filter phrase forms.
var (
	ItemsOfOrder     = regexp.MustCompile(`\b(items|item|products|product)\s+(of|in)\b`)
	ItemsOfOrderAlt  = regexp.MustCompile(`\b(items|item|products|product)\s+(ord-|order)\b`)
	OrderRef         = regexp.MustCompile(`\b(ord-[\w-]+|\d+)\b`)
	TopN             = regexp.MustCompile(`\b(top|first)\s+(\d+)\b`)
	CategoryHint     = regexp.MustCompile(`\b(in|category|categories)\s+(\w+)\b`)
	ProductValue     = regexp.MustCompile(`\b(value|worth|total value)\b`)
	PriceBelow       = regexp.MustCompile(`\b(below|under|less than|cheaper than|lower than)\s+(?:lkr\s*)?(\d+(?:\.\d+)?)\b`)
	PriceAbove       = regexp.MustCompile(`\b(above|over|more than|greater than|higher than)\s+(?:lkr\s*)?(\d+(?:\.\d+)?)\b`)
	PriceBetween     = regexp.MustCompile(`\b(between|from)\s+(?:lkr\s*)?(\d+(?:\.\d+)?)\s+(?:and|to)\s+(?:lkr\s*)?(\d+(?:\.\d+)?)\b`)
	PriceBarePair    = regexp.MustCompile(`\b(?:lkr\s*)?(\d+(?:\.\d+)?)\s*(?:and|to)\s*(?:lkr\s*)?(\d+(?:\.\d+)?)\b`)
	SearchKeywords   = regexp.MustCompile(`\b(laptop|phone|smartphone|shirt|t-shirt|book|shoes|coffee|maker)\b`)
)

// Time phrase forms.
var (
	ThisMonth     = regexp.MustCompile(`\b(this month|current month)\b`)
	LastMonth     = regexp.MustCompile(`\b(last month|previous month)\b`)
	ThisYear      = regexp.MustCompile(`\b(this year|current year)\b`)
	LastYear      = regexp.MustCompile(`\b(last year|previous year)\b`)
	Today         = regexp.MustCompile(`\b(today)\b`)
	Yesterday     = regexp.MustCompile(`\b(yesterday)\b`)
	ThisWeek      = regexp.MustCompile(`\b(this week|current week)\b`)
	LastWeek      = regexp.MustCompile(`\b(last week|previous week)\b`)
	BetweenMonths = regexp.MustCompile(`\b(between|from)\s+(\w+)\s+(and|to)\s+(\w+)\b`)
	InMonth       = regexp.MustCompile(`\b(in|during)\s+(\w+)\b`)
	YearToken     = regexp.MustCompile(`\b(20\d{2})\b`)
)

// Months maps full and common abbreviated month names to month numbers.
var Months = map[string]int{
	"january": 1, "jan": 1, "february": 2, "feb": 2,
	"march": 3, "mar": 3, "april": 4, "apr": 4,
	"may": 5, "june": 6, "jun": 6, "july": 7, "jul": 7,
	"august": 8, "aug": 8, "september": 9, "sep": 9, "sept": 9,
	"october": 10, "oct": 10, "november": 11, "nov": 11,
	"december": 12, "dec": 12,
}

// CategorySynonyms is the fixed fallback table for category resolution,
// tried in order after live category names fail to match.
var CategorySynonyms = []struct {
	Category string
	Keywords []string
}{
	{"electronics", []string{"electronics", "electronic", "tech"}},
	{"clothing", []string{"clothing", "clothes", "apparel", "fashion"}},
	{"home", []string{"home", "kitchen", "household"}},
	{"books", []string{"books", "book", "reading"}},
	{"sports", []string{"sports", "sport", "fitness", "athletic"}},
}

// ProductKeywords is the cheap first-pass table for resolving a specific
// product in stock questions.
var ProductKeywords = []struct {
	Product  string
	Keywords []string
}{
	{"laptop", []string{"laptop", "notebook", "computer"}},
	{"phone", []string{"phone", "smartphone", "mobile"}},
	{"shirt", []string{"shirt", "t-shirt", "tshirt"}},
	{"book", []string{"book", "books"}},
	{"shoes", []string{"shoes", "shoe", "footwear"}},
	{"coffee", []string{"coffee", "coffee maker", "maker"}},
}

// StockStopWords are excluded from the full product-name scan so filler
// words never resolve to a product.
var StockStopWords = map[string]bool{
	"how": true, "many": true, "stock": true, "available": true,
	"availability": true, "count": true, "quantity": true, "the": true,
	"is": true, "are": true, "in": true, "of": true, "for": true, "with": true,
}
