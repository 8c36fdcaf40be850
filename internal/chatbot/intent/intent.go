// Package intent selects exactly one intent for a normalized message via
// an ordered decision list. The first matching rule wins; General is the
// fallback, so classification is total.
package intent

import (
	"shop-chatbot/internal/chatbot/patterns"
)

// Intent is the coarse-grained category of a user question.
type Intent string

const (
	OrderStatus   Intent = "order_status"
	OrderHistory  Intent = "order_history"
	ProductSearch Intent = "product_search"
	ReturnPolicy  Intent = "return_policy"
	Shipping      Intent = "shipping"
	Payment       Intent = "payment"
	Greeting      Intent = "greeting"
	Help          Intent = "help"
	Quantitative  Intent = "quantitative"
	General       Intent = "general"
)

type rule struct {
	intent Intent
	match  func(text string) bool
}

// rules is the fixed priority list. Order is load-bearing: an explicit
// order identifier beats everything, quantitative-priority vocabulary is
// tested before product-search vocabulary, and payment loses to
// quantitative questions about orders.
var rules = []rule{
	{OrderStatus, func(t string) bool { return patterns.OrderID.MatchString(t) }},
	{OrderStatus, func(t string) bool { return patterns.OrderMarkers.MatchString(t) }},
	{OrderHistory, func(t string) bool { return patterns.HistoryMarkers.MatchString(t) }},
	{Quantitative, func(t string) bool {
		return patterns.QuantPriority.MatchString(t) || patterns.FromToSpan.MatchString(t)
	}},
	{Quantitative, func(t string) bool { return patterns.QuantGeneric.MatchString(t) }},
	{ProductSearch, func(t string) bool {
		return patterns.ProductMarkers.MatchString(t) && !patterns.OrderContext.MatchString(t)
	}},
	{ReturnPolicy, func(t string) bool { return patterns.ReturnMarkers.MatchString(t) }},
	{Shipping, func(t string) bool { return patterns.ShippingMarkers.MatchString(t) }},
	{Payment, func(t string) bool {
		return patterns.PaymentMarkers.MatchString(t) && !patterns.PaymentQuantOrders.MatchString(t)
	}},
	{Greeting, func(t string) bool { return patterns.GreetingMarkers.MatchString(t) }},
	{Help, func(t string) bool { return patterns.HelpMarkers.MatchString(t) }},
}

// Classify returns the intent of normalized text. Pure function.
func Classify(text string) Intent {
	for _, r := range rules {
		if r.match(text) {
			return r.intent
		}
	}
	return General
}
