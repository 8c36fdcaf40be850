// Package extract pulls structured filter values out of normalized text,
// independent of intent. All extraction is pure except category and
// product resolution, which consult the catalog in two ordered,
// short-circuiting passes.
package extract

import (
	"context"
	"strconv"
	"strings"
	"time"

	"shop-chatbot/internal/chatbot/daterange"
	"shop-chatbot/internal/chatbot/patterns"
	"shop-chatbot/internal/common/logger"
)

// DefaultLimit is the ranked-listing row cap unless "top N" overrides it.
const DefaultLimit = 5

// Category is a resolved category reference.
type Category struct {
	ID   int64
	Name string
}

// Product is a resolved product reference.
type Product struct {
	ID   int64
	Name string
}

// Catalog is the reference-data collaborator used for category and
// product resolution.
type Catalog interface {
	Categories(ctx context.Context) ([]Category, error)
	CategoryByFragment(ctx context.Context, fragment string) (*Category, error)
	ProductByFragment(ctx context.Context, fragment string) (*Product, error)
	Products(ctx context.Context) ([]Product, error)
}

// Ops are the operation markers found in the text. More than one may be
// set; the query synthesizer applies fixed precedence.
type Ops struct {
	Count   bool
	Sum     bool
	Average bool
	Max     bool
	Min     bool
}

// Targets are the entity markers found in the text. More than one may be
// set; the quantitative ladder consumes them in fixed precedence order.
type Targets struct {
	Orders      bool
	Products    bool
	Items       bool
	Cart        bool
	Categories  bool
	Customers   bool
	Spending    bool
	MostOrdered bool
	Stock       bool
	Revenue     bool
	AllOrders   bool
	StockCount  bool // "how many ... stock" phrasing
}

// PriceBound is a price constraint with its phrasing mode.
type PriceBound struct {
	Min  float64
	Max  float64
	Mode string // "below", "above", "between"
}

// FilterSpec is the structured, intent-independent bag of constraints
// extracted from one message.
type FilterSpec struct {
	OrderNumber   string
	ItemsOfOrder  bool
	Ops           Ops
	Targets       Targets
	Status        string
	PaymentStatus string
	ProductStatus string
	ShowAll       bool
	Category      *Category
	Product       *Product
	Price         *PriceBound
	Date          daterange.Bound
	Limit         int
}

// Extractor resolves filters, consulting the catalog for category and
// product references.
type Extractor struct {
	catalog      Catalog
	log          logger.Logger
	defaultLimit int
}

func New(catalog Catalog, log logger.Logger, defaultLimit int) *Extractor {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	return &Extractor{catalog: catalog, log: log, defaultLimit: defaultLimit}
}

// Extract builds the FilterSpec for normalized text. Catalog failures are
// data-access failures and propagate; an unresolved category or product is
// not an error, the filter is simply absent.
func (e *Extractor) Extract(ctx context.Context, text string, now time.Time) (*FilterSpec, error) {
	spec := &FilterSpec{
		Ops:     extractOps(text),
		Targets: extractTargets(text),
		Date:    daterange.Resolve(text, now),
		Limit:   extractLimit(text, e.defaultLimit),
		Price:   ExtractPrice(text),
		ShowAll: patterns.ShowAllProducts.MatchString(text),
	}

	spec.OrderNumber = extractOrderNumber(text)
	spec.ItemsOfOrder = patterns.ItemsOfOrder.MatchString(text) || patterns.ItemsOfOrderAlt.MatchString(text)

	spec.Status, spec.PaymentStatus = extractStatus(text)
	spec.ProductStatus = extractProductStatus(text, spec.ShowAll)

	if patterns.CategoryHint.MatchString(text) {
		cat, err := e.resolveCategory(ctx, text)
		if err != nil {
			return nil, err
		}
		spec.Category = cat
	}

	if spec.Targets.Stock || spec.Targets.StockCount {
		prod, err := e.resolveProduct(ctx, text)
		if err != nil {
			return nil, err
		}
		spec.Product = prod
	}

	return spec, nil
}

func extractOps(text string) Ops {
	return Ops{
		Count:   patterns.OpCount.MatchString(text),
		Sum:     patterns.OpSum.MatchString(text),
		Average: patterns.OpAverage.MatchString(text),
		Max:     patterns.OpMax.MatchString(text),
		Min:     patterns.OpMin.MatchString(text),
	}
}

func extractTargets(text string) Targets {
	return Targets{
		Orders:      patterns.EntityOrders.MatchString(text),
		Products:    patterns.EntityProducts.MatchString(text),
		Items:       patterns.EntityItems.MatchString(text),
		Cart:        patterns.EntityCart.MatchString(text),
		Categories:  patterns.EntityCategories.MatchString(text),
		Customers:   patterns.EntityCustomers.MatchString(text),
		Spending:    patterns.EntitySpending.MatchString(text),
		MostOrdered: patterns.EntityMostOrdered.MatchString(text),
		Stock:       patterns.EntityStock.MatchString(text),
		Revenue:     patterns.EntityRevenue.MatchString(text),
		AllOrders:   patterns.EntityAllOrders.MatchString(text),
		StockCount:  patterns.StockAggregate.MatchString(text),
	}
}

// extractOrderNumber prefers an ORD- identifier over a bare integer.
func extractOrderNumber(text string) string {
	if m := patterns.OrderID.FindString(text); m != "" {
		return m
	}
	return ""
}

// OrderReference matches either an ORD- identifier or a bare number, for
// the order-status handler which accepts both.
func OrderReference(text string) string {
	return patterns.OrderRef.FindString(text)
}

// extractStatus maps status vocabulary to the canonical order status.
// Payment status is only considered when no order status matched, to
// avoid double filtering.
func extractStatus(text string) (status, paymentStatus string) {
	for _, sm := range patterns.StatusMarkers {
		if sm.Pattern.MatchString(text) {
			return sm.Status, ""
		}
	}
	if patterns.PaidMarker.MatchString(text) {
		return "", "paid"
	}
	return "", ""
}

// extractProductStatus defaults to active-only scoping unless the text
// asks for inactive products or "all/total products".
func extractProductStatus(text string, showAll bool) string {
	if patterns.ProductInactive.MatchString(text) {
		return "inactive"
	}
	if patterns.ProductActive.MatchString(text) {
		return "active"
	}
	if showAll {
		return ""
	}
	return "active"
}

// ExtractPrice recognizes the four mutually exclusive price phrasings.
// The bare "N and/to N" pair is lowest priority and only applies when the
// explicit forms did not match.
func ExtractPrice(text string) *PriceBound {
	if m := patterns.PriceBelow.FindStringSubmatch(text); m != nil {
		v, _ := strconv.ParseFloat(m[2], 64)
		return &PriceBound{Max: v, Mode: "below"}
	}
	if m := patterns.PriceAbove.FindStringSubmatch(text); m != nil {
		v, _ := strconv.ParseFloat(m[2], 64)
		return &PriceBound{Min: v, Mode: "above"}
	}
	if m := patterns.PriceBetween.FindStringSubmatch(text); m != nil {
		lo, _ := strconv.ParseFloat(m[2], 64)
		hi, _ := strconv.ParseFloat(m[3], 64)
		return &PriceBound{Min: lo, Max: hi, Mode: "between"}
	}
	if m := patterns.PriceBarePair.FindStringSubmatch(text); m != nil {
		lo, _ := strconv.ParseFloat(m[1], 64)
		hi, _ := strconv.ParseFloat(m[2], 64)
		return &PriceBound{Min: lo, Max: hi, Mode: "between"}
	}
	return nil
}

func extractLimit(text string, fallback int) int {
	if m := patterns.TopN.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// resolveCategory runs the two resolution passes: live category names
// first (substring match, word length > 3, first match wins), then the
// fixed synonym table resolved through a catalog lookup.
func (e *Extractor) resolveCategory(ctx context.Context, text string) (*Category, error) {
	cats, err := e.catalog.Categories(ctx)
	if err != nil {
		return nil, err
	}

	words := strings.Fields(text)
	for _, cat := range cats {
		nameLower := strings.ToLower(cat.Name)
		for _, word := range words {
			if len(word) > 3 && strings.Contains(nameLower, word) {
				c := cat
				return &c, nil
			}
		}
	}

	for _, syn := range patterns.CategorySynonyms {
		for _, keyword := range syn.Keywords {
			if containsWord(text, keyword) {
				cat, err := e.catalog.CategoryByFragment(ctx, syn.Category)
				if err != nil {
					return nil, err
				}
				if cat != nil {
					return cat, nil
				}
			}
		}
	}

	e.log.Debug("no category resolved", map[string]interface{}{"text": text})
	return nil, nil
}

// resolveProduct tries the keyword table first, then scans all product
// names against the message words with stop-word exclusion.
func (e *Extractor) resolveProduct(ctx context.Context, text string) (*Product, error) {
	for _, pk := range patterns.ProductKeywords {
		for _, keyword := range pk.Keywords {
			if containsWord(text, keyword) {
				prod, err := e.catalog.ProductByFragment(ctx, pk.Product)
				if err != nil {
					return nil, err
				}
				if prod != nil {
					return prod, nil
				}
			}
		}
	}

	products, err := e.catalog.Products(ctx)
	if err != nil {
		return nil, err
	}

	words := strings.Fields(text)
	for _, prod := range products {
		nameLower := strings.ToLower(prod.Name)
		for _, word := range words {
			if len(word) <= 2 || patterns.StockStopWords[word] {
				continue
			}
			if strings.Contains(nameLower, word) || strings.Contains(word, nameLower) {
				p := prod
				return &p, nil
			}
		}
	}

	return nil, nil
}

// containsWord is a boundary-anchored membership test for multi-word
// keywords without compiling a regexp per call.
func containsWord(text, keyword string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], keyword)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(keyword)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
