package extract

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-chatbot/internal/common/logger"
)

var testNow = time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)

// fakeCatalog serves a fixed vocabulary without a database.
type fakeCatalog struct {
	categories []Category
	products   []Product
}

func (f *fakeCatalog) Categories(ctx context.Context) ([]Category, error) {
	return f.categories, nil
}

func (f *fakeCatalog) Products(ctx context.Context) ([]Product, error) {
	return f.products, nil
}

func (f *fakeCatalog) CategoryByFragment(ctx context.Context, fragment string) (*Category, error) {
	for _, c := range f.categories {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(fragment)) {
			cc := c
			return &cc, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) ProductByFragment(ctx context.Context, fragment string) (*Product, error) {
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(fragment)) {
			pp := p
			return &pp, nil
		}
	}
	return nil, nil
}

func newTestExtractor() *Extractor {
	return New(&fakeCatalog{
		categories: []Category{
			{ID: 1, Name: "Electronics"},
			{ID: 2, Name: "Clothing"},
			{ID: 3, Name: "Home & Kitchen"},
		},
		products: []Product{
			{ID: 10, Name: "Gaming Laptop"},
			{ID: 11, Name: "Smart Phone"},
			{ID: 12, Name: "Espresso Machine"},
		},
	}, logger.NewNoOpLogger(), DefaultLimit)
}

func TestExtract_PriceForms(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *PriceBound
	}{
		{"below", "products below 5000", &PriceBound{Max: 5000, Mode: "below"}},
		{"under with currency", "products under lkr 2500.50", &PriceBound{Max: 2500.50, Mode: "below"}},
		{"above", "products above 1000", &PriceBound{Min: 1000, Mode: "above"}},
		{"more than", "items more than 750", &PriceBound{Min: 750, Mode: "above"}},
		{"between", "products between 1000 and 5000", &PriceBound{Min: 1000, Max: 5000, Mode: "between"}},
		{"from-to", "products from 100 to 900", &PriceBound{Min: 100, Max: 900, Mode: "between"}},
		{"bare pair", "products 1000 and 5000", &PriceBound{Min: 1000, Max: 5000, Mode: "between"}},
		{"no price", "how many products", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPrice(tt.text))
		})
	}
}

func TestExtract_PriceBetweenTarget(t *testing.T) {
	e := newTestExtractor()
	spec, err := e.Extract(context.Background(), "products between 1000 and 5000", testNow)
	require.NoError(t, err)

	require.NotNil(t, spec.Price)
	assert.Equal(t, float64(1000), spec.Price.Min)
	assert.Equal(t, float64(5000), spec.Price.Max)
	assert.Equal(t, "between", spec.Price.Mode)
	assert.True(t, spec.Targets.Products)
}

func TestExtract_StatusVocabulary(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantStatus  string
		wantPayment string
	}{
		{"shipped", "how many shipped orders", "shipped", ""},
		{"pending", "waiting orders", "pending", ""},
		{"delivered", "delivered orders this month", "delivered", ""},
		{"processing", "orders in process", "processing", ""},
		{"cancelled alt spelling", "canceled orders", "cancelled", ""},
		{"returned", "returned orders", "returned", ""},
		{"paid alone", "how many paid orders", "", "paid"},
		// An order status wins; paid never stacks on top of it.
		{"paid with status", "paid shipped orders", "shipped", ""},
		{"none", "how many orders", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, payment := extractStatus(tt.text)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantPayment, payment)
		})
	}
}

func TestExtract_ProductStatus(t *testing.T) {
	e := newTestExtractor()
	ctx := context.Background()

	spec, err := e.Extract(ctx, "how many products", testNow)
	require.NoError(t, err)
	assert.Equal(t, "active", spec.ProductStatus)
	assert.False(t, spec.ShowAll)

	spec, err = e.Extract(ctx, "how many inactive products", testNow)
	require.NoError(t, err)
	assert.Equal(t, "inactive", spec.ProductStatus)

	spec, err = e.Extract(ctx, "how many total products", testNow)
	require.NoError(t, err)
	assert.True(t, spec.ShowAll)
	assert.Equal(t, "", spec.ProductStatus)
}

func TestExtract_Limit(t *testing.T) {
	e := newTestExtractor()
	ctx := context.Background()

	spec, err := e.Extract(ctx, "top 3 most ordered products", testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, spec.Limit)

	spec, err = e.Extract(ctx, "most ordered products", testNow)
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, spec.Limit)
}

func TestExtract_OpsAndTargets(t *testing.T) {
	e := newTestExtractor()
	spec, err := e.Extract(context.Background(), "how many orders this month", testNow)
	require.NoError(t, err)

	assert.True(t, spec.Ops.Count)
	assert.True(t, spec.Targets.Orders)
	assert.False(t, spec.Targets.Products)
	assert.False(t, spec.Date.Empty())
	assert.Equal(t, " this month", spec.Date.Descriptor)
}

func TestExtract_CategoryResolution_LiveName(t *testing.T) {
	e := newTestExtractor()
	spec, err := e.Extract(context.Background(), "how many products in electronics", testNow)
	require.NoError(t, err)

	require.NotNil(t, spec.Category)
	assert.Equal(t, int64(1), spec.Category.ID)
	assert.Equal(t, "Electronics", spec.Category.Name)
}

func TestExtract_CategoryResolution_Synonym(t *testing.T) {
	// "apparel" is not a live category name, so only the synonym table
	// can resolve it.
	e := newTestExtractor()
	spec, err := e.Extract(context.Background(), "products in apparel category", testNow)
	require.NoError(t, err)

	require.NotNil(t, spec.Category)
	assert.Equal(t, "Clothing", spec.Category.Name)
}

func TestExtract_CategoryResolution_Unresolved(t *testing.T) {
	e := newTestExtractor()
	spec, err := e.Extract(context.Background(), "products in gardening category", testNow)
	require.NoError(t, err)
	assert.Nil(t, spec.Category)
}

func TestExtract_ProductResolution_Keyword(t *testing.T) {
	e := newTestExtractor()
	spec, err := e.Extract(context.Background(), "how many laptop in stock", testNow)
	require.NoError(t, err)

	require.NotNil(t, spec.Product)
	assert.Equal(t, int64(10), spec.Product.ID)
}

func TestExtract_ProductResolution_NameScan(t *testing.T) {
	e := newTestExtractor()
	spec, err := e.Extract(context.Background(), "is the espresso available", testNow)
	require.NoError(t, err)

	require.NotNil(t, spec.Product)
	assert.Equal(t, "Espresso Machine", spec.Product.Name)
}

func TestExtract_ProductResolution_StopWordsIgnored(t *testing.T) {
	e := newTestExtractor()
	spec, err := e.Extract(context.Background(), "how many in stock", testNow)
	require.NoError(t, err)
	assert.Nil(t, spec.Product)
	assert.True(t, spec.Targets.StockCount)
}

func TestExtract_OrderReference(t *testing.T) {
	assert.Equal(t, "ord-2025-0042", OrderReference("status of ord-2025-0042 please"))
	assert.Equal(t, "17", OrderReference("items of order 17"))
	assert.Equal(t, "", OrderReference("where is my order"))
}

func TestExtract_ItemsOfOrder(t *testing.T) {
	e := newTestExtractor()
	spec, err := e.Extract(context.Background(), "items of ord-2025-0042", testNow)
	require.NoError(t, err)
	assert.True(t, spec.ItemsOfOrder)
	assert.Equal(t, "ord-2025-0042", spec.OrderNumber)
}
