package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"shop-chatbot/internal/chatbot/extract"
	"shop-chatbot/internal/common/database"
	"shop-chatbot/internal/common/logger"
	"shop-chatbot/internal/common/metrics"
	"shop-chatbot/internal/models"
)

const (
	categoriesCacheKey = "chatbot:catalog:categories"
	productsCacheKey   = "chatbot:catalog:products"
)

// Executor is the query runner the catalog reads through. Satisfied by
// SQLExecutor.
type Executor interface {
	Execute(ctx context.Context, req models.QueryRequest) (models.QueryResult, error)
}

// Catalog serves category and product vocabularies for filter
// resolution. Name lists are cached in Redis with a TTL; fragment
// lookups always hit the database.
type Catalog struct {
	executor Executor
	cache    *database.RedisClient
	ttl      time.Duration
	log      logger.Logger
}

func NewCatalog(executor Executor, cache *database.RedisClient, ttl time.Duration, log logger.Logger) *Catalog {
	return &Catalog{executor: executor, cache: cache, ttl: ttl, log: log}
}

// Categories lists all categories, cached.
func (c *Catalog) Categories(ctx context.Context) ([]extract.Category, error) {
	var cats []extract.Category
	if c.fromCache(ctx, categoriesCacheKey, &cats) {
		return cats, nil
	}

	res, err := c.executor.Execute(ctx, models.QueryRequest{
		Target:  "categories",
		Columns: []string{"id", "name"},
		OrderBy: []string{"name"},
	})
	if err != nil {
		return nil, err
	}
	for _, row := range res.Rows {
		cats = append(cats, extract.Category{ID: row.Int("id"), Name: row.String("name")})
	}

	c.toCache(ctx, categoriesCacheKey, cats)
	return cats, nil
}

// Products lists all product names, cached.
func (c *Catalog) Products(ctx context.Context) ([]extract.Product, error) {
	var prods []extract.Product
	if c.fromCache(ctx, productsCacheKey, &prods) {
		return prods, nil
	}

	res, err := c.executor.Execute(ctx, models.QueryRequest{
		Target:  "products",
		Columns: []string{"id", "name"},
		OrderBy: []string{"name"},
	})
	if err != nil {
		return nil, err
	}
	for _, row := range res.Rows {
		prods = append(prods, extract.Product{ID: row.Int("id"), Name: row.String("name")})
	}

	c.toCache(ctx, productsCacheKey, prods)
	return prods, nil
}

// CategoryByFragment finds the first category whose name contains the
// fragment, or nil when none matches.
func (c *Catalog) CategoryByFragment(ctx context.Context, fragment string) (*extract.Category, error) {
	res, err := c.executor.Execute(ctx, models.QueryRequest{
		Target:  "categories",
		Columns: []string{"id", "name"},
		Predicates: []models.Predicate{
			{Expr: "name ILIKE ?", Args: []interface{}{"%" + fragment + "%"}},
		},
		OrderBy: []string{"id"},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if res.Empty() {
		return nil, nil
	}
	row := res.First()
	return &extract.Category{ID: row.Int("id"), Name: row.String("name")}, nil
}

// ProductByFragment finds the first product whose name contains the
// fragment, or nil when none matches.
func (c *Catalog) ProductByFragment(ctx context.Context, fragment string) (*extract.Product, error) {
	res, err := c.executor.Execute(ctx, models.QueryRequest{
		Target:  "products",
		Columns: []string{"id", "name"},
		Predicates: []models.Predicate{
			{Expr: "name ILIKE ?", Args: []interface{}{"%" + fragment + "%"}},
		},
		OrderBy: []string{"id"},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if res.Empty() {
		return nil, nil
	}
	row := res.First()
	return &extract.Product{ID: row.Int("id"), Name: row.String("name")}, nil
}

// fromCache loads a cached vocabulary. Cache errors degrade to a miss so
// the database stays authoritative.
func (c *Catalog) fromCache(ctx context.Context, key string, dest interface{}) bool {
	if c.cache == nil {
		return false
	}
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("catalog cache read failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		metrics.CatalogCacheHits.WithLabelValues("database").Inc()
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		c.log.Warn("catalog cache entry corrupt", map[string]interface{}{"key": key})
		metrics.CatalogCacheHits.WithLabelValues("database").Inc()
		return false
	}
	metrics.CatalogCacheHits.WithLabelValues("cache").Inc()
	return true
}

func (c *Catalog) toCache(ctx context.Context, key string, value interface{}) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, string(raw), c.ttl); err != nil {
		c.log.Warn("catalog cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}
