package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pharmacy-pos/internal/models"

	"github.com/go-redis/redis/v8"
)

const (
	receiptCounterKey = "receipt:counter"
	catalogKey        = "cache:catalog"
	storeStatusKey    = "cache:store_status"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// NextReceiptSeq returns the next value of the monotonic receipt counter.
// INCR is atomic, so concurrent terminals never collide.
func (c *Client) NextReceiptSeq(ctx context.Context) (int64, error) {
	seq, err := c.rdb.Incr(ctx, receiptCounterKey).Result()
	if err != nil {
		return 0, fmt.Errorf("receipt counter incr failed: %w", err)
	}
	return seq, nil
}

// CacheCatalog stores the product list for the public storefront
func (c *Client) CacheCatalog(ctx context.Context, products []models.Product, ttl time.Duration) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	return c.rdb.Set(ctx, catalogKey, data, ttl).Err()
}

// GetCachedCatalog returns the cached product list, or (nil, nil) on a miss
func (c *Client) GetCachedCatalog(ctx context.Context) ([]models.Product, error) {
	data, err := c.rdb.Get(ctx, catalogKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	return products, nil
}

// InvalidateCatalog drops the catalog cache after any inventory mutation
func (c *Client) InvalidateCatalog(ctx context.Context) error {
	return c.rdb.Del(ctx, catalogKey).Err()
}

// CacheStoreStatus stores the open/closed flag read by every storefront page
func (c *Client) CacheStoreStatus(ctx context.Context, status *models.StoreStatus, ttl time.Duration) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal store status: %w", err)
	}
	return c.rdb.Set(ctx, storeStatusKey, data, ttl).Err()
}

// GetCachedStoreStatus returns the cached status, or (nil, nil) on a miss
func (c *Client) GetCachedStoreStatus(ctx context.Context) (*models.StoreStatus, error) {
	data, err := c.rdb.Get(ctx, storeStatusKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var status models.StoreStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal store status: %w", err)
	}
	return &status, nil
}

// InvalidateStoreStatus drops the status cache after a toggle
func (c *Client) InvalidateStoreStatus(ctx context.Context) error {
	return c.rdb.Del(ctx, storeStatusKey).Err()
}
