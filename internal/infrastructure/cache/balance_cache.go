// Package cache caché de lectura de saldos sobre Redis (cache-aside).
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var _ inventory.BalanceCache = (*RedisBalanceCache)(nil)

// Prefijos de las claves de saldo y de su generación.
const (
	KeyPrefix        = "stock:balance"
	GenerationPrefix = "stock:balance-gen"
)

// SetIfFresh escribe el saldo solo si la generación no cambió desde que se leyó.
// KEYS: generación, saldo. ARGV: generación leída, cuerpo JSON, TTL en ms (0 = sin TTL).
var SetIfFresh = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if (cur or '0') ~= ARGV[1] then
  return 0
end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[2], ARGV[2])
end
return 1
`)

// BumpAndDelete incrementa la generación y borra el saldo de cada par (generación, saldo) en KEYS.
var BumpAndDelete = redis.NewScript(`
for i = 1, #KEYS, 2 do
  redis.call('INCR', KEYS[i])
  redis.call('DEL', KEYS[i + 1])
end
return #KEYS / 2
`)

// cachedBalance forma serializada de un saldo.
type cachedBalance struct {
	ProductID       string           `json:"product_id"`
	Location        string           `json:"location"`
	Quantity        int64            `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`
	BatchIdentifier string           `json:"batch_identifier,omitempty"`
	ExpiryDate      *time.Time       `json:"expiry_date,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// RedisBalanceCache guarda saldos con TTL. Se invalida tras cada commit que los toca.
// Las claves de generación no expiran: si volvieran a 0 una escritura vieja podría pasar.
type RedisBalanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBalanceCache construye la caché. ttl 0 = sin expiración.
func NewRedisBalanceCache(client *redis.Client, ttl time.Duration) *RedisBalanceCache {
	return &RedisBalanceCache{client: client, ttl: ttl}
}

// Key clave de Redis para (producto, ubicación).
func Key(productID, location string) string {
	return fmt.Sprintf("%s:%s:%s", KeyPrefix, productID, location)
}

// GenerationKey clave de Redis con la generación de (producto, ubicación).
func GenerationKey(productID, location string) string {
	return fmt.Sprintf("%s:%s:%s", GenerationPrefix, productID, location)
}

func (c *RedisBalanceCache) Get(ctx context.Context, productID, location string) (*entity.StockLocation, bool, error) {
	raw, err := c.client.Get(ctx, Key(productID, location)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get balance: %w", err)
	}
	var b cachedBalance
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return nil, false, fmt.Errorf("decode cached balance: %w", err)
	}
	return &entity.StockLocation{
		ProductID:       b.ProductID,
		Location:        b.Location,
		Quantity:        b.Quantity,
		UnitPrice:       b.UnitPrice,
		BatchIdentifier: b.BatchIdentifier,
		ExpiryDate:      b.ExpiryDate,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}, true, nil
}

// Generation generación vigente de la clave; 0 si nunca se invalidó.
func (c *RedisBalanceCache) Generation(ctx context.Context, productID, location string) (int64, error) {
	gen, err := c.client.Get(ctx, GenerationKey(productID, location)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get generation: %w", err)
	}
	return gen, nil
}

// Set guarda el saldo si generation sigue vigente; si no, descarta la escritura sin error.
func (c *RedisBalanceCache) Set(ctx context.Context, loc *entity.StockLocation, generation int64) error {
	body, err := json.Marshal(cachedBalance{
		ProductID:       loc.ProductID,
		Location:        loc.Location,
		Quantity:        loc.Quantity,
		UnitPrice:       loc.UnitPrice,
		BatchIdentifier: loc.BatchIdentifier,
		ExpiryDate:      loc.ExpiryDate,
		CreatedAt:       loc.CreatedAt,
		UpdatedAt:       loc.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode balance: %w", err)
	}
	keys := []string{GenerationKey(loc.ProductID, loc.Location), Key(loc.ProductID, loc.Location)}
	if err := SetIfFresh.Run(ctx, c.client, keys, generation, string(body), c.ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("redis set balance: %w", err)
	}
	return nil
}

// Invalidate borra los saldos y avanza su generación en una sola operación atómica.
func (c *RedisBalanceCache) Invalidate(ctx context.Context, productID string, locations ...string) error {
	if len(locations) == 0 {
		return nil
	}
	keys := make([]string, 0, 2*len(locations))
	for _, l := range locations {
		keys = append(keys, GenerationKey(productID, l), Key(productID, l))
	}
	if err := BumpAndDelete.Run(ctx, c.client, keys).Err(); err != nil {
		return fmt.Errorf("redis invalidate balances: %w", err)
	}
	return nil
}
