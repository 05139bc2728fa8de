package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/lendcore/credit-workflow/internal/domain"
)

type productRepository struct {
	db       *sqlx.DB
	redis    *redis.Client
	cacheTTL time.Duration
}

// NewProductRepository builds the read-only catalog lookup. The Redis client
// may be nil; lookups then always hit the database.
func NewProductRepository(db *sqlx.DB, redisClient *redis.Client, cacheTTL time.Duration) ProductRepository {
	return &productRepository{
		db:       db,
		redis:    redisClient,
		cacheTTL: cacheTTL,
	}
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.LoanProduct, error) {
	cacheKey := fmt.Sprintf("product:%s", id)

	if r.redis != nil {
		cached, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var product domain.LoanProduct
			if unmarshalErr := json.Unmarshal([]byte(cached), &product); unmarshalErr == nil {
				return &product, nil
			}
		}
	}

	query := `
		SELECT id, name, min_amount, max_amount, min_term, max_term,
		       payment_frequency_id, nominal_rate, interest_calculation_method,
		       requires_collateral, min_collateral_ratio, due_date_rule_code, created_at
		FROM loan_products
		WHERE id = $1
	`

	var product domain.LoanProduct
	err := r.db.GetContext(ctx, &product, query, id)
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		if encoded, marshalErr := json.Marshal(&product); marshalErr == nil {
			// Catalog entries change rarely; a short TTL keeps edits visible.
			r.redis.Set(ctx, cacheKey, encoded, r.cacheTTL)
		}
	}

	return &product, nil
}
