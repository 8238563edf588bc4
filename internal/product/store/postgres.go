package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	inErrors "github.com/edgestore/storefront/internal/errors"
	"github.com/edgestore/storefront/internal/product"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func numericFromDecimal(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Exp:              d.Exponent(),
		InfinityModifier: pgtype.Finite,
		Int:              d.Coefficient(),
		NaN:              false,
		Valid:            true,
	}
}

func decimalFromNumeric(n pgtype.Numeric) decimal.Decimal {
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func (s *PostgresStore) FindProductById(
	c context.Context,
	productId uuid.UUID,
) (product.Product, error) {
	row := s.pool.QueryRow(
		c,
		`SELECT id, name, category, price, quantity, created_at, updated_at
		 FROM products WHERE id = $1`,
		productId,
	)

	var p product.Product
	var price pgtype.Numeric
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&p.ID, &p.Name, &p.Category, &price, &p.Quantity, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.Product{}, fmt.Errorf(
				"productId=%s with error=%w",
				productId.String(),
				inErrors.ErrNotFound,
			)
		}
		return product.Product{}, fmt.Errorf("failed finding product with error=%w", err)
	}
	p.Price = decimalFromNumeric(price)
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return p, nil
}

func (s *PostgresStore) FindProducts(c context.Context, category string) ([]product.Product, error) {
	rows, err := s.pool.Query(
		c,
		`SELECT id, name, category, price, quantity, created_at, updated_at
		 FROM products
		 WHERE $1 = '' OR category = $1
		 ORDER BY name`,
		category,
	)
	if err != nil {
		return nil, fmt.Errorf("failed finding products with error=%w", err)
	}
	defer rows.Close()

	products := []product.Product{}
	for rows.Next() {
		var p product.Product
		var price pgtype.Numeric
		var createdAt, updatedAt pgtype.Timestamptz
		err = rows.Scan(&p.ID, &p.Name, &p.Category, &price, &p.Quantity, &createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed scanning product with error=%w", err)
		}
		p.Price = decimalFromNumeric(price)
		p.CreatedAt = createdAt.Time
		p.UpdatedAt = updatedAt.Time
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating products with error=%w", err)
	}

	return products, nil
}

func (s *PostgresStore) InsertProduct(
	c context.Context,
	p product.Product,
) (product.Product, error) {
	row := s.pool.QueryRow(
		c,
		`INSERT INTO products (id, name, category, price, quantity)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, name, category, price, quantity, created_at, updated_at`,
		p.ID,
		p.Name,
		p.Category,
		numericFromDecimal(p.Price),
		p.Quantity,
	)

	var inserted product.Product
	var price pgtype.Numeric
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(
		&inserted.ID,
		&inserted.Name,
		&inserted.Category,
		&price,
		&inserted.Quantity,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return product.Product{}, fmt.Errorf("failed inserting product with error=%w", err)
	}
	inserted.Price = decimalFromNumeric(price)
	inserted.CreatedAt = createdAt.Time
	inserted.UpdatedAt = updatedAt.Time

	return inserted, nil
}

func (s *PostgresStore) ReduceStock(c context.Context, updates []product.StockUpdate) error {
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed initializing transaction with error=%w", err)
	}
	defer tx.Rollback(c)

	for _, update := range updates {
		_, err = tx.Exec(
			c,
			`UPDATE products SET quantity = quantity - $1, updated_at = now() WHERE id = $2`,
			update.Quantity,
			update.ProductID,
		)
		if err != nil {
			return fmt.Errorf(
				"failed reducing stock for productId=%s with error=%w",
				update.ProductID.String(),
				err,
			)
		}
	}

	err = tx.Commit(c)
	if err != nil {
		return fmt.Errorf("failed committing transaction with error=%w", err)
	}
	return nil
}
