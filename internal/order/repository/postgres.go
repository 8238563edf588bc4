package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	inErrors "github.com/edgestore/storefront/internal/errors"
	"github.com/edgestore/storefront/internal/order"
)

const pgUniqueViolation = "23505"

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
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

func (r *PostgresRepository) Create(c context.Context, o order.Order) error {
	tx, err := r.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed initializing transaction with error=%w", err)
	}
	defer tx.Rollback(c)

	_, err = tx.Exec(
		c,
		`INSERT INTO orders (id, account_id, total, status, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		o.ID,
		o.AccountID,
		numericFromDecimal(o.Total),
		string(o.Status),
		o.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf(
				"orderId=%s with error=%w",
				o.ID.String(),
				inErrors.ErrDuplicateOrder,
			)
		}
		return fmt.Errorf("failed inserting order with error=%w", err)
	}

	rows := make([][]interface{}, 0, len(o.Items))
	for _, item := range o.Items {
		rows = append(rows, []interface{}{
			item.ID,
			o.ID,
			item.ProductID,
			item.Quantity,
			numericFromDecimal(item.UnitPrice),
			numericFromDecimal(item.LineTotal),
		})
	}
	_, err = tx.CopyFrom(
		c,
		pgx.Identifier{"order_items"},
		[]string{"id", "order_id", "product_id", "quantity", "unit_price", "line_total"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed inserting order items with error=%w", err)
	}

	err = tx.Commit(c)
	if err != nil {
		return fmt.Errorf("failed committing transaction with error=%w", err)
	}
	return nil
}

func (r *PostgresRepository) Cancel(c context.Context, orderId uuid.UUID) error {
	tx, err := r.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed initializing transaction with error=%w", err)
	}
	defer tx.Rollback(c)

	var status string
	err = tx.QueryRow(
		c,
		`SELECT status FROM orders WHERE id = $1 FOR UPDATE`,
		orderId,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("orderId=%s with error=%w", orderId.String(), inErrors.ErrNotFound)
		}
		return fmt.Errorf("failed locking order with error=%w", err)
	}
	if order.Status(status) == order.StatusCancelled {
		return fmt.Errorf(
			"orderId=%s with error=%w",
			orderId.String(),
			inErrors.ErrAlreadyCancelled,
		)
	}

	_, err = tx.Exec(
		c,
		`UPDATE orders SET status = $1 WHERE id = $2`,
		string(order.StatusCancelled),
		orderId,
	)
	if err != nil {
		return fmt.Errorf("failed cancelling order with error=%w", err)
	}

	err = tx.Commit(c)
	if err != nil {
		return fmt.Errorf("failed committing transaction with error=%w", err)
	}
	return nil
}

func (r *PostgresRepository) FindById(c context.Context, orderId uuid.UUID) (order.Order, error) {
	row := r.pool.QueryRow(
		c,
		`SELECT id, account_id, total, status, created_at FROM orders WHERE id = $1`,
		orderId,
	)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, fmt.Errorf(
				"orderId=%s with error=%w",
				orderId.String(),
				inErrors.ErrNotFound,
			)
		}
		return order.Order{}, fmt.Errorf("failed finding order with error=%w", err)
	}

	o.Items, err = r.findItems(c, orderId)
	if err != nil {
		return order.Order{}, err
	}
	return o, nil
}

func (r *PostgresRepository) FindByAccount(
	c context.Context,
	accountId uuid.UUID,
) ([]order.Order, error) {
	rows, err := r.pool.Query(
		c,
		`SELECT id, account_id, total, status, created_at
		 FROM orders WHERE account_id = $1 ORDER BY created_at DESC`,
		accountId,
	)
	if err != nil {
		return nil, fmt.Errorf("failed finding orders with error=%w", err)
	}
	defer rows.Close()

	orders := []order.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed scanning order with error=%w", err)
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating orders with error=%w", err)
	}

	for i := range orders {
		orders[i].Items, err = r.findItems(c, orders[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *PostgresRepository) findItems(
	c context.Context,
	orderId uuid.UUID,
) ([]order.LineItem, error) {
	rows, err := r.pool.Query(
		c,
		`SELECT id, order_id, product_id, quantity, unit_price, line_total
		 FROM order_items WHERE order_id = $1`,
		orderId,
	)
	if err != nil {
		return nil, fmt.Errorf("failed finding order items with error=%w", err)
	}
	defer rows.Close()

	items := []order.LineItem{}
	for rows.Next() {
		var item order.LineItem
		var unitPrice, lineTotal pgtype.Numeric
		err = rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&unitPrice,
			&lineTotal,
		)
		if err != nil {
			return nil, fmt.Errorf("failed scanning order item with error=%w", err)
		}
		item.UnitPrice = decimalFromNumeric(unitPrice)
		item.LineTotal = decimalFromNumeric(lineTotal)
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating order items with error=%w", err)
	}
	return items, nil
}

func scanOrder(row pgx.Row) (order.Order, error) {
	var o order.Order
	var total pgtype.Numeric
	var status string
	var createdAt pgtype.Timestamptz
	err := row.Scan(&o.ID, &o.AccountID, &total, &status, &createdAt)
	if err != nil {
		return order.Order{}, err
	}
	o.Total = decimalFromNumeric(total)
	o.Status = order.Status(status)
	o.CreatedAt = createdAt.Time
	return o, nil
}
