package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	inErrors "github.com/edgestore/storefront/internal/errors"
	"github.com/edgestore/storefront/internal/order"
)

func setupPostgres(t *testing.T, c context.Context) (*pgxpool.Pool, *PostgresRepository) {
	t.Helper()

	pgContainer, err := postgres.Run(
		c,
		"postgres:16.6-alpine3.21",
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithDatabase("postgres"),
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			filepath.Join("..", "..", "..", "migrations", "000001_create_products.up.sql"),
			filepath.Join("..", "..", "..", "migrations", "000002_create_orders.up.sql"),
		),
	)
	if err != nil {
		t.Fatalf("failed running postgres container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting postgres connection string with error: %s", err)
	}

	pool, err := pgxpool.New(c, connStr)
	if err != nil {
		t.Fatalf("failed creating postgres pool with error: %s", err)
	}
	t.Cleanup(pool.Close)

	if err = pool.Ping(c); err != nil {
		t.Fatalf("failed ping postgres pool with error: %s", err)
	}

	return pool, NewPostgresRepository(pool)
}

func newTestOrder(accountId uuid.UUID, createdAt time.Time) order.Order {
	orderId := uuid.New()
	return order.Order{
		ID:        orderId,
		AccountID: accountId,
		Items: []order.LineItem{
			{
				ID:        uuid.New(),
				OrderID:   orderId,
				ProductID: uuid.New(),
				Quantity:  2,
				UnitPrice: decimal.NewFromInt(10),
				LineTotal: decimal.NewFromInt(20),
			},
			{
				ID:        uuid.New(),
				OrderID:   orderId,
				ProductID: uuid.New(),
				Quantity:  1,
				UnitPrice: decimal.NewFromInt(5),
				LineTotal: decimal.NewFromInt(5),
			},
		},
		Total:     decimal.NewFromInt(25),
		Status:    order.StatusPlaced,
		CreatedAt: createdAt,
	}
}

func TestPostgresCreateAndFindById(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	c := context.Background()
	_, repo := setupPostgres(t, c)

	accountId := uuid.New()
	o := newTestOrder(accountId, time.Now().UTC())
	require.NoError(t, repo.Create(c, o))

	found, err := repo.FindById(c, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, found.ID)
	assert.Equal(t, accountId, found.AccountID)
	assert.Equal(t, order.StatusPlaced, found.Status)
	assert.True(t, found.Total.Equal(decimal.NewFromInt(25)))
	require.Len(t, found.Items, 2)

	sum := decimal.Zero
	for _, item := range found.Items {
		sum = sum.Add(item.LineTotal)
	}
	assert.True(t, found.Total.Equal(sum))
}

func TestPostgresCreateDuplicate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	c := context.Background()
	_, repo := setupPostgres(t, c)

	o := newTestOrder(uuid.New(), time.Now().UTC())
	require.NoError(t, repo.Create(c, o))

	err := repo.Create(c, o)
	assert.ErrorIs(t, err, inErrors.ErrDuplicateOrder)
}

func TestPostgresCancel(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	c := context.Background()
	_, repo := setupPostgres(t, c)

	o := newTestOrder(uuid.New(), time.Now().UTC())
	require.NoError(t, repo.Create(c, o))

	require.NoError(t, repo.Cancel(c, o.ID))

	found, err := repo.FindById(c, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, found.Status)

	err = repo.Cancel(c, o.ID)
	assert.ErrorIs(t, err, inErrors.ErrAlreadyCancelled)

	err = repo.Cancel(c, uuid.New())
	assert.ErrorIs(t, err, inErrors.ErrNotFound)
}

func TestPostgresFindByAccountNewestFirst(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	c := context.Background()
	_, repo := setupPostgres(t, c)

	accountId := uuid.New()
	older := newTestOrder(accountId, time.Now().UTC().Add(-time.Hour))
	newer := newTestOrder(accountId, time.Now().UTC())
	foreign := newTestOrder(uuid.New(), time.Now().UTC())
	require.NoError(t, repo.Create(c, older))
	require.NoError(t, repo.Create(c, newer))
	require.NoError(t, repo.Create(c, foreign))

	orders, err := repo.FindByAccount(c, accountId)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, newer.ID, orders[0].ID)
	assert.Equal(t, older.ID, orders[1].ID)
	require.Len(t, orders[0].Items, 2)
}
