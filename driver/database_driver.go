package driver

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxIface is the subset of *pgxpool.Pool used by DatabaseDriver.
type PgxIface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

type DatabaseDriver struct {
	pool PgxIface
}

func NewDatabaseDriver(pool PgxIface) *DatabaseDriver {
	return &DatabaseDriver{
		pool: pool,
	}
}

// NewDatabasePool parses the connection URL, opens a pool and pings it.
func NewDatabasePool(ctx context.Context, dbURL string, maxConns int32) (*pgxpool.Pool, error) {
	if dbURL == "" {
		return nil, &DriverError{
			Op:  "NewDatabasePool",
			Err: "database URL is not set",
		}
	}

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, &DriverError{
			Op:  "NewDatabasePool",
			Err: "failed to parse database URL: " + err.Error(),
		}
	}
	if maxConns > 0 {
		config.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, &DriverError{
			Op:  "NewDatabasePool",
			Err: "failed to create database pool: " + err.Error(),
		}
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &DriverError{
			Op:  "NewDatabasePool",
			Err: "failed to ping database: " + err.Error(),
		}
	}

	return pool, nil
}

// Close closes the database connection pool
func (d *DatabaseDriver) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
}

const productColumns = `p.id, p.name, COALESCE(p.description, ''), COALESCE(p.brand, ''), COALESCE(p.type, ''),
			   COALESCE(p.categories, '{}'), p.price, COALESCE(p.rating, 0), COALESCE(p.image, '')`

// GetProducts returns up to limit products ordered by id, starting after afterID.
func (d *DatabaseDriver) GetProducts(ctx context.Context, afterID string, limit int) ([]*ProductRow, error) {
	var query string
	var args []interface{}

	if afterID == "" {
		// First query - no cursor constraint
		query = `
			SELECT ` + productColumns + `
			FROM products p
			ORDER BY p.id ASC
			LIMIT $1
		`
		args = []interface{}{limit}
	} else {
		// Subsequent queries - keyset pagination on the primary key
		query = `
			SELECT ` + productColumns + `
			FROM products p
			WHERE p.id > $1
			ORDER BY p.id ASC
			LIMIT $2
		`
		args = []interface{}{afterID, limit}
	}

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, &DriverError{
			Op:  "GetProducts",
			Err: err.Error(),
		}
	}
	return scanProducts(rows, "GetProducts")
}

// GetProductsByIDs returns the products with the given ids that still
// exist, ordered by id.
func (d *DatabaseDriver) GetProductsByIDs(ctx context.Context, ids []string) ([]*ProductRow, error) {
	if len(ids) == 0 {
		return []*ProductRow{}, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.id = ANY($1)
		ORDER BY p.id ASC
	`

	rows, err := d.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, &DriverError{
			Op:  "GetProductsByIDs",
			Err: err.Error(),
		}
	}
	return scanProducts(rows, "GetProductsByIDs")
}

func scanProducts(rows pgx.Rows, op string) ([]*ProductRow, error) {
	defer rows.Close()

	products := []*ProductRow{}
	for rows.Next() {
		var p ProductRow
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Brand, &p.Type,
			&p.Categories, &p.Price, &p.Rating, &p.Image); err != nil {
			return nil, &DriverError{
				Op:  op,
				Err: "failed to scan product: " + err.Error(),
			}
		}
		products = append(products, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, &DriverError{
			Op:  op,
			Err: err.Error(),
		}
	}

	return products, nil
}
