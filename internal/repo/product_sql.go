package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rogerio-castellano/catalog-service/internal/db"
	"github.com/rogerio-castellano/catalog-service/internal/models"
)

const defaultQueryTimeout = 3 * time.Second

const productColumns = `id, name, brand, category, price, image_url`

// SQLProductRepository stores products in the products table of a
// PostgreSQL or SQLite database.
type SQLProductRepository struct {
	db      *sql.DB
	driver  db.Driver
	timeout time.Duration
}

func NewSQLProductRepository(database *sql.DB, driver db.Driver, timeout time.Duration) *SQLProductRepository {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &SQLProductRepository{db: database, driver: driver, timeout: timeout}
}

// withConn runs fn on a connection held for the duration of one operation.
func (r *SQLProductRepository) withConn(ctx context.Context, fn func(ctx context.Context, conn *sql.Conn) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	return fn(ctx, conn)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &p.Price, &p.ImageURL)
	return p, err
}

func (r *SQLProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	query := r.driver.Rebind(`INSERT INTO products (name, brand, category, price, image_url) VALUES (?, ?, ?, ?, ?) RETURNING id`)

	err := r.withConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, query, p.Name, p.Brand, p.Category, p.Price, p.ImageURL).Scan(&p.ID)
	})
	if err != nil {
		return models.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (r *SQLProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY id`

	products := []models.Product{}
	err := r.withConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				return err
			}
			products = append(products, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (r *SQLProductRepository) GetByID(ctx context.Context, id int) (models.Product, error) {
	query := r.driver.Rebind(`SELECT ` + productColumns + ` FROM products WHERE id = ?`)

	var p models.Product
	err := r.withConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		var err error
		p, err = scanProduct(conn.QueryRowContext(ctx, query, id))
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// Update overwrites the product in a single statement. image_url keeps its
// stored value when the update carries no image reference.
func (r *SQLProductRepository) Update(ctx context.Context, id int, u models.ProductUpdate) (models.Product, error) {
	query := r.driver.Rebind(`UPDATE products SET name = ?, brand = ?, category = ?, price = ?, image_url = COALESCE(?, image_url) WHERE id = ? RETURNING ` + productColumns)

	var image sql.NullString
	if u.ImageURL != nil {
		image = sql.NullString{String: *u.ImageURL, Valid: true}
	}

	var p models.Product
	err := r.withConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		var err error
		p, err = scanProduct(conn.QueryRowContext(ctx, query, u.Name, u.Brand, u.Category, u.Price, image, id))
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	return p, nil
}

func (r *SQLProductRepository) Delete(ctx context.Context, id int) error {
	query := r.driver.Rebind(`DELETE FROM products WHERE id = ?`)

	var rowsAffected int64
	err := r.withConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, query, id)
		if err != nil {
			return err
		}
		rowsAffected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
