package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const create = `-- name: Create :one
INSERT INTO products (id, name, description, price, stock_quantity, status, created_date)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, name, description, price, stock_quantity, status, created_date
`

type CreateParams struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Price         int64         `json:"price"`
	StockQuantity int32         `json:"stockQuantity"`
	Status        ProductStatus `json:"status"`
	CreatedDate   time.Time     `json:"createdDate"`
}

func (q *Queries) Create(ctx context.Context, arg CreateParams) (Product, error) {
	row := q.db.QueryRow(ctx, create,
		arg.ID,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.StockQuantity,
		arg.Status,
		arg.CreatedDate,
	)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.StockQuantity,
		&i.Status,
		&i.CreatedDate,
	)
	return i, err
}

const decrementStock = `-- name: DecrementStock :one
UPDATE products
SET stock_quantity = stock_quantity - $2,
    status         = CASE WHEN stock_quantity - $2 = 0 THEN 'OutOfStock' ELSE status END
WHERE id = $1
  AND status = 'InStock'
  AND stock_quantity >= $2
RETURNING id, name, description, price, stock_quantity, status, created_date
`

type DecrementStockParams struct {
	ID            uuid.UUID `json:"id"`
	StockQuantity int32     `json:"stockQuantity"`
}

func (q *Queries) DecrementStock(ctx context.Context, arg DecrementStockParams) (Product, error) {
	row := q.db.QueryRow(ctx, decrementStock, arg.ID, arg.StockQuantity)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.StockQuantity,
		&i.Status,
		&i.CreatedDate,
	)
	return i, err
}

const delete = `-- name: Delete :execrows
DELETE FROM products
WHERE id = $1
`

func (q *Queries) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, delete, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const findAll = `-- name: FindAll :many
SELECT id, name, description, price, stock_quantity, status, created_date
FROM products
ORDER BY created_date, id
`

func (q *Queries) FindAll(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, findAll)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Product{}
	for rows.Next() {
		var i Product
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Description,
			&i.Price,
			&i.StockQuantity,
			&i.Status,
			&i.CreatedDate,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const findByID = `-- name: FindByID :one
SELECT id, name, description, price, stock_quantity, status, created_date
FROM products
WHERE id = $1
`

func (q *Queries) FindByID(ctx context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, findByID, id)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.StockQuantity,
		&i.Status,
		&i.CreatedDate,
	)
	return i, err
}

const update = `-- name: Update :one
UPDATE products
SET name           = $2,
    description    = $3,
    price          = $4,
    stock_quantity = $5,
    status         = CASE WHEN $5::INTEGER = 0 THEN 'OutOfStock' ELSE 'InStock' END
WHERE id = $1
RETURNING id, name, description, price, stock_quantity, status, created_date
`

type UpdateParams struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         int64     `json:"price"`
	StockQuantity int32     `json:"stockQuantity"`
}

func (q *Queries) Update(ctx context.Context, arg UpdateParams) (Product, error) {
	row := q.db.QueryRow(ctx, update,
		arg.ID,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.StockQuantity,
	)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.StockQuantity,
		&i.Status,
		&i.CreatedDate,
	)
	return i, err
}
