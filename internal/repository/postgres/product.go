package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mkovardin/webshop/internal/apperrors"
	"github.com/mkovardin/webshop/internal/models"
)

type ProductRepo struct {
	DB DBTX
}

const createProduct = `-- name: CreateProduct
INSERT INTO products (id, name, description, category, price, image_url)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at, name, description, category, price, image_url
`

func (r *ProductRepo) CreateProduct(ctx context.Context, product models.Product) (models.Product, error) {
	rows, _ := r.DB.Query(ctx, createProduct, product.ID, product.Name, product.Description, product.Category, product.Price, product.ImageURL)
	created, err := pgx.CollectOneRow(rows, rowToProduct)
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

const getProductByID = `-- name: GetProductByID
SELECT id, created_at, name, description, category, price, image_url
FROM products
WHERE id = $1
`

func (r *ProductRepo) GetProductByID(ctx context.Context, productID uuid.UUID) (models.Product, error) {
	rows, _ := r.DB.Query(ctx, getProductByID, productID)
	product, err := pgx.CollectOneRow(rows, rowToProduct)

	switch {
	case err == nil:
		return product, nil
	case errors.Is(err, pgx.ErrNoRows):
		return product, apperrors.ErrProductNotFound
	default:
		return product, fmt.Errorf("db error: %w", err)
	}
}

const updateProduct = `-- name: UpdateProduct
UPDATE products
SET name = $2, description = $3, category = $4, price = $5, image_url = $6
WHERE id = $1
RETURNING id, created_at, name, description, category, price, image_url
`

func (r *ProductRepo) UpdateProduct(ctx context.Context, product models.Product) (models.Product, error) {
	rows, _ := r.DB.Query(ctx, updateProduct, product.ID, product.Name, product.Description, product.Category, product.Price, product.ImageURL)
	updated, err := pgx.CollectOneRow(rows, rowToProduct)

	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, pgx.ErrNoRows):
		return updated, apperrors.ErrProductNotFound
	default:
		return updated, fmt.Errorf("db error: %w", err)
	}
}

const deleteProduct = `-- name: DeleteProduct
DELETE FROM products
WHERE id = $1
`

func (r *ProductRepo) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteProduct, productID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProductNotFound
	}
	return nil
}

const listProducts = `-- name: ListProducts
SELECT id, created_at, name, description, category, price, image_url
FROM products
WHERE $1 = '' OR category = $1
ORDER BY created_at DESC, name
`

func (r *ProductRepo) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	rows, _ := r.DB.Query(ctx, listProducts, category)
	products, err := pgx.CollectRows(rows, rowToProduct)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return products, nil
}

func rowToProduct(row pgx.CollectableRow) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.CreatedAt, &p.Name, &p.Description, &p.Category, &p.Price, &p.ImageURL)
	return p, err
}
