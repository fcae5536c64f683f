package product

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/mkovardin/webshop/internal/models"
	"github.com/mkovardin/webshop/internal/repository"
)

// Fields accepted on product create and update
type ProductParams struct {
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	ImageURL    string
}

// ProductService is ordinary catalog CRUD. It knows nothing about
// authentication, the router guards the write operations.
type ProductService struct {
	productRepo repository.ProductRepo
}

func NewService(productRepo repository.ProductRepo) *ProductService {
	return &ProductService{productRepo: productRepo}
}

func (s *ProductService) Create(ctx context.Context, params ProductParams) (models.Product, error) {
	product, err := s.productRepo.CreateProduct(ctx, models.Product{
		ID:          uuid.New(),
		Name:        params.Name,
		Description: params.Description,
		Category:    params.Category,
		Price:       params.Price,
		ImageURL:    params.ImageURL,
	})
	if err != nil {
		return product, fmt.Errorf("can't create product. Err: %w", err)
	}

	return product, nil
}

func (s *ProductService) Get(ctx context.Context, productID uuid.UUID) (models.Product, error) {
	return s.productRepo.GetProductByID(ctx, productID)
}

func (s *ProductService) List(ctx context.Context, category string) ([]models.Product, error) {
	return s.productRepo.ListProducts(ctx, category)
}

func (s *ProductService) Update(ctx context.Context, productID uuid.UUID, params ProductParams) (models.Product, error) {
	return s.productRepo.UpdateProduct(ctx, models.Product{
		ID:          productID,
		Name:        params.Name,
		Description: params.Description,
		Category:    params.Category,
		Price:       params.Price,
		ImageURL:    params.ImageURL,
	})
}

func (s *ProductService) Delete(ctx context.Context, productID uuid.UUID) error {
	return s.productRepo.DeleteProduct(ctx, productID)
}
