package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/mkovardin/webshop/internal/apperrors"
	"github.com/mkovardin/webshop/internal/handlers/render"
	"github.com/mkovardin/webshop/internal/models"
	"github.com/mkovardin/webshop/internal/service/product"
)

// Product service as the handler sees it
type ProductService interface {
	Create(ctx context.Context, params product.ProductParams) (models.Product, error)
	Get(ctx context.Context, productID uuid.UUID) (models.Product, error)
	List(ctx context.Context, category string) ([]models.Product, error)
	Update(ctx context.Context, productID uuid.UUID, params product.ProductParams) (models.Product, error)
	Delete(ctx context.Context, productID uuid.UUID) error
}

type ProductRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Category    string          `json:"category" validate:"max=100"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
}

type ProductResponse struct {
	ID          string          `json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
}

type ProductHandler struct {
	products ProductService
}

func NewProduct(products ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// Handler routes catalog operations. Reads are public, writes are wrapped
// with the admin route policy supplied by the router.
func (h *ProductHandler) Handler(admin func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /", http.HandlerFunc(h.list))
	mux.Handle("GET /{id}", http.HandlerFunc(h.get))
	mux.Handle("POST /", admin(http.HandlerFunc(h.create)))
	mux.Handle("PUT /{id}", admin(http.HandlerFunc(h.update)))
	mux.Handle("DELETE /{id}", admin(http.HandlerFunc(h.delete)))

	return mux
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		response = append(response, toProductResponse(p))
	}

	render.JSON(w, response)
}

func (h *ProductHandler) get(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Product not found", http.StatusNotFound)
		return
	}

	p, err := h.products.Get(r.Context(), productID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrProductNotFound):
			render.ServiceError(w, "Product not found", http.StatusNotFound)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, toProductResponse(p))
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	data, err := render.BindAndValidate[ProductRequest](w, r)
	if err != nil {
		return
	}

	p, err := h.products.Create(r.Context(), toProductParams(data))
	if err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSONWithStatus(w, toProductResponse(p), http.StatusCreated)
}

func (h *ProductHandler) update(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Product not found", http.StatusNotFound)
		return
	}

	data, err := render.BindAndValidate[ProductRequest](w, r)
	if err != nil {
		return
	}

	p, err := h.products.Update(r.Context(), productID, toProductParams(data))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrProductNotFound):
			render.ServiceError(w, "Product not found", http.StatusNotFound)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, toProductResponse(p))
}

func (h *ProductHandler) delete(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Product not found", http.StatusNotFound)
		return
	}

	if err := h.products.Delete(r.Context(), productID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrProductNotFound):
			render.ServiceError(w, "Product not found", http.StatusNotFound)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toProductParams(req ProductRequest) product.ProductParams {
	return product.ProductParams{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	}
}

func toProductResponse(p models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID.String(),
		CreatedAt:   p.CreatedAt,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
	}
}
