package usecase

import (
	"context"

	"github.com/DRSN-tech/pukkaprice-backend/internal/domain"
)

type ProductUC interface {
	ListProducts(ctx context.Context, raw *RawProductQuery) *ListEnvelope
	ListDeals(ctx context.Context, raw *RawProductQuery) *ListEnvelope
	SearchProducts(ctx context.Context, keyword string, raw *RawProductQuery) *ListEnvelope
	SearchSuggestions(ctx context.Context, query string) []string
	GetCategories(ctx context.Context) (*CategoriesRes, error)
	GetSubCategoriesByCategory(ctx context.Context, category string) ([]SubCategoryCount, error)
	ListSubCategories() []domain.SubCategory

	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	FindProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, req *UpdateProductReq) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) (*domain.Product, error)
}
