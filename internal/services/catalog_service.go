package services

import (
	"pricebook/internal/domain"
	"pricebook/internal/repos"
)

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods}
}

func (s *CatalogService) ListCategories() ([]domain.Category, error) {
	return s.Cats.List()
}

func (s *CatalogService) ListProductsByCategory(catID string, page, pageSize int) ([]domain.Product, error) {
	limit, offset := paginate(page, pageSize)
	return s.Prods.ListByCategory(catID, limit, offset)
}

// GetProduct returns nil, nil for unknown ids.
func (s *CatalogService) GetProduct(id string) (*domain.Product, error) {
	return s.Prods.Get(id)
}

func (s *CatalogService) Variants(productID string) ([]domain.Variant, error) {
	return s.Prods.Variants(productID)
}

func (s *CatalogService) Search(q, category string, page, pageSize int) ([]domain.Product, error) {
	limit, offset := paginate(page, pageSize)
	return s.Prods.Search(q, category, limit, offset)
}

// Entities wraps products as result rows ready for price/stock aggregation.
func (s *CatalogService) Entities(products []domain.Product) []*domain.ProductEntity {
	out := make([]*domain.ProductEntity, 0, len(products))
	for _, p := range products {
		out = append(out, domain.NewProductEntity(p))
	}
	return out
}

func paginate(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 12
	}
	return pageSize, (page - 1) * pageSize
}
