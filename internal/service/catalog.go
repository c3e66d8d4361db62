package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"restaurant-booking/internal/core/cache"
	"restaurant-booking/internal/domain"
)

const (
	keyCategories     = "catalog:categories"
	keyProductsPrefix = "catalog:products:"
)

// CatalogService serves the menu. Reads go through the cache when one is
// configured; writes invalidate it.
type CatalogService struct {
	repo  domain.CatalogRepository
	cache *cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewCatalogService(repo domain.CatalogRepository, c *cache.Cache, ttl time.Duration, log *zap.Logger) *CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogService{repo: repo, cache: c, ttl: ttl, log: log}
}

type CategoryInput struct {
	Name  string
	Photo string
	Order int
}

type ProductInput struct {
	Name        string
	Description string
	Price       float64
	CategoryID  uint
	Image       string
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return cache.GetOrLoadJSON(s.cache, ctx, keyCategories, s.ttl, s.repo.ListCategories)
}

// ListProducts lists every product, or those of one category.
func (s *CatalogService) ListProducts(ctx context.Context, categoryID uint) ([]domain.Product, error) {
	key := fmt.Sprintf("%s%d", keyProductsPrefix, categoryID)
	return cache.GetOrLoadJSON(s.cache, ctx, key, s.ttl, func(ctx context.Context) ([]domain.Product, error) {
		return s.repo.ListProducts(ctx, categoryID)
	})
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	p, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound(fmt.Sprintf("product %d not found", id))
	}
	return p, nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, []string{keyCategories}, keyProductsPrefix); err != nil {
		s.log.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}

func canWriteCatalog(actor domain.Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !domain.Can(actor, domain.ActCatalogWrite, nil) {
		return domain.Forbidden("only administrators can change the menu")
	}
	return nil
}

func (in CategoryInput) validate() (CategoryInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, domain.Validation("category name is required")
	}
	if len(in.Name) > 255 {
		return in, domain.Validation("category name must be at most 255 characters")
	}
	return in, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, actor domain.Actor, in CategoryInput) (*domain.Category, error) {
	if err := canWriteCatalog(actor); err != nil {
		return nil, err
	}
	in, err := in.validate()
	if err != nil {
		return nil, err
	}
	c := &domain.Category{Name: in.Name, Photo: in.Photo, Order: in.Order}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, actor domain.Actor, id uint, in CategoryInput) (*domain.Category, error) {
	if err := canWriteCatalog(actor); err != nil {
		return nil, err
	}
	in, err := in.validate()
	if err != nil {
		return nil, err
	}
	c, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound(fmt.Sprintf("category %d not found", id))
	}
	c.Name, c.Photo, c.Order = in.Name, in.Photo, in.Order
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return c, nil
}

// DeleteCategory refuses while products still reference the category.
func (s *CatalogService) DeleteCategory(ctx context.Context, actor domain.Actor, id uint) error {
	if err := canWriteCatalog(actor); err != nil {
		return err
	}
	n, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.Conflict(fmt.Sprintf("category %d still has %d products", id, n))
	}
	ok, err := s.repo.DeleteCategory(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound(fmt.Sprintf("category %d not found", id))
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) checkProduct(ctx context.Context, in ProductInput) (ProductInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Image = strings.TrimSpace(in.Image)
	switch {
	case in.Name == "":
		return in, domain.Validation("product name is required")
	case in.Description == "":
		return in, domain.Validation("product description is required")
	case in.Image == "":
		return in, domain.Validation("product image is required")
	case in.Price < 0:
		return in, domain.Validation("price cannot be negative")
	}
	c, err := s.repo.FindCategory(ctx, in.CategoryID)
	if err != nil {
		return in, err
	}
	if c == nil {
		return in, domain.NotFound(fmt.Sprintf("category %d not found", in.CategoryID))
	}
	return in, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, actor domain.Actor, in ProductInput) (*domain.Product, error) {
	if err := canWriteCatalog(actor); err != nil {
		return nil, err
	}
	in, err := s.checkProduct(ctx, in)
	if err != nil {
		return nil, err
	}
	p := &domain.Product{Name: in.Name, Description: in.Description, Price: in.Price, CategoryID: in.CategoryID, Image: in.Image}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, actor domain.Actor, id uint, in ProductInput) (*domain.Product, error) {
	if err := canWriteCatalog(actor); err != nil {
		return nil, err
	}
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	in, err = s.checkProduct(ctx, in)
	if err != nil {
		return nil, err
	}
	p.Name, p.Description, p.Price, p.CategoryID, p.Image = in.Name, in.Description, in.Price, in.CategoryID, in.Image
	p.Category = nil
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, actor domain.Actor, id uint) error {
	if err := canWriteCatalog(actor); err != nil {
		return err
	}
	ok, err := s.repo.DeleteProduct(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound(fmt.Sprintf("product %d not found", id))
	}
	s.invalidate(ctx)
	return nil
}
