package service

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/iliyamo/beverage-reservation/internal/model"
)

type CatalogStore interface {
	ListBranches(ctx context.Context) ([]model.Branch, error)
	ListRecipes(ctx context.Context) ([]model.Recipe, error)
	ListTypes(ctx context.Context) ([]model.DrinkType, error)
	ListItemsByType(ctx context.Context, typeID string) ([]model.Item, error)
}

// CatalogService serves read-only catalog listings.
type CatalogService struct {
	store CatalogStore
}

func NewCatalogService(store CatalogStore) *CatalogService {
	return &CatalogService{store: store}
}

func (s *CatalogService) ListBranches(ctx context.Context) ([]model.Branch, error) {
	out, err := s.store.ListBranches(ctx)
	return out, storeErr("s.store.ListBranches", err)
}

func (s *CatalogService) ListRecipes(ctx context.Context) ([]model.Recipe, error) {
	out, err := s.store.ListRecipes(ctx)
	return out, storeErr("s.store.ListRecipes", err)
}

func (s *CatalogService) ListTypes(ctx context.Context) ([]model.DrinkType, error) {
	out, err := s.store.ListTypes(ctx)
	return out, storeErr("s.store.ListTypes", err)
}

func (s *CatalogService) ListItemsByType(ctx context.Context, typeID string) ([]model.Item, error) {
	if err := validation.Validate(typeID, validation.Required); err != nil {
		return nil, invalid(fmt.Errorf("typeId: %w", err))
	}
	out, err := s.store.ListItemsByType(ctx, typeID)
	return out, storeErr("s.store.ListItemsByType", err)
}
