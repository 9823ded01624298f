package service

import (
	"context"
	"slices"
	"strings"

	"github.com/atinyakov/ShopKeeper/internal/models"
)

type searchable interface {
	SearchFields() []string
}

// matching keeps the items with at least one field containing term,
// ignoring case. An empty term matches everything.
func matching[T searchable](items []T, term string) []T {
	needle := strings.ToLower(term)
	out := make([]T, 0, len(items))
	for _, it := range items {
		if slices.ContainsFunc(it.SearchFields(), func(f string) bool {
			return strings.Contains(strings.ToLower(f), needle)
		}) {
			out = append(out, it)
		}
	}
	return out
}

// SearchPhones returns phones whose number, serial, brand, model, color,
// memory, description or customer fields contain term.
func (s *Storage) SearchPhones(ctx context.Context, term string) ([]models.Phone, error) {
	return s.backend.searchPhones(ctx, term)
}

// SearchAccessories returns accessories whose name, category, description,
// supplier or notes contain term.
func (s *Storage) SearchAccessories(ctx context.Context, term string) ([]models.Accessory, error) {
	return s.backend.searchAccessories(ctx, term)
}
