package service

import (
	"context"

	"github.com/atinyakov/ShopKeeper/internal/models"
)

// collection is the per-entity contract shared by both backends.
type collection[T any] interface {
	List(ctx context.Context) ([]T, error)
	Replace(ctx context.Context, items []T) error
	Add(ctx context.Context, rec T) (string, error)
	Update(ctx context.Context, id string, patch models.Patch) error
	Delete(ctx context.Context, id string) error
}

// backend is implemented by localBackend and remoteBackend. Storage holds
// the one selected at construction.
type backend interface {
	phones() collection[models.Phone]
	accessories() collection[models.Accessory]
	sales() collection[models.Sale]
	sale(ctx context.Context, id string) (models.Sale, error)

	phoneTypes(ctx context.Context) (models.PhoneTypes, error)
	replacePhoneTypes(ctx context.Context, types models.PhoneTypes) error
	addPhoneType(ctx context.Context, brand, model string) error
	deletePhoneType(ctx context.Context, brand, model string) error

	accessoryCategories(ctx context.Context) ([]models.AccessoryCategory, error)
	replaceAccessoryCategories(ctx context.Context, list []models.AccessoryCategory) error
	addAccessoryCategory(ctx context.Context, c models.AccessoryCategory) error
	deleteAccessoryCategory(ctx context.Context, key string) error

	searchPhones(ctx context.Context, term string) ([]models.Phone, error)
	searchAccessories(ctx context.Context, term string) ([]models.Accessory, error)

	onPhonesChange(fn func([]models.Phone)) (func(), error)
	onAccessoriesChange(fn func([]models.Accessory)) (func(), error)
	onSalesChange(fn func([]models.Sale)) (func(), error)
}
