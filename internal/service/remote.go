package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/ShopKeeper/internal/kv"
	"github.com/atinyakov/ShopKeeper/internal/models"
)

// RemoteStore is the document database client consumed by Storage. Every
// method may block on the network and may fail with any error.
type RemoteStore interface {
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	GetPhones(ctx context.Context) ([]models.Phone, error)
	AddPhone(ctx context.Context, p models.Phone) (string, error)
	UpdatePhone(ctx context.Context, id string, patch models.Patch) error
	DeletePhone(ctx context.Context, id string) error

	GetAccessories(ctx context.Context) ([]models.Accessory, error)
	AddAccessory(ctx context.Context, a models.Accessory) (string, error)
	UpdateAccessory(ctx context.Context, id string, patch models.Patch) error
	DeleteAccessory(ctx context.Context, id string) error

	GetSales(ctx context.Context) ([]models.Sale, error)
	GetSale(ctx context.Context, id string) (models.Sale, error)
	AddSale(ctx context.Context, s models.Sale) (string, error)
	UpdateSale(ctx context.Context, id string, patch models.Patch) error
	DeleteSale(ctx context.Context, id string) error

	GetPhoneTypes(ctx context.Context) ([]models.PhoneType, error)
	AddPhoneType(ctx context.Context, t models.PhoneType) error
	DeletePhoneType(ctx context.Context, brand, model string) error

	GetAccessoryCategories(ctx context.Context) ([]models.AccessoryCategory, error)
	AddAccessoryCategory(ctx context.Context, c models.AccessoryCategory) error
	DeleteAccessoryCategory(ctx context.Context, key string) error

	SearchPhones(ctx context.Context, term string) ([]models.Phone, error)
	SearchAccessories(ctx context.Context, term string) ([]models.Accessory, error)

	// OnPhonesChange registers fn for collection snapshots and returns the
	// function that cancels the registration.
	OnPhonesChange(fn func([]models.Phone)) (func(), error)
	OnAccessoriesChange(fn func([]models.Accessory)) (func(), error)
	OnSalesChange(fn func([]models.Sale)) (func(), error)
}

// remoteBackend delegates to the RemoteStore. Collection reads fall back to
// the local snapshot when the remote call fails.
type remoteBackend struct {
	store RemoteStore
	local *localBackend
	log   *zap.Logger

	phoneList     *remoteCollection[models.Phone, *models.Phone]
	accessoryList *remoteCollection[models.Accessory, *models.Accessory]
	saleList      *remoteCollection[models.Sale, *models.Sale]
}

func newRemoteBackend(store RemoteStore, local *localBackend, log *zap.Logger, now func() time.Time) *remoteBackend {
	return &remoteBackend{
		store: store,
		local: local,
		log:   log,
		phoneList: &remoteCollection[models.Phone, *models.Phone]{
			name:     models.CollectionPhones,
			list:     store.GetPhones,
			add:      store.AddPhone,
			update:   store.UpdatePhone,
			remove:   store.DeletePhone,
			fallback: local.phoneList,
			now:      now,
			log:      log,
		},
		accessoryList: &remoteCollection[models.Accessory, *models.Accessory]{
			name:     models.CollectionAccessories,
			list:     store.GetAccessories,
			add:      store.AddAccessory,
			update:   store.UpdateAccessory,
			remove:   store.DeleteAccessory,
			fallback: local.accessoryList,
			now:      now,
			log:      log,
		},
		saleList: &remoteCollection[models.Sale, *models.Sale]{
			name:     models.CollectionSales,
			list:     store.GetSales,
			add:      store.AddSale,
			update:   store.UpdateSale,
			remove:   store.DeleteSale,
			fallback: local.saleList,
			now:      now,
			log:      log,
		},
	}
}

func (r *remoteBackend) phones() collection[models.Phone]          { return r.phoneList }
func (r *remoteBackend) accessories() collection[models.Accessory] { return r.accessoryList }
func (r *remoteBackend) sales() collection[models.Sale]            { return r.saleList }

func (r *remoteBackend) sale(ctx context.Context, id string) (models.Sale, error) {
	s, err := r.store.GetSale(ctx, id)
	if err != nil {
		return models.Sale{}, fmt.Errorf("remote get sale %s: %w", id, err)
	}
	return s, nil
}

func (r *remoteBackend) phoneTypes(ctx context.Context) (models.PhoneTypes, error) {
	entries, err := r.store.GetPhoneTypes(ctx)
	if err != nil {
		r.log.Warn("failed to load phone types from remote store", zap.Error(err))
		if cached := kv.GetOr(r.local.codec, models.CollectionPhoneTypes, models.PhoneTypes(nil)); len(cached) > 0 {
			return cached, fallback(err)
		}
		return DefaultPhoneTypes(), fallback(err)
	}
	types := foldPhoneTypes(entries)
	if len(types) == 0 {
		r.log.Debug("remote phone types empty, using defaults")
		return DefaultPhoneTypes(), nil
	}
	return types, nil
}

// Catalog replacement is a no-op remotely: entries are managed one by one.
func (r *remoteBackend) replacePhoneTypes(context.Context, models.PhoneTypes) error {
	r.log.Debug("bulk replace ignored in remote mode", zap.String("collection", models.CollectionPhoneTypes))
	return nil
}

func (r *remoteBackend) addPhoneType(ctx context.Context, brand, model string) error {
	if err := r.store.AddPhoneType(ctx, models.PhoneType{Brand: brand, Model: model}); err != nil {
		r.log.Error("failed to add phone type", zap.String("brand", brand), zap.String("model", model), zap.Error(err))
		return fmt.Errorf("remote add phone type: %w", err)
	}
	return nil
}

func (r *remoteBackend) deletePhoneType(ctx context.Context, brand, model string) error {
	if err := r.store.DeletePhoneType(ctx, brand, model); err != nil {
		r.log.Error("failed to delete phone type", zap.String("brand", brand), zap.String("model", model), zap.Error(err))
		return fmt.Errorf("remote delete phone type: %w", err)
	}
	return nil
}

func (r *remoteBackend) accessoryCategories(ctx context.Context) ([]models.AccessoryCategory, error) {
	list, err := r.store.GetAccessoryCategories(ctx)
	if err != nil {
		r.log.Warn("failed to load accessory categories from remote store", zap.Error(err))
		if cached := kv.GetOr(r.local.codec, models.CollectionAccessoryCategories, []models.AccessoryCategory(nil)); len(cached) > 0 {
			return cached, fallback(err)
		}
		return DefaultAccessoryCategories(), fallback(err)
	}
	if len(list) == 0 {
		return DefaultAccessoryCategories(), nil
	}
	return list, nil
}

func (r *remoteBackend) replaceAccessoryCategories(context.Context, []models.AccessoryCategory) error {
	r.log.Debug("bulk replace ignored in remote mode", zap.String("collection", models.CollectionAccessoryCategories))
	return nil
}

func (r *remoteBackend) addAccessoryCategory(ctx context.Context, c models.AccessoryCategory) error {
	if err := r.store.AddAccessoryCategory(ctx, c); err != nil {
		r.log.Error("failed to add accessory category", zap.String("name", c.Name), zap.Error(err))
		return fmt.Errorf("remote add accessory category: %w", err)
	}
	return nil
}

func (r *remoteBackend) deleteAccessoryCategory(ctx context.Context, key string) error {
	if err := r.store.DeleteAccessoryCategory(ctx, key); err != nil {
		r.log.Error("failed to delete accessory category", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("remote delete accessory category: %w", err)
	}
	return nil
}

// Remote search failures yield an empty result; the local snapshot is not
// searched instead.
func (r *remoteBackend) searchPhones(ctx context.Context, term string) ([]models.Phone, error) {
	found, err := r.store.SearchPhones(ctx, term)
	if err != nil {
		r.log.Error("failed to search phones", zap.String("term", term), zap.Error(err))
		return []models.Phone{}, fmt.Errorf("remote search phones: %w", err)
	}
	return found, nil
}

func (r *remoteBackend) searchAccessories(ctx context.Context, term string) ([]models.Accessory, error) {
	found, err := r.store.SearchAccessories(ctx, term)
	if err != nil {
		r.log.Error("failed to search accessories", zap.String("term", term), zap.Error(err))
		return []models.Accessory{}, fmt.Errorf("remote search accessories: %w", err)
	}
	return found, nil
}

func (r *remoteBackend) onPhonesChange(fn func([]models.Phone)) (func(), error) {
	return r.store.OnPhonesChange(fn)
}

func (r *remoteBackend) onAccessoriesChange(fn func([]models.Accessory)) (func(), error) {
	return r.store.OnAccessoriesChange(fn)
}

func (r *remoteBackend) onSalesChange(fn func([]models.Sale)) (func(), error) {
	return r.store.OnSalesChange(fn)
}

// remoteCollection adapts one RemoteStore method family to collection.
type remoteCollection[T any, PT models.Record[T]] struct {
	name     string
	list     func(context.Context) ([]T, error)
	add      func(context.Context, T) (string, error)
	update   func(context.Context, string, models.Patch) error
	remove   func(context.Context, string) error
	fallback *localCollection[T, PT]
	now      func() time.Time
	log      *zap.Logger
}

// List re-attempts the remote store on every call. On failure it returns
// the local snapshot with an error wrapping ErrFallback.
func (c *remoteCollection[T, PT]) List(ctx context.Context) ([]T, error) {
	items, err := c.list(ctx)
	if err != nil {
		c.log.Warn("remote read failed, serving local snapshot", zap.String("collection", c.name), zap.Error(err))
		return c.fallback.snapshot(), fallback(err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Replace is a no-op: remote collections are managed record by record.
func (c *remoteCollection[T, PT]) Replace(context.Context, []T) error {
	c.log.Debug("bulk replace ignored in remote mode", zap.String("collection", c.name))
	return nil
}

func (c *remoteCollection[T, PT]) Add(ctx context.Context, rec T) (string, error) {
	p := PT(&rec)
	p.SetRecordID("")
	p.Stamp(c.now())
	id, err := c.add(ctx, rec)
	if err != nil {
		c.log.Error("failed to add record", zap.String("collection", c.name), zap.Error(err))
		return "", fmt.Errorf("remote add to %s: %w", c.name, err)
	}
	return id, nil
}

// Update checks patch against T before sending it, so the stored document
// always decodes back into T.
func (c *remoteCollection[T, PT]) Update(ctx context.Context, id string, patch models.Patch) error {
	var zero T
	if _, err := models.Merge(zero, patch); err != nil {
		c.log.Warn("rejected patch", zap.String("collection", c.name), zap.String("id", id), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.update(ctx, id, patch); err != nil {
		c.log.Error("failed to update record", zap.String("collection", c.name), zap.String("id", id), zap.Error(err))
		return fmt.Errorf("remote update %s %s: %w", c.name, id, err)
	}
	return nil
}

func (c *remoteCollection[T, PT]) Delete(ctx context.Context, id string) error {
	if err := c.remove(ctx, id); err != nil {
		c.log.Error("failed to delete record", zap.String("collection", c.name), zap.String("id", id), zap.Error(err))
		return fmt.Errorf("remote delete %s %s: %w", c.name, id, err)
	}
	return nil
}
