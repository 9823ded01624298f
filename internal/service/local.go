package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/atinyakov/ShopKeeper/internal/kv"
	"github.com/atinyakov/ShopKeeper/internal/models"
)

// localBackend keeps every collection and catalog as one JSON value per key.
// Mutations read the whole value, change it in memory and write it back;
// mu serialises those sequences within the process.
type localBackend struct {
	codec *kv.Codec
	log   *zap.Logger
	mu    sync.Mutex

	phoneList     *localCollection[models.Phone, *models.Phone]
	accessoryList *localCollection[models.Accessory, *models.Accessory]
	saleList      *localCollection[models.Sale, *models.Sale]
}

func newLocalBackend(codec *kv.Codec, log *zap.Logger, newID func() string, now func() time.Time) *localBackend {
	b := &localBackend{codec: codec, log: log}
	b.phoneList = newLocalCollection[models.Phone](models.CollectionPhones, b, newID, now)
	b.accessoryList = newLocalCollection[models.Accessory](models.CollectionAccessories, b, newID, now)
	b.saleList = newLocalCollection[models.Sale](models.CollectionSales, b, newID, now)
	return b
}

// seed writes the default catalogs and empty collections for every key that
// is not stored yet. Existing values are never touched.
func (b *localBackend) seed() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	defaults := []struct {
		key   string
		value any
	}{
		{models.CollectionPhoneTypes, DefaultPhoneTypes()},
		{models.CollectionAccessoryCategories, DefaultAccessoryCategories()},
		{models.CollectionPhones, []models.Phone{}},
		{models.CollectionAccessories, []models.Accessory{}},
		{models.CollectionSales, []models.Sale{}},
	}

	var errs error
	for _, d := range defaults {
		if b.codec.Has(d.key) {
			continue
		}
		if err := b.codec.Set(d.key, d.value); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		b.log.Debug("seeded local key", zap.String("key", d.key))
	}
	return errs
}

func (b *localBackend) phones() collection[models.Phone]          { return b.phoneList }
func (b *localBackend) accessories() collection[models.Accessory] { return b.accessoryList }
func (b *localBackend) sales() collection[models.Sale]            { return b.saleList }

func (b *localBackend) sale(_ context.Context, id string) (models.Sale, error) {
	for _, s := range b.saleList.snapshot() {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Sale{}, fmt.Errorf("sale %s: %w", id, ErrNotFound)
}

// storedPhoneTypes returns the stored catalog, or the defaults when it is
// missing or empty.
func (b *localBackend) storedPhoneTypes() models.PhoneTypes {
	if types := kv.GetOr(b.codec, models.CollectionPhoneTypes, models.PhoneTypes(nil)); len(types) > 0 {
		return types
	}
	return DefaultPhoneTypes()
}

func (b *localBackend) phoneTypes(_ context.Context) (models.PhoneTypes, error) {
	return b.storedPhoneTypes(), nil
}

func (b *localBackend) replacePhoneTypes(_ context.Context, types models.PhoneTypes) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if types == nil {
		types = models.PhoneTypes{}
	}
	return b.codec.Set(models.CollectionPhoneTypes, types)
}

func (b *localBackend) addPhoneType(_ context.Context, brand, model string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	types := b.storedPhoneTypes()
	if types.Has(brand, model) {
		return fmt.Errorf("phone type %s %s: %w", brand, model, ErrExists)
	}
	types[brand] = append(types[brand], model)
	return b.codec.Set(models.CollectionPhoneTypes, types)
}

func (b *localBackend) deletePhoneType(_ context.Context, brand, model string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	types := b.storedPhoneTypes()
	list, ok := types[brand]
	if !ok {
		return fmt.Errorf("phone brand %s: %w", brand, ErrNotFound)
	}
	kept := slices.DeleteFunc(slices.Clone(list), func(m string) bool { return m == model })
	if len(kept) == len(list) {
		return fmt.Errorf("phone type %s %s: %w", brand, model, ErrNotFound)
	}
	if len(kept) == 0 {
		delete(types, brand)
	} else {
		types[brand] = kept
	}
	return b.codec.Set(models.CollectionPhoneTypes, types)
}

func (b *localBackend) storedCategories() []models.AccessoryCategory {
	if list := kv.GetOr(b.codec, models.CollectionAccessoryCategories, []models.AccessoryCategory(nil)); len(list) > 0 {
		return list
	}
	return DefaultAccessoryCategories()
}

func (b *localBackend) accessoryCategories(_ context.Context) ([]models.AccessoryCategory, error) {
	return b.storedCategories(), nil
}

func (b *localBackend) replaceAccessoryCategories(_ context.Context, list []models.AccessoryCategory) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if list == nil {
		list = []models.AccessoryCategory{}
	}
	return b.codec.Set(models.CollectionAccessoryCategories, list)
}

func (b *localBackend) addAccessoryCategory(_ context.Context, c models.AccessoryCategory) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.storedCategories()
	if categoryExists(list, c) {
		return fmt.Errorf("accessory category %s: %w", c.Name, ErrExists)
	}
	return b.codec.Set(models.CollectionAccessoryCategories, append(list, c))
}

func (b *localBackend) deleteAccessoryCategory(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.storedCategories()
	kept := slices.DeleteFunc(slices.Clone(list), func(c models.AccessoryCategory) bool { return c.Matches(key) })
	if len(kept) == len(list) {
		return fmt.Errorf("accessory category %s: %w", key, ErrNotFound)
	}
	return b.codec.Set(models.CollectionAccessoryCategories, kept)
}

func (b *localBackend) searchPhones(_ context.Context, term string) ([]models.Phone, error) {
	return matching(b.phoneList.snapshot(), term), nil
}

func (b *localBackend) searchAccessories(_ context.Context, term string) ([]models.Accessory, error) {
	return matching(b.accessoryList.snapshot(), term), nil
}

func (b *localBackend) onPhonesChange(func([]models.Phone)) (func(), error) {
	return nil, ErrWatchUnsupported
}

func (b *localBackend) onAccessoriesChange(func([]models.Accessory)) (func(), error) {
	return nil, ErrWatchUnsupported
}

func (b *localBackend) onSalesChange(func([]models.Sale)) (func(), error) {
	return nil, ErrWatchUnsupported
}

// localCollection stores one entity list under a single key.
type localCollection[T any, PT models.Record[T]] struct {
	key   string
	owner *localBackend
	newID func() string
	now   func() time.Time
}

func newLocalCollection[T any, PT models.Record[T]](key string, owner *localBackend, newID func() string, now func() time.Time) *localCollection[T, PT] {
	return &localCollection[T, PT]{key: key, owner: owner, newID: newID, now: now}
}

func (c *localCollection[T, PT]) snapshot() []T {
	return kv.GetOr(c.owner.codec, c.key, []T{})
}

func (c *localCollection[T, PT]) save(items []T) error {
	if items == nil {
		items = []T{}
	}
	return c.owner.codec.Set(c.key, items)
}

func (c *localCollection[T, PT]) List(_ context.Context) ([]T, error) {
	return c.snapshot(), nil
}

func (c *localCollection[T, PT]) Replace(_ context.Context, items []T) error {
	c.owner.mu.Lock()
	defer c.owner.mu.Unlock()
	return c.save(items)
}

func (c *localCollection[T, PT]) Add(_ context.Context, rec T) (string, error) {
	c.owner.mu.Lock()
	defer c.owner.mu.Unlock()

	p := PT(&rec)
	p.SetRecordID(c.newID())
	p.Stamp(c.now())

	items := append(c.snapshot(), rec)
	if err := c.save(items); err != nil {
		return "", err
	}
	return p.RecordID(), nil
}

func (c *localCollection[T, PT]) Update(_ context.Context, id string, patch models.Patch) error {
	c.owner.mu.Lock()
	defer c.owner.mu.Unlock()

	items := c.snapshot()
	for i := range items {
		if PT(&items[i]).RecordID() != id {
			continue
		}
		merged, err := models.Merge(items[i], patch)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		items[i] = merged
		return c.save(items)
	}
	return fmt.Errorf("%s %s: %w", c.key, id, ErrNotFound)
}

func (c *localCollection[T, PT]) Delete(_ context.Context, id string) error {
	c.owner.mu.Lock()
	defer c.owner.mu.Unlock()

	items := slices.DeleteFunc(c.snapshot(), func(rec T) bool {
		return PT(&rec).RecordID() == id
	})
	return c.save(items)
}
