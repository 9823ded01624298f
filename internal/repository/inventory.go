package repository

import (
	"context"

	"github.com/atinyakov/ShopKeeper/internal/models"
)

var (
	setPhoneID     = (*models.Phone).SetRecordID
	setAccessoryID = (*models.Accessory).SetRecordID
	setSaleID      = (*models.Sale).SetRecordID
)

// GetPhones returns every phone ordered by creation.
func (s *DocumentStore) GetPhones(ctx context.Context) ([]models.Phone, error) {
	return listDocs(ctx, s, models.CollectionPhones, setPhoneID)
}

// AddPhone stores p under a new id.
func (s *DocumentStore) AddPhone(ctx context.Context, p models.Phone) (string, error) {
	p.ID = ""
	return s.insertDoc(ctx, models.CollectionPhones, p)
}

func (s *DocumentStore) UpdatePhone(ctx context.Context, id string, patch models.Patch) error {
	return s.updateDoc(ctx, models.CollectionPhones, id, patch)
}

func (s *DocumentStore) DeletePhone(ctx context.Context, id string) error {
	return s.deleteDoc(ctx, models.CollectionPhones, id)
}

func (s *DocumentStore) GetAccessories(ctx context.Context) ([]models.Accessory, error) {
	return listDocs(ctx, s, models.CollectionAccessories, setAccessoryID)
}

func (s *DocumentStore) AddAccessory(ctx context.Context, a models.Accessory) (string, error) {
	a.ID = ""
	return s.insertDoc(ctx, models.CollectionAccessories, a)
}

func (s *DocumentStore) UpdateAccessory(ctx context.Context, id string, patch models.Patch) error {
	return s.updateDoc(ctx, models.CollectionAccessories, id, patch)
}

func (s *DocumentStore) DeleteAccessory(ctx context.Context, id string) error {
	return s.deleteDoc(ctx, models.CollectionAccessories, id)
}

func (s *DocumentStore) GetSales(ctx context.Context) ([]models.Sale, error) {
	return listDocs(ctx, s, models.CollectionSales, setSaleID)
}

// GetSale returns one sale, or an error wrapping models.ErrNotFound.
func (s *DocumentStore) GetSale(ctx context.Context, id string) (models.Sale, error) {
	return getDoc(ctx, s, models.CollectionSales, id, setSaleID)
}

func (s *DocumentStore) AddSale(ctx context.Context, sale models.Sale) (string, error) {
	sale.ID = ""
	return s.insertDoc(ctx, models.CollectionSales, sale)
}

func (s *DocumentStore) UpdateSale(ctx context.Context, id string, patch models.Patch) error {
	return s.updateDoc(ctx, models.CollectionSales, id, patch)
}

func (s *DocumentStore) DeleteSale(ctx context.Context, id string) error {
	return s.deleteDoc(ctx, models.CollectionSales, id)
}

// OnPhonesChange calls fn with the phone list now and after every change.
func (s *DocumentStore) OnPhonesChange(fn func([]models.Phone)) (func(), error) {
	return watch(s, models.CollectionPhones, s.GetPhones, fn)
}

func (s *DocumentStore) OnAccessoriesChange(fn func([]models.Accessory)) (func(), error) {
	return watch(s, models.CollectionAccessories, s.GetAccessories, fn)
}

func (s *DocumentStore) OnSalesChange(fn func([]models.Sale)) (func(), error) {
	return watch(s, models.CollectionSales, s.GetSales, fn)
}
