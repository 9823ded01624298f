package repository

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/atinyakov/ShopKeeper/internal/models"
)

// Older phone type documents name the brand "manufacturer".
const makerExpr = `COALESCE(NULLIF(body->>'manufacturer', ''), body->>'brand')`

// Older category documents carry the localized name as "arabic_name"; an
// empty localized_name does not hide it.
const localizedExpr = `COALESCE(NULLIF(body->>'localized_name', ''), body->>'arabic_name')`

// GetPhoneTypes returns the flat phone type documents.
func (s *DocumentStore) GetPhoneTypes(ctx context.Context) ([]models.PhoneType, error) {
	return listDocs[models.PhoneType](ctx, s, models.CollectionPhoneTypes, nil)
}

// AddPhoneType stores a {brand, model} document unless the pair exists.
func (s *DocumentStore) AddPhoneType(ctx context.Context, t models.PhoneType) error {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM documents
		WHERE collection = $1 AND `+makerExpr+` = $2 AND body->>'model' = $3)
	`, models.CollectionPhoneTypes, t.Maker(), t.Model).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check phone type: %w", err)
	}
	if exists {
		return fmt.Errorf("phone type %s %s: %w", t.Maker(), t.Model, models.ErrExists)
	}
	_, err = s.insertDoc(ctx, models.CollectionPhoneTypes, models.PhoneType{Brand: t.Maker(), Model: t.Model})
	return err
}

// DeletePhoneType removes every document for the brand and model.
func (s *DocumentStore) DeletePhoneType(ctx context.Context, brand, model string) error {
	res, err := s.DB.ExecContext(ctx, `
		DELETE FROM documents
		WHERE collection = $1 AND `+makerExpr+` = $2 AND body->>'model' = $3
	`, models.CollectionPhoneTypes, brand, model)
	if err != nil {
		return fmt.Errorf("delete phone type: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("phone type %s %s: %w", brand, model, models.ErrNotFound)
	}
	return nil
}

func (s *DocumentStore) GetAccessoryCategories(ctx context.Context) ([]models.AccessoryCategory, error) {
	return listDocs[models.AccessoryCategory](ctx, s, models.CollectionAccessoryCategories, nil)
}

// AddAccessoryCategory stores c unless a category already carries its name
// or localized name.
func (s *DocumentStore) AddAccessoryCategory(ctx context.Context, c models.AccessoryCategory) error {
	keys := make([]string, 0, 2)
	for _, k := range []string{c.Name, c.LocalizedName} {
		if k != "" {
			keys = append(keys, k)
		}
	}

	var exists bool
	err := s.DB.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM documents
		WHERE collection = $1
		  AND (body->>'name' = ANY($2) OR `+localizedExpr+` = ANY($2)))
	`, models.CollectionAccessoryCategories, pq.Array(keys)).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check accessory category: %w", err)
	}
	if exists {
		return fmt.Errorf("accessory category %s: %w", c.Name, models.ErrExists)
	}
	_, err = s.insertDoc(ctx, models.CollectionAccessoryCategories, c)
	return err
}

// DeleteAccessoryCategory removes the categories named key.
func (s *DocumentStore) DeleteAccessoryCategory(ctx context.Context, key string) error {
	res, err := s.DB.ExecContext(ctx, `
		DELETE FROM documents
		WHERE collection = $1
		  AND (body->>'name' = $2 OR `+localizedExpr+` = $2)
	`, models.CollectionAccessoryCategories, key)
	if err != nil {
		return fmt.Errorf("delete accessory category: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("accessory category %s: %w", key, models.ErrNotFound)
	}
	return nil
}
