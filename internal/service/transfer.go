package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/ShopKeeper/internal/models"
)

// ExportVersion is written into every export document.
const ExportVersion = "2.0"

// Snapshot is the export document.
type Snapshot struct {
	Phones              []models.Phone             `json:"phones"`
	Accessories         []models.Accessory         `json:"accessories"`
	Sales               []models.Sale              `json:"sales"`
	PhoneTypes          models.PhoneTypes          `json:"phoneTypes"`
	AccessoryCategories []models.AccessoryCategory `json:"accessoryCategories"`
	ExportDate          time.Time                  `json:"exportDate"`
	Version             string                     `json:"version"`
	FirebaseEnabled     bool                       `json:"firebaseEnabled"`
}

// importDoc mirrors Snapshot with optional sections.
type importDoc struct {
	Phones              []models.Phone             `json:"phones"`
	Accessories         []models.Accessory         `json:"accessories"`
	Sales               []models.Sale              `json:"sales"`
	PhoneTypes          models.PhoneTypes          `json:"phoneTypes"`
	AccessoryCategories []models.AccessoryCategory `json:"accessoryCategories"`
}

// readAll collects every collection and catalog. A read that fell back to
// local data keeps the data and is reported through the returned error.
func (s *Storage) readAll(ctx context.Context) (Snapshot, error) {
	var (
		snap     Snapshot
		degraded error
		err      error
	)
	keep := func(e error) error {
		if !usable(e) {
			return e
		}
		if e != nil && degraded == nil {
			degraded = e
		}
		return nil
	}

	snap.Phones, err = s.Phones(ctx)
	if err = keep(err); err != nil {
		return Snapshot{}, fmt.Errorf("read phones: %w", err)
	}
	snap.Accessories, err = s.Accessories(ctx)
	if err = keep(err); err != nil {
		return Snapshot{}, fmt.Errorf("read accessories: %w", err)
	}
	snap.Sales, err = s.Sales(ctx)
	if err = keep(err); err != nil {
		return Snapshot{}, fmt.Errorf("read sales: %w", err)
	}
	snap.PhoneTypes, err = s.PhoneTypes(ctx)
	if err = keep(err); err != nil {
		return Snapshot{}, fmt.Errorf("read phone types: %w", err)
	}
	snap.AccessoryCategories, err = s.AccessoryCategories(ctx)
	if err = keep(err); err != nil {
		return Snapshot{}, fmt.Errorf("read accessory categories: %w", err)
	}
	snap.FirebaseEnabled = s.remoteEnabled
	return snap, degraded
}

// Export serialises all data as indented JSON.
func (s *Storage) Export(ctx context.Context) ([]byte, error) {
	snap, readErr := s.readAll(ctx)
	if !usable(readErr) {
		return nil, readErr
	}
	snap.ExportDate = s.now().UTC()
	snap.Version = ExportVersion

	out, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return out, readErr
}

// Import replays an export document through the add operations in order:
// phones, accessories, sales, phone types, accessory categories. The first
// failure aborts the import; records added before it stay. Catalog entries
// that already exist are skipped.
func (s *Storage) Import(ctx context.Context, data []byte) error {
	var doc importDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.Error("failed to decode import", zap.Error(err))
		return fmt.Errorf("%w: decode import: %w", ErrInvalid, err)
	}

	for _, p := range doc.Phones {
		if _, err := s.AddPhone(ctx, p); err != nil {
			return fmt.Errorf("import phone: %w", err)
		}
	}
	for _, a := range doc.Accessories {
		if _, err := s.AddAccessory(ctx, a); err != nil {
			return fmt.Errorf("import accessory: %w", err)
		}
	}
	for _, sale := range doc.Sales {
		if _, err := s.AddSale(ctx, sale); err != nil {
			return fmt.Errorf("import sale: %w", err)
		}
	}
	for brand, list := range doc.PhoneTypes {
		for _, model := range list {
			err := s.AddPhoneType(ctx, brand, model)
			if err != nil && !errors.Is(err, ErrExists) {
				return fmt.Errorf("import phone type %s %s: %w", brand, model, err)
			}
		}
	}
	for _, c := range doc.AccessoryCategories {
		err := s.AddAccessoryCategory(ctx, c)
		if err != nil && !errors.Is(err, ErrExists) {
			return fmt.Errorf("import accessory category %s: %w", c.Name, err)
		}
	}

	s.log.Info("import finished",
		zap.Int("phones", len(doc.Phones)),
		zap.Int("accessories", len(doc.Accessories)),
		zap.Int("sales", len(doc.Sales)),
	)
	return nil
}
