package service

import (
	"context"
	"slices"
	"strings"

	"github.com/atinyakov/ShopKeeper/internal/models"
)

var defaultPhoneTypes = models.PhoneTypes{
	"Apple": {
		"iPhone 17 Pro Max", "iPhone 17 Pro", "iPhone 17",
		"iPhone 16 Pro Max", "iPhone 16 Pro", "iPhone 16",
		"iPhone 15 Pro Max", "iPhone 15 Pro", "iPhone 15",
		"iPhone 14 Pro Max", "iPhone 14 Pro", "iPhone 14",
		"iPhone 13 Pro Max", "iPhone 13 Pro", "iPhone 13",
		"iPhone 12", "iPhone 11", "iPhone X",
	},
	"Samsung": {
		"Galaxy S25 Ultra", "Galaxy S25+", "Galaxy S25",
		"Galaxy S24 Ultra", "Galaxy S24+", "Galaxy S24",
		"Galaxy S23 Ultra", "Galaxy S23",
		"Galaxy A55", "Galaxy A54", "Galaxy A34",
		"Galaxy Note 20", "Galaxy Note 10",
	},
	"Xiaomi": {
		"15 Ultra", "15 Pro", "15", "14 Ultra", "14 Pro", "14",
		"Redmi Note 14 Pro+", "Redmi Note 14 Pro", "Redmi Note 14",
		"Redmi Note 13 Pro", "Redmi Note 13",
	},
	"Huawei":  {"P60 Pro", "P60", "P50 Pro", "Mate 60 Pro", "Mate 50 Pro", "Nova 11", "Nova 10"},
	"OnePlus": {"12", "11", "10 Pro", "10", "9 Pro", "Nord 3", "Nord 2"},
	"Google":  {"Pixel 8 Pro", "Pixel 8", "Pixel 7 Pro", "Pixel 7", "Pixel 6 Pro", "Pixel 6"},
	"Oppo":    {"Find X7 Ultra", "Find X6 Pro", "Find X6", "Reno 11 Pro", "Reno 11", "Reno 10 Pro", "Reno 10"},
	"Honor":   {"Magic 6 Pro", "Magic 6", "Magic 5 Pro", "X9b", "X9a", "90 Pro", "90"},
	"Realme":  {"GT 5 Pro", "GT 5", "GT Neo 5", "GT Neo 4"},
	"Infinix": {"Zero 30", "Note 40 Pro", "Note 40", "Hot 40 Pro", "Hot 40"},
	"Tecno":   {"Phantom X2 Pro", "Camon 30 Pro", "Camon 30", "Spark 20 Pro", "Spark 20"},
	"Nothing": {"Phone 2a", "Phone 2", "Phone 1"},
}

var defaultAccessoryCategories = []models.AccessoryCategory{
	{Name: "accessory", LocalizedName: "إكسسوار", Description: "General accessories"},
	{Name: "charger", LocalizedName: "شاحن", Description: "Phone chargers"},
	{Name: "case", LocalizedName: "غلاف", Description: "Phone cases"},
	{Name: "screen_protector", LocalizedName: "حماية الشاشة", Description: "Screen protectors"},
	{Name: "cable", LocalizedName: "كابل", Description: "Data and charging cables"},
	{Name: "headphone", LocalizedName: "سماعات", Description: "Headphones"},
	{Name: "other", LocalizedName: "أخرى", Description: "Other categories"},
}

// DefaultPhoneTypes returns a fresh copy of the built-in phone catalog.
func DefaultPhoneTypes() models.PhoneTypes {
	return defaultPhoneTypes.Clone()
}

// DefaultAccessoryCategories returns a fresh copy of the built-in category list.
func DefaultAccessoryCategories() []models.AccessoryCategory {
	return slices.Clone(defaultAccessoryCategories)
}

// foldPhoneTypes groups flat remote entries by manufacturer.
func foldPhoneTypes(entries []models.PhoneType) models.PhoneTypes {
	out := make(models.PhoneTypes)
	for _, e := range entries {
		maker := e.Maker()
		if maker == "" {
			continue
		}
		out[maker] = append(out[maker], e.Model)
	}
	return out
}

func validPhoneType(brand, model string) bool {
	return strings.TrimSpace(brand) != "" && strings.TrimSpace(model) != ""
}

func categoryExists(list []models.AccessoryCategory, c models.AccessoryCategory) bool {
	return slices.ContainsFunc(list, func(existing models.AccessoryCategory) bool {
		return existing.Matches(c.Name) || existing.Matches(c.LocalizedName)
	})
}

// PhoneTypes returns the brand to models catalog. An empty catalog is never
// returned: the built-in defaults stand in for it.
func (s *Storage) PhoneTypes(ctx context.Context) (models.PhoneTypes, error) {
	return s.backend.phoneTypes(ctx)
}

// SetPhoneTypes overwrites the local phone catalog. It does nothing in
// remote mode.
func (s *Storage) SetPhoneTypes(ctx context.Context, types models.PhoneTypes) error {
	return s.backend.replacePhoneTypes(ctx, types)
}

// AddPhoneType adds model under brand. It returns ErrExists when the exact
// pair is already listed.
func (s *Storage) AddPhoneType(ctx context.Context, brand, model string) error {
	if !validPhoneType(brand, model) {
		return ErrInvalid
	}
	return s.backend.addPhoneType(ctx, brand, model)
}

// DeletePhoneType removes model from brand, dropping the brand once it has
// no models left. It returns ErrNotFound when nothing changed.
func (s *Storage) DeletePhoneType(ctx context.Context, brand, model string) error {
	return s.backend.deletePhoneType(ctx, brand, model)
}

// AccessoryCategories returns the category catalog, or the built-in defaults
// when it is empty.
func (s *Storage) AccessoryCategories(ctx context.Context) ([]models.AccessoryCategory, error) {
	return s.backend.accessoryCategories(ctx)
}

// SetAccessoryCategories overwrites the local category catalog. It does
// nothing in remote mode.
func (s *Storage) SetAccessoryCategories(ctx context.Context, list []models.AccessoryCategory) error {
	return s.backend.replaceAccessoryCategories(ctx, list)
}

// AddAccessoryCategory appends c unless a category already matches its name
// or localized name.
func (s *Storage) AddAccessoryCategory(ctx context.Context, c models.AccessoryCategory) error {
	if c.Name == "" && c.LocalizedName == "" {
		return ErrInvalid
	}
	return s.backend.addAccessoryCategory(ctx, c)
}

// DeleteAccessoryCategory removes every category whose name or localized
// name equals key.
func (s *Storage) DeleteAccessoryCategory(ctx context.Context, key string) error {
	return s.backend.deleteAccessoryCategory(ctx, key)
}
