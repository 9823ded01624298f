// Package models defines the core inventory records shared by the storage backends.
package models

import (
	"encoding/json"
	"time"
)

// Collection names used both as LocalStore keys and as remote document collections.
const (
	CollectionPhones              = "phones"
	CollectionAccessories         = "accessories"
	CollectionSales               = "sales"
	CollectionPhoneTypes          = "phone_types"
	CollectionAccessoryCategories = "accessory_categories"
)

// Record is implemented by pointers to the entities stored in a collection.
type Record[T any] interface {
	*T
	// RecordID returns the identifier of the record, empty until persisted.
	RecordID() string
	// SetRecordID assigns the identifier of the record.
	SetRecordID(id string)
	// Stamp sets the creation timestamp of the record.
	Stamp(at time.Time)
}

// Phone is a handset in stock or taken in from a customer.
type Phone struct {
	// ID is assigned on local create; the remote store assigns its own.
	ID           string `json:"id,omitempty"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
	Brand        string `json:"brand,omitempty"`
	Model        string `json:"model,omitempty"`
	Color        string `json:"phone_color,omitempty"`
	Memory       string `json:"phone_memory,omitempty"`
	Description  string `json:"description,omitempty"`
	CustomerName string `json:"customer_name,omitempty"`
	CustomerID   string `json:"customer_id,omitempty"`
	// DateAdded is stamped on create.
	DateAdded time.Time `json:"date_added,omitzero"`
}

func (p *Phone) RecordID() string      { return p.ID }
func (p *Phone) SetRecordID(id string) { p.ID = id }
func (p *Phone) Stamp(at time.Time)    { p.DateAdded = at }

// SearchFields returns the values matched by a free-text phone search.
func (p Phone) SearchFields() []string {
	return []string{
		p.PhoneNumber,
		p.SerialNumber,
		p.Brand,
		p.Model,
		p.Color,
		p.Memory,
		p.Description,
		p.CustomerName,
		p.CustomerID,
	}
}

// Accessory is a non-phone item such as a charger or a case.
type Accessory struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name,omitempty"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	Supplier    string    `json:"supplier,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	DateAdded   time.Time `json:"date_added,omitzero"`
}

func (a *Accessory) RecordID() string      { return a.ID }
func (a *Accessory) SetRecordID(id string) { a.ID = id }
func (a *Accessory) Stamp(at time.Time)    { a.DateAdded = at }

// SearchFields returns the values matched by a free-text accessory search.
func (a Accessory) SearchFields() []string {
	return []string{a.Name, a.Category, a.Description, a.Supplier, a.Notes}
}

// Sale is a free-form sale record. Fields holds every attribute other than
// the identifier and the creation time and is flattened into the JSON object.
type Sale struct {
	ID          string
	DateCreated time.Time
	Fields      map[string]any
}

func (s *Sale) RecordID() string      { return s.ID }
func (s *Sale) SetRecordID(id string) { s.ID = id }
func (s *Sale) Stamp(at time.Time)    { s.DateCreated = at }

// MarshalJSON writes the sale as a single flat JSON object.
func (s Sale) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Fields)+2)
	for k, v := range s.Fields {
		out[k] = v
	}
	delete(out, "id")
	if s.ID != "" {
		out["id"] = s.ID
	}
	if !s.DateCreated.IsZero() {
		out["date_created"] = s.DateCreated
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a flat JSON object, lifting id and date_created out of Fields.
// A date_created value that is not an RFC 3339 string is kept in Fields untouched.
func (s *Sale) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Sale{}
	if id, ok := raw["id"].(string); ok {
		s.ID = id
	}
	delete(raw, "id")
	if v, ok := raw["date_created"].(string); ok {
		if at, err := time.Parse(time.RFC3339Nano, v); err == nil {
			s.DateCreated = at
			delete(raw, "date_created")
		}
	}
	if len(raw) > 0 {
		s.Fields = raw
	}
	return nil
}

// PhoneTypes maps a brand to its model names.
type PhoneTypes map[string][]string

// Clone returns a deep copy of the catalog.
func (pt PhoneTypes) Clone() PhoneTypes {
	out := make(PhoneTypes, len(pt))
	for brand, models := range pt {
		out[brand] = append([]string(nil), models...)
	}
	return out
}

// Has reports whether the brand lists exactly this model.
func (pt PhoneTypes) Has(brand, model string) bool {
	for _, m := range pt[brand] {
		if m == model {
			return true
		}
	}
	return false
}

// PhoneType is one flat catalog entry as stored remotely. Older documents
// carry the brand under "manufacturer".
type PhoneType struct {
	Brand        string `json:"brand,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model"`
}

// Maker returns the manufacturer, falling back to the brand.
func (t PhoneType) Maker() string {
	if t.Manufacturer != "" {
		return t.Manufacturer
	}
	return t.Brand
}

// AccessoryCategory is an entry of the accessory category catalog.
type AccessoryCategory struct {
	Name          string `json:"name"`
	LocalizedName string `json:"localized_name"`
	Description   string `json:"description,omitempty"`
}

// UnmarshalJSON also accepts the legacy "arabic_name" key for LocalizedName.
func (c *AccessoryCategory) UnmarshalJSON(data []byte) error {
	type plain AccessoryCategory
	var aux struct {
		plain
		ArabicName string `json:"arabic_name"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = AccessoryCategory(aux.plain)
	if c.LocalizedName == "" {
		c.LocalizedName = aux.ArabicName
	}
	return nil
}

// Matches reports whether key names this category, by name or localized name.
func (c AccessoryCategory) Matches(key string) bool {
	return key != "" && (c.Name == key || c.LocalizedName == key)
}

// User is the session record of the signed-in operator.
type User struct {
	ID          string `json:"id,omitempty"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role,omitempty"`
}
