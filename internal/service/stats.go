package service

import "context"

// Stats holds record counts per collection. PhoneTypes counts brands.
type Stats struct {
	Phones              int  `json:"phones"`
	Accessories         int  `json:"accessories"`
	Sales               int  `json:"sales"`
	PhoneTypes          int  `json:"phoneTypes"`
	AccessoryCategories int  `json:"accessoryCategories"`
	RemoteEnabled       bool `json:"firebaseEnabled"`
}

// Stats counts the current data. Counts taken from a local fallback are
// returned together with an error wrapping ErrFallback.
func (s *Storage) Stats(ctx context.Context) (Stats, error) {
	snap, err := s.readAll(ctx)
	if !usable(err) {
		return Stats{}, err
	}
	return Stats{
		Phones:              len(snap.Phones),
		Accessories:         len(snap.Accessories),
		Sales:               len(snap.Sales),
		PhoneTypes:          len(snap.PhoneTypes),
		AccessoryCategories: len(snap.AccessoryCategories),
		RemoteEnabled:       s.remoteEnabled,
	}, err
}
