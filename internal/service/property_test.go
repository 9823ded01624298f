package service_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/atinyakov/ShopKeeper/internal/kv"
	"github.com/atinyakov/ShopKeeper/internal/models"
	"github.com/atinyakov/ShopKeeper/internal/service"
)

func phoneGen() *rapid.Generator[models.Phone] {
	return rapid.Custom(func(t *rapid.T) models.Phone {
		return models.Phone{
			PhoneNumber:  rapid.StringMatching(`0[0-9]{3,6}`).Draw(t, "number"),
			SerialNumber: rapid.StringMatching(`[A-Z]{2}[0-9]{2,4}`).Draw(t, "serial"),
			Brand:        rapid.SampledFrom([]string{"Apple", "Samsung", "Nokia", "Honor"}).Draw(t, "brand"),
			Model:        rapid.StringMatching(`[a-zA-Z ]{0,8}`).Draw(t, "model"),
			CustomerName: rapid.StringMatching(`[a-zA-Z]{0,6}`).Draw(t, "customer"),
		}
	})
}

func TestLocalAdd_IDsUniqueAndPreserved(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		s := service.NewStorage(ctx, nil, kv.NewMemoryStore(), nil)
		input := rapid.SliceOfN(phoneGen(), 1, 15).Draw(rt, "phones")

		ids := make([]string, 0, len(input))
		for _, p := range input {
			id, err := s.AddPhone(ctx, p)
			if err != nil {
				rt.Fatalf("AddPhone: %v", err)
			}
			ids = append(ids, id)
		}

		stored, err := s.Phones(ctx)
		if err != nil {
			rt.Fatalf("Phones: %v", err)
		}
		if len(stored) != len(input) {
			rt.Fatalf("stored %d phones, added %d", len(stored), len(input))
		}
		seen := make(map[string]bool)
		for i, p := range stored {
			if p.ID != ids[i] || seen[p.ID] {
				rt.Fatalf("phone %d has id %q, want unique %q", i, p.ID, ids[i])
			}
			seen[p.ID] = true
			if p.SerialNumber != input[i].SerialNumber {
				rt.Fatalf("phone %d serial = %q; want %q", i, p.SerialNumber, input[i].SerialNumber)
			}
		}
	})
}

func TestLocalUpdate_NeverChangesID(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		s := service.NewStorage(ctx, nil, kv.NewMemoryStore(), nil)
		id, err := s.AddPhone(ctx, phoneGen().Draw(rt, "phone"))
		if err != nil {
			rt.Fatalf("AddPhone: %v", err)
		}

		patch := models.Patch{
			"id":          rapid.String().Draw(rt, "id"),
			"description": rapid.String().Draw(rt, "description"),
		}
		if err := s.UpdatePhone(ctx, id, patch); err != nil {
			rt.Fatalf("UpdatePhone: %v", err)
		}
		stored, _ := s.Phones(ctx)
		if stored[0].ID != id {
			rt.Fatalf("id changed from %q to %q", id, stored[0].ID)
		}
		if stored[0].Description != patch["description"] {
			rt.Fatalf("description = %q; want %q", stored[0].Description, patch["description"])
		}
	})
}

func TestLocalSearch_MatchesAnyFieldIgnoringCase(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		s := service.NewStorage(ctx, nil, kv.NewMemoryStore(), nil)
		phones := rapid.SliceOfN(phoneGen(), 0, 10).Draw(rt, "phones")
		if err := s.SetPhones(ctx, phones); err != nil {
			rt.Fatalf("SetPhones: %v", err)
		}
		term := rapid.StringMatching(`[a-zA-Z0-9]{0,3}`).Draw(rt, "term")

		found, err := s.SearchPhones(ctx, term)
		if err != nil {
			rt.Fatalf("SearchPhones: %v", err)
		}

		contains := func(p models.Phone) bool {
			return slices.ContainsFunc(p.SearchFields(), func(f string) bool {
				return strings.Contains(strings.ToLower(f), strings.ToLower(term))
			})
		}
		want := slices.DeleteFunc(slices.Clone(phones), func(p models.Phone) bool { return !contains(p) })
		if len(found) != len(want) {
			rt.Fatalf("found %d phones for %q; want %d", len(found), term, len(want))
		}
		for i := range found {
			if found[i].SerialNumber != want[i].SerialNumber {
				rt.Fatalf("result %d = %q; want %q", i, found[i].SerialNumber, want[i].SerialNumber)
			}
		}
	})
}

func TestExportImport_RoundTripPreservesRecords(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		src := service.NewStorage(ctx, nil, kv.NewMemoryStore(), nil)
		phones := rapid.SliceOfN(phoneGen(), 0, 8).Draw(rt, "phones")
		for _, p := range phones {
			if _, err := src.AddPhone(ctx, p); err != nil {
				rt.Fatalf("AddPhone: %v", err)
			}
		}
		brand := rapid.StringMatching(`[A-Z][a-z]{2,6}`).Draw(rt, "brand")
		if err := src.AddPhoneType(ctx, brand, "X1"); err != nil && !errors.Is(err, service.ErrExists) {
			rt.Fatalf("AddPhoneType: %v", err)
		}

		data, err := src.Export(ctx)
		if err != nil {
			rt.Fatalf("Export: %v", err)
		}
		dst := service.NewStorage(ctx, nil, kv.NewMemoryStore(), nil)
		if err := dst.Import(ctx, data); err != nil {
			rt.Fatalf("Import: %v", err)
		}

		got, _ := dst.Phones(ctx)
		if len(got) != len(phones) {
			rt.Fatalf("imported %d phones; want %d", len(got), len(phones))
		}
		for i := range got {
			if got[i].PhoneNumber != phones[i].PhoneNumber || got[i].Brand != phones[i].Brand {
				rt.Fatalf("phone %d = %+v; want %+v", i, got[i], phones[i])
			}
		}
		types, _ := dst.PhoneTypes(ctx)
		if !types.Has(brand, "X1") {
			rt.Fatalf("phone type %s X1 missing after import", brand)
		}
	})
}
