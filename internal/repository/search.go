package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/atinyakov/ShopKeeper/internal/models"
)

var (
	phoneSearchFields = []string{
		"phone_number", "serial_number", "brand", "model", "phone_color",
		"phone_memory", "description", "customer_name", "customer_id",
	}
	accessorySearchFields = []string{"name", "category", "description", "supplier", "notes"}
)

const searchQuery = `
	SELECT d.id, d.body FROM documents d
	WHERE d.collection = $1 AND EXISTS (
		SELECT 1 FROM jsonb_each_text(d.body) f
		WHERE f.key = ANY($2) AND f.value ILIKE $3
	)
	ORDER BY d.created_at, d.id
`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching term anywhere.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func searchDocs[T any](ctx context.Context, s *DocumentStore, collection string, fields []string, term string, setID func(*T, string)) ([]T, error) {
	rows, err := s.DB.QueryContext(ctx, searchQuery, collection, pq.Array(fields), containsPattern(term))
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}
	return scanDocs(rows, setID)
}

// SearchPhones returns phones with any searchable field containing term,
// ignoring case.
func (s *DocumentStore) SearchPhones(ctx context.Context, term string) ([]models.Phone, error) {
	return searchDocs(ctx, s, models.CollectionPhones, phoneSearchFields, term, setPhoneID)
}

func (s *DocumentStore) SearchAccessories(ctx context.Context, term string) ([]models.Accessory, error) {
	return searchDocs(ctx, s, models.CollectionAccessories, accessorySearchFields, term, setAccessoryID)
}
