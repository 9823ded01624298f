// Package repository provides the PostgreSQL document store backing the
// remote inventory mode. Every record is a JSONB document in the documents
// table, keyed by collection and id.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/ShopKeeper/internal/db"
	"github.com/atinyakov/ShopKeeper/internal/models"
)

// ErrNoListener is returned by change subscriptions when the store was
// created without a change hub.
var ErrNoListener = errors.New("change listener is not configured")

// DocumentStore implements the remote inventory store on PostgreSQL.
type DocumentStore struct {
	// DB is the database handle for executing queries.
	DB *sql.DB

	hub   *db.ChangeHub
	log   *zap.Logger
	newID func() string
}

// NewDocumentStore creates a DocumentStore. hub may be nil, in which case
// change subscriptions are refused.
func NewDocumentStore(database *sql.DB, hub *db.ChangeHub, log *zap.Logger) *DocumentStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &DocumentStore{DB: database, hub: hub, log: log, newID: uuid.NewString}
}

// Ping reports whether the database is reachable.
func (s *DocumentStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

const (
	listQuery   = `SELECT id, body FROM documents WHERE collection = $1 ORDER BY created_at, id`
	getQuery    = `SELECT id, body FROM documents WHERE collection = $1 AND id = $2`
	insertQuery = `INSERT INTO documents (collection, id, body) VALUES ($1, $2, $3)`
	updateQuery = `UPDATE documents SET body = body || $3::jsonb WHERE collection = $1 AND id = $2`
	deleteQuery = `DELETE FROM documents WHERE collection = $1 AND id = $2`
)

// scanDocs decodes id/body rows. setID, when set, copies the row id into the
// decoded value.
func scanDocs[T any](rows *sql.Rows, setID func(*T, string)) ([]T, error) {
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var (
			id   string
			body []byte
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var doc T
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", id, err)
		}
		if setID != nil {
			setID(&doc, id)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func listDocs[T any](ctx context.Context, s *DocumentStore, collection string, setID func(*T, string)) ([]T, error) {
	rows, err := s.DB.QueryContext(ctx, listQuery, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return scanDocs(rows, setID)
}

func getDoc[T any](ctx context.Context, s *DocumentStore, collection, id string, setID func(*T, string)) (T, error) {
	var (
		doc   T
		docID string
		body  []byte
	)
	err := s.DB.QueryRowContext(ctx, getQuery, collection, id).Scan(&docID, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return doc, fmt.Errorf("%s %s: %w", collection, id, models.ErrNotFound)
	}
	if err != nil {
		return doc, fmt.Errorf("get %s %s: %w", collection, id, err)
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return doc, fmt.Errorf("decode document %s: %w", id, err)
	}
	if setID != nil {
		setID(&doc, docID)
	}
	return doc, nil
}

// insertDoc stores v under a new id and returns it.
func (s *DocumentStore) insertDoc(ctx context.Context, collection string, v any) (string, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s document: %w", collection, err)
	}
	id := s.newID()
	if _, err := s.DB.ExecContext(ctx, insertQuery, collection, id, string(body)); err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	return id, nil
}

// updateDoc merges patch into the top level of the stored document. The
// id is never part of the body.
func (s *DocumentStore) updateDoc(ctx context.Context, collection, id string, patch models.Patch) error {
	fields := maps.Clone(patch)
	delete(fields, "id")
	if fields == nil {
		fields = models.Patch{}
	}
	body, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}
	res, err := s.DB.ExecContext(ctx, updateQuery, collection, id, string(body))
	if err != nil {
		return fmt.Errorf("update %s %s: %w", collection, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s %s: %w", collection, id, models.ErrNotFound)
	}
	return nil
}

// deleteDoc removes a document. Deleting a missing id is not an error.
func (s *DocumentStore) deleteDoc(ctx context.Context, collection, id string) error {
	if _, err := s.DB.ExecContext(ctx, deleteQuery, collection, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", collection, id, err)
	}
	return nil
}

// watch delivers the current contents of collection to fn, then a fresh
// read after every change notification.
func watch[T any](s *DocumentStore, collection string, read func(context.Context) ([]T, error), fn func([]T)) (func(), error) {
	if s.hub == nil {
		return nil, ErrNoListener
	}
	items, err := read(context.Background())
	if err != nil {
		return nil, fmt.Errorf("initial snapshot of %s: %w", collection, err)
	}
	fn(items)

	return s.hub.Subscribe(collection, func(ctx context.Context) {
		items, err := read(ctx)
		if err != nil {
			s.log.Error("failed to reload collection", zap.String("collection", collection), zap.Error(err))
			return
		}
		fn(items)
	}), nil
}
