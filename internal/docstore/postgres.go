package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sumire/collab/internal/domain"
)

// Postgres implements Store on top of a single JSONB table, so the documents
// keep the exact field names the application originally persisted.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres creates a Postgres-backed document store.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the backing table if it does not exist.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection text        NOT NULL,
			key        text        NOT NULL,
			doc        jsonb       NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now(),
			PRIMARY KEY (collection, key)
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, collection, key string) (Document, error) {
	var raw []byte
	err := s.db.GetContext(ctx, &raw,
		`SELECT doc FROM documents WHERE collection = $1 AND key = $2`, collection, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("get "+collection+"/"+key, err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, key, err)
	}
	return doc, nil
}

func (s *Postgres) List(ctx context.Context, collection string) ([]Entry, error) {
	rows, err := s.db.QueryxContext(ctx,
		`SELECT key, doc FROM documents WHERE collection = $1`, collection)
	if err != nil {
		return nil, storeErr("list "+collection, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, storeErr("scan "+collection, err)
		}
		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, key, err)
		}
		entries = append(entries, Entry{Key: key, Doc: doc})
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list "+collection, err)
	}
	return entries, nil
}

func (s *Postgres) Set(ctx context.Context, collection, key string, doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, key, doc)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (collection, key)
		 DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		collection, key, raw)
	if err != nil {
		return storeErr("set "+collection+"/"+key, err)
	}
	return nil
}

func (s *Postgres) UpdateFields(ctx context.Context, collection, key string, fields Document) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode fields %s/%s: %w", collection, key, err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET doc = doc || $3::jsonb, updated_at = now()
		 WHERE collection = $1 AND key = $2`,
		collection, key, raw)
	if err != nil {
		return storeErr("update "+collection+"/"+key, err)
	}
	return requireRow(res, collection, key)
}

func (s *Postgres) UnionAppend(ctx context.Context, collection, key, field string, value any) error {
	elem, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value %s/%s: %w", collection, key, err)
	}
	// The one-element array form works for both the containment check and
	// the concatenation.
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET doc = CASE
			WHEN coalesce(doc->$3, '[]'::jsonb) @> $4::jsonb THEN doc
			ELSE jsonb_set(doc, ARRAY[$3::text], coalesce(doc->$3, '[]'::jsonb) || $4::jsonb)
		 END, updated_at = now()
		 WHERE collection = $1 AND key = $2`,
		collection, key, field, "["+string(elem)+"]")
	if err != nil {
		return storeErr("union "+collection+"/"+key, err)
	}
	return requireRow(res, collection, key)
}

func (s *Postgres) ArrayRemove(ctx context.Context, collection, key, field string, value any) error {
	elem, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value %s/%s: %w", collection, key, err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET doc = jsonb_set(doc, ARRAY[$3::text], coalesce(
			(SELECT jsonb_agg(e) FROM jsonb_array_elements(coalesce(doc->$3, '[]'::jsonb)) e
			 WHERE e <> $4::jsonb),
			'[]'::jsonb
		 )), updated_at = now()
		 WHERE collection = $1 AND key = $2`,
		collection, key, field, string(elem))
	if err != nil {
		return storeErr("array remove "+collection+"/"+key, err)
	}
	return requireRow(res, collection, key)
}

func (s *Postgres) Delete(ctx context.Context, collection, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND key = $2`, collection, key)
	if err != nil {
		return storeErr("delete "+collection+"/"+key, err)
	}
	return nil
}

func requireRow(res sql.Result, collection, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("rows affected "+collection+"/"+key, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
}
