// Package postgres provides a Postgres-backed item store for deployments
// that keep metadata in an existing relational database instead of a
// document table. Records live as jsonb documents keyed by file id.
//
// Schema:
//
//	CREATE TABLE media_records (
//	    file_id TEXT PRIMARY KEY,
//	    doc     JSONB NOT NULL
//	);
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tanagerlabs/birdtag/pkg/birdtag"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Store implements birdtag.ItemStore using PostgreSQL
type Store struct {
	db DBTX
	// scanPageSize bounds one page of the keyset scan.
	scanPageSize int
}

// New creates a new PostgreSQL item store
func New(db DBTX) *Store {
	return &Store{db: db, scanPageSize: 500}
}

// NewWithPool creates a new PostgreSQL item store with a connection pool
func NewWithPool(pool *pgxpool.Pool) *Store {
	return New(pool)
}

// doc is the stored document shape. Tags round-trip through interface{} so
// documents migrated from the document table, where counts may be decimals
// or numeric strings, still read back.
type doc struct {
	FileID        string         `json:"file_id"`
	OriginalPath  string         `json:"original_s3_path"`
	ThumbnailPath string         `json:"thumbnail_s3_path,omitempty"`
	ResultPath    string         `json:"result_s3_path,omitempty"`
	Kind          string         `json:"file_type"`
	UploadTime    time.Time      `json:"upload_time"`
	Tags          map[string]any `json:"tags"`
	LastModified  time.Time      `json:"last_modified,omitempty"`
}

func (d doc) record() *birdtag.MediaRecord {
	return &birdtag.MediaRecord{
		FileID:        d.FileID,
		OriginalPath:  d.OriginalPath,
		ThumbnailPath: d.ThumbnailPath,
		ResultPath:    d.ResultPath,
		Kind:          birdtag.MediaKind(d.Kind),
		UploadTime:    d.UploadTime,
		Tags:          birdtag.NormalizeStoredTags(d.Tags),
		LastModified:  d.LastModified,
	}
}

func (s *Store) Put(ctx context.Context, rec *birdtag.MediaRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.FileID, err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO media_records (file_id, doc)
		VALUES ($1, $2)
		ON CONFLICT (file_id) DO UPDATE SET doc = EXCLUDED.doc`,
		rec.FileID, body)
	if err != nil {
		return &birdtag.StoreError{Store: "media_records", Key: rec.FileID, Op: "put", Err: err}
	}
	return nil
}

func (s *Store) Get(ctx context.Context, fileID string) (*birdtag.MediaRecord, error) {
	var body []byte
	err := s.db.QueryRow(ctx,
		`SELECT doc FROM media_records WHERE file_id = $1`, fileID).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, birdtag.ErrRecordNotFound
	}
	if err != nil {
		return nil, &birdtag.StoreError{Store: "media_records", Key: fileID, Op: "get", Err: err}
	}
	return decodeDoc(body)
}

func (s *Store) Delete(ctx context.Context, fileID string) error {
	// Deleting an absent row succeeds.
	_, err := s.db.Exec(ctx,
		`DELETE FROM media_records WHERE file_id = $1`, fileID)
	if err != nil {
		return &birdtag.StoreError{Store: "media_records", Key: fileID, Op: "delete", Err: err}
	}
	return nil
}

func (s *Store) Scan(ctx context.Context, fn func(*birdtag.MediaRecord) error) error {
	cursor := ""
	for {
		page, last, err := s.scanPage(ctx, cursor)
		if err != nil {
			return err
		}
		for _, rec := range page {
			if err := fn(rec); err != nil {
				return err
			}
		}
		if len(page) < s.scanPageSize {
			return nil
		}
		cursor = last
	}
}

// scanPage reads one keyset page ordered by file_id, returning the records
// and the last file id seen.
func (s *Store) scanPage(ctx context.Context, after string) ([]*birdtag.MediaRecord, string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT file_id, doc FROM media_records
		WHERE file_id > $1
		ORDER BY file_id
		LIMIT $2`, after, s.scanPageSize)
	if err != nil {
		return nil, "", &birdtag.StoreError{Store: "media_records", Op: "scan", Err: err}
	}
	defer rows.Close()

	var page []*birdtag.MediaRecord
	last := after
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&last, &body); err != nil {
			return nil, "", &birdtag.StoreError{Store: "media_records", Op: "scan", Err: err}
		}
		rec, err := decodeDoc(body)
		if err != nil {
			return nil, "", err
		}
		page = append(page, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, "", &birdtag.StoreError{Store: "media_records", Op: "scan", Err: err}
	}
	return page, last, nil
}

func decodeDoc(body []byte) (*birdtag.MediaRecord, error) {
	var d doc
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, fmt.Errorf("decode record document: %w", err)
	}
	return d.record(), nil
}
