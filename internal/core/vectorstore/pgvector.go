package vectorstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"
)

// PgStore keeps vector records in the vector_records table, sharing the
// service's Postgres pool. Nearest-neighbor search uses pgvector's `<->`
// (L2 distance) operator.
type PgStore struct {
	db *sql.DB
}

var _ Store = (*PgStore)(nil)

func NewPgStore(db *sql.DB) *PgStore {
	return &PgStore{db: db}
}

// Upsert inserts all records in one transaction so a failed batch leaves
// nothing behind.
func (s *PgStore) Upsert(ctx context.Context, namespace string, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	const q = `
		INSERT INTO vector_records (id, namespace, doc_id, file_name, chunk_type, text, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (id) DO UPDATE
		SET text = EXCLUDED.text, embedding = EXCLUDED.embedding
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		vec := pgvector.NewVector(r.Embedding)
		if _, err := stmt.ExecContext(ctx,
			r.ID, namespace, r.DocID, r.FileName, r.ChunkType, r.Text, vec,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert record %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

func (s *PgStore) Query(ctx context.Context, namespace string, embedding []float32, k int) ([]Match, error) {
	const q = `
		SELECT text, doc_id, file_name, embedding <-> $2 AS distance
		FROM vector_records
		WHERE namespace = $1
		ORDER BY embedding <-> $2
		LIMIT $3
	`
	vec := pgvector.NewVector(embedding)
	rows, err := s.db.QueryContext(ctx, q, namespace, vec, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.Text, &m.DocID, &m.FileName, &m.Score); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PgStore) DeleteByDocument(ctx context.Context, namespace, docID string) error {
	const q = `DELETE FROM vector_records WHERE namespace = $1 AND doc_id = $2`
	if _, err := s.db.ExecContext(ctx, q, namespace, docID); err != nil {
		return fmt.Errorf("delete vectors for %s: %w", docID, err)
	}
	return nil
}
