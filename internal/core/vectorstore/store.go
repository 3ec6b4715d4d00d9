package vectorstore

import "context"

// Record is the persisted unit: an embedding plus the chunk text and the
// metadata needed to delete or attribute it later.
type Record struct {
	ID        string
	Embedding []float32
	Text      string
	DocID     string
	FileName  string
	ChunkType string
}

// Match is one ranked retrieval result. Score is backend-specific (distance
// for pgvector, similarity for chromem); callers only rely on the ordering.
type Match struct {
	Text     string
	DocID    string
	FileName string
	Score    float64
}

// Store abstracts the nearest-neighbor index. A namespace is a logical
// partition; all records for one deployment share a namespace.
type Store interface {
	// Upsert writes all records or fails as a unit from the caller's point
	// of view: on error the caller must assume a partial write and clean up
	// with DeleteByDocument.
	Upsert(ctx context.Context, namespace string, records []Record) error
	Query(ctx context.Context, namespace string, embedding []float32, k int) ([]Match, error)
	DeleteByDocument(ctx context.Context, namespace, docID string) error
}
