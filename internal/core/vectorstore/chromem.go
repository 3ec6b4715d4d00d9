package vectorstore

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"
)

// ChromemStore is an in-process Store backed by chromem-go. It serves local
// development and tests where no Postgres with pgvector is available; records
// live in memory and disappear with the process.
type ChromemStore struct {
	db *chromem.DB
}

var _ Store = (*ChromemStore)(nil)

func NewChromemStore() *ChromemStore {
	return &ChromemStore{db: chromem.NewDB()}
}

func (s *ChromemStore) collection(namespace string) (*chromem.Collection, error) {
	// Embeddings are always supplied by the caller, so no embedding func is
	// wired into the collection.
	c, err := s.db.GetOrCreateCollection(namespace, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("get collection %s: %w", namespace, err)
	}
	return c, nil
}

func (s *ChromemStore) Upsert(ctx context.Context, namespace string, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	c, err := s.collection(namespace)
	if err != nil {
		return err
	}

	docs := make([]chromem.Document, 0, len(records))
	for _, r := range records {
		docs = append(docs, chromem.Document{
			ID:      r.ID,
			Content: r.Text,
			Metadata: map[string]string{
				"doc_id":   r.DocID,
				"filename": r.FileName,
				"type":     r.ChunkType,
			},
			Embedding: r.Embedding,
		})
	}
	if err := c.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	return nil
}

func (s *ChromemStore) Query(ctx context.Context, namespace string, embedding []float32, k int) ([]Match, error) {
	c, err := s.collection(namespace)
	if err != nil {
		return nil, err
	}
	// chromem rejects k larger than the collection size.
	if n := c.Count(); k > n {
		k = n
	}
	if k == 0 {
		return nil, nil
	}

	results, err := c.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: embedding,
		NResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	out := make([]Match, 0, len(results))
	for _, res := range results {
		out = append(out, Match{
			Text:     res.Content,
			DocID:    res.Metadata["doc_id"],
			FileName: res.Metadata["filename"],
			Score:    float64(res.Similarity),
		})
	}
	return out, nil
}

func (s *ChromemStore) DeleteByDocument(ctx context.Context, namespace, docID string) error {
	c, err := s.collection(namespace)
	if err != nil {
		return err
	}
	if err := c.Delete(ctx, map[string]string{"doc_id": docID}, nil); err != nil {
		return fmt.Errorf("delete by doc_id %s: %w", docID, err)
	}
	return nil
}
