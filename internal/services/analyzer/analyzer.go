package analyzer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/paperdeck/paperdeck/internal/core"
	"github.com/paperdeck/paperdeck/internal/core/extraction"
	"github.com/paperdeck/paperdeck/internal/core/vectorstore"
	"github.com/paperdeck/paperdeck/internal/models"
)

// Job is one queued analysis request.
type Job struct {
	DocID       string
	StoragePath string
	Filename    string
}

// Report summarizes a completed analysis run.
type Report struct {
	Pages    int
	Chunks   int
	Warnings []string
}

// Analyzer runs document analysis jobs: download, extract, chunk, embed and
// index. Jobs run on a fixed worker pool fed by a bounded channel; admission
// is guarded by the document status transition so the same document is never
// analyzed twice concurrently.
type Analyzer struct {
	db          core.DbClient
	obj         core.ObjectClient
	store       vectorstore.Store
	embedder    core.EmbeddingProvider
	transcriber *extraction.Transcriber
	pdf         *extraction.PDFExtractor

	bucket    string
	namespace string

	jobTimeout time.Duration

	jobs chan Job
	wg   sync.WaitGroup
}

func New(
	db core.DbClient,
	obj core.ObjectClient,
	store vectorstore.Store,
	embedder core.EmbeddingProvider,
	transcriber *extraction.Transcriber,
	bucket, namespace string,
	queueSize int,
) *Analyzer {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Analyzer{
		db:          db,
		obj:         obj,
		store:       store,
		embedder:    embedder,
		transcriber: transcriber,
		pdf:         extraction.NewPDFExtractor(),
		bucket:      bucket,
		namespace:   namespace,
		jobTimeout:  defaultJobTimeout,
		jobs:        make(chan Job, queueSize),
	}
}

// Start launches numWorkers goroutines draining the job queue. Workers exit
// when the context is cancelled; Wait blocks until they have drained.
func (a *Analyzer) Start(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		a.wg.Add(1)
		go a.worker(ctx, i)
	}
	log.Info().Int("workers", numWorkers).Msg("analyzer started")
}

func (a *Analyzer) Wait() {
	a.wg.Wait()
}

func (a *Analyzer) worker(ctx context.Context, id int) {
	defer a.wg.Done()
	log.Debug().Int("worker", id).Msg("analysis worker running")
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-a.jobs:
			a.run(ctx, job)
		}
	}
}

// TryStart admits a document into analysis. It returns false without
// enqueueing when the document is already being analyzed. The status check
// and transition are a single atomic statement, so two concurrent requests
// for the same document cannot both pass.
func (a *Analyzer) TryStart(ctx context.Context, doc *models.Document) (bool, error) {
	ok, err := a.db.TryMarkAnalyzing(ctx, doc.ID)
	if err != nil {
		return false, fmt.Errorf("mark analyzing: %w", err)
	}
	if !ok {
		return false, nil
	}

	select {
	case a.jobs <- Job{DocID: doc.ID, StoragePath: doc.StoragePath, Filename: doc.FileName}:
		return true, nil
	default:
		// Queue full: release the claim by restoring the status the caller
		// saw when it loaded the document.
		prior := doc.Status
		if prior == "" || prior == models.StatusAnalyzing {
			prior = models.StatusPending
		}
		if uerr := a.db.UpdateDocumentStatus(ctx, doc.ID, prior); uerr != nil {
			log.Error().Err(uerr).Str("doc_id", doc.ID).Msg("status rollback failed")
		}
		return false, fmt.Errorf("analysis queue is full")
	}
}

const (
	// defaultJobTimeout bounds one document's analysis, vision calls included.
	defaultJobTimeout = 15 * time.Minute
	// statusTimeout bounds the terminal status write after a job ends.
	statusTimeout = 30 * time.Second
)

// run executes one job and records the terminal status. The job gets its own
// timeout context so a hung model call cannot pin a worker forever; the
// terminal status write runs on a context detached from the job timeout, so a
// timed-out job still lands in error instead of sticking in analyzing.
func (a *Analyzer) run(parent context.Context, job Job) {
	ctx, cancel := context.WithTimeout(parent, a.jobTimeout)
	defer cancel()

	logger := log.With().Str("doc_id", job.DocID).Str("filename", job.Filename).Logger()
	logger.Info().Msg("analysis started")

	report, err := a.processOne(ctx, job)

	statusCtx, statusCancel := context.WithTimeout(context.WithoutCancel(parent), statusTimeout)
	defer statusCancel()

	if err != nil {
		logger.Error().Err(err).Msg("analysis failed")
		if uerr := a.db.UpdateDocumentStatus(statusCtx, job.DocID, models.StatusError); uerr != nil {
			logger.Error().Err(uerr).Msg("status update failed")
		}
		return
	}

	if uerr := a.db.UpdateDocumentStatus(statusCtx, job.DocID, models.StatusCompleted); uerr != nil {
		logger.Error().Err(uerr).Msg("status update failed")
		return
	}
	logger.Info().
		Int("pages", report.Pages).
		Int("chunks", report.Chunks).
		Int("warnings", len(report.Warnings)).
		Msg("analysis completed")
}

// processOne is the full pipeline for a single document: download, extract
// pages, assemble markdown, normalize, chunk, embed and upsert.
func (a *Analyzer) processOne(ctx context.Context, job Job) (*Report, error) {
	data, err := a.obj.GetFile(ctx, a.bucket, job.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("download document: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(job.Filename))

	var (
		pages    []extraction.Page
		warnings []string
		profile  extraction.Profile
	)
	switch ext {
	case ".pdf":
		pages, warnings, err = a.pdf.ExtractPages(data)
		profile = extraction.HybridProfile
	case ".txt", ".md", ".markdown":
		pages, err = extraction.PlainTextPages(data)
		profile = extraction.PlainProfile
	default:
		pages, err = extraction.DocconvPages(data, extraction.ContentTypeForExt(ext))
		profile = extraction.PlainProfile
	}
	if err != nil {
		return nil, err
	}

	markdown, assembleWarnings := a.assembleDocument(ctx, job, pages)
	warnings = append(warnings, assembleWarnings...)

	if strings.TrimSpace(markdown) == "" {
		return nil, fmt.Errorf("no content extracted from document")
	}

	content := extraction.NormalizeMarkdown(markdown)

	chunks, err := extraction.SplitText(content, profile)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no content extracted from document")
	}

	embeddings, err := a.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(embeddings))
	}

	records := make([]vectorstore.Record, len(chunks))
	for i, chunk := range chunks {
		records[i] = vectorstore.Record{
			ID:        uuid.NewString(),
			Embedding: embeddings[i],
			Text:      chunk,
			DocID:     job.DocID,
			FileName:  job.Filename,
			ChunkType: "markdown",
		}
	}

	if err := a.store.Upsert(ctx, a.namespace, records); err != nil {
		// A partial write must not leave stale vectors behind.
		if derr := a.store.DeleteByDocument(ctx, a.namespace, job.DocID); derr != nil {
			log.Warn().Err(derr).Str("doc_id", job.DocID).Msg("vector cleanup failed")
		}
		return nil, fmt.Errorf("index chunks: %w", err)
	}

	return &Report{Pages: len(pages), Chunks: len(chunks), Warnings: warnings}, nil
}

// assembleDocument renders each page's blocks in vertical order, transcribing
// image blocks through the vision model. A failed or empty transcription only
// produces a warning; text blocks always make it through.
func (a *Analyzer) assembleDocument(ctx context.Context, job Job, pages []extraction.Page) (string, []string) {
	var (
		rendered []string
		warnings []string
	)
	for _, page := range pages {
		extraction.SortBlocks(page.Blocks)

		var fragments []string
		for _, block := range page.Blocks {
			switch block.Kind {
			case extraction.TextBlock:
				if strings.TrimSpace(block.Text) == "" {
					continue
				}
				fragments = append(fragments, extraction.RenderText(block.Text))
			case extraction.ImageBlock:
				if a.transcriber == nil {
					continue
				}
				transcription, err := a.transcriber.Transcribe(ctx, block.Image)
				if err != nil {
					warnings = append(warnings, fmt.Sprintf("page %d: image transcription failed: %v", page.Number, err))
					continue
				}
				if strings.TrimSpace(transcription) == "" {
					continue
				}
				fragments = append(fragments, extraction.RenderImageAnalysis(transcription))
			}
		}
		rendered = append(rendered, extraction.AssemblePage(fragments))
	}
	return extraction.JoinPages(rendered), warnings
}
