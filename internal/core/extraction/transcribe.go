package extraction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/paperdeck/paperdeck/internal/core"
)

const visionSystemPrompt = "You are a professional document digitizer. Your mission is to extract tables " +
	"with 100% completeness, ensuring no rows are omitted from the bottom of the image."

const visionUserPrompt = `Extract the content of this image into Markdown by following these structural rules:

1. **Full Image Scan**: Process the image from the very top header to the very last row at the bottom. DO NOT stop until the entire table is transcribed.
2. **Analyze Vertical Alignment**: Determine columns based on strict vertical alignment. Do not create new columns unless there is a clear, consistent vertical gap or divider.
3. **Cell Consolidation**: If a single cell contains multiple lines of text, keep them within the same Markdown cell. Use <br> for line breaks inside the cell instead of splitting them into new rows or columns.
4. **Literal Transcription**: Transcribe every number, symbol, and word exactly as shown. Do not summarize or omit any data.
5. **Charts and Diagrams**: For charts or diagrams, provide a structured nested list instead of a table.
6. **No Conversational Filler**: Output ONLY the Markdown content. No headers like 'Here is the table'.`

// Transcriber turns an image block into markdown via a vision model. The
// image is staged in object storage under a short-lived signed URL so the
// model can fetch it, and the staged object is deleted after the call on both
// success and failure paths.
type Transcriber struct {
	obj    core.ObjectClient
	vision core.VisionModel
	bucket string
	ttl    time.Duration
}

func NewTranscriber(obj core.ObjectClient, vision core.VisionModel, bucket string, ttl time.Duration) *Transcriber {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Transcriber{obj: obj, vision: vision, bucket: bucket, ttl: ttl}
}

// Transcribe stages the image, runs the vision call, and returns the
// markdown transcription. Errors are returned for the caller to record as
// warnings; a failed transcription never aborts the surrounding page.
func (t *Transcriber) Transcribe(ctx context.Context, image []byte) (string, error) {
	key := fmt.Sprintf("temp_images/vision_%s.png", uuid.NewString())

	if _, err := t.obj.UploadFile(ctx, t.bucket, key, image, "image/png"); err != nil {
		return "", fmt.Errorf("stage image: %w", err)
	}
	defer func() {
		if err := t.obj.DeleteFile(ctx, t.bucket, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("staged image not deleted")
		}
	}()

	url, err := t.obj.SignedURL(ctx, t.bucket, key, t.ttl)
	if err != nil {
		return "", fmt.Errorf("sign image url: %w", err)
	}

	out, err := t.vision.CompleteWithImage(ctx, visionSystemPrompt, visionUserPrompt, url)
	if err != nil {
		return "", fmt.Errorf("vision transcription: %w", err)
	}
	return out, nil
}
