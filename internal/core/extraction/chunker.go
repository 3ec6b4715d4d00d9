package extraction

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// Profile is a chunk size/overlap pair in characters.
type Profile struct {
	Size    int
	Overlap int
}

// HybridProfile is used for vision-augmented markdown where tables and image
// transcriptions benefit from larger chunks. PlainProfile covers plain text
// extraction paths.
var (
	HybridProfile = Profile{Size: 1500, Overlap: 100}
	PlainProfile  = Profile{Size: 1000, Overlap: 500}
)

// SplitText splits normalized text into overlapping chunks, preferring
// paragraph and line boundaries over mid-sentence cuts. Whitespace-only
// input yields no chunks; callers treat that as a fatal extraction failure.
func SplitText(content string, p Profile) ([]string, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(p.Size),
		textsplitter.WithChunkOverlap(p.Overlap),
		textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
	)
	chunks, err := splitter.SplitText(content)
	if err != nil {
		return nil, fmt.Errorf("split text: %w", err)
	}

	out := chunks[:0]
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out, nil
}
