package extraction

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText_WhitespaceOnlyYieldsNoChunks(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\n\t  \n"} {
		chunks, err := SplitText(in, PlainProfile)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	}
}

func TestSplitText_ShortInputIsSingleChunk(t *testing.T) {
	chunks, err := SplitText("hello world", PlainProfile)

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestSplitText_RespectsSizeBound(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("lorem ipsum dolor sit amet consectetur adipiscing elit ")
	}

	chunks, err := SplitText(b.String(), Profile{Size: 100, Overlap: 20})

	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 100)
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}

func TestSplitText_PrefersParagraphBoundaries(t *testing.T) {
	p1 := strings.Repeat("alpha ", 10)
	p2 := strings.Repeat("beta ", 10)
	content := strings.TrimSpace(p1) + "\n\n" + strings.TrimSpace(p2)

	chunks, err := SplitText(content, Profile{Size: 80, Overlap: 0})

	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.NotContains(t, chunks[0], "beta")
	assert.NotContains(t, chunks[1], "alpha")
}

func TestSplitText_OverlapBoundAndFullCoverage(t *testing.T) {
	words := make([]string, 30)
	for i := range words {
		words[i] = fmt.Sprintf("w%02da", i)
	}
	content := strings.Join(words, " ")

	p := Profile{Size: 40, Overlap: 10}
	chunks, err := SplitText(content, p)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	joined := strings.Join(chunks, " ")
	for _, w := range words {
		assert.Contains(t, joined, w, "every source word must land in some chunk")
	}

	for i := 1; i < len(chunks); i++ {
		shared := sharedBoundary(chunks[i-1], chunks[i])
		assert.LessOrEqual(t, shared, p.Overlap,
			"chunks %d and %d share %d chars, more than the configured overlap", i-1, i, shared)
	}
}

// sharedBoundary returns the length of the longest suffix of prev that is
// also a prefix of next.
func sharedBoundary(prev, next string) int {
	n := len(prev)
	if len(next) < n {
		n = len(next)
	}
	for k := n; k > 0; k-- {
		if strings.HasSuffix(prev, next[:k]) {
			return k
		}
	}
	return 0
}

func TestSplitText_EveryParagraphCovered(t *testing.T) {
	content := "first section\n\nsecond section\n\nthird section"

	chunks, err := SplitText(content, HybridProfile)
	require.NoError(t, err)

	joined := strings.Join(chunks, "\n")
	for _, want := range []string{"first section", "second section", "third section"} {
		assert.Contains(t, joined, want)
	}
}
