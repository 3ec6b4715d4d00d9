package extraction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortBlocks_VerticalOrder(t *testing.T) {
	blocks := []Block{
		{Kind: TextBlock, Y: 300, Text: "bottom"},
		{Kind: TextBlock, Y: 10, Text: "top"},
		{Kind: ImageBlock, Y: 150, Image: []byte{1}},
	}

	SortBlocks(blocks)

	assert.Equal(t, "top", blocks[0].Text)
	assert.Equal(t, ImageBlock, blocks[1].Kind)
	assert.Equal(t, "bottom", blocks[2].Text)
}

func TestSortBlocks_StableOnTies(t *testing.T) {
	blocks := []Block{
		{Kind: TextBlock, Y: 5, Text: "first"},
		{Kind: TextBlock, Y: 5, Text: "second"},
	}

	SortBlocks(blocks)

	assert.Equal(t, "first", blocks[0].Text)
	assert.Equal(t, "second", blocks[1].Text)
}

func TestAssemblePage_TextAndImageInBlockOrder(t *testing.T) {
	table := "| A | B |\n|---|---|\n| x | y |"

	page := AssemblePage([]string{
		RenderText("Revenue: $5"),
		RenderImageAnalysis(table),
	})

	assert.Contains(t, page, "Revenue: $5")
	assert.Contains(t, page, "> **Image Analysis**:")
	assert.Contains(t, page, table)

	textIdx := strings.Index(page, "Revenue: $5")
	imgIdx := strings.Index(page, "> **Image Analysis**:")
	require.GreaterOrEqual(t, imgIdx, 0)
	assert.Less(t, textIdx, imgIdx, "text block must precede the image annotation")
}

func TestJoinPages_SeparatorBetweenPages(t *testing.T) {
	joined := JoinPages([]string{"page one", "page two"})

	assert.Equal(t, "page one\n\n---\n\npage two", joined)
}

func TestJoinPages_SinglePageHasNoSeparator(t *testing.T) {
	joined := JoinPages([]string{"only page"})

	assert.Equal(t, "only page", joined)
	assert.NotContains(t, joined, "---")
}
