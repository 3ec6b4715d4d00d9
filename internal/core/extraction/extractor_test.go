package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainTextPages_SinglePageSingleBlock(t *testing.T) {
	pages, err := PlainTextPages([]byte("hello\nworld"))

	require.NoError(t, err)
	require.Len(t, pages, 1)
	require.Len(t, pages[0].Blocks, 1)
	assert.Equal(t, TextBlock, pages[0].Blocks[0].Kind)
	assert.Equal(t, "hello\nworld", pages[0].Blocks[0].Text)
}

func TestPlainTextPages_RejectsBinary(t *testing.T) {
	_, err := PlainTextPages([]byte{0xff, 0xfe, 0x00, 0x80})

	assert.Error(t, err)
}

func TestContentTypeForExt(t *testing.T) {
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		ContentTypeForExt(".docx"))
	assert.Equal(t, "text/html", ContentTypeForExt(".htm"))
	assert.Equal(t, "application/octet-stream", ContentTypeForExt(".xyz"))
}
