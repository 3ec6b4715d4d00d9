package extraction

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalPDF assembles a one-page document whose resources hold two image
// XObjects with empty streams. Cross reference offsets are computed from the
// actual object positions so the parser accepts the file.
func minimalPDF(t *testing.T) []byte {
	t.Helper()

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R " +
			"/Resources << /XObject << /Im0 5 0 R /Im1 6 0 R >> >> >>",
		"<< /Length 5 >>\nstream\nBT ET\nendstream",
		"<< /Type /XObject /Subtype /Image /Length 0 >>\nstream\n\nendstream",
		"<< /Type /XObject /Subtype /Image /Length 0 >>\nstream\n\nendstream",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, xref)
	return buf.Bytes()
}

func TestExtractPages_ReportsEveryUnreadableImage(t *testing.T) {
	e := NewPDFExtractor()

	pages, warnings, err := e.ExtractPages(minimalPDF(t))

	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Empty(t, pages[0].Blocks)

	require.Len(t, warnings, 2, "each unreadable image must produce its own warning")
	assert.Contains(t, warnings[0], "Im0")
	assert.Contains(t, warnings[1], "Im1")
}

func TestExtractPages_RejectsNonPDF(t *testing.T) {
	e := NewPDFExtractor()

	_, _, err := e.ExtractPages([]byte("plain text, not a pdf"))

	assert.Error(t, err)
}
