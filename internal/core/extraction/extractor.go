package extraction

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"code.sajari.com/docconv"
)

// PlainTextPages wraps a plain text or markdown file as a single page with
// one text block; such files never produce image blocks.
func PlainTextPages(data []byte) ([]Page, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("file is not valid UTF-8 text")
	}
	return []Page{{
		Number: 1,
		Blocks: []Block{{Kind: TextBlock, Y: 0, Text: string(data)}},
	}}, nil
}

// DocconvPages is the fallback for office formats (docx, pptx, odt, ...):
// docconv extracts the full text, which becomes a single text block.
func DocconvPages(data []byte, contentType string) ([]Page, error) {
	res, err := docconv.Convert(bytes.NewReader(data), contentType, false)
	if err != nil {
		return nil, fmt.Errorf("docconv extract: %w", err)
	}
	if strings.TrimSpace(res.Body) == "" {
		return nil, fmt.Errorf("docconv extracted no text for %s", contentType)
	}
	return []Page{{
		Number: 1,
		Blocks: []Block{{Kind: TextBlock, Y: 0, Text: res.Body}},
	}}, nil
}

// ContentTypeForExt maps a lowercase filename extension to the MIME type
// docconv dispatches on.
func ContentTypeForExt(ext string) string {
	switch ext {
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case ".odt":
		return "application/vnd.oasis.opendocument.text"
	case ".rtf":
		return "application/rtf"
	case ".html", ".htm":
		return "text/html"
	default:
		return "application/octet-stream"
	}
}
