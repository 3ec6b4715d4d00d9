package extraction

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/ledongthuc/pdf"
)

// Grouping tolerances in PDF points. Text items within lineTolerance of each
// other vertically belong to one line; lines further apart than blockGap
// start a new block.
const (
	lineTolerance = 2.0
	blockGap      = 18.0
)

// PDFExtractor turns a PDF into per-page typed blocks: text runs grouped into
// blocks by vertical gaps, plus the page's image XObjects as image blocks.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// ExtractPages parses every page. A page that fails to parse contributes an
// empty block list and a warning; only failure to open the document at all is
// an error.
func (e *PDFExtractor) ExtractPages(data []byte) ([]Page, []string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, fmt.Errorf("open pdf: %w", err)
	}

	var (
		pages    []Page
		warnings []string
	)
	for i := 1; i <= r.NumPage(); i++ {
		blocks, warns := extractPage(r.Page(i), i)
		warnings = append(warnings, warns...)
		pages = append(pages, Page{Number: i, Blocks: blocks})
	}
	return pages, warnings, nil
}

// extractPage is panic-guarded: the underlying parser panics on malformed
// content streams, and one bad page must not abort the document.
func extractPage(p pdf.Page, num int) (blocks []Block, warns []string) {
	defer func() {
		if rec := recover(); rec != nil {
			blocks = nil
			warns = []string{fmt.Sprintf("page %d: parse failed: %v", num, rec)}
		}
	}()

	if p.V.IsNull() {
		return nil, []string{fmt.Sprintf("page %d: missing page object", num)}
	}

	pageTop := mediaBoxTop(p)
	blocks = textBlocks(p.Content().Text, pageTop)

	// Image XObjects carry no placement coordinates, so they are positioned
	// just below the page's text in resource-dictionary order.
	imgY := pageTop
	if n := len(blocks); n > 0 {
		imgY = blocks[n-1].Y + 1
	}
	images, imgWarns := imageBlocks(p, num, imgY)
	blocks = append(blocks, images...)
	warns = append(warns, imgWarns...)
	return blocks, warns
}

// textBlocks groups positioned text runs into lines, then lines into blocks.
// PDF Y grows upward, so visual position from the top is pageTop - y.
func textBlocks(texts []pdf.Text, pageTop float64) []Block {
	if len(texts) == 0 {
		return nil
	}

	sort.SliceStable(texts, func(i, j int) bool {
		if texts[i].Y != texts[j].Y {
			return texts[i].Y > texts[j].Y
		}
		return texts[i].X < texts[j].X
	})

	type line struct {
		y    float64
		text bytes.Buffer
	}

	var lines []*line
	for _, t := range texts {
		if n := len(lines); n > 0 && abs(lines[n-1].y-t.Y) <= lineTolerance {
			lines[n-1].text.WriteString(t.S)
			continue
		}
		l := &line{y: t.Y}
		l.text.WriteString(t.S)
		lines = append(lines, l)
	}

	var blocks []Block
	var cur *bytes.Buffer
	var curTop float64
	flush := func() {
		if cur == nil {
			return
		}
		blocks = append(blocks, Block{
			Kind: TextBlock,
			Y:    pageTop - curTop,
			Text: cur.String(),
		})
		cur = nil
	}
	prevY := lines[0].y
	for _, l := range lines {
		if cur != nil && prevY-l.y > blockGap {
			flush()
		}
		if cur == nil {
			cur = &bytes.Buffer{}
			curTop = l.y
		} else {
			cur.WriteByte('\n')
		}
		cur.Write(l.text.Bytes())
		prevY = l.y
	}
	flush()
	return blocks
}

func imageBlocks(p pdf.Page, num int, startY float64) ([]Block, []string) {
	xobj := p.V.Key("Resources").Key("XObject")
	if xobj.Kind() != pdf.Dict {
		return nil, nil
	}

	names := xobj.Keys()
	sort.Strings(names)

	var (
		blocks []Block
		warns  []string
	)
	y := startY
	for _, name := range names {
		obj := xobj.Key(name)
		if obj.Kind() != pdf.Stream || obj.Key("Subtype").Name() != "Image" {
			continue
		}
		rd := obj.Reader()
		raw, err := io.ReadAll(rd)
		rd.Close()
		if err != nil || len(raw) == 0 {
			warns = append(warns, fmt.Sprintf("page %d: image %s unreadable", num, name))
			continue
		}
		blocks = append(blocks, Block{Kind: ImageBlock, Y: y, Image: raw})
		y++
	}
	return blocks, warns
}

func mediaBoxTop(p pdf.Page) float64 {
	box := p.V.Key("MediaBox")
	if box.Kind() == pdf.Array && box.Len() == 4 {
		if top := box.Index(3).Float64(); top > 0 {
			return top
		}
	}
	// US Letter height, the common default.
	return 792
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
