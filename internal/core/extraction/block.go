package extraction

import "sort"

type BlockKind int

const (
	TextBlock BlockKind = iota
	ImageBlock
)

// Block is one typed unit of page content. Y is the vertical position from
// the top of the page and is used only for ordering; blocks are intermediate
// values consumed within a single processing run, never persisted.
type Block struct {
	Kind  BlockKind
	Y     float64
	Text  string
	Image []byte
}

// Page holds one page's blocks plus its 1-based page number.
type Page struct {
	Number int
	Blocks []Block
}

// SortBlocks orders blocks top of page first. The sort is stable so blocks
// at equal positions keep their extraction order.
func SortBlocks(blocks []Block) {
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Y < blocks[j].Y
	})
}
