package extraction

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// NormalizeMarkdown converts document markdown into plain text for embedding
// by parsing to goldmark's AST and collecting the visible text, dropping the
// markup syntax. Normalization is an optimization, not a dependency: any
// failure falls back to the raw markdown unchanged.
func NormalizeMarkdown(markdown string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = markdown
		}
	}()

	src := []byte(markdown)
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	root := md.Parser().Parse(text.NewReader(src))

	var b strings.Builder
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock && n.Kind() != ast.KindDocument {
				b.WriteString("\n\n")
			}
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.FencedCodeBlock:
			writeLines(&b, src, node)
		case *ast.CodeBlock:
			writeLines(&b, src, node)
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return markdown
	}

	return strings.TrimSpace(blankRuns.ReplaceAllString(b.String(), "\n\n"))
}

func writeLines(b *strings.Builder, src []byte, n ast.Node) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
}
