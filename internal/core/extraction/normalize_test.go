package extraction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMarkdown_StripsMarkup(t *testing.T) {
	md := "# Quarterly Report\n\nRevenue was **up** by *12%* this [quarter](https://example.com).\n"

	out := NormalizeMarkdown(md)

	assert.Contains(t, out, "Quarterly Report")
	assert.Contains(t, out, "Revenue was up by 12% this quarter.")
	assert.NotContains(t, out, "#")
	assert.NotContains(t, out, "**")
	assert.NotContains(t, out, "](")
}

func TestNormalizeMarkdown_KeepsCodeBlockContent(t *testing.T) {
	md := "before\n\n```go\nfmt.Println(\"hi\")\n```\n\nafter"

	out := NormalizeMarkdown(md)

	assert.Contains(t, out, `fmt.Println("hi")`)
	assert.NotContains(t, out, "```")
}

func TestNormalizeMarkdown_CollapsesBlankRuns(t *testing.T) {
	md := "one\n\n\n\n\ntwo"

	out := NormalizeMarkdown(md)

	assert.NotContains(t, out, "\n\n\n")
	assert.Contains(t, out, "one")
	assert.Contains(t, out, "two")
}

func TestNormalizeMarkdown_BlankInputStaysBlank(t *testing.T) {
	assert.Equal(t, "", NormalizeMarkdown(""))
	assert.Equal(t, "", NormalizeMarkdown("   \n\t\n"))
}

func TestNormalizeMarkdown_PlainTextPassesThrough(t *testing.T) {
	out := NormalizeMarkdown("just a sentence with no markup")

	assert.Equal(t, "just a sentence with no markup", out)
}

func TestNormalizeMarkdown_TableCellsSurvive(t *testing.T) {
	md := "| Name | Total |\n|------|-------|\n| Acme | 42 |\n"

	out := NormalizeMarkdown(md)

	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "42")
	assert.False(t, strings.Contains(out, "|---"), "separator row should not survive")
}
