package extraction

import "strings"

// pageSeparator keeps page boundaries visible in the intermediate markdown
// so degraded extractions stay inspectable.
const pageSeparator = "\n\n---\n\n"

// RenderText emits a text block as-is with a trailing newline.
func RenderText(content string) string {
	return content + "\n"
}

// RenderImageAnalysis wraps a vision transcription in the blockquote
// annotation that marks image-derived content in the page markdown.
func RenderImageAnalysis(transcription string) string {
	return "\n> **Image Analysis**:\n" + transcription + "\n"
}

// AssemblePage merges a page's rendered block fragments in order into one
// markdown string.
func AssemblePage(fragments []string) string {
	return strings.Join(fragments, "\n")
}

// JoinPages joins per-page markdown with a horizontal-rule separator.
func JoinPages(pages []string) string {
	return strings.Join(pages, pageSeparator)
}
