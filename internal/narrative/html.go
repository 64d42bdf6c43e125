package narrative

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in the prose (an address, say) is omitted, never passed through.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Typographer),
	goldmark.WithRendererOptions(html.WithXHTML()),
)

// RenderHTML converts narrative paragraphs to an HTML fragment for the
// report assembler. Markdown emphasis in the text is honoured.
func RenderHTML(paragraphs ...string) (string, error) {
	src := strings.Join(paragraphs, "\n\n")
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render narrative html: %w", err)
	}
	return buf.String(), nil
}
