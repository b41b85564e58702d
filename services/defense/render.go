package defense

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var letterMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// RenderHTML converts the stored Markdown letter to HTML for preview/print.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := letterMarkdown.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render letter: %w", err)
	}
	return buf.String(), nil
}
