package content

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// markdown renders GFM. Raw HTML in the source is dropped because the
// renderer is not configured as unsafe.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderMarkdown converts a Markdown snippet to HTML.
func RenderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	//nolint:gosec // goldmark output with raw HTML disabled
	return template.HTML(buf.String()), nil
}

func (c *Content) render() error {
	for i := range c.News {
		out, err := RenderMarkdown(c.News[i].Description)
		if err != nil {
			return err
		}
		c.News[i].DescriptionHTML = out
	}
	for i := range c.Events {
		out, err := RenderMarkdown(c.Events[i].Description)
		if err != nil {
			return err
		}
		c.Events[i].DescriptionHTML = out
	}
	return nil
}
