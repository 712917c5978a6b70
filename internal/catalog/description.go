package catalog

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"
)

var (
	descriptionPolicy = bluemonday.UGCPolicy()
	strictPolicy      = bluemonday.StrictPolicy()
	mdConverter       = converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
	)
)

// CleanDescription sanitizes an HTML description and renders it as
// Markdown. Plain text passes through trimmed.
func CleanDescription(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "<") {
		return raw
	}
	md, err := mdConverter.ConvertString(descriptionPolicy.Sanitize(raw))
	if err != nil {
		return strings.TrimSpace(strictPolicy.Sanitize(raw))
	}
	return strings.TrimSpace(md)
}
