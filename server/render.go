package server

import (
	"fmt"
	"html"

	"github.com/gomarkdown/markdown"

	"scrapingai/extract"
)

// renderMessageHTML converts an assistant message to HTML for the dashboard.
// File-annotated fences become styled file cards (path header plus language
// badge); the rest of the message goes through the markdown renderer.
func renderMessageHTML(content string) string {
	replaced := extract.ReplaceFiles(content, fileCardHTML)
	return string(markdown.ToHTML([]byte(replaced), nil, nil))
}

// fileCardHTML renders one extracted file as an HTML card. All three fields
// originate in model output, so everything is escaped.
func fileCardHTML(f extract.File) string {
	return fmt.Sprintf(
		`<div class="file-block" data-path="%s"><div class="file-block-header"><span class="file-block-path">%s</span><span class="file-block-lang">%s</span></div><pre><code>%s</code></pre></div>`,
		html.EscapeString(f.Path),
		html.EscapeString(f.Path),
		html.EscapeString(f.Language),
		html.EscapeString(f.Content),
	)
}
