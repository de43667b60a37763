package formatter

import (
	"bytes"
	"html"
	"io"
	"net/url"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/oakwood-commons/mentionx/internal/markup"
)

const mentionScheme = "mention:"

// HTMLOptions controls HTML rendering.
type HTMLOptions struct {
	// Class is set on every mention span; defaults to "mention".
	Class string
	// HrefPrefix, when set, renders mentions as links to HrefPrefix+id
	// instead of spans.
	HrefPrefix string
}

// RenderHTML renders the display text as Markdown, with each mention as a
// <span class="mention" data-id="..."> (or a link, see HTMLOptions).
func RenderHTML(spans []markup.Span, opts HTMLOptions) []byte {
	if opts.Class == "" {
		opts.Class = "mention"
	}
	var src strings.Builder
	for _, s := range spans {
		if !s.IsMention {
			src.WriteString(s.Text)
			continue
		}
		src.WriteString("[")
		src.WriteString(s.Text)
		src.WriteString("](")
		src.WriteString(mentionScheme + url.PathEscape(s.EntityID))
		src.WriteString(")")
	}

	extensions := parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	doc := parser.NewWithExtensions(extensions).Parse([]byte(src.String()))

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags:          mdhtml.CommonFlags,
		RenderNodeHook: mentionHook(opts),
	})
	return bytes.TrimSpace(markdown.Render(doc, renderer))
}

func mentionHook(opts HTMLOptions) mdhtml.RenderNodeFunc {
	return func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
		link, ok := node.(*ast.Link)
		if !ok || !bytes.HasPrefix(link.Destination, []byte(mentionScheme)) {
			return ast.GoToNext, false
		}
		if !entering {
			if opts.HrefPrefix != "" {
				io.WriteString(w, "</a>")
			} else {
				io.WriteString(w, "</span>")
			}
			return ast.GoToNext, true
		}
		id, err := url.PathUnescape(string(link.Destination[len(mentionScheme):]))
		if err != nil {
			id = string(link.Destination[len(mentionScheme):])
		}
		class := html.EscapeString(opts.Class)
		if opts.HrefPrefix != "" {
			io.WriteString(w, `<a class="`+class+`" href="`+html.EscapeString(opts.HrefPrefix+url.PathEscape(id))+`">`)
		} else {
			io.WriteString(w, `<span class="`+class+`" data-id="`+html.EscapeString(id)+`">`)
		}
		return ast.GoToNext, true
	}
}
