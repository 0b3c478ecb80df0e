// Package html supplies the default HTML ExtensionBundle for
// render.Renderer: one NodeHandler per ast.Block/ast.Span concrete
// type, escaping text via golang.org/x/net/html the way the teacher's
// go.mod already pulls that package for (§6.2).
package html

import (
	"fmt"
	"strings"

	nethtml "golang.org/x/net/html"

	"github.com/laikadoc/laika/ast"
	"github.com/laikadoc/laika/render"
)

// New builds a Renderer configured with the default HTML bundle.
// translatePath, if non-nil, maps an InternalTarget's document path to
// an href (the default appends ".html").
func New(translatePath func(string) string) *render.Renderer {
	if translatePath == nil {
		translatePath = func(p string) string { return p + ".html" }
	}
	r := render.New("html", translatePath)
	render.Compose(r, Bundle)
	return r
}

func escape(s string) string { return nethtml.EscapeString(s) }

func tag(f render.Formatter, n ast.Node, name string, attrs string, inner string) string {
	style := render.InlineStyle(f.Style(strings.TrimPrefix(fmt.Sprintf("%T", n), "ast."), n))
	if style != "" {
		if attrs != "" {
			attrs += " "
		}
		attrs += fmt.Sprintf(`style="%s"`, escape(style))
	}
	if attrs != "" {
		attrs = " " + attrs
	}
	return fmt.Sprintf("<%s%s>%s</%s>\n", name, attrs, inner, name)
}

func idAttr(o ast.Options) string {
	if o.ID == nil {
		return ""
	}
	return fmt.Sprintf(`id="%s"`, escape(*o.ID))
}

// Bundle is the default HTML renderer extension: one handler per
// concrete Block/Span type, registered as defaults so a caller's own
// ExtensionBundle can still override any of them.
var Bundle = render.ExtensionBundle{
	Name:     "html",
	Defaults: []render.NodeHandler{handleBlock, handleSpan},
}

func handleBlock(f render.Formatter, n ast.Node) (string, bool) {
	switch v := n.(type) {
	case ast.RootElement:
		return f.Children(toNodes(v.Content)), true
	case ast.Title:
		return tag(f, n, "h1", idAttr(v.Opts), f.Children(spansToNodes(v.Spans))), true
	case ast.Header:
		return tag(f, n, fmt.Sprintf("h%d", headingLevel(v.Level)), idAttr(v.Opts), f.Children(spansToNodes(v.Spans))), true
	case ast.Section:
		inner := f.Child(v.Header) + f.Children(toNodes(v.Content))
		return tag(f, n, "section", idAttr(v.Opts), inner), true
	case ast.Paragraph:
		return tag(f, n, "p", idAttr(v.Opts), f.Children(spansToNodes(v.Spans))), true
	case ast.Rule:
		return "<hr/>\n", true
	case ast.BulletList:
		return tag(f, n, "ul", idAttr(v.Opts), f.Children(toNodes(v.Items))), true
	case ast.EnumList:
		return tag(f, n, "ol", idAttr(v.Opts), f.Children(toNodes(v.Items))), true
	case ast.ListItem:
		return tag(f, n, "li", idAttr(v.Opts), f.Children(toNodes(v.Children))), true
	case ast.DefinitionList:
		return tag(f, n, "dl", idAttr(v.Opts), f.Children(toNodes(v.Items))), true
	case ast.DefinitionListItem:
		inner := tag(f, n, "dt", "", f.Children(spansToNodes(v.Term))) + tag(f, n, "dd", "", f.Children(toNodes(v.Details)))
		return f.WithoutIndentation(inner), true
	case ast.QuotedBlock:
		return tag(f, n, "blockquote", idAttr(v.Opts), f.Children(toNodes(v.Content))), true
	case ast.LiteralBlock:
		return tag(f, n, "pre", idAttr(v.Opts), escape(v.Content)), true
	case ast.CodeBlock:
		lang := ""
		if v.Lang != "" {
			lang = fmt.Sprintf(` data-lang="%s"`, escape(v.Lang))
		}
		return tag(f, n, "pre", idAttr(v.Opts)+lang, tag(f, n, "code", "", f.Children(spansToNodes(v.Spans)))), true
	case ast.Table:
		var b strings.Builder
		if len(v.Head) > 0 {
			b.WriteString(tag(f, n, "thead", "", f.Children(toNodes(v.Head))))
		}
		b.WriteString(tag(f, n, "tbody", "", f.Children(toNodes(v.Body))))
		return tag(f, n, "table", idAttr(v.Opts), b.String()), true
	case ast.Row:
		return tag(f, n, "tr", "", f.Children(toNodes(v.Cells))), true
	case ast.Cell:
		name := "td"
		if v.Kind == ast.HeadCell {
			name = "th"
		}
		attr := alignAttr(v.Align)
		return tag(f, n, name, attr, f.Children(spansToNodes(v.Spans))), true
	case ast.Footnote:
		id := v.Display
		if id == "" {
			id = v.Label
		}
		label := fmt.Sprintf(`id="fn-%s"`, escape(id))
		return tag(f, n, "div", label, f.Children(toNodes(v.Content))), true
	case ast.Citation:
		label := fmt.Sprintf(`id="cite-%s"`, escape(v.Label))
		return tag(f, n, "div", label, f.Children(toNodes(v.Content))), true
	case ast.LinkDefinition:
		return "", true // consumed by rewrite, nothing to render
	case ast.BlockSequence:
		return f.Children(toNodes(v.Content)), true
	case ast.InvalidBlock:
		return tag(f, n, "div", `class="laika-invalid"`, escape(v.Message)), true
	default:
		return "", false
	}
}

func handleSpan(f render.Formatter, n ast.Node) (string, bool) {
	switch v := n.(type) {
	case ast.Text:
		return escape(v.Content), true
	case ast.Literal:
		return escape(v.Content), true
	case ast.Emphasized:
		return f.WithoutIndentation(tag(f, n, "em", "", f.Children(spansToNodes(v.Content)))), true
	case ast.Strong:
		return f.WithoutIndentation(tag(f, n, "strong", "", f.Children(spansToNodes(v.Content)))), true
	case ast.Strikethrough:
		return f.WithoutIndentation(tag(f, n, "del", "", f.Children(spansToNodes(v.Content)))), true
	case ast.InlineCode:
		return f.WithoutIndentation(tag(f, n, "code", "", f.Children(spansToNodes(v.Spans)))), true
	case ast.SpanLink:
		href := targetHref(f, v.Target)
		title := ""
		if v.Title != nil {
			title = fmt.Sprintf(` title="%s"`, escape(*v.Title))
		}
		return f.WithoutIndentation(tag(f, n, "a", fmt.Sprintf(`href="%s"%s`, escape(href), title), f.Children(spansToNodes(v.Content)))), true
	case ast.Image:
		href := targetHref(f, v.Target)
		return fmt.Sprintf(`<img src="%s" alt="%s"/>`, escape(href), escape(v.Description)), true
	case ast.LineBreak:
		if v.Hard {
			return "<br/>\n", true
		}
		return "\n", true
	case ast.FootnoteReference:
		id := v.Display
		if id == "" {
			id = v.Label
		}
		return fmt.Sprintf(`<a class="footnote-ref" href="#fn-%s">%s</a>`, escape(id), escape(id)), true
	case ast.InvalidSpan:
		return fmt.Sprintf(`<span class="laika-invalid">%s</span>`, escape(v.Message)), true
	case ast.RawContent:
		for _, format := range v.Formats {
			if format == "html" {
				return v.Content, true
			}
		}
		return "", true
	case ast.SubstitutionReference, ast.InterpretedText, ast.UnresolvedSpanSequence:
		// These only reach the renderer if the rewrite phases were
		// skipped; render nothing rather than leak placeholder syntax.
		return "", true
	default:
		return "", false
	}
}

func headingLevel(l ast.HeaderLevel) int {
	n := int(l) + 1 // h2..h6, leaving h1 for the document Title; level 5 and deeper render as h6
	if n > 6 {
		n = 6
	}
	return n
}

func alignAttr(a ast.Alignment) string {
	switch a {
	case ast.AlignLeft:
		return `align="left"`
	case ast.AlignCenter:
		return `align="center"`
	case ast.AlignRight:
		return `align="right"`
	default:
		return ""
	}
}

func targetHref(f render.Formatter, t ast.LinkTarget) string {
	switch v := t.(type) {
	case ast.ExternalTarget:
		return v.URL
	case ast.InternalTarget:
		return f.TranslatePath(v.Path)
	case ast.UnresolvedTarget:
		return "#"
	default:
		return "#"
	}
}

func toNodes(blocks []ast.Block) []ast.Node {
	out := make([]ast.Node, len(blocks))
	for i, b := range blocks {
		out[i] = b
	}
	return out
}

func spansToNodes(spans []ast.Span) []ast.Node {
	out := make([]ast.Node, len(spans))
	for i, s := range spans {
		out[i] = s
	}
	return out
}
