package ast

// Text is a leaf run of literal text.
type Text struct {
	base
	Content string
}

func (Text) Category() Category { return CategorySpan }
func (Text) span()              {}

// Literal is text that must never be re-parsed for inline markup
// (inside code spans, for instance).
type Literal struct {
	base
	Content string
}

func (Literal) Category() Category { return CategorySpan }
func (Literal) span()              {}

// Emphasized / Strong / Strikethrough are the three delimiter-driven
// emphasis spans.
type Emphasized struct {
	base
	Content []Span
}

func (Emphasized) Category() Category              { return CategorySpan }
func (Emphasized) span()                           {}
func (n Emphasized) ChildSpans() []Span            { return n.Content }
func (n Emphasized) WithChildSpans(s []Span) Span { n.Content = s; return n }

type Strong struct {
	base
	Content []Span
}

func (Strong) Category() Category             { return CategorySpan }
func (Strong) span()                          {}
func (n Strong) ChildSpans() []Span           { return n.Content }
func (n Strong) WithChildSpans(s []Span) Span { n.Content = s; return n }

type Strikethrough struct {
	base
	Content []Span
}

func (Strikethrough) Category() Category             { return CategorySpan }
func (Strikethrough) span()                          {}
func (n Strikethrough) ChildSpans() []Span           { return n.Content }
func (n Strikethrough) WithChildSpans(s []Span) Span { n.Content = s; return n }

// InlineCode is a code span, optionally language-tagged for inline
// source blocks (Laika's `src_lang{...}` and similar constructs).
type InlineCode struct {
	base
	Lang  string
	Spans []Span
}

func (InlineCode) Category() Category             { return CategorySpan }
func (InlineCode) span()                          {}
func (n InlineCode) ChildSpans() []Span           { return n.Spans }
func (n InlineCode) WithChildSpans(s []Span) Span { n.Spans = s; return n }

// LinkTarget is resolved during rewrite to either an internal path, an
// external URL, or stays a placeholder (never constructed directly by
// the renderer interface, only by the rewrite engine).
type LinkTarget interface{ linkTarget() }

type ExternalTarget struct{ URL string }
type InternalTarget struct{ Path string }
type UnresolvedTarget struct{ RefID string }

func (ExternalTarget) linkTarget()   {}
func (InternalTarget) linkTarget()   {}
func (UnresolvedTarget) linkTarget() {}

// SpanLink is an inline link; before resolution its Target is an
// UnresolvedTarget naming the reference id.
type SpanLink struct {
	base
	Content []Span
	Target  LinkTarget
	Title   *string
}

func (SpanLink) Category() Category             { return CategorySpan }
func (SpanLink) span()                          {}
func (n SpanLink) ChildSpans() []Span           { return n.Content }
func (n SpanLink) WithChildSpans(s []Span) Span { n.Content = s; return n }

// Image is a link whose content renders as a media embed rather than
// inline text.
type Image struct {
	base
	Description string
	Target      LinkTarget
	Title       *string
}

func (Image) Category() Category { return CategorySpan }
func (Image) span()              {}

// LineBreak is an explicit or soft line break within a paragraph.
type LineBreak struct {
	base
	Hard bool
}

func (LineBreak) Category() Category { return CategorySpan }
func (LineBreak) span()              {}

// FootnoteReference is an unresolved (or, post-rewrite, numbered)
// reference to a Footnote by label. Number and Display are assigned
// during the Resolve phase (§4.5's footnote ordering rules); both are
// zero/empty until then. Number carries the literal integer for the
// numeric/autonumber/named-autonumber schemes (0 for autosymbol
// footnotes, which have no integer); Display is always the string a
// renderer should show — a decimal number or a `*`-sequence symbol.
type FootnoteReference struct {
	base
	Label   string
	Number  int
	Display string
}

func (FootnoteReference) Category() Category { return CategorySpan }
func (FootnoteReference) span()              {}

// SubstitutionReference is an rST `|name|` substitution placeholder.
type SubstitutionReference struct {
	base
	Name string
}

func (SubstitutionReference) Category() Category { return CategorySpan }
func (SubstitutionReference) span()              {}

// InterpretedText is rST `` `text`:role: `` before role application.
type InterpretedText struct {
	base
	Content string
	Role    string
}

func (InterpretedText) Category() Category { return CategorySpan }
func (InterpretedText) span()              {}

// RawContent is format-targeted raw output (`@@html: ...@@` and
// similar), passed through verbatim only when the active format
// matches one of Formats.
type RawContent struct {
	base
	Formats []string
	Content string
}

func (RawContent) Category() Category { return CategorySpan }
func (RawContent) span()              {}

// UnresolvedSpanSequence is the two-pass placeholder of §4.3: the
// block pass captures an inline region as a SourceFragment and wraps
// it here; the span pass later replaces it with the parsed span tree,
// expanded in place by markup.ExpandSpans, which each dialect's Parse
// runs right after its block pass.
type UnresolvedSpanSequence struct {
	base
	Source Fragment
}

func (UnresolvedSpanSequence) Category() Category { return CategorySpan }
func (UnresolvedSpanSequence) span()              {}

// InvalidSpan is the Span-category counterpart of InvalidBlock.
type InvalidSpan struct {
	base
	Message  string
	Severity Severity
	Source   Fragment
}

func (InvalidSpan) Category() Category { return CategorySpan }
func (InvalidSpan) span()              {}
