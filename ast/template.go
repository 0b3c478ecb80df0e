package ast

// Template nodes back `@:name(...)` template directives whose body is
// the page shell itself rather than document content; kept minimal
// since template documents are a thin top layer over the same Block
// tree (§3.3's "Template" category).

// TemplateRoot is the root of a parsed template document.
type TemplateRoot struct {
	base
	Content []Template
}

func (TemplateRoot) Category() Category { return CategoryTemplate }
func (TemplateRoot) template()          {}

// TemplateString is literal template text, copied through unchanged.
type TemplateString struct {
	base
	Content string
}

func (TemplateString) Category() Category { return CategoryTemplate }
func (TemplateString) template()          {}

// TemplateSpanSlot marks where the rendered document content (a Block
// tree) is spliced into the template.
type TemplateSpanSlot struct{ base }

func (TemplateSpanSlot) Category() Category { return CategoryTemplate }
func (TemplateSpanSlot) template()          {}

// TemplateDirectiveCall is an unresolved `@:name(...)` invocation
// inside a template, expanded by the directive framework (§4.4).
type TemplateDirectiveCall struct {
	base
	Name string
	Body []Template
}

func (TemplateDirectiveCall) Category() Category { return CategoryTemplate }
func (TemplateDirectiveCall) template()          {}
