package ast

import "github.com/laikadoc/laika/cursor"

// base carries the fields every node has in common; embedded (not
// exported) so each concrete type still implements Node directly and
// explicitly, matching the teacher's one-struct-per-variant style.
type base struct {
	Opts Options
	Pos  cursor.Position
	Frag *Fragment
}

func (b base) NodeOptions() Options     { return b.Opts }
func (b base) Position() cursor.Position { return b.Pos }

// Paragraph is a run of spans.
type Paragraph struct {
	base
	Spans []Span
}

func (Paragraph) Category() Category                    { return CategoryBlock }
func (Paragraph) block()                                {}
func (n Paragraph) ChildSpans() []Span                  { return n.Spans }
func (n Paragraph) WithChildSpans(s []Span) Block       { n.Spans = s; return n }

// HeaderLevel is a 1-based heading depth.
type HeaderLevel int

// Header is a flat heading line before the Build phase nests it into
// a Section (§4.5).
type Header struct {
	base
	Level HeaderLevel
	Spans []Span
}

func (Header) Category() Category              { return CategoryBlock }
func (Header) block()                          {}
func (n Header) ChildSpans() []Span            { return n.Spans }
func (n Header) WithChildSpans(s []Span) Block { n.Spans = s; return n }

// Title is the document's own title, distinct from section Headers.
type Title struct {
	base
	Spans []Span
}

func (Title) Category() Category              { return CategoryBlock }
func (Title) block()                          {}
func (n Title) ChildSpans() []Span            { return n.Spans }
func (n Title) WithChildSpans(s []Span) Block { n.Spans = s; return n }

// ListKind distinguishes bullet, enumerated, and definition lists.
type ListKind int

const (
	BulletListKind ListKind = iota
	EnumListKind
	DefinitionListKind
)

// BulletList / EnumList hold ListItems.
type BulletList struct {
	base
	Items []Block // ListItem
}

func (BulletList) Category() Category                     { return CategoryBlock }
func (BulletList) block()                                 {}
func (n BulletList) ChildBlocks() []Block                 { return n.Items }
func (n BulletList) WithChildBlocks(b []Block) Block       { n.Items = b; return n }

type EnumList struct {
	base
	Items []Block // ListItem
}

func (EnumList) Category() Category               { return CategoryBlock }
func (EnumList) block()                           {}
func (n EnumList) ChildBlocks() []Block           { return n.Items }
func (n EnumList) WithChildBlocks(b []Block) Block { n.Items = b; return n }

// ListItem is one entry of a BulletList or EnumList.
type ListItem struct {
	base
	Bullet   string
	Children []Block
}

func (ListItem) Category() Category                { return CategoryBlock }
func (ListItem) block()                            {}
func (n ListItem) ChildBlocks() []Block            { return n.Children }
func (n ListItem) WithChildBlocks(b []Block) Block { n.Children = b; return n }

// DefinitionList pairs terms with their descriptions.
type DefinitionList struct {
	base
	Items []Block // DefinitionListItem
}

func (DefinitionList) Category() Category                { return CategoryBlock }
func (DefinitionList) block()                            {}
func (n DefinitionList) ChildBlocks() []Block             { return n.Items }
func (n DefinitionList) WithChildBlocks(b []Block) Block   { n.Items = b; return n }

type DefinitionListItem struct {
	base
	Term    []Span
	Details []Block
}

func (DefinitionListItem) Category() Category                { return CategoryBlock }
func (DefinitionListItem) block()                            {}
func (n DefinitionListItem) ChildBlocks() []Block             { return n.Details }
func (n DefinitionListItem) WithChildBlocks(b []Block) Block  { n.Details = b; return n }

// QuotedBlock is a block quote; its content is nested blocks.
type QuotedBlock struct {
	base
	Content []Block
}

func (QuotedBlock) Category() Category                { return CategoryBlock }
func (QuotedBlock) block()                            {}
func (n QuotedBlock) ChildBlocks() []Block             { return n.Content }
func (n QuotedBlock) WithChildBlocks(b []Block) Block  { n.Content = b; return n }

// LiteralBlock is pre-formatted text with no inline parsing.
type LiteralBlock struct {
	base
	Content string
}

func (LiteralBlock) Category() Category { return CategoryBlock }
func (LiteralBlock) block()             {}

// CodeBlock is a fenced/indented code block, optionally tagged with a
// language and already split into syntax-highlighted spans by a
// highlighter hook (the hook itself is an L7/render concern; here it
// is represented as already-applied Spans, or a single raw Text span
// when no highlighter ran).
type CodeBlock struct {
	base
	Lang  string
	Spans []Span
}

func (CodeBlock) Category() Category              { return CategoryBlock }
func (CodeBlock) block()                          {}
func (n CodeBlock) ChildSpans() []Span            { return n.Spans }
func (n CodeBlock) WithChildSpans(s []Span) Block { n.Spans = s; return n }

// Alignment is a GFM table column alignment.
type Alignment int

const (
	AlignDefault Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// CellKind distinguishes header cells from body cells.
type CellKind int

const (
	BodyCell CellKind = iota
	HeadCell
)

// Cell is one table cell.
type Cell struct {
	base
	Kind  CellKind
	Align Alignment
	Spans []Span
}

func (Cell) Category() Category              { return CategoryBlock }
func (Cell) block()                          {}
func (n Cell) ChildSpans() []Span            { return n.Spans }
func (n Cell) WithChildSpans(s []Span) Block { n.Spans = s; return n }

// Row is one table row of Cells.
type Row struct {
	base
	Cells []Block // Cell
}

func (Row) Category() Category               { return CategoryBlock }
func (Row) block()                           {}
func (n Row) ChildBlocks() []Block           { return n.Cells }
func (n Row) WithChildBlocks(b []Block) Block { n.Cells = b; return n }

// Table is head rows plus body rows (§6.3 alignment row handling).
type Table struct {
	base
	Head []Block // Row
	Body []Block // Row
}

func (Table) Category() Category { return CategoryBlock }
func (Table) block()             {}
func (n Table) ChildBlocks() []Block {
	all := make([]Block, 0, len(n.Head)+len(n.Body))
	all = append(all, n.Head...)
	all = append(all, n.Body...)
	return all
}
func (n Table) WithChildBlocks(b []Block) Block {
	if len(b) < len(n.Head) {
		n.Head, n.Body = b, nil
		return n
	}
	n.Head, n.Body = b[:len(n.Head)], b[len(n.Head):]
	return n
}

// Rule is a horizontal rule.
type Rule struct{ base }

func (Rule) Category() Category { return CategoryBlock }
func (Rule) block()             {}

// BlockSequence is a transparent grouping of blocks, used where the
// parser needs to return more than one sibling from a single rule.
type BlockSequence struct {
	base
	Content []Block
}

func (BlockSequence) Category() Category               { return CategoryBlock }
func (BlockSequence) block()                           {}
func (n BlockSequence) ChildBlocks() []Block            { return n.Content }
func (n BlockSequence) WithChildBlocks(b []Block) Block { n.Content = b; return n }

// Section is a Header plus the blocks nested under it, built from a
// flat sequence of Headers by the rewrite engine's Build phase.
type Section struct {
	base
	Header  Block // Header
	Content []Block
}

func (Section) Category() Category { return CategoryBlock }
func (Section) block()             {}
func (n Section) ChildBlocks() []Block {
	all := make([]Block, 0, len(n.Content)+1)
	all = append(all, n.Header)
	all = append(all, n.Content...)
	return all
}
func (n Section) WithChildBlocks(b []Block) Block {
	if len(b) == 0 {
		return n
	}
	n.Header, n.Content = b[0], b[1:]
	return n
}

// RootElement is the top-level container of a parsed document.
type RootElement struct {
	base
	Content []Block
}

func (RootElement) Category() Category                { return CategoryBlock }
func (RootElement) block()                            {}
func (n RootElement) ChildBlocks() []Block             { return n.Content }
func (n RootElement) WithChildBlocks(b []Block) Block  { n.Content = b; return n }

// Footnote is a footnote body, addressed by Label (numeric, "#", "*",
// or "#name" per §4.5's footnote ordering rules). Number and Display
// are stamped by the rewrite engine's Resolve phase the same way as
// the matching FootnoteReference, so a definition and its references
// render the same marker.
type Footnote struct {
	base
	Label   string
	Number  int
	Display string
	Content []Block
}

func (Footnote) Category() Category               { return CategoryBlock }
func (Footnote) block()                           {}
func (n Footnote) ChildBlocks() []Block            { return n.Content }
func (n Footnote) WithChildBlocks(b []Block) Block { n.Content = b; return n }

// Citation is a bibliographic citation target, structurally identical
// to Footnote but resolved by citation-key lookup instead.
type Citation struct {
	base
	Label   string
	Content []Block
}

func (Citation) Category() Category               { return CategoryBlock }
func (Citation) block()                           {}
func (n Citation) ChildBlocks() []Block            { return n.Content }
func (n Citation) WithChildBlocks(b []Block) Block { n.Content = b; return n }

// LinkDefinition is a reference-style link target definition
// (`[id]: url "title"`), consumed by the Resolve phase.
type LinkDefinition struct {
	base
	ID    string
	URL   string
	Title string
}

func (LinkDefinition) Category() Category { return CategoryBlock }
func (LinkDefinition) block()             {}

// InvalidBlock replaces a malformed or unresolvable block-level
// construct. Invalid nodes are never discarded by the core (§3.3);
// surfacing them is left to the caller's filter policy (§4.5).
type InvalidBlock struct {
	base
	Message  string
	Severity Severity
	Source   Fragment
}

func (InvalidBlock) Category() Category { return CategoryBlock }
func (InvalidBlock) block()             {}
