package ast

import "github.com/laikadoc/laika/cursor"

// Category distinguishes the three closed sum types of §3.3.
type Category int

const (
	CategoryBlock Category = iota
	CategorySpan
	CategoryTemplate
)

// Node is the capability shared by every variant of Block, Span, and
// Template: every markup construct exposes its Options and its
// Position, regardless of which category it belongs to.
type Node interface {
	Category() Category
	NodeOptions() Options
	Position() cursor.Position
}

// Block is an AST node occupying vertical space.
type Block interface {
	Node
	block()
}

// Span is an AST node representing inline content within a block.
type Span interface {
	Node
	span()
}

// Template is a node belonging to a template document (§3.3).
type Template interface {
	Node
	template()
}

// BlockContainer is implemented by Block nodes whose children are
// themselves Blocks (lists, quoted blocks, sections, ...). It is the
// "small interface" §9 calls for instead of a Children getter that
// would have to lie about what it returns.
type BlockContainer interface {
	ChildBlocks() []Block
	WithChildBlocks([]Block) Block
}

// SpanHolder is implemented by Block nodes that directly hold Span
// children (paragraphs, headers, table cells, ...).
type SpanHolder interface {
	ChildSpans() []Span
	WithChildSpans([]Span) Block
}

// SpanContainer is implemented by Span nodes that themselves contain
// Span children (emphasis, strong, links with a description, ...).
type SpanContainer interface {
	ChildSpans() []Span
	WithChildSpans([]Span) Span
}

// Severity classifies an Invalid node per §7.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// AtLeast reports whether s is at least as severe as min.
func (s Severity) AtLeast(min Severity) bool { return s >= min }
