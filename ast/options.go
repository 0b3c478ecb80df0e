// Package ast defines the uniform document model shared by every
// markup front-end: the Block/Span/Template sum types of §3.3, the
// Options record every node carries, and the bottom-up rewrite
// primitive of §4.2.
package ast

import "github.com/laikadoc/laika/cursor"

// Options is carried by every node: an optional id (unique within a
// document once rewriting assigns auto-suffixed variants to
// duplicates) and a set of style classes.
type Options struct {
	ID     *string
	Styles map[string]struct{}
}

// HasStyle reports whether name is one of the node's style classes.
func (o Options) HasStyle(name string) bool {
	_, ok := o.Styles[name]
	return ok
}

// WithID returns a copy of o with ID set.
func (o Options) WithID(id string) Options {
	o.ID = &id
	return o
}

// WithStyle returns a copy of o with name added to Styles.
func (o Options) WithStyle(name string) Options {
	styles := make(map[string]struct{}, len(o.Styles)+1)
	for s := range o.Styles {
		styles[s] = struct{}{}
	}
	styles[name] = struct{}{}
	o.Styles = styles
	return o
}

// Fragment is the SourceFragment of the glossary: a captured substring
// of the original input plus its position, kept on nodes that
// participated in a rewrite so error messages can cite the source that
// produced them.
type Fragment struct {
	Source   string
	Position cursor.Position
}
