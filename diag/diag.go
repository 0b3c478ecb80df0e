// Package diag is the structured diagnostic model shared by every
// phase of the laika pipeline: parsing, rewrite, and configuration
// resolution all report problems as a *Diagnostic carrying a Kind, a
// position, and (where one exists) an underlying cause, instead of
// bare fmt.Errorf strings. A Collector accumulates diagnostics across
// a whole Parse call the way a compiler accumulates errors across a
// whole file instead of stopping at the first one.
package diag

import (
	"fmt"
	"io"

	"github.com/laikadoc/laika/ast"
	"github.com/laikadoc/laika/cursor"
)

// Kind classifies what went wrong, independent of where in the
// pipeline it was detected.
type Kind string

const (
	KindSyntax        Kind = "syntax"
	KindUnresolvedRef Kind = "unresolved_reference"
	KindDuplicate     Kind = "duplicate_definition"
	KindCycle         Kind = "cycle"
	KindConfig        Kind = "config"
	KindIO            Kind = "io_error"
	KindInvalidNode   Kind = "invalid_node"
)

// Diagnostic is a single structured problem report: what kind it is,
// a human message, where it happened, and (for cycle/config errors in
// particular) the lower-level cause it wraps.
type Diagnostic struct {
	Kind     Kind
	Message  string
	Severity ast.Severity
	Path     string
	Pos      cursor.Position
	Source   string
	Cause    error
}

// New builds a Diagnostic. Source, when non-empty, is the line of
// input Pos refers to, rendered under the message via Position.Caret.
func New(kind Kind, message string, severity ast.Severity, path string, pos cursor.Position, source string, cause error) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: message, Severity: severity, Path: path, Pos: pos, Source: source, Cause: cause}
}

// Error implements the error interface with a location-prefixed,
// caret-annotated message.
func (d *Diagnostic) Error() string {
	loc := fmt.Sprintf("%d:%d", d.Pos.StartLine, d.Pos.StartColumn)
	if d.Path != "" {
		loc = d.Path + ":" + loc
	}
	msg := fmt.Sprintf("%s: %s: %s", loc, d.Severity, d.Message)
	if d.Source != "" {
		msg += "\n" + d.Pos.Caret(d.Source)
	}
	return msg
}

// Unwrap returns the underlying cause, if any, for error chain support.
func (d *Diagnostic) Unwrap() error { return d.Cause }

// Collector accumulates diagnostics across a single Parse call,
// generalizing the teacher's Document.Errors/AddError pair into a
// reusable type any package can embed or hold a pointer to.
type Collector struct {
	diagnostics []*Diagnostic
}

// Add records a new diagnostic.
func (c *Collector) Add(d *Diagnostic) {
	c.diagnostics = append(c.diagnostics, d)
}

// All returns every diagnostic recorded so far, in recording order.
func (c *Collector) All() []*Diagnostic {
	return c.diagnostics
}

// HasErrors reports whether any recorded diagnostic is at least
// ast.SeverityError.
func (c *Collector) HasErrors() bool {
	for _, d := range c.diagnostics {
		if d.Severity.AtLeast(ast.SeverityError) {
			return true
		}
	}
	return false
}

// ByKind returns every recorded diagnostic of the given Kind.
func (c *Collector) ByKind(kind Kind) []*Diagnostic {
	var out []*Diagnostic
	for _, d := range c.diagnostics {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// WriteTo writes every diagnostic to w, one per line, matching the
// teacher's Document.WriteErrors.
func (c *Collector) WriteTo(w io.Writer) error {
	for _, d := range c.diagnostics {
		if _, err := fmt.Fprintln(w, d.Error()); err != nil {
			return err
		}
	}
	return nil
}
