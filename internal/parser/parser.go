// Package parser reads C++ headers into tree-sitter syntax trees.
//
// Only the C++ grammar is used; C headers parse as C++. The declaration
// tree builder in internal/decl walks the resulting nodes.
package parser

import (
	"context"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
)

// nearLimit caps the source excerpt carried by a ParseError.
const nearLimit = 40

// Parser parses C++ sources. It is not safe for concurrent use.
type Parser struct {
	ts *sitter.Parser
}

// ParseResult is the syntax tree of one source.
type ParseResult struct {
	Tree   *sitter.Tree
	Root   *sitter.Node
	Source []byte
	// File names the source in positions and errors; empty for
	// anonymous input.
	File string
}

// NewParser creates a parser for the C++ grammar.
func NewParser() (*Parser, error) {
	ts := sitter.NewParser()
	ts.SetLanguage(cpp.GetLanguage())
	return &Parser{ts: ts}, nil
}

// Parse parses src, recorded under file. Syntax errors do not fail the
// parse: they are reported by the result's SyntaxErrors.
func (p *Parser) Parse(ctx context.Context, file string, src []byte) (*ParseResult, error) {
	if p.ts == nil {
		return nil, ErrClosed
	}
	tree, err := p.ts.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, &ParseError{File: file, Message: err.Error()}
	}
	return &ParseResult{
		Tree:   tree,
		Root:   tree.RootNode(),
		Source: src,
		File:   file,
	}, nil
}

// ParseFile reads and parses a header from disk.
func (p *Parser) ParseFile(ctx context.Context, path string) (*ParseResult, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}
	return p.Parse(ctx, path, src)
}

// Close releases parser resources. Results already produced stay valid.
func (p *Parser) Close() {
	if p.ts != nil {
		p.ts.Close()
		p.ts = nil
	}
}

// Close releases the syntax tree.
func (r *ParseResult) Close() {
	if r.Tree != nil {
		r.Tree.Close()
		r.Tree = nil
		r.Root = nil
	}
}

// HasErrors reports whether the tree contains ERROR or MISSING nodes.
func (r *ParseResult) HasErrors() bool {
	return r.Root != nil && r.Root.HasError()
}

// SyntaxErrors describes the outermost ERROR and MISSING nodes in source
// order, at most limit of them (all when limit <= 0). Nodes nested inside
// an ERROR node are not reported separately.
func (r *ParseResult) SyntaxErrors(limit int) []*ParseError {
	if !r.HasErrors() {
		return nil
	}
	var errs []*ParseError
	var visit func(n *sitter.Node) bool
	visit = func(n *sitter.Node) bool {
		if n.IsError() || n.IsMissing() {
			errs = append(errs, r.syntaxError(n))
			return limit <= 0 || len(errs) < limit
		}
		if !n.HasError() {
			return true
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if !visit(n.Child(i)) {
				return false
			}
		}
		return true
	}
	visit(r.Root)
	if len(errs) == 0 {
		errs = append(errs, &ParseError{File: r.File, Line: 1, Column: 1, Message: "syntax error"})
	}
	return errs
}

// FirstError returns the first syntax error, or nil for a clean tree.
func (r *ParseResult) FirstError() *ParseError {
	if errs := r.SyntaxErrors(1); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func (r *ParseResult) syntaxError(n *sitter.Node) *ParseError {
	line, col := Position(n)
	pe := &ParseError{File: r.File, Line: line, Column: col}
	if n.IsMissing() {
		pe.Message = "missing " + n.Type()
		return pe
	}
	pe.Message = "syntax error"
	near := strings.TrimSpace(r.Text(n))
	if i := strings.IndexByte(near, '\n'); i >= 0 {
		near = strings.TrimSpace(near[:i])
	}
	if len(near) > nearLimit {
		near = near[:nearLimit] + "..."
	}
	pe.Near = near
	return pe
}

// Walk traverses the tree depth-first in source order. Returning false
// from visit stops the traversal.
func (r *ParseResult) Walk(visit func(*sitter.Node) bool) {
	if r.Root != nil {
		walk(r.Root, visit)
	}
}

func walk(n *sitter.Node, visit func(*sitter.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if !walk(n.Child(i), visit) {
			return false
		}
	}
	return true
}

// Text returns the source text of a node.
func (r *ParseResult) Text(n *sitter.Node) string {
	if n == nil || r.Source == nil {
		return ""
	}
	return n.Content(r.Source)
}

// Position returns the 1-based line and column where n starts.
func Position(n *sitter.Node) (line, column uint32) {
	p := n.StartPoint()
	return p.Row + 1, p.Column + 1
}
