// Package docweave is a format-preserving incremental rewriter for
// Pandoc-style document trees.
//
// Given the original source text, the tree parsed from it, and an edited
// copy of that tree, docweave produces new source text in which every
// unchanged node keeps its original bytes. Only edited regions are
// rewritten; comments, blank lines, and formatting quirks in untouched
// regions survive verbatim.
//
// # Basic Usage
//
// Reconcile two trees and splice the result back into the source:
//
//	out, err := docweave.Rewrite(src, originalDoc, editedDoc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("doc.md", []byte(out), 0o644)
//
// # Plans
//
// The reconciliation plan is plain serializable data. Compute one directly
// to inspect what would be kept before writing anything:
//
//	plan := docweave.Compute(originalDoc, editedDoc)
//	fmt.Printf("kept %d of %d blocks\n",
//	    plan.Stats.BlocksKept, len(plan.BlockAlignments))
package docweave

import (
	"github.com/docweave/docweave/pkg/ast"
	"github.com/docweave/docweave/pkg/reconcile"
	"github.com/docweave/docweave/pkg/writer"
)

// Re-export the types most callers need so they can import just
// "github.com/docweave/docweave" without subpackages.
type (
	// Document is a complete parsed document.
	Document = ast.Document

	// Block and Inline are the two node levels of the tree.
	Block  = ast.Block
	Inline = ast.Inline

	// Plan describes how an original and an edited tree align.
	Plan = reconcile.Plan

	// Stats summarizes how much of a plan was kept.
	Stats = reconcile.Stats

	// Renderer produces text for nodes that cannot be copied verbatim.
	Renderer = writer.Renderer

	// TextEdit is one byte-range replacement against the original text.
	TextEdit = writer.TextEdit
)

// Option configures a rewrite.
type Option func(*config)

type config struct {
	renderer   writer.Renderer
	sourceName string
}

// WithRenderer uses a custom renderer for rewritten nodes instead of the
// canonical Markdown writer.
func WithRenderer(r Renderer) Option {
	return func(c *config) {
		c.renderer = r
	}
}

// WithSourceName attaches a name to the source buffer for error messages.
func WithSourceName(name string) Option {
	return func(c *config) {
		c.sourceName = name
	}
}

// Compute builds the reconciliation plan for two documents. It never fails:
// in the worst case every block is marked for replacement.
func Compute(original, edited *Document) *Plan {
	return reconcile.Compute(original, edited)
}

// Apply merges two documents per a plan, producing the tree the rewritten
// text corresponds to. Kept nodes are shared with the original document.
func Apply(original, edited *Document, plan *Plan) *Document {
	return reconcile.Apply(original, edited, plan)
}

// Rewrite reconciles the two trees and splices the result into source,
// preserving the bytes of every unchanged node.
func Rewrite(source []byte, original, edited *Document, opts ...Option) (string, error) {
	cfg := newConfig(opts)
	plan := reconcile.Compute(original, edited)
	out, err := writer.IncrementalWrite(string(source), original, edited, plan, cfg.renderer)
	if err != nil {
		return "", cfg.wrap(err)
	}
	return out, nil
}

// Edits reconciles the two trees and returns the text edits that transform
// source into the rewritten output. An unchanged document yields none.
func Edits(source []byte, original, edited *Document, opts ...Option) ([]TextEdit, error) {
	cfg := newConfig(opts)
	plan := reconcile.Compute(original, edited)
	edits, err := writer.ComputeEdits(string(source), original, edited, plan, cfg.renderer)
	if err != nil {
		return nil, cfg.wrap(err)
	}
	return edits, nil
}

func newConfig(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *config) wrap(err error) error {
	if c.sourceName == "" {
		return err
	}
	return &SourceError{Name: c.sourceName, Err: err}
}

// SourceError annotates a rewrite failure with the source buffer's name.
type SourceError struct {
	Name string
	Err  error
}

func (e *SourceError) Error() string {
	return e.Name + ": " + e.Err.Error()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
