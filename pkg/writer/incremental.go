package writer

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/docweave/docweave/pkg/ast"
	"github.com/docweave/docweave/pkg/reconcile"
	"github.com/docweave/docweave/pkg/source"
)

// ErrSpanOutOfRange is returned when a node's recorded source span does not
// fit inside the original buffer, meaning the document and buffer disagree.
var ErrSpanOutOfRange = errors.New("writer: source span outside original buffer")

// TextEdit replaces a byte range of the original buffer with new text.
// Range offsets are byte offsets into the original buffer.
type TextEdit struct {
	Range       source.Range `json:"range"`
	Replacement string       `json:"replacement"`
}

// An entry in the coarsened plan. Exactly one strategy applies per
// top-level block of the merged result.
type entryKind int

const (
	// entryVerbatim copies the original block's bytes untouched.
	entryVerbatim entryKind = iota
	// entryRewrite renders the edited block with the Renderer.
	entryRewrite
	// entrySplice reuses the original block's bytes with only the changed
	// inline region replaced.
	entrySplice
)

type entry struct {
	kind       entryKind
	start, end int    // verbatim: byte range in the original buffer
	origIdx    int    // verbatim, splice: index into the original block list
	newIdx     int    // rewrite: index into the edited block list
	text       string // splice: pre-assembled block text
}

// IncrementalWrite produces the text of the merged document, preserving
// every byte of originalText that the plan marks as kept. Changed blocks are
// rendered with r; gaps between adjacent kept blocks are copied verbatim so
// an unchanged document round-trips to the identical string.
func IncrementalWrite(originalText string, originalDoc, editedDoc *ast.Document, plan *reconcile.Plan, r Renderer) (string, error) {
	if r == nil {
		r = NewMarkdown()
	}

	// Parsers pad a missing trailing newline before assigning spans. Work on
	// the padded buffer so spans stay valid, then undo the padding.
	text, padded := ensureTrailingNewline(originalText)

	entries, err := coarsen(text, originalDoc, editedDoc, plan, r)
	if err != nil {
		return "", err
	}
	result, err := assemble(text, originalDoc, editedDoc, entries, r)
	if err != nil {
		return "", err
	}

	if padded {
		result = strings.TrimSuffix(result, "\n")
	}
	return result, nil
}

// ComputeEdits returns the edits that transform originalText into the
// incremental write result. Edits are sorted by start offset and do not
// overlap; an unchanged document yields none.
func ComputeEdits(originalText string, originalDoc, editedDoc *ast.Document, plan *reconcile.Plan, r Renderer) ([]TextEdit, error) {
	result, err := IncrementalWrite(originalText, originalDoc, editedDoc, plan, r)
	if err != nil {
		return nil, err
	}
	if result == originalText {
		return nil, nil
	}
	return []TextEdit{{
		Range:       source.OffsetRange(0, len(originalText)),
		Replacement: result,
	}}, nil
}

func ensureTrailingNewline(text string) (string, bool) {
	if strings.HasSuffix(text, "\n") {
		return text, false
	}
	return text + "\n", true
}

// coarsen flattens the hierarchical plan into one strategy per top-level
// block. Recursed inline-content blocks become splice entries when the
// patched inlines cannot disturb the surrounding block syntax; every other
// recursion falls back to a full rewrite.
func coarsen(text string, originalDoc, editedDoc *ast.Document, plan *reconcile.Plan, r Renderer) ([]entry, error) {
	entries := make([]entry, 0, len(plan.BlockAlignments))

	for i, a := range plan.BlockAlignments {
		switch a.Op {
		case reconcile.OpKeepBefore:
			b := originalDoc.Blocks[a.Before]
			start, end := b.Source().StartOffset(), b.Source().EndOffset()
			if start < 0 || end < start || end > len(text) {
				return nil, fmt.Errorf("block %d [%d,%d): %w", a.Before, start, end, ErrSpanOutOfRange)
			}
			entries = append(entries, entry{kind: entryVerbatim, start: start, end: end, origIdx: a.Before})

		case reconcile.OpUseAfter:
			entries = append(entries, entry{kind: entryRewrite, newIdx: a.After})

		case reconcile.OpRecurse:
			ip := plan.InlinePlans[i]
			if ip == nil {
				entries = append(entries, entry{kind: entryRewrite, newIdx: a.After})
				continue
			}
			origBlock := originalDoc.Blocks[a.Before]
			newBlock := editedDoc.Blocks[a.After]
			origInlines, okO := blockInlines(origBlock)
			newInlines, okN := blockInlines(newBlock)
			if !okO || !okN || len(origInlines) == 0 ||
				!spliceSafe(newInlines, ip) || !blockAttrsEq(origBlock, newBlock) {
				entries = append(entries, entry{kind: entryRewrite, newIdx: a.After})
				continue
			}
			spliced, err := assembleSplice(text, origBlock, origInlines, newInlines, ip, r)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry{kind: entrySplice, text: spliced, origIdx: a.Before})
		}
	}
	return entries, nil
}

// assemble builds the output: metadata prefix, then each coarsened block
// with a separator chosen to preserve original inter-block whitespace.
func assemble(text string, originalDoc, editedDoc *ast.Document, entries []entry, r Renderer) (string, error) {
	var sb strings.Builder

	if err := emitMetadataPrefix(&sb, text, originalDoc, editedDoc, r); err != nil {
		return "", err
	}

	var prev *entry
	prevText := ""
	for i := range entries {
		e := &entries[i]
		if prev != nil {
			sb.WriteString(separator(text, originalDoc, prev, e, prevText))
		}

		var blockText string
		switch e.kind {
		case entryVerbatim:
			blockText = text[e.start:e.end]
		case entryRewrite:
			rendered, err := r.RenderBlock(editedDoc.Blocks[e.newIdx])
			if err != nil {
				return "", fmt.Errorf("rendering block %d: %w", e.newIdx, err)
			}
			blockText = rendered
		case entrySplice:
			blockText = e.text
		}
		sb.WriteString(blockText)
		prevText = blockText
		prev = e
	}

	// Trailing gap: bytes past the last ORIGINAL block's span, symmetric
	// with the metadata prefix. Keyed off the original tree so removing
	// trailing blocks does not widen the region.
	if n := len(originalDoc.Blocks); n > 0 {
		end := originalDoc.Blocks[n-1].Source().EndOffset()
		if end >= 0 && end < len(text) {
			sb.WriteString(text[end:])
		}
	}
	return sb.String(), nil
}

// emitMetadataPrefix writes the bytes before the first original block. When
// the metadata content is unchanged the region is copied verbatim; otherwise
// the new metadata is rendered and the original gap after the closing fence
// is kept.
func emitMetadataPrefix(sb *strings.Builder, text string, originalDoc, editedDoc *ast.Document, r Renderer) error {
	// The region ends at the FIRST ORIGINAL block's start, not the first
	// kept block's: deleting leading blocks must not widen the prefix.
	if len(originalDoc.Blocks) == 0 {
		return nil
	}
	start := originalDoc.Blocks[0].Source().StartOffset()
	if start <= 0 {
		return nil
	}
	if start > len(text) {
		return fmt.Errorf("metadata prefix end %d: %w", start, ErrSpanOutOfRange)
	}

	if metaEqual(originalDoc.Meta, editedDoc.Meta) {
		sb.WriteString(text[:start])
		return nil
	}

	rendered, err := r.RenderMeta(editedDoc.Meta)
	if err != nil {
		return fmt.Errorf("rendering front matter: %w", err)
	}
	sb.WriteString(rendered)
	sb.WriteString(metadataTrailingGap(text, start))
	return nil
}

// metadataTrailingGap returns the whitespace between the closing front
// matter fence and the first block.
func metadataTrailingGap(text string, firstBlockStart int) string {
	region := text[:firstBlockStart]
	closing := strings.LastIndex(region, "---\n")
	if closing < 0 {
		return "\n"
	}
	return text[closing+4 : firstBlockStart]
}

func metaEqual(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// separator chooses the text between two adjacent output blocks. Blocks that
// were consecutive in the original keep their original gap; otherwise a
// newline is inserted unless the previous text already ends in a blank line.
func separator(text string, originalDoc *ast.Document, prev, curr *entry, prevText string) string {
	prevIdx, okP := keptOrigIdx(prev)
	currIdx, okC := keptOrigIdx(curr)
	if okP && okC && currIdx == prevIdx+1 {
		prevEnd := originalDoc.Blocks[prevIdx].Source().EndOffset()
		currStart := originalDoc.Blocks[currIdx].Source().StartOffset()
		if prevEnd >= 0 && currStart >= prevEnd && currStart <= len(text) {
			return text[prevEnd:currStart]
		}
	}
	if strings.HasSuffix(prevText, "\n\n") {
		return ""
	}
	return "\n"
}

func keptOrigIdx(e *entry) (int, bool) {
	if e.kind == entryVerbatim || e.kind == entrySplice {
		return e.origIdx, true
	}
	return 0, false
}

// blockInlines returns the inline content of paragraph-shaped blocks.
func blockInlines(b ast.Block) (ast.Inlines, bool) {
	switch n := b.(type) {
	case *ast.Para:
		return n.Inlines, true
	case *ast.Plain:
		return n.Inlines, true
	case *ast.Header:
		return n.Inlines, true
	default:
		return nil, false
	}
}

// blockAttrsEq reports whether splicing can keep the block's attribute text.
// The splice keeps the original prefix and suffix bytes, which include any
// written attributes, so those must match on both sides.
func blockAttrsEq(a, b ast.Block) bool {
	ha, okA := a.(*ast.Header)
	hb, okB := b.(*ast.Header)
	if okA != okB {
		return false
	}
	if !okA {
		return true
	}
	return ha.Level == hb.Level &&
		ha.Attr.ID == hb.Attr.ID &&
		equalStrings(ha.Attr.Classes, hb.Attr.Classes) &&
		equalKeyVals(ha.Attr.KeyVals, hb.Attr.KeyVals)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalKeyVals(a, b []ast.KeyVal) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// spliceSafe reports whether the inline plan can be patched into the
// original block bytes without indentation context. Every inline the plan
// would render fresh must be break-free, otherwise its output would contain
// a raw newline that loses the indentation of enclosing quotes and lists.
func spliceSafe(newInlines ast.Inlines, plan *reconcile.InlinePlan) bool {
	for i, a := range plan.Alignments {
		switch a.Op {
		case reconcile.OpKeepBefore:
			// Original bytes, already correctly indented.
		case reconcile.OpUseAfter:
			if subtreeHasBreak(newInlines[a.After]) {
				return false
			}
		case reconcile.OpRecurse:
			// Footnote content is block-level; patching it needs the full
			// block writer.
			if plan.NotePlans[i] != nil {
				return false
			}
			if nested := plan.ContainerPlans[i]; nested != nil {
				if !spliceSafe(inlineKids(newInlines[a.After]), nested) {
					return false
				}
			}
		}
	}
	return true
}

func subtreeHasBreak(in ast.Inline) bool {
	switch in.(type) {
	case *ast.SoftBreak, *ast.LineBreak:
		return true
	}
	for _, child := range inlineKids(in) {
		if subtreeHasBreak(child) {
			return true
		}
	}
	return false
}

// inlineKids returns the inline children of container inlines. Notes hold
// blocks, not inlines, and count as leaves here.
func inlineKids(in ast.Inline) ast.Inlines {
	switch n := in.(type) {
	case *ast.Emph:
		return n.Inlines
	case *ast.Strong:
		return n.Inlines
	case *ast.Underline:
		return n.Inlines
	case *ast.Strikeout:
		return n.Inlines
	case *ast.Superscript:
		return n.Inlines
	case *ast.Subscript:
		return n.Inlines
	case *ast.SmallCaps:
		return n.Inlines
	case *ast.Quoted:
		return n.Inlines
	case *ast.Link:
		return n.Inlines
	case *ast.Image:
		return n.Inlines
	case *ast.Span:
		return n.Inlines
	default:
		return nil
	}
}

// assembleSplice builds the block text for a splice entry: the original
// block's prefix and suffix bytes around a reassembled inline region.
func assembleSplice(text string, origBlock ast.Block, origInlines, newInlines ast.Inlines, plan *reconcile.InlinePlan, r Renderer) (string, error) {
	blockStart := origBlock.Source().StartOffset()
	blockEnd := origBlock.Source().EndOffset()
	inlineStart := origInlines[0].Source().StartOffset()
	inlineEnd := origInlines[len(origInlines)-1].Source().EndOffset()
	if blockStart < 0 || blockStart > inlineStart || inlineStart > inlineEnd ||
		inlineEnd > blockEnd || blockEnd > len(text) {
		return "", fmt.Errorf("splice spans block [%d,%d) inlines [%d,%d): %w",
			blockStart, blockEnd, inlineStart, inlineEnd, ErrSpanOutOfRange)
	}

	content, err := assembleInlineContent(text, origInlines, newInlines, plan, r)
	if err != nil {
		return "", err
	}
	return text[blockStart:inlineStart] + content + text[inlineEnd:blockEnd], nil
}

// assembleInlineContent walks the inline alignments: kept inlines are copied
// from the original bytes, replaced ones rendered, containers recursed with
// their delimiters preserved.
func assembleInlineContent(text string, origInlines, newInlines ast.Inlines, plan *reconcile.InlinePlan, r Renderer) (string, error) {
	var sb strings.Builder
	for i, a := range plan.Alignments {
		switch a.Op {
		case reconcile.OpKeepBefore:
			in := origInlines[a.Before]
			start, end := in.Source().StartOffset(), in.Source().EndOffset()
			if start < 0 || end < start || end > len(text) {
				return "", fmt.Errorf("inline %d [%d,%d): %w", a.Before, start, end, ErrSpanOutOfRange)
			}
			sb.WriteString(text[start:end])
		case reconcile.OpUseAfter:
			rendered, err := r.RenderInline(newInlines[a.After])
			if err != nil {
				return "", fmt.Errorf("rendering inline %d: %w", a.After, err)
			}
			sb.WriteString(rendered)
		case reconcile.OpRecurse:
			rendered, err := assembleContainer(text, origInlines[a.Before], newInlines[a.After], plan.ContainerPlans[i], r)
			if err != nil {
				return "", err
			}
			sb.WriteString(rendered)
		}
	}
	return sb.String(), nil
}

// assembleContainer patches a container inline: delimiters come from the
// original bytes, children from the nested plan. Without a nested plan the
// container is structurally unchanged and kept verbatim.
func assembleContainer(text string, origInline, newInline ast.Inline, nested *reconcile.InlinePlan, r Renderer) (string, error) {
	start, end := origInline.Source().StartOffset(), origInline.Source().EndOffset()
	if start < 0 || end < start || end > len(text) {
		return "", fmt.Errorf("container inline [%d,%d): %w", start, end, ErrSpanOutOfRange)
	}
	origKids := inlineKids(origInline)
	if nested == nil || len(origKids) == 0 {
		return text[start:end], nil
	}

	firstStart := origKids[0].Source().StartOffset()
	lastEnd := origKids[len(origKids)-1].Source().EndOffset()
	if firstStart < start || lastEnd > end || firstStart > lastEnd {
		return "", fmt.Errorf("container children [%d,%d) in [%d,%d): %w",
			firstStart, lastEnd, start, end, ErrSpanOutOfRange)
	}

	content, err := assembleInlineContent(text, origKids, inlineKids(newInline), nested, r)
	if err != nil {
		return "", err
	}
	return text[start:firstStart] + content + text[lastEnd:end], nil
}
