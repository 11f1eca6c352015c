package docweave

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docweave/docweave/pkg/ast"
	"github.com/docweave/docweave/pkg/source"
	"github.com/docweave/docweave/pkg/writer"
)

func srcAt(start, end int) source.Info {
	return source.FromOffsets(0, start, end)
}

func inlineStr(text string, start int) *ast.Str {
	return &ast.Str{Text: text, Src: srcAt(start, start+len(text))}
}

func inlineSpace(at int) *ast.Space {
	return &ast.Space{Src: srcAt(at, at+1)}
}

// sampleDoc is the tree a parser would produce for sampleText, with
// accurate byte spans. The comment and the triple blank line are
// deliberately not representable losslessly by the fallback renderer.
const sampleText = "# Title\n\nHello world\n\n<!-- keep me -->\n\n\nLast one\n"

func sampleDoc() *Document {
	return &Document{Blocks: ast.Blocks{
		&ast.Header{
			Level:   1,
			Inlines: ast.Inlines{inlineStr("Title", 2)},
			Src:     srcAt(0, 8),
		},
		&ast.Para{
			Inlines: ast.Inlines{inlineStr("Hello", 9), inlineSpace(14), inlineStr("world", 15)},
			Src:     srcAt(9, 21),
		},
		&ast.RawBlock{Format: "html", Text: "<!-- keep me -->", Src: srcAt(22, 39)},
		&ast.Para{
			Inlines: ast.Inlines{inlineStr("Last", 41), inlineSpace(45), inlineStr("one", 46)},
			Src:     srcAt(41, 50),
		},
	}}
}

// editedDoc returns sampleDoc with no provenance, as an editing tool that
// rebuilt the tree would hand back.
func editedDoc() *Document {
	return &Document{Blocks: ast.Blocks{
		&ast.Header{Level: 1, Inlines: ast.Inlines{inlineStr("Title", 0)}},
		&ast.Para{Inlines: ast.Inlines{inlineStr("Hello", 0), inlineSpace(0), inlineStr("world", 0)}},
		&ast.RawBlock{Format: "html", Text: "<!-- keep me -->"},
		&ast.Para{Inlines: ast.Inlines{inlineStr("Last", 0), inlineSpace(0), inlineStr("one", 0)}},
	}}
}

func TestRewriteUnchangedIsIdentity(t *testing.T) {
	out, err := Rewrite([]byte(sampleText), sampleDoc(), editedDoc())
	require.NoError(t, err)
	assert.Equal(t, sampleText, out)
}

func TestRewriteLocalEditKeepsEverythingElse(t *testing.T) {
	edited := editedDoc()
	edited.Blocks[3] = &ast.Para{
		Inlines: ast.Inlines{inlineStr("Final", 0), inlineSpace(0), inlineStr("one", 0)},
	}

	out, err := Rewrite([]byte(sampleText), sampleDoc(), edited)
	require.NoError(t, err)
	// The comment and the triple blank line survive; only the last
	// paragraph's changed word is new text.
	assert.Equal(t, "# Title\n\nHello world\n\n<!-- keep me -->\n\n\nFinal one\n", out)
}

func TestRewriteIsIdempotent(t *testing.T) {
	// "there" has the same length as "world", so the tree a parser would
	// produce for the rewritten text has the same spans as sampleDoc.
	edited := editedDoc()
	edited.Blocks[1] = &ast.Para{
		Inlines: ast.Inlines{inlineStr("Hello", 0), inlineSpace(0), inlineStr("there", 0)},
	}

	first, err := Rewrite([]byte(sampleText), sampleDoc(), edited)
	require.NoError(t, err)
	assert.Equal(t, strings.Replace(sampleText, "world", "there", 1), first)

	reparsed := sampleDoc()
	reparsed.Blocks[1] = &ast.Para{
		Inlines: ast.Inlines{inlineStr("Hello", 9), inlineSpace(14), inlineStr("there", 15)},
		Src:     srcAt(9, 21),
	}

	second, err := Rewrite([]byte(first), reparsed, edited)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeReportsPreservation(t *testing.T) {
	edited := editedDoc()
	edited.Blocks[3] = &ast.Para{Inlines: ast.Inlines{inlineStr("changed", 0)}}

	plan := Compute(sampleDoc(), edited)
	assert.Equal(t, 3, plan.Stats.BlocksKept)
	assert.Equal(t, 1, plan.Stats.BlocksReplaced)
	assert.Len(t, plan.BlockAlignments, 4)
}

func TestApplySharesKeptNodes(t *testing.T) {
	orig := sampleDoc()
	edited := editedDoc()
	edited.Blocks[3] = &ast.Para{Inlines: ast.Inlines{inlineStr("changed", 0)}}

	plan := Compute(orig, edited)
	merged := Apply(orig, edited, plan)

	require.Len(t, merged.Blocks, 4)
	assert.Same(t, orig.Blocks[0], merged.Blocks[0])
	assert.Same(t, orig.Blocks[2], merged.Blocks[2])
	assert.Same(t, edited.Blocks[3], merged.Blocks[3])
}

func TestEditsEmptyWhenUnchanged(t *testing.T) {
	edits, err := Edits([]byte(sampleText), sampleDoc(), editedDoc())
	require.NoError(t, err)
	assert.Empty(t, edits)
}

func TestEditsSingleReplacementWhenChanged(t *testing.T) {
	edited := editedDoc()
	edited.Blocks[0] = &ast.Header{Level: 2, Inlines: ast.Inlines{inlineStr("Title", 0)}}

	edits, err := Edits([]byte(sampleText), sampleDoc(), edited)
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, 0, edits[0].Range.Start.Offset)
	assert.Equal(t, len(sampleText), edits[0].Range.End.Offset)
	assert.Contains(t, edits[0].Replacement, "## Title")
	assert.Contains(t, edits[0].Replacement, "<!-- keep me -->")
}

func TestWithSourceNameAnnotatesErrors(t *testing.T) {
	orig := &Document{Blocks: ast.Blocks{
		&ast.Para{Inlines: ast.Inlines{inlineStr("x", 0)}, Src: srcAt(0, 999)},
	}}
	edited := &Document{Blocks: ast.Blocks{
		&ast.Para{Inlines: ast.Inlines{inlineStr("x", 0)}},
	}}

	_, err := Rewrite([]byte("x\n"), orig, edited, WithSourceName("doc.md"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "doc.md")

	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, "doc.md", srcErr.Name)
}

func TestWithRendererOverridesFallback(t *testing.T) {
	edited := editedDoc()
	edited.Blocks[3] = &ast.Para{Inlines: ast.Inlines{inlineStr("marker", 0)}}

	out, err := Rewrite([]byte(sampleText), sampleDoc(), edited, WithRenderer(upperRenderer{}))
	require.NoError(t, err)
	assert.Contains(t, out, "MARKER")
	assert.Contains(t, out, "Hello world")
}

// upperRenderer uppercases paragraph text; everything else defers to the
// canonical writer.
type upperRenderer struct{}

func (upperRenderer) RenderBlock(b ast.Block) (string, error) {
	out, err := writer.NewMarkdown().RenderBlock(b)
	if err != nil {
		return "", err
	}
	if _, ok := b.(*ast.Para); ok {
		return strings.ToUpper(out), nil
	}
	return out, nil
}

func (upperRenderer) RenderInline(in ast.Inline) (string, error) {
	return writer.NewMarkdown().RenderInline(in)
}

func (upperRenderer) RenderMeta(meta map[string]any) (string, error) {
	return writer.NewMarkdown().RenderMeta(meta)
}
