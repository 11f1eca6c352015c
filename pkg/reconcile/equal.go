package reconcile

import (
	"bytes"

	"github.com/docweave/docweave/pkg/ast"
)

// Structural equality ignoring provenance. Used to confirm hash matches
// before any keep decision, so a hash collision can never splice the wrong
// original bytes.

func equalBlocks(a, b ast.Blocks) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalBlock(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalInlines(a, b ast.Inlines) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalInline(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalAttr(a, b ast.Attr) bool {
	if a.ID != b.ID || len(a.Classes) != len(b.Classes) || len(a.KeyVals) != len(b.KeyVals) {
		return false
	}
	for i := range a.Classes {
		if a.Classes[i] != b.Classes[i] {
			return false
		}
	}
	for i := range a.KeyVals {
		if a.KeyVals[i] != b.KeyVals[i] {
			return false
		}
	}
	return true
}

func equalItems(a, b []ast.Blocks) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalBlocks(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalBlock(a, b ast.Block) bool {
	switch x := a.(type) {
	case *ast.Plain:
		y, ok := b.(*ast.Plain)
		return ok && equalInlines(x.Inlines, y.Inlines)
	case *ast.Para:
		y, ok := b.(*ast.Para)
		return ok && equalInlines(x.Inlines, y.Inlines)
	case *ast.LineBlock:
		y, ok := b.(*ast.LineBlock)
		if !ok || len(x.Lines) != len(y.Lines) {
			return false
		}
		for i := range x.Lines {
			if !equalInlines(x.Lines[i], y.Lines[i]) {
				return false
			}
		}
		return true
	case *ast.CodeBlock:
		y, ok := b.(*ast.CodeBlock)
		return ok && equalAttr(x.Attr, y.Attr) && x.Text == y.Text
	case *ast.RawBlock:
		y, ok := b.(*ast.RawBlock)
		return ok && x.Format == y.Format && x.Text == y.Text
	case *ast.BlockQuote:
		y, ok := b.(*ast.BlockQuote)
		return ok && equalBlocks(x.Blocks, y.Blocks)
	case *ast.OrderedList:
		y, ok := b.(*ast.OrderedList)
		return ok && x.Attrs == y.Attrs && equalItems(x.Items, y.Items)
	case *ast.BulletList:
		y, ok := b.(*ast.BulletList)
		return ok && equalItems(x.Items, y.Items)
	case *ast.DefinitionList:
		y, ok := b.(*ast.DefinitionList)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !equalInlines(x.Items[i].Term, y.Items[i].Term) {
				return false
			}
			if !equalItems(x.Items[i].Definitions, y.Items[i].Definitions) {
				return false
			}
		}
		return true
	case *ast.Header:
		y, ok := b.(*ast.Header)
		return ok && x.Level == y.Level && equalAttr(x.Attr, y.Attr) && equalInlines(x.Inlines, y.Inlines)
	case *ast.HorizontalRule:
		_, ok := b.(*ast.HorizontalRule)
		return ok
	case *ast.Table:
		y, ok := b.(*ast.Table)
		return ok && equalTable(x, y)
	case *ast.Figure:
		y, ok := b.(*ast.Figure)
		return ok && equalAttr(x.Attr, y.Attr) && equalCaption(x.Caption, y.Caption) && equalBlocks(x.Blocks, y.Blocks)
	case *ast.Div:
		y, ok := b.(*ast.Div)
		return ok && equalAttr(x.Attr, y.Attr) && equalBlocks(x.Blocks, y.Blocks)
	case *ast.CustomBlock:
		y, ok := b.(*ast.CustomBlock)
		return ok && x.TypeName == y.TypeName && equalAttr(x.Attr, y.Attr) &&
			bytes.Equal(x.Data, y.Data) && equalBlocks(x.Blocks, y.Blocks)
	default:
		return false
	}
}

func equalInline(a, b ast.Inline) bool {
	switch x := a.(type) {
	case *ast.Str:
		y, ok := b.(*ast.Str)
		return ok && x.Text == y.Text
	case *ast.Emph:
		y, ok := b.(*ast.Emph)
		return ok && equalInlines(x.Inlines, y.Inlines)
	case *ast.Strong:
		y, ok := b.(*ast.Strong)
		return ok && equalInlines(x.Inlines, y.Inlines)
	case *ast.Underline:
		y, ok := b.(*ast.Underline)
		return ok && equalInlines(x.Inlines, y.Inlines)
	case *ast.Strikeout:
		y, ok := b.(*ast.Strikeout)
		return ok && equalInlines(x.Inlines, y.Inlines)
	case *ast.Superscript:
		y, ok := b.(*ast.Superscript)
		return ok && equalInlines(x.Inlines, y.Inlines)
	case *ast.Subscript:
		y, ok := b.(*ast.Subscript)
		return ok && equalInlines(x.Inlines, y.Inlines)
	case *ast.SmallCaps:
		y, ok := b.(*ast.SmallCaps)
		return ok && equalInlines(x.Inlines, y.Inlines)
	case *ast.Quoted:
		y, ok := b.(*ast.Quoted)
		return ok && x.Type == y.Type && equalInlines(x.Inlines, y.Inlines)
	case *ast.Code:
		y, ok := b.(*ast.Code)
		return ok && equalAttr(x.Attr, y.Attr) && x.Text == y.Text
	case *ast.Space:
		_, ok := b.(*ast.Space)
		return ok
	case *ast.SoftBreak:
		_, ok := b.(*ast.SoftBreak)
		return ok
	case *ast.LineBreak:
		_, ok := b.(*ast.LineBreak)
		return ok
	case *ast.Math:
		y, ok := b.(*ast.Math)
		return ok && x.Type == y.Type && x.Text == y.Text
	case *ast.RawInline:
		y, ok := b.(*ast.RawInline)
		return ok && x.Format == y.Format && x.Text == y.Text
	case *ast.Link:
		y, ok := b.(*ast.Link)
		return ok && equalAttr(x.Attr, y.Attr) && x.Target == y.Target && equalInlines(x.Inlines, y.Inlines)
	case *ast.Image:
		y, ok := b.(*ast.Image)
		return ok && equalAttr(x.Attr, y.Attr) && x.Target == y.Target && equalInlines(x.Inlines, y.Inlines)
	case *ast.Note:
		y, ok := b.(*ast.Note)
		return ok && equalBlocks(x.Blocks, y.Blocks)
	case *ast.Span:
		y, ok := b.(*ast.Span)
		return ok && equalAttr(x.Attr, y.Attr) && equalInlines(x.Inlines, y.Inlines)
	default:
		return false
	}
}

func equalCaption(a, b ast.Caption) bool {
	return equalInlines(a.Short, b.Short) && equalBlocks(a.Long, b.Long)
}

func equalRows(a, b []ast.Row) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalAttr(a[i].Attr, b[i].Attr) || len(a[i].Cells) != len(b[i].Cells) {
			return false
		}
		for j := range a[i].Cells {
			if !equalCell(a[i].Cells[j], b[i].Cells[j]) {
				return false
			}
		}
	}
	return true
}

func equalCell(a, b ast.Cell) bool {
	return equalAttr(a.Attr, b.Attr) && a.Align == b.Align &&
		a.RowSpan == b.RowSpan && a.ColSpan == b.ColSpan &&
		equalBlocks(a.Blocks, b.Blocks)
}

func equalTable(a, b *ast.Table) bool {
	if !equalAttr(a.Attr, b.Attr) || !equalCaption(a.Caption, b.Caption) {
		return false
	}
	if len(a.ColSpecs) != len(b.ColSpecs) {
		return false
	}
	for i := range a.ColSpecs {
		if a.ColSpecs[i] != b.ColSpecs[i] {
			return false
		}
	}
	if !equalAttr(a.Head.Attr, b.Head.Attr) || !equalRows(a.Head.Rows, b.Head.Rows) {
		return false
	}
	if len(a.Bodies) != len(b.Bodies) {
		return false
	}
	for i := range a.Bodies {
		ab, bb := a.Bodies[i], b.Bodies[i]
		if !equalAttr(ab.Attr, bb.Attr) || ab.RowHeadColumns != bb.RowHeadColumns {
			return false
		}
		if !equalRows(ab.HeadRows, bb.HeadRows) || !equalRows(ab.BodyRows, bb.BodyRows) {
			return false
		}
	}
	return equalAttr(a.Foot.Attr, b.Foot.Attr) && equalRows(a.Foot.Rows, b.Foot.Rows)
}
