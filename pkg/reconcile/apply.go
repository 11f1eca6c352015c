package reconcile

import (
	"github.com/docweave/docweave/pkg/ast"
)

// Apply merges the original and edited documents under a plan computed from
// them. Kept nodes come from the original tree with their provenance intact;
// replaced nodes come from the edited tree. Neither input is mutated: merged
// containers are fresh shallow copies with merged children.
func Apply(original, edited *ast.Document, plan *Plan) *ast.Document {
	return &ast.Document{
		Meta:   edited.Meta,
		Blocks: ApplyBlocks(original.Blocks, edited.Blocks, plan),
	}
}

// ApplyBlocks merges two block sequences under a plan.
func ApplyBlocks(original, edited ast.Blocks, plan *Plan) ast.Blocks {
	result := make(ast.Blocks, 0, len(plan.BlockAlignments))
	for i, a := range plan.BlockAlignments {
		switch a.Op {
		case OpKeepBefore:
			result = append(result, original[a.Before])
		case OpUseAfter:
			result = append(result, edited[a.After])
		case OpRecurse:
			origBlock, editBlock := original[a.Before], edited[a.After]
			if tp, ok := plan.TablePlans[i]; ok {
				result = append(result, applyTable(origBlock.(*ast.Table), editBlock.(*ast.Table), tp))
			} else if nested, ok := plan.ContainerPlans[i]; ok {
				result = append(result, applyContainer(origBlock, editBlock, nested))
			} else if inlinePlan, ok := plan.InlinePlans[i]; ok {
				result = append(result, applyInlineBlock(origBlock, editBlock, inlinePlan))
			} else {
				result = append(result, origBlock)
			}
		}
	}
	return result
}

func applyContainer(origBlock, editBlock ast.Block, plan *Plan) ast.Block {
	switch o := origBlock.(type) {
	case *ast.Div:
		out := *o
		out.Blocks = ApplyBlocks(o.Blocks, editBlock.(*ast.Div).Blocks, plan)
		return &out
	case *ast.BlockQuote:
		out := *o
		out.Blocks = ApplyBlocks(o.Blocks, editBlock.(*ast.BlockQuote).Blocks, plan)
		return &out
	case *ast.Figure:
		out := *o
		out.Blocks = ApplyBlocks(o.Blocks, editBlock.(*ast.Figure).Blocks, plan)
		return &out
	case *ast.CustomBlock:
		out := *o
		out.Blocks = ApplyBlocks(o.Blocks, editBlock.(*ast.CustomBlock).Blocks, plan)
		return &out
	case *ast.OrderedList:
		out := *o
		out.Items = applyItems(o.Items, editBlock.(*ast.OrderedList).Items, plan)
		return &out
	case *ast.BulletList:
		out := *o
		out.Items = applyItems(o.Items, editBlock.(*ast.BulletList).Items, plan)
		return &out
	case *ast.DefinitionList:
		out := *o
		out.Items = applyDefItems(o.Items, editBlock.(*ast.DefinitionList).Items, plan)
		return &out
	}
	return origBlock
}

func applyItems(origItems, editItems []ast.Blocks, plan *Plan) []ast.Blocks {
	result := make([]ast.Blocks, 0, len(plan.ItemAlignments))
	for i, a := range plan.ItemAlignments {
		switch a.Op {
		case OpKeepBefore:
			result = append(result, origItems[a.Before])
		case OpUseAfter:
			result = append(result, editItems[a.After])
		case OpRecurse:
			if nested, ok := plan.ItemPlans[i]; ok {
				result = append(result, ApplyBlocks(origItems[a.Before], editItems[a.After], nested))
			} else {
				result = append(result, origItems[a.Before])
			}
		}
	}
	return result
}

func applyDefItems(origItems, editItems []ast.Definition, plan *Plan) []ast.Definition {
	result := make([]ast.Definition, 0, len(plan.ItemAlignments))
	for i, a := range plan.ItemAlignments {
		switch a.Op {
		case OpKeepBefore:
			result = append(result, origItems[a.Before])
		case OpUseAfter:
			result = append(result, editItems[a.After])
		case OpRecurse:
			itemPlan, ok := plan.DefItemPlans[i]
			if !ok {
				result = append(result, origItems[a.Before])
				continue
			}
			orig, edit := origItems[a.Before], editItems[a.After]
			merged := ast.Definition{Term: edit.Term}
			if itemPlan.Term != nil {
				merged.Term = ApplyInlines(orig.Term, edit.Term, itemPlan.Term)
			}
			merged.Definitions = make([]ast.Blocks, len(edit.Definitions))
			for j := range edit.Definitions {
				if defPlan, ok := itemPlan.Defs[j]; ok && j < len(orig.Definitions) {
					merged.Definitions[j] = ApplyBlocks(orig.Definitions[j], edit.Definitions[j], defPlan)
				} else {
					merged.Definitions[j] = edit.Definitions[j]
				}
			}
			result = append(result, merged)
		}
	}
	return result
}

func applyInlineBlock(origBlock, editBlock ast.Block, plan *InlinePlan) ast.Block {
	switch o := origBlock.(type) {
	case *ast.Para:
		out := *o
		out.Inlines = ApplyInlines(o.Inlines, editBlock.(*ast.Para).Inlines, plan)
		return &out
	case *ast.Plain:
		out := *o
		out.Inlines = ApplyInlines(o.Inlines, editBlock.(*ast.Plain).Inlines, plan)
		return &out
	case *ast.Header:
		out := *o
		out.Inlines = ApplyInlines(o.Inlines, editBlock.(*ast.Header).Inlines, plan)
		return &out
	}
	return origBlock
}

// ApplyInlines merges two inline sequences under an inline plan.
func ApplyInlines(original, edited ast.Inlines, plan *InlinePlan) ast.Inlines {
	result := make(ast.Inlines, 0, len(plan.Alignments))
	for i, a := range plan.Alignments {
		switch a.Op {
		case OpKeepBefore:
			result = append(result, original[a.Before])
		case OpUseAfter:
			result = append(result, edited[a.After])
		case OpRecurse:
			origInline, editInline := original[a.Before], edited[a.After]
			if notePlan, ok := plan.NotePlans[i]; ok {
				origNote := origInline.(*ast.Note)
				out := *origNote
				out.Blocks = ApplyBlocks(origNote.Blocks, editInline.(*ast.Note).Blocks, notePlan)
				result = append(result, &out)
			} else if nested, ok := plan.ContainerPlans[i]; ok {
				result = append(result, applyInlineContainer(origInline, editInline, nested))
			} else {
				result = append(result, origInline)
			}
		}
	}
	return result
}

func applyInlineContainer(origInline, editInline ast.Inline, plan *InlinePlan) ast.Inline {
	merged := ApplyInlines(inlineChildren(origInline), inlineChildren(editInline), plan)
	switch o := origInline.(type) {
	case *ast.Emph:
		out := *o
		out.Inlines = merged
		return &out
	case *ast.Strong:
		out := *o
		out.Inlines = merged
		return &out
	case *ast.Underline:
		out := *o
		out.Inlines = merged
		return &out
	case *ast.Strikeout:
		out := *o
		out.Inlines = merged
		return &out
	case *ast.Superscript:
		out := *o
		out.Inlines = merged
		return &out
	case *ast.Subscript:
		out := *o
		out.Inlines = merged
		return &out
	case *ast.SmallCaps:
		out := *o
		out.Inlines = merged
		return &out
	case *ast.Quoted:
		out := *o
		out.Inlines = merged
		return &out
	case *ast.Link:
		out := *o
		out.Inlines = merged
		return &out
	case *ast.Image:
		out := *o
		out.Inlines = merged
		return &out
	case *ast.Span:
		out := *o
		out.Inlines = merged
		return &out
	}
	return origInline
}

// applyTable merges two tables. Everything structural comes from the edited
// table; cells with a plan entry get their content merged from the original.
func applyTable(orig, edit *ast.Table, plan *TablePlan) *ast.Table {
	out := *edit
	if plan.Caption != nil {
		out.Caption.Long = ApplyBlocks(orig.Caption.Long, edit.Caption.Long, plan.Caption)
	}

	mergeRows := func(origRows, editRows []ast.Row, pos func(row, col int) CellPos) []ast.Row {
		rows := make([]ast.Row, len(editRows))
		for r := range editRows {
			row := editRows[r]
			cells := make([]ast.Cell, len(row.Cells))
			copy(cells, row.Cells)
			for col := range cells {
				cellPlan, ok := plan.Cells[pos(r, col)]
				if !ok || r >= len(origRows) || col >= len(origRows[r].Cells) {
					continue
				}
				cells[col].Blocks = ApplyBlocks(origRows[r].Cells[col].Blocks, cells[col].Blocks, cellPlan)
			}
			row.Cells = cells
			rows[r] = row
		}
		return rows
	}

	out.Head.Rows = mergeRows(orig.Head.Rows, edit.Head.Rows, func(r, col int) CellPos {
		return CellPos{Section: SectionHead, Row: r, Col: col}
	})
	out.Bodies = make([]ast.TableBody, len(edit.Bodies))
	copy(out.Bodies, edit.Bodies)
	for b := range out.Bodies {
		var origHead, origBody []ast.Row
		if b < len(orig.Bodies) {
			origHead, origBody = orig.Bodies[b].HeadRows, orig.Bodies[b].BodyRows
		}
		body := b
		out.Bodies[b].HeadRows = mergeRows(origHead, edit.Bodies[b].HeadRows, func(r, col int) CellPos {
			return CellPos{Section: SectionBodyHead, Body: body, Row: r, Col: col}
		})
		out.Bodies[b].BodyRows = mergeRows(origBody, edit.Bodies[b].BodyRows, func(r, col int) CellPos {
			return CellPos{Section: SectionBodyBody, Body: body, Row: r, Col: col}
		})
	}
	out.Foot.Rows = mergeRows(orig.Foot.Rows, edit.Foot.Rows, func(r, col int) CellPos {
		return CellPos{Section: SectionFoot, Row: r, Col: col}
	})
	return &out
}
