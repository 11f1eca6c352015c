package reconcile

import (
	"bytes"

	"github.com/docweave/docweave/pkg/ast"
)

// Compute builds a reconciliation plan for two documents. It is pure and
// total: neither tree is mutated, and every pair of nodes yields a decision,
// degrading to UseAfter when nothing better can be proven.
func Compute(original, edited *ast.Document) *Plan {
	c := newHashCache()
	return computeBlocks(original.Blocks, edited.Blocks, c)
}

// ComputeBlocks builds a plan for two block sequences with a fresh cache.
func ComputeBlocks(original, edited ast.Blocks) *Plan {
	return computeBlocks(original, edited, newHashCache())
}

// computeBlocks aligns two block sequences in three phases:
//  1. exact hash matches at any position become KeepBefore (verified with
//     structural equality to guard against collisions);
//  2. unmatched edited blocks whose positional counterpart has the same kind
//     and shell become RecurseIntoContainer with a kind-specific sub-plan;
//  3. everything left becomes UseAfter.
//
// Phase 2 only considers the same index on the original side. Matching
// arbitrary containers by kind alone would pair unrelated content; position
// is the evidence that two changed containers are the same logical entity.
func computeBlocks(original, edited ast.Blocks, c *hashCache) *Plan {
	plan := NewPlan()
	if len(original) == 0 && len(edited) == 0 {
		return plan
	}

	hashToIdx := make(map[uint64][]int, len(original))
	for idx, b := range original {
		h := c.hashBlock(b)
		hashToIdx[h] = append(hashToIdx[h], idx)
	}

	alignments := make([]Alignment, len(edited))
	used := make(map[int]bool, len(original))

	// phase 1: exact matches at any position
	var phase2 []int
	for editIdx, editBlock := range edited {
		h := c.hashBlock(editBlock)
		matched := false
		for _, origIdx := range hashToIdx[h] {
			if used[origIdx] {
				continue
			}
			if equalBlock(original[origIdx], editBlock) {
				used[origIdx] = true
				alignments[editIdx] = keepBefore(origIdx)
				plan.Stats.BlocksKept++
				matched = true
			}
			break
		}
		if !matched {
			phase2 = append(phase2, editIdx)
		}
	}

	// phase 2: positional same-kind matches
	var phase3 []int
	for _, editIdx := range phase2 {
		if !c.tryRecurse(plan, alignments, original, edited, editIdx, used) {
			phase3 = append(phase3, editIdx)
		}
	}

	// phase 3: fallback
	for _, editIdx := range phase3 {
		alignments[editIdx] = useAfter(editIdx)
		plan.Stats.BlocksReplaced++
	}

	plan.BlockAlignments = alignments
	return plan
}

// tryRecurse attempts a positional recursion for edited[editIdx] and reports
// whether it succeeded, recording the alignment and sub-plan on success.
func (c *hashCache) tryRecurse(plan *Plan, alignments []Alignment, original, edited ast.Blocks, editIdx int, used map[int]bool) bool {
	if editIdx >= len(original) || used[editIdx] {
		return false
	}
	origBlock, editBlock := original[editIdx], edited[editIdx]
	if ast.BlockKind(origBlock) != ast.BlockKind(editBlock) {
		return false
	}

	if isContainerBlock(origBlock) {
		if !sameBlockShell(origBlock, editBlock) {
			return false
		}
		used[editIdx] = true
		switch o := origBlock.(type) {
		case *ast.Table:
			e := editBlock.(*ast.Table)
			if plan.TablePlans == nil {
				plan.TablePlans = make(map[int]*TablePlan)
			}
			tp := c.computeTablePlan(o, e)
			plan.TablePlans[editIdx] = tp
			if tp.Caption != nil {
				plan.Stats.Merge(tp.Caption.Stats)
			}
			for _, cellPlan := range tp.Cells {
				plan.Stats.Merge(cellPlan.Stats)
			}
		case *ast.OrderedList:
			e := editBlock.(*ast.OrderedList)
			nested := c.computeListPlan(o.Items, e.Items)
			plan.Stats.Merge(nested.Stats)
			setContainerPlan(plan, editIdx, nested)
		case *ast.BulletList:
			e := editBlock.(*ast.BulletList)
			nested := c.computeListPlan(o.Items, e.Items)
			plan.Stats.Merge(nested.Stats)
			setContainerPlan(plan, editIdx, nested)
		case *ast.DefinitionList:
			e := editBlock.(*ast.DefinitionList)
			nested := c.computeDefListPlan(o.Items, e.Items)
			plan.Stats.Merge(nested.Stats)
			setContainerPlan(plan, editIdx, nested)
		default:
			nested := computeBlocks(containerBlocks(origBlock), containerBlocks(editBlock), c)
			plan.Stats.Merge(nested.Stats)
			setContainerPlan(plan, editIdx, nested)
		}
		alignments[editIdx] = recurse(editIdx, editIdx)
		plan.Stats.BlocksRecursed++
		return true
	}

	if hasInlineContent(origBlock) && sameBlockShell(origBlock, editBlock) {
		inlinePlan := c.computeInlines(inlineContent(origBlock), inlineContent(editBlock))
		if !hasKept(inlinePlan.Alignments) {
			return false
		}
		used[editIdx] = true
		if plan.InlinePlans == nil {
			plan.InlinePlans = make(map[int]*InlinePlan)
		}
		plan.InlinePlans[editIdx] = inlinePlan
		tallyInlines(inlinePlan, &plan.Stats)
		alignments[editIdx] = recurse(editIdx, editIdx)
		plan.Stats.BlocksRecursed++
		return true
	}

	return false
}

func setContainerPlan(plan *Plan, idx int, nested *Plan) {
	if plan.ContainerPlans == nil {
		plan.ContainerPlans = make(map[int]*Plan)
	}
	plan.ContainerPlans[idx] = nested
}

// tallyInlines folds an inline plan's decisions into stats, descending into
// nested container and note plans.
func tallyInlines(p *InlinePlan, stats *Stats) {
	for _, a := range p.Alignments {
		switch a.Op {
		case OpKeepBefore:
			stats.InlinesKept++
		case OpUseAfter:
			stats.InlinesReplaced++
		case OpRecurse:
			stats.InlinesRecursed++
		}
	}
	for _, nested := range p.ContainerPlans {
		tallyInlines(nested, stats)
	}
	for _, nested := range p.NotePlans {
		stats.Merge(nested.Stats)
	}
}

func hasKept(alignments []Alignment) bool {
	for _, a := range alignments {
		if a.Op == OpKeepBefore {
			return true
		}
	}
	return false
}

// isContainerBlock reports whether a block has block children worth
// descending into.
func isContainerBlock(b ast.Block) bool {
	switch b.(type) {
	case *ast.Div, *ast.BlockQuote, *ast.OrderedList, *ast.BulletList,
		*ast.DefinitionList, *ast.Figure, *ast.Table, *ast.CustomBlock:
		return true
	}
	return false
}

// hasInlineContent reports whether a block's payload is an inline sequence.
func hasInlineContent(b ast.Block) bool {
	switch b.(type) {
	case *ast.Para, *ast.Plain, *ast.Header:
		return true
	}
	return false
}

func containerBlocks(b ast.Block) ast.Blocks {
	switch n := b.(type) {
	case *ast.Div:
		return n.Blocks
	case *ast.BlockQuote:
		return n.Blocks
	case *ast.Figure:
		return n.Blocks
	case *ast.CustomBlock:
		return n.Blocks
	}
	return nil
}

func inlineContent(b ast.Block) ast.Inlines {
	switch n := b.(type) {
	case *ast.Para:
		return n.Inlines
	case *ast.Plain:
		return n.Inlines
	case *ast.Header:
		return n.Inlines
	}
	return nil
}

// sameBlockShell reports whether everything about a block other than its
// reconcilable children matches. Recursion keeps the original node's shell,
// so a changed shell must fall through to UseAfter or the edit would be
// lost in the output.
func sameBlockShell(a, b ast.Block) bool {
	switch x := a.(type) {
	case *ast.Para, *ast.Plain, *ast.BlockQuote, *ast.BulletList, *ast.DefinitionList:
		return true
	case *ast.Header:
		y := b.(*ast.Header)
		return x.Level == y.Level && equalAttr(x.Attr, y.Attr)
	case *ast.Div:
		y := b.(*ast.Div)
		return equalAttr(x.Attr, y.Attr)
	case *ast.OrderedList:
		y := b.(*ast.OrderedList)
		return x.Attrs == y.Attrs
	case *ast.Figure:
		y := b.(*ast.Figure)
		return equalAttr(x.Attr, y.Attr) && equalCaption(x.Caption, y.Caption)
	case *ast.CustomBlock:
		y := b.(*ast.CustomBlock)
		return x.TypeName == y.TypeName && equalAttr(x.Attr, y.Attr) && bytes.Equal(x.Data, y.Data)
	case *ast.Table:
		// structural fields come from the edited side, so any table pair of
		// the same kind may recurse
		return true
	}
	return false
}

// computeListPlan aligns list items with the same three phases as blocks,
// hashing whole items so unchanged items match at any position (insertions
// and deletions shift positions without losing matches).
func (c *hashCache) computeListPlan(origItems, editItems []ast.Blocks) *Plan {
	plan := NewPlan()
	if len(origItems) == 0 && len(editItems) == 0 {
		return plan
	}

	hashToIdx := make(map[uint64][]int, len(origItems))
	for idx, item := range origItems {
		h := c.hashBlocks(item)
		hashToIdx[h] = append(hashToIdx[h], idx)
	}

	alignments := make([]Alignment, len(editItems))
	used := make(map[int]bool, len(origItems))

	var phase2 []int
	for editIdx, editItem := range editItems {
		h := c.hashBlocks(editItem)
		matched := false
		for _, origIdx := range hashToIdx[h] {
			if used[origIdx] {
				continue
			}
			if equalBlocks(origItems[origIdx], editItem) {
				used[origIdx] = true
				alignments[editIdx] = keepBefore(origIdx)
				matched = true
			}
			break
		}
		if !matched {
			phase2 = append(phase2, editIdx)
		}
	}

	var phase3 []int
	for _, editIdx := range phase2 {
		if editIdx < len(origItems) && !used[editIdx] {
			used[editIdx] = true
			nested := computeBlocks(origItems[editIdx], editItems[editIdx], c)
			plan.Stats.Merge(nested.Stats)
			if plan.ItemPlans == nil {
				plan.ItemPlans = make(map[int]*Plan)
			}
			plan.ItemPlans[editIdx] = nested
			alignments[editIdx] = recurse(editIdx, editIdx)
			continue
		}
		phase3 = append(phase3, editIdx)
	}

	for _, editIdx := range phase3 {
		alignments[editIdx] = useAfter(editIdx)
		plan.Stats.BlocksReplaced++
	}

	plan.ItemAlignments = alignments
	return plan
}

func (c *hashCache) hashDefItem(item ast.Definition) uint64 {
	d := newDigest("defitem")
	d.sub(c.hashInlines(item.Term))
	d.num(len(item.Definitions))
	for _, def := range item.Definitions {
		d.sub(c.hashBlocks(def))
	}
	return d.sum()
}

// computeDefListPlan aligns definition-list items: exact matches anywhere,
// then positional recursion into term and per-definition content.
func (c *hashCache) computeDefListPlan(origItems, editItems []ast.Definition) *Plan {
	plan := NewPlan()
	if len(origItems) == 0 && len(editItems) == 0 {
		return plan
	}

	hashToIdx := make(map[uint64][]int, len(origItems))
	for idx, item := range origItems {
		h := c.hashDefItem(item)
		hashToIdx[h] = append(hashToIdx[h], idx)
	}

	alignments := make([]Alignment, len(editItems))
	used := make(map[int]bool, len(origItems))

	var phase2 []int
	for editIdx, editItem := range editItems {
		h := c.hashDefItem(editItem)
		matched := false
		for _, origIdx := range hashToIdx[h] {
			if used[origIdx] {
				continue
			}
			orig := origItems[origIdx]
			if equalInlines(orig.Term, editItem.Term) && equalItems(orig.Definitions, editItem.Definitions) {
				used[origIdx] = true
				alignments[editIdx] = keepBefore(origIdx)
				matched = true
			}
			break
		}
		if !matched {
			phase2 = append(phase2, editIdx)
		}
	}

	var phase3 []int
	for _, editIdx := range phase2 {
		if editIdx < len(origItems) && !used[editIdx] {
			used[editIdx] = true
			orig, edit := origItems[editIdx], editItems[editIdx]
			item := &DefItemPlan{Term: c.computeInlines(orig.Term, edit.Term)}
			tallyInlines(item.Term, &plan.Stats)
			for j := range edit.Definitions {
				if j >= len(orig.Definitions) {
					break
				}
				nested := computeBlocks(orig.Definitions[j], edit.Definitions[j], c)
				plan.Stats.Merge(nested.Stats)
				if item.Defs == nil {
					item.Defs = make(map[int]*Plan)
				}
				item.Defs[j] = nested
			}
			if plan.DefItemPlans == nil {
				plan.DefItemPlans = make(map[int]*DefItemPlan)
			}
			plan.DefItemPlans[editIdx] = item
			alignments[editIdx] = recurse(editIdx, editIdx)
			continue
		}
		phase3 = append(phase3, editIdx)
	}

	for _, editIdx := range phase3 {
		alignments[editIdx] = useAfter(editIdx)
		plan.Stats.BlocksReplaced++
	}

	plan.ItemAlignments = alignments
	return plan
}

// computeTablePlan matches cells strictly by position. A coordinate gets a
// plan only when it exists in both tables and the spans agree; any other
// coordinate takes the edited cell wholesale.
func (c *hashCache) computeTablePlan(orig, edit *ast.Table) *TablePlan {
	tp := &TablePlan{}

	if orig.Caption.Long != nil && edit.Caption.Long != nil {
		tp.Caption = computeBlocks(orig.Caption.Long, edit.Caption.Long, c)
	}

	cells := make(map[CellPos]*Plan)
	addRows := func(origRows, editRows []ast.Row, pos func(row, col int) CellPos) {
		for r := 0; r < len(origRows) && r < len(editRows); r++ {
			origCells, editCells := origRows[r].Cells, editRows[r].Cells
			for col := 0; col < len(origCells) && col < len(editCells); col++ {
				oc, ec := origCells[col], editCells[col]
				if oc.RowSpan != ec.RowSpan || oc.ColSpan != ec.ColSpan {
					continue
				}
				cells[pos(r, col)] = computeBlocks(oc.Blocks, ec.Blocks, c)
			}
		}
	}

	addRows(orig.Head.Rows, edit.Head.Rows, func(r, col int) CellPos {
		return CellPos{Section: SectionHead, Row: r, Col: col}
	})
	for b := 0; b < len(orig.Bodies) && b < len(edit.Bodies); b++ {
		body := b
		addRows(orig.Bodies[b].HeadRows, edit.Bodies[b].HeadRows, func(r, col int) CellPos {
			return CellPos{Section: SectionBodyHead, Body: body, Row: r, Col: col}
		})
		addRows(orig.Bodies[b].BodyRows, edit.Bodies[b].BodyRows, func(r, col int) CellPos {
			return CellPos{Section: SectionBodyBody, Body: body, Row: r, Col: col}
		})
	}
	addRows(orig.Foot.Rows, edit.Foot.Rows, func(r, col int) CellPos {
		return CellPos{Section: SectionFoot, Row: r, Col: col}
	})

	if len(cells) > 0 {
		tp.Cells = cells
	}
	return tp
}

// computeInlines aligns two inline sequences: exact hash matches anywhere,
// then kind-based matches for container inlines with an unchanged shell,
// then UseAfter.
func (c *hashCache) computeInlines(original, edited ast.Inlines) *InlinePlan {
	plan := &InlinePlan{}
	if len(original) == 0 && len(edited) == 0 {
		return plan
	}

	hashToIdx := make(map[uint64][]int, len(original))
	for idx, in := range original {
		h := c.hashInline(in)
		hashToIdx[h] = append(hashToIdx[h], idx)
	}

	used := make(map[int]bool, len(original))

	for editIdx, editInline := range edited {
		h := c.hashInline(editInline)
		matched := false
		for _, origIdx := range hashToIdx[h] {
			if used[origIdx] {
				continue
			}
			if equalInline(original[origIdx], editInline) {
				used[origIdx] = true
				plan.Alignments = append(plan.Alignments, keepBefore(origIdx))
				matched = true
			}
			break
		}
		if matched {
			continue
		}

		// kind-based match against any unused container inline
		kind := ast.InlineKind(editInline)
		origIdx := -1
		for i, origInline := range original {
			if used[i] || ast.InlineKind(origInline) != kind {
				continue
			}
			if !isContainerInline(origInline) || !sameInlineShell(origInline, editInline) {
				continue
			}
			origIdx = i
			break
		}
		if origIdx >= 0 {
			used[origIdx] = true
			alignIdx := len(plan.Alignments)
			origInline := original[origIdx]

			if origNote, ok := origInline.(*ast.Note); ok {
				editNote := editInline.(*ast.Note)
				if plan.NotePlans == nil {
					plan.NotePlans = make(map[int]*Plan)
				}
				plan.NotePlans[alignIdx] = computeBlocks(origNote.Blocks, editNote.Blocks, c)
			} else {
				nested := c.computeInlines(inlineChildren(origInline), inlineChildren(editInline))
				if plan.ContainerPlans == nil {
					plan.ContainerPlans = make(map[int]*InlinePlan)
				}
				plan.ContainerPlans[alignIdx] = nested
			}
			plan.Alignments = append(plan.Alignments, recurse(origIdx, editIdx))
			continue
		}

		plan.Alignments = append(plan.Alignments, useAfter(editIdx))
	}

	return plan
}

// isContainerInline reports whether an inline has inline or block children.
func isContainerInline(in ast.Inline) bool {
	switch in.(type) {
	case *ast.Emph, *ast.Strong, *ast.Underline, *ast.Strikeout,
		*ast.Superscript, *ast.Subscript, *ast.SmallCaps, *ast.Quoted,
		*ast.Link, *ast.Image, *ast.Span, *ast.Note:
		return true
	}
	return false
}

func inlineChildren(in ast.Inline) ast.Inlines {
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
	}
	return nil
}

// sameInlineShell reports whether an inline container's non-child fields
// match, so recursion cannot drop an edit to the wrapper itself.
func sameInlineShell(a, b ast.Inline) bool {
	switch x := a.(type) {
	case *ast.Emph, *ast.Strong, *ast.Underline, *ast.Strikeout,
		*ast.Superscript, *ast.Subscript, *ast.SmallCaps, *ast.Note:
		return true
	case *ast.Quoted:
		y := b.(*ast.Quoted)
		return x.Type == y.Type
	case *ast.Link:
		y := b.(*ast.Link)
		return equalAttr(x.Attr, y.Attr) && x.Target == y.Target
	case *ast.Image:
		y := b.(*ast.Image)
		return equalAttr(x.Attr, y.Attr) && x.Target == y.Target
	case *ast.Span:
		y := b.(*ast.Span)
		return equalAttr(x.Attr, y.Attr)
	}
	return false
}
