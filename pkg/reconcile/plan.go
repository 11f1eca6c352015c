// Package reconcile computes and applies reconciliation plans between two
// versions of a document tree. A plan records, per node, whether to keep the
// original node, take the edited one, or descend into a container; it is
// plain serializable data with no references into either tree.
package reconcile

import (
	"fmt"
	"strconv"
	"strings"
)

// Op is an alignment decision.
type Op string

const (
	// OpKeepBefore keeps the original node: hashes matched exactly, so the
	// original bytes and provenance carry over untouched.
	OpKeepBefore Op = "use_before"
	// OpUseAfter takes the edited node: no matching original was found.
	OpUseAfter Op = "use_after"
	// OpRecurse descends into a container whose children changed.
	OpRecurse Op = "recurse"
)

// Alignment is one decision in a sequence alignment. Before and After are
// indices into the original and edited sequences; -1 means no counterpart.
type Alignment struct {
	Op     Op  `json:"op"`
	Before int `json:"before"`
	After  int `json:"after"`
}

func keepBefore(idx int) Alignment { return Alignment{Op: OpKeepBefore, Before: idx, After: -1} }
func useAfter(idx int) Alignment   { return Alignment{Op: OpUseAfter, Before: -1, After: idx} }
func recurse(before, after int) Alignment {
	return Alignment{Op: OpRecurse, Before: before, After: after}
}

// Stats counts alignment decisions across a plan and its sub-plans.
type Stats struct {
	BlocksKept      int `json:"blocks_kept"`
	BlocksReplaced  int `json:"blocks_replaced"`
	BlocksRecursed  int `json:"blocks_recursed"`
	InlinesKept     int `json:"inlines_kept"`
	InlinesReplaced int `json:"inlines_replaced"`
	InlinesRecursed int `json:"inlines_recursed"`
}

// Merge adds other's counters into s.
func (s *Stats) Merge(other Stats) {
	s.BlocksKept += other.BlocksKept
	s.BlocksReplaced += other.BlocksReplaced
	s.BlocksRecursed += other.BlocksRecursed
	s.InlinesKept += other.InlinesKept
	s.InlinesReplaced += other.InlinesReplaced
	s.InlinesRecursed += other.InlinesRecursed
}

// Plan describes how to merge an original and an edited block sequence.
// Nested plans are keyed by the index of the recurse alignment they refine.
type Plan struct {
	BlockAlignments []Alignment `json:"block_alignments"`

	// ContainerPlans holds nested block plans for quote-like, generic, and
	// custom containers.
	ContainerPlans map[int]*Plan `json:"container_plans,omitempty"`

	// InlinePlans holds inline plans for blocks with inline content.
	InlinePlans map[int]*InlinePlan `json:"inline_plans,omitempty"`

	// TablePlans holds position-keyed cell plans for tables.
	TablePlans map[int]*TablePlan `json:"table_plans,omitempty"`

	// ItemAlignments and ItemPlans are used when this plan reconciles an
	// ordered or bulleted list: one alignment per edited item, with nested
	// plans for items reconciled positionally.
	ItemAlignments []Alignment   `json:"item_alignments,omitempty"`
	ItemPlans      map[int]*Plan `json:"item_plans,omitempty"`

	// DefItemPlans refine definition-list items matched positionally.
	DefItemPlans map[int]*DefItemPlan `json:"def_item_plans,omitempty"`

	Stats Stats `json:"stats"`
}

// InlinePlan describes how to merge an original and an edited inline
// sequence.
type InlinePlan struct {
	Alignments []Alignment `json:"alignments"`

	// ContainerPlans holds nested inline plans for emphasis-like containers,
	// links, images, and spans.
	ContainerPlans map[int]*InlinePlan `json:"container_plans,omitempty"`

	// NotePlans holds block plans for footnotes.
	NotePlans map[int]*Plan `json:"note_plans,omitempty"`
}

// DefItemPlan refines one definition-list item: an inline plan for the term
// and a block plan per definition index present on both sides.
type DefItemPlan struct {
	Term *InlinePlan   `json:"term,omitempty"`
	Defs map[int]*Plan `json:"defs,omitempty"`
}

// Table sections addressable by CellPos.
const (
	SectionHead     = "head"
	SectionBodyHead = "body_head"
	SectionBodyBody = "body_body"
	SectionFoot     = "foot"
)

// CellPos identifies a table cell by section, body segment, row, and column.
// Body is meaningful only for the body sections.
type CellPos struct {
	Section string
	Body    int
	Row     int
	Col     int
}

// MarshalText encodes the position as "head:row:col" or
// "body_body:body:row:col", usable as a JSON object key.
func (p CellPos) MarshalText() ([]byte, error) {
	switch p.Section {
	case SectionHead, SectionFoot:
		return []byte(fmt.Sprintf("%s:%d:%d", p.Section, p.Row, p.Col)), nil
	case SectionBodyHead, SectionBodyBody:
		return []byte(fmt.Sprintf("%s:%d:%d:%d", p.Section, p.Body, p.Row, p.Col)), nil
	default:
		return nil, fmt.Errorf("reconcile: unknown table section %q", p.Section)
	}
}

// UnmarshalText decodes the MarshalText form.
func (p *CellPos) UnmarshalText(text []byte) error {
	parts := strings.Split(string(text), ":")
	atoi := func(s string) (int, error) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("reconcile: bad cell position %q: %w", text, err)
		}
		return n, nil
	}
	var err error
	switch {
	case len(parts) == 3 && (parts[0] == SectionHead || parts[0] == SectionFoot):
		p.Section = parts[0]
		p.Body = 0
		if p.Row, err = atoi(parts[1]); err != nil {
			return err
		}
		p.Col, err = atoi(parts[2])
		return err
	case len(parts) == 4 && (parts[0] == SectionBodyHead || parts[0] == SectionBodyBody):
		p.Section = parts[0]
		if p.Body, err = atoi(parts[1]); err != nil {
			return err
		}
		if p.Row, err = atoi(parts[2]); err != nil {
			return err
		}
		p.Col, err = atoi(parts[3])
		return err
	default:
		return fmt.Errorf("reconcile: bad cell position %q", text)
	}
}

// TablePlan describes how to merge two tables. Cells holds a plan per
// coordinate present in both tables with matching spans; coordinates absent
// from the map take the edited cell wholesale. Structural fields (column
// specs, attrs, caption short form) always come from the edited side.
type TablePlan struct {
	// Caption refines the long caption when both tables have one.
	Caption *Plan `json:"caption,omitempty"`

	Cells map[CellPos]*Plan `json:"cells,omitempty"`
}

// NewPlan returns an empty plan.
func NewPlan() *Plan {
	return &Plan{}
}

// AllKept returns a plan keeping the first count original blocks in order.
func AllKept(count int) *Plan {
	p := &Plan{BlockAlignments: make([]Alignment, count)}
	for i := range p.BlockAlignments {
		p.BlockAlignments[i] = keepBefore(i)
	}
	p.Stats.BlocksKept = count
	return p
}

// InlineAllKept returns an inline plan keeping the first count original
// inlines in order.
func InlineAllKept(count int) *InlinePlan {
	p := &InlinePlan{Alignments: make([]Alignment, count)}
	for i := range p.Alignments {
		p.Alignments[i] = keepBefore(i)
	}
	return p
}

// AllKept reports whether every alignment in the plan keeps an original
// block, with no nested work.
func (p *Plan) AllKept() bool {
	for _, a := range p.BlockAlignments {
		if a.Op != OpKeepBefore {
			return false
		}
	}
	return len(p.ContainerPlans) == 0 && len(p.InlinePlans) == 0 &&
		len(p.TablePlans) == 0 && len(p.ItemAlignments) == 0 &&
		len(p.DefItemPlans) == 0
}

// AllKept reports whether every inline alignment keeps an original inline.
func (p *InlinePlan) AllKept() bool {
	for _, a := range p.Alignments {
		if a.Op != OpKeepBefore {
			return false
		}
	}
	return len(p.ContainerPlans) == 0 && len(p.NotePlans) == 0
}
