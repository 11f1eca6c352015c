package reconcile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsMerge(t *testing.T) {
	s := Stats{BlocksKept: 5, BlocksReplaced: 2, BlocksRecursed: 1, InlinesKept: 10, InlinesReplaced: 3, InlinesRecursed: 2}
	s.Merge(Stats{BlocksKept: 3, BlocksReplaced: 1, BlocksRecursed: 2, InlinesKept: 5, InlinesReplaced: 2, InlinesRecursed: 1})
	assert.Equal(t, Stats{BlocksKept: 8, BlocksReplaced: 3, BlocksRecursed: 3, InlinesKept: 15, InlinesReplaced: 5, InlinesRecursed: 3}, s)

	s2 := s
	s2.Merge(Stats{})
	assert.Equal(t, s, s2)
}

func TestAllKeptConstructor(t *testing.T) {
	p := AllKept(3)
	require.Len(t, p.BlockAlignments, 3)
	for i, a := range p.BlockAlignments {
		assert.Equal(t, keepBefore(i), a)
	}
	assert.Equal(t, 3, p.Stats.BlocksKept)
	assert.True(t, p.AllKept())

	assert.Empty(t, AllKept(0).BlockAlignments)
	assert.False(t, (&Plan{BlockAlignments: []Alignment{useAfter(0)}}).AllKept())
}

func TestInlineAllKept(t *testing.T) {
	p := InlineAllKept(2)
	require.Len(t, p.Alignments, 2)
	assert.True(t, p.AllKept())
}

func TestCellPosText(t *testing.T) {
	cases := []struct {
		pos  CellPos
		text string
	}{
		{CellPos{Section: SectionHead, Row: 0, Col: 2}, "head:0:2"},
		{CellPos{Section: SectionFoot, Row: 1, Col: 0}, "foot:1:0"},
		{CellPos{Section: SectionBodyHead, Body: 0, Row: 1, Col: 2}, "body_head:0:1:2"},
		{CellPos{Section: SectionBodyBody, Body: 2, Row: 0, Col: 1}, "body_body:2:0:1"},
	}
	for _, c := range cases {
		text, err := c.pos.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, c.text, string(text))

		var back CellPos
		require.NoError(t, back.UnmarshalText([]byte(c.text)))
		assert.Equal(t, c.pos, back)
	}

	var p CellPos
	assert.Error(t, p.UnmarshalText([]byte("nope:1:2")))
	assert.Error(t, p.UnmarshalText([]byte("head:x:2")))
	assert.Error(t, p.UnmarshalText([]byte("head:1")))
}

func TestPlanJSONRoundTrip(t *testing.T) {
	plan := &Plan{
		BlockAlignments: []Alignment{keepBefore(0), recurse(1, 1), useAfter(2)},
		ContainerPlans: map[int]*Plan{
			1: {
				ItemAlignments: []Alignment{keepBefore(0), useAfter(1)},
				ItemPlans:      map[int]*Plan{0: AllKept(1)},
				Stats:          Stats{BlocksReplaced: 1},
			},
		},
		InlinePlans: map[int]*InlinePlan{
			0: {
				Alignments:     []Alignment{keepBefore(0), recurse(1, 1)},
				ContainerPlans: map[int]*InlinePlan{1: InlineAllKept(1)},
			},
		},
		TablePlans: map[int]*TablePlan{
			2: {
				Caption: AllKept(1),
				Cells: map[CellPos]*Plan{
					{Section: SectionBodyBody, Body: 0, Row: 1, Col: 2}: AllKept(1),
					{Section: SectionHead, Row: 0, Col: 0}:              {BlockAlignments: []Alignment{useAfter(0)}, Stats: Stats{BlocksReplaced: 1}},
				},
			},
		},
		Stats: Stats{BlocksKept: 1, BlocksRecursed: 1, BlocksReplaced: 1},
	}

	data, err := json.Marshal(plan)
	require.NoError(t, err)

	var back Plan
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, plan, &back)
}
