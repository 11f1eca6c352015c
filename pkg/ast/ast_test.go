package ast

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docweave/docweave/pkg/source"
)

func src(start, end int) source.Info {
	return source.FromOffsets(0, start, end)
}

func TestBlockKind(t *testing.T) {
	cases := []struct {
		node Block
		kind string
	}{
		{&Para{}, "Para"},
		{&Plain{}, "Plain"},
		{&CodeBlock{}, "CodeBlock"},
		{&BlockQuote{}, "BlockQuote"},
		{&OrderedList{}, "OrderedList"},
		{&BulletList{}, "BulletList"},
		{&DefinitionList{}, "DefinitionList"},
		{&Header{}, "Header"},
		{&HorizontalRule{}, "HorizontalRule"},
		{&Table{}, "Table"},
		{&Figure{}, "Figure"},
		{&Div{}, "Div"},
		{&CustomBlock{}, "Custom"},
	}
	for _, c := range cases {
		assert.Equal(t, c.kind, BlockKind(c.node))
	}
}

func TestInlineKind(t *testing.T) {
	assert.Equal(t, "Str", InlineKind(&Str{}))
	assert.Equal(t, "Emph", InlineKind(&Emph{}))
	assert.Equal(t, "Space", InlineKind(&Space{}))
	assert.Equal(t, "Link", InlineKind(&Link{}))
	assert.Equal(t, "Note", InlineKind(&Note{}))
}

func TestDocumentJSONRoundTrip(t *testing.T) {
	doc := &Document{
		Meta: map[string]any{"title": "Test"},
		Blocks: Blocks{
			&Header{
				Level:   2,
				Attr:    Attr{ID: "intro", Classes: []string{"unnumbered"}},
				Inlines: Inlines{&Str{Text: "Intro", Src: src(3, 8)}},
				Src:     src(0, 8),
			},
			&Para{
				Inlines: Inlines{
					&Str{Text: "hello", Src: src(10, 15)},
					&Space{Src: src(15, 16)},
					&Emph{Inlines: Inlines{&Str{Text: "world", Src: src(17, 22)}}, Src: src(16, 23)},
				},
				Src: src(10, 23),
			},
			&BlockQuote{
				Blocks: Blocks{
					&Plain{Inlines: Inlines{&Str{Text: "quoted", Src: src(27, 33)}}, Src: src(27, 33)},
				},
				Src: src(25, 33),
			},
			&BulletList{
				Items: []Blocks{
					{&Plain{Inlines: Inlines{&Str{Text: "a", Src: src(37, 38)}}, Src: src(37, 38)}},
					{&Plain{Inlines: Inlines{&Str{Text: "b", Src: src(41, 42)}}, Src: src(41, 42)}},
				},
				Src: src(35, 42),
			},
			&CodeBlock{
				Attr: Attr{Classes: []string{"go"}, KeyVals: []KeyVal{{Key: "lineno", Value: "true"}}},
				Text: "x := 1\n",
				Src:  src(44, 60),
			},
			&CustomBlock{
				TypeName: "callout-note",
				Attr:     Attr{ID: "n1"},
				Blocks:   Blocks{&Para{Inlines: Inlines{&Str{Text: "note", Src: src(66, 70)}}, Src: src(66, 70)}},
				Data:     json.RawMessage(`{"collapse":true}`),
				Src:      src(62, 72),
			},
		},
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var back Document
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, doc, &back)
}

func TestTableJSONRoundTrip(t *testing.T) {
	table := &Table{
		Attr:     Attr{ID: "tbl"},
		Caption:  Caption{Long: Blocks{&Plain{Inlines: Inlines{&Str{Text: "cap", Src: src(0, 3)}}, Src: src(0, 3)}}},
		ColSpecs: []ColSpec{{Align: AlignLeft}, {Align: AlignRight, Width: 0.5}},
		Head: TableHead{
			Rows: []Row{{
				Cells: []Cell{
					{Align: AlignDefault, RowSpan: 1, ColSpan: 1, Blocks: Blocks{&Plain{Inlines: Inlines{&Str{Text: "h", Src: src(5, 6)}}, Src: src(5, 6)}}, Src: src(5, 6)},
				},
				Src: src(5, 6),
			}},
			Src: src(5, 6),
		},
		Bodies: []TableBody{{
			RowHeadColumns: 1,
			BodyRows: []Row{{
				Cells: []Cell{
					{Align: AlignDefault, RowSpan: 1, ColSpan: 2, Blocks: Blocks{&Plain{Inlines: Inlines{&Str{Text: "c", Src: src(8, 9)}}, Src: src(8, 9)}}, Src: src(8, 9)},
				},
				Src: src(8, 9),
			}},
			Src: src(8, 9),
		}},
		Src: src(0, 10),
	}

	data, err := json.Marshal(Blocks{table})
	require.NoError(t, err)

	var back Blocks
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 1)
	assert.Equal(t, table, back[0])
}

func TestBlocksUnmarshalUnknownKind(t *testing.T) {
	var bs Blocks
	err := json.Unmarshal([]byte(`[{"t":"Wat","c":{}}]`), &bs)
	assert.ErrorContains(t, err, "unknown block kind")

	var ins Inlines
	err = json.Unmarshal([]byte(`[{"t":"Wat","c":{}}]`), &ins)
	assert.ErrorContains(t, err, "unknown inline kind")
}

func TestNilSequencesRoundTrip(t *testing.T) {
	data, err := json.Marshal(Blocks(nil))
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var bs Blocks
	require.NoError(t, json.Unmarshal([]byte("null"), &bs))
	assert.Nil(t, bs)
}
