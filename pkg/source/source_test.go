package source

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffsetRange(t *testing.T) {
	r := OffsetRange(5, 12)
	assert.Equal(t, 5, r.Start.Offset)
	assert.Equal(t, 12, r.End.Offset)
	assert.Equal(t, 7, r.Len())
	assert.Equal(t, 0, OffsetRange(3, 3).Len())
}

func TestContextFileLookup(t *testing.T) {
	ctx := NewContext()
	id := ctx.AddFile("doc.md", []byte("hello"))

	f, err := ctx.File(id)
	require.NoError(t, err)
	assert.Equal(t, "doc.md", f.Name)
	assert.Equal(t, []byte("hello"), f.Content)

	_, err = ctx.File(FileID(99))
	assert.ErrorIs(t, err, ErrUnknownFile)
	_, err = ctx.File(FileID(-1))
	assert.ErrorIs(t, err, ErrUnknownFile)
}

func TestFileLocationAt(t *testing.T) {
	ctx := NewContext()
	id := ctx.AddFile("doc.md", []byte("ab\ncde\n\nf"))

	cases := []struct {
		offset, line, col int
	}{
		{0, 0, 0},
		{1, 0, 1},
		{2, 0, 2}, // the newline itself belongs to line 0
		{3, 1, 0},
		{5, 1, 2},
		{7, 2, 0}, // empty line
		{8, 3, 0},
		{9, 3, 1}, // end of buffer
	}
	for _, c := range cases {
		loc, err := ctx.LocationAt(id, c.offset)
		require.NoError(t, err)
		assert.Equal(t, Location{Offset: c.offset, Line: c.line, Column: c.col}, loc, "offset %d", c.offset)
	}

	_, err := ctx.LocationAt(id, 10)
	assert.Error(t, err)
}

func TestLocationAtMultibyte(t *testing.T) {
	ctx := NewContext()
	id := ctx.AddFile("doc.md", []byte("héllo"))

	// 'é' is two bytes, so byte offset 3 is the third character
	loc, err := ctx.LocationAt(id, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, loc.Column)
}

func TestLocationAtInvalidUTF8(t *testing.T) {
	ctx := NewContext()
	// a stray continuation byte counts as a single character
	id := ctx.AddFile("doc.md", []byte{'a', 0x80, 'b'})

	loc, err := ctx.LocationAt(id, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, loc.Column)
}

func TestNewConcatOffsets(t *testing.T) {
	a := FromOffsets(0, 0, 10)
	b := FromOffsets(0, 20, 35)
	c := NewConcat(a, b)

	require.Equal(t, 25, c.Range.Len())
	cat, ok := c.Mapping.(Concat)
	require.True(t, ok)
	require.Len(t, cat.Pieces, 2)
	assert.Equal(t, 0, cat.Pieces[0].Offset)
	assert.Equal(t, 10, cat.Pieces[0].Length)
	assert.Equal(t, 10, cat.Pieces[1].Offset)
	assert.Equal(t, 15, cat.Pieces[1].Length)
}

func TestMapOffsetSubstringChain(t *testing.T) {
	ctx := NewContext()
	id := ctx.AddFile("doc.md", []byte("0123456789"))

	whole := FromOffsets(id, 0, 10)
	mid := NewSubstring(whole, 2, 8)   // "234567"
	inner := NewSubstring(mid, 1, 4)   // "345"

	m, err := inner.MapOffset(0, ctx)
	require.NoError(t, err)
	assert.Equal(t, id, m.File)
	assert.Equal(t, 3, m.Location.Offset)

	m, err = inner.MapOffset(2, ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, m.Location.Offset)
}

func TestMapOffsetConcat(t *testing.T) {
	ctx := NewContext()
	id := ctx.AddFile("doc.md", []byte("hello world"))

	c := NewConcat(FromOffsets(id, 0, 5), FromOffsets(id, 6, 11))

	m, err := c.MapOffset(4, ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, m.Location.Offset)

	// offset 5 is the first byte of the second piece
	m, err = c.MapOffset(5, ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, m.Location.Offset)

	// end position maps to the end of the last piece
	m, err = c.MapOffset(10, ctx)
	require.NoError(t, err)
	assert.Equal(t, 11, m.Location.Offset)

	_, err = c.MapOffset(11, ctx)
	assert.Error(t, err)
}

func TestMapOffsetTransformed(t *testing.T) {
	ctx := NewContext()
	id := ctx.AddFile("doc.md", []byte("HELLO"))

	parent := FromOffsets(id, 0, 5)
	lower := NewTransformed(parent, []Segment{
		{FromStart: 0, FromEnd: 5, ToStart: 0, ToEnd: 5},
	})

	m, err := lower.MapOffset(3, ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Location.Offset)

	_, err = lower.MapOffset(7, ctx)
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	ctx := NewContext()
	id := ctx.AddFile("doc.md", []byte("hello world"))

	b, err := FromOffsets(id, 0, 5).Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	sub := NewSubstring(FromOffsets(id, 0, 11), 6, 11)
	b, err = sub.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "world", string(b))

	// pieces come back in recorded order, not source order
	c := NewConcat(FromOffsets(id, 6, 11), FromOffsets(id, 5, 6), FromOffsets(id, 0, 5))
	b, err = c.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "world hello", string(b))
}

func TestResolveErrors(t *testing.T) {
	ctx := NewContext()
	id := ctx.AddFile("doc.md", []byte("abc"))

	_, err := FromOffsets(FileID(7), 0, 1).Resolve(ctx)
	assert.ErrorIs(t, err, ErrUnknownFile)

	_, err = FromOffsets(id, 0, 10).Resolve(ctx)
	assert.Error(t, err)

	tr := NewTransformed(FromOffsets(id, 0, 3), []Segment{{FromStart: 0, FromEnd: 3, ToStart: 0, ToEnd: 3}})
	_, err = tr.Resolve(ctx)
	assert.ErrorIs(t, err, ErrNotVerbatim)
}

func TestVerbatim(t *testing.T) {
	orig := FromOffsets(0, 0, 5)
	assert.True(t, orig.Verbatim())
	assert.True(t, NewSubstring(orig, 1, 3).Verbatim())
	assert.True(t, NewConcat(orig, orig).Verbatim())

	tr := NewTransformed(orig, nil)
	assert.False(t, tr.Verbatim())
	assert.False(t, NewSubstring(tr, 0, 0).Verbatim())
	assert.False(t, NewConcat(orig, tr).Verbatim())
}

func TestCombinePreservesAncestry(t *testing.T) {
	ctx := NewContext()
	id := ctx.AddFile("doc.md", []byte("foo bar"))

	merged := Combine(FromOffsets(id, 0, 3), FromOffsets(id, 4, 7))
	assert.Equal(t, 7, merged.Range.Len())

	b, err := merged.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "foobar", string(b))
}

func TestInfoJSONRoundTrip(t *testing.T) {
	orig := FromOffsets(2, 3, 9)
	sub := NewSubstring(orig, 1, 4)
	cat := NewConcat(orig, sub)
	tr := NewTransformed(orig, []Segment{{FromStart: 0, FromEnd: 2, ToStart: 4, ToEnd: 6}})

	for _, si := range []Info{orig, sub, cat, tr} {
		data, err := json.Marshal(si)
		require.NoError(t, err)

		var back Info
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, si, back)
	}
}

func TestInfoJSONZeroValue(t *testing.T) {
	var si Info
	data, err := json.Marshal(si)
	require.NoError(t, err)

	var back Info
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, si, back)
	assert.Nil(t, back.Mapping)
}
