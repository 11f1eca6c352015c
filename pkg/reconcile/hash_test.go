package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docweave/docweave/pkg/ast"
)

func TestHashIgnoresProvenance(t *testing.T) {
	c := newHashCache()
	a := mkPara("same text", 0)
	b := mkPara("same text", 500)
	assert.Equal(t, c.hashBlock(a), c.hashBlock(b))
}

func TestHashDistinguishesContent(t *testing.T) {
	c := newHashCache()
	assert.NotEqual(t, c.hashBlock(mkPara("one", 0)), c.hashBlock(mkPara("two", 0)))
}

func TestHashDistinguishesKind(t *testing.T) {
	c := newHashCache()
	para := &ast.Para{Inlines: ast.Inlines{mkStr("x", 0)}, Src: srcAt(0, 1)}
	plain := &ast.Plain{Inlines: ast.Inlines{mkStr("x", 0)}, Src: srcAt(0, 1)}
	assert.NotEqual(t, c.hashBlock(para), c.hashBlock(plain))

	sb := &ast.SoftBreak{Src: srcAt(0, 1)}
	lb := &ast.LineBreak{Src: srcAt(0, 1)}
	assert.NotEqual(t, c.hashInline(sb), c.hashInline(lb))
}

func TestHashDistinguishesInlineBoundaries(t *testing.T) {
	c := newHashCache()
	joined := &ast.Para{Inlines: ast.Inlines{mkStr("ab", 0)}, Src: srcAt(0, 2)}
	split := &ast.Para{Inlines: ast.Inlines{mkStr("a", 0), mkStr("b", 1)}, Src: srcAt(0, 2)}
	assert.NotEqual(t, c.hashBlock(joined), c.hashBlock(split))
}

func TestHashCoversAttr(t *testing.T) {
	c := newHashCache()
	a := &ast.CodeBlock{Attr: ast.Attr{Classes: []string{"go"}}, Text: "x", Src: srcAt(0, 1)}
	b := &ast.CodeBlock{Attr: ast.Attr{Classes: []string{"py"}}, Text: "x", Src: srcAt(0, 1)}
	assert.NotEqual(t, c.hashBlock(a), c.hashBlock(b))

	withKV := &ast.CodeBlock{Attr: ast.Attr{KeyVals: []ast.KeyVal{{Key: "k", Value: "v"}}}, Text: "x", Src: srcAt(0, 1)}
	without := &ast.CodeBlock{Text: "x", Src: srcAt(0, 1)}
	assert.NotEqual(t, c.hashBlock(withKV), c.hashBlock(without))
}

func TestHashStableAcrossCaches(t *testing.T) {
	a := newHashCache()
	b := newHashCache()
	doc := mkSimpleTable([][]string{{"a", "b"}, {"c", "d"}})
	assert.Equal(t, a.hashBlock(doc), b.hashBlock(doc))
}

func TestHashMemoization(t *testing.T) {
	c := newHashCache()
	para := mkPara("cached", 0)
	first := c.hashBlock(para)
	assert.Equal(t, first, c.hashBlock(para))
	assert.Contains(t, c.blocks, ast.Block(para))
}

func TestEqualBlockIgnoresProvenance(t *testing.T) {
	assert.True(t, equalBlock(mkPara("x", 0), mkPara("x", 99)))
	assert.False(t, equalBlock(mkPara("x", 0), mkPara("y", 0)))
	assert.False(t, equalBlock(mkPara("x", 0), &ast.Plain{Inlines: ast.Inlines{mkStr("x", 0)}}))
}

func TestEqualTableComparesShape(t *testing.T) {
	a := mkSimpleTable([][]string{{"a", "b"}})
	b := mkSimpleTable([][]string{{"a", "b"}})
	assert.True(t, equalBlock(a, b))

	b.Bodies[0].BodyRows[0].Cells[1].ColSpan = 2
	assert.False(t, equalBlock(a, b))
}
