package reconcile

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/docweave/docweave/pkg/ast"
)

// Structural hashing: two subtrees hash equal when they are semantically
// interchangeable. The digest covers the kind discriminant, semantic content,
// and child hashes in order. Provenance never enters a hash, so moving a
// node to a different source position does not change it.

// hashCache memoizes digests by node identity for one compute invocation.
// Nodes are immutable, so a cached digest stays valid for the cache lifetime.
type hashCache struct {
	blocks  map[ast.Block]uint64
	inlines map[ast.Inline]uint64
}

func newHashCache() *hashCache {
	return &hashCache{
		blocks:  make(map[ast.Block]uint64),
		inlines: make(map[ast.Inline]uint64),
	}
}

func (c *hashCache) hashBlock(b ast.Block) uint64 {
	if h, ok := c.blocks[b]; ok {
		return h
	}
	h := c.computeBlock(b)
	c.blocks[b] = h
	return h
}

func (c *hashCache) hashInline(in ast.Inline) uint64 {
	if h, ok := c.inlines[in]; ok {
		return h
	}
	h := c.computeInline(in)
	c.inlines[in] = h
	return h
}

// hashBlocks digests a block sequence from its members' cached hashes.
func (c *hashCache) hashBlocks(bs ast.Blocks) uint64 {
	d := newDigest("blocks")
	d.num(len(bs))
	for _, b := range bs {
		d.sub(c.hashBlock(b))
	}
	return d.sum()
}

func (c *hashCache) hashInlines(ins ast.Inlines) uint64 {
	d := newDigest("inlines")
	d.num(len(ins))
	for _, in := range ins {
		d.sub(c.hashInline(in))
	}
	return d.sum()
}

// digest wraps xxhash with length-prefixed field writes so that adjacent
// fields cannot alias each other.
type digest struct {
	x       *xxhash.Digest
	scratch [8]byte
}

func newDigest(kind string) *digest {
	d := &digest{x: xxhash.New()}
	d.str(kind)
	return d
}

func (d *digest) str(s string) {
	d.num(len(s))
	d.x.WriteString(s)
}

func (d *digest) num(n int) {
	binary.LittleEndian.PutUint64(d.scratch[:], uint64(n))
	d.x.Write(d.scratch[:])
}

func (d *digest) float(f float64) {
	binary.LittleEndian.PutUint64(d.scratch[:], math.Float64bits(f))
	d.x.Write(d.scratch[:])
}

func (d *digest) sub(h uint64) {
	binary.LittleEndian.PutUint64(d.scratch[:], h)
	d.x.Write(d.scratch[:])
}

func (d *digest) bytes(b []byte) {
	d.num(len(b))
	d.x.Write(b)
}

func (d *digest) attr(a ast.Attr) {
	d.str(a.ID)
	d.num(len(a.Classes))
	for _, cl := range a.Classes {
		d.str(cl)
	}
	d.num(len(a.KeyVals))
	for _, kv := range a.KeyVals {
		d.str(kv.Key)
		d.str(kv.Value)
	}
}

func (d *digest) sum() uint64 {
	return d.x.Sum64()
}

func (c *hashCache) computeBlock(b ast.Block) uint64 {
	d := newDigest(ast.BlockKind(b))
	switch n := b.(type) {
	case *ast.Plain:
		d.sub(c.hashInlines(n.Inlines))
	case *ast.Para:
		d.sub(c.hashInlines(n.Inlines))
	case *ast.LineBlock:
		d.num(len(n.Lines))
		for _, line := range n.Lines {
			d.sub(c.hashInlines(line))
		}
	case *ast.CodeBlock:
		d.attr(n.Attr)
		d.str(n.Text)
	case *ast.RawBlock:
		d.str(n.Format)
		d.str(n.Text)
	case *ast.BlockQuote:
		d.sub(c.hashBlocks(n.Blocks))
	case *ast.OrderedList:
		d.num(n.Attrs.Start)
		d.str(n.Attrs.Style)
		d.str(n.Attrs.Delim)
		d.num(len(n.Items))
		for _, item := range n.Items {
			d.sub(c.hashBlocks(item))
		}
	case *ast.BulletList:
		d.num(len(n.Items))
		for _, item := range n.Items {
			d.sub(c.hashBlocks(item))
		}
	case *ast.DefinitionList:
		d.num(len(n.Items))
		for _, item := range n.Items {
			d.sub(c.hashInlines(item.Term))
			d.num(len(item.Definitions))
			for _, def := range item.Definitions {
				d.sub(c.hashBlocks(def))
			}
		}
	case *ast.Header:
		d.num(n.Level)
		d.attr(n.Attr)
		d.sub(c.hashInlines(n.Inlines))
	case *ast.HorizontalRule:
		// kind alone
	case *ast.Table:
		c.digestTable(d, n)
	case *ast.Figure:
		d.attr(n.Attr)
		c.digestCaption(d, n.Caption)
		d.sub(c.hashBlocks(n.Blocks))
	case *ast.Div:
		d.attr(n.Attr)
		d.sub(c.hashBlocks(n.Blocks))
	case *ast.CustomBlock:
		d.str(n.TypeName)
		d.attr(n.Attr)
		d.bytes(n.Data)
		d.sub(c.hashBlocks(n.Blocks))
	}
	return d.sum()
}

func (c *hashCache) computeInline(in ast.Inline) uint64 {
	d := newDigest(ast.InlineKind(in))
	switch n := in.(type) {
	case *ast.Str:
		d.str(n.Text)
	case *ast.Emph:
		d.sub(c.hashInlines(n.Inlines))
	case *ast.Strong:
		d.sub(c.hashInlines(n.Inlines))
	case *ast.Underline:
		d.sub(c.hashInlines(n.Inlines))
	case *ast.Strikeout:
		d.sub(c.hashInlines(n.Inlines))
	case *ast.Superscript:
		d.sub(c.hashInlines(n.Inlines))
	case *ast.Subscript:
		d.sub(c.hashInlines(n.Inlines))
	case *ast.SmallCaps:
		d.sub(c.hashInlines(n.Inlines))
	case *ast.Quoted:
		d.str(n.Type)
		d.sub(c.hashInlines(n.Inlines))
	case *ast.Code:
		d.attr(n.Attr)
		d.str(n.Text)
	case *ast.Space, *ast.SoftBreak, *ast.LineBreak:
		// kind alone
	case *ast.Math:
		d.str(n.Type)
		d.str(n.Text)
	case *ast.RawInline:
		d.str(n.Format)
		d.str(n.Text)
	case *ast.Link:
		d.attr(n.Attr)
		d.str(n.Target.URL)
		d.str(n.Target.Title)
		d.sub(c.hashInlines(n.Inlines))
	case *ast.Image:
		d.attr(n.Attr)
		d.str(n.Target.URL)
		d.str(n.Target.Title)
		d.sub(c.hashInlines(n.Inlines))
	case *ast.Note:
		d.sub(c.hashBlocks(n.Blocks))
	case *ast.Span:
		d.attr(n.Attr)
		d.sub(c.hashInlines(n.Inlines))
	}
	return d.sum()
}

func (c *hashCache) digestCaption(d *digest, caption ast.Caption) {
	d.sub(c.hashInlines(caption.Short))
	d.sub(c.hashBlocks(caption.Long))
}

func (c *hashCache) digestRows(d *digest, rows []ast.Row) {
	d.num(len(rows))
	for _, row := range rows {
		d.attr(row.Attr)
		d.num(len(row.Cells))
		for _, cell := range row.Cells {
			d.attr(cell.Attr)
			d.str(cell.Align)
			d.num(cell.RowSpan)
			d.num(cell.ColSpan)
			d.sub(c.hashBlocks(cell.Blocks))
		}
	}
}

func (c *hashCache) digestTable(d *digest, t *ast.Table) {
	d.attr(t.Attr)
	c.digestCaption(d, t.Caption)
	d.num(len(t.ColSpecs))
	for _, cs := range t.ColSpecs {
		d.str(cs.Align)
		d.float(cs.Width)
	}
	d.attr(t.Head.Attr)
	c.digestRows(d, t.Head.Rows)
	d.num(len(t.Bodies))
	for _, body := range t.Bodies {
		d.attr(body.Attr)
		d.num(body.RowHeadColumns)
		c.digestRows(d, body.HeadRows)
		c.digestRows(d, body.BodyRows)
	}
	d.attr(t.Foot.Attr)
	c.digestRows(d, t.Foot.Rows)
}
