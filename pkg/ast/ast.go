// Package ast defines the document tree: a Pandoc-style AST of blocks and
// inlines where every node carries provenance back to source text. Nodes are
// immutable once constructed; consumers only ever read them.
package ast

import (
	"encoding/json"

	"github.com/docweave/docweave/pkg/source"
)

// Block is a block-level node. The set of implementations is closed.
type Block interface {
	Source() source.Info
	isBlock()
}

// Inline is an inline-level node. The set of implementations is closed.
type Inline interface {
	Source() source.Info
	isInline()
}

// Blocks is a block sequence with kind-tagged JSON encoding.
type Blocks []Block

// Inlines is an inline sequence with kind-tagged JSON encoding.
type Inlines []Inline

// Document is a complete parsed document: YAML-shaped front matter plus the
// block sequence.
type Document struct {
	Meta   map[string]any `json:"meta,omitempty"`
	Blocks Blocks         `json:"blocks"`
}

// KeyVal is one ordered attribute pair.
type KeyVal struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Attr is the identifier/classes/key-values triple carried by attributed
// nodes. KeyVals keep their order.
type Attr struct {
	ID      string   `json:"id,omitempty"`
	Classes []string `json:"classes,omitempty"`
	KeyVals []KeyVal `json:"keyvals,omitempty"`
}

// List numbering styles and delimiters for ordered lists.
const (
	StyleDefault    = "Default"
	StyleDecimal    = "Decimal"
	StyleLowerRoman = "LowerRoman"
	StyleUpperRoman = "UpperRoman"
	StyleLowerAlpha = "LowerAlpha"
	StyleUpperAlpha = "UpperAlpha"

	DelimDefault   = "Default"
	DelimPeriod    = "Period"
	DelimOneParen  = "OneParen"
	DelimTwoParens = "TwoParens"
)

// ListAttrs is the numbering of an ordered list.
type ListAttrs struct {
	Start int    `json:"start"`
	Style string `json:"style"`
	Delim string `json:"delim"`
}

// Definition is one term/definitions entry of a definition list.
type Definition struct {
	Term        Inlines  `json:"term"`
	Definitions []Blocks `json:"definitions"`
}

// Target is a link or image destination.
type Target struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// Quote and math variants.
const (
	SingleQuote = "SingleQuote"
	DoubleQuote = "DoubleQuote"

	InlineMath  = "InlineMath"
	DisplayMath = "DisplayMath"
)

// Plain is an unwrapped inline sequence.
type Plain struct {
	Inlines Inlines     `json:"inlines"`
	Src     source.Info `json:"src"`
}

// Para is a paragraph.
type Para struct {
	Inlines Inlines     `json:"inlines"`
	Src     source.Info `json:"src"`
}

// LineBlock is a sequence of hard lines, each its own inline run.
type LineBlock struct {
	Lines []Inlines   `json:"lines"`
	Src   source.Info `json:"src"`
}

// CodeBlock is a fenced or indented code block.
type CodeBlock struct {
	Attr Attr        `json:"attr"`
	Text string      `json:"text"`
	Src  source.Info `json:"src"`
}

// RawBlock is verbatim text in a named target format.
type RawBlock struct {
	Format string      `json:"format"`
	Text   string      `json:"text"`
	Src    source.Info `json:"src"`
}

// BlockQuote wraps a nested block sequence.
type BlockQuote struct {
	Blocks Blocks      `json:"blocks"`
	Src    source.Info `json:"src"`
}

// OrderedList is a numbered list.
type OrderedList struct {
	Attrs ListAttrs   `json:"attrs"`
	Items []Blocks    `json:"items"`
	Src   source.Info `json:"src"`
}

// BulletList is an unnumbered list.
type BulletList struct {
	Items []Blocks    `json:"items"`
	Src   source.Info `json:"src"`
}

// DefinitionList is a list of term/definitions entries.
type DefinitionList struct {
	Items []Definition `json:"items"`
	Src   source.Info  `json:"src"`
}

// Header is a section heading.
type Header struct {
	Level   int         `json:"level"`
	Attr    Attr        `json:"attr"`
	Inlines Inlines     `json:"inlines"`
	Src     source.Info `json:"src"`
}

// HorizontalRule is a thematic break.
type HorizontalRule struct {
	Src source.Info `json:"src"`
}

// Figure is captioned block content.
type Figure struct {
	Attr    Attr        `json:"attr"`
	Caption Caption     `json:"caption"`
	Blocks  Blocks      `json:"blocks"`
	Src     source.Info `json:"src"`
}

// Div is a generic attributed container.
type Div struct {
	Attr   Attr        `json:"attr"`
	Blocks Blocks      `json:"blocks"`
	Src    source.Info `json:"src"`
}

// CustomBlock is an extension node: a named construct with attributed block
// content and an opaque payload the engine compares but never interprets.
type CustomBlock struct {
	TypeName string          `json:"typename"`
	Attr     Attr            `json:"attr"`
	Blocks   Blocks          `json:"blocks"`
	Data     json.RawMessage `json:"data,omitempty"`
	Src      source.Info     `json:"src"`
}

// Str is a text run.
type Str struct {
	Text string      `json:"text"`
	Src  source.Info `json:"src"`
}

// Emph is emphasized content.
type Emph struct {
	Inlines Inlines     `json:"inlines"`
	Src     source.Info `json:"src"`
}

// Strong is strongly emphasized content.
type Strong struct {
	Inlines Inlines     `json:"inlines"`
	Src     source.Info `json:"src"`
}

// Underline is underlined content.
type Underline struct {
	Inlines Inlines     `json:"inlines"`
	Src     source.Info `json:"src"`
}

// Strikeout is struck-out content.
type Strikeout struct {
	Inlines Inlines     `json:"inlines"`
	Src     source.Info `json:"src"`
}

// Superscript content.
type Superscript struct {
	Inlines Inlines     `json:"inlines"`
	Src     source.Info `json:"src"`
}

// Subscript content.
type Subscript struct {
	Inlines Inlines     `json:"inlines"`
	Src     source.Info `json:"src"`
}

// SmallCaps content.
type SmallCaps struct {
	Inlines Inlines     `json:"inlines"`
	Src     source.Info `json:"src"`
}

// Quoted is quoted content with a quote style.
type Quoted struct {
	Type    string      `json:"type"`
	Inlines Inlines     `json:"inlines"`
	Src     source.Info `json:"src"`
}

// Code is inline code.
type Code struct {
	Attr Attr        `json:"attr"`
	Text string      `json:"text"`
	Src  source.Info `json:"src"`
}

// Space is an inter-word space.
type Space struct {
	Src source.Info `json:"src"`
}

// SoftBreak is a soft line break.
type SoftBreak struct {
	Src source.Info `json:"src"`
}

// LineBreak is a hard line break.
type LineBreak struct {
	Src source.Info `json:"src"`
}

// Math is TeX math content.
type Math struct {
	Type string      `json:"type"`
	Text string      `json:"text"`
	Src  source.Info `json:"src"`
}

// RawInline is verbatim inline text in a named target format.
type RawInline struct {
	Format string      `json:"format"`
	Text   string      `json:"text"`
	Src    source.Info `json:"src"`
}

// Link is a hyperlink around inline content.
type Link struct {
	Attr    Attr        `json:"attr"`
	Inlines Inlines     `json:"inlines"`
	Target  Target      `json:"target"`
	Src     source.Info `json:"src"`
}

// Image is an image with alt-text inline content.
type Image struct {
	Attr    Attr        `json:"attr"`
	Inlines Inlines     `json:"inlines"`
	Target  Target      `json:"target"`
	Src     source.Info `json:"src"`
}

// Note is a footnote holding block content.
type Note struct {
	Blocks Blocks      `json:"blocks"`
	Src    source.Info `json:"src"`
}

// Span is a generic attributed inline container.
type Span struct {
	Attr    Attr        `json:"attr"`
	Inlines Inlines     `json:"inlines"`
	Src     source.Info `json:"src"`
}

func (n *Plain) Source() source.Info          { return n.Src }
func (n *Para) Source() source.Info           { return n.Src }
func (n *LineBlock) Source() source.Info      { return n.Src }
func (n *CodeBlock) Source() source.Info      { return n.Src }
func (n *RawBlock) Source() source.Info       { return n.Src }
func (n *BlockQuote) Source() source.Info     { return n.Src }
func (n *OrderedList) Source() source.Info    { return n.Src }
func (n *BulletList) Source() source.Info     { return n.Src }
func (n *DefinitionList) Source() source.Info { return n.Src }
func (n *Header) Source() source.Info         { return n.Src }
func (n *HorizontalRule) Source() source.Info { return n.Src }
func (n *Table) Source() source.Info          { return n.Src }
func (n *Figure) Source() source.Info         { return n.Src }
func (n *Div) Source() source.Info            { return n.Src }
func (n *CustomBlock) Source() source.Info    { return n.Src }

func (*Plain) isBlock()          {}
func (*Para) isBlock()           {}
func (*LineBlock) isBlock()      {}
func (*CodeBlock) isBlock()      {}
func (*RawBlock) isBlock()       {}
func (*BlockQuote) isBlock()     {}
func (*OrderedList) isBlock()    {}
func (*BulletList) isBlock()     {}
func (*DefinitionList) isBlock() {}
func (*Header) isBlock()         {}
func (*HorizontalRule) isBlock() {}
func (*Table) isBlock()          {}
func (*Figure) isBlock()         {}
func (*Div) isBlock()            {}
func (*CustomBlock) isBlock()    {}

func (n *Str) Source() source.Info         { return n.Src }
func (n *Emph) Source() source.Info        { return n.Src }
func (n *Strong) Source() source.Info      { return n.Src }
func (n *Underline) Source() source.Info   { return n.Src }
func (n *Strikeout) Source() source.Info   { return n.Src }
func (n *Superscript) Source() source.Info { return n.Src }
func (n *Subscript) Source() source.Info   { return n.Src }
func (n *SmallCaps) Source() source.Info   { return n.Src }
func (n *Quoted) Source() source.Info      { return n.Src }
func (n *Code) Source() source.Info        { return n.Src }
func (n *Space) Source() source.Info       { return n.Src }
func (n *SoftBreak) Source() source.Info   { return n.Src }
func (n *LineBreak) Source() source.Info   { return n.Src }
func (n *Math) Source() source.Info        { return n.Src }
func (n *RawInline) Source() source.Info   { return n.Src }
func (n *Link) Source() source.Info        { return n.Src }
func (n *Image) Source() source.Info       { return n.Src }
func (n *Note) Source() source.Info        { return n.Src }
func (n *Span) Source() source.Info        { return n.Src }

func (*Str) isInline()         {}
func (*Emph) isInline()        {}
func (*Strong) isInline()      {}
func (*Underline) isInline()   {}
func (*Strikeout) isInline()   {}
func (*Superscript) isInline() {}
func (*Subscript) isInline()   {}
func (*SmallCaps) isInline()   {}
func (*Quoted) isInline()      {}
func (*Code) isInline()        {}
func (*Space) isInline()       {}
func (*SoftBreak) isInline()   {}
func (*LineBreak) isInline()   {}
func (*Math) isInline()        {}
func (*RawInline) isInline()   {}
func (*Link) isInline()        {}
func (*Image) isInline()       {}
func (*Note) isInline()        {}
func (*Span) isInline()        {}

// BlockKind returns the discriminant name of a block node.
func BlockKind(b Block) string {
	switch b.(type) {
	case *Plain:
		return "Plain"
	case *Para:
		return "Para"
	case *LineBlock:
		return "LineBlock"
	case *CodeBlock:
		return "CodeBlock"
	case *RawBlock:
		return "RawBlock"
	case *BlockQuote:
		return "BlockQuote"
	case *OrderedList:
		return "OrderedList"
	case *BulletList:
		return "BulletList"
	case *DefinitionList:
		return "DefinitionList"
	case *Header:
		return "Header"
	case *HorizontalRule:
		return "HorizontalRule"
	case *Table:
		return "Table"
	case *Figure:
		return "Figure"
	case *Div:
		return "Div"
	case *CustomBlock:
		return "Custom"
	default:
		return ""
	}
}

// InlineKind returns the discriminant name of an inline node.
func InlineKind(in Inline) string {
	switch in.(type) {
	case *Str:
		return "Str"
	case *Emph:
		return "Emph"
	case *Strong:
		return "Strong"
	case *Underline:
		return "Underline"
	case *Strikeout:
		return "Strikeout"
	case *Superscript:
		return "Superscript"
	case *Subscript:
		return "Subscript"
	case *SmallCaps:
		return "SmallCaps"
	case *Quoted:
		return "Quoted"
	case *Code:
		return "Code"
	case *Space:
		return "Space"
	case *SoftBreak:
		return "SoftBreak"
	case *LineBreak:
		return "LineBreak"
	case *Math:
		return "Math"
	case *RawInline:
		return "RawInline"
	case *Link:
		return "Link"
	case *Image:
		return "Image"
	case *Note:
		return "Note"
	case *Span:
		return "Span"
	default:
		return ""
	}
}
