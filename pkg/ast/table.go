package ast

import "github.com/docweave/docweave/pkg/source"

// Cell alignments.
const (
	AlignDefault = "AlignDefault"
	AlignLeft    = "AlignLeft"
	AlignCenter  = "AlignCenter"
	AlignRight   = "AlignRight"
)

// Caption is the short/long caption pair carried by tables and figures.
// Short may be nil when no abbreviated caption exists.
type Caption struct {
	Short Inlines `json:"short,omitempty"`
	Long  Blocks  `json:"long,omitempty"`
}

// ColSpec describes one table column. Width 0 means default sizing;
// otherwise it is a fraction of the text width.
type ColSpec struct {
	Align string  `json:"align"`
	Width float64 `json:"width,omitempty"`
}

// Cell is one table cell. RowSpan and ColSpan are at least 1.
type Cell struct {
	Attr    Attr        `json:"attr"`
	Align   string      `json:"align"`
	RowSpan int         `json:"rowspan"`
	ColSpan int         `json:"colspan"`
	Blocks  Blocks      `json:"blocks"`
	Src     source.Info `json:"src"`
}

// Row is one table row.
type Row struct {
	Attr  Attr        `json:"attr"`
	Cells []Cell      `json:"cells"`
	Src   source.Info `json:"src"`
}

// TableHead is the header region of a table.
type TableHead struct {
	Attr Attr        `json:"attr"`
	Rows []Row       `json:"rows"`
	Src  source.Info `json:"src"`
}

// TableBody is one body segment: optional intermediate head rows plus body
// rows, with the leading RowHeadColumns columns acting as row headers.
type TableBody struct {
	Attr           Attr        `json:"attr"`
	RowHeadColumns int         `json:"rowheadcolumns"`
	HeadRows       []Row       `json:"headrows"`
	BodyRows       []Row       `json:"bodyrows"`
	Src            source.Info `json:"src"`
}

// TableFoot is the footer region of a table.
type TableFoot struct {
	Attr Attr        `json:"attr"`
	Rows []Row       `json:"rows"`
	Src  source.Info `json:"src"`
}

// Table is a full table: caption, column specs, one header region, any
// number of body segments, one footer region.
type Table struct {
	Attr     Attr        `json:"attr"`
	Caption  Caption     `json:"caption"`
	ColSpecs []ColSpec   `json:"colspecs"`
	Head     TableHead   `json:"head"`
	Bodies   []TableBody `json:"bodies"`
	Foot     TableFoot   `json:"foot"`
	Src      source.Info `json:"src"`
}
