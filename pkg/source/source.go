// Package source tracks provenance: the mapping from document nodes back to
// byte ranges in named source buffers, through substring extraction,
// concatenation, and text transformation.
package source

// FileID identifies a buffer registered in a Context.
type FileID int

// Location is a position in source text. Offset is a byte offset; Line and
// Column are 0-indexed (Column counts characters, not bytes).
type Location struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range is a half-open [Start, End) span of source text.
// Invariant: Start.Offset <= End.Offset. Zero-length ranges are legal.
type Range struct {
	Start Location `json:"start"`
	End   Location `json:"end"`
}

// Len returns the byte length of the range.
func (r Range) Len() int {
	return r.End.Offset - r.Start.Offset
}

// OffsetRange builds a Range from byte offsets only. Line and column are
// left zero; use Context.LocationAt to fill them in when needed.
func OffsetRange(start, end int) Range {
	return Range{
		Start: Location{Offset: start},
		End:   Location{Offset: end},
	}
}

// Info records where a piece of text came from: its range in the immediate
// text plus the mapping back to its source.
type Info struct {
	Range   Range
	Mapping Mapping
}

// Mapping describes how text relates to its source. The set of mappings is
// closed: Original, Substring, Concat, Transformed.
type Mapping interface {
	mapping()
}

// Original is a direct position in a registered source buffer.
type Original struct {
	File FileID
}

// Substring is a carve-out from a parent provenance: the text is the
// parent's bytes starting at Offset.
type Substring struct {
	Parent *Info
	Offset int
}

// Concat is text assembled from multiple source pieces in order.
type Concat struct {
	Pieces []Piece
}

// Piece is one fragment of a Concat.
type Piece struct {
	Info   Info
	Offset int // start offset within the concatenated text
	Length int
}

// Transformed is text derived from a parent but not byte-identical to it
// (case-folded, escaped, ...). Segments map ranges of the transformed text
// to ranges of the parent text.
type Transformed struct {
	Parent   *Info
	Segments []Segment
}

// Segment maps [FromStart, FromEnd) in transformed text to
// [ToStart, ToEnd) in the parent text.
type Segment struct {
	FromStart int `json:"from_start"`
	FromEnd   int `json:"from_end"`
	ToStart   int `json:"to_start"`
	ToEnd     int `json:"to_end"`
}

func (Original) mapping()    {}
func (Substring) mapping()   {}
func (Concat) mapping()      {}
func (Transformed) mapping() {}

// NewOriginal builds provenance for a range of a registered buffer.
func NewOriginal(file FileID, r Range) Info {
	return Info{Range: r, Mapping: Original{File: file}}
}

// FromOffsets builds original-file provenance from byte offsets.
func FromOffsets(file FileID, start, end int) Info {
	return NewOriginal(file, OffsetRange(start, end))
}

// NewSubstring builds provenance for parent[start:end].
func NewSubstring(parent Info, start, end int) Info {
	return Info{
		Range:   OffsetRange(0, end-start),
		Mapping: Substring{Parent: &parent, Offset: start},
	}
}

// NewConcat builds provenance for text assembled from parts, in order.
// Each part contributes its full range length.
func NewConcat(parts ...Info) Info {
	pieces := make([]Piece, 0, len(parts))
	total := 0
	for _, p := range parts {
		n := p.Range.Len()
		pieces = append(pieces, Piece{Info: p, Offset: total, Length: n})
		total += n
	}
	return Info{
		Range:   OffsetRange(0, total),
		Mapping: Concat{Pieces: pieces},
	}
}

// NewTransformed builds provenance for text derived from parent via the
// given segment mapping.
func NewTransformed(parent Info, segments []Segment) Info {
	total := 0
	for _, s := range segments {
		if s.FromEnd > total {
			total = s.FromEnd
		}
	}
	return Info{
		Range:   OffsetRange(0, total),
		Mapping: Transformed{Parent: &parent, Segments: segments},
	}
}

// Combine merges two provenance values into a Concat that preserves the
// full ancestry of both operands. Used when a synthesized node must still
// report a queryable location.
func Combine(a, b Info) Info {
	return NewConcat(a, b)
}

// StartOffset returns the range's start byte offset in the immediate text.
func (si Info) StartOffset() int { return si.Range.Start.Offset }

// EndOffset returns the range's end byte offset in the immediate text.
func (si Info) EndOffset() int { return si.Range.End.Offset }

// Verbatim reports whether the provenance chain contains no Transformed
// step, i.e. the bytes can be reproduced exactly from registered buffers.
func (si Info) Verbatim() bool {
	switch m := si.Mapping.(type) {
	case Original:
		return true
	case Substring:
		return m.Parent.Verbatim()
	case Concat:
		for _, p := range m.Pieces {
			if !p.Info.Verbatim() {
				return false
			}
		}
		return true
	case Transformed:
		return false
	default:
		return false
	}
}
