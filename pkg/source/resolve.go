package source

import (
	"errors"
	"fmt"
)

// ErrNotVerbatim is returned by Resolve when the provenance chain includes a
// Transformed step, so the bytes cannot be reproduced from source buffers.
var ErrNotVerbatim = errors.New("source: provenance is not verbatim")

// Mapped is the result of tracing a position back to an original buffer.
type Mapped struct {
	File     FileID
	Location Location
}

// MapOffset traces an offset in the immediate text back through the mapping
// chain to a position in an original buffer.
func (si Info) MapOffset(offset int, ctx *Context) (Mapped, error) {
	switch m := si.Mapping.(type) {
	case Original:
		abs := si.Range.Start.Offset + offset
		loc, err := ctx.LocationAt(m.File, abs)
		if err != nil {
			return Mapped{}, err
		}
		return Mapped{File: m.File, Location: loc}, nil

	case Substring:
		return m.Parent.MapOffset(m.Offset+offset, ctx)

	case Concat:
		for _, p := range m.Pieces {
			if offset >= p.Offset && offset < p.Offset+p.Length {
				return p.Info.MapOffset(offset-p.Offset, ctx)
			}
		}
		// allow mapping the end position of the final piece
		if n := len(m.Pieces); n > 0 {
			last := m.Pieces[n-1]
			if offset == last.Offset+last.Length {
				return last.Info.MapOffset(last.Length, ctx)
			}
		}
		return Mapped{}, fmt.Errorf("source: offset %d outside concatenation", offset)

	case Transformed:
		for _, s := range m.Segments {
			if offset >= s.FromStart && offset < s.FromEnd {
				parentOff := s.ToStart + (offset - s.FromStart)
				if parentOff > s.ToEnd {
					parentOff = s.ToEnd
				}
				return m.Parent.MapOffset(parentOff, ctx)
			}
		}
		return Mapped{}, fmt.Errorf("source: offset %d outside transformation", offset)

	default:
		return Mapped{}, fmt.Errorf("source: unknown mapping %T", si.Mapping)
	}
}

// MapRange traces both endpoints of a range back to original positions.
func (si Info) MapRange(start, end int, ctx *Context) (Mapped, Mapped, error) {
	s, err := si.MapOffset(start, ctx)
	if err != nil {
		return Mapped{}, Mapped{}, err
	}
	e, err := si.MapOffset(end, ctx)
	if err != nil {
		return Mapped{}, Mapped{}, err
	}
	return s, e, nil
}

// Resolve returns the concrete bytes this provenance describes, copying
// Concat pieces in their recorded order. Fails with ErrNotVerbatim if the
// chain includes a Transformed step, and with ErrUnknownFile if a buffer
// was never registered.
func (si Info) Resolve(ctx *Context) ([]byte, error) {
	switch m := si.Mapping.(type) {
	case Original:
		f, err := ctx.File(m.File)
		if err != nil {
			return nil, err
		}
		start, end := si.Range.Start.Offset, si.Range.End.Offset
		if start < 0 || end > len(f.Content) || start > end {
			return nil, fmt.Errorf("source: range [%d,%d) out of bounds for %q", start, end, f.Name)
		}
		return f.Content[start:end], nil

	case Substring:
		parent, err := m.Parent.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		start := m.Offset
		end := start + si.Range.Len()
		if start < 0 || end > len(parent) || start > end {
			return nil, fmt.Errorf("source: substring [%d,%d) out of bounds", start, end)
		}
		return parent[start:end], nil

	case Concat:
		var out []byte
		for _, p := range m.Pieces {
			b, err := p.Info.Resolve(ctx)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
		return out, nil

	case Transformed:
		return nil, ErrNotVerbatim

	default:
		return nil, fmt.Errorf("source: unknown mapping %T", si.Mapping)
	}
}
