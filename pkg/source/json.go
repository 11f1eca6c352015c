package source

import (
	"encoding/json"
	"fmt"
)

// JSON encoding for Info uses a kind-tagged envelope so provenance can
// travel with serialized documents and plans.

type infoJSON struct {
	Range    Range            `json:"range"`
	Kind     string           `json:"kind,omitempty"`
	File     *FileID          `json:"file,omitempty"`
	Parent   *json.RawMessage `json:"parent,omitempty"`
	Offset   *int             `json:"offset,omitempty"`
	Pieces   []pieceJSON      `json:"pieces,omitempty"`
	Segments []Segment        `json:"segments,omitempty"`
}

type pieceJSON struct {
	Info   Info `json:"info"`
	Offset int  `json:"offset"`
	Length int  `json:"length"`
}

// MarshalJSON implements json.Marshaler.
func (si Info) MarshalJSON() ([]byte, error) {
	out := infoJSON{Range: si.Range}
	switch m := si.Mapping.(type) {
	case Original:
		out.Kind = "original"
		f := m.File
		out.File = &f
	case Substring:
		out.Kind = "substring"
		raw, err := json.Marshal(m.Parent)
		if err != nil {
			return nil, err
		}
		msg := json.RawMessage(raw)
		out.Parent = &msg
		off := m.Offset
		out.Offset = &off
	case Concat:
		out.Kind = "concat"
		for _, p := range m.Pieces {
			out.Pieces = append(out.Pieces, pieceJSON{Info: p.Info, Offset: p.Offset, Length: p.Length})
		}
	case Transformed:
		out.Kind = "transformed"
		raw, err := json.Marshal(m.Parent)
		if err != nil {
			return nil, err
		}
		msg := json.RawMessage(raw)
		out.Parent = &msg
		out.Segments = m.Segments
	case nil:
		// zero Info: no mapping recorded
	default:
		return nil, fmt.Errorf("source: cannot marshal mapping %T", si.Mapping)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (si *Info) UnmarshalJSON(data []byte) error {
	var in infoJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	si.Range = in.Range
	switch in.Kind {
	case "":
		si.Mapping = nil
	case "original":
		var f FileID
		if in.File != nil {
			f = *in.File
		}
		si.Mapping = Original{File: f}
	case "substring":
		if in.Parent == nil || in.Offset == nil {
			return fmt.Errorf("source: substring mapping missing parent or offset")
		}
		var parent Info
		if err := json.Unmarshal(*in.Parent, &parent); err != nil {
			return err
		}
		si.Mapping = Substring{Parent: &parent, Offset: *in.Offset}
	case "concat":
		pieces := make([]Piece, 0, len(in.Pieces))
		for _, p := range in.Pieces {
			pieces = append(pieces, Piece{Info: p.Info, Offset: p.Offset, Length: p.Length})
		}
		si.Mapping = Concat{Pieces: pieces}
	case "transformed":
		if in.Parent == nil {
			return fmt.Errorf("source: transformed mapping missing parent")
		}
		var parent Info
		if err := json.Unmarshal(*in.Parent, &parent); err != nil {
			return err
		}
		si.Mapping = Transformed{Parent: &parent, Segments: in.Segments}
	default:
		return fmt.Errorf("source: unknown mapping kind %q", in.Kind)
	}
	return nil
}
