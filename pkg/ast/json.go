package ast

import (
	"encoding/json"
	"fmt"
)

// Block and inline sequences encode as arrays of kind-tagged envelopes:
// {"t": "Para", "c": {...}}. The envelope makes documents self-describing
// so they can be exchanged with external filters and the CLI.

type nodeEnvelope struct {
	T string          `json:"t"`
	C json.RawMessage `json:"c"`
}

// MarshalJSON implements json.Marshaler.
func (bs Blocks) MarshalJSON() ([]byte, error) {
	if bs == nil {
		return []byte("null"), nil
	}
	raw := make([]nodeEnvelope, 0, len(bs))
	for _, b := range bs {
		env, err := marshalBlock(b)
		if err != nil {
			return nil, err
		}
		raw = append(raw, env)
	}
	return json.Marshal(raw)
}

// UnmarshalJSON implements json.Unmarshaler.
func (bs *Blocks) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*bs = nil
		return nil
	}
	var raw []nodeEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Blocks, 0, len(raw))
	for _, env := range raw {
		b, err := unmarshalBlock(env)
		if err != nil {
			return err
		}
		out = append(out, b)
	}
	*bs = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (ins Inlines) MarshalJSON() ([]byte, error) {
	if ins == nil {
		return []byte("null"), nil
	}
	raw := make([]nodeEnvelope, 0, len(ins))
	for _, in := range ins {
		env, err := marshalInline(in)
		if err != nil {
			return nil, err
		}
		raw = append(raw, env)
	}
	return json.Marshal(raw)
}

// UnmarshalJSON implements json.Unmarshaler.
func (ins *Inlines) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*ins = nil
		return nil
	}
	var raw []nodeEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Inlines, 0, len(raw))
	for _, env := range raw {
		in, err := unmarshalInline(env)
		if err != nil {
			return err
		}
		out = append(out, in)
	}
	*ins = out
	return nil
}

func marshalBlock(b Block) (nodeEnvelope, error) {
	kind := BlockKind(b)
	if kind == "" {
		return nodeEnvelope{}, fmt.Errorf("ast: cannot marshal block %T", b)
	}
	c, err := json.Marshal(b)
	if err != nil {
		return nodeEnvelope{}, err
	}
	return nodeEnvelope{T: kind, C: c}, nil
}

func marshalInline(in Inline) (nodeEnvelope, error) {
	kind := InlineKind(in)
	if kind == "" {
		return nodeEnvelope{}, fmt.Errorf("ast: cannot marshal inline %T", in)
	}
	c, err := json.Marshal(in)
	if err != nil {
		return nodeEnvelope{}, err
	}
	return nodeEnvelope{T: kind, C: c}, nil
}

func unmarshalBlock(env nodeEnvelope) (Block, error) {
	var b Block
	switch env.T {
	case "Plain":
		b = &Plain{}
	case "Para":
		b = &Para{}
	case "LineBlock":
		b = &LineBlock{}
	case "CodeBlock":
		b = &CodeBlock{}
	case "RawBlock":
		b = &RawBlock{}
	case "BlockQuote":
		b = &BlockQuote{}
	case "OrderedList":
		b = &OrderedList{}
	case "BulletList":
		b = &BulletList{}
	case "DefinitionList":
		b = &DefinitionList{}
	case "Header":
		b = &Header{}
	case "HorizontalRule":
		b = &HorizontalRule{}
	case "Table":
		b = &Table{}
	case "Figure":
		b = &Figure{}
	case "Div":
		b = &Div{}
	case "Custom":
		b = &CustomBlock{}
	default:
		return nil, fmt.Errorf("ast: unknown block kind %q", env.T)
	}
	if err := json.Unmarshal(env.C, b); err != nil {
		return nil, err
	}
	return b, nil
}

func unmarshalInline(env nodeEnvelope) (Inline, error) {
	var in Inline
	switch env.T {
	case "Str":
		in = &Str{}
	case "Emph":
		in = &Emph{}
	case "Strong":
		in = &Strong{}
	case "Underline":
		in = &Underline{}
	case "Strikeout":
		in = &Strikeout{}
	case "Superscript":
		in = &Superscript{}
	case "Subscript":
		in = &Subscript{}
	case "SmallCaps":
		in = &SmallCaps{}
	case "Quoted":
		in = &Quoted{}
	case "Code":
		in = &Code{}
	case "Space":
		in = &Space{}
	case "SoftBreak":
		in = &SoftBreak{}
	case "LineBreak":
		in = &LineBreak{}
	case "Math":
		in = &Math{}
	case "RawInline":
		in = &RawInline{}
	case "Link":
		in = &Link{}
	case "Image":
		in = &Image{}
	case "Note":
		in = &Note{}
	case "Span":
		in = &Span{}
	default:
		return nil, fmt.Errorf("ast: unknown inline kind %q", env.T)
	}
	if err := json.Unmarshal(env.C, in); err != nil {
		return nil, err
	}
	return in, nil
}
