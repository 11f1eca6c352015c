// Package writer turns a reconciliation plan back into text. The incremental
// writer copies unchanged regions byte for byte from the original buffer and
// falls back to a Renderer only where the plan says content changed.
package writer

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/docweave/docweave/pkg/ast"
)

// Renderer produces canonical text for nodes the incremental writer cannot
// copy from the original buffer. Implementations must be pure: the same node
// always renders to the same text.
type Renderer interface {
	// RenderBlock renders a single block. The result ends with a newline.
	RenderBlock(b ast.Block) (string, error)
	// RenderInline renders a single inline, with no trailing newline.
	RenderInline(in ast.Inline) (string, error)
	// RenderMeta renders front matter, including its delimiters.
	RenderMeta(meta map[string]any) (string, error)
}

// Markdown is the default Renderer. It writes canonical Pandoc-flavored
// Markdown with YAML front matter.
type Markdown struct{}

// NewMarkdown returns the canonical Markdown renderer.
func NewMarkdown() *Markdown {
	return &Markdown{}
}

// RenderMeta writes the metadata as a YAML front matter section.
func (m *Markdown) RenderMeta(meta map[string]any) (string, error) {
	if len(meta) == 0 {
		return "", nil
	}
	body, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshaling front matter: %w", err)
	}
	return "---\n" + string(body) + "---\n", nil
}

// RenderBlock writes a single block as canonical Markdown.
func (m *Markdown) RenderBlock(b ast.Block) (string, error) {
	switch n := b.(type) {
	case *ast.Plain:
		text, err := m.renderInlines(n.Inlines)
		if err != nil {
			return "", err
		}
		return text + "\n", nil
	case *ast.Para:
		text, err := m.renderInlines(n.Inlines)
		if err != nil {
			return "", err
		}
		return text + "\n", nil
	case *ast.Header:
		text, err := m.renderInlines(n.Inlines)
		if err != nil {
			return "", err
		}
		line := strings.Repeat("#", n.Level) + " " + text
		if attrs := attrString(n.Attr); attrs != "" {
			line += " " + attrs
		}
		return line + "\n", nil
	case *ast.CodeBlock:
		fence := "```"
		switch {
		case n.Attr.ID == "" && len(n.Attr.KeyVals) == 0 && len(n.Attr.Classes) == 1:
			fence += n.Attr.Classes[0]
		case attrString(n.Attr) != "":
			fence += attrString(n.Attr)
		}
		body := n.Text
		if body != "" && !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
		return fence + "\n" + body + "```\n", nil
	case *ast.RawBlock:
		body := n.Text
		if !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
		return body, nil
	case *ast.BlockQuote:
		inner, err := m.renderBlocks(n.Blocks)
		if err != nil {
			return "", err
		}
		return prefixLines(inner, "> ", ">"), nil
	case *ast.OrderedList:
		var sb strings.Builder
		start := n.Attrs.Start
		if start == 0 {
			start = 1
		}
		for i, item := range n.Items {
			marker := fmt.Sprintf("%d%s ", start+i, delimSuffix(n.Attrs.Delim))
			text, err := m.renderListItem(marker, item)
			if err != nil {
				return "", err
			}
			sb.WriteString(text)
		}
		return sb.String(), nil
	case *ast.BulletList:
		var sb strings.Builder
		for _, item := range n.Items {
			text, err := m.renderListItem("- ", item)
			if err != nil {
				return "", err
			}
			sb.WriteString(text)
		}
		return sb.String(), nil
	case *ast.DefinitionList:
		var parts []string
		for _, item := range n.Items {
			term, err := m.renderInlines(item.Term)
			if err != nil {
				return "", err
			}
			entry := term + "\n"
			for _, def := range item.Definitions {
				body, err := m.renderBlocks(def)
				if err != nil {
					return "", err
				}
				entry += indentFirst(body, ":   ", "    ")
			}
			parts = append(parts, entry)
		}
		return strings.Join(parts, "\n"), nil
	case *ast.HorizontalRule:
		return "---\n", nil
	case *ast.LineBlock:
		var sb strings.Builder
		for _, line := range n.Lines {
			text, err := m.renderInlines(line)
			if err != nil {
				return "", err
			}
			sb.WriteString("| " + text + "\n")
		}
		return sb.String(), nil
	case *ast.Div:
		inner, err := m.renderBlocks(n.Blocks)
		if err != nil {
			return "", err
		}
		open := ":::"
		if attrs := attrString(n.Attr); attrs != "" {
			open += " " + attrs
		}
		return open + "\n" + inner + ":::\n", nil
	case *ast.Figure:
		inner, err := m.renderBlocks(n.Blocks)
		if err != nil {
			return "", err
		}
		if len(n.Caption.Long) > 0 {
			caption, err := m.renderBlocks(n.Caption.Long)
			if err != nil {
				return "", err
			}
			inner += "\n" + caption
		}
		open := ":::"
		if attrs := attrString(n.Attr); attrs != "" {
			open += " " + attrs
		}
		return open + "\n" + inner + ":::\n", nil
	case *ast.CustomBlock:
		inner, err := m.renderBlocks(n.Blocks)
		if err != nil {
			return "", err
		}
		attr := n.Attr
		attr.Classes = append([]string{n.TypeName}, attr.Classes...)
		return "::: " + attrString(attr) + "\n" + inner + ":::\n", nil
	case *ast.Table:
		return m.renderTable(n)
	default:
		return "", fmt.Errorf("rendering block: unhandled kind %s", ast.BlockKind(b))
	}
}

// RenderInline writes a single inline as canonical Markdown.
func (m *Markdown) RenderInline(in ast.Inline) (string, error) {
	switch n := in.(type) {
	case *ast.Str:
		return n.Text, nil
	case *ast.Emph:
		return m.wrapInlines(n.Inlines, "*", "*")
	case *ast.Strong:
		return m.wrapInlines(n.Inlines, "**", "**")
	case *ast.Underline:
		return m.spanLike(n.Inlines, ast.Attr{Classes: []string{"underline"}})
	case *ast.Strikeout:
		return m.wrapInlines(n.Inlines, "~~", "~~")
	case *ast.Superscript:
		return m.wrapInlines(n.Inlines, "^", "^")
	case *ast.Subscript:
		return m.wrapInlines(n.Inlines, "~", "~")
	case *ast.SmallCaps:
		return m.spanLike(n.Inlines, ast.Attr{Classes: []string{"smallcaps"}})
	case *ast.Quoted:
		if n.Type == ast.SingleQuote {
			return m.wrapInlines(n.Inlines, "'", "'")
		}
		return m.wrapInlines(n.Inlines, "\"", "\"")
	case *ast.Code:
		text := "`" + n.Text + "`"
		if attrs := attrString(n.Attr); attrs != "" {
			text += attrs
		}
		return text, nil
	case *ast.Space:
		return " ", nil
	case *ast.SoftBreak:
		return "\n", nil
	case *ast.LineBreak:
		return "\\\n", nil
	case *ast.Math:
		if n.Type == ast.DisplayMath {
			return "$$" + n.Text + "$$", nil
		}
		return "$" + n.Text + "$", nil
	case *ast.RawInline:
		return n.Text, nil
	case *ast.Link:
		return m.linkLike("", n.Inlines, n.Target, n.Attr)
	case *ast.Image:
		return m.linkLike("!", n.Inlines, n.Target, n.Attr)
	case *ast.Note:
		body, err := m.renderBlocks(n.Blocks)
		if err != nil {
			return "", err
		}
		body = strings.TrimRight(body, "\n")
		body = strings.ReplaceAll(body, "\n", " ")
		return "^[" + body + "]", nil
	case *ast.Span:
		text, err := m.renderInlines(n.Inlines)
		if err != nil {
			return "", err
		}
		attrs := attrString(n.Attr)
		if attrs == "" {
			attrs = "{}"
		}
		return "[" + text + "]" + attrs, nil
	default:
		return "", fmt.Errorf("rendering inline: unhandled kind %s", ast.InlineKind(in))
	}
}

func (m *Markdown) renderInlines(list ast.Inlines) (string, error) {
	var sb strings.Builder
	for _, in := range list {
		text, err := m.RenderInline(in)
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// renderBlocks joins blocks with blank lines, the canonical block separator.
func (m *Markdown) renderBlocks(blocks ast.Blocks) (string, error) {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		text, err := m.RenderBlock(b)
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n"), nil
}

func (m *Markdown) wrapInlines(list ast.Inlines, open, closing string) (string, error) {
	text, err := m.renderInlines(list)
	if err != nil {
		return "", err
	}
	return open + text + closing, nil
}

func (m *Markdown) spanLike(list ast.Inlines, attr ast.Attr) (string, error) {
	text, err := m.renderInlines(list)
	if err != nil {
		return "", err
	}
	return "[" + text + "]" + attrString(attr), nil
}

func (m *Markdown) linkLike(prefix string, list ast.Inlines, target ast.Target, attr ast.Attr) (string, error) {
	text, err := m.renderInlines(list)
	if err != nil {
		return "", err
	}
	dest := target.URL
	if target.Title != "" {
		dest += " \"" + target.Title + "\""
	}
	out := prefix + "[" + text + "](" + dest + ")"
	if attrs := attrString(attr); attrs != "" {
		out += attrs
	}
	return out, nil
}

// renderListItem renders one list item under its marker, indenting
// continuation lines to the marker width.
func (m *Markdown) renderListItem(marker string, item ast.Blocks) (string, error) {
	body, err := m.renderBlocks(item)
	if err != nil {
		return "", err
	}
	return indentFirst(body, marker, strings.Repeat(" ", len(marker))), nil
}

// renderTable writes a pipe table. Cell content is flattened to a single
// line; the alignment row follows the column specs.
func (m *Markdown) renderTable(t *ast.Table) (string, error) {
	var sb strings.Builder

	cols := len(t.ColSpecs)
	for _, row := range t.Head.Rows {
		if len(row.Cells) > cols {
			cols = len(row.Cells)
		}
	}

	writeRow := func(row ast.Row) error {
		sb.WriteString("|")
		for i := 0; i < cols; i++ {
			text := ""
			if i < len(row.Cells) {
				rendered, err := m.renderBlocks(row.Cells[i].Blocks)
				if err != nil {
					return err
				}
				text = strings.TrimRight(rendered, "\n")
				text = strings.ReplaceAll(text, "\n", " ")
			}
			sb.WriteString(" " + text + " |")
		}
		sb.WriteString("\n")
		return nil
	}

	for _, row := range t.Head.Rows {
		if err := writeRow(row); err != nil {
			return "", err
		}
	}
	sb.WriteString("|")
	for i := 0; i < cols; i++ {
		align := ast.AlignDefault
		if i < len(t.ColSpecs) {
			align = t.ColSpecs[i].Align
		}
		switch align {
		case ast.AlignLeft:
			sb.WriteString(":---|")
		case ast.AlignCenter:
			sb.WriteString(":--:|")
		case ast.AlignRight:
			sb.WriteString("---:|")
		default:
			sb.WriteString("----|")
		}
	}
	sb.WriteString("\n")
	for _, body := range t.Bodies {
		for _, row := range body.HeadRows {
			if err := writeRow(row); err != nil {
				return "", err
			}
		}
		for _, row := range body.BodyRows {
			if err := writeRow(row); err != nil {
				return "", err
			}
		}
	}
	for _, row := range t.Foot.Rows {
		if err := writeRow(row); err != nil {
			return "", err
		}
	}

	if len(t.Caption.Long) > 0 {
		caption, err := m.renderBlocks(t.Caption.Long)
		if err != nil {
			return "", err
		}
		caption = strings.TrimRight(caption, "\n")
		caption = strings.ReplaceAll(caption, "\n", " ")
		sb.WriteString("\n: " + caption + "\n")
	}
	return sb.String(), nil
}

// attrString renders an attribute triple in braces, or "" when empty.
func attrString(a ast.Attr) string {
	if a.ID == "" && len(a.Classes) == 0 && len(a.KeyVals) == 0 {
		return ""
	}
	parts := make([]string, 0, 1+len(a.Classes)+len(a.KeyVals))
	if a.ID != "" {
		parts = append(parts, "#"+a.ID)
	}
	for _, c := range a.Classes {
		parts = append(parts, "."+c)
	}
	for _, kv := range a.KeyVals {
		parts = append(parts, kv.Key+"=\""+kv.Value+"\"")
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func delimSuffix(delim string) string {
	switch delim {
	case ast.DelimOneParen, ast.DelimTwoParens:
		return ")"
	default:
		return "."
	}
}

// prefixLines prepends prefix to each non-empty line and bare to empty ones.
func prefixLines(s, prefix, bare string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	var sb strings.Builder
	for _, line := range lines {
		if line == "" {
			sb.WriteString(bare)
		} else {
			sb.WriteString(prefix + line)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// indentFirst prepends first to the first line and rest to every following
// non-empty line.
func indentFirst(s, first, rest string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	var sb strings.Builder
	for i, line := range lines {
		switch {
		case i == 0:
			sb.WriteString(first + line)
		case line == "":
		default:
			sb.WriteString(rest + line)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
