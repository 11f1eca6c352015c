package source

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"
)

// ErrUnknownFile is returned when provenance refers to a buffer the caller
// never registered. This is a caller contract violation, not a
// reconciliation error.
var ErrUnknownFile = errors.New("source: unknown file")

// Context is a registry of named, immutable source buffers. All provenance
// resolution happens against a Context.
type Context struct {
	files []*File
}

// File is a registered source buffer with a precomputed line index.
type File struct {
	Name    string
	Content []byte

	lineBreaks []int // byte offsets of '\n'
}

// NewContext returns an empty source context.
func NewContext() *Context {
	return &Context{}
}

// AddFile registers a buffer and returns its ID. Content is not copied;
// callers must not mutate it afterwards.
func (c *Context) AddFile(name string, content []byte) FileID {
	id := FileID(len(c.files))
	f := &File{Name: name, Content: content}
	for i, b := range content {
		if b == '\n' {
			f.lineBreaks = append(f.lineBreaks, i)
		}
	}
	c.files = append(c.files, f)
	return id
}

// File looks up a registered buffer.
func (c *Context) File(id FileID) (*File, error) {
	if id < 0 || int(id) >= len(c.files) {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownFile, id)
	}
	return c.files[id], nil
}

// LocationAt converts a byte offset in the given file to a full Location.
func (c *Context) LocationAt(id FileID, offset int) (Location, error) {
	f, err := c.File(id)
	if err != nil {
		return Location{}, err
	}
	return f.LocationAt(offset)
}

// LocationAt converts a byte offset to a Location using the line index.
// Runs in O(log lines) via binary search.
func (f *File) LocationAt(offset int) (Location, error) {
	if offset > len(f.Content) {
		return Location{}, fmt.Errorf("source: offset %d beyond %q (%d bytes)", offset, f.Name, len(f.Content))
	}
	// line i starts just past lineBreaks[i-1]
	line := sort.SearchInts(f.lineBreaks, offset)
	lineStart := 0
	if line > 0 {
		lineStart = f.lineBreaks[line-1] + 1
	}
	// column counts characters, not bytes; invalid bytes count as one
	col := 0
	for i := lineStart; i < offset; {
		_, size := utf8.DecodeRune(f.Content[i:])
		i += size
		col++
	}
	return Location{Offset: offset, Line: line, Column: col}, nil
}
