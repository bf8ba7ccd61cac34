package moviesets

import (
	"strconv"
)

// ColumnKind tells a renderer how to show a column's values.
type ColumnKind int

const (
	TextColumn ColumnKind = iota
	CheckColumn
)

// Value is a rendered cell. The zero Value is the blank cell.
type Value struct {
	Text  string
	Check bool
	// Set is false for blank cells so a check column can tell "no" from "n/a".
	Set bool
}

// Blank reports whether the cell has no content.
func (v Value) Blank() bool {
	return !v.Set
}

func text(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{Text: s, Set: true}
}

func check(b bool) Value {
	return Value{Check: b, Set: true}
}

// Extractor derives a cell from a node. Extractors are pure.
type Extractor func(Node) Value

// Column describes one table column.
type Column struct {
	Title     string
	Key       string
	Kind      ColumnKind
	MinWidth  int
	Resizable bool

	extractors map[NodeKind]Extractor
}

// Value returns the cell for n, blank when the column has nothing for the
// node's kind.
func (c Column) Value(n Node) Value {
	fn, ok := c.extractors[n.Kind]
	if !ok {
		return Value{}
	}
	return fn(n)
}

// Supports reports whether the column has an extractor for kind.
func (c Column) Supports(kind NodeKind) bool {
	_, ok := c.extractors[kind]
	return ok
}

// TableFormat is the ordered list of columns for the movie set tree.
type TableFormat struct {
	Columns []Column
}

// Column returns the column with the given key.
func (f *TableFormat) Column(key string) (Column, bool) {
	for _, c := range f.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// Row returns the values of all columns for n.
func (f *TableFormat) Row(n Node) []Value {
	row := make([]Value, len(f.Columns))
	for i, c := range f.Columns {
		row[i] = c.Value(n)
	}
	return row
}

const bytesPerMiB = 1024 * 1024

// NewTableFormat returns the movie set table: title, movie count, rating,
// format, file size, nfo, images and watched.
func NewTableFormat() *TableFormat {
	return &TableFormat{Columns: []Column{
		{
			Title: "Title", Key: "title", Kind: TextColumn, MinWidth: 20, Resizable: true,
			extractors: map[NodeKind]Extractor{
				MovieSetNode: func(n Node) Value { return text(n.Set.Title) },
				MovieNode:    func(n Node) Value { return text(n.Movie.Title) },
			},
		},
		{
			Title: "Movies", Key: "movies", Kind: TextColumn, MinWidth: 6,
			extractors: map[NodeKind]Extractor{
				MovieSetNode: func(n Node) Value {
					if c := n.Set.MovieCount(); c > 0 {
						return text(strconv.Itoa(c))
					}
					return Value{}
				},
			},
		},
		{
			Title: "Rating", Key: "rating", Kind: TextColumn, MinWidth: 6,
			extractors: map[NodeKind]Extractor{
				MovieNode: func(n Node) Value {
					if r := n.Movie.Rating.Value; r > 0 {
						return text(strconv.FormatFloat(float64(r), 'f', 1, 32))
					}
					return Value{}
				},
			},
		},
		{
			Title: "Format", Key: "format", Kind: TextColumn, MinWidth: 6,
			extractors: map[NodeKind]Extractor{
				MovieNode: func(n Node) Value { return text(n.Movie.VideoFormat()) },
			},
		},
		{
			Title: "Size", Key: "size", Kind: TextColumn, MinWidth: 8,
			extractors: map[NodeKind]Extractor{
				MovieNode: func(n Node) Value {
					return text(strconv.FormatInt(n.Movie.VideoFilesize()/bytesPerMiB, 10) + " M")
				},
			},
		},
		{
			Title: "NFO", Key: "nfo", Kind: CheckColumn, MinWidth: 3,
			extractors: map[NodeKind]Extractor{
				MovieNode: func(n Node) Value { return check(n.Movie.HasNfo()) },
			},
		},
		{
			Title: "Images", Key: "images", Kind: CheckColumn, MinWidth: 3,
			extractors: map[NodeKind]Extractor{
				MovieSetNode: func(n Node) Value { return check(n.Set.HasImages()) },
				MovieNode:    func(n Node) Value { return check(n.Movie.HasImages()) },
			},
		},
		{
			Title: "Watched", Key: "watched", Kind: CheckColumn, MinWidth: 3,
			extractors: map[NodeKind]Extractor{
				MovieSetNode: func(n Node) Value { return check(n.Set.Watched()) },
				MovieNode:    func(n Node) Value { return check(n.Movie.Watched) },
			},
		},
	}}
}
