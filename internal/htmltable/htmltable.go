// Package htmltable exposes an opening-times section of an HTML page as a
// render.Target.
package htmltable

import (
	"fmt"
	"io"
	"strings"

	"github.com/username/opening-times/internal/render"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const dataPrefix = "data-"

// Document is a parsed HTML page or body fragment
type Document struct {
	nodes []*html.Node
}

// Parse reads an HTML document. With fragment set the input is parsed as
// body content and rendered back without the html/head/body wrapper.
func Parse(r io.Reader, fragment bool) (*Document, error) {
	if !fragment {
		root, err := html.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("failed to parse html: %w", err)
		}
		return &Document{nodes: []*html.Node{root}}, nil
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(r, body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html fragment: %w", err)
	}
	return &Document{nodes: nodes}, nil
}

// Render writes the document back out
func (d *Document) Render(w io.Writer) error {
	for _, n := range d.nodes {
		if err := html.Render(w, n); err != nil {
			return fmt.Errorf("failed to render html: %w", err)
		}
	}
	return nil
}

// Section returns the first element carrying class, or nil
func (d *Document) Section(class string) *Section {
	for _, n := range d.nodes {
		if found := findByClass(n, class); found != nil {
			return &Section{node: found}
		}
	}
	return nil
}

// Section is the element that hosts the opening-times table
type Section struct {
	node *html.Node
}

// Dataset returns the section's data-* attributes keyed without the prefix
func (s *Section) Dataset() map[string]string {
	ds := make(map[string]string)
	for _, a := range s.node.Attr {
		if strings.HasPrefix(a.Key, dataPrefix) {
			ds[strings.TrimPrefix(a.Key, dataPrefix)] = a.Val
		}
	}
	return ds
}

// Table binds the table and note elements inside the section. Either may be
// absent.
func (s *Section) Table(tableClass, noteClass string) *Table {
	t := &Table{}
	if table := findByClass(s.node, tableClass); table != nil {
		rows := findAll(table, atom.Tr)
		if len(rows) > 1 {
			t.rows = rows[1:] // skip header row
		}
	}
	t.note = findByClass(s.node, noteClass)
	return t
}

// Table implements render.Target over html nodes
type Table struct {
	rows []*html.Node
	note *html.Node
}

var _ render.Target = (*Table)(nil)

func (t *Table) Rows() []render.Row {
	rows := make([]render.Row, len(t.rows))
	for i, tr := range t.rows {
		cells := cellsOf(tr)
		var row render.Row
		if len(cells) > 0 {
			row.Day = strings.TrimSpace(textContent(cells[0]))
		}
		if len(cells) > 2 {
			row.Open = textContent(cells[1])
			row.Close = textContent(cells[2])
			row.HasTimes = true
		}
		rows[i] = row
	}
	return rows
}

func (t *Table) SetClosed(index int, mark render.ClosedMark) {
	if index < 0 || index >= len(t.rows) {
		return
	}
	tr := t.rows[index]
	cells := cellsOf(tr)
	if len(cells) < 3 {
		return
	}

	addClass(tr, render.ClosedClass)
	if mark.RewriteOpen {
		setText(cells[1], render.ClosedText)
	}
	if mark.RewriteClose {
		setText(cells[2], render.ClosedText)
	}
	setAttr(tr, "title", mark.Title)
}

func (t *Table) SetNote(text string) {
	if t.note == nil {
		return
	}
	setText(t.note, text)
}

// HasNote reports whether a note element was found
func (t *Table) HasNote() bool {
	return t.note != nil
}

func findByClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode && hasClass(n, class) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	var traverse func(*html.Node)
	traverse = func(node *html.Node) {
		if node.Type == html.ElementNode && node.DataAtom == a {
			out = append(out, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return out
}

// cellsOf returns the leading td children of a row, stopping at the first
// element child that is not a td.
func cellsOf(tr *html.Node) []*html.Node {
	var cells []*html.Node
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.DataAtom != atom.Td {
			break
		}
		cells = append(cells, c)
	}
	return cells
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var traverse func(*html.Node)
	traverse = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return sb.String()
}

func setText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func hasClass(n *html.Node, class string) bool {
	val, ok := getAttr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(val) {
		if c == class {
			return true
		}
	}
	return false
}

func addClass(n *html.Node, class string) {
	if hasClass(n, class) {
		return
	}
	val, _ := getAttr(n, "class")
	setAttr(n, "class", strings.TrimSpace(val+" "+class))
}
