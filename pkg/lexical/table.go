package lexical

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoTable is returned when markup contains no <table> element.
var ErrNoTable = errors.New("markup contains no table")

// ParseTable turns HTML table markup into a table node. Cells from <th> are
// flagged as header cells; colspan and rowspan are preserved.
func ParseTable(markup string) (Node, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return Node{}, fmt.Errorf("failed to parse table markup: %w", err)
	}

	table := findElement(doc, atom.Table)
	if table == nil {
		return Node{}, ErrNoTable
	}

	node := Node{Type: TypeTable, Version: 1}
	walkElements(table, atom.Tr, func(tr *html.Node) {
		row := Node{Type: TypeTableRow, Version: 1}
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
				continue
			}
			row.Children = append(row.Children, cellNode(c))
		}
		node.Children = append(node.Children, row)
	})
	return node, nil
}

func cellNode(c *html.Node) Node {
	cell := Node{
		Type:    TypeTableCell,
		Version: 1,
		ColSpan: intAttr(c, "colspan", 1),
		RowSpan: intAttr(c, "rowspan", 1),
	}
	if c.DataAtom == atom.Th {
		cell.HeaderState = HeaderRow
	}
	text := strings.Join(strings.Fields(textContent(c)), " ")
	para := Node{Type: TypeParagraph, Version: 1}
	if text != "" {
		para.Children = []Node{textNode(text, 0)}
	}
	cell.Children = []Node{para}
	return cell
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// walkElements visits every element a below n in document order, without
// descending into nested tables.
func walkElements(n *html.Node, a atom.Atom, visit func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.DataAtom == a {
			visit(c)
			continue
		}
		if c.DataAtom == atom.Table {
			continue
		}
		walkElements(c, a, visit)
	}
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Br {
			sb.WriteString(" ")
			continue
		}
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

func intAttr(n *html.Node, key string, def int) int {
	for _, a := range n.Attr {
		if a.Key != key {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(a.Val))
		if err != nil || v < 1 {
			return def
		}
		return v
	}
	return def
}
