package lexical

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Parser renders editor documents to Markdown for export.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse converts editor JSON to Markdown.
func (p *Parser) Parse(jsonContent string) (string, error) {
	var doc Document
	if err := json.Unmarshal([]byte(jsonContent), &doc); err != nil {
		return "", fmt.Errorf("failed to parse lexical json: %w", err)
	}
	return p.Render(doc), nil
}

// Render converts a document tree to Markdown.
func (p *Parser) Render(doc Document) string {
	var sb strings.Builder
	p.walkNode(doc.Root, &sb)
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func (p *Parser) walkNode(node Node, sb *strings.Builder) {
	switch node.Type {
	case TypeRoot:
		for _, child := range node.Children {
			p.walkNode(child, sb)
			sb.WriteString("\n")
		}

	case TypeHeading:
		level := 3
		if len(node.Tag) == 2 && node.Tag[0] == 'h' && node.Tag[1] >= '1' && node.Tag[1] <= '6' {
			level = int(node.Tag[1] - '0')
		}
		sb.WriteString(strings.Repeat("#", level) + " ")
		p.inline(node.Children, sb)
		sb.WriteString("\n")

	case TypeParagraph:
		p.inline(node.Children, sb)
		sb.WriteString("\n")

	case TypeImage:
		sb.WriteString(fmt.Sprintf("![%s](%s)\n", node.AltText, node.Src))

	case TypeTable:
		p.handleTable(node, sb)

	case TypeText:
		p.handleText(node, sb)

	default:
		p.inline(node.Children, sb)
	}
}

func (p *Parser) inline(children []Node, sb *strings.Builder) {
	for _, child := range children {
		switch child.Type {
		case TypeText:
			p.handleText(child, sb)
		case TypeLineBreak:
			sb.WriteString("  \n")
		default:
			p.inline(child.Children, sb)
		}
	}
}

func (p *Parser) handleText(node Node, sb *strings.Builder) {
	var open, close string
	if node.Format&FormatCode != 0 {
		open, close = "`", "`"
	}
	if node.Format&FormatBold != 0 {
		open, close = open+"**", "**"+close
	}
	if node.Format&FormatItalic != 0 {
		open, close = open+"_", "_"+close
	}
	sb.WriteString(open + node.Text + close)
}

func (p *Parser) handleTable(node Node, sb *strings.Builder) {
	var rows [][]string
	maxCols := 0

	for _, row := range node.Children {
		if row.Type != TypeTableRow {
			continue
		}
		var rowData []string
		for _, cell := range row.Children {
			var cellSb strings.Builder
			p.inline(cell.Children, &cellSb)
			content := strings.ReplaceAll(cellSb.String(), "\n", " ")
			content = strings.ReplaceAll(content, "|", `\|`)
			rowData = append(rowData, strings.TrimSpace(content))
			// Spanned columns keep the grid rectangular.
			for i := 1; i < cell.ColSpan; i++ {
				rowData = append(rowData, "")
			}
		}
		rows = append(rows, rowData)
		if len(rowData) > maxCols {
			maxCols = len(rowData)
		}
	}

	if len(rows) == 0 || maxCols == 0 {
		return
	}

	writeRow := func(cells []string) {
		sb.WriteString("|")
		for i := 0; i < maxCols; i++ {
			if i < len(cells) {
				sb.WriteString(" " + cells[i] + " |")
			} else {
				sb.WriteString("  |")
			}
		}
		sb.WriteString("\n")
	}

	// The first row doubles as the header.
	writeRow(rows[0])
	sb.WriteString("|" + strings.Repeat("---|", maxCols) + "\n")
	for _, r := range rows[1:] {
		writeRow(r)
	}
}
