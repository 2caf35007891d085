package lexical

import "strings"

// FromBlocks builds an editor document from composed workspace entries, in
// order. Titles become headings, text becomes paragraphs, table markup becomes
// a table node and images become image nodes followed by their caption. A
// table whose markup cannot be parsed falls back to a paragraph holding the
// raw content so nothing the user selected is lost.
func FromBlocks(blocks []Block) Document {
	root := Node{Type: TypeRoot, Version: 1, Direction: "ltr"}
	for _, b := range blocks {
		root.Children = append(root.Children, blockNodes(b)...)
	}
	return Document{Root: root}
}

func blockNodes(b Block) []Node {
	var nodes []Node
	if b.Title != nil && strings.TrimSpace(*b.Title) != "" {
		nodes = append(nodes, Node{
			Type:      TypeHeading,
			Version:   1,
			Tag:       "h3",
			Direction: "ltr",
			Page:      b.Page,
			Children:  []Node{textNode(strings.TrimSpace(*b.Title), 0)},
		})
	}

	switch b.Kind {
	case KindTable:
		markup := b.Content
		if b.TableMarkup != nil {
			markup = *b.TableMarkup
		}
		table, err := ParseTable(markup)
		if err != nil {
			nodes = append(nodes, paragraphs(b.Content, b.Page)...)
		} else {
			table.Page = b.Page
			nodes = append(nodes, table)
		}
		nodes = append(nodes, captionNode(b.Caption, b.Page)...)

	case KindImage:
		img := Node{Type: TypeImage, Version: 1, Src: b.Content, Page: b.Page}
		if b.Caption != nil {
			img.AltText = *b.Caption
			img.Caption = *b.Caption
		}
		nodes = append(nodes, img)
		nodes = append(nodes, captionNode(b.Caption, b.Page)...)

	default:
		nodes = append(nodes, paragraphs(b.Content, b.Page)...)
	}
	return nodes
}

// paragraphs splits text on blank lines; single newlines become line breaks.
func paragraphs(content string, page *int) []Node {
	var nodes []Node
	for _, block := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		p := Node{Type: TypeParagraph, Version: 1, Direction: "ltr", Page: page}
		for i, line := range strings.Split(block, "\n") {
			if i > 0 {
				p.Children = append(p.Children, Node{Type: TypeLineBreak, Version: 1})
			}
			p.Children = append(p.Children, textNode(line, 0))
		}
		nodes = append(nodes, p)
	}
	return nodes
}

func captionNode(caption *string, page *int) []Node {
	if caption == nil || strings.TrimSpace(*caption) == "" {
		return nil
	}
	return []Node{{
		Type:      TypeParagraph,
		Version:   1,
		Direction: "ltr",
		Page:      page,
		Children:  []Node{textNode(strings.TrimSpace(*caption), FormatItalic)},
	}}
}

func textNode(text string, format int) Node {
	return Node{Type: TypeText, Version: 1, Text: text, Format: format, Mode: "normal"}
}
