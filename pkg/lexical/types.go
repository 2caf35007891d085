package lexical

// Document is the editor state the document editor loads.
type Document struct {
	Root Node `json:"root"`
}

// Node is any node in the editor tree. Optional attributes are omitted from
// the JSON when unset so the output matches what the editor serialises.
type Node struct {
	Type     string `json:"type"`
	Version  int    `json:"version"`
	Children []Node `json:"children,omitempty"`

	// text
	Text   string `json:"text,omitempty"`
	Format int    `json:"format,omitempty"`
	Mode   string `json:"mode,omitempty"`

	// paragraph, heading
	Direction string `json:"direction,omitempty"`
	Indent    int    `json:"indent,omitempty"`
	Tag       string `json:"tag,omitempty"`

	// image
	Src     string `json:"src,omitempty"`
	AltText string `json:"altText,omitempty"`
	Caption string `json:"caption,omitempty"`

	// tablecell
	ColSpan     int `json:"colSpan,omitempty"`
	RowSpan     int `json:"rowSpan,omitempty"`
	HeaderState int `json:"headerState,omitempty"`

	// Page the node was extracted from, carried for export annotations.
	Page *int `json:"page,omitempty"`
}

const (
	TypeRoot      = "root"
	TypeParagraph = "paragraph"
	TypeHeading   = "heading"
	TypeText      = "text"
	TypeImage     = "image"
	TypeTable     = "table"
	TypeTableRow  = "tablerow"
	TypeTableCell = "tablecell"
	TypeLineBreak = "linebreak"
)

// Text format bitmask.
const (
	FormatBold   = 1
	FormatItalic = 2
	FormatCode   = 16
)

// Table cell header states.
const (
	HeaderNone = 0
	HeaderRow  = 1
)

// Block is one composed workspace entry, in the shape the builder consumes.
type Block struct {
	Kind        string
	Content     string
	Title       *string
	Caption     *string
	TableMarkup *string
	Page        *int
}

// Kinds recognised by the builder.
const (
	KindText  = "text"
	KindTable = "table"
	KindImage = "image"
)
