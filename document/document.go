// Package document defines the intermediate representation shared by all
// codecs: an ADF-style node tree. Parsers emit it, encoders consume it, and
// the conversion gateway threads it between the two without inspection.
package document

import "strings"

// Node type constants for the supported block and inline nodes.
const (
	TypeDoc        = "doc"
	TypeParagraph  = "paragraph"
	TypeHeading    = "heading"
	TypeCodeBlock  = "codeBlock"
	TypeBulletList = "bulletList"
	TypeListItem   = "listItem"
	TypeText       = "text"
)

// Mark type constants for inline text formatting.
const (
	MarkStrong = "strong"
	MarkEm     = "em"
	MarkCode   = "code"
)

// Version is the document schema version carried by every Doc.
const Version = 1

// Doc is the root of a parsed document.
type Doc struct {
	Type    string `json:"type"`
	Version int    `json:"version"`
	Content []Node `json:"content,omitempty"`
}

// Node is a block or inline node within a document tree.
type Node struct {
	Type    string         `json:"type"`
	Text    string         `json:"text,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
	Content []Node         `json:"content,omitempty"`
}

// Mark annotates a text node with inline formatting.
type Mark struct {
	Type string `json:"type"`
}

// New creates an empty document root.
func New(content ...Node) *Doc {
	return &Doc{
		Type:    TypeDoc,
		Version: Version,
		Content: content,
	}
}

// Paragraph creates a paragraph node with the given inline content.
func Paragraph(inline ...Node) Node {
	return Node{Type: TypeParagraph, Content: inline}
}

// Heading creates a heading node at the given level (1-6).
func Heading(level int, inline ...Node) Node {
	return Node{
		Type:    TypeHeading,
		Attrs:   map[string]any{"level": level},
		Content: inline,
	}
}

// CodeBlock creates a code block node. The language attribute is omitted
// when lang is empty.
func CodeBlock(lang, code string) Node {
	n := Node{
		Type:    TypeCodeBlock,
		Content: []Node{Text(code)},
	}
	if lang != "" {
		n.Attrs = map[string]any{"language": lang}
	}
	return n
}

// BulletList creates a bullet list from the given list items.
func BulletList(items ...Node) Node {
	return Node{Type: TypeBulletList, Content: items}
}

// ListItem creates a list item wrapping the given block content.
func ListItem(blocks ...Node) Node {
	return Node{Type: TypeListItem, Content: blocks}
}

// Text creates a text node with optional marks.
func Text(text string, marks ...Mark) Node {
	return Node{Type: TypeText, Text: text, Marks: marks}
}

// HeadingLevel returns the level attribute of a heading node, defaulting
// to 1 when the attribute is missing or malformed.
func (n Node) HeadingLevel() int {
	if n.Attrs == nil {
		return 1
	}
	switch v := n.Attrs["level"].(type) {
	case int:
		if v >= 1 && v <= 6 {
			return v
		}
	case float64:
		// JSON decoding produces float64 for numbers
		level := int(v)
		if level >= 1 && level <= 6 {
			return level
		}
	case uint64:
		// CBOR decoding produces uint64 for positive integers
		level := int(v)
		if level >= 1 && level <= 6 {
			return level
		}
	case int64:
		level := int(v)
		if level >= 1 && level <= 6 {
			return level
		}
	}
	return 1
}

// Language returns the language attribute of a code block node, or "".
func (n Node) Language() string {
	if n.Attrs == nil {
		return ""
	}
	if lang, ok := n.Attrs["language"].(string); ok {
		return lang
	}
	return ""
}

// HasMark reports whether the node carries a mark of the given type.
func (n Node) HasMark(markType string) bool {
	for _, m := range n.Marks {
		if m.Type == markType {
			return true
		}
	}
	return false
}

// PlainText flattens the document to its text content, with blocks
// separated by newlines. Used for diagnostics and tests.
func (d *Doc) PlainText() string {
	var sb strings.Builder
	for i, n := range d.Content {
		if i > 0 {
			sb.WriteString("\n")
		}
		writePlainText(&sb, n)
	}
	return sb.String()
}

func writePlainText(sb *strings.Builder, n Node) {
	if n.Type == TypeText {
		sb.WriteString(n.Text)
		return
	}
	for i, child := range n.Content {
		if i > 0 && child.Type != TypeText {
			sb.WriteString("\n")
		}
		writePlainText(sb, child)
	}
}
