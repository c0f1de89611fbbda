// Package markdown implements the codec for the markdown subset covered by
// the document model: headings, paragraphs, fenced code blocks, bullet
// lists, and strong/em/code inline spans.
package markdown

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/wagov/convertd/document"
	"github.com/wagov/convertd/errors"
)

// FormatID is the registry identifier for this codec.
const FormatID = "md"

// Codec parses and encodes markdown documents.
type Codec struct{}

// New creates the markdown codec.
func New() *Codec {
	return &Codec{}
}

// Format returns the registry identifier.
func (c *Codec) Format() string {
	return FormatID
}

// ContentType returns the MIME type for markdown bodies.
func (c *Codec) ContentType() string {
	return "text/markdown; charset=utf-8"
}

// Parse interprets a markdown body as a document tree.
func (c *Codec) Parse(raw []byte) (*document.Doc, error) {
	if !utf8.Valid(raw) {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: body is not valid UTF-8", errors.ErrParseFailed),
			"MarkdownCodec", "Parse", "encoding validation")
	}

	lines := strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")

	var blocks []document.Node
	for i := 0; i < len(lines); {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			i++

		case strings.HasPrefix(trimmed, "```"):
			block, next, err := parseFence(lines, i)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, block)
			i = next

		case headingLevel(trimmed) > 0:
			level := headingLevel(trimmed)
			text := strings.TrimSpace(trimmed[level:])
			blocks = append(blocks, document.Heading(level, parseInline(text)...))
			i++

		case isBullet(trimmed):
			var items []document.Node
			for i < len(lines) && isBullet(strings.TrimSpace(lines[i])) {
				item := strings.TrimSpace(strings.TrimSpace(lines[i])[1:])
				items = append(items, document.ListItem(document.Paragraph(parseInline(item)...)))
				i++
			}
			blocks = append(blocks, document.BulletList(items...))

		default:
			var parts []string
			for i < len(lines) {
				t := strings.TrimSpace(lines[i])
				if t == "" || strings.HasPrefix(t, "```") || headingLevel(t) > 0 || isBullet(t) {
					break
				}
				parts = append(parts, t)
				i++
			}
			blocks = append(blocks, document.Paragraph(parseInline(strings.Join(parts, " "))...))
		}
	}

	return document.New(blocks...), nil
}

// parseFence consumes a fenced code block starting at lines[start].
// Returns the node and the index of the line after the closing fence.
func parseFence(lines []string, start int) (document.Node, int, error) {
	opening := strings.TrimSpace(lines[start])
	lang := strings.TrimSpace(strings.TrimPrefix(opening, "```"))

	var code []string
	for i := start + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "```" {
			return document.CodeBlock(lang, strings.Join(code, "\n")), i + 1, nil
		}
		code = append(code, lines[i])
	}

	return document.Node{}, 0, errors.WrapInvalid(
		fmt.Errorf("%w: unterminated code fence", errors.ErrParseFailed),
		"MarkdownCodec", "Parse", "fence validation")
}

// headingLevel returns the ATX heading level of a line, or 0.
func headingLevel(line string) int {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level >= 1 && level <= 6 && level < len(line) && line[level] == ' ' {
		return level
	}
	return 0
}

func isBullet(line string) bool {
	return (strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ")) && len(line) > 2
}

// inline markers in matching priority order; "**" must precede "*"
var inlineMarkers = []struct {
	token string
	mark  string
}{
	{"**", document.MarkStrong},
	{"`", document.MarkCode},
	{"*", document.MarkEm},
	{"_", document.MarkEm},
}

// parseInline splits a line into text nodes, honoring strong, em, and code
// spans. Unmatched markers are treated literally; spans do not nest.
func parseInline(s string) []document.Node {
	var nodes []document.Node
	var literal strings.Builder

	flush := func() {
		if literal.Len() > 0 {
			nodes = append(nodes, document.Text(literal.String()))
			literal.Reset()
		}
	}

	i := 0
	for i < len(s) {
		matched := false
		for _, m := range inlineMarkers {
			if !strings.HasPrefix(s[i:], m.token) {
				continue
			}
			rest := s[i+len(m.token):]
			end := strings.Index(rest, m.token)
			if end <= 0 {
				continue
			}
			flush()
			nodes = append(nodes, document.Text(rest[:end], document.Mark{Type: m.mark}))
			i += len(m.token)*2 + end
			matched = true
			break
		}
		if !matched {
			literal.WriteByte(s[i])
			i++
		}
	}
	flush()

	return nodes
}

// Encode renders a document tree as markdown.
func (c *Codec) Encode(doc *document.Doc) ([]byte, error) {
	if doc == nil {
		return nil, errors.WrapInvalid(errors.ErrEmptyDocument, "MarkdownCodec", "Encode",
			"document validation")
	}

	var blocks []string
	for _, n := range doc.Content {
		rendered, err := encodeBlock(n)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, rendered)
	}

	return []byte(strings.Join(blocks, "\n\n") + "\n"), nil
}

func encodeBlock(n document.Node) (string, error) {
	switch n.Type {
	case document.TypeHeading:
		return strings.Repeat("#", n.HeadingLevel()) + " " + encodeInline(n.Content), nil

	case document.TypeParagraph:
		return encodeInline(n.Content), nil

	case document.TypeCodeBlock:
		var code strings.Builder
		for _, child := range n.Content {
			code.WriteString(child.Text)
		}
		return "```" + n.Language() + "\n" + code.String() + "\n```", nil

	case document.TypeBulletList:
		var items []string
		for _, item := range n.Content {
			items = append(items, "- "+encodeListItem(item))
		}
		return strings.Join(items, "\n"), nil

	default:
		return "", errors.WrapFatal(
			fmt.Errorf("%w: unsupported node type %q", errors.ErrEncodeFailed, n.Type),
			"MarkdownCodec", "Encode", "node dispatch")
	}
}

func encodeListItem(item document.Node) string {
	var parts []string
	for _, block := range item.Content {
		parts = append(parts, encodeInline(block.Content))
	}
	return strings.Join(parts, " ")
}

func encodeInline(nodes []document.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		switch {
		case n.HasMark(document.MarkStrong):
			sb.WriteString("**" + n.Text + "**")
		case n.HasMark(document.MarkCode):
			sb.WriteString("`" + n.Text + "`")
		case n.HasMark(document.MarkEm):
			sb.WriteString("*" + n.Text + "*")
		default:
			sb.WriteString(n.Text)
		}
	}
	return sb.String()
}
