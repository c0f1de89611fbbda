// Package wiki implements the codec for Jira wiki markup: hN. headings,
// "*" bullet lists, {code} blocks, and strong/em/monospace inline spans.
package wiki

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/wagov/convertd/document"
	"github.com/wagov/convertd/errors"
)

// FormatID is the registry identifier for this codec.
const FormatID = "wiki"

// Codec parses and encodes Jira wiki markup documents.
type Codec struct{}

// New creates the wiki codec.
func New() *Codec {
	return &Codec{}
}

// Format returns the registry identifier.
func (c *Codec) Format() string {
	return FormatID
}

// ContentType returns the MIME type for wiki markup bodies.
func (c *Codec) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Parse interprets a wiki markup body as a document tree.
func (c *Codec) Parse(raw []byte) (*document.Doc, error) {
	if !utf8.Valid(raw) {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: body is not valid UTF-8", errors.ErrParseFailed),
			"WikiCodec", "Parse", "encoding validation")
	}

	lines := strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")

	var blocks []document.Node
	for i := 0; i < len(lines); {
		line := strings.TrimSpace(lines[i])

		switch {
		case line == "":
			i++

		case strings.HasPrefix(line, "{code"):
			block, next, err := parseCodeBlock(lines, i)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, block)
			i = next

		case headingLevel(line) > 0:
			level := headingLevel(line)
			text := strings.TrimSpace(line[3:])
			blocks = append(blocks, document.Heading(level, parseInline(text)...))
			i++

		case strings.HasPrefix(line, "* "):
			var items []document.Node
			for i < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i]), "* ") {
				item := strings.TrimSpace(strings.TrimSpace(lines[i])[2:])
				items = append(items, document.ListItem(document.Paragraph(parseInline(item)...)))
				i++
			}
			blocks = append(blocks, document.BulletList(items...))

		default:
			var parts []string
			for i < len(lines) {
				t := strings.TrimSpace(lines[i])
				if t == "" || strings.HasPrefix(t, "{code") || headingLevel(t) > 0 || strings.HasPrefix(t, "* ") {
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

// parseCodeBlock consumes a {code} block starting at lines[start].
func parseCodeBlock(lines []string, start int) (document.Node, int, error) {
	opening := strings.TrimSpace(lines[start])

	lang := ""
	if strings.HasPrefix(opening, "{code:") {
		end := strings.Index(opening, "}")
		if end < 0 {
			return document.Node{}, 0, errors.WrapInvalid(
				fmt.Errorf("%w: malformed {code} marker", errors.ErrParseFailed),
				"WikiCodec", "Parse", "code marker validation")
		}
		lang = opening[len("{code:"):end]
	}

	var code []string
	for i := start + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "{code}" {
			return document.CodeBlock(lang, strings.Join(code, "\n")), i + 1, nil
		}
		code = append(code, lines[i])
	}

	return document.Node{}, 0, errors.WrapInvalid(
		fmt.Errorf("%w: unterminated {code} block", errors.ErrParseFailed),
		"WikiCodec", "Parse", "code block validation")
}

// headingLevel returns the level of an "hN. " heading line, or 0.
func headingLevel(line string) int {
	if len(line) < 4 || line[0] != 'h' || line[2] != '.' || line[3] != ' ' {
		return 0
	}
	level := int(line[1] - '0')
	if level >= 1 && level <= 6 {
		return level
	}
	return 0
}

// inline span markers; monospace first so "{{" wins over any other prefix
var inlineMarkers = []struct {
	open  string
	close string
	mark  string
}{
	{"{{", "}}", document.MarkCode},
	{"*", "*", document.MarkStrong},
	{"_", "_", document.MarkEm},
}

// parseInline splits a line into text nodes, honoring strong, em, and
// monospace spans. Unmatched markers are treated literally.
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
			if !strings.HasPrefix(s[i:], m.open) {
				continue
			}
			rest := s[i+len(m.open):]
			end := strings.Index(rest, m.close)
			if end <= 0 {
				continue
			}
			flush()
			nodes = append(nodes, document.Text(rest[:end], document.Mark{Type: m.mark}))
			i += len(m.open) + end + len(m.close)
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

// Encode renders a document tree as wiki markup.
func (c *Codec) Encode(doc *document.Doc) ([]byte, error) {
	if doc == nil {
		return nil, errors.WrapInvalid(errors.ErrEmptyDocument, "WikiCodec", "Encode",
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
		return fmt.Sprintf("h%d. %s", n.HeadingLevel(), encodeInline(n.Content)), nil

	case document.TypeParagraph:
		return encodeInline(n.Content), nil

	case document.TypeCodeBlock:
		var code strings.Builder
		for _, child := range n.Content {
			code.WriteString(child.Text)
		}
		marker := "{code}"
		if lang := n.Language(); lang != "" {
			marker = "{code:" + lang + "}"
		}
		return marker + "\n" + code.String() + "\n{code}", nil

	case document.TypeBulletList:
		var items []string
		for _, item := range n.Content {
			items = append(items, "* "+encodeListItem(item))
		}
		return strings.Join(items, "\n"), nil

	default:
		return "", errors.WrapFatal(
			fmt.Errorf("%w: unsupported node type %q", errors.ErrEncodeFailed, n.Type),
			"WikiCodec", "Encode", "node dispatch")
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
			sb.WriteString("*" + n.Text + "*")
		case n.HasMark(document.MarkCode):
			sb.WriteString("{{" + n.Text + "}}")
		case n.HasMark(document.MarkEm):
			sb.WriteString("_" + n.Text + "_")
		default:
			sb.WriteString(n.Text)
		}
	}
	return sb.String()
}
