package importer

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hauswerk/vorlage/document"
)

// HTML converts pasted rich-text HTML into document trees. Mention spans
// exported by the editor (span[data-mention-id]) become mention nodes.
type HTML struct{}

// NewHTML returns an HTML importer.
func NewHTML() *HTML {
	return &HTML{}
}

// Convert parses HTML and returns the equivalent document tree. Parsing is
// tolerant; anything the importer does not recognize is flattened into the
// surrounding content with a warning.
func (h *HTML) Convert(input string) (Result, error) {
	root, err := html.Parse(strings.NewReader(input))
	if err != nil {
		return Result{}, err
	}

	s := &htmlState{}
	body := findBody(root)
	content := s.convertBlockChildren(body)
	if content == nil {
		content = []document.Node{}
	}

	return Result{
		Content:  document.Node{Type: document.TypeDocument, Content: content},
		Warnings: s.warnings,
	}, nil
}

type htmlState struct {
	warnings []string
}

// convertBlockChildren walks element children, emitting block nodes and
// collecting loose inline content into implicit paragraphs.
func (s *htmlState) convertBlockChildren(parent *html.Node) []document.Node {
	var blocks []document.Node
	var pending []document.Node

	flush := func() {
		if len(pending) == 0 {
			return
		}
		blocks = append(blocks, document.Node{Type: document.TypeParagraph, Content: pending})
		pending = nil
	}

	for child := parent.FirstChild; child != nil; child = child.NextSibling {
		if block, ok := s.convertBlockNode(child); ok {
			flush()
			blocks = append(blocks, block)
			continue
		}
		if isBlockContainer(child) {
			flush()
			blocks = append(blocks, s.convertBlockChildren(child)...)
			continue
		}
		for _, inline := range s.convertInlineNode(child, nil) {
			pending = appendInline(pending, inline)
		}
	}
	flush()
	return blocks
}

func (s *htmlState) convertBlockNode(node *html.Node) (document.Node, bool) {
	if node.Type != html.ElementNode {
		return document.Node{}, false
	}

	switch node.DataAtom {
	case atom.P:
		inline := s.convertInlineChildren(node, nil)
		if len(inline) == 0 {
			return document.Node{}, false
		}
		return document.Node{Type: document.TypeParagraph, Content: inline}, true

	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level, _ := strconv.Atoi(node.Data[1:])
		return document.Node{
			Type:    document.TypeHeading,
			Attrs:   map[string]interface{}{"level": level},
			Content: s.convertInlineChildren(node, nil),
		}, true

	case atom.Ul, atom.Ol:
		listType := document.TypeBulletList
		if node.DataAtom == atom.Ol {
			listType = "orderedList"
		}
		list := document.Node{Type: listType}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != html.ElementNode || child.DataAtom != atom.Li {
				continue
			}
			children := s.convertBlockChildren(child)
			list.Content = append(list.Content, document.Node{
				Type:    document.TypeListItem,
				Content: children,
			})
		}
		if len(list.Content) == 0 {
			return document.Node{}, false
		}
		return list, true

	case atom.Table:
		return s.convertHTMLTable(node)

	case atom.Blockquote:
		return document.Node{Type: "blockquote", Content: s.convertBlockChildren(node)}, true

	case atom.Pre:
		return document.Node{
			Type:    "codeBlock",
			Content: []document.Node{{Type: document.TypeText, Text: strings.TrimRight(collectText(node), "\n")}},
		}, true

	case atom.Hr:
		s.warnf("horizontal rule dropped")
		return document.Node{}, false

	default:
		return document.Node{}, false
	}
}

func (s *htmlState) convertHTMLTable(node *html.Node) (document.Node, bool) {
	table := document.Node{Type: document.TypeTable}

	var walkRows func(n *html.Node)
	walkRows = func(n *html.Node) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != html.ElementNode {
				continue
			}
			switch child.DataAtom {
			case atom.Thead, atom.Tbody, atom.Tfoot:
				walkRows(child)
			case atom.Tr:
				rowNode := document.Node{Type: document.TypeTableRow}
				for cell := child.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type != html.ElementNode {
						continue
					}
					cellType := ""
					switch cell.DataAtom {
					case atom.Td:
						cellType = document.TypeTableCell
					case atom.Th:
						cellType = "tableHeader"
					default:
						continue
					}
					cellNode := document.Node{Type: cellType}
					if children := s.convertBlockChildren(cell); len(children) > 0 {
						cellNode.Content = children
					}
					rowNode.Content = append(rowNode.Content, cellNode)
				}
				table.Content = append(table.Content, rowNode)
			}
		}
	}
	walkRows(node)

	if len(table.Content) == 0 {
		return document.Node{}, false
	}
	return table, true
}

func (s *htmlState) convertInlineChildren(parent *html.Node, marks []document.Mark) []document.Node {
	var content []document.Node
	for child := parent.FirstChild; child != nil; child = child.NextSibling {
		for _, node := range s.convertInlineNode(child, marks) {
			content = appendInline(content, node)
		}
	}
	return content
}

func (s *htmlState) convertInlineNode(node *html.Node, marks []document.Mark) []document.Node {
	switch node.Type {
	case html.TextNode:
		textValue := collapseWhitespace(node.Data)
		if textValue == "" || textValue == " " {
			return nil
		}
		return splitMentions(textValue, marks)

	case html.ElementNode:
		switch node.DataAtom {
		case atom.Br:
			return []document.Node{{Type: document.TypeHardBreak}}
		case atom.Strong, atom.B:
			return s.convertInlineChildren(node, append(cloneMarks(marks), document.Mark{Type: "strong"}))
		case atom.Em, atom.I:
			return s.convertInlineChildren(node, append(cloneMarks(marks), document.Mark{Type: "em"}))
		case atom.U:
			return s.convertInlineChildren(node, append(cloneMarks(marks), document.Mark{Type: "underline"}))
		case atom.S, atom.Del:
			return s.convertInlineChildren(node, append(cloneMarks(marks), document.Mark{Type: "strike"}))
		case atom.Code:
			return s.convertInlineChildren(node, append(cloneMarks(marks), document.Mark{Type: "code"}))
		case atom.A:
			linkMark := document.Mark{
				Type:  "link",
				Attrs: map[string]interface{}{"href": attrValue(node, "href")},
			}
			return s.convertInlineChildren(node, append(cloneMarks(marks), linkMark))
		case atom.Span:
			if id := attrValue(node, "data-mention-id"); id != "" {
				mention := document.Node{
					Type:  document.TypeMention,
					Attrs: map[string]interface{}{"id": id},
				}
				if label := attrValue(node, "data-mention-label"); label != "" {
					mention.Attrs["label"] = label
				}
				return []document.Node{mention}
			}
			return s.convertInlineChildren(node, marks)
		default:
			// Unknown inline elements contribute their text content.
			return s.convertInlineChildren(node, marks)
		}

	default:
		return nil
	}
}

func (s *htmlState) warnf(format string, args ...interface{}) {
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}

func isBlockContainer(node *html.Node) bool {
	if node.Type != html.ElementNode {
		return false
	}
	switch node.DataAtom {
	case atom.Div, atom.Section, atom.Article, atom.Main, atom.Header, atom.Footer:
		return true
	}
	return false
}

func findBody(root *html.Node) *html.Node {
	var body *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if body != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			body = n
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	if body == nil {
		return root
	}
	return body
}

func attrValue(node *html.Node, name string) string {
	for _, attr := range node.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

func collectText(node *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return sb.String()
}

// collapseWhitespace folds runs of whitespace into single spaces while
// keeping boundary spaces, so spacing between inline elements survives.
func collapseWhitespace(input string) string {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		if input == "" {
			return ""
		}
		return " "
	}
	out := strings.Join(fields, " ")
	if input[0] == ' ' || input[0] == '\n' || input[0] == '\t' {
		out = " " + out
	}
	last := input[len(input)-1]
	if last == ' ' || last == '\n' || last == '\t' {
		out += " "
	}
	return out
}
