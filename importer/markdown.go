// Package importer converts pasted Markdown and HTML into the template
// document model, detecting known variable references and turning them into
// mention nodes.
package importer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/hauswerk/vorlage/document"
)

// Result holds an imported document tree plus non-fatal conversion warnings.
type Result struct {
	Content  document.Node `json:"content"`
	Warnings []string      `json:"warnings,omitempty"`
}

// mentionPattern matches @variable tokens in prose, e.g. @mieter_name. Only
// identifiers registered as known variables become mention nodes; everything
// else stays literal text.
var mentionPattern = regexp.MustCompile(`@([a-z]+(?:_[a-z]+)*)`)

// Markdown converts GFM markdown into document trees.
type Markdown struct {
	parser goldmark.Markdown
}

// NewMarkdown returns a Markdown importer.
func NewMarkdown() *Markdown {
	return &Markdown{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
	}
}

// Convert parses markdown and returns the equivalent document tree.
func (m *Markdown) Convert(markdown string) (Result, error) {
	s := &mdState{source: []byte(markdown)}

	root := m.parser.Parser().Parse(text.NewReader(s.source))
	content, err := s.convertBlockChildren(root)
	if err != nil {
		return Result{}, err
	}

	doc := document.Node{Type: document.TypeDocument, Content: content}
	if doc.Content == nil {
		doc.Content = []document.Node{}
	}
	return Result{Content: doc, Warnings: s.warnings}, nil
}

type mdState struct {
	source   []byte
	warnings []string
}

func (s *mdState) warnf(format string, args ...interface{}) {
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}

func (s *mdState) convertBlockChildren(parent ast.Node) ([]document.Node, error) {
	var content []document.Node
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		node, ok, err := s.convertBlockNode(child)
		if err != nil {
			return nil, err
		}
		if ok {
			content = append(content, node)
		}
	}
	return content, nil
}

func (s *mdState) convertBlockNode(node ast.Node) (document.Node, bool, error) {
	switch typed := node.(type) {
	case *ast.Paragraph:
		return s.convertParagraph(typed)
	case *ast.TextBlock:
		return s.convertParagraph(typed)
	case *ast.Heading:
		return s.convertHeading(typed)
	case *ast.List:
		return s.convertList(typed)
	case *ast.Blockquote:
		children, err := s.convertBlockChildren(typed)
		if err != nil {
			return document.Node{}, false, err
		}
		return document.Node{Type: "blockquote", Content: children}, true, nil
	case *ast.FencedCodeBlock:
		return s.convertCodeBlock(typed)
	case *ast.ThematicBreak:
		s.warnf("thematic break dropped")
		return document.Node{}, false, nil
	case *extast.Table:
		return s.convertTable(typed)
	default:
		textValue := strings.TrimSpace(string(node.Text(s.source)))
		if textValue == "" {
			return document.Node{}, false, nil
		}
		s.warnf("unsupported markdown block %s converted to paragraph", typed.Kind())
		return document.Node{
			Type:    document.TypeParagraph,
			Content: []document.Node{{Type: document.TypeText, Text: textValue}},
		}, true, nil
	}
}

func (s *mdState) convertParagraph(node ast.Node) (document.Node, bool, error) {
	inline, err := s.convertInlineChildren(node, nil)
	if err != nil {
		return document.Node{}, false, err
	}
	if len(inline) == 0 {
		return document.Node{}, false, nil
	}
	return document.Node{Type: document.TypeParagraph, Content: inline}, true, nil
}

func (s *mdState) convertHeading(node *ast.Heading) (document.Node, bool, error) {
	inline, err := s.convertInlineChildren(node, nil)
	if err != nil {
		return document.Node{}, false, err
	}
	return document.Node{
		Type:    document.TypeHeading,
		Attrs:   map[string]interface{}{"level": node.Level},
		Content: inline,
	}, true, nil
}

func (s *mdState) convertList(node *ast.List) (document.Node, bool, error) {
	listType := document.TypeBulletList
	var attrs map[string]interface{}
	if node.IsOrdered() {
		listType = "orderedList"
		if node.Start > 0 && node.Start != 1 {
			attrs = map[string]interface{}{"order": node.Start}
		}
	}

	list := document.Node{Type: listType, Attrs: attrs}
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		item, ok := child.(*ast.ListItem)
		if !ok {
			continue
		}
		children, err := s.convertBlockChildren(item)
		if err != nil {
			return document.Node{}, false, err
		}
		list.Content = append(list.Content, document.Node{
			Type:    document.TypeListItem,
			Content: children,
		})
	}

	if len(list.Content) == 0 {
		return document.Node{}, false, nil
	}
	return list, true, nil
}

func (s *mdState) convertCodeBlock(node *ast.FencedCodeBlock) (document.Node, bool, error) {
	var sb strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		sb.Write(line.Value(s.source))
	}

	codeNode := document.Node{
		Type:    "codeBlock",
		Content: []document.Node{{Type: document.TypeText, Text: strings.TrimRight(sb.String(), "\n")}},
	}
	if language := string(node.Language(s.source)); language != "" {
		codeNode.Attrs = map[string]interface{}{"language": language}
	}
	return codeNode, true, nil
}

func (s *mdState) convertTable(node *extast.Table) (document.Node, bool, error) {
	table := document.Node{Type: document.TypeTable}

	for row := node.FirstChild(); row != nil; row = row.NextSibling() {
		rowNode := document.Node{Type: document.TypeTableRow}
		header := false
		switch row.(type) {
		case *extast.TableHeader:
			header = true
		case *extast.TableRow:
		default:
			continue
		}

		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			inline, err := s.convertInlineChildren(cell, nil)
			if err != nil {
				return document.Node{}, false, err
			}
			cellNode := document.Node{Type: document.TypeTableCell}
			if header {
				cellNode.Type = "tableHeader"
			}
			if len(inline) > 0 {
				cellNode.Content = []document.Node{{
					Type:    document.TypeParagraph,
					Content: inline,
				}}
			}
			rowNode.Content = append(rowNode.Content, cellNode)
		}
		table.Content = append(table.Content, rowNode)
	}

	if len(table.Content) == 0 {
		return document.Node{}, false, nil
	}
	return table, true, nil
}

func (s *mdState) convertInlineChildren(parent ast.Node, marks []document.Mark) ([]document.Node, error) {
	var content []document.Node
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		nodes, err := s.convertInlineNode(child, marks)
		if err != nil {
			return nil, err
		}
		for _, node := range nodes {
			content = appendInline(content, node)
		}
	}
	return splitMentionNodes(content), nil
}

func (s *mdState) convertInlineNode(node ast.Node, marks []document.Mark) ([]document.Node, error) {
	switch typed := node.(type) {
	case *ast.Text:
		// Emit the raw segment; mention tokens are recognized only after
		// adjacent segments are merged, because the parser fragments prose
		// at emphasis delimiters such as the underscores inside variable
		// identifiers.
		segment := string(typed.Segment.Value(s.source))
		var nodes []document.Node
		if segment != "" {
			nodes = append(nodes, textNode(segment, marks))
		}
		if typed.HardLineBreak() {
			nodes = append(nodes, document.Node{Type: document.TypeHardBreak})
		} else if typed.SoftLineBreak() {
			nodes = append(nodes, textNode(" ", marks))
		}
		return nodes, nil

	case *ast.String:
		return []document.Node{textNode(string(typed.Value), marks)}, nil

	case *ast.Emphasis:
		markType := "em"
		if typed.Level >= 2 {
			markType = "strong"
		}
		return s.convertInlineChildren(typed, append(cloneMarks(marks), document.Mark{Type: markType}))

	case *ast.CodeSpan:
		return []document.Node{textNode(string(typed.Text(s.source)), append(cloneMarks(marks), document.Mark{Type: "code"}))}, nil

	case *ast.Link:
		linkMark := document.Mark{
			Type:  "link",
			Attrs: map[string]interface{}{"href": string(typed.Destination)},
		}
		return s.convertInlineChildren(typed, append(cloneMarks(marks), linkMark))

	case *ast.AutoLink:
		url := string(typed.URL(s.source))
		linkMark := document.Mark{
			Type:  "link",
			Attrs: map[string]interface{}{"href": url},
		}
		return []document.Node{textNode(url, append(cloneMarks(marks), linkMark))}, nil

	case *ast.RawHTML:
		s.warnf("inline HTML dropped")
		return nil, nil

	default:
		textValue := string(node.Text(s.source))
		if textValue == "" {
			return nil, nil
		}
		s.warnf("unsupported markdown inline %s kept as text", node.Kind())
		return []document.Node{textNode(textValue, marks)}, nil
	}
}

// splitMentionNodes runs mention detection over merged text nodes, leaving
// every other node untouched.
func splitMentionNodes(content []document.Node) []document.Node {
	var out []document.Node
	for _, node := range content {
		if node.Type != document.TypeText {
			out = append(out, node)
			continue
		}
		out = append(out, splitMentions(node.Text, node.Marks)...)
	}
	return out
}

// splitMentions turns @variable tokens for known variables into mention
// nodes, keeping the surrounding text.
func splitMentions(segment string, marks []document.Mark) []document.Node {
	if segment == "" {
		return nil
	}

	var nodes []document.Node
	last := 0
	for _, match := range mentionPattern.FindAllStringSubmatchIndex(segment, -1) {
		start, end := match[0], match[1]
		id := segment[match[2]:match[3]]
		if !document.KnownVariable(id) {
			continue
		}
		if start > last {
			nodes = append(nodes, textNode(segment[last:start], marks))
		}
		nodes = append(nodes, document.Node{
			Type:  document.TypeMention,
			Attrs: map[string]interface{}{"id": id},
		})
		last = end
	}
	if last < len(segment) {
		nodes = append(nodes, textNode(segment[last:], marks))
	}
	return nodes
}

func textNode(textValue string, marks []document.Mark) document.Node {
	node := document.Node{Type: document.TypeText, Text: textValue}
	if len(marks) > 0 {
		node.Marks = cloneMarks(marks)
	}
	return node
}

func cloneMarks(marks []document.Mark) []document.Mark {
	if marks == nil {
		return nil
	}
	cloned := make([]document.Mark, len(marks))
	for i, mark := range marks {
		cloned[i] = mark.Clone()
	}
	return cloned
}

// appendInline merges adjacent text nodes with identical marks, mirroring how
// the editor itself would store the content.
func appendInline(content []document.Node, next document.Node) []document.Node {
	if next.Type == document.TypeText && next.Text == "" {
		return content
	}
	if len(content) > 0 {
		last := &content[len(content)-1]
		if last.Type == document.TypeText && next.Type == document.TypeText && marksEqual(last.Marks, next.Marks) {
			last.Text += next.Text
			return content
		}
	}
	return append(content, next)
}

func marksEqual(left, right []document.Mark) bool {
	if len(left) != len(right) {
		return false
	}
	for i := range left {
		if left[i].Type != right[i].Type {
			return false
		}
		if !attrsEqual(left[i].Attrs, right[i].Attrs) {
			return false
		}
	}
	return true
}

func attrsEqual(left, right map[string]interface{}) bool {
	if len(left) != len(right) {
		return false
	}
	for key, leftValue := range left {
		rightValue, ok := right[key]
		if !ok || leftValue != rightValue {
			return false
		}
	}
	return true
}
