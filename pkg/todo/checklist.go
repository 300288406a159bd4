package todo

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

type ChecklistItem struct {
	Text      string
	Completed bool
}

type Checklist struct {
	Title string
	Items []ChecklistItem
}

// ParseChecklist reads a markdown task list ("- [ ] text" / "- [x] text")
// with optional YAML frontmatter. Only list items carrying a checkbox are
// returned; nested lists are flattened in document order.
func ParseChecklist(source []byte) (*Checklist, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			meta.Meta,
			extension.TaskList,
		),
	)

	ctx := parser.NewContext()
	doc := md.Parser().Parse(text.NewReader(source), parser.WithContext(ctx))

	list := &Checklist{}

	frontmatter, err := meta.TryGet(ctx)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if title, ok := frontmatter["title"].(string); ok {
		list.Title = title
	}

	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		box, ok := n.(*east.TaskCheckBox)
		if !ok {
			return ast.WalkContinue, nil
		}
		block := box.Parent()
		if block == nil {
			return ast.WalkContinue, nil
		}
		var sb strings.Builder
		for c := box.NextSibling(); c != nil; c = c.NextSibling() {
			collectText(&sb, c, source)
		}
		list.Items = append(list.Items, ChecklistItem{
			Text:      strings.TrimSpace(sb.String()),
			Completed: box.IsChecked,
		})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk checklist: %w", err)
	}

	return list, nil
}

func collectText(sb *strings.Builder, n ast.Node, source []byte) {
	switch v := n.(type) {
	case *ast.Text:
		sb.Write(util.UnescapePunctuations(v.Segment.Value(source)))
		if v.SoftLineBreak() || v.HardLineBreak() {
			sb.WriteByte(' ')
		}
		return
	case *ast.String:
		sb.Write(v.Value)
		return
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		collectText(sb, c, source)
	}
}
