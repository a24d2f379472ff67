package planview

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wI2L/jsondiff"
)

type RenderOptions struct {
	IndentSize      int
	HighlightChange bool
}

var DefaultRenderOptions = RenderOptions{
	IndentSize:      2,
	HighlightChange: true,
}

// RenderTree renders the annotated tree as YAML-like text.
func RenderTree(node *Node, theme Theme, opts RenderOptions) string {
	var sb strings.Builder
	renderNode(&sb, node, theme, opts, 0)
	return sb.String()
}

// RenderOps renders the raw patch operation list, one line per operation.
func RenderOps(ops jsondiff.Patch, theme Theme) string {
	var sb strings.Builder
	for _, op := range ops {
		verb := op.Type
		switch op.Type {
		case jsondiff.OperationAdd:
			verb = theme.AddedStyle.Render(op.Type)
		case jsondiff.OperationRemove:
			verb = theme.RemovedStyle.Render(op.Type)
		case jsondiff.OperationReplace:
			verb = theme.ModifiedStyle.Render(op.Type)
		}
		sb.WriteString(fmt.Sprintf("%-8s %s", verb, theme.highlight("key", op.Path)))
		if op.Type != jsondiff.OperationRemove {
			sb.WriteString(" = " + scalarString(op.Value, theme))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderNode(sb *strings.Builder, node *Node, theme Theme, opts RenderOptions, indent int) {
	space := strings.Repeat(" ", indent*opts.IndentSize)

	if node.Children == nil {
		renderLeaf(sb, node, theme, opts)
		return
	}

	keys := make([]string, 0, len(node.Children))
	for k := range node.Children {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		child := node.Children[key]

		keyStr := theme.highlight("key", key) + ":"
		if opts.HighlightChange {
			keyStr = theme.changeStyle(child.Change, keyStr)
		}
		sb.WriteString(space + keyStr)

		if child.Children == nil {
			sb.WriteString(" ")
			renderLeaf(sb, child, theme, opts)
		} else {
			sb.WriteString("\n")
			renderNode(sb, child, theme, opts, indent+1)
		}
	}
}

func renderLeaf(sb *strings.Builder, node *Node, theme Theme, opts RenderOptions) {
	switch v := node.Value.(type) {
	case map[string]any:
		sb.WriteString("\n")
		renderPlainMap(sb, v, theme, opts, 1)
	case []any:
		sb.WriteString("\n")
		renderPlainList(sb, v, theme, opts, 1)
	default:
		content := scalarString(v, theme)
		if opts.HighlightChange {
			content = theme.changeStyle(node.Change, content)
		}
		sb.WriteString(content + "\n")
	}
}

// renderPlainMap renders an un-annotated sub-map, e.g. a list element.
func renderPlainMap(sb *strings.Builder, m map[string]any, theme Theme, opts RenderOptions, indent int) {
	space := strings.Repeat(" ", indent*opts.IndentSize)

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		sb.WriteString(space + theme.highlight("key", k) + ": ")
		switch v := m[k].(type) {
		case map[string]any:
			sb.WriteString("\n")
			renderPlainMap(sb, v, theme, opts, indent+1)
		case []any:
			sb.WriteString("\n")
			renderPlainList(sb, v, theme, opts, indent+1)
		default:
			sb.WriteString(scalarString(v, theme) + "\n")
		}
	}
}

func renderPlainList(sb *strings.Builder, list []any, theme Theme, opts RenderOptions, indent int) {
	space := strings.Repeat(" ", indent*opts.IndentSize)
	for _, item := range list {
		sb.WriteString(space + "- ")
		switch v := item.(type) {
		case map[string]any:
			sb.WriteString("\n")
			renderPlainMap(sb, v, theme, opts, indent+1)
		case []any:
			sb.WriteString("\n")
			renderPlainList(sb, v, theme, opts, indent+1)
		default:
			sb.WriteString(scalarString(v, theme) + "\n")
		}
	}
}

func scalarString(v any, theme Theme) string {
	switch val := v.(type) {
	case string:
		return theme.highlight("string", fmt.Sprintf("%q", val))
	case bool:
		return theme.highlight("bool", fmt.Sprintf("%v", val))
	case int, int64, float64:
		return theme.highlight("number", fmt.Sprintf("%v", val))
	case nil:
		return theme.highlight("null", "null")
	default:
		return fmt.Sprintf("%v", val)
	}
}
