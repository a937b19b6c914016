package markdown

import (
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindHiddenText is the node kind of a hidden-text reveal span.
var KindHiddenText = ast.NewNodeKind("HiddenText")

// HiddenTextNode is a `::: hide[label] :::` reveal element. The label is
// surfaced as a hover hint; the wrapped content stays rendered inside.
//
// Two surface forms are accepted:
//
//	::: hide[label] ::: content :::     (single line; content inline-parsed)
//	::: hide[label] :::
//	content
//	:::
//
// A legacy `{...}` attribute block after the label is captured and
// discarded.
type HiddenTextNode struct {
	ast.BaseBlock
	Label string

	oneLine bool
}

func (n *HiddenTextNode) Kind() ast.NodeKind { return KindHiddenText }

func (n *HiddenTextNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Label": n.Label}, nil)
}

type hiddenTextExtension struct {
	defaultHint string
}

func (e *hiddenTextExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithBlockParsers(
		util.Prioritized(&hiddenTextParser{}, 800),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&hiddenTextRenderer{defaultHint: e.defaultHint}, 500),
	))
}

var (
	hideOpen      = regexp.MustCompile(`^:::\s*hide\[([^\]]*)\](?:\{([^}]*)\})?\s*:::[ \t]*(.*)$`)
	hideInlineEnd = regexp.MustCompile(`[ \t]*:::[ \t]*$`)
)

type hiddenTextParser struct{}

func (p *hiddenTextParser) Trigger() []byte { return []byte{':'} }

func (p *hiddenTextParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, seg := reader.PeekLine()
	idx := hideOpen.FindSubmatchIndex(trimLineEnding(line))
	if idx == nil {
		return nil, parser.NoChildren
	}

	node := &HiddenTextNode{Label: string(line[idx[2]:idx[3]])}

	restStart, restEnd := idx[6], idx[7]
	if restEnd > restStart {
		// Single-line form: everything between the second and third `:::`
		// is the content, inline-parsed from its source segment.
		content := line[restStart:restEnd]
		if end := hideInlineEnd.FindIndex(content); end != nil {
			restEnd = restStart + end[0]
		}
		if restEnd > restStart {
			node.Lines().Append(text.NewSegment(seg.Start+restStart, seg.Start+restEnd))
		}
		node.oneLine = true
		reader.Advance(seg.Len() - 1)
		return node, parser.NoChildren
	}

	reader.Advance(seg.Len() - 1)
	return node, parser.HasChildren
}

func (p *hiddenTextParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	if node.(*HiddenTextNode).oneLine {
		return parser.Close
	}
	line, seg := reader.PeekLine()
	if containerClose.Match(line) {
		reader.Advance(seg.Len() - 1)
		return parser.Close
	}
	return parser.Continue | parser.HasChildren
}

func (p *hiddenTextParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (p *hiddenTextParser) CanInterruptParagraph() bool { return true }

func (p *hiddenTextParser) CanAcceptIndentedLine() bool { return false }

type hiddenTextRenderer struct {
	defaultHint string
}

func (r *hiddenTextRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindHiddenText, r.render)
}

func (r *hiddenTextRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*HiddenTextNode)
	if entering {
		hint := n.Label
		if hint == "" {
			hint = r.defaultHint
		}
		_, _ = w.WriteString(`<span class="hidden-text" title="` + escapeHTML(hint) + `">`)
	} else {
		_, _ = w.WriteString("</span>")
	}
	return ast.WalkContinue, nil
}

// trimLineEnding drops the trailing newline bytes PeekLine includes, so
// `$`-anchored patterns see only the visible line.
func trimLineEnding(line []byte) []byte {
	end := len(line)
	for end > 0 && (line[end-1] == '\n' || line[end-1] == '\r') {
		end--
	}
	return line[:end]
}
