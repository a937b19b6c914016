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

// Admonition kinds and their default titles when the author supplies none.
var admonitionTitles = map[string]string{
	"success": "Success",
	"fail":    "Fail",
	"warn":    "Warning",
}

// KindAdmonition is the node kind of an admonition container block.
var KindAdmonition = ast.NewNodeKind("Admonition")

// AdmonitionNode is a `::: kind [title]` ... `:::` container. Its children
// are regular block nodes.
type AdmonitionNode struct {
	ast.BaseBlock
	Variant string
	Title   string
}

func (n *AdmonitionNode) Kind() ast.NodeKind { return KindAdmonition }

func (n *AdmonitionNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Variant": n.Variant,
		"Title":   n.Title,
	}, nil)
}

type admonitionExtension struct{}

func (e *admonitionExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithBlockParsers(
		util.Prioritized(&admonitionParser{}, 810),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&admonitionRenderer{}, 500),
	))
}

var (
	admonitionOpen = regexp.MustCompile(`^:::\s+(success|fail|warn)(?:\s+(.+?))?\s*$`)
	containerClose = regexp.MustCompile(`^:::\s*$`)
)

type admonitionParser struct{}

func (p *admonitionParser) Trigger() []byte { return []byte{':'} }

func (p *admonitionParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, seg := reader.PeekLine()
	m := admonitionOpen.FindSubmatch(line)
	if m == nil {
		return nil, parser.NoChildren
	}

	variant := string(m[1])
	title := string(m[2])
	if title == "" {
		title = admonitionTitles[variant]
	}

	reader.Advance(seg.Len() - 1)
	return &AdmonitionNode{Variant: variant, Title: title}, parser.HasChildren
}

func (p *admonitionParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, seg := reader.PeekLine()
	if containerClose.Match(line) {
		reader.Advance(seg.Len() - 1)
		return parser.Close
	}
	return parser.Continue | parser.HasChildren
}

func (p *admonitionParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (p *admonitionParser) CanInterruptParagraph() bool { return true }

func (p *admonitionParser) CanAcceptIndentedLine() bool { return false }

type admonitionRenderer struct{}

func (r *admonitionRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindAdmonition, r.render)
}

func (r *admonitionRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*AdmonitionNode)
	if entering {
		_, _ = w.WriteString(`<div class="admonition admonition-` + n.Variant + "\">\n")
		_, _ = w.WriteString(`<p class="admonition-title">` + escapeHTML(n.Title) + "</p>\n")
	} else {
		_, _ = w.WriteString("</div>\n")
	}
	return ast.WalkContinue, nil
}
