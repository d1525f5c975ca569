// Package htmltomarkdown renders HTML fragments such as recipe notes as plain
// text. It drives the html-to-markdown DOM walker with Markdown syntax and
// escaping switched off, keeping only its whitespace collapsing and block
// layout.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/fwojciec/recipefeed"
	"golang.org/x/net/html"
)

// Ensure Converter implements recipefeed.TextConverter at compile time.
var _ recipefeed.TextConverter = (*Converter)(nil)

// Converter renders HTML as plain text. Emphasis, links and code lose their
// markup and keep their text. Paragraphs are separated by a blank line and
// list items start with "- ".
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithEscapeMode(converter.EscapeModeDisabled),
		converter.WithPlugins(
			base.NewBasePlugin(),
			&plainText{},
		),
	)
	return &Converter{conv: conv}
}

// Convert renders an HTML fragment as trimmed plain text.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", recipefeed.Errorf(recipefeed.EINVALID, "empty HTML input")
	}

	result, err := c.conv.ConvertString(html)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(result), nil
}

// entities undoes the base plugin's escaping of angle brackets.
var entities = strings.NewReplacer("&lt;", "<", "&gt;", ">")

// plainText supplies the few renderers plain text needs beyond the base
// plugin. Every other element falls back to rendering its children.
type plainText struct{}

func (p *plainText) Name() string { return "plaintext" }

func (p *plainText) Init(conv *converter.Converter) error {
	conv.Register.TextTransformer(func(_ converter.Context, content string) string {
		return entities.Replace(content)
	}, converter.PriorityLate)

	conv.Register.RendererFor("br", converter.TagTypeInline, func(_ converter.Context, w converter.Writer, _ *html.Node) converter.RenderStatus {
		_, _ = w.WriteString("\n")
		return converter.RenderSuccess
	}, converter.PriorityStandard)

	conv.Register.RendererFor("li", converter.TagTypeBlock, func(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
		_, _ = w.WriteString("\n- ")
		ctx.RenderChildNodes(ctx, w, n)
		_, _ = w.WriteString("\n")
		return converter.RenderSuccess
	}, converter.PriorityStandard)

	conv.Register.TagType("tr", converter.TagTypeBlock, converter.PriorityStandard)
	cell := func(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
		ctx.RenderChildNodes(ctx, w, n)
		_, _ = w.WriteString(" ")
		return converter.RenderSuccess
	}
	conv.Register.RendererFor("td", converter.TagTypeInline, cell, converter.PriorityStandard)
	conv.Register.RendererFor("th", converter.TagTypeInline, cell, converter.PriorityStandard)

	return nil
}
