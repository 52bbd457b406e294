package utils

import (
	"bytes"
	"html/template"
	"reflect"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

var (
	mdParser = goldmark.New(
		goldmark.WithParser(textParser()),
		goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	policy = bluemonday.UGCPolicy()
)

// textParser is goldmark's default parser without raw HTML blocks and inline
// tags, so "<div>" in a post stays visible text instead of being omitted.
func textParser() parser.Parser {
	return parser.NewParser(
		parser.WithBlockParsers(without(parser.DefaultBlockParsers(), parser.NewHTMLBlockParser())...),
		parser.WithInlineParsers(without(parser.DefaultInlineParsers(), parser.NewRawHTMLParser())...),
		parser.WithParagraphTransformers(parser.DefaultParagraphTransformers()...),
	)
}

func without(values []util.PrioritizedValue, drop any) []util.PrioritizedValue {
	kept := make([]util.PrioritizedValue, 0, len(values))
	for _, v := range values {
		if reflect.TypeOf(v.Value) != reflect.TypeOf(drop) {
			kept = append(kept, v)
		}
	}
	return kept
}

func init() {
	policy.AllowImages()
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)
}

// RenderText turns user-written post or comment text into sanitized HTML.
// Line breaks are kept, so plain text renders the way it was typed. Tags in the
// source are shown as text, never parsed as raw HTML.
func RenderText(source string) template.HTML {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	sanitized := policy.SanitizeBytes(buf.Bytes())
	return enhanceImages(string(sanitized))
}

// enhanceImages 为正文中的图片加上懒加载和防盗链属性
func enhanceImages(htmlStr string) template.HTML {
	if !strings.Contains(htmlStr, "<img") {
		return template.HTML(htmlStr)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return template.HTML(htmlStr)
	}

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		s.SetAttr("referrerpolicy", "no-referrer")
		s.SetAttr("loading", "lazy")
	})

	// goquery wraps fragments in html/body, keep the body only
	out, err := doc.Find("body").Html()
	if err != nil || out == "" {
		return template.HTML(htmlStr)
	}
	return template.HTML(out)
}
