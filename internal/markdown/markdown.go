// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts lesson Markdown into HTML using goldmark.
// Raw HTML is passed through, and LaTeX math spans are shielded from
// Markdown processing so MathJax receives them exactly as written.
package markdown

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
			highlighting.WithFormatOptions(),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		gmhtml.WithUnsafe(), // lesson content embeds <img>, <div> and <br> directly
	),
)

// mathSpan matches display math ($$..$$, \[..\]) and inline math ($..$, \(..\)).
// Inline dollar math may not span lines.
var mathSpan = regexp.MustCompile(`\$\$[\s\S]+?\$\$|\\\[[\s\S]+?\\\]|\\\([\s\S]+?\\\)|\$[^$\n]+?\$`)

// ToHTML converts Markdown source into HTML. Math spans come out unchanged
// apart from HTML escaping of <, > and &.
func ToHTML(source string) (string, error) {
	protected, spans := protectMath(source)

	var buf bytes.Buffer
	if err := md.Convert([]byte(protected), &buf); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	return restoreMath(buf.String(), spans), nil
}

// protectMath swaps every math span for an alphanumeric token goldmark
// leaves alone.
func protectMath(source string) (string, []string) {
	var spans []string
	out := mathSpan.ReplaceAllStringFunc(source, func(m string) string {
		spans = append(spans, m)
		return token(len(spans) - 1)
	})
	return out, spans
}

func restoreMath(rendered string, spans []string) string {
	if len(spans) == 0 {
		return rendered
	}
	pairs := make([]string, 0, len(spans)*2)
	for i, s := range spans {
		pairs = append(pairs, token(i), html.EscapeString(s))
	}
	return strings.NewReplacer(pairs...).Replace(rendered)
}

func token(i int) string {
	return fmt.Sprintf("MATHSPAN%dX", i)
}
