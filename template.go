package main

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Whitespace around these elements is significant, so it collapses to a single
// space instead of being trimmed. Custom elements (names with a dash) are
// treated the same way since their display is unknown.
var inlineTags = map[string]bool{
	"a": true, "abbr": true, "acronym": true, "b": true, "bdi": true, "bdo": true,
	"big": true, "button": true, "cite": true, "code": true, "data": true,
	"del": true, "dfn": true, "em": true, "font": true, "i": true, "img": true,
	"input": true, "ins": true, "kbd": true, "label": true, "mark": true,
	"math": true, "meter": true, "nobr": true, "object": true, "output": true,
	"progress": true, "q": true, "rp": true, "rt": true, "ruby": true, "s": true,
	"samp": true, "select": true, "small": true, "span": true, "strike": true,
	"strong": true, "sub": true, "sup": true, "svg": true, "textarea": true,
	"time": true, "tt": true, "u": true, "var": true, "video": true, "wbr": true,
}

// Text inside these elements is written exactly as found.
var preserveTags = map[string]bool{
	"pre": true, "textarea": true, "script": true, "style": true, "title": true,
}

type templateToken struct {
	kind html.TokenType
	raw  string
	name string // lower-cased tag name, only used for classification
}

// minifyTemplate drops comments and collapses insignificant whitespace. Every
// tag is written from its raw bytes, so element and attribute names keep
// their case ([ngModel], #myRef, app-Card).
func minifyTemplate(src string) (string, error) {
	toks, err := tokenizeTemplate(src)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	preserve := 0
	for i, tok := range toks {
		switch tok.kind {
		case html.StartTagToken:
			b.WriteString(compactTag(tok.raw))
			if preserveTags[tok.name] {
				preserve++
			}
		case html.EndTagToken:
			b.WriteString(compactTag(tok.raw))
			if preserveTags[tok.name] && preserve > 0 {
				preserve--
			}
		case html.SelfClosingTagToken, html.DoctypeToken:
			b.WriteString(compactTag(tok.raw))
		case html.TextToken:
			if preserve > 0 {
				b.WriteString(tok.raw)
				continue
			}
			text := collapseSpace(tok.raw)
			if strings.HasPrefix(text, " ") &&
				(i == 0 || breaksFlow(toks[i-1]) || strings.HasSuffix(b.String(), " ")) {
				text = text[1:]
			}
			if strings.HasSuffix(text, " ") && (i == len(toks)-1 || breaksFlow(toks[i+1])) {
				text = text[:len(text)-1]
			}
			b.WriteString(text)
		}
	}
	return b.String(), nil
}

func tokenizeTemplate(src string) ([]templateToken, error) {
	z := html.NewTokenizer(strings.NewReader(src))
	var toks []templateToken
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, err
			}
			return toks, nil
		case html.CommentToken:
			continue
		}

		// Raw must be copied before TagName, which lower-cases the
		// tokenizer's buffer in place.
		tok := templateToken{kind: tt, raw: string(z.Raw())}
		if tt == html.StartTagToken || tt == html.EndTagToken || tt == html.SelfClosingTagToken {
			name, _ := z.TagName()
			tok.name = string(name)
		}
		toks = append(toks, tok)
	}
}

// breaksFlow reports whether whitespace next to tok can be dropped.
func breaksFlow(tok templateToken) bool {
	switch tok.kind {
	case html.TextToken:
		return false
	case html.DoctypeToken:
		return true
	}
	return !inlineTags[tok.name] && !strings.Contains(tok.name, "-")
}

func isHTMLSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// collapseSpace replaces every run of whitespace with one space.
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for i := 0; i < len(s); i++ {
		if isHTMLSpace(s[i]) {
			space = true
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteByte(s[i])
	}
	if space {
		b.WriteByte(' ')
	}
	return b.String()
}

// compactTag collapses whitespace between the attributes of a raw tag and
// drops it before the closing > or />. Quoted values are left alone.
func compactTag(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	var quote byte
	space := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if quote != 0 {
			b.WriteByte(c)
			if c == quote {
				quote = 0
			}
			continue
		}
		if isHTMLSpace(c) {
			space = true
			continue
		}
		if space {
			closing := c == '>' || (c == '/' && i+1 < len(raw) && raw[i+1] == '>')
			if !closing {
				b.WriteByte(' ')
			}
			space = false
		}
		if c == '"' || c == '\'' {
			quote = c
		}
		b.WriteByte(c)
	}
	return b.String()
}
