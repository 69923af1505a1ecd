package main

import (
	"regexp"
	"sort"
)

// RefKind tells a template reference from a style reference.
type RefKind int

const (
	TemplateRef RefKind = iota
	StyleRef
)

func (k RefKind) String() string {
	if k == TemplateRef {
		return "template"
	}
	return "style"
}

// Reference is one asset path found in a component file, with the byte spans
// needed to substitute it.
type Reference struct {
	Kind RefKind
	Path string

	// Start and End delimit the text replaced by the inline literal: the whole
	// templateUrl expression for templates, the quoted value for styles.
	Start, End int

	// KeyStart and KeyEnd delimit the styleUrls key owning a style reference.
	// Unset for templates.
	KeyStart, KeyEnd int
}

// Extractor finds asset references in component source text. References are
// returned in source order and never overlap.
type Extractor interface {
	Extract(text string) []Reference
}

const styleKey = "styleUrls"

var (
	templatePattern  = regexp.MustCompile("templateUrl\\s*:\\s*(?:'([^'\\n]*)'|\"([^\"\\n]*)\"|`([^`]*)`)")
	styleListPattern = regexp.MustCompile(`styleUrls\s*:\s*\[([^\]]*)\]`)
	quotedPattern    = regexp.MustCompile("'([^'\\n]*)'|\"([^\"\\n]*)\"|`([^`]*)`")
)

// regexExtractor is a textual scan; it does not understand comments or
// string contexts in the surrounding source.
type regexExtractor struct{}

func (regexExtractor) Extract(text string) []Reference {
	var refs []Reference

	for _, m := range templatePattern.FindAllStringSubmatchIndex(text, -1) {
		refs = append(refs, Reference{
			Kind:  TemplateRef,
			Path:  firstGroup(text, m),
			Start: m[0],
			End:   m[1],
		})
	}

	for _, m := range styleListPattern.FindAllStringSubmatchIndex(text, -1) {
		keyStart, keyEnd := m[0], m[0]+len(styleKey)
		listStart := m[2]
		list := text[m[2]:m[3]]
		for _, q := range quotedPattern.FindAllStringSubmatchIndex(list, -1) {
			refs = append(refs, Reference{
				Kind:     StyleRef,
				Path:     firstGroup(list, q),
				Start:    listStart + q[0],
				End:      listStart + q[1],
				KeyStart: keyStart,
				KeyEnd:   keyEnd,
			})
		}
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Start < refs[j].Start })

	// A template pattern can only land inside a style list in malformed
	// source; keep the first of any overlapping pair.
	kept := refs[:0]
	end := -1
	for _, ref := range refs {
		if ref.Start < end {
			continue
		}
		kept = append(kept, ref)
		end = ref.End
	}
	return kept
}

// firstGroup returns the first participating capture group of a match made by
// one of the quote-alternation patterns.
func firstGroup(s string, m []int) string {
	for g := 2; g+1 < len(m); g += 2 {
		if m[g] >= 0 {
			return s[m[g]:m[g+1]]
		}
	}
	return ""
}
