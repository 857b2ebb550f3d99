package mergetag

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Context maps tokens (without braces) to their display values.
type Context map[string]string

// Render replaces every literal occurrence of each context token in template.
// Tokens missing from ctx are left as-is. Values are not re-scanned, so a value
// that itself looks like a tag is emitted literally.
func Render(template string, ctx Context) string {
	if template == "" || len(ctx) == 0 {
		return template
	}
	return replacer(ctx).Replace(template)
}

// replacer builds a strings.Replacer whose argument order is catalog order
// followed by any extra keys sorted, which fixes tie-breaking between tokens.
func replacer(ctx Context) *strings.Replacer {
	pairs := make([]string, 0, len(ctx)*2)
	for _, e := range catalog {
		if v, ok := ctx[e.Token]; ok {
			pairs = append(pairs, Placeholder(e.Token), v)
		}
	}

	var extra []string
	for k := range ctx {
		if !Known(k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		pairs = append(pairs, Placeholder(k), ctx[k])
	}
	return strings.NewReplacer(pairs...)
}

// Tokens returns the distinct tokens referenced by template, in order of first appearance.
func Tokens(template string) []string {
	var out []string
	seen := make(map[string]struct{})
	rest := template
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			return out
		}
		end := strings.Index(rest[start+2:], "}}")
		if end < 0 {
			return out
		}
		end += start + 2
		// the innermost opening braces belong to the closing ones
		start = strings.LastIndex(rest[:end], "{{")
		tok := rest[start+2 : end]
		if tok != "" && !strings.ContainsAny(tok, "{} \n") {
			if _, dup := seen[tok]; !dup {
				seen[tok] = struct{}{}
				out = append(out, tok)
			}
		}
		rest = rest[end+2:]
	}
}

// Unknown returns the tokens in template that are not in the catalog.
// They are never substituted, so admins are shown them in the preview.
func Unknown(template string) []string {
	var out []string
	for _, tok := range Tokens(template) {
		if !Known(tok) {
			out = append(out, tok)
		}
	}
	return out
}

// Insert places the tag for token at the rune offset pos of text.
// Out of range positions are clamped; a negative pos appends.
func Insert(text, token string, pos int) (string, int) {
	tag := Placeholder(token)
	n := utf8.RuneCountInString(text)
	if pos < 0 || pos > n {
		pos = n
	}

	byteAt := len(text)
	i := 0
	for b := range text {
		if i == pos {
			byteAt = b
			break
		}
		i++
	}
	return text[:byteAt] + tag + text[byteAt:], pos + utf8.RuneCountInString(tag)
}
