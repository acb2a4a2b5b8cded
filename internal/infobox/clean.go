package infobox

import "strings"

// Text cleanup helpers for the infobox dialect. Wiki authors are wildly
// inconsistent, so every helper is tolerant of partial markup.

// linkTargets returns the target of every [[target|display]] span in s.
// The display part is dropped; the target carries the canonical page name.
func linkTargets(s string) []string {
	var out []string
	for {
		open := strings.Index(s, "[[")
		if open < 0 {
			break
		}
		rest := s[open+2:]
		end := strings.Index(rest, "]]")
		if end < 0 {
			break
		}
		inner := rest[:end]
		if pipe := strings.Index(inner, "|"); pipe >= 0 {
			inner = inner[:pipe]
		}
		inner = strings.TrimSpace(inner)
		if inner != "" {
			out = append(out, inner)
		}
		s = rest[end+2:]
	}
	return out
}

// stripLinks flattens [[target|display]] spans into their display text and
// drops the brackets.
func stripLinks(s string) string {
	var b strings.Builder
	for {
		open := strings.Index(s, "[[")
		if open < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:open])
		rest := s[open+2:]
		end := strings.Index(rest, "]]")
		if end < 0 {
			b.WriteString(rest)
			break
		}
		inner := rest[:end]
		if pipe := strings.Index(inner, "|"); pipe >= 0 {
			inner = inner[pipe+1:]
		}
		b.WriteString(inner)
		s = rest[end+2:]
	}
	return b.String()
}

// cleanName canonicalizes an appearance or contributor name: anchor
// fragments and disambiguation suffixes go, as do interwiki prefixes and
// surrounding quote characters.
func cleanName(s string) string {
	s = strings.TrimSpace(s)
	if hash := strings.Index(s, "#"); hash >= 0 {
		s = s[:hash]
	}
	if open := strings.Index(s, "{{"); open >= 0 {
		if end := strings.Index(s[open:], "}}"); end >= 0 {
			s = s[:open] + s[open+end+2:]
		} else {
			s = s[:open]
		}
	}
	if open := strings.LastIndex(s, "("); open >= 0 && strings.HasSuffix(strings.TrimSpace(s), ")") {
		s = s[:open]
	}
	if colon := strings.LastIndex(s, ":"); colon >= 0 {
		s = s[colon+1:]
	}
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// trimQuotes removes a single layer of matching surrounding quotes.
func trimQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

// cleanLabel prepares a variant label: wiki links, quotes, leading
// asterisks, and the literal word "Variant" all go.
func cleanLabel(s string) string {
	s = stripLinks(s)
	s = strings.TrimLeft(s, "* ")
	s = trimQuotes(s)
	s = strings.ReplaceAll(s, "Variant", "")
	s = strings.ReplaceAll(s, "variant", "")
	return strings.TrimSpace(s)
}

// boldText returns the inner text of a '''bold''' line and whether the
// line was bold at all.
func boldText(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "'''") {
		return "", false
	}
	s = strings.TrimPrefix(s, "'''")
	s = strings.TrimSuffix(s, "'''")
	s = strings.TrimSuffix(strings.TrimSpace(s), ":")
	return strings.TrimSpace(s), true
}
