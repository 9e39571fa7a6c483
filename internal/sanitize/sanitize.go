package sanitize

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Sanitize turns untrusted HTML into plain text: all tags and their
// attributes are stripped unconditionally, the five standard named entities
// plus numeric character references are decoded, and whitespace runs are
// collapsed to a single space. Markup smuggled back in through entities is
// stripped a second time, so the output never contains '<' or '>'.
func Sanitize(input string) string {
	if input == "" {
		return ""
	}

	text := stripTags(input)
	text = decodeEntities(text)
	if strings.ContainsAny(text, "<>") {
		text = stripTags(text)
		text = strings.ReplaceAll(text, ">", " ")
	}
	return collapseWhitespace(text)
}

// SanitizeAndTruncate sanitizes, then truncates to max runes, appending a
// single ellipsis when truncation occurred. The ellipsis does not count
// toward max.
func SanitizeAndTruncate(input string, max int) string {
	text := Sanitize(input)
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}

	runes := []rune(text)
	return strings.TrimRight(string(runes[:max]), " ") + "…"
}

// stripTags drops every '<'-to-'>' span. An unclosed tag swallows the rest
// of the input, which is the safe direction for malformed markup.
func stripTags(input string) string {
	var b strings.Builder
	b.Grow(len(input))

	inTag := false
	for _, r := range input {
		switch {
		case inTag:
			if r == '>' {
				inTag = false
			}
		case r == '<':
			inTag = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

var namedEntities = map[string]string{
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"quot": `"`,
	"apos": "'",
	"nbsp": " ",
}

// decodeEntities resolves the standard named entities and decimal/hex
// character references. Unknown or malformed references pass through as-is.
func decodeEntities(input string) string {
	if !strings.Contains(input, "&") {
		return input
	}

	var b strings.Builder
	b.Grow(len(input))

	for i := 0; i < len(input); {
		if input[i] != '&' {
			b.WriteByte(input[i])
			i++
			continue
		}

		end := strings.IndexByte(input[i:], ';')
		if end < 0 || end > 10 {
			b.WriteByte(input[i])
			i++
			continue
		}

		ref := input[i+1 : i+end]
		if decoded, ok := decodeRef(ref); ok {
			b.WriteString(decoded)
			i += end + 1
			continue
		}

		b.WriteByte(input[i])
		i++
	}
	return b.String()
}

func decodeRef(ref string) (string, bool) {
	if v, ok := namedEntities[strings.ToLower(ref)]; ok {
		return v, true
	}

	if !strings.HasPrefix(ref, "#") {
		return "", false
	}

	num := ref[1:]
	base := 10
	if len(num) > 1 && (num[0] == 'x' || num[0] == 'X') {
		num = num[1:]
		base = 16
	}

	code, err := strconv.ParseInt(num, base, 32)
	if err != nil || code <= 0 || !utf8.ValidRune(rune(code)) {
		return "", false
	}
	return string(rune(code)), true
}

func collapseWhitespace(input string) string {
	return strings.Join(strings.Fields(input), " ")
}
