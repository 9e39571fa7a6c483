package sanitize

import (
	"strings"
	"testing"
)

func TestSanitizeStripsTagsAndAttributes(t *testing.T) {
	t.Parallel()

	input := `<p class="lead" onclick="alert(1)">Hello <b>world</b></p>`
	if got := Sanitize(input); got != "Hello world" {
		t.Fatalf("expected plain text, got %q", got)
	}

	// Script bodies survive only as inert text, never as markup.
	got := Sanitize(`<script>alert("x")</script>`)
	if strings.ContainsAny(got, "<>") {
		t.Fatalf("output still contains markup: %q", got)
	}
}

func TestSanitizeDecodesEntities(t *testing.T) {
	t.Parallel()

	got := Sanitize("Fish &amp; Chips &#8212; caf&#xE9; &quot;menu&quot;")
	want := `Fish & Chips — café "menu"`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestSanitizeCollapsesWhitespace(t *testing.T) {
	t.Parallel()

	got := Sanitize("  a \n\t b   c  ")
	if got != "a b c" {
		t.Fatalf("expected collapsed whitespace, got %q", got)
	}
}

func TestSanitizeNeverEmitsAngleBrackets(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"<div><span>text",
		"unclosed <a href='x",
		"a < b and c > d",
		"&lt;script&gt;alert(1)&lt;/script&gt;",
		"<<<>>>",
		"plain text",
	}
	for _, input := range inputs {
		if got := Sanitize(input); strings.ContainsAny(got, "<>") {
			t.Fatalf("Sanitize(%q) emitted markup: %q", input, got)
		}
	}
}

func TestSanitizeAndTruncate(t *testing.T) {
	t.Parallel()

	got := SanitizeAndTruncate("<p>abcdefghij</p>", 5)
	if got != "abcde…" {
		t.Fatalf("expected truncated with ellipsis, got %q", got)
	}

	got = SanitizeAndTruncate("<p>short</p>", 10)
	if got != "short" {
		t.Fatalf("expected untouched short text, got %q", got)
	}
}
