package urlnorm

import (
	"strings"
	"testing"
)

func TestNormalizeStripsTrackingAndFragment(t *testing.T) {
	t.Parallel()

	got := Normalize("https://example.com/a?utm_source=x&id=5#top")
	if strings.Contains(got, "utm_source") {
		t.Fatalf("tracking param survived: %q", got)
	}
	if strings.Contains(got, "#") {
		t.Fatalf("fragment survived: %q", got)
	}
	if !strings.Contains(got, "id=5") {
		t.Fatalf("content param dropped: %q", got)
	}
}

func TestNormalizePreservesParamOrder(t *testing.T) {
	t.Parallel()

	got := Normalize("https://example.com/story?page=2&fbclid=abc&section=news")
	want := "https://example.com/story?page=2&section=news"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestNormalizePrefixFamilies(t *testing.T) {
	t.Parallel()

	got := Normalize("https://example.com/x?utm_campaign=a&hsa_grp=b&gclid=c&ref=tw&q=ok")
	want := "https://example.com/x?q=ok"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"https://example.com/a?utm_source=x&id=5#top",
		"https://example.com/plain",
		"https://example.com/q?a=1&b=2",
		"http://example.com:8080/p?id=1#frag",
	}
	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestNormalizeUnparseableReturnsInput(t *testing.T) {
	t.Parallel()

	input := "http://exa mple.com/path"
	if got := Normalize(input); got != input {
		t.Fatalf("expected unparseable input unchanged, got %q", got)
	}
}
