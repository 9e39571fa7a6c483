package metafetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"NewsCurator/internal/domain"
	"NewsCurator/internal/metaparse"
	"NewsCurator/internal/paywall"
	"NewsCurator/internal/sanitize"
	"NewsCurator/internal/urlnorm"
)

const (
	fetchTimeout = 12 * time.Second
	maxBodyBytes = 5 << 20
	snippetMax   = 500

	userAgent = "NewsCuratorBot/1.0 (metadata fetch; contact: ops@newscurator.example)"
)

// Fetcher owns the bounded single-page fetch and composes the HTML metadata
// parser, paywall detector, and URL normalizer into one structured result.
// Compliance rules live here: no authentication, no paywall workarounds,
// hard timeout, hard body cap.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

// New wires an HTTP client; a nil client gets the default 12s-timeout one.
func New(client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &Fetcher{client: client, logger: logger}
}

// Fetch resolves metadata for one page. It never returns an error: every
// failure path yields a URLMetadata with FetchError set. Absence of an
// individual field is not a fetch error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) domain.URLMetadata {
	result := domain.URLMetadata{OriginalURL: rawURL}

	normalized := urlnorm.Normalize(rawURL)
	parsed, err := url.Parse(normalized)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		result.URL = normalized
		result.FetchError = "Invalid URL"
		return result
	}
	result.URL = normalized

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		result.FetchError = "Invalid URL"
		return result
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			result.FetchError = fmt.Sprintf("Request timed out after %s", fetchTimeout)
		} else {
			result.FetchError = "Could not reach the site"
		}
		f.debug("fetch failed", "url", rawURL, "error", err)
		return result
	}
	defer resp.Body.Close()

	if msg, ok := rejectContentType(resp.Header.Get("Content-Type")); ok {
		result.FetchError = msg
		return result
	}

	// Read up to the cap; a truncated-but-parseable partial document beats
	// an error, so a mid-read failure only matters if nothing accumulated.
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if readErr != nil && len(body) == 0 {
		result.FetchError = "Could not read the response"
		return result
	}

	html := string(body)
	page := metaparse.Parse(html)
	ld := page.FindArticleLD()

	finalURL := parsed
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL
	}

	canonical := resolveCanonical(finalURL, page, normalized)
	result.URL = canonical

	pc := &pageContext{page: page, ld: ld, canonical: canonical, input: normalized}

	result.Title = sanitize.Sanitize(firstNonEmpty(pc, titleChain))
	result.Outlet = sanitize.Sanitize(firstNonEmpty(pc, outletChain))
	result.OutletDomain = domainOf(canonical)
	result.Snippet = sanitize.SanitizeAndTruncate(firstNonEmpty(pc, snippetChain), snippetMax)
	result.ImageURL = resolveImage(pc)
	result.PublishedAt = firstParsedDate(pc)
	if ld != nil {
		result.Author = sanitize.Sanitize(ld.Author)
	}

	result.Paywalled = paywall.Detect(html, resp.StatusCode)
	if result.Paywalled {
		// Body-adjacent text from an access-gated page is never surfaced.
		result.Snippet = ""
	}

	return result
}

func (f *Fetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// rejectContentType gates the fetch to HTML documents, with a friendly
// message naming the detected type.
func rejectContentType(contentType string) (string, bool) {
	ct := strings.ToLower(contentType)
	if ct == "" || strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml") {
		return "", false
	}
	switch {
	case strings.Contains(ct, "pdf"):
		return "The URL points to a PDF, not a web page", true
	case strings.Contains(ct, "json"):
		return "The URL points to JSON data, not a web page", true
	default:
		return fmt.Sprintf("The URL points to unsupported content (%s)", strings.TrimSpace(contentType)), true
	}
}

// pageContext is the input to the per-field extractor chains.
type pageContext struct {
	page      *metaparse.Page
	ld        *metaparse.ArticleLD
	canonical string
	input     string
}

// extractor returns a raw candidate value for one field, or "".
type extractor func(*pageContext) string

// The precedence of competing metadata sources per field, tried in order.
// Keeping these as explicit lists makes each rule auditable on its own.
var (
	titleChain = []extractor{
		func(p *pageContext) string {
			if p.ld == nil {
				return ""
			}
			return p.ld.Headline
		},
		metaOf("og:title"),
		metaOf("twitter:title"),
		func(p *pageContext) string { return p.page.Title() },
	}

	outletChain = []extractor{
		func(p *pageContext) string {
			if p.ld == nil {
				return ""
			}
			return p.ld.Publisher
		},
		metaOf("og:site_name"),
		func(p *pageContext) string { return domainOf(p.canonical) },
	}

	snippetChain = []extractor{
		metaOf("og:description"),
		metaOf("twitter:description"),
		metaOf("description"),
	}

	imageChain = []extractor{
		metaOf("og:image", "og:image:secure_url"),
		func(p *pageContext) string {
			if p.ld == nil {
				return ""
			}
			return p.ld.Image
		},
		metaOf("twitter:image", "twitter:image:src"),
	}

	dateChain = []extractor{
		func(p *pageContext) string {
			if p.ld == nil {
				return ""
			}
			return p.ld.DatePublished
		},
		metaOf("article:published_time"),
		metaOf("article:modified_time"),
		metaOf("date"),
		metaOf("pubdate"),
	}
)

func metaOf(keys ...string) extractor {
	return func(p *pageContext) string {
		return p.page.FindMeta(keys...)
	}
}

func firstNonEmpty(p *pageContext, chain []extractor) string {
	for _, extract := range chain {
		if v := strings.TrimSpace(extract(p)); v != "" {
			return v
		}
	}
	return ""
}

// resolveCanonical prefers og:url, then <link rel=canonical>, each resolved
// against the final fetch URL; anything that does not land on an absolute
// http(s) URL falls back to the normalized input.
func resolveCanonical(base *url.URL, page *metaparse.Page, fallback string) string {
	for _, candidate := range []string{page.FindMeta("og:url"), page.Canonical()} {
		if resolved := resolveAbsolute(base, candidate); resolved != "" {
			return urlnorm.Normalize(resolved)
		}
	}
	return fallback
}

func resolveAbsolute(base *url.URL, candidate string) string {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return ""
	}
	ref, err := url.Parse(candidate)
	if err != nil {
		return ""
	}
	resolved := ref
	if base != nil {
		resolved = base.ResolveReference(ref)
	}
	if resolved.Host == "" || (resolved.Scheme != "http" && resolved.Scheme != "https") {
		return ""
	}
	return resolved.String()
}

// resolveImage picks the image candidate and validates it by URL parsing
// only. Sanitizing here would HTML-escape query-string ampersands and
// corrupt CDN URLs.
func resolveImage(p *pageContext) string {
	raw := firstNonEmpty(p, imageChain)
	if raw == "" {
		return ""
	}
	base, err := url.Parse(p.canonical)
	if err != nil {
		base = nil
	}
	return resolveAbsolute(base, raw)
}

func firstParsedDate(p *pageContext) *time.Time {
	for _, extract := range dateChain {
		raw := strings.TrimSpace(extract(p))
		if raw == "" {
			continue
		}
		if parsed, err := dateparse.ParseAny(raw); err == nil {
			return &parsed
		}
	}
	return nil
}

func domainOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}
