package paywall

import (
	"net/http"
	"regexp"
)

// Structural markers: paywall-indicative substrings inside class/id/data-*/
// aria-label attribute values.
var structuralExpr = regexp.MustCompile(`(?i)(?:class|id|data-[a-z0-9-]+|aria-label)\s*=\s*["']?[^"'<>]*(?:paywall|subscriber-only|premium-content|locked-content|gate-content|access-denied|regwall|meter-expired|piano-gate)`)

// Textual phrase patterns indicating a subscription gate.
var phraseExprs = []*regexp.Regexp{
	regexp.MustCompile(`(?i)subscribers?\s+only`),
	regexp.MustCompile(`(?i)subscribe\s+to\s+(?:continue|read|keep\s+reading)`),
	regexp.MustCompile(`(?i)sign\s+in\s+to\s+continue\s+reading`),
	regexp.MustCompile(`(?i)you(?:'|’)?ve\s+reached\s+your\s+free\s+article\s+limit`),
	regexp.MustCompile(`(?i)already\s+a\s+subscriber\?`),
	regexp.MustCompile(`(?i)this\s+(?:article|content)\s+is\s+(?:for|reserved\s+for)\s+(?:our\s+)?(?:paid\s+)?(?:members|subscribers)`),
	regexp.MustCompile(`(?i)become\s+a\s+member\s+to\s+(?:read|continue)`),
	regexp.MustCompile(`(?i)unlock\s+(?:this|full)\s+(?:story|article|access)`),
}

// Detect heuristically classifies a fetched page as access-restricted. It is
// best-effort: both false negatives and false positives are possible. 401
// and 403 responses are always treated as paywalled. Otherwise one
// structural marker suffices, while textual phrases need either two hits or
// one hit backed by a structural marker, so an incidental "subscriber"
// mention in unrelated UI does not flag the page.
func Detect(html string, statusCode int) bool {
	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		return true
	}
	if html == "" {
		return false
	}

	structural := len(structuralExpr.FindAllStringIndex(html, 2))

	textual := 0
	for _, expr := range phraseExprs {
		if expr.MatchString(html) {
			textual++
			if textual >= 2 {
				break
			}
		}
	}

	return structural >= 1 || textual >= 2
}
