package urlnorm

import (
	"net/url"
	"strings"
)

// trackingParams are query keys stripped during normalization. Anything not
// listed here may be content-relevant (pagination, article ids) and is
// preserved verbatim.
var trackingParams = map[string]struct{}{
	"fbclid":  {},
	"gclid":   {},
	"_ga":     {},
	"_gl":     {},
	"ref":     {},
	"mc_cid":  {},
	"mc_eid":  {},
	"yclid":   {},
	"msclkid": {},
	"igshid":  {},
	"twclid":  {},
	"s_kwcid": {},
}

var trackingPrefixes = []string{"utm_", "hsa_"}

// Normalize strips the fragment and known tracking parameters, producing
// the canonical form used as the dedup key. A URL that fails to parse is
// returned unchanged; Normalize never fails.
func Normalize(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	parsed.Fragment = ""
	parsed.RawFragment = ""
	parsed.RawQuery = filterQuery(parsed.RawQuery)
	return parsed.String()
}

// filterQuery removes tracking keys while keeping surviving pairs in their
// original order and encoding. url.Values would reorder and re-encode.
func filterQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	var kept []string
	for _, pair := range strings.Split(rawQuery, "&") {
		key := pair
		if idx := strings.IndexByte(pair, '='); idx >= 0 {
			key = pair[:idx]
		}
		if isTracking(key) {
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}

func isTracking(rawKey string) bool {
	key := strings.ToLower(rawKey)
	if decoded, err := url.QueryUnescape(key); err == nil {
		key = decoded
	}

	if _, ok := trackingParams[key]; ok {
		return true
	}
	for _, prefix := range trackingPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}
