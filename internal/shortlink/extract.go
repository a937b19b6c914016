package shortlink

import (
	"encoding/json"
	"strings"
)

// The service has answered with several shapes over time. Extraction is a
// prioritized rule list; the first rule producing a non-empty link wins.
type extractRule func(fields map[string]any, serviceBase string) string

var extractRules = []extractRule{
	directField("link"),
	directField("shortLink"),
	directField("shortUrl"),
	directField("url"),
	slugJoinedWithBase,
}

// extractShortLink resolves the short link from a 2xx response body.
func extractShortLink(body []byte, serviceBase string) (string, bool) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", false
	}
	for _, rule := range extractRules {
		if link := rule(fields, serviceBase); link != "" {
			return link, true
		}
	}
	return "", false
}

// directField accepts a string-typed field holding the full short URL.
func directField(name string) extractRule {
	return func(fields map[string]any, _ string) string {
		s, _ := fields[name].(string)
		return strings.TrimSpace(s)
	}
}

// slugJoinedWithBase accepts a bare slug to be joined with the service
// base URL.
func slugJoinedWithBase(fields map[string]any, serviceBase string) string {
	s, _ := fields["slug"].(string)
	s = strings.Trim(strings.TrimSpace(s), "/")
	if s == "" {
		return ""
	}
	return serviceBase + "/" + s
}

// JoinSlug deterministically reconstructs a short link from the service
// base and a document slug; used to resolve "already exists" conflicts.
func JoinSlug(serviceBase, slug string) string {
	return strings.TrimRight(serviceBase, "/") + "/" + strings.Trim(slug, "/")
}
