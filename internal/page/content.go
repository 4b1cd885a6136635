package page

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// contentPolicy returns the shared sanitization policy for page bodies,
// creating it on first use.
func contentPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()

		// editor toolbar output
		policy.AllowElements("u", "s", "sub", "sup", "mark")
		policy.AllowElements("table", "thead", "tbody", "tfoot", "tr", "th", "td")
		policy.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
		policy.AllowDataAttributes()
	})
	return policy
}

// SanitizeContent strips scripts, event handlers and other unsafe markup from
// a rich-text body while keeping ordinary formatting.
func SanitizeContent(html string) string {
	if html == "" {
		return ""
	}
	return contentPolicy().Sanitize(html)
}
