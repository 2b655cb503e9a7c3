package usecase

import (
	"strings"

	"github.com/user/taxsale-crawler/pkg/utils"
)

// ListFileExtensions are the file types downloaded as tax-sale lists.
var ListFileExtensions = []string{".pdf", ".xls", ".xlsx", ".csv"}

// listKeywords are matched against the lower-cased path with hyphens and spaces removed.
var listKeywords = []string{"taxsale", "taxsalelist", "delinquent", "fifa", "inrem"}

// HasListFileExtension reports whether the URL, up to its query string, ends
// with a list-file extension. Case is ignored; a fragment is not stripped.
func HasListFileExtension(rawURL string) bool {
	p, _, _ := strings.Cut(strings.ToLower(rawURL), "?")
	for _, ext := range ListFileExtensions {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}

// LooksLikeListLink is the best-effort heuristic deciding whether a URL points
// at a tax-sale list. It can both over- and under-match.
func LooksLikeListLink(rawURL string) bool {
	if HasListFileExtension(rawURL) {
		return true
	}
	p := strings.ToLower(utils.URLPath(rawURL))
	p = strings.NewReplacer("-", "", " ", "").Replace(p)
	for _, kw := range listKeywords {
		if strings.Contains(p, kw) {
			return true
		}
	}
	return false
}

// FilterListLinks keeps the links that look like list links, preserving order.
func FilterListLinks(links []string) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		if LooksLikeListLink(l) {
			out = append(out, l)
		}
	}
	return out
}
