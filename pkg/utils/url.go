package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// DefaultFilename is used when a URL path has no basename.
const DefaultFilename = "download"

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// HashURL creates a SHA256 hash of a URL string.
// Used as a stable key for archived rows and stream entries.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// ToAbsoluteURL converts a relative URL to an absolute URL given a base URL.
func ToAbsoluteURL(base *url.URL, relative string) (string, error) {
	relURL, err := url.Parse(relative)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(relURL).String(), nil
}

// URLPath returns the decoded path of rawURL without query or fragment.
// Unparseable input falls back to the text before the first '?' or '#'.
func URLPath(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		return u.Path
	}
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

// escapedPath is URLPath without percent-decoding.
func escapedPath(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		return u.EscapedPath()
	}
	return URLPath(rawURL)
}

// SafeFilename derives a filesystem-safe name from the basename of the raw
// (still percent-encoded) URL path, so "Tax%20Sale.pdf" gives "Tax_20Sale.pdf".
// Every run of characters outside [A-Za-z0-9._-] becomes a single '_'.
func SafeFilename(rawURL string) string {
	p := strings.ReplaceAll(escapedPath(rawURL), `\`, "/")
	name := ""
	if p != "" && !strings.HasSuffix(p, "/") {
		name = path.Base(p)
	}
	if name == "" || name == "/" || name == "." || name == ".." {
		name = DefaultFilename
	}
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}
