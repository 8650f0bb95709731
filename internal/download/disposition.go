package download

import (
	"mime"
	"net/url"
	"path"
	"regexp"
	"strings"
)

var (
	// Lenient fallbacks for headers mime.ParseMediaType rejects (unquoted spaces, stray ';').
	extendedName = regexp.MustCompile(`(?i)filename\*\s*=\s*(?:UTF-8|utf-8)''([^;]+)`)
	quotedName   = regexp.MustCompile(`(?i)filename\s*=\s*"([^"]+)"`)
	bareName     = regexp.MustCompile(`(?i)filename\s*=\s*([^;"]+)`)
)

// NameFromDisposition extracts a display name from a Content-Disposition header.
// A UTF-8 encoded filename* attribute wins over a plain filename. "" means no name.
func NameFromDisposition(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}

	// ParseMediaType folds filename* (RFC 2231) into "filename", preferring it.
	if _, params, err := mime.ParseMediaType(header); err == nil {
		if n := cleanName(params["filename"]); n != "" {
			return n
		}
	}

	if m := extendedName.FindStringSubmatch(header); m != nil {
		if s, err := url.PathUnescape(strings.TrimSpace(m[1])); err == nil {
			if n := cleanName(s); n != "" {
				return n
			}
		}
	}
	if m := quotedName.FindStringSubmatch(header); m != nil {
		if n := cleanName(m[1]); n != "" {
			return n
		}
	}
	if m := bareName.FindStringSubmatch(header); m != nil {
		return cleanName(m[1])
	}
	return ""
}

// cleanName keeps only the last path element; some servers send full paths.
func cleanName(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, `\`, "/"))
	if s == "" {
		return ""
	}
	s = path.Base(s)
	if s == "." || s == "/" || s == ".." {
		return ""
	}
	return s
}
