package h2server

import (
	"path"
	"strings"
	"unicode/utf8"
)

// IsValidPath validates a logical request path. It checks that the path:
//   - starts with "/"
//   - does not contain a ".." segment
//   - does not contain backslashes
//   - is valid UTF-8
//   - does not contain null bytes or other control characters
//
// Unlike object storage keys, logical paths may contain spaces, empty segments
// and a trailing slash; CleanPath normalises those.
func IsValidPath(p string) bool {
	if p == "" || p[0] != '/' {
		return false
	}

	if strings.Contains(p, `\`) {
		return false
	}

	if !utf8.ValidString(p) {
		return false
	}

	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return false
		}
	}

	for _, r := range p {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}

	return true
}

// CleanPath returns the canonical logical form of p: rooted, without "." or
// ".." segments or repeated slashes. A trailing slash is kept because it
// distinguishes directory requests.
func CleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	np := path.Clean(p)
	if strings.HasSuffix(p, "/") && np != "/" {
		np += "/"
	}
	return np
}

// JoinPath joins logical path elements, keeping the result rooted.
func JoinPath(elem ...string) string {
	return path.Join(append([]string{"/"}, elem...)...)
}
