package httpx

import "strings"

// PathAllowList matches request paths against configured public prefixes.
// An entry ending in "/" matches anything below it. Any other entry matches
// itself and its sub-paths, so "/login" covers "/login/x" but not "/loginx".
type PathAllowList struct {
	prefixes []string
}

// NewPathAllowList drops blank entries and surrounding whitespace.
func NewPathAllowList(paths []string) PathAllowList {
	var out []string
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return PathAllowList{prefixes: out}
}

// Match reports whether path is public.
func (l PathAllowList) Match(path string) bool {
	for _, p := range l.prefixes {
		if strings.HasSuffix(p, "/") {
			if strings.HasPrefix(path, p) {
				return true
			}
			continue
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
