package transcript

import "strings"

// matchLanguage compares two BCP-47-ish tags, treating a bare primary tag as
// matching any of its regional variants ("en" matches "en-US" and vice versa).
func matchLanguage(a, b string) bool {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return true
	}
	return primaryTag(a) == primaryTag(b)
}

func primaryTag(tag string) string {
	if i := strings.IndexByte(tag, '-'); i > 0 {
		return tag[:i]
	}
	return tag
}

// preferredLanguage returns the first requested tag, defaulting to English
// the way the upstream caption endpoints do.
func preferredLanguage(requested []string) string {
	if len(requested) > 0 {
		return requested[0]
	}
	return "en"
}
