package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// MatchName reports whether the normalized name equals one of the normalized matchers.
func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if name == NormalizeName(m) {
			return true
		}
	}
	return false
}

// SplitTrim splits s by the regex `sep`, trims every part and drops the empty ones.
func SplitTrim(s string, sep *regexp.Regexp) []string {
	var out []string
	for _, part := range sep.Split(s, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
