package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// ZIndexTag marks nodes that take part in extraction.
const ZIndexTag = "z-index"

var (
	digitsRe        = regexp.MustCompile(`\d+`)
	sentenceSplitRe = regexp.MustCompile(`[.!?]`)
	trailingIndexRe = regexp.MustCompile(`_(\d+)$`)
	parenGroupRe    = regexp.MustCompile(`\(([^)]*)\)`)
)

// HasZIndex reports whether the name carries the z-index tag.
func HasZIndex(name string) bool {
	return strings.Contains(name, ZIndexTag)
}

// ExtractZIndex parses the first digit run after the z-index tag; 0 if the
// tag or the digits are missing.
func ExtractZIndex(name string) int {
	idx := strings.Index(name, ZIndexTag)
	if idx < 0 {
		return 0
	}
	m := digitsRe.FindString(name[idx+len(ZIndexTag):])
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// CountWords counts whitespace-separated tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// CountSentences counts non-empty segments between . ! and ?. Callers that
// divide by it floor the result at 1.
func CountSentences(text string) int {
	n := 0
	for _, seg := range sentenceSplitRe.Split(text, -1) {
		if strings.TrimSpace(seg) != "" {
			n++
		}
	}
	return n
}

// cleanName lowercases a node name and drops the z-index tag and
// everything after it.
func cleanName(name string) string {
	s := strings.ToLower(name)
	if idx := strings.Index(s, ZIndexTag); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// figureBaseName returns the base name of a figure block and its trailing
// numeric index: "figure (logoRfs_2) z-index 3" -> ("logoRfs", "2").
// Without a parenthesized group the cleaned name is used.
func figureBaseName(name string) (base, index string) {
	var raw string
	if m := parenGroupRe.FindStringSubmatch(name); m != nil {
		raw = strings.TrimSpace(m[1])
	} else {
		raw = name
		if idx := strings.Index(strings.ToLower(raw), ZIndexTag); idx >= 0 {
			raw = raw[:idx]
		}
		raw = strings.TrimSpace(raw)
	}
	if m := trailingIndexRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSuffix(raw, m[0]), m[1]
	}
	return raw, ""
}
