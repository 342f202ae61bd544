// Package material classifies free-text fabric composition strings as
// qualifying 100% cotton or not.
package material

import (
	"regexp"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Allow-listed composition patterns, matched against normalized text. Order
// matters: more specific patterns first so the canonical label is the most
// precise one.
var cottonPatterns = []struct {
	re    *regexp.Regexp
	label string
}{
	{regexp.MustCompile(`100\s*%\s*organic\s+cotton`), "100% Organic Cotton"},
	{regexp.MustCompile(`100\s*%\s*bci\s+cotton`), "100% BCI Cotton"},
	{regexp.MustCompile(`100\s*%\s*cotton`), "100% Cotton"},
	{regexp.MustCompile(`cotton\s*100\s*%`), "100% Cotton"},
	{regexp.MustCompile(`pure\s+cotton`), "Pure Cotton"},
	{regexp.MustCompile(`all\s+cotton`), "All Cotton"},
}

var (
	percentRe    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	punctNoiseRe = regexp.MustCompile(`[,;:()\[\]|/\\-]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

type result struct {
	matched bool
	label   string
}

// Detector decides whether a composition string describes an exclusively
// cotton garment. Composition strings repeat heavily across products, so
// results are memoized in a small LRU cache.
type Detector struct {
	cache *lru.Cache[string, result]
}

func NewDetector() *Detector {
	// Cache size covers the distinct composition strings of a large run.
	cache, _ := lru.New[string, result](4096)
	return &Detector{cache: cache}
}

// Detect reports whether text qualifies as 100% cotton and, if so, the
// canonical material label. A naive substring match on "cotton" is wrong:
// "80% Cotton, 20% Polyester" contains cotton but is a blend, so any
// percentage other than 100 anywhere in the string disqualifies it.
func (d *Detector) Detect(text string) (bool, string) {
	if text == "" {
		return false, ""
	}

	if cached, ok := d.cache.Get(text); ok {
		return cached.matched, cached.label
	}

	matched, label := classify(normalize(text))
	d.cache.Add(text, result{matched: matched, label: label})
	return matched, label
}

func classify(norm string) (bool, string) {
	for _, m := range percentRe.FindAllStringSubmatch(norm, -1) {
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil || value != 100 {
			return false, ""
		}
	}

	for _, p := range cottonPatterns {
		if p.re.MatchString(norm) {
			return true, p.label
		}
	}

	return false, ""
}

// normalize lowercases, strips punctuation noise and collapses whitespace.
func normalize(text string) string {
	norm := strings.ToLower(text)
	norm = punctNoiseRe.ReplaceAllString(norm, " ")
	norm = whitespaceRe.ReplaceAllString(norm, " ")
	return strings.TrimSpace(norm)
}
