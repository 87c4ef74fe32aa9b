package catalog

import (
	"strings"

	"github.com/roadprep/signquiz/internal/quiz"
)

// Authority is a regional licensing body as reported by the host app.
type Authority struct {
	Code string
	Name string
}

// DefaultBundle is the catch-all mock test used when no authority
// heuristic matches.
const DefaultBundle = "mock-general"

// authorityBundles: exact (case-insensitive) authority codes to bundle
// keys. Checked before any keyword heuristic, so an NHA code wins even
// if the display name happens to contain a province.
var authorityBundles = map[string]string{
	"nha":         "mock-nha",
	"sindh":       "mock-sindh",
	"punjab":      "mock-punjab",
	"kpk":         "mock-kpk",
	"balochistan": "mock-balochistan",
	"ict":         "mock-islamabad",
}

// keywordBundles: case-insensitive containment groups in precedence
// order. The national-highway group outranks the region groups, which
// outrank the generic "mock" catch-all.
var keywordBundles = []struct {
	tokens []string
	key    string
}{
	{[]string{"national highway", "motorway", "nha"}, "mock-nha"},
	{[]string{"sindh"}, "mock-sindh"},
	{[]string{"punjab"}, "mock-punjab"},
	{[]string{"khyber", "pakhtunkhwa", "kpk"}, "mock-kpk"},
	{[]string{"balochistan"}, "mock-balochistan"},
	{[]string{"islamabad", "capital territory"}, "mock-islamabad"},
	{[]string{"mock"}, DefaultBundle},
}

// BundleKey resolves the bundle an authority should get:
// exact code match, then keyword precedence, then the default bundle.
func BundleKey(a Authority) string {
	if key, ok := authorityBundles[strings.ToLower(strings.TrimSpace(a.Code))]; ok {
		return key
	}
	text := strings.ToLower(a.Code + " " + a.Name)
	for _, g := range keywordBundles {
		for _, t := range g.tokens {
			if strings.Contains(text, t) {
				return g.key
			}
		}
	}
	return DefaultBundle
}

// Select returns the questions for an authority's bundle. An empty
// result is never an error: it means the resolved bundle has not been
// populated yet, which callers treat as "content not ready".
func Select(c *Catalog, a Authority) []quiz.Question {
	qs, _ := c.Get(BundleKey(a))
	return qs
}
