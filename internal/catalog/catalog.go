// Package catalog holds the pre-fetched mock-test bundles and selects
// among them by licensing authority.
package catalog

import (
	"sort"

	"github.com/roadprep/signquiz/internal/quiz"
)

// Catalog maps bundle keys to normalized question sets. It is populated
// once by a Loader and read-only afterward, so lookups need no locking.
type Catalog struct {
	bundles map[string][]quiz.Question
}

func New(bundles map[string][]quiz.Question) *Catalog {
	if bundles == nil {
		bundles = map[string][]quiz.Question{}
	}
	return &Catalog{bundles: bundles}
}

// Get returns the bundle for a key. A missing key means the bundle was
// never populated ("content not ready yet"), not that the key is bad.
func (c *Catalog) Get(key string) ([]quiz.Question, bool) {
	qs, ok := c.bundles[key]
	return qs, ok
}

// Ready reports per-key readiness.
func (c *Catalog) Ready(key string) bool {
	_, ok := c.bundles[key]
	return ok
}

// Keys lists populated bundle keys in stable order.
func (c *Catalog) Keys() []string {
	out := make([]string, 0, len(c.bundles))
	for k := range c.bundles {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
