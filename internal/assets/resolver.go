// Package assets maps raw image paths from content documents onto
// concrete references: a locally bundled file, a remote URL, or a
// deterministic per-category default. Resolution never fails; a miss is
// an observability event, not an error.
package assets

import (
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/roadprep/signquiz/internal/trace"
)

// Category is the sign class derived from an asset path segment.
type Category string

const (
	CategoryMandatory   Category = "mandatory"
	CategoryWarning     Category = "warning"
	CategoryInformatory Category = "informatory"
	CategoryUnknown     Category = ""
)

// Kind discriminates the Ref union.
type Kind int

const (
	KindLocal Kind = iota
	KindRemote
	KindDefault
)

// Ref is the resolved image reference. Exactly one of Handle/URL is
// meaningful per kind: Local and Default carry a registry handle,
// Remote carries a composed URL. Default additionally names the
// category the fallback was chosen for.
type Ref struct {
	Kind     Kind
	Handle   string
	URL      string
	Category Category
}

// Registry is the set of locally bundled asset keys, e.g. the listing
// of a blob store. Keys use the upstream path convention
// "/signs/<category dir>/<display name>.png".
type Registry struct {
	keys []string
}

func NewRegistry(keys []string) *Registry {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	return &Registry{keys: sorted}
}

func (r *Registry) has(key string) bool {
	i := sort.SearchStrings(r.keys, key)
	return i < len(r.keys) && r.keys[i] == key
}

// firstInCategory returns the lexicographically first key whose path
// names the category. Deterministic by construction.
func (r *Registry) firstInCategory(c Category) (string, bool) {
	for _, k := range r.keys {
		if categoryOf(k) == c {
			return k, true
		}
	}
	return "", false
}

// Resolver turns raw paths into Refs. Zero-config fields degrade
// gracefully: without Defaults the category fallback is the first
// registry entry in that category.
type Resolver struct {
	Registry   *Registry
	RemoteBase string              // e.g. "https://cdn.example.com"
	Defaults   map[Category]string // optional per-category default handle
	Tracer     trace.Tracer
}

// Resolve applies the ordered resolution steps, first match wins:
// exact key, singly-decoded key, filename substring, category keyword
// groups, category default, composed remote URL. Upstream producers
// percent-encode paths zero, one, or two times; all are tolerated.
// Resolve never panics, whatever the path or the tracer.
func (r *Resolver) Resolve(rawPath string) Ref {
	raw := strings.TrimSpace(rawPath)
	if raw == "" {
		return r.fallback(CategoryUnknown, raw)
	}

	if r.Registry != nil {
		if r.Registry.has(raw) {
			return Ref{Kind: KindLocal, Handle: raw, Category: categoryOf(raw)}
		}
		if dec, err := url.PathUnescape(raw); err == nil && dec != raw && r.Registry.has(dec) {
			return Ref{Kind: KindLocal, Handle: dec, Category: categoryOf(dec)}
		}
		if h, ok := r.byFilename(raw); ok {
			return Ref{Kind: KindLocal, Handle: h, Category: categoryOf(h)}
		}
		if h, ok := r.byKeywords(raw); ok {
			r.miss(raw, map[string]string{"matched": "keyword", "handle": h})
			return Ref{Kind: KindLocal, Handle: h, Category: categoryOf(h)}
		}
	}
	return r.fallback(categoryOf(raw), raw)
}

func (r *Resolver) fallback(c Category, raw string) Ref {
	if c != CategoryUnknown {
		if h, ok := r.defaultFor(c); ok {
			r.miss(raw, map[string]string{"matched": "default", "category": string(c)})
			return Ref{Kind: KindDefault, Handle: h, Category: c}
		}
	}
	// absolute URLs from producers pass through untouched
	if strings.Contains(raw, "://") {
		r.miss(raw, map[string]string{"matched": "remote"})
		return Ref{Kind: KindRemote, URL: raw, Category: c}
	}
	u := strings.TrimSuffix(r.RemoteBase, "/") + "/" + strings.TrimPrefix(raw, "/")
	r.miss(raw, map[string]string{"matched": "remote"})
	return Ref{Kind: KindRemote, URL: u, Category: c}
}

// miss emits a resolve_miss event. A nil, typed-nil, or otherwise
// broken tracer must not take resolution down with it.
func (r *Resolver) miss(raw string, fields map[string]string) {
	defer func() { _ = recover() }()
	tracer := r.Tracer
	if tracer == nil {
		tracer = trace.Nop{}
	}
	fields["path"] = raw
	tracer.Event("assets", "resolve_miss", fields)
}

func (r *Resolver) defaultFor(c Category) (string, bool) {
	if h, ok := r.Defaults[c]; ok {
		return h, true
	}
	if r.Registry == nil {
		return "", false
	}
	return r.Registry.firstInCategory(c)
}

// byFilename strips directory segments and substring-matches the fully
// decoded basename against registry keys. Decoding to a fixed point
// (bounded) is what absorbs twice-encoded producers.
func (r *Resolver) byFilename(raw string) (string, bool) {
	name := strings.ToLower(decodeFully(path.Base(raw)))
	if name == "" || name == "." || name == "/" {
		return "", false
	}
	for _, k := range r.keys() {
		if strings.Contains(strings.ToLower(k), name) {
			return k, true
		}
	}
	return "", false
}

func (r *Resolver) keys() []string {
	if r.Registry == nil {
		return nil
	}
	return r.Registry.keys
}

func decodeFully(s string) string {
	for i := 0; i < 3; i++ {
		dec, err := url.PathUnescape(s)
		if err != nil || dec == s {
			break
		}
		s = dec
	}
	return s
}

func categoryOf(p string) Category {
	low := strings.ToLower(decodeFully(p))
	for _, seg := range strings.Split(low, "/") {
		switch {
		case strings.Contains(seg, "mandatory"):
			return CategoryMandatory
		case strings.Contains(seg, "warning"):
			return CategoryWarning
		case strings.Contains(seg, "informatory"), strings.Contains(seg, "information"):
			return CategoryInformatory
		}
	}
	return CategoryUnknown
}
