package quiz

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/roadprep/signquiz/internal/trace"
)

// Upstream producers disagree on field names. Each concern probes one
// ordered candidate table, defined once here; first non-empty match
// wins everywhere.
var (
	questionIDFields   = []string{"question_id", "id", "_id"}
	questionTextFields = []string{"question_text", "question", "title", "text"}
	optionTextFields   = []string{"option_text", "text", "choice"}
	optionIDFields     = []string{"option_letter", "id"}
	imageFields        = []string{"sign.image_url", "image_url", "image"}
)

const (
	secondaryField = "secondary_languages"
	minOptions     = 4
)

// CorrectPolicy decides which option wins when the correctness flag is
// set on zero or on multiple options. There is no silent default; the
// integrator picks one at construction time.
type CorrectPolicy int

const (
	// CorrectFirstOption marks the first flagged option correct, or the
	// first option when none is flagged.
	CorrectFirstOption CorrectPolicy = iota
	// CorrectReject refuses the document with ErrAmbiguousAnswerKey.
	CorrectReject
)

// ParsePolicy maps the config spelling to a CorrectPolicy.
func ParsePolicy(s string) (CorrectPolicy, bool) {
	switch s {
	case "first_option", "":
		return CorrectFirstOption, true
	case "reject":
		return CorrectReject, true
	default:
		return CorrectFirstOption, false
	}
}

var (
	// ErrMalformed: the document has neither discoverable question text
	// nor an options array. Callers skip it, never abort a batch.
	ErrMalformed = errors.New("malformed document")
	// ErrAmbiguousAnswerKey: correctness flag on zero or multiple
	// options under CorrectReject.
	ErrAmbiguousAnswerKey = errors.New("ambiguous answer key")
)

// Normalizer converts raw external documents into canonical Questions.
// It is pure, does no I/O, and is safe for concurrent use.
type Normalizer struct {
	policy CorrectPolicy
	locale string
	tracer trace.Tracer
}

type NormalizerOption func(*Normalizer)

// WithLocale sets the secondary-text locale code (default "ur").
func WithLocale(code string) NormalizerOption {
	return func(n *Normalizer) { n.locale = code }
}

func WithTracer(t trace.Tracer) NormalizerOption {
	return func(n *Normalizer) { n.tracer = t }
}

func NewNormalizer(policy CorrectPolicy, opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{policy: policy, locale: "ur", tracer: trace.Nop{}}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Normalize converts one raw document. Malformed input returns an
// error, never panics, regardless of how mangled the bytes are.
func (n *Normalizer) Normalize(doc []byte) (Question, error) {
	return n.normalize(gjson.ParseBytes(doc))
}

// NormalizeBatch accepts a JSON array of documents, or an object
// wrapping one under "questions"/"data"/"items". Documents that fail to
// normalize are skipped with a normalize_skip event; the rest of the
// batch is unaffected.
func (n *Normalizer) NormalizeBatch(data []byte) []Question {
	root := gjson.ParseBytes(data)
	arr := root
	if root.IsObject() {
		for _, k := range []string{"questions", "data", "items"} {
			if v := root.Get(k); v.IsArray() {
				arr = v
				break
			}
		}
	}
	if !arr.IsArray() {
		n.tracer.Event("normalizer", "normalize_skip", map[string]string{"reason": "not an array"})
		return nil
	}
	var out []Question
	arr.ForEach(func(_, raw gjson.Result) bool {
		q, err := n.normalize(raw)
		if err != nil {
			n.tracer.Event("normalizer", "normalize_skip", map[string]string{
				"reason": err.Error(),
				"id":     firstString(raw, questionIDFields),
			})
			return true
		}
		out = append(out, q)
		return true
	})
	return out
}

func (n *Normalizer) normalize(root gjson.Result) (Question, error) {
	text := firstString(root, questionTextFields)
	rawOpts := root.Get("options")
	if text == "" && !rawOpts.IsArray() {
		return Question{}, fmt.Errorf("no question text and no options: %w", ErrMalformed)
	}

	q := Question{
		ID:            firstString(root, questionIDFields),
		Text:          text,
		TextSecondary: n.secondaryText(root, questionTextFields),
		ImageRef:      firstString(root, imageFields),
	}

	used := map[string]bool{}
	flagged := -1
	multi := false
	rawOpts.ForEach(func(_, raw gjson.Result) bool {
		t := firstString(raw, optionTextFields)
		if t == "" {
			return true
		}
		o := Option{
			ID:            firstString(raw, optionIDFields),
			Text:          t,
			TextSecondary: n.secondaryText(raw, optionTextFields),
		}
		if o.ID == "" || used[o.ID] {
			o.ID = freeLetter(used, len(q.Options))
		}
		used[o.ID] = true
		if raw.Get("is_correct").Bool() || raw.Get("correct").Bool() {
			if flagged >= 0 {
				multi = true
			} else {
				flagged = len(q.Options)
			}
		}
		q.Options = append(q.Options, o)
		return true
	})

	if len(q.Options) == 0 && text == "" {
		return Question{}, fmt.Errorf("options yielded no text: %w", ErrMalformed)
	}
	if q.ID == "" {
		q.ID = derivedID(q)
	}

	if (flagged < 0 || multi) && n.policy == CorrectReject {
		return Question{}, fmt.Errorf("question %s: %w", q.ID, ErrAmbiguousAnswerKey)
	}
	if flagged < 0 {
		flagged = 0
	}

	// Padding never reorders or overwrites real options.
	for len(q.Options) < minOptions {
		id := freeLetter(used, len(q.Options))
		used[id] = true
		q.Options = append(q.Options, Option{ID: id, Text: "Option " + id})
	}

	for i := range q.Options {
		q.Options[i].IsCorrect = i == flagged
	}
	q.CorrectAnswer = q.Options[flagged].ID
	return q, nil
}

// secondaryText extracts the alternate-locale text for the record whose
// primary text comes from baseFields. Four shapes are tolerated, tried
// in order:
//
//  1. secondary_languages as an array of {language_code, *_text} records
//  2. secondary_languages as an object keyed by locale code
//  3. a flat "<field>_<locale>" sibling of a primary candidate field
//  4. secondary_languages as a JSON-encoded string of shape 1 or 2;
//     an unparseable string yields "" rather than an error
func (n *Normalizer) secondaryText(root gjson.Result, baseFields []string) string {
	if s := n.fromSecondary(root.Get(secondaryField), baseFields); s != "" {
		return s
	}
	for _, f := range baseFields {
		if v := root.Get(f + "_" + n.locale); v.Type == gjson.String {
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

func (n *Normalizer) fromSecondary(v gjson.Result, baseFields []string) string {
	switch {
	case v.IsArray():
		var out string
		v.ForEach(func(_, rec gjson.Result) bool {
			if rec.Get("language_code").String() != n.locale {
				return true
			}
			out = anyTextField(rec, baseFields)
			return out == ""
		})
		return out
	case v.IsObject():
		loc := v.Get(n.locale)
		if loc.IsObject() {
			return anyTextField(loc, baseFields)
		}
		return strings.TrimSpace(loc.String())
	case v.Type == gjson.String:
		raw := v.String()
		if !gjson.Valid(raw) {
			return ""
		}
		return n.fromSecondary(gjson.Parse(raw), baseFields)
	}
	return ""
}

// anyTextField probes the candidate table first, then any "*_text"
// member, so records like {language_code, question_text} and
// {language_code, translated_text} both resolve.
func anyTextField(rec gjson.Result, baseFields []string) string {
	if s := firstString(rec, baseFields); s != "" {
		return s
	}
	var out string
	rec.ForEach(func(k, val gjson.Result) bool {
		if strings.HasSuffix(k.String(), "_text") && val.Type == gjson.String {
			out = strings.TrimSpace(val.String())
		}
		return out == ""
	})
	return out
}

func firstString(root gjson.Result, fields []string) string {
	for _, f := range fields {
		v := root.Get(f)
		if v.Type != gjson.String {
			continue
		}
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return ""
}

// freeLetter returns the first unused letter id starting from the given
// position: A, B, C, ...
func freeLetter(used map[string]bool, pos int) string {
	for i := pos; ; i++ {
		var id string
		if i < 26 {
			id = string(rune('A' + i))
		} else {
			id = fmt.Sprintf("O%d", i+1)
		}
		if !used[id] {
			return id
		}
	}
}

// derivedID hashes every distinguishing field, not just the primary
// text. Image-only questions share an empty text, so text alone would
// collide.
func derivedID(q Question) string {
	h := fnv.New32a()
	h.Write([]byte(q.Text))
	h.Write([]byte{0})
	h.Write([]byte(q.ImageRef))
	for _, o := range q.Options {
		h.Write([]byte{0})
		h.Write([]byte(o.Text))
	}
	return fmt.Sprintf("q-%08x", h.Sum32())
}
