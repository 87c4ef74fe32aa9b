package quiz

// Option is one answer choice in canonical form.
type Option struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	TextSecondary string `json:"text_secondary,omitempty"`
	IsCorrect     bool   `json:"is_correct"`
}

// Question is the canonical representation used everywhere after
// ingestion. Instances are immutable once produced; bundles of them are
// shared read-only across attempts.
//
// Invariants (enforced by the Normalizer):
//   - len(Options) >= 4
//   - option ids are unique within the question
//   - exactly one option has IsCorrect set, and CorrectAnswer names it
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"question"`
	TextSecondary string   `json:"question_secondary,omitempty"`
	ImageRef      string   `json:"image_ref,omitempty"` // raw path; resolved on demand by assets.Resolver
	Options       []Option `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// Correct returns the correct option. The normalizer guarantees one
// exists; the zero Option is returned only for hand-built questions
// that violate the invariant.
func (q Question) Correct() Option {
	for _, o := range q.Options {
		if o.ID == q.CorrectAnswer {
			return o
		}
	}
	return Option{}
}
