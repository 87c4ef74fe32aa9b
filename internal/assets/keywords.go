package assets

import "strings"

// keywordGroup maps semantic tokens seen in display filenames to a
// canonical registry-key fragment. Groups are probed in slice order so
// the more specific ones sit first.
type keywordGroup struct {
	tokens   []string
	fragment string
}

var keywordGroups = []keywordGroup{
	{[]string{"hospital", "clinic"}, "hospital"},
	{[]string{"fuel", "petrol", "gas station"}, "petrol"},
	{[]string{"toilet", "washroom", "restroom"}, "toilet"},
	{[]string{"parking", "park here"}, "parking"},
	{[]string{"signal", "traffic light"}, "signal"},
	{[]string{"railway", "train", "level crossing"}, "railway"},
	{[]string{"school", "children"}, "school"},
	{[]string{"pedestrian", "crossing", "zebra"}, "pedestrian"},
	{[]string{"speed", "limit"}, "speed"},
	{[]string{"stop"}, "stop"},
	{[]string{"u-turn", "u turn"}, "u-turn"},
	{[]string{"overtaking", "overtake"}, "overtaking"},
	{[]string{"horn", "hooting"}, "horn"},
	{[]string{"roundabout"}, "roundabout"},
	{[]string{"bridge", "narrow"}, "narrow"},
}

// byKeywords is the best-effort step: tokenizes the decoded filename,
// finds the first group it hits, then looks for a registry key in the
// same category containing the group's canonical fragment.
func (r *Resolver) byKeywords(raw string) (string, bool) {
	c := categoryOf(raw)
	if c == CategoryUnknown {
		return "", false
	}
	name := strings.ToLower(decodeFully(raw))
	for _, g := range keywordGroups {
		if !containsAny(name, g.tokens) {
			continue
		}
		for _, k := range r.keys() {
			if categoryOf(k) == c && strings.Contains(strings.ToLower(k), g.fragment) {
				return k, true
			}
		}
	}
	return "", false
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
