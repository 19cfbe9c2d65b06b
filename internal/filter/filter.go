package filter

import "strings"

// Smart filter tags attached to matching deals
const (
	TagJackpot = "🔥대박"
	TagWatch   = "❤️관심"
)

// Keywords holds the three process-wide keyword sets. Matching is
// case-insensitive substring, evaluated in configured order; the value is
// read-only after startup.
type Keywords struct {
	Ban     []string
	Watch   []string
	Jackpot []string
}

// Classify decides whether a title is banned and which interest tags apply.
// The ban check short-circuits: a banned candidate is never persisted or
// notified, whatever else it matches. Otherwise at most one jackpot tag and
// at most one watch tag are attached, in that order.
func (k Keywords) Classify(title string) (banned bool, tags []string) {
	lower := strings.ToLower(title)

	for _, kw := range k.Ban {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true, nil
		}
	}

	for _, kw := range k.Jackpot {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			tags = append(tags, TagJackpot)
			break
		}
	}

	for _, kw := range k.Watch {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			tags = append(tags, TagWatch)
			break
		}
	}

	return false, tags
}
