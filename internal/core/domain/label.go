package domain

import "strings"

// Label is a retention label discovered on a list. Name may carry a
// human-readable suffix appended by the compliance service, e.g.
// "Record (Retain 1yr)".
type Label struct {
	Name string `json:"name"`
}

// Matches reports whether the label qualifies against a configured target.
// An empty target matches any label; otherwise the discovered name must
// start with the target, because the service decorates label identifiers
// with display suffixes.
func (l Label) Matches(target string) bool {
	if target == "" {
		return true
	}
	return strings.HasPrefix(l.Name, target)
}
