package tutor

import "strings"

// Classifier maps free text to a fixed subject tag by keyword membership.
// It is deterministic: the first tag (in content.yaml order) with a matching
// keyword wins.
type Classifier struct {
	rules []SubjectRule
}

func NewClassifier(c *Content) *Classifier {
	return &Classifier{rules: c.Subjects}
}

// Classify returns the subject tag for text, or "" when no keyword matches.
// Matching is case-insensitive substring membership.
func (cl *Classifier) Classify(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range cl.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Tag
			}
		}
	}
	return ""
}
