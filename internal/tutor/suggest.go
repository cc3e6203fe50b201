package tutor

import (
	"fmt"
	"strings"

	"github.com/lumikid/tutor-backend/internal/session"
)

const maxSuggestions = 3

// Suggester produces short ranked follow-up prompts from the current topic
// and the recent context window. The random source is injectable so tests
// can be deterministic.
type Suggester struct {
	content *Content
	intn    func(n int) int
}

func NewSuggester(c *Content, intn func(n int) int) *Suggester {
	return &Suggester{content: c, intn: intn}
}

// Suggest returns up to three follow-up prompts. Without a current subject
// it falls back to grade-banded generics; with one it starts from the
// subject's list and overrides with a sub-topic list when the recent context
// window carries a matching cue.
func (sg *Suggester) Suggest(sess *session.Session) []string {
	if sess.CurrentSubject == "" {
		return cap3(sg.gradeFallback(sess.Grade))
	}

	lists, ok := sg.content.SubjectSuggestions[sess.CurrentSubject]
	if !ok {
		return cap3(sg.gradeFallback(sess.Grade))
	}

	blob := windowBlob(sess)
	if key := subTopicKey(sess.CurrentSubject, blob); key != "" {
		if specific, ok := lists[key]; ok {
			return cap3(specific)
		}
	}
	return cap3(lists["general"])
}

// subTopicKey inspects the concatenated window text for sub-topic cues.
func subTopicKey(subject, blob string) string {
	switch subject {
	case "math":
		switch {
		case strings.Contains(blob, "multipl"):
			return "multiplication"
		case strings.Contains(blob, "addition") || strings.Contains(blob, "adding"):
			return "addition"
		case strings.Contains(blob, "story") && strings.Contains(blob, "problem"):
			return "word_problems"
		}
	case "reading":
		if strings.Contains(blob, "story") {
			return "story"
		}
	case "science":
		switch {
		case strings.Contains(blob, "animal"):
			return "animals"
		case strings.Contains(blob, "space") || strings.Contains(blob, "planet"):
			return "space"
		}
	}
	return ""
}

func windowBlob(sess *session.Session) string {
	var b strings.Builder
	for _, rec := range sess.Window {
		b.WriteString(strings.ToLower(rec.Message))
		b.WriteString(" ")
	}
	return b.String()
}

func (sg *Suggester) gradeFallback(grade string) []string {
	switch n := session.GradeNumber(grade); {
	case n <= 2:
		return sg.content.GradeSuggestions["early"]
	case n <= 5:
		return sg.content.GradeSuggestions["middle"]
	default:
		return sg.content.GradeSuggestions["upper"]
	}
}

// Redirect selects safe suggestions for a moderation-redirected turn. The
// turn that triggered the redirect never enters the context window, so this
// path ignores conversational context: grade-specific lists for the three
// earliest bands, else the generic list, shuffled and cut to three.
func (sg *Suggester) Redirect(grade string) []string {
	list, ok := sg.content.RedirectSugs[grade]
	if !ok {
		list = sg.content.RedirectSugs["default"]
	}

	shuffled := append([]string(nil), list...)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := sg.intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return cap3(shuffled)
}

// Encouragement picks a personalized supportive phrase uniformly at random.
// Past ten interactions an extra "so engaged" phrase joins the pool.
func (sg *Suggester) Encouragement(name string, interactions int) string {
	pool := sg.content.Encouragements.Base
	if interactions >= 10 {
		pool = append(append([]string(nil), pool...), sg.content.Encouragements.Engaged)
	}
	phrase := pool[sg.intn(len(pool))]
	return fmt.Sprintf(phrase, name)
}

func cap3(list []string) []string {
	out := append([]string(nil), list...)
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
