package tutor

import (
	"fmt"
	"strings"

	"github.com/lumikid/tutor-backend/internal/ai"
	"github.com/lumikid/tutor-backend/internal/session"
)

// SystemPrompt builds the tutor instruction from the current profile. It is
// regenerated fresh for every model call and always sent first; historical
// system turns in the log are never reused.
func SystemPrompt(name, grade string) string {
	gradeLabel := "grade " + grade
	if grade == "K" {
		gradeLabel = "kindergarten"
	}
	return fmt.Sprintf(
		"You are a warm, patient tutor for %s, a %s student. "+
			"Use simple, encouraging language suited to their age. "+
			"Keep every answer safe, kind, and age-appropriate: never discuss "+
			"violence, romance, or adult topics, and gently steer back to "+
			"learning if asked. Prefer short answers with one question back "+
			"to keep %s engaged.",
		name, gradeLabel, name,
	)
}

// WelcomeMessage greets a new student at session start.
func WelcomeMessage(name string) string {
	return fmt.Sprintf(
		"Hi %s! I'm so happy you're here. I can help with math, reading, "+
			"science, and lots more. What would you like to learn about today?",
		name,
	)
}

// GoodbyeMessage closes out an ended session.
func GoodbyeMessage(name string) string {
	return fmt.Sprintf("Great job today, %s! Come back soon — there's always more to discover!", name)
}

// RedirectMessage builds the category-specific safe response for a flagged
// message. The model is never invoked on this path.
func (c *Content) RedirectMessage(category, name string) string {
	tmpl, ok := c.RedirectMessages[category]
	if !ok {
		tmpl = c.RedirectMessages["default"]
	}
	return fmt.Sprintf(tmpl, name)
}

// FallbackReply synthesizes a contextual stand-in when the completion
// provider fails, so the conversation keeps its continuity.
func (c *Content) FallbackReply(subject, name string) string {
	tmpl, ok := c.Fallbacks[subject]
	if !ok {
		tmpl = c.Fallbacks["default"]
	}
	return fmt.Sprintf(tmpl, name)
}

// response-length budget tiers, in provider tokens
const (
	budgetDefault     = 300
	budgetShort       = 150
	budgetLongStory   = 800
	budgetLongerStory = 1200
)

// fixed sampling parameters tuned for varied, engaging output
const (
	temperature      = 0.9
	presencePenalty  = 0.6
	frequencyPenalty = 0.5
)

// samplingFor decides the token budget from the message text: story requests
// with a duration cue get a larger budget, "short" a smaller one.
func samplingFor(message string) ai.Options {
	lower := strings.ToLower(message)
	budget := budgetDefault
	if strings.Contains(lower, "story") {
		switch {
		case strings.Contains(lower, "10 minute") || strings.Contains(lower, "ten minute"):
			budget = budgetLongerStory
		case strings.Contains(lower, "5 minute") || strings.Contains(lower, "five minute"):
			budget = budgetLongStory
		case strings.Contains(lower, "short"):
			budget = budgetShort
		}
	}
	return ai.Options{
		MaxTokens:        budget,
		Temperature:      temperature,
		PresencePenalty:  presencePenalty,
		FrequencyPenalty: frequencyPenalty,
	}
}

// promptWindow is how many recent non-system turns accompany the fresh
// system instruction on each model call.
const promptWindow = 10

// buildPrompt assembles the outbound message list: one freshly generated
// system instruction followed by the sliding window of recent turns in
// chronological order.
func buildPrompt(sess *session.Session, window int) []ai.Message {
	if window <= 0 {
		window = promptWindow
	}
	recent := sess.RecentTurns(window)
	out := make([]ai.Message, 0, len(recent)+1)
	out = append(out, ai.Message{
		Role:    session.RoleSystem,
		Content: SystemPrompt(sess.StudentName, sess.Grade),
	})
	for _, t := range recent {
		out = append(out, ai.Message{Role: t.Role, Content: t.Content})
	}
	return out
}
