package tutor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/lumikid/tutor-backend/internal/ai"
	"github.com/lumikid/tutor-backend/internal/observability"
	"github.com/lumikid/tutor-backend/internal/safety"
	"github.com/lumikid/tutor-backend/internal/session"
)

var (
	ErrSessionNotFound  = errors.New("tutor: session not found")
	ErrEmptyMessage     = errors.New("tutor: message is empty")
	ErrInteractionLimit = errors.New("tutor: interaction limit reached")
)

const (
	StatusSuccess    = "success"
	StatusRedirected = "redirected"
)

// Stats is the per-turn session statistics snapshot.
type Stats struct {
	TotalWarnings   int      `json:"totalWarnings"`
	TopicsDiscussed []string `json:"topicsDiscussed"`
}

// TurnResult is the uniform outcome of one chat turn, identical in shape
// whether the model succeeded, failed, or the turn was redirected.
type TurnResult struct {
	Text          string
	Subject       string
	Suggestions   []string
	Encouragement string
	Status        string
	Stats         Stats
}

// Summary snapshots a whole session for the summary endpoint.
type Summary struct {
	Duration          string
	TotalInteractions int
	TotalWarnings     int
	TopicsExplored    []string
	StudentName       string
	Grade             string
	Highlights        []string
	Suggestions       []string
	Achievements      []string
	NextSteps         []string
}

// Status is the lightweight liveness view of a session.
type Status struct {
	Active       bool
	Duration     string
	Interactions int
	Topics       []string
}

// Service orchestrates chat turns: moderation, history, prompt assembly,
// model invocation, classification, and suggestions.
type Service struct {
	store      *session.Store
	provider   ai.Provider
	gate       *safety.Gate
	content    *Content
	classifier *Classifier
	suggester  *Suggester

	interactionLimit int
	promptWindowSize int
	providerTimeout  time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithRand injects a deterministic random source for tests.
func WithRand(intn func(n int) int) Option {
	return func(s *Service) {
		s.suggester.intn = intn
	}
}

// WithProviderTimeout bounds each completion call; expiry routes to the
// fallback path.
func WithProviderTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.providerTimeout = d
	}
}

func NewService(store *session.Store, provider ai.Provider, interactionLimit, promptWindowSize int, opts ...Option) (*Service, error) {
	if interactionLimit <= 0 {
		interactionLimit = 50
	}
	if promptWindowSize <= 0 {
		promptWindowSize = promptWindow
	}

	gate, err := safety.NewGate()
	if err != nil {
		return nil, err
	}
	content, err := LoadContent()
	if err != nil {
		return nil, err
	}

	s := &Service{
		store:            store,
		provider:         provider,
		gate:             gate,
		content:          content,
		classifier:       NewClassifier(content),
		suggester:        NewSuggester(content, rand.Intn),
		interactionLimit: interactionLimit,
		promptWindowSize: promptWindowSize,
		providerTimeout:  45 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// StartSession creates a session and returns it with a personalized welcome.
func (s *Service) StartSession(name, grade string, subjects []string) (*session.Session, string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		trimmed = session.DefaultName
	}
	normalized := session.NormalizeGrade(grade)

	sess, err := s.store.Create(trimmed, normalized, subjects, SystemPrompt(trimmed, normalized))
	if err != nil {
		return nil, "", fmt.Errorf("start session: %w", err)
	}
	observability.SessionsStarted.Inc()
	log.Printf("[Session] started id=%s name=%s grade=%s", sess.ID, sess.StudentName, sess.Grade)
	return sess, WelcomeMessage(sess.StudentName), nil
}

// Chat runs one turn through the pipeline. Turns within a session serialize
// on the session's own lock; the provider round trip blocks only that
// session.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (*TurnResult, error) {
	if !s.store.Touch(sessionID) {
		return nil, ErrSessionNotFound
	}
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	msg := strings.TrimSpace(message)
	if msg == "" {
		return nil, ErrEmptyMessage
	}

	sess.Lock()
	defer sess.Unlock()

	if sess.Interactions >= s.interactionLimit {
		return nil, ErrInteractionLimit
	}

	if check := s.gate.Check(msg); check.Flagged {
		sess.Warnings++
		observability.ModerationFlags.WithLabelValues(check.Category).Inc()
		observability.ChatTurns.WithLabelValues(StatusRedirected).Inc()
		log.Printf("[Chat] redirected session=%s category=%s", sess.ID, check.Category)
		return &TurnResult{
			Text:          s.content.RedirectMessage(check.Category, sess.StudentName),
			Suggestions:   s.suggester.Redirect(sess.Grade),
			Encouragement: s.suggester.Encouragement(sess.StudentName, sess.Interactions),
			Status:        StatusRedirected,
			Stats:         statsOf(sess),
		}, nil
	}

	sess.AppendTurn(session.RoleUser, msg)
	sess.Interactions++

	prompt := buildPrompt(sess, s.promptWindowSize)
	opts := samplingFor(msg)

	subject := s.classifier.Classify(msg)

	cctx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	reply, err := s.provider.Chat(cctx, prompt, opts)
	cancel()
	if err != nil || strings.TrimSpace(reply) == "" {
		// The raw provider error never reaches the student.
		observability.ProviderFailures.Inc()
		log.Printf("[Chat] provider failed session=%s err=%v", sess.ID, err)
		reply = s.content.FallbackReply(subject, sess.StudentName)
	}

	sess.AppendTurn(session.RoleAssistant, reply)
	sess.AddTopic(subject)
	sess.RecordContext(msg, subject)

	observability.ChatTurns.WithLabelValues(StatusSuccess).Inc()
	return &TurnResult{
		Text:          reply,
		Subject:       subject,
		Suggestions:   s.suggester.Suggest(sess),
		Encouragement: s.suggester.Encouragement(sess.StudentName, sess.Interactions),
		Status:        StatusSuccess,
		Stats:         statsOf(sess),
	}, nil
}

// Summarize builds the end-of-session report.
func (s *Service) Summarize(sessionID string) (*Summary, error) {
	if !s.store.Touch(sessionID) {
		return nil, ErrSessionNotFound
	}
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	sess.Lock()
	defer sess.Unlock()

	topics := sess.TopicList()
	return &Summary{
		Duration:          time.Since(sess.CreatedAt).Round(time.Second).String(),
		TotalInteractions: sess.Interactions,
		TotalWarnings:     sess.Warnings,
		TopicsExplored:    topics,
		StudentName:       sess.StudentName,
		Grade:             sess.Grade,
		Highlights:        highlights(topics),
		Suggestions:       s.suggester.Suggest(sess),
		Achievements:      achievements(sess),
		NextSteps:         nextSteps(topics),
	}, nil
}

// End deletes a session and returns the goodbye message.
func (s *Service) End(sessionID string) (string, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return "", ErrSessionNotFound
	}
	name := sess.StudentName
	if !s.store.Delete(sessionID) {
		return "", ErrSessionNotFound
	}
	log.Printf("[Session] ended id=%s", sessionID)
	return GoodbyeMessage(name), nil
}

// SessionStatus reports liveness for a session.
func (s *Service) SessionStatus(sessionID string) (*Status, error) {
	if !s.store.Touch(sessionID) {
		return nil, ErrSessionNotFound
	}
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	sess.Lock()
	defer sess.Unlock()

	return &Status{
		Active:       true,
		Duration:     time.Since(sess.CreatedAt).Round(time.Second).String(),
		Interactions: sess.Interactions,
		Topics:       sess.TopicList(),
	}, nil
}

func statsOf(sess *session.Session) Stats {
	return Stats{
		TotalWarnings:   sess.Warnings,
		TopicsDiscussed: sess.TopicList(),
	}
}

func highlights(topics []string) []string {
	if len(topics) == 0 {
		return []string{"Showed up ready to learn!"}
	}
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		out = append(out, "Explored "+t)
	}
	return out
}

func achievements(sess *session.Session) []string {
	var out []string
	if sess.Interactions >= 1 {
		out = append(out, fmt.Sprintf("Asked %d great questions", sess.Interactions))
	}
	if len(sess.Topics) >= 3 {
		out = append(out, "Curious explorer: three or more subjects in one session")
	}
	if sess.Interactions >= 10 {
		out = append(out, "Super learner: ten or more questions")
	}
	if sess.Warnings == 0 {
		out = append(out, "Kept the conversation kind and safe")
	}
	return out
}

func nextSteps(topics []string) []string {
	steps := map[string]string{
		"math":    "Keep practicing math with a few problems each day",
		"reading": "Pick a new book or story to read this week",
		"science": "Try a simple at-home experiment with a grown-up",
		"history": "Ask a family member about something from the past",
		"art":     "Make time to draw or craft something new",
		"writing": "Write a few sentences in a journal tonight",
		"social":  "Practice one act of kindness tomorrow",
	}
	var out []string
	for _, t := range topics {
		if step, ok := steps[t]; ok {
			out = append(out, step)
		}
	}
	if len(out) == 0 {
		out = append(out, "Come back with a question about anything you're curious about")
	}
	return out
}
