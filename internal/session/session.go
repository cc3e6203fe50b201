// Package session owns ephemeral per-student conversational state. Nothing
// here survives the process; there is no durable storage.
package session

import (
	"strings"
	"sync"
	"time"
)

const (
	// RoleSystem / RoleUser / RoleAssistant tag conversation turns.
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// maxLogTurns is the hard cap on the conversation log; crossing it
	// truncates the log to the most recent truncateLogTo turns.
	maxLogTurns   = 100
	truncateLogTo = 50

	// contextWindowSize bounds the rolling record buffer used for
	// follow-up suggestions.
	contextWindowSize = 5

	DefaultName  = "friend"
	DefaultGrade = "3"
)

// ValidGrades is the fixed grade-band enumeration, ordered youngest first.
var ValidGrades = []string{"K", "1", "2", "3", "4", "5", "6", "7", "8"}

// Turn is one message in the conversation log.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ContextRecord is one entry of the suggestion context window.
type ContextRecord struct {
	Message   string    `json:"message"`
	Subject   string    `json:"subject"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the unit of conversational state. The embedded mutex serializes
// turns within a session; callers hold it across a whole chat turn so two
// in-flight requests can never interleave counter or log mutations. Sessions
// are independent: no cross-session locking exists.
type Session struct {
	mu sync.Mutex

	ID          string
	StudentName string
	Grade       string
	Subjects    []string

	Log            []Turn
	Interactions   int
	Warnings       int
	Topics         map[string]struct{}
	CurrentSubject string
	Window         []ContextRecord

	CreatedAt  time.Time
	LastActive time.Time
}

// Lock serializes chat turns for this session.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the turn lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// AppendTurn appends one turn and enforces the log cap: past maxLogTurns the
// log is cut to the most recent truncateLogTo turns, order preserved. The
// live system instruction is regenerated fresh each turn, so truncation
// dropping old system entries is harmless.
func (s *Session) AppendTurn(role, content string) {
	s.Log = append(s.Log, Turn{Role: role, Content: content, Timestamp: time.Now()})
	if len(s.Log) > maxLogTurns {
		s.Log = append([]Turn(nil), s.Log[len(s.Log)-truncateLogTo:]...)
	}
}

// RecentTurns returns up to n of the most recent non-system turns in
// chronological order.
func (s *Session) RecentTurns(n int) []Turn {
	out := make([]Turn, 0, n)
	for i := len(s.Log) - 1; i >= 0 && len(out) < n; i-- {
		if s.Log[i].Role == RoleSystem {
			continue
		}
		out = append(out, s.Log[i])
	}
	// reverse to chronological order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// RecordContext pushes a context record, evicting the oldest past the window
// cap (FIFO).
func (s *Session) RecordContext(message, subject string) {
	s.Window = append(s.Window, ContextRecord{
		Message:   message,
		Subject:   subject,
		Timestamp: time.Now(),
	})
	if len(s.Window) > contextWindowSize {
		s.Window = append([]ContextRecord(nil), s.Window[len(s.Window)-contextWindowSize:]...)
	}
}

// AddTopic records a discussed subject tag and makes it current.
func (s *Session) AddTopic(subject string) {
	if subject == "" {
		return
	}
	if s.Topics == nil {
		s.Topics = make(map[string]struct{})
	}
	s.Topics[subject] = struct{}{}
	s.CurrentSubject = subject
}

// TopicList returns the distinct discussed subjects in classifier order
// where possible, falling back to insertion-free map order otherwise.
func (s *Session) TopicList() []string {
	out := make([]string, 0, len(s.Topics))
	for _, tag := range subjectOrder {
		if _, ok := s.Topics[tag]; ok {
			out = append(out, tag)
		}
	}
	return out
}

// subjectOrder mirrors the classifier's fixed tag order so topic lists are
// deterministic.
var subjectOrder = []string{"math", "reading", "science", "history", "art", "writing", "social"}

// NormalizeGrade validates a grade against the fixed enumeration, falling
// back to the default grade.
func NormalizeGrade(grade string) string {
	g := strings.ToUpper(strings.TrimSpace(grade))
	for _, v := range ValidGrades {
		if g == v {
			return v
		}
	}
	return DefaultGrade
}

// GradeNumber maps a grade band to a comparable number (K is 0).
func GradeNumber(grade string) int {
	if grade == "K" {
		return 0
	}
	for i, v := range ValidGrades {
		if grade == v {
			return i
		}
	}
	return 3
}
