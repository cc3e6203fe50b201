package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/lumikid/tutor-backend/internal/ai"
	"github.com/lumikid/tutor-backend/internal/session"
)

type recordingProvider struct {
	last  []ai.Message
	opts  ai.Options
	calls int
	reply string
	err   error
}

func (p *recordingProvider) Chat(ctx context.Context, messages []ai.Message, opts ai.Options) (string, error) {
	_ = ctx
	p.calls++
	// copy to avoid mutations
	p.last = append([]ai.Message(nil), messages...)
	p.opts = opts
	if p.err != nil {
		return "", p.err
	}
	if p.reply == "" {
		return "ok", nil
	}
	return p.reply, nil
}

func newTestService(t *testing.T, prov ai.Provider, limit int) (*Service, *session.Store) {
	t.Helper()
	store := session.NewStore()
	svc, err := NewService(store, prov, limit, 10, WithRand(func(n int) int { return 0 }))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, store
}

func TestChat_ForwardedTurn(t *testing.T) {
	prov := &recordingProvider{reply: "3 times 4 is 12!"}
	svc, _ := newTestService(t, prov, 50)

	sess, welcome, err := svc.StartSession("Ava", "3", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !strings.Contains(welcome, "Ava") {
		t.Fatalf("welcome should reference the student: %q", welcome)
	}

	res, err := svc.Chat(context.Background(), sess.ID, "What is 3 times 4?")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}

	if res.Status != StatusSuccess {
		t.Fatalf("expected success status, got %q", res.Status)
	}
	if res.Text != "3 times 4 is 12!" {
		t.Fatalf("unexpected reply: %q", res.Text)
	}
	if res.Subject != "math" {
		t.Fatalf("expected math subject, got %q", res.Subject)
	}
	if prov.calls != 1 {
		t.Fatalf("expected exactly one provider call, got %d", prov.calls)
	}
	if sess.Interactions != 1 {
		t.Fatalf("expected interaction count 1, got %d", sess.Interactions)
	}
	if sess.Warnings != 0 {
		t.Fatalf("expected no warnings, got %d", sess.Warnings)
	}

	// prompt: fresh system instruction first, then the recent turns
	if prov.last[0].Role != session.RoleSystem || !strings.Contains(prov.last[0].Content, "Ava") {
		t.Fatalf("expected fresh system instruction first, got %+v", prov.last[0])
	}
	lastMsg := prov.last[len(prov.last)-1]
	if lastMsg.Role != session.RoleUser || lastMsg.Content != "What is 3 times 4?" {
		t.Fatalf("expected user message last, got %+v", lastMsg)
	}
}

func TestChat_RedirectedTurn(t *testing.T) {
	prov := &recordingProvider{}
	svc, _ := newTestService(t, prov, 50)

	sess, _, err := svc.StartSession("Ava", "3", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	res, err := svc.Chat(context.Background(), sess.ID, "I hate you, idiot")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}

	if res.Status != StatusRedirected {
		t.Fatalf("expected redirected status, got %q", res.Status)
	}
	if !strings.Contains(res.Text, "Ava") {
		t.Fatalf("redirect message should reference the student: %q", res.Text)
	}
	if prov.calls != 0 {
		t.Fatalf("model must not be invoked on a redirect, got %d calls", prov.calls)
	}
	if sess.Warnings != 1 {
		t.Fatalf("expected warning count 1, got %d", sess.Warnings)
	}
	if sess.Interactions != 0 {
		t.Fatalf("redirected turn must not count as an interaction, got %d", sess.Interactions)
	}
	if len(sess.Log) != 1 {
		t.Fatalf("redirected turn must not enter the conversation log, log=%d", len(sess.Log))
	}
	if res.Stats.TotalWarnings != 1 {
		t.Fatalf("stats should carry the warning, got %+v", res.Stats)
	}
	if len(res.Suggestions) == 0 || len(res.Suggestions) > 3 {
		t.Fatalf("expected 1..3 safe suggestions, got %d", len(res.Suggestions))
	}
}

func TestChat_RedirectDoesNotCountTowardLimit(t *testing.T) {
	prov := &recordingProvider{}
	svc, _ := newTestService(t, prov, 1)

	sess, _, _ := svc.StartSession("Ava", "3", nil)

	if _, err := svc.Chat(context.Background(), sess.ID, "I hate you, idiot"); err != nil {
		t.Fatalf("redirect turn: %v", err)
	}
	// the interaction budget is still untouched
	if _, err := svc.Chat(context.Background(), sess.ID, "What is 3 times 4?"); err != nil {
		t.Fatalf("clean turn after redirect: %v", err)
	}
	// now the limit is reached
	if _, err := svc.Chat(context.Background(), sess.ID, "And 5 times 5?"); !errors.Is(err, ErrInteractionLimit) {
		t.Fatalf("expected interaction limit error, got %v", err)
	}
}

func TestChat_ProviderFailureFallsBack(t *testing.T) {
	prov := &recordingProvider{err: errors.New("boom")}
	svc, _ := newTestService(t, prov, 50)

	sess, _, _ := svc.StartSession("Ava", "3", nil)

	res, err := svc.Chat(context.Background(), sess.ID, "What is 3 times 4?")
	if err != nil {
		t.Fatalf("provider failure must not surface: %v", err)
	}
	if res.Status != StatusSuccess {
		t.Fatalf("expected uniform success status, got %q", res.Status)
	}
	if !strings.Contains(res.Text, "Ava") {
		t.Fatalf("fallback should reference the student: %q", res.Text)
	}
	if strings.Contains(res.Text, "boom") {
		t.Fatalf("provider error text leaked: %q", res.Text)
	}
	if res.Subject != "math" {
		t.Fatalf("subject still computed on fallback, got %q", res.Subject)
	}
	if sess.Interactions != 1 {
		t.Fatalf("fallback turn counts exactly once, got %d", sess.Interactions)
	}
	// fallback reply preserved as an assistant turn for continuity
	last := sess.Log[len(sess.Log)-1]
	if last.Role != session.RoleAssistant || last.Content != res.Text {
		t.Fatalf("fallback not recorded as assistant turn: %+v", last)
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	svc, _ := newTestService(t, &recordingProvider{}, 50)
	sess, _, _ := svc.StartSession("Ava", "3", nil)

	if _, err := svc.Chat(context.Background(), sess.ID, "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected empty message error, got %v", err)
	}
}

func TestChat_UnknownSession(t *testing.T) {
	svc, _ := newTestService(t, &recordingProvider{}, 50)

	if _, err := svc.Chat(context.Background(), "nope", "hi"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}

func TestChat_ContextWindowEviction(t *testing.T) {
	prov := &recordingProvider{}
	svc, _ := newTestService(t, prov, 50)
	sess, _, _ := svc.StartSession("Ava", "3", nil)

	for i := 0; i < 6; i++ {
		if _, err := svc.Chat(context.Background(), sess.ID, fmt.Sprintf("math question %d", i)); err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
	}
	if len(sess.Window) != 5 {
		t.Fatalf("expected context window of 5, got %d", len(sess.Window))
	}
	if sess.Window[0].Message != "math question 1" {
		t.Fatalf("expected oldest record evicted, window starts with %q", sess.Window[0].Message)
	}
}

func TestChat_PromptWindowBounded(t *testing.T) {
	prov := &recordingProvider{}
	svc, _ := newTestService(t, prov, 50)
	sess, _, _ := svc.StartSession("Ava", "3", nil)

	for i := 0; i < 12; i++ {
		if _, err := svc.Chat(context.Background(), sess.ID, fmt.Sprintf("question %d", i)); err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
	}

	// 1 system + at most 10 recent non-system turns
	if len(prov.last) != 11 {
		t.Fatalf("expected prompt of 11 messages, got %d", len(prov.last))
	}
	for i, m := range prov.last[1:] {
		if m.Role == session.RoleSystem {
			t.Fatalf("history must not carry system turns, found at %d", i+1)
		}
	}
}

func TestSamplingBudgets(t *testing.T) {
	cases := []struct {
		message string
		want    int
	}{
		{"What is 3 times 4?", budgetDefault},
		{"Tell me a 5 minute story about dragons", budgetLongStory},
		{"Tell me a five minute story", budgetLongStory},
		{"Tell me a 10 minute story", budgetLongerStory},
		{"Tell me a ten minute story please", budgetLongerStory},
		{"Tell me a short story", budgetShort},
		{"short answer please", budgetDefault},
	}
	for _, tc := range cases {
		opts := samplingFor(tc.message)
		if opts.MaxTokens != tc.want {
			t.Fatalf("samplingFor(%q) budget = %d, want %d", tc.message, opts.MaxTokens, tc.want)
		}
		if opts.Temperature != temperature || opts.PresencePenalty != presencePenalty || opts.FrequencyPenalty != frequencyPenalty {
			t.Fatalf("sampling parameters must be fixed, got %+v", opts)
		}
	}
}

func TestSummarize(t *testing.T) {
	prov := &recordingProvider{}
	svc, _ := newTestService(t, prov, 50)
	sess, _, _ := svc.StartSession("Ava", "3", nil)

	if _, err := svc.Chat(context.Background(), sess.ID, "What is 3 times 4?"); err != nil {
		t.Fatalf("chat: %v", err)
	}

	sum, err := svc.Summarize(sess.ID)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if sum.StudentName != "Ava" || sum.Grade != "3" {
		t.Fatalf("unexpected profile: %+v", sum)
	}
	if sum.TotalInteractions != 1 {
		t.Fatalf("expected 1 interaction, got %d", sum.TotalInteractions)
	}
	if len(sum.TopicsExplored) != 1 || sum.TopicsExplored[0] != "math" {
		t.Fatalf("expected [math], got %v", sum.TopicsExplored)
	}
	if len(sum.Highlights) == 0 || len(sum.Achievements) == 0 || len(sum.NextSteps) == 0 {
		t.Fatalf("summary derivations must be non-empty: %+v", sum)
	}
}

func TestEndSession(t *testing.T) {
	svc, store := newTestService(t, &recordingProvider{}, 50)
	sess, _, _ := svc.StartSession("Ava", "3", nil)

	msg, err := svc.End(sess.ID)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if !strings.Contains(msg, "Ava") {
		t.Fatalf("goodbye should reference the student: %q", msg)
	}
	if _, ok := store.Get(sess.ID); ok {
		t.Fatalf("session must be deleted on end")
	}
	if _, err := svc.End(sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("second end should be not found, got %v", err)
	}
}
