package chat

import (
	"context"
	"errors"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/larklabs/gastutor/internal/ai"
	"github.com/larklabs/gastutor/internal/tutor"
	"gorm.io/gorm"
)

type recordingProvider struct {
	last  []ai.Message
	reply string
}

func (p *recordingProvider) Complete(ctx context.Context, system string, messages []ai.Message) (string, error) {
	_ = ctx
	_ = system
	// copy to avoid mutations
	p.last = append([]ai.Message(nil), messages...)
	return p.reply, nil
}

func (p *recordingProvider) TestConnection(ctx context.Context) bool { return true }

type failingProvider struct{}

func (failingProvider) Complete(ctx context.Context, system string, messages []ai.Message) (string, error) {
	return "", errors.New("provider down")
}

func (failingProvider) TestConnection(ctx context.Context) bool { return false }

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Session{}, &Message{}, &Job{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, prov ai.Provider, window int) (*Service, *Repo) {
	t.Helper()
	repo := NewRepo(openTestDB(t))
	responder := tutor.NewResponder(prov, window)
	return NewService(repo, responder, window), repo
}

func TestStartSession_SeedsWelcomeMessage(t *testing.T) {
	svc, repo := newTestService(t, &recordingProvider{reply: "ok"}, 10)

	sess, err := svc.StartSession(context.Background(), 101, tutor.LevelG3)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if sess.SessionID == "" || sess.Level != "G3" || sess.Archived {
		t.Fatalf("unexpected session: %+v", sess)
	}

	msgs, err := repo.ListMessages(context.Background(), 101, sess.SessionID, 10, 0)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected exactly 1 welcome message, got %d", len(msgs))
	}
	if msgs[0].Role != "system" {
		t.Fatalf("expected system role, got %q", msgs[0].Role)
	}
	if msgs[0].Confidence != tutor.WelcomeConfidence {
		t.Fatalf("unexpected welcome confidence: %v", msgs[0].Confidence)
	}
}

func TestStartSession_ArchivesPreviousSession(t *testing.T) {
	svc, _ := newTestService(t, &recordingProvider{reply: "ok"}, 10)

	first, err := svc.StartSession(context.Background(), 102, tutor.LevelG3)
	if err != nil {
		t.Fatalf("first start: %v", err)
	}
	second, err := svc.StartSession(context.Background(), 102, tutor.LevelG2)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}

	active, err := svc.ActiveSession(context.Background(), 102)
	if err != nil {
		t.Fatalf("active session: %v", err)
	}
	if active.SessionID != second.SessionID {
		t.Fatalf("expected second session active, got %s", active.SessionID)
	}

	history, err := svc.ListHistory(context.Background(), 102)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != 1 || history[0].SessionID != first.SessionID {
		t.Fatalf("expected first session archived, got %+v", history)
	}
	if history[0].EndedAt == nil {
		t.Fatalf("archived session missing ended_at")
	}
}

func TestSendMessage_WritesUserAndAssistant(t *testing.T) {
	prov := &recordingProvider{reply: "Review CSA B149.1-25, Section 7.1 before testing."}
	svc, repo := newTestService(t, prov, 10)

	sess, err := svc.StartSession(context.Background(), 103, tutor.LevelG3)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	msg, err := svc.SendMessage(context.Background(), 103, "How do I leak test?")
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if msg.Role != "assistant" || msg.Content != prov.reply {
		t.Fatalf("unexpected assistant msg: %+v", msg)
	}
	if msg.Confidence != tutor.RemoteConfidence {
		t.Fatalf("unexpected confidence: %v", msg.Confidence)
	}
	refs := msg.CodeReferenceList()
	if len(refs) != 1 || refs[0].Section != "7.1" {
		t.Fatalf("expected stored code ref, got %+v", refs)
	}

	n, err := repo.CountMessages(context.Background(), 103, sess.SessionID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	// welcome + user + assistant
	if n != 3 {
		t.Fatalf("expected 3 messages, got %d", n)
	}
}

func TestSendMessage_UsesContextWindow(t *testing.T) {
	prov := &recordingProvider{reply: "ok"}
	window := 3
	svc, repo := newTestService(t, prov, window)

	sess, err := svc.StartSession(context.Background(), 104, tutor.LevelG2)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	for i := 0; i < 5; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		if err := repo.InsertMessage(context.Background(), &Message{
			MessageID: sess.SessionID + "-seed-" + string(rune('a'+i)),
			SessionID: sess.SessionID,
			UserID:    104,
			Role:      role,
			Content:   "seed",
		}); err != nil {
			t.Fatalf("seed msg %d: %v", i, err)
		}
	}

	if _, err := svc.SendMessage(context.Background(), 104, "new"); err != nil {
		t.Fatalf("send message: %v", err)
	}

	// windowed history plus the new user message
	if len(prov.last) != window+1 {
		t.Fatalf("expected provider to receive %d messages, got %d", window+1, len(prov.last))
	}
	last := prov.last[len(prov.last)-1]
	if last.Role != "user" || last.Content != "new" {
		t.Fatalf("expected last provider msg to be the new user msg, got role=%q content=%q", last.Role, last.Content)
	}
}

func TestSendMessage_ProviderFailureStillAnswers(t *testing.T) {
	svc, _ := newTestService(t, failingProvider{}, 10)

	if _, err := svc.StartSession(context.Background(), 105, tutor.LevelG3); err != nil {
		t.Fatalf("start session: %v", err)
	}

	msg, err := svc.SendMessage(context.Background(), 105, "venting question")
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if msg.Confidence != tutor.FallbackConfidence {
		t.Fatalf("expected fallback confidence, got %v", msg.Confidence)
	}

	pool := tutor.FallbackResponses(tutor.LevelG3)
	found := false
	for _, p := range pool {
		if msg.Content == p {
			found = true
		}
	}
	if !found {
		t.Fatalf("assistant content not from the fallback pool: %q", msg.Content)
	}
}

func TestEndSession(t *testing.T) {
	svc, _ := newTestService(t, &recordingProvider{reply: "ok"}, 10)

	sess, err := svc.StartSession(context.Background(), 106, tutor.LevelG3)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	ended, err := svc.EndSession(context.Background(), 106)
	if err != nil {
		t.Fatalf("end session: %v", err)
	}
	if ended.SessionID != sess.SessionID {
		t.Fatalf("ended wrong session: %s", ended.SessionID)
	}

	if _, err := svc.ActiveSession(context.Background(), 106); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected no active session, got err=%v", err)
	}

	if _, err := svc.EndSession(context.Background(), 106); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("ending without an active session should be not-found, got %v", err)
	}
}

func TestUpdateContext_MergesFields(t *testing.T) {
	svc, _ := newTestService(t, &recordingProvider{reply: "ok"}, 10)

	if _, err := svc.StartSession(context.Background(), 107, tutor.LevelG2); err != nil {
		t.Fatalf("start session: %v", err)
	}

	module := 11
	sess, err := svc.UpdateContext(context.Background(), 107, ContextPatch{ActiveModule: &module})
	if err != nil {
		t.Fatalf("first patch: %v", err)
	}
	if sess.DecodeContext().ActiveModule != 11 {
		t.Fatalf("module not set: %+v", sess.DecodeContext())
	}

	objective := "pressure regulators"
	sess, err = svc.UpdateContext(context.Background(), 107, ContextPatch{LearningObjective: &objective})
	if err != nil {
		t.Fatalf("second patch: %v", err)
	}
	c := sess.DecodeContext()
	if c.ActiveModule != 11 || c.LearningObjective != "pressure regulators" {
		t.Fatalf("patch did not merge: %+v", c)
	}
}

func TestGenerateAssistantReply_DoesNotDuplicatePrompt(t *testing.T) {
	prov := &recordingProvider{reply: "ok"}
	svc, _ := newTestService(t, prov, 10)

	sess, err := svc.StartSession(context.Background(), 108, tutor.LevelG3)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	if _, _, err := svc.InsertUserMessageOrGetExisting(context.Background(), 108, sess.SessionID, "what is a BTU", nil); err != nil {
		t.Fatalf("insert user message: %v", err)
	}

	_, msgID, err := svc.GenerateAssistantReplyAndInsert(context.Background(), 108, sess.SessionID, "what is a BTU")
	if err != nil {
		t.Fatalf("generate reply: %v", err)
	}
	if msgID == 0 {
		t.Fatalf("expected assistant message id")
	}

	occurrences := 0
	for _, m := range prov.last {
		if m.Content == "what is a BTU" {
			occurrences++
		}
	}
	if occurrences != 1 {
		t.Fatalf("prompt fed to provider %d times, want 1", occurrences)
	}
}

func TestCreateJobOrGetExisting_IdempotencyKeyReplays(t *testing.T) {
	svc, _ := newTestService(t, &recordingProvider{reply: "ok"}, 10)

	sess, err := svc.StartSession(context.Background(), 109, tutor.LevelG3)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	key := "retry-abc"
	first := &Job{
		ID:             "01JOBTESTULID0000000000000",
		UserID:         109,
		SessionID:      sess.SessionID,
		Prompt:         "p",
		IdempotencyKey: &key,
		Status:         JobQueued,
	}
	stored, created, err := svc.CreateJobOrGetExisting(context.Background(), first)
	if err != nil || !created {
		t.Fatalf("first create: created=%v err=%v", created, err)
	}

	dup := &Job{
		ID:             "01JOBTESTULID0000000000001",
		UserID:         109,
		SessionID:      sess.SessionID,
		Prompt:         "p",
		IdempotencyKey: &key,
		Status:         JobQueued,
	}
	replayed, created, err := svc.CreateJobOrGetExisting(context.Background(), dup)
	if err != nil {
		t.Fatalf("duplicate create: %v", err)
	}
	if created {
		t.Fatalf("duplicate key should not create a new job")
	}
	if replayed.ID != stored.ID {
		t.Fatalf("expected original job back, got %s", replayed.ID)
	}
}
