package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/larklabs/gastutor/internal/ai"
	"github.com/larklabs/gastutor/internal/common"
	"github.com/larklabs/gastutor/internal/tutor"
	"gorm.io/gorm"
)

// Service owns the tutoring session lifecycle and drives the Responder for
// each conversation turn.
type Service struct {
	repo          *Repo
	responder     *tutor.Responder
	contextWindow int
}

func NewService(repo *Repo, responder *tutor.Responder, contextWindow int) *Service {
	if contextWindow <= 0 || contextWindow > 100 {
		contextWindow = 10
	}
	return &Service{repo: repo, responder: responder, contextWindow: contextWindow}
}

func welcomeText(cfg tutor.Configuration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Welcome to your %s! I'm your AI assistant specialized in %s.\n\nI can help you with:\n", cfg.Name, cfg.Description)
	for _, cap := range cfg.Capabilities {
		fmt.Fprintf(&b, "• %s\n", cap)
	}
	b.WriteString("\nWhat would you like to learn about today?")
	return b.String()
}

// StartSession archives any active session and opens a new one for the level,
// seeded with exactly one synthesized system welcome message.
func (s *Service) StartSession(ctx context.Context, userID uint64, level tutor.Level) (*Session, error) {
	cfg := tutor.Lookup(level)

	now := time.Now()
	if err := s.repo.ArchiveActiveSession(ctx, userID, now); err != nil {
		return nil, err
	}

	sid, err := common.NewULID()
	if err != nil {
		return nil, err
	}

	session := &Session{
		SessionID: sid,
		UserID:    userID,
		Level:     string(cfg.Level),
		StartedAt: now,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	welcome := &Message{
		MessageID:  uuid.NewString(),
		SessionID:  sid,
		UserID:     userID,
		Role:       "system",
		Content:    welcomeText(cfg),
		Confidence: tutor.WelcomeConfidence,
		Sources:    `["System initialization"]`,
	}
	if err := s.repo.InsertMessage(ctx, welcome); err != nil {
		return nil, err
	}

	return session, nil
}

// ActiveSession returns the user's live session, gorm.ErrRecordNotFound if none.
func (s *Service) ActiveSession(ctx context.Context, userID uint64) (*Session, error) {
	return s.repo.GetActiveSession(ctx, userID)
}

// EndSession moves the active session into history. Ending with no active
// session is an error the caller maps to a not-found guard.
func (s *Service) EndSession(ctx context.Context, userID uint64) (*Session, error) {
	sess, err := s.repo.GetActiveSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ArchiveActiveSession(ctx, userID, time.Now()); err != nil {
		return nil, err
	}
	return sess, nil
}

// UpdateContext merges non-nil patch fields into the active session context.
func (s *Service) UpdateContext(ctx context.Context, userID uint64, patch ContextPatch) (*Session, error) {
	sess, err := s.repo.GetActiveSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	c := sess.DecodeContext()
	if patch.ActiveModule != nil {
		c.ActiveModule = *patch.ActiveModule
	}
	if patch.ActiveCodeSection != nil {
		c.ActiveCodeSection = *patch.ActiveCodeSection
	}
	if patch.LearningObjective != nil {
		c.LearningObjective = *patch.LearningObjective
	}
	sess.EncodeContext(c)

	if err := s.repo.SaveSessionContext(ctx, sess.SessionID, sess.Context); err != nil {
		return nil, err
	}
	return sess, nil
}

// ListHistory returns archived sessions, most recently ended first.
func (s *Service) ListHistory(ctx context.Context, userID uint64) ([]Session, error) {
	return s.repo.ListArchivedSessions(ctx, userID)
}

// SendMessage appends the user's message to the active session, generates the
// assistant answer and appends it too. The Responder recovers every provider
// failure, so the turn only errors on storage problems.
func (s *Service) SendMessage(ctx context.Context, userID uint64, content string) (*Message, error) {
	sess, err := s.repo.GetActiveSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	history, err := s.recentHistory(ctx, userID, sess.SessionID)
	if err != nil {
		return nil, err
	}

	userMsg := &Message{
		MessageID: uuid.NewString(),
		SessionID: sess.SessionID,
		UserID:    userID,
		Role:      "user",
		Content:   content,
	}
	if err := s.repo.InsertMessage(ctx, userMsg); err != nil {
		return nil, err
	}

	resp := s.responder.GenerateResponse(ctx, content, tutor.Level(sess.Level), history)

	assistantMsg := &Message{
		MessageID: uuid.NewString(),
		SessionID: sess.SessionID,
		UserID:    userID,
		Role:      "assistant",
		Content:   resp.Content,
	}
	assistantMsg.SetMetadata(resp)

	if err := s.repo.InsertMessage(ctx, assistantMsg); err != nil {
		return nil, err
	}
	return assistantMsg, nil
}

func (s *Service) ListMessages(ctx context.Context, userID uint64, sessionID string, limit int, beforeID uint64) ([]Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	// reject foreign session ids before listing
	sess, err := s.repo.GetSessionBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.repo.ListMessages(ctx, userID, sessionID, limit, beforeID)
}

// ValidateActiveSession confirms the session id is the caller's live session.
func (s *Service) ValidateActiveSession(ctx context.Context, userID uint64, sessionID string) error {
	sess, err := s.repo.GetActiveSession(ctx, userID)
	if err != nil {
		return err
	}
	if sess.SessionID != sessionID {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// InsertUserMessageOrGetExisting persists an inbound user message for the
// async pipeline, honoring the idempotency key when present.
func (s *Service) InsertUserMessageOrGetExisting(ctx context.Context, userID uint64, sessionID, content string, key *string) (*Message, bool, error) {
	if err := s.ValidateActiveSession(ctx, userID, sessionID); err != nil {
		return nil, false, err
	}
	return s.repo.InsertUserMessageOrGetExisting(ctx, &Message{
		MessageID:      uuid.NewString(),
		SessionID:      sessionID,
		UserID:         userID,
		Role:           "user",
		Content:        content,
		IdempotencyKey: key,
	})
}

// GenerateAssistantReplyAndInsert produces the answer for an already-stored
// user message; used by the worker. prompt is the user message text the job
// was created for.
func (s *Service) GenerateAssistantReplyAndInsert(ctx context.Context, userID uint64, sessionID, prompt string) (string, uint64, error) {
	sess, err := s.repo.GetSessionBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", 0, gorm.ErrRecordNotFound
		}
		return "", 0, err
	}
	if sess.UserID != userID {
		return "", 0, gorm.ErrRecordNotFound
	}

	history, err := s.recentHistory(ctx, userID, sessionID)
	if err != nil {
		return "", 0, err
	}
	// the stored user message is the prompt; don't feed it twice
	if n := len(history); n > 0 && history[n-1].Role == "user" && history[n-1].Content == prompt {
		history = history[:n-1]
	}

	resp := s.responder.GenerateResponse(ctx, prompt, tutor.Level(sess.Level), history)

	assistantMsg := &Message{
		MessageID: uuid.NewString(),
		SessionID: sessionID,
		UserID:    userID,
		Role:      "assistant",
		Content:   resp.Content,
	}
	assistantMsg.SetMetadata(resp)

	if err := s.repo.InsertMessage(ctx, assistantMsg); err != nil {
		return "", 0, err
	}
	return resp.Content, assistantMsg.ID, nil
}

// recentHistory returns the trailing window in ASC order (oldest -> newest).
func (s *Service) recentHistory(ctx context.Context, userID uint64, sessionID string) ([]ai.Message, error) {
	recentDesc, err := s.repo.ListRecentMessagesDesc(ctx, userID, sessionID, s.contextWindow+1)
	if err != nil {
		return nil, err
	}
	out := make([]ai.Message, 0, len(recentDesc))
	for i := len(recentDesc) - 1; i >= 0; i-- {
		m := recentDesc[i]
		out = append(out, ai.Message{Role: m.Role, Content: m.Content})
	}
	return out, nil
}

func (s *Service) CreateJob(ctx context.Context, job *Job) error {
	return s.repo.CreateJob(ctx, job)
}

func (s *Service) GetJob(ctx context.Context, jobID string) (*Job, error) {
	return s.repo.GetJobByID(ctx, jobID)
}

func (s *Service) CreateJobOrGetExisting(ctx context.Context, job *Job) (*Job, bool, error) {
	return s.repo.CreateJobOrGetExisting(ctx, job)
}

func (s *Service) GetJobByUserAndIdempotencyKey(ctx context.Context, userID uint64, key string) (*Job, error) {
	return s.repo.GetJobByUserAndIdempotencyKey(ctx, userID, key)
}
