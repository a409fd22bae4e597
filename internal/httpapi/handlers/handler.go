package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/larklabs/gastutor/internal/ai"
	"github.com/larklabs/gastutor/internal/billing"
	"github.com/larklabs/gastutor/internal/chat"
	"github.com/larklabs/gastutor/internal/common"
	"github.com/larklabs/gastutor/internal/config"
	"github.com/larklabs/gastutor/internal/httpapi/middleware"
	"github.com/larklabs/gastutor/internal/store/rabbitmq"
	"github.com/larklabs/gastutor/internal/store/redisstore"
	"github.com/larklabs/gastutor/internal/subscription"
	"github.com/larklabs/gastutor/internal/tutor"
	"gorm.io/gorm"
)

type Handler struct {
	DB        *gorm.DB
	Cfg       config.Config
	Redis     *redisstore.Store
	ChatSvc   *chat.Service
	SubSvc    *subscription.Service
	Responder *tutor.Responder
	Billing   *billing.Client
	Rabbit    *rabbitmq.Publisher
}

// NewProviderRegistry wires both completion adapters so the server and the
// worker construct the same provider for a given configuration.
func NewProviderRegistry(cfg config.Config) *ai.Registry {
	reg := ai.NewRegistry()
	reg.Register("openai", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OpenAIModel
		}
		return ai.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, m), nil
	})
	reg.Register("anthropic", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.AnthropicModel
		}
		return ai.NewAnthropicProvider(cfg.AnthropicBaseURL, cfg.AnthropicAPIKey, m), nil
	})
	return reg
}

// BuildProvider constructs the configured completion provider. A missing API
// key yields a nil provider: the responder then serves canned fallbacks
// instead of failing chat turns.
func BuildProvider(cfg config.Config) ai.Provider {
	name := strings.ToLower(cfg.AIProvider)
	if name == "" {
		name = "anthropic"
	}

	key := cfg.AnthropicAPIKey
	if name == "openai" {
		key = cfg.OpenAIAPIKey
	}
	if strings.TrimSpace(key) == "" {
		log.Printf("ai: no api key for provider=%s, answers degrade to fallback", name)
		return nil
	}

	p, err := NewProviderRegistry(cfg).Get(context.Background(), name, "")
	if err != nil {
		panic(fmt.Sprintf("unsupported AI_PROVIDER=%q", cfg.AIProvider))
	}
	return p
}

func NewHandler(db *gorm.DB, cfg config.Config, rds *redisstore.Store, rabbit *rabbitmq.Publisher) *Handler {
	repo := chat.NewRepo(db)
	responder := tutor.NewResponder(BuildProvider(cfg), cfg.ChatContextWindowSize)
	chatSvc := chat.NewService(repo, responder, cfg.ChatContextWindowSize)
	subSvc := subscription.NewService(db, rds, cfg.FreeMessageLimit, cfg.ProAccessDays)

	return &Handler{
		DB:        db,
		Cfg:       cfg,
		Redis:     rds,
		ChatSvc:   chatSvc,
		SubSvc:    subSvc,
		Responder: responder,
		Billing:   billing.NewClient(cfg.StripeSecretKey),
		Rabbit:    rabbit,
	}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

func userIDFromContext(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}

// messagePayload shapes a stored message for API responses, decoding the
// serialized citation metadata.
func messagePayload(m *chat.Message) gin.H {
	return gin.H{
		"message_id":        m.MessageID,
		"session_id":        m.SessionID,
		"role":              m.Role,
		"content":           m.Content,
		"confidence":        m.Confidence,
		"sources":           m.SourceList(),
		"code_references":   m.CodeReferenceList(),
		"module_references": m.ModuleReferenceList(),
		"created_at":        m.CreatedAt,
	}
}

func sessionPayload(s *chat.Session) gin.H {
	return gin.H{
		"session_id": s.SessionID,
		"level":      s.Level,
		"context":    s.DecodeContext(),
		"archived":   s.Archived,
		"started_at": s.StartedAt,
		"ended_at":   s.EndedAt,
	}
}
