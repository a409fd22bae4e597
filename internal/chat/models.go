package chat

import (
	"encoding/json"
	"time"

	"github.com/larklabs/gastutor/internal/tutor"
)

// Session is one tutoring conversation. A user has at most one non-archived
// session; starting a new one archives the previous. The level never changes
// for the lifetime of a session.
type Session struct {
	ID        uint64     `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionID string     `gorm:"type:varchar(26);uniqueIndex;not null" json:"session_id"`
	UserID    uint64     `gorm:"index;not null" json:"-"`
	Level     string     `gorm:"type:varchar(8);not null" json:"level"`
	Context   string     `gorm:"type:text" json:"-"`
	Archived  bool       `gorm:"index;not null;default:false" json:"archived"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	CreatedAt time.Time  `json:"-"`
	UpdatedAt time.Time  `json:"-"`
}

func (Session) TableName() string { return "tutor_sessions" }

// SessionContext is the free-form study focus carried with a session.
type SessionContext struct {
	ActiveModule      int    `json:"active_module,omitempty"`
	ActiveCodeSection string `json:"active_code_section,omitempty"`
	LearningObjective string `json:"learning_objective,omitempty"`
}

// ContextPatch is a partial context update; nil fields are left unchanged.
type ContextPatch struct {
	ActiveModule      *int    `json:"active_module"`
	ActiveCodeSection *string `json:"active_code_section"`
	LearningObjective *string `json:"learning_objective"`
}

// DecodeContext parses the stored context blob. A corrupt blob decodes to the
// zero context rather than failing the session load.
func (s *Session) DecodeContext() SessionContext {
	var c SessionContext
	if s.Context != "" {
		_ = json.Unmarshal([]byte(s.Context), &c)
	}
	return c
}

func (s *Session) EncodeContext(c SessionContext) {
	b, err := json.Marshal(c)
	if err != nil {
		return
	}
	s.Context = string(b)
}

// Message is a single conversation turn. Rows are append-only; insertion
// order (the autoincrement id) is the only ordering guarantee. Citation
// metadata is only ever set on assistant-authored rows.
type Message struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	MessageID      string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"message_id"`
	SessionID      string    `gorm:"type:varchar(26);not null;index:idx_tutor_msg_user_session,priority:2;index:uniq_tutor_msg_idempo,unique,priority:2" json:"session_id"`
	UserID         uint64    `gorm:"not null;index:idx_tutor_msg_user_session,priority:1;index:uniq_tutor_msg_idempo,unique,priority:1" json:"-"`
	Role           string    `gorm:"type:varchar(16);index;not null" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	Confidence     float64   `json:"confidence,omitempty"`
	Sources        string    `gorm:"type:text" json:"-"`
	CodeRefs       string    `gorm:"type:text" json:"-"`
	ModuleRefs     string    `gorm:"type:text" json:"-"`
	IdempotencyKey *string   `gorm:"type:varchar(128);index:uniq_tutor_msg_idempo,unique,priority:3" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Message) TableName() string { return "tutor_messages" }

// SetMetadata serializes answer metadata onto an assistant message row.
func (m *Message) SetMetadata(resp *tutor.Response) {
	m.Confidence = resp.Confidence
	if b, err := json.Marshal(resp.Sources); err == nil {
		m.Sources = string(b)
	}
	if b, err := json.Marshal(resp.CodeReferences); err == nil {
		m.CodeRefs = string(b)
	}
	if b, err := json.Marshal(resp.ModuleReferences); err == nil {
		m.ModuleRefs = string(b)
	}
}

// SourceList decodes the stored source labels, empty on absence or corruption.
func (m *Message) SourceList() []string {
	var out []string
	if m.Sources != "" {
		_ = json.Unmarshal([]byte(m.Sources), &out)
	}
	return out
}

// CodeReferenceList decodes stored code citations.
func (m *Message) CodeReferenceList() []tutor.CodeReference {
	var out []tutor.CodeReference
	if m.CodeRefs != "" {
		_ = json.Unmarshal([]byte(m.CodeRefs), &out)
	}
	return out
}

// ModuleReferenceList decodes stored module citations.
func (m *Message) ModuleReferenceList() []tutor.ModuleReference {
	var out []tutor.ModuleReference
	if m.ModuleRefs != "" {
		_ = json.Unmarshal([]byte(m.ModuleRefs), &out)
	}
	return out
}
