package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/larklabs/gastutor/internal/chat"
	"github.com/larklabs/gastutor/internal/common"
	"github.com/larklabs/gastutor/internal/tutor"
	"gorm.io/gorm"
)

// ListTutors returns every certification tier's configuration for the
// selection screen.
func (h *Handler) ListTutors(c *gin.Context) {
	levels := tutor.Levels()
	configs := make([]tutor.Configuration, 0, len(levels))
	for _, l := range levels {
		configs = append(configs, tutor.Lookup(l))
	}
	common.OK(c, gin.H{"tutors": configs})
}

func (h *Handler) GetTutor(c *gin.Context) {
	level := tutor.Level(c.Param("level"))
	if !tutor.Valid(level) {
		common.Fail(c, http.StatusNotFound, 40404, "unknown certification level")
		return
	}
	common.OK(c, gin.H{"tutor": tutor.Lookup(level)})
}

type startSessionReq struct {
	Level string `json:"level" binding:"required"`
}

// StartSession opens a new tutoring session for the level, replacing any
// active one, and resets the free-tier message counter.
func (h *Handler) StartSession(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req startSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	level := tutor.Level(req.Level)
	if !tutor.Valid(level) {
		common.Fail(c, http.StatusBadRequest, 10005, "unknown certification level")
		return
	}

	sess, err := h.ChatSvc.StartSession(c.Request.Context(), uid, level)
	if err != nil {
		log.Printf("[StartSession] failed uid=%d level=%s err=%v", uid, level, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to start session")
		return
	}

	if err := h.SubSvc.ResetQuota(c.Request.Context(), uid); err != nil {
		// counting period reset is best-effort; the session itself is live
		log.Printf("[StartSession] quota reset failed uid=%d err=%v", uid, err)
	}

	common.OK(c, sessionPayload(sess))
}

func (h *Handler) ActiveSession(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	sess, err := h.ChatSvc.ActiveSession(c.Request.Context(), uid)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			common.Fail(c, http.StatusNotFound, 40401, "no active session")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, sessionPayload(sess))
}

// EndSession archives the active session into history.
func (h *Handler) EndSession(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	sess, err := h.ChatSvc.EndSession(c.Request.Context(), uid)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			common.Fail(c, http.StatusNotFound, 40401, "no active session")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to end session")
		return
	}
	common.OK(c, gin.H{"session_id": sess.SessionID, "archived": true})
}

func (h *Handler) SessionHistory(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	sessions, err := h.ChatSvc.ListHistory(c.Request.Context(), uid)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to list history")
		return
	}

	out := make([]gin.H, 0, len(sessions))
	for i := range sessions {
		out = append(out, sessionPayload(&sessions[i]))
	}
	common.OK(c, gin.H{"sessions": out})
}

// UpdateSessionContext merges the provided fields into the active session's
// study context.
func (h *Handler) UpdateSessionContext(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var patch chat.ContextPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	sess, err := h.ChatSvc.UpdateContext(c.Request.Context(), uid, patch)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			common.Fail(c, http.StatusNotFound, 40401, "no active session")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to update context")
		return
	}
	common.OK(c, sessionPayload(sess))
}

func (h *Handler) ListSessionMessages(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	sessionID := c.Param("session_id")

	limit, _ := strconv.Atoi(c.Query("limit"))
	var beforeID uint64
	if v := c.Query("before_id"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			beforeID = n
		}
	}

	msgs, err := h.ChatSvc.ListMessages(c.Request.Context(), uid, sessionID, limit, beforeID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			common.Fail(c, http.StatusNotFound, 40401, "session not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to list messages")
		return
	}

	var nextBeforeID uint64
	out := make([]gin.H, 0, len(msgs))
	for i := range msgs {
		out = append(out, messagePayload(&msgs[i]))
	}
	if len(msgs) > 0 {
		nextBeforeID = msgs[len(msgs)-1].ID
	}

	common.OK(c, gin.H{
		"messages":       out,
		"next_before_id": nextBeforeID,
	})
}

// AIStatus probes the configured provider for the UI connectivity indicator.
func (h *Handler) AIStatus(c *gin.Context) {
	common.OK(c, gin.H{
		"provider":  h.Cfg.AIProvider,
		"connected": h.Responder.TestConnection(c.Request.Context()),
	})
}

type localChatReq struct {
	Message string `json:"message" binding:"required"`
	Level   string `json:"level" binding:"required"`
}

// LocalChat answers from the canned per-level response pool without calling
// any remote model. It stays available when the free quota is exhausted.
func (h *Handler) LocalChat(c *gin.Context) {
	var req localChatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10002, "message and level are required")
		return
	}
	level := tutor.Level(req.Level)
	if !tutor.Valid(level) {
		common.Fail(c, http.StatusBadRequest, 10005, "unknown certification level")
		return
	}

	common.OK(c, gin.H{
		"response":  tutor.LocalAnswer(req.Message, level),
		"timestamp": time.Now().Format(time.Kitchen),
	})
}

// LocalChatInfo is the static capability descriptor for the local endpoint.
func (h *Handler) LocalChatInfo(c *gin.Context) {
	common.OK(c, gin.H{
		"message":          "Canadian Gas Technician Tutor API",
		"version":          "1.0.0",
		"supported_levels": tutor.Levels(),
	})
}
