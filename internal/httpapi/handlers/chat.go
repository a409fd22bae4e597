package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/larklabs/gastutor/internal/chat"
	"github.com/larklabs/gastutor/internal/common"
	"gorm.io/gorm"
)

type sendMessageReq struct {
	Message string `json:"message" binding:"required"`
}

// SendTutorMessage handles one synchronous conversation turn: gate the free
// quota, count the message, generate and return the assistant reply.
func (h *Handler) SendTutorMessage(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10002, "message is required")
		return
	}

	allowed, err := h.SubSvc.HasAIAccess(c.Request.Context(), uid)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	if !allowed {
		common.Fail(c, http.StatusForbidden, 40301, "free message limit reached")
		return
	}
	if err := h.SubSvc.ConsumeMessage(c.Request.Context(), uid); err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	msg, err := h.ChatSvc.SendMessage(c.Request.Context(), uid, req.Message)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			common.Fail(c, http.StatusNotFound, 40401, "no active session")
			return
		}
		log.Printf("[SendTutorMessage] failed uid=%d err=%v", uid, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to send message")
		return
	}

	common.OK(c, messagePayload(msg))
}

type sendMessageAsyncReq struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

// SendTutorMessageAsync persists the user message, records a reply job and
// enqueues it for cmd/worker. Re-sending with the same Idempotency-Key
// returns the original job instead of a duplicate.
func (h *Handler) SendTutorMessageAsync(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	if h.Rabbit == nil {
		common.Fail(c, http.StatusServiceUnavailable, 50301, "async pipeline unavailable")
		return
	}

	var req sendMessageAsyncReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10002, "session_id and message are required")
		return
	}

	var key *string
	if v := c.GetHeader("Idempotency-Key"); v != "" {
		key = &v
	}

	allowed, err := h.SubSvc.HasAIAccess(c.Request.Context(), uid)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	if !allowed {
		common.Fail(c, http.StatusForbidden, 40301, "free message limit reached")
		return
	}

	_, created, err := h.ChatSvc.InsertUserMessageOrGetExisting(c.Request.Context(), uid, req.SessionID, req.Message, key)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			common.Fail(c, http.StatusNotFound, 40401, "session not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to store message")
		return
	}

	if !created && key != nil {
		// replay: hand back the job we already queued for this key
		if job, jerr := h.ChatSvc.GetJobByUserAndIdempotencyKey(c.Request.Context(), uid, *key); jerr == nil {
			common.OK(c, gin.H{"job_id": job.ID, "status": job.Status, "replayed": true})
			return
		}
	}

	jobID, err := common.NewULID()
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	job := &chat.Job{
		ID:             jobID,
		UserID:         uid,
		SessionID:      req.SessionID,
		Prompt:         req.Message,
		IdempotencyKey: key,
		Status:         chat.JobQueued,
	}

	stored, created, err := h.ChatSvc.CreateJobOrGetExisting(c.Request.Context(), job)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to create job")
		return
	}
	if !created {
		common.OK(c, gin.H{"job_id": stored.ID, "status": stored.Status, "replayed": true})
		return
	}

	if err := h.SubSvc.ConsumeMessage(c.Request.Context(), uid); err != nil {
		log.Printf("[SendTutorMessageAsync] quota count failed uid=%d err=%v", uid, err)
	}

	if err := h.Rabbit.PublishJob(c.Request.Context(), stored.ID); err != nil {
		log.Printf("[SendTutorMessageAsync] publish failed job=%s err=%v", stored.ID, err)
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to enqueue job")
		return
	}

	common.OK(c, gin.H{"job_id": stored.ID, "status": stored.Status})
}

// GetTutorJob reports an async reply job's progress.
func (h *Handler) GetTutorJob(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	job, err := h.ChatSvc.GetJob(c.Request.Context(), c.Param("job_id"))
	if err != nil || job.UserID != uid {
		common.Fail(c, http.StatusNotFound, 40402, "job not found")
		return
	}

	out := gin.H{
		"job_id":     job.ID,
		"session_id": job.SessionID,
		"status":     job.Status,
		"created_at": job.CreatedAt,
		"updated_at": job.UpdatedAt,
	}
	if job.ResultMessageID != nil {
		out["result_message_id"] = *job.ResultMessageID
	}
	if job.Error != nil {
		out["error"] = *job.Error
	}
	common.OK(c, out)
}
