package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/larklabs/gastutor/internal/common"
)

// GetSubscription returns the caller's free/pro gate state.
func (h *Handler) GetSubscription(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	st, err := h.SubSvc.State(c.Request.Context(), uid)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, st)
}

type activateReq struct {
	CheckoutSessionID string `json:"checkout_session_id" binding:"required"`
}

// ActivateSubscription verifies the checkout session completed and flips the
// caller to pro. Called from the checkout return page.
func (h *Handler) ActivateSubscription(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req activateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10002, "checkout_session_id is required")
		return
	}

	sess, err := h.Billing.GetCheckoutSession(c.Request.Context(), req.CheckoutSessionID)
	if err != nil {
		common.Fail(c, http.StatusBadGateway, 50201, "failed to verify checkout session")
		return
	}
	if sess.Status != "complete" {
		common.Fail(c, http.StatusBadRequest, 10004, "checkout session not complete")
		return
	}

	st, err := h.SubSvc.Activate(c.Request.Context(), uid, sess.ID, sess.CustomerDetails.Email)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to activate subscription")
		return
	}
	common.OK(c, st)
}
