package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/larklabs/gastutor/internal/billing"
	"github.com/larklabs/gastutor/internal/common"
)

type createCheckoutReq struct {
	PriceID string `json:"price_id"`
}

// CreateCheckout opens an embedded checkout session for the pro upgrade and
// returns the client secret the frontend mounts.
func (h *Handler) CreateCheckout(c *gin.Context) {
	var req createCheckoutReq
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	priceID := req.PriceID
	if priceID == "" {
		priceID = h.Cfg.StripePriceID
	}
	if priceID == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "price_id is required")
		return
	}

	returnURL := h.Cfg.CheckoutBaseURL + "/return?session_id={CHECKOUT_SESSION_ID}"
	sess, err := h.Billing.CreateCheckoutSession(c.Request.Context(), priceID, returnURL)
	if err != nil {
		if errors.Is(err, billing.ErrNotConfigured) {
			common.Fail(c, http.StatusServiceUnavailable, 50302, "billing not configured")
			return
		}
		log.Printf("[CreateCheckout] failed err=%v", err)
		common.Fail(c, http.StatusBadGateway, 50201, "failed to create checkout session")
		return
	}

	common.OK(c, gin.H{
		"session_id":    sess.ID,
		"client_secret": sess.ClientSecret,
	})
}

// GetCheckout reports a checkout session's completion status for the return
// page.
func (h *Handler) GetCheckout(c *gin.Context) {
	sess, err := h.Billing.GetCheckoutSession(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		if errors.Is(err, billing.ErrNotConfigured) {
			common.Fail(c, http.StatusServiceUnavailable, 50302, "billing not configured")
			return
		}
		common.Fail(c, http.StatusBadGateway, 50201, "failed to fetch checkout session")
		return
	}

	common.OK(c, gin.H{
		"status":         sess.Status,
		"customer_email": sess.CustomerDetails.Email,
	})
}
