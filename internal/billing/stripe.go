package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no secret key is set; handlers map it to
// a clean failure instead of calling out with empty credentials.
var ErrNotConfigured = errors.New("billing: stripe secret key is not configured")

// Client talks to the hosted-checkout API. Requests are form-encoded per the
// provider's wire format.
type Client struct {
	BaseURL   string
	SecretKey string
	HTTP      *http.Client
}

// CheckoutSession is the subset of the provider's checkout session object the
// app consumes.
type CheckoutSession struct {
	ID              string `json:"id"`
	ClientSecret    string `json:"client_secret"`
	Status          string `json:"status"`
	CustomerDetails struct {
		Email string `json:"email"`
	} `json:"customer_details"`
}

type stripeError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewClient(secretKey string) *Client {
	return &Client{
		BaseURL:   "https://api.stripe.com/v1",
		SecretKey: secretKey,
		HTTP:      &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return strings.TrimSpace(c.SecretKey) != ""
}

// CreateCheckoutSession opens an embedded-mode subscription checkout and
// returns the session carrying the client secret. returnURL should contain
// the {CHECKOUT_SESSION_ID} placeholder the provider substitutes.
func (c *Client) CreateCheckoutSession(ctx context.Context, priceID, returnURL string) (*CheckoutSession, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	form := url.Values{}
	form.Set("ui_mode", "embedded")
	form.Set("mode", "subscription")
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("return_url", returnURL)
	form.Set("metadata[product]", "gas-tech-tutor-pro")

	return c.do(ctx, http.MethodPost, "/checkout/sessions", form)
}

// GetCheckoutSession retrieves a checkout session's completion status and
// customer email.
func (c *Client) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	return c.do(ctx, http.MethodGet, "/checkout/sessions/"+url.PathEscape(sessionID), nil)
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values) (*CheckoutSession, error) {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	endpoint := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var decoded stripeError
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
		if decoded.Error.Message != "" {
			return nil, fmt.Errorf("stripe: %s", decoded.Error.Message)
		}
		return nil, fmt.Errorf("stripe: status %d", resp.StatusCode)
	}

	var sess CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		return nil, err
	}
	return &sess, nil
}
