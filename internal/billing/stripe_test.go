package billing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateCheckoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/checkout/sessions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk_test_123" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("ui_mode") != "embedded" || r.PostForm.Get("mode") != "subscription" {
			t.Errorf("unexpected checkout mode: %v", r.PostForm)
		}
		if r.PostForm.Get("line_items[0][price]") != "price_abc" {
			t.Errorf("price not set: %v", r.PostForm)
		}
		if r.PostForm.Get("line_items[0][quantity]") != "1" {
			t.Errorf("quantity not set: %v", r.PostForm)
		}
		if r.PostForm.Get("metadata[product]") != "gas-tech-tutor-pro" {
			t.Errorf("product metadata not set: %v", r.PostForm)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":            "cs_test_1",
			"client_secret": "cs_secret",
			"status":        "open",
		})
	}))
	defer srv.Close()

	c := NewClient("sk_test_123")
	c.BaseURL = srv.URL

	sess, err := c.CreateCheckoutSession(context.Background(), "price_abc", "http://localhost:3000/return?session_id={CHECKOUT_SESSION_ID}")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sess.ID != "cs_test_1" || sess.ClientSecret != "cs_secret" {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestGetCheckoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/checkout/sessions/cs_test_2" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "cs_test_2",
			"status": "complete",
			"customer_details": map[string]string{
				"email": "tech@example.com",
			},
		})
	}))
	defer srv.Close()

	c := NewClient("sk_test_123")
	c.BaseURL = srv.URL

	sess, err := c.GetCheckoutSession(context.Background(), "cs_test_2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sess.Status != "complete" || sess.CustomerDetails.Email != "tech@example.com" {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestAPIErrorMessageSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "No such price: price_bad"},
		})
	}))
	defer srv.Close()

	c := NewClient("sk_test_123")
	c.BaseURL = srv.URL

	_, err := c.CreateCheckoutSession(context.Background(), "price_bad", "http://localhost/return")
	if err == nil {
		t.Fatalf("expected error")
	}
	if err.Error() != "stripe: No such price: price_bad" {
		t.Fatalf("unexpected error %q", err)
	}
}

func TestUnconfiguredClient(t *testing.T) {
	c := NewClient("")
	if _, err := c.CreateCheckoutSession(context.Background(), "p", "u"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := c.GetCheckoutSession(context.Background(), "cs"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
