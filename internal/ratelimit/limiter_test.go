package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHostLimiter_Disabled(t *testing.T) {
	hl := NewHostLimiter(0, 0)

	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := hl.Wait(context.Background(), "shop.test"); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Errorf("Disabled limiter should not block")
	}
}

func TestHostLimiter_SeparateBuckets(t *testing.T) {
	hl := NewHostLimiter(1, 1)

	if err := hl.Wait(context.Background(), "a.test"); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	// A fresh host has its own full bucket
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := hl.Wait(ctx, "b.test"); err != nil {
		t.Errorf("Expected immediate token for second host, got %v", err)
	}
}

func TestHostLimiter_HonorsContext(t *testing.T) {
	hl := NewHostLimiter(0.1, 1)
	hl.Wait(context.Background(), "a.test")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := hl.Wait(ctx, "a.test"); err == nil {
		t.Error("Expected context error while bucket is empty")
	}
}

func TestTransport_PassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := &http.Client{Transport: &Transport{Base: http.DefaultTransport, Limiter: NewHostLimiter(100, 10)}}
	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", resp.StatusCode)
	}
}
