package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		deps       map[string]Pinger
		wantStatus int
	}{
		{"all up", map[string]Pinger{"postgres": stubPinger{}, "redis": stubPinger{}}, fiber.StatusOK},
		{"redis down", map[string]Pinger{"postgres": stubPinger{}, "redis": stubPinger{err: errors.New("connection refused")}}, fiber.StatusServiceUnavailable},
		{"nil skipped", map[string]Pinger{"postgres": stubPinger{}, "redis": nil}, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			h := NewHealthHandler("irms", "test", tt.deps)
			app.Get("/ready", h.Ready)

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ready", nil), -1)
			if err != nil {
				t.Fatalf("ready: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantStatus != fiber.StatusServiceUnavailable {
				return
			}
			var body struct {
				Error struct {
					Code    string            `json:"code"`
					Details map[string]string `json:"details"`
				} `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Code != "DEPENDENCY_UNAVAILABLE" || body.Error.Details["redis"] != "connection refused" || body.Error.Details["postgres"] != "ok" {
				t.Fatalf("unexpected body %+v", body)
			}
		})
	}
}
