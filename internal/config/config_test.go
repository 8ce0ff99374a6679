package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q, want release", cfg.GinMode)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Errorf("APIBasePath = %q, want /api/v1", cfg.APIBasePath)
	}
	if cfg.DBPath != "claims.db" {
		t.Errorf("DBPath = %q, want claims.db", cfg.DBPath)
	}
	if cfg.ClaimsAreaID != 0 {
		t.Errorf("ClaimsAreaID = %d, want 0", cfg.ClaimsAreaID)
	}
	if cfg.Notify.WebhookURL != "" || cfg.Notify.Timeout != 10*time.Second {
		t.Errorf("Notify = %+v", cfg.Notify)
	}
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Errorf("rate = (%v, %d)", cfg.RateRPS, cfg.RateBurst)
	}
	if cfg.IdempotencyTTL != 24*time.Hour {
		t.Errorf("IdempotencyTTL = %v", cfg.IdempotencyTTL)
	}
	if cfg.OTEL.Enabled || !cfg.OTEL.Insecure || cfg.OTEL.SampleRatio != 1.0 {
		t.Errorf("OTEL = %+v", cfg.OTEL)
	}
	if cfg.OTEL.ServiceName != "go-claims-backend" {
		t.Errorf("OTEL.ServiceName = %q", cfg.OTEL.ServiceName)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GIN_MODE", "DEBUG")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("CLAIMS_AREA_ID", "4")
	t.Setenv("NOTIFY_WEBHOOK_URL", "http://hooks.internal/claims")
	t.Setenv("RATE_RPS", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com ,")
	t.Setenv("IDEMPOTENCY_TTL", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.GinMode != "debug" {
		t.Errorf("GinMode = %q, want lowercased debug", cfg.GinMode)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warning normalized to warn", cfg.LogLevel)
	}
	if cfg.ClaimsAreaID != 4 {
		t.Errorf("ClaimsAreaID = %d", cfg.ClaimsAreaID)
	}
	if cfg.Notify.WebhookURL != "http://hooks.internal/claims" {
		t.Errorf("WebhookURL = %q", cfg.Notify.WebhookURL)
	}
	if cfg.RateRPS != 2.5 {
		t.Errorf("RateRPS = %v", cfg.RateRPS)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.CORS.AllowedOrigins, want)
	}
	if cfg.IdempotencyTTL != time.Hour {
		t.Errorf("IdempotencyTTL = %v", cfg.IdempotencyTTL)
	}
}

func TestLoad_UnknownGinModeFallsBack(t *testing.T) {
	t.Setenv("GIN_MODE", "verbose")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q, want release", cfg.GinMode)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		key, value string
	}{
		{"LOG_LEVEL", "loud"},
		{"READ_TIMEOUT", "-5s"},
		{"MAX_HEADER_BYTES", "-1"},
		{"NOTIFY_TIMEOUT", "-1s"},
		{"RATE_RPS", "-1"},
		{"RATE_BURST", "0"},
		{"IDEMPOTENCY_TTL", "-1h"},
		{"OTEL_TRACES_SAMPLER_ARG", "1.5"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("%s=%s: expected validation error", tc.key, tc.value)
			}
		})
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", "/"},
		{"/", "/"},
		{"api", "/api"},
		{"/api/v1", "/api/v1"},
		{"/api/v1/", "/api/v1"},
		{"  /api/v2  ", "/api/v2"},
	}
	for _, tc := range cases {
		if got := normalizeBasePath(tc.in); got != tc.want {
			t.Errorf("normalizeBasePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMustLoad_PanicsOnInvalid(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustLoad()
}
