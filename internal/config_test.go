package internal

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
}

func TestUpstreamConfig_RequiresURL(t *testing.T) {
	cfg := UpstreamConfig{BaseURL: "not a url", Timeout: time.Second}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid base url should fail")
	}
	cfg.BaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty base url should fail")
	}
}

func TestUpstreamConfig_LoginTarget(t *testing.T) {
	cfg := UpstreamConfig{BaseURL: "https://api.example.com", Timeout: time.Second}
	if got := cfg.LoginTarget(); got != "https://api.example.com/authentication/login" {
		t.Errorf("LoginTarget = %q", got)
	}
	cfg.LoginURL = "https://auth.example.com/kakao"
	if got := cfg.LoginTarget(); got != "https://auth.example.com/kakao" {
		t.Errorf("LoginTarget = %q", got)
	}
}

func TestTemplatesConfig_WatchNeedsDir(t *testing.T) {
	cfg := TemplatesConfig{Watch: true}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("watch without dir should fail")
	}
	if !strings.Contains(err.Error(), "dir is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSessionConfig_Bounds(t *testing.T) {
	cfg := SessionConfig{IdleTTL: time.Minute, MaxViews: 0}
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero max views should fail")
	}
}

func TestFullConfig_UpstreamValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Upstream.BaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch upstream error")
	}
}
