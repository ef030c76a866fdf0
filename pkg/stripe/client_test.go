package stripe

import (
	"context"
	"testing"

	"github.com/bidhouse-app/bidhouse-backend/pkg/config"
)

func TestNewClientAcceptsSecretKeyForEnv(t *testing.T) {
	cfg := config.StripeConfig{APIKey: "sk_test_123", Secret: "whsec_123", Env: "test"}
	client, err := NewClient(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("expected client, got %v", err)
	}
	if client.Environment() != "test" {
		t.Fatalf("unexpected environment %q", client.Environment())
	}
	if client.SigningSecret() != "whsec_123" {
		t.Fatalf("unexpected signing secret %q", client.SigningSecret())
	}
}

func TestNewClientRejectsMismatchedKeys(t *testing.T) {
	cases := map[string]config.StripeConfig{
		"live key in test env": {APIKey: "sk_live_123", Secret: "whsec_123", Env: "test"},
		"test key in live env": {APIKey: "sk_test_123", Secret: "whsec_123", Env: "live"},
		"restricted key":       {APIKey: "rk_test_123", Secret: "whsec_123", Env: "test"},
		"missing api key":      {Secret: "whsec_123", Env: "test"},
		"missing secret":       {APIKey: "sk_test_123", Env: "test"},
		"unknown env":          {APIKey: "sk_test_123", Secret: "whsec_123", Env: "staging"},
	}
	for name, cfg := range cases {
		if _, err := NewClient(context.Background(), cfg, nil); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
